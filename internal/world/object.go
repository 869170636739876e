package world

import (
	"math"
	"reflect"
)

// Location is a position in world units plus a facing.
type Location struct {
	X       int32
	Y       int32
	Z       int32
	Heading uint16
}

// Traits classifies an object for activation and AI switching.
// Each object variant resolves its traits once; the grid never inspects
// concrete types to decide what an object is.
type Traits uint8

const (
	TraitControllable Traits = 1 << iota // player-like, drives region activation
	TraitAutonomous                      // runs its own AI loop
	TraitAttackable                      // has combat state to clear on pause
)

func (t Traits) Controllable() bool { return t&TraitControllable != 0 }
func (t Traits) Autonomous() bool   { return t&TraitAutonomous != 0 }
func (t Traits) Attackable() bool   { return t&TraitAttackable != 0 }

// Object is anything the grid can hold. Regions keep non-owning references
// keyed by ObjectID; the global entity table owns the object itself.
type Object interface {
	ObjectID() int32
	Location() Location
	Traits() Traits
}

// isNil reports absent objects, including typed nil pointers wrapped in the
// interface, so mutating operations can treat them as no-ops.
func isNil(obj Object) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	return v.Kind() == reflect.Pointer && v.IsNil()
}

// DistanceSq3D returns the squared 3D distance between two locations,
// saturating at math.MaxInt64.
func DistanceSq3D(a, b Location) int64 {
	var sum uint64
	for _, d := range [3]uint64{absDiff(a.X, b.X), absDiff(a.Y, b.Y), absDiff(a.Z, b.Z)} {
		sq := d * d // d < 2^32
		if sq > math.MaxInt64 || sum > math.MaxInt64-sq {
			return math.MaxInt64
		}
		sum += sq
	}
	return int64(sum)
}

func absDiff(a, b int32) uint64 {
	d := int64(a) - int64(b)
	if d < 0 {
		d = -d
	}
	return uint64(d)
}

// InsideRadius3D reports whether b lies within radius of a (inclusive).
func InsideRadius3D(a, b Location, radius int32) bool {
	if radius < 0 {
		return false
	}
	r := int64(radius)
	return DistanceSq3D(a, b) <= r*r
}
