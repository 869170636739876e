package world

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Neighbourhood queries. Every function scans the 3×3 block around a region
// and matches objects of type T (a concrete variant such as *Monster, or an
// interface such as Object) that satisfy pred; a nil pred matches all.
//
// Results reflect concurrent mutation only eventually: an object added
// during a scan may be missed, but an object moving between two scanned
// regions is never reported twice by the same call.

func match[T Object](o Object, pred func(T) bool) (T, bool) {
	t, ok := o.(T)
	if !ok || (pred != nil && !pred(t)) {
		var zero T
		return zero, false
	}
	return t, true
}

// scan visits each distinct object in the block once, in region order,
// until fn returns false.
func scan(r *Region, fn func(Object) bool) {
	seen := make(map[int32]struct{}, 16)
	r.ForEachNeighbor(func(n *Region) bool {
		cont := true
		n.objects.ForEach(func(o Object) bool {
			id := o.ObjectID()
			if _, dup := seen[id]; dup {
				return true
			}
			seen[id] = struct{}{}
			cont = fn(o)
			return cont
		})
		return cont
	})
}

// errFound stops the parallel scan of FindAny once a match exists.
var errFound = errors.New("found")

// FindAny returns some match. Regions are scanned in parallel, so which match
// comes back when several qualify is unspecified.
func FindAny[T Object](r *Region, pred func(T) bool) (T, bool) {
	var (
		mu     sync.Mutex
		result T
		found  bool
	)
	g, ctx := errgroup.WithContext(context.Background())
	r.ForEachNeighbor(func(n *Region) bool {
		g.Go(func() error {
			var err error
			n.objects.ForEach(func(o Object) bool {
				if ctx.Err() != nil {
					return false
				}
				t, ok := match(o, pred)
				if !ok {
					return true
				}
				mu.Lock()
				if !found {
					result, found = t, true
				}
				mu.Unlock()
				err = errFound
				return false
			})
			return err
		})
		return true
	})
	_ = g.Wait() // errFound only cancels the siblings
	return result, found
}

// Exists reports whether any object in the block matches.
func Exists[T Object](r *Region, pred func(T) bool) bool {
	_, ok := FindAny(r, pred)
	return ok
}

// Count returns the number of distinct matching objects. Regions are
// counted in parallel and merged by object ID.
func Count[T Object](r *Region, pred func(T) bool) int {
	parts := make([][]int32, len(r.neighbors))
	var g errgroup.Group
	for i, idx := range r.neighbors {
		n := &r.env.arena[idx]
		g.Go(func() error {
			n.objects.ForEach(func(o Object) bool {
				if _, ok := match(o, pred); ok {
					parts[i] = append(parts[i], o.ObjectID())
				}
				return true
			})
			return nil
		})
	}
	_ = g.Wait()

	if len(parts) == 1 {
		return len(parts[0])
	}
	seen := make(map[int32]struct{})
	for _, p := range parts {
		for _, id := range p {
			seen[id] = struct{}{}
		}
	}
	return len(seen)
}

// FindAll returns every match, in no particular order.
func FindAll[T Object](r *Region, pred func(T) bool) []T {
	var out []T
	scan(r, func(o Object) bool {
		if t, ok := match(o, pred); ok {
			out = append(out, t)
		}
		return true
	})
	return out
}

// ForEach calls fn for every match.
func ForEach[T Object](r *Region, pred func(T) bool, fn func(T)) {
	scan(r, func(o Object) bool {
		if t, ok := match(o, pred); ok {
			fn(t)
		}
		return true
	})
}

// ForEachLimit calls fn for at most limit matches.
func ForEachLimit[T Object](r *Region, limit int, pred func(T) bool, fn func(T)) {
	if limit <= 0 {
		return
	}
	n := 0
	scan(r, func(o Object) bool {
		if t, ok := match(o, pred); ok {
			fn(t)
			n++
		}
		return n < limit
	})
}

// FindNearest returns at most limit matches sorted ascending by compare.
// Ties keep scan order, which is not deterministic.
func FindNearest[T Object](r *Region, limit int, compare func(a, b T) int, pred func(T) bool) []T {
	if limit <= 0 {
		return nil
	}
	all := FindAll(r, pred)
	slices.SortStableFunc(all, compare)
	if len(all) > limit {
		all = all[:limit]
	}
	return all
}

// FindFirst returns the smallest match according to compare.
func FindFirst[T Object](r *Region, compare func(a, b T) int, pred func(T) bool) (T, bool) {
	var (
		best  T
		found bool
	)
	scan(r, func(o Object) bool {
		t, ok := match(o, pred)
		if !ok {
			return true
		}
		if !found || compare(t, best) < 0 {
			best, found = t, true
		}
		return true
	})
	return best, found
}

// ByDistance orders objects by 3D distance from ref, nearest first.
func ByDistance[T Object](ref Location) func(a, b T) int {
	return func(a, b T) int {
		return cmp.Compare(DistanceSq3D(ref, a.Location()), DistanceSq3D(ref, b.Location()))
	}
}

// FindExact locates object id anywhere in the block and checks that it lies
// within radius of ref in 3D. Both a missing object and one out of range
// yield ErrNotFound.
func FindExact(r *Region, ref Location, id int32, radius int32) (Object, error) {
	var obj Object
	r.ForEachNeighbor(func(n *Region) bool {
		obj = n.FindByID(id)
		return obj == nil
	})
	if obj == nil {
		return nil, fmt.Errorf("object %d: %w", id, ErrNotFound)
	}
	if !InsideRadius3D(ref, obj.Location(), radius) {
		return nil, fmt.Errorf("object %d beyond %d: %w", id, radius, ErrNotFound)
	}
	return obj, nil
}
