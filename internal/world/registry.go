package world

import (
	"sync"
	"sync/atomic"
)

// Registry is a concurrent set of objects keyed by ObjectID.
// Writers and readers never need external locking. Iteration is weakly
// consistent: it may miss an object added concurrently but never sees a
// partially inserted one.
type Registry struct {
	objects sync.Map // int32 → Object
	size    atomic.Int64
	version atomic.Uint64 // bumped on every Add/Remove

	cache atomic.Pointer[registrySnapshot]
}

// registrySnapshot is immutable once stored.
type registrySnapshot struct {
	version uint64
	objects []Object
}

// Add inserts obj, replacing any object stored under the same ID.
func (r *Registry) Add(obj Object) {
	if isNil(obj) {
		return
	}
	if _, loaded := r.objects.Swap(obj.ObjectID(), obj); !loaded {
		r.size.Add(1)
	}
	r.version.Add(1)
}

// Remove deletes obj by ID and reports whether it was present.
func (r *Registry) Remove(obj Object) bool {
	if isNil(obj) {
		return false
	}
	if _, loaded := r.objects.LoadAndDelete(obj.ObjectID()); !loaded {
		return false
	}
	r.size.Add(-1)
	r.version.Add(1)
	return true
}

func (r *Registry) Contains(id int32) bool {
	_, ok := r.objects.Load(id)
	return ok
}

// Get returns the object stored under id, or nil.
func (r *Registry) Get(id int32) Object {
	v, ok := r.objects.Load(id)
	if !ok {
		return nil
	}
	return v.(Object)
}

func (r *Registry) Size() int {
	return int(r.size.Load())
}

// Version changes whenever membership changes.
func (r *Registry) Version() uint64 {
	return r.version.Load()
}

// ForEach calls fn for every object until fn returns false.
func (r *Registry) ForEach(fn func(Object) bool) {
	r.objects.Range(func(_, v any) bool {
		return fn(v.(Object))
	})
}

// Snapshot returns a point-in-time copy of the members. The slice is shared
// between callers until membership changes and must not be modified.
func (r *Registry) Snapshot() []Object {
	v := r.version.Load()
	if c := r.cache.Load(); c != nil && c.version == v {
		return c.objects
	}

	objects := make([]Object, 0, r.Size())
	r.objects.Range(func(_, o any) bool {
		objects = append(objects, o.(Object))
		return true
	})

	// Tagged with the version read before the scan: a write racing the scan
	// leaves the tag behind the counter and forces a rebuild next time.
	r.cache.Store(&registrySnapshot{version: v, objects: objects})
	return objects
}
