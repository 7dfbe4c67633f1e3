package gpu

import (
	"github.com/google/uuid"

	"github.com/Faultbox/midgard-globe/internal/cache"
)

// Resource is the set of GPU objects uploaded for one identity token.
type Resource struct {
	Buffers  []uint32
	Textures []uint32
	Size     int64
}

// SizeInBytes implements cache.Sizer.
func (r Resource) SizeInBytes() int64 { return r.Size }

// Buffer returns the i-th buffer name, or 0.
func (r Resource) Buffer(i int) uint32 {
	if i < len(r.Buffers) {
		return r.Buffers[i]
	}
	return 0
}

// Texture returns the first texture name, or 0.
func (r Resource) Texture() uint32 {
	if len(r.Textures) > 0 {
		return r.Textures[0]
	}
	return 0
}

func (r Resource) release(ctx Context) {
	for _, id := range r.Buffers {
		ctx.DeleteBuffer(id)
	}
	for _, id := range r.Textures {
		ctx.DeleteTexture(id)
	}
}

func (r Resource) same(other Resource) bool {
	if len(r.Buffers) != len(other.Buffers) || len(r.Textures) != len(other.Textures) {
		return false
	}
	for i := range r.Buffers {
		if r.Buffers[i] != other.Buffers[i] {
			return false
		}
	}
	for i := range r.Textures {
		if r.Textures[i] != other.Textures[i] {
			return false
		}
	}
	return true
}

// ResourceCache is the GPU tier: uploaded objects keyed by an opaque
// per-geometry token, byte budgeted like the CPU tier. Objects leaving the
// cache are deleted through the graphics context, so the cache must only be
// used on the graphics goroutine.
type ResourceCache struct {
	ctx Context
	mem *cache.Memory[uuid.UUID, Resource]
}

// NewResourceCache creates a GPU cache of capacity bytes releasing objects
// through ctx.
func NewResourceCache(ctx Context, capacity int64) *ResourceCache {
	c := &ResourceCache{ctx: ctx, mem: cache.New[uuid.UUID, Resource](capacity)}
	c.mem.AddListener(func(_ uuid.UUID, r Resource) { r.release(ctx) })
	return c
}

// Context returns the graphics context the cache releases through.
func (c *ResourceCache) Context() Context { return c.ctx }

// Get returns the resource for token and marks it recently used.
func (c *ResourceCache) Get(token uuid.UUID) (Resource, bool) {
	return c.mem.Get(token)
}

// Contains reports whether token has resident objects.
func (c *ResourceCache) Contains(token uuid.UUID) bool {
	return c.mem.Contains(token)
}

// Put stores r under token. A replaced resource with different objects is
// released. When r does not fit the cache it is released immediately,
// together with anything previously stored under token, and Put returns
// false.
func (c *ResourceCache) Put(token uuid.UUID, r Resource) bool {
	old, had := c.mem.Get(token)
	if c.mem.Put(token, r) {
		if had && !old.same(r) {
			old.release(c.ctx)
		}
		return true
	}
	if had {
		c.mem.Remove(token)
		if old.same(r) {
			return false
		}
	}
	r.release(c.ctx)
	return false
}

// Remove releases the objects stored under token.
func (c *ResourceCache) Remove(token uuid.UUID) {
	c.mem.Remove(token)
}

// Clear releases every resident object.
func (c *ResourceCache) Clear() {
	c.mem.Clear()
}

// SetCapacity changes the byte budget.
func (c *ResourceCache) SetCapacity(capacity int64) {
	c.mem.SetCapacity(capacity)
}

// Stats returns the cache counters.
func (c *ResourceCache) Stats() cache.Stats {
	return c.mem.Stats()
}
