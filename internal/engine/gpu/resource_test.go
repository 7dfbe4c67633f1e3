package gpu_test

import (
	"testing"

	"github.com/google/uuid"

	"github.com/Faultbox/midgard-globe/internal/engine/gpu"
	"github.com/Faultbox/midgard-globe/internal/engine/gpu/gputest"
)

func TestResourceCacheReleasesOnEviction(t *testing.T) {
	rec := gputest.New()
	c := gpu.NewResourceCache(rec, 100) // low water 80

	tokens := make([]uuid.UUID, 3)
	for i := range tokens {
		tokens[i] = uuid.New()
		r := gpu.Resource{Buffers: []uint32{rec.CreateBuffer()}, Size: 40}
		if !c.Put(tokens[i], r) {
			t.Fatalf("Put(%d) rejected", i)
		}
	}

	// The third put needed 120 bytes; eviction drains to 80 before adding.
	if c.Contains(tokens[0]) {
		t.Error("oldest resource still resident")
	}
	if len(rec.DeletedBuffers) == 0 || rec.DeletedBuffers[0] != 1 {
		t.Errorf("DeletedBuffers = %v, want [1 ...]", rec.DeletedBuffers)
	}
	if !c.Contains(tokens[2]) {
		t.Error("newest resource evicted")
	}
}

func TestResourceCacheReplace(t *testing.T) {
	rec := gputest.New()
	c := gpu.NewResourceCache(rec, 1000)
	token := uuid.New()

	first := gpu.Resource{Buffers: []uint32{rec.CreateBuffer()}, Size: 10}
	c.Put(token, first)

	// Re-putting the same objects with a new size keeps them alive.
	c.Put(token, gpu.Resource{Buffers: first.Buffers, Size: 20})
	if len(rec.DeletedBuffers) != 0 {
		t.Fatalf("same-object replace deleted %v", rec.DeletedBuffers)
	}

	second := gpu.Resource{Buffers: []uint32{rec.CreateBuffer()}, Size: 10}
	c.Put(token, second)
	if len(rec.DeletedBuffers) != 1 || rec.DeletedBuffers[0] != first.Buffers[0] {
		t.Errorf("DeletedBuffers = %v, want [%d]", rec.DeletedBuffers, first.Buffers[0])
	}
	got, ok := c.Get(token)
	if !ok || got.Buffer(0) != second.Buffers[0] {
		t.Errorf("Get() = %v, %v", got, ok)
	}
}

func TestResourceCacheRejectsOversized(t *testing.T) {
	rec := gputest.New()
	c := gpu.NewResourceCache(rec, 10)
	token := uuid.New()

	r := gpu.Resource{Buffers: []uint32{rec.CreateBuffer()}, Textures: []uint32{7}, Size: 11}
	if c.Put(token, r) {
		t.Fatal("Put() accepted an oversized resource")
	}
	if len(rec.DeletedBuffers) != 1 || len(rec.DeletedTextures) != 1 {
		t.Errorf("oversized resource not released: buffers %v textures %v",
			rec.DeletedBuffers, rec.DeletedTextures)
	}
	if c.Contains(token) {
		t.Error("oversized resource resident")
	}
}

func TestResourceCacheClear(t *testing.T) {
	rec := gputest.New()
	c := gpu.NewResourceCache(rec, 1000)
	for i := 0; i < 4; i++ {
		c.Put(uuid.New(), gpu.Resource{Buffers: []uint32{rec.CreateBuffer(), rec.CreateBuffer()}, Size: 8})
	}
	c.Clear()
	if len(rec.DeletedBuffers) != 8 {
		t.Errorf("Clear() deleted %d buffers, want 8", len(rec.DeletedBuffers))
	}
	if s := c.Stats(); s.Entries != 0 || s.Used != 0 {
		t.Errorf("Stats() after Clear = %+v", s)
	}
}
