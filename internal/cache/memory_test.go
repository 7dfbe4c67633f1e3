package cache

import (
	"fmt"
	"sync"
	"testing"
)

type blob int64

func (b blob) SizeInBytes() int64 { return int64(b) }

func TestMemoryGetPut(t *testing.T) {
	c := New[string, blob](100)

	if _, ok := c.Get("a"); ok {
		t.Error("Get() on empty cache should miss")
	}
	if !c.Put("a", 10) {
		t.Fatal("Put() rejected a small value")
	}
	v, ok := c.Get("a")
	if !ok || v != 10 {
		t.Errorf("Get() = %v, %v, want 10, true", v, ok)
	}
	if !c.Contains("a") || c.Contains("b") {
		t.Error("Contains() mismatch")
	}
	if c.Used() != 10 || c.Free() != 90 {
		t.Errorf("Used()/Free() = %d/%d, want 10/90", c.Used(), c.Free())
	}

	s := c.Stats()
	if s.Hits != 1 || s.Misses != 1 {
		t.Errorf("Stats() hits/misses = %d/%d, want 1/1", s.Hits, s.Misses)
	}
}

func TestMemoryEvictsToLowWater(t *testing.T) {
	c := New[int, blob](100) // low water 80

	var evicted []int
	c.AddListener(func(k int, _ blob) { evicted = append(evicted, k) })

	for i := 0; i < 10; i++ {
		c.Put(i, 10)
	}
	if c.Used() != 100 || len(evicted) != 0 {
		t.Fatalf("Used() = %d with %d evictions, want 100 and none", c.Used(), len(evicted))
	}

	// Touch 0 so that 1 becomes the least recently used entry.
	c.Get(0)
	c.Put(10, 10)

	// 100+10 > 100: evict until used+10 <= 80, i.e. three entries.
	want := []int{1, 2, 3}
	if fmt.Sprint(evicted) != fmt.Sprint(want) {
		t.Errorf("evicted %v, want %v", evicted, want)
	}
	if c.Used() > c.LowWater() {
		t.Errorf("Used() = %d after eviction, want <= low water %d", c.Used(), c.LowWater())
	}
	if !c.Contains(0) || !c.Contains(10) {
		t.Error("recently used and newly inserted entries must survive")
	}
}

func TestMemoryBudgetInvariant(t *testing.T) {
	c := New[int, blob](1000)
	sizes := []blob{7, 130, 55, 999, 1, 400, 250, 250, 250, 12, 600, 3}

	for i := 0; i < 200; i++ {
		c.Put(i%37, sizes[i%len(sizes)])
		if c.Used() > c.Capacity() {
			t.Fatalf("after insert %d: Used() = %d > Capacity() = %d", i, c.Used(), c.Capacity())
		}
	}
}

func TestMemoryRejectsOversized(t *testing.T) {
	c := New[string, blob](50)
	c.Put("small", 5)

	if c.Put("huge", 51) {
		t.Error("Put() accepted a value larger than the capacity")
	}
	if !c.Contains("small") || c.Len() != 1 {
		t.Error("rejected Put() must not evict anything")
	}
}

func TestMemoryReplace(t *testing.T) {
	c := New[string, blob](100)
	notified := 0
	c.AddListener(func(string, blob) { notified++ })

	c.Put("a", 10)
	c.Put("a", 30)

	if c.Used() != 30 || c.Len() != 1 {
		t.Errorf("Used()/Len() = %d/%d, want 30/1", c.Used(), c.Len())
	}
	if notified != 0 {
		t.Errorf("replacement notified listeners %d times, want 0", notified)
	}
}

func TestMemoryRemoveAndClear(t *testing.T) {
	c := New[string, blob](100)
	var removed []string
	c.AddListener(func(k string, _ blob) { removed = append(removed, k) })

	c.Put("a", 1)
	c.Put("b", 2)
	c.Put("c", 3)

	if !c.Remove("b") || c.Remove("b") {
		t.Error("Remove() should report residency")
	}
	c.Clear()

	if c.Len() != 0 || c.Used() != 0 {
		t.Errorf("after Clear() Len()/Used() = %d/%d", c.Len(), c.Used())
	}
	if fmt.Sprint(removed) != "[b a c]" {
		t.Errorf("removed %v, want [b a c] (explicit, then oldest first)", removed)
	}
}

func TestMemorySetCapacityShrinks(t *testing.T) {
	c := New[int, blob](100)
	for i := 0; i < 10; i++ {
		c.Put(i, 10)
	}
	c.SetCapacity(50)

	if c.Capacity() != 50 || c.LowWater() != 40 {
		t.Errorf("Capacity()/LowWater() = %d/%d, want 50/40", c.Capacity(), c.LowWater())
	}
	if c.Used() > 40 {
		t.Errorf("Used() = %d after shrink, want <= 40", c.Used())
	}
	if !c.Contains(9) || c.Contains(0) {
		t.Error("shrink should evict the oldest entries")
	}
}

func TestMemoryConcurrent(t *testing.T) {
	c := New[int, blob](4096)
	var wg sync.WaitGroup

	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 500; i++ {
				k := (g*500 + i) % 300
				c.Put(k, blob(1+k%64))
				c.Get(k)
			}
		}(g)
	}
	wg.Wait()

	if c.Used() > c.Capacity() {
		t.Errorf("Used() = %d > Capacity() = %d", c.Used(), c.Capacity())
	}
}

func TestMemoryRange(t *testing.T) {
	c := New[string, blob](100)
	c.Put("a", 1)
	c.Put("b", 1)
	c.Put("c", 1)
	c.Get("a")

	var got []string
	c.Range(func(k string, _ blob) bool {
		got = append(got, k)
		return true
	})
	want := []string{"a", "c", "b"}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Range() order = %v, want %v", got, want)
	}

	n := 0
	c.Range(func(string, blob) bool {
		n++
		return false
	})
	if n != 1 {
		t.Errorf("Range() visited %d entries after stop, want 1", n)
	}
}
