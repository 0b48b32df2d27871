package sway

import (
	"math"
	"sync"
	"testing"
)

func TestIDWireForm(t *testing.T) {
	id := ID{Owner: 7, Counter: 42}
	if got := IDFromUint64(id.Uint64()); got != id {
		t.Errorf("round trip = %v, want %v", got, id)
	}
	if id.Uint64() != 7<<32|42 {
		t.Errorf("Uint64 = %x", id.Uint64())
	}
	if id.Route() != 7 {
		t.Errorf("Route = %d, want 7", id.Route())
	}
	if !(ID{}).IsZero() || id.IsZero() {
		t.Error("IsZero wrong")
	}
}

func TestIDLess(t *testing.T) {
	tests := []struct {
		a, b ID
		want bool
	}{
		{ID{1, 5}, ID{2, 1}, true},
		{ID{2, 1}, ID{1, 5}, false},
		{ID{1, 1}, ID{1, 2}, true},
		{ID{1, 2}, ID{1, 2}, false},
	}
	for _, tt := range tests {
		if got := tt.a.Less(tt.b); got != tt.want {
			t.Errorf("%v.Less(%v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestIDGeneratorSequence(t *testing.T) {
	g := NewIDGenerator(3)
	if g.Owner() != 3 {
		t.Errorf("Owner = %d", g.Owner())
	}
	for want := uint32(1); want <= 3; want++ {
		if got := g.Next(); got != (ID{3, want}) {
			t.Errorf("Next = %v, want 3:%d", got, want)
		}
	}
}

func TestIDGeneratorWraps(t *testing.T) {
	g := NewIDGenerator(1)
	g.reset(math.MaxUint32 - 1)
	if got := g.Next(); got.Counter != math.MaxUint32 {
		t.Fatalf("Next = %v, want counter MaxUint32", got)
	}
	if got := g.Next(); got.Counter != 1 {
		t.Errorf("after overflow Next = %v, want counter 1", got)
	}
}

func TestIDGeneratorConcurrent(t *testing.T) {
	g := NewIDGenerator(1)
	const workers, each = 8, 500
	var mu sync.Mutex
	seen := make(map[ID]bool, workers*each)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ids := make([]ID, each)
			for i := range ids {
				ids[i] = g.Next()
			}
			mu.Lock()
			for _, id := range ids {
				seen[id] = true
			}
			mu.Unlock()
		}()
	}
	wg.Wait()
	if len(seen) != workers*each {
		t.Errorf("unique ids = %d, want %d", len(seen), workers*each)
	}
}
