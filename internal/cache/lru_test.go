package cache

import "testing"

func TestLRU_EvictsLeastRecent(t *testing.T) {
	c := New[string, int](2)
	c.Add("a", 1)
	c.Add("b", 2)
	if _, ok := c.Get("a"); !ok { // a becomes MRU
		t.Fatal("a missing")
	}
	c.Add("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Fatalf("a = %v, %v", v, ok)
	}
	if c.Len() != 2 {
		t.Fatalf("len = %d", c.Len())
	}
}

func TestLRU_GetOrAdd(t *testing.T) {
	c := New[string, *int](4)
	calls := 0
	mk := func() *int { calls++; n := calls; return &n }

	first := c.GetOrAdd("ip", mk)
	second := c.GetOrAdd("ip", mk)
	if first != second || calls != 1 {
		t.Fatalf("GetOrAdd built %d values", calls)
	}
}

func TestNew_PanicsOnZeroCapacity(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic")
		}
	}()
	New[int, int](0)
}
