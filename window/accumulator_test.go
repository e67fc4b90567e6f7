package window

import "testing"

func seq(start, n int) []float32 {
	s := make([]float32, n)
	for i := range s {
		s[i] = float32(start + i)
	}
	return s
}

func TestAccumulatorNotReadyBeforeCapacity(t *testing.T) {
	a, err := NewAccumulator(100, 0.5)
	if err != nil {
		t.Fatalf("NewAccumulator: %v", err)
	}

	a.Push(seq(0, 99))
	if _, ok := a.Drain(); ok {
		t.Fatal("Drain succeeded below capacity")
	}
	if a.Len() != 99 {
		t.Errorf("Len = %d, want 99", a.Len())
	}
}

func TestAccumulatorTailOverlapInvariant(t *testing.T) {
	const capacity = 100
	const overlap = 0.5
	a, err := NewAccumulator(capacity, overlap)
	if err != nil {
		t.Fatalf("NewAccumulator: %v", err)
	}

	a.Push(seq(0, 120))

	win, ok := a.Drain()
	if !ok {
		t.Fatal("Drain failed at capacity")
	}
	if len(win) != capacity {
		t.Fatalf("window length = %d, want %d", len(win), capacity)
	}
	for i := range win {
		if win[i] != float32(i) {
			t.Fatalf("window[%d] = %v, want %v", i, win[i], float32(i))
		}
	}

	// Retained buffer: trailing floor(capacity*overlap) samples of the
	// window, then the 20 samples that arrived past it.
	retain := int(capacity * overlap)
	if a.Len() != retain+20 {
		t.Fatalf("retained length = %d, want %d", a.Len(), retain+20)
	}

	a.Push(seq(120, capacity)) // enough to complete the next window
	next, ok := a.Drain()
	if !ok {
		t.Fatal("second Drain failed")
	}
	// Next window must start at the overlap tail of the first.
	for i := 0; i < retain; i++ {
		if next[i] != float32(capacity-retain+i) {
			t.Fatalf("next[%d] = %v, want %v", i, next[i], float32(capacity-retain+i))
		}
	}
}

func TestAccumulatorZeroOverlap(t *testing.T) {
	a, err := NewAccumulator(10, 0)
	if err != nil {
		t.Fatalf("NewAccumulator: %v", err)
	}

	a.Push(seq(0, 10))
	if _, ok := a.Drain(); !ok {
		t.Fatal("Drain failed")
	}
	if a.Len() != 0 {
		t.Errorf("retained %d samples with zero overlap, want 0", a.Len())
	}
}

func TestAccumulatorReset(t *testing.T) {
	a, err := NewAccumulator(10, 0.5)
	if err != nil {
		t.Fatalf("NewAccumulator: %v", err)
	}
	a.Push(seq(0, 7))
	a.Reset()
	if a.Len() != 0 {
		t.Errorf("Len after Reset = %d, want 0", a.Len())
	}
}

func TestAccumulatorRejectsBadConfig(t *testing.T) {
	if _, err := NewAccumulator(0, 0.5); err == nil {
		t.Error("zero capacity accepted")
	}
	if _, err := NewAccumulator(10, 1.0); err == nil {
		t.Error("overlap 1.0 accepted")
	}
	if _, err := NewAccumulator(10, -0.1); err == nil {
		t.Error("negative overlap accepted")
	}
}
