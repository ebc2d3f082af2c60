// Package simtest provides deterministic random sources for tests.
package simtest

import "sync"

// Sequence replays fixed draws. When a list runs out its last value repeats;
// an empty Floats list yields 0 and an empty Ints list yields 0.
type Sequence struct {
	mu     sync.Mutex
	Floats []float64
	Ints   []int
	fi, ii int
}

func NewSequence(floats []float64, ints []int) *Sequence {
	return &Sequence{Floats: floats, Ints: ints}
}

// AlwaysSucceed draws 0 for every float, so every outcome succeeds and every
// delay is the minimum.
func AlwaysSucceed() *Sequence {
	return NewSequence([]float64{0}, []int{0})
}

// AlwaysFail draws just under 1 for every float.
func AlwaysFail() *Sequence {
	return NewSequence([]float64{0.999999}, []int{0})
}

func (s *Sequence) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Floats) == 0 {
		return 0
	}
	v := s.Floats[min(s.fi, len(s.Floats)-1)]
	s.fi++
	return v
}

func (s *Sequence) Intn(n int) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.Ints) == 0 || n <= 0 {
		return 0
	}
	v := s.Ints[min(s.ii, len(s.Ints)-1)]
	s.ii++
	return v % n
}
