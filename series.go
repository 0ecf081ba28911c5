package rig

import "fmt"

// Series describes a scripted sequence of callbacks as "wait N ticks, then run"
// steps and commits them to a Clock as one abortable unit.
//
// Usage:
//
//	s := rig.NewSeries(clock)
//	s.Advance(5)
//	s.At(playSound)
//	s.Advance(3)
//	s.At(removeProp)
//	scope.Add(s.Commit())
type Series struct {
	clock  *Clock
	offset int
	steps  []seriesStep
}

type seriesStep struct {
	offset int
	fn     func()
}

// NewSeries creates a series whose offsets are relative to the tick Commit is
// called on.
func NewSeries(c *Clock) *Series {
	return &Series{clock: c}
}

// Advance moves the running offset forward by ticks without scheduling
// anything. Negative values panic.
func (s *Series) Advance(ticks int) *Series {
	if ticks < 0 {
		panic(fmt.Sprintf("rig: negative series advance %d", ticks))
	}
	s.offset += ticks
	return s
}

// At records fn as a step at the current offset. Steps sharing an offset run in
// the order they were recorded.
func (s *Series) At(fn func()) *Series {
	if fn == nil {
		panic("rig: nil series step")
	}
	s.steps = append(s.steps, seriesStep{offset: s.offset, fn: fn})
	return s
}

// Offset returns the running offset.
func (s *Series) Offset() int {
	return s.offset
}

// Commit schedules every recorded step with the clock and returns a Scope
// holding their timers. Closing the scope aborts the remaining steps.
func (s *Series) Commit() *Scope {
	scope := NewScope()
	for _, step := range s.steps {
		scope.Add(s.clock.After(step.offset, step.fn))
	}
	return scope
}
