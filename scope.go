package rig

// Releasable is anything holding an acquired side effect that can be let go.
// Release must be idempotent: releasing twice must not double-free or fail.
type Releasable interface {
	Release()
}

// ReleaseFunc adapts an idempotent function into a Releasable. Wrap functions
// that must run at most once with Once instead.
type ReleaseFunc func()

// Release implements Releasable.
func (f ReleaseFunc) Release() {
	if f != nil {
		f()
	}
}

// Once wraps fn into a Releasable that runs fn on the first Release only.
//
// Usage:
//
//	scope.Add(rig.Once(func() { delete(index, id) }))
func Once(fn func()) Releasable {
	return &onceRelease{fn: fn}
}

type onceRelease struct {
	fn func()
}

func (o *onceRelease) Release() {
	if fn := o.fn; fn != nil {
		o.fn = nil
		fn()
	}
}

// Scope is an ordered collection of Releasables that are torn down as a unit.
// Closing a scope releases its members in reverse acquisition order, so a
// later acquisition (an event subscription) is released while an earlier one
// (the proxy it refers to) is still alive. Scopes nest: a Scope is itself a
// Releasable.
//
// Adding to a closed scope releases the member immediately.
type Scope struct {
	members []Releasable
	closed  bool
}

// NewScope creates an empty scope.
func NewScope() *Scope {
	return &Scope{}
}

// Add stores r in the scope and returns it for chaining.
func (s *Scope) Add(r Releasable) Releasable {
	if r == nil {
		return nil
	}
	if s.closed {
		r.Release()
		return r
	}
	s.members = append(s.members, r)
	return r
}

// Keep is the typed variant of Scope.Add.
//
// Usage:
//
//	timer := rig.Keep(scope, clock.Every(0, 1, tick))
func Keep[T Releasable](s *Scope, r T) T {
	s.Add(r)
	return r
}

// Close releases every member exactly once, newest first, and marks the
// scope closed. Closing twice is a no-op.
func (s *Scope) Close() {
	if s.closed {
		return
	}
	s.closed = true

	// Members added while closing are released by Add directly.
	members := s.members
	s.members = nil
	for i := len(members) - 1; i >= 0; i-- {
		members[i].Release()
	}
}

// Release implements Releasable.
func (s *Scope) Release() { s.Close() }

// Closed reports whether the scope has been closed.
func (s *Scope) Closed() bool {
	return s.closed
}

// Len returns the number of live members.
func (s *Scope) Len() int {
	return len(s.members)
}
