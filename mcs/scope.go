package mcs

import (
	"sync/atomic"

	"github.com/joetucek/foedus-code/internal/xassert"
)

// LockScope acquires an ExclusiveLock and guarantees it is released
// exactly once, mirroring FOEDUS's McsLockScope RAII wrapper. Go has no
// destructors, so the guarantee instead comes from an idempotent
// Release the caller is expected to defer, plus a one-shot latch that
// makes a second Release (or a Release after MoveTo) a no-op rather
// than a double-unlock.
type LockScope struct {
	lock     *ExclusiveLock
	registry *Registry
	self     NodeID
	held     atomic.Bool
	released atomic.Bool
}

// NewLockScope constructs a scope over lock for self. If acquireNow is
// false, the scope is armed but unheld; a later call to Acquire
// engages it. If acquireNow is true, the scope acquires immediately:
// through the normal queueing protocol, or, if nonRacy is true, through
// InitialAcquire, for a caller that can guarantee the lock is
// uncontested (e.g. page initialization).
func NewLockScope(lock *ExclusiveLock, reg *Registry, self NodeID, acquireNow, nonRacy bool) *LockScope {
	s := &LockScope{lock: lock, registry: reg, self: self}
	if acquireNow {
		s.acquire(nonRacy)
	}
	return s
}

// Acquire engages a scope constructed with acquireNow=false.
func (s *LockScope) Acquire(nonRacy bool) {
	s.acquire(nonRacy)
}

func (s *LockScope) acquire(nonRacy bool) {
	xassert.True(!s.held.Load() || s.released.Load(), "mcs: Acquire called twice on the same LockScope without an intervening Release")
	if nonRacy {
		s.lock.InitialAcquire(s.registry, s.self)
	} else {
		s.lock.Acquire(s.registry, s.self)
	}
	s.held.Store(true)
	s.released.Store(false)
}

// Release releases the lock if this scope holds it and has not already
// released it or been moved from. Safe to call more than once, and
// safe to call on a scope that was never acquired.
func (s *LockScope) Release() {
	if s == nil || s.lock == nil {
		return
	}
	if s.released.CompareAndSwap(false, true) && s.held.Load() {
		s.lock.Release(s.registry, s.self)
	}
}

// MoveTo transfers ownership of the held lock to dst and leaves s
// empty, so that s.Release becomes a no-op. Mirrors the move
// constructor FOEDUS relies on since McsLockScope is not copyable.
func (s *LockScope) MoveTo(dst *LockScope) {
	dst.lock = s.lock
	dst.registry = s.registry
	dst.self = s.self
	dst.held.Store(s.held.Load())
	dst.released.Store(s.released.Load())

	s.lock = nil
	s.registry = nil
	s.self = NodeID{}
	s.held.Store(false)
	s.released.Store(true)
}

// RWLockScope is LockScope for ReaderWriterLock; it remembers which
// side (reader or writer) it acquired so Release calls the matching
// release method.
type RWLockScope struct {
	lock     *ReaderWriterLock
	registry *Registry
	self     NodeID
	writer   bool
	held     atomic.Bool
	released atomic.Bool
}

// NewReaderLockScope constructs a scope that acquires lock for reading
// on behalf of self. See NewLockScope for acquireNow and nonRacy.
func NewReaderLockScope(lock *ReaderWriterLock, reg *Registry, self NodeID, acquireNow, nonRacy bool) *RWLockScope {
	s := &RWLockScope{lock: lock, registry: reg, self: self, writer: false}
	if acquireNow {
		s.acquire(nonRacy)
	}
	return s
}

// NewWriterLockScope constructs a scope that acquires lock for writing
// on behalf of self. See NewLockScope for acquireNow and nonRacy.
func NewWriterLockScope(lock *ReaderWriterLock, reg *Registry, self NodeID, acquireNow, nonRacy bool) *RWLockScope {
	s := &RWLockScope{lock: lock, registry: reg, self: self, writer: true}
	if acquireNow {
		s.acquire(nonRacy)
	}
	return s
}

// Acquire engages a scope constructed with acquireNow=false.
func (s *RWLockScope) Acquire(nonRacy bool) {
	s.acquire(nonRacy)
}

func (s *RWLockScope) acquire(nonRacy bool) {
	xassert.True(!s.held.Load() || s.released.Load(), "mcs: Acquire called twice on the same RWLockScope without an intervening Release")
	switch {
	case s.writer && nonRacy:
		s.lock.WriterInitialAcquire(s.registry, s.self)
	case s.writer:
		s.lock.WriterAcquire(s.registry, s.self)
	case nonRacy:
		s.lock.ReaderInitialAcquire(s.registry, s.self)
	default:
		s.lock.ReaderAcquire(s.registry, s.self)
	}
	s.held.Store(true)
	s.released.Store(false)
}

// Release releases the lock if this scope holds it and has not already
// released it or been moved from. Safe to call more than once.
func (s *RWLockScope) Release() {
	if s == nil || s.lock == nil {
		return
	}
	if s.released.CompareAndSwap(false, true) && s.held.Load() {
		if s.writer {
			s.lock.WriterRelease(s.registry, s.self)
		} else {
			s.lock.ReaderRelease(s.registry, s.self)
		}
	}
}

// MoveTo transfers ownership of the held lock to dst and leaves s
// empty, so that s.Release becomes a no-op.
func (s *RWLockScope) MoveTo(dst *RWLockScope) {
	dst.lock = s.lock
	dst.registry = s.registry
	dst.self = s.self
	dst.writer = s.writer
	dst.held.Store(s.held.Load())
	dst.released.Store(s.released.Load())

	s.lock = nil
	s.registry = nil
	s.self = NodeID{}
	s.held.Store(false)
	s.released.Store(true)
}

// OwnerlessLockScope is LockScope for the ownerless variant of
// ExclusiveLock, for callers with no per-thread node pool. It carries a
// locked_by_me boolean rather than a block index, since the ownerless
// variant has no node to identify.
type OwnerlessLockScope struct {
	lock     *ExclusiveLock
	released atomic.Bool
}

// NewOwnerlessLockScope acquires lock without a thread-local node.
func NewOwnerlessLockScope(lock *ExclusiveLock) *OwnerlessLockScope {
	lock.OwnerlessAcquire()
	return &OwnerlessLockScope{lock: lock}
}

// Release releases the lock if this scope has not already released it.
// Safe to call more than once.
func (s *OwnerlessLockScope) Release() {
	if s == nil || s.lock == nil {
		return
	}
	if s.released.CompareAndSwap(false, true) {
		s.lock.OwnerlessRelease()
	}
}
