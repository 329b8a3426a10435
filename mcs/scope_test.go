package mcs

import "testing"

func TestLockScopeReleaseIsIdempotent(t *testing.T) {
	reg := newTestRegistry(1, 2)
	lock := &ExclusiveLock{}
	id, _ := reg.Allocate(0)

	scope := NewLockScope(lock, reg, id, true, false)
	if !lock.IsLocked() {
		t.Fatal("lock not held after NewLockScope")
	}
	scope.Release()
	if lock.IsLocked() {
		t.Fatal("lock still held after Release")
	}
	scope.Release() // must not double-unlock, must not panic
}

func TestLockScopeMoveTo(t *testing.T) {
	reg := newTestRegistry(1, 2)
	lock := &ExclusiveLock{}
	id, _ := reg.Allocate(0)

	src := NewLockScope(lock, reg, id, true, false)
	var dst LockScope
	src.MoveTo(&dst)

	src.Release() // no-op: ownership moved away
	if !lock.IsLocked() {
		t.Fatal("moved-to scope lost the held lock")
	}
	dst.Release()
	if lock.IsLocked() {
		t.Fatal("lock still held after dst.Release")
	}
}

func TestLockScopeDeferredAcquire(t *testing.T) {
	reg := newTestRegistry(1, 2)
	lock := &ExclusiveLock{}
	id, _ := reg.Allocate(0)

	scope := NewLockScope(lock, reg, id, false, false)
	if lock.IsLocked() {
		t.Fatal("lock held before Acquire was ever called")
	}
	scope.Acquire(false)
	if !lock.IsLocked() {
		t.Fatal("lock not held after deferred Acquire")
	}
	scope.Release()
	if lock.IsLocked() {
		t.Fatal("lock still held after Release")
	}
}

func TestLockScopeNonRacyAcquire(t *testing.T) {
	reg := newTestRegistry(1, 2)
	lock := &ExclusiveLock{}
	id, _ := reg.Allocate(0)

	scope := NewLockScope(lock, reg, id, true, true)
	if !lock.IsLocked() {
		t.Fatal("lock not held after non-racy NewLockScope")
	}
	scope.Release()
	if lock.IsLocked() {
		t.Fatal("lock still held after Release")
	}
}

func TestRWLockScopeReleasesMatchingSide(t *testing.T) {
	reg := newTestRegistry(1, 2)
	lock := &ReaderWriterLock{}
	id, _ := reg.AllocateRW(0)

	scope := NewWriterLockScope(lock, reg, id, true, false)
	if !lock.IsLocked() {
		t.Fatal("lock not held after NewWriterLockScope")
	}
	scope.Release()
	if lock.IsLocked() {
		t.Fatal("lock still held after writer Release")
	}
}

func TestRWLockScopeDeferredAcquire(t *testing.T) {
	reg := newTestRegistry(1, 2)
	lock := &ReaderWriterLock{}
	id, _ := reg.AllocateRW(0)

	scope := NewReaderLockScope(lock, reg, id, false, false)
	if lock.IsLocked() {
		t.Fatal("lock held before Acquire was ever called")
	}
	scope.Acquire(false)
	if !lock.IsLocked() {
		t.Fatal("lock not held after deferred reader Acquire")
	}
	scope.Release()
	if lock.IsLocked() {
		t.Fatal("lock still held after Release")
	}
}

func TestRWLockScopeNonRacyWriterAcquire(t *testing.T) {
	reg := newTestRegistry(1, 2)
	lock := &ReaderWriterLock{}
	id, _ := reg.AllocateRW(0)

	scope := NewWriterLockScope(lock, reg, id, true, true)
	if !lock.IsLocked() {
		t.Fatal("lock not held after non-racy NewWriterLockScope")
	}
	scope.Release()
	if lock.IsLocked() {
		t.Fatal("lock still held after Release")
	}
}

func TestOwnerlessLockScope(t *testing.T) {
	lock := &ExclusiveLock{}
	scope := NewOwnerlessLockScope(lock)
	if !lock.IsLocked() {
		t.Fatal("lock not held after NewOwnerlessLockScope")
	}
	scope.Release()
	if lock.IsLocked() {
		t.Fatal("lock still held after Release")
	}
	scope.Release()
}
