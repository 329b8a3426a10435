package mcs

import (
	"runtime"
	"sync/atomic"

	"github.com/joetucek/foedus-code/internal/xassert"
)

// ExclusiveLock is a FIFO, queue-based spinlock: FOEDUS's McsLock.
// Waiters queue in arrival order as ExclusiveNode entries addressed by
// NodeID; each waiter spins only on its own node's flag, never on the
// lock word itself, so contention never causes cache-line ping-pong on
// a single shared location the way a naive spinlock would.
//
// tail packs a NodeID into its low 32 bits; the upper 32 bits are
// reserved and stay zero. The ownerless variant stores GuestID in the
// low 32 bits instead of a NodeID, meaning "held by a guest with no
// node."
//
// The zero value is a usable, unlocked lock, matching sync.Mutex's
// zero-value-friendly style.
type ExclusiveLock struct {
	tail atomic.Uint64
}

func assertReservedBitsZero(v uint64) {
	xassert.True(v == 0 || v == uint64(GuestID) || v>>32 == 0,
		"mcs: exclusive lock tail %#x has nonzero reserved bits", v)
}

// Acquire queues self behind the current tail and spins until every
// predecessor has released. reg resolves self (and any predecessor) to
// its node.
func (l *ExclusiveLock) Acquire(reg *Registry, self NodeID) {
	node := reg.Resolve(self)
	node.reset()
	packedSelf := uint64(packNodeID(self))

	old := l.tail.Swap(packedSelf)
	assertReservedBitsZero(old)
	if old == 0 {
		node.grant()
		return
	}

	pred := reg.Resolve(unpackNodeID(uint32(old)))
	pred.successor.Store(uint32(packedSelf))
	for node.waiting.Load() {
		runtime.Gosched()
	}
}

// InitialAcquire sets the lock's owner directly, without going through
// the queueing protocol. Callers must guarantee no other thread can be
// concurrently acquiring or releasing this lock, e.g. because the
// record the lock guards was just allocated and is not yet visible to
// any other thread. Mirrors FOEDUS's McsLock::initial_lock.
func (l *ExclusiveLock) InitialAcquire(reg *Registry, self NodeID) {
	node := reg.Resolve(self)
	node.reset()
	node.grant()
	l.tail.Store(uint64(packNodeID(self)))
}

// Release hands the lock to self's successor, if one has queued, and
// otherwise marks the lock free. self must be the node that currently
// holds the lock.
func (l *ExclusiveLock) Release(reg *Registry, self NodeID) {
	node := reg.Resolve(self)
	xassert.True(!node.waiting.Load(), "mcs: Release(%+v) called on a node that was never granted", self)
	packedSelf := uint64(packNodeID(self))

	succ := node.successor.Load()
	if succ == 0 {
		if l.tail.CompareAndSwap(packedSelf, 0) {
			return
		}
		for succ == 0 {
			runtime.Gosched()
			succ = node.successor.Load()
		}
	}
	reg.Resolve(unpackNodeID(succ)).grant()
}

// IsLocked reports whether any thread currently holds or is queued for
// this lock.
func (l *ExclusiveLock) IsLocked() bool {
	v := l.tail.Load()
	assertReservedBitsZero(v)
	return v != 0
}

// OwnerlessAcquire spins until it wins exclusive ownership without
// going through a per-thread node pool, for callers that have none
// (FOEDUS's ownerless lock, identified by GuestID). Unlike Acquire,
// ownerless acquisition is not FIFO: concurrent ownerless acquirers are
// granted in an unspecified order.
func (l *ExclusiveLock) OwnerlessAcquire() {
	for !l.tail.CompareAndSwap(0, uint64(GuestID)) {
		runtime.Gosched()
	}
}

// OwnerlessRelease releases a lock acquired with OwnerlessAcquire.
func (l *ExclusiveLock) OwnerlessRelease() {
	l.tail.Store(0)
}

// Reset restores the lock to its initial, unlocked state. Callers must
// guarantee no thread holds or is queued for the lock.
func (l *ExclusiveLock) Reset() {
	l.tail.Store(0)
}
