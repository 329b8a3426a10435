package mcs

import (
	"runtime"
	"sync/atomic"
)

// ReaderWriterLock is a fair, queue-based reader-writer spinlock:
// FOEDUS's McsRwLock. Waiters queue in arrival order exactly as in
// ExclusiveLock, with one addition: a reader whose immediate
// predecessor is an already granted reader joins that predecessor's
// cohort immediately instead of waiting its turn, so a run of readers
// queued back to back are all granted together rather than one at a time.
// A writer grants itself only when it finds the queue empty and no
// reader still active; otherwise it waits for an explicit release.
//
// A reader that queues directly behind a waiting writer cannot tell,
// from its own predecessor link alone, whether it is the last reader a
// subsequent writer must wait for — siblings elsewhere in the same
// cohort may release before or after it. nextWriter and readersCount
// exist to resolve exactly that: the reader adjacent to a waiting
// writer records it in nextWriter, and the writer is only granted once
// readersCount, decremented by every releasing reader, reaches zero.
//
// tail and nextWriter each pack a NodeID rather than the bare
// ThreadID FOEDUS's next_writer_ field uses, because this port's
// Registry has no side channel for turning a ThreadID back into the
// block index that thread currently holds; see DESIGN.md.
//
// The zero value is a usable, unlocked lock.
type ReaderWriterLock struct {
	tail         atomic.Uint32
	nextWriter   atomic.Uint32
	readersCount atomic.Int64
}

// ReaderAcquire queues self as a reader and returns once self holds
// read access.
func (l *ReaderWriterLock) ReaderAcquire(reg *Registry, self NodeID) {
	node := reg.ResolveRW(self)
	node.reset(classReader)
	packedSelf := packNodeID(self)

	old := l.tail.Swap(packedSelf)
	if old == 0 {
		if node.tryGrant() {
			l.readersCount.Add(1)
		}
		return
	}

	pred := reg.ResolveRW(unpackNodeID(old))
	pred.successor.Store(packedSelf)

	if pred.ownClass() == classWriter {
		pred.linkSuccessor(classReader)
		for node.isBlocked() {
			runtime.Gosched()
		}
		return
	}

	if pred.tryLinkReaderSuccessor() {
		for node.isBlocked() {
			runtime.Gosched()
		}
		return
	}

	// The CAS above failed, which can only mean the predecessor already
	// unblocked itself between our tail swap and our attempt to link
	// (no other reader can race us for the same predecessor's successor
	// slot). Granting here instead of linking is the fix for exactly
	// that race: a predecessor that is already running will never check
	// its successor class again, so a reader that still tried to wait
	// on it would hang forever.
	if node.tryGrant() {
		l.readersCount.Add(1)
	}
}

// ReaderRelease releases read access held by self.
func (l *ReaderWriterLock) ReaderRelease(reg *Registry, self NodeID) {
	node := reg.ResolveRW(self)
	packedSelf := packNodeID(self)

	succ := node.successor.Load()
	if succ == 0 {
		if l.tail.CompareAndSwap(packedSelf, 0) {
			l.releaseReaderSlot(reg)
			return
		}
		for succ == 0 {
			runtime.Gosched()
			succ = node.successor.Load()
		}
	}

	succNode := reg.ResolveRW(unpackNodeID(succ))
	if succNode.ownClass() == classWriter {
		l.nextWriter.Store(succ)
	}
	// A reader successor, if any, is already granted by the time self
	// releases: it was either swept into self's own granting cascade, or
	// it self-granted independently upon finding self already active.
	l.releaseReaderSlot(reg)
}

func (l *ReaderWriterLock) releaseReaderSlot(reg *Registry) {
	if l.readersCount.Add(-1) != 0 {
		return
	}
	waiting := l.nextWriter.Swap(0)
	if waiting == 0 {
		return
	}
	reg.ResolveRW(unpackNodeID(waiting)).tryGrant()
}

// WriterAcquire queues self as a writer and returns once self holds
// exclusive access.
func (l *ReaderWriterLock) WriterAcquire(reg *Registry, self NodeID) {
	node := reg.ResolveRW(self)
	node.reset(classWriter)
	packedSelf := packNodeID(self)

	old := l.tail.Swap(packedSelf)
	if old == 0 {
		// Readers of a cohort whose tail already left the queue may still
		// hold the lock; wait for the last of them through nextWriter.
		l.nextWriter.Store(packedSelf)
		if l.readersCount.Load() == 0 && l.nextWriter.CompareAndSwap(packedSelf, 0) {
			node.tryGrant()
		}
	} else {
		pred := reg.ResolveRW(unpackNodeID(old))
		pred.successor.Store(packedSelf)
		pred.linkSuccessor(classWriter)
	}
	for node.isBlocked() {
		runtime.Gosched()
	}
}

// WriterRelease releases exclusive access held by self, granting the
// next waiter (a single writer, or a contiguous cohort of readers) in
// one call.
func (l *ReaderWriterLock) WriterRelease(reg *Registry, self NodeID) {
	node := reg.ResolveRW(self)
	packedSelf := packNodeID(self)

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
	l.unblockChain(reg, succ)
}

// unblockChain grants a single writer, or a contiguous run of readers,
// starting at the node named by packed. It stops at the first writer it
// grants, and stops cascading past any reader it finds already granted
// (that reader's own successors, if any, were already handled by
// whichever call granted it). A writer found further down a reader
// cohort is never granted here: it is deferred through nextWriter, the
// same mechanism ReaderRelease uses, and woken by releaseReaderSlot
// once the cohort it is waiting behind fully drains.
func (l *ReaderWriterLock) unblockChain(reg *Registry, packed uint32) {
	node := reg.ResolveRW(unpackNodeID(packed))
	if node.ownClass() == classWriter {
		node.tryGrant()
		return
	}
	for packed != 0 {
		node := reg.ResolveRW(unpackNodeID(packed))
		granted := node.tryGrant()
		if granted {
			l.readersCount.Add(1)
		}
		next := node.successor.Load()
		if next == 0 || !granted {
			return
		}
		if reg.ResolveRW(unpackNodeID(next)).ownClass() == classWriter {
			l.nextWriter.Store(next)
			return
		}
		packed = next
	}
}

// ReaderInitialAcquire sets self as a lone active reader directly,
// without going through the queueing protocol. Callers must guarantee
// the lock is uncontested, e.g. because the record it guards was just
// allocated and is not yet visible to any other thread.
func (l *ReaderWriterLock) ReaderInitialAcquire(reg *Registry, self NodeID) {
	node := reg.ResolveRW(self)
	node.reset(classReader)
	node.tryGrant()
	l.tail.Store(packNodeID(self))
	l.readersCount.Store(1)
}

// WriterInitialAcquire sets self as the lone active writer directly,
// without going through the queueing protocol. Same precondition as
// ReaderInitialAcquire.
func (l *ReaderWriterLock) WriterInitialAcquire(reg *Registry, self NodeID) {
	node := reg.ResolveRW(self)
	node.reset(classWriter)
	node.tryGrant()
	l.tail.Store(packNodeID(self))
}

// IsLocked reports whether any thread currently holds or is queued for
// this lock, as either a reader or a writer.
func (l *ReaderWriterLock) IsLocked() bool {
	return l.tail.Load() != 0 || l.readersCount.Load() != 0
}

// ReaderCount reports the number of readers currently holding the lock.
func (l *ReaderWriterLock) ReaderCount() int64 {
	return l.readersCount.Load()
}

// Reset restores the lock to its initial, unlocked state. Callers must
// guarantee no thread holds or is queued for the lock.
func (l *ReaderWriterLock) Reset() {
	l.tail.Store(0)
	l.nextWriter.Store(0)
	l.readersCount.Store(0)
}
