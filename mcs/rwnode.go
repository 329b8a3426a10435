package mcs

import "sync/atomic"

type lockClass uint8

const (
	classNone   lockClass = 0
	classReader lockClass = 1
	classWriter lockClass = 2
)

// rwSelfState packs an RWNode's own class, its blocked flag, and its
// successor's class into one machine word, mirroring the self_ union
// of FOEDUS's McsRwBlock. Keeping all three in one word is what makes
// the reader-behind-reader race fix possible: linking a reader behind
// a waiting reader predecessor has to test "predecessor still blocked,
// no successor claimed yet" and claim the successor slot in a single
// atomic step. Splitting blocked and successor class into separate
// fields reopens the window where a predecessor unblocks between the
// two checks and never finds out it has a linked successor to grant.
type rwSelfState uint32

const (
	stateOwnClassShift       = 0
	stateBlockedShift        = 8
	stateSuccessorClassShift = 16
)

func packRWState(own lockClass, blocked bool, succ lockClass) rwSelfState {
	b := uint32(0)
	if blocked {
		b = 1
	}
	return rwSelfState(uint32(own)<<stateOwnClassShift | b<<stateBlockedShift | uint32(succ)<<stateSuccessorClassShift)
}

func (s rwSelfState) ownClass() lockClass {
	return lockClass(uint32(s) >> stateOwnClassShift & 0xFF)
}

func (s rwSelfState) blocked() bool {
	return uint32(s)>>stateBlockedShift&0xFF != 0
}

func (s rwSelfState) successorClass() lockClass {
	return lockClass(uint32(s) >> stateSuccessorClassShift & 0xFF)
}

// RWNode is one queue node in a ReaderWriterLock's waiter chain.
// Corresponds to FOEDUS's McsRwBlock: a packed self-state word plus a
// separately published successor identity, the latter only meaningful
// once state.successorClass() names a class.
type RWNode struct {
	state     atomic.Uint32 // packed rwSelfState
	successor atomic.Uint32 // packed NodeID, valid once successorClass != classNone
}

func (n *RWNode) reset(class lockClass) {
	n.state.Store(uint32(packRWState(class, true, classNone)))
	n.successor.Store(0)
}

func (n *RWNode) ownClass() lockClass {
	return rwSelfState(n.state.Load()).ownClass()
}

func (n *RWNode) isBlocked() bool {
	return rwSelfState(n.state.Load()).blocked()
}

// tryGrant clears the blocked bit and reports whether this call was
// the one that did it, preserving whatever successor class is current
// at the moment it wins. At most one caller ever sees true for a given
// grant, which is what lets acquire-time self-granting and
// release-time cascading race against each other safely: whichever one
// wins the CAS is the one that updates ReaderWriterLock.readersCount.
func (n *RWNode) tryGrant() bool {
	for {
		old := n.state.Load()
		s := rwSelfState(old)
		if !s.blocked() {
			return false
		}
		next := packRWState(s.ownClass(), false, s.successorClass())
		if n.state.CompareAndSwap(old, uint32(next)) {
			return true
		}
	}
}

// tryLinkReaderSuccessor claims the successor slot for a reader,
// succeeding only if n is still blocked and has no successor claimed
// yet. Callers must publish the successor's NodeID into n.successor
// before calling this, not after: by the time any other goroutine
// observes successorClass() == classReader here, this goroutine's
// earlier atomic store to successor is guaranteed visible, so a
// cascade that sees the class set can always find the pointer it
// names. Publishing in the other order can make a cascade observe the
// class before the pointer and stop without granting anyone.
func (n *RWNode) tryLinkReaderSuccessor() bool {
	old := n.state.Load()
	s := rwSelfState(old)
	if !s.blocked() || s.successorClass() != classNone {
		return false
	}
	next := packRWState(s.ownClass(), true, classReader)
	return n.state.CompareAndSwap(old, uint32(next))
}

// linkSuccessor unconditionally records that a node of the given class
// has linked behind n. Used when the arriving node is a writer (which
// never self-grants, so there is no race to close) and when n's own
// class is a writer (which never cascades to a successor on its own,
// so no CAS-guarded claim is needed either).
func (n *RWNode) linkSuccessor(class lockClass) {
	for {
		old := n.state.Load()
		s := rwSelfState(old)
		next := packRWState(s.ownClass(), s.blocked(), class)
		if n.state.CompareAndSwap(old, uint32(next)) {
			return
		}
	}
}

func (n *RWNode) successorClass() lockClass {
	return rwSelfState(n.state.Load()).successorClass()
}
