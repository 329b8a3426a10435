package mcs

import "sync/atomic"

// ExclusiveNode is one queue node in an ExclusiveLock's waiter chain.
// Corresponds to FOEDUS's McsBlock for the plain (non reader-writer)
// lock: a successor identity plus a flag the owner spins on.
type ExclusiveNode struct {
	waiting   atomic.Bool
	successor atomic.Uint32
}

func (n *ExclusiveNode) reset() {
	n.waiting.Store(true)
	n.successor.Store(0)
}

func (n *ExclusiveNode) grant() {
	n.waiting.Store(false)
}
