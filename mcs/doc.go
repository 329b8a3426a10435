// Package mcs implements the Mellor-Crummey/Scott queue-based spinlock
// protocol used to serialize access to a record's control word: a
// FIFO exclusive lock and a fair reader-writer lock, both built on
// preallocated per-thread queue nodes addressed by (ThreadID, BlockIndex)
// rather than raw pointers, plus the bookkeeping (NodePool, Registry) and
// scoped-acquisition helpers needed to use them safely.
//
// Nodes are identified by (ThreadID, BlockIndex) instead of pointers so a
// lock word never needs to hold process-local memory addresses; resolving
// an identity to the node it names always goes through a Registry. This
// mirrors a design built for cross-process shared memory, kept here even
// though a single Go process could use pointers directly, because the
// rest of this module's control words are specified in exactly this
// packed-identity shape.
//
// Every lock in this package is acquired by spinning, never by blocking
// on a channel or a sync.Mutex; callers that need to bound spin time
// should use a context-aware caller above this package, since none of
// the Acquire methods here take a context.Context.
package mcs
