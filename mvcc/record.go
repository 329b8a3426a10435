package mvcc

import (
	"github.com/joetucek/foedus-code/control"
	"github.com/joetucek/foedus-code/mcs"
	"github.com/joetucek/foedus-code/xctid"
)

// Record is a control word paired with a payload slice, typically
// carved out of a Page's backing buffer. Record never chains deltas or
// prior versions; each write mutates the payload in place under the
// header's lock, which is enough to exercise the lock and version-stamp
// contract without a write-ahead log behind it.
type Record struct {
	Header  control.ExclusiveControlWord
	Payload []byte
}

// NewRecord builds a fresh, unlocked Record over payload with an
// invalid (epoch zero) version stamp, per the module's lifecycle rule
// that control words start zeroed when their page is initialized: a
// Record that has never been published carries no real committed
// version for a concurrent reader to Compare or Before against.
func NewRecord(payload []byte) *Record {
	r := &Record{Payload: payload}
	r.Header.Reset(xctid.InvalidEpoch, 0)
	return r
}

// Publish runs the five-step publish protocol: acquire the exclusive
// lock, mark being_written, run mutate over the payload, install the
// new (epoch, ordinal) with a single atomic store that also clears
// being_written, then release the lock.
func (r *Record) Publish(reg *mcs.Registry, self mcs.NodeID, epoch xctid.Epoch, mutate func(payload []byte)) {
	r.Header.Lock.Acquire(reg, self)
	defer r.Header.Lock.Release(reg, self)

	marked := r.Header.Stamp
	marked.SetBeingWritten(true)
	r.Header.Stamp.AtomicStore(marked)
	mutate(r.Payload)

	next := r.Header.Stamp
	if next.Epoch() == epoch {
		next.IncrementOrdinal()
	} else {
		next.SetEpoch(epoch)
		next.SetOrdinal(1)
	}
	next.SetBeingWritten(false)
	r.Header.Stamp.AtomicStore(next)
}

// CurrentVersion returns a lock-free, atomic snapshot of the record's
// version stamp, suitable for an optimistic reader that will re-check
// it after copying out the payload.
func (r *Record) CurrentVersion() xctid.VersionStamp {
	return r.Header.Stamp.AtomicLoad()
}
