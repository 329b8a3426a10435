package control

import (
	"fmt"
	"unsafe"

	"github.com/joetucek/foedus-code/mcs"
	"github.com/joetucek/foedus-code/xctid"
)

// ExclusiveControlWord pairs a plain exclusive lock with a version
// stamp, the control word FOEDUS calls LockableXctId.
type ExclusiveControlWord struct {
	Lock  mcs.ExclusiveLock
	Stamp xctid.VersionStamp
}

// IsLocked reports whether the word's lock is currently held or queued
// for.
func (w *ExclusiveControlWord) IsLocked() bool { return w.Lock.IsLocked() }

// IsDeleted reports whether the word's version stamp is marked deleted.
func (w *ExclusiveControlWord) IsDeleted() bool { return w.Stamp.IsDeleted() }

// IsMoved reports whether the word's version stamp is marked moved.
func (w *ExclusiveControlWord) IsMoved() bool { return w.Stamp.IsMoved() }

// IsBeingWritten reports whether the word's version stamp is marked
// being_written.
func (w *ExclusiveControlWord) IsBeingWritten() bool { return w.Stamp.IsBeingWritten() }

// IsNextLayer reports whether the word's version stamp is marked
// next_layer.
func (w *ExclusiveControlWord) IsNextLayer() bool { return w.Stamp.IsNextLayer() }

// NeedsTrackMoved reports whether a reader following this record must
// track it to its moved-to location: true if the record has moved, or
// has been pushed into the next layer of its index.
func (w *ExclusiveControlWord) NeedsTrackMoved() bool {
	return w.Stamp.IsMoved() || w.Stamp.IsNextLayer()
}

// Reset restores the word to its initial, unlocked state with a fresh
// version stamp. Callers must guarantee no thread holds or is queued
// for the lock; locks are never persisted, so a record loaded from
// storage always starts here.
func (w *ExclusiveControlWord) Reset(epoch xctid.Epoch, ordinal uint32) {
	w.Lock.Reset()
	w.Stamp = xctid.NewVersionStamp(epoch, ordinal)
}

// ReaderWriterControlWord pairs a fair reader-writer lock with a
// version stamp, the control word FOEDUS calls RwLockableXctId.
type ReaderWriterControlWord struct {
	Lock  mcs.ReaderWriterLock
	Stamp xctid.VersionStamp
}

// IsLocked reports whether the word's lock is currently held, as either
// a reader or a writer, or queued for.
func (w *ReaderWriterControlWord) IsLocked() bool { return w.Lock.IsLocked() }

// IsDeleted reports whether the word's version stamp is marked deleted.
func (w *ReaderWriterControlWord) IsDeleted() bool { return w.Stamp.IsDeleted() }

// IsMoved reports whether the word's version stamp is marked moved.
func (w *ReaderWriterControlWord) IsMoved() bool { return w.Stamp.IsMoved() }

// IsBeingWritten reports whether the word's version stamp is marked
// being_written.
func (w *ReaderWriterControlWord) IsBeingWritten() bool { return w.Stamp.IsBeingWritten() }

// IsNextLayer reports whether the word's version stamp is marked
// next_layer.
func (w *ReaderWriterControlWord) IsNextLayer() bool { return w.Stamp.IsNextLayer() }

// NeedsTrackMoved reports whether a reader following this record must
// track it to its moved-to location: true if the record has moved, or
// has been pushed into the next layer of its index.
func (w *ReaderWriterControlWord) NeedsTrackMoved() bool {
	return w.Stamp.IsMoved() || w.Stamp.IsNextLayer()
}

// Reset restores the word to its initial, unlocked state with a fresh
// version stamp.
func (w *ReaderWriterControlWord) Reset(epoch xctid.Epoch, ordinal uint32) {
	w.Lock.Reset()
	w.Stamp = xctid.NewVersionStamp(epoch, ordinal)
}

// The FOEDUS layouts this module is ported from run STATIC_SIZE_CHECK
// at compile time against their packed C++ structs. Go has no compile
// time equivalent for a struct built from sync/atomic fields, so this
// checks the nearest faithful substitute at package-init time: that
// neither control word has silently changed from its expected size.
func init() {
	if got, want := unsafe.Sizeof(ExclusiveControlWord{}), uintptr(16); got != want {
		panic(fmt.Sprintf("control: ExclusiveControlWord size = %d, want %d", got, want))
	}
	if got, want := unsafe.Sizeof(ReaderWriterControlWord{}), uintptr(24); got != want {
		panic(fmt.Sprintf("control: ReaderWriterControlWord size = %d, want %d", got, want))
	}
}
