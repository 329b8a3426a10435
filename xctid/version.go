package xctid

import (
	"sync/atomic"

	"github.com/joetucek/foedus-code/internal/xassert"
)

// VersionStamp packs an Epoch, a 24-bit ordinal, and four status flags
// into a single 64-bit word: bit 63 deleted, bit 62 moved, bit 61
// being_written, bit 60 next_layer, bits 32-59 the 28-bit epoch, bits
// 0-31 the ordinal (whose top 8 bits must always be zero).
type VersionStamp struct {
	word uint64
}

const (
	flagDeleted      = uint64(1) << 63
	flagMoved        = uint64(1) << 62
	flagBeingWritten = uint64(1) << 61
	flagNextLayer    = uint64(1) << 60

	versionEpochShift = 32
	versionEpochMask  = uint64(epochMask)

	// MaxOrdinal is the largest ordinal a VersionStamp can hold; the top
	// 8 bits of the 32-bit ordinal field must always be zero.
	MaxOrdinal         = uint32(1)<<24 - 1
	versionOrdinalMask = uint64(MaxOrdinal)
)

// NewVersionStamp builds a VersionStamp with the given epoch and
// ordinal and no status flags set.
func NewVersionStamp(epoch Epoch, ordinal uint32) VersionStamp {
	xassert.True(ordinal <= MaxOrdinal, "xctid: ordinal %d exceeds MaxOrdinal", ordinal)
	return VersionStamp{
		word: (uint64(epoch)&versionEpochMask)<<versionEpochShift | (uint64(ordinal) & versionOrdinalMask),
	}
}

// VersionStampFromBits reinterprets a raw 64-bit word as a
// VersionStamp, for decoding a persisted or transmitted value.
func VersionStampFromBits(word uint64) VersionStamp {
	return VersionStamp{word: word}
}

// Bits returns the raw 64-bit encoding of v.
func (v VersionStamp) Bits() uint64 {
	return v.word
}

// Epoch returns the epoch component of v.
func (v VersionStamp) Epoch() Epoch {
	return Epoch((v.word >> versionEpochShift) & versionEpochMask)
}

// SetEpoch replaces v's epoch component in place.
func (v *VersionStamp) SetEpoch(e Epoch) {
	xassert.True(uint32(e) <= epochMask, "xctid: epoch %d exceeds the 28-bit epoch range", uint32(e))
	v.word = (v.word &^ (versionEpochMask << versionEpochShift)) | (uint64(e)&versionEpochMask)<<versionEpochShift
}

// Ordinal returns the ordinal component of v.
func (v VersionStamp) Ordinal() uint32 {
	return uint32(v.word & versionOrdinalMask)
}

// SetOrdinal replaces v's ordinal component in place.
func (v *VersionStamp) SetOrdinal(ordinal uint32) {
	xassert.True(ordinal <= MaxOrdinal, "xctid: ordinal %d exceeds MaxOrdinal", ordinal)
	v.word = (v.word &^ versionOrdinalMask) | (uint64(ordinal) & versionOrdinalMask)
}

// IncrementOrdinal bumps v's ordinal by one in place.
func (v *VersionStamp) IncrementOrdinal() {
	v.SetOrdinal(v.Ordinal() + 1)
}

// IsValid reports whether v carries a real (non-zero) epoch.
func (v VersionStamp) IsValid() bool {
	return v.Epoch().IsValid()
}

// IsDeleted reports whether the deleted flag is set.
func (v VersionStamp) IsDeleted() bool { return v.word&flagDeleted != 0 }

// SetDeleted sets or clears the deleted flag in place.
func (v *VersionStamp) SetDeleted(b bool) { v.setFlag(flagDeleted, b) }

// IsMoved reports whether the moved flag is set.
func (v VersionStamp) IsMoved() bool { return v.word&flagMoved != 0 }

// SetMoved sets or clears the moved flag in place.
func (v *VersionStamp) SetMoved(b bool) { v.setFlag(flagMoved, b) }

// IsBeingWritten reports whether the being_written flag is set.
func (v VersionStamp) IsBeingWritten() bool { return v.word&flagBeingWritten != 0 }

// SetBeingWritten sets or clears the being_written flag in place.
func (v *VersionStamp) SetBeingWritten(b bool) { v.setFlag(flagBeingWritten, b) }

// IsNextLayer reports whether the next_layer flag is set.
func (v VersionStamp) IsNextLayer() bool { return v.word&flagNextLayer != 0 }

// SetNextLayer sets or clears the next_layer flag in place. Setting it
// additionally clears deleted: a record that has moved to the next
// layer of its index was never actually deleted in place.
func (v *VersionStamp) SetNextLayer(b bool) {
	v.setFlag(flagNextLayer, b)
	if b {
		v.setFlag(flagDeleted, false)
	}
}

func (v *VersionStamp) setFlag(mask uint64, b bool) {
	if b {
		v.word |= mask
	} else {
		v.word &^= mask
	}
}

// Compare orders v against other by (epoch, ordinal), ignoring status
// flags, honoring Epoch's wrap-around rule. It returns a negative
// number if v is before other, zero if they name the same point, and a
// positive number if v is after other. Both operands must carry a
// valid (non-zero) epoch; Before, not Compare, is the safe entry point
// when either side might be invalid.
func (v VersionStamp) Compare(other VersionStamp) int {
	xassert.True(v.IsValid() && other.IsValid(), "xctid: Compare called with an invalid operand: %#x, %#x", v.word, other.word)
	if v.Epoch() != other.Epoch() {
		if v.Epoch().Before(other.Epoch()) {
			return -1
		}
		return 1
	}
	switch {
	case v.Ordinal() < other.Ordinal():
		return -1
	case v.Ordinal() > other.Ordinal():
		return 1
	default:
		return 0
	}
}

// Before reports whether v orders strictly before other by (epoch,
// ordinal). An invalid v is before everything; a valid v is never
// before an invalid other. Only once both are known valid does Before
// fall through to Compare, so callers never need to check validity
// themselves before calling it.
func (v VersionStamp) Before(other VersionStamp) bool {
	if !v.IsValid() {
		return true
	}
	if !other.IsValid() {
		return false
	}
	return v.Compare(other) < 0
}

// StoreMax replaces v in place with other if other is valid and orders
// after v by (epoch, ordinal); otherwise v is left unchanged. Used to
// advance a watermark to the greatest version observed so far, and
// never lets an invalid stamp overwrite a valid one.
func (v *VersionStamp) StoreMax(other VersionStamp) {
	if other.IsValid() && v.Before(other) {
		*v = other
	}
}

// ClearStatusBits returns a copy of v with all four status flags
// cleared, the shape a VersionStamp takes when persisted: locks and
// transient flags never survive a snapshot.
func (v VersionStamp) ClearStatusBits() VersionStamp {
	return VersionStamp{word: v.word &^ (flagDeleted | flagMoved | flagBeingWritten | flagNextLayer)}
}

// AtomicLoad reads v with a single atomic 64-bit load, safe to call
// concurrently with AtomicStore without holding v's record's lock.
func (v *VersionStamp) AtomicLoad() VersionStamp {
	return VersionStamp{word: atomic.LoadUint64(&v.word)}
}

// AtomicStore installs next into v with a single atomic 64-bit store,
// so a concurrent lock-free reader of v never observes a torn mix of
// an old epoch/ordinal and new status flags or vice versa. Used at the
// moment a write is published: every other mutator in this type
// assumes the caller already holds the record's lock and leaves
// atomicity to that lock instead.
func (v *VersionStamp) AtomicStore(next VersionStamp) {
	atomic.StoreUint64(&v.word, next.word)
}

// EqualBits reports whether v and other have identical raw encodings,
// including status flags. Compare, not EqualBits, is almost always the
// right choice for transaction ordering.
func (v VersionStamp) EqualBits(other VersionStamp) bool {
	return v.word == other.word
}
