package recovery

import (
	"encoding/binary"
	"fmt"

	"github.com/joetucek/foedus-code/xctid"
)

// EncodedSize is the fixed width of a persisted version stamp.
const EncodedSize = 8

// Encode returns the persisted form of v: its status bits masked off,
// written as a little-endian 64-bit integer.
func Encode(v xctid.VersionStamp) []byte {
	buf := make([]byte, EncodedSize)
	binary.LittleEndian.PutUint64(buf, v.ClearStatusBits().Bits())
	return buf
}

// Decode reconstructs a VersionStamp from its persisted form. The
// result never has any status bit set, since persisted bytes never
// carry one.
func Decode(buf []byte) (xctid.VersionStamp, error) {
	if len(buf) != EncodedSize {
		return xctid.VersionStamp{}, fmt.Errorf("recovery: encoded version stamp must be %d bytes, got %d", EncodedSize, len(buf))
	}
	return xctid.VersionStampFromBits(binary.LittleEndian.Uint64(buf)), nil
}
