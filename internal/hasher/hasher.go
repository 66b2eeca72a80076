// Package hasher produces short content hashes for the run report, so a
// reviewer can tell whether a re-render actually changed an output.
package hasher

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/cespare/xxhash/v2"
)

// ContentHash returns the xxHash64 of data as a 16-char hex string.
// 64 bits is collision-safe for any realistic render count.
func ContentHash(data []byte) string {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], xxhash.Sum64(data))
	return hex.EncodeToString(b[:])
}
