package util

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/google/uuid"
	"github.com/zeebo/blake3"
)

// Digest is a blake3-256 content hash
type Digest [32]byte

// Sum hashes parts in order; each part is length prefixed so that
// ("ab","c") and ("a","bc") differ.
func Sum(parts ...[]byte) Digest {
	h := blake3.New()
	var n [8]byte
	for _, p := range parts {
		binary.LittleEndian.PutUint64(n[:], uint64(len(p)))
		h.Write(n[:])
		h.Write(p)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// UUID derives a stable identifier from the first 16 bytes of the digest
func (d Digest) UUID() uuid.UUID {
	id, _ := uuid.FromBytes(d[:16])
	return id
}
