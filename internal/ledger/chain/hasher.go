package chain

import (
	"crypto/sha256"
	"encoding/binary"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
)

// GenesisHash is the previous_hash of block 0.
var GenesisHash = make([]byte, domain.HashSize)

// Hash computes the block digest:
//
//	SHA-256( u64be(index) || i64be(unix_nanos) || u64be(len(payload)) || payload || previous_hash )
//
// Every field is fixed width or length prefixed so distinct blocks never
// share an encoding.
func Hash(index uint64, ts time.Time, payload, previousHash []byte) []byte {
	var hdr [24]byte
	binary.BigEndian.PutUint64(hdr[0:8], index)
	binary.BigEndian.PutUint64(hdr[8:16], uint64(ts.UnixNano()))
	binary.BigEndian.PutUint64(hdr[16:24], uint64(len(payload)))

	h := sha256.New()
	h.Write(hdr[:])
	h.Write(payload)
	h.Write(previousHash)
	return h.Sum(nil)
}

// HashBlock recomputes the digest of a stored block.
func HashBlock(b domain.Block) []byte {
	return Hash(b.Index, b.Timestamp, b.Payload, b.PreviousHash)
}
