package domain

import "time"

// HashSize is the digest length of block hashes (SHA-256).
const HashSize = 32

// Block is a single append-only, hash-linked, signed ledger entry.
// Blocks are never mutated once appended.
type Block struct {
	Index        uint64
	Timestamp    time.Time // UTC, set by the ledger at append time
	Payload      []byte
	PreviousHash []byte // HashSize bytes; all zero for genesis
	BlockHash    []byte // digest over (index, timestamp, payload, previous_hash)
	Signature    []byte // signature over BlockHash
	SignerKeyID  string
	RequestID    string // optional client idempotency key, not hashed
}

// Head is the current tip of the chain.
type Head struct {
	Index     int64 // -1 for an empty chain
	BlockHash []byte
	Timestamp time.Time
}

// Empty reports whether the head describes an empty chain.
func (h Head) Empty() bool { return h.Index < 0 }

// Length is the number of blocks in the chain.
func (h Head) Length() uint64 {
	if h.Index < 0 {
		return 0
	}
	return uint64(h.Index) + 1
}

// TrailInfo summarises the chain for dashboards.
type TrailInfo struct {
	BlockCount     uint64
	HeadHash       []byte
	FirstBlockTime *time.Time
	LastBlockTime  *time.Time
}
