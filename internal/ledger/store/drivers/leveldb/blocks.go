package leveldb

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store"
	"github.com/syndtr/goleveldb/leveldb/util"
)

type blockRecord struct {
	Index        uint64 `json:"index"`
	TimestampNs  int64  `json:"timestamp_ns"`
	Payload      []byte `json:"payload"`
	PreviousHash []byte `json:"previous_hash"`
	BlockHash    []byte `json:"block_hash"`
	Signature    []byte `json:"signature"`
	SignerKeyID  string `json:"signer_key_id"`
	RequestID    string `json:"request_id,omitempty"`
}

func blockKey(index uint64) []byte {
	return fmt.Appendf(nil, "%s%020d", prefixBlock, index)
}

func reqIDKey(id string) []byte {
	return []byte(prefixReqID + id)
}

type blocksRepo struct {
	kv   kv
	lock func() func()
}

func (r *blocksRepo) AppendBlock(ctx context.Context, b domain.Block) error {
	defer r.lock()()

	key := blockKey(b.Index)
	if ok, err := r.kv.Has(key, nil); err != nil {
		return err
	} else if ok {
		return fmt.Errorf("%w: block %d", store.ErrAlreadyExists, b.Index)
	}
	if b.RequestID != "" {
		if ok, err := r.kv.Has(reqIDKey(b.RequestID), nil); err != nil {
			return err
		} else if ok {
			return fmt.Errorf("%w: request id %s", store.ErrAlreadyExists, b.RequestID)
		}
	}

	val, err := json.Marshal(blockRecord{
		Index:        b.Index,
		TimestampNs:  b.Timestamp.UnixNano(),
		Payload:      b.Payload,
		PreviousHash: b.PreviousHash,
		BlockHash:    b.BlockHash,
		Signature:    b.Signature,
		SignerKeyID:  b.SignerKeyID,
		RequestID:    b.RequestID,
	})
	if err != nil {
		return err
	}

	if err := r.kv.Put(key, val, nil); err != nil {
		return err
	}
	if b.RequestID != "" {
		return r.kv.Put(reqIDKey(b.RequestID), strconv.AppendUint(nil, b.Index, 10), nil)
	}
	return nil
}

func (r *blocksRepo) GetBlock(ctx context.Context, index uint64) (domain.Block, error) {
	val, err := r.kv.Get(blockKey(index), nil)
	if err != nil {
		return domain.Block{}, mapNotFound(err)
	}
	return decodeBlock(val)
}

func (r *blocksRepo) GetBlockByRequestID(ctx context.Context, requestID string) (domain.Block, error) {
	val, err := r.kv.Get(reqIDKey(requestID), nil)
	if err != nil {
		return domain.Block{}, mapNotFound(err)
	}
	index, err := strconv.ParseUint(string(val), 10, 64)
	if err != nil {
		return domain.Block{}, fmt.Errorf("leveldb: corrupt request id index: %w", err)
	}
	return r.GetBlock(ctx, index)
}

func (r *blocksRepo) ListBlocks(ctx context.Context, start, end uint64) ([]domain.Block, error) {
	if start >= end {
		return nil, nil
	}
	it := r.kv.NewIterator(&util.Range{Start: blockKey(start), Limit: blockKey(end)}, nil)
	defer it.Release()

	var blocks []domain.Block
	for it.Next() {
		b, err := decodeBlock(it.Value())
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, it.Error()
}

func (r *blocksRepo) LastBlock(ctx context.Context) (domain.Block, error) {
	it := r.kv.NewIterator(util.BytesPrefix([]byte(prefixBlock)), nil)
	defer it.Release()

	if !it.Last() {
		if err := it.Error(); err != nil {
			return domain.Block{}, err
		}
		return domain.Block{}, store.ErrNotFound
	}
	return decodeBlock(it.Value())
}

func (r *blocksRepo) CountBlocks(ctx context.Context) (uint64, error) {
	it := r.kv.NewIterator(util.BytesPrefix([]byte(prefixBlock)), nil)
	defer it.Release()

	var n uint64
	for it.Next() {
		n++
	}
	return n, it.Error()
}

func decodeBlock(val []byte) (domain.Block, error) {
	var rec blockRecord
	if err := json.Unmarshal(val, &rec); err != nil {
		return domain.Block{}, fmt.Errorf("leveldb: decode block: %w", err)
	}
	return domain.Block{
		Index:        rec.Index,
		Timestamp:    time.Unix(0, rec.TimestampNs).UTC(),
		Payload:      rec.Payload,
		PreviousHash: rec.PreviousHash,
		BlockHash:    rec.BlockHash,
		Signature:    rec.Signature,
		SignerKeyID:  rec.SignerKeyID,
		RequestID:    rec.RequestID,
	}, nil
}
