package sqlite

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
	"github.com/aussiebroadwan/aegis/internal/ledger/store/drivers/sqlite/gen"
)

type blocksRepo struct {
	q *gen.Queries
}

func (r *blocksRepo) AppendBlock(ctx context.Context, b domain.Block) error {
	if b.Index > math.MaxInt64 {
		return fmt.Errorf("sqlite: block index %d overflows", b.Index)
	}
	payload := b.Payload
	if payload == nil {
		// A nil slice binds as NULL; the column wants an empty blob.
		payload = []byte{}
	}
	err := r.q.InsertBlock(ctx, gen.InsertBlockParams{
		Idx:          int64(b.Index),
		TimestampNs:  b.Timestamp.UnixNano(),
		Payload:      payload,
		PreviousHash: b.PreviousHash,
		BlockHash:    b.BlockHash,
		Signature:    b.Signature,
		SignerKeyID:  b.SignerKeyID,
		RequestID:    mapStringNull(b.RequestID),
	})
	return mapConstraint(err)
}

func (r *blocksRepo) GetBlock(ctx context.Context, index uint64) (domain.Block, error) {
	row, err := r.q.GetBlock(ctx, int64(index))
	if err != nil {
		return domain.Block{}, mapNotFound(err)
	}
	return mapBlock(row), nil
}

func (r *blocksRepo) GetBlockByRequestID(ctx context.Context, requestID string) (domain.Block, error) {
	row, err := r.q.GetBlockByRequestID(ctx, mapStringNull(requestID))
	if err != nil {
		return domain.Block{}, mapNotFound(err)
	}
	return mapBlock(row), nil
}

func (r *blocksRepo) ListBlocks(ctx context.Context, start, end uint64) ([]domain.Block, error) {
	rows, err := r.q.ListBlocks(ctx, gen.ListBlocksParams{Start: int64(start), End: int64(end)})
	if err != nil {
		return nil, err
	}

	blocks := make([]domain.Block, len(rows))
	for i, row := range rows {
		blocks[i] = mapBlock(row)
	}
	return blocks, nil
}

func (r *blocksRepo) LastBlock(ctx context.Context) (domain.Block, error) {
	row, err := r.q.LastBlock(ctx)
	if err != nil {
		return domain.Block{}, mapNotFound(err)
	}
	return mapBlock(row), nil
}

func (r *blocksRepo) CountBlocks(ctx context.Context) (uint64, error) {
	n, err := r.q.CountBlocks(ctx)
	if err != nil {
		return 0, err
	}
	return uint64(n), nil
}

func mapBlock(row gen.Block) domain.Block {
	return domain.Block{
		Index:        uint64(row.Idx),
		Timestamp:    time.Unix(0, row.TimestampNs).UTC(),
		Payload:      row.Payload,
		PreviousHash: row.PreviousHash,
		BlockHash:    row.BlockHash,
		Signature:    row.Signature,
		SignerKeyID:  row.SignerKeyID,
		RequestID:    mapNullString(row.RequestID),
	}
}
