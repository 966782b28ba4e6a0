// Package export streams ledger blocks to JSON, JSON Lines or CSV and reads
// them back for offline verification.
package export

import (
	"encoding/base64"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/chain"
	"github.com/aussiebroadwan/aegis/internal/ledger/domain"
)

type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

var ErrUnsupportedFormat = errors.New("export: unsupported format")

// ParseFormat accepts json, jsonl or csv. The empty string means jsonl.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatJSONL, nil
	case FormatJSON, FormatJSONL, FormatCSV:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q (use json, jsonl or csv)", ErrUnsupportedFormat, s)
	}
}

func (f Format) ContentType() string {
	switch f {
	case FormatJSON:
		return "application/json"
	case FormatCSV:
		return "text/csv"
	default:
		return "application/x-ndjson"
	}
}

// Record is the wire form of a block. Hashes are hex, payload and signature
// are standard base64.
type Record struct {
	Index        uint64    `json:"index"`
	Timestamp    time.Time `json:"timestamp"`
	Payload      []byte    `json:"payload"`
	PreviousHash string    `json:"previous_hash"`
	BlockHash    string    `json:"block_hash"`
	Signature    []byte    `json:"signature"`
	SignerKeyID  string    `json:"signer_key_id"`
	RequestID    string    `json:"request_id,omitempty"`
}

func FromBlock(b domain.Block) Record {
	return Record{
		Index:        b.Index,
		Timestamp:    b.Timestamp.UTC(),
		Payload:      b.Payload,
		PreviousHash: hex.EncodeToString(b.PreviousHash),
		BlockHash:    hex.EncodeToString(b.BlockHash),
		Signature:    b.Signature,
		SignerKeyID:  b.SignerKeyID,
		RequestID:    b.RequestID,
	}
}

func (r Record) Block() (domain.Block, error) {
	prev, err := hex.DecodeString(r.PreviousHash)
	if err != nil {
		return domain.Block{}, fmt.Errorf("export: block %d previous_hash: %w", r.Index, err)
	}
	hash, err := hex.DecodeString(r.BlockHash)
	if err != nil {
		return domain.Block{}, fmt.Errorf("export: block %d block_hash: %w", r.Index, err)
	}
	return domain.Block{
		Index:        r.Index,
		Timestamp:    r.Timestamp.UTC(),
		Payload:      r.Payload,
		PreviousHash: prev,
		BlockHash:    hash,
		Signature:    r.Signature,
		SignerKeyID:  r.SignerKeyID,
		RequestID:    r.RequestID,
	}, nil
}

// Writer streams blocks in one format. Close must be called to finish the
// document; it does not close the underlying io.Writer.
type Writer interface {
	Write(b domain.Block) error
	Close() error
}

func NewWriter(w io.Writer, f Format) (Writer, error) {
	switch f {
	case FormatJSON:
		return &jsonWriter{w: w}, nil
	case FormatJSONL:
		return &jsonlWriter{enc: json.NewEncoder(w)}, nil
	case FormatCSV:
		return &csvWriter{cw: csv.NewWriter(w)}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

type jsonWriter struct {
	w     io.Writer
	count int
}

func (j *jsonWriter) Write(b domain.Block) error {
	sep := ",\n  "
	if j.count == 0 {
		sep = "[\n  "
	}
	data, err := json.Marshal(FromBlock(b))
	if err != nil {
		return err
	}
	if _, err := io.WriteString(j.w, sep); err != nil {
		return err
	}
	_, err = j.w.Write(data)
	j.count++
	return err
}

func (j *jsonWriter) Close() error {
	end := "\n]\n"
	if j.count == 0 {
		end = "[]\n"
	}
	_, err := io.WriteString(j.w, end)
	return err
}

type jsonlWriter struct {
	enc *json.Encoder
}

func (j *jsonlWriter) Write(b domain.Block) error { return j.enc.Encode(FromBlock(b)) }
func (j *jsonlWriter) Close() error               { return nil }

var csvHeader = []string{"index", "timestamp", "payload", "previous_hash", "block_hash", "signature", "signer_key_id", "request_id"}

type csvWriter struct {
	cw     *csv.Writer
	header bool
}

func (c *csvWriter) Write(b domain.Block) error {
	if !c.header {
		if err := c.cw.Write(csvHeader); err != nil {
			return err
		}
		c.header = true
	}
	return c.cw.Write([]string{
		strconv.FormatUint(b.Index, 10),
		b.Timestamp.UTC().Format(time.RFC3339Nano),
		base64.StdEncoding.EncodeToString(b.Payload),
		hex.EncodeToString(b.PreviousHash),
		hex.EncodeToString(b.BlockHash),
		base64.StdEncoding.EncodeToString(b.Signature),
		b.SignerKeyID,
		b.RequestID,
	})
}

func (c *csvWriter) Close() error {
	if !c.header {
		if err := c.cw.Write(csvHeader); err != nil {
			return err
		}
	}
	c.cw.Flush()
	return c.cw.Error()
}

// Decode reads a complete export back into blocks.
func Decode(r io.Reader, f Format) ([]domain.Block, error) {
	switch f {
	case FormatJSON:
		var records []Record
		if err := json.NewDecoder(r).Decode(&records); err != nil {
			return nil, fmt.Errorf("export: decode json: %w", err)
		}
		return toBlocks(records)

	case FormatJSONL:
		var records []Record
		dec := json.NewDecoder(r)
		for {
			var rec Record
			err := dec.Decode(&rec)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, fmt.Errorf("export: decode jsonl record %d: %w", len(records), err)
			}
			records = append(records, rec)
		}
		return toBlocks(records)

	case FormatCSV:
		return decodeCSV(r)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
	}
}

func toBlocks(records []Record) ([]domain.Block, error) {
	blocks := make([]domain.Block, 0, len(records))
	for _, rec := range records {
		b, err := rec.Block()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

func decodeCSV(r io.Reader) ([]domain.Block, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(csvHeader)

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("export: decode csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, errors.New("export: csv missing header")
	}

	blocks := make([]domain.Block, 0, len(rows)-1)
	for i, row := range rows[1:] {
		line := i + 2
		index, err := strconv.ParseUint(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("export: csv line %d index: %w", line, err)
		}
		ts, err := time.Parse(time.RFC3339Nano, row[1])
		if err != nil {
			return nil, fmt.Errorf("export: csv line %d timestamp: %w", line, err)
		}
		payload, err := base64.StdEncoding.DecodeString(row[2])
		if err != nil {
			return nil, fmt.Errorf("export: csv line %d payload: %w", line, err)
		}
		sig, err := base64.StdEncoding.DecodeString(row[5])
		if err != nil {
			return nil, fmt.Errorf("export: csv line %d signature: %w", line, err)
		}
		b, err := Record{
			Index:        index,
			Timestamp:    ts,
			Payload:      payload,
			PreviousHash: row[3],
			BlockHash:    row[4],
			Signature:    sig,
			SignerKeyID:  row[6],
			RequestID:    row[7],
		}.Block()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// Verify checks a decoded export. An export starting at index 0 must link to
// the genesis hash; one starting later is trusted to link to whatever its
// first block names.
func Verify(blocks []domain.Block, verify chain.VerifyFunc) domain.VerificationResult {
	if len(blocks) == 0 {
		return domain.VerificationResult{OK: true}
	}
	prev := blocks[0].PreviousHash
	if blocks[0].Index == 0 {
		prev = chain.GenesisHash
	}
	return chain.VerifyBlocks(blocks, prev, verify)
}
