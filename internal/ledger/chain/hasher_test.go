package chain_test

import (
	"bytes"
	"testing"
	"time"

	"github.com/aussiebroadwan/aegis/internal/ledger/chain"
	"github.com/stretchr/testify/require"
)

func TestHashIsDeterministic(t *testing.T) {
	ts := time.Unix(1700000000, 42).UTC()
	a := chain.Hash(3, ts, []byte("payload"), chain.GenesisHash)
	b := chain.Hash(3, ts, []byte("payload"), chain.GenesisHash)
	require.Equal(t, a, b)
	require.Len(t, a, 32)
}

func TestHashCoversEveryField(t *testing.T) {
	ts := time.Unix(1700000000, 42).UTC()
	prev := bytes.Repeat([]byte{0xab}, 32)
	base := chain.Hash(3, ts, []byte("payload"), prev)

	variants := map[string][]byte{
		"index":     chain.Hash(4, ts, []byte("payload"), prev),
		"timestamp": chain.Hash(3, ts.Add(time.Nanosecond), []byte("payload"), prev),
		"payload":   chain.Hash(3, ts, []byte("payloae"), prev),
		"previous":  chain.Hash(3, ts, []byte("payload"), chain.GenesisHash),
	}
	for name, h := range variants {
		require.NotEqual(t, base, h, name)
	}
}

func TestHashLengthPrefixesPayload(t *testing.T) {
	// Without the length prefix these two would hash the same bytes.
	ts := time.Unix(0, 0).UTC()
	prevA := append([]byte{0x01}, make([]byte, 31)...)
	a := chain.Hash(0, ts, []byte("ab"), prevA)
	b := chain.Hash(0, ts, append([]byte("ab"), 0x01), make([]byte, 31))
	require.NotEqual(t, a, b)
}

func TestGenesisHashIsZero(t *testing.T) {
	require.Equal(t, make([]byte, 32), chain.GenesisHash)
}
