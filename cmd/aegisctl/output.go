package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/pterm/pterm"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// short trims a hex hash or id for table output.
func short(s string) string {
	if len(s) <= 16 {
		return s
	}
	return s[:16] + "…"
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.UTC().Format(time.RFC3339)
}

// payloadPreview shows text payloads as-is and binary ones as base64.
func payloadPreview(p []byte) string {
	s := string(p)
	if !utf8.ValidString(s) {
		s = ledgersdk.EncodePayload(p)
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if len(s) > 60 {
		s = s[:60] + "…"
	}
	return s
}

func renderBlocks(blocks []ledgersdk.Block) error {
	if jsonOut {
		return printJSON(blocks)
	}
	if len(blocks) == 0 {
		pterm.Info.Println("no blocks")
		return nil
	}

	data := pterm.TableData{{"Index", "Timestamp", "Hash", "Key", "Payload"}}
	for _, b := range blocks {
		ts := b.Timestamp
		data = append(data, []string{
			fmt.Sprint(b.Index),
			formatTime(&ts),
			short(b.BlockHash),
			short(b.SignerKeyID),
			payloadPreview(b.Payload),
		})
	}
	return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func renderVerification(ok bool, checked uint64, broken *uint64, reason string) {
	if ok {
		pterm.Success.Printfln("chain intact, %d blocks checked", checked)
		return
	}
	idx := "?"
	if broken != nil {
		idx = fmt.Sprint(*broken)
	}
	pterm.Error.Printfln("integrity violation at block %s after %d blocks: %s", idx, checked, reason)
}
