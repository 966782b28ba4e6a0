package main

import (
	"encoding/json"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/aegis/internal/ledger/feed"
	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var watchTypes []string

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Stream live ledger events until interrupted",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		want := make(map[string]bool, len(watchTypes))
		for _, t := range watchTypes {
			want[t] = true
		}

		err := newClient().Watch(ctx, func(ev ledgersdk.FeedEvent) error {
			if len(want) > 0 && !want[ev.Type] {
				return nil
			}
			if jsonOut {
				return printJSON(ev)
			}
			printEvent(ev)
			return nil
		})
		if err != nil && ctx.Err() != nil {
			return nil
		}
		return err
	},
}

func init() {
	watchCmd.Flags().StringSliceVarP(&watchTypes, "type", "t", nil, "only show these event types")
	rootCmd.AddCommand(watchCmd)
}

func printEvent(ev ledgersdk.FeedEvent) {
	ts := ev.Time.UTC().Format("15:04:05")
	switch ev.Type {
	case feed.EventBlockAppended:
		var d feed.BlockAppended
		_ = json.Unmarshal(ev.Data, &d)
		pterm.Printfln("%s %s block %d %s", ts, pterm.LightCyan("append"), d.Index, short(d.BlockHash))
	case feed.EventIntegrityChecked:
		var d feed.IntegrityChecked
		_ = json.Unmarshal(ev.Data, &d)
		if d.OK {
			pterm.Printfln("%s %s %d blocks ok", ts, pterm.LightGreen("verify"), d.BlocksChecked)
		} else {
			pterm.Printfln("%s %s %s", ts, pterm.LightRed("verify"), d.Reason)
		}
	case feed.EventKeyRotated, feed.EventKeyRetired:
		var d feed.KeyChanged
		_ = json.Unmarshal(ev.Data, &d)
		pterm.Printfln("%s %s %s", ts, pterm.LightYellow(ev.Type), d.KeyID)
	case feed.EventSystemStatus:
		// Heartbeats are noise in a terminal.
	default:
		pterm.Printfln("%s %s %s", ts, ev.Type, string(ev.Data))
	}
}
