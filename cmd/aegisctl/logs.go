package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	submitFile      string
	submitTOTP      string
	submitRequestID string
	searchLimit     int
)

var submitCmd = &cobra.Command{
	Use:   "submit [payload]",
	Short: "Append an audit record",
	Long: `Append an audit record to the ledger.

The payload is taken from the argument, from --file, or from stdin when
neither is given. A request id is generated unless --request-id is set;
resubmitting with the same id returns the original block.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSubmit,
}

var headCmd = &cobra.Command{
	Use:   "head",
	Short: "Show the chain head",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		head, err := newClient().Head(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(head)
		}
		if head.Index < 0 {
			pterm.Info.Println("chain is empty")
			return nil
		}
		pterm.DefaultSection.Println("Chain head")
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"Index", fmt.Sprint(head.Index)},
			{"Hash", head.BlockHash},
			{"Timestamp", formatTime(head.Timestamp)},
		}).Render()
	},
}

var rangeCmd = &cobra.Command{
	Use:   "range <start> [end]",
	Short: "List blocks in [start, end)",
	Long:  "List blocks in [start, end). End defaults to the chain length.",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		start, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid start %q", args[0])
		}
		var end uint64
		if len(args) == 2 {
			if end, err = strconv.ParseUint(args[1], 10, 64); err != nil {
				return fmt.Errorf("invalid end %q", args[1])
			}
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		blocks, err := newClient().GetRange(ctx, start, end)
		if err != nil {
			return err
		}
		return renderBlocks(blocks)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Find blocks whose payload matches a glob pattern",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		blocks, err := newClient().Search(ctx, args[0], searchLimit)
		if err != nil {
			return err
		}
		return renderBlocks(blocks)
	},
}

var trailCmd = &cobra.Command{
	Use:   "trail",
	Short: "Summarise the audit trail",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		trail, err := newClient().Trail(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(trail)
		}
		pterm.DefaultSection.Println("Audit trail")
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"Blocks", fmt.Sprint(trail.BlockCount)},
			{"Head hash", trail.HeadHash},
			{"First block", formatTime(trail.FirstBlockTime)},
			{"Last block", formatTime(trail.LastBlockTime)},
		}).Render()
	},
}

func init() {
	submitCmd.Flags().StringVarP(&submitFile, "file", "f", "", "read the payload from a file")
	submitCmd.Flags().StringVar(&submitTOTP, "totp-code", "", "TOTP code, required when the server uses the supplied policy")
	submitCmd.Flags().StringVar(&submitRequestID, "request-id", "", "idempotency key (default: random UUID)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum matches (server default when 0)")

	rootCmd.AddCommand(submitCmd, headCmd, rangeCmd, searchCmd, trailCmd)
}

func runSubmit(cmd *cobra.Command, args []string) error {
	var (
		payload []byte
		err     error
	)
	switch {
	case len(args) == 1:
		payload = []byte(args[0])
	case submitFile != "":
		payload, err = os.ReadFile(submitFile)
	default:
		payload, err = io.ReadAll(cmd.InOrStdin())
	}
	if err != nil {
		return fmt.Errorf("reading payload: %w", err)
	}
	if len(payload) == 0 {
		return fmt.Errorf("payload is empty")
	}

	ctx, cancel := commandContext(cmd)
	defer cancel()

	block, err := newClient().SubmitLog(ctx, ledgersdk.SubmitLogRequest{
		Payload:   ledgersdk.EncodePayload(payload),
		Encoding:  ledgersdk.EncodingBase64,
		TOTPCode:  submitTOTP,
		RequestID: submitRequestID,
	})
	if err != nil {
		return err
	}
	if jsonOut {
		return printJSON(block)
	}
	pterm.Success.Printfln("appended block %d (%s) signed by %s", block.Index, short(block.BlockHash), block.SignerKeyID)
	return nil
}
