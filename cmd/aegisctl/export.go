package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/aussiebroadwan/aegis/internal/ledger/export"
	"github.com/aussiebroadwan/aegis/pkg/signx"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportStart  uint64
	exportEnd    uint64
	exportOut    string

	verifyExportFormat string
	verifyExportJWKS   string
	verifyExportRemote bool
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Download blocks in [start, end) as json, jsonl or csv",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var w io.Writer = cmd.OutOrStdout()
		if exportOut != "" && exportOut != "-" {
			f, err := os.Create(exportOut)
			if err != nil {
				return err
			}
			defer f.Close()
			w = f
		}

		// Exports can be large, so only the connection is bounded by --timeout.
		if err := newClient().Export(cmd.Context(), w, exportFormat, exportStart, exportEnd); err != nil {
			return err
		}
		if exportOut != "" && exportOut != "-" {
			pterm.Success.Printfln("export written to %s", exportOut)
		}
		return nil
	},
}

var verifyExportCmd = &cobra.Command{
	Use:   "verify-export <file>",
	Short: "Verify an exported chain offline",
	Long: `Verify an exported chain without trusting the server that produced it.

Public keys come from --jwks, a saved JWKS document. Without it the JWKS is
fetched from --server. An export that starts after block 0 is checked from
its first block's previous hash.

With --remote the file is uploaded and checked by the server instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runVerifyExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportFormat, "format", "F", "jsonl", "json, jsonl or csv")
	exportCmd.Flags().Uint64Var(&exportStart, "start", 0, "first block index")
	exportCmd.Flags().Uint64Var(&exportEnd, "end", 0, "end index, exclusive (0 means the head)")
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")

	verifyExportCmd.Flags().StringVarP(&verifyExportFormat, "format", "F", "", "json, jsonl or csv (default from file extension)")
	verifyExportCmd.Flags().StringVar(&verifyExportJWKS, "jwks", "", "JWKS file with the signing public keys")
	verifyExportCmd.Flags().BoolVar(&verifyExportRemote, "remote", false, "have the server verify the file")

	rootCmd.AddCommand(exportCmd, verifyExportCmd)
}

func runVerifyExport(cmd *cobra.Command, args []string) error {
	path := args[0]

	name := verifyExportFormat
	if name == "" {
		name = strings.TrimPrefix(filepath.Ext(path), ".")
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if verifyExportRemote {
		return verifyExportOnServer(cmd, format, f)
	}

	keys, err := loadKeySet(cmd)
	if err != nil {
		return err
	}

	blocks, err := export.Decode(f, format)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", path, err)
	}

	res := export.Verify(blocks, func(digest, sig []byte, keyID string) bool {
		return keys.Verify(keyID, digest, sig)
	})

	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else {
		renderVerification(res.OK, res.BlocksChecked, res.FirstBrokenIndex, res.Reason)
	}
	if !res.OK {
		return errVerificationFailed
	}
	return nil
}

func verifyExportOnServer(cmd *cobra.Command, format export.Format, f io.Reader) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()

	res, err := newClient().VerifyExport(ctx, string(format), f)
	if err != nil {
		return err
	}
	if jsonOut {
		if err := printJSON(res); err != nil {
			return err
		}
	} else {
		renderVerification(res.OK, res.BlocksChecked, res.FirstBrokenIndex, res.Reason)
	}
	if !res.OK {
		return errVerificationFailed
	}
	return nil
}

func loadKeySet(cmd *cobra.Command) (*signx.KeySet, error) {
	var jwks signx.JWKS
	if verifyExportJWKS != "" {
		data, err := os.ReadFile(verifyExportJWKS)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, &jwks); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", verifyExportJWKS, err)
		}
	} else {
		ctx, cancel := commandContext(cmd)
		defer cancel()
		resp, err := newClient().GetJWKS(ctx)
		if err != nil {
			return nil, fmt.Errorf("fetching jwks: %w", err)
		}
		jwks = signx.JWKS(*resp)
	}
	return signx.KeySetFromJWKS(jwks)
}
