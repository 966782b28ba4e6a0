package main

import (
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var totpCmd = &cobra.Command{
	Use:   "totp",
	Short: "Inspect or replace the signing TOTP secret",
}

var totpCurrentCmd = &cobra.Command{
	Use:   "current",
	Short: "Show the current TOTP code",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		code, err := newClient().CurrentTOTP(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(code)
		}
		pterm.Printfln("%s  (%ds remaining of %ds)", pterm.Bold.Sprint(code.Code), code.SecondsRemaining, code.Period)
		return nil
	},
}

var totpRegenerateCmd = &cobra.Command{
	Use:   "regenerate",
	Short: "Replace the TOTP secret",
	Long: `Replace the TOTP secret. Codes from the old secret stop working at once.

The new secret and provisioning URL are printed once and cannot be
retrieved again.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		enroll, err := newClient().RegenerateTOTP(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(enroll)
		}
		pterm.Warning.Println("store this secret now, it is not shown again")
		return pterm.DefaultTable.WithData(pterm.TableData{
			{"Secret", enroll.Secret},
			{"URL", enroll.ProvisioningURL},
			{"Period", pterm.Sprint(enroll.Period, "s")},
			{"Digits", pterm.Sprint(enroll.Digits)},
		}).Render()
	},
}

func init() {
	totpCmd.AddCommand(totpCurrentCmd, totpRegenerateCmd)
	rootCmd.AddCommand(totpCmd)
}
