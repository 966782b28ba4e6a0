package main

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Manage signing keys",
}

var keysListCmd = &cobra.Command{
	Use:   "list",
	Short: "List signing keys, active and retired",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		keys, err := newClient().ListKeys(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(keys)
		}

		data := pterm.TableData{{"Key ID", "Algorithm", "State", "Created", "Retired", "Fingerprint"}}
		for _, k := range keys {
			state := pterm.LightYellow("retired")
			if k.Active {
				state = pterm.LightGreen("active")
			}
			created := k.CreatedAt
			data = append(data, []string{k.KeyID, k.Algorithm, state, formatTime(&created), formatTime(k.RetiredAt), short(k.Fingerprint)})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var keysRotateCmd = &cobra.Command{
	Use:   "rotate",
	Short: "Generate and activate a new signing key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		res, err := newClient().RotateKey(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(res)
		}
		if res.RetiredKeyID != "" {
			pterm.Success.Printfln("activated %s, retired %s", res.NewKeyID, res.RetiredKeyID)
		} else {
			pterm.Success.Printfln("activated %s", res.NewKeyID)
		}
		return nil
	},
}

var keysRetireCmd = &cobra.Command{
	Use:   "retire <key-id>",
	Short: "Retire a signing key",
	Long: `Retire a signing key. Its public half stays available for verification.

Retiring the active key stops appends until the next rotation.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := newClient().RetireKey(ctx, args[0]); err != nil {
			return err
		}
		if !jsonOut {
			pterm.Success.Printfln("retired %s", args[0])
		}
		return nil
	},
}

var keysPublicCmd = &cobra.Command{
	Use:   "public [key-id]",
	Short: "Print a public key as PEM (default: the active key)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var kid string
		if len(args) == 1 {
			kid = args[0]
		}

		ctx, cancel := commandContext(cmd)
		defer cancel()

		pk, err := newClient().GetPublicKey(ctx, kid)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(pk)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "# %s %s fingerprint %s\n", pk.KeyID, pk.Algorithm, pk.Fingerprint)
		fmt.Fprint(cmd.OutOrStdout(), pk.PublicKey)
		return nil
	},
}

var keysJWKSCmd = &cobra.Command{
	Use:   "jwks",
	Short: "Print the JWKS document, for offline export verification",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		jwks, err := newClient().GetJWKS(ctx)
		if err != nil {
			return err
		}
		return printJSON(jwks)
	},
}

func init() {
	keysCmd.AddCommand(keysListCmd, keysRotateCmd, keysRetireCmd, keysPublicCmd, keysJWKSCmd)
	rootCmd.AddCommand(keysCmd)
}
