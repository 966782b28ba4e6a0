package main

import (
	"fmt"

	"github.com/aussiebroadwan/aegis/internal/ledger/app"
	"github.com/aussiebroadwan/aegis/pkg/cryptox"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	masterKeyPrint bool
	masterKeyForce bool
)

var masterKeyCmd = &cobra.Command{
	Use:   "masterkey",
	Short: "Manage the local master key",
}

var masterKeyInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a master key and store it in the OS keyring",
	Long: `Generate a random 256-bit master key and store it in the OS keyring,
where a server started with AEGIS_MASTER_KEY_SOURCE=keyring reads it.

Replacing an existing master key makes every stored signing key and the
TOTP secret unreadable, so --force is required to overwrite one.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		src := cryptox.KeyringSource{Service: app.KeyringService, User: app.KeyringUser}

		if _, err := src.Load(cmd.Context()); err == nil && !masterKeyForce {
			return fmt.Errorf("a master key already exists in the keyring (use --force to replace it)")
		}

		secret, err := cryptox.GenerateToken(cryptox.TokenSize256)
		if err != nil {
			return err
		}
		if err := src.Store(secret); err != nil {
			return fmt.Errorf("storing master key: %w", err)
		}

		pterm.Success.Printfln("master key stored in keyring (service %q, user %q)", app.KeyringService, app.KeyringUser)
		if masterKeyPrint {
			pterm.Warning.Println("keep a copy offline: losing it makes the stored keys unrecoverable")
			fmt.Fprintln(cmd.OutOrStdout(), secret)
		}
		return nil
	},
}

func init() {
	masterKeyInitCmd.Flags().BoolVar(&masterKeyPrint, "print", false, "also print the key for offline backup")
	masterKeyInitCmd.Flags().BoolVar(&masterKeyForce, "force", false, "replace an existing key")
	masterKeyCmd.AddCommand(masterKeyInitCmd)
	rootCmd.AddCommand(masterKeyCmd)
}
