// Command aegisctl is the operator CLI for an Aegis ledger server.
package main

import (
	"context"
	"os"
	"time"

	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	serverURL  string
	adminToken string
	jsonOut    bool
	timeout    time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "aegisctl",
	Short: "Operate an Aegis audit ledger",
	Long: `aegisctl talks to an Aegis server over its HTTP API.

It submits and reads audit records, runs integrity checks, manages signing
keys and the TOTP secret, and verifies exported chains offline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if jsonOut {
			pterm.DisableStyling()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", envOr("AEGIS_SERVER", "http://localhost:8001"), "server base URL (env AEGIS_SERVER)")
	rootCmd.PersistentFlags().StringVar(&adminToken, "admin-token", os.Getenv("AEGIS_ADMIN_TOKEN"), "bearer token for admin endpoints (env AEGIS_ADMIN_TOKEN)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "output in JSON format")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 30*time.Second, "request timeout")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func newClient() *ledgersdk.Client {
	c := ledgersdk.NewClient(serverURL)
	c.AdminToken = adminToken
	return c
}

// commandContext bounds a single request by --timeout.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), timeout)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
