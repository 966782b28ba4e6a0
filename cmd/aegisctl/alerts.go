package main

import (
	"fmt"
	"strings"

	"github.com/aussiebroadwan/aegis/pkg/ledgersdk"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

var (
	alertsActiveOnly bool
	alertsLimit      int
	alertSeverity    string
	alertDescription string
	alertSource      string
)

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "Inspect and manage operator alerts",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List alerts, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		alerts, err := newClient().ListAlerts(ctx, alertsActiveOnly, alertsLimit)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(alerts)
		}
		if len(alerts) == 0 {
			pterm.Info.Println("no alerts")
			return nil
		}

		data := pterm.TableData{{"ID", "Severity", "Status", "Created", "Title", "Description"}}
		for _, a := range alerts {
			status := a.Status
			if a.AcknowledgedAt != nil && a.ResolvedAt == nil {
				status = "acknowledged"
			}
			created := a.CreatedAt
			data = append(data, []string{a.ID, severityLabel(a.Severity), status, formatTime(&created), a.Title, a.Description})
		}
		return pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	},
}

var alertsCreateCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Raise a manual alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := newClient().CreateAlert(ctx, ledgersdk.CreateAlertRequest{
			Title:       args[0],
			Description: alertDescription,
			Severity:    alertSeverity,
			Source:      alertSource,
		})
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(a)
		}
		pterm.Success.Printfln("raised %s (%s)", a.ID, a.Severity)
		return nil
	},
}

var alertsAckCmd = &cobra.Command{
	Use:   "ack <alert-id>",
	Short: "Acknowledge an alert",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := newClient().AcknowledgeAlert(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(a)
		}
		pterm.Success.Printfln("acknowledged %s", a.ID)
		return nil
	},
}

var alertsResolveCmd = &cobra.Command{
	Use:   "resolve <alert-id>",
	Short: "Resolve an alert",
	Long: `Resolve an alert. Resolving only closes the alert; it does not
change the chain. A later failure of the same kind raises a new alert.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		a, err := newClient().ResolveAlert(ctx, args[0])
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(a)
		}
		pterm.Success.Printfln("resolved %s", a.ID)
		return nil
	},
}

var alertsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show alert counts",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := commandContext(cmd)
		defer cancel()

		stats, err := newClient().AlertStats(ctx)
		if err != nil {
			return err
		}
		if jsonOut {
			return printJSON(stats)
		}

		pterm.DefaultSection.Println("Alerts")
		pterm.Printfln("total %d, active %d, acknowledged %d", stats.Total, stats.Active, stats.Acknowledged)
		var parts []string
		for _, sev := range []string{ledgersdk.SeverityCritical, ledgersdk.SeverityHigh, ledgersdk.SeverityMedium, ledgersdk.SeverityLow} {
			if n := stats.BySeverity[sev]; n > 0 {
				parts = append(parts, fmt.Sprintf("%s %d", severityLabel(sev), n))
			}
		}
		if len(parts) > 0 {
			pterm.Println(strings.Join(parts, ", "))
		}
		return nil
	},
}

func severityLabel(s string) string {
	switch s {
	case ledgersdk.SeverityCritical, ledgersdk.SeverityHigh:
		return pterm.LightRed(s)
	case ledgersdk.SeverityMedium:
		return pterm.LightYellow(s)
	default:
		return s
	}
}

func init() {
	alertsListCmd.Flags().BoolVarP(&alertsActiveOnly, "active", "a", false, "only unresolved alerts")
	alertsListCmd.Flags().IntVarP(&alertsLimit, "limit", "n", 0, "alerts to show (server default when 0)")
	alertsCreateCmd.Flags().StringVar(&alertSeverity, "severity", "medium", "low, medium, high or critical")
	alertsCreateCmd.Flags().StringVarP(&alertDescription, "description", "d", "", "details")
	alertsCreateCmd.Flags().StringVar(&alertSource, "source", "", "where the alert came from (default operator)")

	alertsCmd.AddCommand(alertsListCmd, alertsCreateCmd, alertsAckCmd, alertsResolveCmd, alertsStatsCmd)
	rootCmd.AddCommand(alertsCmd)
}
