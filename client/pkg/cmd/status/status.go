package status

import (
	"context"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"os"
	"time"
	"warden/client/internal/api"
	"warden/client/internal/cmdutil"
)

func NewStatusCmd(newService api.Factory) *cobra.Command {
	return &cobra.Command{
		Use:     "status",
		Short:   "Show the last backup and smoke test",
		Example: "warden status",
		Run: func(cmd *cobra.Command, args []string) {
			svc, err := newService()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()

			st, err := svc.Status(ctx)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			health, err := svc.Health(ctx)
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Pipeline", "Status", "Last Run", "Correlation ID", "Detail"})
			tw.AppendRows([]table.Row{
				{"backup", colored(st.LastBackupStatus), formatTime(st.LastBackupTimestamp), st.BackupCorrelationID, detail(st.LastBackupError, st.LastBackupPath)},
				{"smoke test", colored(st.LastSmokeTestStatus), formatTime(st.LastSmokeTestTimestamp), st.SmokeTestCorrelationID, detail(st.LastSmokeTestError, nil)},
			})
			tw.SetStyle(table.StyleLight)
			tw.Render()

			cmdutil.PrintField("Health", health.Status)
		},
	}
}

func colored(status string) string {
	switch status {
	case "SUCCESS":
		return color.GreenString(status)
	case "FAILED":
		return color.RedString(status)
	case "":
		return "-"
	default:
		return status
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}

func detail(errMsg, path *string) string {
	if errMsg != nil && *errMsg != "" {
		return *errMsg
	}
	if path != nil {
		return *path
	}
	return ""
}
