package backup

import (
	"context"
	"github.com/spf13/cobra"
	"time"
	"warden/client/internal/api"
	"warden/client/internal/cmdutil"
)

func NewBackupCmd(newService api.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "backup <command>",
		Aliases: []string{"b"},
		Short:   "Manage backups",
	}

	cmd.AddCommand(&cobra.Command{
		Use:     "run",
		Short:   "Take a backup now",
		Long:    "Take a full backup now. Runs the same pipeline as the nightly schedule and waits for it to finish.",
		Example: "warden backup run",
		Run: func(cmd *cobra.Command, args []string) {
			svc, err := newService()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()

			cmdutil.StartLoading("Running backup...")
			result, err := svc.TriggerBackup(ctx)
			cmdutil.StopLoading()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			cmdutil.PrintResult(result)
		},
	})
	return cmd
}
