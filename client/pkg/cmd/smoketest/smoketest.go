package smoketest

import (
	"context"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"time"
	"warden/client/internal/api"
	"warden/client/internal/cmdutil"
	"warden/internal/misc"
)

func NewSmokeTestCmd(newService api.Factory) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "smoketest <command>",
		Aliases: []string{"st"},
		Short:   "Manage recovery drills",
	}

	var yes bool
	run := &cobra.Command{
		Use:     "run",
		Short:   "Verify the latest backup now",
		Long:    "Import the latest backup into the isolated environment and check it. The isolated environment is emptied afterwards.",
		Example: "warden smoketest run --yes",
		Run: func(cmd *cobra.Command, args []string) {
			if !yes {
				p := promptui.Prompt{
					Label:     "This imports the latest backup into the isolated environment and wipes it afterwards. Continue?",
					IsConfirm: true,
				}
				result, err := p.Run()
				if err != nil || !misc.StrContains(result, []string{"Yes", "yes", "y"}) {
					cmdutil.Print("Aborted")
					return
				}
			}

			svc, err := newService()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Minute)
			defer cancel()

			cmdutil.StartLoading("Running smoke test...")
			result, err := svc.TriggerSmokeTest(ctx)
			cmdutil.StopLoading()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}
			cmdutil.PrintResult(result)
		},
	}
	run.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	cmd.AddCommand(run)
	return cmd
}
