package cmd

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"warden/client/internal/api"
	"warden/client/internal/auth"
	"warden/client/internal/config"
	"warden/client/pkg/cmd/backup"
	"warden/client/pkg/cmd/login"
	"warden/client/pkg/cmd/smoketest"
	"warden/client/pkg/cmd/status"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "warden",
		Short: "warden - trigger and inspect backups and recovery drills",
	}

	cmd.AddCommand(login.NewLoginCmd(api.NewPinger()))
	cmd.AddCommand(backup.NewBackupCmd(newService))
	cmd.AddCommand(smoketest.NewSmokeTestCmd(newService))
	cmd.AddCommand(status.NewStatusCmd(newService))
	return cmd
}

func newService() (api.Service, error) {
	cfg, err := config.Parse()
	if err != nil {
		return nil, errors.Wrap(err, "not logged in, run 'warden login' first")
	}

	token, err := auth.Get()
	if err != nil {
		return nil, errors.Wrap(err, "no saved token, run 'warden login' first")
	}
	return api.NewService(api.NewClient(api.Config{Host: cfg.Host, Token: token})), nil
}
