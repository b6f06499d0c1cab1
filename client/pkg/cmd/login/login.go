package login

import (
	"fmt"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"net/url"
	"os"
	"strings"
	"warden/client/internal/api"
	"warden/client/internal/auth"
	"warden/client/internal/cmdutil"
	"warden/client/internal/config"
)

func NewLoginCmd(svc api.Pinger) *cobra.Command {
	var host, token string
	cmd := &cobra.Command{
		Use:     "login",
		Short:   "Save the warden server and your trigger token",
		Long:    "Save the warden server url in .warden.yml and your trigger token in the OS keyring. The token is checked against the server first.",
		Example: "warden login --host <https://warden.example.com> --token <token>",
		Run: func(cmd *cobra.Command, args []string) {
			uri, err := url.Parse(host)
			if err != nil || uri.Host == "" {
				cmdutil.PrintE(fmt.Sprintf("Invalid host: %q", host))
				return
			}

			if strings.Count(token, ".") != 2 {
				cmdutil.PrintE("Invalid token: expected a token issued by 'wardend issue-token'")
				return
			}

			cmdutil.StartLoading("Checking credentials...")
			serverUrl := toURL(uri)
			err = svc.Ping(cmd.Context(), serverUrl, token)
			cmdutil.StopLoading()
			if err != nil {
				cmdutil.PrintE(err.Error())
				return
			}

			if err := config.SaveConfig(config.Config{Host: serverUrl}); err != nil {
				cmdutil.Print(fmt.Sprintf("Failed to save config: %s", color.RedString(err.Error())))
				return
			}

			if err := auth.Save(token); err != nil {
				cmdutil.Print(fmt.Sprintf("Failed to save token: %s", color.RedString(err.Error())))
				return
			}

			_, _ = fmt.Fprintln(os.Stdout, fmt.Sprintf("\n%s: logged in to %s", color.GreenString("Success"), serverUrl))
		},
	}
	cmd.Flags().StringVarP(&host, "host", "i", "", "warden server host url")
	cmd.Flags().StringVarP(&token, "token", "t", "", "trigger token")
	return cmd
}

func toURL(u *url.URL) string {
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u.String()
}
