package main

import (
	"context"
	"fmt"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	"warden/internal/config"
	"warden/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	if err := logger.InitLogger(cfg.Mode); err != nil {
		fmt.Printf("Error initializing logger: %v\n", err)
		return
	}
	defer logger.Sync()

	if err := newRootCmd(cfg).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:          "wardend",
		Short:        "wardend - scheduled backups and recovery drills",
		SilenceUsage: true,
	}

	cmd.AddCommand(newServeCmd(cfg))
	cmd.AddCommand(newRunCmd(cfg))
	cmd.AddCommand(newIssueTokenCmd(cfg))
	cmd.AddCommand(newGrantAdminCmd(cfg))
	return cmd
}

func newServeCmd(cfg config.Config) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the manual trigger API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err, teardown := setup(ctx, cfg)
	if err != nil {
		return err
	}

	if err := a.schedule(ctx, cfg); err != nil {
		_ = teardown()
		return err
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           a.routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info("serving http(s)", zap.String("addr", cfg.ListenAddr))
		var err error
		if cfg.HasTLSConfig() {
			err = srv.ListenAndServeTLS(cfg.ServerSSLCertFile, cfg.ServerSSLKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if err != nil && err != http.ErrServerClosed {
			log.Fatal("server closed: ", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}

	if err := teardown(); err != nil {
		logger.Error("teardown failed", zap.Error(err))
		return err
	}
	return nil
}

func newRunCmd(cfg config.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <pipeline>",
		Short: "Run a pipeline once in the foreground",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "backup",
		Short: "Take a backup now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				result, err := a.orchestrator.Run(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("backup %s written to %s (%d users)\n", result.CorrelationID, result.Path, result.UserCount)
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "smoketest",
		Short: "Verify the latest backup now",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				result, err := a.verifier.Run(ctx)
				if err != nil {
					return err
				}
				fmt.Printf("smoke test %s passed for %s\n", result.CorrelationID, result.Path)
				return nil
			})
		},
	})
	return cmd
}

func runOnce(ctx context.Context, cfg config.Config, fn func(ctx context.Context, a *app) error) error {
	if ctx == nil {
		ctx = context.Background()
	}

	a, err, teardown := setup(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := teardown(); err != nil {
			logger.Error("teardown failed", zap.Error(err))
		}
	}()
	return fn(ctx, a)
}

func newIssueTokenCmd(cfg config.Config) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:     "issue-token",
		Short:   "Issue a manual trigger token for a user",
		Example: "wardend issue-token --uid <uid>",
		RunE: func(cmd *cobra.Command, args []string) error {
			tokens, err := newTokenManager(cfg)
			if err != nil {
				return err
			}

			token, err := tokens.Issue(uid)
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
	cmd.Flags().StringVarP(&uid, "uid", "u", "", "uid of the user the token is issued to")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}

func newGrantAdminCmd(cfg config.Config) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:     "grant-admin",
		Short:   "Allow a user to trigger pipelines manually",
		Example: "wardend grant-admin --uid <uid>",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), cfg, func(ctx context.Context, a *app) error {
				return a.grantAdmin(ctx, uid)
			})
		},
	}
	cmd.Flags().StringVarP(&uid, "uid", "u", "", "uid of the user to promote")
	_ = cmd.MarkFlagRequired("uid")
	return cmd
}
