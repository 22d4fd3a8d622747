package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/meinhoongagan/clinic-app/controllers"
	"github.com/meinhoongagan/clinic-app/cron"
	"github.com/meinhoongagan/clinic-app/middleware"
	"github.com/meinhoongagan/clinic-app/routes"
)

func serveCmd() *cobra.Command {
	var memory bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(memory)
		},
	}
	cmd.Flags().BoolVar(&memory, "memory", false, "Use the in-memory store instead of postgres")
	return cmd
}

func runServer(memory bool) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(cfg, log, memory)
	if err != nil {
		return err
	}
	svc, blacklist, err := buildServices(ctx, cfg, log, store)
	if err != nil {
		return err
	}

	jobs, err := cron.NewScheduler(svc, log).Start(cron.Schedules{
		Reconcile: cfg.ReconcileSchedule,
		Expiry:    cfg.ExpirySchedule,
		Reminder:  cfg.ReminderSchedule,
	})
	if err != nil {
		return err
	}
	defer jobs.Stop()

	var revocations middleware.RevocationChecker
	if blacklist != nil {
		revocations = blacklist
	}
	app := routes.NewApp(controllers.New(svc, log), log, middleware.Protected(cfg.JWTSecret, revocations, svc.Accounts))

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("port", cfg.Port))
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server stopped: %w", err)
	case <-ctx.Done():
	}

	log.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
