package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/flightguard/cmd/cli/commands"
	"github.com/jakechorley/flightguard/internal/config"
	"github.com/jakechorley/flightguard/pkg/authz"
	"github.com/jakechorley/flightguard/pkg/memstore"
	"github.com/jakechorley/flightguard/pkg/metrics"
	"github.com/jakechorley/flightguard/pkg/postgres"
	"github.com/jakechorley/flightguard/pkg/realtime"
	"github.com/jakechorley/flightguard/pkg/utils/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	configPath := os.Getenv("FLIGHTGUARD_CONFIG")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger, err := logging.InitLogger(cfg.Env)
	if err != nil {
		return err
	}
	defer logger.Sync()

	app := &commands.AppContext{
		Cfg:     cfg,
		Auth:    authz.NewAllowList(cfg.Operators, cfg.Admins),
		Metrics: metrics.NewMetrics("flightguard"),
		Logger:  logger,
		Ctx:     ctx,
	}

	if cfg.DatabaseURL != "" {
		db, err := postgres.NewDB(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer db.Close()
		app.Store = db
	} else {
		logger.Warn("No database configured, using in-memory store")
		app.Store = memstore.New()
	}

	if cfg.NATSURL != "" {
		pub, err := realtime.NewNATSPublisher(cfg.NATSURL)
		if err != nil {
			return err
		}
		defer pub.Close()
		app.Publisher = pub
	} else {
		app.Publisher = realtime.NewBus()
	}

	root := &cobra.Command{
		Use:           "flightguard",
		Short:         "Protected-flight service dashboard",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		commands.ServeCmd(app),
		commands.MigrateCmd(app),
		commands.ImportCmd(app),
		commands.AssignCmd(app),
		commands.TargetsCmd(app),
	)

	if err := root.ExecuteContext(ctx); err != nil {
		logger.Error("Command failed", zap.Error(err))
		return err
	}
	return nil
}
