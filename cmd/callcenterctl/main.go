package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spec-kit/callcenter-service/internal/config"
	"github.com/spec-kit/callcenter-service/internal/observability"
	"github.com/spec-kit/callcenter-service/internal/persistence"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "callcenterctl",
		Short:         "Administrative tasks for the call center service",
		Version:       version,
		SilenceUsage: true,
	}
	root.AddCommand(newMigrateCmd(), newUserCmd(), newNotificationsCmd())
	return root
}

// adminEnv is the subset of the server wiring the admin commands need.
type adminEnv struct {
	cfg    *config.Config
	logger *zap.Logger
	pg     *persistence.Postgres
}

func openRuntime(ctx context.Context) (*adminEnv, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return &adminEnv{cfg: cfg, logger: logger, pg: pg}, nil
}

func (r *adminEnv) Close() {
	r.pg.Close()
	_ = r.logger.Sync()
}
