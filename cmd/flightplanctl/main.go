package main

import (
	"context"
	"fmt"
	"os"

	"flightplan-service/internal/app"
	"flightplan-service/internal/cli"
	"flightplan-service/internal/domain/repository"
	"flightplan-service/internal/infrastructure/config"
	"flightplan-service/pkg/logger"
)

var version = "dev"

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	log := logger.NewLogger(cfg.AppEnv)

	opts := cli.Options{
		Version: version,
		OpenStore: func(ctx context.Context) (repository.FlightPlanStore, app.Closers, error) {
			return app.NewFlightPlanStore(ctx, cfg, log, nil)
		},
		OpenUsers: func(ctx context.Context) (cli.UserAdmin, app.Closers, error) {
			users, closers, err := app.NewUserAdmin(ctx, cfg)
			if err != nil {
				return nil, closers, err
			}
			return users, closers, nil
		},
	}

	err = cli.Execute(opts)
	_ = log.Sync()
	if err != nil {
		os.Exit(1)
	}
}
