package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"flightplan-service/internal/infrastructure/config"
	"flightplan-service/pkg/logger"
)

func serverConfig() *config.Config {
	return &config.Config{
		Port:            "0",
		ReadTimeout:     time.Second,
		WriteTimeout:    time.Second,
		ShutdownTimeout: time.Second,
		StoreDriver:     config.StoreMemory,
		CacheDriver:     config.CacheNone,
		CacheTTL:        time.Minute,
		MongoOpTimeout:  time.Second,
		AuthUsername:    "admin",
		AuthPassword:    "secret",
	}
}

func TestRun_StartupFailuresAreErrors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *config.Config)
		wantErr string
	}{
		{
			name:    "missing credentials",
			mutate:  func(cfg *config.Config) { cfg.AuthPassword = "" },
			wantErr: "invalid auth configuration",
		},
		{
			name:    "unknown store driver",
			mutate:  func(cfg *config.Config) { cfg.StoreDriver = "cassandra" },
			wantErr: "failed to open flight plan store",
		},
		{
			name: "unreachable redis",
			mutate: func(cfg *config.Config) {
				cfg.CacheDriver = config.CacheRedis
				cfg.RedisAddr = "127.0.0.1:1"
			},
			wantErr: "failed to open flight plan store",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := serverConfig()
			tt.mutate(cfg)

			err := run(cfg, logger.NewNopLogger())
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}
