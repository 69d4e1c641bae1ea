package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"
	_ "time/tzdata"

	"lexdash/internal/backend"
	"lexdash/internal/cli"
	apphttp "lexdash/internal/http"
	applog "lexdash/internal/log"
)

func main() {
	bootLogger := cli.SetupLogger(os.Getenv("LOG_LEVEL"))
	cli.LoadEnvFile(bootLogger)

	cfg, err := cli.LoadAndValidateConfig()
	if err != nil {
		bootLogger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	logger := cli.SetupLogger(cfg.LogLevel)

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", applog.FieldError, err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).CreateBackend(context.Background(), backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", applog.FieldError, err)
		os.Exit(1)
	}

	srv, err := apphttp.NewServer(apphttp.Config{
		Addr:           cfg.Addr(),
		Practice:       res.Practice,
		Tokens:         res.Tokens,
		Logger:         logger,
		WriteRateLimit: cfg.WriteRateLimit,
		TrustedProxies: cfg.TrustedProxies,
		SecureCookies:  cfg.SecureCookies,
	})
	if err != nil {
		logger.Error("Failed to build HTTP server", applog.FieldError, err)
		if cerr := res.Cleanup(); cerr != nil {
			logger.Error("Backend cleanup failed", applog.FieldError, cerr)
		}
		os.Exit(1)
	}

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) error {
		return errors.Join(srv.Shutdown(ctx), res.Cleanup())
	})

	logger.Info("Starting lexdash server",
		"port", cfg.Port,
		"db_path", cfg.SQLiteDBPath,
		"timezone", cfg.Timezone,
		"operation", applog.OpStartup)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}
