package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/hnrobert/equidash/internal/config"
	"github.com/hnrobert/equidash/internal/logger"
	"github.com/hnrobert/equidash/internal/server"
)

func main() {
	configPath := flag.String("config", getenvDefault("EQUIDASH_CONFIG", config.DefaultPath()), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("load config: %v", err)
		os.Exit(1)
	}
	logger.SetLevel(logger.ParseLevel(cfg.LogLevel))
	if err := logger.Init(cfg.LogDir); err != nil {
		logger.Warn("file logging disabled: %v", err)
	}
	defer logger.Close()

	srv, err := server.New(cfg)
	if err != nil {
		logger.Error("init server: %v", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("equidash listening on %s (users: %s)", cfg.Listen, cfg.UsersFile)
	if err := srv.Run(ctx); err != nil {
		logger.Error("server: %v", err)
		os.Exit(1)
	}
	logger.Info("equidash stopped")
}

func getenvDefault(key, def string) string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	return v
}
