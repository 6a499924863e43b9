package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"planboard/internal/app"
	"planboard/internal/config"
	"planboard/internal/logger"
	"syscall"
)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg).Init(ctx)
	if err != nil {
		fmt.Fprintln(os.Stderr, "init:", err)
		os.Exit(1)
	}
	if err := a.Run(ctx); err != nil {
		logger.Error("App: stopped with error", err)
		os.Exit(1)
	}
}
