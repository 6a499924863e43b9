package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"planboard/internal/client"
	"planboard/internal/config"
	"planboard/internal/logger"
	"planboard/internal/ui"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"
)

var _ ui.Backend = (*client.Client)(nil)

func main() {
	configPath := flag.String("config", config.DefaultPath, "path to the YAML config")
	logPath := flag.String("log", "board.log", "log file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if err := logger.InitFile(*logPath); err != nil {
		fmt.Fprintln(os.Stderr, "logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	api := client.New(cfg.Client.APIURL,
		client.WithToken(cfg.Client.Token),
		client.WithTimeout(cfg.Client.Timeout))
	if err := api.Health(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "API at %s is not reachable: %v\n", cfg.Client.APIURL, err)
		os.Exit(1)
	}
	logger.Info("Board: connected", zap.String("api_url", cfg.Client.APIURL))

	p := tea.NewProgram(ui.NewApp(ctx, api), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		logger.Error("Board: stopped with error", err)
		fmt.Fprintf(os.Stderr, "Error running board: %v\n", err)
		os.Exit(1)
	}
}
