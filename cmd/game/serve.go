package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tatianab/phantom-pursuit/internal/logging"
	"github.com/tatianab/phantom-pursuit/internal/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the game as a JSON HTTP API",
	Long: `Starts an HTTP server hosting a single game. A front end drives it with
POST /api/difficulty, /api/input, /api/challenge/complete,
/api/minigame/complete and /api/restart, and polls GET /api/state.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (overrides listen_addr)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if listenAddr != "" {
		cfg.ListenAddr = listenAddr
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := newSession(ctx, cfg, logger, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	return server.New(s.game, logger).ListenAndServe(ctx, cfg.ListenAddr)
}
