package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tatianab/phantom-pursuit/internal/config"
	"github.com/tatianab/phantom-pursuit/internal/engine"
	"github.com/tatianab/phantom-pursuit/internal/game"
	"go.uber.org/zap"
)

var (
	configPath string
	logFile    string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "game",
	Short: "PhantomByte Pursuit, a typing game narrated by Gemini",
	Long: `Track the hacker PhantomByte across the globe by typing the commands
Mission Control sends you. Scenes are generated live by Gemini.

Run without arguments to play in the terminal.`,
	SilenceUsage: true,
	RunE:         runPlay,
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in the terminal",
	RunE:  runPlay,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML config file")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(simulateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// session is a game wired to a live content backend.
type session struct {
	client engine.Client
	game   *game.Game
}

func newSession(ctx context.Context, cfg *config.Config, logger *zap.Logger, onChange func(game.Snapshot)) (*session, error) {
	client, err := engine.NewClient(ctx, cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("creating %s client: %w", cfg.Backend, err)
	}

	fetcher := engine.NewFetcher(client,
		engine.WithRetry(cfg.MaxAttempts, cfg.InitialBackoff),
		engine.WithLogger(logger))

	opts := []game.Option{
		game.WithLogger(logger),
		game.WithRevealDelay(cfg.RevealDelay),
		game.WithContextWindow(cfg.ContextWindow),
	}
	if onChange != nil {
		opts = append(opts, game.WithOnChange(onChange))
	}
	return &session{client: client, game: game.New(fetcher, opts...)}, nil
}

func (s *session) Close() {
	s.game.Close()
	s.client.Close()
}
