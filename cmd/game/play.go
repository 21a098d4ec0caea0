package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tatianab/phantom-pursuit/internal/logging"
	"github.com/tatianab/phantom-pursuit/internal/tui"
)

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger, err := logging.ForTerminal(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	var notifier tui.Notifier
	s, err := newSession(cmd.Context(), cfg, logger, notifier.Notify)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := tui.Run(s.game, &notifier, logger); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}
	return nil
}
