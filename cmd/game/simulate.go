package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/tatianab/phantom-pursuit/internal/autopilot"
	"github.com/tatianab/phantom-pursuit/internal/game"
	"github.com/tatianab/phantom-pursuit/internal/logging"
	"github.com/tatianab/phantom-pursuit/internal/models"
)

var (
	simTurns      int
	simDifficulty string
	simReport     string
	simWPM        int
	simTypoEvery  int
	simTimeout    time.Duration
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Play a mission headlessly against the live backend",
	Long: `Runs the autopilot through a mission: it types every challenge at a
steady pace so the content backend, retry policy and state machine can be
exercised end to end. Optionally writes a YAML debrief.

Example:
  game simulate --turns 8 --difficulty hard --report out/debrief.yaml`,
	Args: cobra.NoArgs,
	RunE: runSimulate,
}

func init() {
	simulateCmd.Flags().IntVarP(&simTurns, "turns", "n", 5, "Challenges to clear")
	simulateCmd.Flags().StringVarP(&simDifficulty, "difficulty", "d", "Medium", "Easy, Medium or Hard")
	simulateCmd.Flags().StringVar(&simReport, "report", "", "Write a YAML debrief to this file")
	simulateCmd.Flags().IntVar(&simWPM, "wpm", 60, "Autopilot typing speed")
	simulateCmd.Flags().IntVar(&simTypoEvery, "typo-every", 0, "Mistype once every n keys (0 disables)")
	simulateCmd.Flags().DurationVar(&simTimeout, "timeout", 10*time.Minute, "Give up after this long")
}

func runSimulate(cmd *cobra.Command, args []string) error {
	d, err := models.ParseDifficulty(simDifficulty)
	if err != nil {
		return err
	}
	if simTurns < 1 {
		return fmt.Errorf("--turns must be at least 1")
	}

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// Nobody is watching a boot animation.
	cfg.RevealDelay = 0

	logger, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, simTimeout)
	defer cancel()

	agent := autopilot.New(
		autopilot.WithWPM(simWPM),
		autopilot.WithTypoEvery(simTypoEvery),
		autopilot.WithLogger(logger))
	s, err := newSession(ctx, cfg, logger, agent.Notify)
	if err != nil {
		return err
	}
	defer s.Close()

	snap, runErr := agent.Run(ctx, s.game, d, simTurns)

	report := snap.Report()
	report.Outcome = outcome(runErr)
	printDebrief(cmd.OutOrStdout(), snap, report.Outcome)

	if simReport != "" {
		if err := report.Save(simReport); err != nil {
			return fmt.Errorf("writing report: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Debrief written to %s\n", simReport)
	}
	return runErr
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "completed"
	case errors.Is(err, autopilot.ErrMissionFailed):
		return "failed"
	default:
		return "aborted"
	}
}

func printDebrief(w io.Writer, snap game.Snapshot, outcome string) {
	fmt.Fprintf(w, "--- Mission %s (%s) ---\n", outcome, snap.Difficulty)
	for _, item := range snap.History {
		if item.Source == models.SourcePlayer {
			fmt.Fprintf(w, "> %s\n", item.Text)
			continue
		}
		fmt.Fprintf(w, "%s\n", item.Text)
	}
	fmt.Fprintf(w, "\nRank: %s (%d xp)\n", snap.Player.Rank, snap.Player.XP)
	fmt.Fprintf(w, "Typing: %d wpm, %d%% accuracy\n", snap.Typing.WPM, snap.Typing.Accuracy)
	fmt.Fprintf(w, "Codex entries: %d\n", len(snap.Codex))
	for _, loc := range snap.Trace {
		fmt.Fprintf(w, "Trace: %s\n", loc)
	}
	if snap.Error != "" {
		fmt.Fprintf(w, "Error: %s\n", snap.Error)
	}
}
