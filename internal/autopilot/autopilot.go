// Package autopilot plays a mission without a human at the keyboard. It types
// each challenge at a steady pace and is used to exercise a content backend
// end to end.
package autopilot

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/tatianab/phantom-pursuit/internal/challenge"
	"github.com/tatianab/phantom-pursuit/internal/game"
	"github.com/tatianab/phantom-pursuit/internal/models"
	"go.uber.org/zap"
)

var (
	ErrMissionFailed = errors.New("mission failed")
	ErrAborted       = errors.New("mission aborted")
)

type Option func(*Agent)

// WithWPM sets the typing pace.
func WithWPM(wpm int) Option {
	return func(a *Agent) {
		if wpm > 0 {
			a.interval = time.Minute / time.Duration(wpm*5)
		}
	}
}

// WithTypoEvery makes the agent hit a wrong key, then correct it, once every
// n keystrokes.
func WithTypoEvery(n int) Option {
	return func(a *Agent) { a.typoEvery = n }
}

func WithLogger(logger *zap.Logger) Option {
	return func(a *Agent) { a.log = logger.Named("autopilot") }
}

// Agent drives a game.Game. Its Notify method must be registered with
// game.WithOnChange so the agent wakes when scenes arrive.
type Agent struct {
	interval  time.Duration
	typoEvery int
	log       *zap.Logger

	signal chan struct{}
	clock  time.Time
	keys   int
}

func New(opts ...Option) *Agent {
	a := &Agent{
		interval: 200 * time.Millisecond,
		log:      zap.NewNop(),
		signal:   make(chan struct{}, 1),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Notify records that the game changed. It never blocks.
func (a *Agent) Notify(game.Snapshot) {
	select {
	case a.signal <- struct{}{}:
	default:
	}
}

// Run starts a mission at difficulty d and clears turns challenges. It
// returns the last snapshot it saw along with any error that stopped it.
func (a *Agent) Run(ctx context.Context, g *game.Game, d models.Difficulty, turns int) (game.Snapshot, error) {
	a.clock = time.Now()
	if err := g.SelectDifficulty(d); err != nil {
		return g.Snapshot(), err
	}

	cleared := 0
	for cleared < turns {
		snap := g.Snapshot()
		switch snap.Phase {
		case game.PhaseError:
			return snap, fmt.Errorf("%w: %s", ErrMissionFailed, snap.Error)
		case game.PhaseStart:
			return snap, ErrAborted
		case game.PhasePlaying, game.PhaseMinigame:
			if err := a.solve(g, snap); err != nil {
				return g.Snapshot(), err
			}
			cleared++
			a.log.Info("challenge cleared",
				zap.Int("turn", cleared),
				zap.String("challenge", string(snap.Scene.ChallengeType)),
				zap.String("rank", snap.Player.Rank))
			continue
		}

		select {
		case <-a.signal:
		case <-ctx.Done():
			return g.Snapshot(), ctx.Err()
		}
	}
	return g.Snapshot(), nil
}

// solve types the active challenge line by line until the game accepts it.
func (a *Agent) solve(g *game.Game, snap game.Snapshot) error {
	view := snap.Challenge
	if view == nil {
		return fmt.Errorf("%s phase without a challenge", snap.Phase)
	}

	for {
		target := []rune(view.Target)
		advanced := false
		for i := 1; i <= len(target); i++ {
			if a.typoEvery > 0 && (a.keys+1)%a.typoEvery == 0 {
				if err := a.typo(g, target[:i-1], target[i-1]); err != nil {
					return err
				}
			}

			p, err := a.key(g, string(target[:i]))
			if err != nil {
				return err
			}
			if p.Completed {
				return nil
			}
			if p.Advanced {
				advanced = true
				break
			}
		}
		if !advanced {
			return fmt.Errorf("challenge did not accept %q", view.Target)
		}

		view = g.Snapshot().Challenge
		if view == nil {
			return errors.New("challenge vanished mid-sequence")
		}
	}
}

func (a *Agent) typo(g *game.Game, prefix []rune, want rune) error {
	wrong := '#'
	if want == wrong {
		wrong = '@'
	}
	if _, err := a.key(g, string(prefix)+string(wrong)); err != nil {
		return err
	}
	_, err := a.key(g, string(prefix))
	return err
}

func (a *Agent) key(g *game.Game, value string) (challenge.Progress, error) {
	now := a.clock
	a.clock = a.clock.Add(a.interval)
	a.keys++
	return g.Input(value, now)
}
