package engine

import (
	"context"
	"time"

	"github.com/sethvargo/go-retry"
	"github.com/tatianab/phantom-pursuit/internal/models"
	"go.uber.org/zap"
)

const (
	DefaultMaxAttempts    = 3
	DefaultInitialBackoff = 2 * time.Second
)

// Fetcher wraps one scene request in bounded exponential retry and keeps the
// transcript in step with what the source has produced.
type Fetcher struct {
	source         Source
	maxAttempts    int
	initialBackoff time.Duration
	log            *zap.Logger
}

type FetcherOption func(*Fetcher)

// WithRetry sets the attempt budget and the first backoff delay.
func WithRetry(maxAttempts int, initialBackoff time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if maxAttempts > 0 {
			f.maxAttempts = maxAttempts
		}
		if initialBackoff > 0 {
			f.initialBackoff = initialBackoff
		}
	}
}

func WithLogger(logger *zap.Logger) FetcherOption {
	return func(f *Fetcher) { f.log = logger.Named("fetch") }
}

func NewFetcher(source Source, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:         source,
		maxAttempts:    DefaultMaxAttempts,
		initialBackoff: DefaultInitialBackoff,
		log:            zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch requests the next scene. An empty priorAction starts a new
// playthrough and resets tr to its seed turn.
func (f *Fetcher) Fetch(ctx context.Context, tr *Transcript, priorAction string, difficulty models.Difficulty, rank string) (*models.Scene, error) {
	if priorAction == "" {
		tr.Reset()
	} else {
		tr.Add(actionTurn(priorAction))
	}
	req := Request{Turns: tr.Turns(), Difficulty: difficulty, Rank: rank}

	var (
		scene   *models.Scene
		attempt int
	)
	err := retry.Do(ctx, f.backoff(), func(ctx context.Context) error {
		attempt++
		s, err := f.source.GenerateScene(ctx, req)
		if err == nil {
			scene = s
			return nil
		}
		f.log.Warn("scene request failed",
			zap.Int("attempt", attempt),
			zap.Bool("retryable", IsRetryable(err)),
			zap.Error(err))
		if IsRetryable(err) {
			return retry.RetryableError(err)
		}
		return err
	})
	if err != nil {
		f.log.Error("giving up on scene", zap.Int("attempts", attempt), zap.Error(err))
		return nil, &FetchError{Message: FetchFailedMessage, Attempts: attempt, Err: err}
	}

	tr.Add(storyTurn(scene.Story))
	return scene, nil
}

// backoff yields initialBackoff, 2*initialBackoff, ... for at most
// maxAttempts-1 retries.
func (f *Fetcher) backoff() retry.Backoff {
	b := retry.WithMaxRetries(uint64(f.maxAttempts-1), retry.NewExponential(f.initialBackoff))
	return retry.BackoffFunc(func() (time.Duration, bool) {
		d, stop := b.Next()
		if !stop {
			f.log.Info("rate limited, retrying", zap.Duration("delay", d))
		}
		return d, stop
	})
}
