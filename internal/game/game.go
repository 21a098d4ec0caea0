// Package game is the state machine of a playthrough: it requests scenes,
// reveals them, routes typing to the active challenge and tracks progression.
package game

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tatianab/phantom-pursuit/internal/challenge"
	"github.com/tatianab/phantom-pursuit/internal/engine"
	"github.com/tatianab/phantom-pursuit/internal/models"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Phase is the top-level state of the game.
type Phase string

const (
	PhaseStart    Phase = "start"
	PhaseLoading  Phase = "loading"
	PhasePlaying  Phase = "playing"
	PhaseMinigame Phase = "minigame"
	PhaseError    Phase = "error"
)

// DefaultRevealDelay lets the boot animation finish before a scene appears.
const DefaultRevealDelay = 3800 * time.Millisecond

var ErrEmptyAction = errors.New("action text is empty")

// SceneFetcher produces the next scene for a playthrough's transcript.
type SceneFetcher interface {
	Fetch(ctx context.Context, tr *engine.Transcript, priorAction string, difficulty models.Difficulty, rank string) (*models.Scene, error)
}

type Option func(*Game)

func WithLogger(logger *zap.Logger) Option {
	return func(g *Game) { g.log = logger.Named("game") }
}

// WithRevealDelay sets the minimum time between issuing a fetch and showing
// its scene.
func WithRevealDelay(d time.Duration) Option {
	return func(g *Game) { g.revealDelay = d }
}

func WithContextWindow(n int) Option {
	return func(g *Game) { g.window = n }
}

// WithOnChange registers an observer called after every state change. It is
// called without any lock held and must not block.
func WithOnChange(fn func(Snapshot)) Option {
	return func(g *Game) { g.onChange = fn }
}

// Game owns the current playthrough. It is safe for concurrent use: fetch
// results arrive on their own goroutines.
type Game struct {
	fetcher     SceneFetcher
	log         *zap.Logger
	revealDelay time.Duration
	window      int
	seed        string
	onChange    func(Snapshot)

	// fetchSlot admits one scene fetch at a time, stale ones included.
	fetchSlot *semaphore.Weighted
	inflight  sync.WaitGroup

	mu      sync.Mutex
	version uint64
	phase   Phase
	errMsg  string
	pt      *playthrough
}

func New(fetcher SceneFetcher, opts ...Option) *Game {
	g := &Game{
		fetcher:     fetcher,
		log:         zap.NewNop(),
		revealDelay: DefaultRevealDelay,
		window:      engine.DefaultWindow,
		seed:        engine.OpeningTurn(),
		fetchSlot:   semaphore.NewWeighted(1),
		phase:       PhaseStart,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *Game) Phase() Phase {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.phase
}

func (g *Game) Snapshot() Snapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.snapshotLocked(time.Now())
}

// SelectDifficulty starts a new playthrough and requests its first scene.
func (g *Game) SelectDifficulty(d models.Difficulty) error {
	d, err := models.ParseDifficulty(string(d))
	if err != nil {
		return err
	}

	g.mu.Lock()
	if g.phase != PhaseStart {
		p := g.phase
		g.mu.Unlock()
		return wrongPhase("select difficulty", p)
	}
	g.pt = newPlaythrough(d, g.seed, g.window)
	g.phase = PhaseLoading
	g.errMsg = ""
	g.log.Info("mission started", zap.String("playthrough", g.pt.id.String()), zap.String("difficulty", string(d)))
	g.requestScene(g.pt, "")
	g.commit()
	return nil
}

// SubmitAction records the player's action and requests the next scene.
func (g *Game) SubmitAction(text string) error {
	g.mu.Lock()
	err := g.submitLocked(text)
	g.commitIf(err)
	return err
}

// CompleteTypingChallenge scores a finished word challenge and advances.
func (g *Game) CompleteTypingChallenge(stats models.TypingStats, word string) error {
	g.mu.Lock()
	if g.phase != PhasePlaying {
		p := g.phase
		g.mu.Unlock()
		return wrongPhase("complete typing challenge", p)
	}
	err := g.completeTypingLocked(stats, word)
	g.commitIf(err)
	return err
}

// CompleteMiniGame scores a finished firewall or debug challenge and advances.
func (g *Game) CompleteMiniGame() error {
	g.mu.Lock()
	if g.phase != PhaseMinigame {
		p := g.phase
		g.mu.Unlock()
		return wrongPhase("complete minigame", p)
	}
	err := g.completeMiniGameLocked()
	g.commitIf(err)
	return err
}

// Input feeds the live typed value to the active challenge. When the value
// completes it, the matching Complete operation runs.
func (g *Game) Input(value string, now time.Time) (challenge.Progress, error) {
	g.mu.Lock()
	pt := g.pt
	if (g.phase != PhasePlaying && g.phase != PhaseMinigame) || pt == nil || pt.evaluator == nil {
		p := g.phase
		g.mu.Unlock()
		return challenge.Progress{}, wrongPhase("input", p)
	}

	progress := pt.evaluator.Type(value, now)
	if !progress.Completed {
		g.mu.Unlock()
		return progress, nil
	}

	var err error
	if w, ok := pt.evaluator.(*challenge.Word); ok {
		err = g.completeTypingLocked(w.Stats(), pt.scene.ChallengeWord)
	} else {
		err = g.completeMiniGameLocked()
	}
	g.commitIf(err)
	return progress, err
}

// Restart abandons the playthrough from any phase. A fetch still in flight
// for it is cancelled and its result ignored.
func (g *Game) Restart() {
	g.mu.Lock()
	if g.pt != nil {
		g.log.Info("mission aborted", zap.String("playthrough", g.pt.id.String()), zap.String("phase", string(g.phase)))
		g.pt.cancel()
	}
	g.pt = nil
	g.phase = PhaseStart
	g.errMsg = ""
	g.commit()
}

// Close cancels the current playthrough and waits for fetches to settle.
func (g *Game) Close() {
	g.mu.Lock()
	if g.pt != nil {
		g.pt.cancel()
	}
	g.mu.Unlock()
	g.inflight.Wait()
}

func (g *Game) completeTypingLocked(stats models.TypingStats, word string) error {
	pt := g.pt
	xp := models.TypingXP(stats)
	pt.player = models.AwardXP(pt.player, xp)
	pt.typing = pt.typing.Blend(stats)
	g.log.Debug("typing challenge complete",
		zap.String("playthrough", pt.id.String()),
		zap.String("word", word),
		zap.Int("wpm", stats.WPM),
		zap.Int("xp", xp))

	outcome := fmt.Sprintf("Command executed: \"%s\"!", word)
	if pt.scene != nil && strings.TrimSpace(pt.scene.PositiveOutcome) != "" {
		outcome = pt.scene.PositiveOutcome
	}
	return g.submitLocked(outcome)
}

func (g *Game) completeMiniGameLocked() error {
	pt := g.pt
	pt.player = models.AwardXP(pt.player, models.MiniGameXP)

	outcome := "System breached! Access granted."
	if pt.scene != nil && strings.TrimSpace(pt.scene.PositiveOutcome) != "" {
		outcome = pt.scene.PositiveOutcome
	}
	return g.submitLocked(outcome)
}

func (g *Game) submitLocked(text string) error {
	if g.phase != PhasePlaying && g.phase != PhaseMinigame {
		return wrongPhase("submit action", g.phase)
	}
	pt := g.pt
	if pt == nil || pt.difficulty == "" {
		iv := &InvariantViolation{Reason: "story advanced without a difficulty"}
		g.failLocked(MsgNoDifficulty, iv)
		return iv
	}
	if strings.TrimSpace(text) == "" {
		return ErrEmptyAction
	}

	pt.history = append(pt.history, models.StoryHistoryItem{Text: text, Source: models.SourcePlayer})
	pt.evaluator = nil
	g.phase = PhaseLoading
	g.requestScene(pt, text)
	return nil
}

// requestScene starts the fetch for pt. The result is applied by deliver
// only if pt is still the current playthrough by then.
func (g *Game) requestScene(pt *playthrough, action string) {
	difficulty, rank := pt.difficulty, pt.player.Rank
	first := pt.delivered == 0
	issued := time.Now()

	g.inflight.Add(1)
	go func() {
		defer g.inflight.Done()
		scene, err := g.fetch(pt, action, difficulty, rank)
		if err == nil {
			err = g.holdReveal(pt.ctx, issued)
		}
		g.deliver(pt, scene, err, first)
	}()
}

func (g *Game) fetch(pt *playthrough, action string, d models.Difficulty, rank string) (*models.Scene, error) {
	if err := g.fetchSlot.Acquire(pt.ctx, 1); err != nil {
		return nil, err
	}
	defer g.fetchSlot.Release(1)
	return g.fetcher.Fetch(pt.ctx, pt.transcript, action, d, rank)
}

func (g *Game) holdReveal(ctx context.Context, issued time.Time) error {
	wait := g.revealDelay - time.Since(issued)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *Game) deliver(pt *playthrough, scene *models.Scene, err error, first bool) {
	g.mu.Lock()
	if g.pt != pt {
		g.mu.Unlock()
		g.log.Info("discarding stale scene result",
			zap.String("playthrough", pt.id.String()),
			zap.Bool("failed", err != nil))
		return
	}

	if err != nil {
		msg := MsgConnectionLost
		if first {
			msg = MsgStartFailed
		}
		g.failLocked(msg, err)
		g.commit()
		return
	}

	g.applySceneLocked(pt, scene)
	g.commit()
}

func (g *Game) applySceneLocked(pt *playthrough, scene *models.Scene) {
	ev, err := challenge.New(scene)
	if err != nil {
		g.failLocked(MsgChallengeBroken, &InvariantViolation{Reason: err.Error()})
		return
	}

	pt.delivered++
	pt.scene = scene
	pt.evaluator = ev
	pt.history = append(pt.history, models.StoryHistoryItem{Text: scene.Story, Source: models.SourceNarrator})
	pt.codex = pt.codex.Merge(scene.CodexEntries...)
	if scene.Location != nil {
		pt.trace = append(pt.trace, *scene.Location)
	}

	if scene.ChallengeType.IsMiniGame() {
		g.phase = PhaseMinigame
	} else {
		g.phase = PhasePlaying
	}
	g.log.Info("scene delivered",
		zap.String("playthrough", pt.id.String()),
		zap.Int("scene", pt.delivered),
		zap.String("challenge", string(scene.ChallengeType)))
}

func (g *Game) failLocked(msg string, err error) {
	g.log.Error("mission failed", zap.String("message", msg), zap.Error(err))
	if g.pt != nil {
		g.pt.evaluator = nil
	}
	g.phase = PhaseError
	g.errMsg = msg
}

// commit releases g.mu and notifies the observer.
func (g *Game) commit() {
	g.version++
	snap := g.snapshotLocked(time.Now())
	g.mu.Unlock()
	if g.onChange != nil {
		g.onChange(snap)
	}
}

// commitIf commits when err left the game in a new state worth reporting,
// and only unlocks otherwise.
func (g *Game) commitIf(err error) {
	var iv *InvariantViolation
	if err == nil || errors.As(err, &iv) {
		g.commit()
		return
	}
	g.mu.Unlock()
}
