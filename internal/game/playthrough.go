package game

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tatianab/phantom-pursuit/internal/challenge"
	"github.com/tatianab/phantom-pursuit/internal/engine"
	"github.com/tatianab/phantom-pursuit/internal/models"
)

// playthrough is everything that belongs to one run from difficulty
// selection to restart. It is replaced, never reset in place, so a fetch
// holding an old playthrough can be recognised as stale.
type playthrough struct {
	id     uuid.UUID
	ctx    context.Context
	cancel context.CancelFunc

	difficulty models.Difficulty
	transcript *engine.Transcript
	delivered  int

	scene     *models.Scene
	evaluator challenge.Evaluator

	history []models.StoryHistoryItem
	codex   models.Codex
	trace   []models.Location
	player  models.PlayerStats
	typing  models.TypingStats
}

func newPlaythrough(d models.Difficulty, seed string, window int) *playthrough {
	ctx, cancel := context.WithCancel(context.Background())
	return &playthrough{
		id:         uuid.New(),
		ctx:        ctx,
		cancel:     cancel,
		difficulty: d,
		transcript: engine.NewTranscript(seed, window),
		player:     models.InitialPlayerStats(),
		typing:     models.InitialTypingStats(),
	}
}

// Snapshot is the state a presentation layer renders.
type Snapshot struct {
	Version     uint64                    `json:"version"`
	Phase       Phase                     `json:"phase"`
	Playthrough string                    `json:"playthrough,omitempty"`
	Difficulty  models.Difficulty         `json:"difficulty,omitempty"`
	Scene       *models.Scene             `json:"scene,omitempty"`
	History     []models.StoryHistoryItem `json:"history"`
	Codex       []models.CodexEntry       `json:"codex"`
	Trace       []models.Location         `json:"trace"`
	Player      models.PlayerStats        `json:"player"`
	RankInfo    models.Rank               `json:"rankInfo"`
	Typing      models.TypingStats        `json:"typing"`
	LiveWPM     int                       `json:"liveWpm"`
	Error       string                    `json:"error,omitempty"`
	Challenge   *challenge.View           `json:"challenge,omitempty"`
}

// Report converts the snapshot into a debrief.
func (s Snapshot) Report() *models.Report {
	return &models.Report{
		Playthrough: s.Playthrough,
		Difficulty:  s.Difficulty,
		Outcome:     string(s.Phase),
		Player:      s.Player,
		Typing:      s.Typing,
		History:     s.History,
		Codex:       s.Codex,
		Trace:       s.Trace,
	}
}

func (g *Game) snapshotLocked(now time.Time) Snapshot {
	s := Snapshot{
		Version:  g.version,
		Phase:    g.phase,
		Error:    g.errMsg,
		History:  []models.StoryHistoryItem{},
		Codex:    []models.CodexEntry{},
		Trace:    []models.Location{},
		Player:   models.InitialPlayerStats(),
		Typing:   models.InitialTypingStats(),
		RankInfo: models.Ranks[0],
	}

	pt := g.pt
	if pt == nil {
		return s
	}
	s.Playthrough = pt.id.String()
	s.Difficulty = pt.difficulty
	s.Scene = pt.scene
	s.History = append(s.History, pt.history...)
	s.Codex = append(s.Codex, pt.codex...)
	s.Trace = append(s.Trace, pt.trace...)
	s.Player = pt.player
	s.RankInfo = models.RankAt(pt.player.RankIndex)
	s.Typing = pt.typing
	if pt.evaluator != nil {
		v := pt.evaluator.View(now)
		s.Challenge = &v
		if w, ok := pt.evaluator.(*challenge.Word); ok {
			s.LiveWPM = w.LiveWPM(now)
		}
	}
	return s
}
