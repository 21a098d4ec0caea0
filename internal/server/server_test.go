package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tatianab/phantom-pursuit/internal/engine"
	"github.com/tatianab/phantom-pursuit/internal/game"
	"github.com/tatianab/phantom-pursuit/internal/models"
	"go.uber.org/zap"
)

type queueFetcher chan *models.Scene

func (q queueFetcher) Fetch(ctx context.Context, _ *engine.Transcript, _ string, _ models.Difficulty, _ string) (*models.Scene, error) {
	select {
	case s := <-q:
		return s, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type harness struct {
	t       *testing.T
	game    *game.Game
	scenes  queueFetcher
	handler http.Handler
}

func newHarness(t *testing.T) *harness {
	q := make(queueFetcher, 4)
	g := game.New(q, game.WithRevealDelay(0))
	t.Cleanup(g.Close)
	return &harness{t: t, game: g, scenes: q, handler: New(g, zap.NewNop()).Routes()}
}

func (h *harness) do(method, path, body string) *httptest.ResponseRecorder {
	h.t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func (h *harness) waitPhase(p game.Phase) {
	h.t.Helper()
	require.Eventually(h.t, func() bool { return h.game.Phase() == p }, time.Second, time.Millisecond)
}

func decodeSnapshot(t *testing.T, rec *httptest.ResponseRecorder) game.Snapshot {
	t.Helper()
	var s game.Snapshot
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &s))
	return s
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestState(t *testing.T) {
	h := newHarness(t)
	rec := h.do(http.MethodGet, "/api/state", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	s := decodeSnapshot(t, rec)
	assert.Equal(t, game.PhaseStart, s.Phase)
	assert.Equal(t, "Rookie", s.Player.Rank)
	assert.Equal(t, 100, s.Typing.Accuracy)
}

func TestDifficulty(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{"malformed", `{"difficulty":`, http.StatusBadRequest},
		{"unknown field", `{"level":"Easy"}`, http.StatusBadRequest},
		{"unknown difficulty", `{"difficulty":"Nightmare"}`, http.StatusBadRequest},
		{"valid", `{"difficulty":"hard"}`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			rec := h.do(http.MethodPost, "/api/difficulty", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}
}

func TestMissionFlow(t *testing.T) {
	h := newHarness(t)

	rec := h.do(http.MethodPost, "/api/difficulty", `{"difficulty":"Medium"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeSnapshot(t, rec)
	assert.Equal(t, game.PhaseLoading, s.Phase)
	assert.Equal(t, models.Medium, s.Difficulty)

	rec = h.do(http.MethodPost, "/api/action", `{"text":"hack"}`)
	assert.Equal(t, http.StatusConflict, rec.Code, "no actions while loading")

	h.scenes <- &models.Scene{Story: "Relay found.", ChallengeType: models.ChallengeWord, ChallengeWord: "scan"}
	h.waitPhase(game.PhasePlaying)

	rec = h.do(http.MethodPost, "/api/minigame/complete", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(http.MethodPost, "/api/input", `{"value":"sc"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	var in inputResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &in))
	assert.False(t, in.Completed)
	require.NotNil(t, in.State.Challenge)
	assert.Equal(t, "sc", in.State.Challenge.Typed)

	rec = h.do(http.MethodPost, "/api/input", `{"value":"scan"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &in))
	assert.True(t, in.Completed)
	assert.Equal(t, game.PhaseLoading, in.State.Phase)

	h.scenes <- &models.Scene{
		Story:             "Firewall.",
		ChallengeType:     models.ChallengeFirewall,
		ChallengeWord:     "wall",
		FirewallChallenge: []string{"auth user"},
		PositiveOutcome:   "The wall falls.",
	}
	h.waitPhase(game.PhaseMinigame)

	rec = h.do(http.MethodPost, "/api/minigame/complete", "")
	require.Equal(t, http.StatusOK, rec.Code)
	s = decodeSnapshot(t, rec)
	assert.Equal(t, "The wall falls.", s.History[len(s.History)-1].Text)

	rec = h.do(http.MethodPost, "/api/restart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, game.PhaseStart, decodeSnapshot(t, rec).Phase)
}

func TestChallengeComplete(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/difficulty", `{"difficulty":"Easy"}`).Code)
	h.scenes <- &models.Scene{Story: "Go.", ChallengeType: models.ChallengeWord, ChallengeWord: "exec"}
	h.waitPhase(game.PhasePlaying)

	rec := h.do(http.MethodPost, "/api/challenge/complete", `{"wpm":40,"accuracy":150,"word":"exec"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(http.MethodPost, "/api/challenge/complete", `{"wpm":40,"accuracy":100,"word":"exec"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	s := decodeSnapshot(t, rec)
	assert.Equal(t, 20, s.Player.XP)
	assert.Equal(t, models.TypingStats{WPM: 20, Accuracy: 100}, s.Typing)
	assert.Equal(t, `Command executed: "exec"!`, s.History[len(s.History)-1].Text)
}

func TestEmptyActionRejected(t *testing.T) {
	h := newHarness(t)
	require.Equal(t, http.StatusOK, h.do(http.MethodPost, "/api/difficulty", `{"difficulty":"Easy"}`).Code)
	h.scenes <- &models.Scene{Story: "Go.", ChallengeType: models.ChallengeWord, ChallengeWord: "exec"}
	h.waitPhase(game.PhasePlaying)

	rec := h.do(http.MethodPost, "/api/action", `{"text":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
