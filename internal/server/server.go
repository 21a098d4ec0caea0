// Package server exposes the game over a small JSON HTTP API so it can be
// driven by a browser front end or scripted clients.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/tatianab/phantom-pursuit/internal/game"
	"github.com/tatianab/phantom-pursuit/internal/models"
	"go.uber.org/zap"
)

// Server handles HTTP requests for a single game.
type Server struct {
	game *game.Game
	log  *zap.Logger
	now  func() time.Time
}

func New(g *game.Game, logger *zap.Logger) *Server {
	return &Server{game: g, log: logger.Named("http"), now: time.Now}
}

// Routes sets up the HTTP routes.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(middleware.Heartbeat("/health"))

	r.Route("/api", func(r chi.Router) {
		r.Get("/state", s.handleState)
		r.Post("/difficulty", s.handleDifficulty)
		r.Post("/action", s.handleAction)
		r.Post("/input", s.handleInput)
		r.Post("/challenge/complete", s.handleChallengeComplete)
		r.Post("/minigame/complete", s.handleMiniGameComplete)
		r.Post("/restart", s.handleRestart)
	})
	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", zap.String("addr", addr))
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Info("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", middleware.GetReqID(r.Context())))
	})
}

type difficultyRequest struct {
	Difficulty string `json:"difficulty"`
}

type actionRequest struct {
	Text string `json:"text"`
}

type inputRequest struct {
	Value string `json:"value"`
}

type challengeCompleteRequest struct {
	WPM      int    `json:"wpm"`
	Accuracy int    `json:"accuracy"`
	Word     string `json:"word"`
}

type inputResponse struct {
	Completed bool          `json:"completed"`
	Advanced  bool          `json:"advanced"`
	Mismatch  bool          `json:"mismatch"`
	State     game.Snapshot `json:"state"`
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.game.Snapshot())
}

func (s *Server) handleDifficulty(w http.ResponseWriter, r *http.Request) {
	var req difficultyRequest
	if !decode(w, r, &req) {
		return
	}
	d, err := models.ParseDifficulty(req.Difficulty)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.respond(w, s.game.SelectDifficulty(d))
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if !decode(w, r, &req) {
		return
	}
	s.respond(w, s.game.SubmitAction(req.Text))
}

func (s *Server) handleInput(w http.ResponseWriter, r *http.Request) {
	var req inputRequest
	if !decode(w, r, &req) {
		return
	}
	p, err := s.game.Input(req.Value, s.now())
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, inputResponse{
		Completed: p.Completed,
		Advanced:  p.Advanced,
		Mismatch:  p.Mismatch,
		State:     s.game.Snapshot(),
	})
}

func (s *Server) handleChallengeComplete(w http.ResponseWriter, r *http.Request) {
	var req challengeCompleteRequest
	if !decode(w, r, &req) {
		return
	}
	if req.WPM < 0 || req.Accuracy < 0 || req.Accuracy > 100 {
		writeError(w, http.StatusBadRequest, "wpm must be >= 0 and accuracy within 0..100")
		return
	}
	stats := models.TypingStats{WPM: req.WPM, Accuracy: req.Accuracy}
	s.respond(w, s.game.CompleteTypingChallenge(stats, req.Word))
}

func (s *Server) handleMiniGameComplete(w http.ResponseWriter, r *http.Request) {
	s.respond(w, s.game.CompleteMiniGame())
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	s.game.Restart()
	writeJSON(w, http.StatusOK, s.game.Snapshot())
}

// respond writes the post-operation state, or the error that prevented it.
func (s *Server) respond(w http.ResponseWriter, err error) {
	if err != nil {
		s.fail(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.game.Snapshot())
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	var iv *game.InvariantViolation
	switch {
	case errors.Is(err, game.ErrWrongPhase):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrEmptyAction), errors.Is(err, models.ErrInvalidDifficulty):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &iv):
		s.log.Error("invariant violation", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		s.log.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
