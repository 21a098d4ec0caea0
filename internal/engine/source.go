package engine

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/tatianab/phantom-pursuit/internal/config"
	"github.com/tatianab/phantom-pursuit/internal/models"
	"go.uber.org/zap"
)

//go:embed prompts/system_instruction.txt
var systemInstruction string

//go:embed prompts/opening.txt
var openingPrompt string

//go:embed prompts/scene_request.tmpl
var sceneRequestPrompt string

var sceneRequestTmpl = template.Must(template.New("scene_request").Parse(sceneRequestPrompt))

// OpeningTurn is the seed of every new playthrough's transcript.
func OpeningTurn() string {
	return strings.TrimSpace(openingPrompt)
}

// Request is everything the content source needs to write the next scene.
type Request struct {
	Turns      []string
	Difficulty models.Difficulty
	Rank       string
}

// Source produces scenes. Implementations return *RetryableServiceError for
// rate limiting and *FatalServiceError for everything else.
type Source interface {
	GenerateScene(ctx context.Context, req Request) (*models.Scene, error)
}

// Client is a Source backed by a network client that must be closed.
type Client interface {
	Source
	Close()
}

// NewClient builds the Gemini client selected by cfg.Backend.
func NewClient(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Client, error) {
	switch cfg.Backend {
	case config.BackendGenAI:
		return NewGenAIEngine(ctx, cfg, logger)
	case config.BackendGenerativeAI, "":
		return NewEngine(ctx, cfg, logger)
	}
	return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
}

func renderRequest(req Request) (string, error) {
	var buf bytes.Buffer
	if err := sceneRequestTmpl.Execute(&buf, req); err != nil {
		return "", err
	}
	return buf.String(), nil
}
