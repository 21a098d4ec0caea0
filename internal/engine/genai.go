package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/tatianab/phantom-pursuit/internal/config"
	"github.com/tatianab/phantom-pursuit/internal/models"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

// GenAIEngine is the same content source on the google.golang.org/genai SDK.
type GenAIEngine struct {
	client *genai.Client
	model  string
	config *genai.GenerateContentConfig
	log    *zap.Logger
}

func NewGenAIEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*GenAIEngine, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.GeminiAPIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	return &GenAIEngine{
		client: client,
		model:  cfg.Model,
		config: &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
			ResponseMIMEType:  "application/json",
			ResponseSchema:    genaiSceneSchema(),
			Temperature:       genai.Ptr(cfg.Temperature),
		},
		log: logger.Named("genai"),
	}, nil
}

// Close is a no-op; the SDK client holds no connection.
func (e *GenAIEngine) Close() {}

func (e *GenAIEngine) GenerateScene(ctx context.Context, req Request) (*models.Scene, error) {
	prompt, err := renderRequest(req)
	if err != nil {
		return nil, &FatalServiceError{Err: err}
	}

	resp, err := e.client.Models.GenerateContent(ctx, e.model, genai.Text(prompt), e.config)
	if err != nil {
		return nil, classify(err)
	}

	text := resp.Text()
	e.log.Debug("scene generated", zap.Int("turns", len(req.Turns)), zap.Int("bytes", len(text)))
	return DecodeScene(text)
}

func genaiStatusCode(err error) (int, bool) {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code, true
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return apiErrPtr.Code, true
	}
	return 0, false
}

func genaiSceneSchema() *genai.Schema {
	str := func(desc string) *genai.Schema {
		return &genai.Schema{Type: genai.TypeString, Description: desc}
	}
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"story": str("The next part of the briefing, one or two sentences."),
			"challengeType": {
				Type:        genai.TypeString,
				Enum:        []string{string(models.ChallengeWord), string(models.ChallengeFirewall), string(models.ChallengeDebug)},
				Description: "word for a command, firewall or debug for a minigame.",
			},
			"challengeWord": str("A single lowercase command sized for the difficulty. Also the minigame title."),
			"firewallChallenge": {
				Type:        genai.TypeArray,
				Items:       str("One code-like line."),
				Description: "Only for firewall: 3-5 lines. Empty otherwise.",
			},
			"debugChallenge": {
				Type:        genai.TypeObject,
				Description: "Only for debug. Empty otherwise.",
				Properties: map[string]*genai.Schema{
					"description": str("What the code should do and what is wrong."),
					"buggyCode":   str("A single line with one bug."),
					"correctCode": str("The corrected line."),
				},
			},
			"codexEntries": {
				Type:        genai.TypeArray,
				Description: "New important terms only. Empty if none.",
				Items: &genai.Schema{
					Type: genai.TypeObject,
					Properties: map[string]*genai.Schema{
						"title":   str("Entry title."),
						"content": str("One or two sentences of lore."),
					},
				},
			},
			"location": {
				Type:        genai.TypeObject,
				Description: "Where the operation is focused now.",
				Properties: map[string]*genai.Schema{
					"city":    str("City name."),
					"country": str("Country name."),
				},
			},
			"positiveOutcome": str("One sentence from Mission Control confirming success."),
		},
		Required: []string{"story", "challengeType", "challengeWord", "positiveOutcome"},
	}
}
