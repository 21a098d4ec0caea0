package engine

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"github.com/tatianab/phantom-pursuit/internal/config"
	"github.com/tatianab/phantom-pursuit/internal/models"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Engine is the Mission Control content source on the generative-ai-go client.
type Engine struct {
	client *genai.Client
	model  *genai.GenerativeModel
	log    *zap.Logger
}

func NewEngine(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Engine, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.GeminiAPIKey))
	if err != nil {
		return nil, err
	}

	model := client.GenerativeModel(cfg.Model)
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(systemInstruction)}}
	model.ResponseMIMEType = "application/json"
	model.ResponseSchema = sceneSchema()
	model.SetTemperature(cfg.Temperature)

	return &Engine{
		client: client,
		model:  model,
		log:    logger.Named("engine"),
	}, nil
}

func (e *Engine) Close() {
	e.client.Close()
}

func (e *Engine) GenerateScene(ctx context.Context, req Request) (*models.Scene, error) {
	prompt, err := renderRequest(req)
	if err != nil {
		return nil, &FatalServiceError{Err: err}
	}

	resp, err := e.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, classify(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return nil, &FatalServiceError{Err: fmt.Errorf("no content returned from Gemini")}
	}

	part := resp.Candidates[0].Content.Parts[0]
	text, ok := part.(genai.Text)
	if !ok {
		return nil, &FatalServiceError{Err: fmt.Errorf("unexpected response type from Gemini")}
	}

	e.log.Debug("scene generated", zap.Int("turns", len(req.Turns)), zap.Int("bytes", len(text)))
	return DecodeScene(string(text))
}

func sceneSchema() *genai.Schema {
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
