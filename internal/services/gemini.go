package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/hollowayink/wayfarer/pkg/game"
	"github.com/hollowayink/wayfarer/pkg/prompts"
)

const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiService implements NarrativeService on the Gemini API.
type GeminiService struct {
	client *genai.Client
	model  *genai.GenerativeModel
	logger *slog.Logger
}

// Ensure GeminiService implements NarrativeService
var _ NarrativeService = (*GeminiService)(nil)

// NewGeminiService creates a narrative service backed by the given
// Gemini model. The model is pinned to JSON output; the system
// instruction carries the full game-master contract.
func NewGeminiService(ctx context.Context, apiKey string, modelName string, logger *slog.Logger) (*GeminiService, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = DefaultGeminiModel
	}

	model := client.GenerativeModel(modelName)
	model.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompts.SystemPrompt)},
	}

	return &GeminiService{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

func (g *GeminiService) Close() error {
	return g.client.Close()
}

// StartAdventure requests the opening turn of a themed adventure.
func (g *GeminiService) StartAdventure(ctx context.Context, theme string) (*game.TurnResult, error) {
	return g.generateTurn(ctx, prompts.StartPrompt(theme))
}

// Advance requests the turn that follows a player command.
func (g *GeminiService) Advance(ctx context.Context, command string, recentHistory []string, inventory []string, currentSceneID string) (*game.TurnResult, error) {
	prompt := prompts.TurnPrompt(command, recentHistory, inventory, currentSceneID)
	return g.generateTurn(ctx, prompt)
}

func (g *GeminiService) generateTurn(ctx context.Context, prompt string) (*game.TurnResult, error) {
	resp, err := g.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, fmt.Errorf("gemini request failed: %w", err)
	}

	raw := collectText(resp)
	if raw == "" {
		return nil, fmt.Errorf("%w: gemini returned no text candidates", game.ErrMalformed)
	}

	tr, err := game.ParseTurnResult(raw)
	if err != nil {
		g.logger.Warn("Unparseable narrative response", "error", err, "raw_length", len(raw))
		return nil, err
	}
	return tr, nil
}

// collectText concatenates the text parts of the first candidate.
func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}
