package services

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/hollowayink/wayfarer/pkg/game"
	"github.com/hollowayink/wayfarer/pkg/prompts"
)

const (
	geminiMediaBaseURL = "https://generativelanguage.googleapis.com/v1beta"

	DefaultImageModel  = "gemini-2.0-flash-preview-image-generation"
	DefaultVisionModel = "gemini-2.0-flash"
	DefaultSpeechModel = "gemini-2.5-flash-preview-tts"
)

// GeminiMediaService implements MediaService against the Gemini REST
// API: one model for scene art, one for locating interactables on that
// art, and one for narration speech.
type GeminiMediaService struct {
	apiKey      string
	imageModel  string
	visionModel string
	speechModel string
	httpClient  *http.Client
	logger      *slog.Logger
}

// Ensure GeminiMediaService implements MediaService
var _ MediaService = (*GeminiMediaService)(nil)

type mediaBlob struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"`
}

type mediaPart struct {
	Text       string     `json:"text,omitempty"`
	InlineData *mediaBlob `json:"inlineData,omitempty"`
}

type mediaContent struct {
	Role  string      `json:"role,omitempty"`
	Parts []mediaPart `json:"parts"`
}

type mediaGenerationConfig struct {
	ResponseModalities []string `json:"responseModalities,omitempty"`
	ResponseMIMEType   string   `json:"responseMimeType,omitempty"`
}

type mediaRequest struct {
	Contents         []mediaContent         `json:"contents"`
	GenerationConfig *mediaGenerationConfig `json:"generationConfig,omitempty"`
}

type mediaResponse struct {
	Candidates []struct {
		Content *mediaContent `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error,omitempty"`
}

// detectedObject is the vision model's native output shape. box_2d is
// [ymin, xmin, ymax, xmax] normalized to 0-1000.
type detectedObject struct {
	Name  string    `json:"name"`
	Box2D []float64 `json:"box_2d"`
}

func NewGeminiMediaService(apiKey string, logger *slog.Logger) *GeminiMediaService {
	return &GeminiMediaService{
		apiKey:      apiKey,
		imageModel:  DefaultImageModel,
		visionModel: DefaultVisionModel,
		speechModel: DefaultSpeechModel,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

func (g *GeminiMediaService) generate(ctx context.Context, model string, req mediaRequest) (*mediaResponse, error) {
	reqBody, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/models/%s:generateContent", geminiMediaBaseURL, model)
	httpReq, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(reqBody))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("x-goog-api-key", g.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var mr mediaResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if mr.Error != nil {
		return nil, fmt.Errorf("API error: %s", mr.Error.Message)
	}
	return &mr, nil
}

// firstBlob returns the first inline blob whose MIME type has the given
// prefix, or nil.
func (m *mediaResponse) firstBlob(mimePrefix string) *mediaBlob {
	for _, c := range m.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p.InlineData != nil && strings.HasPrefix(p.InlineData.MIMEType, mimePrefix) {
				return p.InlineData
			}
		}
	}
	return nil
}

func (m *mediaResponse) firstText() string {
	for _, c := range m.Candidates {
		if c.Content == nil {
			continue
		}
		for _, p := range c.Content.Parts {
			if p.Text != "" {
				return p.Text
			}
		}
	}
	return ""
}

// RenderScene generates scene art for a description and returns it as a
// data URI. An empty result means the model produced no image.
func (g *GeminiMediaService) RenderScene(ctx context.Context, description string) (string, error) {
	req := mediaRequest{
		Contents: []mediaContent{{
			Parts: []mediaPart{{
				Text: "A richly detailed point-and-click adventure game scene, painterly style, no text or UI elements: " + description,
			}},
		}},
		GenerationConfig: &mediaGenerationConfig{
			ResponseModalities: []string{"TEXT", "IMAGE"},
		},
	}

	resp, err := g.generate(ctx, g.imageModel, req)
	if err != nil {
		return "", fmt.Errorf("image generation failed: %w", err)
	}

	blob := resp.firstBlob("image/")
	if blob == nil {
		g.logger.Debug("Image generation returned no image part")
		return "", nil
	}
	return fmt.Sprintf("data:%s;base64,%s", blob.MIMEType, blob.Data), nil
}

// DetectHotspots asks the vision model to locate the named
// interactables on a rendered scene. Malformed detections are dropped
// silently; coordinates are converted from the model's 0-1000
// normalization to percentages.
func (g *GeminiMediaService) DetectHotspots(ctx context.Context, imageURI string, itemNames []string) ([]game.Hotspot, error) {
	if len(itemNames) == 0 {
		return []game.Hotspot{}, nil
	}

	mimeType, data, err := splitDataURI(imageURI)
	if err != nil {
		return nil, fmt.Errorf("invalid image for hotspot detection: %w", err)
	}

	req := mediaRequest{
		Contents: []mediaContent{{
			Parts: []mediaPart{
				{InlineData: &mediaBlob{MIMEType: mimeType, Data: data}},
				{Text: prompts.HotspotPrompt(itemNames)},
			},
		}},
		GenerationConfig: &mediaGenerationConfig{
			ResponseMIMEType: "application/json",
		},
	}

	resp, err := g.generate(ctx, g.visionModel, req)
	if err != nil {
		return nil, fmt.Errorf("hotspot detection failed: %w", err)
	}

	return parseDetections(resp.firstText()), nil
}

// parseDetections converts raw vision output into valid hotspots.
// Entries missing a name or a 4-element box are discarded.
func parseDetections(raw string) []game.Hotspot {
	var detections []detectedObject
	if err := json.Unmarshal([]byte(raw), &detections); err != nil {
		return []game.Hotspot{}
	}

	hotspots := lo.FilterMap(detections, func(d detectedObject, _ int) (game.Hotspot, bool) {
		if d.Name == "" || len(d.Box2D) != 4 {
			return game.Hotspot{}, false
		}
		h := game.Hotspot{
			Name: d.Name,
			Box: [4]float64{
				d.Box2D[0] / 10.0,
				d.Box2D[1] / 10.0,
				d.Box2D[2] / 10.0,
				d.Box2D[3] / 10.0,
			},
		}
		return h, h.Valid()
	})
	return hotspots
}

// SynthesizeSpeech returns narration audio as raw 16-bit LE PCM at
// 24kHz.
func (g *GeminiMediaService) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	req := mediaRequest{
		Contents: []mediaContent{{
			Parts: []mediaPart{{
				Text: "Narrate in a warm, unhurried storyteller voice: " + text,
			}},
		}},
		GenerationConfig: &mediaGenerationConfig{
			ResponseModalities: []string{"AUDIO"},
		},
	}

	resp, err := g.generate(ctx, g.speechModel, req)
	if err != nil {
		return nil, fmt.Errorf("speech synthesis failed: %w", err)
	}

	blob := resp.firstBlob("audio/")
	if blob == nil {
		return nil, nil
	}

	raw, err := base64.StdEncoding.DecodeString(blob.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode speech audio: %w", err)
	}
	return raw, nil
}

// splitDataURI breaks a data URI into its MIME type and base64 payload.
func splitDataURI(uri string) (mimeType, data string, err error) {
	if !strings.HasPrefix(uri, "data:") {
		return "", "", fmt.Errorf("not a data URI")
	}
	rest := strings.TrimPrefix(uri, "data:")
	sep := strings.Index(rest, ";base64,")
	if sep < 0 {
		return "", "", fmt.Errorf("missing base64 payload")
	}
	return rest[:sep], rest[sep+len(";base64,"):], nil
}
