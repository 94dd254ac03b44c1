package services

import (
	"context"
	"sync"

	"github.com/hollowayink/wayfarer/pkg/game"
)

// MockMediaService is a mock implementation of MediaService for
// testing.
type MockMediaService struct {
	RenderSceneFunc      func(ctx context.Context, description string) (string, error)
	DetectHotspotsFunc   func(ctx context.Context, imageURI string, itemNames []string) ([]game.Hotspot, error)
	SynthesizeSpeechFunc func(ctx context.Context, text string) ([]byte, error)

	// Track calls for testing
	RenderSceneCalls      []string
	DetectHotspotsCalls   []DetectHotspotsCall
	SynthesizeSpeechCalls []string

	mu sync.Mutex // protects all fields above
}

type DetectHotspotsCall struct {
	ImageURI  string
	ItemNames []string
}

// Ensure MockMediaService implements MediaService
var _ MediaService = (*MockMediaService)(nil)

func NewMockMediaService() *MockMediaService {
	return &MockMediaService{
		RenderSceneCalls:      make([]string, 0),
		DetectHotspotsCalls:   make([]DetectHotspotsCall, 0),
		SynthesizeSpeechCalls: make([]string, 0),
	}
}

func (m *MockMediaService) RenderScene(ctx context.Context, description string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.RenderSceneCalls = append(m.RenderSceneCalls, description)

	if m.RenderSceneFunc != nil {
		return m.RenderSceneFunc(ctx, description)
	}
	return "data:image/png;base64,bW9jaw==", nil
}

func (m *MockMediaService) DetectHotspots(ctx context.Context, imageURI string, itemNames []string) ([]game.Hotspot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.DetectHotspotsCalls = append(m.DetectHotspotsCalls, DetectHotspotsCall{
		ImageURI:  imageURI,
		ItemNames: itemNames,
	})

	if m.DetectHotspotsFunc != nil {
		return m.DetectHotspotsFunc(ctx, imageURI, itemNames)
	}
	return []game.Hotspot{}, nil
}

func (m *MockMediaService) SynthesizeSpeech(ctx context.Context, text string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.SynthesizeSpeechCalls = append(m.SynthesizeSpeechCalls, text)

	if m.SynthesizeSpeechFunc != nil {
		return m.SynthesizeSpeechFunc(ctx, text)
	}
	return nil, nil
}

// CallCounts returns how many times each method was invoked.
func (m *MockMediaService) CallCounts() (renders, detections, syntheses int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.RenderSceneCalls), len(m.DetectHotspotsCalls), len(m.SynthesizeSpeechCalls)
}

// Reset clears all call tracking.
func (m *MockMediaService) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.RenderSceneCalls = make([]string, 0)
	m.DetectHotspotsCalls = make([]DetectHotspotsCall, 0)
	m.SynthesizeSpeechCalls = make([]string, 0)
}
