package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
)

func TestParseDetections(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected int
	}{
		{
			name:     "well formed detections",
			raw:      `[{"name":"lantern","box_2d":[100,100,200,200]},{"name":"trapdoor","box_2d":[500,300,800,700]}]`,
			expected: 2,
		},
		{
			name:     "missing box is dropped",
			raw:      `[{"name":"key","box_2d":[100,100,200,200]},{"name":"lamp"}]`,
			expected: 1,
		},
		{
			name:     "wrong box arity is dropped",
			raw:      `[{"name":"key","box_2d":[100,100,200]}]`,
			expected: 0,
		},
		{
			name:     "missing name is dropped",
			raw:      `[{"box_2d":[100,100,200,200]}]`,
			expected: 0,
		},
		{
			name:     "inverted box is dropped",
			raw:      `[{"name":"key","box_2d":[900,100,200,200]}]`,
			expected: 0,
		},
		{
			name:     "not json at all",
			raw:      "the model apologizes for not finding anything",
			expected: 0,
		},
		{
			name:     "empty array",
			raw:      `[]`,
			expected: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseDetections(tt.raw)
			if got == nil {
				t.Fatal("parseDetections must never return nil")
			}
			if len(got) != tt.expected {
				t.Errorf("got %d hotspots, want %d: %v", len(got), tt.expected, got)
			}
		})
	}
}

func TestParseDetections_CoordinateConversion(t *testing.T) {
	got := parseDetections(`[{"name":"lantern","box_2d":[100,250,400,1000]}]`)
	if len(got) != 1 {
		t.Fatalf("expected 1 hotspot, got %d", len(got))
	}
	want := [4]float64{10, 25, 40, 100}
	if got[0].Box != want {
		t.Errorf("box = %v, want %v (0-1000 normalized to percent)", got[0].Box, want)
	}
}

func TestSplitDataURI(t *testing.T) {
	tests := []struct {
		name        string
		uri         string
		mimeType    string
		data        string
		expectError bool
	}{
		{
			name:     "png data uri",
			uri:      "data:image/png;base64,aGVsbG8=",
			mimeType: "image/png",
			data:     "aGVsbG8=",
		},
		{
			name:        "plain url",
			uri:         "https://example.com/scene.png",
			expectError: true,
		},
		{
			name:        "data uri without base64 payload",
			uri:         "data:text/plain,hello",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mimeType, data, err := splitDataURI(tt.uri)
			if tt.expectError {
				if err == nil {
					t.Fatal("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mimeType != tt.mimeType || data != tt.data {
				t.Errorf("got (%s, %s), want (%s, %s)", mimeType, data, tt.mimeType, tt.data)
			}
		})
	}
}

func TestDetectHotspots_EmptyNamesSkipsNetwork(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
	svc := NewGeminiMediaService("test-key", logger)

	// No item names means no detection call at all; an invalid image
	// URI must not matter.
	hotspots, err := svc.DetectHotspots(context.Background(), "not-a-data-uri", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hotspots) != 0 {
		t.Errorf("expected empty result, got %v", hotspots)
	}
}
