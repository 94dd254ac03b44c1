package services

import (
	"context"

	"github.com/hollowayink/wayfarer/pkg/game"
)

// MediaService generates scene art, locates interactables on it, and
// synthesizes narration speech. Every method may fail or return empty;
// callers treat absence as "no change", never as a player-visible
// error.
type MediaService interface {
	// RenderScene generates an image for a scene description and
	// returns it as a data URI. Empty string means no image.
	RenderScene(ctx context.Context, description string) (string, error)

	// DetectHotspots locates the named interactables on a rendered
	// image. An empty name list returns an empty result without a
	// network call.
	DetectHotspots(ctx context.Context, imageURI string, itemNames []string) ([]game.Hotspot, error)

	// SynthesizeSpeech returns narration audio as raw 16-bit LE PCM at
	// 24kHz. Empty result means silence.
	SynthesizeSpeech(ctx context.Context, text string) ([]byte, error)
}
