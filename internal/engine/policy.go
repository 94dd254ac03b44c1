package engine

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"github.com/hollowayink/wayfarer/internal/services"
	"github.com/hollowayink/wayfarer/pkg/game"
)

// Visuals is the outcome of visual resolution for one turn. An empty
// ImageURL means "no new image": the caller keeps showing what it has.
// Hotspots always replace the displayed set wholesale.
type Visuals struct {
	ImageURL string
	Hotspots []game.Hotspot
	// Fresh is true when a new image was generated this turn, and the
	// result should be written back to the scene cache.
	Fresh bool
}

// VisualPolicy decides, for a given turn, whether to reuse cached art,
// generate new art, and whether to run hotspot detection on it.
// Regenerating art is the most expensive call in the game, so repeat
// visits and non-destructive actions must never pay for it again.
type VisualPolicy struct {
	media  services.MediaService
	logger *slog.Logger
}

func NewVisualPolicy(media services.MediaService, logger *slog.Logger) *VisualPolicy {
	return &VisualPolicy{
		media:  media,
		logger: logger,
	}
}

// Resolve produces the visuals for a scene. Resolution is keyed by
// scene id, never by content: two scenes with identical descriptions
// cache independently, and triggerVisualUpdate bypasses the cache even
// for a scene already rendered.
func (p *VisualPolicy) Resolve(ctx context.Context, sceneID, visualDescription string, triggerVisualUpdate bool, interactables []string, cache game.SceneCache) Visuals {
	if !triggerVisualUpdate {
		if cached, ok := cache.Get(sceneID); ok {
			p.logger.Debug("Reusing cached scene art", "scene_id", sceneID)
			return Visuals{
				ImageURL: cached.ImageURL,
				Hotspots: cached.Hotspots,
			}
		}
	}

	imageURL, err := p.media.RenderScene(ctx, visualDescription)
	if err != nil {
		p.logger.Warn("Scene render failed, keeping previous image", "scene_id", sceneID, "error", err)
		return Visuals{Hotspots: []game.Hotspot{}}
	}
	if imageURL == "" {
		p.logger.Debug("Scene render returned no image", "scene_id", sceneID)
		return Visuals{Hotspots: []game.Hotspot{}}
	}

	// Detection runs only against a freshly generated image, and only
	// when the scene claims interactables.
	hotspots := []game.Hotspot{}
	if len(interactables) > 0 {
		detected, err := p.media.DetectHotspots(ctx, imageURL, interactables)
		if err != nil {
			p.logger.Warn("Hotspot detection failed", "scene_id", sceneID, "error", err)
		} else {
			hotspots = lo.Filter(detected, func(h game.Hotspot, _ int) bool {
				return h.Valid()
			})
		}
	}

	return Visuals{
		ImageURL: imageURL,
		Hotspots: hotspots,
		Fresh:    true,
	}
}
