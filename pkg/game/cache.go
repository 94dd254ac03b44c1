package game

// SceneArtifact is a frozen snapshot of everything needed to redisplay
// a scene without regenerating art: the rendered image, its hotspots,
// and the description and interactables that produced them.
type SceneArtifact struct {
	ID                string    `json:"id"`
	ImageURL          string    `json:"image_url,omitempty"`
	Hotspots          []Hotspot `json:"hotspots,omitempty"`
	VisualDescription string    `json:"visual_description,omitempty"`
	Interactables     []string  `json:"interactables,omitempty"`
}

// SceneCache stores one artifact per scene id for the lifetime of a
// session. There is no eviction: a play session is bounded, and
// re-rendering art is far more expensive than holding it.
type SceneCache map[string]SceneArtifact

// Get returns the cached artifact for a scene, if any.
func (c SceneCache) Get(sceneID string) (SceneArtifact, bool) {
	a, ok := c[sceneID]
	return a, ok
}

// Put stores an artifact, fully replacing any prior entry for the same
// scene. Stale hotspots are never merged into fresh ones.
func (c SceneCache) Put(sceneID string, a SceneArtifact) {
	c[sceneID] = a
}
