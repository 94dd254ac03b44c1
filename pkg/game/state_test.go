package game

import (
	"reflect"
	"testing"
)

func TestAddItem(t *testing.T) {
	tests := []struct {
		name      string
		inventory []string
		item      string
		expected  []string
	}{
		{
			name:      "add to empty inventory",
			inventory: []string{},
			item:      "brass key",
			expected:  []string{"brass key"},
		},
		{
			name:      "add preserves insertion order",
			inventory: []string{"lantern"},
			item:      "rope",
			expected:  []string{"lantern", "rope"},
		},
		{
			name:      "duplicate add is a no-op",
			inventory: []string{"lantern", "rope"},
			item:      "lantern",
			expected:  []string{"lantern", "rope"},
		},
		{
			name:      "empty item is a no-op",
			inventory: []string{"lantern"},
			item:      "",
			expected:  []string{"lantern"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AddItem(tt.inventory, tt.item)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("AddItem() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestRemoveItem(t *testing.T) {
	tests := []struct {
		name      string
		inventory []string
		item      string
		expected  []string
	}{
		{
			name:      "remove held item",
			inventory: []string{"lantern", "rope", "key"},
			item:      "rope",
			expected:  []string{"lantern", "key"},
		},
		{
			name:      "remove absent item is a no-op",
			inventory: []string{"lantern"},
			item:      "cutlass",
			expected:  []string{"lantern"},
		},
		{
			name:      "remove from empty inventory",
			inventory: []string{},
			item:      "anything",
			expected:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RemoveItem(tt.inventory, tt.item)
			if !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("RemoveItem() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestState_RecentHistory(t *testing.T) {
	s := NewState()
	s.AppendLog(LogNarrator, "You wake in a cold cell.")
	s.AppendLog(LogCommand, "look around")
	s.AppendLog(LogNarrator, "Stone walls. A barred window.")

	got := s.RecentHistory(2)
	want := []string{"look around", "Stone walls. A barred window."}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("RecentHistory(2) = %v, want %v", got, want)
	}

	// Asking for more lines than exist returns everything
	got = s.RecentHistory(10)
	if len(got) != 3 {
		t.Errorf("RecentHistory(10) returned %d lines, want 3", len(got))
	}
}

func TestSceneCache_PutOverwrites(t *testing.T) {
	cache := make(SceneCache)
	cache.Put("cellar", SceneArtifact{
		ID:       "cellar",
		ImageURL: "data:image/png;base64,old",
		Hotspots: []Hotspot{{Name: "barrel", Box: [4]float64{10, 10, 20, 20}}},
	})
	cache.Put("cellar", SceneArtifact{
		ID:       "cellar",
		ImageURL: "data:image/png;base64,new",
	})

	a, ok := cache.Get("cellar")
	if !ok {
		t.Fatal("expected cellar artifact in cache")
	}
	if a.ImageURL != "data:image/png;base64,new" {
		t.Errorf("expected overwritten image, got %s", a.ImageURL)
	}
	if len(a.Hotspots) != 0 {
		t.Errorf("stale hotspots survived overwrite: %v", a.Hotspots)
	}
}

func TestHotspot_Valid(t *testing.T) {
	tests := []struct {
		name    string
		hotspot Hotspot
		valid   bool
	}{
		{"well formed", Hotspot{Name: "key", Box: [4]float64{10, 10, 20, 20}}, true},
		{"missing name", Hotspot{Box: [4]float64{10, 10, 20, 20}}, false},
		{"inverted y", Hotspot{Name: "lamp", Box: [4]float64{50, 10, 20, 20}}, false},
		{"inverted x", Hotspot{Name: "lamp", Box: [4]float64{10, 50, 20, 20}}, false},
		{"out of range", Hotspot{Name: "lamp", Box: [4]float64{-5, 10, 20, 20}}, false},
		{"over 100", Hotspot{Name: "lamp", Box: [4]float64{10, 10, 20, 120}}, false},
		{"degenerate but legal", Hotspot{Name: "dot", Box: [4]float64{50, 50, 50, 50}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.hotspot.Valid(); got != tt.valid {
				t.Errorf("Valid() = %v, want %v", got, tt.valid)
			}
		})
	}
}
