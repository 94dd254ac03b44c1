package game

// Hotspot is a clickable rectangular region over the rendered scene
// image, mapped to an interactable item's name. Box coordinates are
// [yMin, xMin, yMax, xMax], each a percentage in [0,100] of the image
// height or width.
type Hotspot struct {
	Name string     `json:"name"`
	Box  [4]float64 `json:"box"`
}

// Valid reports whether the hotspot has a name and a sane box. Model
// output is untrusted, so callers drop invalid entries instead of
// erroring.
func (h Hotspot) Valid() bool {
	if h.Name == "" {
		return false
	}
	for _, v := range h.Box {
		if v < 0 || v > 100 {
			return false
		}
	}
	return h.Box[0] <= h.Box[2] && h.Box[1] <= h.Box[3]
}
