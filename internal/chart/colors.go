package chart

// Transparent is used for points that must stay invisible.
const Transparent = "rgba(0, 0, 0, 0)"

// DefaultMarkerPalette is the cycling palette for measurement markers.
var DefaultMarkerPalette = []string{
	"#8B5CF6",
	"#EC4899",
	"#F59E0B",
	"#14B8A6",
	"#6366F1",
	"#84CC16",
}

// Colors is the resolved color configuration handed to every composer.
// It is built once per theme change, never read from global state at render time.
type Colors struct {
	Accent     string
	AccentFill string
	Positive   string
	Negative   string
	Spent      string
	Remaining  string
	Overrun    string
	Border     string
	Markers    []string
}

// Solvency returns the balance line color for s.
func (c Colors) Solvency(s Solvency) string {
	if s == Negative {
		return c.Negative
	}
	return c.Positive
}

// Palette returns the marker palette, falling back to DefaultMarkerPalette
// when none is configured.
func (c Colors) Palette() []string {
	if len(c.Markers) == 0 {
		return DefaultMarkerPalette
	}
	return c.Markers
}
