// Package theme defines the dashboard's light and dark themes and persists
// the user's choice.
package theme

import "painel/internal/chart"

// Theme pairs a name with the chart colors and page palette it resolves to.
type Theme struct {
	Name       string
	Background string // Page background
	Surface    string // Card backgrounds
	Text       string // Primary text
	TextMuted  string // Labels, metadata
	Chart      chart.Colors
}

const (
	NameLight = "light"
	NameDark  = "dark"
)

var Light = Theme{
	Name:       NameLight,
	Background: "#F8FAFC",
	Surface:    "#FFFFFF",
	Text:       "#0F172A",
	TextMuted:  "#64748B",
	Chart: chart.Colors{
		Accent:     "#0891B2",
		AccentFill: "rgba(8, 145, 178, 0.4)",
		Positive:   "#10B981",
		Negative:   "#EF4444",
		Spent:      "#F97316",
		Remaining:  "#10B981",
		Overrun:    "#DC2626",
		Border:     "#FFFFFF",
		Markers:    chart.DefaultMarkerPalette,
	},
}

var Dark = Theme{
	Name:       NameDark,
	Background: "#0F172A",
	Surface:    "#1E293B",
	Text:       "#F1F5F9",
	TextMuted:  "#94A3B8",
	Chart: chart.Colors{
		Accent:     "#22D3EE",
		AccentFill: "rgba(34, 211, 238, 0.35)",
		Positive:   "#34D399",
		Negative:   "#F87171",
		Spent:      "#FB923C",
		Remaining:  "#34D399",
		Overrun:    "#EF4444",
		Border:     "#1E293B",
		Markers:    []string{"#A78BFA", "#F472B6", "#FBBF24", "#2DD4BF", "#818CF8", "#A3E635"},
	},
}

// All lists available themes.
var All = []Theme{Light, Dark}

// ByName returns the theme with the given name, or Light if not found.
func ByName(name string) Theme {
	for _, t := range All {
		if t.Name == name {
			return t
		}
	}
	return Light
}

// Valid reports whether name is a known theme.
func Valid(name string) bool {
	return name == NameLight || name == NameDark
}

// Other returns the theme a toggle switches to.
func Other(name string) string {
	if name == NameDark {
		return NameLight
	}
	return NameDark
}
