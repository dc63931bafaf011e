package chart

import "painel/internal/core"

// ResolvedMarker is a measurement event placed on a day of the time axis.
type ResolvedMarker struct {
	Index int     `json:"index"`
	Value float64 `json:"value"`
	Name  string  `json:"name"`
	Color string  `json:"color"`
}

// Markers is the result of one resolution pass.
type Markers struct {
	// Resolved keeps the input order of the events that matched a day.
	Resolved []ResolvedMarker
	// ByIndex holds the first resolved marker of each marked day.
	ByIndex map[int]ResolvedMarker
	Dropped int
}

// At returns the marker styling day i, if any.
func (m Markers) At(i int) (ResolvedMarker, bool) {
	r, ok := m.ByIndex[i]
	return r, ok
}

// ResolveMarkers maps events onto days by exact date match.
//
// The k-th event gets palette[k mod len(palette)], counting events that are
// dropped, so a marker's color depends only on its input position. Events
// whose date is not on the axis are dropped silently. Several events may land
// on the same day; all of them are resolved but only the first styles the point.
func ResolveMarkers(points core.TimeSeries, events []core.MeasurementEvent, palette []string) Markers {
	if len(palette) == 0 {
		palette = DefaultMarkerPalette
	}

	dayIndex := make(map[string]int, len(points))
	for i, p := range points {
		if _, seen := dayIndex[p.Date]; !seen {
			dayIndex[p.Date] = i
		}
	}

	m := Markers{
		Resolved: make([]ResolvedMarker, 0, len(events)),
		ByIndex:  make(map[int]ResolvedMarker, len(events)),
	}
	for k, ev := range events {
		idx, ok := dayIndex[ev.Date]
		if !ok {
			m.Dropped++
			continue
		}
		r := ResolvedMarker{
			Index: idx,
			Value: ev.Value,
			Name:  ev.Name,
			Color: palette[k%len(palette)],
		}
		m.Resolved = append(m.Resolved, r)
		if _, taken := m.ByIndex[idx]; !taken {
			m.ByIndex[idx] = r
		}
	}
	return m
}
