package chart

import (
	"html"

	"painel/internal/core"
)

// LegendRow mirrors one marker of the cash-flow chart.
type LegendRow struct {
	Color string  `json:"color"`
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	// Text is an HTML fragment: "<name>: <b>R$ value</b>".
	Text string `json:"text"`
}

// Legend is always replaced whole on re-render.
type Legend []LegendRow

// LegendKey returns the placeholder id of the legend paired with a chart.
func LegendKey(id string) string {
	return "legend-" + id
}

// SynthesizeLegend builds one row per resolved marker, in resolved order.
func SynthesizeLegend(m Markers) Legend {
	rows := make(Legend, 0, len(m.Resolved))
	for _, r := range m.Resolved {
		rows = append(rows, LegendRow{
			Color: r.Color,
			Name:  r.Name,
			Value: r.Value,
			Text:  html.EscapeString(r.Name) + ": <b>" + core.FormatBRL(r.Value) + "</b>",
		})
	}
	return rows
}
