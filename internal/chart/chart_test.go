package chart

import (
	"encoding/json"
	"strings"
	"testing"

	"painel/internal/core"
)

var testColors = Colors{
	Accent:     "#0891B2",
	AccentFill: "rgba(8, 145, 178, 0.4)",
	Positive:   "#10B981",
	Negative:   "#EF4444",
	Spent:      "#F97316",
	Remaining:  "#10B981",
	Overrun:    "#DC2626",
	Border:     "#FFFFFF",
	Markers:    []string{"p0", "p1", "p2"},
}

func scenarioSeries() core.TimeSeries {
	return core.DailyCashFlow{
		Labels: []string{"01", "02", "03"},
		Gastos: []float64{100, 50, 200},
		Saldos: []float64{900, 850, 650},
	}.Series()
}

func TestSolvencyOf(t *testing.T) {
	cases := []struct {
		name     string
		balances []float64
		want     Solvency
	}{
		{"empty", nil, Positive},
		{"zero", []float64{0}, Positive},
		{"positive", []float64{-10, 5}, Positive},
		{"dip then recover", []float64{100, -50, 1}, Positive},
		{"ends negative", []float64{100, 50, -0.01}, Negative},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := SolvencyOf(tc.balances); got != tc.want {
				t.Fatalf("SolvencyOf(%v) = %v, want %v", tc.balances, got, tc.want)
			}
		})
	}
}

func TestResolveMarkersMatchesDates(t *testing.T) {
	series := scenarioSeries()
	events := []core.MeasurementEvent{
		{Date: "03", Value: 1, Name: "A"},
		{Date: "99", Value: 2, Name: "Ghost"},
		{Date: "01", Value: 3, Name: "B"},
	}
	m := ResolveMarkers(series, events, testColors.Markers)

	if len(m.Resolved) != 2 || m.Dropped != 1 {
		t.Fatalf("resolved=%d dropped=%d", len(m.Resolved), m.Dropped)
	}
	for _, r := range m.Resolved {
		if series[r.Index].Date != map[string]string{"A": "03", "B": "01"}[r.Name] {
			t.Fatalf("marker %q at wrong index %d", r.Name, r.Index)
		}
	}
	// Colors follow input position, dropped events included.
	if m.Resolved[0].Color != "p0" || m.Resolved[1].Color != "p2" {
		t.Fatalf("unexpected colors %q %q", m.Resolved[0].Color, m.Resolved[1].Color)
	}
}

func TestResolveMarkersCyclesPalette(t *testing.T) {
	series := scenarioSeries()
	var events []core.MeasurementEvent
	for i := 0; i < 7; i++ {
		events = append(events, core.MeasurementEvent{Date: "02", Value: float64(i), Name: "M"})
	}
	m := ResolveMarkers(series, events, testColors.Markers)
	if len(m.Resolved) != 7 {
		t.Fatalf("duplicate dates must each resolve, got %d", len(m.Resolved))
	}
	for k, r := range m.Resolved {
		if want := testColors.Markers[k%3]; r.Color != want {
			t.Fatalf("event %d color %q, want %q", k, r.Color, want)
		}
	}
	first, ok := m.At(1)
	if !ok || first.Value != 0 {
		t.Fatalf("first marker must style the shared day, got %+v", first)
	}
}

func TestResolveMarkersEmptyPaletteFallsBack(t *testing.T) {
	m := ResolveMarkers(scenarioSeries(), []core.MeasurementEvent{{Date: "01", Name: "A"}}, nil)
	if m.Resolved[0].Color != DefaultMarkerPalette[0] {
		t.Fatalf("got %q", m.Resolved[0].Color)
	}
}

func TestCashFlowScenario(t *testing.T) {
	series := scenarioSeries()
	events := []core.MeasurementEvent{{Date: "02", Value: 50, Name: "M1"}}
	m := ResolveMarkers(series, events, testColors.Markers)
	spec := ComposeCashFlow(series, 1000, m, testColors)

	line := spec.Data.Datasets[1]
	for i, r := range line.PointRadius {
		visible := r > 0
		if visible != (i == 1) {
			t.Fatalf("point %d radius %v", i, r)
		}
	}
	if line.PointBackgroundColor[1] != "p0" || line.PointBackgroundColor[0] != Transparent {
		t.Fatalf("unexpected point colors %v", line.PointBackgroundColor)
	}
	if line.BorderColor[0] != testColors.Positive {
		t.Fatalf("balance line color %v", line.BorderColor)
	}

	y := spec.Options.Scales["y"]
	if y.Max == nil || *y.Max != 1000 {
		t.Fatalf("axis max = %v, want 1000", y.Max)
	}
	if y.BeginAtZero {
		t.Fatalf("axis must not force a zero baseline")
	}
	if last := y.Ticks[len(y.Ticks)-1]; last.Value != 1000 || last.Label != "R$ 1,00k" {
		t.Fatalf("last tick %+v", last)
	}

	if got := line.Tooltips[1]; got != "New Measurement (M1): R$ 50,00" {
		t.Fatalf("marker tooltip %q", got)
	}
	if got := line.Tooltips[2]; got != "03: R$ 650,00" {
		t.Fatalf("balance tooltip %q", got)
	}
	if got := spec.Data.Datasets[0].Tooltips[0]; got != "01: R$ 100,00" {
		t.Fatalf("spend tooltip %q", got)
	}

	legend := SynthesizeLegend(m)
	if len(legend) != 1 || legend[0].Text != "M1: <b>R$ 50,00</b>" || legend[0].Color != "p0" {
		t.Fatalf("legend %+v", legend)
	}
}

func TestCashFlowGhostEvent(t *testing.T) {
	series := scenarioSeries()
	m := ResolveMarkers(series, []core.MeasurementEvent{{Date: "99", Value: 10, Name: "Ghost"}}, testColors.Markers)
	spec := ComposeCashFlow(series, 1000, m, testColors)

	if len(m.Resolved) != 0 || len(SynthesizeLegend(m)) != 0 {
		t.Fatalf("ghost event must not resolve")
	}
	for i, r := range spec.Data.Datasets[1].PointRadius {
		if r != 0 {
			t.Fatalf("point %d visible", i)
		}
	}
}

func TestCashFlowNoCeilingAutoScales(t *testing.T) {
	for _, ceiling := range []float64{0, -5} {
		spec := ComposeCashFlow(scenarioSeries(), ceiling, Markers{}, testColors)
		if spec.Options.Scales["y"].Max != nil {
			t.Fatalf("ceiling %v must leave the axis max unset", ceiling)
		}
		b, err := json.Marshal(spec)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(string(b), `"max"`) {
			t.Fatalf("max encoded: %s", b)
		}
	}
}

func TestCashFlowNegativeBalanceColorsLine(t *testing.T) {
	series := core.TimeSeries{{Date: "01", Spend: 10, Balance: 5}, {Date: "02", Spend: 20, Balance: -15}}
	spec := ComposeCashFlow(series, 0, Markers{}, testColors)
	if got := spec.Data.Datasets[1].BorderColor[0]; got != testColors.Negative {
		t.Fatalf("line color %q", got)
	}
	if first := spec.Options.Scales["y"].Ticks[0]; first.Value > -15 {
		t.Fatalf("ticks must reach the negative balance, first %+v", first)
	}
}

func TestLegendKeepsResolvedOrderAndEscapes(t *testing.T) {
	m := ResolveMarkers(scenarioSeries(), []core.MeasurementEvent{
		{Date: "03", Value: 1, Name: "Late"},
		{Date: "01", Value: 2, Name: "<Early>"},
	}, testColors.Markers)
	legend := SynthesizeLegend(m)
	if legend[0].Name != "Late" || legend[1].Name != "<Early>" {
		t.Fatalf("legend order %+v", legend)
	}
	if legend[1].Text != "&lt;Early&gt;: <b>R$ 2,00</b>" {
		t.Fatalf("text %q", legend[1].Text)
	}
}

func TestComposeDonut(t *testing.T) {
	cases := []struct {
		name      string
		spent     float64
		remaining float64
		labels    []string
	}{
		{"healthy", 30, 70, []string{LabelSpent, LabelRemaining}},
		{"exactly zero", 100, 0, []string{LabelExceeded}},
		{"overrun", 120, -20, []string{LabelExceeded}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			spec := ComposeDonut(tc.spent, tc.remaining, testColors)
			if strings.Join(spec.Data.Labels, "|") != strings.Join(tc.labels, "|") {
				t.Fatalf("labels %v", spec.Data.Labels)
			}
			ds := spec.Data.Datasets[0]
			if len(tc.labels) == 1 {
				if ds.Data[0] != tc.spent || ds.BackgroundColor[0] != testColors.Overrun {
					t.Fatalf("exceeded slice %+v", ds)
				}
			}
		})
	}
}

func TestAbbreviateCurrency(t *testing.T) {
	cases := map[float64]string{
		0:          "R$ 0,00",
		999:        "R$ 999,00",
		1500:       "R$ 1,50k",
		-2500:      "-R$ 2,50k",
		2_000_000:  "R$ 2,00M",
		-1_250_000: "-R$ 1,25M",
	}
	for v, want := range cases {
		if got := AbbreviateCurrency(v); got != want {
			t.Fatalf("AbbreviateCurrency(%v) = %q, want %q", v, got, want)
		}
	}
}

func TestRenderCashFlowSuppressesEmptyPayload(t *testing.T) {
	if _, ok := RenderCashFlow("1", core.EmptyCashFlow(), testColors); ok {
		t.Fatalf("empty labels must suppress the chart")
	}
	r, ok := RenderCashFlow("1", core.DailyCashFlow{
		Labels:   []string{"01"},
		Gastos:   []float64{1},
		Saldos:   []float64{1},
		Medicoes: []core.MeasurementEvent{{Date: "02", Name: "x"}},
	}, testColors)
	if !ok || r.Dropped != 1 || r.Kind != KindCashFlow {
		t.Fatalf("unexpected %+v", r)
	}
}

func TestColorwayJSON(t *testing.T) {
	one, _ := json.Marshal(Colorway{"#fff"})
	many, _ := json.Marshal(Colorway{"#fff", "#000"})
	if string(one) != `"#fff"` || string(many) != `["#fff","#000"]` {
		t.Fatalf("got %s and %s", one, many)
	}
	var c Colorway
	if err := json.Unmarshal(one, &c); err != nil || len(c) != 1 {
		t.Fatalf("decode %v %v", c, err)
	}
}
