package chart

import (
	"math"

	"painel/internal/core"
)

const markerRadius = 6

// ComposeCashFlow builds the daily cash-flow combo chart: spend bars and a
// cumulative balance line whose points are visible only on measurement days.
//
// The balance line takes a single color from the final balance. A ceiling
// above zero pins the vertical axis maximum; otherwise the axis auto-scales.
// The axis never forces a zero baseline so negative balances stay visible.
func ComposeCashFlow(series core.TimeSeries, ceiling float64, markers Markers, colors Colors) Spec {
	labels := series.Labels()
	spends := series.Spends()
	balances := series.Balances()

	radius := make([]float64, len(series))
	pointColor := make([]string, len(series))
	spendTips := make([]string, len(series))
	balanceTips := make([]string, len(series))
	for i, p := range series {
		spendTips[i] = p.Date + ": " + core.FormatBRL(p.Spend)
		if m, ok := markers.At(i); ok {
			radius[i] = markerRadius
			pointColor[i] = m.Color
			balanceTips[i] = "New Measurement (" + m.Name + "): " + core.FormatBRL(m.Value)
			continue
		}
		pointColor[i] = Transparent
		balanceTips[i] = p.Date + ": " + core.FormatBRL(p.Balance)
	}

	lo, hi := dataRange(spends, balances)
	axis := Axis{BeginAtZero: false}
	if ceiling > 0 {
		c := ceiling
		axis.Max = &c
		hi = ceiling
	}
	axis.Ticks = axisTicks(lo, hi, ceiling > 0)

	return Spec{
		Type: "bar",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{
				{
					Type:            "bar",
					Label:           "Daily spend",
					Data:            spends,
					BackgroundColor: Colorway{colors.AccentFill},
					BorderColor:     Colorway{colors.Accent},
					BorderWidth:     1,
					Order:           2,
					Tooltips:        spendTips,
				},
				{
					Type:                 "line",
					Label:                "Balance",
					Data:                 balances,
					BorderColor:          Colorway{colors.Solvency(SolvencyOf(balances))},
					BorderWidth:          2,
					PointRadius:          radius,
					PointBackgroundColor: pointColor,
					Tension:              0.3,
					Order:                1,
					Tooltips:             balanceTips,
				},
			},
		},
		Options: Options{
			Responsive:          true,
			MaintainAspectRatio: false,
			Scales:              map[string]Axis{"y": axis},
			Plugins:             Plugins{Legend: LegendPlugin{Display: false}},
		},
	}
}

func dataRange(series ...[]float64) (lo, hi float64) {
	first := true
	for _, s := range series {
		for _, v := range s {
			if first {
				lo, hi = v, v
				first = false
				continue
			}
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
	}
	return lo, math.Max(hi, 0)
}

// RenderCashFlow turns a daily cash-flow payload into a chart and its legend.
// It reports false when the payload has no days, in which case neither the
// chart nor the legend should be shown.
func RenderCashFlow(id string, payload core.DailyCashFlow, colors Colors) (Rendered, bool) {
	series := payload.Series()
	if len(series) == 0 {
		return Rendered{}, false
	}
	markers := ResolveMarkers(series, payload.Medicoes, colors.Palette())
	return Rendered{
		Kind:    KindCashFlow,
		ID:      id,
		Spec:    ComposeCashFlow(series, payload.TetoOrcamento, markers, colors),
		Legend:  SynthesizeLegend(markers),
		Dropped: markers.Dropped,
	}, true
}
