package chart

import (
	"math"

	"painel/internal/core"
)

const maxTicks = 50

// AbbreviateCurrency formats an axis value: millions get an "M" suffix,
// thousands a "k" suffix, smaller values are shown in full.
func AbbreviateCurrency(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1_000_000:
		return core.FormatBRL(v/1_000_000) + "M"
	case abs >= 1_000:
		return core.FormatBRL(v/1_000) + "k"
	default:
		return core.FormatBRL(v)
	}
}

// tickStep picks a 1/2/5 step giving roughly five intervals over span.
func tickStep(span float64) float64 {
	if span <= 0 {
		return 1
	}
	rough := span / 5
	exp := math.Floor(math.Log10(rough))
	base := math.Pow(10, exp)
	frac := rough / base

	switch {
	case frac < 1.5:
		return base
	case frac < 3.5:
		return 2 * base
	default:
		return 5 * base
	}
}

// axisTicks labels the range from min(lo, 0) up to hi. When the axis is
// pinned, hi is always the last tick.
func axisTicks(lo, hi float64, pinned bool) []Tick {
	lo = math.Min(lo, 0)
	if hi < lo {
		hi = lo
	}
	step := tickStep(hi - lo)
	start := math.Floor(lo/step) * step

	ticks := make([]Tick, 0, 8)
	for i := 0; i < maxTicks; i++ {
		v := start + float64(i)*step
		if v > hi+step/1e6 {
			break
		}
		if math.Abs(v) < step/1e6 {
			v = 0
		}
		ticks = append(ticks, Tick{Value: v, Label: AbbreviateCurrency(v)})
	}
	if pinned && (len(ticks) == 0 || ticks[len(ticks)-1].Value < hi) {
		ticks = append(ticks, Tick{Value: hi, Label: AbbreviateCurrency(hi)})
	}
	return ticks
}
