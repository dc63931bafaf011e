// Package chart composes Chart.js chart specifications for the dashboard:
// the daily cash-flow combo chart with its measurement legend and the
// allocation donuts.
//
// Everything in this package is pure. Composers never fail; data that cannot
// be placed on a chart is dropped.
package chart

import "encoding/json"

// Kind identifies which chart a placeholder renders.
type Kind string

const (
	KindSecretariaDonut Kind = "secretaria-donut"
	KindCashFlow        Kind = "cashflow"
	KindObraDonut       Kind = "obra-donut"
)

// Valid reports whether k is a known chart kind.
func (k Kind) Valid() bool {
	switch k {
	case KindSecretariaDonut, KindCashFlow, KindObraDonut:
		return true
	}
	return false
}

type (
	// Spec is a JSON chart specification consumed by the Chart.js front end.
	// Callbacks cannot travel as JSON, so tick and tooltip texts are
	// precomputed here.
	Spec struct {
		Type    string  `json:"type"`
		Data    Data    `json:"data"`
		Options Options `json:"options"`
	}

	Data struct {
		Labels   []string  `json:"labels"`
		Datasets []Dataset `json:"datasets"`
	}

	Dataset struct {
		Type                 string    `json:"type,omitempty"`
		Label                string    `json:"label"`
		Data                 []float64 `json:"data"`
		BackgroundColor      Colorway  `json:"backgroundColor,omitempty"`
		BorderColor          Colorway  `json:"borderColor,omitempty"`
		BorderWidth          int       `json:"borderWidth,omitempty"`
		HoverOffset          int       `json:"hoverOffset,omitempty"`
		PointRadius          []float64 `json:"pointRadius,omitempty"`
		PointBackgroundColor []string  `json:"pointBackgroundColor,omitempty"`
		Tension              float64   `json:"tension,omitempty"`
		Order                int       `json:"order,omitempty"`
		// Tooltips holds one precomputed tooltip line per data index.
		Tooltips []string `json:"tooltips"`
	}

	Options struct {
		Responsive          bool            `json:"responsive"`
		MaintainAspectRatio bool            `json:"maintainAspectRatio"`
		Cutout              string          `json:"cutout,omitempty"`
		Scales              map[string]Axis `json:"scales,omitempty"`
		Plugins             Plugins         `json:"plugins"`
	}

	Plugins struct {
		Legend LegendPlugin `json:"legend"`
	}

	LegendPlugin struct {
		Display bool `json:"display"`
	}

	Axis struct {
		BeginAtZero bool `json:"beginAtZero"`
		// Max is nil when the axis auto-scales.
		Max   *float64 `json:"max,omitempty"`
		Ticks []Tick   `json:"ticks,omitempty"`
	}

	Tick struct {
		Value float64 `json:"value"`
		Label string  `json:"label"`
	}

	// Rendered is what a chart endpoint returns and what a surface mounts.
	Rendered struct {
		Kind   Kind   `json:"kind"`
		ID     string `json:"id"`
		Spec   Spec   `json:"chart"`
		Legend Legend `json:"legend,omitempty"`
		// Dropped counts measurement events that matched no day.
		Dropped int `json:"-"`
	}
)

// Colorway is a dataset color list. A single color is encoded as a plain
// string so Chart.js applies it to every element.
type Colorway []string

func (c Colorway) MarshalJSON() ([]byte, error) {
	if len(c) == 1 {
		return json.Marshal(c[0])
	}
	return json.Marshal([]string(c))
}

func (c *Colorway) UnmarshalJSON(b []byte) error {
	var one string
	if err := json.Unmarshal(b, &one); err == nil {
		*c = Colorway{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(b, &many); err != nil {
		return err
	}
	*c = many
	return nil
}
