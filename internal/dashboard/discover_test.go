package dashboard

import (
	"reflect"
	"strings"
	"testing"

	"painel/internal/chart"
)

func TestDiscover(t *testing.T) {
	tests := []struct {
		name string
		page string
		want []Placeholder
	}{
		{
			name: "data attributes",
			page: `<main>
				<canvas data-chart="secretaria-donut" data-id="1"></canvas>
				<canvas data-chart="cashflow" data-id="1"></canvas>
				<ul id="legend-1"></ul>
				<canvas data-chart="obra-donut" data-id="7"></canvas>
			</main>`,
			want: []Placeholder{
				{Kind: chart.KindSecretariaDonut, ID: "1", Legend: true},
				{Kind: chart.KindCashFlow, ID: "1", Legend: true},
				{Kind: chart.KindObraDonut, ID: "7"},
			},
		},
		{
			name: "class based markup",
			page: `<div class="chart-container"><canvas data-id="2"></canvas></div>
				<div class="card chart-container-diario"><div><canvas data-id="2"></canvas></div></div>
				<div class="chart-container"><canvas class="obra-chart" data-id="9"></canvas></div>`,
			want: []Placeholder{
				{Kind: chart.KindSecretariaDonut, ID: "2"},
				{Kind: chart.KindCashFlow, ID: "2"},
				{Kind: chart.KindObraDonut, ID: "9"},
			},
		},
		{
			name: "nearest container wins",
			page: `<div class="chart-container"><div class="chart-container-diario"><canvas data-id="3"></canvas></div></div>`,
			want: []Placeholder{{Kind: chart.KindCashFlow, ID: "3"}},
		},
		{
			name: "skipped canvases",
			page: `<canvas data-chart="cashflow"></canvas>
				<canvas data-id="  "></canvas>
				<canvas data-id="4"></canvas>
				<canvas data-chart="pie" data-id="5"></canvas>`,
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Discover(strings.NewReader(tt.page))
			if err != nil {
				t.Fatalf("Discover: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Discover = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestPlaceholderKey(t *testing.T) {
	p := Placeholder{Kind: chart.KindCashFlow, ID: "12"}
	if p.Key() != "cashflow-12" {
		t.Errorf("Key = %q", p.Key())
	}
}
