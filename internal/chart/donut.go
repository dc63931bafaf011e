package chart

import "painel/internal/core"

const (
	LabelSpent     = "Spent"
	LabelRemaining = "Remaining balance"
	LabelExceeded  = "Budget Exceeded"
)

// ComposeDonut builds an allocation donut. Remaining at or below zero takes
// the same non-positive branch as a negative balance and renders a single
// overrun slice worth the spent amount.
func ComposeDonut(spent, remaining float64, colors Colors) Spec {
	var (
		labels []string
		values []float64
		fills  Colorway
	)
	if remaining <= 0 {
		labels = []string{LabelExceeded}
		values = []float64{spent}
		fills = Colorway{colors.Overrun}
	} else {
		labels = []string{LabelSpent, LabelRemaining}
		values = []float64{spent, remaining}
		fills = Colorway{colors.Spent, colors.Remaining}
	}

	tips := make([]string, len(values))
	for i, v := range values {
		tips[i] = labels[i] + ": " + core.FormatBRL(v)
	}

	return Spec{
		Type: "doughnut",
		Data: Data{
			Labels: labels,
			Datasets: []Dataset{{
				Label:           "Budget",
				Data:            values,
				BackgroundColor: fills,
				BorderColor:     Colorway{colors.Border},
				BorderWidth:     5,
				HoverOffset:     10,
				Tooltips:        tips,
			}},
		},
		Options: Options{
			Responsive:          true,
			MaintainAspectRatio: false,
			Cutout:              "75%",
			Plugins:             Plugins{Legend: LegendPlugin{Display: false}},
		},
	}
}

// RenderSecretariaDonut charts a secretaria's spent against remaining budget.
func RenderSecretariaDonut(id string, b core.SecretariaBudget, colors Colors) Rendered {
	return Rendered{Kind: KindSecretariaDonut, ID: id, Spec: ComposeDonut(b.OrcamentoGasto, b.OrcamentoRestante, colors)}
}

// RenderObraDonut charts an obra's spending against its secretaria's balance.
func RenderObraDonut(id string, b core.ObraBudget, colors Colors) Rendered {
	return Rendered{Kind: KindObraDonut, ID: id, Spec: ComposeDonut(b.GastoDaObra, b.SaldoDaSecretaria, colors)}
}
