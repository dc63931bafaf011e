package core

// DailyPoint is one calendar day of the cash-flow time axis.
type DailyPoint struct {
	Date    string
	Spend   float64
	Balance float64
}

// TimeSeries is the ordered, chronological sequence of days of a cash-flow chart.
type TimeSeries []DailyPoint

// Labels returns the date label of every day, in order.
func (ts TimeSeries) Labels() []string {
	out := make([]string, len(ts))
	for i, p := range ts {
		out[i] = p.Date
	}
	return out
}

// Spends returns the spend of every day, in order.
func (ts TimeSeries) Spends() []float64 {
	out := make([]float64, len(ts))
	for i, p := range ts {
		out[i] = p.Spend
	}
	return out
}

// Balances returns the cumulative balance of every day, in order.
func (ts TimeSeries) Balances() []float64 {
	out := make([]float64, len(ts))
	for i, p := range ts {
		out[i] = p.Balance
	}
	return out
}

// MeasurementEvent is a dated financial event overlaid on the cash-flow chart.
type MeasurementEvent struct {
	Date  string  `json:"data"`
	Value float64 `json:"valor"`
	Name  string  `json:"nome"`
}

// SecretariaBudget is the payload of GET /api/orcamento/secretaria/{id}.
type SecretariaBudget struct {
	Nome                 string  `json:"nome"`
	OrcamentoConsolidado float64 `json:"orcamento_consolidado"`
	OrcamentoGasto       float64 `json:"orcamento_gasto"`
	OrcamentoRestante    float64 `json:"orcamento_restante"`
}

// ObraBudget is the payload of GET /api/orcamento/obra/{id}.
type ObraBudget struct {
	GastoDaObra       float64 `json:"gasto_da_obra"`
	SaldoDaSecretaria float64 `json:"saldo_da_secretaria"`
}

// DailyCashFlow is the payload of GET /api/gastos_diarios/secretaria/{id}.
type DailyCashFlow struct {
	Labels        []string           `json:"labels"`
	Gastos        []float64          `json:"gastos"`
	Saldos        []float64          `json:"saldos"`
	TetoOrcamento float64            `json:"teto_orcamento"`
	Medicoes      []MeasurementEvent `json:"medicoes"`
}

// EmptyCashFlow is returned when a secretaria has no medições yet.
func EmptyCashFlow() DailyCashFlow {
	return DailyCashFlow{
		Labels:   []string{},
		Gastos:   []float64{},
		Saldos:   []float64{},
		Medicoes: []MeasurementEvent{},
	}
}

// Series zips the three parallel sequences into day records.
// Misaligned payloads are truncated to the shortest sequence.
func (d DailyCashFlow) Series() TimeSeries {
	n := min(len(d.Labels), len(d.Gastos), len(d.Saldos))
	ts := make(TimeSeries, n)
	for i := 0; i < n; i++ {
		ts[i] = DailyPoint{Date: d.Labels[i], Spend: d.Gastos[i], Balance: d.Saldos[i]}
	}
	return ts
}

// FromSeries splits day records back into the wire sequences.
func FromSeries(ts TimeSeries, ceiling float64, events []MeasurementEvent) DailyCashFlow {
	if events == nil {
		events = []MeasurementEvent{}
	}
	return DailyCashFlow{
		Labels:        ts.Labels(),
		Gastos:        ts.Spends(),
		Saldos:        ts.Balances(),
		TetoOrcamento: ceiling,
		Medicoes:      events,
	}
}
