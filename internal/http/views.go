package http

import (
	"painel/internal/core"
	"painel/internal/services"
)

// JSON views of the budget entities. Money is exposed in reais.

type secretariaView struct {
	ID                   int64   `json:"id"`
	Nome                 string  `json:"nome"`
	OrcamentoConsolidado float64 `json:"orcamento_consolidado"`
	OrcamentoGasto       float64 `json:"orcamento_gasto"`
	OrcamentoRestante    float64 `json:"orcamento_restante"`
	ResultadoPercentual  float64 `json:"resultado_percentual"`
}

type secretariaDetailView struct {
	secretariaView
	Medicoes []medicaoView `json:"medicoes"`
	Obras    []obraView    `json:"obras"`
}

type medicaoView struct {
	ID             int64           `json:"id"`
	Nome           string          `json:"nome"`
	DataInicio     string          `json:"data_inicio"`
	DataFim        string          `json:"data_fim"`
	SecretariaID   int64           `json:"secretaria_id"`
	OrcamentoTotal float64         `json:"orcamento_total"`
	GastoNoPeriodo float64         `json:"gasto_no_periodo"`
	Resultado      float64         `json:"resultado"`
	Orcamentos     []orcamentoView `json:"orcamentos"`
}

type orcamentoView struct {
	ObraID              int64   `json:"obra_id"`
	OSInicialSecretaria float64 `json:"os_inicial_secretaria"`
	OSQualitech         float64 `json:"os_qualitech"`
	Fonte               string  `json:"fonte"`
	ValorEfetivo        float64 `json:"valor_efetivo"`
}

type obraView struct {
	ID             int64   `json:"id"`
	Nome           string  `json:"nome"`
	Objeto         string  `json:"objeto,omitempty"`
	Municipio      string  `json:"municipio,omitempty"`
	NContrato      string  `json:"n_contrato,omitempty"`
	ContratoFonte  string  `json:"contrato_fonte,omitempty"`
	OrdemServico   string  `json:"ordem_servico,omitempty"`
	Periodo        string  `json:"periodo,omitempty"`
	Endereco       string  `json:"endereco,omitempty"`
	SecretariaID   int64   `json:"secretaria_id"`
	SecretariaNome string  `json:"secretaria_nome,omitempty"`
	TotalGasto     float64 `json:"total_gasto"`
}

type obraDetailView struct {
	obraView
	Gastos []gastoView `json:"gastos"`
}

type gastoView struct {
	ID        int64   `json:"id"`
	Descricao string  `json:"descricao"`
	Valor     float64 `json:"valor"`
	Data      string  `json:"data"`
	ObraID    int64   `json:"obra_id"`
}

type gastoCreatedView struct {
	Gasto   gastoView `json:"gasto"`
	Warning string    `json:"warning,omitempty"`
}

type themeView struct {
	Theme      string `json:"theme"`
	Background string `json:"background"`
	Surface    string `json:"surface"`
	Text       string `json:"text"`
	TextMuted  string `json:"text_muted"`
}

func newSecretariaView(s services.SecretariaSummary) secretariaView {
	return secretariaView{
		ID:                   s.Secretaria.ID,
		Nome:                 s.Secretaria.Nome,
		OrcamentoConsolidado: s.Budget.OrcamentoConsolidado,
		OrcamentoGasto:       s.Budget.OrcamentoGasto,
		OrcamentoRestante:    s.Budget.OrcamentoRestante,
		ResultadoPercentual:  s.ResultadoPercentual,
	}
}

func newMedicaoView(m core.Medicao) medicaoView {
	v := medicaoView{
		ID:             m.ID,
		Nome:           m.Nome,
		DataInicio:     m.DataInicio.ISO(),
		DataFim:        m.DataFim.ISO(),
		SecretariaID:   m.SecretariaID,
		OrcamentoTotal: m.OrcamentoTotal().Reais(),
		Orcamentos:     make([]orcamentoView, 0, len(m.Orcamentos)),
	}
	for _, o := range m.Orcamentos {
		v.Orcamentos = append(v.Orcamentos, orcamentoView{
			ObraID:              o.ObraID,
			OSInicialSecretaria: o.OSInicialSecretaria.Reais(),
			OSQualitech:         o.OSQualitech.Reais(),
			Fonte:               string(o.Fonte),
			ValorEfetivo:        o.ValorEfetivo().Reais(),
		})
	}
	return v
}

func newObraView(o core.Obra) obraView {
	return obraView{
		ID:            o.ID,
		Nome:          o.Nome,
		Objeto:        o.Objeto,
		Municipio:     o.Municipio,
		NContrato:     o.NContrato,
		ContratoFonte: o.ContratoFonte,
		OrdemServico:  o.OrdemServico,
		Periodo:       o.Periodo,
		Endereco:      o.Endereco,
		SecretariaID:  o.SecretariaID,
	}
}

func newObraSummaryView(o services.ObraSummary) obraView {
	v := newObraView(o.Obra)
	v.SecretariaNome = o.SecretariaNome
	v.TotalGasto = o.TotalGasto.Reais()
	return v
}

func newGastoView(g core.Gasto) gastoView {
	return gastoView{
		ID:        g.ID,
		Descricao: g.Descricao,
		Valor:     g.Valor.Reais(),
		Data:      g.Data.ISO(),
		ObraID:    g.ObraID,
	}
}
