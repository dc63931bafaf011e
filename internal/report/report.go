// Package report exports the budget summary to a spreadsheet: one "Resumo"
// sheet with a row per secretaria and one "Extrato de Obras" sheet with a
// row per obra.
package report

import (
	"context"
	"fmt"
	"math"
	"time"

	"painel/internal/log"
	"painel/internal/services"
)

const (
	SheetResumo = "Resumo"
	SheetObras  = "Extrato de Obras"
)

var (
	resumoHeader = []any{"Secretaria", "Orçamento consolidado", "Gasto", "Restante", "Resultado (%)"}
	obrasHeader  = []any{"Obra", "Secretaria", "Nº contrato", "Município", "Ordem de serviço", "Total gasto"}
)

// Source is the budget data a report is built from. *services.BudgetService implements it.
type Source interface {
	ListSecretarias(ctx context.Context) ([]services.SecretariaSummary, error)
	ListObras(ctx context.Context, q services.ObraQuery) ([]services.ObraSummary, error)
}

// Writer replaces the whole content of a named sheet.
type Writer interface {
	WriteSheet(ctx context.Context, title string, rows [][]any) error
}

// Summary describes an exported report.
type Summary struct {
	Secretarias int
	Obras       int
	Elapsed     time.Duration
}

type Exporter struct {
	source Source
	writer Writer
	logger *log.Logger
}

func NewExporter(source Source, writer Writer, logger *log.Logger) *Exporter {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &Exporter{source: source, writer: writer, logger: logger.WithComponent(log.ComponentReport)}
}

// Export writes both sheets. Nothing is written when loading the data fails.
func (e *Exporter) Export(ctx context.Context) (Summary, error) {
	start := time.Now()

	secretarias, err := e.source.ListSecretarias(ctx)
	if err != nil {
		return Summary{}, fmt.Errorf("load secretarias: %w", err)
	}
	obras, err := e.source.ListObras(ctx, services.ObraQuery{OrdenarPor: services.OrderByMaiorGasto})
	if err != nil {
		return Summary{}, fmt.Errorf("load obras: %w", err)
	}

	if err := e.writer.WriteSheet(ctx, SheetResumo, ResumoRows(secretarias)); err != nil {
		return Summary{}, fmt.Errorf("write %s: %w", SheetResumo, err)
	}
	if err := e.writer.WriteSheet(ctx, SheetObras, ObraRows(obras)); err != nil {
		return Summary{}, fmt.Errorf("write %s: %w", SheetObras, err)
	}

	s := Summary{Secretarias: len(secretarias), Obras: len(obras), Elapsed: time.Since(start)}
	e.logger.InfoContext(ctx, "Report exported",
		"secretarias", s.Secretarias,
		"obras", s.Obras,
		log.FieldDuration, s.Elapsed.Milliseconds())
	return s, nil
}

// ResumoRows builds the summary sheet, header first, followed by a totals row.
// Amounts are plain reais so the spreadsheet can format them.
func ResumoRows(secretarias []services.SecretariaSummary) [][]any {
	rows := make([][]any, 0, len(secretarias)+2)
	rows = append(rows, resumoHeader)

	var consolidated, spent, remaining float64
	for _, s := range secretarias {
		b := s.Budget
		rows = append(rows, []any{s.Secretaria.Nome, b.OrcamentoConsolidado, b.OrcamentoGasto, b.OrcamentoRestante, round2(s.ResultadoPercentual)})
		consolidated += b.OrcamentoConsolidado
		spent += b.OrcamentoGasto
		remaining += b.OrcamentoRestante
	}

	var pct float64
	if consolidated > 0 {
		pct = remaining / consolidated * 100
	}
	rows = append(rows, []any{"Total", round2(consolidated), round2(spent), round2(remaining), round2(pct)})
	return rows
}

// ObraRows builds the obra statement in the given order.
func ObraRows(obras []services.ObraSummary) [][]any {
	rows := make([][]any, 0, len(obras)+1)
	rows = append(rows, obrasHeader)
	for _, o := range obras {
		rows = append(rows, []any{o.Obra.Nome, o.SecretariaNome, o.Obra.NContrato, o.Obra.Municipio, o.Obra.OrdemServico, o.TotalGasto.Reais()})
	}
	return rows
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
