package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"painel/internal/amqp"
	"painel/internal/core"
	"painel/internal/storage"
)

// AlertPublisher sends budget alerts. *amqp.Client implements it.
type AlertPublisher interface {
	PublishBudgetAlert(ctx context.Context, alert *amqp.BudgetAlert) error
}

// ChangeFunc is called after any write that can change a secretaria's charts.
type ChangeFunc func(secretariaID int64)

// Obra listing orders.
const (
	OrderByName       = ""
	OrderByMaiorGasto = "maior_gasto"
	OrderByMenorGasto = "menor_gasto"
)

var ErrInvalidOrder = errors.New("invalid ordering")

type (
	SecretariaSummary struct {
		Secretaria core.Secretaria
		Budget     core.SecretariaBudget
		// ResultadoPercentual is remaining over consolidated, in percent.
		ResultadoPercentual float64
	}

	MedicaoSummary struct {
		Medicao core.Medicao
		Total   core.Money
		// GastoNoPeriodo sums the secretaria's gastos between start and end dates, inclusive.
		GastoNoPeriodo core.Money
		Resultado      core.Money
	}

	SecretariaDetail struct {
		SecretariaSummary
		Medicoes []MedicaoSummary
		Obras    []ObraSummary
	}

	ObraSummary struct {
		Obra           core.Obra
		SecretariaNome string
		TotalGasto     core.Money
	}

	ObraDetail struct {
		ObraSummary
		Gastos []core.Gasto
	}

	ObraQuery struct {
		Query        string
		SecretariaID int64
		OrdenarPor   string
	}

	// GastoResult reports a recorded gasto. Warning is set when the gasto
	// leaves the secretaria's balance negative.
	GastoResult struct {
		Gasto   core.Gasto
		Warning string
	}
)

// BudgetService owns the budget arithmetic on top of a storage backend and
// publishes alerts on overruns.
type BudgetService struct {
	repo   storage.Repository
	alerts AlertPublisher

	mu       sync.RWMutex
	onChange []ChangeFunc
}

func NewBudgetService(repo storage.Repository, alerts AlertPublisher) *BudgetService {
	return &BudgetService{
		repo:   repo,
		alerts: alerts,
	}
}

// OnChange registers fn to run after writes affecting a secretaria.
func (s *BudgetService) OnChange(fn ChangeFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = append(s.onChange, fn)
}

func (s *BudgetService) changed(secretariaID int64) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, fn := range s.onChange {
		fn(secretariaID)
	}
}

// Ping checks the storage backend.
func (s *BudgetService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// secretariaTotals returns consolidated and spent cents of a secretaria.
func (s *BudgetService) secretariaTotals(ctx context.Context, id int64) (medicoes []core.Medicao, gastos []core.Gasto, consolidated, spent int64, err error) {
	medicoes, err = s.repo.ListMedicoes(ctx, id)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("list medicoes: %w", err)
	}
	gastos, err = s.repo.ListGastosBySecretaria(ctx, id)
	if err != nil {
		return nil, nil, 0, 0, fmt.Errorf("list gastos: %w", err)
	}
	for _, m := range medicoes {
		consolidated += m.OrcamentoTotal().Cents
	}
	for _, g := range gastos {
		spent += g.Valor.Cents
	}
	return medicoes, gastos, consolidated, spent, nil
}

func (s *BudgetService) summary(ctx context.Context, sec core.Secretaria) (SecretariaSummary, error) {
	_, _, consolidated, spent, err := s.secretariaTotals(ctx, sec.ID)
	if err != nil {
		return SecretariaSummary{}, err
	}
	return newSecretariaSummary(sec, consolidated, spent), nil
}

func newSecretariaSummary(sec core.Secretaria, consolidated, spent int64) SecretariaSummary {
	remaining := consolidated - spent
	out := SecretariaSummary{
		Secretaria: sec,
		Budget: core.SecretariaBudget{
			Nome:                 sec.Nome,
			OrcamentoConsolidado: core.Money{Cents: consolidated}.Reais(),
			OrcamentoGasto:       core.Money{Cents: spent}.Reais(),
			OrcamentoRestante:    core.Money{Cents: remaining}.Reais(),
		},
	}
	if consolidated != 0 {
		out.ResultadoPercentual = float64(remaining) / float64(consolidated) * 100
	}
	return out
}

// SecretariaBudget returns the payload of the secretaria donut.
func (s *BudgetService) SecretariaBudget(ctx context.Context, id int64) (core.SecretariaBudget, error) {
	sec, err := s.repo.GetSecretaria(ctx, id)
	if err != nil {
		return core.SecretariaBudget{}, err
	}
	sum, err := s.summary(ctx, sec)
	if err != nil {
		return core.SecretariaBudget{}, fmt.Errorf("secretaria %d budget: %w", id, err)
	}
	return sum.Budget, nil
}

// ObraBudget returns the obra's total spent and its secretaria's remaining balance.
func (s *BudgetService) ObraBudget(ctx context.Context, id int64) (core.ObraBudget, error) {
	obra, err := s.repo.GetObra(ctx, id)
	if err != nil {
		return core.ObraBudget{}, err
	}
	gastos, err := s.repo.ListGastosByObra(ctx, id)
	if err != nil {
		return core.ObraBudget{}, fmt.Errorf("list gastos: %w", err)
	}
	_, _, consolidated, spent, err := s.secretariaTotals(ctx, obra.SecretariaID)
	if err != nil {
		return core.ObraBudget{}, fmt.Errorf("obra %d budget: %w", id, err)
	}
	return core.ObraBudget{
		GastoDaObra:       sumGastos(gastos).Reais(),
		SaldoDaSecretaria: core.Money{Cents: consolidated - spent}.Reais(),
	}, nil
}

// DailyCashFlow builds the cash-flow payload of a secretaria.
//
// The window runs from the earliest medição start to the latest medição end,
// one day per label. Each medição credits its total on its start day, gastos
// inside the window debit their day and the balance accumulates both. Every
// medição with a positive total becomes a marker on its start day. Without
// medições the payload is empty.
func (s *BudgetService) DailyCashFlow(ctx context.Context, id int64) (core.DailyCashFlow, error) {
	if _, err := s.repo.GetSecretaria(ctx, id); err != nil {
		return core.DailyCashFlow{}, err
	}
	medicoes, gastos, consolidated, _, err := s.secretariaTotals(ctx, id)
	if err != nil {
		return core.DailyCashFlow{}, fmt.Errorf("secretaria %d cash flow: %w", id, err)
	}
	if len(medicoes) == 0 {
		return core.EmptyCashFlow(), nil
	}

	first, last := medicoes[0].DataInicio.Time, medicoes[0].DataFim.Time
	for _, m := range medicoes[1:] {
		if m.DataInicio.Before(first) {
			first = m.DataInicio.Time
		}
		if m.DataFim.After(last) {
			last = m.DataFim.Time
		}
	}
	days := int(last.Sub(first).Hours()/24) + 1

	credits := make([]int64, days)
	debits := make([]int64, days)
	dayOf := func(d core.Date) (int, bool) {
		i := int(d.Sub(first).Hours() / 24)
		return i, !d.Before(first) && i < days
	}
	for _, m := range medicoes {
		if i, ok := dayOf(m.DataInicio); ok {
			credits[i] += m.OrcamentoTotal().Cents
		}
	}
	for _, g := range gastos {
		if i, ok := dayOf(g.Data); ok {
			debits[i] += g.Valor.Cents
		}
	}

	series := make(core.TimeSeries, days)
	var balance int64
	for i := range series {
		balance += credits[i] - debits[i]
		series[i] = core.DailyPoint{
			Date:    core.Date{Time: first.AddDate(0, 0, i)}.Label(),
			Spend:   core.Money{Cents: debits[i]}.Reais(),
			Balance: core.Money{Cents: balance}.Reais(),
		}
	}

	events := make([]core.MeasurementEvent, 0, len(medicoes))
	for _, m := range medicoes {
		total := m.OrcamentoTotal()
		if total.Cents <= 0 {
			continue
		}
		events = append(events, core.MeasurementEvent{
			Date:  m.DataInicio.Label(),
			Value: total.Reais(),
			Name:  m.Nome,
		})
	}

	return core.FromSeries(series, core.Money{Cents: consolidated}.Reais(), events), nil
}

func (s *BudgetService) CreateSecretaria(ctx context.Context, sec core.Secretaria) (core.Secretaria, error) {
	if err := sec.Validate(); err != nil {
		return sec, err
	}
	created, err := s.repo.CreateSecretaria(ctx, sec)
	if err != nil {
		return sec, fmt.Errorf("save secretaria: %w", err)
	}
	return created, nil
}

// ListSecretarias returns every secretaria with its budget summary.
func (s *BudgetService) ListSecretarias(ctx context.Context) ([]SecretariaSummary, error) {
	secs, err := s.repo.ListSecretarias(ctx)
	if err != nil {
		return nil, fmt.Errorf("list secretarias: %w", err)
	}
	out := make([]SecretariaSummary, 0, len(secs))
	for _, sec := range secs {
		sum, err := s.summary(ctx, sec)
		if err != nil {
			return nil, fmt.Errorf("secretaria %d: %w", sec.ID, err)
		}
		out = append(out, sum)
	}
	return out, nil
}

// SecretariaDetail returns a secretaria with its medições, latest first, and its obras.
func (s *BudgetService) SecretariaDetail(ctx context.Context, id int64) (SecretariaDetail, error) {
	sec, err := s.repo.GetSecretaria(ctx, id)
	if err != nil {
		return SecretariaDetail{}, err
	}
	medicoes, gastos, consolidated, spent, err := s.secretariaTotals(ctx, id)
	if err != nil {
		return SecretariaDetail{}, fmt.Errorf("secretaria %d detail: %w", id, err)
	}

	detail := SecretariaDetail{
		SecretariaSummary: newSecretariaSummary(sec, consolidated, spent),
		Medicoes:          make([]MedicaoSummary, 0, len(medicoes)),
	}
	for _, m := range medicoes {
		var inPeriod int64
		for _, g := range gastos {
			if !g.Data.Before(m.DataInicio.Time) && !g.Data.After(m.DataFim.Time) {
				inPeriod += g.Valor.Cents
			}
		}
		total := m.OrcamentoTotal()
		detail.Medicoes = append(detail.Medicoes, MedicaoSummary{
			Medicao:        m,
			Total:          total,
			GastoNoPeriodo: core.Money{Cents: inPeriod},
			Resultado:      core.Money{Cents: total.Cents - inPeriod},
		})
	}

	detail.Obras, err = s.ListObras(ctx, ObraQuery{SecretariaID: id})
	if err != nil {
		return SecretariaDetail{}, err
	}
	return detail, nil
}

func (s *BudgetService) CreateObra(ctx context.Context, o core.Obra) (core.Obra, error) {
	if err := o.Validate(); err != nil {
		return o, err
	}
	created, err := s.repo.CreateObra(ctx, o)
	if err != nil {
		return o, fmt.Errorf("save obra: %w", err)
	}
	return created, nil
}

// ListObras filters obras by text and secretaria and orders them by name or total spent.
func (s *BudgetService) ListObras(ctx context.Context, q ObraQuery) ([]ObraSummary, error) {
	switch q.OrdenarPor {
	case OrderByName, OrderByMaiorGasto, OrderByMenorGasto:
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidOrder, q.OrdenarPor)
	}

	obras, err := s.repo.ListObras(ctx, storage.ObraFilter{Query: q.Query, SecretariaID: q.SecretariaID})
	if err != nil {
		return nil, fmt.Errorf("list obras: %w", err)
	}

	names := make(map[int64]string)
	out := make([]ObraSummary, 0, len(obras))
	for _, o := range obras {
		nome, ok := names[o.SecretariaID]
		if !ok {
			sec, err := s.repo.GetSecretaria(ctx, o.SecretariaID)
			if err != nil {
				return nil, fmt.Errorf("obra %d: %w", o.ID, err)
			}
			nome = sec.Nome
			names[o.SecretariaID] = nome
		}
		gastos, err := s.repo.ListGastosByObra(ctx, o.ID)
		if err != nil {
			return nil, fmt.Errorf("obra %d gastos: %w", o.ID, err)
		}
		out = append(out, ObraSummary{Obra: o, SecretariaNome: nome, TotalGasto: sumGastos(gastos)})
	}

	switch q.OrdenarPor {
	case OrderByMaiorGasto:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TotalGasto.Cents > out[j].TotalGasto.Cents })
	case OrderByMenorGasto:
		sort.SliceStable(out, func(i, j int) bool { return out[i].TotalGasto.Cents < out[j].TotalGasto.Cents })
	}
	return out, nil
}

// ObraDetail returns an obra with its gastos, newest first.
func (s *BudgetService) ObraDetail(ctx context.Context, id int64) (ObraDetail, error) {
	obra, err := s.repo.GetObra(ctx, id)
	if err != nil {
		return ObraDetail{}, err
	}
	sec, err := s.repo.GetSecretaria(ctx, obra.SecretariaID)
	if err != nil {
		return ObraDetail{}, fmt.Errorf("obra %d: %w", id, err)
	}
	gastos, err := s.repo.ListGastosByObra(ctx, id)
	if err != nil {
		return ObraDetail{}, fmt.Errorf("obra %d gastos: %w", id, err)
	}
	return ObraDetail{
		ObraSummary: ObraSummary{Obra: obra, SecretariaNome: sec.Nome, TotalGasto: sumGastos(gastos)},
		Gastos:      gastos,
	}, nil
}

// RecordGasto saves a gasto. A gasto larger than the secretaria's remaining
// balance is still saved, with a warning and a published budget alert.
func (s *BudgetService) RecordGasto(ctx context.Context, g core.Gasto) (GastoResult, error) {
	if err := g.Validate(); err != nil {
		return GastoResult{Gasto: g}, err
	}
	obra, err := s.repo.GetObra(ctx, g.ObraID)
	if err != nil {
		return GastoResult{Gasto: g}, err
	}
	sec, err := s.repo.GetSecretaria(ctx, obra.SecretariaID)
	if err != nil {
		return GastoResult{Gasto: g}, fmt.Errorf("obra %d: %w", obra.ID, err)
	}
	_, _, consolidated, spent, err := s.secretariaTotals(ctx, sec.ID)
	if err != nil {
		return GastoResult{Gasto: g}, err
	}
	remaining := consolidated - spent

	saved, err := s.repo.CreateGasto(ctx, g)
	if err != nil {
		return GastoResult{Gasto: g}, fmt.Errorf("save gasto: %w", err)
	}
	s.changed(sec.ID)

	res := GastoResult{Gasto: saved}
	if saved.Valor.Cents > remaining {
		res.Warning = fmt.Sprintf("Atenção! Este gasto deixará o saldo geral da secretaria (%s) negativo.", sec.Nome)
		saldo := core.Money{Cents: remaining - saved.Valor.Cents}
		slog.WarnContext(ctx, "Gasto exceeds secretaria balance",
			"secretaria_id", sec.ID,
			"obra_id", obra.ID,
			"gasto_id", saved.ID,
			"saldo_cents", saldo.Cents)
		s.publishAlert(ctx, amqp.NewBudgetAlert(sec, obra, saved, saldo))
	}
	return res, nil
}

func (s *BudgetService) publishAlert(ctx context.Context, alert *amqp.BudgetAlert) {
	if s.alerts == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping budget alert")
		return
	}
	if err := s.alerts.PublishBudgetAlert(ctx, alert); err != nil {
		// The gasto is saved; the alert is best effort
		slog.ErrorContext(ctx, "Failed to publish budget alert",
			"secretaria_id", alert.SecretariaID,
			"gasto_id", alert.GastoID,
			"error", err)
	}
}

func (s *BudgetService) DeleteGasto(ctx context.Context, id int64) error {
	g, err := s.repo.GetGasto(ctx, id)
	if err != nil {
		return err
	}
	obra, err := s.repo.GetObra(ctx, g.ObraID)
	if err != nil {
		return fmt.Errorf("gasto %d: %w", id, err)
	}
	if err := s.repo.DeleteGasto(ctx, id); err != nil {
		return err
	}
	s.changed(obra.SecretariaID)
	return nil
}

func (s *BudgetService) CreateMedicao(ctx context.Context, m core.Medicao) (core.Medicao, error) {
	if err := m.Validate(); err != nil {
		return m, err
	}
	created, err := s.repo.CreateMedicao(ctx, m)
	if err != nil {
		return m, fmt.Errorf("save medicao: %w", err)
	}
	s.changed(created.SecretariaID)
	return created, nil
}

// SetOrcamentos replaces a medição's obra budgets. Every obra must belong to
// the medição's secretaria.
func (s *BudgetService) SetOrcamentos(ctx context.Context, medicaoID int64, orcamentos []core.OrcamentoObra) (core.Medicao, error) {
	m, err := s.repo.GetMedicao(ctx, medicaoID)
	if err != nil {
		return core.Medicao{}, err
	}
	for i := range orcamentos {
		orcamentos[i].MedicaoID = medicaoID
		if orcamentos[i].Fonte == "" {
			orcamentos[i].Fonte = core.FonteInicial
		}
		if err := orcamentos[i].Validate(); err != nil {
			return m, fmt.Errorf("orcamento for obra %d: %w", orcamentos[i].ObraID, err)
		}
		obra, err := s.repo.GetObra(ctx, orcamentos[i].ObraID)
		if err != nil {
			if errors.Is(err, core.ErrNotFound) {
				return m, fmt.Errorf("obra %d: %w", orcamentos[i].ObraID, core.ErrMissingParent)
			}
			return m, err
		}
		if obra.SecretariaID != m.SecretariaID {
			return m, fmt.Errorf("obra %d belongs to another secretaria: %w", obra.ID, core.ErrMissingParent)
		}
	}

	if err := s.repo.SetOrcamentos(ctx, medicaoID, orcamentos); err != nil {
		return m, fmt.Errorf("save orcamentos: %w", err)
	}
	s.changed(m.SecretariaID)
	return s.repo.GetMedicao(ctx, medicaoID)
}

// Close closes storage and, when it holds a connection, the alert publisher.
func (s *BudgetService) Close() error {
	var errs []error

	if s.repo != nil {
		if err := s.repo.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.alerts.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close budget service: %w", errors.Join(errs...))
	}
	return nil
}

func sumGastos(gastos []core.Gasto) core.Money {
	var total int64
	for _, g := range gastos {
		total += g.Valor.Cents
	}
	return core.Money{Cents: total}
}

// ParseOrdem normalizes the ordenar_por query value.
func ParseOrdem(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Today returns the current local date, the default date of a new gasto.
func Today() core.Date {
	now := time.Now()
	return core.NewDate(now.Year(), int(now.Month()), now.Day())
}
