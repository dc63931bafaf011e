package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	FonteInicial   FonteOrcamento = "inicial"
	FonteQualitech FonteOrcamento = "qualitech"
)

type (
	// FonteOrcamento selects which service order value counts for an obra in a medição.
	FonteOrcamento string

	Date struct {
		time.Time
	}

	Money struct {
		Cents int64
	}

	// Secretaria is a budget-holding department.
	Secretaria struct {
		ID   int64
		Nome string
	}

	// Obra is a project drawing against its secretaria's budget.
	Obra struct {
		ID            int64
		Nome          string
		Objeto        string
		Municipio     string
		NContrato     string
		ContratoFonte string
		OrdemServico  string
		Periodo       string
		Endereco      string
		SecretariaID  int64
	}

	Gasto struct {
		ID        int64
		Descricao string
		Valor     Money
		Data      Date
		ObraID    int64
	}

	// Medicao is a measurement period that credits budget to a secretaria.
	Medicao struct {
		ID           int64
		Nome         string
		DataInicio   Date
		DataFim      Date
		SecretariaID int64
		Orcamentos   []OrcamentoObra
	}

	// OrcamentoObra is the budget an obra receives inside one medição.
	OrcamentoObra struct {
		MedicaoID           int64
		ObraID              int64
		OSInicialSecretaria Money
		OSQualitech         Money
		Fonte               FonteOrcamento
	}
)

var (
	ErrNotFound         = errors.New("not found")
	ErrDuplicate        = errors.New("already exists")
	ErrInvalidDate      = errors.New("invalid date")
	ErrInvalidAmount    = errors.New("invalid amount")
	ErrEmptyName        = errors.New("empty name")
	ErrEmptyDescription = errors.New("empty description")
	ErrInvalidPeriod    = errors.New("end date must not be before start date")
	ErrInvalidFonte     = errors.New("invalid budget source")
	ErrMissingParent    = errors.New("missing parent reference")
	ErrTooLong          = errors.New("too long")
)

var validationErrors = []error{
	ErrInvalidDate, ErrInvalidAmount, ErrEmptyName, ErrEmptyDescription,
	ErrInvalidPeriod, ErrInvalidFonte, ErrMissingParent, ErrTooLong,
}

// IsValidation reports whether err was caused by invalid input rather than
// by storage.
func IsValidation(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a date in YYYY-MM-DD format.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return Date{}, ErrInvalidDate
	}
	return Date{Time: t}, nil
}

// ISO returns the date as YYYY-MM-DD.
func (d Date) ISO() string {
	return d.Format("2006-01-02")
}

// Label returns the dd/mm form used on the cash-flow time axis.
func (d Date) Label() string {
	return d.Format("02/01")
}

func (d Date) Validate() error {
	if d.IsZero() {
		return ErrInvalidDate
	}
	return nil
}

// Reais returns the value in reais for display and chart payloads.
// Use cents for calculations.
func (m Money) Reais() float64 {
	return float64(m.Cents) / 100.0
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

func (s Secretaria) Validate() error {
	if strings.TrimSpace(s.Nome) == "" {
		return ErrEmptyName
	}
	if len(s.Nome) > 100 {
		return fmt.Errorf("name %w (max 100 characters)", ErrTooLong)
	}
	return nil
}

func (o Obra) Validate() error {
	if strings.TrimSpace(o.Nome) == "" {
		return ErrEmptyName
	}
	if len(o.Nome) > 200 {
		return fmt.Errorf("name %w (max 200 characters)", ErrTooLong)
	}
	if o.SecretariaID <= 0 {
		return ErrMissingParent
	}
	return nil
}

func (g Gasto) Validate() error {
	if strings.TrimSpace(g.Descricao) == "" {
		return ErrEmptyDescription
	}
	if len(g.Descricao) > 200 {
		return fmt.Errorf("description %w (max 200 characters)", ErrTooLong)
	}
	if err := g.Valor.Validate(); err != nil {
		return err
	}
	if err := g.Data.Validate(); err != nil {
		return err
	}
	if g.ObraID <= 0 {
		return ErrMissingParent
	}
	return nil
}

func (m Medicao) Validate() error {
	if strings.TrimSpace(m.Nome) == "" {
		return ErrEmptyName
	}
	if len(m.Nome) > 150 {
		return fmt.Errorf("name %w (max 150 characters)", ErrTooLong)
	}
	if err := m.DataInicio.Validate(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	if err := m.DataFim.Validate(); err != nil {
		return fmt.Errorf("end: %w", err)
	}
	if m.DataFim.Before(m.DataInicio.Time) {
		return ErrInvalidPeriod
	}
	if m.SecretariaID <= 0 {
		return ErrMissingParent
	}
	return nil
}

// OrcamentoTotal sums the effective budget of every obra in the medição.
func (m Medicao) OrcamentoTotal() Money {
	var total int64
	for _, o := range m.Orcamentos {
		total += o.ValorEfetivo().Cents
	}
	return Money{Cents: total}
}

// ValorEfetivo returns the service order value selected by Fonte.
func (o OrcamentoObra) ValorEfetivo() Money {
	if o.Fonte == FonteQualitech {
		return o.OSQualitech
	}
	return o.OSInicialSecretaria
}

func (o OrcamentoObra) Validate() error {
	switch o.Fonte {
	case FonteInicial, FonteQualitech:
	default:
		return ErrInvalidFonte
	}
	if o.OSInicialSecretaria.Cents < 0 || o.OSQualitech.Cents < 0 {
		return ErrInvalidAmount
	}
	if o.MedicaoID <= 0 || o.ObraID <= 0 {
		return ErrMissingParent
	}
	return nil
}
