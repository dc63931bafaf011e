package core

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"
)

func TestDateValidate(t *testing.T) {
	if err := NewDate(2025, 1, 1).Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if err := (Date{Time: time.Time{}}).Validate(); err == nil {
		t.Fatalf("expected error for zero date")
	}
}

func TestDateLabelAndISO(t *testing.T) {
	d := NewDate(2025, 3, 7)
	if d.Label() != "07/03" {
		t.Fatalf("label = %q", d.Label())
	}
	if d.ISO() != "2025-03-07" {
		t.Fatalf("iso = %q", d.ISO())
	}
	p, err := ParseDate("2025-03-07")
	if err != nil || !p.Equal(d.Time) {
		t.Fatalf("ParseDate = %v, %v", p, err)
	}
	if _, err := ParseDate("07/03/2025"); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestGastoValidate(t *testing.T) {
	good := Gasto{Descricao: "cimento", Valor: Money{Cents: 100}, Data: NewDate(2025, 1, 1), ObraID: 1}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	bads := []Gasto{
		{Descricao: "", Valor: Money{Cents: 1}, Data: NewDate(2025, 1, 1), ObraID: 1},
		{Descricao: "a", Valor: Money{Cents: 0}, Data: NewDate(2025, 1, 1), ObraID: 1},
		{Descricao: "a", Valor: Money{Cents: 1}, Data: Date{}, ObraID: 1},
		{Descricao: "a", Valor: Money{Cents: 1}, Data: NewDate(2025, 1, 1), ObraID: 0},
	}
	for i, g := range bads {
		if err := g.Validate(); err == nil {
			t.Fatalf("case %d expected error", i)
		}
	}
}

func TestMedicaoValidateAndTotal(t *testing.T) {
	m := Medicao{
		Nome:         "M1",
		DataInicio:   NewDate(2025, 1, 1),
		DataFim:      NewDate(2025, 1, 31),
		SecretariaID: 1,
		Orcamentos: []OrcamentoObra{
			{OSInicialSecretaria: Money{Cents: 1000}, OSQualitech: Money{Cents: 5000}, Fonte: FonteInicial},
			{OSInicialSecretaria: Money{Cents: 1000}, OSQualitech: Money{Cents: 5000}, Fonte: FonteQualitech},
		},
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
	if got := m.OrcamentoTotal().Cents; got != 6000 {
		t.Fatalf("total = %d, want 6000", got)
	}

	m.DataFim = NewDate(2024, 12, 31)
	if err := m.Validate(); err != ErrInvalidPeriod {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestOrcamentoObraValidate(t *testing.T) {
	o := OrcamentoObra{MedicaoID: 1, ObraID: 1, Fonte: "outra"}
	if err := o.Validate(); err != ErrInvalidFonte {
		t.Fatalf("expected ErrInvalidFonte, got %v", err)
	}
	o.Fonte = FonteQualitech
	if err := o.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}
}

func TestCashFlowSeriesTruncatesMisalignedPayload(t *testing.T) {
	d := DailyCashFlow{
		Labels: []string{"01/01", "02/01", "03/01"},
		Gastos: []float64{1, 2},
		Saldos: []float64{10, 8, 6},
	}
	ts := d.Series()
	if len(ts) != 2 {
		t.Fatalf("len = %d, want 2", len(ts))
	}
	if ts[1] != (DailyPoint{Date: "02/01", Spend: 2, Balance: 8}) {
		t.Fatalf("unexpected point %+v", ts[1])
	}
	back := FromSeries(ts, 100, nil)
	if len(back.Labels) != 2 || back.TetoOrcamento != 100 || back.Medicoes == nil {
		t.Fatalf("unexpected payload %+v", back)
	}
}

func TestIsValidation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"empty name", Secretaria{}.Validate(), true},
		{"long name", Secretaria{Nome: strings.Repeat("a", 101)}.Validate(), true},
		{"wrapped date", Medicao{Nome: "M", SecretariaID: 1}.Validate(), true},
		{"wrapped fonte", fmt.Errorf("orcamento: %w", ErrInvalidFonte), true},
		{"not found", ErrNotFound, false},
		{"duplicate", fmt.Errorf("save: %w", ErrDuplicate), false},
		{"other", errors.New("disk full"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsValidation(tt.err); got != tt.want {
				t.Errorf("IsValidation(%v) = %v, want %v", tt.err, got, tt.want)
			}
		})
	}
}
