package amqp

import (
	"encoding/json"
	"fmt"
	"time"

	"painel/internal/core"
)

// BudgetAlert is published when a gasto leaves its secretaria's balance negative.
// It carries enough to log and re-render without a database round trip.
type BudgetAlert struct {
	SecretariaID   int64     `json:"secretaria_id"`
	SecretariaNome string    `json:"secretaria_nome"`
	ObraID         int64     `json:"obra_id"`
	ObraNome       string    `json:"obra_nome"`
	GastoID        int64     `json:"gasto_id"`
	ValorCents     int64     `json:"valor_cents"`
	SaldoCents     int64     `json:"saldo_cents"`
	Timestamp      time.Time `json:"timestamp"`
}

// NewBudgetAlert builds an alert for gasto g recorded against obra o of secretaria s,
// with saldo the secretaria balance after the gasto.
func NewBudgetAlert(s core.Secretaria, o core.Obra, g core.Gasto, saldo core.Money) *BudgetAlert {
	return &BudgetAlert{
		SecretariaID:   s.ID,
		SecretariaNome: s.Nome,
		ObraID:         o.ID,
		ObraNome:       o.Nome,
		GastoID:        g.ID,
		ValorCents:     g.Valor.Cents,
		SaldoCents:     saldo.Cents,
		Timestamp:      time.Now(),
	}
}

// Text renders the alert for humans.
func (m *BudgetAlert) Text() string {
	return fmt.Sprintf("Atenção! O gasto de %s na obra %s deixou o saldo da secretaria %s negativo: %s",
		core.FormatCentsBRL(m.ValorCents), m.ObraNome, m.SecretariaNome, core.FormatCentsBRL(m.SaldoCents))
}

// ToJSON converts the message to JSON bytes
func (m *BudgetAlert) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// BudgetAlertFromJSON creates a message from JSON bytes
func BudgetAlertFromJSON(data []byte) (*BudgetAlert, error) {
	var msg BudgetAlert
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	if msg.SecretariaID <= 0 {
		return nil, fmt.Errorf("budget alert without secretaria id")
	}
	return &msg, nil
}
