package storage

import (
	"context"

	"painel/internal/core"
)

// ObraFilter narrows ListObras. Zero values match everything.
type ObraFilter struct {
	// Query matches obra name or contract number, case-insensitively.
	Query        string
	SecretariaID int64
}

// Ports implemented by every storage backend.
type (
	SecretariaRepository interface {
		CreateSecretaria(ctx context.Context, s core.Secretaria) (core.Secretaria, error)
		GetSecretaria(ctx context.Context, id int64) (core.Secretaria, error)
		// ListSecretarias returns secretarias ordered by name.
		ListSecretarias(ctx context.Context) ([]core.Secretaria, error)
	}

	ObraRepository interface {
		CreateObra(ctx context.Context, o core.Obra) (core.Obra, error)
		GetObra(ctx context.Context, id int64) (core.Obra, error)
		// ListObras returns matching obras ordered by name.
		ListObras(ctx context.Context, f ObraFilter) ([]core.Obra, error)
	}

	GastoRepository interface {
		CreateGasto(ctx context.Context, g core.Gasto) (core.Gasto, error)
		GetGasto(ctx context.Context, id int64) (core.Gasto, error)
		DeleteGasto(ctx context.Context, id int64) error
		// ListGastosByObra returns an obra's gastos, newest first.
		ListGastosByObra(ctx context.Context, obraID int64) ([]core.Gasto, error)
		// ListGastosBySecretaria returns the gastos of every obra of a secretaria, oldest first.
		ListGastosBySecretaria(ctx context.Context, secretariaID int64) ([]core.Gasto, error)
	}

	MedicaoRepository interface {
		CreateMedicao(ctx context.Context, m core.Medicao) (core.Medicao, error)
		GetMedicao(ctx context.Context, id int64) (core.Medicao, error)
		// ListMedicoes returns a secretaria's medições with their budgets,
		// latest start date first.
		ListMedicoes(ctx context.Context, secretariaID int64) ([]core.Medicao, error)
		// SetOrcamentos replaces every obra budget of a medição.
		SetOrcamentos(ctx context.Context, medicaoID int64, orcamentos []core.OrcamentoObra) error
	}

	Repository interface {
		SecretariaRepository
		ObraRepository
		GastoRepository
		MedicaoRepository
		Ping(ctx context.Context) error
		Close() error
	}
)
