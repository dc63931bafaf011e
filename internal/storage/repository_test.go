package storage_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"painel/internal/core"
	"painel/internal/storage"
	"painel/internal/storage/memory"
)

func backends(t *testing.T) map[string]storage.Repository {
	t.Helper()
	sqliteRepo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "data", "painel.db"))
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { sqliteRepo.Close() })
	return map[string]storage.Repository{
		"memory": memory.New(),
		"sqlite": sqliteRepo,
	}
}

func TestRepositorySecretariasAndObras(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			saude, err := repo.CreateSecretaria(ctx, core.Secretaria{Nome: "Saúde"})
			if err != nil || saude.ID == 0 {
				t.Fatalf("create secretaria: %+v %v", saude, err)
			}
			if _, err := repo.CreateSecretaria(ctx, core.Secretaria{Nome: "Saúde"}); !errors.Is(err, core.ErrDuplicate) {
				t.Fatalf("expected ErrDuplicate, got %v", err)
			}
			educ, _ := repo.CreateSecretaria(ctx, core.Secretaria{Nome: "Educação"})

			list, err := repo.ListSecretarias(ctx)
			if err != nil || len(list) != 2 || list[0].Nome != "Educação" {
				t.Fatalf("list secretarias: %+v %v", list, err)
			}

			if _, err := repo.GetSecretaria(ctx, 9999); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			mustObra := func(o core.Obra) core.Obra {
				t.Helper()
				created, err := repo.CreateObra(ctx, o)
				if err != nil {
					t.Fatalf("create obra %q: %v", o.Nome, err)
				}
				return created
			}
			posto := mustObra(core.Obra{Nome: "Posto Central", NContrato: "CT-001", SecretariaID: saude.ID})
			mustObra(core.Obra{Nome: "Escola Norte", NContrato: "CT-002", SecretariaID: educ.ID})
			mustObra(core.Obra{Nome: "Hospital", NContrato: "CT-010", SecretariaID: saude.ID})

			if _, err := repo.CreateObra(ctx, core.Obra{Nome: "Orfã", SecretariaID: 9999}); !errors.Is(err, core.ErrMissingParent) {
				t.Fatalf("expected ErrMissingParent, got %v", err)
			}

			got, err := repo.GetObra(ctx, posto.ID)
			if err != nil || got.NContrato != "CT-001" {
				t.Fatalf("get obra: %+v %v", got, err)
			}

			cases := []struct {
				filter storage.ObraFilter
				want   []string
			}{
				{storage.ObraFilter{}, []string{"Escola Norte", "Hospital", "Posto Central"}},
				{storage.ObraFilter{SecretariaID: saude.ID}, []string{"Hospital", "Posto Central"}},
				{storage.ObraFilter{Query: "posto"}, []string{"Posto Central"}},
				{storage.ObraFilter{Query: "ct-01"}, []string{"Hospital"}},
				{storage.ObraFilter{Query: "ct-00", SecretariaID: educ.ID}, []string{"Escola Norte"}},
			}
			for _, tc := range cases {
				obras, err := repo.ListObras(ctx, tc.filter)
				if err != nil {
					t.Fatalf("list obras %+v: %v", tc.filter, err)
				}
				if len(obras) != len(tc.want) {
					t.Fatalf("filter %+v: got %d obras, want %v", tc.filter, len(obras), tc.want)
				}
				for i := range obras {
					if obras[i].Nome != tc.want[i] {
						t.Fatalf("filter %+v: got %q at %d, want %q", tc.filter, obras[i].Nome, i, tc.want[i])
					}
				}
			}
		})
	}
}

func TestRepositoryGastosAndMedicoes(t *testing.T) {
	for name, repo := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			sec, _ := repo.CreateSecretaria(ctx, core.Secretaria{Nome: "Obras"})
			a, _ := repo.CreateObra(ctx, core.Obra{Nome: "A", SecretariaID: sec.ID})
			b, _ := repo.CreateObra(ctx, core.Obra{Nome: "B", SecretariaID: sec.ID})

			add := func(obra int64, day int, cents int64) core.Gasto {
				t.Helper()
				g, err := repo.CreateGasto(ctx, core.Gasto{
					Descricao: "material",
					Valor:     core.Money{Cents: cents},
					Data:      core.NewDate(2025, 1, day),
					ObraID:    obra,
				})
				if err != nil {
					t.Fatalf("create gasto: %v", err)
				}
				return g
			}
			add(a.ID, 3, 300)
			first := add(a.ID, 1, 100)
			add(b.ID, 2, 200)

			byObra, _ := repo.ListGastosByObra(ctx, a.ID)
			if len(byObra) != 2 || byObra[0].Data.Day() != 3 {
				t.Fatalf("gastos by obra must be newest first: %+v", byObra)
			}
			bySec, _ := repo.ListGastosBySecretaria(ctx, sec.ID)
			if len(bySec) != 3 || bySec[0].ID != first.ID || bySec[2].Data.Day() != 3 {
				t.Fatalf("gastos by secretaria must be oldest first: %+v", bySec)
			}

			if err := repo.DeleteGasto(ctx, first.ID); err != nil {
				t.Fatalf("delete gasto: %v", err)
			}
			if err := repo.DeleteGasto(ctx, first.ID); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound on second delete, got %v", err)
			}
			if _, err := repo.GetGasto(ctx, first.ID); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			jan, err := repo.CreateMedicao(ctx, core.Medicao{
				Nome: "Janeiro", DataInicio: core.NewDate(2025, 1, 1), DataFim: core.NewDate(2025, 1, 31), SecretariaID: sec.ID,
			})
			if err != nil {
				t.Fatalf("create medicao: %v", err)
			}
			repo.CreateMedicao(ctx, core.Medicao{
				Nome: "Fevereiro", DataInicio: core.NewDate(2025, 2, 1), DataFim: core.NewDate(2025, 2, 28), SecretariaID: sec.ID,
			})

			err = repo.SetOrcamentos(ctx, jan.ID, []core.OrcamentoObra{
				{ObraID: b.ID, OSInicialSecretaria: core.Money{Cents: 1000}, OSQualitech: core.Money{Cents: 900}, Fonte: core.FonteQualitech},
				{ObraID: a.ID, OSInicialSecretaria: core.Money{Cents: 500}, Fonte: core.FonteInicial},
			})
			if err != nil {
				t.Fatalf("set orcamentos: %v", err)
			}
			got, err := repo.GetMedicao(ctx, jan.ID)
			if err != nil || len(got.Orcamentos) != 2 || got.OrcamentoTotal().Cents != 1400 {
				t.Fatalf("get medicao: %+v %v", got, err)
			}

			// Replacing drops budgets not in the new set.
			if err := repo.SetOrcamentos(ctx, jan.ID, []core.OrcamentoObra{
				{ObraID: a.ID, OSInicialSecretaria: core.Money{Cents: 700}, Fonte: core.FonteInicial},
			}); err != nil {
				t.Fatalf("replace orcamentos: %v", err)
			}
			if err := repo.SetOrcamentos(ctx, 9999, nil); !errors.Is(err, core.ErrNotFound) {
				t.Fatalf("expected ErrNotFound, got %v", err)
			}

			list, err := repo.ListMedicoes(ctx, sec.ID)
			if err != nil || len(list) != 2 {
				t.Fatalf("list medicoes: %+v %v", list, err)
			}
			if list[0].Nome != "Fevereiro" || list[1].OrcamentoTotal().Cents != 700 || list[1].DataFim.Day() != 31 {
				t.Fatalf("unexpected medicoes order or budgets: %+v", list)
			}
		})
	}
}

func TestRunMigrationsIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "painel.db")
	repo, err := storage.NewSQLiteRepository(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	repo.Close()

	version, err := storage.RunMigrations(path)
	if err != nil || version != 1 {
		t.Fatalf("second migration run: version=%d err=%v", version, err)
	}
}
