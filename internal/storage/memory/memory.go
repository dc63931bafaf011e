// Package memory is an in-process storage backend. It is the default when no
// database is configured and the fake used by tests.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"painel/internal/core"
	"painel/internal/storage"
)

type Store struct {
	mu sync.Mutex

	nextID      int64
	secretarias map[int64]core.Secretaria
	obras       map[int64]core.Obra
	gastos      map[int64]core.Gasto
	medicoes    map[int64]core.Medicao
}

var _ storage.Repository = (*Store)(nil)

func New() *Store {
	return &Store{
		secretarias: make(map[int64]core.Secretaria),
		obras:       make(map[int64]core.Obra),
		gastos:      make(map[int64]core.Gasto),
		medicoes:    make(map[int64]core.Medicao),
	}
}

func (s *Store) Ping(context.Context) error { return nil }
func (s *Store) Close() error              { return nil }

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *Store) CreateSecretaria(_ context.Context, sec core.Secretaria) (core.Secretaria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec.Nome = strings.TrimSpace(sec.Nome)
	for _, existing := range s.secretarias {
		if existing.Nome == sec.Nome {
			return sec, fmt.Errorf("create secretaria %q: %w", sec.Nome, core.ErrDuplicate)
		}
	}
	sec.ID = s.id()
	s.secretarias[sec.ID] = sec
	return sec, nil
}

func (s *Store) GetSecretaria(_ context.Context, id int64) (core.Secretaria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sec, ok := s.secretarias[id]
	if !ok {
		return sec, fmt.Errorf("get secretaria %d: %w", id, core.ErrNotFound)
	}
	return sec, nil
}

func (s *Store) ListSecretarias(context.Context) ([]core.Secretaria, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Secretaria, 0, len(s.secretarias))
	for _, sec := range s.secretarias {
		out = append(out, sec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Nome < out[j].Nome })
	return out, nil
}

func (s *Store) CreateObra(_ context.Context, o core.Obra) (core.Obra, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.secretarias[o.SecretariaID]; !ok {
		return o, fmt.Errorf("create obra: secretaria %d: %w", o.SecretariaID, core.ErrMissingParent)
	}
	o.ID = s.id()
	s.obras[o.ID] = o
	return o, nil
}

func (s *Store) GetObra(_ context.Context, id int64) (core.Obra, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.obras[id]
	if !ok {
		return o, fmt.Errorf("get obra %d: %w", id, core.ErrNotFound)
	}
	return o, nil
}

func (s *Store) ListObras(_ context.Context, f storage.ObraFilter) ([]core.Obra, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(strings.TrimSpace(f.Query))
	out := make([]core.Obra, 0)
	for _, o := range s.obras {
		if f.SecretariaID > 0 && o.SecretariaID != f.SecretariaID {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(o.Nome), q) && !strings.Contains(strings.ToLower(o.NContrato), q) {
			continue
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Nome != out[j].Nome {
			return out[i].Nome < out[j].Nome
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (s *Store) CreateGasto(_ context.Context, g core.Gasto) (core.Gasto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.obras[g.ObraID]; !ok {
		return g, fmt.Errorf("create gasto: obra %d: %w", g.ObraID, core.ErrMissingParent)
	}
	g.ID = s.id()
	s.gastos[g.ID] = g
	return g, nil
}

func (s *Store) GetGasto(_ context.Context, id int64) (core.Gasto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.gastos[id]
	if !ok {
		return g, fmt.Errorf("get gasto %d: %w", id, core.ErrNotFound)
	}
	return g, nil
}

func (s *Store) DeleteGasto(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.gastos[id]; !ok {
		return fmt.Errorf("delete gasto %d: %w", id, core.ErrNotFound)
	}
	delete(s.gastos, id)
	return nil
}

func (s *Store) ListGastosByObra(_ context.Context, obraID int64) ([]core.Gasto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Gasto, 0)
	for _, g := range s.gastos {
		if g.ObraID == obraID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return gastoBefore(out[j], out[i]) })
	return out, nil
}

func (s *Store) ListGastosBySecretaria(_ context.Context, secretariaID int64) ([]core.Gasto, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Gasto, 0)
	for _, g := range s.gastos {
		if s.obras[g.ObraID].SecretariaID == secretariaID {
			out = append(out, g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return gastoBefore(out[i], out[j]) })
	return out, nil
}

func gastoBefore(a, b core.Gasto) bool {
	if !a.Data.Equal(b.Data.Time) {
		return a.Data.Before(b.Data.Time)
	}
	return a.ID < b.ID
}

func (s *Store) CreateMedicao(_ context.Context, m core.Medicao) (core.Medicao, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.secretarias[m.SecretariaID]; !ok {
		return m, fmt.Errorf("create medicao: secretaria %d: %w", m.SecretariaID, core.ErrMissingParent)
	}
	m.ID = s.id()
	m.Orcamentos = nil
	s.medicoes[m.ID] = m
	return m, nil
}

func (s *Store) GetMedicao(_ context.Context, id int64) (core.Medicao, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medicoes[id]
	if !ok {
		return m, fmt.Errorf("get medicao %d: %w", id, core.ErrNotFound)
	}
	return cloneMedicao(m), nil
}

func (s *Store) ListMedicoes(_ context.Context, secretariaID int64) ([]core.Medicao, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Medicao, 0)
	for _, m := range s.medicoes {
		if m.SecretariaID == secretariaID {
			out = append(out, cloneMedicao(m))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DataInicio.Equal(out[j].DataInicio.Time) {
			return out[i].DataInicio.After(out[j].DataInicio.Time)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func (s *Store) SetOrcamentos(_ context.Context, medicaoID int64, orcamentos []core.OrcamentoObra) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.medicoes[medicaoID]
	if !ok {
		return fmt.Errorf("set orcamentos for medicao %d: %w", medicaoID, core.ErrNotFound)
	}
	seen := make(map[int64]bool, len(orcamentos))
	next := make([]core.OrcamentoObra, 0, len(orcamentos))
	for _, o := range orcamentos {
		if _, ok := s.obras[o.ObraID]; !ok {
			return fmt.Errorf("insert orcamento for obra %d: %w", o.ObraID, core.ErrMissingParent)
		}
		if seen[o.ObraID] {
			return fmt.Errorf("insert orcamento for obra %d: %w", o.ObraID, core.ErrDuplicate)
		}
		seen[o.ObraID] = true
		o.MedicaoID = medicaoID
		next = append(next, o)
	}
	sort.Slice(next, func(i, j int) bool { return next[i].ObraID < next[j].ObraID })
	m.Orcamentos = next
	s.medicoes[medicaoID] = m
	return nil
}

func cloneMedicao(m core.Medicao) core.Medicao {
	m.Orcamentos = append([]core.OrcamentoObra(nil), m.Orcamentos...)
	return m
}
