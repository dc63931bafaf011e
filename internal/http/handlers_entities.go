package http

import (
	"encoding/json"
	"io"
	"net/http"

	"painel/internal/core"
	"painel/internal/log"
	"painel/internal/services"
)

// parseBody reads a JSON or form body, answering 400 on malformed input.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "malformed request body"})
		return nil, false
	}
	return p, true
}

func (s *Server) handleListSecretarias(w http.ResponseWriter, r *http.Request) {
	sums, err := s.budget.ListSecretarias(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]secretariaView, 0, len(sums))
	for _, sum := range sums {
		out = append(out, newSecretariaView(sum))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateSecretaria(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	sec, err := s.budget.CreateSecretaria(r.Context(), core.Secretaria{Nome: p.Get("nome")})
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Secretaria created", log.FieldSecretariaID, sec.ID)
	writeJSON(w, http.StatusCreated, secretariaView{ID: sec.ID, Nome: sec.Nome})
}

func (s *Server) handleSecretariaDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.budget.SecretariaDetail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := secretariaDetailView{
		secretariaView: newSecretariaView(d.SecretariaSummary),
		Medicoes:       make([]medicaoView, 0, len(d.Medicoes)),
		Obras:          make([]obraView, 0, len(d.Obras)),
	}
	for _, m := range d.Medicoes {
		v := newMedicaoView(m.Medicao)
		v.GastoNoPeriodo = m.GastoNoPeriodo.Reais()
		v.Resultado = m.Resultado.Reais()
		out.Medicoes = append(out.Medicoes, v)
	}
	for _, o := range d.Obras {
		out.Obras = append(out.Obras, newObraSummaryView(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateMedicao(w http.ResponseWriter, r *http.Request) {
	secretariaID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	m := core.Medicao{Nome: p.Get("nome"), SecretariaID: secretariaID}
	if m.DataInicio, err = p.Date("data_inicio"); err != nil {
		writeError(w, r, err)
		return
	}
	if m.DataFim, err = p.Date("data_fim"); err != nil {
		writeError(w, r, err)
		return
	}
	created, err := s.budget.CreateMedicao(r.Context(), m)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, newMedicaoView(created))
}

type orcamentoInput struct {
	ObraID              int64   `json:"obra_id"`
	OSInicialSecretaria float64 `json:"os_inicial_secretaria"`
	OSQualitech         float64 `json:"os_qualitech"`
	Fonte               string  `json:"fonte"`
}

// handleSetOrcamentos replaces a medição's obra budgets with a JSON array.
func (s *Server) handleSetOrcamentos(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var in []orcamentoInput
	if err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(&in); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "expected a JSON array of budgets"})
		return
	}
	orcamentos := make([]core.OrcamentoObra, 0, len(in))
	for _, o := range in {
		orcamentos = append(orcamentos, core.OrcamentoObra{
			ObraID:              o.ObraID,
			OSInicialSecretaria: core.Money{Cents: core.CentsFromReais(o.OSInicialSecretaria)},
			OSQualitech:         core.Money{Cents: core.CentsFromReais(o.OSQualitech)},
			Fonte:               core.FonteOrcamento(o.Fonte),
		})
	}
	m, err := s.budget.SetOrcamentos(r.Context(), id, orcamentos)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, newMedicaoView(m))
}

func (s *Server) handleListObras(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	secretariaID, err := queryID(q, "secretaria_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	obras, err := s.budget.ListObras(r.Context(), services.ObraQuery{
		Query:        sanitizeInput(q.Get("q")),
		SecretariaID: secretariaID,
		OrdenarPor:   services.ParseOrdem(q.Get("ordenar_por")),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := make([]obraView, 0, len(obras))
	for _, o := range obras {
		out = append(out, newObraSummaryView(o))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateObra(w http.ResponseWriter, r *http.Request) {
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	obra, err := s.budget.CreateObra(r.Context(), core.Obra{
		Nome:          p.Get("nome"),
		Objeto:        p.Get("objeto"),
		Municipio:     p.Get("municipio"),
		NContrato:     p.Get("n_contrato"),
		ContratoFonte: p.Get("contrato_fonte"),
		OrdemServico:  p.Get("ordem_servico"),
		Periodo:       p.Get("periodo"),
		Endereco:      p.Get("endereco"),
		SecretariaID:  p.Int64("secretaria_id"),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Obra created",
		log.FieldObraID, obra.ID,
		log.FieldSecretariaID, obra.SecretariaID)
	writeJSON(w, http.StatusCreated, newObraView(obra))
}

func (s *Server) handleObraDetail(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	d, err := s.budget.ObraDetail(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out := obraDetailView{
		obraView: newObraSummaryView(d.ObraSummary),
		Gastos:   make([]gastoView, 0, len(d.Gastos)),
	}
	for _, g := range d.Gastos {
		out.Gastos = append(out.Gastos, newGastoView(g))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateGasto records a gasto. The date defaults to today; an overrun
// is still recorded and answered with a warning.
func (s *Server) handleCreateGasto(w http.ResponseWriter, r *http.Request) {
	obraID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	p, ok := parseBody(w, r)
	if !ok {
		return
	}
	g := core.Gasto{Descricao: p.Get("descricao"), ObraID: obraID}
	if g.Valor, err = p.Money("valor"); err != nil {
		writeError(w, r, err)
		return
	}
	if g.Data, err = p.Date("data"); err != nil {
		writeError(w, r, err)
		return
	}
	if g.Data.IsZero() {
		g.Data = services.Today()
	}

	res, err := s.budget.RecordGasto(r.Context(), g)
	if err != nil {
		writeError(w, r, err)
		return
	}
	log.FromContext(r.Context()).InfoContext(r.Context(), "Gasto recorded",
		log.FieldObraID, obraID,
		log.FieldAmountCents, res.Gasto.Valor.Cents,
		"overrun", res.Warning != "")
	writeJSON(w, http.StatusCreated, gastoCreatedView{Gasto: newGastoView(res.Gasto), Warning: res.Warning})
}

func (s *Server) handleDeleteGasto(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := s.budget.DeleteGasto(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
