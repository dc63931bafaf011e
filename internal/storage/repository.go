package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"painel/internal/core"

	_ "modernc.org/sqlite"
)

const dateLayout = "2006-01-02"

type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	version, err := RunMigrations(dbPath)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("SQLite schema ready", "path", dbPath, "version", version)

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// CreateSecretaria implements SecretariaRepository
func (r *SQLiteRepository) CreateSecretaria(ctx context.Context, s core.Secretaria) (core.Secretaria, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO secretarias (nome) VALUES (?)`, strings.TrimSpace(s.Nome))
	if err != nil {
		return s, fmt.Errorf("create secretaria: %w", mapConstraint(err))
	}
	s.ID, err = res.LastInsertId()
	if err != nil {
		return s, fmt.Errorf("create secretaria: %w", err)
	}
	s.Nome = strings.TrimSpace(s.Nome)

	slog.InfoContext(ctx, "Secretaria saved to SQLite", "id", s.ID, "nome", s.Nome)
	return s, nil
}

func (r *SQLiteRepository) GetSecretaria(ctx context.Context, id int64) (core.Secretaria, error) {
	var s core.Secretaria
	err := r.db.QueryRowContext(ctx, `SELECT id, nome FROM secretarias WHERE id = ?`, id).Scan(&s.ID, &s.Nome)
	if err != nil {
		return s, fmt.Errorf("get secretaria %d: %w", id, notFound(err))
	}
	return s, nil
}

func (r *SQLiteRepository) ListSecretarias(ctx context.Context) ([]core.Secretaria, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nome FROM secretarias ORDER BY nome`)
	if err != nil {
		return nil, fmt.Errorf("list secretarias: %w", err)
	}
	defer rows.Close()

	var out []core.Secretaria
	for rows.Next() {
		var s core.Secretaria
		if err := rows.Scan(&s.ID, &s.Nome); err != nil {
			return nil, fmt.Errorf("scan secretaria: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

const obraColumns = `id, nome, objeto, municipio, n_contrato, contrato_fonte, ordem_servico, periodo, endereco, secretaria_id`

func scanObra(sc interface{ Scan(...any) error }) (core.Obra, error) {
	var o core.Obra
	err := sc.Scan(&o.ID, &o.Nome, &o.Objeto, &o.Municipio, &o.NContrato, &o.ContratoFonte,
		&o.OrdemServico, &o.Periodo, &o.Endereco, &o.SecretariaID)
	return o, err
}

// CreateObra implements ObraRepository
func (r *SQLiteRepository) CreateObra(ctx context.Context, o core.Obra) (core.Obra, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO obras
		(nome, objeto, municipio, n_contrato, contrato_fonte, ordem_servico, periodo, endereco, secretaria_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		o.Nome, o.Objeto, o.Municipio, o.NContrato, o.ContratoFonte, o.OrdemServico, o.Periodo, o.Endereco, o.SecretariaID)
	if err != nil {
		return o, fmt.Errorf("create obra: %w", mapConstraint(err))
	}
	o.ID, err = res.LastInsertId()
	if err != nil {
		return o, fmt.Errorf("create obra: %w", err)
	}

	slog.InfoContext(ctx, "Obra saved to SQLite", "id", o.ID, "nome", o.Nome, "secretaria_id", o.SecretariaID)
	return o, nil
}

func (r *SQLiteRepository) GetObra(ctx context.Context, id int64) (core.Obra, error) {
	o, err := scanObra(r.db.QueryRowContext(ctx, `SELECT `+obraColumns+` FROM obras WHERE id = ?`, id))
	if err != nil {
		return o, fmt.Errorf("get obra %d: %w", id, notFound(err))
	}
	return o, nil
}

func (r *SQLiteRepository) ListObras(ctx context.Context, f ObraFilter) ([]core.Obra, error) {
	var (
		where []string
		args  []any
	)
	if q := strings.TrimSpace(f.Query); q != "" {
		like := "%" + strings.ToLower(q) + "%"
		where = append(where, `(LOWER(nome) LIKE ? OR LOWER(n_contrato) LIKE ?)`)
		args = append(args, like, like)
	}
	if f.SecretariaID > 0 {
		where = append(where, `secretaria_id = ?`)
		args = append(args, f.SecretariaID)
	}

	query := `SELECT ` + obraColumns + ` FROM obras`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, ` AND `)
	}
	query += ` ORDER BY nome, id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list obras: %w", err)
	}
	defer rows.Close()

	var out []core.Obra
	for rows.Next() {
		o, err := scanObra(rows)
		if err != nil {
			return nil, fmt.Errorf("scan obra: %w", err)
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

// CreateGasto implements GastoRepository
func (r *SQLiteRepository) CreateGasto(ctx context.Context, g core.Gasto) (core.Gasto, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO gastos (descricao, valor_cents, data, obra_id) VALUES (?, ?, ?, ?)`,
		g.Descricao, g.Valor.Cents, g.Data.Format(dateLayout), g.ObraID)
	if err != nil {
		return g, fmt.Errorf("create gasto: %w", mapConstraint(err))
	}
	g.ID, err = res.LastInsertId()
	if err != nil {
		return g, fmt.Errorf("create gasto: %w", err)
	}

	slog.InfoContext(ctx, "Gasto saved to SQLite",
		"id", g.ID,
		"descricao", g.Descricao,
		"valor_cents", g.Valor.Cents,
		"data", g.Data.ISO(),
		"obra_id", g.ObraID)
	return g, nil
}

func (r *SQLiteRepository) GetGasto(ctx context.Context, id int64) (core.Gasto, error) {
	g, err := scanGasto(r.db.QueryRowContext(ctx, `SELECT id, descricao, valor_cents, data, obra_id FROM gastos WHERE id = ?`, id))
	if err != nil {
		return g, fmt.Errorf("get gasto %d: %w", id, notFound(err))
	}
	return g, nil
}

func (r *SQLiteRepository) DeleteGasto(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM gastos WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete gasto %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete gasto %d: %w", id, core.ErrNotFound)
	}

	slog.InfoContext(ctx, "Gasto removed from SQLite", "id", id)
	return nil
}

func (r *SQLiteRepository) ListGastosByObra(ctx context.Context, obraID int64) ([]core.Gasto, error) {
	return r.listGastos(ctx, `SELECT id, descricao, valor_cents, data, obra_id FROM gastos
		WHERE obra_id = ? ORDER BY data DESC, id DESC`, obraID)
}

func (r *SQLiteRepository) ListGastosBySecretaria(ctx context.Context, secretariaID int64) ([]core.Gasto, error) {
	return r.listGastos(ctx, `SELECT g.id, g.descricao, g.valor_cents, g.data, g.obra_id FROM gastos g
		JOIN obras o ON o.id = g.obra_id
		WHERE o.secretaria_id = ? ORDER BY g.data, g.id`, secretariaID)
}

func (r *SQLiteRepository) listGastos(ctx context.Context, query string, arg int64) ([]core.Gasto, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, fmt.Errorf("list gastos: %w", err)
	}
	defer rows.Close()

	var out []core.Gasto
	for rows.Next() {
		g, err := scanGasto(rows)
		if err != nil {
			return nil, fmt.Errorf("scan gasto: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func scanGasto(sc interface{ Scan(...any) error }) (core.Gasto, error) {
	var (
		g    core.Gasto
		data string
	)
	if err := sc.Scan(&g.ID, &g.Descricao, &g.Valor.Cents, &data, &g.ObraID); err != nil {
		return g, err
	}
	d, err := core.ParseDate(data)
	if err != nil {
		return g, fmt.Errorf("gasto %d has malformed date %q: %w", g.ID, data, err)
	}
	g.Data = d
	return g, nil
}

// CreateMedicao implements MedicaoRepository. Budgets are stored with SetOrcamentos.
func (r *SQLiteRepository) CreateMedicao(ctx context.Context, m core.Medicao) (core.Medicao, error) {
	res, err := r.db.ExecContext(ctx, `INSERT INTO medicoes (nome, data_inicio, data_fim, secretaria_id) VALUES (?, ?, ?, ?)`,
		m.Nome, m.DataInicio.Format(dateLayout), m.DataFim.Format(dateLayout), m.SecretariaID)
	if err != nil {
		return m, fmt.Errorf("create medicao: %w", mapConstraint(err))
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return m, fmt.Errorf("create medicao: %w", err)
	}
	m.Orcamentos = nil

	slog.InfoContext(ctx, "Medicao saved to SQLite",
		"id", m.ID,
		"nome", m.Nome,
		"data_inicio", m.DataInicio.ISO(),
		"data_fim", m.DataFim.ISO(),
		"secretaria_id", m.SecretariaID)
	return m, nil
}

func (r *SQLiteRepository) GetMedicao(ctx context.Context, id int64) (core.Medicao, error) {
	m, err := scanMedicao(r.db.QueryRowContext(ctx,
		`SELECT id, nome, data_inicio, data_fim, secretaria_id FROM medicoes WHERE id = ?`, id))
	if err != nil {
		return m, fmt.Errorf("get medicao %d: %w", id, notFound(err))
	}
	byMedicao, err := r.orcamentos(ctx, `WHERE medicao_id = ?`, id)
	if err != nil {
		return m, err
	}
	m.Orcamentos = byMedicao[id]
	return m, nil
}

func (r *SQLiteRepository) ListMedicoes(ctx context.Context, secretariaID int64) ([]core.Medicao, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, nome, data_inicio, data_fim, secretaria_id FROM medicoes
		WHERE secretaria_id = ? ORDER BY data_inicio DESC, id DESC`, secretariaID)
	if err != nil {
		return nil, fmt.Errorf("list medicoes: %w", err)
	}
	defer rows.Close()

	var out []core.Medicao
	for rows.Next() {
		m, err := scanMedicao(rows)
		if err != nil {
			return nil, fmt.Errorf("scan medicao: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list medicoes: %w", err)
	}

	byMedicao, err := r.orcamentos(ctx,
		`WHERE medicao_id IN (SELECT id FROM medicoes WHERE secretaria_id = ?)`, secretariaID)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Orcamentos = byMedicao[out[i].ID]
	}
	return out, nil
}

// orcamentos loads obra budgets grouped by medição.
func (r *SQLiteRepository) orcamentos(ctx context.Context, where string, arg int64) (map[int64][]core.OrcamentoObra, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT medicao_id, obra_id, os_inicial_secretaria_cents, os_qualitech_cents, fonte
		FROM orcamentos_medicao_obra `+where+` ORDER BY medicao_id, obra_id`, arg)
	if err != nil {
		return nil, fmt.Errorf("list orcamentos: %w", err)
	}
	defer rows.Close()

	out := make(map[int64][]core.OrcamentoObra)
	for rows.Next() {
		var (
			o     core.OrcamentoObra
			fonte string
		)
		if err := rows.Scan(&o.MedicaoID, &o.ObraID, &o.OSInicialSecretaria.Cents, &o.OSQualitech.Cents, &fonte); err != nil {
			return nil, fmt.Errorf("scan orcamento: %w", err)
		}
		o.Fonte = core.FonteOrcamento(fonte)
		out[o.MedicaoID] = append(out[o.MedicaoID], o)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SetOrcamentos(ctx context.Context, medicaoID int64, orcamentos []core.OrcamentoObra) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRowContext(ctx, `SELECT 1 FROM medicoes WHERE id = ?`, medicaoID).Scan(&exists); err != nil {
		return fmt.Errorf("set orcamentos for medicao %d: %w", medicaoID, notFound(err))
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM orcamentos_medicao_obra WHERE medicao_id = ?`, medicaoID); err != nil {
		return fmt.Errorf("clear orcamentos: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO orcamentos_medicao_obra
		(medicao_id, obra_id, os_inicial_secretaria_cents, os_qualitech_cents, fonte) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare orcamento insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range orcamentos {
		if _, err := stmt.ExecContext(ctx, medicaoID, o.ObraID, o.OSInicialSecretaria.Cents, o.OSQualitech.Cents, string(o.Fonte)); err != nil {
			return fmt.Errorf("insert orcamento for obra %d: %w", o.ObraID, mapConstraint(err))
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit orcamentos: %w", err)
	}

	slog.InfoContext(ctx, "Orcamentos saved to SQLite", "medicao_id", medicaoID, "count", len(orcamentos))
	return nil
}

func scanMedicao(sc interface{ Scan(...any) error }) (core.Medicao, error) {
	var (
		m           core.Medicao
		inicio, fim string
	)
	if err := sc.Scan(&m.ID, &m.Nome, &inicio, &fim, &m.SecretariaID); err != nil {
		return m, err
	}
	var err error
	if m.DataInicio, err = core.ParseDate(inicio); err != nil {
		return m, fmt.Errorf("medicao %d has malformed start date %q: %w", m.ID, inicio, err)
	}
	if m.DataFim, err = core.ParseDate(fim); err != nil {
		return m, fmt.Errorf("medicao %d has malformed end date %q: %w", m.ID, fim, err)
	}
	return m, nil
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	return err
}

// mapConstraint translates SQLite constraint failures into domain errors.
func mapConstraint(err error) error {
	msg := err.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed"):
		return fmt.Errorf("%w: %s", core.ErrDuplicate, msg)
	case strings.Contains(msg, "FOREIGN KEY constraint failed"):
		return fmt.Errorf("%w: %s", core.ErrMissingParent, msg)
	}
	return err
}
