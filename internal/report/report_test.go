package report

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"strings"
	"sync"
	"testing"

	goption "google.golang.org/api/option"

	"painel/internal/core"
	"painel/internal/services"
	"painel/internal/storage/memory"
)

func TestResumoRows(t *testing.T) {
	rows := ResumoRows([]services.SecretariaSummary{
		{
			Secretaria:          core.Secretaria{Nome: "Saúde"},
			Budget:              core.SecretariaBudget{OrcamentoConsolidado: 1000, OrcamentoGasto: 250, OrcamentoRestante: 750},
			ResultadoPercentual: 75,
		},
		{
			Secretaria:          core.Secretaria{Nome: "Obras"},
			Budget:              core.SecretariaBudget{OrcamentoConsolidado: 500, OrcamentoGasto: 600, OrcamentoRestante: -100},
			ResultadoPercentual: -20,
		},
	})

	want := [][]any{
		resumoHeader,
		{"Saúde", 1000.0, 250.0, 750.0, 75.0},
		{"Obras", 500.0, 600.0, -100.0, -20.0},
		{"Total", 1500.0, 850.0, 650.0, 43.33},
	}
	if !reflect.DeepEqual(rows, want) {
		t.Errorf("ResumoRows = %v, want %v", rows, want)
	}
}

func TestResumoRowsWithoutSecretarias(t *testing.T) {
	rows := ResumoRows(nil)
	if len(rows) != 2 {
		t.Fatalf("expected header and totals, got %v", rows)
	}
	if got := rows[1]; !reflect.DeepEqual(got, []any{"Total", 0.0, 0.0, 0.0, 0.0}) {
		t.Errorf("totals = %v", got)
	}
}

func TestObraRows(t *testing.T) {
	rows := ObraRows([]services.ObraSummary{{
		Obra:           core.Obra{Nome: "Posto", NContrato: "CT-1", Municipio: "Recife", OrdemServico: "OS-9"},
		SecretariaNome: "Saúde",
		TotalGasto:     core.Money{Cents: 12345},
	}})
	want := []any{"Posto", "Saúde", "CT-1", "Recife", "OS-9", 123.45}
	if len(rows) != 2 || !reflect.DeepEqual(rows[1], want) {
		t.Errorf("ObraRows = %v", rows)
	}
}

type failingSource struct{}

func (failingSource) ListSecretarias(context.Context) ([]services.SecretariaSummary, error) {
	return nil, errors.New("db down")
}

func (failingSource) ListObras(context.Context, services.ObraQuery) ([]services.ObraSummary, error) {
	return nil, nil
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	svc := services.NewBudgetService(memory.New(), nil)
	sec, err := svc.CreateSecretaria(ctx, core.Secretaria{Nome: "Educação"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateObra(ctx, core.Obra{Nome: "Escola", NContrato: "CT-3", SecretariaID: sec.ID}); err != nil {
		t.Fatal(err)
	}

	w := NewMemoryWriter()
	summary, err := NewExporter(svc, w, nil).Export(ctx)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if summary.Secretarias != 1 || summary.Obras != 1 {
		t.Errorf("summary = %+v", summary)
	}
	if got := w.Titles(); !reflect.DeepEqual(got, []string{SheetResumo, SheetObras}) {
		t.Errorf("titles = %v", got)
	}
	obras, _ := w.Sheet(SheetObras)
	if len(obras) != 2 || obras[1][0] != "Escola" || obras[1][1] != "Educação" {
		t.Errorf("obras sheet = %v", obras)
	}
}

func TestExportWritesNothingWhenLoadingFails(t *testing.T) {
	w := NewMemoryWriter()
	_, err := NewExporter(failingSource{}, w, nil).Export(context.Background())
	if err == nil || !strings.Contains(err.Error(), "load secretarias") {
		t.Fatalf("expected load error, got %v", err)
	}
	if len(w.Titles()) != 0 {
		t.Errorf("nothing should be written, got %v", w.Titles())
	}
}

// fakeSheetsAPI answers the few Sheets endpoints the writer calls.
type fakeSheetsAPI struct {
	mu       sync.Mutex
	titles   []string
	calls    []string
	lastBody map[string]any
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	path := r.URL.Path
	body, _ := io.ReadAll(r.Body)
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet:
		f.calls = append(f.calls, "get")
		sheets := make([]map[string]any, 0, len(f.titles))
		for _, t := range f.titles {
			sheets = append(sheets, map[string]any{"properties": map[string]any{"title": t}})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"sheets": sheets})
	case strings.HasSuffix(path, ":batchUpdate"):
		f.calls = append(f.calls, "add")
		var req struct {
			Requests []struct {
				AddSheet struct {
					Properties struct {
						Title string `json:"title"`
					} `json:"properties"`
				} `json:"addSheet"`
			} `json:"requests"`
		}
		_ = json.Unmarshal(body, &req)
		for _, r := range req.Requests {
			f.titles = append(f.titles, r.AddSheet.Properties.Title)
		}
		_, _ = w.Write([]byte(`{}`))
	case strings.HasSuffix(path, ":clear"):
		f.calls = append(f.calls, "clear")
		_, _ = w.Write([]byte(`{}`))
	case r.Method == http.MethodPut:
		f.calls = append(f.calls, "update")
		f.lastBody = map[string]any{}
		_ = json.Unmarshal(body, &f.lastBody)
		_, _ = w.Write([]byte(`{}`))
	default:
		http.Error(w, `{"error":{"code":404}}`, http.StatusNotFound)
	}
}

func TestSheetsWriter(t *testing.T) {
	api := &fakeSheetsAPI{titles: []string{SheetResumo}}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	ctx := context.Background()
	w, err := NewSheetsWriterWithOptions(ctx, "sheet-id",
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()),
		goption.WithoutAuthentication())
	if err != nil {
		t.Fatal(err)
	}

	if err := w.WriteSheet(ctx, SheetResumo, [][]any{{"a", 1}}); err != nil {
		t.Fatalf("WriteSheet existing: %v", err)
	}
	if err := w.WriteSheet(ctx, SheetObras, [][]any{{"b", 2}}); err != nil {
		t.Fatalf("WriteSheet new: %v", err)
	}

	want := []string{"get", "clear", "update", "get", "add", "clear", "update"}
	if !reflect.DeepEqual(api.calls, want) {
		t.Errorf("calls = %v, want %v", api.calls, want)
	}
	if !reflect.DeepEqual(api.titles, []string{SheetResumo, SheetObras}) {
		t.Errorf("titles = %v", api.titles)
	}
	values, _ := api.lastBody["values"].([]any)
	if len(values) != 1 {
		t.Errorf("update body = %v", api.lastBody)
	}
}

func TestNewSheetsWriterRequiresSpreadsheet(t *testing.T) {
	if _, err := NewSheetsWriter(context.Background(), " ", "creds.json"); err == nil {
		t.Fatal("expected error for empty spreadsheet id")
	}
	if _, err := NewSheetsWriter(context.Background(), "id", t.TempDir()+"/missing.json"); err == nil {
		t.Fatal("expected error for missing credentials file")
	}
}

func TestQuoteSheet(t *testing.T) {
	if got := quoteSheet("Extrato d'Obras"); got != "'Extrato d''Obras'" {
		t.Errorf("quoteSheet = %s", got)
	}
}
