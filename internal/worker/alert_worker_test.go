package worker

import (
	"context"
	"errors"
	"io"
	"reflect"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"painel/internal/amqp"
	"painel/internal/chart"
	"painel/internal/dashboard"
	"painel/internal/metrics"
)

type fakeRenderer struct {
	got    []dashboard.Placeholder
	result dashboard.Result
	page   string
}

func (f *fakeRenderer) Render(_ context.Context, p []dashboard.Placeholder) dashboard.Result {
	f.got = append(f.got, p...)
	return f.result
}

func (f *fakeRenderer) RenderPage(_ context.Context, page io.Reader) (dashboard.Result, error) {
	b, err := io.ReadAll(page)
	if err != nil {
		return dashboard.Result{}, err
	}
	f.page = string(b)
	return f.result, nil
}

type fakePages struct {
	body string
	err  error
}

func (f fakePages) Page(context.Context) (io.ReadCloser, error) {
	if f.err != nil {
		return nil, f.err
	}
	return io.NopCloser(strings.NewReader(f.body)), nil
}

func TestAlertPlaceholders(t *testing.T) {
	tests := []struct {
		name  string
		alert amqp.BudgetAlert
		want  []dashboard.Placeholder
	}{
		{
			name:  "secretaria and obra",
			alert: amqp.BudgetAlert{SecretariaID: 3, ObraID: 11},
			want: []dashboard.Placeholder{
				{Kind: chart.KindSecretariaDonut, ID: "3"},
				{Kind: chart.KindCashFlow, ID: "3", Legend: true},
				{Kind: chart.KindObraDonut, ID: "11"},
			},
		},
		{
			name:  "no obra",
			alert: amqp.BudgetAlert{SecretariaID: 3},
			want: []dashboard.Placeholder{
				{Kind: chart.KindSecretariaDonut, ID: "3"},
				{Kind: chart.KindCashFlow, ID: "3", Legend: true},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AlertPlaceholders(&tt.alert); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("AlertPlaceholders = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestHandleBudgetAlert(t *testing.T) {
	tests := []struct {
		name    string
		result  dashboard.Result
		wantErr bool
		label   string
	}{
		{name: "refreshed", result: dashboard.Result{Rendered: 3}, label: ResultHandled},
		{name: "partially failed", result: dashboard.Result{Rendered: 1, Failed: 2}, label: ResultHandled},
		{name: "suppressed cash flow", result: dashboard.Result{Rendered: 2, Suppressed: 1}, label: ResultHandled},
		{name: "all failed", result: dashboard.Result{Failed: 3}, wantErr: true, label: ResultFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := metrics.New()
			r := &fakeRenderer{result: tt.result}
			w := NewAlertWorker(r, fakePages{}, m, nil)

			err := w.HandleBudgetAlert(context.Background(), &amqp.BudgetAlert{SecretariaID: 1, ObraID: 2, SecretariaNome: "Saúde", ObraNome: "Posto"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if len(r.got) != 3 {
				t.Errorf("rendered placeholders = %+v", r.got)
			}
			want := `
# HELP painel_budget_alerts_total Budget overrun alerts by delivery result
# TYPE painel_budget_alerts_total counter
painel_budget_alerts_total{result="` + tt.label + `"} 1
`
			if err := testutil.GatherAndCompare(m.Registry(), strings.NewReader(want), "painel_budget_alerts_total"); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestStartupSnapshot(t *testing.T) {
	r := &fakeRenderer{result: dashboard.Result{Rendered: 4}}
	w := NewAlertWorker(r, fakePages{body: "<canvas></canvas>"}, nil, nil)

	res, err := w.StartupSnapshot(context.Background())
	if err != nil || res.Rendered != 4 {
		t.Fatalf("StartupSnapshot = %+v, %v", res, err)
	}
	if r.page != "<canvas></canvas>" {
		t.Errorf("page = %q", r.page)
	}

	w = NewAlertWorker(r, fakePages{err: errors.New("connection refused")}, nil, nil)
	if _, err := w.StartupSnapshot(context.Background()); err == nil || !strings.Contains(err.Error(), "fetch dashboard page") {
		t.Fatalf("expected page error, got %v", err)
	}
}
