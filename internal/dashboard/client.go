package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"painel/internal/core"
)

// Fetcher loads the payload behind each kind of placeholder.
type Fetcher interface {
	SecretariaBudget(ctx context.Context, id string) (core.SecretariaBudget, error)
	DailyCashFlow(ctx context.Context, id string) (core.DailyCashFlow, error)
	ObraBudget(ctx context.Context, id string) (core.ObraBudget, error)
}

// APIClient fetches payloads from the dashboard backend. Requests carry no
// timeout of their own; the caller's context bounds them.
type APIClient struct {
	baseURL string
	client  *http.Client
}

var _ Fetcher = (*APIClient)(nil)

// NewAPIClient creates a client for baseURL. A nil client uses a plain http.Client.
func NewAPIClient(baseURL string, client *http.Client) *APIClient {
	if client == nil {
		client = &http.Client{}
	}
	return &APIClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (c *APIClient) SecretariaBudget(ctx context.Context, id string) (core.SecretariaBudget, error) {
	var out core.SecretariaBudget
	err := c.getJSON(ctx, "/api/orcamento/secretaria/"+url.PathEscape(id), &out)
	return out, err
}

func (c *APIClient) DailyCashFlow(ctx context.Context, id string) (core.DailyCashFlow, error) {
	var out core.DailyCashFlow
	err := c.getJSON(ctx, "/api/gastos_diarios/secretaria/"+url.PathEscape(id), &out)
	return out, err
}

func (c *APIClient) ObraBudget(ctx context.Context, id string) (core.ObraBudget, error) {
	var out core.ObraBudget
	err := c.getJSON(ctx, "/api/orcamento/obra/"+url.PathEscape(id), &out)
	return out, err
}

// Page fetches the dashboard page. The caller closes the body.
func (c *APIClient) Page(ctx context.Context) (io.ReadCloser, error) {
	resp, err := c.get(ctx, "/")
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *APIClient) get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		return nil, fmt.Errorf("GET %s: unexpected status %d", path, resp.StatusCode)
	}
	return resp, nil
}

func (c *APIClient) getJSON(ctx context.Context, path string, v any) error {
	resp, err := c.get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
