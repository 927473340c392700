// Package pxweb is a thin synchronous client for PxWeb style
// statistical APIs. It fetches table metadata and posts table queries
// whose JSON-STAT2 responses decode straight into tilasto.Table.
package pxweb

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"tilasto"
)

const errBodyExcerpt = 200

// VariableMeta describes one dimension of a table: its code, display
// text and the available value codes with their texts.
type VariableMeta struct {
	Code       string   `json:"code"`
	Text       string   `json:"text"`
	Values     []string `json:"values"`
	ValueTexts []string `json:"valueTexts"`
	Time       bool     `json:"time,omitempty"`
}

// TableMeta is the metadata document of one table.
type TableMeta struct {
	Title     string         `json:"title"`
	Variables []VariableMeta `json:"variables"`
}

// Variable returns the variable with the given code.
func (m *TableMeta) Variable(code string) (*VariableMeta, bool) {
	for i := range m.Variables {
		if m.Variables[i].Code == code {
			return &m.Variables[i], true
		}
	}

	return nil, false
}

// Client calls one PxWeb API root. Requests are synchronous and run
// one at a time; the pipeline carries no retry or backoff of its own.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// HTTPClientOption replaces the underlying HTTP client.
func HTTPClientOption(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.http = hc
	}
}

// LoggerClientOption sets the request logger.
func LoggerClientOption(logger *zap.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// TimeoutClientOption sets the per-request timeout of the default
// HTTP client.
func TimeoutClientOption(d time.Duration) ClientOption {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// NewClient returns a client for the API rooted at baseURL, e.g.
// "https://pxdata.stat.fi/PxWeb/api/v1/en". Table paths are given
// relative to this root, database name included.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 60 * time.Second},
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

// TableMeta fetches the metadata of one table, identified by its path
// under the API root, e.g. "StatFin/khi/statfin_khi_pxt_11xc.px".
func (c *Client) TableMeta(ctx context.Context, table string) (*TableMeta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.tableURL(table), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build metadata request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	meta := &TableMeta{}
	if err := json.Unmarshal(body, meta); err != nil {
		return nil, fmt.Errorf("failed to decode metadata for %s: %w", table, err)
	}

	c.logger.Debug("table metadata fetched",
		zap.String("table", table),
		zap.Int("variables", len(meta.Variables)))

	return meta, nil
}

// Table posts a query against one table and decodes the JSON-STAT2
// response.
func (c *Client) Table(ctx context.Context, table string, query *Query) (*tilasto.Table, error) {
	payload, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal query for %s: %w", table, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.tableURL(table), bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to build table request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	t := &tilasto.Table{}
	if err := json.Unmarshal(body, t); err != nil {
		return nil, fmt.Errorf("failed to decode table %s: %w", table, err)
	}

	c.logger.Info("table fetched",
		zap.String("table", table),
		zap.Strings("dimensions", t.ID),
		zap.Int("cells", len(t.Value)))

	return t, nil
}

func (c *Client) tableURL(table string) string {
	return c.baseURL + "/" + strings.TrimLeft(table, "/")
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call %s: %w", req.URL, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL, err)
	}

	if resp.StatusCode != http.StatusOK {
		excerpt := body
		if len(excerpt) > errBodyExcerpt {
			excerpt = excerpt[:errBodyExcerpt]
		}

		return nil, fmt.Errorf("unexpected status %d from %s: %s", resp.StatusCode, req.URL, excerpt)
	}

	return body, nil
}
