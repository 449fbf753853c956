// Package client talks to the record API served by internal/server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/Rana718/transit-studio/internal/logging"
	"github.com/Rana718/transit-studio/internal/types"
)

// APIError is a non-2xx response from the API.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("Error %d", e.Status)
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return NewWithHTTPClient(baseURL, &http.Client{Timeout: timeout})
}

func NewWithHTTPClient(baseURL string, hc *http.Client) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    hc,
	}
}

func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/ping", nil, nil)
}

func (c *Client) ListTables(ctx context.Context) ([]types.TableInfo, error) {
	var tables []types.TableInfo
	if err := c.do(ctx, http.MethodGet, "/tables", nil, &tables); err != nil {
		return nil, err
	}
	return tables, nil
}

func (c *Client) Schema(ctx context.Context, table string) (*types.TableSchema, error) {
	var schema types.TableSchema
	if err := c.do(ctx, http.MethodGet, "/schema/"+url.PathEscape(table), nil, &schema); err != nil {
		return nil, err
	}
	return &schema, nil
}

// ListRecords fetches one page. The API answers with {data, total}; older
// servers answer with a bare array, which is accepted with total = len.
func (c *Client) ListRecords(ctx context.Context, table string, offset, limit int, search string) (*types.RowPage, error) {
	q := url.Values{}
	q.Set("limit", strconv.Itoa(limit))
	q.Set("offset", strconv.Itoa(offset))
	if search != "" {
		q.Set("search", search)
	}

	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, "/records/"+url.PathEscape(table)+"?"+q.Encode(), nil, &raw); err != nil {
		return nil, err
	}
	return decodePage(ctx, table, raw)
}

func decodePage(ctx context.Context, table string, raw json.RawMessage) (*types.RowPage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var rows []map[string]any
		if err := decodeNumbers(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("failed to decode records: %w", err)
		}
		logging.WarnContext(ctx, "deprecated bare-array list response", "table", table, "rows", len(rows))
		return &types.RowPage{Data: normalize(rows), Total: len(rows)}, nil
	}

	var page types.RowPage
	if err := decodeNumbers(trimmed, &page); err != nil {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}
	page.Data = normalize(page.Data)
	if page.Data == nil {
		page.Data = []map[string]any{}
	}
	return &page, nil
}

func (c *Client) CreateRecord(ctx context.Context, table string, record map[string]any) (map[string]any, error) {
	var created map[string]any
	if err := c.do(ctx, http.MethodPost, "/records/"+url.PathEscape(table), record, &created); err != nil {
		return nil, err
	}
	return types.NormalizeValues(created), nil
}

func (c *Client) UpdateRecord(ctx context.Context, table, pk string, record map[string]any) (map[string]any, error) {
	var updated map[string]any
	path := "/records/" + url.PathEscape(table) + "/" + url.PathEscape(pk)
	if err := c.do(ctx, http.MethodPut, path, record, &updated); err != nil {
		return nil, err
	}
	return types.NormalizeValues(updated), nil
}

func (c *Client) DeleteRecord(ctx context.Context, table, pk string) error {
	path := "/records/" + url.PathEscape(table) + "/" + url.PathEscape(pk)
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func (c *Client) CascadeDelete(ctx context.Context, id string, opts types.CascadeOptions) (*types.CascadeResult, error) {
	q := url.Values{}
	q.Set("delete_trips", strconv.FormatBool(opts.DeleteTrips))
	q.Set("delete_shapes", strconv.FormatBool(opts.DeleteShapes))

	var result types.CascadeResult
	if err := c.do(ctx, http.MethodDelete, "/records/cascade/"+url.PathEscape(id)+"?"+q.Encode(), nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logging.GetRequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	logging.LoggerFromContext(ctx).Debug("api request", "method", method, "path", path, "status", resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		var detail types.ErrorResponse
		if json.Unmarshal(data, &detail) == nil {
			apiErr.Detail = detail.Detail
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := decodeNumbers(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeNumbers(data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(out)
}

func normalize(rows []map[string]any) []map[string]any {
	for i, row := range rows {
		rows[i] = types.NormalizeValues(row)
	}
	return rows
}
