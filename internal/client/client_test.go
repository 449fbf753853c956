package client

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Rana718/transit-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL+"/", 5*time.Second)
}

func TestListRecordsCanonicalShape(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/records/routes", r.URL.Path)
		assert.Equal(t, "50", r.URL.Query().Get("limit"))
		assert.Equal(t, "100", r.URL.Query().Get("offset"))
		assert.Equal(t, "R1", r.URL.Query().Get("search"))
		w.Write([]byte(`{"data":[{"route_id":"R1","route_type":3,"fare":1.5}],"total":120}`))
	})

	page, err := c.ListRecords(context.Background(), "routes", 100, 50, "R1")
	require.NoError(t, err)
	assert.Equal(t, 120, page.Total)
	require.Len(t, page.Data, 1)
	assert.Equal(t, int64(3), page.Data[0]["route_type"])
	assert.Equal(t, 1.5, page.Data[0]["fare"])
}

func TestListRecordsBareArray(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("search"))
		w.Write([]byte(`[{"stop_id":"S1"},{"stop_id":"S2"}]`))
	})

	page, err := c.ListRecords(context.Background(), "stops", 0, 50, "")
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)
	assert.Len(t, page.Data, 2)
}

func TestAPIErrorDetail(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		body     string
		expected string
	}{
		{name: "detail", status: http.StatusNotFound, body: `{"detail":"record not found"}`, expected: "record not found"},
		{name: "no detail", status: http.StatusBadGateway, body: `<html>bad gateway</html>`, expected: "Error 502"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				w.Write([]byte(tc.body))
			})

			_, err := c.Schema(context.Background(), "routes")
			require.Error(t, err)
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tc.status, apiErr.Status)
			assert.Equal(t, tc.expected, err.Error())
		})
	}
}

func TestSchema(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/schema/routes", r.URL.Path)
		w.Write([]byte(`{"columns":[{"name":"route_id","type":"TEXT","primary_key":true}],"pk":"route_id"}`))
	})

	schema, err := c.Schema(context.Background(), "routes")
	require.NoError(t, err)
	assert.Equal(t, "route_id", schema.PK)
	require.Len(t, schema.Columns, 1)
	assert.True(t, schema.Columns[0].PrimaryKey)
}

func TestMutations(t *testing.T) {
	var calls []string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		switch r.Method {
		case http.MethodPost, http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			w.Write(body)
		case http.MethodDelete:
			w.Write([]byte(`{}`))
		}
	})
	ctx := context.Background()

	created, err := c.CreateRecord(ctx, "stops", map[string]any{"stop_id": "S 1", "stop_lat": 52.5})
	require.NoError(t, err)
	assert.Equal(t, "S 1", created["stop_id"])

	updated, err := c.UpdateRecord(ctx, "stops", "S 1", map[string]any{"stop_name": "Main"})
	require.NoError(t, err)
	assert.Equal(t, "Main", updated["stop_name"])

	require.NoError(t, c.DeleteRecord(ctx, "stops", "S 1"))

	assert.Equal(t, []string{
		"POST /records/stops",
		"PUT /records/stops/S 1",
		"DELETE /records/stops/S 1",
	}, calls)
}

func TestCascadeDelete(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/records/cascade/R7", r.URL.Path)
		assert.Equal(t, "false", r.URL.Query().Get("delete_trips"))
		assert.Equal(t, "true", r.URL.Query().Get("delete_shapes"))
		json.NewEncoder(w).Encode(types.CascadeResult{ShapesDeleted: 2})
	})

	result, err := c.CascadeDelete(context.Background(), "R7", types.CascadeOptions{DeleteShapes: true})
	require.NoError(t, err)
	assert.Equal(t, types.CascadeResult{ShapesDeleted: 2}, *result)
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.ListTables(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
