package browser

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Rana718/transit-studio/internal/types"
)

// fakeClock is a Scheduler whose time only moves on Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Duration
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now + d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.fired || t.stopped {
		return false
	}
	t.stopped = true
	return true
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.fired && !t.stopped && t.at <= c.now {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool { return due[i].at < due[j].at })
	for _, t := range due {
		t.f()
	}
}

type listCall struct {
	Table  string
	Offset int
	Limit  int
	Search string
}

type cascadeCall struct {
	ID   string
	Opts types.CascadeOptions
}

// fakeBackend serves tables from memory and records every call.
type fakeBackend struct {
	mu      sync.Mutex
	schemas map[string]*types.TableSchema
	rows    map[string][]Record

	schemaErr     error
	listErr       error
	mutateErr     error
	cascadeResult *types.CascadeResult

	schemaCalls int
	lists       []listCall
	creates     []Record
	updates     map[string]Record
	deletes     []string
	cascades    []cascadeCall
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		schemas: map[string]*types.TableSchema{},
		rows:    map[string][]Record{},
		updates: map[string]Record{},
	}
}

func (f *fakeBackend) addTable(name string, schema *types.TableSchema, rows []Record) {
	f.schemas[name] = schema
	f.rows[name] = rows
}

func (f *fakeBackend) Schema(ctx context.Context, table string) (*types.TableSchema, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.schemaCalls++
	if f.schemaErr != nil {
		return nil, f.schemaErr
	}
	schema, ok := f.schemas[table]
	if !ok {
		return nil, fmt.Errorf("table %s not found", table)
	}
	return schema, nil
}

func (f *fakeBackend) ListRecords(ctx context.Context, table string, offset, limit int, search string) (*types.RowPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists = append(f.lists, listCall{Table: table, Offset: offset, Limit: limit, Search: search})
	if f.listErr != nil {
		return nil, f.listErr
	}

	var matched []Record
	for _, row := range f.rows[table] {
		if search == "" || rowMatches(row, search) {
			matched = append(matched, row)
		}
	}

	page := &types.RowPage{Data: []map[string]any{}, Total: len(matched)}
	for i := offset; i < len(matched) && i < offset+limit; i++ {
		page.Data = append(page.Data, matched[i])
	}
	return page, nil
}

func rowMatches(row Record, term string) bool {
	for _, v := range row {
		if strings.Contains(strings.ToLower(fmt.Sprint(v)), strings.ToLower(term)) {
			return true
		}
	}
	return false
}

func (f *fakeBackend) CreateRecord(ctx context.Context, table string, record map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.creates = append(f.creates, record)
	f.rows[table] = append(f.rows[table], record)
	return record, nil
}

func (f *fakeBackend) UpdateRecord(ctx context.Context, table, pk string, record map[string]any) (map[string]any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	f.updates[pk] = record
	return record, nil
}

func (f *fakeBackend) DeleteRecord(ctx context.Context, table, pk string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.mutateErr != nil {
		return f.mutateErr
	}
	f.deletes = append(f.deletes, pk)
	return nil
}

func (f *fakeBackend) CascadeDelete(ctx context.Context, id string, opts types.CascadeOptions) (*types.CascadeResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cascades = append(f.cascades, cascadeCall{ID: id, Opts: opts})
	if f.mutateErr != nil {
		return nil, f.mutateErr
	}
	if f.cascadeResult != nil {
		return f.cascadeResult, nil
	}
	return &types.CascadeResult{}, nil
}

func (f *fakeBackend) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.lists)
}

func (f *fakeBackend) networkCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.creates) + len(f.updates) + len(f.deletes) + len(f.cascades)
}

// gatedFetcher holds each request until the test releases its key, which is
// "<search>@<offset>". It ignores ctx so late responses really arrive.
type gatedFetcher struct {
	total int

	mu      sync.Mutex
	gates   map[string]chan struct{}
	started map[string]chan struct{}
	calls   map[string]int
}

func newGatedFetcher(total int) *gatedFetcher {
	return &gatedFetcher{
		total:   total,
		gates:   map[string]chan struct{}{},
		started: map[string]chan struct{}{},
		calls:   map[string]int{},
	}
}

func gateKey(search string, offset int) string {
	return fmt.Sprintf("%s@%d", search, offset)
}

func (f *gatedFetcher) channels(key string) (gate, started chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.gates[key]; !ok {
		f.gates[key] = make(chan struct{})
		f.started[key] = make(chan struct{})
	}
	return f.gates[key], f.started[key]
}

func (f *gatedFetcher) release(key string) {
	gate, _ := f.channels(key)
	close(gate)
}

func (f *gatedFetcher) waitStarted(t *testing.T, key string) {
	t.Helper()
	_, started := f.channels(key)
	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("request %s never started", key)
	}
}

func (f *gatedFetcher) callCount(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func (f *gatedFetcher) ListRecords(ctx context.Context, table string, offset, limit int, search string) (*types.RowPage, error) {
	key := gateKey(search, offset)
	gate, started := f.channels(key)

	f.mu.Lock()
	f.calls[key]++
	if f.calls[key] == 1 {
		close(started)
	}
	f.mu.Unlock()

	<-gate

	page := &types.RowPage{Data: []map[string]any{}, Total: f.total}
	for i := offset; i < f.total && i < offset+limit; i++ {
		page.Data = append(page.Data, Record{"id": int64(i), "term": search})
	}
	return page, nil
}

func makeRows(n int) []Record {
	rows := make([]Record, n)
	for i := range rows {
		rows[i] = Record{"stop_id": fmt.Sprintf("S%03d", i), "stop_name": fmt.Sprintf("Stop %d", i)}
	}
	return rows
}

var stopsSchema = &types.TableSchema{
	Columns: []types.ColumnInfo{
		{Name: "stop_id", Type: "TEXT", PrimaryKey: true},
		{Name: "stop_name", Type: "TEXT"},
	},
	PK: "stop_id",
}

var routesSchema = &types.TableSchema{
	Columns: []types.ColumnInfo{
		{Name: "route_id", Type: "TEXT", PrimaryKey: true},
		{Name: "route_short_name", Type: "TEXT"},
		{Name: "route_type", Type: "INTEGER"},
	},
	PK: "route_id",
}
