// Package browser is the schema-driven record browser: paged, searchable
// listing of any table with create, edit and delete, plus the confirmation
// protocol for cascading route deletes.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Rana718/transit-studio/internal/logging"
	"github.com/Rana718/transit-studio/internal/types"
)

const DefaultCascadeTable = "routes"

// Backend is everything the browser needs from the record API.
type Backend interface {
	SchemaSource
	PageFetcher
	CascadeDeleter
	CreateRecord(ctx context.Context, table string, record map[string]any) (map[string]any, error)
	UpdateRecord(ctx context.Context, table, pk string, record map[string]any) (map[string]any, error)
	DeleteRecord(ctx context.Context, table, pk string) error
}

type Options struct {
	PageSize     int
	QuietPeriod  time.Duration
	CascadeTable string
	Scheduler    Scheduler
	Confirmer    Confirmer

	// OnUpdate is called after a debounced search has been applied, from the
	// goroutine that applied it.
	OnUpdate func(err error)
}

// RecordBrowser drives one table at a time. Event handlers are explicit:
// Mount, SearchInput, ScrollVisible, Save and Delete.
type RecordBrowser struct {
	backend   Backend
	opts      Options
	inspector *SchemaInspector
	debouncer *SearchDebouncer

	mu      sync.Mutex
	ctx     context.Context
	table   string
	schema  *TableSchema
	source  *PaginatedDataSource
	session *EditSession

	// searchFloor is the debouncer generation at the last Mount. Emissions
	// from older input belong to the previous table.
	searchFloor uint64
}

func New(backend Backend, opts Options) *RecordBrowser {
	if opts.PageSize <= 0 {
		opts.PageSize = DefaultPageSize
	}
	if opts.QuietPeriod <= 0 {
		opts.QuietPeriod = DefaultQuietPeriod
	}
	if opts.CascadeTable == "" {
		opts.CascadeTable = DefaultCascadeTable
	}

	b := &RecordBrowser{
		backend:   backend,
		opts:      opts,
		inspector: NewSchemaInspector(backend),
		ctx:       context.Background(),
	}
	b.debouncer = NewSearchDebouncer(opts.QuietPeriod, opts.Scheduler, b.onSearchTerm)
	return b
}

// Mount switches the browser to table: the schema is resolved, any edit
// session is dropped and page 0 is loaded with an empty search term. ctx
// bounds the loads triggered later by debounced search input.
func (b *RecordBrowser) Mount(ctx context.Context, table string) error {
	schema, err := b.inspector.Resolve(ctx, table)

	b.mu.Lock()
	if b.source != nil {
		b.source.Close()
	}
	b.ctx = ctx
	b.table = table
	b.schema = schema
	b.session = nil
	b.source = nil
	b.searchFloor = b.debouncer.Reset("")
	if err != nil {
		b.mu.Unlock()
		return err
	}
	source := NewPaginatedDataSource(b.backend, table, b.opts.PageSize)
	b.source = source
	b.mu.Unlock()

	_, err = source.LoadPage(ctx, 0, "")
	return err
}

// SearchInput feeds one raw keystroke value to the debouncer.
func (b *RecordBrowser) SearchInput(raw string) {
	b.debouncer.Input(raw)
}

func (b *RecordBrowser) onSearchTerm(term string, gen uint64) {
	b.mu.Lock()
	ctx, source := b.ctx, b.source
	stale := gen < b.searchFloor
	b.mu.Unlock()
	if stale {
		return
	}

	err := ErrSchemaUnavailable
	if source != nil {
		_, err = source.LoadPage(ctx, 0, term)
	}
	if errors.Is(err, ErrStaleResponse) {
		return
	}
	if err != nil {
		logging.WarnContext(ctx, "search failed", "table", b.Table(), "term", term, "error", err)
	}
	if b.opts.OnUpdate != nil {
		b.opts.OnUpdate(err)
	}
}

// ApplySearch resets the data source to an effective search term.
func (b *RecordBrowser) ApplySearch(ctx context.Context, term string) error {
	source, err := b.currentSource()
	if err != nil {
		return err
	}
	_, err = source.LoadPage(ctx, 0, term)
	return err
}

// ScrollVisible is the end-of-list signal. It fetches the next page only
// when one exists and nothing is loading, so repeated signals are harmless.
func (b *RecordBrowser) ScrollVisible(ctx context.Context) (bool, error) {
	source, err := b.currentSource()
	if err != nil {
		return false, err
	}
	return source.LoadMore(ctx)
}

// Refresh reloads page 0 for the current search term.
func (b *RecordBrowser) Refresh(ctx context.Context) error {
	source, err := b.currentSource()
	if err != nil {
		return err
	}
	return source.Reload(ctx)
}

func (b *RecordBrowser) OpenCreate() (*EditSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	s, err := OpenEditor(nil, b.schema)
	if err != nil {
		return nil, err
	}
	b.session = &s
	return b.sessionCopy(), nil
}

// OpenEdit starts editing the loaded record whose key is pk.
func (b *RecordBrowser) OpenEdit(pk string) (*EditSession, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.schema == nil {
		return nil, ErrSchemaUnavailable
	}
	if !b.schema.HasPrimaryKey() {
		return nil, ErrNoPrimaryKey
	}
	record, ok := b.findLoaded(pk)
	if !ok {
		return nil, fmt.Errorf("%s %s: %w", b.table, pk, ErrNotLoaded)
	}
	s, err := OpenEditor(record, b.schema)
	if err != nil {
		return nil, err
	}
	b.session = &s
	return b.sessionCopy(), nil
}

// Change applies one field edit to the open session.
func (b *RecordBrowser) Change(field string, raw any) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.session == nil {
		return ErrNoSession
	}
	next, err := b.session.Change(field, raw)
	if err != nil {
		b.session.Err = err
		return err
	}
	b.session = &next
	return nil
}

func (b *RecordBrowser) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.session = nil
}

// Save submits the open session. On success the session closes and page 0
// is reloaded; on failure the session stays open carrying the error.
func (b *RecordBrowser) Save(ctx context.Context) error {
	b.mu.Lock()
	if b.session == nil {
		b.mu.Unlock()
		return ErrNoSession
	}
	session := *b.session
	table := b.table
	source := b.source
	b.mu.Unlock()

	payload, err := session.Submit()
	if err != nil {
		b.failSession(session, err)
		return err
	}

	op := "update"
	if session.IsCreating {
		op = "create"
		_, err = b.backend.CreateRecord(ctx, table, payload)
	} else {
		pk := KeyString(session.Record[session.schema.PK])
		_, err = b.backend.UpdateRecord(ctx, table, pk, payload)
	}
	if err != nil {
		mErr := &MutationError{Op: op, Table: table, Err: err}
		b.failSession(session, mErr)
		return mErr
	}

	b.mu.Lock()
	b.session = nil
	b.mu.Unlock()

	return source.Reload(ctx)
}

func (b *RecordBrowser) failSession(session EditSession, err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.session != nil {
		session.Err = err
		b.session = &session
	}
}

// Delete removes the record keyed by pk. Routes go through the cascade
// confirmation steps; every other table asks once. A declined confirmation
// returns ErrDeclined. The cascade result is nil for plain deletes.
func (b *RecordBrowser) Delete(ctx context.Context, pk string) (*types.CascadeResult, error) {
	b.mu.Lock()
	schema, table, source := b.schema, b.table, b.source
	b.mu.Unlock()

	if schema == nil || source == nil {
		return nil, ErrSchemaUnavailable
	}
	if !schema.HasPrimaryKey() {
		return nil, ErrNoPrimaryKey
	}
	if b.opts.Confirmer == nil {
		return nil, fmt.Errorf("no confirmer configured: %w", ErrDeclined)
	}

	var result *types.CascadeResult
	if table == b.opts.CascadeTable {
		coordinator := NewCascadeDeleteCoordinator(table, b.opts.Confirmer, b.backend)
		res, err := coordinator.Run(ctx, pk)
		if err != nil {
			return nil, err
		}
		result = res
	} else {
		ok, err := b.opts.Confirmer.Confirm(ctx, Prompt{
			Step:     StepConfirmDelete,
			Table:    table,
			TargetID: pk,
			Message:  fmt.Sprintf("Delete %s %s?", table, pk),
		})
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, ErrDeclined
		}
		if err := b.backend.DeleteRecord(ctx, table, pk); err != nil {
			return nil, &MutationError{Op: "delete", Table: table, Err: err}
		}
	}

	return result, source.Reload(ctx)
}

// Counters returns {shown, total} for display.
func (b *RecordBrowser) Counters() (shown, total int) {
	state := b.State()
	return len(state.Items), state.TotalCount
}

func (b *RecordBrowser) HasMore() bool {
	source, err := b.currentSource()
	if err != nil {
		return false
	}
	return source.HasMore()
}

func (b *RecordBrowser) State() PageState {
	source, err := b.currentSource()
	if err != nil {
		return PageState{}
	}
	return source.State()
}

// Err is the last page-load error for the current table.
func (b *RecordBrowser) Err() error {
	source, err := b.currentSource()
	if err != nil {
		return err
	}
	return source.Err()
}

func (b *RecordBrowser) Schema() *TableSchema {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.schema
}

func (b *RecordBrowser) Table() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.table
}

func (b *RecordBrowser) Session() *EditSession {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sessionCopy()
}

func (b *RecordBrowser) Close() {
	b.debouncer.Stop()
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.source != nil {
		b.source.Close()
	}
}

func (b *RecordBrowser) currentSource() (*PaginatedDataSource, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.source == nil {
		return nil, ErrSchemaUnavailable
	}
	return b.source, nil
}

func (b *RecordBrowser) sessionCopy() *EditSession {
	if b.session == nil {
		return nil
	}
	s := *b.session
	return &s
}

// findLoaded must be called with b.mu held. The source has its own lock.
func (b *RecordBrowser) findLoaded(pk string) (Record, bool) {
	if b.source == nil {
		return nil, false
	}
	for _, record := range b.source.State().Items {
		if KeyString(record[b.schema.PK]) == pk {
			return record, true
		}
	}
	return nil, false
}
