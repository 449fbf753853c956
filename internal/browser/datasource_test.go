package browser

import (
	"context"
	"errors"
	"testing"

	"github.com/Rana718/transit-studio/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginationScenario(t *testing.T) {
	backend := newFakeBackend()
	backend.addTable("stops", stopsSchema, makeRows(120))
	ds := NewPaginatedDataSource(backend, "stops", 50)
	ctx := context.Background()

	var sizes []int
	var hasMore []bool
	for page := 0; page < 3; page++ {
		chunk, err := ds.LoadPage(ctx, page, "")
		require.NoError(t, err)
		sizes = append(sizes, len(chunk.Items))
		hasMore = append(hasMore, ds.HasMore())
	}

	assert.Equal(t, []int{50, 50, 20}, sizes)
	assert.Equal(t, []bool{true, true, false}, hasMore)
	assert.Equal(t, []int{0, 50, 100}, []int{backend.lists[0].Offset, backend.lists[1].Offset, backend.lists[2].Offset})

	state := ds.State()
	assert.Len(t, state.Items, 120)
	assert.Equal(t, 120, state.TotalCount)
	assert.Equal(t, 100, state.Offset)

	_, err := ds.LoadPage(ctx, 3, "")
	assert.ErrorIs(t, err, ErrNoMorePages)
}

func TestHasMoreProperty(t *testing.T) {
	tests := []struct {
		name  string
		total int
		pages int
		want  bool
	}{
		{name: "exact single page", total: 50, pages: 1, want: false},
		{name: "one more row", total: 51, pages: 1, want: true},
		{name: "exact two pages", total: 100, pages: 2, want: false},
		{name: "short page", total: 30, pages: 1, want: false},
		{name: "empty", total: 0, pages: 1, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newFakeBackend()
			backend.addTable("stops", stopsSchema, makeRows(tt.total))
			ds := NewPaginatedDataSource(backend, "stops", 50)

			for page := 0; page < tt.pages; page++ {
				_, err := ds.LoadPage(context.Background(), page, "")
				require.NoError(t, err)
			}
			state := ds.State()
			assert.Equal(t, tt.want, state.HasMore)
			assert.LessOrEqual(t, len(state.Items), state.TotalCount)
			assert.Equal(t, state.Offset+50 == len(state.Items) && len(state.Items) < state.TotalCount, state.HasMore)
		})
	}
}

func TestSearchTermReplacesItems(t *testing.T) {
	backend := newFakeBackend()
	backend.addTable("stops", stopsSchema, makeRows(120))
	ds := NewPaginatedDataSource(backend, "stops", 50)
	ctx := context.Background()

	_, err := ds.LoadPage(ctx, 0, "")
	require.NoError(t, err)
	_, err = ds.LoadPage(ctx, 1, "")
	require.NoError(t, err)
	require.Len(t, ds.State().Items, 100)

	_, err = ds.LoadPage(ctx, 0, "Stop 11")
	require.NoError(t, err)

	state := ds.State()
	assert.Equal(t, "Stop 11", state.SearchTerm)
	// Stop 11 and Stop 110-119.
	assert.Len(t, state.Items, 11)
	assert.Equal(t, 11, state.TotalCount)
	for _, item := range state.Items {
		assert.Contains(t, item["stop_name"], "Stop 11")
	}
}

func TestReloadIsIdempotent(t *testing.T) {
	backend := newFakeBackend()
	backend.addTable("stops", stopsSchema, makeRows(75))
	ds := NewPaginatedDataSource(backend, "stops", 50)
	ctx := context.Background()

	_, err := ds.LoadPage(ctx, 0, "Stop")
	require.NoError(t, err)
	first := ds.State()

	_, err = ds.LoadPage(ctx, 0, "Stop")
	require.NoError(t, err)
	second := ds.State()

	assert.Equal(t, len(first.Items), len(second.Items))
	assert.Equal(t, first.TotalCount, second.TotalCount)
	assert.Equal(t, first.HasMore, second.HasMore)
}

func TestStaleResponseDiscarded(t *testing.T) {
	fetcher := newGatedFetcher(1)
	ds := NewPaginatedDataSource(fetcher, "stops", 50)
	ctx := context.Background()

	staleErr := make(chan error, 1)
	go func() {
		_, err := ds.LoadPage(ctx, 0, "a")
		staleErr <- err
	}()
	fetcher.waitStarted(t, gateKey("a", 0))

	freshErr := make(chan error, 1)
	go func() {
		_, err := ds.LoadPage(ctx, 0, "b")
		freshErr <- err
	}()
	fetcher.waitStarted(t, gateKey("b", 0))

	fetcher.release(gateKey("b", 0))
	require.NoError(t, <-freshErr)

	fetcher.release(gateKey("a", 0))
	assert.ErrorIs(t, <-staleErr, ErrStaleResponse)

	state := ds.State()
	assert.Equal(t, "b", state.SearchTerm)
	require.Len(t, state.Items, 1)
	assert.Equal(t, "b", state.Items[0]["term"])
}

func TestLoadMoreGuardsInFlightFetch(t *testing.T) {
	fetcher := newGatedFetcher(120)
	ds := NewPaginatedDataSource(fetcher, "stops", 50)
	ctx := context.Background()

	fetcher.release(gateKey("", 0))
	_, err := ds.LoadPage(ctx, 0, "")
	require.NoError(t, err)
	require.True(t, ds.CanLoadMore())

	loaded := make(chan bool, 1)
	go func() {
		ok, err := ds.LoadMore(ctx)
		assert.NoError(t, err)
		loaded <- ok
	}()
	fetcher.waitStarted(t, gateKey("", 50))

	_, more := ds.Loading()
	assert.True(t, more)
	assert.False(t, ds.CanLoadMore())
	for i := 0; i < 3; i++ {
		ok, err := ds.LoadMore(ctx)
		assert.NoError(t, err)
		assert.False(t, ok)
	}
	_, err = ds.LoadPage(ctx, 1, "")
	assert.ErrorIs(t, err, ErrBusy)

	fetcher.release(gateKey("", 50))
	assert.True(t, <-loaded)
	assert.Equal(t, 1, fetcher.callCount(gateKey("", 50)))
	assert.Len(t, ds.State().Items, 100)
}

func TestNoNextPageDuringInitialLoad(t *testing.T) {
	fetcher := newGatedFetcher(120)
	ds := NewPaginatedDataSource(fetcher, "stops", 50)
	ctx := context.Background()

	done := make(chan struct{})
	go func() {
		ds.LoadPage(ctx, 0, "")
		close(done)
	}()
	fetcher.waitStarted(t, gateKey("", 0))

	initial, _ := ds.Loading()
	assert.True(t, initial)
	ok, err := ds.LoadMore(ctx)
	assert.NoError(t, err)
	assert.False(t, ok)

	fetcher.release(gateKey("", 0))
	<-done
	assert.Equal(t, 0, fetcher.callCount(gateKey("", 50)))
}

func TestFetchErrorKeepsLastGoodItems(t *testing.T) {
	backend := newFakeBackend()
	backend.addTable("stops", stopsSchema, makeRows(120))
	ds := NewPaginatedDataSource(backend, "stops", 50)
	ctx := context.Background()

	_, err := ds.LoadPage(ctx, 0, "")
	require.NoError(t, err)

	backend.listErr = errors.New("gateway timeout")
	_, err = ds.LoadPage(ctx, 1, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Equal(t, "gateway timeout", err.Error())
	assert.Len(t, ds.State().Items, 50)
	assert.Equal(t, err, ds.Err())

	err = ds.Reload(ctx)
	assert.ErrorIs(t, err, ErrFetch)
	assert.Len(t, ds.State().Items, 50)

	backend.listErr = nil
	_, err = ds.LoadPage(ctx, 1, "")
	require.NoError(t, err)
	assert.Nil(t, ds.Err())
	assert.Len(t, ds.State().Items, 100)
}

func TestFirstPageErrorHasNoItems(t *testing.T) {
	backend := newFakeBackend()
	backend.listErr = errors.New("boom")
	ds := NewPaginatedDataSource(backend, "stops", 50)

	_, err := ds.LoadPage(context.Background(), 0, "")
	require.Error(t, err)
	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.Equal(t, 0, fetchErr.Page)
	assert.Empty(t, ds.State().Items)
	assert.False(t, ds.HasMore())
}

func TestBareArrayTotalStopsPaging(t *testing.T) {
	ds := NewPaginatedDataSource(staticFetcher{page: &types.RowPage{
		Data:  []map[string]any{{"id": 1}, {"id": 2}},
		Total: 2,
	}}, "stops", 2)

	_, err := ds.LoadPage(context.Background(), 0, "")
	require.NoError(t, err)
	assert.False(t, ds.HasMore())
}

type staticFetcher struct {
	page *types.RowPage
}

func (f staticFetcher) ListRecords(ctx context.Context, table string, offset, limit int, search string) (*types.RowPage, error) {
	return f.page, nil
}
