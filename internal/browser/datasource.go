package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/Rana718/transit-studio/internal/types"
)

const DefaultPageSize = 50

// Record maps column names to values. Non-key values may be nil.
type Record = map[string]any

type PageFetcher interface {
	ListRecords(ctx context.Context, table string, offset, limit int, search string) (*types.RowPage, error)
}

type PageChunk struct {
	Items      []Record
	TotalCount int
}

// PageState is a snapshot of a data source for rendering.
type PageState struct {
	Items      []Record
	TotalCount int
	Offset     int
	HasMore    bool
	SearchTerm string
}

// PaginatedDataSource owns the page cache for one table. All mutation goes
// through LoadPage. Each page-0 load starts a new epoch; responses from an
// older epoch are dropped, and their requests are cancelled.
type PaginatedDataSource struct {
	fetcher  PageFetcher
	table    string
	pageSize int

	mu             sync.Mutex
	mounted        bool
	term           string
	items          []Record
	total          int
	offset         int
	hasMore        bool
	epoch          uint64
	initialLoading bool
	loadingMore    bool
	cancel         context.CancelFunc
	err            error
}

func NewPaginatedDataSource(fetcher PageFetcher, table string, pageSize int) *PaginatedDataSource {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &PaginatedDataSource{fetcher: fetcher, table: table, pageSize: pageSize}
}

// LoadPage fetches one page for term. Page 0 always starts over: with a new
// term the cache is dropped at once, with the same term it is replaced when
// the chunk arrives so a failed reload leaves the last good items visible.
// Pages after 0 append, and are refused unless they continue the current
// term with hasMore set and nothing in flight.
func (s *PaginatedDataSource) LoadPage(ctx context.Context, page int, term string) (*PageChunk, error) {
	s.mu.Lock()
	switch {
	case page < 0:
		s.mu.Unlock()
		return nil, fmt.Errorf("invalid page %d", page)
	case page == 0:
		s.epoch++
		if s.cancel != nil {
			s.cancel()
		}
		if !s.mounted || term != s.term {
			s.items = nil
			s.total = 0
			s.offset = 0
			s.hasMore = false
			s.err = nil
		}
		s.mounted = true
		s.term = term
		s.initialLoading = true
		s.loadingMore = false
	default:
		if err := s.checkNextPage(page, term); err != nil {
			s.mu.Unlock()
			return nil, err
		}
		s.loadingMore = true
	}

	epoch := s.epoch
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	defer cancel()

	offset := page * s.pageSize
	resp, err := s.fetcher.ListRecords(ctx, s.table, offset, s.pageSize, term)

	s.mu.Lock()
	defer s.mu.Unlock()

	if epoch != s.epoch {
		return nil, ErrStaleResponse
	}
	s.cancel = nil
	if page == 0 {
		s.initialLoading = false
	} else {
		s.loadingMore = false
	}

	if err != nil {
		s.err = &FetchError{Table: s.table, Page: page, Err: err}
		return nil, s.err
	}

	chunk := resp.Data
	if page == 0 {
		s.items = append(make([]Record, 0, len(chunk)), chunk...)
	} else {
		s.items = append(s.items, chunk...)
	}
	s.total = max(resp.Total, len(s.items))
	s.offset = offset
	s.hasMore = len(chunk) == s.pageSize && offset+len(chunk) < s.total
	s.err = nil

	return &PageChunk{Items: chunk, TotalCount: resp.Total}, nil
}

func (s *PaginatedDataSource) checkNextPage(page int, term string) error {
	switch {
	case !s.mounted || term != s.term:
		return fmt.Errorf("page %d for term %q: %w", page, term, ErrStaleResponse)
	case s.initialLoading || s.loadingMore:
		return ErrBusy
	case !s.hasMore:
		return ErrNoMorePages
	case page*s.pageSize != len(s.items):
		return fmt.Errorf("page %d does not follow the %d loaded items", page, len(s.items))
	}
	return nil
}

// LoadMore fetches the next page if, and only if, hasMore is set and no load
// is in flight. Repeated calls while ineligible do nothing.
func (s *PaginatedDataSource) LoadMore(ctx context.Context) (bool, error) {
	s.mu.Lock()
	if !s.canLoadMore() {
		s.mu.Unlock()
		return false, nil
	}
	page := len(s.items) / s.pageSize
	term := s.term
	s.mu.Unlock()

	if _, err := s.LoadPage(ctx, page, term); err != nil {
		if errors.Is(err, ErrBusy) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Reload refetches page 0 for the current term.
func (s *PaginatedDataSource) Reload(ctx context.Context) error {
	s.mu.Lock()
	term := s.term
	s.mu.Unlock()

	_, err := s.LoadPage(ctx, 0, term)
	return err
}

func (s *PaginatedDataSource) canLoadMore() bool {
	return s.mounted && s.hasMore && !s.loadingMore && !s.initialLoading
}

func (s *PaginatedDataSource) CanLoadMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.canLoadMore()
}

func (s *PaginatedDataSource) State() PageState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return PageState{
		Items:      append([]Record(nil), s.items...),
		TotalCount: s.total,
		Offset:     s.offset,
		HasMore:    s.hasMore,
		SearchTerm: s.term,
	}
}

func (s *PaginatedDataSource) HasMore() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hasMore
}

// Loading reports whether the first page or a further page is in flight.
func (s *PaginatedDataSource) Loading() (initial, more bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialLoading, s.loadingMore
}

// Err is the error of the most recent load, if it failed.
func (s *PaginatedDataSource) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close cancels any request in flight and drops its response.
func (s *PaginatedDataSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.epoch++
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.initialLoading = false
	s.loadingMore = false
}
