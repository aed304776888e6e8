package search

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"moviemirror/models"
)

var (
	ErrEmptyQuery     = errors.New("search query is empty")
	ErrPageOutOfRange = errors.New("page out of range")
	ErrNoActiveQuery  = errors.New("no active search query")
)

// Searcher runs a catalog search for a query and page.
type Searcher interface {
	Search(ctx context.Context, query string, page int) (*models.MediaList, error)
}

// HistoryRecorder persists recent queries per account.
type HistoryRecorder interface {
	Record(accountID, query string) error
	List(accountID string) []string
	Clear(accountID string) error
}

// Controller holds the search state for one account: the active query,
// the current page of results and the page bounds reported by the
// catalog. A failed fetch leaves the previous state untouched.
type Controller struct {
	accountID string
	catalog   Searcher
	history   HistoryRecorder

	mu         sync.RWMutex
	query      string
	page       int
	totalPages int
	results    models.MediaList
}

// NewController creates a search controller for the given account.
func NewController(accountID string, catalog Searcher, history HistoryRecorder) *Controller {
	return &Controller{
		accountID: accountID,
		catalog:   catalog,
		history:   history,
	}
}

// Snapshot is a read-only view of the controller state.
type Snapshot struct {
	Query      string           `json:"query"`
	Page       int              `json:"page"`
	TotalPages int              `json:"totalPages"`
	Results    models.MediaList `json:"results"`
}

// Submit runs a fresh search. The query is trimmed; a blank query is
// rejected without touching state or history. On success the query is
// recorded to history and the controller moves to page one of the new
// result set.
func (c *Controller) Submit(ctx context.Context, query string) (Snapshot, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.State(), ErrEmptyQuery
	}

	list, err := c.catalog.Search(ctx, query, 1)
	if err != nil {
		return c.State(), err
	}
	if list == nil {
		list = &models.MediaList{Page: 1}
	}

	// History records only searches that actually ran. A failed record
	// is logged, not surfaced; losing a history entry is harmless.
	if err := c.history.Record(c.accountID, query); err != nil {
		log.Printf("[search] failed to record history for %s: %v", c.accountID, err)
	}

	c.mu.Lock()
	c.query = query
	c.page = 1
	c.totalPages = list.TotalPages
	c.results = *list
	c.mu.Unlock()

	return c.State(), nil
}

// SelectHistory re-runs a previous query. It behaves exactly like
// Submit, which also moves the query back to the front of the history.
func (c *Controller) SelectHistory(ctx context.Context, query string) (Snapshot, error) {
	return c.Submit(ctx, query)
}

// ChangePage fetches another page of the active query. Pages outside
// [1, totalPages] are rejected and the current state is kept as is.
func (c *Controller) ChangePage(ctx context.Context, page int) (Snapshot, error) {
	c.mu.RLock()
	query := c.query
	totalPages := c.totalPages
	c.mu.RUnlock()

	if query == "" {
		return c.State(), ErrNoActiveQuery
	}
	if page < 1 || page > totalPages {
		return c.State(), ErrPageOutOfRange
	}

	list, err := c.catalog.Search(ctx, query, page)
	if err != nil {
		return c.State(), err
	}
	if list == nil {
		list = &models.MediaList{Page: page}
	}

	c.mu.Lock()
	// The catalog may report a shrunken page count between fetches.
	c.page = page
	c.totalPages = list.TotalPages
	c.results = *list
	c.mu.Unlock()

	return c.State(), nil
}

// Clear resets the active query and results. History is not affected.
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.query = ""
	c.page = 0
	c.totalPages = 0
	c.results = models.MediaList{}
}

// State returns the current controller state.
func (c *Controller) State() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Snapshot{
		Query:      c.query,
		Page:       c.page,
		TotalPages: c.totalPages,
		Results:    c.results,
	}
}

// History returns the account's recent queries, most recent first.
func (c *Controller) History() []string {
	return c.history.List(c.accountID)
}

// ClearHistory wipes the account's recent queries.
func (c *Controller) ClearHistory() error {
	return c.history.Clear(c.accountID)
}
