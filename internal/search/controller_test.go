package search

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"moviemirror/models"
	"moviemirror/services/history"
)

// stubSearcher returns canned pages and records every call it receives.
type stubSearcher struct {
	totalPages int
	err        error
	calls      []searchCall
}

type searchCall struct {
	query string
	page  int
}

func (s *stubSearcher) Search(_ context.Context, query string, page int) (*models.MediaList, error) {
	s.calls = append(s.calls, searchCall{query: query, page: page})
	if s.err != nil {
		return nil, s.err
	}
	return &models.MediaList{
		Page:       page,
		TotalPages: s.totalPages,
		Results: []models.MediaItem{
			{ID: int64(page), Title: query, MediaType: models.MediaTypeMovie},
		},
	}, nil
}

func setupTestController(t *testing.T, totalPages int) (*Controller, *stubSearcher) {
	t.Helper()
	historySvc, err := history.NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create history service: %v", err)
	}
	searcher := &stubSearcher{totalPages: totalPages}
	return NewController("acct", searcher, historySvc), searcher
}

func TestSubmit_FetchesPageOneAndRecordsHistory(t *testing.T) {
	ctrl, searcher := setupTestController(t, 3)

	snap, err := ctrl.Submit(context.Background(), "dune")
	if err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	if snap.Query != "dune" || snap.Page != 1 || snap.TotalPages != 3 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if len(searcher.calls) != 1 || searcher.calls[0] != (searchCall{query: "dune", page: 1}) {
		t.Errorf("unexpected searcher calls %+v", searcher.calls)
	}
	if got := ctrl.History(); len(got) != 1 || got[0] != "dune" {
		t.Errorf("expected query recorded in history, got %v", got)
	}
}

func TestSubmit_TrimsQuery(t *testing.T) {
	ctrl, searcher := setupTestController(t, 1)

	if _, err := ctrl.Submit(context.Background(), "  dune  "); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if searcher.calls[0].query != "dune" {
		t.Errorf("expected trimmed query, got %q", searcher.calls[0].query)
	}
}

func TestSubmit_EmptyQueryRejectedWithoutFetch(t *testing.T) {
	ctrl, searcher := setupTestController(t, 1)

	if _, err := ctrl.Submit(context.Background(), "   "); err != ErrEmptyQuery {
		t.Errorf("expected ErrEmptyQuery, got %v", err)
	}
	if len(searcher.calls) != 0 {
		t.Errorf("expected no catalog call, got %+v", searcher.calls)
	}
	if got := ctrl.History(); len(got) != 0 {
		t.Errorf("expected empty history, got %v", got)
	}
}

func TestSubmit_FailedFetchKeepsState(t *testing.T) {
	ctrl, searcher := setupTestController(t, 3)

	if _, err := ctrl.Submit(context.Background(), "dune"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	searcher.err = errors.New("upstream down")
	snap, err := ctrl.Submit(context.Background(), "matrix")
	if err == nil {
		t.Fatal("expected error from failed fetch")
	}
	if snap.Query != "dune" || snap.Page != 1 {
		t.Errorf("expected previous state preserved, got %+v", snap)
	}
	if got := ctrl.History(); len(got) != 1 || got[0] != "dune" {
		t.Errorf("expected only successful query in history, got %v", got)
	}
}

func TestChangePage_WithinBounds(t *testing.T) {
	ctrl, searcher := setupTestController(t, 3)
	if _, err := ctrl.Submit(context.Background(), "dune"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}

	snap, err := ctrl.ChangePage(context.Background(), 2)
	if err != nil {
		t.Fatalf("ChangePage failed: %v", err)
	}
	if snap.Page != 2 {
		t.Errorf("expected page 2, got %d", snap.Page)
	}
	last := searcher.calls[len(searcher.calls)-1]
	if last != (searchCall{query: "dune", page: 2}) {
		t.Errorf("unexpected fetch %+v", last)
	}
}

func TestChangePage_OutOfRangeKeepsStateWithoutFetch(t *testing.T) {
	ctrl, searcher := setupTestController(t, 3)
	if _, err := ctrl.Submit(context.Background(), "dune"); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	fetches := len(searcher.calls)

	for _, page := range []int{0, -1, 4, 100} {
		snap, err := ctrl.ChangePage(context.Background(), page)
		if err != ErrPageOutOfRange {
			t.Errorf("page %d: expected ErrPageOutOfRange, got %v", page, err)
		}
		if snap.Page != 1 {
			t.Errorf("page %d: expected state unchanged, got page %d", page, snap.Page)
		}
	}
	if len(searcher.calls) != fetches {
		t.Errorf("expected no extra fetches, got %d", len(searcher.calls)-fetches)
	}
}

func TestChangePage_NoActiveQuery(t *testing.T) {
	ctrl, _ := setupTestController(t, 3)

	if _, err := ctrl.ChangePage(context.Background(), 1); err != ErrNoActiveQuery {
		t.Errorf("expected ErrNoActiveQuery, got %v", err)
	}
}

func TestSelectHistory_MovesQueryToFront(t *testing.T) {
	ctrl, _ := setupTestController(t, 1)
	ctx := context.Background()

	ctrl.Submit(ctx, "dune")
	ctrl.Submit(ctx, "matrix")
	if _, err := ctrl.SelectHistory(ctx, "dune"); err != nil {
		t.Fatalf("SelectHistory failed: %v", err)
	}

	got := ctrl.History()
	want := []string{"dune", "matrix"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if snap := ctrl.State(); snap.Query != "dune" || snap.Page != 1 {
		t.Errorf("expected active query reset to dune page 1, got %+v", snap)
	}
}

func TestClear_ResetsStateButKeepsHistory(t *testing.T) {
	ctrl, _ := setupTestController(t, 3)
	ctrl.Submit(context.Background(), "dune")

	ctrl.Clear()

	snap := ctrl.State()
	if snap.Query != "" || snap.Page != 0 || snap.TotalPages != 0 || len(snap.Results.Results) != 0 {
		t.Errorf("expected empty state, got %+v", snap)
	}
	if got := ctrl.History(); len(got) != 1 {
		t.Errorf("expected history preserved, got %v", got)
	}
}

func TestClearHistory_WipesRecentQueries(t *testing.T) {
	ctrl, _ := setupTestController(t, 1)
	ctrl.Submit(context.Background(), "dune")

	if err := ctrl.ClearHistory(); err != nil {
		t.Fatalf("ClearHistory failed: %v", err)
	}
	if got := ctrl.History(); len(got) != 0 {
		t.Errorf("expected empty history, got %v", got)
	}
}
