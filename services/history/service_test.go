package history

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func setupTestService(t *testing.T) *Service {
	t.Helper()
	svc, err := NewService(t.TempDir())
	if err != nil {
		t.Fatalf("failed to create service: %v", err)
	}
	return svc
}

func TestRecord_MostRecentFirst(t *testing.T) {
	svc := setupTestService(t)

	svc.Record("acct", "first")
	svc.Record("acct", "second")

	got := svc.List("acct")
	want := []string{"second", "first"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRecord_DeduplicatesExactMatch(t *testing.T) {
	svc := setupTestService(t)

	svc.Record("acct", "matrix")
	svc.Record("acct", "dune")
	svc.Record("acct", "matrix")

	got := svc.List("acct")
	want := []string{"matrix", "dune"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRecord_DuplicatesAreCaseSensitive(t *testing.T) {
	svc := setupTestService(t)

	svc.Record("acct", "Matrix")
	svc.Record("acct", "matrix")

	got := svc.List("acct")
	want := []string{"matrix", "Matrix"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRecord_CapsAtFiveEvictingOldest(t *testing.T) {
	svc := setupTestService(t)

	for _, q := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		svc.Record("acct", q)
	}

	got := svc.List("acct")
	want := []string{"g", "f", "e", "d", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestRecord_IgnoresBlankQueries(t *testing.T) {
	svc := setupTestService(t)

	svc.Record("acct", "   ")
	svc.Record("acct", "")

	if got := svc.List("acct"); len(got) != 0 {
		t.Errorf("expected empty history, got %v", got)
	}
}

func TestRecord_TrimsQuery(t *testing.T) {
	svc := setupTestService(t)

	svc.Record("acct", "  dune  ")

	got := svc.List("acct")
	if len(got) != 1 || got[0] != "dune" {
		t.Errorf("expected trimmed query, got %v", got)
	}
}

func TestList_IsolatedPerAccount(t *testing.T) {
	svc := setupTestService(t)

	svc.Record("alice", "dune")
	svc.Record("bob", "matrix")

	if got := svc.List("alice"); len(got) != 1 || got[0] != "dune" {
		t.Errorf("unexpected alice history %v", got)
	}
	if got := svc.List("bob"); len(got) != 1 || got[0] != "matrix" {
		t.Errorf("unexpected bob history %v", got)
	}
}

func TestClear_RemovesHistory(t *testing.T) {
	svc := setupTestService(t)

	svc.Record("acct", "dune")
	if err := svc.Clear("acct"); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := svc.List("acct"); len(got) != 0 {
		t.Errorf("expected empty history after clear, got %v", got)
	}
}

func TestPersistence_Roundtrip(t *testing.T) {
	tmpDir := t.TempDir()

	svc1, err := NewService(tmpDir)
	if err != nil {
		t.Fatalf("failed to create first service: %v", err)
	}
	svc1.Record("acct", "first")
	svc1.Record("acct", "second")

	svc2, err := NewService(tmpDir)
	if err != nil {
		t.Fatalf("failed to create second service: %v", err)
	}

	got := svc2.List("acct")
	want := []string{"second", "first"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected %v after reload, got %v", want, got)
	}
}

func TestLoad_CorruptFileTreatedAsEmpty(t *testing.T) {
	tmpDir := t.TempDir()
	if err := os.WriteFile(filepath.Join(tmpDir, "searchhistory.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	svc, err := NewService(tmpDir)
	if err != nil {
		t.Fatalf("expected corrupt file to be discarded, got error: %v", err)
	}
	if got := svc.List("acct"); len(got) != 0 {
		t.Errorf("expected empty history, got %v", got)
	}

	// The store must still accept new entries afterwards.
	if err := svc.Record("acct", "dune"); err != nil {
		t.Fatalf("Record after corrupt load failed: %v", err)
	}
}

func TestLoad_SanitizesStoredEntries(t *testing.T) {
	tmpDir := t.TempDir()
	raw := `{"acct": ["dune", "dune", "", "matrix", "alien", "blade", "tron", "extra"]}`
	if err := os.WriteFile(filepath.Join(tmpDir, "searchhistory.json"), []byte(raw), 0o644); err != nil {
		t.Fatalf("failed to write history file: %v", err)
	}

	svc, err := NewService(tmpDir)
	if err != nil {
		t.Fatalf("NewService failed: %v", err)
	}

	got := svc.List("acct")
	want := []string{"dune", "matrix", "alien", "blade", "tron"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("expected sanitized %v, got %v", want, got)
	}
}
