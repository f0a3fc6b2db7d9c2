package session_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/KaramelBytes/meshstats-cli/internal/aggregate"
	"github.com/KaramelBytes/meshstats-cli/internal/engine"
	"github.com/KaramelBytes/meshstats-cli/internal/session"
	"github.com/KaramelBytes/meshstats-cli/internal/stats"
)

func newRun(t *testing.T) *session.Run {
	t.Helper()
	store := aggregate.New()
	rec, err := stats.Summarize([]float64{1, 2, 3}, stats.DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	store.Record("Entire Shape", "distance", "jaw", rec)
	fail := &engine.TripleError{Region: "jawROI", Field: "distance", Shape: "jaw", Err: stats.ErrEmptyInput}
	return session.New([]string{"jaw"}, []string{"distance"}, []string{"Entire Shape", "jawROI"},
		3, stats.DefaultPercentiles, store, []*engine.TripleError{fail})
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	r := newRun(t)
	if err := r.Save(dir); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := session.Load(dir, r.ID)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got.ID != r.ID || len(got.Regions) != 2 || got.Precision != 3 {
		t.Fatalf("unexpected run: %+v", got)
	}
	rec, ok := got.Store.Get("Entire Shape", "distance", "jaw")
	if !ok || rec.Mean != 2 || rec.Count != 3 {
		t.Fatalf("record not restored: %+v", rec)
	}
	if len(got.Failures) != 1 || got.Failures[0].Error != stats.ErrEmptyInput.Error() {
		t.Fatalf("failures = %+v", got.Failures)
	}

	// prefix lookup
	if _, err := session.Load(dir, r.ID[:8]); err != nil {
		t.Fatalf("load by prefix: %v", err)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := session.Load(t.TempDir(), "nope"); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := session.Latest(filepath.Join(t.TempDir(), "absent")); !errors.Is(err, session.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	dir := t.TempDir()
	older := newRun(t)
	older.CreatedAt = time.Now().Add(-time.Hour)
	newer := newRun(t)
	for _, r := range []*session.Run{older, newer} {
		if err := r.Save(dir); err != nil {
			t.Fatalf("save: %v", err)
		}
	}
	// junk is ignored
	if err := os.WriteFile(filepath.Join(dir, "junk.json"), []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}

	runs, err := session.List(dir)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].ID != newer.ID {
		t.Fatalf("order wrong: %d runs", len(runs))
	}
	latest, err := session.Latest(dir)
	if err != nil || latest.ID != newer.ID {
		t.Fatalf("latest = %v, %v", latest, err)
	}
}
