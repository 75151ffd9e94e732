package library

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
)

const lullaby = "title Lullaby\ntempo 60\nC4/h E4/h | G4/w\n"

func openTemp(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "nested", "library.db"))
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { lib.Close() })
	return lib
}

func TestSaveAndGet(t *testing.T) {
	lib := openTemp(t)
	ctx := context.Background()

	e, err := lib.Save(ctx, "", lullaby)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := uuid.Parse(e.ID); err != nil {
		t.Errorf("ID %q is not a UUID: %v", e.ID, err)
	}
	if e.Title != "Lullaby" || e.Parts != 1 || e.BPM != 60 || e.Seconds != 8 {
		t.Errorf("Save() = %+v", e)
	}

	for _, key := range []string{e.ID, "Lullaby", "lullaby"} {
		got, err := lib.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%q) error = %v", key, err)
		}
		if got.ID != e.ID || got.Source != lullaby {
			t.Errorf("Get(%q) = %+v", key, got)
		}
		if !got.CreatedAt.Equal(e.CreatedAt) {
			t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, e.CreatedAt)
		}
	}

	s, err := e.Score()
	if err != nil {
		t.Fatalf("Score() error = %v", err)
	}
	if len(s.Parts[0].Steps) != 3 {
		t.Errorf("steps = %d, want 3", len(s.Parts[0].Steps))
	}
}

func TestSaveRejectsDuplicatesAndBadScores(t *testing.T) {
	lib := openTemp(t)
	ctx := context.Background()

	if _, err := lib.Save(ctx, "Mine", lullaby); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if _, err := lib.Save(ctx, "MINE", lullaby); !errors.Is(err, ErrExists) {
		t.Errorf("Save(duplicate) error = %v, want %v", err, ErrExists)
	}
	if _, err := lib.Save(ctx, "Broken", "C4/z\n"); !errors.Is(err, ErrInvalidScore) {
		t.Errorf("Save(invalid) error = %v, want %v", err, ErrInvalidScore)
	}
	if _, err := lib.Save(ctx, "", "C4/q\n"); err == nil {
		t.Error("Save() expected error without any title")
	}
}

func TestInsertMapsTitleConstraint(t *testing.T) {
	lib := openTemp(t)
	ctx := context.Background()

	if _, err := lib.Save(ctx, "Mine", lullaby); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	e := &Entry{ID: uuid.NewString(), Title: "mine", Source: lullaby, CreatedAt: time.Now().UTC()}
	if err := lib.insert(ctx, e); !errors.Is(err, ErrExists) {
		t.Errorf("insert(duplicate) error = %v, want %v", err, ErrExists)
	}
}

func TestConcurrentSaveSameTitle(t *testing.T) {
	lib := openTemp(t)
	ctx := context.Background()

	const writers = 8
	errs := make(chan error, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := lib.Save(ctx, "Race", lullaby)
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	saved := 0
	for err := range errs {
		switch {
		case err == nil:
			saved++
		case !errors.Is(err, ErrExists):
			t.Errorf("Save() error = %v, want %v", err, ErrExists)
		}
	}
	if saved != 1 {
		t.Errorf("Save() succeeded %d times, want 1", saved)
	}
}

func TestListAndDelete(t *testing.T) {
	lib := openTemp(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two"} {
		if _, err := lib.Save(ctx, title, lullaby); err != nil {
			t.Fatalf("Save(%s) error = %v", title, err)
		}
	}

	entries, err := lib.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("List() returned %d entries, want 2", len(entries))
	}
	if entries[0].Source != "" {
		t.Error("List() should omit sources")
	}

	if err := lib.MarkPlayed(ctx, entries[0].ID); err != nil {
		t.Fatalf("MarkPlayed() error = %v", err)
	}
	got, err := lib.Get(ctx, entries[0].ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.PlayCount != 1 {
		t.Errorf("PlayCount = %d, want 1", got.PlayCount)
	}

	if err := lib.Delete(ctx, "one"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := lib.Get(ctx, "One"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get() after delete error = %v, want %v", err, ErrNotFound)
	}
	if err := lib.Delete(ctx, "one"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete() twice error = %v, want %v", err, ErrNotFound)
	}
	if err := lib.MarkPlayed(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("MarkPlayed() error = %v, want %v", err, ErrNotFound)
	}
}

func TestReopenKeepsScores(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	lib, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := lib.Save(context.Background(), "Kept", lullaby); err != nil {
		t.Fatal(err)
	}
	lib.Close()

	lib, err = Open(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer lib.Close()
	if _, err := lib.Get(context.Background(), "Kept"); err != nil {
		t.Errorf("Get() after reopen error = %v", err)
	}
}
