package index

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/soundmark/soundmark/pkg/soundmark/model"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.sqlite3")
	store, err := Open(Config{Path: path})
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestCreateTrackIsIdempotentByTitleArtist(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	meta := model.TrackMeta{Title: "Sandstorm", Artist: "Darude"}
	id1, err := store.CreateTrack(ctx, meta)
	if err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}
	id2, err := store.CreateTrack(ctx, meta)
	if err != nil {
		t.Fatalf("CreateTrack (second call) failed: %v", err)
	}
	if id1 != id2 {
		t.Errorf("expected same track id for repeated title/artist, got %d and %d", id1, id2)
	}
}

func TestInsertAndLookupFingerprints(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, err := store.CreateTrack(ctx, model.TrackMeta{Title: "t", Artist: "a"})
	if err != nil {
		t.Fatalf("CreateTrack failed: %v", err)
	}

	fps := []model.Fingerprint{
		{Hash: 111, AnchorTime: 0},
		{Hash: 222, AnchorTime: 5},
	}
	if err := store.InsertFingerprints(ctx, id, fps); err != nil {
		t.Fatalf("InsertFingerprints failed: %v", err)
	}

	hits, err := store.Lookup(ctx, 111)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(hits) != 1 || hits[0].Track != id || hits[0].AnchorTime != 0 {
		t.Errorf("unexpected lookup result: %+v", hits)
	}

	many, err := store.LookupMany(ctx, []uint32{111, 222, 999})
	if err != nil {
		t.Fatalf("LookupMany failed: %v", err)
	}
	if len(many) != 2 {
		t.Errorf("expected 2 populated hashes, got %d", len(many))
	}
}

func TestDeleteTrackRemovesFingerprints(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateTrack(ctx, model.TrackMeta{Title: "t", Artist: "a"})
	store.InsertFingerprints(ctx, id, []model.Fingerprint{{Hash: 1, AnchorTime: 0}})

	if err := store.DeleteTrack(ctx, id); err != nil {
		t.Fatalf("DeleteTrack failed: %v", err)
	}

	hits, err := store.Lookup(ctx, 1)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if len(hits) != 0 {
		t.Errorf("expected no fingerprints after delete, got %d", len(hits))
	}

	if _, err := store.GetTrack(ctx, id); err == nil {
		t.Error("expected GetTrack to fail after delete")
	}
}

func TestStats(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	id, _ := store.CreateTrack(ctx, model.TrackMeta{Title: "t", Artist: "a"})
	store.InsertFingerprints(ctx, id, []model.Fingerprint{{Hash: 1}, {Hash: 2}})

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TrackCount != 1 {
		t.Errorf("expected 1 track, got %d", stats.TrackCount)
	}
	if stats.FingerprintCount != 2 {
		t.Errorf("expected 2 fingerprints, got %d", stats.FingerprintCount)
	}
}

func TestOptimize(t *testing.T) {
	store := openTestStore(t)
	if err := store.Optimize(context.Background()); err != nil {
		t.Errorf("Optimize failed: %v", err)
	}
}
