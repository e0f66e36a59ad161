package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/roach88/fnmanifest/internal/spec"
	"github.com/roach88/fnmanifest/internal/testutil"
)

func TestSaveSnapshot_RecordsDocument(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	doc := createTestDocument(map[string]int64{"api": 256, "worker": 512})

	snap, inserted, err := s.SaveSnapshot(ctx, doc)
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	if !inserted {
		t.Error("first save should insert")
	}

	wantHash, _ := spec.ManifestHash(doc)
	if snap.Hash != wantHash {
		t.Errorf("Hash = %q, want %q", snap.Hash, wantHash)
	}
	if snap.Seq != 1 {
		t.Errorf("Seq = %d, want 1", snap.Seq)
	}
	if snap.Functions != 2 {
		t.Errorf("Functions = %d, want 2", snap.Functions)
	}
	if snap.SpecVersion != spec.SpecVersion {
		t.Errorf("SpecVersion = %q, want %q", snap.SpecVersion, spec.SpecVersion)
	}
	if snap.ToolVersion != spec.ToolVersion {
		t.Errorf("ToolVersion = %q, want %q", snap.ToolVersion, spec.ToolVersion)
	}
	if !snap.RecordedAt.Equal(testutil.Epoch) {
		t.Errorf("RecordedAt = %v, want %v", snap.RecordedAt, testutil.Epoch)
	}

	canonical, _ := spec.MarshalCanonical(doc)
	if snap.Document != string(canonical) {
		t.Errorf("Document = %s, want canonical %s", snap.Document, canonical)
	}
}

func TestSaveSnapshot_Idempotent(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	first, _, err := s.SaveSnapshot(ctx, createTestDocument(map[string]int64{"api": 256}))
	if err != nil {
		t.Fatalf("first SaveSnapshot() failed: %v", err)
	}

	// Same content, freshly built
	again, inserted, err := s.SaveSnapshot(ctx, createTestDocument(map[string]int64{"api": 256}))
	if err != nil {
		t.Fatalf("second SaveSnapshot() failed: %v", err)
	}
	if inserted {
		t.Error("identical document should not insert")
	}
	if again.Seq != first.Seq || again.Hash != first.Hash {
		t.Errorf("got %+v, want the earlier snapshot %+v", again, first)
	}
	if !again.RecordedAt.Equal(first.RecordedAt) {
		t.Error("duplicate save must not restamp the snapshot")
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 1 {
		t.Errorf("len(List) = %d, want 1", len(all))
	}
}

func TestSaveSnapshot_EmptyDocument(t *testing.T) {
	s := createTestStore(t)

	snap, inserted, err := s.SaveSnapshot(context.Background(), createTestDocument(nil))
	if err != nil {
		t.Fatalf("SaveSnapshot() failed: %v", err)
	}
	if !inserted || snap.Functions != 0 {
		t.Errorf("got inserted=%v functions=%d, want true and 0", inserted, snap.Functions)
	}
}

func TestSaveSnapshot_BadEndpoints(t *testing.T) {
	s := createTestStore(t)
	doc := spec.M(spec.P("endpoints", spec.List{}))

	if _, _, err := s.SaveSnapshot(context.Background(), doc); err == nil {
		t.Error("expected error for non-map endpoints, got nil")
	}
}

func TestLatest(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	if _, err := s.Latest(ctx); !errors.Is(err, ErrNotFound) {
		t.Errorf("Latest() on empty store = %v, want ErrNotFound", err)
	}

	for _, mb := range []int64{128, 256, 512} {
		if _, _, err := s.SaveSnapshot(ctx, createTestDocument(map[string]int64{"api": mb})); err != nil {
			t.Fatalf("SaveSnapshot(%d) failed: %v", mb, err)
		}
	}

	latest, err := s.Latest(ctx)
	if err != nil {
		t.Fatalf("Latest() failed: %v", err)
	}
	want, _ := spec.ManifestHash(createTestDocument(map[string]int64{"api": 512}))
	if latest.Hash != want || latest.Seq != 3 {
		t.Errorf("Latest() = seq %d hash %s, want seq 3 hash %s", latest.Seq, latest.Hash, want)
	}
}

func TestList_NewestFirst(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Errorf("List() on empty store = %#v, want empty non-nil slice", empty)
	}

	for _, mb := range []int64{128, 256, 512} {
		if _, _, err := s.SaveSnapshot(ctx, createTestDocument(map[string]int64{"api": mb})); err != nil {
			t.Fatalf("SaveSnapshot(%d) failed: %v", mb, err)
		}
	}

	all, err := s.List(ctx, 0)
	if err != nil {
		t.Fatalf("List() failed: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("len(List) = %d, want 3", len(all))
	}
	for i, want := range []int64{3, 2, 1} {
		if all[i].Seq != want {
			t.Errorf("List()[%d].Seq = %d, want %d", i, all[i].Seq, want)
		}
	}
	if !all[0].RecordedAt.After(all[2].RecordedAt) {
		t.Error("newest snapshot should carry the latest timestamp")
	}

	limited, err := s.List(ctx, 2)
	if err != nil {
		t.Fatalf("List(2) failed: %v", err)
	}
	if len(limited) != 2 || limited[0].Seq != 3 {
		t.Errorf("List(2) = %d snapshots starting at seq %d, want 2 starting at 3", len(limited), limited[0].Seq)
	}
}

func TestSnapshot_NotFound(t *testing.T) {
	s := createTestStore(t)

	if _, err := s.Snapshot(context.Background(), "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Snapshot(missing) = %v, want ErrNotFound", err)
	}
}

func TestEndpointHistory(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	docs := []map[string]int64{
		{"api": 256},
		{"api": 256, "worker": 128}, // api unchanged
		{"api": 512, "worker": 128},
		{"worker": 128}, // api removed
	}
	for i, d := range docs {
		if _, _, err := s.SaveSnapshot(ctx, createTestDocument(d)); err != nil {
			t.Fatalf("SaveSnapshot(%d) failed: %v", i, err)
		}
	}

	revs, err := s.EndpointHistory(ctx, "api")
	if err != nil {
		t.Fatalf("EndpointHistory() failed: %v", err)
	}
	if len(revs) != 2 {
		t.Fatalf("len(revisions) = %d, want 2: %+v", len(revs), revs)
	}
	if revs[0].Seq != 3 || revs[1].Seq != 1 {
		t.Errorf("revision seqs = %d, %d; want 3, 1", revs[0].Seq, revs[1].Seq)
	}
	if revs[0].EndpointHash == revs[1].EndpointHash {
		t.Error("revisions should differ in endpoint hash")
	}
	if !revs[1].RecordedAt.Equal(testutil.Epoch) {
		t.Errorf("first revision RecordedAt = %v, want %v", revs[1].RecordedAt, testutil.Epoch)
	}

	none, err := s.EndpointHistory(ctx, "ghost")
	if err != nil {
		t.Fatalf("EndpointHistory(ghost) failed: %v", err)
	}
	if none == nil || len(none) != 0 {
		t.Errorf("EndpointHistory(ghost) = %#v, want empty non-nil slice", none)
	}
}

func TestTimeRoundTrip(t *testing.T) {
	in := time.Date(2025, time.March, 4, 5, 6, 7, 8, time.FixedZone("X", 3600))
	out, err := parseTime(formatTime(in))
	if err != nil {
		t.Fatalf("parseTime() failed: %v", err)
	}
	if !out.Equal(in) {
		t.Errorf("round trip = %v, want %v", out, in)
	}
}
