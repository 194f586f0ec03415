package moderation

import (
	"context"
	"testing"
)

// TestInMemoryBlockStore tests directed block edges.
func TestInMemoryBlockStore(t *testing.T) {
	store := NewInMemoryBlockStore()
	ctx := context.Background()

	if err := store.AddBlock(ctx, "alice", "bob"); err != nil {
		t.Fatalf("AddBlock failed: %v", err)
	}
	if err := store.AddBlock(ctx, "alice", "carol"); err != nil {
		t.Fatalf("AddBlock failed: %v", err)
	}
	// Re-blocking is a no-op
	if err := store.AddBlock(ctx, "alice", "bob"); err != nil {
		t.Fatalf("repeat AddBlock failed: %v", err)
	}

	blocked, err := store.BlockedBy(ctx, "alice")
	if err != nil {
		t.Fatalf("BlockedBy failed: %v", err)
	}
	if len(blocked) != 2 {
		t.Errorf("expected 2 blocked users, got %d", len(blocked))
	}

	// Edges are directed: bob blocking nobody
	blocked, err = store.BlockedBy(ctx, "bob")
	if err != nil {
		t.Fatalf("BlockedBy failed: %v", err)
	}
	if len(blocked) != 0 {
		t.Errorf("expected no blocked users for bob, got %d", len(blocked))
	}
}

// TestInMemoryReportStore tests aggregate counts and per-user subsets.
func TestInMemoryReportStore(t *testing.T) {
	store := NewInMemoryReportStore()
	ctx := context.Background()

	reports := []*Report{
		{ReporterID: "u1", DealID: "d1"},
		{ReporterID: "u2", DealID: "d1"},
		{ReporterID: "u1", DealID: "d2"},
		{ReporterID: "u1", DealID: "d1"}, // duplicate, ignored
	}
	for _, r := range reports {
		if err := store.AddReport(ctx, r); err != nil {
			t.Fatalf("AddReport failed: %v", err)
		}
	}

	counts, err := store.CountByDeals(ctx, []string{"d1", "d2", "d3"})
	if err != nil {
		t.Fatalf("CountByDeals failed: %v", err)
	}
	if counts["d1"] != 2 {
		t.Errorf("expected 2 reports for d1, got %d", counts["d1"])
	}
	if counts["d2"] != 1 {
		t.Errorf("expected 1 report for d2, got %d", counts["d2"])
	}
	if _, ok := counts["d3"]; ok {
		t.Error("deal with zero reports should be omitted")
	}

	mine, err := store.ReportedBy(ctx, []string{"d1", "d2", "d3"}, "u2")
	if err != nil {
		t.Fatalf("ReportedBy failed: %v", err)
	}
	if len(mine) != 1 || mine[0] != "d1" {
		t.Errorf("expected only d1 reported by u2, got %v", mine)
	}
}
