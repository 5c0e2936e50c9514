// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package state

import (
	"context"
	"testing"
	"time"

	"github.com/pdiddy/deepsearch/pkg/types"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleState(id string, createdAt time.Time) *types.ReportState {
	return &types.ReportState{
		ID:          id,
		ReportTitle: "人工智能研究报告",
		Query:       "人工智能",
		CreatedAt:   createdAt,
		Sections: []types.Section{
			{
				Title:    "Background",
				Guidance: "history and context",
				History: []types.SearchRound{
					{
						Query: "ai history",
						Results: []types.SearchResult{
							{Title: "Page", URL: "https://example.com", Content: "text", Score: 0.9, HasScore: true},
						},
						Timestamp: createdAt,
					},
					{Query: "", Results: nil, Timestamp: createdAt.Add(time.Minute)},
					{Query: "ai milestones", Timestamp: createdAt.Add(2 * time.Minute)},
				},
				LatestFragment: "the fragment",
				Completed:      true,
			},
			{
				Title:    "Outlook",
				Guidance: "future directions",
			},
		},
	}
}

func TestReportRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	createdAt := time.Date(2026, 2, 1, 10, 30, 0, 0, time.UTC)
	state := sampleState("run-1", createdAt)
	state.MarkCompleted("# Report\n\n## Background\n\ntext\n")

	if err := store.SaveReport(ctx, state); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	loaded, err := store.LoadReport(ctx, "run-1")
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}

	if loaded.ReportTitle != state.ReportTitle {
		t.Errorf("ReportTitle = %q, want %q", loaded.ReportTitle, state.ReportTitle)
	}
	if loaded.FinalArtifact != state.FinalArtifact {
		t.Errorf("FinalArtifact = %q, want %q", loaded.FinalArtifact, state.FinalArtifact)
	}
	if !loaded.CreatedAt.Equal(createdAt) {
		t.Errorf("CreatedAt = %v, want %v", loaded.CreatedAt, createdAt)
	}
	if loaded.CompletedAt == nil {
		t.Fatal("CompletedAt is nil, want set")
	}
	if !loaded.CompletedAt.Equal(*state.CompletedAt) {
		t.Errorf("CompletedAt = %v, want %v", loaded.CompletedAt, state.CompletedAt)
	}

	if len(loaded.Sections) != 2 {
		t.Fatalf("got %d sections, want 2", len(loaded.Sections))
	}
	sec := loaded.Sections[0]
	if !sec.Completed || sec.LatestFragment != "the fragment" {
		t.Errorf("section 0 = %+v, want completed with fragment", sec)
	}
	// History round-trips in append order, including the empty-query round.
	if len(sec.History) != 3 {
		t.Fatalf("section 0 history length = %d, want 3", len(sec.History))
	}
	wantQueries := []string{"ai history", "", "ai milestones"}
	for i, want := range wantQueries {
		if sec.History[i].Query != want {
			t.Errorf("history[%d].Query = %q, want %q", i, sec.History[i].Query, want)
		}
	}
	if len(sec.History[0].Results) != 1 || !sec.History[0].Results[0].HasScore {
		t.Errorf("history[0].Results = %+v, want one scored result", sec.History[0].Results)
	}
}

func TestLoadReportInProgress(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state := sampleState("run-2", time.Now().UTC())
	if err := store.SaveReport(ctx, state); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	loaded, err := store.LoadReport(ctx, "run-2")
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if loaded.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil for in-progress run", loaded.CompletedAt)
	}
	if loaded.FinalArtifact != "" {
		t.Errorf("FinalArtifact = %q, want empty", loaded.FinalArtifact)
	}
}

func TestLoadReportMissing(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.LoadReport(context.Background(), "absent"); err == nil {
		t.Fatal("expected error for missing report, got nil")
	}
}

func TestSaveReportUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state := sampleState("run-3", time.Now().UTC())
	if err := store.SaveReport(ctx, state); err != nil {
		t.Fatalf("SaveReport: %v", err)
	}

	state.MarkCompleted("final text")
	if err := store.SaveReport(ctx, state); err != nil {
		t.Fatalf("SaveReport (update): %v", err)
	}

	loaded, err := store.LoadReport(ctx, "run-3")
	if err != nil {
		t.Fatalf("LoadReport: %v", err)
	}
	if loaded.FinalArtifact != "final text" {
		t.Errorf("FinalArtifact = %q, want final text", loaded.FinalArtifact)
	}
	if loaded.CompletedAt == nil {
		t.Error("CompletedAt is nil after update")
	}
}

func TestListReports(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	older := sampleState("run-old", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	newer := sampleState("run-new", time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC))
	newer.MarkCompleted("done")

	for _, s := range []*types.ReportState{older, newer} {
		if err := store.SaveReport(ctx, s); err != nil {
			t.Fatalf("SaveReport: %v", err)
		}
	}

	summaries, err := store.ListReports(ctx)
	if err != nil {
		t.Fatalf("ListReports: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("got %d summaries, want 2", len(summaries))
	}
	// Newest first.
	if summaries[0].ID != "run-new" || summaries[1].ID != "run-old" {
		t.Errorf("order = [%s, %s], want [run-new, run-old]", summaries[0].ID, summaries[1].ID)
	}
	if !summaries[0].Completed {
		t.Error("run-new should be marked completed")
	}
	if summaries[1].Completed {
		t.Error("run-old should not be marked completed")
	}
}

func TestChartDataRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	generatedAt := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	set := types.ChartDataSet{
		Topic:       "云计算",
		GeneratedAt: generatedAt,
		Slots: []types.ExtractionSlot{
			{Shape: types.ShapeCategorical, BestText: "A: 1\nB: 2\nC: 3", Valid: true, Attempts: 1},
			{Shape: types.ShapeTimeSeries, BestText: "2021年: 1\n2022年: 2\n2023年: 3", Valid: true, Attempts: 2},
			{Shape: types.ShapePartOfWhole, BestText: "A: 60%\nB: 40%", Valid: true, Attempts: 3, Degraded: true},
		},
	}

	if err := store.SaveChartData(ctx, set); err != nil {
		t.Fatalf("SaveChartData: %v", err)
	}

	loaded, err := store.LoadChartData(ctx, "云计算")
	if err != nil {
		t.Fatalf("LoadChartData: %v", err)
	}
	if len(loaded.Slots) != 3 {
		t.Fatalf("got %d slots, want 3", len(loaded.Slots))
	}
	if !loaded.GeneratedAt.Equal(generatedAt) {
		t.Errorf("GeneratedAt = %v, want %v", loaded.GeneratedAt, generatedAt)
	}

	pie := loaded.Slot(types.ShapePartOfWhole)
	if pie == nil {
		t.Fatal("missing pie slot")
	}
	if !pie.Degraded || pie.Attempts != 3 {
		t.Errorf("pie slot = %+v, want degraded with 3 attempts", pie)
	}

	bar := loaded.Slot(types.ShapeCategorical)
	if bar == nil || bar.BestText != "A: 1\nB: 2\nC: 3" {
		t.Errorf("bar slot = %+v, want original text", bar)
	}
}

func TestSaveChartDataUpsert(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	set := types.ChartDataSet{
		Topic:       "主题",
		GeneratedAt: time.Now().UTC(),
		Slots: []types.ExtractionSlot{
			{Shape: types.ShapeCategorical, BestText: "first", Valid: false, Attempts: 3},
		},
	}
	if err := store.SaveChartData(ctx, set); err != nil {
		t.Fatalf("SaveChartData: %v", err)
	}

	set.Slots[0].BestText = "second"
	set.Slots[0].Valid = true
	if err := store.SaveChartData(ctx, set); err != nil {
		t.Fatalf("SaveChartData (update): %v", err)
	}

	loaded, err := store.LoadChartData(ctx, "主题")
	if err != nil {
		t.Fatalf("LoadChartData: %v", err)
	}
	if len(loaded.Slots) != 1 {
		t.Fatalf("got %d slots, want 1 after upsert", len(loaded.Slots))
	}
	if loaded.Slots[0].BestText != "second" || !loaded.Slots[0].Valid {
		t.Errorf("slot = %+v, want updated values", loaded.Slots[0])
	}
}

func TestLoadChartDataMissingTopic(t *testing.T) {
	store := newTestStore(t)
	loaded, err := store.LoadChartData(context.Background(), "无记录")
	if err != nil {
		t.Fatalf("LoadChartData: %v", err)
	}
	if len(loaded.Slots) != 0 {
		t.Errorf("got %d slots, want 0 for unknown topic", len(loaded.Slots))
	}
}
