// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"
	"time"
)

func TestSectionAddRound(t *testing.T) {
	var sec Section
	sec.AddRound("first query", []SearchResult{{Title: "A"}})
	sec.AddRound("", nil)
	sec.AddRound("third query", nil)

	if len(sec.History) != 3 {
		t.Fatalf("history length = %d, want 3", len(sec.History))
	}
	wantQueries := []string{"first query", "", "third query"}
	for i, want := range wantQueries {
		if sec.History[i].Query != want {
			t.Errorf("history[%d].Query = %q, want %q", i, sec.History[i].Query, want)
		}
		if sec.History[i].Timestamp.IsZero() {
			t.Errorf("history[%d] has zero timestamp", i)
		}
	}
}

func TestReportStateMarkCompleted(t *testing.T) {
	state := ReportState{ID: "run-1", CreatedAt: time.Now().UTC()}
	if state.CompletedAt != nil {
		t.Fatal("CompletedAt set before completion")
	}

	state.MarkCompleted("the artifact")

	if state.FinalArtifact != "the artifact" {
		t.Errorf("FinalArtifact = %q, want the artifact", state.FinalArtifact)
	}
	if state.CompletedAt == nil {
		t.Fatal("CompletedAt is nil after completion")
	}
}

func TestProgress(t *testing.T) {
	tests := []struct {
		name          string
		completed     []bool
		markDone      bool
		wantCompleted int
		wantPercent   float64
	}{
		{"none completed", []bool{false, false}, false, 0, 0},
		{"half completed", []bool{true, false}, false, 1, 50},
		{"all completed", []bool{true, true, true}, true, 3, 100},
		{"no sections", nil, false, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := ReportState{}
			for _, c := range tt.completed {
				state.Sections = append(state.Sections, Section{Completed: c})
			}
			if tt.markDone {
				state.MarkCompleted("done")
			}

			p := state.Progress()
			if p.TotalSections != len(tt.completed) {
				t.Errorf("TotalSections = %d, want %d", p.TotalSections, len(tt.completed))
			}
			if p.CompletedSections != tt.wantCompleted {
				t.Errorf("CompletedSections = %d, want %d", p.CompletedSections, tt.wantCompleted)
			}
			if p.PercentComplete != tt.wantPercent {
				t.Errorf("PercentComplete = %v, want %v", p.PercentComplete, tt.wantPercent)
			}
			if p.Done != tt.markDone {
				t.Errorf("Done = %v, want %v", p.Done, tt.markDone)
			}
		})
	}
}

func TestChartDataSetSlot(t *testing.T) {
	set := ChartDataSet{Slots: []ExtractionSlot{
		{Shape: ShapeCategorical, BestText: "bar data"},
		{Shape: ShapePartOfWhole, BestText: "pie data"},
	}}

	if slot := set.Slot(ShapeCategorical); slot == nil || slot.BestText != "bar data" {
		t.Errorf("Slot(bar) = %+v, want bar data", slot)
	}
	if slot := set.Slot(ShapeTimeSeries); slot != nil {
		t.Errorf("Slot(line) = %+v, want nil for absent shape", slot)
	}

	// The returned pointer aliases the slice entry.
	set.Slot(ShapeCategorical).Valid = true
	if !set.Slots[0].Valid {
		t.Error("mutation through Slot did not reach the underlying entry")
	}
}
