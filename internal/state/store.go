// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package state persists research run state to SQLite so finished reports
// can be re-rendered and interrupted runs inspected. Snapshots round-trip
// every field, including per-section history ordering.
package state

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/deepsearch/pkg/types"
)

const dbFile = "deepsearch.db"

// Store manages the run state SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the state database at stateDir/deepsearch.db,
// creating the schema if it does not exist.
func NewStore(stateDir string) (*Store, error) {
	if err := os.MkdirAll(stateDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating state directory: %w", err)
	}

	dbPath := filepath.Join(stateDir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS reports (
			id TEXT PRIMARY KEY,
			report_title TEXT NOT NULL,
			query TEXT NOT NULL,
			final_artifact TEXT,
			created_at TEXT NOT NULL,
			completed_at TEXT,
			sections TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS chart_slots (
			topic TEXT NOT NULL,
			shape TEXT NOT NULL,
			best_text TEXT NOT NULL,
			valid INTEGER NOT NULL,
			attempts INTEGER NOT NULL,
			degraded INTEGER NOT NULL,
			generated_at TEXT NOT NULL,
			PRIMARY KEY (topic, shape)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reports_created_at ON reports(created_at)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// SaveReport upserts the full run state. Sections (including each round's
// results and timestamps) are stored as a YAML blob so ordering survives
// the round trip byte-for-byte.
func (s *Store) SaveReport(ctx context.Context, state *types.ReportState) error {
	sections, err := yaml.Marshal(state.Sections)
	if err != nil {
		return fmt.Errorf("marshaling sections: %w", err)
	}

	var completedAt any
	if state.CompletedAt != nil {
		completedAt = state.CompletedAt.UTC().Format(time.RFC3339Nano)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO reports (id, report_title, query, final_artifact, created_at, completed_at, sections)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			report_title=excluded.report_title, query=excluded.query,
			final_artifact=excluded.final_artifact,
			completed_at=excluded.completed_at, sections=excluded.sections`,
		state.ID, state.ReportTitle, state.Query, state.FinalArtifact,
		state.CreatedAt.UTC().Format(time.RFC3339Nano), completedAt, string(sections),
	)
	if err != nil {
		return fmt.Errorf("upserting report %s: %w", state.ID, err)
	}
	return nil
}

// LoadReport reads one run state by ID.
func (s *Store) LoadReport(ctx context.Context, id string) (*types.ReportState, error) {
	var (
		state       types.ReportState
		createdAt   string
		completedAt sql.NullString
		sections    string
	)

	err := s.db.QueryRowContext(ctx,
		`SELECT id, report_title, query, final_artifact, created_at, completed_at, sections
		 FROM reports WHERE id = ?`, id,
	).Scan(&state.ID, &state.ReportTitle, &state.Query, &state.FinalArtifact,
		&createdAt, &completedAt, &sections)
	if err != nil {
		return nil, fmt.Errorf("loading report %s: %w", id, err)
	}

	state.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if completedAt.Valid {
		t, err := time.Parse(time.RFC3339Nano, completedAt.String)
		if err != nil {
			return nil, fmt.Errorf("parsing completed_at: %w", err)
		}
		state.CompletedAt = &t
	}
	if err := yaml.Unmarshal([]byte(sections), &state.Sections); err != nil {
		return nil, fmt.Errorf("unmarshaling sections: %w", err)
	}
	return &state, nil
}

// ReportSummary is one row of the report listing.
type ReportSummary struct {
	ID          string
	ReportTitle string
	CreatedAt   time.Time
	Completed   bool
}

// ListReports returns summaries of all stored runs, newest first.
func (s *Store) ListReports(ctx context.Context) ([]ReportSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, report_title, created_at, completed_at IS NOT NULL
		 FROM reports ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("listing reports: %w", err)
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var (
			sum       ReportSummary
			createdAt string
		)
		if err := rows.Scan(&sum.ID, &sum.ReportTitle, &createdAt, &sum.Completed); err != nil {
			return nil, fmt.Errorf("scanning report row: %w", err)
		}
		sum.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		summaries = append(summaries, sum)
	}
	return summaries, rows.Err()
}

// SaveChartData upserts the extraction slots for a topic in one transaction.
func (s *Store) SaveChartData(ctx context.Context, set types.ChartDataSet) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO chart_slots (topic, shape, best_text, valid, attempts, degraded, generated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(topic, shape) DO UPDATE SET
			best_text=excluded.best_text, valid=excluded.valid,
			attempts=excluded.attempts, degraded=excluded.degraded,
			generated_at=excluded.generated_at`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	generatedAt := set.GeneratedAt.UTC().Format(time.RFC3339Nano)
	for _, slot := range set.Slots {
		if _, err := stmt.ExecContext(ctx,
			set.Topic, string(slot.Shape), slot.BestText,
			slot.Valid, slot.Attempts, slot.Degraded, generatedAt,
		); err != nil {
			return fmt.Errorf("inserting slot %s/%s: %w", set.Topic, slot.Shape, err)
		}
	}
	return tx.Commit()
}

// LoadChartData reads the stored extraction slots for a topic.
func (s *Store) LoadChartData(ctx context.Context, topic string) (types.ChartDataSet, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT shape, best_text, valid, attempts, degraded, generated_at
		 FROM chart_slots WHERE topic = ? ORDER BY shape`, topic)
	if err != nil {
		return types.ChartDataSet{}, fmt.Errorf("loading chart data for %q: %w", topic, err)
	}
	defer rows.Close()

	set := types.ChartDataSet{Topic: topic}
	for rows.Next() {
		var (
			slot        types.ExtractionSlot
			shape       string
			generatedAt string
		)
		if err := rows.Scan(&shape, &slot.BestText, &slot.Valid, &slot.Attempts, &slot.Degraded, &generatedAt); err != nil {
			return types.ChartDataSet{}, fmt.Errorf("scanning slot row: %w", err)
		}
		slot.Shape = types.ChartShape(shape)
		set.GeneratedAt, err = time.Parse(time.RFC3339Nano, generatedAt)
		if err != nil {
			return types.ChartDataSet{}, fmt.Errorf("parsing generated_at: %w", err)
		}
		set.Slots = append(set.Slots, slot)
	}
	return set, rows.Err()
}
