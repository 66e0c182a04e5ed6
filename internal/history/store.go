package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/extra/bundebug"

	"github.com/lfaller/clinvar-data-monitor/internal/models"
)

// Run is one recorded quality assessment.
type Run struct {
	bun.BaseModel `bun:"table:quality_runs,alias:qr"`

	ID                 int64     `bun:"id,pk,autoincrement" json:"id"`
	CreatedAt          time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	SourceFile         string    `bun:"source_file" json:"source_file"`
	ReportTimestamp    string    `bun:"report_timestamp,notnull" json:"report_timestamp"`
	RowCount           int       `bun:"row_count,notnull" json:"row_count"`
	ColumnCount        int       `bun:"column_count,notnull" json:"column_count"`
	NullPercentageAvg  float64   `bun:"null_percentage_avg,notnull" json:"null_percentage_avg"`
	DuplicateCount     int       `bun:"duplicate_count,notnull" json:"duplicate_count"`
	ConflictingCount   int64     `bun:"conflicting_count,notnull" json:"conflicting_count"`
	FourStarPercentage float64   `bun:"four_star_percentage,notnull" json:"four_star_percentage"`
	QualityScore       float64   `bun:"quality_score,notnull" json:"quality_score"`
}

// Store persists quality runs in a local SQLite database so data quality
// can be tracked over time.
type Store struct {
	db *bun.DB
}

// Open opens (and initializes, if needed) the history database.
func Open(ctx context.Context, dsn string, debug bool) (*Store, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	if debug {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	if _, err := db.ExecContext(ctx, `
        PRAGMA journal_mode = WAL;
        PRAGMA synchronous = NORMAL;
        PRAGMA foreign_keys = ON;
    `); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to configure history database: %w", err)
	}

	if _, err := db.NewCreateTable().Model((*Run)(nil)).IfNotExists().Exec(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create history schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores a quality report as a new run.
func (s *Store) Record(ctx context.Context, report *models.QualityReport, sourceFile string) (*Run, error) {
	run := &Run{
		CreatedAt:          time.Now().UTC(),
		SourceFile:         sourceFile,
		ReportTimestamp:    report.Timestamp,
		RowCount:           report.RowCount,
		ColumnCount:        report.ColumnCount,
		NullPercentageAvg:  report.NullPercentageAvg,
		DuplicateCount:     report.DuplicateCount,
		ConflictingCount:   report.ConflictingCount,
		FourStarPercentage: report.FourStarPercentage,
		QualityScore:       report.Score(),
	}

	if _, err := s.db.NewInsert().Model(run).Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to record quality run: %w", err)
	}
	return run, nil
}

// Latest returns the most recent run, or nil when the history is empty.
func (s *Store) Latest(ctx context.Context) (*Run, error) {
	run := &Run{}
	err := s.db.NewSelect().Model(run).OrderExpr("id DESC").Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load latest quality run: %w", err)
	}
	return run, nil
}

// Recent returns up to limit runs, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 10
	}

	var runs []Run
	if err := s.db.NewSelect().Model(&runs).OrderExpr("id DESC").Limit(limit).Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to load quality runs: %w", err)
	}
	return runs, nil
}

// Drift is the absolute row-count change between two runs as a
// percentage of the previous count. A missing or empty previous run
// yields zero drift.
func Drift(currentRows, previousRows int) float64 {
	if previousRows <= 0 {
		return 0
	}
	return math.Abs(float64(currentRows-previousRows)) / float64(previousRows) * 100
}
