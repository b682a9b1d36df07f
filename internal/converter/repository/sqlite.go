package repository

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"floorplan3d/internal/converter/models"
)

//go:embed migrations/*.sql
var migrations embed.FS

var ErrRunNotFound = errors.New("run not found")

// ============================================================
// SQLite Repository
// ============================================================

type Repository struct {
	db *sql.DB
}

func New(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Init applies the embedded migrations in file name order.
func (r *Repository) Init(ctx context.Context) error {
	if err := r.runMigrations(ctx); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}
	return nil
}

func (r *Repository) CreateRun(ctx context.Context, id, inputName, outputDir string) error {
	_, err := r.db.ExecContext(ctx, `
        INSERT INTO runs (id, input_name, status, output_dir)
        VALUES (?, ?, ?, ?)
    `, id, inputName, string(models.RunRunning), outputDir)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

func (r *Repository) FinishRun(ctx context.Context, id string, walls, openings int) error {
	return r.finish(ctx, id, models.RunSucceeded, walls, openings, "")
}

func (r *Repository) FailRun(ctx context.Context, id string, cause error) error {
	msg := ""
	if cause != nil {
		msg = cause.Error()
	}
	return r.finish(ctx, id, models.RunFailed, 0, 0, msg)
}

func (r *Repository) finish(ctx context.Context, id string, status models.RunStatus, walls, openings int, msg string) error {
	res, err := r.db.ExecContext(ctx, `
        UPDATE runs
        SET status = ?, walls = ?, openings = ?, error = ?,
            finished_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
        WHERE id = ?
    `, string(status), walls, openings, msg, id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func (r *Repository) GetRun(ctx context.Context, id string) (*models.Run, error) {
	row := r.db.QueryRowContext(ctx, `
        SELECT id, input_name, status, walls, openings, output_dir, error, created_at, finished_at
        FROM runs
        WHERE id = ?
    `, id)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
		}
		return nil, err
	}
	return run, nil
}

// ListRuns returns the most recent runs first.
func (r *Repository) ListRuns(ctx context.Context, limit int) ([]models.Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
        SELECT id, input_name, status, walls, openings, output_dir, error, created_at, finished_at
        FROM runs
        ORDER BY created_at DESC, rowid DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*models.Run, error) {
	var run models.Run
	var status string
	if err := s.Scan(&run.ID, &run.InputName, &status, &run.Walls, &run.Openings,
		&run.OutputDir, &run.Error, &run.CreatedAt, &run.FinishedAt); err != nil {
		return nil, err
	}
	run.Status = models.RunStatus(status)
	return &run, nil
}

// ============================================================
// Migrations
// ============================================================

func (r *Repository) runMigrations(ctx context.Context) error {
	names, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(names)

	for _, name := range names {
		data, err := migrations.ReadFile(name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if _, err := r.db.ExecContext(ctx, string(data)); err != nil {
			return fmt.Errorf("apply migration %s: %w", name, err)
		}
	}
	return nil
}

// OpenSQLite opens the run history database, creating its directory.
func OpenSQLite(dbPath string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", dbPath)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	return db, nil
}
