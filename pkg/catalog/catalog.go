// Package catalog records every load and model run, and the outcome of each
// file within a run, in a small SQLite or libsql database.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/JayJamieson/csv-dwh/pkg/models"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	_ "github.com/tursodatabase/libsql-client-go/libsql"
)

const (
	KindLoad  = "load"
	KindModel = "model"
)

// Fixed-width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

var ErrRunNotFound = errors.New("run not found")

// Recorder receives run lifecycle events from the jobs.
type Recorder interface {
	StartRun(ctx context.Context, kind string) (string, error)
	Record(ctx context.Context, event models.Event) error
	FinishRun(ctx context.Context, runID string) error
}

type discard struct{}

// Discard is a Recorder that keeps nothing.
var Discard Recorder = discard{}

func (discard) StartRun(context.Context, string) (string, error) { return uuid.New().String(), nil }
func (discard) Record(context.Context, models.Event) error       { return nil }
func (discard) FinishRun(context.Context, string) error          { return nil }

type Catalog struct {
	conn *sql.DB
	now  func() time.Time
}

var _ Recorder = (*Catalog)(nil)

// driverFor picks the sql driver for a catalog URL. Local files go through
// sqlite3; remote libsql/Turso URLs go through the libsql client.
func driverFor(url string) (string, string) {
	switch {
	case url == ":memory:":
		return "sqlite3", url
	case strings.HasPrefix(url, "file:"):
		return "sqlite3", url
	default:
		return "libsql", url
	}
}

// Open connects to the catalog at url and creates its tables if needed.
func Open(url string) (*Catalog, error) {
	driver, dsn := driverFor(url)

	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	if driver == "sqlite3" {
		conn.SetMaxOpenConns(1)
	}
	conn.SetConnMaxIdleTime(9 * time.Second)

	c := &Catalog{conn: conn, now: time.Now}
	if err := c.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return c, nil
}

func (c *Catalog) migrate() error {
	_, err := c.conn.Exec(`
		CREATE TABLE IF NOT EXISTS run (
			id TEXT PRIMARY KEY,
			kind TEXT NOT NULL,
			started_at TEXT NOT NULL,
			finished_at TEXT
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create run table: %w", err)
	}

	_, err = c.conn.Exec(`
		CREATE TABLE IF NOT EXISTS run_event (
			run_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			subject TEXT NOT NULL,
			target TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			detail TEXT NOT NULL DEFAULT '',
			row_count INTEGER NOT NULL DEFAULT 0,
			created_at TEXT NOT NULL,
			PRIMARY KEY (run_id, seq)
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create run_event table: %w", err)
	}
	return nil
}

func (c *Catalog) Close() error {
	return c.conn.Close()
}

func (c *Catalog) timestamp() string {
	return c.now().UTC().Format(timeLayout)
}

func (c *Catalog) StartRun(ctx context.Context, kind string) (string, error) {
	id := uuid.New().String()
	_, err := c.conn.ExecContext(ctx, `
		INSERT INTO run (id, kind, started_at)
		VALUES (?, ?, ?)
	`, id, kind, c.timestamp())
	if err != nil {
		return "", fmt.Errorf("failed to store run: %w", err)
	}
	return id, nil
}

func (c *Catalog) Record(ctx context.Context, event models.Event) error {
	_, err := c.conn.ExecContext(ctx, `
		INSERT INTO run_event (run_id, seq, subject, target, status, detail, row_count, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.RunID, event.Seq, event.Subject, event.Target, string(event.Status), event.Detail, event.Rows, c.timestamp())
	if err != nil {
		return fmt.Errorf("failed to store run event: %w", err)
	}
	return nil
}

func (c *Catalog) FinishRun(ctx context.Context, runID string) error {
	res, err := c.conn.ExecContext(ctx, `
		UPDATE run SET finished_at = ? WHERE id = ?
	`, c.timestamp(), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (c *Catalog) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := c.conn.QueryContext(ctx, `
		SELECT id, kind, started_at, finished_at
		FROM run
		ORDER BY started_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run rows: %w", err)
	}
	return runs, nil
}

func (c *Catalog) GetRun(ctx context.Context, runID string) (models.Run, error) {
	row := c.conn.QueryRowContext(ctx, `
		SELECT id, kind, started_at, finished_at
		FROM run
		WHERE id = ?
	`, runID)

	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Run{}, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
		}
		return models.Run{}, err
	}
	return run, nil
}

// Events returns the events of a run in the order they were recorded.
func (c *Catalog) Events(ctx context.Context, runID string) ([]models.Event, error) {
	rows, err := c.conn.QueryContext(ctx, `
		SELECT run_id, seq, subject, target, status, detail, row_count, created_at
		FROM run_event
		WHERE run_id = ?
		ORDER BY seq
	`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query run events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		var (
			e         models.Event
			status    string
			createdAt string
		)
		if err := rows.Scan(&e.RunID, &e.Seq, &e.Subject, &e.Target, &status, &e.Detail, &e.Rows, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan run event: %w", err)
		}
		e.Status = models.Status(status)
		if e.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
			return nil, fmt.Errorf("failed to parse event time: %w", err)
		}
		events = append(events, e)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating run event rows: %w", err)
	}
	return events, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (models.Run, error) {
	var (
		run        models.Run
		startedAt  string
		finishedAt sql.NullString
	)
	if err := s.Scan(&run.ID, &run.Kind, &startedAt, &finishedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Run{}, err
		}
		return models.Run{}, fmt.Errorf("failed to scan run: %w", err)
	}

	var err error
	if run.StartedAt, err = time.Parse(timeLayout, startedAt); err != nil {
		return models.Run{}, fmt.Errorf("failed to parse run start: %w", err)
	}
	if finishedAt.Valid {
		t, err := time.Parse(timeLayout, finishedAt.String)
		if err != nil {
			return models.Run{}, fmt.Errorf("failed to parse run finish: %w", err)
		}
		run.FinishedAt = &t
	}
	return run, nil
}
