package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/minhlq/resume-ocr/constants"
	"github.com/minhlq/resume-ocr/internal/entity"
)

// HistoryRepository records one row per extraction request.
type HistoryRepository interface {
	Start(ctx context.Context, job entity.ExtractionJob) error
	FinishSuccess(ctx context.Context, id uuid.UUID, pages int, result []byte, finishedAt time.Time, durationMs int64) error
	FinishFailure(ctx context.Context, id uuid.UUID, errorMessage string, finishedAt time.Time, durationMs int64) error
	List(ctx context.Context, limit int) ([]entity.ExtractionJob, error)
}

// SQLHistory implements HistoryRepository over database/sql
// (sqlite or postgres, chosen at Open time).
type SQLHistory struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

func NewSQLHistory(db *sql.DB, driver string, logger *slog.Logger) *SQLHistory {
	if logger == nil {
		logger = slog.Default()
	}
	return &SQLHistory{db: db, driver: driver, logger: logger}
}

const historySchema = `
CREATE TABLE IF NOT EXISTS extraction_job (
	id            TEXT PRIMARY KEY,
	filename      TEXT NOT NULL,
	format        TEXT NOT NULL,
	pages         INTEGER NOT NULL DEFAULT 0,
	status        TEXT NOT NULL,
	error_message TEXT,
	result_json   TEXT,
	started_at    TIMESTAMP NOT NULL,
	finished_at   TIMESTAMP,
	duration_ms   INTEGER NOT NULL DEFAULT 0
)`

// Migrate creates the extraction_job table when missing.
func (r *SQLHistory) Migrate(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, historySchema)
	if err != nil {
		r.logger.Error("history migrate failed", "error", err)
		return err
	}
	return nil
}

func (r *SQLHistory) Start(ctx context.Context, job entity.ExtractionJob) error {
	q := rebind(r.driver, `INSERT INTO extraction_job
		(id, filename, format, pages, status, started_at, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, 0)`)
	_, err := r.db.ExecContext(ctx, q,
		job.ID.String(), job.Filename, job.Format, job.Pages, job.Status, job.StartedAt.UTC())
	if err != nil {
		r.logger.Error("history.start failed", "job_id", job.ID, "error", err)
	}
	return err
}

func (r *SQLHistory) FinishSuccess(ctx context.Context, id uuid.UUID, pages int, result []byte, finishedAt time.Time, durationMs int64) error {
	q := rebind(r.driver, `UPDATE extraction_job
		SET pages = ?, status = ?, result_json = ?, finished_at = ?, duration_ms = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, q,
		pages, string(constants.JobStatusSucceeded), string(result), finishedAt.UTC(), durationMs, id.String())
	if err != nil {
		r.logger.Error("history.finish_success failed", "job_id", id, "error", err)
	}
	return err
}

func (r *SQLHistory) FinishFailure(ctx context.Context, id uuid.UUID, errorMessage string, finishedAt time.Time, durationMs int64) error {
	q := rebind(r.driver, `UPDATE extraction_job
		SET status = ?, error_message = ?, finished_at = ?, duration_ms = ?
		WHERE id = ?`)
	_, err := r.db.ExecContext(ctx, q,
		string(constants.JobStatusFailed), errorMessage, finishedAt.UTC(), durationMs, id.String())
	if err != nil {
		r.logger.Error("history.finish_failure failed", "job_id", id, "error", err)
	}
	return err
}

// List returns the most recent jobs, newest first.
func (r *SQLHistory) List(ctx context.Context, limit int) ([]entity.ExtractionJob, error) {
	if limit <= 0 {
		limit = 50
	}
	q := rebind(r.driver, `SELECT id, filename, format, pages, status,
		error_message, result_json, started_at, finished_at, duration_ms
		FROM extraction_job ORDER BY started_at DESC LIMIT ?`)
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		r.logger.Error("history.list failed", "error", err)
		return nil, err
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			r.logger.Warn("history.list rows close failed", "error", cerr)
		}
	}()

	var jobs []entity.ExtractionJob
	for rows.Next() {
		var (
			j          entity.ExtractionJob
			idStr      string
			errMsg     sql.NullString
			resultJSON sql.NullString
			finishedAt sql.NullTime
		)
		if err := rows.Scan(&idStr, &j.Filename, &j.Format, &j.Pages, &j.Status,
			&errMsg, &resultJSON, &j.StartedAt, &finishedAt, &j.DurationMs); err != nil {
			return nil, err
		}
		if j.ID, err = uuid.Parse(idStr); err != nil {
			return nil, err
		}
		if errMsg.Valid {
			j.ErrorMessage = &errMsg.String
		}
		if resultJSON.Valid && resultJSON.String != "" {
			j.ResultJSON = []byte(resultJSON.String)
		}
		if finishedAt.Valid {
			j.FinishedAt = &finishedAt.Time
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}
