package storage

import (
	"context"
	"database/sql"
	"time"

	"resumebuilder/internal/errors"
	"resumebuilder/internal/types"
)

const defaultHistoryLimit = 20

// HistoryStore persists one row per successful build.
type HistoryStore interface {
	Record(ctx context.Context, rec types.BuildRecord) error
	Recent(ctx context.Context, limit int) ([]types.BuildRecord, error)
}

// PGHistory stores build history in Postgres.
type PGHistory struct {
	DB  *sql.DB
	Now func() time.Time
}

// NewPGHistory wraps an open database.
func NewPGHistory(db *sql.DB) *PGHistory {
	return &PGHistory{DB: db, Now: time.Now}
}

var _ HistoryStore = (*PGHistory)(nil)

// Record inserts rec. A zero CreatedAt is stamped with the current time.
func (h *PGHistory) Record(ctx context.Context, rec types.BuildRecord) error {
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = h.Now().UTC()
	}
	_, err := h.DB.ExecContext(ctx, `
		INSERT INTO builds (build_ts, name, job_title, company, score, ats_score, experience_enhanced, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		rec.Timestamp,
		rec.Name,
		rec.JobTitle,
		rec.Company,
		rec.Score,
		rec.ATSScore,
		rec.ExperienceEnhanced,
		rec.CreatedAt,
	)
	if err != nil {
		return errors.NewIOError(errors.ErrCodeStorageFailed, "Failed to record build", err)
	}
	return nil
}

// Recent returns up to limit builds, newest first.
func (h *PGHistory) Recent(ctx context.Context, limit int) ([]types.BuildRecord, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	rows, err := h.DB.QueryContext(ctx, `
		SELECT build_ts, name, job_title, company, score, ats_score, experience_enhanced, created_at
		FROM builds
		ORDER BY created_at DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStorageFailed, "Failed to query build history", err)
	}
	defer rows.Close()

	var out []types.BuildRecord
	for rows.Next() {
		var rec types.BuildRecord
		if err := rows.Scan(
			&rec.Timestamp,
			&rec.Name,
			&rec.JobTitle,
			&rec.Company,
			&rec.Score,
			&rec.ATSScore,
			&rec.ExperienceEnhanced,
			&rec.CreatedAt,
		); err != nil {
			return nil, errors.NewIOError(errors.ErrCodeStorageFailed, "Failed to read build history", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewIOError(errors.ErrCodeStorageFailed, "Failed to read build history", err)
	}
	return out, nil
}

// DisabledHistory is used when no database is configured.
type DisabledHistory struct{}

func (DisabledHistory) Record(context.Context, types.BuildRecord) error { return nil }

func (DisabledHistory) Recent(context.Context, int) ([]types.BuildRecord, error) {
	return nil, errors.NewConfigError(errors.ErrCodeHistoryDisabled,
		"Build history requires storage.postgres.enabled", nil)
}
