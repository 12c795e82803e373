package token

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Repository persists tokens and attendance records in Postgres. It
// implements both TokenStore and RecordStore.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Insert writes a new live token row.
func (r *Repository) Insert(ctx context.Context, tok Token) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO qr_tokens (token, schedule_id, issued_at, expires_at)
		VALUES ($1, $2, $3, $4)
	`, tok.Value, tok.ScheduleID, tok.IssuedAt, tok.ExpiresAt)
	return err
}

// Get fetches a token row by exact value.
func (r *Repository) Get(ctx context.Context, value string) (Token, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT token, schedule_id, issued_at, expires_at
		FROM qr_tokens WHERE token = $1
	`, value)
	var tok Token
	if err := row.Scan(&tok.Value, &tok.ScheduleID, &tok.IssuedAt, &tok.ExpiresAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Token{}, ErrInvalidToken
		}
		return Token{}, err
	}
	return tok, nil
}

// Delete removes a token row. Deleting an already-deleted token is not an
// error; the losing side of a redemption race lands here.
func (r *Repository) Delete(ctx context.Context, value string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM qr_tokens WHERE token = $1`, value)
	return err
}

// InsertRecord writes a present record for the given day. The store's unique
// constraint on (student_id, schedule_id, session_date) surfaces duplicate
// scans as ErrAlreadyMarked.
func (r *Repository) InsertRecord(ctx context.Context, studentID, scheduleID string, day time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO attendance_records (student_id, schedule_id, session_date, status)
		VALUES ($1, $2, $3, 'present')
	`, studentID, scheduleID, day.Format("2006-01-02"))
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyMarked
	}
	return err
}
