package identity

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolation = "23505"

// Repository persists accounts and profiles in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// CreateAccount inserts the user row and its profile in one transaction.
func (r *Repository) CreateAccount(ctx context.Context, email, passwordHash, fullName, role, rollNumber, employeeID, department string) (string, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	id := uuid.NewString()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash)
		VALUES ($1, $2, $3)
	`, id, email, passwordHash); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return "", ErrEmailTaken
		}
		return "", err
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO profiles (id, full_name, role, roll_number, employee_id, department)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), NULLIF($6, ''))
	`, id, fullName, role, rollNumber, employeeID, department); err != nil {
		return "", err
	}
	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// CredentialsByEmail fetches the id and password hash for a login attempt.
func (r *Repository) CredentialsByEmail(ctx context.Context, email string) (string, string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM users WHERE email = $1
	`, email)
	var id, hash string
	if err := row.Scan(&id, &hash); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", "", ErrInvalidCredentials
		}
		return "", "", err
	}
	return id, hash, nil
}

// ProfileByID fetches the user's display profile from users_view.
func (r *Repository) ProfileByID(ctx context.Context, id string) (User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, email, role FROM users_view WHERE id = $1
	`, id)
	var u User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrProfileNotFound
		}
		return User{}, err
	}
	return u, nil
}

// MatchUser resolves a user by email plus the role-specific campus id:
// roll_number for students, employee_id for teachers.
func (r *Repository) MatchUser(ctx context.Context, email, userID, role string) (User, error) {
	idColumn := "employee_id"
	if role == "student" {
		idColumn = "roll_number"
	}
	query := fmt.Sprintf(`
		SELECT id, full_name, email, role FROM users_view
		WHERE email = $1 AND %s = $2 AND role = $3
	`, idColumn)
	row := r.db.QueryRowContext(ctx, query, email, userID, role)
	var u User
	if err := row.Scan(&u.ID, &u.FullName, &u.Email, &u.Role); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNoMatch
		}
		return User{}, err
	}
	return u, nil
}
