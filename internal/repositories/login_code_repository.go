package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/models"
)

// LoginCodeRepository — persistence for one-time login codes plus the
// transactional consume step that marks a code used and provisions the
// account in one unit.
type LoginCodeRepository interface {
	Create(code *models.LoginCode) error
	Delete(id string) error
	GetNewestByEmailAndCode(email, code string) (*models.LoginCode, error)
	GetNewestByEmail(email string) (*models.LoginCode, error)
	CountRecentSends(email string, since time.Time) (int, error)

	// RegisterAttempt bumps attempts by one in a single statement and sets
	// locked_until to lockAt when the ceiling is crossed. Returns the new
	// attempt count and lockout, so two racing failures cannot under-count.
	RegisterAttempt(id string, lockAt time.Time) (int, *time.Time, error)

	// Consume re-checks the record under a row lock, marks it used,
	// finds or creates the account for email and links it — all in one
	// transaction. consumed == false means another caller won the race or
	// the record went stale between check and lock.
	Consume(id, email, username, defaultRole string, now time.Time) (user *models.User, consumed bool, err error)

	DeleteStale(usedOrOlderThan time.Time) (int64, error)
}

type loginCodeRepository struct {
	DB *sql.DB
}

func NewLoginCodeRepository(db *sql.DB) LoginCodeRepository {
	return &loginCodeRepository{DB: db}
}

const loginCodeColumns = `id, email, user_id, code, created_at, expires_at, used, attempts, max_attempts, locked_until`

func scanLoginCode(row *sql.Row) (*models.LoginCode, error) {
	var c models.LoginCode
	err := row.Scan(
		&c.ID, &c.Email, &c.UserID, &c.Code,
		&c.CreatedAt, &c.ExpiresAt, &c.Used,
		&c.Attempts, &c.MaxAttempts, &c.LockedUntil,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("login_code scan: %w", err)
	}
	return &c, nil
}

func (r *loginCodeRepository) Create(code *models.LoginCode) error {
	if code.ID == "" {
		code.ID = uuid.NewString()
	}
	const q = `
		INSERT INTO login_codes (id, email, user_id, code, created_at, expires_at, used, attempts, max_attempts, locked_until)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, 0, $7, NULL)
	`
	if _, err := r.DB.Exec(q,
		code.ID, strings.ToLower(code.Email), code.UserID, code.Code,
		code.CreatedAt, code.ExpiresAt, code.MaxAttempts,
	); err != nil {
		return fmt.Errorf("login_code create: %w", err)
	}
	return nil
}

func (r *loginCodeRepository) Delete(id string) error {
	if _, err := r.DB.Exec(`DELETE FROM login_codes WHERE id = $1`, id); err != nil {
		return fmt.Errorf("login_code delete: %w", err)
	}
	return nil
}

func (r *loginCodeRepository) GetNewestByEmailAndCode(email, code string) (*models.LoginCode, error) {
	q := `
		SELECT ` + loginCodeColumns + `
		FROM login_codes
		WHERE LOWER(email) = LOWER($1) AND code = $2
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanLoginCode(r.DB.QueryRow(q, email, code))
}

func (r *loginCodeRepository) GetNewestByEmail(email string) (*models.LoginCode, error) {
	q := `
		SELECT ` + loginCodeColumns + `
		FROM login_codes
		WHERE LOWER(email) = LOWER($1)
		ORDER BY created_at DESC
		LIMIT 1
	`
	return scanLoginCode(r.DB.QueryRow(q, email))
}

func (r *loginCodeRepository) CountRecentSends(email string, since time.Time) (int, error) {
	const q = `
		SELECT COUNT(*)
		FROM login_codes
		WHERE LOWER(email) = LOWER($1) AND created_at >= $2
	`
	var n int
	if err := r.DB.QueryRow(q, email, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("login_code count recent: %w", err)
	}
	return n, nil
}

func (r *loginCodeRepository) RegisterAttempt(id string, lockAt time.Time) (int, *time.Time, error) {
	const q = `
		UPDATE login_codes
		SET attempts = attempts + 1,
		    locked_until = CASE
		        WHEN attempts + 1 >= max_attempts AND locked_until IS NULL THEN $2
		        ELSE locked_until
		    END
		WHERE id = $1
		RETURNING attempts, locked_until
	`
	var attempts int
	var lockedUntil *time.Time
	if err := r.DB.QueryRow(q, id, lockAt).Scan(&attempts, &lockedUntil); err != nil {
		return 0, nil, fmt.Errorf("login_code register attempt: %w", err)
	}
	return attempts, lockedUntil, nil
}

func (r *loginCodeRepository) Consume(id, email, username, defaultRole string, now time.Time) (*models.User, bool, error) {
	tx, err := r.DB.Begin()
	if err != nil {
		return nil, false, fmt.Errorf("login_code consume begin: %w", err)
	}
	defer tx.Rollback()

	// Locking read: a second verifier for the same record blocks here and
	// then observes used = TRUE.
	var used bool
	var expiresAt time.Time
	var linkedUser *string
	err = tx.QueryRow(`
		SELECT used, expires_at, user_id
		FROM login_codes
		WHERE id = $1
		FOR UPDATE
	`, id).Scan(&used, &expiresAt, &linkedUser)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("login_code consume lock: %w", err)
	}
	if used || !now.Before(expiresAt) {
		return nil, false, nil
	}

	if _, err := tx.Exec(`UPDATE login_codes SET used = TRUE WHERE id = $1`, id); err != nil {
		return nil, false, fmt.Errorf("login_code consume mark used: %w", err)
	}

	user, err := findOrCreateUserTx(tx, email, username, defaultRole, now)
	if err != nil {
		return nil, false, err
	}

	if linkedUser == nil {
		if _, err := tx.Exec(`UPDATE login_codes SET user_id = $2 WHERE id = $1`, id, user.ID); err != nil {
			return nil, false, fmt.Errorf("login_code consume link user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, false, fmt.Errorf("login_code consume commit: %w", err)
	}
	return user, true, nil
}

func findOrCreateUserTx(tx *sql.Tx, email, username, defaultRole string, now time.Time) (*models.User, error) {
	u := &models.User{}
	err := tx.QueryRow(`
		SELECT id, username, email, role, COALESCE(phone,''), is_active, COALESCE(password_hash,''), created_at
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &u.Phone, &u.IsActive, &u.PasswordHash, &u.CreatedAt)
	if err == nil {
		return u, nil
	}
	if err != sql.ErrNoRows {
		return nil, fmt.Errorf("login_code consume find user: %w", err)
	}

	u = &models.User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     strings.ToLower(email),
		Role:      defaultRole,
		IsActive:  true,
		CreatedAt: now,
	}
	_, err = tx.Exec(`
		INSERT INTO users (id, username, email, role, is_active, created_at)
		VALUES ($1, $2, $3, $4, TRUE, $5)
	`, u.ID, u.Username, u.Email, u.Role, u.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("login_code consume create user: %w", err)
	}
	return u, nil
}

func (r *loginCodeRepository) DeleteStale(olderThan time.Time) (int64, error) {
	res, err := r.DB.Exec(`DELETE FROM login_codes WHERE used = TRUE OR created_at < $1`, olderThan)
	if err != nil {
		return 0, fmt.Errorf("login_code delete stale: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
