package repositories

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/models"
)

type UserRepository interface {
	Create(user *models.User) error
	GetByID(id string) (*models.User, error)
	GetByEmail(email string) (*models.User, error)
	Update(user *models.User) error
	Delete(id string) error
	List(role string, limit, offset int) ([]*models.User, error)
	GetCount() (int, error)
	ListAdmins() ([]*models.User, error)

	SetPassword(id, passwordHash string) error

	// refresh helpers
	UpdateRefresh(userID, token string, expiresAt time.Time) error
	RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error)
	GetByRefreshToken(token string) (*models.User, error)
}

type userRepository struct {
	DB *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{DB: db}
}

const userColumns = `id, username, email, role, COALESCE(phone,''), is_active, COALESCE(password_hash,''), refresh_token, refresh_expires_at, refresh_revoked, created_at`

func scanUser(row *sql.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.Username, &u.Email, &u.Role, &u.Phone, &u.IsActive,
		&u.PasswordHash, &u.RefreshToken, &u.RefreshExpiresAt, &u.RefreshRevoked,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("user scan: %w", err)
	}
	return u, nil
}

func (r *userRepository) Create(user *models.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	user.Email = strings.ToLower(user.Email)
	const q = `
		INSERT INTO users (id, username, email, role, phone, is_active, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7,''), $8)
	`
	if _, err := r.DB.Exec(q,
		user.ID, user.Username, user.Email, user.Role,
		user.Phone, user.IsActive, user.PasswordHash, user.CreatedAt,
	); err != nil {
		return fmt.Errorf("user create: %w", err)
	}
	return nil
}

func (r *userRepository) GetByID(id string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.DB.QueryRow(q, id))
}

func (r *userRepository) GetByEmail(email string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`
	return scanUser(r.DB.QueryRow(q, email))
}

func (r *userRepository) Update(user *models.User) error {
	const q = `
		UPDATE users
		SET username = $2, email = $3, role = $4, phone = $5, is_active = $6
		WHERE id = $1
	`
	if _, err := r.DB.Exec(q,
		user.ID, user.Username, strings.ToLower(user.Email),
		user.Role, user.Phone, user.IsActive,
	); err != nil {
		return fmt.Errorf("user update: %w", err)
	}
	return nil
}

func (r *userRepository) Delete(id string) error {
	if _, err := r.DB.Exec(`DELETE FROM users WHERE id = $1`, id); err != nil {
		return fmt.Errorf("user delete: %w", err)
	}
	return nil
}

func (r *userRepository) List(role string, limit, offset int) ([]*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users`
	args := []any{}
	if role != "" {
		q += ` WHERE role = $1`
		args = append(args, role)
	}
	q += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("user list: %w", err)
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u := &models.User{}
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.Role, &u.Phone, &u.IsActive,
			&u.PasswordHash, &u.RefreshToken, &u.RefreshExpiresAt, &u.RefreshRevoked,
			&u.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("user list scan: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepository) GetCount() (int, error) {
	var n int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("user count: %w", err)
	}
	return n, nil
}

func (r *userRepository) ListAdmins() ([]*models.User, error) {
	return r.List("admin", 1000, 0)
}

func (r *userRepository) SetPassword(id, passwordHash string) error {
	if _, err := r.DB.Exec(`UPDATE users SET password_hash = $2 WHERE id = $1`, id, passwordHash); err != nil {
		return fmt.Errorf("user set password: %w", err)
	}
	return nil
}

func (r *userRepository) UpdateRefresh(userID, token string, expiresAt time.Time) error {
	const q = `
		UPDATE users
		SET refresh_token = $2, refresh_expires_at = $3, refresh_revoked = FALSE
		WHERE id = $1
	`
	if _, err := r.DB.Exec(q, userID, token, expiresAt); err != nil {
		return fmt.Errorf("user update refresh: %w", err)
	}
	return nil
}

// RotateRefresh swaps the stored refresh token atomically; the WHERE on the
// old token makes concurrent rotations lose cleanly.
func (r *userRepository) RotateRefresh(oldToken, newToken string, newExpiresAt time.Time) (*models.User, error) {
	q := `
		UPDATE users
		SET refresh_token = $2, refresh_expires_at = $3
		WHERE refresh_token = $1 AND refresh_revoked = FALSE
		RETURNING ` + userColumns
	return scanUser(r.DB.QueryRow(q, oldToken, newToken, newExpiresAt))
}

func (r *userRepository) GetByRefreshToken(token string) (*models.User, error) {
	q := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return scanUser(r.DB.QueryRow(q, token))
}
