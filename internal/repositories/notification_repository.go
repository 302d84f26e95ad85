package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/models"
)

type NotificationRepository interface {
	Create(n *models.Notification) error
	// ListForUser returns the user's own notifications plus broadcasts.
	ListForUser(userID string, limit, offset int) ([]*models.Notification, error)
	ListAll(limit, offset int) ([]*models.Notification, error)
	MarkRead(id string) error
	Delete(id string) error
}

type notificationRepository struct {
	DB *sql.DB
}

func NewNotificationRepository(db *sql.DB) NotificationRepository {
	return &notificationRepository{DB: db}
}

func (r *notificationRepository) Create(n *models.Notification) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	payload := n.Payload
	if len(payload) == 0 {
		payload = []byte("{}")
	}
	const q = `
		INSERT INTO notifications (id, user_id, type, title, message, payload, is_read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)
	`
	if _, err := r.DB.Exec(q,
		n.ID, n.UserID, n.Type, n.Title, n.Message, []byte(payload), n.CreatedAt,
	); err != nil {
		return fmt.Errorf("notification create: %w", err)
	}
	return nil
}

const notificationColumns = `id, user_id, type, title, COALESCE(message,''), payload, is_read, created_at`

func (r *notificationRepository) ListForUser(userID string, limit, offset int) ([]*models.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 OR user_id IS NULL
		ORDER BY created_at DESC` + fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	rows, err := r.DB.Query(q, userID)
	if err != nil {
		return nil, fmt.Errorf("notification list: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func (r *notificationRepository) ListAll(limit, offset int) ([]*models.Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications
		ORDER BY created_at DESC` + fmt.Sprintf(" LIMIT %d OFFSET %d", limit, offset)
	rows, err := r.DB.Query(q)
	if err != nil {
		return nil, fmt.Errorf("notification list all: %w", err)
	}
	defer rows.Close()
	return collectNotifications(rows)
}

func collectNotifications(rows *sql.Rows) ([]*models.Notification, error) {
	var out []*models.Notification
	for rows.Next() {
		n := &models.Notification{}
		var payload []byte
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &payload, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("notification scan: %w", err)
		}
		n.Payload = payload
		out = append(out, n)
	}
	return out, rows.Err()
}

func (r *notificationRepository) MarkRead(id string) error {
	if _, err := r.DB.Exec(`UPDATE notifications SET is_read = TRUE WHERE id = $1`, id); err != nil {
		return fmt.Errorf("notification mark read: %w", err)
	}
	return nil
}

func (r *notificationRepository) Delete(id string) error {
	if _, err := r.DB.Exec(`DELETE FROM notifications WHERE id = $1`, id); err != nil {
		return fmt.Errorf("notification delete: %w", err)
	}
	return nil
}
