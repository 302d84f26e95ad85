package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/models"
)

type StockLogRepository interface {
	Create(l *models.StockLog) error
	List(from, to *time.Time, limit, offset int) ([]*models.StockLog, error)
	CountByProduct(productID string) (int, error)
}

type stockLogRepository struct {
	DB *sql.DB
}

func NewStockLogRepository(db *sql.DB) StockLogRepository {
	return &stockLogRepository{DB: db}
}

func (r *stockLogRepository) Create(l *models.StockLog) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	const q = `
		INSERT INTO stock_logs (id, product_id, user_id, change_amount, resulting_quantity, reason, reference, created_at)
		VALUES ($1, $2, $3, $4, $5, NULLIF($6,''), NULLIF($7,''), $8)
	`
	if _, err := r.DB.Exec(q,
		l.ID, l.ProductID, l.UserID, l.ChangeAmount, l.ResultingQuantity,
		l.Reason, l.Reference, l.CreatedAt,
	); err != nil {
		return fmt.Errorf("stock_log create: %w", err)
	}
	return nil
}

func (r *stockLogRepository) List(from, to *time.Time, limit, offset int) ([]*models.StockLog, error) {
	q := `
		SELECT l.id, l.product_id, p.name, l.user_id, COALESCE(u.username,''),
			l.change_amount, l.resulting_quantity, COALESCE(l.reason,''), COALESCE(l.reference,''), l.created_at
		FROM stock_logs l
		JOIN products p ON p.id = l.product_id
		LEFT JOIN users u ON u.id = l.user_id
		WHERE 1=1
	`
	args := []any{}
	if from != nil {
		args = append(args, *from)
		q += fmt.Sprintf(" AND l.created_at >= $%d", len(args))
	}
	if to != nil {
		args = append(args, *to)
		q += fmt.Sprintf(" AND l.created_at <= $%d", len(args))
	}
	q += fmt.Sprintf(" ORDER BY l.created_at DESC LIMIT %d OFFSET %d", limit, offset)

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("stock_log list: %w", err)
	}
	defer rows.Close()

	var out []*models.StockLog
	for rows.Next() {
		l := &models.StockLog{}
		if err := rows.Scan(
			&l.ID, &l.ProductID, &l.ProductName, &l.UserID, &l.Username,
			&l.ChangeAmount, &l.ResultingQuantity, &l.Reason, &l.Reference, &l.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("stock_log scan: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *stockLogRepository) CountByProduct(productID string) (int, error) {
	var n int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM stock_logs WHERE product_id = $1`, productID).Scan(&n); err != nil {
		return 0, fmt.Errorf("stock_log count: %w", err)
	}
	return n, nil
}
