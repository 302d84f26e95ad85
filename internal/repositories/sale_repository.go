package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/models"
)

type SaleRepository interface {
	Create(s *models.Sale) error
	List(limit, offset int) ([]*models.Sale, error)
	SoldSince(productID string, since time.Time) (int, error)
	TotalsSince(since time.Time) (count int, revenue float64, err error)
}

type saleRepository struct {
	DB *sql.DB
}

func NewSaleRepository(db *sql.DB) SaleRepository {
	return &saleRepository{DB: db}
}

func (r *saleRepository) Create(s *models.Sale) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.TotalPrice = float64(s.Quantity) * s.UnitPrice
	const q = `
		INSERT INTO sales (id, product_id, user_id, quantity, unit_price, total_price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	if _, err := r.DB.Exec(q,
		s.ID, s.ProductID, s.UserID, s.Quantity, s.UnitPrice, s.TotalPrice, s.CreatedAt,
	); err != nil {
		return fmt.Errorf("sale create: %w", err)
	}
	return nil
}

func (r *saleRepository) List(limit, offset int) ([]*models.Sale, error) {
	q := fmt.Sprintf(`
		SELECT s.id, s.product_id, p.name, s.user_id, s.quantity, s.unit_price, s.total_price, s.created_at
		FROM sales s
		JOIN products p ON p.id = s.product_id
		ORDER BY s.created_at DESC
		LIMIT %d OFFSET %d
	`, limit, offset)
	rows, err := r.DB.Query(q)
	if err != nil {
		return nil, fmt.Errorf("sale list: %w", err)
	}
	defer rows.Close()

	var out []*models.Sale
	for rows.Next() {
		s := &models.Sale{}
		if err := rows.Scan(&s.ID, &s.ProductID, &s.ProductName, &s.UserID, &s.Quantity, &s.UnitPrice, &s.TotalPrice, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("sale scan: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *saleRepository) SoldSince(productID string, since time.Time) (int, error) {
	const q = `
		SELECT COALESCE(SUM(quantity), 0)
		FROM sales
		WHERE product_id = $1 AND created_at >= $2
	`
	var n int
	if err := r.DB.QueryRow(q, productID, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("sale sold since: %w", err)
	}
	return n, nil
}

func (r *saleRepository) TotalsSince(since time.Time) (int, float64, error) {
	const q = `
		SELECT COUNT(*), COALESCE(SUM(total_price), 0)
		FROM sales
		WHERE created_at >= $1
	`
	var count int
	var revenue float64
	if err := r.DB.QueryRow(q, since).Scan(&count, &revenue); err != nil {
		return 0, 0, fmt.Errorf("sale totals: %w", err)
	}
	return count, revenue, nil
}
