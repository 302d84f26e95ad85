package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"stockroom/internal/models"
)

type ProductRepository interface {
	Create(p *models.Product) error
	GetByID(id string) (*models.Product, error)
	Update(p *models.Product) error
	Delete(id string) error
	List(filter models.ProductFilter, limit, offset int) ([]*models.Product, error)
	ListLowStock() ([]*models.Product, error)
	GetCount() (int, error)

	// AdjustQuantity applies the delta in a single statement and returns the
	// resulting quantity, so two racing adjustments cannot lose an update.
	AdjustQuantity(id string, delta int) (int, error)
}

type productRepository struct {
	DB *sql.DB
}

func NewProductRepository(db *sql.DB) ProductRepository {
	return &productRepository{DB: db}
}

const productColumns = `id, COALESCE(sku,''), name, COALESCE(category,''), COALESCE(description,''),
	purchase_price, selling_price, quantity, COALESCE(supplier,''), COALESCE(barcode,''),
	low_stock_threshold, reorder_qty, last_price_updated_by, created_at, updated_at`

func scanProductRow(scan func(dest ...any) error) (*models.Product, error) {
	p := &models.Product{}
	err := scan(
		&p.ID, &p.SKU, &p.Name, &p.Category, &p.Description,
		&p.PurchasePrice, &p.SellingPrice, &p.Quantity, &p.Supplier, &p.Barcode,
		&p.LowStockThreshold, &p.ReorderQty, &p.LastPriceUpdateBy,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("product scan: %w", err)
	}
	return p, nil
}

func (r *productRepository) Create(p *models.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now
	const q = `
		INSERT INTO products (id, sku, name, category, description, purchase_price, selling_price,
			quantity, supplier, barcode, low_stock_threshold, reorder_qty, created_at, updated_at)
		VALUES ($1, NULLIF($2,''), $3, NULLIF($4,''), NULLIF($5,''), $6, $7, $8, NULLIF($9,''), NULLIF($10,''), $11, $12, $13, $14)
	`
	if _, err := r.DB.Exec(q,
		p.ID, p.SKU, p.Name, p.Category, p.Description, p.PurchasePrice, p.SellingPrice,
		p.Quantity, p.Supplier, p.Barcode, p.LowStockThreshold, p.ReorderQty, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		return fmt.Errorf("product create: %w", err)
	}
	return nil
}

func (r *productRepository) GetByID(id string) (*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE id = $1`
	return scanProductRow(r.DB.QueryRow(q, id).Scan)
}

func (r *productRepository) Update(p *models.Product) error {
	const q = `
		UPDATE products
		SET sku = NULLIF($2,''), name = $3, category = NULLIF($4,''), description = NULLIF($5,''),
			purchase_price = $6, selling_price = $7, supplier = NULLIF($8,''), barcode = NULLIF($9,''),
			low_stock_threshold = $10, reorder_qty = $11, last_price_updated_by = $12, updated_at = NOW()
		WHERE id = $1
	`
	if _, err := r.DB.Exec(q,
		p.ID, p.SKU, p.Name, p.Category, p.Description,
		p.PurchasePrice, p.SellingPrice, p.Supplier, p.Barcode,
		p.LowStockThreshold, p.ReorderQty, p.LastPriceUpdateBy,
	); err != nil {
		return fmt.Errorf("product update: %w", err)
	}
	return nil
}

func (r *productRepository) Delete(id string) error {
	if _, err := r.DB.Exec(`DELETE FROM products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("product delete: %w", err)
	}
	return nil
}

func (r *productRepository) List(filter models.ProductFilter, limit, offset int) ([]*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE 1=1`
	args := []any{}
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.Category != "" {
		q += ` AND LOWER(category) = LOWER(` + arg(filter.Category) + `)`
	}
	if filter.Supplier != "" {
		q += ` AND LOWER(supplier) = LOWER(` + arg(filter.Supplier) + `)`
	}
	if filter.Search != "" {
		p := arg("%" + filter.Search + "%")
		q += ` AND (name ILIKE ` + p + ` OR sku ILIKE ` + p + ` OR barcode ILIKE ` + p + ` OR category ILIKE ` + p + `)`
	}
	q += fmt.Sprintf(` ORDER BY updated_at DESC LIMIT %d OFFSET %d`, limit, offset)

	rows, err := r.DB.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("product list: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func (r *productRepository) ListLowStock() ([]*models.Product, error) {
	q := `SELECT ` + productColumns + ` FROM products WHERE quantity <= low_stock_threshold ORDER BY quantity ASC`
	rows, err := r.DB.Query(q)
	if err != nil {
		return nil, fmt.Errorf("product low stock: %w", err)
	}
	defer rows.Close()
	return collectProducts(rows)
}

func collectProducts(rows *sql.Rows) ([]*models.Product, error) {
	var out []*models.Product
	for rows.Next() {
		p, err := scanProductRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *productRepository) GetCount() (int, error) {
	var n int
	if err := r.DB.QueryRow(`SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("product count: %w", err)
	}
	return n, nil
}

func (r *productRepository) AdjustQuantity(id string, delta int) (int, error) {
	const q = `
		UPDATE products
		SET quantity = quantity + $2, updated_at = NOW()
		WHERE id = $1
		RETURNING quantity
	`
	var quantity int
	if err := r.DB.QueryRow(q, id, delta).Scan(&quantity); err != nil {
		return 0, fmt.Errorf("product adjust quantity: %w", err)
	}
	return quantity, nil
}
