package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"stockroom/internal/models"
	"stockroom/internal/repositories"
)

var (
	ErrProductNotFound = errors.New("product not found")
	ErrNotEnoughStock  = errors.New("not enough stock")
)

type ProductService struct {
	Repo     repositories.ProductRepository
	Logs     repositories.StockLogRepository
	Sales    repositories.SaleRepository
	Notifier *NotificationService
}

func NewProductService(
	repo repositories.ProductRepository,
	logs repositories.StockLogRepository,
	sales repositories.SaleRepository,
	notifier *NotificationService,
) *ProductService {
	return &ProductService{Repo: repo, Logs: logs, Sales: sales, Notifier: notifier}
}

func (s *ProductService) Create(p *models.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	if p.LowStockThreshold <= 0 {
		p.LowStockThreshold = 5
	}
	if p.ReorderQty <= 0 {
		p.ReorderQty = 10
	}
	return s.Repo.Create(p)
}

func (s *ProductService) GetByID(id string) (*models.Product, error) {
	return s.Repo.GetByID(id)
}

// Update tracks who changed the selling price, like a price audit trail.
func (s *ProductService) Update(p *models.Product, editorID string) error {
	existing, err := s.Repo.GetByID(p.ID)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrProductNotFound
	}

	priceChanged := (p.SellingPrice == nil) != (existing.SellingPrice == nil) ||
		(p.SellingPrice != nil && existing.SellingPrice != nil && *p.SellingPrice != *existing.SellingPrice)
	if priceChanged && editorID != "" {
		p.LastPriceUpdateBy = &editorID
	} else {
		p.LastPriceUpdateBy = existing.LastPriceUpdateBy
	}
	return s.Repo.Update(p)
}

func (s *ProductService) Delete(id string) error {
	return s.Repo.Delete(id)
}

func (s *ProductService) List(filter models.ProductFilter, limit, offset int) ([]*models.Product, error) {
	return s.Repo.List(filter, limit, offset)
}

func (s *ProductService) ListLowStock() ([]*models.Product, error) {
	return s.Repo.ListLowStock()
}

// AdjustStock applies a quantity delta, journals it, and fires low-stock
// notifications when the result is at or below the threshold.
func (s *ProductService) AdjustStock(productID string, change int, reason, reference string, userID *string) (*models.Product, *models.StockLog, error) {
	product, err := s.Repo.GetByID(productID)
	if err != nil {
		return nil, nil, err
	}
	if product == nil {
		return nil, nil, ErrProductNotFound
	}

	resulting, err := s.Repo.AdjustQuantity(productID, change)
	if err != nil {
		return nil, nil, err
	}
	product.Quantity = resulting

	entry := &models.StockLog{
		ProductID:         productID,
		ProductName:       product.Name,
		UserID:            userID,
		ChangeAmount:      change,
		ResultingQuantity: resulting,
		Reason:            reason,
		Reference:         reference,
	}
	if err := s.Logs.Create(entry); err != nil {
		return nil, nil, err
	}

	if s.Notifier != nil {
		s.Notifier.NotifyStockChanged(product, change)
		if product.IsLowStock() {
			s.Notifier.NotifyLowStock(product, reference)
		}
	}

	log.Printf("[stock][adjust] product=%s change=%+d resulting=%d reason=%q", productID, change, resulting, reason)
	return product, entry, nil
}

// RecordSale stores the sale and books the stock change through the normal
// adjustment path, so low-stock alerts fire here too.
func (s *ProductService) RecordSale(productID string, quantity int, unitPrice float64, userID *string) (*models.Sale, error) {
	if quantity <= 0 {
		return nil, fmt.Errorf("quantity must be positive")
	}
	product, err := s.Repo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.Quantity < quantity {
		return nil, ErrNotEnoughStock
	}
	if unitPrice <= 0 {
		if product.SellingPrice != nil {
			unitPrice = *product.SellingPrice
		} else {
			unitPrice = product.PurchasePrice
		}
	}

	sale := &models.Sale{
		ProductID:   productID,
		ProductName: product.Name,
		UserID:      userID,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		CreatedAt:   time.Now(),
	}
	if err := s.Sales.Create(sale); err != nil {
		return nil, err
	}

	if _, _, err := s.AdjustStock(productID, -quantity, "sale", sale.ID, userID); err != nil {
		return nil, err
	}
	return sale, nil
}

// BulkImportProducts mirrors the admin CSV/XLSX upload for products.
type ProductImportRow struct {
	Name          string
	SKU           string
	Category      string
	PurchasePrice float64
	SellingPrice  float64
	Quantity      int
	Supplier      string
}

func (s *ProductService) BulkImport(rows []ProductImportRow) *BulkImportResult {
	res := &BulkImportResult{Created: []map[string]any{}, Failed: []map[string]any{}}
	for i, row := range rows {
		if strings.TrimSpace(row.Name) == "" {
			res.Failed = append(res.Failed, map[string]any{"row": i + 1, "error": "missing name"})
			continue
		}
		p := &models.Product{
			Name:          row.Name,
			SKU:           row.SKU,
			Category:      row.Category,
			PurchasePrice: row.PurchasePrice,
			Quantity:      row.Quantity,
			Supplier:      row.Supplier,
		}
		if row.SellingPrice > 0 {
			sp := row.SellingPrice
			p.SellingPrice = &sp
		}
		if err := s.Create(p); err != nil {
			res.Failed = append(res.Failed, map[string]any{"row": i + 1, "name": row.Name, "error": err.Error()})
			continue
		}
		res.Created = append(res.Created, map[string]any{"id": p.ID, "name": p.Name})
	}
	res.CreatedCount = len(res.Created)
	return res
}
