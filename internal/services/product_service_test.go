package services

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockroom/internal/models"
)

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[string]*models.Product
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{products: map[string]*models.Product{}}
}

func (r *fakeProductRepo) Create(p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) GetByID(id string) (*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, nil
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProductRepo) Update(p *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.products, id)
	return nil
}

func (r *fakeProductRepo) List(filter models.ProductFilter, limit, offset int) ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Product
	for _, p := range r.products {
		if filter.Category != "" && p.Category != filter.Category {
			continue
		}
		cp := *p
		out = append(out, &cp)
	}
	return out, nil
}

func (r *fakeProductRepo) ListLowStock() ([]*models.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Product
	for _, p := range r.products {
		if p.IsLowStock() {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeProductRepo) GetCount() (int, error) { return len(r.products), nil }

func (r *fakeProductRepo) AdjustQuantity(id string, delta int) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p := r.products[id]
	p.Quantity += delta
	return p.Quantity, nil
}

type fakeStockLogRepo struct {
	mu   sync.Mutex
	logs []*models.StockLog
}

func (r *fakeStockLogRepo) Create(l *models.StockLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	r.logs = append(r.logs, l)
	return nil
}

func (r *fakeStockLogRepo) List(from, to *time.Time, limit, offset int) ([]*models.StockLog, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.StockLog{}, r.logs...), nil
}

func (r *fakeStockLogRepo) CountByProduct(productID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, l := range r.logs {
		if l.ProductID == productID {
			n++
		}
	}
	return n, nil
}

type fakeSaleRepo struct {
	mu    sync.Mutex
	sales []*models.Sale
}

func (r *fakeSaleRepo) Create(s *models.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	s.TotalPrice = float64(s.Quantity) * s.UnitPrice
	r.sales = append(r.sales, s)
	return nil
}

func (r *fakeSaleRepo) List(limit, offset int) ([]*models.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]*models.Sale{}, r.sales...), nil
}

func (r *fakeSaleRepo) SoldSince(productID string, since time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, s := range r.sales {
		if s.ProductID == productID && !s.CreatedAt.Before(since) {
			n += s.Quantity
		}
	}
	return n, nil
}

func (r *fakeSaleRepo) TotalsSince(since time.Time) (int, float64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	revenue := 0.0
	for _, s := range r.sales {
		if !s.CreatedAt.Before(since) {
			count++
			revenue += s.TotalPrice
		}
	}
	return count, revenue, nil
}

type fakeNotificationRepo struct {
	mu      sync.Mutex
	created []*models.Notification
}

func (r *fakeNotificationRepo) Create(n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	r.created = append(r.created, n)
	return nil
}

func (r *fakeNotificationRepo) ListForUser(userID string, limit, offset int) ([]*models.Notification, error) {
	return nil, nil
}
func (r *fakeNotificationRepo) ListAll(limit, offset int) ([]*models.Notification, error) {
	return nil, nil
}
func (r *fakeNotificationRepo) MarkRead(id string) error { return nil }
func (r *fakeNotificationRepo) Delete(id string) error   { return nil }

type fakeHub struct {
	mu         sync.Mutex
	pushed     map[string]int
	broadcasts int
}

func newFakeHub() *fakeHub { return &fakeHub{pushed: map[string]int{}} }

func (h *fakeHub) Push(userID string, v interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.pushed[userID]++
}

func (h *fakeHub) Broadcast(v interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.broadcasts++
}

func newProductService(t *testing.T) (*ProductService, *fakeProductRepo, *fakeStockLogRepo, *fakeNotificationRepo, *fakeHub) {
	t.Helper()
	users := newFakeUserRepo()
	require.NoError(t, users.Create(&models.User{ID: "admin1", Email: "boss@example.com", Role: "admin"}))

	products := newFakeProductRepo()
	logs := &fakeStockLogRepo{}
	sales := &fakeSaleRepo{}
	notifRepo := &fakeNotificationRepo{}
	hub := newFakeHub()
	notifier := NewNotificationService(notifRepo, users, hub, nil, nil, "")

	svc := NewProductService(products, logs, sales, notifier)
	return svc, products, logs, notifRepo, hub
}

func TestAdjustStockJournalsMovement(t *testing.T) {
	svc, products, logs, _, _ := newProductService(t)
	p := &models.Product{Name: "Coffee Beans", Quantity: 50, LowStockThreshold: 5}
	require.NoError(t, svc.Create(p))

	userID := "u1"
	updated, entry, err := svc.AdjustStock(p.ID, -10, "damage", "", &userID)
	require.NoError(t, err)

	assert.Equal(t, 40, updated.Quantity)
	assert.Equal(t, -10, entry.ChangeAmount)
	assert.Equal(t, 40, entry.ResultingQuantity)
	assert.Equal(t, "damage", entry.Reason)
	require.Len(t, logs.logs, 1)

	stored, _ := products.GetByID(p.ID)
	assert.Equal(t, 40, stored.Quantity)
}

func TestAdjustStockFiresLowStockAlerts(t *testing.T) {
	svc, _, _, notifRepo, hub := newProductService(t)
	p := &models.Product{Name: "Tea", Quantity: 10, LowStockThreshold: 5}
	require.NoError(t, svc.Create(p))

	_, _, err := svc.AdjustStock(p.ID, -6, "sale", "", nil)
	require.NoError(t, err)

	// one per admin plus one broadcast
	require.Len(t, notifRepo.created, 2)
	assert.Equal(t, models.NotifyLowStock, notifRepo.created[0].Type)
	assert.Equal(t, 1, hub.pushed["admin1"])
	// one stock-changed event plus the low-stock broadcast
	assert.Equal(t, 2, hub.broadcasts)
}

func TestAdjustStockNoAlertAboveThreshold(t *testing.T) {
	svc, _, _, notifRepo, hub := newProductService(t)
	p := &models.Product{Name: "Tea", Quantity: 50, LowStockThreshold: 5}
	require.NoError(t, svc.Create(p))

	_, _, err := svc.AdjustStock(p.ID, -10, "sale", "", nil)
	require.NoError(t, err)

	// the live stock-changed event still goes out, nothing is persisted
	assert.Empty(t, notifRepo.created)
	assert.Equal(t, 1, hub.broadcasts)
}

func TestAdjustStockUnknownProduct(t *testing.T) {
	svc, _, _, _, _ := newProductService(t)
	_, _, err := svc.AdjustStock("missing", 5, "restock", "", nil)
	assert.ErrorIs(t, err, ErrProductNotFound)
}

func TestRecordSaleBooksStockAndRejectsOverdraft(t *testing.T) {
	svc, products, logs, _, _ := newProductService(t)
	price := 4.50
	p := &models.Product{Name: "Milk", Quantity: 8, LowStockThreshold: 2, SellingPrice: &price}
	require.NoError(t, svc.Create(p))

	sale, err := svc.RecordSale(p.ID, 3, 0, nil)
	require.NoError(t, err)
	assert.Equal(t, 4.50, sale.UnitPrice)
	assert.InDelta(t, 13.50, sale.TotalPrice, 0.001)

	stored, _ := products.GetByID(p.ID)
	assert.Equal(t, 5, stored.Quantity)
	require.Len(t, logs.logs, 1)
	assert.Equal(t, "sale", logs.logs[0].Reason)
	assert.Equal(t, sale.ID, logs.logs[0].Reference)

	_, err = svc.RecordSale(p.ID, 100, 0, nil)
	assert.ErrorIs(t, err, ErrNotEnoughStock)
}

func TestUpdateTracksPriceEditor(t *testing.T) {
	svc, products, _, _, _ := newProductService(t)
	old := 10.0
	p := &models.Product{Name: "Sugar", Quantity: 5, SellingPrice: &old}
	require.NoError(t, svc.Create(p))

	newPrice := 12.0
	edited := *p
	edited.SellingPrice = &newPrice
	require.NoError(t, svc.Update(&edited, "editor1"))

	stored, _ := products.GetByID(p.ID)
	require.NotNil(t, stored.LastPriceUpdateBy)
	assert.Equal(t, "editor1", *stored.LastPriceUpdateBy)

	// no price change keeps the previous auditor
	edited2 := *stored
	edited2.Name = "Brown Sugar"
	require.NoError(t, svc.Update(&edited2, "editor2"))
	stored, _ = products.GetByID(p.ID)
	assert.Equal(t, "editor1", *stored.LastPriceUpdateBy)
}

func TestBulkImportReportsPerRowFailures(t *testing.T) {
	svc, _, _, _, _ := newProductService(t)
	res := svc.BulkImport([]ProductImportRow{
		{Name: "A", PurchasePrice: 1.0, Quantity: 3},
		{Name: "", PurchasePrice: 2.0},
		{Name: "B", SellingPrice: 5.0},
	})
	assert.Equal(t, 2, res.CreatedCount)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, 2, res.Failed[0]["row"])
}
