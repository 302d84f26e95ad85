package services

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"stockroom/internal/models"
	"stockroom/internal/pdf"
)

func newReportService(t *testing.T) (*ReportService, *fakeProductRepo, *fakeStockLogRepo) {
	t.Helper()
	products := newFakeProductRepo()
	logs := &fakeStockLogRepo{}
	return NewReportService(products, logs, pdf.NewReportGenerator("Test Shop")), products, logs
}

func TestInventoryExcelHasDataAndSummary(t *testing.T) {
	svc, products, _ := newReportService(t)
	selling := 9.99
	require.NoError(t, products.Create(&models.Product{
		Name: "Coffee Beans", SKU: "CB-1", Quantity: 10,
		PurchasePrice: 5, SellingPrice: &selling, LowStockThreshold: 3,
	}))

	data, err := svc.InventoryExcel(models.ProductFilter{})
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	assert.ElementsMatch(t, []string{"Inventory", "Summary"}, wb.GetSheetList())

	rows, err := wb.GetRows("Inventory")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "SKU", rows[0][0])
	assert.Equal(t, "CB-1", rows[1][0])
	assert.Equal(t, "Coffee Beans", rows[1][1])

	summary, err := wb.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, "generated_at", summary[0][0])
	assert.Equal(t, "total_products", summary[1][0])
	assert.Equal(t, "1", summary[1][1])
	assert.Equal(t, "total_stock_value", summary[2][0])
	assert.Equal(t, "50.00", summary[2][1])
}

func TestLowStockExcelFiltersProducts(t *testing.T) {
	svc, products, _ := newReportService(t)
	require.NoError(t, products.Create(&models.Product{Name: "Low", Quantity: 2, LowStockThreshold: 5}))
	require.NoError(t, products.Create(&models.Product{Name: "Fine", Quantity: 50, LowStockThreshold: 5}))

	data, err := svc.LowStockExcel()
	require.NoError(t, err)

	wb, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer wb.Close()

	rows, err := wb.GetRows("LowStock")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Low", rows[1][1])
}

func TestInventoryPDFRenders(t *testing.T) {
	svc, products, _ := newReportService(t)
	require.NoError(t, products.Create(&models.Product{Name: "Tea", Quantity: 4, PurchasePrice: 2}))

	data, err := svc.InventoryPDF(models.ProductFilter{})
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestLowStockPDFRenders(t *testing.T) {
	svc, products, _ := newReportService(t)
	require.NoError(t, products.Create(&models.Product{Name: "Low", Quantity: 1, LowStockThreshold: 5}))

	data, err := svc.LowStockPDF()
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}

func TestStockLogsPDFRenders(t *testing.T) {
	svc, _, logs := newReportService(t)
	require.NoError(t, logs.Create(&models.StockLog{
		ProductID: "p1", ProductName: "Tea", ChangeAmount: -3,
		ResultingQuantity: 7, Reason: "sale", CreatedAt: time.Now(),
	}))

	data, err := svc.StockLogsPDF(nil, nil)
	require.NoError(t, err)
	require.NotEmpty(t, data)
	assert.Equal(t, "%PDF", string(data[:4]))
}
