package services

import (
	"bytes"
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"stockroom/internal/models"
	"stockroom/internal/pdf"
	"stockroom/internal/repositories"
)

// ReportService renders inventory/low-stock/stock-log reports as XLSX and
// PDF attachments.
type ReportService struct {
	Products repositories.ProductRepository
	Logs     repositories.StockLogRepository
	PDF      *pdf.ReportGenerator
}

func NewReportService(products repositories.ProductRepository, logs repositories.StockLogRepository, gen *pdf.ReportGenerator) *ReportService {
	return &ReportService{Products: products, Logs: logs, PDF: gen}
}

var inventoryHeader = []string{"SKU", "Name", "Category", "Qty", "Purchase Price", "Selling Price", "Total Value", "Supplier", "Low Threshold"}

func inventoryRow(p *models.Product) []any {
	selling := ""
	if p.SellingPrice != nil {
		selling = fmt.Sprintf("%.2f", *p.SellingPrice)
	}
	return []any{
		p.SKU, p.Name, p.Category, p.Quantity,
		fmt.Sprintf("%.2f", p.PurchasePrice), selling,
		fmt.Sprintf("%.2f", p.TotalValue()), p.Supplier, p.LowStockThreshold,
	}
}

func (s *ReportService) InventoryExcel(filter models.ProductFilter) ([]byte, error) {
	products, err := s.Products.List(filter, 10000, 0)
	if err != nil {
		return nil, err
	}

	var totalValue float64
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, inventoryRow(p))
		totalValue += p.TotalValue()
	}

	summary := [][]any{
		{"generated_at", time.Now().Format(time.RFC3339)},
		{"total_products", len(products)},
		{"total_stock_value", fmt.Sprintf("%.2f", totalValue)},
	}
	return buildWorkbook("Inventory", inventoryHeader, rows, summary)
}

func (s *ReportService) InventoryPDF(filter models.ProductFilter) ([]byte, error) {
	products, err := s.Products.List(filter, 10000, 0)
	if err != nil {
		return nil, err
	}
	data := [][]string{inventoryHeader}
	for _, p := range products {
		data = append(data, toStrings(inventoryRow(p)))
	}
	return s.PDF.Table("Inventory Summary", data)
}

func (s *ReportService) LowStockExcel() ([]byte, error) {
	products, err := s.Products.ListLowStock()
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(products))
	for _, p := range products {
		rows = append(rows, inventoryRow(p))
	}
	summary := [][]any{
		{"generated_at", time.Now().Format(time.RFC3339)},
		{"low_stock_count", len(products)},
	}
	return buildWorkbook("LowStock", inventoryHeader, rows, summary)
}

func (s *ReportService) LowStockPDF() ([]byte, error) {
	products, err := s.Products.ListLowStock()
	if err != nil {
		return nil, err
	}
	data := [][]string{inventoryHeader}
	for _, p := range products {
		data = append(data, toStrings(inventoryRow(p)))
	}
	return s.PDF.Table("Low Stock Report", data)
}

var stockLogHeader = []string{"Date", "Product", "User", "Change", "Resulting Qty", "Reason", "Reference"}

func (s *ReportService) StockLogsExcel(from, to *time.Time) ([]byte, error) {
	logs, err := s.Logs.List(from, to, 10000, 0)
	if err != nil {
		return nil, err
	}
	rows := make([][]any, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, stockLogRow(l))
	}
	summary := [][]any{
		{"generated_at", time.Now().Format(time.RFC3339)},
		{"entries", len(logs)},
	}
	return buildWorkbook("StockLogs", stockLogHeader, rows, summary)
}

func (s *ReportService) StockLogsPDF(from, to *time.Time) ([]byte, error) {
	logs, err := s.Logs.List(from, to, 10000, 0)
	if err != nil {
		return nil, err
	}
	data := [][]string{stockLogHeader}
	for _, l := range logs {
		data = append(data, toStrings(stockLogRow(l)))
	}
	return s.PDF.Table("Stock Movement Log", data)
}

func stockLogRow(l *models.StockLog) []any {
	return []any{
		l.CreatedAt.Format("2006-01-02 15:04"),
		l.ProductName, l.Username,
		fmt.Sprintf("%+d", l.ChangeAmount), l.ResultingQuantity,
		l.Reason, l.Reference,
	}
}

// buildWorkbook writes a data sheet plus a small Summary sheet, the same
// shape the spreadsheet exports always had.
func buildWorkbook(sheet string, header []string, rows [][]any, summary [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("xlsx rename sheet: %w", err)
	}
	for col, name := range header {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return nil, fmt.Errorf("xlsx header: %w", err)
		}
	}
	for i, row := range rows {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+2)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return nil, fmt.Errorf("xlsx cell: %w", err)
			}
		}
	}

	if _, err := f.NewSheet("Summary"); err != nil {
		return nil, fmt.Errorf("xlsx summary sheet: %w", err)
	}
	for i, row := range summary {
		for col, v := range row {
			cell, _ := excelize.CoordinatesToCellName(col+1, i+1)
			if err := f.SetCellValue("Summary", cell, v); err != nil {
				return nil, fmt.Errorf("xlsx summary cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func toStrings(row []any) []string {
	out := make([]string, len(row))
	for i, v := range row {
		out[i] = fmt.Sprint(v)
	}
	return out
}
