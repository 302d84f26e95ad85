package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/models"
	"stockroom/internal/services"
)

const xlsxMIME = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	reports *services.ReportService
	email   services.EmailService
}

func NewReportHandler(reports *services.ReportService, email services.EmailService) *ReportHandler {
	return &ReportHandler{reports: reports, email: email}
}

// @Summary      Inventory report
// @Tags         Reports
// @Produce      application/octet-stream
// @Param        format  query  string  false  "xlsx (default) or pdf"
// @Router       /reports/inventory [get]
func (h *ReportHandler) Inventory(c *gin.Context) {
	filter := models.ProductFilter{
		Category: c.Query("category"),
		Supplier: c.Query("supplier"),
	}
	if c.Query("format") == "pdf" {
		data, err := h.reports.InventoryPDF(filter)
		h.deliver(c, "inventory", "pdf", data, err)
		return
	}
	data, err := h.reports.InventoryExcel(filter)
	h.deliver(c, "inventory", "xlsx", data, err)
}

// @Summary      Low stock report
// @Tags         Reports
// @Produce      application/octet-stream
// @Param        format  query  string  false  "xlsx (default) or pdf"
// @Router       /reports/low_stock [get]
func (h *ReportHandler) LowStock(c *gin.Context) {
	if c.Query("format") == "pdf" {
		data, err := h.reports.LowStockPDF()
		h.deliver(c, "low_stock", "pdf", data, err)
		return
	}
	data, err := h.reports.LowStockExcel()
	h.deliver(c, "low_stock", "xlsx", data, err)
}

// @Summary      Stock movement report
// @Tags         Reports
// @Produce      application/octet-stream
// @Param        from    query  string  false  "RFC3339 or YYYY-MM-DD lower bound"
// @Param        to      query  string  false  "RFC3339 or YYYY-MM-DD upper bound"
// @Param        format  query  string  false  "xlsx (default) or pdf"
// @Router       /reports/stock_logs [get]
func (h *ReportHandler) StockLogs(c *gin.Context) {
	from, err := parseTimeQuery(c, "from")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'from' timestamp"})
		return
	}
	to, err := parseTimeQuery(c, "to")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid 'to' timestamp"})
		return
	}
	if c.Query("format") == "pdf" {
		data, err := h.reports.StockLogsPDF(from, to)
		h.deliver(c, "stock_logs", "pdf", data, err)
		return
	}
	data, err := h.reports.StockLogsExcel(from, to)
	h.deliver(c, "stock_logs", "xlsx", data, err)
}

// deliver either downloads the report or mails it when ?email= is given.
func (h *ReportHandler) deliver(c *gin.Context, name, format string, data []byte, err error) {
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	contentType := xlsxMIME
	if format == "pdf" {
		contentType = "application/pdf"
	}
	filename := fmt.Sprintf("%s_%s.%s", name, time.Now().Format("20060102"), format)

	if to := c.Query("email"); to != "" && h.email != nil {
		subject := fmt.Sprintf("Report: %s", name)
		if err := h.email.SendReportEmail(to, subject, "Requested report attached.", filename, data, contentType); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not send the report"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Report sent", "to": to})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, contentType, data)
}
