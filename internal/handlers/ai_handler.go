package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/services"
)

type AIHandler struct {
	ai *services.AIService
}

func NewAIHandler(ai *services.AIService) *AIHandler {
	return &AIHandler{ai: ai}
}

// @Summary      Generate inventory insights
// @Description  Runs the local model over current stock data for restocking advice
// @Tags         AI
// @Produce      json
// @Success      200  {object}  models.AIReport
// @Failure      503  {object}  map[string]string
// @Router       /ai/inventory_insights [post]
func (h *AIHandler) InventoryInsights(c *gin.Context) {
	rep, err := h.ai.InventoryInsights(c.Request.Context())
	if errors.Is(err, services.ErrAIUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI backend unavailable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

// @Summary      Generate a sales report
// @Tags         AI
// @Produce      json
// @Param        days  query  int  false  "Window in days (default 7)"
// @Success      200   {object}  models.AIReport
// @Failure      503   {object}  map[string]string
// @Router       /ai/sales_report [post]
func (h *AIHandler) SalesReport(c *gin.Context) {
	rep, err := h.ai.SalesReport(c.Request.Context(), queryInt(c, "days", 7))
	if errors.Is(err, services.ErrAIUnavailable) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "AI backend unavailable"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (h *AIHandler) ListReports(c *gin.Context) {
	limit, offset := paging(c)
	reports, err := h.ai.ListReports(c.Query("type"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"reports": reports})
}

// @Summary      Run anomaly detection
// @Description  Rule-based checks: negative stock and suspicious sale volumes
// @Tags         AI
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /ai/detect_anomalies [post]
func (h *AIHandler) DetectAnomalies(c *gin.Context) {
	found, err := h.ai.DetectAnomalies()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"anomalies": found, "count": len(found)})
}

func (h *AIHandler) ListAnomalies(c *gin.Context) {
	limit, _ := paging(c)
	anomalies, err := h.ai.ListAnomalies(limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"anomalies": anomalies})
}
