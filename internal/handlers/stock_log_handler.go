package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"stockroom/internal/repositories"
)

type StockLogHandler struct {
	logs repositories.StockLogRepository
}

func NewStockLogHandler(logs repositories.StockLogRepository) *StockLogHandler {
	return &StockLogHandler{logs: logs}
}

// @Summary      List stock movements
// @Tags         StockLogs
// @Produce      json
// @Param        from  query  string  false  "RFC3339 lower bound"
// @Param        to    query  string  false  "RFC3339 upper bound"
// @Success      200   {object}  map[string]interface{}
// @Router       /stock_logs [get]
func (h *StockLogHandler) List(c *gin.Context) {
	limit, offset := paging(c)
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

	logs, err := h.logs.List(from, to, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"logs": logs})
}

func parseTimeQuery(c *gin.Context, key string) (*time.Time, error) {
	s := c.Query(key)
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		// date-only form is common from the UI
		t, err = time.Parse("2006-01-02", s)
		if err != nil {
			return nil, err
		}
	}
	return &t, nil
}
