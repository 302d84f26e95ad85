package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/repositories"
	"stockroom/internal/services"
)

type SaleHandler struct {
	products *services.ProductService
	sales    repositories.SaleRepository
}

func NewSaleHandler(products *services.ProductService, sales repositories.SaleRepository) *SaleHandler {
	return &SaleHandler{products: products, sales: sales}
}

type recordSaleRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	Quantity  int     `json:"quantity" binding:"required"`
	UnitPrice float64 `json:"unit_price"`
}

// @Summary      Record a sale
// @Description  Stores the sale and books the stock decrease in one step
// @Tags         Sales
// @Accept       json
// @Produce      json
// @Param        request  body      recordSaleRequest  true  "Sale details"
// @Success      201      {object}  models.Sale
// @Failure      404      {object}  map[string]string
// @Failure      409      {object}  map[string]string
// @Router       /sales [post]
func (h *SaleHandler) Record(c *gin.Context) {
	var req recordSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := getUserAndRole(c)
	var actor *string
	if userID != "" {
		actor = &userID
	}

	sale, err := h.products.RecordSale(req.ProductID, req.Quantity, req.UnitPrice, actor)
	switch {
	case errors.Is(err, services.ErrProductNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	case errors.Is(err, services.ErrNotEnoughStock):
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough stock"})
		return
	case err != nil:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sale)
}

func (h *SaleHandler) List(c *gin.Context) {
	limit, offset := paging(c)
	sales, err := h.sales.List(limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sales": sales})
}
