package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"stockroom/internal/models"
	"stockroom/internal/services"
)

type ProductHandler struct {
	products *services.ProductService
}

func NewProductHandler(products *services.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// @Summary      Create a product
// @Tags         Products
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.Product
// @Router       /products [post]
func (h *ProductHandler) Create(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.products.Create(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *ProductHandler) GetByID(c *gin.Context) {
	p, err := h.products.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if p == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      List products
// @Tags         Products
// @Produce      json
// @Param        category  query  string  false  "Filter by category"
// @Param        supplier  query  string  false  "Filter by supplier"
// @Param        search    query  string  false  "Search in name/SKU/barcode"
// @Success      200  {object}  map[string]interface{}
// @Router       /products [get]
func (h *ProductHandler) List(c *gin.Context) {
	limit, offset := paging(c)
	filter := models.ProductFilter{
		Category: c.Query("category"),
		Supplier: c.Query("supplier"),
		Search:   c.Query("search"),
	}
	products, err := h.products.List(filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) LowStock(c *gin.Context) {
	products, err := h.products.ListLowStock()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"products": products})
}

func (h *ProductHandler) Update(c *gin.Context) {
	var p models.Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	p.ID = c.Param("id")
	editorID, _ := getUserAndRole(c)

	if err := h.products.Update(&p, editorID); err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *ProductHandler) Delete(c *gin.Context) {
	if err := h.products.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Product deleted"})
}

type adjustStockRequest struct {
	Change    int    `json:"change" binding:"required"`
	Reason    string `json:"reason"`
	Reference string `json:"reference"`
}

// @Summary      Adjust stock quantity
// @Description  Applies a signed delta, journals the movement, and fires low-stock alerts
// @Tags         Products
// @Accept       json
// @Produce      json
// @Param        id       path      string              true  "Product ID"
// @Param        request  body      adjustStockRequest  true  "Delta and reason"
// @Success      200      {object}  map[string]interface{}
// @Failure      404      {object}  map[string]string
// @Router       /products/{id}/adjust_stock [post]
func (h *ProductHandler) AdjustStock(c *gin.Context) {
	var req adjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := getUserAndRole(c)
	var actor *string
	if userID != "" {
		actor = &userID
	}

	product, entry, err := h.products.AdjustStock(c.Param("id"), req.Change, req.Reason, req.Reference, actor)
	if err != nil {
		if errors.Is(err, services.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Product not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"product": product, "log": entry})
}

// @Summary      Bulk import products from CSV or XLSX
// @Tags         Products
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV or XLSX with name,sku,category,purchase_price,selling_price,quantity,supplier columns"
// @Success      200   {object}  services.BulkImportResult
// @Router       /products/bulk_import [post]
func (h *ProductHandler) BulkImport(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}
	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	records, err := readTabular(f, fh.Filename)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	rows := make([]services.ProductImportRow, 0, len(records))
	for _, rec := range records {
		row := services.ProductImportRow{}
		if len(rec) > 0 {
			row.Name = rec[0]
		}
		if len(rec) > 1 {
			row.SKU = rec[1]
		}
		if len(rec) > 2 {
			row.Category = rec[2]
		}
		if len(rec) > 3 {
			row.PurchasePrice, _ = strconv.ParseFloat(rec[3], 64)
		}
		if len(rec) > 4 {
			row.SellingPrice, _ = strconv.ParseFloat(rec[4], 64)
		}
		if len(rec) > 5 {
			row.Quantity, _ = strconv.Atoi(rec[5])
		}
		if len(rec) > 6 {
			row.Supplier = rec[6]
		}
		rows = append(rows, row)
	}

	c.JSON(http.StatusOK, h.products.BulkImport(rows))
}
