package handlers

import (
	"encoding/csv"
	"errors"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"stockroom/internal/models"
	"stockroom/internal/services"
)

type UserHandler struct {
	users services.UserService
}

func NewUserHandler(users services.UserService) *UserHandler {
	return &UserHandler{users: users}
}

type createUserRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

// @Summary      Create a user
// @Tags         Users
// @Accept       json
// @Produce      json
// @Success      201  {object}  models.User
// @Failure      409  {object}  map[string]string
// @Router       /users [post]
func (h *UserHandler) Create(c *gin.Context) {
	var req createUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user := &models.User{
		Email:    req.Email,
		Username: req.Username,
		Role:     req.Role,
		Phone:    req.Phone,
	}
	if err := h.users.Create(user, req.Password); err != nil {
		if errors.Is(err, services.ErrUserExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "User already exists"})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, user)
}

// @Summary      Current user profile
// @Tags         Users
// @Produce      json
// @Success      200  {object}  models.User
// @Router       /users/me [get]
func (h *UserHandler) Me(c *gin.Context) {
	userID, _ := getUserAndRole(c)
	user, err := h.users.GetByID(userID)
	if err != nil || user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) GetByID(c *gin.Context) {
	user, err := h.users.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if user == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *UserHandler) List(c *gin.Context) {
	limit, offset := paging(c)
	users, err := h.users.List(c.Query("role"), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

func (h *UserHandler) Count(c *gin.Context) {
	n, err := h.users.GetCount()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *UserHandler) Update(c *gin.Context) {
	existing, err := h.users.GetByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if existing == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	var req struct {
		Username *string `json:"username"`
		Role     *string `json:"role"`
		Phone    *string `json:"phone"`
		IsActive *bool   `json:"is_active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.Username != nil {
		existing.Username = *req.Username
	}
	if req.Role != nil {
		existing.Role = *req.Role
	}
	if req.Phone != nil {
		existing.Phone = *req.Phone
	}
	if req.IsActive != nil {
		existing.IsActive = *req.IsActive
	}

	if err := h.users.Update(existing); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, existing)
}

func (h *UserHandler) Delete(c *gin.Context) {
	if err := h.users.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}

func (h *UserHandler) SetPassword(c *gin.Context) {
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.users.SetPassword(c.Param("id"), req.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password updated"})
}

// @Summary      Bulk import users from CSV or XLSX
// @Tags         Users
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV or XLSX with email,username,role,password columns"
// @Success      200   {object}  services.BulkImportResult
// @Router       /users/bulk_import [post]
func (h *UserHandler) BulkImport(c *gin.Context) {
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

	rows := make([]services.UserImportRow, 0, len(records))
	for _, rec := range records {
		row := services.UserImportRow{}
		if len(rec) > 0 {
			row.Email = rec[0]
		}
		if len(rec) > 1 {
			row.Username = rec[1]
		}
		if len(rec) > 2 {
			row.Role = rec[2]
		}
		if len(rec) > 3 {
			row.Password = rec[3]
		}
		rows = append(rows, row)
	}

	res := h.users.BulkImport(rows)
	log.Printf("[users][bulk_import] file=%s created=%d failed=%d", fh.Filename, res.CreatedCount, len(res.Failed))
	c.JSON(http.StatusOK, res)
}

// readTabular parses an uploaded CSV or XLSX into rows of cells. The first
// row is treated as a header and skipped when it looks like one.
func readTabular(r io.Reader, filename string) ([][]string, error) {
	var records [][]string

	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		wb, err := excelize.OpenReader(r)
		if err != nil {
			return nil, errors.New("could not read xlsx file")
		}
		defer wb.Close()
		sheets := wb.GetSheetList()
		if len(sheets) == 0 {
			return nil, errors.New("xlsx file has no sheets")
		}
		records, err = wb.GetRows(sheets[0])
		if err != nil {
			return nil, errors.New("could not read xlsx rows")
		}
	default:
		cr := csv.NewReader(r)
		cr.FieldsPerRecord = -1
		var err error
		records, err = cr.ReadAll()
		if err != nil {
			return nil, errors.New("could not parse csv file")
		}
	}

	if len(records) > 0 && looksLikeHeader(records[0]) {
		records = records[1:]
	}
	return records, nil
}

func looksLikeHeader(row []string) bool {
	if len(row) == 0 {
		return false
	}
	first := strings.ToLower(strings.TrimSpace(row[0]))
	return first == "email" || first == "name" || first == "sku"
}
