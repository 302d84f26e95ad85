package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"stockroom/internal/authz"
	"stockroom/internal/repositories"
)

type NotificationHandler struct {
	repo repositories.NotificationRepository
}

func NewNotificationHandler(repo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{repo: repo}
}

// @Summary      List notifications
// @Description  Staff see their own plus broadcasts; admins see everything
// @Tags         Notifications
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /notifications [get]
func (h *NotificationHandler) List(c *gin.Context) {
	limit, offset := paging(c)
	userID, role := getUserAndRole(c)

	var (
		out any
		err error
	)
	if authz.IsAdmin(role) {
		out, err = h.repo.ListAll(limit, offset)
	} else {
		out, err = h.repo.ListForUser(userID, limit, offset)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notifications": out})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.repo.MarkRead(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as read"})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.repo.Delete(c.Param("id")); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Notification deleted"})
}
