package services

import (
	"encoding/json"
	"fmt"
	"log"

	"stockroom/internal/models"
	"stockroom/internal/repositories"
)

// NotificationHub is the fan-out side of the websocket layer; the concrete
// implementation lives in internal/realtime.
type NotificationHub interface {
	Push(userID string, v interface{})
	Broadcast(v interface{})
}

// NotificationService persists notifications and fans them out over the
// websocket hub. Email and Telegram alerts piggyback on the same events and
// never fail the caller.
type NotificationService struct {
	Repo     repositories.NotificationRepository
	Users    repositories.UserRepository
	Hub      NotificationHub
	Email    EmailService
	Telegram *TelegramService

	AdminEmail string
}

func NewNotificationService(
	repo repositories.NotificationRepository,
	users repositories.UserRepository,
	hub NotificationHub,
	email EmailService,
	telegram *TelegramService,
	adminEmail string,
) *NotificationService {
	return &NotificationService{
		Repo:       repo,
		Users:      users,
		Hub:        hub,
		Email:      email,
		Telegram:   telegram,
		AdminEmail: adminEmail,
	}
}

// Create stores the notification and pushes it to the hub. A nil userID
// means shop-wide broadcast.
func (s *NotificationService) Create(userID *string, ntype, title, message string, payload any) (*models.Notification, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		raw = []byte("{}")
	}
	n := &models.Notification{
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		Payload: raw,
	}
	if err := s.Repo.Create(n); err != nil {
		return nil, err
	}

	if s.Hub != nil {
		event := map[string]any{
			"type":       "notification",
			"notif_type": n.Type,
			"title":      n.Title,
			"message":    n.Message,
			"payload":    json.RawMessage(raw),
			"created_at": n.CreatedAt,
		}
		if userID == nil {
			s.Hub.Broadcast(event)
		} else {
			s.Hub.Push(*userID, event)
		}
	}
	return n, nil
}

// NotifyLowStock alerts every admin individually plus the broadcast group,
// and mirrors the alert to email/Telegram when configured.
func (s *NotificationService) NotifyLowStock(p *models.Product, reference string) {
	title := "Low stock: " + p.Name
	message := fmt.Sprintf("Product '%s' quantity is %d (threshold %d).", p.Name, p.Quantity, p.LowStockThreshold)
	payload := map[string]any{
		"product_id":   p.ID,
		"product_name": p.Name,
		"quantity":     p.Quantity,
		"threshold":    p.LowStockThreshold,
		"reference":    reference,
	}

	admins, err := s.Users.ListAdmins()
	if err != nil {
		log.Printf("[notify][low_stock] list admins: %v", err)
	}
	for _, admin := range admins {
		if _, err := s.Create(&admin.ID, models.NotifyLowStock, title, message, payload); err != nil {
			log.Printf("[notify][low_stock] create for admin %s: %v", admin.ID, err)
		}
	}
	if _, err := s.Create(nil, models.NotifyLowStock, title, message, payload); err != nil {
		log.Printf("[notify][low_stock] broadcast: %v", err)
	}

	if s.Email != nil && s.AdminEmail != "" {
		if err := s.Email.SendLowStockEmail(s.AdminEmail, p.Name, p.Quantity, p.LowStockThreshold); err != nil {
			log.Printf("[notify][low_stock] email: %v", err)
		}
	}
	if s.Telegram != nil {
		if err := s.Telegram.SendLowStockAlert(p.Name, p.Quantity, p.LowStockThreshold); err != nil {
			log.Printf("[notify][low_stock] telegram: %v", err)
		}
	}
}

// NotifyStockChanged pushes a live stock-change event to connected clients.
// Not persisted: the stock log is the durable record.
func (s *NotificationService) NotifyStockChanged(p *models.Product, change int) {
	if s.Hub == nil {
		return
	}
	s.Hub.Broadcast(map[string]any{
		"type":         "notification",
		"notif_type":   models.NotifyStockChanged,
		"product_id":   p.ID,
		"product_name": p.Name,
		"change":       change,
		"quantity":     p.Quantity,
	})
}

// NotifyAnomaly broadcasts detected anomalies to everyone.
func (s *NotificationService) NotifyAnomaly(message, level string) {
	if _, err := s.Create(nil, models.NotifyAnomaly, "Anomaly detected", message, map[string]any{"level": level}); err != nil {
		log.Printf("[notify][anomaly] broadcast: %v", err)
	}
}
