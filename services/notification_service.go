package services

import (
	"encoding/json"
	"errors"
	"log"
	"time"

	"quill-notes/quill/broker"
	"quill-notes/quill/database"
	"quill-notes/quill/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationServiceInterface interface {
	Notify(db *database.Database, userID uuid.UUID, ntype models.NotificationType, title, message string, payload map[string]interface{}) (models.Notification, error)
	GetNotifications(db *database.Database, params map[string]interface{}) ([]models.Notification, int64, error)
	MarkRead(db *database.Database, id string, ownerID uuid.UUID) (models.Notification, error)
	MarkAllRead(db *database.Database, ownerID uuid.UUID) (int64, error)
	UnreadCount(db *database.Database, ownerID uuid.UUID) (int64, error)
	DeleteNotification(db *database.Database, id string, ownerID uuid.UUID) error
}

type NotificationService struct{}

func NewNotificationService() *NotificationService {
	return &NotificationService{}
}

// Notify persists the notification row, then attempts best-effort
// delivery: a realtime push to the recipient's connection and a publish to
// the broker for the email worker. Durability is the row alone; both side
// channels fail silently.
func (s *NotificationService) Notify(db *database.Database, userID uuid.UUID, ntype models.NotificationType, title, message string, payload map[string]interface{}) (models.Notification, error) {
	var payloadJSON json.RawMessage
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return models.Notification{}, err
		}
		payloadJSON = data
	}

	notification := models.Notification{
		ID:      uuid.New(),
		UserID:  userID,
		Type:    ntype,
		Title:   title,
		Message: message,
		Payload: payloadJSON,
	}

	if err := db.DB.Create(&notification).Error; err != nil {
		return models.Notification{}, err
	}

	s.push(&notification)
	s.enqueue(&notification)

	return notification, nil
}

// push delivers the notification over the recipient's live connection, if
// one exists. An offline recipient is not an error.
func (s *NotificationService) push(notification *models.Notification) {
	if WebSocketServiceInstance == nil {
		return
	}

	msg := models.ServerMessage{
		Type:    "notification",
		Event:   string(notification.Type),
		Payload: notification,
	}
	data, err := msg.ToJSON()
	if err != nil {
		log.Printf("Failed to serialize notification %s: %v", notification.ID, err)
		return
	}

	if !WebSocketServiceInstance.SendToUser(notification.UserID.String(), data) {
		log.Printf("User %s offline, notification %s stored for later retrieval", notification.UserID, notification.ID)
	}
}

// enqueue hands the notification to the broker for the out-of-process
// email worker.
func (s *NotificationService) enqueue(notification *models.Notification) {
	if broker.DefaultProducer == nil {
		return
	}

	data, err := notification.ToJSON()
	if err != nil {
		log.Printf("Failed to serialize notification %s for broker: %v", notification.ID, err)
		return
	}
	if err := broker.DefaultProducer.PublishMessage(broker.NotificationSubject, data); err != nil {
		log.Printf("Failed to publish notification %s to broker: %v", notification.ID, err)
	}
}

// GetNotifications lists a user's notifications, newest first, filterable
// by type and read state, paginated.
func (s *NotificationService) GetNotifications(db *database.Database, params map[string]interface{}) ([]models.Notification, int64, error) {
	ownerID, ok := params["user_id"].(uuid.UUID)
	if !ok {
		return nil, 0, ErrInvalidInput
	}

	query := db.DB.Model(&models.Notification{}).Where("user_id = ?", ownerID)

	if ntype, ok := params["type"].(string); ok && ntype != "" {
		query = query.Where("type = ?", ntype)
	}
	if isRead, ok := params["is_read"].(bool); ok {
		query = query.Where("is_read = ?", isRead)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := paginationFromParams(params)
	var notifications []models.Notification
	err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, 0, err
	}
	return notifications, total, nil
}

// MarkRead flips the read flag on one of the owner's notifications.
// Another user's notification is reported as not found rather than
// revealing its existence.
func (s *NotificationService) MarkRead(db *database.Database, id string, ownerID uuid.UUID) (models.Notification, error) {
	var notification models.Notification
	if err := db.DB.First(&notification, "id = ? AND user_id = ?", id, ownerID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Notification{}, ErrNotificationNotFound
		}
		return models.Notification{}, err
	}

	if notification.IsRead {
		return notification, nil
	}

	now := time.Now().UTC()
	notification.IsRead = true
	notification.ReadAt = &now
	if err := db.DB.Save(&notification).Error; err != nil {
		return models.Notification{}, err
	}
	return notification, nil
}

// MarkAllRead flips every unread notification for the owner and returns
// how many rows changed.
func (s *NotificationService) MarkAllRead(db *database.Database, ownerID uuid.UUID) (int64, error) {
	now := time.Now().UTC()
	result := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", ownerID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

func (s *NotificationService) UnreadCount(db *database.Database, ownerID uuid.UUID) (int64, error) {
	var count int64
	err := db.DB.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", ownerID, false).
		Count(&count).Error
	return count, err
}

func (s *NotificationService) DeleteNotification(db *database.Database, id string, ownerID uuid.UUID) error {
	result := db.DB.Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Notification{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

var NotificationServiceInstance NotificationServiceInterface = NewNotificationService()
