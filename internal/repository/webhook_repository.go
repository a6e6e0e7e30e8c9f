package repository

import (
	"errors"
	"time"

	"gorm.io/gorm"

	"sneakerflash/internal/models"
)

// WebhookRepository persists Ginee webhook deliveries and enforces
// event-level idempotency through the event ID unique index.
type WebhookRepository struct {
	db *gorm.DB
}

func NewWebhookRepository(db *gorm.DB) *WebhookRepository {
	return &WebhookRepository{db: db}
}

// EventExists reports whether a delivery with the given event ID was
// already recorded
func (r *WebhookRepository) EventExists(eventID string) (bool, error) {
	var count int64
	err := r.db.Model(&models.GineeWebhookEvent{}).Where("event_id = ?", eventID).Count(&count).Error
	return count > 0, err
}

// CreateEvent records an incoming delivery. A duplicate event ID surfaces
// as a database error from the unique index, which callers treat as a
// replay.
func (r *WebhookRepository) CreateEvent(event *models.GineeWebhookEvent) error {
	return r.db.Create(event).Error
}

// GetEventByID retrieves a recorded delivery by its Ginee event ID
func (r *WebhookRepository) GetEventByID(eventID string) (*models.GineeWebhookEvent, error) {
	var event models.GineeWebhookEvent
	err := r.db.Where("event_id = ?", eventID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

// MarkProcessed flags a delivery as successfully handled
func (r *WebhookRepository) MarkProcessed(eventID string) error {
	now := time.Now()
	return r.db.Model(&models.GineeWebhookEvent{}).
		Where("event_id = ?", eventID).
		Updates(map[string]interface{}{
			"processed":    true,
			"processed_at": now,
			"last_error":   nil,
		}).Error
}

// MarkFailed records the error a delivery's handler returned
func (r *WebhookRepository) MarkFailed(eventID string, handlerErr error) error {
	return r.db.Model(&models.GineeWebhookEvent{}).
		Where("event_id = ?", eventID).
		Update("last_error", handlerErr.Error()).Error
}

// ListUnprocessedEvents returns deliveries whose handlers failed, oldest
// first, for replay.
func (r *WebhookRepository) ListUnprocessedEvents(limit int) ([]models.GineeWebhookEvent, error) {
	var events []models.GineeWebhookEvent
	err := r.db.Where("processed = ?", false).Order("created_at ASC").Limit(limit).Find(&events).Error
	return events, err
}
