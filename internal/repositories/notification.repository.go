package repositories

import (
	"context"
	"time"

	"roomcare/internal/database"
	. "roomcare/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationPage struct {
	Notifications []Notification
	Total         int64
	UnreadCount   int64
}

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	Save(ctx context.Context, notification *Notification) error
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, page, limit int, unreadOnly bool) (*NotificationPage, error)
	MarkRead(ctx context.Context, notificationID, recipientID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipientID uuid.UUID) error
	Delete(ctx context.Context, notificationID, recipientID uuid.UUID) error
	ExistsForRecipientSince(ctx context.Context, recipientID uuid.UUID, types []NotificationType, since time.Time) (bool, error)
}

type notificationRepository struct {
	db  database.DB
	log logger.Logger
}

func NewNotificationRepository(db database.DB) NotificationRepository {
	return &notificationRepository{
		db:  db,
		log: logger.New("notificationRepository"),
	}
}

func (r *notificationRepository) Create(ctx context.Context, notification *Notification) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(notification).Error; err != nil {
		return log.Err("failed to create notification", err,
			"recipientID", notification.RecipientID, "type", notification.Type)
	}

	return nil
}

func (r *notificationRepository) Save(ctx context.Context, notification *Notification) error {
	log := r.log.Function("Save")

	if err := r.db.SQLWithContext(ctx).Save(notification).Error; err != nil {
		return log.Err("failed to save notification", err, "notificationID", notification.ID)
	}

	return nil
}

func (r *notificationRepository) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	page, limit int,
	unreadOnly bool,
) (*NotificationPage, error) {
	log := r.log.Function("ListByRecipient")

	query := r.db.SQLWithContext(ctx).
		Model(&Notification{}).
		Where("recipient_id = ?", recipientID)
	if unreadOnly {
		query = query.Where("read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, log.Err("failed to count notifications", err, "recipientID", recipientID)
	}

	var notifications []Notification
	err := query.
		Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&notifications).Error
	if err != nil {
		return nil, log.Err("failed to list notifications", err, "recipientID", recipientID)
	}

	var unread int64
	err = r.db.SQLWithContext(ctx).
		Model(&Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Count(&unread).Error
	if err != nil {
		return nil, log.Err("failed to count unread notifications", err, "recipientID", recipientID)
	}

	return &NotificationPage{
		Notifications: notifications,
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

func (r *notificationRepository) MarkRead(
	ctx context.Context,
	notificationID, recipientID uuid.UUID,
) error {
	log := r.log.Function("MarkRead")

	result := r.db.SQLWithContext(ctx).
		Model(&Notification{}).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Update("read", true)
	if result.Error != nil {
		return log.Err("failed to mark notification read", result.Error,
			"notificationID", notificationID)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	log := r.log.Function("MarkAllRead")

	err := r.db.SQLWithContext(ctx).
		Model(&Notification{}).
		Where("recipient_id = ? AND read = ?", recipientID, false).
		Update("read", true).Error
	if err != nil {
		return log.Err("failed to mark all notifications read", err, "recipientID", recipientID)
	}

	return nil
}

func (r *notificationRepository) Delete(
	ctx context.Context,
	notificationID, recipientID uuid.UUID,
) error {
	log := r.log.Function("Delete")

	result := r.db.SQLWithContext(ctx).
		Where("id = ? AND recipient_id = ?", notificationID, recipientID).
		Delete(&Notification{})
	if result.Error != nil {
		return log.Err("failed to delete notification", result.Error,
			"notificationID", notificationID)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}

	return nil
}

// ExistsForRecipientSince reports whether any notification of the given
// types was created for the recipient at or after the cutoff. The due-date
// sweep uses this as its once-per-day guard.
func (r *notificationRepository) ExistsForRecipientSince(
	ctx context.Context,
	recipientID uuid.UUID,
	types []NotificationType,
	since time.Time,
) (bool, error) {
	log := r.log.Function("ExistsForRecipientSince")

	var count int64
	err := r.db.SQLWithContext(ctx).
		Model(&Notification{}).
		Where("recipient_id = ? AND type IN ? AND created_at >= ?", recipientID, types, since).
		Count(&count).Error
	if err != nil {
		return false, log.Err("failed to check existing notifications", err,
			"recipientID", recipientID)
	}

	return count > 0, nil
}
