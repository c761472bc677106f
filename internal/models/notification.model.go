package models

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type NotificationType string

const (
	NotificationCleaningDue       NotificationType = "cleaning_due"
	NotificationCleaningRequested NotificationType = "cleaning_requested"
	NotificationCleaningCompleted NotificationType = "cleaning_completed"
	NotificationCleaningApproved  NotificationType = "cleaning_approved"
	NotificationReminder          NotificationType = "reminder"
)

type DeliveryMethod string

const (
	DeliveryPush  DeliveryMethod = "push"
	DeliveryEmail DeliveryMethod = "email"
	DeliverySMS   DeliveryMethod = "sms"
)

type Notification struct {
	BaseUUIDModel
	RecipientID    uuid.UUID        `gorm:"type:uuid;not null;index"          json:"recipientId"`
	Recipient      *User            `gorm:"foreignKey:RecipientID"            json:"recipient,omitempty"`
	Type           NotificationType `gorm:"type:text;not null;index"          json:"type"`
	Title          string           `gorm:"type:text;not null"                json:"title"`
	Message        string           `gorm:"type:text;not null"                json:"message"`
	Data           datatypes.JSON   `gorm:"type:jsonb"                        json:"data,omitempty"`
	Read           bool             `gorm:"type:bool;not null;default:false"  json:"read"`
	DeliveryMethod DeliveryMethod   `gorm:"type:text;not null;default:push"   json:"deliveryMethod"`
	Sent           bool             `gorm:"type:bool;not null;default:false"  json:"sent"`
}
