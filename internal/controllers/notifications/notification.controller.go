package notificationController

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	cleaningController "roomcare/internal/controllers/cleaning"
	"roomcare/internal/events"
	. "roomcare/internal/models"
	"roomcare/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

var ErrNotFound = errors.New("notification not found")

type NotificationListResponse struct {
	Notifications []Notification `json:"notifications"`
	TotalPages    int            `json:"totalPages"`
	CurrentPage   int            `json:"currentPage"`
	UnreadCount   int64          `json:"unreadCount"`
}

type NotificationControllerInterface interface {
	CreateNotification(
		ctx context.Context,
		recipientID uuid.UUID,
		notificationType NotificationType,
		title, message string,
		data map[string]any,
		deliveryMethod DeliveryMethod,
	) (*Notification, error)
	GetNotifications(ctx context.Context, recipient *User, page, limit int, unreadOnly bool) (*NotificationListResponse, error)
	MarkRead(ctx context.Context, recipient *User, notificationID uuid.UUID) error
	MarkAllRead(ctx context.Context, recipient *User) error
	Delete(ctx context.Context, recipient *User, notificationID uuid.UUID) error
	RunDueDateSweep(ctx context.Context) error
}

type NotificationController struct {
	notificationRepo repositories.NotificationRepository
	requestRepo      repositories.CleaningRequestRepository
	userRepo         repositories.UserRepository
	eventBus         *events.EventBus
	log              logger.Logger
	now              func() time.Time
}

func New(
	notificationRepo repositories.NotificationRepository,
	requestRepo repositories.CleaningRequestRepository,
	userRepo repositories.UserRepository,
	eventBus *events.EventBus,
) *NotificationController {
	return &NotificationController{
		notificationRepo: notificationRepo,
		requestRepo:      requestRepo,
		userRepo:         userRepo,
		eventBus:         eventBus,
		log:              logger.New("notificationController"),
		now:              time.Now,
	}
}

// CreateNotification persists the notification and immediately attempts
// delivery. Delivery failures leave the notification unsent but are not
// surfaced to the caller's lifecycle operation.
func (c *NotificationController) CreateNotification(
	ctx context.Context,
	recipientID uuid.UUID,
	notificationType NotificationType,
	title, message string,
	data map[string]any,
	deliveryMethod DeliveryMethod,
) (*Notification, error) {
	log := c.log.Function("CreateNotification")

	notification := &Notification{
		RecipientID:    recipientID,
		Type:           notificationType,
		Title:          title,
		Message:        message,
		DeliveryMethod: deliveryMethod,
	}

	if data != nil {
		payload, err := json.Marshal(data)
		if err != nil {
			return nil, log.Err("failed to marshal notification data", err, "type", notificationType)
		}
		notification.Data = payload
	}

	if err := c.notificationRepo.Create(ctx, notification); err != nil {
		return nil, err
	}

	c.deliver(ctx, notification)
	c.publish(notification)

	return notification, nil
}

// deliver marks push notifications as sent; there is no external transport
// in this service. Email and SMS are intent-logging stubs.
func (c *NotificationController) deliver(ctx context.Context, notification *Notification) {
	log := c.log.Function("deliver")

	switch notification.DeliveryMethod {
	case DeliveryPush:
		notification.Sent = true
		if err := c.notificationRepo.Save(ctx, notification); err != nil {
			log.Er("failed to mark notification sent", err, "notificationID", notification.ID)
		}
	case DeliveryEmail:
		log.Info("email notification would be sent",
			"recipientID", notification.RecipientID, "title", notification.Title)
	case DeliverySMS:
		log.Info("sms notification would be sent",
			"recipientID", notification.RecipientID, "title", notification.Title)
	}
}

// publish pushes the notification onto the event bus so connected websocket
// clients receive it live. Best effort.
func (c *NotificationController) publish(notification *Notification) {
	if c.eventBus == nil {
		return
	}

	recipientID := notification.RecipientID
	err := c.eventBus.Publish(events.NOTIFICATION_CHANNEL, events.Event{
		Type:   events.NOTIFICATION,
		UserID: &recipientID,
		Data: map[string]any{
			"id":      notification.ID.String(),
			"type":    notification.Type,
			"title":   notification.Title,
			"message": notification.Message,
		},
	})
	if err != nil {
		c.log.Function("publish").
			Er("failed to publish notification event", err, "notificationID", notification.ID)
	}
}

func (c *NotificationController) GetNotifications(
	ctx context.Context,
	recipient *User,
	page, limit int,
	unreadOnly bool,
) (*NotificationListResponse, error) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	result, err := c.notificationRepo.ListByRecipient(ctx, recipient.ID, page, limit, unreadOnly)
	if err != nil {
		return nil, err
	}

	totalPages := int(math.Ceil(float64(result.Total) / float64(limit)))

	return &NotificationListResponse{
		Notifications: result.Notifications,
		TotalPages:    totalPages,
		CurrentPage:   page,
		UnreadCount:   result.UnreadCount,
	}, nil
}

func (c *NotificationController) MarkRead(
	ctx context.Context,
	recipient *User,
	notificationID uuid.UUID,
) error {
	err := c.notificationRepo.MarkRead(ctx, notificationID, recipient.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (c *NotificationController) MarkAllRead(ctx context.Context, recipient *User) error {
	return c.notificationRepo.MarkAllRead(ctx, recipient.ID)
}

func (c *NotificationController) Delete(
	ctx context.Context,
	recipient *User,
	notificationID uuid.UUID,
) error {
	err := c.notificationRepo.Delete(ctx, notificationID, recipient.ID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// RunDueDateSweep scans every student and emits due/overdue notifications.
// Safe to run more than once a day: a cleaning_due or reminder notification
// created since local midnight suppresses further emissions for that
// student. Per-student failures are logged and the sweep moves on.
func (c *NotificationController) RunDueDateSweep(ctx context.Context) error {
	log := c.log.Function("RunDueDateSweep")
	log.Info("Starting due-date sweep")

	students, err := c.userRepo.ListStudents(ctx)
	if err != nil {
		return log.Err("failed to list students for sweep", err)
	}

	swept := 0
	for i := range students {
		if err := c.sweepStudent(ctx, &students[i]); err != nil {
			log.Er("sweep failed for student, continuing", err, "studentID", students[i].ID)
			continue
		}
		swept++
	}

	log.Info("Due-date sweep completed", "students", len(students), "swept", swept)
	return nil
}

func (c *NotificationController) sweepStudent(ctx context.Context, student *User) error {
	lastApproved, err := c.requestRepo.GetLatestApprovedByStudent(ctx, student.ID)
	if err != nil {
		return err
	}
	if lastApproved == nil || lastApproved.ApprovedDate == nil {
		// New student, may request immediately, nothing is due.
		return nil
	}

	now := c.now()
	daysSince := now.Sub(*lastApproved.ApprovedDate).Hours() / 24

	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	alreadyNotified, err := c.notificationRepo.ExistsForRecipientSince(
		ctx,
		student.ID,
		[]NotificationType{NotificationCleaningDue, NotificationReminder},
		midnight,
	)
	if err != nil {
		return err
	}
	if alreadyNotified {
		return nil
	}

	roomNumber := ""
	if student.RoomNumber != nil {
		roomNumber = *student.RoomNumber
	}

	if int(math.Floor(daysSince)) == cleaningController.CooldownPeriodDays {
		_, err := c.CreateNotification(
			ctx,
			student.ID,
			NotificationCleaningDue,
			"Room Cleaning Due",
			fmt.Sprintf(
				"Your room %s is due for cleaning. You can now request a cleaning service.",
				roomNumber),
			nil,
			DeliveryPush,
		)
		return err
	}

	if daysSince > float64(cleaningController.CooldownPeriodDays) {
		daysOverdue := int(math.Floor(daysSince)) - cleaningController.CooldownPeriodDays
		_, err := c.CreateNotification(
			ctx,
			student.ID,
			NotificationReminder,
			fmt.Sprintf("Cleaning Overdue - %d day(s)", daysOverdue),
			fmt.Sprintf(
				"Your room %s cleaning is %d day(s) overdue. Please request cleaning service.",
				roomNumber, daysOverdue),
			nil,
			DeliveryPush,
		)
		return err
	}

	return nil
}
