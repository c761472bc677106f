package cleaningController

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	. "roomcare/internal/models"
	"roomcare/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CooldownPeriodDays is the minimum interval between a student's approved
// cleaning and their next eligible request.
const CooldownPeriodDays = 7

var (
	ErrNotFound           = errors.New("request not found")
	ErrRequestAlreadyOpen = errors.New("you already have a pending cleaning request")
	ErrNoSweeperAvailable = errors.New("no sweeper available for your hostel")
)

// CooldownError reports how many whole days remain before the student may
// submit again.
type CooldownError struct {
	DaysRemaining int
}

func (e *CooldownError) Error() string {
	return fmt.Sprintf("you can request cleaning after %d more days", e.DaysRemaining)
}

// Notifier is the outbox target. Dispatch failures must never roll back the
// lifecycle transition that produced the event.
type Notifier interface {
	CreateNotification(
		ctx context.Context,
		recipientID uuid.UUID,
		notificationType NotificationType,
		title, message string,
		data map[string]any,
		deliveryMethod DeliveryMethod,
	) (*Notification, error)
}

type txRunner interface {
	Execute(ctx context.Context, fn func(ctx context.Context, tx *gorm.DB) error) error
}

type notificationEvent struct {
	recipientID      uuid.UUID
	notificationType NotificationType
	title            string
	message          string
	data             map[string]any
}

type CleaningControllerInterface interface {
	SubmitRequest(ctx context.Context, student *User) (*CleaningRequest, error)
	MarkCleaned(ctx context.Context, sweeper *User, requestID uuid.UUID) (*CleaningRequest, error)
	ApproveCompletion(ctx context.Context, student *User, requestID uuid.UUID) (*CleaningRequest, error)
	GetHistory(ctx context.Context, actor *User) ([]CleaningRequest, error)
	GetPendingRooms(ctx context.Context, sweeper *User) ([]CleaningRequest, error)
	GetAllOpenRequests(ctx context.Context, admin *User) ([]CleaningRequest, error)
}

type CleaningController struct {
	requestRepo repositories.CleaningRequestRepository
	userRepo    repositories.UserRepository
	transaction txRunner
	notifier    Notifier
	log         logger.Logger
	now         func() time.Time
}

func New(
	requestRepo repositories.CleaningRequestRepository,
	userRepo repositories.UserRepository,
	transaction txRunner,
	notifier Notifier,
) *CleaningController {
	return &CleaningController{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		transaction: transaction,
		notifier:    notifier,
		log:         logger.New("cleaningController"),
		now:         time.Now,
	}
}

// SubmitRequest creates a new pending cleaning request for the student,
// snapshotting their current room and hostel. Eligibility is checked before
// any write: the 7-day cooldown since the last approved cleaning, then the
// one-open-request guard.
func (c *CleaningController) SubmitRequest(
	ctx context.Context,
	student *User,
) (*CleaningRequest, error) {
	log := c.log.Function("SubmitRequest")

	sweeper, err := c.resolveSweeper(ctx, student)
	if err != nil {
		return nil, err
	}

	lastApproved, err := c.requestRepo.GetLatestApprovedByStudent(ctx, student.ID)
	if err != nil {
		return nil, log.Err("failed to check cooldown", err, "studentID", student.ID)
	}

	if lastApproved != nil && lastApproved.ApprovedDate != nil {
		daysSince := c.now().Sub(*lastApproved.ApprovedDate).Hours() / 24
		if daysSince < CooldownPeriodDays {
			return nil, &CooldownError{
				DaysRemaining: int(math.Ceil(CooldownPeriodDays - daysSince)),
			}
		}
	}

	roomNumber := ""
	if student.RoomNumber != nil {
		roomNumber = *student.RoomNumber
	}

	request := &CleaningRequest{
		StudentID:    student.ID,
		SweeperID:    sweeper.ID,
		RoomNumber:   roomNumber,
		HostelNumber: student.HostelNumber,
		Status:       StatusPending,
		RequestDate:  c.now(),
	}

	err = c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		open, err := c.requestRepo.GetOpenByStudent(ctx, tx, student.ID)
		if err != nil {
			return err
		}
		if open != nil {
			return ErrRequestAlreadyOpen
		}

		return c.requestRepo.Create(ctx, tx, request)
	})
	if err != nil {
		// The partial unique index on open requests turns a lost race into a
		// duplicate key error, which means the same thing here.
		if errors.Is(err, ErrRequestAlreadyOpen) || errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrRequestAlreadyOpen
		}
		return nil, log.Err("failed to create cleaning request", err, "studentID", student.ID)
	}

	c.dispatchOutbox(ctx, []notificationEvent{
		{
			recipientID:      sweeper.ID,
			notificationType: NotificationCleaningRequested,
			title:            "New Cleaning Request",
			message: fmt.Sprintf(
				"New cleaning request from %s for room %s", student.Name, request.RoomNumber),
			data: map[string]any{"requestId": request.ID.String()},
		},
		{
			recipientID:      student.ID,
			notificationType: NotificationCleaningRequested,
			title:            "Cleaning Request Submitted",
			message: fmt.Sprintf(
				"Your cleaning request for room %s has been submitted to %s",
				request.RoomNumber, sweeper.Name),
			data: map[string]any{"requestId": request.ID.String()},
		},
	})

	return request, nil
}

// MarkCleaned transitions a request to completed. Only the assigned sweeper
// may do this, and only while the request is still open for work; every
// other combination reports not-found so request existence never leaks
// across sweepers.
func (c *CleaningController) MarkCleaned(
	ctx context.Context,
	sweeper *User,
	requestID uuid.UUID,
) (*CleaningRequest, error) {
	log := c.log.Function("MarkCleaned")

	var request *CleaningRequest
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		found, err := c.requestRepo.GetOpenForSweeper(ctx, tx, requestID, sweeper.ID)
		if err != nil {
			return err
		}

		now := c.now()
		found.Status = StatusCompleted
		found.CompletedDate = &now
		if err := c.requestRepo.Save(ctx, tx, found); err != nil {
			return err
		}

		request = found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to mark request cleaned", err, "requestID", requestID)
	}

	c.dispatchOutbox(ctx, []notificationEvent{
		{
			recipientID:      request.StudentID,
			notificationType: NotificationCleaningCompleted,
			title:            "Cleaning Completed - Approval Required",
			message: fmt.Sprintf(
				"%s has completed cleaning your room %s. Please approve if satisfied.",
				sweeper.Name, request.RoomNumber),
			data: map[string]any{"requestId": request.ID.String()},
		},
	})

	return request, nil
}

// ApproveCompletion is the terminal transition. The stamped approved date
// starts the next cooldown window.
func (c *CleaningController) ApproveCompletion(
	ctx context.Context,
	student *User,
	requestID uuid.UUID,
) (*CleaningRequest, error) {
	log := c.log.Function("ApproveCompletion")

	var request *CleaningRequest
	err := c.transaction.Execute(ctx, func(ctx context.Context, tx *gorm.DB) error {
		found, err := c.requestRepo.GetCompletedForStudent(ctx, tx, requestID, student.ID)
		if err != nil {
			return err
		}

		now := c.now()
		found.Status = StatusApproved
		found.ApprovedDate = &now
		if err := c.requestRepo.Save(ctx, tx, found); err != nil {
			return err
		}

		request = found
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, log.Err("failed to approve completion", err, "requestID", requestID)
	}

	c.dispatchOutbox(ctx, []notificationEvent{
		{
			recipientID:      request.SweeperID,
			notificationType: NotificationCleaningApproved,
			title:            "Cleaning Approved",
			message: fmt.Sprintf(
				"%s has approved your cleaning work for room %s. Great job!",
				student.Name, request.RoomNumber),
			data: map[string]any{"requestId": request.ID.String()},
		},
	})

	return request, nil
}

// GetHistory is role-scoped: students see their own requests, sweepers the
// requests assigned to them in their hostel, both newest first.
func (c *CleaningController) GetHistory(
	ctx context.Context,
	actor *User,
) ([]CleaningRequest, error) {
	switch actor.Role {
	case RoleStudent:
		return c.requestRepo.ListByStudent(ctx, actor.ID)
	case RoleSweeper:
		return c.requestRepo.ListBySweeper(ctx, actor.ID, actor.HostelNumber)
	default:
		return c.requestRepo.ListOpenByHostel(ctx, actor.HostelNumber)
	}
}

// GetPendingRooms is the sweeper's work queue, oldest first.
func (c *CleaningController) GetPendingRooms(
	ctx context.Context,
	sweeper *User,
) ([]CleaningRequest, error) {
	return c.requestRepo.ListOpenForWorkBySweeper(ctx, sweeper.ID, sweeper.HostelNumber)
}

// GetAllOpenRequests is the admin view of every unresolved request in the
// admin's hostel.
func (c *CleaningController) GetAllOpenRequests(
	ctx context.Context,
	admin *User,
) ([]CleaningRequest, error) {
	return c.requestRepo.ListOpenByHostel(ctx, admin.HostelNumber)
}

func (c *CleaningController) resolveSweeper(ctx context.Context, student *User) (*User, error) {
	log := c.log.Function("resolveSweeper")

	if student.AssignedSweeperID != nil {
		sweeper, err := c.userRepo.GetByID(ctx, *student.AssignedSweeperID)
		if err == nil {
			return sweeper, nil
		}
		log.Warn("assigned sweeper not resolvable, falling back",
			"studentID", student.ID, "sweeperID", *student.AssignedSweeperID, "error", err)
	}

	sweeper, err := c.userRepo.FindAnySweeperByHostel(ctx, student.HostelNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSweeperAvailable
		}
		return nil, log.Err("failed to resolve sweeper", err, "studentID", student.ID)
	}

	return sweeper, nil
}

// dispatchOutbox delivers the notifications collected during a transition
// after its write has committed. Failures are logged and swallowed.
func (c *CleaningController) dispatchOutbox(ctx context.Context, outbox []notificationEvent) {
	log := c.log.Function("dispatchOutbox")

	for _, event := range outbox {
		_, err := c.notifier.CreateNotification(
			ctx,
			event.recipientID,
			event.notificationType,
			event.title,
			event.message,
			event.data,
			DeliveryPush,
		)
		if err != nil {
			log.Er("failed to dispatch notification", err,
				"recipientID", event.recipientID, "type", event.notificationType)
		}
	}
}
