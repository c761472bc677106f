package notificationController

import (
	"context"
	"testing"
	"time"

	. "roomcare/internal/models"
	"roomcare/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeNotificationRepo struct {
	notifications []*Notification
	now           func() time.Time
}

func (f *fakeNotificationRepo) Create(ctx context.Context, notification *Notification) error {
	notification.ID = uuid.New()
	notification.CreatedAt = f.now()
	f.notifications = append(f.notifications, notification)
	return nil
}

func (f *fakeNotificationRepo) Save(ctx context.Context, notification *Notification) error {
	return nil
}

func (f *fakeNotificationRepo) ListByRecipient(
	ctx context.Context,
	recipientID uuid.UUID,
	page, limit int,
	unreadOnly bool,
) (*repositories.NotificationPage, error) {
	var matched []Notification
	var unread int64
	for _, n := range f.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if !n.Read {
			unread++
		}
		if unreadOnly && n.Read {
			continue
		}
		matched = append(matched, *n)
	}

	total := int64(len(matched))
	start := (page - 1) * limit
	if start > len(matched) {
		start = len(matched)
	}
	end := start + limit
	if end > len(matched) {
		end = len(matched)
	}

	return &repositories.NotificationPage{
		Notifications: matched[start:end],
		Total:         total,
		UnreadCount:   unread,
	}, nil
}

func (f *fakeNotificationRepo) MarkRead(
	ctx context.Context,
	notificationID, recipientID uuid.UUID,
) error {
	for _, n := range f.notifications {
		if n.ID == notificationID && n.RecipientID == recipientID {
			n.Read = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) MarkAllRead(ctx context.Context, recipientID uuid.UUID) error {
	for _, n := range f.notifications {
		if n.RecipientID == recipientID {
			n.Read = true
		}
	}
	return nil
}

func (f *fakeNotificationRepo) Delete(
	ctx context.Context,
	notificationID, recipientID uuid.UUID,
) error {
	for i, n := range f.notifications {
		if n.ID == notificationID && n.RecipientID == recipientID {
			f.notifications = append(f.notifications[:i], f.notifications[i+1:]...)
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (f *fakeNotificationRepo) ExistsForRecipientSince(
	ctx context.Context,
	recipientID uuid.UUID,
	types []NotificationType,
	since time.Time,
) (bool, error) {
	for _, n := range f.notifications {
		if n.RecipientID != recipientID || n.CreatedAt.Before(since) {
			continue
		}
		for _, t := range types {
			if n.Type == t {
				return true, nil
			}
		}
	}
	return false, nil
}

type fakeRequestRepo struct {
	latestApproved map[uuid.UUID]*CleaningRequest
	errFor         map[uuid.UUID]error
}

func (f *fakeRequestRepo) Create(ctx context.Context, tx *gorm.DB, request *CleaningRequest) error {
	return nil
}

func (f *fakeRequestRepo) Save(ctx context.Context, tx *gorm.DB, request *CleaningRequest) error {
	return nil
}

func (f *fakeRequestRepo) GetOpenByStudent(
	ctx context.Context,
	tx *gorm.DB,
	studentID uuid.UUID,
) (*CleaningRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) GetLatestApprovedByStudent(
	ctx context.Context,
	studentID uuid.UUID,
) (*CleaningRequest, error) {
	if err := f.errFor[studentID]; err != nil {
		return nil, err
	}
	return f.latestApproved[studentID], nil
}

func (f *fakeRequestRepo) GetOpenForSweeper(
	ctx context.Context,
	tx *gorm.DB,
	requestID, sweeperID uuid.UUID,
) (*CleaningRequest, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepo) GetCompletedForStudent(
	ctx context.Context,
	tx *gorm.DB,
	requestID, studentID uuid.UUID,
) (*CleaningRequest, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepo) ListByStudent(
	ctx context.Context,
	studentID uuid.UUID,
) ([]CleaningRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) ListBySweeper(
	ctx context.Context,
	sweeperID uuid.UUID,
	hostelNumber string,
) ([]CleaningRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) ListOpenForWorkBySweeper(
	ctx context.Context,
	sweeperID uuid.UUID,
	hostelNumber string,
) ([]CleaningRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) ListOpenByHostel(
	ctx context.Context,
	hostelNumber string,
) ([]CleaningRequest, error) {
	return nil, nil
}

func (f *fakeRequestRepo) CountByHostelAndStatuses(
	ctx context.Context,
	hostelNumber string,
	statuses []RequestStatus,
) (int64, error) {
	return 0, nil
}

type fakeUserRepo struct {
	students []User
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByCollegeID(ctx context.Context, collegeID string) (*User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *User) error { return nil }

func (f *fakeUserRepo) Update(ctx context.Context, user *User) error { return nil }

func (f *fakeUserRepo) FindSweeperByHostelAndFloor(
	ctx context.Context,
	hostelNumber string,
	floor int,
) (*User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindAnySweeperByHostel(
	ctx context.Context,
	hostelNumber string,
) (*User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ListByHostel(ctx context.Context, hostelNumber string) ([]User, error) {
	return nil, nil
}

func (f *fakeUserRepo) ListStudents(ctx context.Context) ([]User, error) {
	return f.students, nil
}

func (f *fakeUserRepo) CountByHostelAndRole(
	ctx context.Context,
	hostelNumber string,
	role Role,
) (int64, error) {
	return 0, nil
}

func (f *fakeUserRepo) AssignSweeperToFloorStudents(
	ctx context.Context,
	sweeper *User,
) (int64, error) {
	return 0, nil
}

func stringPtr(s string) *string { return &s }

func newSweepFixture(now time.Time) (*NotificationController, *fakeNotificationRepo, *fakeRequestRepo, *fakeUserRepo) {
	notificationRepo := &fakeNotificationRepo{now: func() time.Time { return now }}
	requestRepo := &fakeRequestRepo{latestApproved: make(map[uuid.UUID]*CleaningRequest)}
	userRepo := &fakeUserRepo{}

	controller := &NotificationController{
		notificationRepo: notificationRepo,
		requestRepo:      requestRepo,
		userRepo:         userRepo,
		log:              logger.New("notificationControllerTest"),
		now:              func() time.Time { return now },
	}

	return controller, notificationRepo, requestRepo, userRepo
}

func newStudent(room string) User {
	return User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Role:          RoleStudent,
		HostelNumber:  "H1",
		RoomNumber:    stringPtr(room),
	}
}

func TestCreateNotification_PushMarkedSent(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	controller, notificationRepo, _, _ := newSweepFixture(now)

	recipientID := uuid.New()
	notification, err := controller.CreateNotification(
		context.Background(),
		recipientID,
		NotificationCleaningRequested,
		"New Cleaning Request",
		"New cleaning request from Asha for room 101",
		map[string]any{"requestId": uuid.New().String()},
		DeliveryPush,
	)
	require.NoError(t, err)

	assert.True(t, notification.Sent)
	assert.False(t, notification.Read)
	assert.Equal(t, recipientID, notification.RecipientID)
	require.Len(t, notificationRepo.notifications, 1)
}

func TestRunDueDateSweep(t *testing.T) {
	now := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		approvedAt    *time.Time
		expectedType  NotificationType
		expectedTitle string
	}{
		{
			name:       "no approved cleaning yet",
			approvedAt: nil,
		},
		{
			name:       "approved three days ago",
			approvedAt: timePtr(now.Add(-3 * 24 * time.Hour)),
		},
		{
			name:          "due exactly at seven days",
			approvedAt:    timePtr(now.Add(-7 * 24 * time.Hour)),
			expectedType:  NotificationCleaningDue,
			expectedTitle: "Room Cleaning Due",
		},
		{
			name:          "still in the due day window",
			approvedAt:    timePtr(now.Add(-7*24*time.Hour - 12*time.Hour)),
			expectedType:  NotificationCleaningDue,
			expectedTitle: "Room Cleaning Due",
		},
		{
			name:          "two days overdue",
			approvedAt:    timePtr(now.Add(-9*24*time.Hour - 6*time.Hour)),
			expectedType:  NotificationReminder,
			expectedTitle: "Cleaning Overdue - 2 day(s)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			controller, notificationRepo, requestRepo, userRepo := newSweepFixture(now)

			student := newStudent("101")
			userRepo.students = []User{student}

			if tt.approvedAt != nil {
				requestRepo.latestApproved[student.ID] = &CleaningRequest{
					Status:       StatusApproved,
					ApprovedDate: tt.approvedAt,
				}
			}

			err := controller.RunDueDateSweep(context.Background())
			require.NoError(t, err)

			if tt.expectedType == "" {
				assert.Empty(t, notificationRepo.notifications)
				return
			}

			require.Len(t, notificationRepo.notifications, 1)
			assert.Equal(t, tt.expectedType, notificationRepo.notifications[0].Type)
			assert.Equal(t, tt.expectedTitle, notificationRepo.notifications[0].Title)
			assert.Equal(t, student.ID, notificationRepo.notifications[0].RecipientID)
		})
	}
}

func timePtr(t time.Time) *time.Time { return &t }

func TestRunDueDateSweep_IdempotentPerDay(t *testing.T) {
	now := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	controller, notificationRepo, requestRepo, userRepo := newSweepFixture(now)

	student := newStudent("101")
	userRepo.students = []User{student}
	requestRepo.latestApproved[student.ID] = &CleaningRequest{
		Status:       StatusApproved,
		ApprovedDate: timePtr(now.Add(-8 * 24 * time.Hour)),
	}

	require.NoError(t, controller.RunDueDateSweep(context.Background()))
	require.Len(t, notificationRepo.notifications, 1)

	// A repeated run on the same day must not notify again.
	require.NoError(t, controller.RunDueDateSweep(context.Background()))
	assert.Len(t, notificationRepo.notifications, 1)

	// The next day it fires again with an updated overdue count.
	nextDay := now.Add(24 * time.Hour)
	controller.now = func() time.Time { return nextDay }
	notificationRepo.now = func() time.Time { return nextDay }

	require.NoError(t, controller.RunDueDateSweep(context.Background()))
	require.Len(t, notificationRepo.notifications, 2)
	assert.Equal(t, "Cleaning Overdue - 2 day(s)", notificationRepo.notifications[1].Title)
}

func TestRunDueDateSweep_ContinuesPastFailures(t *testing.T) {
	now := time.Date(2025, 3, 17, 9, 0, 0, 0, time.UTC)
	controller, notificationRepo, requestRepo, userRepo := newSweepFixture(now)

	broken := newStudent("203")
	healthy := newStudent("101")
	userRepo.students = []User{broken, healthy}

	requestRepo.errFor = map[uuid.UUID]error{broken.ID: gorm.ErrInvalidDB}
	requestRepo.latestApproved[healthy.ID] = &CleaningRequest{
		Status:       StatusApproved,
		ApprovedDate: timePtr(now.Add(-8 * 24 * time.Hour)),
	}

	// A failing student is logged and skipped, the rest still get swept.
	err := controller.RunDueDateSweep(context.Background())
	require.NoError(t, err)

	require.Len(t, notificationRepo.notifications, 1)
	assert.Equal(t, healthy.ID, notificationRepo.notifications[0].RecipientID)
}

func TestGetNotifications_Pagination(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	controller, _, _, _ := newSweepFixture(now)

	recipient := newStudent("101")
	for range 25 {
		_, err := controller.CreateNotification(
			context.Background(),
			recipient.ID,
			NotificationReminder,
			"Reminder",
			"message",
			nil,
			DeliveryPush,
		)
		require.NoError(t, err)
	}

	response, err := controller.GetNotifications(context.Background(), &recipient, 1, 10, false)
	require.NoError(t, err)

	assert.Len(t, response.Notifications, 10)
	assert.Equal(t, 3, response.TotalPages)
	assert.Equal(t, 1, response.CurrentPage)
	assert.Equal(t, int64(25), response.UnreadCount)

	// Out-of-range inputs fall back to defaults and caps.
	response, err = controller.GetNotifications(context.Background(), &recipient, 0, 500, false)
	require.NoError(t, err)
	assert.Equal(t, 1, response.CurrentPage)
	assert.Len(t, response.Notifications, 25)
}

func TestMarkReadAndDelete_ScopedToRecipient(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	controller, notificationRepo, _, _ := newSweepFixture(now)

	owner := newStudent("101")
	stranger := newStudent("102")

	notification, err := controller.CreateNotification(
		context.Background(),
		owner.ID,
		NotificationReminder,
		"Reminder",
		"message",
		nil,
		DeliveryPush,
	)
	require.NoError(t, err)

	err = controller.MarkRead(context.Background(), &stranger, notification.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = controller.MarkRead(context.Background(), &owner, notification.ID)
	require.NoError(t, err)
	assert.True(t, notificationRepo.notifications[0].Read)

	err = controller.Delete(context.Background(), &stranger, notification.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = controller.Delete(context.Background(), &owner, notification.ID)
	require.NoError(t, err)
	assert.Empty(t, notificationRepo.notifications)
}
