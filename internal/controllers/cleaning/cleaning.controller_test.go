package cleaningController

import (
	"context"
	"testing"
	"time"

	. "roomcare/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeTxRunner struct{}

func (f *fakeTxRunner) Execute(
	ctx context.Context,
	fn func(ctx context.Context, tx *gorm.DB) error,
) error {
	return fn(ctx, nil)
}

type sentNotification struct {
	recipientID      uuid.UUID
	notificationType NotificationType
	title            string
	message          string
}

type fakeNotifier struct {
	sent []sentNotification
}

func (f *fakeNotifier) CreateNotification(
	ctx context.Context,
	recipientID uuid.UUID,
	notificationType NotificationType,
	title, message string,
	data map[string]any,
	deliveryMethod DeliveryMethod,
) (*Notification, error) {
	f.sent = append(f.sent, sentNotification{
		recipientID:      recipientID,
		notificationType: notificationType,
		title:            title,
		message:          message,
	})
	return &Notification{RecipientID: recipientID, Type: notificationType}, nil
}

type fakeRequestRepo struct {
	requests  []*CleaningRequest
	createErr error
}

func (f *fakeRequestRepo) Create(ctx context.Context, tx *gorm.DB, request *CleaningRequest) error {
	if f.createErr != nil {
		return f.createErr
	}
	request.ID = uuid.New()
	f.requests = append(f.requests, request)
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
	for _, r := range f.requests {
		if r.StudentID == studentID && r.Status.IsOpen() {
			return r, nil
		}
	}
	return nil, nil
}

func (f *fakeRequestRepo) GetLatestApprovedByStudent(
	ctx context.Context,
	studentID uuid.UUID,
) (*CleaningRequest, error) {
	var latest *CleaningRequest
	for _, r := range f.requests {
		if r.StudentID != studentID || r.Status != StatusApproved {
			continue
		}
		if latest == nil || r.ApprovedDate.After(*latest.ApprovedDate) {
			latest = r
		}
	}
	return latest, nil
}

func (f *fakeRequestRepo) GetOpenForSweeper(
	ctx context.Context,
	tx *gorm.DB,
	requestID, sweeperID uuid.UUID,
) (*CleaningRequest, error) {
	for _, r := range f.requests {
		if r.ID == requestID && r.SweeperID == sweeperID && r.Status.IsOpenForWork() {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepo) GetCompletedForStudent(
	ctx context.Context,
	tx *gorm.DB,
	requestID, studentID uuid.UUID,
) (*CleaningRequest, error) {
	for _, r := range f.requests {
		if r.ID == requestID && r.StudentID == studentID && r.Status == StatusCompleted {
			return r, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeRequestRepo) ListByStudent(
	ctx context.Context,
	studentID uuid.UUID,
) ([]CleaningRequest, error) {
	var out []CleaningRequest
	for _, r := range f.requests {
		if r.StudentID == studentID {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListBySweeper(
	ctx context.Context,
	sweeperID uuid.UUID,
	hostelNumber string,
) ([]CleaningRequest, error) {
	var out []CleaningRequest
	for _, r := range f.requests {
		if r.SweeperID == sweeperID && r.HostelNumber == hostelNumber {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListOpenForWorkBySweeper(
	ctx context.Context,
	sweeperID uuid.UUID,
	hostelNumber string,
) ([]CleaningRequest, error) {
	var out []CleaningRequest
	for _, r := range f.requests {
		if r.SweeperID == sweeperID && r.HostelNumber == hostelNumber && r.Status.IsOpenForWork() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) ListOpenByHostel(
	ctx context.Context,
	hostelNumber string,
) ([]CleaningRequest, error) {
	var out []CleaningRequest
	for _, r := range f.requests {
		if r.HostelNumber == hostelNumber && r.Status.IsOpen() {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeRequestRepo) CountByHostelAndStatuses(
	ctx context.Context,
	hostelNumber string,
	statuses []RequestStatus,
) (int64, error) {
	var count int64
	for _, r := range f.requests {
		if r.HostelNumber != hostelNumber {
			continue
		}
		for _, s := range statuses {
			if r.Status == s {
				count++
				break
			}
		}
	}
	return count, nil
}

type fakeUserRepo struct {
	users map[uuid.UUID]*User
}

func newFakeUserRepo(users ...*User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[uuid.UUID]*User)}
	for _, u := range users {
		repo.users[u.ID] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByCollegeID(ctx context.Context, collegeID string) (*User, error) {
	for _, u := range f.users {
		if u.CollegeID == collegeID {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) Create(ctx context.Context, user *User) error {
	user.ID = uuid.New()
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserRepo) FindSweeperByHostelAndFloor(
	ctx context.Context,
	hostelNumber string,
	floor int,
) (*User, error) {
	for _, u := range f.users {
		if u.IsSweeper() && u.HostelNumber == hostelNumber &&
			u.FloorNumber != nil && *u.FloorNumber == floor {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindAnySweeperByHostel(
	ctx context.Context,
	hostelNumber string,
) (*User, error) {
	for _, u := range f.users {
		if u.IsSweeper() && u.HostelNumber == hostelNumber {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) ListByHostel(ctx context.Context, hostelNumber string) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if u.HostelNumber == hostelNumber {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) ListStudents(ctx context.Context) ([]User, error) {
	var out []User
	for _, u := range f.users {
		if u.IsStudent() {
			out = append(out, *u)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) CountByHostelAndRole(
	ctx context.Context,
	hostelNumber string,
	role Role,
) (int64, error) {
	var count int64
	for _, u := range f.users {
		if u.HostelNumber == hostelNumber && u.Role == role {
			count++
		}
	}
	return count, nil
}

func (f *fakeUserRepo) AssignSweeperToFloorStudents(
	ctx context.Context,
	sweeper *User,
) (int64, error) {
	return 0, nil
}

func stringPtr(s string) *string { return &s }

func newTestController(
	requestRepo *fakeRequestRepo,
	userRepo *fakeUserRepo,
	notifier *fakeNotifier,
	now time.Time,
) *CleaningController {
	return &CleaningController{
		requestRepo: requestRepo,
		userRepo:    userRepo,
		transaction: &fakeTxRunner{},
		notifier:    notifier,
		log:         logger.New("cleaningControllerTest"),
		now:         func() time.Time { return now },
	}
}

func newStudentAndSweeper() (*User, *User) {
	sweeper := &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Name:          "Ravi",
		Role:          RoleSweeper,
		HostelNumber:  "H1",
	}
	student := &User{
		BaseUUIDModel:     BaseUUIDModel{ID: uuid.New()},
		Name:              "Asha",
		Role:              RoleStudent,
		HostelNumber:      "H1",
		RoomNumber:        stringPtr("101"),
		AssignedSweeperID: &sweeper.ID,
	}
	return student, sweeper
}

func TestSubmitRequest_CreatesPendingRequest(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	requestRepo := &fakeRequestRepo{}
	notifier := &fakeNotifier{}
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	controller := newTestController(requestRepo, newFakeUserRepo(student, sweeper), notifier, now)

	request, err := controller.SubmitRequest(context.Background(), student)
	require.NoError(t, err)

	assert.Equal(t, StatusPending, request.Status)
	assert.Equal(t, student.ID, request.StudentID)
	assert.Equal(t, sweeper.ID, request.SweeperID)
	assert.Equal(t, "101", request.RoomNumber)
	assert.Equal(t, "H1", request.HostelNumber)
	assert.Equal(t, now, request.RequestDate)

	require.Len(t, notifier.sent, 2)
	assert.Equal(t, sweeper.ID, notifier.sent[0].recipientID)
	assert.Equal(t, NotificationCleaningRequested, notifier.sent[0].notificationType)
	assert.Equal(t, student.ID, notifier.sent[1].recipientID)
}

func TestSubmitRequest_Cooldown(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name              string
		approvedDaysAgo   time.Duration
		expectError       bool
		expectedRemaining int
	}{
		{
			name:              "one day after approval",
			approvedDaysAgo:   24 * time.Hour,
			expectError:       true,
			expectedRemaining: 6,
		},
		{
			name:              "six and a half days after approval",
			approvedDaysAgo:   156 * time.Hour,
			expectError:       true,
			expectedRemaining: 1,
		},
		{
			name:            "exactly seven days after approval",
			approvedDaysAgo: 7 * 24 * time.Hour,
			expectError:     false,
		},
		{
			name:            "well past the cooldown",
			approvedDaysAgo: 10 * 24 * time.Hour,
			expectError:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			student, sweeper := newStudentAndSweeper()
			approvedAt := now.Add(-tt.approvedDaysAgo)
			requestRepo := &fakeRequestRepo{
				requests: []*CleaningRequest{
					{
						BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
						StudentID:     student.ID,
						SweeperID:     sweeper.ID,
						Status:        StatusApproved,
						ApprovedDate:  &approvedAt,
					},
				},
			}

			controller := newTestController(
				requestRepo, newFakeUserRepo(student, sweeper), &fakeNotifier{}, now)

			_, err := controller.SubmitRequest(context.Background(), student)
			if tt.expectError {
				var cooldownErr *CooldownError
				require.ErrorAs(t, err, &cooldownErr)
				assert.Equal(t, tt.expectedRemaining, cooldownErr.DaysRemaining)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSubmitRequest_AlreadyOpen(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	requestRepo := &fakeRequestRepo{
		requests: []*CleaningRequest{
			{
				BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
				StudentID:     student.ID,
				SweeperID:     sweeper.ID,
				Status:        StatusPending,
			},
		},
	}
	notifier := &fakeNotifier{}

	controller := newTestController(
		requestRepo, newFakeUserRepo(student, sweeper), notifier, time.Now())

	_, err := controller.SubmitRequest(context.Background(), student)
	assert.ErrorIs(t, err, ErrRequestAlreadyOpen)
	assert.Empty(t, notifier.sent)
}

// Two submissions racing past the open-request read both reach the insert;
// the loser hits the one-open-request unique index and must surface the same
// error as the guard, without notifying anyone.
func TestSubmitRequest_LostRaceOnUniqueIndex(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	requestRepo := &fakeRequestRepo{createErr: gorm.ErrDuplicatedKey}
	notifier := &fakeNotifier{}

	controller := newTestController(
		requestRepo, newFakeUserRepo(student, sweeper), notifier, time.Now())

	_, err := controller.SubmitRequest(context.Background(), student)
	assert.ErrorIs(t, err, ErrRequestAlreadyOpen)
	assert.Empty(t, notifier.sent)
	assert.Empty(t, requestRepo.requests)
}

func TestSubmitRequest_NoSweeperAvailable(t *testing.T) {
	student, _ := newStudentAndSweeper()
	student.AssignedSweeperID = nil

	controller := newTestController(
		&fakeRequestRepo{}, newFakeUserRepo(student), &fakeNotifier{}, time.Now())

	_, err := controller.SubmitRequest(context.Background(), student)
	assert.ErrorIs(t, err, ErrNoSweeperAvailable)
}

func TestSubmitRequest_FallsBackToHostelSweeper(t *testing.T) {
	student, _ := newStudentAndSweeper()
	missingID := uuid.New()
	student.AssignedSweeperID = &missingID

	fallback := &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Name:          "Sunita",
		Role:          RoleSweeper,
		HostelNumber:  "H1",
	}

	controller := newTestController(
		&fakeRequestRepo{}, newFakeUserRepo(student, fallback), &fakeNotifier{}, time.Now())

	request, err := controller.SubmitRequest(context.Background(), student)
	require.NoError(t, err)
	assert.Equal(t, fallback.ID, request.SweeperID)
}

func TestMarkCleaned(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	now := time.Date(2025, 3, 11, 9, 0, 0, 0, time.UTC)
	request := &CleaningRequest{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		StudentID:     student.ID,
		SweeperID:     sweeper.ID,
		RoomNumber:    "101",
		HostelNumber:  "H1",
		Status:        StatusPending,
	}
	requestRepo := &fakeRequestRepo{requests: []*CleaningRequest{request}}
	notifier := &fakeNotifier{}

	controller := newTestController(requestRepo, newFakeUserRepo(student, sweeper), notifier, now)

	updated, err := controller.MarkCleaned(context.Background(), sweeper, request.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, updated.Status)
	require.NotNil(t, updated.CompletedDate)
	assert.Equal(t, now, *updated.CompletedDate)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, student.ID, notifier.sent[0].recipientID)
	assert.Equal(t, NotificationCleaningCompleted, notifier.sent[0].notificationType)
}

func TestMarkCleaned_WrongSweeper(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	otherSweeper := &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Role:          RoleSweeper,
		HostelNumber:  "H1",
	}
	request := &CleaningRequest{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		StudentID:     student.ID,
		SweeperID:     sweeper.ID,
		Status:        StatusPending,
	}
	requestRepo := &fakeRequestRepo{requests: []*CleaningRequest{request}}

	controller := newTestController(
		requestRepo, newFakeUserRepo(student, sweeper, otherSweeper), &fakeNotifier{}, time.Now())

	_, err := controller.MarkCleaned(context.Background(), otherSweeper, request.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMarkCleaned_AlreadyCompleted(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	request := &CleaningRequest{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		StudentID:     student.ID,
		SweeperID:     sweeper.ID,
		Status:        StatusCompleted,
	}
	requestRepo := &fakeRequestRepo{requests: []*CleaningRequest{request}}

	controller := newTestController(
		requestRepo, newFakeUserRepo(student, sweeper), &fakeNotifier{}, time.Now())

	_, err := controller.MarkCleaned(context.Background(), sweeper, request.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestApproveCompletion(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	now := time.Date(2025, 3, 12, 18, 0, 0, 0, time.UTC)
	request := &CleaningRequest{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		StudentID:     student.ID,
		SweeperID:     sweeper.ID,
		RoomNumber:    "101",
		HostelNumber:  "H1",
		Status:        StatusCompleted,
	}
	requestRepo := &fakeRequestRepo{requests: []*CleaningRequest{request}}
	notifier := &fakeNotifier{}

	controller := newTestController(requestRepo, newFakeUserRepo(student, sweeper), notifier, now)

	updated, err := controller.ApproveCompletion(context.Background(), student, request.ID)
	require.NoError(t, err)

	assert.Equal(t, StatusApproved, updated.Status)
	require.NotNil(t, updated.ApprovedDate)
	assert.Equal(t, now, *updated.ApprovedDate)

	require.Len(t, notifier.sent, 1)
	assert.Equal(t, sweeper.ID, notifier.sent[0].recipientID)
	assert.Equal(t, NotificationCleaningApproved, notifier.sent[0].notificationType)
}

func TestApproveCompletion_NotYetCompleted(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	request := &CleaningRequest{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		StudentID:     student.ID,
		SweeperID:     sweeper.ID,
		Status:        StatusPending,
	}
	requestRepo := &fakeRequestRepo{requests: []*CleaningRequest{request}}

	controller := newTestController(
		requestRepo, newFakeUserRepo(student, sweeper), &fakeNotifier{}, time.Now())

	_, err := controller.ApproveCompletion(context.Background(), student, request.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Full lifecycle: submit, clean, approve, then the cooldown blocks the next
// submission until seven days have passed.
func TestLifecycleRoundTrip(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	requestRepo := &fakeRequestRepo{}
	notifier := &fakeNotifier{}
	userRepo := newFakeUserRepo(student, sweeper)

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	controller := newTestController(requestRepo, userRepo, notifier, start)

	request, err := controller.SubmitRequest(context.Background(), student)
	require.NoError(t, err)

	// While the request is open, submitting again fails regardless of cooldown.
	_, err = controller.SubmitRequest(context.Background(), student)
	assert.ErrorIs(t, err, ErrRequestAlreadyOpen)

	_, err = controller.MarkCleaned(context.Background(), sweeper, request.ID)
	require.NoError(t, err)

	// Completed still counts as open for the student.
	_, err = controller.SubmitRequest(context.Background(), student)
	assert.ErrorIs(t, err, ErrRequestAlreadyOpen)

	controller.now = func() time.Time { return start.Add(2 * time.Hour) }
	_, err = controller.ApproveCompletion(context.Background(), student, request.ID)
	require.NoError(t, err)

	// Immediately after approval the cooldown applies.
	controller.now = func() time.Time { return start.Add(26 * time.Hour) }
	_, err = controller.SubmitRequest(context.Background(), student)
	var cooldownErr *CooldownError
	require.ErrorAs(t, err, &cooldownErr)
	assert.Equal(t, 6, cooldownErr.DaysRemaining)

	// A week after approval the student may request again.
	controller.now = func() time.Time { return start.Add(2*time.Hour + 7*24*time.Hour) }
	next, err := controller.SubmitRequest(context.Background(), student)
	require.NoError(t, err)
	assert.Equal(t, StatusPending, next.Status)

	// submit(2) + clean(1) + approve(1) + resubmit(2)
	assert.Len(t, notifier.sent, 6)
}

func TestGetHistory_RoleScoped(t *testing.T) {
	student, sweeper := newStudentAndSweeper()
	admin := &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Role:          RoleAdmin,
		HostelNumber:  "H1",
	}
	otherStudent := &User{
		BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
		Role:          RoleStudent,
		HostelNumber:  "H1",
		RoomNumber:    stringPtr("102"),
	}

	requestRepo := &fakeRequestRepo{
		requests: []*CleaningRequest{
			{
				BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
				StudentID:     student.ID,
				SweeperID:     sweeper.ID,
				HostelNumber:  "H1",
				Status:        StatusPending,
			},
			{
				BaseUUIDModel: BaseUUIDModel{ID: uuid.New()},
				StudentID:     otherStudent.ID,
				SweeperID:     sweeper.ID,
				HostelNumber:  "H1",
				Status:        StatusCompleted,
			},
		},
	}

	controller := newTestController(
		requestRepo, newFakeUserRepo(student, sweeper, admin, otherStudent),
		&fakeNotifier{}, time.Now())

	studentHistory, err := controller.GetHistory(context.Background(), student)
	require.NoError(t, err)
	assert.Len(t, studentHistory, 1)

	sweeperHistory, err := controller.GetHistory(context.Background(), sweeper)
	require.NoError(t, err)
	assert.Len(t, sweeperHistory, 2)

	adminHistory, err := controller.GetHistory(context.Background(), admin)
	require.NoError(t, err)
	assert.Len(t, adminHistory, 2)
}
