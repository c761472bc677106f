package repositories

import (
	"context"
	"errors"

	"roomcare/internal/database"
	. "roomcare/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CleaningRequestRepository interface {
	Create(ctx context.Context, tx *gorm.DB, request *CleaningRequest) error
	Save(ctx context.Context, tx *gorm.DB, request *CleaningRequest) error
	GetOpenByStudent(ctx context.Context, tx *gorm.DB, studentID uuid.UUID) (*CleaningRequest, error)
	GetLatestApprovedByStudent(ctx context.Context, studentID uuid.UUID) (*CleaningRequest, error)
	GetOpenForSweeper(ctx context.Context, tx *gorm.DB, requestID, sweeperID uuid.UUID) (*CleaningRequest, error)
	GetCompletedForStudent(ctx context.Context, tx *gorm.DB, requestID, studentID uuid.UUID) (*CleaningRequest, error)
	ListByStudent(ctx context.Context, studentID uuid.UUID) ([]CleaningRequest, error)
	ListBySweeper(ctx context.Context, sweeperID uuid.UUID, hostelNumber string) ([]CleaningRequest, error)
	ListOpenForWorkBySweeper(ctx context.Context, sweeperID uuid.UUID, hostelNumber string) ([]CleaningRequest, error)
	ListOpenByHostel(ctx context.Context, hostelNumber string) ([]CleaningRequest, error)
	CountByHostelAndStatuses(ctx context.Context, hostelNumber string, statuses []RequestStatus) (int64, error)
}

type cleaningRequestRepository struct {
	db  database.DB
	log logger.Logger
}

func NewCleaningRequestRepository(db database.DB) CleaningRequestRepository {
	return &cleaningRequestRepository{
		db:  db,
		log: logger.New("cleaningRequestRepository"),
	}
}

// session returns the transaction when one is supplied, falling back to the
// base connection for plain reads.
func (r *cleaningRequestRepository) session(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.SQLWithContext(ctx)
}

func (r *cleaningRequestRepository) Create(
	ctx context.Context,
	tx *gorm.DB,
	request *CleaningRequest,
) error {
	log := r.log.Function("Create")

	if err := r.session(ctx, tx).Create(request).Error; err != nil {
		return log.Err("failed to create cleaning request", err, "studentID", request.StudentID)
	}

	return nil
}

func (r *cleaningRequestRepository) Save(
	ctx context.Context,
	tx *gorm.DB,
	request *CleaningRequest,
) error {
	log := r.log.Function("Save")

	if err := r.session(ctx, tx).Save(request).Error; err != nil {
		return log.Err("failed to save cleaning request", err, "requestID", request.ID)
	}

	return nil
}

// GetOpenByStudent returns the student's unresolved request, or nil when the
// student has none. Anything not yet approved counts as open.
func (r *cleaningRequestRepository) GetOpenByStudent(
	ctx context.Context,
	tx *gorm.DB,
	studentID uuid.UUID,
) (*CleaningRequest, error) {
	log := r.log.Function("GetOpenByStudent")

	var request CleaningRequest
	err := r.session(ctx, tx).
		Where("student_id = ? AND status IN ?", studentID, OpenStatuses).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get open request", err, "studentID", studentID)
	}

	return &request, nil
}

// GetLatestApprovedByStudent returns the most recently approved request,
// or nil when the student has never had one. The cooldown window keys off
// this record's approved date.
func (r *cleaningRequestRepository) GetLatestApprovedByStudent(
	ctx context.Context,
	studentID uuid.UUID,
) (*CleaningRequest, error) {
	log := r.log.Function("GetLatestApprovedByStudent")

	var request CleaningRequest
	err := r.db.SQLWithContext(ctx).
		Where("student_id = ? AND status = ?", studentID, StatusApproved).
		Order("approved_date DESC").
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, log.Err("failed to get latest approved request", err, "studentID", studentID)
	}

	return &request, nil
}

func (r *cleaningRequestRepository) GetOpenForSweeper(
	ctx context.Context,
	tx *gorm.DB,
	requestID, sweeperID uuid.UUID,
) (*CleaningRequest, error) {
	log := r.log.Function("GetOpenForSweeper")

	var request CleaningRequest
	err := r.session(ctx, tx).
		Where("id = ? AND sweeper_id = ? AND status IN ?", requestID, sweeperID, OpenForWorkStatuses).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get request for sweeper", err, "requestID", requestID)
	}

	return &request, nil
}

func (r *cleaningRequestRepository) GetCompletedForStudent(
	ctx context.Context,
	tx *gorm.DB,
	requestID, studentID uuid.UUID,
) (*CleaningRequest, error) {
	log := r.log.Function("GetCompletedForStudent")

	var request CleaningRequest
	err := r.session(ctx, tx).
		Where("id = ? AND student_id = ? AND status = ?", requestID, studentID, StatusCompleted).
		First(&request).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get request for student", err, "requestID", requestID)
	}

	return &request, nil
}

func (r *cleaningRequestRepository) ListByStudent(
	ctx context.Context,
	studentID uuid.UUID,
) ([]CleaningRequest, error) {
	log := r.log.Function("ListByStudent")

	var requests []CleaningRequest
	err := r.db.SQLWithContext(ctx).
		Preload("Sweeper").
		Where("student_id = ?", studentID).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, log.Err("failed to list requests by student", err, "studentID", studentID)
	}

	return requests, nil
}

func (r *cleaningRequestRepository) ListBySweeper(
	ctx context.Context,
	sweeperID uuid.UUID,
	hostelNumber string,
) ([]CleaningRequest, error) {
	log := r.log.Function("ListBySweeper")

	var requests []CleaningRequest
	err := r.db.SQLWithContext(ctx).
		Preload("Student").
		Where("sweeper_id = ? AND hostel_number = ?", sweeperID, hostelNumber).
		Order("created_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, log.Err("failed to list requests by sweeper", err, "sweeperID", sweeperID)
	}

	return requests, nil
}

// ListOpenForWorkBySweeper is the sweeper's work queue, oldest first.
func (r *cleaningRequestRepository) ListOpenForWorkBySweeper(
	ctx context.Context,
	sweeperID uuid.UUID,
	hostelNumber string,
) ([]CleaningRequest, error) {
	log := r.log.Function("ListOpenForWorkBySweeper")

	var requests []CleaningRequest
	err := r.db.SQLWithContext(ctx).
		Preload("Student").
		Where("sweeper_id = ? AND hostel_number = ? AND status IN ?",
			sweeperID, hostelNumber, OpenForWorkStatuses).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, log.Err("failed to list pending requests", err, "sweeperID", sweeperID)
	}

	return requests, nil
}

// ListOpenByHostel is the admin view of everything not yet approved in a
// hostel, oldest first.
func (r *cleaningRequestRepository) ListOpenByHostel(
	ctx context.Context,
	hostelNumber string,
) ([]CleaningRequest, error) {
	log := r.log.Function("ListOpenByHostel")

	var requests []CleaningRequest
	err := r.db.SQLWithContext(ctx).
		Preload("Student").
		Preload("Sweeper").
		Where("hostel_number = ? AND status IN ?", hostelNumber, OpenStatuses).
		Order("created_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, log.Err("failed to list open requests", err, "hostel", hostelNumber)
	}

	return requests, nil
}

func (r *cleaningRequestRepository) CountByHostelAndStatuses(
	ctx context.Context,
	hostelNumber string,
	statuses []RequestStatus,
) (int64, error) {
	log := r.log.Function("CountByHostelAndStatuses")

	var count int64
	err := r.db.SQLWithContext(ctx).
		Model(&CleaningRequest{}).
		Where("hostel_number = ? AND status IN ?", hostelNumber, statuses).
		Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count requests", err, "hostel", hostelNumber)
	}

	return count, nil
}
