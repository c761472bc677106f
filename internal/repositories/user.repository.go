package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roomcare/internal/database"
	. "roomcare/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	USER_CACHE_EXPIRY = 24 * time.Hour
	USER_CACHE_PREFIX = "user:"
)

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByCollegeID(ctx context.Context, collegeID string) (*User, error)
	Create(ctx context.Context, user *User) error
	Update(ctx context.Context, user *User) error
	FindSweeperByHostelAndFloor(ctx context.Context, hostelNumber string, floor int) (*User, error)
	FindAnySweeperByHostel(ctx context.Context, hostelNumber string) (*User, error)
	ListByHostel(ctx context.Context, hostelNumber string) ([]User, error)
	ListStudents(ctx context.Context) ([]User, error)
	CountByHostelAndRole(ctx context.Context, hostelNumber string, role Role) (int64, error)
	AssignSweeperToFloorStudents(ctx context.Context, sweeper *User) (int64, error)
}

type userRepository struct {
	db  database.DB
	log logger.Logger
}

func NewUserRepository(db database.DB) UserRepository {
	return &userRepository{
		db:  db,
		log: logger.New("userRepository"),
	}
}

func (r *userRepository) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	log := r.log.Function("GetByID")

	var user User
	if found, err := r.getCacheByID(ctx, id, &user); err == nil && found {
		return &user, nil
	}

	if err := r.db.SQLWithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get user by id", err, "id", id)
	}

	if err := r.addUserToCache(ctx, &user); err != nil {
		log.Warn("failed to add user to cache", "userID", id, "error", err)
	}

	return &user, nil
}

func (r *userRepository) GetByCollegeID(ctx context.Context, collegeID string) (*User, error) {
	log := r.log.Function("GetByCollegeID")

	var user User
	err := r.db.SQLWithContext(ctx).
		Preload("AssignedSweeper").
		First(&user, "college_id = ?", collegeID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to get user by college id", err, "collegeID", collegeID)
	}

	return &user, nil
}

func (r *userRepository) Create(ctx context.Context, user *User) error {
	log := r.log.Function("Create")

	if err := r.db.SQLWithContext(ctx).Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "collegeID", user.CollegeID)
	}

	return nil
}

func (r *userRepository) Update(ctx context.Context, user *User) error {
	log := r.log.Function("Update")

	if err := r.db.SQLWithContext(ctx).Save(user).Error; err != nil {
		return log.Err("failed to update user", err, "userID", user.ID)
	}

	if err := r.clearUserCache(ctx, user.ID); err != nil {
		log.Warn("failed to clear user cache after update", "userID", user.ID, "error", err)
	}

	return nil
}

func (r *userRepository) FindSweeperByHostelAndFloor(
	ctx context.Context,
	hostelNumber string,
	floor int,
) (*User, error) {
	log := r.log.Function("FindSweeperByHostelAndFloor")

	var sweeper User
	err := r.db.SQLWithContext(ctx).
		Where("role = ? AND hostel_number = ? AND floor_number = ?", RoleSweeper, hostelNumber, floor).
		Order("created_at ASC").
		First(&sweeper).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to find sweeper", err, "hostel", hostelNumber, "floor", floor)
	}

	return &sweeper, nil
}

// FindAnySweeperByHostel is the fallback when a student has no assigned
// sweeper. Ordering by creation time keeps the fallback deterministic.
func (r *userRepository) FindAnySweeperByHostel(
	ctx context.Context,
	hostelNumber string,
) (*User, error) {
	log := r.log.Function("FindAnySweeperByHostel")

	var sweeper User
	err := r.db.SQLWithContext(ctx).
		Where("role = ? AND hostel_number = ?", RoleSweeper, hostelNumber).
		Order("created_at ASC").
		First(&sweeper).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		return nil, log.Err("failed to find sweeper for hostel", err, "hostel", hostelNumber)
	}

	return &sweeper, nil
}

func (r *userRepository) ListByHostel(ctx context.Context, hostelNumber string) ([]User, error) {
	log := r.log.Function("ListByHostel")

	var users []User
	err := r.db.SQLWithContext(ctx).
		Preload("AssignedSweeper").
		Where("hostel_number = ?", hostelNumber).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, log.Err("failed to list users by hostel", err, "hostel", hostelNumber)
	}

	return users, nil
}

func (r *userRepository) ListStudents(ctx context.Context) ([]User, error) {
	log := r.log.Function("ListStudents")

	var students []User
	err := r.db.SQLWithContext(ctx).
		Where("role = ?", RoleStudent).
		Find(&students).Error
	if err != nil {
		return nil, log.Err("failed to list students", err)
	}

	return students, nil
}

func (r *userRepository) CountByHostelAndRole(
	ctx context.Context,
	hostelNumber string,
	role Role,
) (int64, error) {
	log := r.log.Function("CountByHostelAndRole")

	var count int64
	err := r.db.SQLWithContext(ctx).
		Model(&User{}).
		Where("hostel_number = ? AND role = ?", hostelNumber, role).
		Count(&count).Error
	if err != nil {
		return 0, log.Err("failed to count users", err, "hostel", hostelNumber, "role", role)
	}

	return count, nil
}

// AssignSweeperToFloorStudents backfills assigned_sweeper_id for every
// student in the sweeper's hostel whose room number starts with the
// sweeper's floor digit. Used when a sweeper registers after students.
func (r *userRepository) AssignSweeperToFloorStudents(
	ctx context.Context,
	sweeper *User,
) (int64, error) {
	log := r.log.Function("AssignSweeperToFloorStudents")

	if sweeper.FloorNumber == nil {
		return 0, log.Error("sweeper has no floor number", "sweeperID", sweeper.ID)
	}

	result := r.db.SQLWithContext(ctx).
		Model(&User{}).
		Where("role = ? AND hostel_number = ? AND room_number LIKE ?",
			RoleStudent, sweeper.HostelNumber, fmt.Sprintf("%d%%", *sweeper.FloorNumber)).
		Update("assigned_sweeper_id", sweeper.ID)
	if result.Error != nil {
		return 0, log.Err("failed to backfill assigned sweeper", result.Error,
			"sweeperID", sweeper.ID, "hostel", sweeper.HostelNumber)
	}

	return result.RowsAffected, nil
}

func (r *userRepository) getCacheByID(ctx context.Context, id uuid.UUID, user *User) (bool, error) {
	cacheKey := USER_CACHE_PREFIX + id.String()
	return database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Get(user)
}

func (r *userRepository) addUserToCache(ctx context.Context, user *User) error {
	cacheKey := USER_CACHE_PREFIX + user.ID.String()
	return database.NewCacheBuilder(r.db.Cache.User, cacheKey).
		WithStruct(user).
		WithTTL(USER_CACHE_EXPIRY).
		WithContext(ctx).
		Set()
}

func (r *userRepository) clearUserCache(ctx context.Context, id uuid.UUID) error {
	cacheKey := USER_CACHE_PREFIX + id.String()
	return database.NewCacheBuilder(r.db.Cache.User, cacheKey).WithContext(ctx).Delete()
}
