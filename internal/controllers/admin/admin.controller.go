package adminController

import (
	"context"

	. "roomcare/internal/models"
	"roomcare/internal/repositories"

	logger "github.com/Bparsons0904/goLogger"
)

// Stats are scoped to the requesting admin's hostel; admins observe their
// own building, not the whole campus.
type Stats struct {
	TotalStudents     int64 `json:"totalStudents"`
	TotalSweepers     int64 `json:"totalSweepers"`
	PendingRequests   int64 `json:"pendingRequests"`
	CompletedRequests int64 `json:"completedRequests"`
}

type AdminControllerInterface interface {
	GetStats(ctx context.Context, admin *User) (*Stats, error)
	GetAllUsers(ctx context.Context, admin *User) ([]User, error)
}

type AdminController struct {
	userRepo    repositories.UserRepository
	requestRepo repositories.CleaningRequestRepository
	log         logger.Logger
}

func New(
	userRepo repositories.UserRepository,
	requestRepo repositories.CleaningRequestRepository,
) AdminControllerInterface {
	return &AdminController{
		userRepo:    userRepo,
		requestRepo: requestRepo,
		log:         logger.New("adminController"),
	}
}

func (c *AdminController) GetStats(ctx context.Context, admin *User) (*Stats, error) {
	log := c.log.Function("GetStats")

	totalStudents, err := c.userRepo.CountByHostelAndRole(ctx, admin.HostelNumber, RoleStudent)
	if err != nil {
		return nil, log.Err("failed to count students", err, "hostel", admin.HostelNumber)
	}

	totalSweepers, err := c.userRepo.CountByHostelAndRole(ctx, admin.HostelNumber, RoleSweeper)
	if err != nil {
		return nil, log.Err("failed to count sweepers", err, "hostel", admin.HostelNumber)
	}

	pending, err := c.requestRepo.CountByHostelAndStatuses(ctx, admin.HostelNumber, OpenStatuses)
	if err != nil {
		return nil, log.Err("failed to count open requests", err, "hostel", admin.HostelNumber)
	}

	completed, err := c.requestRepo.CountByHostelAndStatuses(
		ctx, admin.HostelNumber, []RequestStatus{StatusApproved})
	if err != nil {
		return nil, log.Err("failed to count approved requests", err, "hostel", admin.HostelNumber)
	}

	return &Stats{
		TotalStudents:     totalStudents,
		TotalSweepers:     totalSweepers,
		PendingRequests:   pending,
		CompletedRequests: completed,
	}, nil
}

func (c *AdminController) GetAllUsers(ctx context.Context, admin *User) ([]User, error) {
	return c.userRepo.ListByHostel(ctx, admin.HostelNumber)
}
