package models

import (
	"time"

	"github.com/google/uuid"
)

type RequestStatus string

const (
	StatusPending    RequestStatus = "pending"
	StatusInProgress RequestStatus = "in-progress"
	StatusCompleted  RequestStatus = "completed"
	StatusApproved   RequestStatus = "approved"
)

// OpenForWorkStatuses are the statuses a sweeper may still act on.
var OpenForWorkStatuses = []RequestStatus{StatusPending, StatusInProgress}

// OpenStatuses are the statuses that block a student from submitting a new
// request. A request only stops being "open" once the student approves it.
var OpenStatuses = []RequestStatus{StatusPending, StatusInProgress, StatusCompleted}

func (s RequestStatus) IsOpenForWork() bool {
	return s == StatusPending || s == StatusInProgress
}

func (s RequestStatus) IsOpen() bool {
	return s.IsOpenForWork() || s == StatusCompleted
}

type CleaningRequest struct {
	BaseUUIDModel
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"studentId"`
	Student   *User     `gorm:"foreignKey:StudentID"     json:"student,omitempty"`
	SweeperID uuid.UUID `gorm:"type:uuid;not null;index" json:"sweeperId"`
	Sweeper   *User     `gorm:"foreignKey:SweeperID"     json:"sweeper,omitempty"`

	// Snapshots of the student's placement at submission time. Deliberately
	// not live-linked to the user record.
	RoomNumber   string `gorm:"type:text;not null" json:"roomNumber"`
	HostelNumber string `gorm:"type:text;not null;index" json:"hostelNumber"`

	Status        RequestStatus `gorm:"type:text;not null;default:pending;index" json:"status"`
	RequestDate   time.Time     `gorm:"not null"       json:"requestDate"`
	CompletedDate *time.Time    `gorm:"type:timestamp" json:"completedDate,omitempty"`
	ApprovedDate  *time.Time    `gorm:"type:timestamp" json:"approvedDate,omitempty"`
}
