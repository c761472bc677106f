package models

import (
	"strconv"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type Role string

const (
	RoleAdmin   Role = "admin"
	RoleStudent Role = "student"
	RoleSweeper Role = "sweeper"
)

func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleStudent, RoleSweeper:
		return true
	}
	return false
}

type User struct {
	BaseUUIDModel
	CollegeID    string `gorm:"type:text;not null;uniqueIndex" json:"collegeId"`
	Name         string `gorm:"type:text;not null"             json:"name"`
	Password     string `gorm:"type:text;not null"             json:"-"`
	Role         Role   `gorm:"type:text;not null;index"       json:"role"`
	HostelNumber string `gorm:"type:text;not null;index"       json:"hostelNumber"`

	// Role-conditional placement: students have a room, sweepers a floor.
	RoomNumber  *string `gorm:"type:text" json:"roomNumber,omitempty"`
	FloorNumber *int    `gorm:"type:int"  json:"floorNumber,omitempty"`

	AssignedSweeperID *uuid.UUID `gorm:"type:uuid;index"              json:"assignedSweeperId,omitempty"`
	AssignedSweeper   *User      `gorm:"foreignKey:AssignedSweeperID" json:"assignedSweeper,omitempty"`
}

func (u *User) IsAdmin() bool   { return u.Role == RoleAdmin }
func (u *User) IsStudent() bool { return u.Role == RoleStudent }
func (u *User) IsSweeper() bool { return u.Role == RoleSweeper }

// Floor derives a student's floor from the leading digit of their room
// number. Returns false for non-students and rooms without a numeric prefix.
func (u *User) Floor() (int, bool) {
	if !u.IsStudent() || u.RoomNumber == nil || *u.RoomNumber == "" {
		return 0, false
	}

	floor, err := strconv.Atoi((*u.RoomNumber)[:1])
	if err != nil {
		return 0, false
	}

	return floor, true
}

func (u *User) SetPassword(plaintext string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	u.Password = string(hash)
	return nil
}

func (u *User) CheckPassword(plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(plaintext)) == nil
}

// UserProfile is the public shape of a user, credential hash excluded.
type UserProfile struct {
	ID                string     `json:"id"`
	CollegeID         string     `json:"collegeId"`
	Name              string     `json:"name"`
	Role              Role       `json:"role"`
	HostelNumber      string     `json:"hostelNumber"`
	RoomNumber        *string    `json:"roomNumber,omitempty"`
	FloorNumber       *int       `json:"floorNumber,omitempty"`
	AssignedSweeperID *uuid.UUID `json:"assignedSweeperId,omitempty"`
}

func (u *User) ToProfile() UserProfile {
	return UserProfile{
		ID:                u.ID.String(),
		CollegeID:         u.CollegeID,
		Name:              u.Name,
		Role:              u.Role,
		HostelNumber:      u.HostelNumber,
		RoomNumber:        u.RoomNumber,
		FloorNumber:       u.FloorNumber,
		AssignedSweeperID: u.AssignedSweeperID,
	}
}
