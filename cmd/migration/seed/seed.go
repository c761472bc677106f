package seed

import (
	. "roomcare/internal/models"

	logger "github.com/Bparsons0904/goLogger"
	"gorm.io/gorm"
)

func stringPtr(s string) *string {
	return &s
}

func intPtr(i int) *int {
	return &i
}

// Seed creates a small development dataset: one admin, one sweeper per
// floor, and a handful of students in hostel H1. Existing college IDs are
// left untouched so the seed is re-runnable.
func Seed(db *gorm.DB, log logger.Logger) error {
	log = log.Function("seed")
	log.Info("Seeding development data")

	sweepers := []User{
		{
			CollegeID:    "SW1001",
			Name:         "Ravi Kumar",
			Role:         RoleSweeper,
			HostelNumber: "H1",
			FloorNumber:  intPtr(1),
		},
		{
			CollegeID:    "SW1002",
			Name:         "Sunita Devi",
			Role:         RoleSweeper,
			HostelNumber: "H1",
			FloorNumber:  intPtr(2),
		},
	}

	sweeperByFloor := make(map[int]*User)
	for i := range sweepers {
		if err := createIfMissing(db, &sweepers[i], log); err != nil {
			return err
		}
		if sweepers[i].FloorNumber != nil {
			sweeperByFloor[*sweepers[i].FloorNumber] = &sweepers[i]
		}
	}

	students := []User{
		{
			CollegeID:    "ST2001",
			Name:         "Asha Patel",
			Role:         RoleStudent,
			HostelNumber: "H1",
			RoomNumber:   stringPtr("101"),
		},
		{
			CollegeID:    "ST2002",
			Name:         "Vikram Singh",
			Role:         RoleStudent,
			HostelNumber: "H1",
			RoomNumber:   stringPtr("104"),
		},
		{
			CollegeID:    "ST2003",
			Name:         "Meera Nair",
			Role:         RoleStudent,
			HostelNumber: "H1",
			RoomNumber:   stringPtr("203"),
		},
	}

	for i := range students {
		if floor, ok := students[i].Floor(); ok {
			if sweeper, found := sweeperByFloor[floor]; found {
				students[i].AssignedSweeperID = &sweeper.ID
			}
		}
		if err := createIfMissing(db, &students[i], log); err != nil {
			return err
		}
	}

	admin := User{
		CollegeID:    "AD3001",
		Name:         "Warden Sharma",
		Role:         RoleAdmin,
		HostelNumber: "H1",
	}
	if err := createIfMissing(db, &admin, log); err != nil {
		return err
	}

	return nil
}

func createIfMissing(db *gorm.DB, user *User, log logger.Logger) error {
	var existing User
	if err := db.First(&existing, "college_id = ?", user.CollegeID).Error; err == nil {
		log.Info("User already exists", "collegeID", user.CollegeID)
		*user = existing
		return nil
	}

	if err := user.SetPassword("password"); err != nil {
		return log.Err("failed to hash seed password", err, "collegeID", user.CollegeID)
	}

	log.Info("Seeding user", "collegeID", user.CollegeID, "role", user.Role)
	if err := db.Create(user).Error; err != nil {
		return log.Err("failed to create user", err, "collegeID", user.CollegeID)
	}

	return nil
}
