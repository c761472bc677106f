package repositories

import (
	"roomcare/internal/database"
)

type Repository struct {
	User            UserRepository
	CleaningRequest CleaningRequestRepository
	Notification    NotificationRepository
}

func New(db database.DB) Repository {
	return Repository{
		User:            NewUserRepository(db),
		CleaningRequest: NewCleaningRequestRepository(db),
		Notification:    NewNotificationRepository(db),
	}
}
