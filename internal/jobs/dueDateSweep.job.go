package jobs

import (
	"context"

	notificationController "roomcare/internal/controllers/notifications"
	"roomcare/internal/services"

	logger "github.com/Bparsons0904/goLogger"
)

// DueDateSweepJob runs the daily due/overdue notification sweep. The sweep
// itself is idempotent per calendar day, so overlapping or repeated runs
// are harmless.
type DueDateSweepJob struct {
	notifications notificationController.NotificationControllerInterface
	log           logger.Logger
	schedule      services.Schedule
}

func NewDueDateSweepJob(
	notifications notificationController.NotificationControllerInterface,
	schedule services.Schedule,
) *DueDateSweepJob {
	return &DueDateSweepJob{
		notifications: notifications,
		log:           logger.New("dueDateSweepJob"),
		schedule:      schedule,
	}
}

func (j *DueDateSweepJob) Name() string {
	return "DueDateSweep"
}

func (j *DueDateSweepJob) Execute(ctx context.Context) error {
	log := j.log.Function("Execute")

	if err := j.notifications.RunDueDateSweep(ctx); err != nil {
		return log.Err("due-date sweep failed", err)
	}

	return nil
}

func (j *DueDateSweepJob) Schedule() services.Schedule {
	return j.schedule
}
