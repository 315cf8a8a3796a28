package jobs

import (
	"cyclerent-backend/internal/clock"
	"cyclerent-backend/internal/config"
	"cyclerent-backend/internal/logger"
	"cyclerent-backend/internal/repository"
	"cyclerent-backend/internal/service"
)

// JobRunner coordinates all scheduled jobs
type JobRunner struct {
	bookingRepo repository.BookingRepository
	userRepo    repository.UserRepository
	emailSvc    service.EmailService
	config      *config.Config
	clk         clock.Clock
}

// NewJobRunner creates a new job runner with all dependencies
func NewJobRunner(
	bookingRepo repository.BookingRepository,
	userRepo repository.UserRepository,
	emailSvc service.EmailService,
	cfg *config.Config,
	clk clock.Clock,
) *JobRunner {
	return &JobRunner{
		bookingRepo: bookingRepo,
		userRepo:    userRepo,
		emailSvc:    emailSvc,
		config:      cfg,
		clk:         clk,
	}
}

// Config exposes the configuration for the scheduler
func (jr *JobRunner) Config() *config.Config {
	return jr.config
}

// runWithRecovery wraps job execution with panic recovery
func (jr *JobRunner) runWithRecovery(jobName string, jobFunc func()) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Job panicked", "job", jobName, "panic", r)
		}
	}()

	logger.Info("Starting job", "job", jobName)
	jobFunc()
	logger.Info("Job completed", "job", jobName)
}

// RunAllDailyJobs runs all daily jobs (for manual execution)
func (jr *JobRunner) RunAllDailyJobs() {
	jr.SendOverdueReminders()
	jr.SendPickupReminders()
}
