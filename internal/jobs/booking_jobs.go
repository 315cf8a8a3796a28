package jobs

import (
	"context"
	"math"
	"time"

	"cyclerent-backend/internal/logger"
)

// SendOverdueReminders mails every renter whose active booking is past its
// scheduled return time. The fee keeps accruing until the cycle is returned;
// this job only reminds, it mutates nothing.
func (jr *JobRunner) SendOverdueReminders() {
	jr.runWithRecovery("SendOverdueReminders", func() {
		ctx := context.Background()
		now := jr.clk.Now()

		overdue, err := jr.bookingRepo.ListActivePastReturn(ctx, now)
		if err != nil {
			logger.Error("Failed to list overdue bookings", "error", err)
			return
		}

		perHour := jr.config.Policy.LateFeePerHourPaise
		sent := 0
		for _, b := range overdue {
			hoursLate := int64(math.Ceil(now.Sub(b.ReturnAt).Hours()))
			if hoursLate <= 0 {
				continue
			}
			accrued := hoursLate * perHour

			renter, err := jr.userRepo.GetByID(ctx, b.RenterID)
			if err != nil {
				logger.Error("Failed to load renter for overdue reminder", "booking_id", b.ID, "error", err)
				continue
			}
			if err := jr.emailSvc.SendOverdueReminder(ctx, renter.Email, renter.Name, b.Code, hoursLate, accrued); err != nil {
				logger.Error("Failed to send overdue reminder", "booking_id", b.ID, "error", err)
				continue
			}
			sent++
			logger.Debug("Sent overdue reminder",
				"booking_id", b.ID, "hours_late", hoursLate, "accrued_fee_paise", accrued)
		}

		logger.Info("Overdue reminders sent", "overdue", len(overdue), "sent", sent)
	})
}

// SendPickupReminders mails renters whose confirmed booking is scheduled for
// pickup within the next day.
func (jr *JobRunner) SendPickupReminders() {
	jr.runWithRecovery("SendPickupReminders", func() {
		ctx := context.Background()
		now := jr.clk.Now()

		upcoming, err := jr.bookingRepo.ListConfirmedPickupBetween(ctx, now, now.Add(24*time.Hour))
		if err != nil {
			logger.Error("Failed to list upcoming pickups", "error", err)
			return
		}

		sent := 0
		for _, b := range upcoming {
			renter, err := jr.userRepo.GetByID(ctx, b.RenterID)
			if err != nil {
				logger.Error("Failed to load renter for pickup reminder", "booking_id", b.ID, "error", err)
				continue
			}
			if err := jr.emailSvc.SendPickupReminder(ctx, renter.Email, renter.Name, b.Code, b.PickupAt); err != nil {
				logger.Error("Failed to send pickup reminder", "booking_id", b.ID, "error", err)
				continue
			}
			sent++
		}

		logger.Info("Pickup reminders sent", "upcoming", len(upcoming), "sent", sent)
	})
}
