package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"cyclerent-backend/internal/clock"
	"cyclerent-backend/internal/config"
	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/logger"
	"cyclerent-backend/internal/repository"
)

type settlementService struct {
	bookingRepo   repository.BookingRepository
	inventoryRepo repository.InventoryRepository
	damageRepo    repository.DamageReportRepository
	userRepo      repository.UserRepository
	emailSvc      EmailService
	noteRepo      repository.NotificationRepository
	policy        config.PolicyConfig
	clk           clock.Clock
}

func NewSettlementService(
	bookingRepo repository.BookingRepository,
	inventoryRepo repository.InventoryRepository,
	damageRepo repository.DamageReportRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	noteRepo repository.NotificationRepository,
	policy config.PolicyConfig,
	clk clock.Clock,
) SettlementService {
	return &settlementService{
		bookingRepo:   bookingRepo,
		inventoryRepo: inventoryRepo,
		damageRepo:    damageRepo,
		userRepo:      userRepo,
		emailSvc:      emailSvc,
		noteRepo:      noteRepo,
		policy:        policy,
		clk:           clk,
	}
}

// LateFeePaise computes the late fee for a return past the scheduled return
// time: any started hour counts as a full hour, with no cap.
func LateFeePaise(scheduled, actual time.Time, perHourPaise int64) int64 {
	hoursLate := actual.Sub(scheduled).Hours()
	if hoursLate <= 0 {
		return 0
	}
	return int64(math.Ceil(hoursLate)) * perHourPaise
}

func (s *settlementService) RecordCycleReturn(ctx context.Context, operatorID, bookingID int64, req ReturnRequest) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.Status != domain.BookingStatusActive {
		return nil, domain.NewInvalidTransition("booking", string(booking.Status), "RECORD_RETURN")
	}
	if booking.CycleReturnedAt != nil {
		return nil, &domain.StateConflict{
			Code:    domain.ConflictAlreadyReturned,
			Entity:  "booking",
			Message: fmt.Sprintf("cycle return already recorded for booking %d", bookingID),
		}
	}

	if len(req.PhotoRefs) == 0 {
		return nil, &domain.EvidenceRequiredError{BookingID: bookingID}
	}
	if !req.Condition.Valid() {
		return nil, domain.NewValidation("condition", "unknown cycle condition")
	}
	if req.DamageCostPaise < 0 {
		return nil, domain.NewValidation("damage_cost_paise", "must not be negative")
	}
	if req.DamageCostPaise > 0 && req.DamageDescription == "" {
		return nil, domain.NewValidation("damage_description", "required when a damage cost is assessed")
	}
	if req.Condition == domain.CycleConditionDamaged && req.DamageCostPaise == 0 {
		return nil, domain.NewValidation("damage_cost_paise", "required when the cycle is rated damaged")
	}

	now := s.clk.Now()
	lateFee := LateFeePaise(booking.ReturnAt, now, s.policy.LateFeePerHourPaise)

	booking.ReturnCondition = req.Condition
	booking.ReturnPhotoRefs = req.PhotoRefs
	booking.LateFeePaise = lateFee
	booking.CycleReturnedAt = &now
	booking.CycleInspectedAt = &now

	// A clean return has nothing left to settle against the deposit, so the
	// booking completes at the return step; anything owed keeps it ACTIVE
	// until the deposit-return phase.
	if lateFee == 0 && req.DamageCostPaise == 0 {
		booking.Status = domain.BookingStatusCompleted
	}

	ok, err := s.bookingRepo.RecordReturn(ctx, booking)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.StateConflict{
			Code:    domain.ConflictAlreadyReturned,
			Entity:  "booking",
			Message: fmt.Sprintf("cycle return already recorded for booking %d", bookingID),
		}
	}

	// The unit goes back into the pool at the return step, not at deposit
	// settlement, so it can be rented again while the refund is processed.
	if _, err := s.inventoryRepo.ReleaseCycle(ctx, booking.CycleID); err != nil {
		logger.ErrorContext(ctx, "failed to restock cycle after return", "cycle_id", booking.CycleID, "error", err)
	}
	items, err := s.bookingRepo.GetAccessoryItems(ctx, booking.ID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load accessory items for restock", "booking_id", booking.ID, "error", err)
	}
	for _, it := range items {
		if _, err := s.inventoryRepo.ReleaseAccessory(ctx, it.AccessoryID, it.Quantity); err != nil {
			logger.ErrorContext(ctx, "failed to restock accessory after return", "accessory_id", it.AccessoryID, "error", err)
		}
	}

	if req.DamageCostPaise > 0 {
		report := &domain.DamageReport{
			BookingID:   booking.ID,
			CycleID:     booking.CycleID,
			Description: req.DamageDescription,
			CostPaise:   req.DamageCostPaise,
		}
		if err := s.damageRepo.Create(ctx, report); err != nil {
			return nil, err
		}
	}

	logger.InfoContext(ctx, "cycle return recorded",
		"booking_id", booking.ID, "operator_id", operatorID,
		"condition", req.Condition, "late_fee_paise", lateFee,
		"damage_cost_paise", req.DamageCostPaise)

	renter, _ := s.userRepo.GetByID(ctx, booking.RenterID)
	if renter != nil {
		_ = s.emailSvc.SendReturnRecorded(ctx, renter.Email, renter.Name, booking.Code, lateFee, req.DamageCostPaise)
		notif := &domain.Notification{
			UserID:  renter.ID,
			Title:   "Cycle Return Recorded",
			Message: fmt.Sprintf("Return of booking %s was recorded, deposit settlement is in progress", booking.Code),
			Attributes: map[string]string{
				"type":       "RETURN_RECORDED",
				"booking_id": fmt.Sprintf("%d", booking.ID),
			},
		}
		_ = s.noteRepo.Create(ctx, notif)
	}

	return booking, nil
}

func (s *settlementService) ReturnDeposit(ctx context.Context, operatorID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.CycleReturnedAt == nil {
		return nil, domain.NewReturnNotRecorded(bookingID)
	}
	if booking.DepositReturnedAt != nil {
		return nil, &domain.StateConflict{
			Code:    domain.ConflictDepositAlreadyPaid,
			Entity:  "booking",
			Message: fmt.Sprintf("deposit already returned for booking %d", bookingID),
		}
	}

	damageTotal, err := s.damageRepo.SumCostByBooking(ctx, booking.ID)
	if err != nil {
		return nil, err
	}

	// The refund is not clamped: a negative value is a balance the renter
	// still owes, collected out of band.
	refund := booking.SecurityDepositPaise - booking.LateFeePaise - damageTotal

	now := s.clk.Now()
	ok, err := s.bookingRepo.RecordDepositReturn(ctx, booking.ID, refund, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &domain.StateConflict{
			Code:    domain.ConflictDepositAlreadyPaid,
			Entity:  "booking",
			Message: fmt.Sprintf("deposit already returned for booking %d", bookingID),
		}
	}

	if damageTotal > 0 {
		if err := s.damageRepo.SetDeductedFlag(ctx, booking.ID, refund >= 0); err != nil {
			logger.ErrorContext(ctx, "failed to flag damage reports as deducted", "booking_id", booking.ID, "error", err)
		}
	}

	booking.Status = domain.BookingStatusCompleted
	booking.DepositRefundPaise = &refund
	booking.DepositReturnedAt = &now

	logger.InfoContext(ctx, "deposit returned",
		"booking_id", booking.ID, "operator_id", operatorID, "refund_paise", refund)

	renter, _ := s.userRepo.GetByID(ctx, booking.RenterID)
	if renter != nil {
		_ = s.emailSvc.SendDepositReturned(ctx, renter.Email, renter.Name, booking.Code, refund)
		notif := &domain.Notification{
			UserID:  renter.ID,
			Title:   "Deposit Settled",
			Message: fmt.Sprintf("Deposit for booking %s was settled at %d paise", booking.Code, refund),
			Attributes: map[string]string{
				"type":       "DEPOSIT_RETURNED",
				"booking_id": fmt.Sprintf("%d", booking.ID),
			},
		}
		_ = s.noteRepo.Create(ctx, notif)
	}

	return booking, nil
}
