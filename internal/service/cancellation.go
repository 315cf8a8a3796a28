package service

import (
	"context"
	"fmt"
	"time"

	"cyclerent-backend/internal/clock"
	"cyclerent-backend/internal/config"
	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/logger"
	"cyclerent-backend/internal/repository"
)

type cancellationService struct {
	bookingRepo   repository.BookingRepository
	inventoryRepo repository.InventoryRepository
	userRepo      repository.UserRepository
	emailSvc      EmailService
	noteRepo      repository.NotificationRepository
	policy        config.PolicyConfig
	clk           clock.Clock
}

func NewCancellationService(
	bookingRepo repository.BookingRepository,
	inventoryRepo repository.InventoryRepository,
	userRepo repository.UserRepository,
	emailSvc EmailService,
	noteRepo repository.NotificationRepository,
	policy config.PolicyConfig,
	clk clock.Clock,
) CancellationService {
	return &cancellationService{
		bookingRepo:   bookingRepo,
		inventoryRepo: inventoryRepo,
		userRepo:      userRepo,
		emailSvc:      emailSvc,
		noteRepo:      noteRepo,
		policy:        policy,
		clk:           clk,
	}
}

// checkEligibility rejects requests the policy forbids outright. Eligibility
// is a calendar-date rule: the pickup date must be strictly after today, so a
// same-day booking can never be cancelled even if pickup is hours away.
func (s *cancellationService) checkEligibility(b *domain.Booking, now time.Time) error {
	switch b.Status {
	case domain.BookingStatusCancelled, domain.BookingStatusCompleted:
		return domain.NewInvalidTransition("booking", string(b.Status), string(domain.EventCancel))
	case domain.BookingStatusActive:
		return &domain.PolicyViolation{
			Rule:    "cancellation_after_pickup",
			Message: "bookings cannot be cancelled after pickup",
		}
	}
	if b.CancellationStatus != domain.CancellationStatusNone {
		return domain.NewInvalidTransition("cancellation", string(b.CancellationStatus), string(domain.CancellationStatusRequested))
	}

	ty, tm, td := now.Date()
	py, pm, pd := b.PickupAt.Date()
	today := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	pickupDay := time.Date(py, pm, pd, 0, 0, 0, 0, time.UTC)
	if !pickupDay.After(today) {
		return &domain.PolicyViolation{
			Rule:    "same_day_cancellation",
			Message: "bookings cannot be cancelled on or after the pickup date",
			Detail: map[string]string{
				"pickup_at": b.PickupAt.Format(time.RFC3339),
			},
		}
	}
	return nil
}

// feeFor applies the fee band. At or beyond the window before pickup a flat
// fee applies and the rest is refunded; inside the window the whole amount
// paid is forfeit.
func (s *cancellationService) feeFor(b *domain.Booking, asOf time.Time) (feePaise, refundPaise int64, hours float64) {
	hours = b.PickupAt.Sub(asOf).Hours()
	window := float64(s.policy.CancellationWindowHours)
	if hours >= window {
		feePaise = s.policy.CancellationFlatFeePaise
		if feePaise > b.TotalPaise {
			feePaise = b.TotalPaise
		}
		refundPaise = b.TotalPaise - feePaise
		return feePaise, refundPaise, hours
	}
	return b.TotalPaise, 0, hours
}

func (s *cancellationService) PreviewFee(ctx context.Context, bookingID int64) (*CancellationQuote, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	quote := &CancellationQuote{}
	if err := s.checkEligibility(booking, now); err != nil {
		quote.Eligible = false
		quote.HoursToPickup = booking.PickupAt.Sub(now).Hours()
		return quote, nil
	}

	fee, refund, hours := s.feeFor(booking, now)
	quote.Eligible = true
	quote.HoursToPickup = hours
	quote.FeePaise = fee
	quote.RefundPaise = refund
	return quote, nil
}

func (s *cancellationService) RequestCancellation(ctx context.Context, renterID, bookingID int64, reason string) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if booking.RenterID != renterID {
		return nil, domain.NewNotFound("booking", fmt.Sprintf("%d", bookingID))
	}

	now := s.clk.Now()
	if err := s.checkEligibility(booking, now); err != nil {
		return nil, err
	}

	ok, err := s.bookingRepo.MarkCancellationRequested(ctx, booking.ID, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return nil, domain.NewInvalidTransition("cancellation", string(current.CancellationStatus), string(domain.CancellationStatusRequested))
	}

	booking.CancellationStatus = domain.CancellationStatusRequested
	booking.CancellationReason = reason
	booking.CancellationRequestedAt = &now

	logger.InfoContext(ctx, "cancellation requested", "booking_id", booking.ID, "renter_id", renterID)
	return booking, nil
}

func (s *cancellationService) ApproveCancellation(ctx context.Context, operatorID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.CancellationStatus == domain.CancellationStatusApproved {
		return booking, nil
	}
	if _, err := domain.NextCancellationStatus(booking.CancellationStatus, domain.CancellationStatusApproved); err != nil {
		return nil, err
	}

	// The fee is banded on the approval time: a request that sat in the
	// review queue past the window forfeits the full amount.
	now := s.clk.Now()
	fee, refund, _ := s.feeFor(booking, now)
	ok, err := s.bookingRepo.ApproveCancellation(ctx, booking.ID, fee, refund, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// A concurrent approval already settled this request.
		current, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		if current.CancellationStatus == domain.CancellationStatusApproved {
			return current, nil
		}
		return nil, domain.NewInvalidTransition("cancellation", string(current.CancellationStatus), string(domain.CancellationStatusApproved))
	}

	booking.Status = domain.BookingStatusCancelled
	booking.CancellationStatus = domain.CancellationStatusApproved
	booking.CancellationFeePaise = fee
	booking.CancellationRefundPaise = refund
	booking.CancelledAt = &now

	s.restock(ctx, booking)

	logger.InfoContext(ctx, "cancellation approved",
		"booking_id", booking.ID, "operator_id", operatorID,
		"fee_paise", fee, "refund_paise", refund)

	renter, _ := s.userRepo.GetByID(ctx, booking.RenterID)
	if renter != nil {
		_ = s.emailSvc.SendCancellationApproved(ctx, renter.Email, renter.Name, booking.Code, fee, refund)
		notif := &domain.Notification{
			UserID:  renter.ID,
			Title:   "Cancellation Approved",
			Message: fmt.Sprintf("Booking %s was cancelled, refund of %d paise is on its way", booking.Code, refund),
			Attributes: map[string]string{
				"type":       "CANCELLATION_APPROVED",
				"booking_id": fmt.Sprintf("%d", booking.ID),
			},
		}
		_ = s.noteRepo.Create(ctx, notif)
	}

	return booking, nil
}

// restock returns the booking's cycle unit and accessories to the pool.
// Failures are logged, not returned: the cancellation itself already
// committed.
func (s *cancellationService) restock(ctx context.Context, b *domain.Booking) {
	if _, err := s.inventoryRepo.ReleaseCycle(ctx, b.CycleID); err != nil {
		logger.ErrorContext(ctx, "failed to restock cycle after cancellation", "cycle_id", b.CycleID, "error", err)
	}
	items, err := s.bookingRepo.GetAccessoryItems(ctx, b.ID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to load accessory items for restock", "booking_id", b.ID, "error", err)
		return
	}
	for _, it := range items {
		if _, err := s.inventoryRepo.ReleaseAccessory(ctx, it.AccessoryID, it.Quantity); err != nil {
			logger.ErrorContext(ctx, "failed to restock accessory after cancellation", "accessory_id", it.AccessoryID, "error", err)
		}
	}
}

func (s *cancellationService) RejectCancellation(ctx context.Context, operatorID, bookingID int64, reason string) (*domain.Booking, error) {
	if reason == "" {
		return nil, domain.NewValidation("reason", "a rejection reason is required")
	}

	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if _, err := domain.NextCancellationStatus(booking.CancellationStatus, domain.CancellationStatusRejected); err != nil {
		return nil, err
	}

	ok, err := s.bookingRepo.RejectCancellation(ctx, booking.ID, reason)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return nil, domain.NewInvalidTransition("cancellation", string(current.CancellationStatus), string(domain.CancellationStatusRejected))
	}

	booking.CancellationStatus = domain.CancellationStatusRejected
	booking.RejectionReason = reason

	logger.InfoContext(ctx, "cancellation rejected", "booking_id", booking.ID, "operator_id", operatorID)

	renter, _ := s.userRepo.GetByID(ctx, booking.RenterID)
	if renter != nil {
		_ = s.emailSvc.SendCancellationRejected(ctx, renter.Email, renter.Name, booking.Code, reason)
		notif := &domain.Notification{
			UserID:  renter.ID,
			Title:   "Cancellation Rejected",
			Message: fmt.Sprintf("Cancellation of booking %s was rejected: %s", booking.Code, reason),
			Attributes: map[string]string{
				"type":       "CANCELLATION_REJECTED",
				"booking_id": fmt.Sprintf("%d", booking.ID),
			},
		}
		_ = s.noteRepo.Create(ctx, notif)
	}

	return booking, nil
}
