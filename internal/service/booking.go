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
	"cyclerent-backend/internal/utils"
)

type bookingService struct {
	bookingRepo   repository.BookingRepository
	inventoryRepo repository.InventoryRepository
	couponRepo    repository.CouponRepository
	userRepo      repository.UserRepository
	couponSvc     CouponService
	emailSvc      EmailService
	noteRepo      repository.NotificationRepository
	codeGen       *utils.BookingCodeGenerator
	policy        config.PolicyConfig
	clk           clock.Clock
}

func NewBookingService(
	bookingRepo repository.BookingRepository,
	inventoryRepo repository.InventoryRepository,
	couponRepo repository.CouponRepository,
	userRepo repository.UserRepository,
	couponSvc CouponService,
	emailSvc EmailService,
	noteRepo repository.NotificationRepository,
	codeGen *utils.BookingCodeGenerator,
	policy config.PolicyConfig,
	clk clock.Clock,
) BookingService {
	return &bookingService{
		bookingRepo:   bookingRepo,
		inventoryRepo: inventoryRepo,
		couponRepo:    couponRepo,
		userRepo:      userRepo,
		couponSvc:     couponSvc,
		emailSvc:      emailSvc,
		noteRepo:      noteRepo,
		codeGen:       codeGen,
		policy:        policy,
		clk:           clk,
	}
}

// selectionsFor snapshots catalog prices for the requested accessories. Every
// accessory must exist and be active; days always equals the tier's length.
func (s *bookingService) selectionsFor(ctx context.Context, tier domain.DurationTier, choices []AccessoryChoice) ([]utils.AccessorySelection, error) {
	selections := make([]utils.AccessorySelection, 0, len(choices))
	seen := make(map[int64]bool, len(choices))
	for _, ch := range choices {
		if ch.Quantity <= 0 {
			return nil, domain.NewValidation("accessory_quantity", "must be positive")
		}
		if seen[ch.AccessoryID] {
			return nil, domain.NewValidation("accessory_id", "duplicate accessory in selection")
		}
		seen[ch.AccessoryID] = true

		acc, err := s.inventoryRepo.GetAccessory(ctx, ch.AccessoryID)
		if err != nil {
			return nil, err
		}
		if !acc.IsActive {
			return nil, domain.NewValidation("accessory_id", fmt.Sprintf("accessory %d is not available", ch.AccessoryID))
		}
		selections = append(selections, utils.AccessorySelection{
			AccessoryID:      acc.ID,
			Quantity:         ch.Quantity,
			Days:             tier.Days(),
			PricePerDayPaise: acc.PricePerDayPaise,
			DepositPaise:     acc.DepositPaise,
		})
	}
	return selections, nil
}

func (s *bookingService) Quote(ctx context.Context, req QuoteRequest) (*utils.CostBreakdown, error) {
	if !req.Tier.Valid() {
		return nil, domain.NewValidation("tier", "unknown duration tier")
	}

	cycle, err := s.inventoryRepo.GetCycle(ctx, req.CycleID)
	if err != nil {
		return nil, err
	}
	if !cycle.IsActive {
		return nil, domain.NewValidation("cycle_id", fmt.Sprintf("cycle %d is not available", req.CycleID))
	}

	selections, err := s.selectionsFor(ctx, req.Tier, req.Accessories)
	if err != nil {
		return nil, err
	}

	// First pass without discount gives the subtotal the coupon validates
	// against.
	base, err := utils.QuoteBooking(req.Tier, utils.RatesForCycle(cycle), selections, 0, s.policy.GSTPercent)
	if err != nil {
		return nil, err
	}

	var discount int64
	if req.CouponCode != "" {
		result, err := s.couponSvc.Preview(ctx, req.CouponCode, base.SubtotalPaise)
		if err != nil {
			return nil, err
		}
		discount = result.DiscountPaise
	}

	quote, err := utils.QuoteBooking(req.Tier, utils.RatesForCycle(cycle), selections, discount, s.policy.GSTPercent)
	if err != nil {
		return nil, err
	}
	return &quote, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	if !req.Tier.Valid() {
		return nil, domain.NewValidation("tier", "unknown duration tier")
	}
	if req.PickupAt.Before(s.clk.Now()) {
		return nil, domain.NewValidation("pickup_at", "must not be in the past")
	}

	renter, err := s.userRepo.GetByID(ctx, req.RenterID)
	if err != nil {
		return nil, err
	}

	cycle, err := s.inventoryRepo.GetCycle(ctx, req.CycleID)
	if err != nil {
		return nil, err
	}
	if !cycle.IsActive {
		return nil, domain.NewValidation("cycle_id", fmt.Sprintf("cycle %d is not available", req.CycleID))
	}
	if req.PartnerID != 0 && req.PartnerID != cycle.PartnerID {
		return nil, domain.NewValidation("partner_id", "cycle is not stocked at this partner")
	}

	selections, err := s.selectionsFor(ctx, req.Tier, req.Accessories)
	if err != nil {
		return nil, err
	}

	rates := utils.RatesForCycle(cycle)
	base, err := utils.QuoteBooking(req.Tier, rates, selections, 0, s.policy.GSTPercent)
	if err != nil {
		return nil, err
	}

	// Coupon is previewed before any stock moves so a bad code fails cheap;
	// the use itself is consumed only after inventory is held.
	if req.CouponCode != "" {
		if _, err := s.couponSvc.Preview(ctx, req.CouponCode, base.SubtotalPaise); err != nil {
			return nil, err
		}
	}

	ok, err := s.inventoryRepo.ReserveCycle(ctx, cycle.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domain.NewOutOfStock("cycle", cycle.ID)
	}

	var reserved []utils.AccessorySelection
	release := func() {
		if _, err := s.inventoryRepo.ReleaseCycle(ctx, cycle.ID); err != nil {
			logger.ErrorContext(ctx, "failed to release cycle after aborted booking", "cycle_id", cycle.ID, "error", err)
		}
		for _, sel := range reserved {
			if _, err := s.inventoryRepo.ReleaseAccessory(ctx, sel.AccessoryID, sel.Quantity); err != nil {
				logger.ErrorContext(ctx, "failed to release accessory after aborted booking", "accessory_id", sel.AccessoryID, "error", err)
			}
		}
	}

	for _, sel := range selections {
		ok, err := s.inventoryRepo.ReserveAccessory(ctx, sel.AccessoryID, sel.Quantity)
		if err != nil {
			release()
			return nil, err
		}
		if !ok {
			release()
			return nil, domain.NewOutOfStock("accessory", sel.AccessoryID)
		}
		reserved = append(reserved, sel)
	}

	var couponID *int64
	var discount int64
	if req.CouponCode != "" {
		result, err := s.couponSvc.Apply(ctx, req.CouponCode, base.SubtotalPaise)
		if err != nil {
			release()
			return nil, err
		}
		discount = result.DiscountPaise
		id := result.CouponID
		couponID = &id
	}

	abort := func() {
		if couponID != nil {
			if _, err := s.couponRepo.ReleaseUse(ctx, *couponID); err != nil {
				logger.ErrorContext(ctx, "failed to release coupon use after aborted booking", "coupon_id", *couponID, "error", err)
			}
		}
		release()
	}

	quote, err := utils.QuoteBooking(req.Tier, rates, selections, discount, s.policy.GSTPercent)
	if err != nil {
		abort()
		return nil, err
	}

	booking := &domain.Booking{
		Code:                 s.codeGen.Generate(req.RenterID),
		RenterID:             req.RenterID,
		CycleID:              cycle.ID,
		PartnerID:            cycle.PartnerID,
		CouponID:             couponID,
		Tier:                 req.Tier,
		PickupAt:             req.PickupAt,
		ReturnAt:             req.PickupAt.AddDate(0, 0, int(req.Tier.Days())),
		CycleRentalPaise:     quote.CycleRentalPaise,
		AccessoriesPaise:     quote.AccessoriesPaise,
		GSTPaise:             quote.GSTPaise,
		DiscountPaise:        quote.DiscountPaise,
		SecurityDepositPaise: quote.SecurityDepositPaise,
		TotalPaise:           quote.TotalPaise,
		Status:               domain.BookingStatusConfirmed,
		PaymentStatus:        domain.PaymentStatusPending,
		CancellationStatus:   domain.CancellationStatusNone,
	}

	items := make([]domain.AccessoryLineItem, 0, len(selections))
	for _, sel := range selections {
		items = append(items, lineItemFor(sel))
	}

	if err := s.bookingRepo.Create(ctx, booking, items); err != nil {
		abort()
		return nil, err
	}

	_ = s.emailSvc.SendBookingConfirmation(ctx, renter.Email, renter.Name, booking.Code, booking.PickupAt, booking.TotalPaise)
	notif := &domain.Notification{
		UserID:  renter.ID,
		Title:   "Booking Confirmed",
		Message: fmt.Sprintf("Your booking %s is confirmed for pickup on %s", booking.Code, booking.PickupAt.Format("02 Jan 2006")),
		Attributes: map[string]string{
			"type":       "BOOKING_CONFIRMED",
			"booking_id": fmt.Sprintf("%d", booking.ID),
		},
	}
	_ = s.noteRepo.Create(ctx, notif)

	return booking, nil
}

func lineItemFor(sel utils.AccessorySelection) domain.AccessoryLineItem {
	return domain.AccessoryLineItem{
		AccessoryID:      sel.AccessoryID,
		Quantity:         sel.Quantity,
		Days:             sel.Days,
		PricePerDayPaise: sel.PricePerDayPaise,
		DepositPaise:     sel.DepositPaise,
		LineTotalPaise:   sel.PricePerDayPaise*int64(sel.Quantity)*int64(sel.Days) + sel.DepositPaise*int64(sel.Quantity),
	}
}

func (s *bookingService) GetBooking(ctx context.Context, bookingID int64) (*domain.Booking, []domain.AccessoryLineItem, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	items, err := s.bookingRepo.GetAccessoryItems(ctx, bookingID)
	if err != nil {
		return nil, nil, err
	}
	return booking, items, nil
}

func (s *bookingService) ListByRenter(ctx context.Context, renterID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.bookingRepo.ListByRenter(ctx, renterID, status, page, pageSize)
}

func (s *bookingService) ListByPartner(ctx context.Context, partnerID int64, status string, page, pageSize int32) ([]domain.Booking, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.bookingRepo.ListByPartner(ctx, partnerID, status, page, pageSize)
}

func normalizePage(page, pageSize int32) (int32, int32) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}

func (s *bookingService) ActivateBooking(ctx context.Context, operatorID, bookingID int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentStatus != domain.PaymentStatusCompleted {
		return nil, &domain.StateConflict{
			Code:    domain.ConflictPaymentNotCompleted,
			Entity:  "booking",
			Current: string(booking.PaymentStatus),
			Message: "payment must be completed before pickup",
		}
	}

	next, err := domain.NextStatus(booking.Status, domain.EventActivate)
	if err != nil {
		return nil, err
	}

	ok, err := s.bookingRepo.UpdateStatus(ctx, booking.ID, booking.Status, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.bookingRepo.GetByID(ctx, bookingID)
		if err != nil {
			return nil, err
		}
		return nil, domain.NewInvalidTransition("booking", string(current.Status), string(domain.EventActivate))
	}

	logger.InfoContext(ctx, "booking activated", "booking_id", booking.ID, "operator_id", operatorID)
	booking.Status = next
	return booking, nil
}

func (s *bookingService) UpdateAccessories(ctx context.Context, renterID, bookingID int64, choices []AccessoryChoice) (*domain.Booking, int64, error) {
	booking, err := s.bookingRepo.GetByID(ctx, bookingID)
	if err != nil {
		return nil, 0, err
	}
	if booking.RenterID != renterID {
		return nil, 0, domain.NewNotFound("booking", fmt.Sprintf("%d", bookingID))
	}
	if booking.Status != domain.BookingStatusConfirmed {
		return nil, 0, domain.NewInvalidTransition("booking", string(booking.Status), "EDIT_ACCESSORIES")
	}

	cutoff := booking.PickupAt.Add(-time.Duration(s.policy.EditCutoffHours) * time.Hour)
	if !s.clk.Now().Before(cutoff) {
		return nil, 0, &domain.PolicyViolation{
			Rule:    "accessory_edit_cutoff",
			Message: fmt.Sprintf("accessories are locked %d hours before pickup", s.policy.EditCutoffHours),
			Detail: map[string]string{
				"cutoff_hours": fmt.Sprintf("%d", s.policy.EditCutoffHours),
				"pickup_at":    booking.PickupAt.Format(time.RFC3339),
			},
		}
	}

	oldItems, err := s.bookingRepo.GetAccessoryItems(ctx, bookingID)
	if err != nil {
		return nil, 0, err
	}
	oldByID := make(map[int64]domain.AccessoryLineItem, len(oldItems))
	var oldAccessoryDeposit int64
	for _, it := range oldItems {
		oldByID[it.AccessoryID] = it
		oldAccessoryDeposit += it.DepositPaise * int64(it.Quantity)
	}

	// Retained items keep the price and deposit snapshot they were booked
	// with; only newly added accessories take current catalog prices.
	selections := make([]utils.AccessorySelection, 0, len(choices))
	seen := make(map[int64]bool, len(choices))
	for _, ch := range choices {
		if ch.Quantity <= 0 {
			return nil, 0, domain.NewValidation("accessory_quantity", "must be positive")
		}
		if seen[ch.AccessoryID] {
			return nil, 0, domain.NewValidation("accessory_id", "duplicate accessory in selection")
		}
		seen[ch.AccessoryID] = true

		if old, ok := oldByID[ch.AccessoryID]; ok {
			selections = append(selections, utils.AccessorySelection{
				AccessoryID:      old.AccessoryID,
				Quantity:         ch.Quantity,
				Days:             old.Days,
				PricePerDayPaise: old.PricePerDayPaise,
				DepositPaise:     old.DepositPaise,
			})
			continue
		}

		acc, err := s.inventoryRepo.GetAccessory(ctx, ch.AccessoryID)
		if err != nil {
			return nil, 0, err
		}
		if !acc.IsActive {
			return nil, 0, domain.NewValidation("accessory_id", fmt.Sprintf("accessory %d is not available", ch.AccessoryID))
		}
		selections = append(selections, utils.AccessorySelection{
			AccessoryID:      acc.ID,
			Quantity:         ch.Quantity,
			Days:             booking.Tier.Days(),
			PricePerDayPaise: acc.PricePerDayPaise,
			DepositPaise:     acc.DepositPaise,
		})
	}

	// Inventory moves are the per-accessory quantity deltas.
	type move struct {
		accessoryID int64
		delta       int32
	}
	var moves []move
	for _, sel := range selections {
		old := oldByID[sel.AccessoryID].Quantity
		if d := sel.Quantity - old; d != 0 {
			moves = append(moves, move{sel.AccessoryID, d})
		}
	}
	for _, old := range oldItems {
		if !seen[old.AccessoryID] {
			moves = append(moves, move{old.AccessoryID, -old.Quantity})
		}
	}

	var applied []move
	undo := func() {
		for _, m := range applied {
			var err error
			if m.delta > 0 {
				_, err = s.inventoryRepo.ReleaseAccessory(ctx, m.accessoryID, m.delta)
			} else {
				_, err = s.inventoryRepo.ReserveAccessory(ctx, m.accessoryID, -m.delta)
			}
			if err != nil {
				logger.ErrorContext(ctx, "failed to undo accessory move", "accessory_id", m.accessoryID, "error", err)
			}
		}
	}
	for _, m := range moves {
		if m.delta > 0 {
			ok, err := s.inventoryRepo.ReserveAccessory(ctx, m.accessoryID, m.delta)
			if err != nil {
				undo()
				return nil, 0, err
			}
			if !ok {
				undo()
				return nil, 0, domain.NewOutOfStock("accessory", m.accessoryID)
			}
		} else {
			if _, err := s.inventoryRepo.ReleaseAccessory(ctx, m.accessoryID, -m.delta); err != nil {
				undo()
				return nil, 0, err
			}
		}
		applied = append(applied, m)
	}

	newItems := make([]domain.AccessoryLineItem, 0, len(selections))
	for _, sel := range selections {
		it := lineItemFor(sel)
		it.BookingID = booking.ID
		newItems = append(newItems, it)
	}

	oldTotal := booking.TotalPaise
	cycleDeposit := booking.SecurityDepositPaise - oldAccessoryDeposit
	repriceBooking(booking, selections, cycleDeposit, s.policy.GSTPercent)

	if err := s.bookingRepo.ReplaceAccessoryItems(ctx, booking.ID, newItems); err != nil {
		undo()
		return nil, 0, err
	}
	if err := s.bookingRepo.UpdatePricing(ctx, booking); err != nil {
		undo()
		return nil, 0, err
	}

	logger.InfoContext(ctx, "booking accessories updated",
		"booking_id", booking.ID, "delta_paise", booking.TotalPaise-oldTotal)
	return booking, booking.TotalPaise - oldTotal, nil
}

// repriceBooking rewrites the money fields of an edited booking from its
// snapshotted cycle rental and cycle deposit. The discount amount stays fixed
// at what the coupon granted originally, clamped to the new subtotal.
func repriceBooking(b *domain.Booking, selections []utils.AccessorySelection, cycleDepositPaise int64, gstPercent int64) {
	var accessoriesPaise, accessoryDepositPaise int64
	for _, sel := range selections {
		accessoriesPaise += sel.PricePerDayPaise * int64(sel.Quantity) * int64(sel.Days)
		accessoryDepositPaise += sel.DepositPaise * int64(sel.Quantity)
	}

	subtotal := b.CycleRentalPaise + accessoriesPaise
	discount := b.DiscountPaise
	if discount > subtotal {
		discount = subtotal
	}
	discounted := subtotal - discount
	gst := utils.RoundPaiseToRupee(utils.PercentOfPaise(discounted, gstPercent))

	b.AccessoriesPaise = accessoriesPaise
	b.DiscountPaise = discount
	b.GSTPaise = gst
	b.SecurityDepositPaise = cycleDepositPaise + accessoryDepositPaise
	b.TotalPaise = discounted + gst + b.SecurityDepositPaise
}

func (s *bookingService) ConfirmPayment(ctx context.Context, bookingCode string, result domain.PaymentStatus) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByCode(ctx, bookingCode)
	if err != nil {
		return nil, err
	}

	// Gateway webhooks retry; a signal that matches the stored state is a
	// duplicate delivery, not an error.
	if booking.PaymentStatus == result {
		return booking, nil
	}

	next, err := domain.NextPaymentStatus(booking.PaymentStatus, result)
	if err != nil {
		return nil, err
	}

	ok, err := s.bookingRepo.UpdatePaymentStatus(ctx, booking.ID, domain.PaymentStatusPending, next)
	if err != nil {
		return nil, err
	}
	if !ok {
		current, err := s.bookingRepo.GetByCode(ctx, bookingCode)
		if err != nil {
			return nil, err
		}
		if current.PaymentStatus == result {
			return current, nil
		}
		return nil, domain.NewInvalidTransition("payment", string(current.PaymentStatus), string(result))
	}

	booking.PaymentStatus = next
	logger.InfoContext(ctx, "payment status updated", "booking_id", booking.ID, "status", next)

	renter, _ := s.userRepo.GetByID(ctx, booking.RenterID)
	if renter != nil {
		title := "Payment Received"
		msg := fmt.Sprintf("Payment for booking %s was received", booking.Code)
		if next == domain.PaymentStatusFailed {
			title = "Payment Failed"
			msg = fmt.Sprintf("Payment for booking %s failed, please pay at pickup", booking.Code)
		}
		notif := &domain.Notification{
			UserID:  renter.ID,
			Title:   title,
			Message: msg,
			Attributes: map[string]string{
				"type":       "PAYMENT_" + string(next),
				"booking_id": fmt.Sprintf("%d", booking.ID),
			},
		}
		_ = s.noteRepo.Create(ctx, notif)
	}

	return booking, nil
}
