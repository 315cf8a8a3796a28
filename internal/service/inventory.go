package service

import (
	"context"

	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/logger"
	"cyclerent-backend/internal/repository"
)

type inventoryService struct {
	inventoryRepo repository.InventoryRepository
}

func NewInventoryService(inventoryRepo repository.InventoryRepository) InventoryService {
	return &inventoryService{inventoryRepo: inventoryRepo}
}

func validateCycle(c *domain.Cycle) error {
	if c.Name == "" {
		return domain.NewValidation("name", "must not be empty")
	}
	if c.PartnerID <= 0 {
		return domain.NewValidation("partner_id", "must be set")
	}
	if c.PricePerDayPaise <= 0 {
		return domain.NewValidation("price_per_day_paise", "must be positive")
	}
	if c.PricePerWeekPaise < 0 || c.PricePerMonthPaise < 0 {
		return domain.NewValidation("price", "must not be negative")
	}
	if c.DepositDayPaise < 0 || c.DepositWeekPaise < 0 || c.DepositMonthPaise < 0 {
		return domain.NewValidation("deposit", "must not be negative")
	}
	if c.TotalQuantity <= 0 {
		return domain.NewValidation("total_quantity", "must be positive")
	}
	return nil
}

func (s *inventoryService) CreateCycle(ctx context.Context, c *domain.Cycle) error {
	if err := validateCycle(c); err != nil {
		return err
	}
	c.AvailableQuantity = c.TotalQuantity
	c.IsActive = true
	return s.inventoryRepo.CreateCycle(ctx, c)
}

func (s *inventoryService) GetCycle(ctx context.Context, id int64) (*domain.Cycle, error) {
	return s.inventoryRepo.GetCycle(ctx, id)
}

func (s *inventoryService) UpdateCycle(ctx context.Context, c *domain.Cycle) error {
	if err := validateCycle(c); err != nil {
		return err
	}
	current, err := s.inventoryRepo.GetCycle(ctx, c.ID)
	if err != nil {
		return err
	}
	// Availability tracks the ledger, not the caller: a quantity change
	// shifts available by the same delta, floored at zero.
	c.AvailableQuantity = current.AvailableQuantity + (c.TotalQuantity - current.TotalQuantity)
	if c.AvailableQuantity < 0 {
		c.AvailableQuantity = 0
	}
	return s.inventoryRepo.UpdateCycle(ctx, c)
}

func (s *inventoryService) ListCycles(ctx context.Context, partnerID int64, page, pageSize int32) ([]domain.Cycle, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.inventoryRepo.ListCycles(ctx, partnerID, page, pageSize)
}

func (s *inventoryService) CreateAccessory(ctx context.Context, a *domain.Accessory) error {
	if a.Name == "" {
		return domain.NewValidation("name", "must not be empty")
	}
	if a.PricePerDayPaise < 0 || a.DepositPaise < 0 {
		return domain.NewValidation("price", "must not be negative")
	}
	if a.TotalQuantity <= 0 {
		return domain.NewValidation("total_quantity", "must be positive")
	}
	a.AvailableQuantity = a.TotalQuantity
	a.IsActive = true
	return s.inventoryRepo.CreateAccessory(ctx, a)
}

func (s *inventoryService) ListAccessories(ctx context.Context, page, pageSize int32) ([]domain.Accessory, int32, error) {
	page, pageSize = normalizePage(page, pageSize)
	return s.inventoryRepo.ListAccessories(ctx, page, pageSize)
}

func (s *inventoryService) StartCycleMaintenance(ctx context.Context, cycleID int64) error {
	ok, err := s.inventoryRepo.ReserveCycle(ctx, cycleID)
	if err != nil {
		return err
	}
	if !ok {
		return domain.NewOutOfStock("cycle", cycleID)
	}
	logger.InfoContext(ctx, "cycle taken out for maintenance", "cycle_id", cycleID)
	return nil
}

func (s *inventoryService) CompleteCycleMaintenance(ctx context.Context, cycleID int64) error {
	// Release is a no-op at the cap, so completing maintenance twice cannot
	// inflate availability.
	if _, err := s.inventoryRepo.ReleaseCycle(ctx, cycleID); err != nil {
		return err
	}
	logger.InfoContext(ctx, "cycle returned from maintenance", "cycle_id", cycleID)
	return nil
}
