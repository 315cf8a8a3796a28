// Package payment adapts the Midtrans core API to the booking engine. The
// gateway identifies a transaction by the booking code; webhook payloads are
// never trusted directly, the status is always re-fetched server-side.
package payment

import (
	"context"
	"fmt"

	"github.com/midtrans/midtrans-go"
	"github.com/midtrans/midtrans-go/coreapi"

	"cyclerent-backend/internal/config"
	"cyclerent-backend/internal/domain"
	"cyclerent-backend/internal/logger"
)

// Gateway resolves an external payment signal into a payment status.
type Gateway interface {
	// ResolveStatus fetches the authoritative transaction status for a
	// booking code and maps it onto the payment axis. A transaction that is
	// still in flight returns ("", false, nil).
	ResolveStatus(ctx context.Context, bookingCode string) (domain.PaymentStatus, bool, error)
}

type midtransGateway struct {
	core *coreapi.Client
}

func NewMidtransGateway(cfg config.PaymentConfig) Gateway {
	env := midtrans.Sandbox
	if cfg.Environment == "production" {
		env = midtrans.Production
	}

	var client coreapi.Client
	client.New(cfg.ServerKey, env)
	return &midtransGateway{core: &client}
}

func (g *midtransGateway) ResolveStatus(ctx context.Context, bookingCode string) (domain.PaymentStatus, bool, error) {
	status, err := g.core.CheckTransaction(bookingCode)
	if err != nil {
		return "", false, fmt.Errorf("failed to check transaction %s: %w", bookingCode, err)
	}
	if status == nil {
		return "", false, fmt.Errorf("no transaction found for %s", bookingCode)
	}

	logger.DebugContext(ctx, "midtrans transaction status",
		"order_id", bookingCode, "status", status.TransactionStatus)

	switch status.TransactionStatus {
	case "capture", "settlement":
		return domain.PaymentStatusCompleted, true, nil
	case "deny", "expire", "cancel":
		return domain.PaymentStatusFailed, true, nil
	default:
		// pending, authorize and friends: nothing to apply yet.
		return "", false, nil
	}
}
