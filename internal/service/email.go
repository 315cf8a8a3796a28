package service

import (
	"context"
	"fmt"
	"time"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"cyclerent-backend/internal/config"
	"cyclerent-backend/internal/logger"
)

type sendgridEmailService struct {
	apiKey    string
	fromEmail string
	fromName  string
}

func NewEmailService(cfg config.EmailConfig) EmailService {
	return &sendgridEmailService{
		apiKey:    cfg.APIKey,
		fromEmail: cfg.From,
		fromName:  cfg.FromName,
	}
}

func (s *sendgridEmailService) send(ctx context.Context, to, toName, subject, plainText string) error {
	from := mail.NewEmail(s.fromName, s.fromEmail)
	recipient := mail.NewEmail(toName, to)
	message := mail.NewSingleEmail(from, subject, recipient, plainText, "")

	client := sendgrid.NewSendClient(s.apiKey)
	response, err := client.Send(message)
	if err != nil {
		logger.ErrorContext(ctx, "failed to send email", "to", to, "subject", subject, "error", err)
		return fmt.Errorf("failed to send email: %w", err)
	}
	if response.StatusCode >= 400 {
		logger.ErrorContext(ctx, "sendgrid rejected email", "to", to, "status", response.StatusCode)
		return fmt.Errorf("sendgrid error: status %d", response.StatusCode)
	}
	return nil
}

func rupees(paise int64) string {
	return fmt.Sprintf("₹%d.%02d", paise/100, paise%100)
}

func (s *sendgridEmailService) SendBookingConfirmation(ctx context.Context, email, name, code string, pickupAt time.Time, totalPaise int64) error {
	subject := fmt.Sprintf("Booking Confirmed: %s", code)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour booking %s is confirmed.\nPickup: %s\nTotal (incl. deposit): %s\n\nShow this code at the partner store to pick up your cycle.",
		name, code, pickupAt.Format("Mon, 02 Jan 2006 15:04"), rupees(totalPaise))
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) SendPickupReminder(ctx context.Context, email, name, code string, pickupAt time.Time) error {
	subject := fmt.Sprintf("Pickup Reminder: %s", code)
	body := fmt.Sprintf(
		"Hi %s,\n\nA reminder that your booking %s is scheduled for pickup on %s.",
		name, code, pickupAt.Format("Mon, 02 Jan 2006 15:04"))
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) SendCancellationApproved(ctx context.Context, email, name, code string, feePaise, refundPaise int64) error {
	subject := fmt.Sprintf("Cancellation Approved: %s", code)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour cancellation of booking %s was approved.\nCancellation fee: %s\nRefund: %s\n\nThe refund will reach your original payment method in 5-7 business days.",
		name, code, rupees(feePaise), rupees(refundPaise))
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) SendCancellationRejected(ctx context.Context, email, name, code, reason string) error {
	subject := fmt.Sprintf("Cancellation Rejected: %s", code)
	body := fmt.Sprintf(
		"Hi %s,\n\nYour cancellation request for booking %s was rejected.\nReason: %s\n\nThe booking remains active.",
		name, code, reason)
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) SendReturnRecorded(ctx context.Context, email, name, code string, lateFeePaise, damagePaise int64) error {
	subject := fmt.Sprintf("Return Recorded: %s", code)
	body := fmt.Sprintf(
		"Hi %s,\n\nThe cycle for booking %s has been returned and inspected.\nLate fee: %s\nDamage charges: %s\n\nYour deposit settlement is being processed.",
		name, code, rupees(lateFeePaise), rupees(damagePaise))
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) SendDepositReturned(ctx context.Context, email, name, code string, refundPaise int64) error {
	subject := fmt.Sprintf("Deposit Settled: %s", code)
	var body string
	if refundPaise >= 0 {
		body = fmt.Sprintf(
			"Hi %s,\n\nThe deposit for booking %s has been settled.\nRefund: %s\n\nThank you for riding with us.",
			name, code, rupees(refundPaise))
	} else {
		body = fmt.Sprintf(
			"Hi %s,\n\nThe deposit for booking %s did not cover the assessed charges.\nBalance due: %s\n\nOur team will contact you to collect the outstanding amount.",
			name, code, rupees(-refundPaise))
	}
	return s.send(ctx, email, name, subject, body)
}

func (s *sendgridEmailService) SendOverdueReminder(ctx context.Context, email, name, code string, hoursLate int64, accruedFeePaise int64) error {
	subject := fmt.Sprintf("Overdue Return: %s", code)
	body := fmt.Sprintf(
		"Hi %s,\n\nThe cycle for booking %s is %d hours past its return time.\nLate fee accrued so far: %s\n\nPlease return the cycle to the partner store as soon as possible.",
		name, code, hoursLate, rupees(accruedFeePaise))
	return s.send(ctx, email, name, subject, body)
}
