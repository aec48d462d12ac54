package services

import (
	"context"
	"fmt"
	"math/big"

	"github.com/chainpass/chainpass-api/internal/ticketing"
	"github.com/google/uuid"
	"github.com/resend/resend-go/v2"
	"go.uber.org/zap"
)

// PurchaseReceipt contains the data for a purchase confirmation email.
type PurchaseReceipt struct {
	EventID     uint64
	AmountMicro *big.Int
	TxHash      string
}

// ReceiptSender delivers purchase confirmations.
type ReceiptSender interface {
	SendPurchaseReceipt(ctx context.Context, receipt PurchaseReceipt) error
}

// EmailService sends purchase receipts through Resend.
type EmailService struct {
	client    *resend.Client
	logger    *zap.Logger
	fromEmail string
	fromName  string
	toEmail   string
}

// NewEmailService creates an email service for the configured buyer address.
func NewEmailService(apiKey, fromEmail, fromName, toEmail string, logger *zap.Logger) *EmailService {
	return &EmailService{
		client:    resend.NewClient(apiKey),
		logger:    logger,
		fromEmail: fromEmail,
		fromName:  fromName,
		toEmail:   toEmail,
	}
}

// SendPurchaseReceipt sends a confirmation for a booked ticket.
func (s *EmailService) SendPurchaseReceipt(ctx context.Context, receipt PurchaseReceipt) error {
	from := fmt.Sprintf("%s <%s>", s.fromName, s.fromEmail)
	amount := ticketing.DisplayPrice(receipt.AmountMicro)

	params := &resend.SendEmailRequest{
		From:    from,
		To:      []string{s.toEmail},
		Subject: fmt.Sprintf("Your ticket for event %d", receipt.EventID),
		Html: fmt.Sprintf(
			"<p>Your ticket for event <strong>%d</strong> is booked.</p>"+
				"<p>Amount paid: %.6f</p>"+
				"<p>Transaction: <code>%s</code></p>",
			receipt.EventID, amount, receipt.TxHash,
		),
		Text: fmt.Sprintf(
			"Your ticket for event %d is booked.\nAmount paid: %.6f\nTransaction: %s\n",
			receipt.EventID, amount, receipt.TxHash,
		),
		Headers: map[string]string{
			"X-Entity-Ref-ID": uuid.New().String(),
		},
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return fmt.Errorf("failed to send purchase receipt: %w", err)
	}

	s.logger.Info("Purchase receipt sent",
		zap.String("email_id", sent.Id),
		zap.Uint64("event_id", receipt.EventID),
		zap.String("tx_hash", receipt.TxHash))

	return nil
}
