package email

import (
	"context"
	"fmt"

	"github.com/Domenick1991/airwallet/internal/kafka"
	"go.uber.org/zap"
)

type Sender struct {
	logger *zap.Logger
}

func NewSender(logger *zap.Logger) *Sender {
	return &Sender{logger: logger}
}

// Subject renders the notification subject for an event.
func Subject(event kafka.Event) string {
	switch event.Type {
	case kafka.EventBookingCreated:
		return fmt.Sprintf("Booking %s confirmed for flight %s", event.PNR, event.FlightNumber)
	case kafka.EventBookingCancelled:
		return fmt.Sprintf("Booking %s cancelled, %d refunded to your wallet", event.PNR, event.Refund)
	case kafka.EventFundsAdded:
		return fmt.Sprintf("%d added to your wallet", event.Amount)
	default:
		return ""
	}
}

func (s *Sender) Send(ctx context.Context, event kafka.Event) error {
	subject := Subject(event)
	if subject == "" {
		s.logger.Debug("No notification for event", zap.String("type", event.Type))
		return nil
	}

	s.logger.Info("Sending notification",
		zap.Int64("user_id", event.UserID),
		zap.String("type", event.Type),
		zap.String("subject", subject),
		zap.Int64("balance", event.Balance))
	return nil
}
