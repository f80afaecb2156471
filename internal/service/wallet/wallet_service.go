package wallet

import (
	"context"

	"github.com/Domenick1991/airwallet/internal/domain"
	"github.com/Domenick1991/airwallet/internal/kafka"
	"github.com/Domenick1991/airwallet/internal/repository"
	"go.uber.org/zap"
)

const topUpDescription = "Added funds to wallet"

type WalletUseCase interface {
	AddFunds(ctx context.Context, userID, amount int64) (int64, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
	History(ctx context.Context, userID int64) ([]domain.WalletTransaction, error)
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

type WalletService struct {
	store              repository.Store
	producer           Producer
	eventsTopic        string
	notificationsTopic string
}

type WalletServiceOption func(*WalletService)

func WithEvents(producer Producer, eventsTopic, notificationsTopic string) WalletServiceOption {
	return func(s *WalletService) {
		s.producer = producer
		s.eventsTopic = eventsTopic
		s.notificationsTopic = notificationsTopic
	}
}

func NewWalletService(store repository.Store, opts ...WalletServiceOption) *WalletService {
	service := &WalletService{store: store}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

// AddFunds credits amount with a single atomic increment and records the
// ledger entry in the same transaction. It returns the new balance.
func (s *WalletService) AddFunds(ctx context.Context, userID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, domain.ErrInvalidAmount
	}

	var balance int64
	err := s.store.WithinTx(ctx, func(ctx context.Context, repos repository.Repositories) error {
		var err error
		balance, err = repos.Users().Credit(ctx, userID, amount)
		if err != nil {
			return err
		}
		return repos.Ledger().Append(ctx, &domain.WalletTransaction{
			UserID:      userID,
			Amount:      amount,
			Type:        domain.TransactionCredit,
			Description: topUpDescription,
		})
	})
	if err != nil {
		return 0, s.internal("add funds", err, zap.Int64("user_id", userID))
	}

	zap.L().Info("Wallet topped up", zap.Int64("user_id", userID), zap.Int64("amount", amount), zap.Int64("balance", balance))

	event := kafka.NewEvent(kafka.EventFundsAdded, userID)
	event.Amount = amount
	event.Balance = balance
	s.publish(ctx, event)

	return balance, nil
}

func (s *WalletService) GetBalance(ctx context.Context, userID int64) (int64, error) {
	user, err := s.store.Users().GetByID(ctx, userID)
	if err != nil {
		return 0, s.internal("load wallet", err, zap.Int64("user_id", userID))
	}
	return user.WalletBalance, nil
}

// History lists the user's ledger, newest first.
func (s *WalletService) History(ctx context.Context, userID int64) ([]domain.WalletTransaction, error) {
	if _, err := s.store.Users().GetByID(ctx, userID); err != nil {
		return nil, s.internal("load wallet", err, zap.Int64("user_id", userID))
	}
	entries, err := s.store.Ledger().ListByUser(ctx, userID)
	if err != nil {
		return nil, s.internal("list wallet transactions", err, zap.Int64("user_id", userID))
	}
	return entries, nil
}

func (s *WalletService) publish(ctx context.Context, event kafka.Event) {
	if s.producer == nil {
		return
	}
	for _, topic := range []string{s.eventsTopic, s.notificationsTopic} {
		if topic == "" {
			continue
		}
		if err := s.producer.Publish(ctx, topic, event.Key(), event); err != nil {
			zap.L().Warn("Failed to publish event", zap.String("topic", topic), zap.String("type", event.Type), zap.Error(err))
		}
	}
}

func (s *WalletService) internal(msg string, err error, fields ...zap.Field) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	zap.L().Error("Failed to "+msg, append(fields, zap.Error(err))...)
	return domain.Internal(err)
}

var _ WalletUseCase = (*WalletService)(nil)
