// Package economy — service.go содержит бизнес-логику экономики.
// Валидация сумм, переводы, получение баланса.
package economy

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/common"
)

// Service управляет экономикой бота (байты).
type Service struct {
	store Store // Хранилище балансов
}

// NewService создаёт новый сервис экономики.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetBalance возвращает текущий баланс пользователя в чате.
func (s *Service) GetBalance(ctx context.Context, userID, chatID int64) (decimal.Decimal, error) {
	return s.store.GetBalance(ctx, userID, chatID)
}

// AddBytes начисляет байты пользователю.
// Используется для награды пригласившему и возврата выигрыша флипа.
func (s *Service) AddBytes(ctx context.Context, userID, chatID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}
	return s.store.AddBytes(ctx, userID, chatID, amount)
}

// SubtractBytes списывает байты, если баланса хватает.
func (s *Service) SubtractBytes(ctx context.Context, userID, chatID int64, amount decimal.Decimal) (bool, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return false, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}
	return s.store.SubtractBytes(ctx, userID, chatID, amount)
}

// Transfer переводит байты от одного пользователя к другому.
// Выполняет все необходимые проверки:
//   - Нельзя переводить себе
//   - Сумма после округления должна быть положительной
//   - У отправителя должно быть достаточно байтов (проверяет хранилище)
//
// Возвращает новый баланс получателя.
func (s *Service) Transfer(ctx context.Context, fromUserID, toUserID, chatID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	// Проверка: нельзя отправить себе
	if fromUserID == toUserID {
		return decimal.Zero, common.ErrSelfTransfer
	}

	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}

	// Выполняем перевод (проверка баланса внутри хранилища,
	// списание и начисление — одной атомарной операцией)
	recipientBalance, err := s.store.Transfer(ctx, fromUserID, toUserID, chatID, amount)
	if err != nil {
		return decimal.Zero, err
	}

	log.WithFields(log.Fields{
		"from":    fromUserID,
		"to":      toUserID,
		"chat_id": chatID,
		"amount":  amount.StringFixed(2),
	}).Info("Перевод выполнен")

	return recipientBalance, nil
}

// ChatStats возвращает сводку экономики по чатам (для cron-снимка).
func (s *Service) ChatStats(ctx context.Context) ([]ChatStat, error) {
	return s.store.ChatStats(ctx)
}
