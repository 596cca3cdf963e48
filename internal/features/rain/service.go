// Package rain — service.go содержит логику раздачи байтов.
//
// Раздача целиком атомарна: выбор получателей, проверка их количества,
// списание и начисления — одна операция хранилища. Если получателей
// меньше, чем запрошено, не происходит вообще ничего (в том числе
// списания с отправителя).
package rain

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/common"
	"stanleytg.ru/stanley-bot/internal/features/economy"
)

// Service управляет раздачами.
type Service struct {
	store economy.Store // Хранилище балансов (атомарный Rain внутри)
}

// NewService создаёт сервис раздач.
func NewService(store economy.Store) *Service {
	return &Service{store: store}
}

// Rain раздаёт amountPerUser каждому из count случайных активных
// участников чата (баланс > 0, отправитель исключён, без повторов).
//
// Проверки до любых изменений:
//   - amountPerUser после округления > 0, иначе ErrInvalidAmount;
//   - count > 0, иначе ErrInvalidCount;
//   - баланс отправителя ≥ amountPerUser × count, иначе ErrInsufficientFunds;
//   - в чате достаточно получателей, иначе ErrInsufficientRecipients.
func (s *Service) Rain(ctx context.Context, fromUserID, chatID int64, amountPerUser decimal.Decimal, count int) (*Result, error) {
	amountPerUser = common.Round2(amountPerUser)
	if amountPerUser.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amountPerUser)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidCount, count)
	}

	recipients, err := s.store.Rain(ctx, fromUserID, chatID, amountPerUser, count)
	if err != nil {
		return nil, err
	}

	total := common.Round2(amountPerUser.Mul(decimal.NewFromInt(int64(count))))
	newBalance, err := s.store.GetBalance(ctx, fromUserID, chatID)
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"from":            fromUserID,
		"chat_id":         chatID,
		"amount_per_user": amountPerUser.StringFixed(2),
		"count":           count,
		"total":           total.StringFixed(2),
	}).Info("Рейн выполнен")

	return &Result{
		Recipients:    recipients,
		AmountPerUser: amountPerUser,
		Total:         total,
		NewBalance:    newBalance,
	}, nil
}
