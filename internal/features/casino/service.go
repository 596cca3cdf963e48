// Package casino — service.go координирует флип от ставки до выплаты.
//
// Механика: ставка списывается сразу, затем честная монетка 50/50.
// Выигрыш возвращает ставку плюс ставку за вычетом комиссии
// (2×ставка − комиссия). Проигранная ставка никому не начисляется —
// она просто исчезает из экономики чата (доход бота).
package casino

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/common"
	"stanleytg.ru/stanley-bot/internal/config"
	"stanleytg.ru/stanley-bot/internal/features/economy"
)

// Service управляет флипом.
type Service struct {
	economyService *economy.Service
	cfg            *config.Config

	// coinFn бросает монетку (true — выигрыш). По умолчанию —
	// math/rand с непредсказуемым сидом; в тестах подменяется.
	coinFn func() bool
}

// Option настраивает сервис.
type Option func(*Service)

// WithCoin подменяет источник случайности (для тестов).
func WithCoin(coinFn func() bool) Option {
	return func(s *Service) { s.coinFn = coinFn }
}

// NewService создаёт сервис флипа.
func NewService(economyService *economy.Service, cfg *config.Config, options ...Option) *Service {
	s := &Service{
		economyService: economyService,
		cfg:            cfg,
		coinFn:         func() bool { return rand.Intn(2) == 0 },
	}
	for _, option := range options {
		option(s)
	}
	return s
}

// Flip выполняет полный цикл игры.
//
// Проверки до любых изменений:
//   - ставка после округления в диапазоне [FLIP_MIN_BET, FLIP_MAX_BET],
//     иначе ErrOutOfRange;
//   - баланса хватает, иначе ErrInsufficientFunds (без списания).
func (s *Service) Flip(ctx context.Context, userID, chatID int64, amount decimal.Decimal) (*FlipResult, error) {
	amount = common.Round2(amount)
	minBet := decimal.NewFromInt(s.cfg.FlipMinBet)
	maxBet := decimal.NewFromInt(s.cfg.FlipMaxBet)
	if amount.LessThan(minBet) || amount.GreaterThan(maxBet) {
		return nil, fmt.Errorf("%w: %s не входит в [%s, %s]",
			common.ErrOutOfRange, amount, minBet, maxBet)
	}

	// Списываем ставку (атомарная проверка баланса внутри хранилища)
	ok, err := s.economyService.SubtractBytes(ctx, userID, chatID, amount)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrInsufficientFunds
	}

	result := &FlipResult{Amount: amount}

	if s.coinFn() {
		// Выигрыш: комиссия с выигранной части, возврат 2×ставка − комиссия
		result.Won = true
		result.Rake = common.Round2(amount.Mul(s.cfg.RakeMultiplier()))
		result.Winnings = amount.Sub(result.Rake)
		totalReturn := amount.Add(result.Winnings)

		result.NewBalance, err = s.economyService.AddBytes(ctx, userID, chatID, totalReturn)
		if err != nil {
			return nil, err
		}
	} else {
		// Проигрыш: ставка сгорела
		result.NewBalance, err = s.economyService.GetBalance(ctx, userID, chatID)
		if err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"user_id": userID,
		"chat_id": chatID,
		"amount":  amount.StringFixed(2),
		"won":     result.Won,
	}).Info("Флип сыгран")

	return result, nil
}
