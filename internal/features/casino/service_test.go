package casino

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"stanleytg.ru/stanley-bot/internal/common"
	"stanleytg.ru/stanley-bot/internal/config"
	"stanleytg.ru/stanley-bot/internal/features/economy"
)

const testChatID = int64(-100500)

func testConfig() *config.Config {
	return &config.Config{
		FlipMinBet:      10,
		FlipMaxBet:      1000,
		FlipRakePercent: 1,
	}
}

func newTestService(coin func() bool, seedBalance string) (*Service, *economy.Service) {
	store := economy.NewMemoryStore()
	economyService := economy.NewService(store)
	if seedBalance != "" {
		_, _ = store.AddBytes(context.Background(), 1, testChatID, decimal.RequireFromString(seedBalance))
	}
	return NewService(economyService, testConfig(), WithCoin(coin)), economyService
}

func TestFlipWin(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, economyService := newTestService(func() bool { return true }, "500")

	result, err := service.Flip(ctx, 1, testChatID, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("Flip: %v", err)
	}
	if !result.Won {
		t.Fatal("монетка подменена на выигрыш, но Won=false")
	}
	if want := decimal.RequireFromString("1.00"); !result.Rake.Equal(want) {
		t.Errorf("комиссия = %s, ожидалось %s", result.Rake, want)
	}
	if want := decimal.RequireFromString("99.00"); !result.Winnings.Equal(want) {
		t.Errorf("выигрыш = %s, ожидалось %s", result.Winnings, want)
	}
	// 500 − 100 + 199 = 599
	if want := decimal.RequireFromString("599.00"); !result.NewBalance.Equal(want) {
		t.Errorf("новый баланс = %s, ожидалось %s", result.NewBalance, want)
	}

	balance, _ := economyService.GetBalance(ctx, 1, testChatID)
	if !balance.Equal(result.NewBalance) {
		t.Errorf("баланс в хранилище %s не совпадает с результатом %s", balance, result.NewBalance)
	}
}

func TestFlipLoss(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := newTestService(func() bool { return false }, "500")

	result, err := service.Flip(ctx, 1, testChatID, decimal.NewFromInt(100))
	if err != nil {
		t.Fatalf("Flip: %v", err)
	}
	if result.Won {
		t.Fatal("монетка подменена на проигрыш, но Won=true")
	}
	if want := decimal.RequireFromString("400"); !result.NewBalance.Equal(want) {
		t.Errorf("новый баланс = %s, ожидалось %s", result.NewBalance, want)
	}
}

func TestFlipOutOfRange(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name   string
		amount string
	}{
		{"ниже минимума", "9.99"},
		{"выше максимума", "1000.01"},
		{"ноль", "0"},
		{"отрицательная", "-50"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			service, economyService := newTestService(func() bool { return true }, "5000")

			_, err := service.Flip(ctx, 1, testChatID, decimal.RequireFromString(tt.amount))
			if !errors.Is(err, common.ErrOutOfRange) {
				t.Fatalf("Flip(%s): ожидалась ErrOutOfRange, получено %v", tt.amount, err)
			}
			balance, _ := economyService.GetBalance(ctx, 1, testChatID)
			if want := decimal.RequireFromString("5000"); !balance.Equal(want) {
				t.Errorf("баланс после отказа = %s, ожидалось %s", balance, want)
			}
		})
	}
}

// Граничные ставки принимаются.
func TestFlipBoundaryBets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for _, amount := range []string{"10", "1000"} {
		service, _ := newTestService(func() bool { return false }, "5000")
		if _, err := service.Flip(ctx, 1, testChatID, decimal.RequireFromString(amount)); err != nil {
			t.Errorf("Flip(%s): %v", amount, err)
		}
	}
}

func TestFlipInsufficientFunds(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, economyService := newTestService(func() bool { return true }, "50")

	_, err := service.Flip(ctx, 1, testChatID, decimal.NewFromInt(100))
	if !errors.Is(err, common.ErrInsufficientFunds) {
		t.Fatalf("Flip: ожидалась ErrInsufficientFunds, получено %v", err)
	}
	balance, _ := economyService.GetBalance(ctx, 1, testChatID)
	if want := decimal.RequireFromString("50"); !balance.Equal(want) {
		t.Errorf("баланс после отказа = %s, ожидалось %s", balance, want)
	}
}

// Ставка с дробной комиссией: 33.50 → комиссия 0.34 (0.335 округляется вверх).
func TestFlipRakeRounding(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := newTestService(func() bool { return true }, "500")

	result, err := service.Flip(ctx, 1, testChatID, decimal.RequireFromString("33.50"))
	if err != nil {
		t.Fatalf("Flip: %v", err)
	}
	if want := decimal.RequireFromString("0.34"); !result.Rake.Equal(want) {
		t.Errorf("комиссия = %s, ожидалось %s", result.Rake, want)
	}
	if want := decimal.RequireFromString("33.16"); !result.Winnings.Equal(want) {
		t.Errorf("выигрыш = %s, ожидалось %s", result.Winnings, want)
	}
}
