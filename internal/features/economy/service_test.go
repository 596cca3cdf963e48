package economy

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"stanleytg.ru/stanley-bot/internal/common"
)

const testChatID = int64(-100500)

func dec(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	return decimal.RequireFromString(s)
}

func seedBalance(t *testing.T, store *MemoryStore, userID int64, amount string) {
	t.Helper()
	if _, err := store.AddBytes(context.Background(), userID, testChatID, dec(t, amount)); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestGetBalanceDefaultZero(t *testing.T) {
	t.Parallel()

	service := NewService(NewMemoryStore())
	balance, err := service.GetBalance(context.Background(), 1, testChatID)
	if err != nil {
		t.Fatalf("GetBalance: %v", err)
	}
	if !balance.IsZero() {
		t.Errorf("баланс нового пользователя = %s, ожидался 0", balance)
	}
}

func TestAddBytesRounds(t *testing.T) {
	t.Parallel()

	service := NewService(NewMemoryStore())
	balance, err := service.AddBytes(context.Background(), 1, testChatID, dec(t, "0.005"))
	if err != nil {
		t.Fatalf("AddBytes: %v", err)
	}
	if want := dec(t, "0.01"); !balance.Equal(want) {
		t.Errorf("баланс = %s, ожидалось %s (округление половина вверх)", balance, want)
	}
}

func TestAddBytesRejectsNonPositive(t *testing.T) {
	t.Parallel()

	service := NewService(NewMemoryStore())
	for _, amount := range []string{"0", "-5", "0.004"} {
		if _, err := service.AddBytes(context.Background(), 1, testChatID, dec(t, amount)); !errors.Is(err, common.ErrInvalidAmount) {
			t.Errorf("AddBytes(%s): ожидалась ErrInvalidAmount, получено %v", amount, err)
		}
	}
}

func TestTransfer(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	service := NewService(store)
	seedBalance(t, store, 1, "100")

	recipientBalance, err := service.Transfer(ctx, 1, 2, testChatID, dec(t, "40"))
	if err != nil {
		t.Fatalf("Transfer: %v", err)
	}
	if want := dec(t, "40"); !recipientBalance.Equal(want) {
		t.Errorf("баланс получателя = %s, ожидалось %s", recipientBalance, want)
	}

	senderBalance, _ := service.GetBalance(ctx, 1, testChatID)
	if want := dec(t, "60"); !senderBalance.Equal(want) {
		t.Errorf("баланс отправителя = %s, ожидалось %s", senderBalance, want)
	}
}

func TestTransferErrors(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name    string
		from    int64
		to      int64
		amount  string
		wantErr error
	}{
		{"самому себе", 1, 1, "10", common.ErrSelfTransfer},
		{"ноль", 1, 2, "0", common.ErrInvalidAmount},
		{"отрицательная", 1, 2, "-10", common.ErrInvalidAmount},
		{"округляется в ноль", 1, 2, "0.004", common.ErrInvalidAmount},
		{"не хватает", 1, 2, "500", common.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			store := NewMemoryStore()
			service := NewService(store)
			seedBalance(t, store, 1, "100")

			_, err := service.Transfer(ctx, tt.from, tt.to, testChatID, dec(t, tt.amount))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Transfer: ожидалась %v, получено %v", tt.wantErr, err)
			}

			// Ни один байт не должен сдвинуться
			senderBalance, _ := service.GetBalance(ctx, 1, testChatID)
			if want := dec(t, "100"); !senderBalance.Equal(want) {
				t.Errorf("баланс отправителя после ошибки = %s, ожидалось %s", senderBalance, want)
			}
			recipientBalance, _ := service.GetBalance(ctx, 2, testChatID)
			if tt.from != tt.to && !recipientBalance.IsZero() {
				t.Errorf("баланс получателя после ошибки = %s, ожидался 0", recipientBalance)
			}
		})
	}
}

func TestTransferConservation(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	service := NewService(store)
	seedBalance(t, store, 1, "100")
	seedBalance(t, store, 2, "50")

	if _, err := service.Transfer(ctx, 1, 2, testChatID, dec(t, "33.33")); err != nil {
		t.Fatalf("Transfer: %v", err)
	}

	a, _ := service.GetBalance(ctx, 1, testChatID)
	b, _ := service.GetBalance(ctx, 2, testChatID)
	if total := a.Add(b); !total.Equal(dec(t, "150")) {
		t.Errorf("сумма балансов после перевода = %s, ожидалось 150", total)
	}
}

func TestSubtractBytesInsufficient(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	service := NewService(store)
	seedBalance(t, store, 1, "10")

	ok, err := service.SubtractBytes(ctx, 1, testChatID, dec(t, "10.01"))
	if err != nil {
		t.Fatalf("SubtractBytes: %v", err)
	}
	if ok {
		t.Fatal("списание сверх баланса прошло")
	}
	balance, _ := service.GetBalance(ctx, 1, testChatID)
	if want := dec(t, "10"); !balance.Equal(want) {
		t.Errorf("баланс после отказа = %s, ожидалось %s", balance, want)
	}
}

// Конкурентные списания не должны увести баланс в минус:
// при балансе 100 и 50 списаниях по 10 пройдут ровно 10.
func TestSubtractBytesConcurrent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	service := NewService(store)
	seedBalance(t, store, 1, "100")

	const attempts = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := service.SubtractBytes(ctx, 1, testChatID, decimal.NewFromInt(10))
			if err != nil {
				t.Errorf("SubtractBytes: %v", err)
				return
			}
			if ok {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if succeeded != 10 {
		t.Errorf("успешных списаний = %d, ожидалось 10", succeeded)
	}
	balance, _ := service.GetBalance(ctx, 1, testChatID)
	if !balance.IsZero() {
		t.Errorf("баланс после гонки = %s, ожидался 0", balance)
	}
}

func TestBalancesIsolatedPerChat(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	service := NewService(store)

	otherChatID := int64(-42)
	if _, err := store.AddBytes(ctx, 1, testChatID, dec(t, "100")); err != nil {
		t.Fatal(err)
	}
	if _, err := store.AddBytes(ctx, 1, otherChatID, dec(t, "7")); err != nil {
		t.Fatal(err)
	}

	balance, _ := service.GetBalance(ctx, 1, otherChatID)
	if want := dec(t, "7"); !balance.Equal(want) {
		t.Errorf("баланс в другом чате = %s, ожидалось %s", balance, want)
	}
}

func TestChatStats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	service := NewService(store)
	seedBalance(t, store, 1, "100")
	seedBalance(t, store, 2, "50.50")

	stats, err := service.ChatStats(ctx)
	if err != nil {
		t.Fatalf("ChatStats: %v", err)
	}
	if len(stats) != 1 {
		t.Fatalf("чатов в сводке = %d, ожидался 1", len(stats))
	}
	if stats[0].Holders != 2 {
		t.Errorf("держателей = %d, ожидалось 2", stats[0].Holders)
	}
	if want := dec(t, "150.50"); !stats[0].TotalSupply.Equal(want) {
		t.Errorf("эмиссия = %s, ожидалось %s", stats[0].TotalSupply, want)
	}
}
