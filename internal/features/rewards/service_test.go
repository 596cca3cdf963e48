package rewards

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"stanleytg.ru/stanley-bot/internal/config"
	"stanleytg.ru/stanley-bot/internal/features/economy"
)

func testConfig() *config.Config {
	return &config.Config{
		RewardMedia: 3,
		RewardReply: 2,
		RewardPlain: 1,
	}
}

func newTestService() (*Service, *economy.MemoryStore) {
	ledger := economy.NewMemoryStore()
	return NewService(NewMemoryStore(ledger), testConfig()), ledger
}

func TestClassify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		msg  Message
		want Tier
	}{
		{"обычное", Message{}, TierPlain},
		{"реплай", Message{IsReply: true}, TierReply},
		{"медиа", Message{HasMedia: true}, TierMedia},
		{"медиа-реплай считается медиа", Message{HasMedia: true, IsReply: true}, TierMedia},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Classify(tt.msg); got != tt.want {
				t.Errorf("Classify = %s, ожидалось %s", got, tt.want)
			}
		})
	}
}

func TestRewardAmounts(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	tests := []struct {
		name string
		msg  Message
		want string
	}{
		{"текст", Message{AuthorID: 1, ChatID: -1, MessageID: 10}, "1"},
		{"реплай", Message{AuthorID: 1, ChatID: -1, MessageID: 11, IsReply: true}, "2"},
		{"медиа без текста", Message{AuthorID: 1, ChatID: -1, MessageID: 12, HasMedia: true}, "3"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			service, _ := newTestService()
			outcome, err := service.Reward(ctx, tt.msg)
			if err != nil {
				t.Fatalf("Reward: %v", err)
			}
			if outcome == nil {
				t.Fatal("награда не начислена")
			}
			if want := decimal.RequireFromString(tt.want); !outcome.Amount.Equal(want) {
				t.Errorf("награда = %s, ожидалось %s", outcome.Amount, want)
			}
		})
	}
}

func TestRewardPrivateSkipped(t *testing.T) {
	t.Parallel()

	service, ledger := newTestService()
	msg := Message{AuthorID: 1, ChatID: 1, MessageID: 10, IsPrivate: true}

	outcome, err := service.Reward(context.Background(), msg)
	if err != nil {
		t.Fatalf("Reward: %v", err)
	}
	if outcome != nil {
		t.Fatal("награда в личке начислена, ожидался no-op")
	}
	balance, _ := ledger.GetBalance(context.Background(), 1, 1)
	if !balance.IsZero() {
		t.Errorf("баланс после лички = %s, ожидался 0", balance)
	}
}

func TestRewardIdempotent(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, ledger := newTestService()
	msg := Message{AuthorID: 1, ChatID: -1, MessageID: 10}

	first, err := service.Reward(ctx, msg)
	if err != nil || first == nil {
		t.Fatalf("первое начисление: outcome=%v err=%v", first, err)
	}
	second, err := service.Reward(ctx, msg)
	if err != nil {
		t.Fatalf("повторное начисление: %v", err)
	}
	if second != nil {
		t.Fatal("повторная доставка начислила награду второй раз")
	}

	balance, _ := ledger.GetBalance(ctx, 1, -1)
	if want := decimal.NewFromInt(1); !balance.Equal(want) {
		t.Errorf("баланс = %s, ожидалось %s", balance, want)
	}
}

func TestHasRewarded(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore(economy.NewMemoryStore())

	rewarded, err := store.HasRewarded(ctx, 10, -1)
	if err != nil || rewarded {
		t.Fatalf("до начисления: rewarded=%v err=%v", rewarded, err)
	}

	if _, _, err := store.RewardOnce(ctx, 10, -1, 1, decimal.NewFromInt(1)); err != nil {
		t.Fatalf("RewardOnce: %v", err)
	}

	rewarded, err = store.HasRewarded(ctx, 10, -1)
	if err != nil || !rewarded {
		t.Fatalf("после начисления: rewarded=%v err=%v", rewarded, err)
	}
}

// Одинаковые (message_id, chat_id) из разных чатов не мешают друг другу.
func TestRewardSameMessageIDDifferentChats(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, ledger := newTestService()

	for _, chatID := range []int64{-1, -2} {
		outcome, err := service.Reward(ctx, Message{AuthorID: 1, ChatID: chatID, MessageID: 10})
		if err != nil || outcome == nil {
			t.Fatalf("чат %d: outcome=%v err=%v", chatID, outcome, err)
		}
	}

	for _, chatID := range []int64{-1, -2} {
		balance, _ := ledger.GetBalance(ctx, 1, chatID)
		if want := decimal.NewFromInt(1); !balance.Equal(want) {
			t.Errorf("чат %d: баланс = %s, ожидалось %s", chatID, balance, want)
		}
	}
}

// Конкурентные доставки одного сообщения: начислиться должно ровно один раз.
func TestRewardConcurrentDeliveries(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, ledger := newTestService()
	msg := Message{AuthorID: 1, ChatID: -1, MessageID: 10, HasMedia: true}

	const deliveries = 20
	var wg sync.WaitGroup
	var mu sync.Mutex
	credited := 0

	for i := 0; i < deliveries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcome, err := service.Reward(ctx, msg)
			if err != nil {
				t.Errorf("Reward: %v", err)
				return
			}
			if outcome != nil {
				mu.Lock()
				credited++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if credited != 1 {
		t.Errorf("начислений = %d, ожидалось ровно 1", credited)
	}
	balance, _ := ledger.GetBalance(ctx, 1, -1)
	if want := decimal.NewFromInt(3); !balance.Equal(want) {
		t.Errorf("баланс = %s, ожидалось %s", balance, want)
	}
}
