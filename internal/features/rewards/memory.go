// Package rewards — memory.go реализует гейт наград в памяти (для тестов).
package rewards

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	"stanleytg.ru/stanley-bot/internal/common"
	"stanleytg.ru/stanley-bot/internal/features/economy"
)

type markerKey struct {
	messageID int64
	chatID    int64
}

// MemoryStore — гейт наград поверх экономического MemoryStore.
// Мьютекс гейта сериализует пары «вставить маркер + начислить»,
// что эквивалентно транзакции боевого репозитория.
type MemoryStore struct {
	mu      sync.Mutex
	markers map[markerKey]struct{}
	ledger  *economy.MemoryStore
}

// NewMemoryStore создаёт гейт поверх хранилища балансов.
func NewMemoryStore(ledger *economy.MemoryStore) *MemoryStore {
	return &MemoryStore{
		markers: make(map[markerKey]struct{}),
		ledger:  ledger,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) HasRewarded(_ context.Context, messageID, chatID int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.markers[markerKey{messageID, chatID}]
	return ok, nil
}

func (s *MemoryStore) RewardOnce(ctx context.Context, messageID, chatID, userID int64, amount decimal.Decimal) (bool, decimal.Decimal, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return false, decimal.Zero, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := markerKey{messageID, chatID}
	if _, ok := s.markers[key]; ok {
		return false, decimal.Zero, nil
	}
	s.markers[key] = struct{}{}

	newBalance, err := s.ledger.AddBytes(ctx, userID, chatID, amount)
	if err != nil {
		// Начисление не прошло — маркер не оставляем
		delete(s.markers, key)
		return false, decimal.Zero, err
	}
	return true, newBalance, nil
}
