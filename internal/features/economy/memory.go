// Package economy — memory.go реализует хранилище балансов в памяти.
// Используется в тестах вместо PostgreSQL: один мьютекс сериализует
// все операции, поэтому атомарность та же, что у транзакций с FOR UPDATE.
package economy

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"sync"

	"github.com/shopspring/decimal"

	"stanleytg.ru/stanley-bot/internal/common"
)

type balanceKey struct {
	userID int64
	chatID int64
}

// MemoryStore — потокобезопасное хранилище балансов в памяти.
type MemoryStore struct {
	mu       sync.Mutex
	balances map[balanceKey]decimal.Decimal
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{balances: make(map[balanceKey]decimal.Decimal)}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) GetBalance(_ context.Context, userID, chatID int64) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return common.Round2(s.balances[balanceKey{userID, chatID}]), nil
}

func (s *MemoryStore) AddBytes(_ context.Context, userID, chatID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := balanceKey{userID, chatID}
	s.balances[key] = s.balances[key].Add(amount)
	return s.balances[key], nil
}

func (s *MemoryStore) SubtractBytes(_ context.Context, userID, chatID int64, amount decimal.Decimal) (bool, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return false, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	key := balanceKey{userID, chatID}
	if s.balances[key].LessThan(amount) {
		return false, nil
	}
	s.balances[key] = s.balances[key].Sub(amount)
	return true, nil
}

func (s *MemoryStore) Transfer(_ context.Context, fromUserID, toUserID, chatID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	from := balanceKey{fromUserID, chatID}
	to := balanceKey{toUserID, chatID}
	if s.balances[from].LessThan(amount) {
		return decimal.Zero, common.ErrInsufficientFunds
	}
	s.balances[from] = s.balances[from].Sub(amount)
	s.balances[to] = s.balances[to].Add(amount)
	return s.balances[to], nil
}

func (s *MemoryStore) Rain(_ context.Context, fromUserID, chatID int64, amountPerUser decimal.Decimal, count int) ([]int64, error) {
	amountPerUser = common.Round2(amountPerUser)
	if amountPerUser.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amountPerUser)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidCount, count)
	}
	total := common.Round2(amountPerUser.Mul(decimal.NewFromInt(int64(count))))

	s.mu.Lock()
	defer s.mu.Unlock()

	from := balanceKey{fromUserID, chatID}
	if s.balances[from].LessThan(total) {
		return nil, common.ErrInsufficientFunds
	}

	// Кандидаты: активные пользователи чата без отправителя
	var eligible []int64
	for key, balance := range s.balances {
		if key.chatID == chatID && key.userID != fromUserID && balance.Sign() > 0 {
			eligible = append(eligible, key.userID)
		}
	}
	if len(eligible) < count {
		return nil, common.ErrInsufficientRecipients
	}

	rand.Shuffle(len(eligible), func(i, j int) {
		eligible[i], eligible[j] = eligible[j], eligible[i]
	})
	recipients := eligible[:count]

	s.balances[from] = s.balances[from].Sub(total)
	for _, recipientID := range recipients {
		key := balanceKey{recipientID, chatID}
		s.balances[key] = s.balances[key].Add(amountPerUser)
	}
	return recipients, nil
}

func (s *MemoryStore) ChatStats(_ context.Context) ([]ChatStat, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	byChat := make(map[int64]*ChatStat)
	for key, balance := range s.balances {
		if balance.Sign() <= 0 {
			continue
		}
		stat, ok := byChat[key.chatID]
		if !ok {
			stat = &ChatStat{ChatID: key.chatID}
			byChat[key.chatID] = stat
		}
		stat.Holders++
		stat.TotalSupply = stat.TotalSupply.Add(balance)
	}

	stats := make([]ChatStat, 0, len(byChat))
	for _, stat := range byChat {
		stats = append(stats, *stat)
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].ChatID < stats[j].ChatID })
	return stats, nil
}
