// Package members — memory.go реализует хранилище участников в памяти (для тестов).
package members

import (
	"context"
	"strings"
	"sync"
	"time"

	"stanleytg.ru/stanley-bot/internal/common"
)

type joinKey struct {
	userID int64
	chatID int64
}

// MemoryStore — потокобезопасный реестр участников в памяти.
type MemoryStore struct {
	mu      sync.Mutex
	members map[int64]*Member
	joins   map[joinKey]*ChatJoin
}

// NewMemoryStore создаёт пустой реестр.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		members: make(map[int64]*Member),
		joins:   make(map[joinKey]*ChatJoin),
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) Upsert(_ context.Context, m *Member) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := *m
	stored.UpdatedAt = time.Now()
	s.members[m.UserID] = &stored
	return nil
}

func (s *MemoryStore) GetByUsername(_ context.Context, username string) (*Member, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, m := range s.members {
		if strings.EqualFold(m.Username, username) {
			found := *m
			return &found, nil
		}
	}
	return nil, common.ErrUserNotFound
}

func (s *MemoryStore) RecordJoin(_ context.Context, userID, chatID int64, inviterID *int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.joins[joinKey{userID, chatID}] = &ChatJoin{
		UserID:    userID,
		ChatID:    chatID,
		InviterID: inviterID,
		JoinedAt:  time.Now(),
	}
	return nil
}

func (s *MemoryStore) GetInviter(_ context.Context, userID, chatID int64) (*int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	join, ok := s.joins[joinKey{userID, chatID}]
	if !ok {
		return nil, nil
	}
	return join.InviterID, nil
}
