// Package members — store.go описывает контракт хранилища участников.
package members

import "context"

// Store — операции над реестром участников и записями о вступлениях.
type Store interface {
	// Upsert создаёт или обновляет запись реестра по user_id.
	Upsert(ctx context.Context, member *Member) error

	// GetByUsername ищет участника по @username (без @).
	// Если не найден — common.ErrUserNotFound.
	GetByUsername(ctx context.Context, username string) (*Member, error)

	// RecordJoin записывает вступление в чат (last-write-wins:
	// повторное вступление перезаписывает прошлую запись).
	RecordJoin(ctx context.Context, userID, chatID int64, inviterID *int64) error

	// GetInviter возвращает пригласившего (nil, если вступил сам
	// или записи нет).
	GetInviter(ctx context.Context, userID, chatID int64) (*int64, error)
}
