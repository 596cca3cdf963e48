// Package economy — store.go описывает контракт хранилища балансов.
//
// У хранилища две реализации: Repository (PostgreSQL, боевая)
// и MemoryStore (в памяти, для тестов). Обе обязаны выполнять
// каждую операцию атомарно: два конкурентных списания с одного
// баланса не могут пройти вместе, если их сумма больше баланса.
package economy

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store — атомарные операции над балансами (user_id, chat_id).
type Store interface {
	// GetBalance возвращает баланс или 0, если записи нет.
	GetBalance(ctx context.Context, userID, chatID int64) (decimal.Decimal, error)

	// AddBytes начисляет байты (создаёт запись при отсутствии)
	// и возвращает новый баланс. Отрицательные и нулевые суммы
	// отклоняются с common.ErrInvalidAmount — защита инварианта
	// «баланс ≥ 0» на уровне хранилища.
	AddBytes(ctx context.Context, userID, chatID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// SubtractBytes списывает байты, если баланса хватает.
	// Возвращает false без изменений, если средств недостаточно.
	// Проверка и списание — одно атомарное действие.
	SubtractBytes(ctx context.Context, userID, chatID int64, amount decimal.Decimal) (bool, error)

	// Transfer атомарно переводит сумму между двумя пользователями
	// одного чата: либо списание и начисление происходят вместе,
	// либо не происходит ничего (common.ErrInsufficientFunds).
	// Возвращает новый баланс получателя.
	Transfer(ctx context.Context, fromUserID, toUserID, chatID int64, amount decimal.Decimal) (decimal.Decimal, error)

	// Rain атомарно раздаёт amountPerUser каждому из count случайных
	// получателей чата с положительным балансом (отправитель исключён,
	// получатели не повторяются). При нехватке средств —
	// common.ErrInsufficientFunds, при нехватке получателей —
	// common.ErrInsufficientRecipients; в обоих случаях балансы
	// не меняются вовсе. Возвращает выбранных получателей.
	Rain(ctx context.Context, fromUserID, chatID int64, amountPerUser decimal.Decimal, count int) ([]int64, error)

	// ChatStats возвращает сводку по всем чатам (для ежедневного снимка).
	ChatStats(ctx context.Context) ([]ChatStat, error)
}
