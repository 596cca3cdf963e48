// Package rewards — repository.go выполняет операции с таблицей message_rewards.
// Вставка маркера и начисление награды идут в одной транзакции БД:
// либо сообщение помечено И автор получил байты, либо ни то, ни другое.
package rewards

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stanleytg.ru/stanley-bot/internal/common"
)

// Repository работает с маркерами наград в PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт репозиторий наград.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// HasRewarded проверяет, награждалось ли сообщение.
func (r *Repository) HasRewarded(ctx context.Context, messageID, chatID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM message_rewards WHERE message_id = $1 AND chat_id = $2)`,
		messageID, chatID,
	).Scan(&exists)
	if err != nil {
		return false, common.WrapStore("проверка маркера награды", err)
	}
	return exists, nil
}

// RewardOnce вставляет маркер и начисляет награду одной транзакцией.
// Решение о допуске — результат INSERT ... ON CONFLICT DO NOTHING:
// ровно одна из конкурентных вставок одного ключа вставит строку,
// остальные получат rowsAffected=0 и не начислят ничего.
func (r *Repository) RewardOnce(ctx context.Context, messageID, chatID, userID int64, amount decimal.Decimal) (bool, decimal.Decimal, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return false, decimal.Zero, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, decimal.Zero, common.WrapStore("начало транзакции", err)
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx, `
		INSERT INTO message_rewards (message_id, chat_id, user_id, amount)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (message_id, chat_id) DO NOTHING
	`, messageID, chatID, userID, amount.StringFixed(2))
	if err != nil {
		return false, decimal.Zero, common.WrapStore("вставка маркера награды", err)
	}
	if tag.RowsAffected() == 0 {
		// Уже награждено — дубль доставки или повторная обработка
		return false, decimal.Zero, nil
	}

	var raw string
	err = tx.QueryRow(ctx, `
		INSERT INTO balances (user_id, chat_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, chat_id) DO UPDATE
		SET balance = balances.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance::text
	`, userID, chatID, amount.StringFixed(2)).Scan(&raw)
	if err != nil {
		return false, decimal.Zero, common.WrapStore("начисление награды", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, decimal.Zero, common.WrapStore("фиксация награды", err)
	}

	newBalance, err := decimal.NewFromString(raw)
	if err != nil {
		return false, decimal.Zero, common.WrapStore("разбор баланса", err)
	}
	return true, newBalance, nil
}
