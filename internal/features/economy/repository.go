// Package economy — repository.go выполняет все операции с таблицей balances.
// Все денежные операции выполняются в транзакциях БД с блокировкой строк
// (SELECT ... FOR UPDATE), чтобы конкурентные обработчики не могли вдвоём
// пройти проверку баланса и увести его в минус.
//
// NUMERIC(12,2) передаётся и читается как text: суммы ходят строками
// ("10.50") и разбираются в decimal.Decimal без потери точности.
package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"stanleytg.ru/stanley-bot/internal/common"
)

// Repository предоставляет методы для работы с балансами в PostgreSQL.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий экономики.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// компиляционная проверка соответствия контракту
var _ Store = (*Repository)(nil)

// GetBalance возвращает текущий баланс пользователя в чате.
// Если записи нет — 0 (запись создаётся только при первом начислении).
func (r *Repository) GetBalance(ctx context.Context, userID, chatID int64) (decimal.Decimal, error) {
	query := `SELECT balance::text FROM balances WHERE user_id = $1 AND chat_id = $2`
	var raw string
	err := r.db.QueryRow(ctx, query, userID, chatID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, nil
	}
	if err != nil {
		return decimal.Zero, common.WrapStore("чтение баланса", err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, common.WrapStore("разбор баланса", err)
	}
	return common.Round2(balance), nil
}

// AddBytes начисляет байты на счёт пользователя и возвращает новый баланс.
// Запись создаётся при отсутствии (неявная инициализация нулём).
// Отрицательная или нулевая сумма — ErrInvalidAmount: хранилище само
// защищает инвариант «баланс ≥ 0», не полагаясь на вызывающих.
func (r *Repository) AddBytes(ctx context.Context, userID, chatID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}

	query := `
		INSERT INTO balances (user_id, chat_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, chat_id) DO UPDATE
		SET balance = balances.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance::text
	`
	var raw string
	err := r.db.QueryRow(ctx, query, userID, chatID, amount.StringFixed(2)).Scan(&raw)
	if err != nil {
		return decimal.Zero, common.WrapStore("начисление байтов", err)
	}
	newBalance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, common.WrapStore("разбор баланса", err)
	}
	return newBalance, nil
}

// SubtractBytes списывает байты, если баланса хватает.
// Проверка и списание выполняются в одной транзакции с блокировкой строки:
// два конкурентных списания не могут вдвоём пройти проверку.
// Возвращает false (без изменений), если средств недостаточно.
func (r *Repository) SubtractBytes(ctx context.Context, userID, chatID int64, amount decimal.Decimal) (bool, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return false, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return false, common.WrapStore("начало транзакции", err)
	}
	defer tx.Rollback(ctx)

	current, ok, err := lockBalance(ctx, tx, userID, chatID)
	if err != nil {
		return false, err
	}
	if !ok || current.LessThan(amount) {
		return false, nil
	}

	_, err = tx.Exec(ctx, `
		UPDATE balances SET balance = balance - $3, updated_at = NOW()
		WHERE user_id = $1 AND chat_id = $2
	`, userID, chatID, amount.StringFixed(2))
	if err != nil {
		return false, common.WrapStore("списание байтов", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return false, common.WrapStore("фиксация списания", err)
	}
	return true, nil
}

// Transfer переводит байты от одного пользователя к другому в одном чате.
// Атомарная операция: либо списание и начисление происходят вместе,
// либо не происходит ничего. Сумма списания равна сумме начисления —
// общее количество байтов в чате не меняется.
func (r *Repository) Transfer(ctx context.Context, fromUserID, toUserID, chatID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	amount = common.Round2(amount)
	if amount.Sign() <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amount)
	}

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return decimal.Zero, common.WrapStore("начало транзакции", err)
	}
	defer tx.Rollback(ctx)

	// Блокируем строку отправителя и проверяем баланс
	senderBalance, ok, err := lockBalance(ctx, tx, fromUserID, chatID)
	if err != nil {
		return decimal.Zero, err
	}
	if !ok || senderBalance.LessThan(amount) {
		return decimal.Zero, common.ErrInsufficientFunds
	}

	// Списываем у отправителя
	_, err = tx.Exec(ctx, `
		UPDATE balances SET balance = balance - $3, updated_at = NOW()
		WHERE user_id = $1 AND chat_id = $2
	`, fromUserID, chatID, amount.StringFixed(2))
	if err != nil {
		return decimal.Zero, common.WrapStore("списание у отправителя", err)
	}

	// Начисляем получателю (запись создаётся при отсутствии)
	var raw string
	err = tx.QueryRow(ctx, `
		INSERT INTO balances (user_id, chat_id, balance)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, chat_id) DO UPDATE
		SET balance = balances.balance + EXCLUDED.balance, updated_at = NOW()
		RETURNING balance::text
	`, toUserID, chatID, amount.StringFixed(2)).Scan(&raw)
	if err != nil {
		return decimal.Zero, common.WrapStore("начисление получателю", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return decimal.Zero, common.WrapStore("фиксация перевода", err)
	}

	recipientBalance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, common.WrapStore("разбор баланса", err)
	}
	return recipientBalance, nil
}

// Rain раздаёт amountPerUser каждому из count случайных активных
// пользователей чата. Вся операция — одна транзакция: выбор получателей,
// проверка их количества, списание и начисления фиксируются вместе.
// На любом отказе (мало средств, мало получателей) балансы не меняются.
func (r *Repository) Rain(ctx context.Context, fromUserID, chatID int64, amountPerUser decimal.Decimal, count int) ([]int64, error) {
	amountPerUser = common.Round2(amountPerUser)
	if amountPerUser.Sign() <= 0 {
		return nil, fmt.Errorf("%w: %s", common.ErrInvalidAmount, amountPerUser)
	}
	if count <= 0 {
		return nil, fmt.Errorf("%w: %d", common.ErrInvalidCount, count)
	}
	total := common.Round2(amountPerUser.Mul(decimal.NewFromInt(int64(count))))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, common.WrapStore("начало транзакции", err)
	}
	defer tx.Rollback(ctx)

	senderBalance, ok, err := lockBalance(ctx, tx, fromUserID, chatID)
	if err != nil {
		return nil, err
	}
	if !ok || senderBalance.LessThan(total) {
		return nil, common.ErrInsufficientFunds
	}

	// Случайные получатели: активные (баланс > 0), без отправителя,
	// без повторов. ORDER BY RANDOM() честен на наших размерах чатов.
	rows, err := tx.Query(ctx, `
		SELECT user_id FROM balances
		WHERE chat_id = $1 AND user_id <> $2 AND balance > 0
		ORDER BY RANDOM()
		LIMIT $3
	`, chatID, fromUserID, count)
	if err != nil {
		return nil, common.WrapStore("выбор получателей", err)
	}
	recipients := make([]int64, 0, count)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, common.WrapStore("сканирование получателя", err)
		}
		recipients = append(recipients, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, common.WrapStore("чтение получателей", err)
	}

	if len(recipients) < count {
		// Откат без списания: rain либо проходит целиком, либо никак
		return nil, common.ErrInsufficientRecipients
	}

	_, err = tx.Exec(ctx, `
		UPDATE balances SET balance = balance - $3, updated_at = NOW()
		WHERE user_id = $1 AND chat_id = $2
	`, fromUserID, chatID, total.StringFixed(2))
	if err != nil {
		return nil, common.WrapStore("списание у отправителя", err)
	}

	for _, recipientID := range recipients {
		_, err = tx.Exec(ctx, `
			UPDATE balances SET balance = balance + $3, updated_at = NOW()
			WHERE user_id = $1 AND chat_id = $2
		`, recipientID, chatID, amountPerUser.StringFixed(2))
		if err != nil {
			return nil, common.WrapStore("начисление получателю", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, common.WrapStore("фиксация рейна", err)
	}
	return recipients, nil
}

// ChatStats возвращает сводку экономики по каждому чату.
func (r *Repository) ChatStats(ctx context.Context) ([]ChatStat, error) {
	rows, err := r.db.Query(ctx, `
		SELECT chat_id, COUNT(*), COALESCE(SUM(balance), 0)::text
		FROM balances
		WHERE balance > 0
		GROUP BY chat_id
		ORDER BY chat_id
	`)
	if err != nil {
		return nil, common.WrapStore("чтение сводки чатов", err)
	}
	defer rows.Close()

	var stats []ChatStat
	for rows.Next() {
		var s ChatStat
		var raw string
		if err := rows.Scan(&s.ChatID, &s.Holders, &raw); err != nil {
			return nil, common.WrapStore("сканирование сводки", err)
		}
		if s.TotalSupply, err = decimal.NewFromString(raw); err != nil {
			return nil, common.WrapStore("разбор сводки", err)
		}
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.WrapStore("чтение сводки чатов", err)
	}
	return stats, nil
}

// lockBalance читает баланс с блокировкой строки FOR UPDATE.
// Возвращает (баланс, найдена ли запись, ошибка).
func lockBalance(ctx context.Context, tx pgx.Tx, userID, chatID int64) (decimal.Decimal, bool, error) {
	var raw string
	err := tx.QueryRow(ctx, `
		SELECT balance::text FROM balances
		WHERE user_id = $1 AND chat_id = $2
		FOR UPDATE
	`, userID, chatID).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return decimal.Zero, false, nil
	}
	if err != nil {
		return decimal.Zero, false, common.WrapStore("блокировка баланса", err)
	}
	balance, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, false, common.WrapStore("разбор баланса", err)
	}
	return balance, true, nil
}
