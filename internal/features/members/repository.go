// Package members — repository.go отвечает за таблицы members и chat_members.
// Каждая функция выполняет один SQL-запрос и возвращает результат или ошибку.
package members

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"stanleytg.ru/stanley-bot/internal/common"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

var _ Store = (*Repository)(nil)

// Upsert добавляет участника в реестр.
// На конфликте по user_id обновляет username и имя: пользователь мог
// сменить их с прошлого сообщения.
func (r *Repository) Upsert(ctx context.Context, m *Member) error {
	query := `
		INSERT INTO members (user_id, username, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE
		SET username = EXCLUDED.username,
		    first_name = EXCLUDED.first_name,
		    last_name = EXCLUDED.last_name,
		    updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, m.UserID, m.Username, m.FirstName, m.LastName)
	if err != nil {
		return common.WrapStore("создание/обновление участника", err)
	}
	return nil
}

// GetByUsername: если не найден — common.ErrUserNotFound.
func (r *Repository) GetByUsername(ctx context.Context, username string) (*Member, error) {
	query := `
		SELECT id, user_id, username, first_name, last_name, created_at, updated_at
		FROM members
		WHERE LOWER(username) = LOWER($1)
	`
	var m Member
	err := r.db.QueryRow(ctx, query, username).Scan(
		&m.ID, &m.UserID, &m.Username, &m.FirstName, &m.LastName,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, common.WrapStore("чтение участника", err)
	}
	return &m, nil
}

// RecordJoin записывает вступление в чат.
// Повторное вступление перезаписывает пригласившего и время (last-write-wins).
func (r *Repository) RecordJoin(ctx context.Context, userID, chatID int64, inviterID *int64) error {
	query := `
		INSERT INTO chat_members (user_id, chat_id, inviter_id, joined_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (user_id, chat_id) DO UPDATE
		SET inviter_id = EXCLUDED.inviter_id, joined_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, userID, chatID, inviterID); err != nil {
		return common.WrapStore("запись вступления", err)
	}
	return nil
}

// GetInviter возвращает пригласившего пользователя (nil, если его нет).
func (r *Repository) GetInviter(ctx context.Context, userID, chatID int64) (*int64, error) {
	query := `SELECT inviter_id FROM chat_members WHERE user_id = $1 AND chat_id = $2`
	var inviterID *int64
	err := r.db.QueryRow(ctx, query, userID, chatID).Scan(&inviterID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, common.WrapStore("чтение пригласившего", err)
	}
	return inviterID, nil
}
