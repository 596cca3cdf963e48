// Package members управляет участниками: регистрацией для поиска по
// @username и записями о вступлениях в чаты (для награды пригласившему).
// models.go описывает структуры данных.
package members

import "time"

// Member представляет пользователя в реестре бота.
// Реестр глобальный (не по чатам): нужен, чтобы /send @username
// мог превратить username в числовой user ID.
type Member struct {
	ID        int64     `db:"id"`         // Автоинкрементный ID записи в БД
	UserID    int64     `db:"user_id"`    // Telegram user ID (уникальный)
	Username  string    `db:"username"`   // @username (может быть пустым)
	FirstName string    `db:"first_name"` // Имя пользователя
	LastName  string    `db:"last_name"`  // Фамилия (может быть пустой)
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ChatJoin — запись о вступлении пользователя в чат.
// Одна запись на пару (user_id, chat_id): повторное вступление
// перезаписывает предыдущую (last-write-wins).
type ChatJoin struct {
	UserID    int64     `db:"user_id"`
	ChatID    int64     `db:"chat_id"`
	InviterID *int64    `db:"inviter_id"` // Кто пригласил (nil, если вступил сам)
	JoinedAt  time.Time `db:"joined_at"`
}

// DisplayName возвращает отображаемое имя пользователя.
// Если есть @username — возвращает его, иначе — имя + фамилию.
func (m *Member) DisplayName() string {
	if m.Username != "" {
		return "@" + m.Username
	}
	name := m.FirstName
	if m.LastName != "" {
		name += " " + m.LastName
	}
	return name
}
