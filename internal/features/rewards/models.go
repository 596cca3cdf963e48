// Package rewards начисляет байты за активность в групповых чатах.
// models.go описывает классификацию сообщений и результат награды.
//
// Каждое сообщение награждается не более одного раза: маркер
// (message_id, chat_id) в хранилище — единственное решение о допуске.
package rewards

import "github.com/shopspring/decimal"

// Tier — класс сообщения, определяющий размер награды.
type Tier int

const (
	// TierPlain — обычное сообщение
	TierPlain Tier = iota + 1
	// TierReply — ответ на чужое сообщение
	TierReply
	// TierMedia — сообщение с медиа (фото, видео, стикер, ...).
	// Приоритет выше реплая: медиа-реплай считается как медиа.
	TierMedia
)

// String возвращает имя класса для логов.
func (t Tier) String() string {
	switch t {
	case TierMedia:
		return "media"
	case TierReply:
		return "reply"
	default:
		return "plain"
	}
}

// Message — всё, что ядру нужно знать о входящем сообщении.
// Telegram-специфику (какие именно поля считаются медиа) разбирает
// бот-слой; сюда приходят уже готовые признаки.
type Message struct {
	AuthorID  int64 // Автор сообщения
	ChatID    int64 // Чат
	MessageID int64 // ID сообщения внутри чата
	IsPrivate bool  // Личка: награды не начисляются вовсе
	HasMedia  bool  // Есть медиа-вложение
	IsReply   bool  // Это ответ на другое сообщение
}

// Outcome — результат начисления награды.
type Outcome struct {
	Tier       Tier            // Класс сообщения
	Amount     decimal.Decimal // Сколько начислено
	NewBalance decimal.Decimal // Баланс автора после начисления
}
