// Package economy управляет виртуальной валютой «байты».
// models.go описывает структуры для балансов.
//
// Ключ баланса — пара (user_id, chat_id): один и тот же пользователь
// имеет независимые балансы в разных чатах. Запись создаётся неявно
// при первом начислении; баланс никогда не бывает отрицательным.
package economy

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance представляет баланс пользователя в конкретном чате.
type Balance struct {
	UserID    int64           `db:"user_id"` // Telegram user ID
	ChatID    int64           `db:"chat_id"` // Telegram chat ID
	Balance   decimal.Decimal `db:"balance"` // Текущий баланс, NUMERIC(12,2)
	CreatedAt time.Time       `db:"created_at"`
	UpdatedAt time.Time       `db:"updated_at"`
}

// ChatStat — сводка экономики одного чата для ежедневного снимка.
type ChatStat struct {
	ChatID      int64           // Чат
	Holders     int64           // Сколько пользователей держат байты
	TotalSupply decimal.Decimal // Сумма всех балансов чата
}
