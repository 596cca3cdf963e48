// Package casino реализует флип — «двойной или ничего» с комиссией бота.
// models.go описывает результат одной игры.
package casino

import "github.com/shopspring/decimal"

// FlipResult — итог одного флипа.
type FlipResult struct {
	Won        bool            // Выиграл ли пользователь
	Amount     decimal.Decimal // Ставка
	Rake       decimal.Decimal // Комиссия бота (только при выигрыше)
	Winnings   decimal.Decimal // Чистый выигрыш: ставка минус комиссия (только при выигрыше)
	NewBalance decimal.Decimal // Баланс после игры
}
