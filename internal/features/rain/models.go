// Package rain раздаёт байты случайным активным участникам чата.
// models.go описывает результат раздачи.
package rain

import "github.com/shopspring/decimal"

// Result — итог одной раздачи.
type Result struct {
	Recipients    []int64         // Кому досталось (без повторов)
	AmountPerUser decimal.Decimal // Сколько получил каждый
	Total         decimal.Decimal // Сколько списано с отправителя
	NewBalance    decimal.Decimal // Баланс отправителя после раздачи
}
