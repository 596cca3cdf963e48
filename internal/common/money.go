// Package common — money.go отвечает за денежную арифметику байтов.
// Все суммы в боте — точные десятичные числа с двумя знаками после запятой.
// float64 для денег не используется нигде: двоичная запятая не умеет
// точно хранить 0.01, а балансы сравниваются и сохраняются в БД.
package common

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Round2 округляет сумму до 2 знаков после запятой.
// Округление «половина вверх»: 0.005 → 0.01.
// Повторное округление уже округлённого значения ничего не меняет.
//
// Примеры:
//
//	Round2(0.005)  → 0.01
//	Round2(1.004)  → 1.00
//	Round2(10.50)  → 10.50
func Round2(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(2)
}

// ParseAmount разбирает сумму из текста команды и сразу округляет.
// Принимает «10», «10.5», «0.005». Всё остальное — ErrInvalidAmount.
func ParseAmount(raw string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, raw)
	}
	return Round2(amount), nil
}
