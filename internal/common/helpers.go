// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование сумм, работа с временем.
package common

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// PluralizeBytes возвращает правильную форму слова «байт» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "байт" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "байта" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "байтов" (0, 5-20, 25-30, 100, ...)
//
// Примеры:
//
//	PluralizeBytes(1)  → "байт"
//	PluralizeBytes(3)  → "байта"
//	PluralizeBytes(5)  → "байтов"
//	PluralizeBytes(11) → "байтов"
//	PluralizeBytes(21) → "байт"
func PluralizeBytes(n int64) string {
	absN := n
	if absN < 0 {
		absN = -absN
	}
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	// Единственное число: 1, 21, 31, 101 (но НЕ 11, 111)
	if lastDigit == 1 && lastTwoDigits != 11 {
		return "байт"
	}

	// Малое множественное: 2-4, 22-24, 32-34 (но НЕ 12-14)
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "байта"
	}

	// Большое множественное: 0, 5-20, 25-30, 100, ...
	return "байтов"
}

// FormatBytes форматирует сумму в читабельную строку.
// Целые суммы показываем без дробной части: "150 байтов".
// Дробные — с двумя знаками и формой «байта»: "10.50 байта".
func FormatBytes(amount decimal.Decimal) string {
	rounded := Round2(amount)
	if rounded.IsInteger() {
		n := rounded.IntPart()
		return fmt.Sprintf("%d %s", n, PluralizeBytes(n))
	}
	return fmt.Sprintf("%s байта", rounded.StringFixed(2))
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04".
// Используется в логах и служебных сообщениях.
func FormatDateTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format("02.01.2006 15:04")
}
