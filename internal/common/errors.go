// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
package common

import (
	"errors"
	"fmt"
)

// Ошибки экономики (байты, переводы)
var (
	// ErrInsufficientFunds — недостаточно байтов на счёте
	ErrInsufficientFunds = errors.New("недостаточно байтов на счёте")
	// ErrSelfTransfer — попытка перевести байты самому себе
	ErrSelfTransfer = errors.New("нельзя переводить байты самому себе")
	// ErrInvalidAmount — некорректная сумма (ноль, отрицательная или не число)
	ErrInvalidAmount = errors.New("сумма должна быть положительным числом")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки флипа (монетка)
var (
	// ErrOutOfRange — ставка флипа вне диапазона [мин, макс]
	ErrOutOfRange = errors.New("ставка вне допустимого диапазона")
)

// Ошибки рейна (раздача байтов)
var (
	// ErrInvalidCount — количество получателей не положительное
	ErrInvalidCount = errors.New("количество получателей должно быть положительным")
	// ErrInsufficientRecipients — в чате недостаточно активных получателей
	ErrInsufficientRecipients = errors.New("недостаточно активных получателей в чате")
)

// Ошибки хранилища
var (
	// ErrStoreUnavailable — база данных недоступна или запрос не выполнился.
	// Репозитории оборачивают этим все ошибки pgx, чтобы обработчики
	// не зависели от деталей драйвера.
	ErrStoreUnavailable = errors.New("хранилище недоступно")
)

// WrapStore оборачивает ошибку БД в ErrStoreUnavailable, сохраняя обе
// в цепочке: errors.Is работает и для ErrStoreUnavailable, и для исходной.
func WrapStore(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}
