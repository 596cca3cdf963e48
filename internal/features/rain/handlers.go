// Package rain — handlers.go обрабатывает команду /rain.
package rain

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/common"
)

// Handler обрабатывает команды раздачи.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик раздач.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleRain обрабатывает команду /rain <сумма> <количество>.
// Пример: /rain 10 5 — по 10 байтов пятерым случайным участникам (50 всего).
// В личке команда не работает.
func (h *Handler) HandleRain(ctx context.Context, chatID, userID int64, args []string, isPrivate bool) {
	if isPrivate {
		h.sendMessage(chatID, "❌ Команда работает только в групповых чатах")
		return
	}

	if len(args) < 2 {
		h.sendMessage(chatID, "❌ Формат: /rain сумма количество\nПример: /rain 10 5 — по 10 байтов пятерым (50 всего)")
		return
	}

	amountPerUser, err := common.ParseAmount(args[0])
	if err != nil {
		h.sendMessage(chatID, "❌ Сумма должна быть числом")
		return
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		h.sendMessage(chatID, "❌ Количество должно быть целым числом")
		return
	}

	result, err := h.service.Rain(ctx, userID, chatID, amountPerUser, count)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidAmount):
			h.sendMessage(chatID, "❌ Сумма должна быть положительной")
		case errors.Is(err, common.ErrInvalidCount):
			h.sendMessage(chatID, "❌ Количество получателей должно быть положительным")
		case errors.Is(err, common.ErrInsufficientFunds):
			h.sendMessage(chatID, "❌ Недостаточно байтов на раздачу!")
		case errors.Is(err, common.ErrInsufficientRecipients):
			h.sendMessage(chatID, "❌ В чате недостаточно активных участников")
		default:
			log.WithError(err).Error("Ошибка рейна")
			h.sendMessage(chatID, "❌ Ошибка при раздаче")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf(
		"🌧️ Раздача! По %s каждому из %d участников (всего %s)\n💰 Твой баланс: %s",
		common.FormatBytes(result.AmountPerUser),
		len(result.Recipients),
		common.FormatBytes(result.Total),
		common.FormatBytes(result.NewBalance),
	))
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
