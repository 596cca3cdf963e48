// Package casino — handlers.go обрабатывает команду /flip.
package casino

import (
	"context"
	"errors"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/common"
)

// Handler обрабатывает команды флипа.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик флипа.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleFlip обрабатывает команду /flip <ставка>.
//
// Формат ответа при выигрыше:
//
//	🎉 Победа! +99 байтов (комиссия 1 байт)
//	💰 Баланс: 199 байтов
func (h *Handler) HandleFlip(ctx context.Context, chatID, userID int64, args []string) {
	if len(args) < 1 {
		h.sendMessage(chatID, fmt.Sprintf("❌ Формат: /flip ставка (от %d до %d)",
			h.service.cfg.FlipMinBet, h.service.cfg.FlipMaxBet))
		return
	}

	amount, err := common.ParseAmount(args[0])
	if err != nil {
		h.sendMessage(chatID, "❌ Ставка должна быть числом")
		return
	}

	result, err := h.service.Flip(ctx, userID, chatID, amount)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrOutOfRange):
			h.sendMessage(chatID, fmt.Sprintf("❌ Ставка от %d до %d байтов",
				h.service.cfg.FlipMinBet, h.service.cfg.FlipMaxBet))
		case errors.Is(err, common.ErrInsufficientFunds):
			balance, _ := h.service.economyService.GetBalance(ctx, userID, chatID)
			h.sendMessage(chatID, fmt.Sprintf("❌ Недостаточно байтов! У тебя %s", common.FormatBytes(balance)))
		default:
			log.WithError(err).Error("Ошибка флипа")
			h.sendMessage(chatID, "❌ Ошибка при игре")
		}
		return
	}

	if result.Won {
		h.sendMessage(chatID, fmt.Sprintf(
			"🎉 Победа! +%s (комиссия %s)\n💰 Баланс: %s",
			common.FormatBytes(result.Winnings),
			common.FormatBytes(result.Rake),
			common.FormatBytes(result.NewBalance),
		))
	} else {
		h.sendMessage(chatID, fmt.Sprintf(
			"😢 Проигрыш: −%s\n💰 Баланс: %s",
			common.FormatBytes(result.Amount),
			common.FormatBytes(result.NewBalance),
		))
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
