// Package members — handlers.go обрабатывает событие вступления в чат.
package members

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/common"
)

// Handler обрабатывает события участников.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик участников.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleNewMembers обрабатывает вступление новых участников.
// inviterID — автор сообщения о вступлении: если он не совпадает с
// вступившим, считаем его пригласившим и начисляем награду.
// Боты не регистрируются и наград не приносят.
func (h *Handler) HandleNewMembers(ctx context.Context, chatID int64, newMembers []tgbotapi.User, inviterID int64) {
	for _, user := range newMembers {
		if user.IsBot {
			continue
		}

		if err := h.service.EnsureMember(ctx, user.ID, user.UserName, user.FirstName, user.LastName); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("EnsureMember failed")
		}

		var inviter *int64
		if inviterID != 0 && inviterID != user.ID {
			inviter = &inviterID
		}

		if err := h.service.RecordJoin(ctx, user.ID, chatID, inviter); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("RecordJoin failed")
			continue
		}

		if inviter != nil {
			if _, err := h.service.CreditInviter(ctx, *inviter, chatID); err != nil {
				log.WithError(err).WithField("inviter_id", *inviter).Warn("CreditInviter failed")
				continue
			}
			reward := h.service.cfg.RewardInvite
			h.sendMessage(chatID, fmt.Sprintf("🎉 Добро пожаловать, %s! Пригласившему — %d %s!",
				user.FirstName, reward, common.PluralizeBytes(reward)))
		}
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
