// Package economy — handlers.go обрабатывает команды:
// /balance (баланс) и /send (перевод байтов).
package economy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/common"
	"stanleytg.ru/stanley-bot/internal/features/members"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service       *Service         // Сервис экономики
	memberService *members.Service // Сервис участников (для поиска получателя по @username)
	bot           *tgbotapi.BotAPI // API Telegram для отправки ответов
}

// NewHandler создаёт новый обработчик экономических команд.
func NewHandler(service *Service, memberService *members.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service:       service,
		memberService: memberService,
		bot:           bot,
	}
}

// HandleBalance обрабатывает команду /balance — показывает баланс.
//
// Формат ответа:
//
//	💰 Твой баланс: 150.25 байта
func (h *Handler) HandleBalance(ctx context.Context, chatID, userID int64) {
	balance, err := h.service.GetBalance(ctx, userID, chatID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения баланса")
		h.sendMessage(chatID, "❌ Ошибка получения баланса")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("💰 Твой баланс: %s", common.FormatBytes(balance)))
}

// HandleSend обрабатывает команду /send — перевод байтов.
//
// Два формата:
//   - Реплаем на сообщение получателя: /send 10.5
//   - Явно: /send @username 10.5 (или /send <user_id> 10.5)
//
// replyToUserID — автор сообщения, на которое ответили (nil, если не реплай).
// В личке команда не работает: балансы привязаны к групповым чатам.
func (h *Handler) HandleSend(ctx context.Context, chatID, fromUserID int64, args []string, replyToUserID *int64, isPrivate bool) {
	if isPrivate {
		h.sendMessage(chatID, "❌ Команда работает только в групповых чатах")
		return
	}

	toUserID, amountRaw, err := h.resolveRecipient(ctx, args, replyToUserID)
	if err != nil {
		h.sendMessage(chatID, "❌ Формат: /send @username сумма — или ответь на сообщение и напиши /send сумма")
		return
	}
	if toUserID == 0 {
		h.sendMessage(chatID, "❌ Получатель не найден. Ответь на его сообщение и напиши /send сумма")
		return
	}

	amount, err := common.ParseAmount(amountRaw)
	if err != nil || amount.Sign() <= 0 {
		h.sendMessage(chatID, "❌ Сумма должна быть положительным числом")
		return
	}

	recipientBalance, err := h.service.Transfer(ctx, fromUserID, toUserID, chatID, amount)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSelfTransfer):
			h.sendMessage(chatID, "❌ Нельзя переводить байты самому себе")
		case errors.Is(err, common.ErrInsufficientFunds):
			balance, _ := h.service.GetBalance(ctx, fromUserID, chatID)
			h.sendMessage(chatID, fmt.Sprintf("❌ Недостаточно байтов! У тебя %s", common.FormatBytes(balance)))
		case errors.Is(err, common.ErrInvalidAmount):
			h.sendMessage(chatID, "❌ Сумма должна быть положительным числом")
		default:
			log.WithError(err).Error("Ошибка перевода")
			h.sendMessage(chatID, "❌ Ошибка выполнения перевода")
		}
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Отправлено %s!\nБаланс получателя: %s",
		common.FormatBytes(amount), common.FormatBytes(recipientBalance)))
}

// resolveRecipient разбирает аргументы /send и возвращает (получатель, сумма).
// Реплай-форма имеет один аргумент (сумма), явная — два (@username/ID и сумма).
func (h *Handler) resolveRecipient(ctx context.Context, args []string, replyToUserID *int64) (int64, string, error) {
	// Реплай-форма: /send сумма
	if replyToUserID != nil {
		if len(args) < 1 {
			return 0, "", fmt.Errorf("нет суммы")
		}
		return *replyToUserID, args[0], nil
	}

	// Явная форма: /send @username сумма
	if len(args) < 2 {
		return 0, "", fmt.Errorf("мало аргументов")
	}

	target := args[0]
	if strings.HasPrefix(target, "@") {
		member, err := h.memberService.GetByUsername(ctx, strings.TrimPrefix(target, "@"))
		if err != nil {
			return 0, "", nil // получатель не найден — не ошибка формата
		}
		return member.UserID, args[1], nil
	}

	// Числовой user_id — запасной вариант, когда @username недоступен
	userID, err := strconv.ParseInt(target, 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("некорректный получатель")
	}
	return userID, args[1], nil
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
