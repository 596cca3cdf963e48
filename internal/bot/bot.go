// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go подключает обработчики и запускает polling обновлений Telegram.
package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/bot/filters"
	"stanleytg.ru/stanley-bot/internal/bot/middleware"
	"stanleytg.ru/stanley-bot/internal/config"
	"stanleytg.ru/stanley-bot/internal/features/casino"
	"stanleytg.ru/stanley-bot/internal/features/economy"
	"stanleytg.ru/stanley-bot/internal/features/members"
	"stanleytg.ru/stanley-bot/internal/features/rain"
	"stanleytg.ru/stanley-bot/internal/features/rewards"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	memberHandler  *members.Handler
	economyHandler *economy.Handler
	casinoHandler  *casino.Handler
	rainHandler    *rain.Handler

	memberService  *members.Service
	rewardsService *rewards.Service

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	memberHandler *members.Handler,
	rewardsService *rewards.Service,
	economyHandler *economy.Handler,
	casinoHandler *casino.Handler,
	rainHandler *rain.Handler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:            api,
		cfg:            cfg,
		chatFilter:     chatFilter,
		rateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		memberHandler:  memberHandler,
		economyHandler: economyHandler,
		casinoHandler:  casinoHandler,
		rainHandler:    rainHandler,
		memberService:  memberService,
		rewardsService: rewardsService,
		parser:         NewCommandParser(),
		inflight:       make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				b.rateLimiter.Close()
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	message := update.Message
	if message == nil {
		return
	}

	// Событие вступления новых участников
	if message.NewChatMembers != nil {
		if message.Chat == nil || message.Chat.IsPrivate() {
			return
		}
		var inviterID int64
		if message.From != nil {
			inviterID = message.From.ID
		}
		b.memberHandler.HandleNewMembers(ctx, message.Chat.ID, message.NewChatMembers, inviterID)
		return
	}

	// Логируем входящее
	middleware.LogMessage(message)

	// Посты каналов и служебные сообщения отбрасываем.
	// ВАЖНО: не проверять message.Text == "" до начисления наград —
	// медиа-сообщение без подписи тоже должно награждаться.
	if !b.chatFilter.CheckAccess(message) {
		return
	}

	userID := message.From.ID
	isPrivate := message.Chat.IsPrivate()

	// Реестр участников обновляем по каждому сообщению:
	// иначе /send @username будет находить устаревшие данные
	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	// Парсим команду
	cmd, args, isCommand := b.parser.ParseCommand(message.Text)

	if isCommand {
		if !b.rateLimiter.Allow(userID) {
			log.WithField("user_id", userID).Debug("rate limited")
			return
		}
		b.routeCommand(ctx, message, cmd, args, isPrivate)
		return
	}

	// Не команда — кандидат на награду за активность
	b.rewardMessage(ctx, message, isPrivate)
}

// rewardMessage начисляет награду за обычное сообщение.
func (b *Bot) rewardMessage(ctx context.Context, message *tgbotapi.Message, isPrivate bool) {
	msg := rewards.Message{
		AuthorID:  message.From.ID,
		ChatID:    message.Chat.ID,
		MessageID: int64(message.MessageID),
		IsPrivate: isPrivate,
		HasMedia:  hasMedia(message),
		IsReply:   message.ReplyToMessage != nil,
	}

	if _, err := b.rewardsService.Reward(ctx, msg); err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_id":    msg.AuthorID,
			"chat_id":    msg.ChatID,
			"message_id": msg.MessageID,
		}).Warn("Не удалось начислить награду за сообщение")
	}
}

// hasMedia: есть ли у сообщения медиа-вложение любого вида.
func hasMedia(message *tgbotapi.Message) bool {
	return len(message.Photo) > 0 ||
		message.Video != nil ||
		message.Audio != nil ||
		message.Document != nil ||
		message.Voice != nil ||
		message.VideoNote != nil ||
		message.Sticker != nil ||
		message.Animation != nil
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, message *tgbotapi.Message, cmd string, args []string, isPrivate bool) {
	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("routing command")

	chatID := message.Chat.ID
	userID := message.From.ID

	// Для /send в форме «ответом»: получатель — автор исходного сообщения
	var replyToUserID *int64
	if message.ReplyToMessage != nil && message.ReplyToMessage.From != nil {
		id := message.ReplyToMessage.From.ID
		replyToUserID = &id
	}

	switch cmd {
	case "start":
		b.sendMessage(chatID, fmt.Sprintf("👋 Привет, %s! Я считаю байты за активность в чате.\nНабери /help, чтобы узнать команды.", message.From.FirstName))

	case "help":
		b.sendMessage(chatID, helpText)

	case "balance":
		b.economyHandler.HandleBalance(ctx, chatID, userID)

	case "send":
		b.economyHandler.HandleSend(ctx, chatID, userID, args, replyToUserID, isPrivate)

	case "flip":
		b.casinoHandler.HandleFlip(ctx, chatID, userID, args)

	case "rain":
		b.rainHandler.HandleRain(ctx, chatID, userID, args, isPrivate)
	}
}

const helpText = `📖 Команды:
/balance — сколько у тебя байтов в этом чате
/send <кол-во> <@кому> — перевести байты (или ответом: /send <кол-во>)
/flip <ставка> — орёл или решка, ставка от 10 до 1000
/rain <кол-во> <людей> — раздать байты случайным участникам чата

Байты начисляются за сообщения: медиа — 3, ответ — 2, текст — 1.
За приглашённого участника — 25.`

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// CommandParser парсит команды с префиксами /, ! и .
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"/", "!", "."},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
// Суффикс @botname у команды отрезается (Telegram добавляет его в группах).
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	if at := strings.Index(command, "@"); at > 0 {
		command = command[:at]
	}

	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	return command, args, true
}
