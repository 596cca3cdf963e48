// Package filters содержит фильтры входящих сообщений.
package filters

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"
)

// ChatFilter отбрасывает сообщения, которые бот не обслуживает:
// посты из каналов и служебные сообщения без автора.
// Группы, супергруппы и личка разрешены.
type ChatFilter struct{}

func NewChatFilter() *ChatFilter {
	return &ChatFilter{}
}

func (f *ChatFilter) CheckAccess(message *tgbotapi.Message) bool {
	if message == nil || message.Chat == nil {
		log.WithField("component", "ChatFilter").Warn("nil message/chat")
		return false
	}
	if message.From == nil {
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Debug("nil message.From (служебное сообщение?)")
		return false
	}

	switch {
	case message.Chat.IsGroup(), message.Chat.IsSuperGroup(), message.Chat.IsPrivate():
		return true
	default:
		log.WithFields(log.Fields{
			"component": "ChatFilter",
			"chat_id":   message.Chat.ID,
			"chat_type": message.Chat.Type,
		}).Debug("deny: каналы не обслуживаются")
		return false
	}
}
