// Package rewards — service.go содержит логику начисления наград за сообщения.
package rewards

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/config"
)

// Service начисляет байты за сообщения через гейт «не более одного раза».
type Service struct {
	store Store          // Гейт наград
	cfg   *config.Config // Размеры наград по классам
}

// NewService создаёт сервис наград.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg}
}

// Classify определяет класс сообщения.
// Приоритет: медиа > реплай > обычное. Медиа-реплай — это медиа.
func Classify(msg Message) Tier {
	switch {
	case msg.HasMedia:
		return TierMedia
	case msg.IsReply:
		return TierReply
	default:
		return TierPlain
	}
}

// Amount возвращает размер награды для класса.
func (s *Service) Amount(tier Tier) decimal.Decimal {
	switch tier {
	case TierMedia:
		return decimal.NewFromInt(s.cfg.RewardMedia)
	case TierReply:
		return decimal.NewFromInt(s.cfg.RewardReply)
	default:
		return decimal.NewFromInt(s.cfg.RewardPlain)
	}
}

// Reward начисляет награду за сообщение.
// Личка исключена целиком: ни награды, ни обращения к гейту.
// Уже награждённое сообщение — тихий no-op (возвращается nil).
func (s *Service) Reward(ctx context.Context, msg Message) (*Outcome, error) {
	if msg.IsPrivate {
		return nil, nil
	}

	tier := Classify(msg)
	amount := s.Amount(tier)

	credited, newBalance, err := s.store.RewardOnce(ctx, msg.MessageID, msg.ChatID, msg.AuthorID, amount)
	if err != nil {
		return nil, err
	}
	if !credited {
		return nil, nil
	}

	log.WithFields(log.Fields{
		"user_id":     msg.AuthorID,
		"chat_id":     msg.ChatID,
		"message_id":  msg.MessageID,
		"tier":        tier.String(),
		"amount":      amount.StringFixed(2),
		"new_balance": newBalance.StringFixed(2),
	}).Debug("Награда начислена")

	return &Outcome{Tier: tier, Amount: amount, NewBalance: newBalance}, nil
}
