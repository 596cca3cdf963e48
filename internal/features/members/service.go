// Package members — service.go содержит бизнес-логику участников:
// регистрацию, записи о вступлениях и награду пригласившему.
package members

import (
	"context"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/config"
)

// EconomyService начисляет байты пригласившему (реализуется economy.Service).
// Интерфейс объявлен здесь, чтобы не было цикла импортов:
// economy (handlers) зависит от members.
type EconomyService interface {
	AddBytes(ctx context.Context, userID, chatID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// Service управляет участниками чатов.
type Service struct {
	store          Store
	economyService EconomyService // Для награды пригласившему
	cfg            *config.Config
}

// NewService создаёт сервис участников.
func NewService(store Store, economyService EconomyService, cfg *config.Config) *Service {
	return &Service{store: store, economyService: economyService, cfg: cfg}
}

// EnsureMember обновляет реестр участников по каждому сообщению:
// username и имя могли измениться, а /send @username должен находить
// актуальные данные.
func (s *Service) EnsureMember(ctx context.Context, userID int64, username, firstName, lastName string) error {
	return s.store.Upsert(ctx, &Member{
		UserID:    userID,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
	})
}

// GetByUsername возвращает участника по @username (без @).
func (s *Service) GetByUsername(ctx context.Context, username string) (*Member, error) {
	return s.store.GetByUsername(ctx, username)
}

// RecordJoin записывает вступление пользователя в чат.
// Повторное вступление перезаписывает запись (last-write-wins).
func (s *Service) RecordJoin(ctx context.Context, userID, chatID int64, inviterID *int64) error {
	if err := s.store.RecordJoin(ctx, userID, chatID, inviterID); err != nil {
		return err
	}
	log.WithFields(log.Fields{
		"user_id": userID,
		"chat_id": chatID,
	}).Info("Вступление записано")
	return nil
}

// GetInviter возвращает пригласившего пользователя (nil, если вступил сам).
func (s *Service) GetInviter(ctx context.Context, userID, chatID int64) (*int64, error) {
	return s.store.GetInviter(ctx, userID, chatID)
}

// CreditInviter начисляет пригласившему фиксированную награду.
// Награда безусловная: гейт сообщений здесь не участвует, и повторное
// «вступление» того же пользователя наградит пригласившего ещё раз
// (осознанное решение, см. DESIGN.md).
func (s *Service) CreditInviter(ctx context.Context, inviterID, chatID int64) (decimal.Decimal, error) {
	reward := decimal.NewFromInt(s.cfg.RewardInvite)
	newBalance, err := s.economyService.AddBytes(ctx, inviterID, chatID, reward)
	if err != nil {
		return decimal.Zero, err
	}
	log.WithFields(log.Fields{
		"inviter_id": inviterID,
		"chat_id":    chatID,
		"reward":     reward.StringFixed(2),
	}).Info("Награда пригласившему начислена")
	return newBalance, nil
}
