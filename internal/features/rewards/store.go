// Package rewards — store.go описывает контракт хранилища маркеров наград.
package rewards

import (
	"context"

	"github.com/shopspring/decimal"
)

// Store — атомарный гейт «наградить не более одного раза».
type Store interface {
	// HasRewarded сообщает, награждалось ли уже сообщение.
	HasRewarded(ctx context.Context, messageID, chatID int64) (bool, error)

	// RewardOnce атомарно вставляет маркер (message_id, chat_id) и,
	// только если маркер новый, начисляет amount автору. Повторный вызов
	// для того же сообщения возвращает credited=false без начисления.
	//
	// Порядок принципиален: не «проверить, начислить, пометить», а
	// «вставить маркер, и лишь при успехе вставки начислить» — иначе две
	// конкурентные доставки одного сообщения обе проходят проверку
	// и автор получает награду дважды. Вставка маркера и начисление
	// фиксируются вместе: маркер без начисления невозможен.
	RewardOnce(ctx context.Context, messageID, chatID, userID int64, amount decimal.Decimal) (credited bool, newBalance decimal.Decimal, err error)
}
