package members_test

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"stanleytg.ru/stanley-bot/internal/common"
	"stanleytg.ru/stanley-bot/internal/config"
	"stanleytg.ru/stanley-bot/internal/features/economy"
	"stanleytg.ru/stanley-bot/internal/features/members"
)

const testChatID = int64(-100500)

func newTestService() (*members.Service, *economy.MemoryStore) {
	ledger := economy.NewMemoryStore()
	economyService := economy.NewService(ledger)
	cfg := &config.Config{RewardInvite: 25}
	return members.NewService(members.NewMemoryStore(), economyService, cfg), ledger
}

func TestEnsureMemberUpsert(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := newTestService()

	if err := service.EnsureMember(ctx, 1, "old_name", "Вася", ""); err != nil {
		t.Fatalf("EnsureMember: %v", err)
	}
	// Пользователь сменил username — реестр должен обновиться
	if err := service.EnsureMember(ctx, 1, "new_name", "Вася", "Пупкин"); err != nil {
		t.Fatalf("EnsureMember: %v", err)
	}

	if _, err := service.GetByUsername(ctx, "old_name"); !errors.Is(err, common.ErrUserNotFound) {
		t.Errorf("старый username всё ещё находится: %v", err)
	}
	member, err := service.GetByUsername(ctx, "new_name")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if member.UserID != 1 || member.LastName != "Пупкин" {
		t.Errorf("участник = %+v, ожидался user_id=1 с фамилией", member)
	}
}

func TestGetByUsernameCaseInsensitive(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := newTestService()
	if err := service.EnsureMember(ctx, 1, "StanleyFan", "Стэнли", ""); err != nil {
		t.Fatal(err)
	}

	member, err := service.GetByUsername(ctx, "stanleyfan")
	if err != nil {
		t.Fatalf("GetByUsername: %v", err)
	}
	if member.UserID != 1 {
		t.Errorf("user_id = %d, ожидался 1", member.UserID)
	}
}

func TestRecordJoinAndGetInviter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, _ := newTestService()

	inviterID := int64(7)
	if err := service.RecordJoin(ctx, 1, testChatID, &inviterID); err != nil {
		t.Fatalf("RecordJoin: %v", err)
	}

	got, err := service.GetInviter(ctx, 1, testChatID)
	if err != nil {
		t.Fatalf("GetInviter: %v", err)
	}
	if got == nil || *got != inviterID {
		t.Errorf("пригласивший = %v, ожидался %d", got, inviterID)
	}

	// Повторное вступление без пригласившего перезаписывает запись
	if err := service.RecordJoin(ctx, 1, testChatID, nil); err != nil {
		t.Fatalf("RecordJoin: %v", err)
	}
	got, err = service.GetInviter(ctx, 1, testChatID)
	if err != nil {
		t.Fatalf("GetInviter: %v", err)
	}
	if got != nil {
		t.Errorf("пригласивший после перезаписи = %v, ожидался nil", got)
	}
}

func TestGetInviterUnknownJoin(t *testing.T) {
	t.Parallel()

	service, _ := newTestService()
	got, err := service.GetInviter(context.Background(), 99, testChatID)
	if err != nil {
		t.Fatalf("GetInviter: %v", err)
	}
	if got != nil {
		t.Errorf("пригласивший без записи = %v, ожидался nil", got)
	}
}

func TestCreditInviter(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	service, ledger := newTestService()

	newBalance, err := service.CreditInviter(ctx, 7, testChatID)
	if err != nil {
		t.Fatalf("CreditInviter: %v", err)
	}
	if want := decimal.NewFromInt(25); !newBalance.Equal(want) {
		t.Errorf("баланс пригласившего = %s, ожидалось %s", newBalance, want)
	}

	balance, _ := ledger.GetBalance(ctx, 7, testChatID)
	if !balance.Equal(newBalance) {
		t.Errorf("баланс в хранилище %s не совпадает с результатом %s", balance, newBalance)
	}
}

func TestMemberDisplayName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		member members.Member
		want   string
	}{
		{"username приоритетнее", members.Member{Username: "stanley", FirstName: "Стэнли"}, "@stanley"},
		{"имя и фамилия", members.Member{FirstName: "Стэнли", LastName: "Бот"}, "Стэнли Бот"},
		{"только имя", members.Member{FirstName: "Стэнли"}, "Стэнли"},
	}

	for _, tt := range tests {
		if got := tt.member.DisplayName(); got != tt.want {
			t.Errorf("%s: DisplayName = %q, ожидалось %q", tt.name, got, tt.want)
		}
	}
}
