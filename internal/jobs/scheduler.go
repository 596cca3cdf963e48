// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает расписание: ежедневная сводка экономики.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/features/economy"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron           *cron.Cron
	economyService *economy.Service
}

// NewScheduler создаёт планировщик задач в часовом поясе из конфига.
func NewScheduler(economyService *economy.Service, timezone string) *Scheduler {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		log.WithError(err).WithField("timezone", timezone).Warn("Не удалось загрузить часовой пояс, используем UTC")
		loc = time.UTC
	}

	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:           c,
		economyService: economyService,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) {
	// Ежедневная сводка экономики в 00:00
	s.cron.AddFunc("0 0 * * *", func() {
		log.Info("[CRON] Ежедневная сводка экономики")
		stats, err := s.economyService.ChatStats(ctx)
		if err != nil {
			log.WithError(err).Error("[CRON] Ошибка сбора сводки")
			return
		}
		for _, st := range stats {
			log.WithFields(log.Fields{
				"chat_id":      st.ChatID,
				"holders":      st.Holders,
				"total_supply": st.TotalSupply.StringFixed(2),
			}).Info("[CRON] Экономика чата")
		}
	})

	s.cron.Start()
	log.Info("Планировщик задач запущен")
}

// Stop останавливает планировщик и дожидается текущих задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
