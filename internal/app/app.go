// Package app инициализирует все компоненты приложения.
// app.go — точка сборки: создаёт БД-пул, репозитории, сервисы, обработчики,
// фильтры и собирает всё в один объект Bot.
package app

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"

	"stanleytg.ru/stanley-bot/internal/bot"
	"stanleytg.ru/stanley-bot/internal/bot/filters"
	"stanleytg.ru/stanley-bot/internal/config"
	"stanleytg.ru/stanley-bot/internal/db/postgres"
	"stanleytg.ru/stanley-bot/internal/features/casino"
	"stanleytg.ru/stanley-bot/internal/features/economy"
	"stanleytg.ru/stanley-bot/internal/features/members"
	"stanleytg.ru/stanley-bot/internal/features/rain"
	"stanleytg.ru/stanley-bot/internal/features/rewards"
	"stanleytg.ru/stanley-bot/internal/jobs"
)

// App содержит все компоненты приложения.
type App struct {
	Bot       *bot.Bot
	Scheduler *jobs.Scheduler
	DB        *pgxpool.Pool
	BotAPI    *tgbotapi.BotAPI
}

// New создаёт и инициализирует приложение.
// Порядок инициализации важен — компоненты зависят друг от друга.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	// === 1. База данных ===
	pool, err := postgres.NewPool(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("ошибка подключения к БД: %w", err)
	}

	// Запускаем миграции
	if err := runMigrations(ctx, pool); err != nil {
		return nil, fmt.Errorf("ошибка миграций: %w", err)
	}

	// === 2. Telegram Bot API ===
	botAPI, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		return nil, fmt.Errorf("ошибка создания Telegram API: %w", err)
	}
	botAPI.Debug = cfg.AppEnv == "development"
	log.Infof("Авторизован как @%s", botAPI.Self.UserName)

	// === 3. Репозитории ===
	memberRepo := members.NewRepository(pool)
	economyRepo := economy.NewRepository(pool)
	rewardsRepo := rewards.NewRepository(pool)

	// === 4. Сервисы ===
	economyService := economy.NewService(economyRepo)
	memberService := members.NewService(memberRepo, economyService, cfg)
	rewardsService := rewards.NewService(rewardsRepo, cfg)
	casinoService := casino.NewService(economyService, cfg)
	rainService := rain.NewService(economyRepo)

	// === 5. Обработчики ===
	memberHandler := members.NewHandler(memberService, botAPI)
	economyHandler := economy.NewHandler(economyService, memberService, botAPI)
	casinoHandler := casino.NewHandler(casinoService, botAPI)
	rainHandler := rain.NewHandler(rainService, botAPI)

	// === 6. Фильтры ===
	chatFilter := filters.NewChatFilter()

	// === 7. Собираем бота ===
	b := bot.New(
		botAPI, cfg,
		memberService, memberHandler,
		rewardsService, economyHandler,
		casinoHandler, rainHandler,
		chatFilter,
	)

	// === 8. Планировщик задач ===
	scheduler := jobs.NewScheduler(economyService, cfg.AppTimezone)

	return &App{
		Bot:       b,
		Scheduler: scheduler,
		DB:        pool,
		BotAPI:    botAPI,
	}, nil
}

// runMigrations выполняет все SQL-миграции.
func runMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	// Инициализируем систему миграций
	if err := postgres.InitMigrations(ctx, pool); err != nil {
		return err
	}

	// Выполняем миграции по порядку
	migrations := []struct {
		version int
		sql     string
	}{
		{1, migration001Members},
		{2, migration002Balances},
		{3, migration003MessageRewards},
		{4, migration004ChatMembers},
	}

	for _, m := range migrations {
		if err := postgres.ExecMigrationSQL(ctx, pool, m.version, m.sql); err != nil {
			return fmt.Errorf("миграция %d: %w", m.version, err)
		}
		log.Infof("Миграция %d применена", m.version)
	}

	return nil
}

// SQL-миграции встроены в код для упрощения деплоя.

var migration001Members = `
CREATE TABLE IF NOT EXISTS members (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT UNIQUE NOT NULL,
    username VARCHAR(255),
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_members_username ON members(LOWER(username));
`

var migration002Balances = `
CREATE TABLE IF NOT EXISTS balances (
    user_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    balance NUMERIC(12,2) NOT NULL DEFAULT 0 CHECK (balance >= 0),
    created_at TIMESTAMP DEFAULT NOW(),
    updated_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (user_id, chat_id)
);
CREATE INDEX IF NOT EXISTS idx_balances_chat_id ON balances(chat_id);
`

var migration003MessageRewards = `
CREATE TABLE IF NOT EXISTS message_rewards (
    message_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    user_id BIGINT NOT NULL,
    amount NUMERIC(12,2) NOT NULL,
    rewarded_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (message_id, chat_id)
);
`

var migration004ChatMembers = `
CREATE TABLE IF NOT EXISTS chat_members (
    user_id BIGINT NOT NULL,
    chat_id BIGINT NOT NULL,
    inviter_id BIGINT,
    joined_at TIMESTAMP DEFAULT NOW(),
    PRIMARY KEY (user_id, chat_id)
);
`
