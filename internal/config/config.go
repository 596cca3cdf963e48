// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	TelegramBotToken string `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"stanley_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Rewards (байты за сообщения) ---
	// Приоритет: медиа > реплай > обычное. Медиа-реплай считается как медиа.
	RewardMedia  int64 `envconfig:"REWARD_MEDIA" default:"3"`
	RewardReply  int64 `envconfig:"REWARD_REPLY" default:"2"`
	RewardPlain  int64 `envconfig:"REWARD_PLAIN" default:"1"`
	RewardInvite int64 `envconfig:"REWARD_INVITE" default:"25"`

	// --- Flip (монетка) ---
	FlipMinBet int64 `envconfig:"FLIP_MIN_BET" default:"10"`
	FlipMaxBet int64 `envconfig:"FLIP_MAX_BET" default:"1000"`
	// Комиссия бота с выигрыша, в процентах от ставки
	FlipRakePercent int64 `envconfig:"FLIP_RAKE_PERCENT" default:"1"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// RakeMultiplier переводит процент комиссии в десятичный множитель.
// FLIP_RAKE_PERCENT=1 → 0.01.
func (c *Config) RakeMultiplier() decimal.Decimal {
	return decimal.New(c.FlipRakePercent, -2)
}

func (c *Config) Validate() error {
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.RewardMedia <= 0 || c.RewardReply <= 0 || c.RewardPlain <= 0 {
		return fmt.Errorf("награды за сообщения должны быть > 0")
	}
	if c.FlipMinBet <= 0 || c.FlipMaxBet < c.FlipMinBet {
		return fmt.Errorf("некорректные FLIP_MIN_BET/FLIP_MAX_BET")
	}
	if c.FlipRakePercent < 0 || c.FlipRakePercent > 100 {
		return fmt.Errorf("FLIP_RAKE_PERCENT должен быть в диапазоне [0, 100]")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
