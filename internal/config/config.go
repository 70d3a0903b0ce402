package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит все настройки приложения
type Config struct {
	Telegram TelegramConfig
	Database DatabaseConfig
	AI       AIConfig
	Venues   VenuesConfig
	Engine   EngineConfig
	APIPort  int
	LogLevel string
}

type TelegramConfig struct {
	BotToken string
	ChatID   int64
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type AIConfig struct {
	Provider          string
	APIKey            string
	BaseURL           string
	Model             string
	AgentTimeout      time.Duration // таймаут одного анализа агента
	RequestsPerMinute int
}

type VenuesConfig struct {
	HyperliquidBaseURL   string
	HyperliquidAPIKey    string
	HyperliquidAPISecret string
	JupiterBaseURL       string
	OneInchBaseURL       string
	OneInchAPIKey        string
	WalletEngineURL      string // подпись и отправка транзакций делегируется wallet engine
	VenueTimeout         time.Duration
}

type EngineConfig struct {
	AgentsFile         string  // YAML с панелью агентов
	ConsensusThreshold float64 // % для consensusReached
	PerpSizeThreshold  float64 // % портфеля, выше которого высокий тир плеча
	HighLeverage       float64
	LowLeverage        float64
	SlippageBps        int // допуск проскальзывания для своп-площадок
}

// Load загружает конфигурацию из .env файла
func Load() (*Config, error) {
	// Загружаем .env файл (если есть)
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using environment variables")
	}

	chatID, err := strconv.ParseInt(getEnv("TELEGRAM_CHAT_ID", "0"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID: %w", err)
	}

	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	maxOpenConns, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "25"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_OPEN_CONNS: %w", err)
	}

	maxIdleConns, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "5"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_MAX_IDLE_CONNS: %w", err)
	}

	connMaxLifetime, err := time.ParseDuration(getEnv("DB_CONN_MAX_LIFETIME", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_CONN_MAX_LIFETIME: %w", err)
	}

	agentTimeout, err := time.ParseDuration(getEnv("AGENT_TIMEOUT", "45s"))
	if err != nil {
		return nil, fmt.Errorf("invalid AGENT_TIMEOUT: %w", err)
	}

	requestsPerMinute, err := strconv.Atoi(getEnv("AI_REQUESTS_PER_MINUTE", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid AI_REQUESTS_PER_MINUTE: %w", err)
	}

	venueTimeout, err := time.ParseDuration(getEnv("VENUE_TIMEOUT", "30s"))
	if err != nil {
		return nil, fmt.Errorf("invalid VENUE_TIMEOUT: %w", err)
	}

	consensusThreshold, err := strconv.ParseFloat(getEnv("CONSENSUS_THRESHOLD", "60"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid CONSENSUS_THRESHOLD: %w", err)
	}

	perpSizeThreshold, err := strconv.ParseFloat(getEnv("PERP_SIZE_THRESHOLD", "20"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PERP_SIZE_THRESHOLD: %w", err)
	}

	highLeverage, err := strconv.ParseFloat(getEnv("PERP_HIGH_LEVERAGE", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PERP_HIGH_LEVERAGE: %w", err)
	}

	lowLeverage, err := strconv.ParseFloat(getEnv("PERP_LOW_LEVERAGE", "3"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid PERP_LOW_LEVERAGE: %w", err)
	}

	slippageBps, err := strconv.Atoi(getEnv("SLIPPAGE_BPS", "50"))
	if err != nil {
		return nil, fmt.Errorf("invalid SLIPPAGE_BPS: %w", err)
	}

	apiPort, err := strconv.Atoi(getEnv("API_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid API_PORT: %w", err)
	}

	config := &Config{
		Telegram: TelegramConfig{
			BotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
			ChatID:   chatID,
		},
		Database: DatabaseConfig{
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            dbPort,
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "debate_bot"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    maxOpenConns,
			MaxIdleConns:    maxIdleConns,
			ConnMaxLifetime: connMaxLifetime,
		},
		AI: AIConfig{
			Provider:          getEnv("AI_PROVIDER", "openai"),
			APIKey:            getEnv("AI_API_KEY", ""),
			BaseURL:           getEnv("AI_BASE_URL", "https://api.openai.com"),
			Model:             getEnv("AI_MODEL", "gpt-4o-mini"),
			AgentTimeout:      agentTimeout,
			RequestsPerMinute: requestsPerMinute,
		},
		Venues: VenuesConfig{
			HyperliquidBaseURL:   getEnv("HYPERLIQUID_BASE_URL", "https://api.hyperliquid.xyz"),
			HyperliquidAPIKey:    getEnv("HYPERLIQUID_API_KEY", ""),
			HyperliquidAPISecret: getEnv("HYPERLIQUID_API_SECRET", ""),
			JupiterBaseURL:       getEnv("JUPITER_BASE_URL", "https://quote-api.jup.ag"),
			OneInchBaseURL:       getEnv("ONEINCH_BASE_URL", "https://api.1inch.dev"),
			OneInchAPIKey:        getEnv("ONEINCH_API_KEY", ""),
			WalletEngineURL:      getEnv("WALLET_ENGINE_URL", "http://localhost:9090"),
			VenueTimeout:         venueTimeout,
		},
		Engine: EngineConfig{
			AgentsFile:         getEnv("AGENTS_FILE", "agents.yaml"),
			ConsensusThreshold: consensusThreshold,
			PerpSizeThreshold:  perpSizeThreshold,
			HighLeverage:       highLeverage,
			LowLeverage:        lowLeverage,
			SlippageBps:        slippageBps,
		},
		APIPort:  apiPort,
		LogLevel: getEnv("LOG_LEVEL", "info"),
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate проверяет обязательные поля конфигурации
func (c *Config) Validate() error {
	if c.AI.APIKey == "" {
		return fmt.Errorf("AI_API_KEY is required")
	}
	if c.Database.Password == "" {
		return fmt.Errorf("DB_PASSWORD is required")
	}
	if c.Engine.ConsensusThreshold <= 0 || c.Engine.ConsensusThreshold > 100 {
		return fmt.Errorf("CONSENSUS_THRESHOLD must be in (0, 100]")
	}
	if c.Engine.PerpSizeThreshold <= 0 {
		return fmt.Errorf("PERP_SIZE_THRESHOLD must be positive")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
