package config

import (
	"os"
	"strconv"
	"strings"
)

// Config представляет конфигурацию приложения
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Redis     RedisConfig     `json:"redis"`
	Kafka     KafkaConfig     `json:"kafka"`
	Logger    LoggerConfig    `json:"logger"`
	Pricing   PricingConfig   `json:"pricing"`
	Quotes    QuotesConfig    `json:"quotes"`
	Earnings  EarningsConfig  `json:"earnings"`
	RateLimit RateLimitConfig `json:"rate_limit"`
}

// ServerConfig представляет конфигурацию HTTP сервера
type ServerConfig struct {
	Port         string `json:"port"`
	Host         string `json:"host"`
	ReadTimeout  int    `json:"read_timeout"`
	WriteTimeout int    `json:"write_timeout"`
}

// DatabaseConfig представляет конфигурацию базы данных
type DatabaseConfig struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	User         string `json:"user"`
	Password     string `json:"password"`
	DBName       string `json:"db_name"`
	SSLMode      string `json:"ssl_mode"`
	MaxOpenConns int    `json:"max_open_conns"`
	MaxIdleConns int    `json:"max_idle_conns"`
}

// RedisConfig представляет конфигурацию Redis
type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

// KafkaConfig представляет конфигурацию Kafka
type KafkaConfig struct {
	Brokers []string `json:"brokers"`
	GroupID string   `json:"group_id"`
	Topics  Topics   `json:"topics"`
}

// Topics представляет список топиков Kafka
type Topics struct {
	Quotes string `json:"quotes"`
	Jobs   string `json:"jobs"`
}

// LoggerConfig представляет конфигурацию логгера
type LoggerConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
	File   string `json:"file"`
}

// PricingConfig хранит надбавки и параметры тарифной сетки.
// Ставки по типам услуг берутся из встроенной сетки или из RateCardFile.
type PricingConfig struct {
	RushMultiplier       float64 `json:"rush_multiplier"`
	AfterHoursMultiplier float64 `json:"after_hours_multiplier"`
	HolidayMultiplier    float64 `json:"holiday_multiplier"`
	FreeTravelRadius     float64 `json:"free_travel_radius"` // мили
	PerMileRate          float64 `json:"per_mile_rate"`
	Currency             string  `json:"currency"`
	RateCardFile         string  `json:"rate_card_file"`
}

// QuotesConfig хранит настройки кеширования расчётов
type QuotesConfig struct {
	CacheTTLMinutes int `json:"cache_ttl_minutes"`
}

// EarningsConfig хранит настройки отчётов по выручке и выплатам
type EarningsConfig struct {
	CacheTTLMinutes         int    `json:"cache_ttl_minutes"`
	MaxRangeDays            int    `json:"max_range_days"`
	DefaultGroupBy          string `json:"default_group_by"`
	DefaultInterpreterLimit int    `json:"default_interpreter_limit"`
	RequestTimeoutSeconds   int    `json:"request_timeout_seconds"`
}

// RateLimitConfig описывает настройки rate limiting
type RateLimitConfig struct {
	Enabled       bool   `json:"enabled"`
	Requests      int    `json:"requests"`
	WindowSeconds int    `json:"window_seconds"`
	KeyPrefix     string `json:"key_prefix"`
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 10),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "interpret_user"),
			Password:     getEnv("DB_PASSWORD", "interpret_pass"),
			DBName:       getEnv("DB_NAME", "interpretation"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Kafka: KafkaConfig{
			Brokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
			GroupID: getEnv("KAFKA_GROUP_ID", "interpretation-service"),
			Topics: Topics{
				Quotes: getEnv("KAFKA_TOPIC_QUOTES", "quotes"),
				Jobs:   getEnv("KAFKA_TOPIC_JOBS", "jobs"),
			},
		},
		Logger: LoggerConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
			File:   getEnv("LOG_FILE", ""),
		},
		Pricing: PricingConfig{
			RushMultiplier:       getEnvAsFloat("PRICING_RUSH_MULTIPLIER", 1.5),
			AfterHoursMultiplier: getEnvAsFloat("PRICING_AFTER_HOURS_MULTIPLIER", 1.25),
			HolidayMultiplier:    getEnvAsFloat("PRICING_HOLIDAY_MULTIPLIER", 1.5),
			FreeTravelRadius:     getEnvAsFloat("PRICING_FREE_TRAVEL_RADIUS", 25),
			PerMileRate:          getEnvAsFloat("PRICING_PER_MILE_RATE", 0.65),
			Currency:             getEnv("PRICING_CURRENCY", "USD"),
			RateCardFile:         getEnv("PRICING_RATE_CARD_FILE", ""),
		},
		Quotes: QuotesConfig{
			CacheTTLMinutes: getEnvAsInt("QUOTES_CACHE_TTL_MINUTES", 30),
		},
		Earnings: EarningsConfig{
			CacheTTLMinutes:         getEnvAsInt("EARNINGS_CACHE_TTL_MINUTES", 10),
			MaxRangeDays:            getEnvAsInt("EARNINGS_MAX_RANGE_DAYS", 365),
			DefaultGroupBy:          getEnv("EARNINGS_DEFAULT_GROUP_BY", "none"),
			DefaultInterpreterLimit: getEnvAsInt("EARNINGS_DEFAULT_INTERPRETER_LIMIT", 50),
			RequestTimeoutSeconds:   getEnvAsInt("EARNINGS_REQUEST_TIMEOUT_SECONDS", 5),
		},
		RateLimit: RateLimitConfig{
			Enabled:       getEnvAsBool("RATE_LIMIT_ENABLED", false),
			Requests:      getEnvAsInt("RATE_LIMIT_REQUESTS", 100),
			WindowSeconds: getEnvAsInt("RATE_LIMIT_WINDOW_SECONDS", 60),
			KeyPrefix:     getEnv("RATE_LIMIT_KEY_PREFIX", "ratelimit"),
		},
	}
}

// getEnv получает значение переменной окружения с значением по умолчанию
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt получает значение переменной окружения как int с значением по умолчанию
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsFloat получает значение переменной окружения как float64 с значением по умолчанию
func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool получает значение переменной окружения как bool с значением по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := strings.ToLower(getEnv(key, ""))
	if valueStr == "true" || valueStr == "1" || valueStr == "yes" {
		return true
	}
	if valueStr == "false" || valueStr == "0" || valueStr == "no" {
		return false
	}
	return defaultValue
}
