package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	App struct {
		Port        string
		Debug       bool
		FrontendURL string
	}
	DB struct {
		Host     string
		Port     string
		User     string
		Password string
		DBName   string
		SSLMode  string
	}
	Redis struct {
		Host     string
		Port     string
		Password string
		DB       int
	}
	Weather struct {
		APIKey  string
		APIURL  string
		GeoURL  string
		Units   string
		Lang    string
		Timeout time.Duration
	}
	DeepSeek struct {
		APIKey  string
		APIURL  string
		Model   string
		Timeout time.Duration
	}
	RateLimit struct {
		RequestsPerSecond int
		Burst             int
		AdviceRPS         float64
		AdviceBurst       int
	}
	Export struct {
		OutputDir string
	}
	History struct {
		DefaultLimit    int
		DefaultTimezone string
	}
}

func Load() *Config {
	cfg := &Config{}

	// App
	cfg.App.Port = getEnv("PORT", "8080")
	cfg.App.Debug = getEnvAsBool("DEBUG", false)
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	// DB
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.DB.DBName = getEnv("DB_NAME", "skywatch")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")

	// Redis
	cfg.Redis.Host = getEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port = getEnv("REDIS_PORT", "6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)

	// OpenWeatherMap
	cfg.Weather.APIKey = getEnv("OWM_API_KEY", "")
	cfg.Weather.APIURL = getEnv("OWM_API_URL", "https://api.openweathermap.org/data/3.0/onecall")
	cfg.Weather.GeoURL = getEnv("OWM_GEO_URL", "http://api.openweathermap.org/geo/1.0/reverse")
	cfg.Weather.Units = getEnv("OWM_UNITS", "metric")
	cfg.Weather.Lang = getEnv("OWM_LANG", "en")
	cfg.Weather.Timeout = getEnvAsDuration("OWM_TIMEOUT", 10*time.Second)

	// DeepSeek
	cfg.DeepSeek.APIKey = getEnv("DEEPSEEK_API_KEY", "")
	cfg.DeepSeek.APIURL = getEnv("DEEPSEEK_API_URL", "https://api.deepseek.com")
	cfg.DeepSeek.Model = getEnv("DEEPSEEK_MODEL", "deepseek-chat")
	cfg.DeepSeek.Timeout = getEnvAsDuration("DEEPSEEK_TIMEOUT", 120*time.Second)

	// Rate limit. The advice endpoint gets its own per-IP budget because
	// every request there can cost an LLM call.
	cfg.RateLimit.RequestsPerSecond = getEnvAsInt("RATE_LIMIT_RPS", 10)
	cfg.RateLimit.Burst = getEnvAsInt("RATE_LIMIT_BURST", 20)
	cfg.RateLimit.AdviceRPS = getEnvAsFloat("RATE_LIMIT_ADVICE_RPS", 0.5)
	cfg.RateLimit.AdviceBurst = getEnvAsInt("RATE_LIMIT_ADVICE_BURST", 3)

	// Export
	cfg.Export.OutputDir = getEnv("EXPORT_OUTPUT_DIR", "./data/exports")

	// History
	cfg.History.DefaultLimit = getEnvAsInt("HISTORY_DEFAULT_LIMIT", 10)
	cfg.History.DefaultTimezone = getEnv("HISTORY_DEFAULT_TIMEZONE", "Asia/Shanghai")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if dur, err := time.ParseDuration(value); err == nil {
			return dur
		}
	}
	return defaultValue
}
