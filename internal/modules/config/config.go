package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
	jwtSecretENV      = "JWT_SECRET"
	storageENV        = "STORAGE"

	configDir = "configs/"
)

const (
	StoragePostgres = "postgres"
	StorageFile     = "file"
	StorageMemory   = "memory"
)

// Config ...
type Config struct {
	Telegram struct {
		Token   string `yaml:"token"`
		Enabled bool   `yaml:"enabled"`
		ChatID  int64  `yaml:"chat_id"`
		Topics  struct {
			Signals     int `yaml:"signals"`
			Activations int `yaml:"activations"`
			List        int `yaml:"list"`
		} `yaml:"topics"`
		HistoryLimit int `yaml:"history_limit"`
	} `yaml:"telegram"`

	DB        string `yaml:"db_dsn"`
	Storage   string `yaml:"storage"`    // postgres | file | memory
	StorePath string `yaml:"store_path"` // для storage=file

	Service struct {
		Host       string `yaml:"host"`
		PublicPort int    `yaml:"public_port"`
		AdminPort  int    `yaml:"admin_port"`
		// AllowedOrigins — CORS для фронтенда; пусто = localhost dev-серверы.
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"service"`

	Auth struct {
		JWTSecret string        `yaml:"jwt_secret"`
		TokenTTL  time.Duration `yaml:"token_ttl"`
	} `yaml:"auth"`

	Signals struct {
		// Удалять открытый сигнал из БД вместо переноса в историю.
		PurgeOnClose bool `yaml:"purge_on_close"`
	} `yaml:"signals"`

	Tracing struct {
		Enabled bool   `yaml:"enabled"`
		Host    string `yaml:"host"`
		Port    int    `yaml:"port"`
	} `yaml:"tracing"`

	LogLevel string `yaml:"log_level"`
}

func defaults() Config {
	var c Config
	c.Storage = StorageMemory
	c.StorePath = "data/signals.json"
	c.Service.Host = "0.0.0.0"
	c.Service.PublicPort = 8080
	c.Service.AdminPort = 8081
	c.Auth.TokenTTL = 24 * time.Hour
	c.Telegram.HistoryLimit = 20
	c.Tracing.Host = "localhost"
	c.Tracing.Port = 6831
	c.LogLevel = "info"
	return c
}

func NewConfig() (*Config, error) {
	_ = godotenv.Load()

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	return Load(configDir + configFileName)
}

// Load читает yaml и применяет env-переопределения.
func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}

	defer func() {
		_ = file.Close()
	}()

	config := defaults()
	if err = yaml.NewDecoder(file).Decode(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}

	config.applyEnv()

	if err = config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

func (c *Config) applyEnv() {
	if token := os.Getenv(tokenTelegramENV); token != "" {
		c.Telegram.Token = token
	}
	if dsn := os.Getenv(databaseDSN); dsn != "" {
		c.DB = dsn
	}
	if secret := os.Getenv(jwtSecretENV); secret != "" {
		c.Auth.JWTSecret = secret
	}
	c.Storage = getenvDefault(storageENV, c.Storage)
	c.Telegram.Enabled = boolFromEnv("TELEGRAM_ENABLED", c.Telegram.Enabled)
	c.Telegram.ChatID = int64FromEnv("TELEGRAM_CHAT_ID", c.Telegram.ChatID)
	c.Signals.PurgeOnClose = boolFromEnv("PURGE_ON_CLOSE", c.Signals.PurgeOnClose)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)
}

func (c *Config) Validate() error {
	switch c.Storage {
	case StoragePostgres:
		if c.DB == "" {
			return fmt.Errorf("storage=postgres requires db_dsn or %s", databaseDSN)
		}
	case StorageFile, StorageMemory:
	default:
		return fmt.Errorf("unknown storage %q", c.Storage)
	}
	if c.Telegram.Enabled && (c.Telegram.Token == "" || c.Telegram.ChatID == 0) {
		return fmt.Errorf("telegram enabled but token or chat_id is empty")
	}
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret or %s is required", jwtSecretENV)
	}
	return nil
}

func (c *Config) PublicAddr() string {
	return fmt.Sprintf("%s:%d", c.Service.Host, c.Service.PublicPort)
}

func (c *Config) AdminAddr() string {
	return fmt.Sprintf("%s:%d", c.Service.Host, c.Service.AdminPort)
}

func int64FromEnv(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func boolFromEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if v == "1" || v == "true" || v == "TRUE" {
			return true
		}
		if v == "0" || v == "false" || v == "FALSE" {
			return false
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
