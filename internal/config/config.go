package config

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	HttpServerPort uint16 `env:"HTTP_SERVER_PORT" envDefault:"8085" validate:"min=1000,max=65535"`

	RoomCodeLength   int           `env:"ROOM_CODE_LENGTH"   envDefault:"4"   validate:"min=4,max=8"`
	RoomReapInterval time.Duration `env:"ROOM_REAP_INTERVAL" envDefault:"1m"`
	RoomMaxIdle      time.Duration `env:"ROOM_MAX_IDLE"      envDefault:"30m"`

	// Optional message archive pipeline (Redis stream -> Postgres).
	MessageArchiveEnabled bool   `env:"MESSAGE_ARCHIVE_ENABLED" envDefault:"false"`
	RedisMessagesHost     string `env:"REDIS_MESSAGES_HOST" envDefault:"localhost"`
	RedisMessagesPort     uint16 `env:"REDIS_MESSAGES_PORT" envDefault:"6379"   validate:"min=1000,max=65535"`

	PostgresHost     string `env:"POSTGRES_HOST"     envDefault:"localhost"`
	PostgresPort     string `env:"POSTGRES_PORT"     envDefault:"5432"`
	PostgresUser     string `env:"POSTGRES_USER"     envDefault:"chat_user"`
	PostgresPassword string `env:"POSTGRES_PASSWORD" envDefault:"chat_password"`
	PostgresDb       string `env:"POSTGRES_DB"       envDefault:"chat_db"`
}

func LoadConfig() (*Config, error) {
	// Load environment variables from .env file
	err := godotenv.Load(".env")
	if err != nil {
		zap.L().Debug(".env file not found", zap.Error(err))
	}

	cfg := &Config{}
	// Parse config from environment variables
	if err = env.Parse(cfg); err != nil {
		zap.L().Error("config_load_failed", zap.Error(err))
		return nil, err
	}

	// Validate the config
	validate := validator.New()
	err = validate.Struct(cfg)
	if err != nil {
		zap.L().Error("config_validation_failed", zap.Error(err))
		return nil, err
	}
	return cfg, nil
}
