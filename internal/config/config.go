package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DiscordToken string             `yaml:"discord_token"`
	DataDir      string             `yaml:"data_dir"`
	LogLevel     string             `yaml:"log_level"`
	Health       HealthConfig       `yaml:"health"`
	Economy      EconomyConfig      `yaml:"economy"`
	Leveling     LevelingConfig     `yaml:"leveling"`
	Verification VerificationConfig `yaml:"verification"`
	Embeds       EmbedColors        `yaml:"embed_colors"`
}

type HealthConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

type RewardConfig struct {
	Amount          int `yaml:"amount"`
	StreakBonus     int `yaml:"streak_bonus"`
	CooldownMinutes int `yaml:"cooldown_minutes"`
	GraceMinutes    int `yaml:"grace_minutes"`
	StreakInterval  int `yaml:"streak_interval"`
}

type EconomyConfig struct {
	Daily  RewardConfig `yaml:"daily"`
	Weekly RewardConfig `yaml:"weekly"`
	Work   RewardConfig `yaml:"work"`
}

type LevelingConfig struct {
	XPPerMessage      int `yaml:"xp_per_message"`
	XPCooldownSeconds int `yaml:"xp_cooldown_seconds"`
	BaseXP            int `yaml:"base_xp"`
}

type VerificationConfig struct {
	CodeLength        int `yaml:"code_length"`
	SessionTTLMinutes int `yaml:"session_ttl_minutes"`
	MaxAttempts       int `yaml:"max_attempts"`
}

type EmbedColors struct {
	Action  int `yaml:"action"`
	Success int `yaml:"success"`
	Warning int `yaml:"warning"`
	Error   int `yaml:"error"`
}

func DefaultConfig() Config {
	return Config{
		DataDir:  "data",
		LogLevel: "info",
		Health:   HealthConfig{Enabled: false, Addr: ":8080"},
		Economy: EconomyConfig{
			Daily:  RewardConfig{Amount: 200, StreakBonus: 500, CooldownMinutes: 1440, GraceMinutes: 1440, StreakInterval: 5},
			Weekly: RewardConfig{Amount: 1000, StreakBonus: 2000, CooldownMinutes: 10080, GraceMinutes: 10080, StreakInterval: 4},
			Work:   RewardConfig{Amount: 120, StreakBonus: 300, CooldownMinutes: 60, GraceMinutes: 120, StreakInterval: 10},
		},
		Leveling: LevelingConfig{
			XPPerMessage:      15,
			XPCooldownSeconds: 60,
			BaseXP:            100,
		},
		Verification: VerificationConfig{
			CodeLength:        5,
			SessionTTLMinutes: 10,
			MaxAttempts:       3,
		},
		Embeds: EmbedColors{
			Action:  0x5865F2,
			Success: 0x22C55E,
			Warning: 0xF59E0B,
			Error:   0xEF4444,
		},
	}
}

func Load() (Config, error) {
	cfg := DefaultConfig()

	path := os.Getenv("CONFIG_PATH")
	if path == "" {
		path = "config.yaml"
	}
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, err
		}
	}

	applyEnv(&cfg)
	if cfg.DiscordToken == "" {
		return Config{}, errors.New("DISCORD_TOKEN is required")
	}

	return cfg, nil
}

func applyEnv(cfg *Config) {
	cfg.DiscordToken = envString("DISCORD_TOKEN", cfg.DiscordToken)
	cfg.DataDir = envString("DATA_DIR", cfg.DataDir)
	cfg.LogLevel = envString("LOG_LEVEL", cfg.LogLevel)
	cfg.Health.Enabled = envBool("HEALTH_ENABLED", cfg.Health.Enabled)
	cfg.Health.Addr = envString("HEALTH_ADDR", cfg.Health.Addr)
	cfg.Economy.Daily.Amount = envInt("DAILY_AMOUNT", cfg.Economy.Daily.Amount)
	cfg.Economy.Weekly.Amount = envInt("WEEKLY_AMOUNT", cfg.Economy.Weekly.Amount)
	cfg.Economy.Work.Amount = envInt("WORK_AMOUNT", cfg.Economy.Work.Amount)
	cfg.Leveling.XPPerMessage = envInt("XP_PER_MESSAGE", cfg.Leveling.XPPerMessage)
	cfg.Leveling.XPCooldownSeconds = envInt("XP_COOLDOWN_SECONDS", cfg.Leveling.XPCooldownSeconds)
	cfg.Verification.CodeLength = envInt("CAPTCHA_CODE_LENGTH", cfg.Verification.CodeLength)
	cfg.Verification.SessionTTLMinutes = envInt("CAPTCHA_TTL_MINUTES", cfg.Verification.SessionTTLMinutes)
	cfg.Verification.MaxAttempts = envInt("CAPTCHA_MAX_ATTEMPTS", cfg.Verification.MaxAttempts)
}

func BuildLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "json"
	cfg.EncoderConfig.TimeKey = "time"
	cfg.EncoderConfig.MessageKey = "message"
	cfg.EncoderConfig.LevelKey = "level"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	lvl := strings.ToLower(level)
	switch lvl {
	case "debug", "info", "warn", "error":
		cfg.Level = zap.NewAtomicLevelAt(parseLevel(lvl))
	default:
		cfg.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	return cfg.Build()
}

func parseLevel(level string) zapcore.Level {
	switch level {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func envString(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if value := os.Getenv(key); value != "" {
		lower := strings.ToLower(value)
		return lower == "1" || lower == "true" || lower == "yes"
	}
	return fallback
}
