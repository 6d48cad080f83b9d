package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is populated from the environment (a .env file is loaded first in
// main). Everything the core consumes at startup lives here: snapshot
// paths, cooldowns, reward tuning and the gacha table.
type Config struct {
	Env  string `env:"APP_ENV" envDefault:"development"`
	Port string `env:"PORT" envDefault:"8080"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	SnapshotPath  string `env:"SNAPSHOT_PATH" envDefault:"data/user_data.json"`
	BackupPath    string `env:"SNAPSHOT_BACKUP_PATH" envDefault:"data/user_data_backup.json"`
	QuarantineDir string `env:"SNAPSHOT_QUARANTINE_DIR" envDefault:"data"`

	CommandCooldown     time.Duration `env:"COMMAND_COOLDOWN" envDefault:"3s"`
	LeaderboardCooldown time.Duration `env:"LEADERBOARD_COOLDOWN" envDefault:"10s"`

	DailyBaseReward int64         `env:"DAILY_BASE_REWARD" envDefault:"100"`
	DailyLevelBonus int64         `env:"DAILY_LEVEL_BONUS" envDefault:"10"`
	DailyExp        int64         `env:"DAILY_EXP" envDefault:"25"`
	DailyWait       time.Duration `env:"DAILY_WAIT" envDefault:"24h"`

	GachaCost int64 `env:"GACHA_COST" envDefault:"50"`
	// GachaTable overrides the built-in item list, formatted as a
	// "label:weight" CSV with '*' marking the jackpot item.
	GachaTable string `env:"GACHA_TABLE"`
	JackpotMin int64  `env:"GACHA_JACKPOT_MIN" envDefault:"100"`
	JackpotMax int64  `env:"GACHA_JACKPOT_MAX" envDefault:"500"`

	LeaderboardLimit int `env:"LEADERBOARD_LIMIT" envDefault:"10"`

	// RedisAddr enables the shared HTTP request limiter when set. Empty
	// keeps the deployment single-binary with the in-process gate only.
	RedisAddr string `env:"REDIS_ADDR"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	ThrottleRate  float64 `env:"HTTP_THROTTLE_RATE" envDefault:"20"`
	ThrottleBurst int     `env:"HTTP_THROTTLE_BURST" envDefault:"40"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.JackpotMin > cfg.JackpotMax {
		return nil, fmt.Errorf("GACHA_JACKPOT_MIN %d exceeds GACHA_JACKPOT_MAX %d", cfg.JackpotMin, cfg.JackpotMax)
	}
	return cfg, nil
}
