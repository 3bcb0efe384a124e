package app

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/shrimpsizemoose/trekker/logger"
)

type Config struct {
	Server struct {
		Port       string `toml:"port"`
		EnableAuth bool   `toml:"enable_auth"`
	} `toml:"server"`

	Auth struct {
		RedisURL    string `toml:"redis_url"`
		TokenHeader string `toml:"token_header"`
		TokenKey    string `toml:"token_key"`
	} `toml:"auth"`

	Database struct {
		DSN           string `toml:"dsn"`
		MigrationsDir string `toml:"migrations_dir"`
	} `toml:"database"`

	Schedule struct {
		Cron                string `toml:"cron"`
		Timezone            string `toml:"timezone"`
		AutoStart           bool   `toml:"auto_start"`
		CycleTimeoutSeconds int    `toml:"cycle_timeout_seconds"`
	} `toml:"schedule"`

	Generator struct {
		ScarcityThreshold int `toml:"scarcity_threshold"`
		PromoteBatch      int `toml:"promote_batch"`
		PromoteScanLimit  int `toml:"promote_scan_limit"`
		OversampleFactor  int `toml:"oversample_factor"`
	} `toml:"generator"`

	Importer struct {
		SheetID     string `toml:"sheet_id"`
		ClassFilter string `toml:"class_filter"`
	} `toml:"importer"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf(
			"error reading config file %s\n> Error: %w\n> Content:\n%s",
			path,
			err,
			string(data),
		)
	}

	if config.Server.Port == "" {
		return nil, fmt.Errorf("Server port is not specified in config, use a value like :9999")
	}
	if config.Database.DSN == "" {
		return nil, fmt.Errorf("Database DSN is not specified in config")
	}

	applyDefaults(&config)

	logger.Debug.Printf("Loaded schedule config: %+v", config.Schedule)

	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Database.MigrationsDir == "" {
		config.Database.MigrationsDir = "./migrations"
	}
	if config.Schedule.Cron == "" {
		config.Schedule.Cron = "0 6 * * 0" // every Sunday 06:00
	}
	if config.Schedule.Timezone == "" {
		config.Schedule.Timezone = "Asia/Kolkata"
	}
	if config.Schedule.CycleTimeoutSeconds == 0 {
		config.Schedule.CycleTimeoutSeconds = 120
	}
	if config.Generator.ScarcityThreshold == 0 {
		config.Generator.ScarcityThreshold = 10
	}
	if config.Generator.PromoteBatch == 0 {
		config.Generator.PromoteBatch = 20
	}
	if config.Generator.PromoteScanLimit == 0 {
		config.Generator.PromoteScanLimit = 50
	}
	if config.Generator.OversampleFactor == 0 {
		config.Generator.OversampleFactor = 3
	}
	if config.Importer.ClassFilter == "" {
		config.Importer.ClassFilter = "10"
	}
	if config.Auth.TokenHeader == "" {
		config.Auth.TokenHeader = "Authorization"
	}
	if config.Auth.TokenKey == "" {
		config.Auth.TokenKey = "paperweek:admin_token"
	}
}
