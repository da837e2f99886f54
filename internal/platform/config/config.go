package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is centralized process configuration.
// Keep infra values here and pass typed config into builders.
type Config struct {
	ServiceName  string   `yaml:"service_name"`
	HTTPPort     string   `yaml:"http_port"`
	PostgresDSN  string   `yaml:"postgres_dsn"`
	KafkaBrokers []string `yaml:"kafka_brokers"`

	AdminAccount  string `yaml:"admin_account"`
	EscrowAccount string `yaml:"escrow_account"`
	PledgeFloor   int64  `yaml:"pledge_floor"`
}

// Load reads an optional YAML file named by ELECTRA_CONFIG, then lets
// environment variables override individual fields.
func Load() (Config, error) {
	cfg := Config{
		ServiceName:   "electra",
		HTTPPort:      "8080",
		AdminAccount:  "admin",
		EscrowAccount: "escrow:election",
		PledgeFloor:   1,
	}

	if path := os.Getenv("ELECTRA_CONFIG"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	if value := os.Getenv("SERVICE_NAME"); value != "" {
		cfg.ServiceName = value
	}
	if value := os.Getenv("HTTP_PORT"); value != "" {
		cfg.HTTPPort = value
	}
	if value := os.Getenv("POSTGRES_DSN"); value != "" {
		cfg.PostgresDSN = value
	}
	if value := os.Getenv("ADMIN_ACCOUNT"); value != "" {
		cfg.AdminAccount = value
	}
	if value := os.Getenv("ESCROW_ACCOUNT"); value != "" {
		cfg.EscrowAccount = value
	}
	if raw := os.Getenv("PLEDGE_FLOOR"); raw != "" {
		floor, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("parse PLEDGE_FLOOR: %w", err)
		}
		cfg.PledgeFloor = floor
	}

	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		cfg.KafkaBrokers = nil
		for _, value := range strings.Split(raw, ",") {
			value = strings.TrimSpace(value)
			if value != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, value)
			}
		}
	}
	if len(cfg.KafkaBrokers) == 0 {
		cfg.KafkaBrokers = []string{"localhost:9092"}
	}

	return cfg, nil
}
