package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Backend selects the repository implementation.
const (
	BackendMemory = "memory"
	BackendMySQL  = "mysql"
	BackendRedis  = "redis"
)

type Config struct {
	HTTPAddr  string `yaml:"http_addr"`
	GRPCAddr  string `yaml:"grpc_addr"`
	Backend   string `yaml:"backend"`
	MySQLDSN  string `yaml:"mysql_dsn"`
	RedisAddr string `yaml:"redis_addr"`
	JWTSecret string `yaml:"jwt_secret"`
	LogMode   string `yaml:"log_mode"`
}

// Load builds the configuration from defaults, an optional YAML file and
// environment overrides, in that order of precedence.
func Load(path string) (*Config, error) {
	cfg := &Config{
		HTTPAddr:  ":8080",
		GRPCAddr:  ":50051",
		Backend:   BackendMemory,
		MySQLDSN:  "root:root@tcp(localhost:3306)/maspatas?parseTime=true",
		RedisAddr: "localhost:6379",
		JWTSecret: "dev-secret",
		LogMode:   "dev",
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	overrideString(&cfg.HTTPAddr, "HTTP_ADDR")
	overrideString(&cfg.GRPCAddr, "GRPC_ADDR")
	overrideString(&cfg.Backend, "REPOSITORY_BACKEND")
	overrideString(&cfg.MySQLDSN, "MYSQL_DSN")
	overrideString(&cfg.RedisAddr, "REDIS_ADDR")
	overrideString(&cfg.JWTSecret, "JWT_SECRET")
	overrideString(&cfg.LogMode, "LOG_MODE")

	cfg.Backend = strings.ToLower(cfg.Backend)
	switch cfg.Backend {
	case BackendMemory, BackendMySQL, BackendRedis:
	default:
		return nil, fmt.Errorf("unknown repository backend %q", cfg.Backend)
	}
	return cfg, nil
}

func overrideString(target *string, name string) {
	if v := strings.TrimSpace(os.Getenv(name)); v != "" {
		*target = v
	}
}
