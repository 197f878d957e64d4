package configloader

import (
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPath           = "config/config.yaml"
	DefaultMainnetRPCURL  = "https://mainnet.massa.net/api/v2"
	DefaultBuildnetRPCURL = "https://buildnet.massa.net/api/v2"
)

// ServerConfig holds HTTP server settings. Timeouts are in seconds.
type ServerConfig struct {
	Port         string `yaml:"port" env:"PORT"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
	Development  bool   `yaml:"development" env:"GATEWAY_DEVELOPMENT"`
}

type LoggingConfig struct {
	Level string `yaml:"level" env:"LOG_LEVEL"`
}

// NetworksConfig overrides the built-in node endpoints.
type NetworksConfig struct {
	MainnetRPCURL  string `yaml:"mainnetRPCURL" env:"MASSA_MAINNET_RPC_URL"`
	BuildnetRPCURL string `yaml:"buildnetRPCURL" env:"MASSA_BUILDNET_RPC_URL"`
}

// RpcClientConfig tunes the JSON-RPC adapter. RateLimit is requests per
// second per network; zero disables throttling.
type RpcClientConfig struct {
	CallTimeoutMs       int64   `yaml:"callTimeoutMs" env:"RPC_CALL_TIMEOUT_MS"`
	RateLimit           float64 `yaml:"rateLimit" env:"RPC_RATE_LIMIT"`
	BurstLimit          int     `yaml:"burstLimit"`
	MaxIdleConnsPerHost int     `yaml:"maxIdleConnsPerHost"`
}

// GoalsConfig holds settings of the course goals webhook client.
type GoalsConfig struct {
	RequestTimeoutMillis int64 `yaml:"requestTimeoutMillis" env:"GOALS_TIMEOUT_MS"`
	MaxResponseBytes     int   `yaml:"maxResponseBytes"`
}

// CourseStoreConfig points at the Postgres database holding courses. An empty
// DSN leaves the course message route without a store.
type CourseStoreConfig struct {
	DSN             string `yaml:"dsn" env:"COURSE_STORE_DSN"`
	CacheTTLMinutes int    `yaml:"cacheTTLMinutes"`
}

// RateLimitConfig limits inbound requests per client IP. Zero disables it.
type RateLimitConfig struct {
	RequestsPerMinute int64 `yaml:"requestsPerMinute" env:"RATE_LIMIT_PER_MINUTE"`
}

type MetricsConfig struct {
	Disabled bool   `yaml:"disabled" env:"METRICS_DISABLED"`
	Path     string `yaml:"path"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Logging     LoggingConfig     `yaml:"logging"`
	Networks    NetworksConfig    `yaml:"networks"`
	RpcClient   RpcClientConfig   `yaml:"rpcClient"`
	Goals       GoalsConfig       `yaml:"goals"`
	CourseStore CourseStoreConfig `yaml:"courseStore"`
	RateLimit   RateLimitConfig   `yaml:"rateLimit"`
	Metrics     MetricsConfig     `yaml:"metrics"`
}

// PathFromEnv returns CONFIG_PATH, or DefaultPath when unset.
func PathFromEnv() string {
	if p := os.Getenv("CONFIG_PATH"); p != "" {
		return p
	}
	return DefaultPath
}

// Load reads the YAML file at path, applies environment overrides and then
// fills in defaults. A missing file is not an error.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		logrus.Infof("Loading configuration from path: %s", path)
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				logrus.Errorf("Failed to unmarshal config data from %s: %v", path, err)
				return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			logrus.Warnf("Config file %s not found, using defaults and environment", path)
		default:
			logrus.Errorf("Failed to read config file %s: %v", path, err)
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment overrides: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	logrus.Info("Configuration loaded successfully.")
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8080"
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		cfg.Server.WriteTimeout = 30
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.Networks.MainnetRPCURL == "" {
		cfg.Networks.MainnetRPCURL = DefaultMainnetRPCURL
	}
	if cfg.Networks.BuildnetRPCURL == "" {
		cfg.Networks.BuildnetRPCURL = DefaultBuildnetRPCURL
	}

	if cfg.RpcClient.CallTimeoutMs <= 0 {
		cfg.RpcClient.CallTimeoutMs = 10000
		logrus.Infof("RpcClient.CallTimeoutMs not set, defaulting to %d ms", cfg.RpcClient.CallTimeoutMs)
	}
	if cfg.RpcClient.RateLimit > 0 && cfg.RpcClient.BurstLimit <= 0 {
		cfg.RpcClient.BurstLimit = 1
	}
	if cfg.RpcClient.MaxIdleConnsPerHost <= 0 {
		cfg.RpcClient.MaxIdleConnsPerHost = 10
	}

	if cfg.Goals.RequestTimeoutMillis <= 0 {
		cfg.Goals.RequestTimeoutMillis = 10000
		logrus.Infof("Goals.RequestTimeoutMillis not set, defaulting to %d ms", cfg.Goals.RequestTimeoutMillis)
	}
	if cfg.Goals.MaxResponseBytes <= 0 {
		cfg.Goals.MaxResponseBytes = 1 << 20
	}

	if cfg.CourseStore.CacheTTLMinutes < 0 {
		cfg.CourseStore.CacheTTLMinutes = 0
	}
	if cfg.CourseStore.DSN == "" {
		logrus.Warn("CourseStore.DSN not set, course message relay will report lookup failures")
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}
}

func validate(cfg *Config) error {
	for name, raw := range map[string]string{
		"networks.mainnetRPCURL":  cfg.Networks.MainnetRPCURL,
		"networks.buildnetRPCURL": cfg.Networks.BuildnetRPCURL,
	} {
		u, err := url.Parse(raw)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
		}
	}
	if cfg.RpcClient.RateLimit < 0 {
		return fmt.Errorf("rpcClient.rateLimit must not be negative")
	}
	if cfg.RateLimit.RequestsPerMinute < 0 {
		return fmt.Errorf("rateLimit.requestsPerMinute must not be negative")
	}
	return nil
}
