package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"webhook-etl/pkg/utils"
)

// DefaultPath is read when no --config flag is given
const DefaultPath = "webhook-etl.yaml"

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type CaptureConfig struct {
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	MaxBodyBytes int64  `yaml:"max_body_bytes"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type OutputConfig struct {
	Dir string `yaml:"dir"`
}

type ETLConfig struct {
	ExtractLimit int    `yaml:"extract_limit"`
	HTTPTimeout  string `yaml:"http_timeout"`
}

type SMTPConfig struct {
	Host          string `yaml:"host"`
	Port          int    `yaml:"port"`
	Username      string `yaml:"username"`
	Password      string `yaml:"password"`
	From          string `yaml:"from"`
	SkipTLSVerify bool   `yaml:"skip_tls_verify"`
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type RetentionConfig struct {
	Days     int    `yaml:"days"`
	Interval string `yaml:"interval"`
}

type LogConfig struct {
	Dir  string `yaml:"dir"`
	File string `yaml:"file"`
}

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Capture   CaptureConfig   `yaml:"capture"`
	Database  DatabaseConfig  `yaml:"database"`
	Output    OutputConfig    `yaml:"output"`
	ETL       ETLConfig       `yaml:"etl"`
	SMTP      SMTPConfig      `yaml:"smtp"`
	Redis     RedisConfig     `yaml:"redis"`
	Auth      AuthConfig      `yaml:"auth"`
	Retention RetentionConfig `yaml:"retention"`
	Log       LogConfig       `yaml:"log"`
}

// Load loads YAML config, then applies env overrides. A missing file is not
// an error; defaults and env still apply.
func Load(configPath string) (*Config, error) {
	cfg := &Config{}
	if configPath == "" {
		configPath = DefaultPath
	}

	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.SetDefaults()
	applyEnvOverrides(cfg)
	return cfg, nil
}

func (c *Config) SetDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "127.0.0.1"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Capture.Host == "" {
		c.Capture.Host = "0.0.0.0"
	}
	if c.Capture.Port == 0 {
		c.Capture.Port = 8081
	}
	if c.Capture.MaxBodyBytes == 0 {
		c.Capture.MaxBodyBytes = 1 << 20
	}
	if c.Database.Path == "" {
		c.Database.Path = "webhook-etl.db"
	}
	if c.ETL.ExtractLimit == 0 {
		c.ETL.ExtractLimit = 1000
	}
	if c.ETL.HTTPTimeout == "" {
		c.ETL.HTTPTimeout = "30s"
	}
	if c.SMTP.Port == 0 {
		c.SMTP.Port = 587
	}
	if c.Redis.Key == "" {
		c.Redis.Key = "webhook-etl:events"
	}
	if c.Retention.Interval == "" {
		c.Retention.Interval = "1h"
	}
	if c.Log.Dir == "" {
		c.Log.Dir = "logs"
	}
	if c.Log.File == "" {
		c.Log.File = "webhook-etl.log"
	}
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database.Path) == "" {
		return errors.New("database.path cannot be empty")
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port out of range: %d", c.Server.Port)
	}
	if c.Capture.Port <= 0 || c.Capture.Port > 65535 {
		return fmt.Errorf("capture.port out of range: %d", c.Capture.Port)
	}
	if c.Capture.MaxBodyBytes < 0 {
		return errors.New("capture.max_body_bytes cannot be negative")
	}
	if c.ETL.ExtractLimit < 0 {
		return errors.New("etl.extract_limit cannot be negative")
	}
	if _, err := time.ParseDuration(c.ETL.HTTPTimeout); err != nil {
		return fmt.Errorf("etl.http_timeout: %w", err)
	}
	if c.Retention.Days < 0 {
		return errors.New("retention.days cannot be negative")
	}
	if _, err := time.ParseDuration(c.Retention.Interval); err != nil {
		return fmt.Errorf("retention.interval: %w", err)
	}
	if c.SMTP.Host != "" && c.SMTP.From == "" {
		return errors.New("smtp.from is required when smtp.host is set")
	}
	if c.Output.Dir != "" {
		if err := ensureWritableDir(c.Output.Dir); err != nil {
			return fmt.Errorf("output.dir not writable: %w", err)
		}
	}
	return nil
}

// Write saves the config as YAML, creating parent directories
func (c *Config) Write(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o600)
}

func ensureWritableDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(dir, ".writable-*")
	if err != nil {
		return err
	}
	name := f.Name()
	_ = f.Close()
	return os.Remove(name)
}

func applyEnvOverrides(c *Config) {
	setString(&c.Server.Host, "WEBHOOK_ETL_SERVER_HOST")
	setInt(&c.Server.Port, "WEBHOOK_ETL_SERVER_PORT")
	setInt(&c.Capture.Port, "WEBHOOK_ETL_CAPTURE_PORT")
	setString(&c.Database.Path, "WEBHOOK_ETL_DATABASE_PATH")
	setString(&c.Output.Dir, "WEBHOOK_ETL_OUTPUT_DIR")
	setString(&c.SMTP.Host, "WEBHOOK_ETL_SMTP_HOST")
	setInt(&c.SMTP.Port, "WEBHOOK_ETL_SMTP_PORT")
	setString(&c.SMTP.Username, "WEBHOOK_ETL_SMTP_USERNAME")
	setString(&c.SMTP.Password, "WEBHOOK_ETL_SMTP_PASSWORD")
	setString(&c.SMTP.From, "WEBHOOK_ETL_SMTP_FROM")
	setString(&c.Redis.Addr, "WEBHOOK_ETL_REDIS_ADDR")
	setString(&c.Redis.Password, "WEBHOOK_ETL_REDIS_PASSWORD")
	setString(&c.Auth.JWTSecret, "WEBHOOK_ETL_JWT_SECRET")
	setInt(&c.Retention.Days, "WEBHOOK_ETL_RETENTION_DAYS")
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v, ok := os.LookupEnv(key); ok {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

// HTTPTimeout is the parsed outbound call timeout
func (c *Config) HTTPTimeout() time.Duration {
	return utils.ParseDuration(c.ETL.HTTPTimeout, 30*time.Second)
}

// RetentionInterval is how often old requests are purged
func (c *Config) RetentionInterval() time.Duration {
	if d := utils.ParseDuration(c.Retention.Interval, time.Hour); d > 0 {
		return d
	}
	return time.Hour
}
