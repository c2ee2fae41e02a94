package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// PathEnv names the variable holding an optional YAML config file
const PathEnv = "AIRCARER_CONFIG"

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Redis   RedisConfig   `yaml:"redis"`
	Log     LogConfig     `yaml:"log"`
	Storage StorageConfig `yaml:"storage"`
	Jobs    JobsConfig    `yaml:"jobs"`
	Schema  SchemaConfig  `yaml:"schema"`
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
	RequestTimeout  time.Duration `yaml:"requestTimeout"`
}

// RedisConfig is the Redis connection. An empty Addr runs without Redis.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type LogConfig struct {
	Level   string `yaml:"level"`
	Format  string `yaml:"format"`
	Service string `yaml:"service"`
}

type StorageConfig struct {
	BaseDir    string  `yaml:"baseDir"`
	MaxPhotoMB float64 `yaml:"maxPhotoMB"`
}

type JobsConfig struct {
	Enabled            bool          `yaml:"enabled"`
	QueueReminderAfter time.Duration `yaml:"queueReminderAfter"`
}

type SchemaConfig struct {
	CacheSize int           `yaml:"cacheSize"`
	CacheTTL  time.Duration `yaml:"cacheTTL"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			ShutdownTimeout: 5 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{Addr: "localhost:6379"},
		Log: LogConfig{
			Level:   "info",
			Format:  "json",
			Service: "aircarer-api",
		},
		Storage: StorageConfig{
			BaseDir:    "./storage",
			MaxPhotoMB: 10,
		},
		Jobs: JobsConfig{
			Enabled:            true,
			QueueReminderAfter: 2 * time.Hour,
		},
		Schema: SchemaConfig{
			CacheSize: 64,
			CacheTTL:  time.Hour,
		},
	}
}

// Load builds the configuration from defaults, then the YAML file at
// path if one is given, then environment overrides
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse yaml: %w", err)
		}
	}

	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromEnv applies environment overrides to every section
func (c *Config) LoadFromEnv() error {
	c.Server.LoadFromEnv()
	if err := c.Redis.LoadFromEnv("REDIS"); err != nil {
		return err
	}
	c.Log.LoadFromEnv("LOG")
	if err := c.Storage.LoadFromEnv("STORAGE"); err != nil {
		return err
	}
	return c.Jobs.LoadFromEnv("JOBS")
}

func (c *ServerConfig) LoadFromEnv() {
	if addr := os.Getenv("ADDR"); addr != "" {
		c.Addr = addr
	}
}

// LoadFromEnv reads <prefix>_ADDR, <prefix>_PASSWORD and <prefix>_DB. REDIS_ADDR set
// to the empty string disables Redis.
func (c *RedisConfig) LoadFromEnv(prefix string) error {
	if addr, ok := os.LookupEnv(prefix + "_ADDR"); ok {
		c.Addr = addr
	}
	if password := os.Getenv(prefix + "_PASSWORD"); password != "" {
		c.Password = password
	}
	if db := os.Getenv(prefix + "_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("invalid %s_DB: %w", prefix, err)
		}
		c.DB = n
	}
	return nil
}

func (c *LogConfig) LoadFromEnv(prefix string) {
	if level := os.Getenv(prefix + "_LEVEL"); level != "" {
		c.Level = level
	}
	if format := os.Getenv(prefix + "_FORMAT"); format != "" {
		c.Format = format
	}
}

func (c *StorageConfig) LoadFromEnv(prefix string) error {
	if dir := os.Getenv(prefix + "_BASE_DIR"); dir != "" {
		c.BaseDir = dir
	}
	if mb := os.Getenv(prefix + "_MAX_PHOTO_MB"); mb != "" {
		v, err := strconv.ParseFloat(mb, 64)
		if err != nil || v <= 0 {
			return fmt.Errorf("invalid %s_MAX_PHOTO_MB %q", prefix, mb)
		}
		c.MaxPhotoMB = v
	}
	return nil
}

func (c *JobsConfig) LoadFromEnv(prefix string) error {
	if enabled := os.Getenv(prefix + "_ENABLED"); enabled != "" {
		v, err := strconv.ParseBool(enabled)
		if err != nil {
			return fmt.Errorf("invalid %s_ENABLED: %w", prefix, err)
		}
		c.Enabled = v
	}
	if after := os.Getenv(prefix + "_QUEUE_REMINDER_AFTER"); after != "" {
		d, err := time.ParseDuration(after)
		if err != nil {
			return fmt.Errorf("invalid %s_QUEUE_REMINDER_AFTER: %w", prefix, err)
		}
		c.QueueReminderAfter = d
	}
	return nil
}

// RedisEnabled reports whether a Redis address is configured
func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}
