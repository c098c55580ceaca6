// Package config 加载 adshelf 的运行配置
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	// DriverSQLite 本地 SQLite 文件（默认）
	DriverSQLite = "sqlite"
	// DriverPostgres PostgreSQL
	DriverPostgres = "postgres"
)

type Config struct {
	// Address 是 HTTP 监听地址
	// 可以通过环境变量 ADSHELF_ADDRESS 配置
	Address string `yaml:"address"`

	// DataDir 是数据目录，保存 SQLite 数据库和媒体文件
	// 可以通过环境变量 ADSHELF_DATA_DIR 配置
	// 默认：~/.local/share/adshelf
	DataDir string `yaml:"data_dir"`

	Database DatabaseConfig `yaml:"database"`
	Media    MediaConfig    `yaml:"media"`
	Feed     FeedConfig     `yaml:"feed"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`

	// RedisURL 不为空时注销列表保存在 redis，否则保存在内存
	RedisURL string `yaml:"redis_url"`

	// AllowedOrigins 允许跨域访问 API 的来源
	// 环境变量 ADSHELF_ALLOWED_ORIGINS，逗号分隔
	AllowedOrigins []string `yaml:"allowed_origins"`
}

type DatabaseConfig struct {
	// Driver 是 sqlite 或 postgres
	Driver string `yaml:"driver"`
	// DSN 为空时使用 {DataDir}/adshelf.db
	DSN string `yaml:"dsn"`
}

type MediaConfig struct {
	Bucket string `yaml:"bucket"`
	// PublicBaseURL 拼接在 /media/{bucket}/{name} 之前，为空时返回相对路径
	PublicBaseURL string `yaml:"public_base_url"`
}

type FeedConfig struct {
	PageSize       int           `yaml:"page_size"`
	SearchDebounce time.Duration `yaml:"search_debounce"`
}

type AuthConfig struct {
	JWTSecret string        `yaml:"jwt_secret"`
	TokenTTL  time.Duration `yaml:"token_ttl"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	// File 不为空时日志写入文件并按大小切割
	File string `yaml:"file"`
}

// New 按 默认值 → YAML 文件 → 环境变量 的顺序加载配置
func New() (*Config, error) {
	// 1. .env 不存在时忽略
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()

	// 2. YAML 配置文件
	if path := os.Getenv("ADSHELF_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	// 3. 环境变量覆盖
	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default 返回默认配置
func Default() *Config {
	return &Config{
		Address: "0.0.0.0:7788",
		DataDir: defaultDataDir(),
		Database: DatabaseConfig{
			Driver: DriverSQLite,
		},
		Media: MediaConfig{
			Bucket: "ads-media",
		},
		Feed: FeedConfig{
			PageSize:       4,
			SearchDebounce: 300 * time.Millisecond,
		},
		Auth: AuthConfig{
			TokenTTL: 24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DatabaseDSN 返回实际使用的 DSN
func (c *Config) DatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	return filepath.Join(c.DataDir, "adshelf.db")
}

// MediaDir 返回本地媒体存储根目录
func (c *Config) MediaDir() string {
	return filepath.Join(c.DataDir, "media")
}

// Validate 检查配置是否可用
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.Database.Driver == DriverPostgres && c.Database.DSN == "" {
		return errors.New("database dsn is required for postgres")
	}
	if c.Auth.JWTSecret == "" {
		return errors.New("jwt secret is required, set ADSHELF_JWT_SECRET")
	}
	if c.Feed.PageSize <= 0 {
		return fmt.Errorf("page size must be positive, got %d", c.Feed.PageSize)
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("token ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	return nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	setString(&c.Address, "ADSHELF_ADDRESS")
	setString(&c.DataDir, "ADSHELF_DATA_DIR")
	setString(&c.Database.Driver, "ADSHELF_DB_DRIVER")
	setString(&c.Database.DSN, "ADSHELF_DB_DSN")
	setString(&c.Media.Bucket, "ADSHELF_MEDIA_BUCKET")
	setString(&c.Media.PublicBaseURL, "ADSHELF_MEDIA_PUBLIC_BASE_URL")
	setString(&c.Auth.JWTSecret, "ADSHELF_JWT_SECRET")
	setString(&c.RedisURL, "ADSHELF_REDIS_URL")
	setString(&c.Log.Level, "ADSHELF_LOG_LEVEL")
	setString(&c.Log.File, "ADSHELF_LOG_FILE")

	if v := os.Getenv("ADSHELF_ALLOWED_ORIGINS"); v != "" {
		c.AllowedOrigins = c.AllowedOrigins[:0]
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, origin)
			}
		}
	}
	if v := os.Getenv("ADSHELF_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse ADSHELF_PAGE_SIZE: %w", err)
		}
		c.Feed.PageSize = n
	}
	if err := setDuration(&c.Feed.SearchDebounce, "ADSHELF_SEARCH_DEBOUNCE"); err != nil {
		return err
	}
	return setDuration(&c.Auth.TokenTTL, "ADSHELF_TOKEN_TTL")
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fmt.Errorf("parse %s: %w", key, err)
	}
	*dst = d
	return nil
}

// defaultDataDir 获取默认数据目录
func defaultDataDir() string {
	// 1. 使用用户主目录下的 .local/share/adshelf
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".local", "share", "adshelf")
	}

	// 2. 如果无法获取主目录，使用当前目录下的 data
	return filepath.Join(".", "data")
}
