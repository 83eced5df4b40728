package config

import (
	"errors"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// EnvProduction は本番環境を表す APP_ENV の値
const EnvProduction = "production"

// DefaultJWTSecret は開発用の既定の署名鍵
const DefaultJWTSecret = "dev-secret"

// ErrInsecureJWTSecret は本番環境で既定の署名鍵が使われていることを表す
var ErrInsecureJWTSecret = errors.New("本番環境では JWT_SECRET に既定値以外を設定してください")

// ストアの種別
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
)

// Config はアプリケーション設定を表す
type Config struct {
	Env         string
	Server      ServerConfig
	Store       StoreConfig
	Database    DatabaseConfig
	Redis       RedisConfig
	RabbitMQ    RabbitMQConfig
	Auth        AuthConfig
	Metrics     MetricsConfig
	Reservation ReservationConfig
	Automation  AutomationConfig
}

// ServerConfig はサーバー設定
type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// StoreConfig は永続化先の設定
type StoreConfig struct {
	Driver         string
	MigrationsPath string
	SeedDemo       bool
}

// DatabaseConfig はデータベース設定
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig はRedis設定（無効の場合はロックとブロードキャストを使わない）
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// RabbitMQConfig は通知キューの設定（URL が空の場合は送出しない）
type RabbitMQConfig struct {
	URL   string
	Queue string
}

// AuthConfig はアクセストークンの検証設定
type AuthConfig struct {
	JWTSecret string
}

// MetricsConfig はメトリクス認証の設定
type MetricsConfig struct {
	User     string
	Password string
}

// ReservationConfig は予約ポリシーの設定
type ReservationConfig struct {
	Timezone        string
	CheckInWindow   time.Duration
	NoShowGrace     time.Duration
	MaxDuration     time.Duration
	ReminderLeadMin time.Duration
	ReminderLeadMax time.Duration
	ExtensionStep   time.Duration
	LockTTL         time.Duration
}

// AutomationConfig は自動処理の起動設定
type AutomationConfig struct {
	Enabled  bool
	Interval time.Duration
}

// Load は .env と環境変数から設定を読み込む
func Load() *Config {
	// .env は任意
	_ = godotenv.Load()

	cfg := &Config{
		Env: getEnv("APP_ENV", "development"),
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Store: StoreConfig{
			Driver:         strings.ToLower(getEnv("STORE_DRIVER", StoreMemory)),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "migrations"),
			SeedDemo:       getBoolEnv("SEED_DEMO", true),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "biblioflow"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Enabled:  getBoolEnv("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		RabbitMQ: RabbitMQConfig{
			URL:   getEnv("RABBITMQ_URL", ""),
			Queue: getEnv("RABBITMQ_QUEUE", "notifications.outbound"),
		},
		Auth: AuthConfig{
			JWTSecret: getEnv("JWT_SECRET", DefaultJWTSecret),
		},
		Metrics: MetricsConfig{
			User:     getEnv("METRICS_USER", ""),
			Password: getEnv("METRICS_PASSWORD", ""),
		},
		Reservation: ReservationConfig{
			Timezone:        getEnv("FACILITY_TIMEZONE", "Europe/Rome"),
			CheckInWindow:   getDurationEnv("CHECKIN_WINDOW", 15*time.Minute),
			NoShowGrace:     getDurationEnv("NO_SHOW_GRACE", 15*time.Minute),
			MaxDuration:     getDurationEnv("MAX_RESERVATION_DURATION", 8*time.Hour),
			ReminderLeadMin: getDurationEnv("REMINDER_LEAD_MIN", 15*time.Minute),
			ReminderLeadMax: getDurationEnv("REMINDER_LEAD_MAX", 20*time.Minute),
			ExtensionStep:   getDurationEnv("EXTENSION_STEP", 30*time.Minute),
			LockTTL:         getDurationEnv("LOCK_TTL", 10*time.Second),
		},
		Automation: AutomationConfig{
			Enabled:  getBoolEnv("AUTOMATION_ENABLED", true),
			Interval: getDurationEnv("AUTOMATION_INTERVAL", 5*time.Minute),
		},
	}

	// DATABASE_URL / REDIS_URL 形式の指定を優先
	if raw := os.Getenv("DATABASE_URL"); raw != "" {
		cfg.Database.applyURL(raw)
	}
	if raw := os.Getenv("REDIS_URL"); raw != "" {
		cfg.Redis.applyURL(raw)
	}
	return cfg
}

// Validate は起動できない設定を検出する
func (c *Config) Validate() error {
	if c.Env == EnvProduction && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == DefaultJWTSecret) {
		return ErrInsecureJWTSecret
	}
	return nil
}

// DSN はPostgreSQL接続文字列を返す
func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DBName +
		" sslmode=" + c.SSLMode
}

func (c *DatabaseConfig) applyURL(raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		return
	}
	c.Host = u.Hostname()
	if p := u.Port(); p != "" {
		c.Port = p
	}
	if u.User != nil {
		c.User = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
	c.DBName = strings.TrimPrefix(u.Path, "/")
	c.SSLMode = u.Query().Get("sslmode")
	if c.SSLMode == "" {
		c.SSLMode = "require"
	}
}

// Addr はRedis接続アドレスを返す
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

func (c *RedisConfig) applyURL(raw string) {
	u, err := url.Parse(raw)
	if err != nil {
		return
	}
	c.Enabled = true
	c.Host = u.Hostname()
	if p := u.Port(); p != "" {
		c.Port = p
	}
	if u.User != nil {
		if pw, ok := u.User.Password(); ok {
			c.Password = pw
		}
	}
}

// IsEnabled はメトリクス認証が有効かどうかを返す
func (c *MetricsConfig) IsEnabled() bool {
	return c.User != "" && c.Password != ""
}

// Location は施設のタイムゾーンを返す（不明な場合は UTC）
func (c *ReservationConfig) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
