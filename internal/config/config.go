package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Storage  StorageConfig
	Admin    AdminConfig
	Display  DisplayConfig
}

type ServerConfig struct {
	Port         string
	BaseURL      string // public URL used for screen QR codes
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	CORSOrigins  []string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	Database     string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  time.Duration
	AutoMigrate  bool
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	CacheTTL time.Duration
}

type KafkaConfig struct {
	Brokers []string
	GroupID string
	Topics  TopicConfig
	Enabled bool
}

type TopicConfig struct {
	StatistikLogged  string
	AufguesseChanged string
}

type StorageConfig struct {
	UploadDir   string
	ScreensFile string
	ScreenCount int
}

type AdminConfig struct {
	Username     string
	PasswordHash string
	SessionTTL   time.Duration
	SecureCookie bool // defaults to true when PUBLIC_BASE_URL is https
}

type DisplayConfig struct {
	Timezone       string
	DefaultMinutes int
}

func Load() *Config {
	baseURL := strings.TrimRight(getEnv("PUBLIC_BASE_URL", "http://localhost:8080"), "/")
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			BaseURL:      baseURL,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
			CORSOrigins:  getEnvList("CORS_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "3306"),
			Username:     getEnv("DB_USERNAME", "aufgussplan"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "aufgussplan"),
			MaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  time.Duration(getEnvInt("DB_MAX_LIFETIME_MINUTES", 5)) * time.Minute,
			AutoMigrate:  getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			CacheTTL: time.Duration(getEnvInt("STATISTIK_CACHE_SECONDS", 300)) * time.Second,
		},
		Kafka: KafkaConfig{
			Brokers: getEnvList("KAFKA_BROKERS", []string{"localhost:9092"}),
			GroupID: getEnv("KAFKA_GROUP_ID", "aufgussplan"),
			Enabled: getEnvBool("KAFKA_ENABLED", false),
			Topics: TopicConfig{
				StatistikLogged:  getEnv("KAFKA_TOPIC_STATISTIK", "aufgussplan.statistik.logged"),
				AufguesseChanged: getEnv("KAFKA_TOPIC_AUFGUESSE", "aufgussplan.aufguesse.changed"),
			},
		},
		Storage: StorageConfig{
			UploadDir:   getEnv("UPLOAD_DIR", "uploads"),
			ScreensFile: getEnv("SCREENS_FILE", "data/bildschirme.json"),
			ScreenCount: getEnvInt("SCREEN_COUNT", 5),
		},
		Admin: AdminConfig{
			Username:     getEnv("ADMIN_USERNAME", "admin"),
			PasswordHash: getEnv("ADMIN_PASSWORD_HASH", ""),
			SessionTTL:   time.Duration(getEnvInt("ADMIN_SESSION_HOURS", 12)) * time.Hour,
			SecureCookie: getEnvBool("ADMIN_COOKIE_SECURE", strings.HasPrefix(baseURL, "https://")),
		},
		Display: DisplayConfig{
			Timezone:       getEnv("TZ_DISPLAY", "Europe/Berlin"),
			DefaultMinutes: getEnvInt("AUFGUSS_DEFAULT_MINUTES", 15),
		},
	}
}

// DSN builds the go-sql-driver/mysql data source name. parseTime stays off so
// DATE and TIME columns scan into their "2006-01-02" and "15:04:05" forms.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&collation=utf8mb4_unicode_ci&multiStatements=true",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

// Location resolves the display timezone, falling back to local time.
func (d DisplayConfig) Location() *time.Location {
	loc, err := time.LoadLocation(d.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
