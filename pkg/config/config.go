package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database DatabaseConfig
	Redis    RedisConfig
	CORS     CORSConfig
	Log      LogConfig
	Exams    ExamsConfig
	Catalog  CatalogConfig
	Calendar CalendarConfig
	Sync     SyncConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ExamsConfig drives schedule ingestion.
type ExamsConfig struct {
	SearchURL     string
	UserAgent     string
	Referer       string
	FetchTimeout  time.Duration
	TimeZone      string
	DefaultCampus string
	SnapshotDir   string
}

// CatalogConfig tunes caching of distinct subject/course/section lookups.
type CatalogConfig struct {
	CacheEnabled bool
	CacheTTL     time.Duration
}

// CalendarConfig controls ICS rendering and shared calendar links.
type CalendarConfig struct {
	ProductID       string
	UIDDomain       string
	ShareDir        string
	SignedURLSecret string
	SignedURLTTL    time.Duration
	CleanupInterval time.Duration
}

// SyncConfig toggles the periodic live import.
type SyncConfig struct {
	Enabled  bool
	Interval time.Duration
	Campus   string
	Subject  string
	Course   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Exams = ExamsConfig{
		SearchURL:     v.GetString("EXAMS_SEARCH_URL"),
		UserAgent:     v.GetString("EXAMS_USER_AGENT"),
		Referer:       v.GetString("EXAMS_REFERER"),
		FetchTimeout:  parseDuration(v.GetString("EXAMS_FETCH_TIMEOUT"), 15*time.Second),
		TimeZone:      v.GetString("EXAMS_TIME_ZONE"),
		DefaultCampus: v.GetString("EXAMS_DEFAULT_CAMPUS"),
		SnapshotDir:   v.GetString("EXAMS_SNAPSHOT_DIR"),
	}

	cfg.Catalog = CatalogConfig{
		CacheEnabled: v.GetBool("ENABLE_CATALOG_CACHE"),
		CacheTTL:     parseDuration(v.GetString("CATALOG_CACHE_TTL"), 10*time.Minute),
	}

	cfg.Calendar = CalendarConfig{
		ProductID:       v.GetString("CALENDAR_PRODID"),
		UIDDomain:       v.GetString("CALENDAR_UID_DOMAIN"),
		ShareDir:        v.GetString("CALENDAR_SHARE_DIR"),
		SignedURLSecret: v.GetString("CALENDAR_SIGNED_URL_SECRET"),
		SignedURLTTL:    parseDuration(v.GetString("CALENDAR_SIGNED_URL_TTL"), 7*24*time.Hour),
		CleanupInterval: parseDuration(v.GetString("CALENDAR_CLEANUP_INTERVAL"), time.Hour),
	}

	cfg.Sync = SyncConfig{
		Enabled:  v.GetBool("ENABLE_SYNC"),
		Interval: parseDuration(v.GetString("SYNC_INTERVAL"), 6*time.Hour),
		Campus:   v.GetString("SYNC_CAMPUS"),
		Subject:  v.GetString("SYNC_SUBJECT"),
		Course:   v.GetString("SYNC_COURSE"),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "exam_planner")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("EXAMS_SEARCH_URL", "https://students.ubc.ca/enrolment/courses-academic-records/examinations/exam-schedule")
	v.SetDefault("EXAMS_USER_AGENT", "Exam-Planner/1.0")
	v.SetDefault("EXAMS_REFERER", "https://students.ubc.ca/")
	v.SetDefault("EXAMS_FETCH_TIMEOUT", "15s")
	v.SetDefault("EXAMS_TIME_ZONE", "America/Vancouver")
	v.SetDefault("EXAMS_DEFAULT_CAMPUS", "V")
	v.SetDefault("EXAMS_SNAPSHOT_DIR", "./snapshots")

	v.SetDefault("ENABLE_CATALOG_CACHE", false)
	v.SetDefault("CATALOG_CACHE_TTL", "10m")

	v.SetDefault("CALENDAR_PRODID", "-//Exam Planner//Exams//EN")
	v.SetDefault("CALENDAR_UID_DOMAIN", "examplanner")
	v.SetDefault("CALENDAR_SHARE_DIR", "./calendars")
	v.SetDefault("CALENDAR_SIGNED_URL_SECRET", "dev_calendar_secret")
	v.SetDefault("CALENDAR_SIGNED_URL_TTL", "168h")
	v.SetDefault("CALENDAR_CLEANUP_INTERVAL", "1h")

	v.SetDefault("ENABLE_SYNC", false)
	v.SetDefault("SYNC_INTERVAL", "6h")
	v.SetDefault("SYNC_CAMPUS", "V")
	v.SetDefault("SYNC_SUBJECT", "")
	v.SetDefault("SYNC_COURSE", "")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
