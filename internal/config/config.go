package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Qdrant   QdrantConfig
	Gemini   GeminiConfig
	Storage  StorageConfig
	Worker   WorkerConfig
	Workflow WorkflowConfig
	Zoom     ZoomConfig
	Calendar CalendarConfig
	Email    EmailConfig
	Logging  LoggingConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type RedisConfig struct {
	Address  string
	Password string
	DB       int
	LockTTL  time.Duration
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type StorageConfig struct {
	UploadPath  string
	MaxFileSize int64
}

type WorkerConfig struct {
	Concurrency      int
	RetryMaxAttempts int
	PollInterval     time.Duration
}

type WorkflowConfig struct {
	// StrictScreening requires a completed interview before screening can be scheduled.
	StrictScreening      bool
	CollaboratorTimeout  time.Duration
	ScreeningDurationMin int
	DefaultTimezone      string
}

type ZoomConfig struct {
	BaseURL  string
	APIToken string
	UserID   string
}

type CalendarConfig struct {
	BaseURL    string
	APIToken   string
	CalendarID string
}

type EmailConfig struct {
	Enabled   bool
	Region    string
	FromEmail string
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using environment and default values.")
	}

	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Server: ServerConfig{
			Port: v.GetString("PORT"),
			Env:  v.GetString("ENV"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			DBName:   v.GetString("DB_NAME"),
			SSLMode:  v.GetString("DB_SSLMODE"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("REDIS_ADDRESS"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
			LockTTL:  v.GetDuration("REDIS_LOCK_TTL"),
		},
		Qdrant: QdrantConfig{
			URL:        v.GetString("QDRANT_URL"),
			APIKey:     v.GetString("QDRANT_API_KEY"),
			Collection: v.GetString("QDRANT_COLLECTION"),
		},
		Gemini: GeminiConfig{
			APIKey: v.GetString("GEMINI_API_KEY"),
			Model:  v.GetString("GEMINI_MODEL"),
		},
		Storage: StorageConfig{
			UploadPath:  v.GetString("UPLOAD_PATH"),
			MaxFileSize: v.GetInt64("MAX_FILE_SIZE"),
		},
		Worker: WorkerConfig{
			Concurrency:      v.GetInt("WORKER_CONCURRENCY"),
			RetryMaxAttempts: v.GetInt("RETRY_MAX_ATTEMPTS"),
			PollInterval:     v.GetDuration("WORKER_POLL_INTERVAL"),
		},
		Workflow: WorkflowConfig{
			StrictScreening:      v.GetBool("STRICT_SCREENING"),
			CollaboratorTimeout:  v.GetDuration("COLLABORATOR_TIMEOUT"),
			ScreeningDurationMin: v.GetInt("SCREENING_DURATION_MINUTES"),
			DefaultTimezone:      v.GetString("DEFAULT_TIMEZONE"),
		},
		Zoom: ZoomConfig{
			BaseURL:  v.GetString("ZOOM_BASE_URL"),
			APIToken: v.GetString("ZOOM_API_TOKEN"),
			UserID:   v.GetString("ZOOM_USER_ID"),
		},
		Calendar: CalendarConfig{
			BaseURL:    v.GetString("CALENDAR_BASE_URL"),
			APIToken:   v.GetString("CALENDAR_API_TOKEN"),
			CalendarID: v.GetString("CALENDAR_ID"),
		},
		Email: EmailConfig{
			Enabled:   v.GetBool("EMAIL_ENABLED"),
			Region:    v.GetString("AWS_REGION"),
			FromEmail: v.GetString("EMAIL_FROM"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// lockTTLMargin covers database work around the collaborator calls.
const lockTTLMargin = 10 * time.Second

// ScreeningLockTTL is the configured lock TTL, raised when needed so the lock
// outlives the collaborator calls and the confirmation email, which run one
// after the other, each bounded by CollaboratorTimeout.
func (c *Config) ScreeningLockTTL() time.Duration {
	minTTL := 2*c.Workflow.CollaboratorTimeout + lockTTLMargin
	if c.Redis.LockTTL < minTTL {
		return minTTL
	}
	return c.Redis.LockTTL
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "3000")
	v.SetDefault("ENV", "development")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "admission_tracker")
	v.SetDefault("DB_SSLMODE", "disable")

	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_LOCK_TTL", "60s")

	v.SetDefault("QDRANT_URL", "http://localhost:6333")
	v.SetDefault("QDRANT_COLLECTION", "interview_rubrics")

	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")

	v.SetDefault("UPLOAD_PATH", "./uploads")
	v.SetDefault("MAX_FILE_SIZE", 10485760)

	v.SetDefault("WORKER_CONCURRENCY", 3)
	v.SetDefault("RETRY_MAX_ATTEMPTS", 3)
	v.SetDefault("WORKER_POLL_INTERVAL", "10s")

	v.SetDefault("STRICT_SCREENING", false)
	v.SetDefault("COLLABORATOR_TIMEOUT", "15s")
	v.SetDefault("SCREENING_DURATION_MINUTES", 30)
	v.SetDefault("DEFAULT_TIMEZONE", "UTC")

	v.SetDefault("ZOOM_BASE_URL", "https://api.zoom.us/v2")
	v.SetDefault("ZOOM_USER_ID", "me")
	v.SetDefault("CALENDAR_BASE_URL", "https://www.googleapis.com/calendar/v3")
	v.SetDefault("CALENDAR_ID", "primary")

	v.SetDefault("EMAIL_ENABLED", false)
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("EMAIL_FROM", "admissions@example.com")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "console")
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}
