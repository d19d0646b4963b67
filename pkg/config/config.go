package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"screw-inspection/pkg/scheduler"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Inference InferenceConfig
	RateLimit RateLimitConfig
	MQTT      MQTTConfig
	Scheduler SchedulerConfig
	Metrics   MetricsConfig
}

type AppConfig struct {
	Name string
	Port string
	Env  string
}

type DatabaseConfig struct {
	Driver     string // postgres | sqlite
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SSLMode    string
	SQLitePath string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type StorageConfig struct {
	UploadsDir       string
	MaxArtifactBytes int64
}

// InferenceConfig points at the detection sidecar and fixes the
// parameters every frame is run with.
type InferenceConfig struct {
	BaseURL         string
	Timeout         time.Duration
	ConfidenceFloor float64
	IoUThreshold    float64
	ImageSize       int
	MaxDetections   int
	RetryBackoff    time.Duration
	MaxFrameBytes   int
}

type RateLimitConfig struct {
	Enabled           bool
	MaxRequests       int
	WindowSeconds     int
	AuthMaxRequests   int
	AuthWindowSeconds int
}

type MQTTConfig struct {
	Enabled     bool
	Broker      string
	ClientID    string
	Username    string
	Password    string
	TopicPrefix string
}

type SchedulerConfig struct {
	ArtifactSweepCron string
	OrphanGracePeriod time.Duration
}

type MetricsConfig struct {
	Enabled bool
}

func LoadConfig() (*Config, error) {
	// .env is optional in production
	_ = godotenv.Load()

	config := &Config{
		App: AppConfig{
			Name: getEnv("APP_NAME", "Screw Inspection"),
			Port: getEnv("APP_PORT", "3000"),
			Env:  getEnv("APP_ENV", "development"),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			DBName:     getEnv("DB_NAME", "screw_inspection"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("DB_SQLITE_PATH", "screw_inspection.db"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvBool("REDIS_ENABLED", true),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:      getEnv("JWT_SECRET", "your-secret-key"),
			ExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
		},
		Storage: StorageConfig{
			UploadsDir:       getEnv("UPLOADS_DIR", "uploads"),
			MaxArtifactBytes: int64(getEnvInt("MAX_ARTIFACT_MB", 500)) << 20,
		},
		Inference: InferenceConfig{
			BaseURL:         getEnv("INFERENCE_API_URL", "http://localhost:5000"),
			Timeout:         getEnvDuration("INFERENCE_TIMEOUT", 120*time.Second),
			ConfidenceFloor: getEnvFloat("INFERENCE_CONFIDENCE_FLOOR", 0.05),
			IoUThreshold:    getEnvFloat("INFERENCE_IOU", 0.45),
			ImageSize:       getEnvInt("INFERENCE_IMAGE_SIZE", 640),
			MaxDetections:   getEnvInt("INFERENCE_MAX_DETECTIONS", 300),
			RetryBackoff:    getEnvDuration("INFERENCE_RETRY_BACKOFF", 5*time.Second),
			MaxFrameBytes:   getEnvInt("MAX_FRAME_MB", 16) << 20,
		},
		RateLimit: RateLimitConfig{
			Enabled:           getEnvBool("RATE_LIMIT_ENABLED", true),
			MaxRequests:       getEnvInt("RATE_LIMIT_MAX", 600),
			WindowSeconds:     getEnvInt("RATE_LIMIT_WINDOW", 60),
			AuthMaxRequests:   getEnvInt("RATE_LIMIT_AUTH_MAX", 10),
			AuthWindowSeconds: getEnvInt("RATE_LIMIT_AUTH_WINDOW", 60),
		},
		MQTT: MQTTConfig{
			Enabled:     getEnvBool("MQTT_ENABLED", false),
			Broker:      getEnv("MQTT_BROKER", "tcp://localhost:1883"),
			ClientID:    getEnv("MQTT_CLIENT_ID", "screw-inspection"),
			Username:    getEnv("MQTT_USERNAME", ""),
			Password:    getEnv("MQTT_PASSWORD", ""),
			TopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "screw-inspection"),
		},
		Scheduler: SchedulerConfig{
			ArtifactSweepCron: getEnv("ARTIFACT_SWEEP_CRON", "0 3 * * *"),
			OrphanGracePeriod: getEnvDuration("ARTIFACT_ORPHAN_GRACE", 24*time.Hour),
		},
		Metrics: MetricsConfig{
			Enabled: getEnvBool("METRICS_ENABLED", true),
		},
	}

	if err := scheduler.ValidateCronExpression(config.Scheduler.ArtifactSweepCron); err != nil {
		return nil, fmt.Errorf("ARTIFACT_SWEEP_CRON: %w", err)
	}

	return config, nil
}

// IsSQLite reports whether the database driver is sqlite.
func (c DatabaseConfig) IsSQLite() bool {
	return c.Driver == "sqlite"
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvFloat(key string, defaultValue float64) float64 {
	v, err := strconv.ParseFloat(getEnv(key, ""), 64)
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil {
		return defaultValue
	}
	return v
}
