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

	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	CORS      CORSConfig
	Log       LogConfig
	Scoring   ScoringConfig
	Dashboard DashboardConfig
	Snapshot  SnapshotConfig
	Exports   ExportsConfig
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
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret     string
	Expiration time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// ScoringConfig exposes the product-tuned pipeline constants. The defaults
// match the shipped weighting; deployments may adjust them per site.
type ScoringConfig struct {
	TrendImprovingDelta float64
	TrendDecliningDelta float64
	OverdueDays         int
	AgingDays           int

	WeightTierIntensive  int
	WeightTierStrategic  int
	WeightTrendDeclining int
	WeightTrendStable    int
	WeightOverdue        int
	WeightAging          int
	WeightNoIntervention int
}

// DashboardConfig governs KPI endpoint cache tuning and listing limits.
type DashboardConfig struct {
	CacheTTL         time.Duration
	TopPriorityLimit int
}

// SnapshotConfig controls the tier-history batch job.
type SnapshotConfig struct {
	Enabled       bool
	Interval      time.Duration
	WorkerRetries int
}

// ExportsConfig controls PDF report generation.
type ExportsConfig struct {
	Enabled    bool
	SchoolName string
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
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

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
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret:     v.GetString("JWT_SECRET"),
		Expiration: parseDuration(v.GetString("JWT_EXPIRATION"), 24*time.Hour),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scoring = ScoringConfig{
		TrendImprovingDelta:  v.GetFloat64("TREND_IMPROVING_DELTA"),
		TrendDecliningDelta:  v.GetFloat64("TREND_DECLINING_DELTA"),
		OverdueDays:          v.GetInt("ASSESSMENT_OVERDUE_DAYS"),
		AgingDays:            v.GetInt("ASSESSMENT_AGING_DAYS"),
		WeightTierIntensive:  v.GetInt("PRIORITY_WEIGHT_TIER_INTENSIVE"),
		WeightTierStrategic:  v.GetInt("PRIORITY_WEIGHT_TIER_STRATEGIC"),
		WeightTrendDeclining: v.GetInt("PRIORITY_WEIGHT_TREND_DECLINING"),
		WeightTrendStable:    v.GetInt("PRIORITY_WEIGHT_TREND_STABLE"),
		WeightOverdue:        v.GetInt("PRIORITY_WEIGHT_OVERDUE"),
		WeightAging:          v.GetInt("PRIORITY_WEIGHT_AGING"),
		WeightNoIntervention: v.GetInt("PRIORITY_WEIGHT_NO_INTERVENTION"),
	}

	cfg.Dashboard = DashboardConfig{
		CacheTTL:         parseDuration(v.GetString("DASHBOARD_CACHE_TTL"), 5*time.Minute),
		TopPriorityLimit: v.GetInt("DASHBOARD_TOP_PRIORITY_LIMIT"),
	}

	cfg.Snapshot = SnapshotConfig{
		Enabled:       v.GetBool("ENABLE_SNAPSHOTS"),
		Interval:      parseDuration(v.GetString("SNAPSHOT_INTERVAL"), 24*time.Hour),
		WorkerRetries: v.GetInt("SNAPSHOT_WORKER_RETRIES"),
	}

	cfg.Exports = ExportsConfig{
		Enabled:    v.GetBool("ENABLE_EXPORTS"),
		SchoolName: v.GetString("EXPORTS_SCHOOL_NAME"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "literacy_tracker")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_EXPIRATION", "24h")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("TREND_IMPROVING_DELTA", 2.0)
	v.SetDefault("TREND_DECLINING_DELTA", -2.0)
	v.SetDefault("ASSESSMENT_OVERDUE_DAYS", 90)
	v.SetDefault("ASSESSMENT_AGING_DAYS", 60)
	v.SetDefault("PRIORITY_WEIGHT_TIER_INTENSIVE", 5)
	v.SetDefault("PRIORITY_WEIGHT_TIER_STRATEGIC", 3)
	v.SetDefault("PRIORITY_WEIGHT_TREND_DECLINING", 3)
	v.SetDefault("PRIORITY_WEIGHT_TREND_STABLE", 1)
	v.SetDefault("PRIORITY_WEIGHT_OVERDUE", 2)
	v.SetDefault("PRIORITY_WEIGHT_AGING", 1)
	v.SetDefault("PRIORITY_WEIGHT_NO_INTERVENTION", 2)

	v.SetDefault("DASHBOARD_CACHE_TTL", "5m")
	v.SetDefault("DASHBOARD_TOP_PRIORITY_LIMIT", 15)

	v.SetDefault("ENABLE_SNAPSHOTS", false)
	v.SetDefault("SNAPSHOT_INTERVAL", "24h")
	v.SetDefault("SNAPSHOT_WORKER_RETRIES", 3)

	v.SetDefault("ENABLE_EXPORTS", false)
	v.SetDefault("EXPORTS_SCHOOL_NAME", "")
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
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
