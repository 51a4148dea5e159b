package config

import (
	"os"
	"strconv"
	"strings"
)

type AnalyticsServiceConfig struct {
	Port         string
	PostgresCfg  PostgresConfig
	RedisCfg     RedisConfig
	GeminiAPICfg GeminiAPIConfig

	// DataSource selects the executor: "database" or "csv".
	DataSource    string
	CropAreaCSV   string
	AggregateCSV  string
	CultivatedCSV string
	StatesCSV     string
	DistrictsCSV  string

	DefaultLGDCode         string
	DefaultTopN            int
	ModelTimeoutSeconds    int
	CacheTTLSeconds        int
	SnapshotRefreshMinutes int
	LogDir                 string
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host               string
	Port               string
	Password           string
	DB                 int
	PingTimeoutSeconds int
}

type GeminiAPIConfig struct {
	// APIKeys holds every configured key; each gets its own client in the
	// round-robin selector.
	APIKeys   []string
	ModelName string
}

func New() *AnalyticsServiceConfig {
	return &AnalyticsServiceConfig{
		Port: getEnvOrDefault("PORT", "8090"),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "agri_analytics"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RedisCfg: RedisConfig{
			Host:               getEnvOrDefault("REDIS_HOST", ""),
			Port:               getEnvOrDefault("REDIS_PORT", "6379"),
			Password:           getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:                 0,
			PingTimeoutSeconds: getEnvIntOrDefault("REDIS_PING_TIMEOUT_SECONDS", 5),
		},
		GeminiAPICfg: GeminiAPIConfig{
			APIKeys:   splitKeys(getEnvOrDefault("GEMINI_KEYS", "")),
			ModelName: getEnvOrDefault("GEMINI_MODEL", "gemini-2.5-flash"),
		},
		DataSource:             getEnvOrDefault("DATA_SOURCE", "database"),
		CropAreaCSV:            getEnvOrDefault("CROP_AREA_CSV", "data/crop_area_data.csv"),
		AggregateCSV:           getEnvOrDefault("AGGREGATE_CSV", "data/aggregate_summary_data.csv"),
		CultivatedCSV:          getEnvOrDefault("CULTIVATED_CSV", "data/cultivated_summary_data.csv"),
		StatesCSV:              getEnvOrDefault("STATES_CSV", ""),
		DistrictsCSV:           getEnvOrDefault("DISTRICTS_CSV", ""),
		DefaultLGDCode:         getEnvOrDefault("DEFAULT_LGD_CODE", "27"),
		DefaultTopN:            getEnvIntOrDefault("DEFAULT_TOP_N", 10),
		ModelTimeoutSeconds:    getEnvIntOrDefault("MODEL_TIMEOUT_SECONDS", 12),
		CacheTTLSeconds:        getEnvIntOrDefault("CACHE_TTL_SECONDS", 300),
		SnapshotRefreshMinutes: getEnvIntOrDefault("SNAPSHOT_REFRESH_MINUTES", 60),
		LogDir:                 getEnvOrDefault("LOG_DIR", "/tmp/log/analytics_service"),
	}
}

func splitKeys(raw string) []string {
	if raw == "" {
		return nil
	}
	var keys []string
	for _, part := range strings.Split(raw, ",") {
		if key := strings.TrimSpace(part); key != "" {
			keys = append(keys, key)
		}
	}
	return keys
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
