// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"stockplan/internal/domain"
	"stockplan/internal/engine"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Cache    CacheConfig
	Planning PlanningConfig
	Pipeline PipelineConfig
	Storage  StorageConfig
	Drive    DriveConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	DataDir   string
	OutputDir string
	LogLevel  string
}

type CacheConfig struct {
	Enabled                  bool
	RedisURL                 string
	RedisHost                string
	RedisPort                string
	RedisPassword            string
	RedisDB                  int
	RecommendationTTLSeconds int
}

// PlanningConfig carries the calculation defaults: which policy variants
// the engine runs with and which knobs requests start from.
type PlanningConfig struct {
	DefaultLeadTimeDays  int
	DefaultServiceLevel  float64
	BaselineCoverageDays int
	CarryingCostRate     float64
	LeadTimeScaling      string
	ForecastProvider     string
	DataSource           string
}

type PipelineConfig struct {
	Workers   int
	BatchSize int
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

type DriveConfig struct {
	CredentialsFile string
	FolderID        string
	FolderPath      string
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "stockplan")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("APP_DATA_DIR", "./data/datasets")
		viper.SetDefault("APP_OUTPUT_DIR", "./data/output")
		viper.SetDefault("APP_LOG_LEVEL", "info")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_RECOMMENDATION_TTL_SECONDS", 300)
		viper.SetDefault("PLANNING_DEFAULT_LEAD_TIME_DAYS", domain.DefaultLeadTimeDays)
		viper.SetDefault("PLANNING_DEFAULT_SERVICE_LEVEL", domain.DefaultServiceLevel)
		viper.SetDefault("PLANNING_BASELINE_COVERAGE_DAYS", engine.DefaultBaselineCoverageDays)
		viper.SetDefault("PLANNING_CARRYING_COST_RATE", engine.DefaultCarryingCostRate)
		viper.SetDefault("PLANNING_LEAD_TIME_SCALING", "sqrt-days")
		viper.SetDefault("PLANNING_FORECAST_PROVIDER", "flat-average")
		viper.SetDefault("PLANNING_DATA_SOURCE", "csv")
		viper.SetDefault("PIPELINE_WORKERS", 4)
		viper.SetDefault("PIPELINE_BATCH_SIZE", 200)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "stockplan-reports")
		viper.SetDefault("STORAGE_REGION", "")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("DRIVE_CREDENTIALS_FILE", "")
		viper.SetDefault("DRIVE_FOLDER_ID", "")
		viper.SetDefault("DRIVE_FOLDER_PATH", "")

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure data directories exist
		ensureDir(viper.GetString("APP_DATA_DIR"))
		ensureDir(viper.GetString("APP_OUTPUT_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				DataDir:   viper.GetString("APP_DATA_DIR"),
				OutputDir: viper.GetString("APP_OUTPUT_DIR"),
				LogLevel:  viper.GetString("APP_LOG_LEVEL"),
			},
			Cache: CacheConfig{
				Enabled:                  viper.GetBool("CACHE_ENABLED"),
				RedisURL:                 viper.GetString("REDIS_URL"),
				RedisHost:                viper.GetString("REDIS_HOST"),
				RedisPort:                viper.GetString("REDIS_PORT"),
				RedisPassword:            viper.GetString("REDIS_PASSWORD"),
				RedisDB:                  viper.GetInt("REDIS_DB"),
				RecommendationTTLSeconds: viper.GetInt("CACHE_RECOMMENDATION_TTL_SECONDS"),
			},
			Planning: PlanningConfig{
				DefaultLeadTimeDays:  viper.GetInt("PLANNING_DEFAULT_LEAD_TIME_DAYS"),
				DefaultServiceLevel:  viper.GetFloat64("PLANNING_DEFAULT_SERVICE_LEVEL"),
				BaselineCoverageDays: viper.GetInt("PLANNING_BASELINE_COVERAGE_DAYS"),
				CarryingCostRate:     viper.GetFloat64("PLANNING_CARRYING_COST_RATE"),
				LeadTimeScaling:      viper.GetString("PLANNING_LEAD_TIME_SCALING"),
				ForecastProvider:     viper.GetString("PLANNING_FORECAST_PROVIDER"),
				DataSource:           viper.GetString("PLANNING_DATA_SOURCE"),
			},
			Pipeline: PipelineConfig{
				Workers:   viper.GetInt("PIPELINE_WORKERS"),
				BatchSize: viper.GetInt("PIPELINE_BATCH_SIZE"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
			Drive: DriveConfig{
				CredentialsFile: viper.GetString("DRIVE_CREDENTIALS_FILE"),
				FolderID:        viper.GetString("DRIVE_FOLDER_ID"),
				FolderPath:      viper.GetString("DRIVE_FOLDER_PATH"),
			},
		}
	})

	return instance
}

// EnginePolicy maps the planning section to an engine policy.
func (p PlanningConfig) EnginePolicy() (engine.Policy, error) {
	scaling, err := engine.ParseLeadTimeScaling(p.LeadTimeScaling)
	if err != nil {
		return engine.Policy{}, err
	}

	policy := engine.Policy{
		LeadTimeScaling:      scaling,
		BaselineCoverageDays: p.BaselineCoverageDays,
		CarryingCostRate:     p.CarryingCostRate,
	}
	if err := policy.Validate(); err != nil {
		return engine.Policy{}, err
	}

	return policy, nil
}

// DefaultParams maps the planning section to request defaults.
func (p PlanningConfig) DefaultParams() domain.PlanningParams {
	return domain.PlanningParams{
		LeadTimeDays: p.DefaultLeadTimeDays,
		ServiceLevel: p.DefaultServiceLevel,
	}
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
