package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server      ServerConfig
	SQLite      SQLiteConfig
	Redis       RedisConfig
	Vision      VisionConfig
	ObjectStore ObjectStoreConfig
	Pipeline    PipelineConfig
	Logging     LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type SQLiteConfig struct {
	Path string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
	TTLMin   int
}

// VisionConfig selects and configures the image recognition provider.
type VisionConfig struct {
	Provider      string
	GoogleAPIKey  string
	OpenAIAPIKey  string
	OpenAIModel   string
	TimeoutSec    int
	MaxResults    int
	LanguageHints []string
}

// ObjectStoreConfig points at a Supabase-storage-compatible object store
// used for observation photos. Leaving URL empty disables photo upload.
type ObjectStoreConfig struct {
	URL        string
	ServiceKey string
	Bucket     string
	TimeoutSec int
}

type PipelineConfig struct {
	// MinConfidence filters scene-label signals below this score before
	// classification.
	MinConfidence float64
}

type LoggingConfig struct {
	Level      string
	Format     string
	OutputPath string
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/ecodex")

	viper.SetEnvPrefix("ECODEX")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.readTimeout", 30)
	viper.SetDefault("server.writeTimeout", 30)
	viper.SetDefault("server.bodyLimit", 10485760)

	viper.SetDefault("sqlite.path", "./data/ecodex.db")

	viper.SetDefault("redis.enabled", false)
	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.ttlMin", 60)

	viper.SetDefault("vision.provider", "google")
	viper.SetDefault("vision.openAIModel", "gpt-4o")
	viper.SetDefault("vision.timeoutSec", 15)
	viper.SetDefault("vision.maxResults", 20)
	viper.SetDefault("vision.languageHints", []string{"fr", "en"})

	viper.SetDefault("objectStore.bucket", "observations")
	viper.SetDefault("objectStore.timeoutSec", 10)

	viper.SetDefault("pipeline.minConfidence", 0.55)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
