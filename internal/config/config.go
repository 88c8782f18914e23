package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	AWS      AWSConfig
	Source   SourceConfig
	Transfer TransferConfig
	Mirror   MirrorConfig
	Logger   LoggerConfig
}

type ServerConfig struct {
	Host           string
	Port           int
	APIKey         string
	RequestTimeout time.Duration
	AllowedOrigins []string
}

type AWSConfig struct {
	Region            string
	DestinationBucket string
	SessionNamePrefix string
}

// SourceConfig describes where training output lives in delegated accounts.
type SourceConfig struct {
	DefaultRegion      string
	BucketPrefix       string
	KeyPrefix          string
	KeySuffix          string
	NameHyperParameter string
	ResolveConcurrency int
}

type TransferConfig struct {
	StagingDir string
}

type MirrorConfig struct {
	QueueURL    string
	LocalFolder string
	WaitTime    time.Duration
	BatchSize   int32
}

type LoggerConfig struct {
	Level  string
	Format string
	File   string
}

var ErrMissingDestinationBucket = errors.New("DESTINATION_BUCKET is required")

func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	v := viper.New()

	// Defaults
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("API_KEY", "")
	v.SetDefault("REQUEST_TIMEOUT", "5m")
	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("AWS_REGION", "")
	v.SetDefault("DESTINATION_BUCKET", "")
	v.SetDefault("SESSION_NAME_PREFIX", "model-mirror")
	v.SetDefault("DEFAULT_SOURCE_REGION", "us-east-1")
	v.SetDefault("SOURCE_BUCKET_PREFIX", "aws-deepracer-")
	v.SetDefault("SOURCE_KEY_PREFIX", "DeepRacer-SageMaker-rlmdl-")
	v.SetDefault("SOURCE_KEY_SUFFIX", "model.tar.gz")
	v.SetDefault("HYPERPARAMETER_NAME_FIELD", "reward_function_s3_source")
	v.SetDefault("RESOLVE_CONCURRENCY", 8)
	v.SetDefault("STAGING_DIR", "")
	v.SetDefault("QUEUE_URL", "")
	v.SetDefault("LOCAL_FOLDER", "")
	v.SetDefault("QUEUE_WAIT_TIME", "20s")
	v.SetDefault("QUEUE_BATCH_SIZE", 10)
	v.SetDefault("LOGGER_LEVEL", "info")
	v.SetDefault("LOGGER_FORMAT", "json")
	v.SetDefault("LOGGER_FILE", "")

	// Env
	v.AutomaticEnv()

	requestTimeout, err := time.ParseDuration(v.GetString("REQUEST_TIMEOUT"))
	if err != nil {
		requestTimeout = 5 * time.Minute
	}
	waitTime, err := time.ParseDuration(v.GetString("QUEUE_WAIT_TIME"))
	if err != nil {
		waitTime = 20 * time.Second
	}

	cfg := &Config{
		Server: ServerConfig{
			Host:           v.GetString("SERVER_HOST"),
			Port:           v.GetInt("SERVER_PORT"),
			APIKey:         v.GetString("API_KEY"),
			RequestTimeout: requestTimeout,
			AllowedOrigins: splitList(v.GetString("ALLOWED_ORIGINS")),
		},
		AWS: AWSConfig{
			Region:            v.GetString("AWS_REGION"),
			DestinationBucket: v.GetString("DESTINATION_BUCKET"),
			SessionNamePrefix: v.GetString("SESSION_NAME_PREFIX"),
		},
		Source: SourceConfig{
			DefaultRegion:      v.GetString("DEFAULT_SOURCE_REGION"),
			BucketPrefix:       v.GetString("SOURCE_BUCKET_PREFIX"),
			KeyPrefix:          v.GetString("SOURCE_KEY_PREFIX"),
			KeySuffix:          v.GetString("SOURCE_KEY_SUFFIX"),
			NameHyperParameter: v.GetString("HYPERPARAMETER_NAME_FIELD"),
			ResolveConcurrency: v.GetInt("RESOLVE_CONCURRENCY"),
		},
		Transfer: TransferConfig{
			StagingDir: v.GetString("STAGING_DIR"),
		},
		Mirror: MirrorConfig{
			QueueURL:    v.GetString("QUEUE_URL"),
			LocalFolder: v.GetString("LOCAL_FOLDER"),
			WaitTime:    waitTime,
			BatchSize:   v.GetInt32("QUEUE_BATCH_SIZE"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOGGER_LEVEL"),
			Format: v.GetString("LOGGER_FORMAT"),
			File:   v.GetString("LOGGER_FILE"),
		},
	}

	return cfg, nil
}

// Validate checks the settings the HTTP engine cannot start without.
func (c *Config) Validate() error {
	if c.AWS.DestinationBucket == "" {
		return ErrMissingDestinationBucket
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
