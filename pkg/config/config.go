package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server     ServerConfig
	Redis      RedisConfig
	Toxicity   ToxicityConfig
	Moderation ModerationConfig
	Analysis   AnalysisConfig
	Logging    LoggingConfig
}

type ServerConfig struct {
	Host         string
	Port         int
	ReadTimeout  int
	WriteTimeout int
	BodyLimit    int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type ToxicityConfig struct {
	Endpoint   string
	APIKey     string
	TimeoutSec int
}

type ModerationConfig struct {
	APIKey     string
	Model      string
	TimeoutSec int
}

type AnalysisConfig struct {
	CacheTTLSec             int
	MaxMessageLength        int
	MaxConversationMessages int
	RateLimitPerMinute      int
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
	viper.AddConfigPath("/etc/guardline")

	viper.SetEnvPrefix("GUARDLINE")
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
	viper.SetDefault("server.bodyLimit", 1048576)

	viper.SetDefault("redis.host", "localhost")
	viper.SetDefault("redis.port", 6379)
	viper.SetDefault("redis.db", 0)

	viper.SetDefault("toxicity.endpoint", "https://commentanalyzer.googleapis.com/v1alpha1")
	viper.SetDefault("toxicity.timeoutSec", 7)

	viper.SetDefault("moderation.model", "text-moderation-latest")
	viper.SetDefault("moderation.timeoutSec", 7)

	viper.SetDefault("analysis.cacheTTLSec", 300)
	viper.SetDefault("analysis.maxMessageLength", 10000)
	viper.SetDefault("analysis.maxConversationMessages", 50)
	viper.SetDefault("analysis.rateLimitPerMinute", 60)

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.outputPath", "stdout")
}
