package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// The values are read by Viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	S3       S3Config       `mapstructure:"s3"`
	JWT      JWTConfig      `mapstructure:"jwt"`
	Google   GoogleConfig   `mapstructure:"google"`
	GenAI    GenAIConfig    `mapstructure:"genai"`
	Dining   DiningConfig   `mapstructure:"dining"`
	Upstream UpstreamConfig `mapstructure:"upstream"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Log      LogConfig      `mapstructure:"log"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

const (
	DriverMongo  = "mongo"
	DriverMemory = "memory"
)

type DatabaseConfig struct {
	Driver string `mapstructure:"driver"` // "mongo" or "memory"
	URI    string `mapstructure:"uri"`
	Name   string `mapstructure:"name"`
}

// RedisConfig backs the session table and the login rate limiter.
// An empty Addr keeps sessions in memory and disables rate limiting.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type S3Config struct {
	Endpoint        string `mapstructure:"endpoint"`
	Region          string `mapstructure:"region"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	SecretAccessKey string `mapstructure:"secret_access_key"`
	BucketName      string `mapstructure:"bucket_name"`
	UseSSL          bool   `mapstructure:"use_ssl"`
	GifPrefix       string `mapstructure:"gif_prefix"` // GIFs live at <gif_prefix><n>.gif
}

// JWTConfig defines session token configuration
type JWTConfig struct {
	Secret            string        `mapstructure:"secret"`
	Expiration        time.Duration `mapstructure:"expiration"`
	RefreshExpiration time.Duration `mapstructure:"refresh_expiration"`
}

type GoogleConfig struct {
	ClientID string `mapstructure:"client_id"` // Expected audience of ID tokens
}

type GenAIConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
}

type DiningConfig struct {
	MenuURL  string        `mapstructure:"menu_url"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

type UpstreamConfig struct {
	MaxRetries uint64        `mapstructure:"max_retries"`
	Timeout    time.Duration `mapstructure:"timeout"`
}

type AuthConfig struct {
	LoginRatePerMin int `mapstructure:"login_rate_per_min"`
}

type LogConfig struct {
	Level    string `mapstructure:"level"`
	JSON     bool   `mapstructure:"json"`
	File     string `mapstructure:"file"` // Empty writes to stdout only
	ToStdout bool   `mapstructure:"to_stdout"`
}

type CatalogConfig struct {
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
}

// LoadConfig reads configuration from file or environment variables.
// A .env file in path, when present, is loaded into the environment first.
func LoadConfig(path string) (config Config, err error) {
	_ = godotenv.Load(strings.TrimSuffix(path, "/") + "/.env")

	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	// server.address -> SERVER_ADDRESS, jwt.expiration -> JWT_EXPIRATION
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(`.`, `_`))

	setDefaults(v)

	err = v.ReadInConfig()
	var notFound viper.ConfigFileNotFoundError
	if errors.As(err, &notFound) {
		// Env vars and defaults are enough to run.
		err = nil
	} else if err != nil {
		return
	}

	if err = v.Unmarshal(&config); err != nil {
		return
	}
	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.address", ":8080")
	v.SetDefault("database.driver", DriverMongo)
	v.SetDefault("database.uri", "mongodb://localhost:27017")
	v.SetDefault("database.name", "fitness_social")
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("s3.endpoint", "")
	v.SetDefault("s3.region", "us-east-1")
	v.SetDefault("s3.access_key_id", "")
	v.SetDefault("s3.secret_access_key", "")
	v.SetDefault("s3.bucket_name", "")
	v.SetDefault("s3.use_ssl", true)
	v.SetDefault("s3.gif_prefix", "gifs/")
	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.expiration", "24h")
	v.SetDefault("jwt.refresh_expiration", "720h")
	v.SetDefault("google.client_id", "")
	v.SetDefault("genai.api_key", "")
	v.SetDefault("genai.model", "gemini-2.0-flash")
	v.SetDefault("dining.menu_url", "https://now.dining.cornell.edu/api/1.0/dining/eateries.json")
	v.SetDefault("dining.cache_ttl", "1h")
	v.SetDefault("upstream.max_retries", 3)
	v.SetDefault("upstream.timeout", "10s")
	v.SetDefault("auth.login_rate_per_min", 20)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.file", "")
	v.SetDefault("log.to_stdout", true)
	v.SetDefault("catalog.cache_ttl", "5m")
}
