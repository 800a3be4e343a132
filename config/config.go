package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

// Config holds every runtime setting of the API server.
type Config struct {
	Port string
	Env  string

	StoreDriver   string
	MongoURI      string
	MongoDatabase string

	RedisAddress   string
	RedisPassword  string
	RedisDB        int
	RateLimitQueue string
	IssueRateLimit int

	JWTSecret string
	TokenTTL  time.Duration

	UploadDir      string
	MaxUploadBytes int64

	CORSOrigins           []string
	AllowOpenRegistration bool

	LogLevel  string
	LogFormat string
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// RateLimitEnabled reports whether public intake is throttled.
func (c *Config) RateLimitEnabled() bool {
	return c.RedisAddress != "" && c.IssueRateLimit > 0
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "5000")
	v.SetDefault("GO_ENV", "development")
	v.SetDefault("STORE_DRIVER", StoreMongo)
	v.SetDefault("MONGODB_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGODB_DATABASE", "civic-issues")
	v.SetDefault("REDIS_ADDRESS", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_QUEUE_FOR_ISSUE_LIMIT", "issue-limit")
	v.SetDefault("ISSUE_RATE_LIMIT", 20)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("MAX_UPLOAD_BYTES", 5<<20)
	v.SetDefault("CORS_ORIGINS", "")
	v.SetDefault("ALLOW_OPEN_REGISTRATION", false)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// Load reads .env (if any) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{
		Port:                  v.GetString("PORT"),
		Env:                   v.GetString("GO_ENV"),
		StoreDriver:           strings.ToLower(v.GetString("STORE_DRIVER")),
		MongoURI:              v.GetString("MONGODB_URI"),
		MongoDatabase:         v.GetString("MONGODB_DATABASE"),
		RedisAddress:          v.GetString("REDIS_ADDRESS"),
		RedisPassword:         v.GetString("REDIS_PASSWORD"),
		RedisDB:               v.GetInt("REDIS_DB"),
		RateLimitQueue:        v.GetString("REDIS_QUEUE_FOR_ISSUE_LIMIT"),
		IssueRateLimit:        v.GetInt("ISSUE_RATE_LIMIT"),
		JWTSecret:             v.GetString("JWT_SECRET"),
		TokenTTL:              v.GetDuration("TOKEN_TTL"),
		UploadDir:             v.GetString("UPLOAD_DIR"),
		MaxUploadBytes:        v.GetInt64("MAX_UPLOAD_BYTES"),
		CORSOrigins:           splitList(v.GetString("CORS_ORIGINS")),
		AllowOpenRegistration: v.GetBool("ALLOW_OPEN_REGISTRATION"),
		LogLevel:              v.GetString("LOG_LEVEL"),
		LogFormat:             v.GetString("LOG_FORMAT"),
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET environment variable is not set")
	}
	if c.StoreDriver != StoreMongo && c.StoreDriver != StoreMemory {
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if c.StoreDriver == StoreMongo && c.MongoURI == "" {
		return fmt.Errorf("please define the MONGODB_URI environment variable")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("TOKEN_TTL must be positive")
	}
	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
