package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application level configuration aggregated from env/config files.
type Config struct {
	Server struct {
		Addr           string
		CookieSecure   bool
		TrustedProxies []string
	}
	Log struct {
		Level string
	}
	Database struct {
		Path string
	}
	Session struct {
		TTL   time.Duration
		Store string
	}
	Redis struct {
		Addr     string
		Password string
		DB       int
	}
	Auth struct {
		ResetSecret   string
		ResetTokenTTL time.Duration
		DiscloseReset bool
		RateLimit     float64
		RateBurst     int
	}
	Mail struct {
		SendGridAPIKey string
		FromAddress    string
		FromName       string
		BaseURL        string
		Workers        int
		ContactInbox   string
	}
	Storage struct {
		Bucket         string
		KeyPrefix      string
		Region         string
		Endpoint       string
		AccessKey      string
		SecretKey      string
		LocalDir       string
		MaxAvatarBytes int64
	}
	AWS struct {
		Profile string
	}
}

// Load reads configuration from environment variables and optional config files.
// Variables already present in the environment take precedence over .env.
func Load() (Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("MENTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.addr", "0.0.0.0:8080")
	v.SetDefault("server.cookiesecure", false)
	v.SetDefault("server.trustedproxies", []string{})
	v.SetDefault("log.level", "info")
	v.SetDefault("database.path", "data/mentor.db")
	v.SetDefault("session.ttl", 14*24*time.Hour)
	v.SetDefault("session.store", "sqlite")
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("auth.resetsecret", "")
	v.SetDefault("auth.resettokenttl", 24*time.Hour)
	v.SetDefault("auth.disclosereset", true)
	v.SetDefault("auth.ratelimit", 0.2)
	v.SetDefault("auth.rateburst", 5)
	v.SetDefault("mail.sendgridapikey", "")
	v.SetDefault("mail.fromaddress", "no-reply@localhost")
	v.SetDefault("mail.fromname", "Mentor Connect")
	v.SetDefault("mail.baseurl", "http://localhost:8080")
	v.SetDefault("mail.workers", 2)
	v.SetDefault("mail.contactinbox", "")
	v.SetDefault("storage.bucket", "")
	v.SetDefault("storage.keyprefix", "mentor-connect")
	v.SetDefault("storage.region", "us-east-1")
	v.SetDefault("storage.endpoint", "")
	v.SetDefault("storage.accesskey", "")
	v.SetDefault("storage.secretkey", "")
	v.SetDefault("storage.localdir", "data/media")
	v.SetDefault("storage.maxavatarbytes", 5<<20)
	v.SetDefault("aws.profile", "")

	v.SetConfigName("config")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Auth.ResetSecret) == "" {
		return fmt.Errorf("auth.resetsecret is required")
	}
	switch c.Session.Store {
	case "sqlite", "redis":
	default:
		return fmt.Errorf("session.store must be sqlite or redis, got %q", c.Session.Store)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Auth.RateLimit < 0 || c.Auth.RateBurst < 0 {
		return fmt.Errorf("auth rate limit must not be negative")
	}
	return nil
}
