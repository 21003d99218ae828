package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Config struct {
	Port      string
	LogLevel  string
	LogFormat string

	DB struct {
		Driver   string
		Path     string
		MongoURI string
		MongoDB  string
	}

	Auth struct {
		Secret   string
		TokenTTL time.Duration
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
		CacheTTL time.Duration
	}

	AMQP struct {
		URL      string
		Exchange string
	}

	CORSOrigins []string
}

// Load reads .env (if present), configs/config.yml (if present) and the environment.
// Environment variables win: db.path is overridden by DB_PATH and so on.
func Load(paths ...string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	if len(paths) == 0 {
		paths = []string{"configs", "."}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{
		Port:        v.GetString("port"),
		LogLevel:    v.GetString("log.level"),
		LogFormat:   strings.ToLower(v.GetString("log.format")),
		CORSOrigins: v.GetStringSlice("cors.origins"),
	}
	cfg.DB.Driver = strings.ToLower(v.GetString("db.driver"))
	cfg.DB.Path = v.GetString("db.path")
	cfg.DB.MongoURI = v.GetString("db.mongo_uri")
	cfg.DB.MongoDB = v.GetString("db.mongo_database")
	cfg.Auth.Secret = v.GetString("auth.secret")
	cfg.Auth.TokenTTL = v.GetDuration("auth.token_ttl")
	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")
	cfg.Redis.CacheTTL = v.GetDuration("redis.cache_ttl")
	cfg.AMQP.URL = v.GetString("amqp.url")
	cfg.AMQP.Exchange = v.GetString("amqp.exchange")

	return cfg, cfg.Validate()
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.path", "app.db")
	v.SetDefault("db.mongo_database", "expense_tracker")
	v.SetDefault("auth.token_ttl", 24*time.Hour)
	v.SetDefault("redis.cache_ttl", 10*time.Minute)
	v.SetDefault("amqp.exchange", "expenses")
	v.SetDefault("cors.origins", []string{"*"})
}

func (c *Config) Validate() error {
	if strings.TrimSpace(c.Auth.Secret) == "" {
		return errors.New("auth.secret must be set (AUTH_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive, got %s", c.Auth.TokenTTL)
	}
	switch c.DB.Driver {
	case DriverSQLite:
		if c.DB.Path == "" {
			return errors.New("db.path must be set for the sqlite driver")
		}
	case DriverMongo:
		if c.DB.MongoURI == "" {
			return errors.New("db.mongo_uri must be set for the mongo driver")
		}
	default:
		return fmt.Errorf("unknown db.driver %q", c.DB.Driver)
	}
	port, err := strconv.Atoi(c.Port)
	if err != nil || port <= 0 || port > 65535 {
		return fmt.Errorf("invalid port %q", c.Port)
	}
	return nil
}
