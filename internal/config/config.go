package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/example/salon-agenda/internal/schedule"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	ListenAddr   string `mapstructure:"LISTEN_ADDR"`
	BaseURL      string `mapstructure:"BASE_URL"`
	Env          string `mapstructure:"ENV"`
	LogLevel     string `mapstructure:"LOG_LEVEL"`
	Title        string `mapstructure:"TITLE"`
	DataURL      string `mapstructure:"DATA_URL"`
	DatabaseURL  string `mapstructure:"DATABASE_URL"`
	DocumentName string `mapstructure:"DOCUMENT_NAME"`
	RedisKey     string `mapstructure:"REDIS_KEY"`

	CookieHashKeyRaw  string `mapstructure:"COOKIE_HASH_KEY"`
	CookieBlockKeyRaw string `mapstructure:"COOKIE_BLOCK_KEY"`

	StartHour       int `mapstructure:"WORKING_HOURS_START"`
	EndHour         int `mapstructure:"WORKING_HOURS_END"`
	IntervalMinutes int `mapstructure:"WORKING_HOURS_INTERVAL"`

	Stylists []string `mapstructure:"STYLISTS"`
	Services []string `mapstructure:"SERVICES"`

	// derived
	WorkingHours   schedule.WorkingHours `mapstructure:"-"`
	CookieHashKey  []byte                `mapstructure:"-"`
	CookieBlockKey []byte                `mapstructure:"-"`
}

var (
	DefaultStylists = []string{"Luis", "Maria", "Pedro"}
	DefaultServices = []string{"Corte de Cabello", "Barba y Afeitado", "Manicura", "Tinte"}
)

// FromEnv reads .env (if present), then config.yaml from . or ./config, then
// the process environment. Later sources win.
func FromEnv() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}
	return load(v)
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("LISTEN_ADDR", ":8080")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("TITLE", "LuisTickets")
	v.SetDefault("DATA_URL", "data.json")
	v.SetDefault("DATABASE_URL", "")
	v.SetDefault("DOCUMENT_NAME", "default")
	v.SetDefault("REDIS_KEY", "salonagenda:data")
	v.SetDefault("COOKIE_HASH_KEY", "")
	v.SetDefault("COOKIE_BLOCK_KEY", "")
	v.SetDefault("WORKING_HOURS_START", 9)
	v.SetDefault("WORKING_HOURS_END", 18)
	v.SetDefault("WORKING_HOURS_INTERVAL", 30)
	v.SetDefault("STYLISTS", DefaultStylists)
	v.SetDefault("SERVICES", DefaultServices)
}

func load(v *viper.Viper) (Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.Stylists = cleanList(cfg.Stylists)
	cfg.Services = cleanList(cfg.Services)
	cfg.WorkingHours = schedule.WorkingHours{
		Start:    cfg.StartHour,
		End:      cfg.EndHour,
		Interval: cfg.IntervalMinutes,
	}

	var err error
	if cfg.CookieHashKey, err = decodeKey(cfg.CookieHashKeyRaw); err != nil {
		return Config{}, fmt.Errorf("COOKIE_HASH_KEY: %w", err)
	}
	if cfg.CookieBlockKey, err = decodeKey(cfg.CookieBlockKeyRaw); err != nil {
		return Config{}, fmt.Errorf("COOKIE_BLOCK_KEY: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := c.WorkingHours.Validate(); err != nil {
		return err
	}
	if len(c.Stylists) == 0 {
		return fmt.Errorf("STYLISTS must list at least one stylist")
	}
	if len(c.Services) == 0 {
		return fmt.Errorf("SERVICES must list at least one service")
	}
	if strings.TrimSpace(c.DataURL) == "" {
		return fmt.Errorf("DATA_URL is required")
	}
	if (len(c.CookieHashKey) == 0) != (len(c.CookieBlockKey) == 0) {
		return fmt.Errorf("COOKIE_HASH_KEY and COOKIE_BLOCK_KEY must be set together")
	}
	return nil
}

func cleanList(in []string) []string {
	var out []string
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

// decodeKey accepts base64 or a path to a file holding base64 (k8s secret
// mounts). Empty stays empty.
func decodeKey(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if b, err := os.ReadFile(s); err == nil {
		s = strings.TrimSpace(string(b))
	}
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
