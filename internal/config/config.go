package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const envPrefix = "LK"

// Config holds all configuration for the crawler
type Config struct {
	DBHost     string `mapstructure:"db_host"`
	DBPort     int    `mapstructure:"db_port"`
	DBName     string `mapstructure:"db_name"`
	DBUser     string `mapstructure:"db_user"`
	DBPassword string `mapstructure:"db_password"`
	DBSSLMode  string `mapstructure:"db_sslmode"`

	LinkedinUsername   string `mapstructure:"linkedin_username"`
	LinkedinPassword   string `mapstructure:"linkedin_password"`
	LinkedinJSessionID string `mapstructure:"linkedin_jsessionip"`
	LinkedinLiAt       string `mapstructure:"linkedin_li_at"`

	StocksFile         string  `mapstructure:"stocks_file"`
	CompanySearchLimit int     `mapstructure:"company_search_limit"`
	RequestsPerSecond  float64 `mapstructure:"requests_per_second"`

	Environment string `mapstructure:"environment"`
	LogLevel    string `mapstructure:"log_level"`
}

var defaults = map[string]any{
	"db_host":              "",
	"db_port":              0,
	"db_name":              "",
	"db_user":              "",
	"db_password":          "",
	"db_sslmode":           "disable",
	"linkedin_username":    "",
	"linkedin_password":    "",
	"linkedin_jsessionip":  "",
	"linkedin_li_at":       "",
	"stocks_file":          "stocks.json",
	"company_search_limit": 10,
	"requests_per_second":  1.0,
	"environment":          "production",
	"log_level":            "info",
}

// LoadConfig reads the settings file at path and overlays LK_* environment
// variables (a .env file is loaded into the environment first). A missing
// settings file is not an error.
func LoadConfig(path string) (*Config, error) {
	// Don't fail if .env is not present, env variables are often set directly.
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for key, value := range defaults {
		v.SetDefault(key, value)
		if err := v.BindEnv(key); err != nil {
			return nil, err
		}
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.Is(err, fs.ErrNotExist) && !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// UseCookies reports whether session cookies override username/password login.
func (c *Config) UseCookies() bool {
	return strings.TrimSpace(c.LinkedinJSessionID) != ""
}

func (c *Config) Validate() error {
	var errs []error

	require := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("missing required setting: %s", name))
		}
	}

	require("db_host", c.DBHost)
	require("db_name", c.DBName)
	require("db_user", c.DBUser)
	require("db_password", c.DBPassword)
	if c.DBPort <= 0 || c.DBPort > 65535 {
		errs = append(errs, fmt.Errorf("invalid db_port: %d", c.DBPort))
	}

	if c.UseCookies() {
		require("linkedin_li_at", c.LinkedinLiAt)
	} else {
		require("linkedin_username", c.LinkedinUsername)
		require("linkedin_password", c.LinkedinPassword)
	}

	if c.CompanySearchLimit <= 0 {
		errs = append(errs, fmt.Errorf("invalid company_search_limit: %d", c.CompanySearchLimit))
	}
	if c.RequestsPerSecond <= 0 {
		errs = append(errs, fmt.Errorf("invalid requests_per_second: %v", c.RequestsPerSecond))
	}

	return errors.Join(errs...)
}

// DatabaseURL is the postgres:// URL used by both gorm and the migrator.
func (c *Config) DatabaseURL() string {
	q := url.Values{}
	q.Set("sslmode", c.DBSSLMode)

	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     net.JoinHostPort(c.DBHost, strconv.Itoa(c.DBPort)),
		Path:     "/" + c.DBName,
		RawQuery: q.Encode(),
	}
	return u.String()
}
