package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultPath = "config.yml"

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Logging    LoggingConfig    `yaml:"logging"`
	Repository RepositoryConfig `yaml:"repository"`
	Auth       AuthConfig       `yaml:"auth"`
	Worker     WorkerConfig     `yaml:"worker"`
	Share      ShareConfig      `yaml:"share"`
	Client     ClientConfig     `yaml:"client"`
}

type ServerConfig struct {
	Port            string        `yaml:"port"`
	Host            string        `yaml:"host"`
	RateLimit       int           `yaml:"rate_limit"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	URL            string        `yaml:"url"`
	MaxConnections int           `yaml:"max_connections"`
	MinConnections int           `yaml:"min_connections"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	SQLitePath     string        `yaml:"sqlite_path"`
}

type LoggingConfig struct {
	Development bool   `yaml:"development"`
	File        string `yaml:"file"`
}

type RepositoryConfig struct {
	Type string `yaml:"type"` // "inmemory", "postgres" or "sqlite"
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

type WorkerConfig struct {
	Interval  time.Duration `yaml:"interval"`
	BatchSize int           `yaml:"batch_size"`
}

type ShareConfig struct {
	BaseURL string `yaml:"base_url"`
}

// ClientConfig is read by the terminal board.
type ClientConfig struct {
	APIURL  string        `yaml:"api_url"`
	Token   string        `yaml:"token"`
	Timeout time.Duration `yaml:"timeout"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			RateLimit:       100,
			AllowedOrigins:  []string{"*"},
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConnections: 10,
			MinConnections: 2,
			IdleTimeout:    5 * time.Minute,
			SQLitePath:     "planboard.db",
		},
		Repository: RepositoryConfig{Type: "inmemory"},
		Worker:     WorkerConfig{Interval: 5 * time.Minute, BatchSize: 100},
		Share:      ShareConfig{BaseURL: "http://localhost:8080/shared/"},
		Client:     ClientConfig{APIURL: "http://localhost:8080", Timeout: 30 * time.Second},
	}
}

// Load reads .env into the environment, decodes path over the defaults and then
// applies environment overrides. A missing file leaves the defaults in place.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := Default()
	file, err := os.Open(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf("open %s: %w", path, err)
	default:
		defer file.Close()
		if err := yaml.NewDecoder(file).Decode(cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Database.URL, "DATABASE_URL")
	setString(&c.Database.SQLitePath, "SQLITE_PATH")
	setString(&c.Auth.JWTSecret, "JWT_SECRET")
	setString(&c.Repository.Type, "REPOSITORY_TYPE")
	setString(&c.Server.Port, "SERVER_PORT")
	setString(&c.Share.BaseURL, "SHARE_BASE_URL")
	setString(&c.Client.APIURL, "API_URL")
	setString(&c.Client.Token, "API_TOKEN")
	if v := os.Getenv("LOG_DEVELOPMENT"); v != "" {
		dev, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("LOG_DEVELOPMENT: %w", err)
		}
		c.Logging.Development = dev
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Repository.Type {
	case "inmemory", "sqlite":
	case "postgres":
		if c.Database.URL == "" {
			return errors.New("repository type postgres needs database.url or DATABASE_URL")
		}
	default:
		return fmt.Errorf("unknown repository type %q", c.Repository.Type)
	}
	if c.Server.Port == "" {
		return errors.New("server.port is empty")
	}
	return nil
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%s", c.Server.Host, c.Server.Port)
}

func setString(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok {
		*dst = strings.TrimSpace(v)
	}
}
