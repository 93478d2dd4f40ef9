package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/xavierca1/dealer-leads/internal/entity"
	"gopkg.in/yaml.v3"
)

type StoreKind string

const (
	StoreMemory   StoreKind = "memory"
	StoreSQLite   StoreKind = "sqlite"
	StorePostgres StoreKind = "postgres"
	StoreMongo    StoreKind = "mongo"
)

func (k StoreKind) Valid() bool {
	switch k {
	case StoreMemory, StoreSQLite, StorePostgres, StoreMongo:
		return true
	default:
		return false
	}
}

type Config struct {
	HTTPAddr string    `envconfig:"HTTP_ADDR"   default:":8080"`
	Store    StoreKind `envconfig:"LEADS_STORE" default:"sqlite"`

	DatabaseURL   string `envconfig:"DATABASE_URL"`
	SQLitePath    string `envconfig:"SQLITE_PATH"      default:"data/leads.sqlite"`
	MongoURI      string `envconfig:"MONGODB_URI"`
	MongoDatabase string `envconfig:"MONGODB_DATABASE" default:"dealer_leads"`
	RedisURL      string `envconfig:"REDIS_URL"`
	RedisChannel  string `envconfig:"REDIS_CHANNEL"    default:"dealer-leads:changed"`
	RabbitMQURL   string `envconfig:"RABBITMQ_URL"`
	RosterFile    string `envconfig:"ROSTER_FILE"`

	AllowedOrigins   []string `envconfig:"CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
	IntakeRateLimit  int      `envconfig:"INTAKE_RATE_LIMIT"    default:"10"`
	MaxWriteAttempts int      `envconfig:"MAX_WRITE_ATTEMPTS"   default:"3"`
	Debug            bool     `envconfig:"DEBUG"`

	// embedded so the MAIL_* keys are read without a prefix
	MailConfig
}

type MailConfig struct {
	Host string `envconfig:"MAIL_HOST"`
	Port int    `envconfig:"MAIL_PORT" default:"587"`
	User string `envconfig:"MAIL_USER"`
	Pass string `envconfig:"MAIL_PASS"`
	From string `envconfig:"MAIL_FROM" default:"no-reply@dealer-leads.local"`
}

func (m MailConfig) Enabled() bool {
	return m.Host != ""
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("read environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if !c.Store.Valid() {
		errs = append(errs, fmt.Errorf("LEADS_STORE %q is not one of memory, sqlite, postgres, mongo", c.Store))
	}
	if c.Store == StorePostgres && c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required for the postgres store"))
	}
	if c.Store == StoreMongo && c.MongoURI == "" {
		errs = append(errs, errors.New("MONGODB_URI is required for the mongo store"))
	}
	if c.IntakeRateLimit <= 0 {
		errs = append(errs, errors.New("INTAKE_RATE_LIMIT must be positive"))
	}
	if c.MaxWriteAttempts <= 0 {
		errs = append(errs, errors.New("MAX_WRITE_ATTEMPTS must be positive"))
	}
	return errors.Join(errs...)
}

// Directory is the showroom setup: who sells and what can be sold.
type Directory struct {
	Advisors entity.Roster `yaml:"advisors"`
	Models   []string      `yaml:"models"`
}

// LoadDirectory reads the roster file. An empty path, or a file that leaves
// a section out, falls back to the built-in team and model catalog.
func LoadDirectory(path string) (Directory, error) {
	dir := Directory{}
	if path != "" {
		buf, err := os.ReadFile(path)
		if err != nil {
			return Directory{}, fmt.Errorf("read roster file: %w", err)
		}
		if err := yaml.Unmarshal(buf, &dir); err != nil {
			return Directory{}, fmt.Errorf("parse roster file %s: %w", path, err)
		}
	}

	if len(dir.Advisors) == 0 {
		dir.Advisors = append(entity.Roster(nil), entity.DefaultRoster...)
	}
	if len(dir.Models) == 0 {
		dir.Models = append([]string(nil), entity.DefaultModels...)
	}
	if err := dir.Validate(); err != nil {
		return Directory{}, err
	}
	return dir, nil
}

func (d Directory) Validate() error {
	seen := make(map[string]bool, len(d.Advisors))
	for i, adv := range d.Advisors {
		id := strings.TrimSpace(adv.ID)
		switch {
		case id == "":
			return fmt.Errorf("advisor #%d has no id", i+1)
		case id == entity.SupervisorID:
			return fmt.Errorf("advisor id %q is reserved", id)
		case seen[id]:
			return fmt.Errorf("duplicate advisor id %q", id)
		case strings.TrimSpace(adv.Name) == "":
			return fmt.Errorf("advisor %q has no name", id)
		}
		seen[id] = true
	}
	models := make(map[string]bool, len(d.Models))
	for _, m := range d.Models {
		if strings.TrimSpace(m) == "" {
			return errors.New("model catalog has an empty entry")
		}
		if models[m] {
			return fmt.Errorf("duplicate model %q", m)
		}
		models[m] = true
	}
	return nil
}
