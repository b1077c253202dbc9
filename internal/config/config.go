package config

import (
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Port  string `envconfig:"PORT" default:"8080"`
	Debug bool   `envconfig:"DEBUG" default:"false"`

	DatabaseURL string `envconfig:"DATABASE_URL" required:"true"`
	DBMaxConns  int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	DBMinConns  int32  `envconfig:"DB_MIN_CONNS" default:"2"`

	// AttributeTaxonomy is the single attribute dimension matched against
	// search and filter terms, e.g. a fabric color attribute.
	AttributeTaxonomy string `envconfig:"ATTRIBUTE_TAXONOMY" default:"pa_fabric-color"`

	SuggestLimit   int    `envconfig:"SUGGEST_LIMIT" default:"20"`
	CurrencyPrefix string `envconfig:"CURRENCY_PREFIX" default:"$"`

	// PlaceholderImage is served when neither a matched variant nor its
	// parent product carries an image.
	PlaceholderImage string `envconfig:"PLACEHOLDER_IMAGE" default:"/assets/placeholder.png"`

	// Rate limiting for the public live-search endpoint. Zero disables it.
	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"50"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"100"`
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("VARSEARCH", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}

func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	return cfg
}
