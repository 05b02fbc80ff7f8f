package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config holds the settings of the map service.
type Config struct {
	// Listen address, e.g. ":8080"
	Addr string `yaml:"addr"`

	// Dataset locations: file paths or http(s) URLs
	ShopsSource    string `yaml:"shops"`
	PartnersSource string `yaml:"partners"`

	// Directory URL datasets are cached in; empty disables the cache
	CacheDir string `yaml:"cache_dir"`

	// Requests per second allowed per server, 0 disables limiting
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`

	// Origins allowed to call the API from a browser
	AllowedOrigins []string `yaml:"allowed_origins"`

	// Keep named shops that match no category instead of dropping them
	KeepUnclassified bool `yaml:"keep_unclassified"`
}

// Defaults applied before the file and the environment.
const (
	DefaultAddr           = ":8080"
	DefaultShopsSource    = "./data/cache_data.json"
	DefaultPartnersSource = "./data/jtb_partners.json"
	DefaultRateLimit      = 20
	DefaultRateBurst      = 40
)

var (
	ErrMissingAddr     = errors.New("config: listen address is required")
	ErrMissingShops    = errors.New("config: shops source is required")
	ErrMissingPartners = errors.New("config: partners source is required")
	ErrNegativeRate    = errors.New("config: rate limit must not be negative")
)

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Addr:           DefaultAddr,
		ShopsSource:    DefaultShopsSource,
		PartnersSource: DefaultPartnersSource,
		RateLimit:      DefaultRateLimit,
		RateBurst:      DefaultRateBurst,
	}
}

// Load builds the configuration from defaults, the optional YAML file at path,
// a .env file in the working directory and finally the environment.
//
// Environment variables:
//   - VRACMAP_ADDR or PORT: listen address (PORT is prefixed with ":")
//   - VRACMAP_SHOPS, VRACMAP_PARTNERS: dataset locations
//   - VRACMAP_CACHE_DIR: cache directory for URL datasets
//   - VRACMAP_RATE_LIMIT, VRACMAP_RATE_BURST: request rate limiting
//   - VRACMAP_ALLOWED_ORIGINS: comma-separated CORS allow-list
//   - VRACMAP_KEEP_UNCLASSIFIED: "true" keeps unclassified shops
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: loading .env: %v", err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() error {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		c.Addr = ":" + port
	}
	setString(&c.Addr, "VRACMAP_ADDR")
	setString(&c.ShopsSource, "VRACMAP_SHOPS")
	setString(&c.PartnersSource, "VRACMAP_PARTNERS")
	setString(&c.CacheDir, "VRACMAP_CACHE_DIR")

	if v := strings.TrimSpace(os.Getenv("VRACMAP_RATE_LIMIT")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("config: VRACMAP_RATE_LIMIT: %w", err)
		}
		c.RateLimit = f
	}
	if v := strings.TrimSpace(os.Getenv("VRACMAP_RATE_BURST")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("config: VRACMAP_RATE_BURST: %w", err)
		}
		c.RateBurst = n
	}
	if v := strings.TrimSpace(os.Getenv("VRACMAP_ALLOWED_ORIGINS")); v != "" {
		c.AllowedOrigins = nil
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				c.AllowedOrigins = append(c.AllowedOrigins, o)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("VRACMAP_KEEP_UNCLASSIFIED")); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("config: VRACMAP_KEEP_UNCLASSIFIED: %w", err)
		}
		c.KeepUnclassified = b
	}
	return nil
}

func setString(dst *string, key string) {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		*dst = v
	}
}

// Validate checks that the configuration can start the service.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return ErrMissingAddr
	case strings.TrimSpace(c.ShopsSource) == "":
		return ErrMissingShops
	case strings.TrimSpace(c.PartnersSource) == "":
		return ErrMissingPartners
	case c.RateLimit < 0:
		return ErrNegativeRate
	}
	return nil
}
