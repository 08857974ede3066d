package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig            `mapstructure:"server"`
	Outputs   OutputsConfig           `mapstructure:"outputs"`
	Cache     CacheConfig             `mapstructure:"cache"`
	RateLimit RateLimitConfig         `mapstructure:"ratelimit"`
	Markets   map[string]MarketConfig `mapstructure:"markets"`
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// OutputsConfig holds paths for datasets and reports
type OutputsConfig struct {
	Dir        string `mapstructure:"dir"`
	ReportsDir string `mapstructure:"reports_dir"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	PerIP int `mapstructure:"per_ip"`
	Burst int `mapstructure:"burst"`
}

// MarketConfig describes one supermarket feed: which processing strategy to
// use, where its published pricelist lives, and which raw field names carry
// the seven normalizer inputs.
type MarketConfig struct {
	Strategy      string         `mapstructure:"strategy"`
	FeedURL       string         `mapstructure:"feed_url"`
	MarketMapPath string         `mapstructure:"market_map_path"`
	Fields        FieldMapConfig `mapstructure:"fields"`
}

// FieldMapConfig maps raw feed keys to normalizer inputs
type FieldMapConfig struct {
	ProductName  string `mapstructure:"product_name"`
	CurrentPrice string `mapstructure:"current_price"`
	RegularPrice string `mapstructure:"regular_price"`
	Description  string `mapstructure:"description"`
	PricePerUnit string `mapstructure:"price_per_unit"`
	Availability string `mapstructure:"availability"`
	StoreName    string `mapstructure:"store_name"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/pricelens/")

	// Environment variable settings
	v.SetEnvPrefix("PRICELENS")
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// standardFields are the raw field names shared by the Zito, Tinex and
// Stokomak feeds.
var standardFields = map[string]string{
	"product_name":   "назив_на_стока-производ",
	"current_price":  "продажна_цена",
	"regular_price":  "редовна_цена",
	"description":    "опис_на_стока",
	"price_per_unit": "единечна_цена",
	"availability":   "достапност_во_продажен_објект",
	"store_name":     "market_name",
}

// veroFields differ from the standard set: several column names embed
// newlines and the store is identified by a branch code.
var veroFields = map[string]string{
	"product_name":   "назив_на_стока",
	"current_price":  "продажна_цена\n(со_ддв)",
	"regular_price":  "редовна_цена\n(со_ддв)",
	"description":    "опис_на_стока",
	"price_per_unit": "единечна_цена",
	"availability":   "достапност_во\nпродажен_објект",
	"store_name":     "market_code",
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"*"})

	// Output defaults
	v.SetDefault("outputs.dir", "outputs")
	v.SetDefault("outputs.reports_dir", "outputs/reports")
	v.SetDefault("outputs.sqlite_path", "outputs/pricelens.sqlite")

	// Cache defaults
	v.SetDefault("cache.ttl", "24h")

	// Rate limit defaults
	v.SetDefault("ratelimit.per_ip", 100)
	v.SetDefault("ratelimit.burst", 20)

	// Market defaults: the four supported feeds
	v.SetDefault("markets.vero.strategy", "vero")
	v.SetDefault("markets.vero.feed_url", "https://pricelist.vero.com.mk/")
	v.SetDefault("markets.vero.market_map_path", "outputs/vero_market_map.json")
	v.SetDefault("markets.vero.fields", veroFields)

	v.SetDefault("markets.zito.strategy", "standard")
	v.SetDefault("markets.zito.feed_url", "https://zito.proverkanaceni.mk/index.php")
	v.SetDefault("markets.zito.fields", standardFields)

	v.SetDefault("markets.tinex.strategy", "standard")
	v.SetDefault("markets.tinex.feed_url", "https://ceni.tinex.mk:442/index.php")
	v.SetDefault("markets.tinex.fields", standardFields)

	v.SetDefault("markets.stokomak.strategy", "standard")
	v.SetDefault("markets.stokomak.feed_url", "https://stokomak.proverkanaceni.mk/")
	v.SetDefault("markets.stokomak.fields", standardFields)
}

// validate validates the configuration
func validate(config *Config) error {
	if len(config.Markets) == 0 {
		return fmt.Errorf("at least one market must be configured")
	}

	for name, market := range config.Markets {
		switch market.Strategy {
		case "standard", "vero", "keyword", "":
		default:
			return fmt.Errorf("market %q: unknown strategy %q", name, market.Strategy)
		}
		if market.Fields.ProductName == "" {
			return fmt.Errorf("market %q: fields.product_name is required", name)
		}
	}

	return nil
}
