package config

import (
	"os"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/watt-broker/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config is the full broker configuration.
type Config struct {
	Broker   BrokerConfig   `yaml:"broker"`
	Market   MarketConfig   `yaml:"market"`
	Forecast ForecastConfig `yaml:"forecast"`
	Storage  StorageConfig  `yaml:"storage"`
	Report   ReportConfig   `yaml:"report"`
	Log      LogConfig      `yaml:"log"`
}

// BrokerConfig holds the pricing and activation parameters.
//
// Prices follow market sign conventions: bid prices are negative (we pay),
// ask prices positive (we are paid). For bids escalation starts at the
// ceiling (least negative) and descends toward the floor (most negative,
// sure to trade); for asks it starts at the ceiling (most positive) and
// descends toward the floor (least positive, give it away).
type BrokerConfig struct {
	BuyPriceCeiling  float64 `yaml:"buy_price_ceiling"`
	BuyPriceFloor    float64 `yaml:"buy_price_floor"`
	SellPriceCeiling float64 `yaml:"sell_price_ceiling"`
	SellPriceFloor   float64 `yaml:"sell_price_floor"`
	// MinOrderMWh is the smallest volume worth ordering; requirements at or
	// below it are skipped. May be raised by the competition parameters.
	MinOrderMWh float64 `yaml:"min_order_mwh" validate:"gt=0"`
	// DeactivationLead is how many slots before delivery a slot stops
	// trading; it reduces the remaining tries for every open slot.
	DeactivationLead int `yaml:"deactivation_lead" validate:"gte=0"`
	// EscalationFactor scales the per-round escalation step. Values above 1
	// overshoot the floor before tries run out, converging faster to a
	// guaranteed-trade price.
	EscalationFactor float64 `yaml:"escalation_factor" validate:"gt=0"`
	// BootstrapWindow is the length W of the folded bootstrap profile.
	BootstrapWindow int `yaml:"bootstrap_window" validate:"gt=0"`
	// ForwardWindow is the number of slots in a forward snapshot.
	ForwardWindow int `yaml:"forward_window" validate:"gt=0"`
	// Seed, when present, seeds the pricer's random source for reproducible
	// runs.
	Seed SeedOption `yaml:"seed"`
}

// SeedOption adapts optional.Option[int64] to YAML: a bare integer
// becomes Some, an absent or null key stays None.
type SeedOption struct {
	optional.Option[int64]
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (s *SeedOption) UnmarshalYAML(value *yaml.Node) error {
	if value.Tag == "!!null" {
		s.Option = optional.None[int64]()
		return nil
	}

	var seed int64
	if err := value.Decode(&seed); err != nil {
		return err
	}

	s.Option = optional.Some(seed)

	return nil
}

// MarketConfig points at the market session endpoint.
type MarketConfig struct {
	URL        string `yaml:"url" validate:"required"`
	BrokerName string `yaml:"broker_name" validate:"required"`
}

// ForecastConfig points at the external predictor.
type ForecastConfig struct {
	URL            string  `yaml:"url" validate:"required,url"`
	TimeoutSeconds int     `yaml:"timeout_seconds" validate:"gt=0"`
	RatePerSecond  float64 `yaml:"rate_per_second" validate:"gt=0"`
}

// StorageConfig controls snapshot persistence.
type StorageConfig struct {
	DSN string `yaml:"dsn" validate:"required"`
}

// ReportConfig controls where session reports are written.
type ReportConfig struct {
	OutputDir string `yaml:"output_dir"`
}

// LogConfig controls logging verbosity.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the YAML config at path, overlays .env / environment
// variables, applies defaults, and validates. Invalid price-bound
// ordering fails here, never per tick.
func Load(path string) (*Config, error) {
	// Load .env if present (missing file is fine)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to read config %q", path)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "failed to parse config YAML", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks field constraints and price-bound ordering.
func (c *Config) Validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid configuration", err)
	}

	b := c.Broker
	if b.BuyPriceFloor >= b.BuyPriceCeiling {
		return errors.Newf(errors.ErrCodeInvalidPriceBounds,
			"buy price floor %.2f must be below buy price ceiling %.2f", b.BuyPriceFloor, b.BuyPriceCeiling)
	}

	if b.BuyPriceCeiling >= 0 {
		return errors.Newf(errors.ErrCodeInvalidPriceBounds,
			"buy price ceiling %.2f must be negative (broker pays)", b.BuyPriceCeiling)
	}

	if b.SellPriceFloor >= b.SellPriceCeiling {
		return errors.Newf(errors.ErrCodeInvalidPriceBounds,
			"sell price floor %.2f must be below sell price ceiling %.2f", b.SellPriceFloor, b.SellPriceCeiling)
	}

	if b.SellPriceFloor <= 0 {
		return errors.Newf(errors.ErrCodeInvalidPriceBounds,
			"sell price floor %.2f must be positive (broker is paid)", b.SellPriceFloor)
	}

	return nil
}

// applyEnvOverrides overrides selected values from environment variables.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}

	if v := os.Getenv("MARKET_URL"); v != "" {
		cfg.Market.URL = v
	}

	if v := os.Getenv("FORECAST_URL"); v != "" {
		cfg.Forecast.URL = v
	}

	if v := os.Getenv("BROKER_SEED"); v != "" {
		if seed, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Broker.Seed.Option = optional.Some(seed)
		}
	}
}

// setDefaults fills unset values with the sample-broker defaults.
func setDefaults(cfg *Config) {
	b := &cfg.Broker
	if b.BuyPriceCeiling == 0 {
		b.BuyPriceCeiling = -1.0
	}

	if b.BuyPriceFloor == 0 {
		b.BuyPriceFloor = -70.0
	}

	if b.SellPriceCeiling == 0 {
		b.SellPriceCeiling = 70.0
	}

	if b.SellPriceFloor == 0 {
		b.SellPriceFloor = 0.5
	}

	if b.MinOrderMWh == 0 {
		b.MinOrderMWh = 0.001
	}

	if b.EscalationFactor == 0 {
		b.EscalationFactor = 2.0
	}

	if b.BootstrapWindow == 0 {
		b.BootstrapWindow = 168
	}

	if b.ForwardWindow == 0 {
		b.ForwardWindow = 24
	}

	if cfg.Forecast.TimeoutSeconds == 0 {
		cfg.Forecast.TimeoutSeconds = 5
	}

	if cfg.Forecast.RatePerSecond == 0 {
		cfg.Forecast.RatePerSecond = 2
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
