package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/evstation/core/capacity"
	"github.com/kilianp07/evstation/core/factory"
	"github.com/kilianp07/evstation/core/metrics"
	"github.com/kilianp07/evstation/core/model"
	"github.com/kilianp07/evstation/core/planning"
	"github.com/kilianp07/evstation/infra/monitoring"
	"github.com/kilianp07/evstation/infra/mqtt"
)

type Config struct {
	Server     ServerConfig         `json:"server"`
	Logging    LoggingConfig        `json:"logging"`
	Metrics    metrics.Config       `json:"metrics"`
	MQTT       mqtt.Config          `json:"mqtt"`
	Monitoring monitoring.Config    `json:"monitoring"`
	Planning   planning.Config      `json:"planning"`
	Forecast   factory.ModuleConfig `json:"forecast"`
	Stations   []model.Station      `json:"stations"`
	Capacity   []model.CapacityRow  `json:"capacity"`
}

// Load reads a YAML or JSON file, applies K_ prefixed environment overrides
// (K_SERVER__ADDRESS sets server.address), fills defaults and validates.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", "__", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "json",
		DecoderConfig: &mapstructure.DecoderConfig{
			TagName:          "json",
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.TextUnmarshallerHookFunc(),
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}); err != nil {
		return nil, err
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SetDefaults fills every section.
func (c *Config) SetDefaults() {
	c.Server.SetDefaults()
	c.Logging.SetDefaults()
	c.MQTT.SetDefaults()
	c.Planning.SetDefaults()
	if c.Forecast.Type == "" {
		c.Forecast.Type = "static"
	}
}

// Validate checks every section and the station catalog.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}
	if err := c.MQTT.Validate(); err != nil {
		return err
	}
	if err := c.Monitoring.Validate(); err != nil {
		return err
	}
	if err := c.Planning.Validate(); err != nil {
		return err
	}
	if _, err := model.NewCatalog(c.Stations); err != nil {
		return fmt.Errorf("stations: %w", err)
	}
	return ValidateCapacity(c.Capacity)
}

// Catalog indexes the configured stations.
func (c Config) Catalog() (model.Catalog, error) {
	return model.NewCatalog(c.Stations)
}

// ValidateCapacity rejects rows without a station name, with a missing or
// unknown vehicle type or with a negative capacity.
func ValidateCapacity(rows []model.CapacityRow) error {
	return capacity.ValidateRows(rows)
}
