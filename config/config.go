package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/alejandrodnm/dexledger/internal/domain"
	"github.com/ethereum/go-ethereum/common"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de dexledger.
type Config struct {
	Source   SourceConfig   `yaml:"source"`
	Analysis AnalysisConfig `yaml:"analysis"`
	Export   ExportConfig   `yaml:"export"`
	Storage  StorageConfig  `yaml:"storage"`
	Log      LogConfig      `yaml:"log"`
}

// SourceConfig describe qué trades pedir a Bitquery y dónde cachearlos.
type SourceConfig struct {
	Network  string `yaml:"network"` // eth | bsc | ...
	Token    string `yaml:"token"`   // contrato del base asset
	Pool     string `yaml:"pool"`    // contrato del pair; también clasifica Buy/Sell
	Limit    int    `yaml:"limit"`
	Offset   int    `yaml:"offset"`
	Endpoint string `yaml:"endpoint"`
	APIKey   string `yaml:"api_key"` // mejor vía BITQUERY_API_KEY en .env
	CacheDir string `yaml:"cache_dir"`
	Refresh  bool   `yaml:"refresh"` // ignorar el snapshot en disco
}

// AnalysisConfig controla el core: threshold de barras y series a conservar.
type AnalysisConfig struct {
	BarThreshold  float64 `yaml:"bar_threshold"` // base units, no valor quote
	DollarBars    *bool   `yaml:"dollar_bars"`
	VolumeBars    *bool   `yaml:"volume_bars"`
	PnlBars       *bool   `yaml:"pnl_bars"`
	Transactions  *bool   `yaml:"transactions"`
	SkipMalformed bool    `yaml:"skip_malformed"`
}

// ExportConfig controla los writers de ficheros.
type ExportConfig struct {
	Dir     string   `yaml:"dir"`
	Formats []string `yaml:"formats"` // csv | json
}

// StorageConfig controla dónde se persisten las ejecuciones.
type StorageConfig struct {
	DSN string `yaml:"dsn"` // ruta al archivo SQLite, ":memory:", o vacío para no persistir
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si existe.
// Los valores del .env sobreescriben los del YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}
	return cfg, nil
}

// Parse aplica YAML, overrides de entorno, defaults y validación.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Criteria devuelve las series habilitadas.
func (c *Config) Criteria() domain.Criteria {
	return domain.Criteria{
		DollarBars:   boolOr(c.Analysis.DollarBars, true),
		VolumeBars:   boolOr(c.Analysis.VolumeBars, true),
		PnlBars:      boolOr(c.Analysis.PnlBars, true),
		Transactions: boolOr(c.Analysis.Transactions, true),
	}
}

// Validate comprueba los valores que el core necesita.
func (c *Config) Validate() error {
	if !common.IsHexAddress(c.Source.Pool) {
		return fmt.Errorf("source.pool %q is not a hex address", c.Source.Pool)
	}
	if !common.IsHexAddress(c.Source.Token) {
		return fmt.Errorf("source.token %q is not a hex address", c.Source.Token)
	}
	if c.Analysis.BarThreshold <= 0 {
		return fmt.Errorf("analysis.bar_threshold must be positive, got %v", c.Analysis.BarThreshold)
	}
	if c.Source.Limit <= 0 {
		return fmt.Errorf("source.limit must be positive, got %d", c.Source.Limit)
	}
	for _, f := range c.Export.Formats {
		switch f {
		case "csv", "json":
		default:
			return fmt.Errorf("export.formats: unknown format %q", f)
		}
	}
	return nil
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("BITQUERY_API_KEY"); v != "" {
		cfg.Source.APIKey = v
	}
	if v := os.Getenv("DEXLEDGER_POOL"); v != "" {
		cfg.Source.Pool = v
	}
	if v := os.Getenv("DEXLEDGER_TOKEN"); v != "" {
		cfg.Source.Token = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Source.Network == "" {
		cfg.Source.Network = "eth"
	}
	if cfg.Source.Limit == 0 {
		cfg.Source.Limit = 10000
	}
	if cfg.Source.Endpoint == "" {
		cfg.Source.Endpoint = "https://streaming.bitquery.io/graphql"
	}
	if cfg.Source.CacheDir == "" {
		cfg.Source.CacheDir = "data"
	}
	if cfg.Analysis.BarThreshold == 0 {
		cfg.Analysis.BarThreshold = 10
	}
	if cfg.Export.Dir == "" {
		cfg.Export.Dir = "out"
	}
	for i, f := range cfg.Export.Formats {
		cfg.Export.Formats[i] = strings.ToLower(strings.TrimSpace(f))
	}
	// un writer por formato: dos CSVWriter escribirían los mismos ficheros
	slices.Sort(cfg.Export.Formats)
	cfg.Export.Formats = slices.Compact(cfg.Export.Formats)
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}
