package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	"offgascli/internal/rates"
	"offgascli/internal/summary"
	"offgascli/internal/workbook"
)

// Config represents the complete application configuration
type Config struct {
	Input   InputConfig     `yaml:"input" envconfig:"INPUT"`
	Run     RunConfig       `yaml:"run" envconfig:"RUN"`
	Phases  []summary.Phase `yaml:"phases" ignored:"true" validate:"dive"`
	Output  OutputConfig    `yaml:"output" envconfig:"OUTPUT"`
	Logging LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Metrics MetricsConfig   `yaml:"metrics" envconfig:"METRICS"`
	Server  ServerConfig    `yaml:"server" envconfig:"SERVER"`
}

// InputConfig locates the workbook and its sheets
type InputConfig struct {
	Workbook string          `yaml:"workbook" envconfig:"WORKBOOK"`
	Sheets   workbook.Layout `yaml:"sheets" ignored:"true"`
}

// RunConfig holds the run start and the process constants
type RunConfig struct {
	// Start is the run start timestamp, e.g. "2023-10-25 13:47:00".
	Start     string          `yaml:"start" envconfig:"START"`
	Constants rates.Constants `yaml:"constants" envconfig:"CONSTANTS"`
}

// OutputConfig names the artifacts written by a run
type OutputConfig struct {
	Directory    string `yaml:"directory" envconfig:"DIRECTORY" validate:"required"`
	AveragedFile string `yaml:"averaged_file" envconfig:"AVERAGED_FILE" validate:"required"`
	RunFile      string `yaml:"run_file" envconfig:"RUN_FILE" validate:"required"`
	SummaryFile  string `yaml:"summary_file" envconfig:"SUMMARY_FILE" validate:"required"`
	WorkbookFile string `yaml:"workbook_file" envconfig:"WORKBOOK_FILE"`
	WriteXLSX    bool   `yaml:"write_xlsx" envconfig:"WRITE_XLSX"`
	IncludeBOM   bool   `yaml:"include_bom" envconfig:"INCLUDE_BOM"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH" validate:"required"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// MetricsConfig contains telemetry configuration
type MetricsConfig struct {
	Enabled     bool   `yaml:"enabled" envconfig:"ENABLED"`
	ServiceName string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	// TextFile, when set, receives the Prometheus text exposition after a run.
	TextFile string `yaml:"text_file" envconfig:"TEXT_FILE"`
	Tracing  bool   `yaml:"tracing" envconfig:"TRACING"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int             `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration   `yaml:"read_timeout" envconfig:"READ_TIMEOUT" validate:"gt=0"`
	WriteTimeout    time.Duration   `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" validate:"gt=0"`
	IdleTimeout     time.Duration   `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	ShutdownTimeout time.Duration   `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RateLimit       RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" validate:"gte=0"`
	Burst   int     `yaml:"burst" envconfig:"BURST" validate:"gte=0"`
}

// Load builds the configuration from defaults, the YAML file, a .env file and
// the environment, in increasing order of precedence. An empty path searches
// the usual locations.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}
	if path == "" {
		path = getConfigFilePath()
	}
	if path != "" {
		if err := loadFromFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// getConfigFilePath returns the first config file found in the usual locations
func getConfigFilePath() string {
	locations := []string{
		DefaultConfigFile,
		"configs/" + DefaultConfigFile,
	}
	if exeDir, err := ExecutableDir(); err == nil {
		locations = append(locations, exeDir+string(os.PathSeparator)+DefaultConfigFile)
	}

	for _, location := range locations {
		if FileExists(location) {
			return location
		}
	}
	return ""
}

var validate = validator.New()

// Validate checks field constraints, the process constants and the phases
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if err := c.Run.Constants.Validate(); err != nil {
		return fmt.Errorf("run constants: %w", err)
	}
	seen := make(map[string]bool, len(c.Phases))
	for _, p := range c.Phases {
		if err := p.Validate(); err != nil {
			return err
		}
		if seen[p.Name] {
			return fmt.Errorf("duplicate phase %q", p.Name)
		}
		seen[p.Name] = true
	}
	if c.Run.Start != "" {
		if _, err := c.RunStart(); err != nil {
			return err
		}
	}
	return nil
}

// RunStart parses Run.Start.
func (c *Config) RunStart() (time.Time, error) {
	return ParseRunStart(c.Run.Start)
}

// ParseRunStart accepts the timestamp formats found in the workbook. The
// result is truncated to the minute the grid is built on.
func ParseRunStart(s string) (time.Time, error) {
	t, ok := workbook.ParseTime(s)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid run start %q", s)
	}
	return t.Truncate(time.Minute), nil
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			Sheets: workbook.DefaultLayout(),
		},
		Run: RunConfig{
			Constants: rates.DefaultConstants(),
		},
		Phases: summary.DefaultPhases(),
		Output: OutputConfig{
			Directory:    DefaultOutputDir,
			AveragedFile: DefaultAveragedFile,
			RunFile:      DefaultRunFile,
			SummaryFile:  DefaultSummaryFile,
			WorkbookFile: DefaultWorkbookFile,
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "both",
			FilePath: DefaultLogFile,
		},
		Metrics: MetricsConfig{
			Enabled:     true,
			ServiceName: AppName,
		},
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
	}
}
