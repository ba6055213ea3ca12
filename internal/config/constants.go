package config

// Application constants
const (
	AppName   = "offgas"
	EnvPrefix = "OFFGAS"

	DefaultConfigFile = "offgas.yaml"

	// Artifacts
	DefaultOutputDir    = "output"
	DefaultAveragedFile = "averaged_data.csv"
	DefaultRunFile      = "run_data.csv"
	DefaultSummaryFile  = "summary.json"
	DefaultWorkbookFile = "offgas.xlsx"

	// Logging
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogFile   = "data_processing.log"

	// Rate limiting
	DefaultRateLimit = 50 // requests per second
	DefaultBurstSize = 100

	// API
	APIBasePath     = "/api/v1"
	HealthEndpoint  = "/healthz"
	MetricsEndpoint = "/metrics"
)
