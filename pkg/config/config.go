package config

// Config holds all runtime configuration for the pipeline.
type Config struct {
	ClinVar  ClinVarConfig  `yaml:"clinvar"`
	Quality  QualityConfig  `yaml:"quality"`
	Registry RegistryConfig `yaml:"registry"`
	History  HistoryConfig  `yaml:"history"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ClinVarConfig controls the download step.
type ClinVarConfig struct {
	SourceURL   string `yaml:"source_url" envconfig:"SOURCE_URL"`
	ChecksumURL string `yaml:"checksum_url" envconfig:"CHECKSUM_URL"`
	DownloadDir string `yaml:"download_dir" envconfig:"DOWNLOAD_DIR"`
	// Timeout is a duration string; ParseDuration accepts a "d" suffix
	// in addition to the standard Go units.
	Timeout    string  `yaml:"timeout" envconfig:"TIMEOUT"`
	MaxRetries int     `yaml:"max_retries" envconfig:"MAX_RETRIES"`
	RateLimit  float64 `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// QualityConfig controls the quality assessment step.
type QualityConfig struct {
	OutputDir  string     `yaml:"output_dir" envconfig:"OUTPUT_DIR"`
	Thresholds Thresholds `yaml:"thresholds"`
}

// Thresholds are advisory quality bounds. They are evaluated and logged
// as warnings but never gate the pipeline exit code.
type Thresholds struct {
	MinQualityScore    float64 `yaml:"min_quality_score" envconfig:"MIN_QUALITY_SCORE"`
	MaxNullPercentage  float64 `yaml:"max_null_percentage" envconfig:"MAX_NULL_PERCENTAGE"`
	MaxConflictRate    float64 `yaml:"max_conflict_rate" envconfig:"MAX_CONFLICT_RATE"`
	MaxDriftPercentage float64 `yaml:"max_drift_percentage" envconfig:"MAX_DRIFT_PERCENTAGE"`
}

// RegistryConfig controls package creation and registry pushes.
type RegistryConfig struct {
	Bucket      string `yaml:"bucket" envconfig:"BUCKET"`
	PackageName string `yaml:"package_name" envconfig:"PACKAGE_NAME"`
	URL         string `yaml:"url" envconfig:"URL"`
	PushEnabled bool   `yaml:"push_enabled" envconfig:"PUSH_ENABLED"`
	Timeout     string `yaml:"timeout" envconfig:"TIMEOUT"`
}

// HistoryConfig controls the local quality-history store. An empty
// DatabasePath disables history tracking.
type HistoryConfig struct {
	DatabasePath string `yaml:"database_path" envconfig:"DATABASE_PATH"`
	DebugSQL     bool   `yaml:"debug_sql" envconfig:"DEBUG_SQL"`
}

// LoggingConfig controls log level and destinations.
type LoggingConfig struct {
	Level          string `yaml:"level" envconfig:"LEVEL"`
	LogDir         string `yaml:"log_dir" envconfig:"LOG_DIR"`
	FileLogging    bool   `yaml:"file_logging" envconfig:"FILE_LOGGING"`
	ConsoleLogging bool   `yaml:"console_logging" envconfig:"CONSOLE_LOGGING"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		ClinVar: ClinVarConfig{
			SourceURL:   "https://ftp.ncbi.nlm.nih.gov/pub/clinvar/tab_delimited/variant_summary.txt.gz",
			ChecksumURL: "https://ftp.ncbi.nlm.nih.gov/pub/clinvar/tab_delimited/variant_summary.txt.gz.md5",
			DownloadDir: "./data/raw",
			Timeout:     "30s",
			MaxRetries:  3,
			RateLimit:   3,
		},
		Quality: QualityConfig{
			OutputDir: "./data/reports",
			Thresholds: Thresholds{
				MinQualityScore:    70,
				MaxNullPercentage:  10,
				MaxConflictRate:    5,
				MaxDriftPercentage: 20,
			},
		},
		Registry: RegistryConfig{
			PackageName: "biodata/clinvar-variant-summary",
			PushEnabled: false,
			Timeout:     "60s",
		},
		History: HistoryConfig{
			DatabasePath: "./data/history.db",
		},
		Logging: LoggingConfig{
			Level:          "info",
			LogDir:         "./logs",
			FileLogging:    false,
			ConsoleLogging: true,
		},
	}
}
