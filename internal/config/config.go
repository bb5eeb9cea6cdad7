package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/prometheus/common/model"
	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultListenAddress = ":9110"
	DefaultMetricsPath   = "/metrics"
	DefaultNamespace     = "netapp"
	DefaultScheme        = "https"
	DefaultTimeout       = 10 * time.Second
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
)

// HealthPath is served by the exporter itself and cannot be the metrics path.
const HealthPath = "/healthz"

// Config is the top-level exporter configuration.
// Fields map 1:1 to config.example.yaml.
type Config struct {
	// ListenAddress is the host:port the HTTP server binds to.
	ListenAddress string `yaml:"listen_address"`

	// MetricsPath is the path of the scrape endpoint.
	MetricsPath string `yaml:"metrics_path"`

	// Namespace prefixes every exported metric name. Empty exports the bare names.
	Namespace string `yaml:"namespace"`

	// Target holds the fallback upstream and the transport settings used to reach it.
	Target TargetConfig `yaml:"target"`

	// Scrape controls which per-request overrides are honoured.
	Scrape ScrapeConfig `yaml:"scrape"`

	// Log configures the process logger.
	Log LogConfig `yaml:"log"`
}

// TargetConfig describes the ONTAP cluster management endpoint.
type TargetConfig struct {
	// Address is the cluster management host (optionally host:port).
	Address string `yaml:"address"`

	// Username is the literal basic-auth username (safe to store in config).
	Username string `yaml:"username"`

	// PasswordEnv is the name of the environment variable that holds the password.
	PasswordEnv string `yaml:"password_env"`

	// Scheme is http or https.
	Scheme string `yaml:"scheme"`

	// Timeout bounds every single upstream request.
	Timeout time.Duration `yaml:"timeout"`

	// InsecureSkipVerify disables TLS certificate verification. Cluster management
	// LIFs usually present self-signed certificates, so this defaults to true.
	InsecureSkipVerify bool `yaml:"insecure_skip_verify"`
}

// Password returns the basic-auth password resolved from the environment.
// Returns empty string if PasswordEnv is unset or the variable is not found.
func (t TargetConfig) Password() string {
	if t.PasswordEnv == "" {
		return ""
	}
	return os.Getenv(t.PasswordEnv)
}

// ScrapeConfig holds per-request policy.
type ScrapeConfig struct {
	// AllowQueryCredentials accepts ONTAP_USER and ONTAP_PASS from the query string.
	// When false only the Authorization header, the environment and the config file
	// can supply credentials.
	AllowQueryCredentials bool `yaml:"allow_query_credentials"`
}

// LogConfig selects the slog handler.
type LogConfig struct {
	// Level is one of: debug | info | warn | error.
	Level string `yaml:"level"`

	// Format is one of: json | text.
	Format string `yaml:"format"`
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
// An empty path returns the defaults alone.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// Default returns a Config pre-populated with default values.
func Default() *Config {
	return &Config{
		ListenAddress: DefaultListenAddress,
		MetricsPath:   DefaultMetricsPath,
		Namespace:     DefaultNamespace,
		Target: TargetConfig{
			Scheme:             DefaultScheme,
			Timeout:            DefaultTimeout,
			InsecureSkipVerify: true,
		},
		Scrape: ScrapeConfig{
			AllowQueryCredentials: true,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.ListenAddress == "" {
		return fmt.Errorf("listen_address is required")
	}
	if !strings.HasPrefix(cfg.MetricsPath, "/") {
		return fmt.Errorf("metrics_path %q must start with /", cfg.MetricsPath)
	}
	if cfg.MetricsPath == HealthPath {
		return fmt.Errorf("metrics_path %q is reserved for the health endpoint", cfg.MetricsPath)
	}
	if cfg.Namespace != "" && !model.IsValidMetricName(model.LabelValue(cfg.Namespace)) {
		return fmt.Errorf("namespace %q is not a valid metric name prefix", cfg.Namespace)
	}
	switch cfg.Target.Scheme {
	case "http", "https":
	default:
		return fmt.Errorf("target.scheme %q unknown: want http|https", cfg.Target.Scheme)
	}
	if cfg.Target.Timeout <= 0 {
		return fmt.Errorf("target.timeout must be positive")
	}
	switch cfg.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level %q unknown: want debug|info|warn|error", cfg.Log.Level)
	}
	switch cfg.Log.Format {
	case "json", "text":
	default:
		return fmt.Errorf("log.format %q unknown: want json|text", cfg.Log.Format)
	}
	return nil
}
