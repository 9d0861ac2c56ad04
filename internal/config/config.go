package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "plantid.yaml"

// Duration wraps time.Duration with YAML unmarshaling from strings like "500ms".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	d.Duration = parsed
	return nil
}

// Config is the top-level plantid configuration.
type Config struct {
	Backend  BackendConfig  `yaml:"backend"`
	Server   ServerConfig   `yaml:"server"`
	Dropzone DropzoneConfig `yaml:"dropzone"`
}

// BackendConfig locates the classification service.
type BackendConfig struct {
	BaseURL           string `yaml:"base_url"`
	IdentifyPath      string `yaml:"identify_path"`
	TestLocalPath     string `yaml:"test_local_path"`
	ModelInfoPath     string `yaml:"model_info_path"`
	ValidateResponses bool   `yaml:"validate_responses"`
}

type ServerConfig struct {
	Port        int    `yaml:"port"`
	Description string `yaml:"description"`
}

type DropzoneConfig struct {
	Dir          string   `yaml:"dir"`
	Settle       Duration `yaml:"settle"`
	AutoIdentify bool     `yaml:"auto_identify"`
}

const (
	defaultBaseURL       = "http://localhost:5000"
	defaultIdentifyPath  = "/identify"
	defaultTestLocalPath = "/test-local"
	defaultModelInfoPath = "/model-info"
	defaultPort          = 8080
	defaultDescription   = "Upload a photo of a plant to identify its species."
	defaultSettle        = 500 * time.Millisecond
)

// Default returns the built-in configuration.
func Default() *Config {
	var cfg Config
	applyDefaults(&cfg)
	return &cfg
}

// Load reads, expands env vars, parses, and validates a plantid config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	applyDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault loads path. When path is the implicit default and does not
// exist, the built-in configuration is used instead.
func LoadOrDefault(path string, explicit bool) (*Config, error) {
	if !explicit {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
	}
	return Load(path)
}

func applyDefaults(cfg *Config) {
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = defaultBaseURL
	}
	cfg.Backend.BaseURL = strings.TrimRight(cfg.Backend.BaseURL, "/")
	if cfg.Backend.IdentifyPath == "" {
		cfg.Backend.IdentifyPath = defaultIdentifyPath
	}
	if cfg.Backend.TestLocalPath == "" {
		cfg.Backend.TestLocalPath = defaultTestLocalPath
	}
	if cfg.Backend.ModelInfoPath == "" {
		cfg.Backend.ModelInfoPath = defaultModelInfoPath
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultPort
	}
	if cfg.Server.Description == "" {
		cfg.Server.Description = defaultDescription
	}
	if cfg.Dropzone.Settle.Duration == 0 {
		cfg.Dropzone.Settle.Duration = defaultSettle
	}
}

func validate(cfg *Config) error {
	var errs []error

	if u, err := url.Parse(cfg.Backend.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		errs = append(errs, fmt.Errorf("backend.base_url must be an absolute URL, got %q", cfg.Backend.BaseURL))
	} else if u.Scheme != "http" && u.Scheme != "https" {
		errs = append(errs, fmt.Errorf("backend.base_url scheme must be http or https, got %q", u.Scheme))
	}

	paths := []struct{ name, value string }{
		{"backend.identify_path", cfg.Backend.IdentifyPath},
		{"backend.test_local_path", cfg.Backend.TestLocalPath},
		{"backend.model_info_path", cfg.Backend.ModelInfoPath},
	}
	for _, p := range paths {
		if !strings.HasPrefix(p.value, "/") {
			errs = append(errs, fmt.Errorf("%s must start with \"/\", got %q", p.name, p.value))
		}
	}

	if cfg.Server.Port < 0 || cfg.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 0 and 65535, got %d", cfg.Server.Port))
	}

	if cfg.Dropzone.Settle.Duration < 0 {
		errs = append(errs, errors.New("dropzone.settle must be positive"))
	}
	// auto_identify needs a directory to watch.
	if cfg.Dropzone.AutoIdentify && cfg.Dropzone.Dir == "" {
		errs = append(errs, errors.New("dropzone.dir is required when dropzone.auto_identify is true"))
	}

	return errors.Join(errs...)
}
