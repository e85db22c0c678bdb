package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultSecretKey is used when SECRET_KEY is unset.
const DefaultSecretKey = "XYZ"

type Config struct {
	HTTPAddr       string        `yaml:"http_addr"`
	SecretKey      string        `yaml:"secret_key"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	CORSOrigins    []string      `yaml:"cors_origins"`

	ArtifactDir string `yaml:"artifact_dir"`
	ScalerKey   string `yaml:"scaler_key"`
	ModelKey    string `yaml:"model_key"`
	SchemaKey   string `yaml:"schema_key"` // empty: built-in census-v1 schema

	EnableFormToken  bool `yaml:"form_token"`
	ReloadPerRequest bool `yaml:"reload_per_request"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"` // json|console
}

func Default() Config {
	return Config{
		HTTPAddr:        ":8080",
		SecretKey:       DefaultSecretKey,
		RequestTimeout:  30 * time.Second,
		CORSOrigins:     []string{"http://localhost:3000"},
		ArtifactDir:     "./artifacts",
		ScalerKey:       "scaler.json",
		ModelKey:        "model.json",
		SchemaKey:       "clean_features.csv",
		EnableFormToken: true,
		LogLevel:        "info",
		LogFormat:       "json",
	}
}

// Load reads defaults, then the YAML file at path when it exists, then the
// environment. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return cfg, fmt.Errorf("read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse config: %w", err)
			}
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// FromEnv is Load without a config file.
func FromEnv() (Config, error) { return Load("") }

func (c *Config) applyEnv() error {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setString(&c.SecretKey, "SECRET_KEY")
	setString(&c.ArtifactDir, "ARTIFACT_DIR")
	setString(&c.ScalerKey, "SCALER_KEY")
	setString(&c.ModelKey, "MODEL_KEY")
	if v, ok := os.LookupEnv("SCHEMA_KEY"); ok {
		c.SchemaKey = strings.TrimSpace(v)
	}
	setBool(&c.EnableFormToken, "ENABLE_FORM_TOKEN")
	setBool(&c.ReloadPerRequest, "RELOAD_PER_REQUEST")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setList(&c.CORSOrigins, "CORS_ORIGINS")
	if v, ok := env("REQUEST_TIMEOUT"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REQUEST_TIMEOUT: %w", err)
		}
		c.RequestTimeout = d
	}
	return nil
}

func (c Config) Validate() error {
	if c.ScalerKey == "" || c.ModelKey == "" {
		return errors.New("scaler_key and model_key are required")
	}
	if c.RequestTimeout <= 0 {
		return errors.New("request_timeout must be positive")
	}
	switch c.LogFormat {
	case "json", "console":
	default:
		return fmt.Errorf("unknown log_format %q", c.LogFormat)
	}
	return nil
}

// UsingDefaultSecret reports whether SECRET_KEY fell back to the built-in value.
func (c Config) UsingDefaultSecret() bool { return c.SecretKey == DefaultSecretKey }

// env returns the trimmed value of k; blank counts as unset.
func env(k string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(k))
	return v, v != ""
}

func setString(dst *string, k string) {
	if v, ok := env(k); ok {
		*dst = v
	}
}

// setBool leaves dst alone for values it does not recognise.
func setBool(dst *bool, k string) {
	v, _ := env(k)
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		*dst = true
	case "0", "false", "no", "off":
		*dst = false
	}
}

// setList splits a comma separated value, dropping empty items.
func setList(dst *[]string, k string) {
	v, ok := env(k)
	if !ok {
		return
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*dst = out
}
