package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML config at path, applies defaults and environment
// overrides, and validates the result. A missing file at the default path is
// not an error: defaults plus environment cover the whole surface.
func Load(path string) (*AppConfig, error) {
	cfg := defaultAppConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		var raw rawAppConfig
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if derr := dec.Decode(&raw); derr != nil && !errors.Is(derr, io.EOF) {
			return nil, fmt.Errorf("parse config %s: %w", path, derr)
		}
		applyRawAppConfig(cfg, &raw)
	case os.IsNotExist(err) && path == DefaultConfigPath:
		// running without a config file is supported
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	applyEnvOverrides(cfg)

	if err := validateAppConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaultAppConfig() *AppConfig {
	return &AppConfig{
		Port: defaultPort,
		Env:  defaultEnv,
		Gemini: GeminiConfig{
			Endpoint:       defaultGeminiEndpoint,
			Model:          defaultGeminiModel,
			TimeoutSeconds: defaultGeminiTimeout,
		},
		Study: StudyConfig{
			MaxUploadSizeMB: defaultMaxUploadSizeMB,
			PromptMaxChars:  defaultPromptMaxChars,
		},
	}
}

func applyRawAppConfig(cfg *AppConfig, raw *rawAppConfig) {
	if raw.Port != 0 {
		cfg.Port = raw.Port
	}
	if v := strings.TrimSpace(raw.Env); v != "" {
		cfg.Env = v
	}
	if v := firstNonEmpty(raw.Timezone, raw.TZ); v != "" {
		cfg.Timezone = v
	}
	if len(raw.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = raw.AllowedOrigins
	} else if len(raw.CORSAllowedOrigins) > 0 {
		cfg.AllowedOrigins = raw.CORSAllowedOrigins
	}
	if v := firstNonEmpty(raw.Paths.Logs, raw.LogDir); v != "" {
		cfg.Paths.Logs = v
	}
	if v := firstNonEmpty(raw.Paths.Uploads, raw.UploadDir); v != "" {
		cfg.Paths.Uploads = v
	}
	if v := strings.TrimSpace(raw.Gemini.Endpoint); v != "" {
		cfg.Gemini.Endpoint = strings.TrimRight(v, "/")
	}
	if v := strings.TrimSpace(raw.Gemini.Model); v != "" {
		cfg.Gemini.Model = v
	}
	if v := strings.TrimSpace(raw.Gemini.APIKey); v != "" {
		cfg.Gemini.APIKey = v
	}
	if raw.Gemini.TimeoutSeconds != 0 {
		cfg.Gemini.TimeoutSeconds = raw.Gemini.TimeoutSeconds
	}
	if raw.Study.MaxUploadSizeMB != 0 {
		cfg.Study.MaxUploadSizeMB = raw.Study.MaxUploadSizeMB
	}
	if raw.Study.PromptMaxChars != 0 {
		cfg.Study.PromptMaxChars = raw.Study.PromptMaxChars
	}
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(GeminiAPIKeyEnv)); v != "" {
		cfg.Gemini.APIKey = v
	}
}

func validateAppConfig(cfg *AppConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("invalid port %d, must be within 1-65535", cfg.Port)
	}
	if cfg.Gemini.TimeoutSeconds < 1 {
		return fmt.Errorf("invalid gemini.timeout_seconds %d, must be positive", cfg.Gemini.TimeoutSeconds)
	}
	if cfg.Study.MaxUploadSizeMB < 1 {
		return fmt.Errorf("invalid study.max_upload_size_mb %d, must be positive", cfg.Study.MaxUploadSizeMB)
	}
	if cfg.Study.PromptMaxChars < 1 {
		return fmt.Errorf("invalid study.prompt_max_chars %d, must be positive", cfg.Study.PromptMaxChars)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

// IsDev reports whether the app runs in development mode.
func (c *AppConfig) IsDev() bool {
	return strings.EqualFold(strings.TrimSpace(c.Env), defaultEnv)
}

// Addr is the listen address for the HTTP server.
func (c *AppConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// GeminiTimeout returns the upstream call timeout.
func (c *AppConfig) GeminiTimeout() time.Duration {
	return time.Duration(c.Gemini.TimeoutSeconds) * time.Second
}

// MaxUploadBytes returns the upload size cap in bytes.
func (c *AppConfig) MaxUploadBytes() int64 {
	return int64(c.Study.MaxUploadSizeMB) << 20
}

// LogDir resolves the log directory against the executable location.
func (c *AppConfig) LogDir() string {
	return ResolveRuntimePath(c.Paths.Logs, "logs")
}

// UploadDir resolves the scratch directory for uploaded files.
func (c *AppConfig) UploadDir() string {
	return ResolveRuntimePath(c.Paths.Uploads, "uploads")
}
