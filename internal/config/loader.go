package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.Server.LogLevel != "" && !cfg.Server.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("server.log_level %q is invalid; valid values: debug, info, warn, error", cfg.Server.LogLevel))
	}
	if cfg.Server.TLS != nil {
		if cfg.Server.TLS.CertFile == "" || cfg.Server.TLS.KeyFile == "" {
			errs = append(errs, errors.New("server.tls requires both cert_file and key_file"))
		}
	}

	if cfg.Contract.Path == "" {
		if cfg.Contract.Require {
			errs = append(errs, errors.New("contract.require is set but contract.path is empty"))
		} else {
			slog.Warn("contract.path is empty; emotional turns will serve absolute fallbacks only")
		}
	}
	if cfg.Contract.Version == "" && cfg.Contract.Path != "" {
		slog.Warn("contract.version is empty; the loaded document's version will not be pinned")
	}

	if cfg.Audit.PostgresDSN == "" {
		slog.Warn("audit.postgres_dsn is empty; turn archiving is disabled")
	}
	if cfg.Audit.QueueDepth < 0 {
		errs = append(errs, fmt.Errorf("audit.queue_depth %d must not be negative", cfg.Audit.QueueDepth))
	}

	return errors.Join(errs...)
}
