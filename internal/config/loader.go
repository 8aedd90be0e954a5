package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	envPrefix            = "ROOMRELAY"
	envConfigDefaultPath = envPrefix + "_CONFIG_DEFAULT_PATH"
	defaultConfigName    = "config.yaml"
)

// FlagKeys maps command-line flag names to config keys. Flags are only
// consulted when set explicitly, so a flag can override a key with its zero
// value.
var FlagKeys = map[string]string{
	"addr":                "addr",
	"read-header-timeout": "read_header_timeout",
	"shutdown-timeout":    "shutdown_timeout",
	"log-level":           "log_level",
	"log-format":          "log_format",
	"max-message-bytes":   "max_message_bytes",
	"rate-limit":          "rate_limit_per_minute",
	"client-buffer":       "client_buffer",
	"allowed-origins":     "allowed_origins",
}

// Load resolves configuration and returns it with the config file path.
// Precedence: defaults < config file < ROOMRELAY_* env vars < flags.
// A missing config file is created from defaults. flags may be nil.
func Load(logger *zerolog.Logger, explicitPath string, flags *pflag.FlagSet) (Config, string, error) {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}

	v := newViper(Default())
	if err := bindFlags(v, flags); err != nil {
		return Config{}, "", err
	}

	path := resolveConfigPath(explicitPath)
	v.SetConfigFile(path)
	if err := readConfig(v, path, logger); err != nil {
		return Config{}, path, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, path, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, path, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, path, nil
}

func newViper(def Config) *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	for key, value := range map[string]any{
		"addr":                  def.Addr,
		"read_header_timeout":   def.ReadHeaderTimeout,
		"shutdown_timeout":      def.ShutdownTimeout,
		"log_level":             def.LogLevel,
		"log_format":            def.LogFormat,
		"max_message_bytes":     def.MaxMessageBytes,
		"rate_limit_per_minute": def.RateLimitPerMinute,
		"client_buffer":         def.ClientBuffer,
		"allowed_origins":       def.AllowedOrigins,
	} {
		v.SetDefault(key, value)
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	if flags == nil {
		return nil
	}
	for name, key := range FlagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("bind flag %s: %w", name, err)
		}
	}
	return nil
}

func readConfig(v *viper.Viper, path string, logger *zerolog.Logger) error {
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("read config: %w", err)
	}

	if err := writeDefaultConfig(path, Default()); err != nil {
		// Defaults are still in effect without the file.
		logger.Warn().Err(err).Str("path", path).Msg("failed to write default config")
		return nil
	}
	logger.Info().Str("path", path).Msg("created default config")
	if err := v.ReadInConfig(); err != nil {
		logger.Warn().Err(err).Str("path", path).Msg("failed to read config after writing default")
	}
	return nil
}

func resolveConfigPath(explicitPath string) string {
	if explicitPath != "" {
		return explicitPath
	}

	if base := os.Getenv(envConfigDefaultPath); base != "" {
		if err := os.MkdirAll(base, 0o755); err == nil {
			return filepath.Join(base, defaultConfigName)
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return defaultConfigName
	}
	return filepath.Join(cwd, defaultConfigName)
}

func writeDefaultConfig(path string, cfg Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}
