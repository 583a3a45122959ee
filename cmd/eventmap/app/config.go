package app

import (
	stderrors "errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/culturalmap/eventmap/internal/config"
	"github.com/culturalmap/eventmap/pkg/constants"
	"github.com/culturalmap/eventmap/pkg/errors"
)

// LoadConfig loads configuration from all sources in order of precedence:
// 1. Command-line flags (applied later by setupCommand)
// 2. Environment variables (EVENTMAP_ prefix)
// 3. .env files
// 4. Config file (eventmap.yaml in . or $HOME, or the given path)
// 5. Defaults
func LoadConfig(configFile string) (*config.Config, error) {
	// Load .env files first (before Viper env binding)
	loadEnvFiles()

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	config.SetDefaults(v)

	if configFile == "" {
		configFile = v.GetString("config")
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
		v.SetConfigType("yaml")
		v.SetConfigName(constants.ConfigFileName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !stderrors.As(err, &notFound) {
			return nil, errors.NewConfigError("config", "reading "+displayPath(configFile), err)
		}
	}

	var cfg config.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.NewConfigError("config", "decoding settings", err)
	}
	cfg.ConfigFile = v.ConfigFileUsed()

	// LOG_LEVEL and friends without the prefix, as other tools set them
	if cfg.LogLevel == "" {
		cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", "")
	}
	if cfg.LogFormat == "auto" {
		cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", "auto")
	}
	if cfg.LogOutput == "stderr" {
		cfg.LogOutput = getEnvOrDefault("LOG_OUTPUT", "stderr")
	}

	if err := cfg.Check(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// UpdateFromFlags updates config values from parsed root flags. Flag
// values take precedence over config file and env vars.
func UpdateFromFlags(c *config.Config, verbose, quiet, noColor bool, format, logLevel, now string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if format != "" {
		c.Format = format
	}
	if logLevel != "" {
		c.LogLevel = logLevel
	}
	if now != "" {
		c.Now = now
	}
}

// loadEnvFiles loads environment variables from .env files.
func loadEnvFiles() {
	// .env.local overrides .env
	envFiles := []string{
		".env.local",
		".env",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// getEnvOrDefault returns the environment variable value or the default if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func displayPath(path string) string {
	if path == "" {
		return constants.ConfigFileName + ".yaml"
	}
	return filepath.Clean(path)
}
