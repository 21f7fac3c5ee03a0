// Package conf loads and provides access to the application settings.
package conf

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

//go:embed config.yaml
var configFiles embed.FS

// DatabaseSettings holds the storage engine configuration.
type DatabaseSettings struct {
	Path string // path to the SQLite database file
}

// LogSettings holds file logging configuration.
type LogSettings struct {
	Dir string // directory for service log files
}

// Settings contains all application configuration.
type Settings struct {
	Debug    bool // enable debug output
	Database DatabaseSettings
	Log      LogSettings
}

// Load reads the configuration file and environment into a Settings struct.
// When no configuration file exists, a default one is written to the first
// config path so the user has something to edit.
func Load() (*Settings, error) {
	setDefaultSettings()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return nil, err
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("BIRDR")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, errors.New(err).
				Component("conf").
				Category(errors.CategoryConfiguration).
				Context("operation", "read-config").
				Build()
		}
		if err := createDefaultConfig(configPaths[0]); err != nil {
			return nil, err
		}
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal-config").
			Build()
	}

	return settings, nil
}

// setDefaultSettings registers default values with viper. The database
// defaults to the user's data directory.
func setDefaultSettings() {
	dataDir, err := GetDefaultDataPath()
	if err != nil {
		// Fall back to the working directory when the home directory
		// cannot be resolved.
		dataDir = "."
	}

	viper.SetDefault("debug", false)
	viper.SetDefault("database.path", filepath.Join(dataDir, "birds.db"))
	viper.SetDefault("log.dir", filepath.Join(dataDir, "logs"))
}

// createDefaultConfig writes the embedded default configuration file into
// the given config directory.
func createDefaultConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("operation", "create-config-dir").
			Context("path", configDir).
			Build()
	}

	configPath := filepath.Join(configDir, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return nil
	}

	defaultConfig, err := configFiles.ReadFile("config.yaml")
	if err != nil {
		return fmt.Errorf("reading embedded config: %w", err)
	}

	if err := os.WriteFile(configPath, defaultConfig, 0o644); err != nil {
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryFileIO).
			Context("operation", "write-default-config").
			Context("path", configPath).
			Build()
	}

	return nil
}
