// utils.go: filesystem path helpers for configuration and data files.
package conf

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/bkubisiak/birdr-go/internal/errors"
)

// GetDefaultConfigPaths returns the directories searched for the
// configuration file, in priority order.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	var configPaths []string
	switch runtime.GOOS {
	case "windows":
		configPaths = []string{
			filepath.Join(homeDir, "AppData", "Roaming", "birdr"),
		}
	default:
		configHome := os.Getenv("XDG_CONFIG_HOME")
		if configHome == "" {
			configHome = filepath.Join(homeDir, ".config")
		}
		configPaths = []string{
			filepath.Join(configHome, "birdr"),
		}
	}

	// The working directory is always the last resort.
	configPaths = append(configPaths, ".")

	return configPaths, nil
}

// GetDefaultDataPath returns the directory holding the database file,
// following the XDG base directory convention.
func GetDefaultDataPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", errors.New(err).
			Component("conf").
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	if runtime.GOOS == "windows" {
		return filepath.Join(homeDir, "AppData", "Local", "birdr"), nil
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(homeDir, ".local", "share")
	}
	return filepath.Join(dataHome, "birdr"), nil
}

// EnsureDirectory normalizes path, expands environment variables in it and
// creates the directory if it does not exist.
func EnsureDirectory(path string) (string, error) {
	expandedPath := os.ExpandEnv(path)
	basePath := filepath.Clean(expandedPath)

	if _, err := os.Stat(basePath); os.IsNotExist(err) {
		if err := os.MkdirAll(basePath, 0o750); err != nil {
			return "", errors.New(err).
				Component("conf").
				Category(errors.CategoryFileIO).
				Context("operation", "create-directory").
				Context("path", basePath).
				Build()
		}
	}

	return basePath, nil
}
