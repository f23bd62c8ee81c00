package config

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/adrg/xdg"
)

const appName = "campusadmin"

// StoragePaths contains paths for application storage
type StoragePaths struct {
	DatabasePath string
	MetricsPath  string
}

// GetDefaultStoragePaths returns default storage paths using XDG base directories
func GetDefaultStoragePaths() StoragePaths {
	// XDG_STATE_HOME holds runtime state: the database and metrics snapshots
	return StoragePaths{
		DatabasePath: filepath.Join(xdg.StateHome, appName, "campus.db"),
		MetricsPath:  filepath.Join(xdg.StateHome, appName, "campus.prom"),
	}
}

// GetConfigPaths returns the configuration file paths to check. Paths have
// no extension; the loader tries each supported one.
func GetConfigPaths() ConfigPrecedence {
	systemConfigPath := filepath.Join("/etc", appName, "config")
	if runtime.GOOS == "windows" {
		systemConfigPath = filepath.Join(os.Getenv("PROGRAMDATA"), appName, "config")
	}

	return ConfigPrecedence{
		SystemConfig:      systemConfigPath,
		UserConfig:        filepath.Join(xdg.ConfigHome, appName, "config"),
		ProjectConfig:     filepath.Join(".campus", "config"),
		LocalConfig:       filepath.Join(".campus", "config.local"),
		EnvironmentPrefix: "CAMPUS",
	}
}
