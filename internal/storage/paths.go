// Package storage persists agent experience, game records and training
// statistics in BadgerDB.
package storage

import (
	"os"
	"path/filepath"
	"runtime"
)

const appName = "mlchess"

// DataDirEnv overrides the platform data directory when set.
const DataDirEnv = "MLCHESS_DATA_DIR"

// GetDataDir returns the data directory for the application, creating it
// if needed.
// - $MLCHESS_DATA_DIR when set
// - macOS: ~/Library/Application Support/mlchess/
// - Linux: $XDG_DATA_HOME/mlchess/ or ~/.local/share/mlchess/
// - Windows: %APPDATA%/mlchess/
func GetDataDir() (string, error) {
	dataDir := os.Getenv(DataDirEnv)
	if dataDir == "" {
		baseDir, err := platformDataHome()
		if err != nil {
			return "", err
		}
		dataDir = filepath.Join(baseDir, appName)
	}

	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return "", err
	}
	return dataDir, nil
}

func platformDataHome() (string, error) {
	switch runtime.GOOS {
	case "darwin":
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, "Library", "Application Support"), nil

	case "windows":
		if dir := os.Getenv("APPDATA"); dir != "" {
			return dir, nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, "AppData", "Roaming"), nil

	default:
		if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
			return dir, nil
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(homeDir, ".local", "share"), nil
	}
}

// GetDatabaseDir returns the directory holding the BadgerDB files.
func GetDatabaseDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	dbDir := filepath.Join(dataDir, "db")
	if err := os.MkdirAll(dbDir, 0755); err != nil {
		return "", err
	}
	return dbDir, nil
}

// GetGamesDir returns the directory PGN exports are written to.
func GetGamesDir() (string, error) {
	dataDir, err := GetDataDir()
	if err != nil {
		return "", err
	}

	gamesDir := filepath.Join(dataDir, "games")
	if err := os.MkdirAll(gamesDir, 0755); err != nil {
		return "", err
	}
	return gamesDir, nil
}
