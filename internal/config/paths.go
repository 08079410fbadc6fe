package config

import (
	"os"
	"path/filepath"
)

const appDirName = ".keysonscreen"

// DataDir returns the base data directory for keysonscreen.
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, appDirName), nil
}

// ConfigPath returns the path to the settings file.
func ConfigPath() (string, error) {
	return dataPath("config.toml")
}

// HistoryDBPath returns the path to the bbolt history database.
func HistoryDBPath() (string, error) {
	return dataPath("history.db")
}

// HistoryFilePath returns the path to the JSON history file.
func HistoryFilePath() (string, error) {
	return dataPath("history.json")
}

// LogPath returns the path to the log written while the UI owns the terminal.
func LogPath() (string, error) {
	return dataPath("keysonscreen.log")
}

func dataPath(name string) (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dataDir, name), nil
}
