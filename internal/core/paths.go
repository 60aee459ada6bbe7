package core

import (
	"os"
	"path/filepath"
)

type Paths struct {
	HomeDir            string
	DataDir            string
	ConfigFile         string
	LogFile            string
	InteractionLogFile string
}

var defaultPaths *Paths

func ensureDefaultPaths() {
	if defaultPaths == nil {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			panic(err)
		}

		defaultPaths = &Paths{
			HomeDir:            homeDir,
			DataDir:            filepath.Join(homeDir, ".mimir"),
			ConfigFile:         filepath.Join(homeDir, ".mimir", "config.json"),
			LogFile:            filepath.Join(homeDir, ".mimir", "mimir.log"),
			InteractionLogFile: filepath.Join(homeDir, ".mimir", "interactions.log"),
		}

		err = os.MkdirAll(defaultPaths.DataDir, 0755)
		if err != nil {
			panic(err)
		}
	}
}

func HomeDir() string {
	ensureDefaultPaths()
	return defaultPaths.HomeDir
}

func DataDir() string {
	ensureDefaultPaths()
	return defaultPaths.DataDir
}

func ConfigFile() string {
	ensureDefaultPaths()
	return defaultPaths.ConfigFile
}

func LogFile() string {
	ensureDefaultPaths()
	return defaultPaths.LogFile
}

func InteractionLogFile() string {
	ensureDefaultPaths()
	return defaultPaths.InteractionLogFile
}

// ResetPaths clears the cached paths, forcing them to be reinitialized.
// This is primarily used for testing purposes.
func ResetPaths() {
	defaultPaths = nil
}
