package config

import (
	"path/filepath"

	"github.com/spf13/viper"
)

// BaseSettingsDir is the directory relative files such as the log file live in.
// It is the directory of the config file in use, or of the default config
// path when no file was read.
func BaseSettingsDir() string {
	if configPath := viper.GetString("config.path"); configPath != "" {
		return configPath
	}

	if used := viper.ConfigFileUsed(); used != "" {
		return filepath.Dir(used)
	}
	if Global != nil && Global.ConfigFile != "" {
		return filepath.Dir(Global.ConfigFile)
	}
	return "."
}

// BuildSettingsPath joins target onto the settings directory
func BuildSettingsPath(target string) string {
	return filepath.Join(BaseSettingsDir(), target)
}
