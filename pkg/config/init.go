package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Transport names accepted by stream.transport
const (
	TransportHTTP   = "http"
	TransportOllama = "ollama"
	TransportReplay = "replay"
)

// GraphNode is one configured node of the agent graph
type GraphNode struct {
	ID   string `mapstructure:"id" yaml:"id"`
	Name string `mapstructure:"name" yaml:"name"`
}

// Settings holds all configuration values
type Settings struct {
	// Logging configuration
	Logging struct {
		LogFile string
		Persist bool
		Level   string
	}

	// Stream transport configuration
	Stream struct {
		Transport  string
		Endpoint   string
		Timeout    time.Duration
		ReadBuffer int
	}

	// Ollama configuration, used by the ollama transport
	Ollama struct {
		URL          string
		DefaultModel string
		NodeName     string
	}

	// Graph describes the nodes shown in the node view
	Graph struct {
		Nodes        []GraphNode
		AutoRegister bool
	}

	Render struct {
		Color bool
	}

	// ConfigFile stores the path to the config file used
	ConfigFile string
}

// Global settings instance
var Global *Settings

// Init initializes the configuration system
func Init(cfgFile string) error {
	Global = &Settings{}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
		Global.ConfigFile = cfgFile
	} else {
		viper.AddConfigPath("./.chattest")
		viper.SetConfigType("yaml")
		viper.SetConfigName("settings")
		Global.ConfigFile = ".chattest/settings.yaml"
	}

	setDefaults()

	viper.AutomaticEnv()

	// OLLAMA_HOST keeps working the way it does for the ollama CLI
	_ = viper.BindEnv("stream.endpoint", "CHATTEST_ENDPOINT")
	_ = viper.BindEnv("ollama.url", "OLLAMA_HOST")
	_ = viper.BindEnv("ollama.default_model", "OLLAMA_DEFAULT_MODEL")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return Load()
}

// setDefaults sets all default configuration values
func setDefaults() {
	viper.SetDefault("logging.log_file", "chattest.log")
	viper.SetDefault("logging.persist", false)
	viper.SetDefault("logging.level", "info")

	viper.SetDefault("stream.transport", TransportHTTP)
	viper.SetDefault("stream.endpoint", "")
	viper.SetDefault("stream.timeout", "0s")
	viper.SetDefault("stream.read_buffer", 4096)

	viper.SetDefault("ollama.url", "http://localhost:11434")
	viper.SetDefault("ollama.default_model", "qwen3:latest")
	viper.SetDefault("ollama.node_name", "llm")

	viper.SetDefault("graph.auto_register", true)

	viper.SetDefault("render.color", true)
}

// Load loads configuration from viper into the Settings struct
func Load() error {
	Global.Logging.LogFile = viper.GetString("logging.log_file")
	Global.Logging.Persist = viper.GetBool("logging.persist")
	Global.Logging.Level = viper.GetString("logging.level")

	Global.Stream.Transport = viper.GetString("stream.transport")
	Global.Stream.Endpoint = viper.GetString("stream.endpoint")
	Global.Stream.Timeout = viper.GetDuration("stream.timeout")
	Global.Stream.ReadBuffer = viper.GetInt("stream.read_buffer")

	Global.Ollama.URL = viper.GetString("ollama.url")
	Global.Ollama.DefaultModel = viper.GetString("ollama.default_model")
	Global.Ollama.NodeName = viper.GetString("ollama.node_name")

	Global.Graph.Nodes = nil
	if err := viper.UnmarshalKey("graph.nodes", &Global.Graph.Nodes); err != nil {
		return fmt.Errorf("invalid graph.nodes: %w", err)
	}
	Global.Graph.AutoRegister = viper.GetBool("graph.auto_register")

	Global.Render.Color = viper.GetBool("render.color")

	return Validate(Global)
}

// Validate checks settings that would otherwise fail later at run time
func Validate(s *Settings) error {
	switch s.Stream.Transport {
	case TransportHTTP, TransportOllama, TransportReplay:
	default:
		return fmt.Errorf("unknown stream.transport %q", s.Stream.Transport)
	}
	if s.Stream.ReadBuffer <= 0 {
		return fmt.Errorf("stream.read_buffer must be positive, got %d", s.Stream.ReadBuffer)
	}
	if s.Stream.Timeout < 0 {
		return fmt.Errorf("stream.timeout must not be negative, got %s", s.Stream.Timeout)
	}
	return nil
}

// WriteDefaultConfig writes the current configuration to disk, preserving existing settings
func WriteDefaultConfig() error {
	if Global.ConfigFile == "" {
		return fmt.Errorf("config file path not set")
	}

	configDir := filepath.Dir(Global.ConfigFile)
	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		if err := os.MkdirAll(configDir, 0755); err != nil {
			return fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if err := viper.WriteConfigAs(Global.ConfigFile); err != nil {
		return fmt.Errorf("error writing config: %w", err)
	}

	return nil
}

// Get returns the global settings instance
func Get() *Settings {
	if Global == nil {
		panic("config not initialized - call Init() first")
	}
	return Global
}
