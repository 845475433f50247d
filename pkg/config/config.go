package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

var GlobalConfig *Config

// Config global configuration
type Config struct {
	Server ServerConfig `yaml:"server"`
	Store  StoreConfig  `yaml:"store"`
	MySQL  MySQLConfig  `yaml:"mysql"`
	Redis  RedisConfig  `yaml:"redis"`
	Logger LoggerConfig `yaml:"logger"`
	Router RouterConfig `yaml:"router"`
}

// ServerConfig server configuration
type ServerConfig struct {
	Port   int    `yaml:"port"`
	Mode   string `yaml:"mode"`    // debug, release
	APIKey string `yaml:"api_key"` // API key for the admin routes (optional, if empty, auth is disabled)
}

// StoreConfig store backend selection
type StoreConfig struct {
	Driver string `yaml:"driver"` // mysql, memory
}

// MySQLConfig MySQL configuration
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// RedisConfig Redis configuration for the assignment cache
type RedisConfig struct {
	Enabled      bool   `yaml:"enabled"`
	Addr         string `yaml:"addr"`
	Password     string `yaml:"password"`
	DB           int    `yaml:"db"`
	SchedulerTTL int    `yaml:"scheduler_ttl"` // scheduler cache TTL (seconds), assignments never expire
}

// LoggerConfig logger configuration
type LoggerConfig struct {
	Level  string           `yaml:"level"`  // debug, info, warn, error
	Output string           `yaml:"output"` // console, file, both
	File   LoggerFileConfig `yaml:"file"`
}

// LoggerFileConfig logger file configuration
type LoggerFileConfig struct {
	Path string `yaml:"path"`
}

// RouterConfig routing engine configuration
type RouterConfig struct {
	// Mode enables the routing engine when set to "router". In any other
	// mode every routing entry point reports "not applicable".
	Mode string `yaml:"mode"`
	// SchedulerList is the path of the declarative scheduler list that is
	// reconciled into the registry at startup.
	SchedulerList string `yaml:"scheduler_list"`
}

// Init initializes configuration
func Init() error {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return err
	}

	GlobalConfig = &cfg
	return nil
}
