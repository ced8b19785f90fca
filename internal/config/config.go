package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const DefaultGlamourStyle = "dark"

type AppConfig struct {
	ServerURL   string `yaml:"server_url"`
	SessionDB   string `yaml:"session_db"`
	DownloadDir string `yaml:"download_dir"`
	DebugLog    string `yaml:"debug_log"`
}

// Parse resolves configuration from, in increasing precedence: the optional
// YAML file at ~/.config/inboxpilot/config.yaml, a .env file in the working
// directory, environment variables, and command-line flags.
func Parse() (AppConfig, error) {
	_ = godotenv.Load()

	cfg, err := loadFile()
	if err != nil {
		return cfg, err
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8000"
	}
	if cfg.SessionDB == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return cfg, fmt.Errorf("resolve home directory: %w", err)
		}
		cfg.SessionDB = filepath.Join(home, ".local", "share", "inboxpilot", "session.db")
	}

	if env := os.Getenv("INBOXPILOT_SERVER"); env != "" {
		cfg.ServerURL = env
	}
	if env := os.Getenv("INBOXPILOT_SESSION_DB"); env != "" {
		cfg.SessionDB = env
	}
	if env := os.Getenv("INBOXPILOT_DOWNLOAD_DIR"); env != "" {
		cfg.DownloadDir = env
	}
	if env := os.Getenv("INBOXPILOT_DEBUG_LOG"); env != "" {
		cfg.DebugLog = env
	}

	flag.StringVar(&cfg.ServerURL, "server", cfg.ServerURL, "backend base URL")
	flag.StringVar(&cfg.SessionDB, "session-db", cfg.SessionDB, "path to session cache file")
	flag.StringVar(&cfg.DownloadDir, "download-dir", cfg.DownloadDir, "directory for dataset downloads")
	flag.StringVar(&cfg.DebugLog, "debug-log", cfg.DebugLog, "write debug output to this file")
	flag.Parse()

	return cfg, nil
}

func loadFile() (AppConfig, error) {
	var cfg AppConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, nil
	}
	path := filepath.Join(home, ".config", "inboxpilot", "config.yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}
