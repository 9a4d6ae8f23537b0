package config

import (
	"fmt"
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var (
	appOnce   sync.Once
	appConfig *AppConfig
)

// AppConfig carries the process-level paths and server settings. Runtime
// user preferences live in the JSON settings store, not here.
type AppConfig struct {
	ListenAddr   string `yaml:"listen_addr"`
	TemplatesDir string `yaml:"templates_dir"`
	SettingsFile string `yaml:"settings_file"`
	LogLevel     string `yaml:"log_level"`
	LogEncoding  string `yaml:"log_encoding"`
	LogFile      string `yaml:"log_file"`
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetAppConfig loads the configuration once from .env / environment
// variables with sensible defaults.
func GetAppConfig() *AppConfig {
	appOnce.Do(func() {
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found, falling back to environment variables")
		}

		appConfig = &AppConfig{
			ListenAddr:   getenv("DOCPREP_LISTEN_ADDR", ":8080"),
			TemplatesDir: getenv("DOCPREP_TEMPLATES_DIR", "templates"),
			SettingsFile: getenv("DOCPREP_SETTINGS_FILE", "settings.json"),
			LogLevel:     getenv("DOCPREP_LOG_LEVEL", "info"),
			LogEncoding:  getenv("DOCPREP_LOG_ENCODING", "console"),
			LogFile:      os.Getenv("DOCPREP_LOG_FILE"),
		}
	})
	return appConfig
}

// LoadFile overlays a YAML config file on top of the environment-derived
// configuration. Fields absent from the file keep their current values.
func LoadFile(path string) (*AppConfig, error) {
	cfg := *GetAppConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}
