package shared

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Database struct {
		Driver string `yaml:"driver"` // "sqlite" (default)
		DSN    string `yaml:"dsn"`    // "./codesafe.db"
	} `yaml:"database"`

	Server struct {
		Addr           string        `yaml:"addr"`            // ":8080"
		AllowedOrigins []string      `yaml:"allowed_origins"` // ["*"]
		SessionTTL     time.Duration `yaml:"session_ttl"`     // 12h
		MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	} `yaml:"server"`

	Rules struct {
		Disabled []string `yaml:"disabled"` // rule ids
		Packs    []string `yaml:"packs"`    // YAML rule pack paths
	} `yaml:"rules"`

	Reporting struct {
		OutDir string `yaml:"out_dir"` // "./reports"
	} `yaml:"reporting"`

	Logging struct {
		Format string `yaml:"format"` // "json"|"text"
		Level  string `yaml:"level"`  // "info"|"debug"|"warn"|"error"
	} `yaml:"logging"`

	Enhance struct {
		Endpoint  string        `yaml:"endpoint"`    // proxy URL; empty disables enhancement
		Model     string        `yaml:"model"`       // "openai/gpt-4"
		APIKeyEnv string        `yaml:"api_key_env"` // env var holding the key
		Timeout   time.Duration `yaml:"timeout"`
	} `yaml:"enhance"`
}

func DefaultConfig() Config {
	var c Config
	c.Database.Driver = "sqlite"
	c.Database.DSN = "./codesafe.db"
	c.Server.Addr = ":8080"
	c.Server.AllowedOrigins = []string{"*"}
	c.Server.SessionTTL = 12 * time.Hour
	c.Server.MaxUploadBytes = 2 << 20
	c.Reporting.OutDir = "./reports"
	c.Logging.Format = "json"
	c.Logging.Level = "info"
	c.Enhance.Model = "openai/gpt-4"
	c.Enhance.APIKeyEnv = "OPENROUTER_API_KEY"
	c.Enhance.Timeout = 60 * time.Second
	return c
}

// LoadConfig applies defaults, then the YAML file at path (if any), then
// CODESAFE_* environment overrides. A missing file is not an error; a
// malformed one is.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()
	if path != "" {
		b, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(b, &c); err != nil {
				return c, fmt.Errorf("parse config %s: %w", path, err)
			}
		case !os.IsNotExist(err):
			return c, fmt.Errorf("read config %s: %w", path, err)
		}
	}
	// Env overrides (simple, explicit)
	if v := os.Getenv("CODESAFE_DB_DSN"); v != "" {
		c.Database.DSN = v
	}
	if v := os.Getenv("CODESAFE_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("CODESAFE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("CODESAFE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("CODESAFE_OUT_DIR"); v != "" {
		c.Reporting.OutDir = v
	}
	if v := os.Getenv("CODESAFE_ENHANCE_ENDPOINT"); v != "" {
		c.Enhance.Endpoint = v
	}
	if v := os.Getenv("CODESAFE_ENHANCE_MODEL"); v != "" {
		c.Enhance.Model = v
	}
	if v := os.Getenv("CODESAFE_DISABLED_RULES"); v != "" {
		c.Rules.Disabled = nil
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				c.Rules.Disabled = append(c.Rules.Disabled, id)
			}
		}
	}
	return c, nil
}

// EnhanceAPIKey reads the enhancement key from the configured env var.
func (c Config) EnhanceAPIKey() string {
	if c.Enhance.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(c.Enhance.APIKeyEnv)
}
