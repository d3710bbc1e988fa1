package common

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Storage StorageConfig `yaml:"storage"`
	LLM     LLMConfig     `yaml:"llm"`
	OCR     OCRConfig     `yaml:"ocr"`
	Mirror  MirrorConfig  `yaml:"mirror"`
	Auth    AuthConfig    `yaml:"auth"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// StorageConfig locates the local ledger document
type StorageConfig struct {
	Path string `yaml:"path"`
}

// LLMConfig holds field-extraction service configuration
type LLMConfig struct {
	BaseURL     string        `yaml:"base_url"`
	APIKey      string        `yaml:"api_key"`
	Model       string        `yaml:"model"`
	Temperature float32       `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`
}

// OCRConfig holds on-device recognition configuration
type OCRConfig struct {
	Tesseract   string `yaml:"tesseract"`
	TessdataDir string `yaml:"tessdata_dir"`
	Lang        string `yaml:"lang"`
}

// MirrorConfig holds the optional remote backup configuration
type MirrorConfig struct {
	Enabled    bool   `yaml:"enabled"`
	Endpoint   string `yaml:"endpoint"`
	AccessKey  string `yaml:"access_key"`
	SecretKey  string `yaml:"secret_key"`
	Bucket     string `yaml:"bucket"`
	UseSSL     bool   `yaml:"use_ssl"`
	RootFolder string `yaml:"root_folder"`
}

// AuthConfig holds the optional passcode lock. Auth is disabled when
// PasscodeHash is empty.
type AuthConfig struct {
	PasscodeHash     string `yaml:"passcode_hash"` // bcrypt
	JWTSecret        string `yaml:"jwt_secret"`
	TokenExpireHours int    `yaml:"token_expire_hours"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `yaml:"level"`
}

// LoadConfig reads the YAML config at path, then applies env overrides for
// secrets and fills defaults. A missing file yields a default config.
func LoadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		} else if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// env overrides for secrets
	if v := os.Getenv("BILLERPRO_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("MIRROR_ACCESS_KEY"); v != "" {
		cfg.Mirror.AccessKey = v
	}
	if v := os.Getenv("MIRROR_SECRET_KEY"); v != "" {
		cfg.Mirror.SecretKey = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Storage.Path == "" {
		c.Storage.Path = "./data/billerpro.json"
	}
	if c.LLM.BaseURL == "" {
		c.LLM.BaseURL = "https://api.openai.com/v1"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "gpt-4o-mini"
	}
	if c.LLM.Timeout <= 0 {
		c.LLM.Timeout = 45 * time.Second
	}
	if c.OCR.Tesseract == "" {
		c.OCR.Tesseract = "tesseract"
	}
	if c.OCR.Lang == "" {
		c.OCR.Lang = "eng"
	}
	if c.Mirror.RootFolder == "" {
		c.Mirror.RootFolder = "BillerPRO"
	}
	if c.Auth.TokenExpireHours <= 0 {
		c.Auth.TokenExpireHours = 72
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

// Validate validates the loaded configuration
func (c *Config) Validate() error {
	if c.LLM.APIKey == "" {
		return NewAppError("CONFIG_ERROR", "llm.api_key (or BILLERPRO_API_KEY) is required", ErrValidation)
	}
	if c.Mirror.Enabled {
		if c.Mirror.Endpoint == "" {
			return NewAppError("CONFIG_ERROR", "mirror.endpoint is required when mirror is enabled", ErrValidation)
		}
		if c.Mirror.Bucket == "" {
			return NewAppError("CONFIG_ERROR", "mirror.bucket is required when mirror is enabled", ErrValidation)
		}
	}
	if c.Auth.PasscodeHash != "" && c.Auth.JWTSecret == "" {
		return NewAppError("CONFIG_ERROR", "auth.jwt_secret is required when a passcode is set", ErrValidation)
	}
	return nil
}
