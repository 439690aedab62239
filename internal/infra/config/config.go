package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Log        LogConfig        `yaml:"log"`
	HTTPClient HTTPClientConfig `yaml:"http_client"`
	Limiter    LimiterConfig    `yaml:"limiter"`
	ImageGen   ImageGenConfig   `yaml:"image_gen"`
	Storage    StorageConfig    `yaml:"storage"`
	Export     ExportConfig     `yaml:"export"`
	Studio     StudioConfig     `yaml:"studio"`
}

type ServerConfig struct {
	Addr                string   `yaml:"addr"`
	ReadTimeoutSeconds  int      `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int      `yaml:"write_timeout_seconds"`
	AllowedOrigins      []string `yaml:"allowed_origins"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type HTTPClientConfig struct {
	TimeoutSeconds int `yaml:"timeout_seconds"`
	MaxRetries     int `yaml:"max_retries"`
}

type LimiterConfig struct {
	MaxConcurrent int     `yaml:"max_concurrent"`
	RatePerSecond float64 `yaml:"rate_per_second"`
}

// ImageGenConfig selects the Gemini backend. Backend is "sdk" or "rest".
type ImageGenConfig struct {
	Backend string `yaml:"backend"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// StorageConfig selects where exports are persisted: "none", "local" or "s3".
type StorageConfig struct {
	Type     string   `yaml:"type"`
	BasePath string   `yaml:"base_path"`
	BaseURL  string   `yaml:"base_url"`
	S3       S3Config `yaml:"s3"`
}

type S3Config struct {
	Endpoint        string `yaml:"endpoint"`
	Region          string `yaml:"region"`
	Bucket          string `yaml:"bucket"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicURL       string `yaml:"public_url"`
	PathStyle       bool   `yaml:"path_style"`
	Prefix          string `yaml:"prefix"`
}

type ExportConfig struct {
	Brand string `yaml:"brand"`
}

type StudioConfig struct {
	HistoryCapacity int    `yaml:"history_capacity"`
	DefaultTitle    string `yaml:"default_title"`
}

func Load() (*Config, error) {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	cfg := defaultConfig()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return applyEnvOverrides(cfg), nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return applyEnvOverrides(cfg), nil
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:                ":8080",
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 300,
			AllowedOrigins:      []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		HTTPClient: HTTPClientConfig{
			TimeoutSeconds: 120,
			MaxRetries:     2,
		},
		Limiter: LimiterConfig{
			MaxConcurrent: 4,
			RatePerSecond: 2,
		},
		ImageGen: ImageGenConfig{
			Backend: "sdk",
			Model:   "gemini-2.5-flash-image",
			BaseURL: "https://generativelanguage.googleapis.com/v1beta",
		},
		Storage: StorageConfig{
			Type:     "none",
			BasePath: "./output",
			BaseURL:  "/files",
		},
		Export: ExportConfig{
			Brand: "Pulmao-Livre",
		},
		Studio: StudioConfig{
			HistoryCapacity: 20,
			DefaultTitle:    "Método Pulmão Livre",
		},
	}
}

func applyEnvOverrides(cfg *Config) *Config {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
	if v := os.Getenv("IMAGEGEN_BACKEND"); v != "" {
		cfg.ImageGen.Backend = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.ImageGen.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.ImageGen.Model = v
	}
	if v := os.Getenv("STORAGE_TYPE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("STORAGE_BASE_PATH"); v != "" {
		cfg.Storage.BasePath = v
	}
	if v := os.Getenv("STORAGE_BASE_URL"); v != "" {
		cfg.Storage.BaseURL = v
	}
	if v := os.Getenv("S3_ENDPOINT"); v != "" {
		cfg.Storage.S3.Endpoint = v
	}
	if v := os.Getenv("S3_REGION"); v != "" {
		cfg.Storage.S3.Region = v
	}
	if v := os.Getenv("S3_BUCKET"); v != "" {
		cfg.Storage.S3.Bucket = v
	}
	if v := os.Getenv("S3_ACCESS_KEY_ID"); v != "" {
		cfg.Storage.S3.AccessKeyID = v
	}
	if v := os.Getenv("S3_SECRET_ACCESS_KEY"); v != "" {
		cfg.Storage.S3.SecretAccessKey = v
	}
	if v := os.Getenv("S3_PUBLIC_URL"); v != "" {
		cfg.Storage.S3.PublicURL = v
	}
	if v := os.Getenv("S3_PATH_STYLE"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.Storage.S3.PathStyle = b
		}
	}
	if v := os.Getenv("EXPORT_BRAND"); v != "" {
		cfg.Export.Brand = v
	}
	return cfg
}

// KeySource returns a function that resolves the API key when a call is made,
// so a key exported after startup is still picked up.
func (c ImageGenConfig) KeySource() func() string {
	fallback := c.APIKey
	return func() string {
		if v := os.Getenv("GEMINI_API_KEY"); v != "" {
			return v
		}
		return fallback
	}
}
