// Package config holds the runtime settings shared by the CLI and the web server.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/lehigh-university-libraries/jpg2pdf/internal/conversion"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/images"
	"github.com/lehigh-university-libraries/jpg2pdf/internal/pdf"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to environment overrides, e.g. JPG2PDF_SERVER_PORT
const EnvPrefix = "JPG2PDF"

type ServerConfig struct {
	// Port the web server listens on
	Port string `mapstructure:"port"`

	// TempDir is the root for per-request workspaces. It is removed on shutdown.
	TempDir string `mapstructure:"temp_dir"`

	// MaxUploadBytes caps the size of a /convert request body
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes"`

	// RateLimit is the number of requests per minute allowed per client IP (0 disables)
	RateLimit int `mapstructure:"rate_limit"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type ConversionConfig struct {
	// DPI is the resolution recorded for every page
	DPI int `mapstructure:"dpi"`

	// OnDecodeError is "skip" or "fail"
	OnDecodeError string `mapstructure:"on_decode_error"`

	// Background is the #rrggbb color transparent pixels are flattened onto
	Background string `mapstructure:"background"`
}

type CollectorConfig struct {
	// Extensions picked up when scanning a directory
	Extensions []string `mapstructure:"extensions"`
}

type UploadConfig struct {
	// AllowedTypes lists accepted upload content types; "image/*" matches any image
	AllowedTypes []string `mapstructure:"allowed_types"`
}

type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Conversion ConversionConfig `mapstructure:"conversion"`
	Collector  CollectorConfig  `mapstructure:"collector"`
	Upload     UploadConfig     `mapstructure:"upload"`
}

// SetDefaults registers the default value of every key on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8000")
	v.SetDefault("server.temp_dir", filepath.Join(os.TempDir(), "jpg2pdf"))
	v.SetDefault("server.max_upload_bytes", 50*1024*1024)
	v.SetDefault("server.rate_limit", 60)
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("conversion.dpi", 100)
	v.SetDefault("conversion.on_decode_error", string(conversion.PolicySkip))
	v.SetDefault("conversion.background", "#ffffff")

	v.SetDefault("collector.extensions", []string{".jpg", ".jpeg"})
	v.SetDefault("upload.allowed_types", []string{"image/*"})
}

// NewViper returns a viper instance with defaults and environment overrides wired
func NewViper() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load decodes and validates the configuration held by v
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Conversion.DPI <= 0 {
		return fmt.Errorf("conversion.dpi must be positive, got %d", c.Conversion.DPI)
	}

	if _, err := conversion.ParsePolicy(c.Conversion.OnDecodeError); err != nil {
		return fmt.Errorf("conversion.on_decode_error: %w", err)
	}

	if _, err := images.ParseHexColor(c.Conversion.Background); err != nil {
		return fmt.Errorf("conversion.background: %w", err)
	}

	if len(c.Collector.Extensions) == 0 {
		return fmt.Errorf("collector.extensions must not be empty")
	}

	if len(c.Upload.AllowedTypes) == 0 {
		return fmt.Errorf("upload.allowed_types must not be empty")
	}

	if c.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.max_upload_bytes must be positive")
	}

	if c.Server.RateLimit < 0 {
		return fmt.Errorf("server.rate_limit must not be negative")
	}

	return nil
}

// Policy returns the parsed decode error policy
func (c *Config) Policy() conversion.Policy {
	p, _ := conversion.ParsePolicy(c.Conversion.OnDecodeError)
	return p
}

// NewConversionService builds the normalizer, assembler and service described by c
func (c *Config) NewConversionService() (*conversion.Service, error) {
	background, err := images.ParseHexColor(c.Conversion.Background)
	if err != nil {
		return nil, err
	}

	normalizer := images.NewNormalizer(background)
	assembler := pdf.NewAssembler(c.Conversion.DPI, normalizer)
	return conversion.NewService(normalizer, assembler, c.Policy()), nil
}
