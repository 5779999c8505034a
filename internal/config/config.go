package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Default values
	DefaultLogLevel      = "info"
	DefaultMaxSizeMB     = 50
	DefaultDPI           = 300
	DefaultLanguage      = "eng"
	DefaultMinTextLength = 100
)

// Config holds all configuration for the contract parser.
type Config struct {
	// OCR configuration
	Pdftoppm      string
	Tesseract     string
	TesseractLang string
	DPI           int
	PSM           int

	// Acquisition configuration
	MinTextLength int
	MaxSizeMB     int

	// Application configuration
	Version    string
	LogLevel   string
	PrettyJSON bool
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Pdftoppm:      "pdftoppm",
		Tesseract:     "tesseract",
		TesseractLang: DefaultLanguage,
		DPI:           DefaultDPI,
		PSM:           0,
		MinTextLength: DefaultMinTextLength,
		MaxSizeMB:     DefaultMaxSizeMB,
		Version:       "1.0.0",
		LogLevel:      DefaultLogLevel,
		PrettyJSON:    false,
	}
}

// LoadFromFlags parses command line flags and returns a configuration.
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	pflag.Parse()

	populateConfigFromViper(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults.
func setupViperEnvironment(cfg *Config) {
	viper.SetEnvPrefix("CONTRACT_PARSER")
	viper.AutomaticEnv()

	viper.SetDefault("pdftoppm", cfg.Pdftoppm)
	viper.SetDefault("tesseract", cfg.Tesseract)
	viper.SetDefault("lang", cfg.TesseractLang)
	viper.SetDefault("dpi", cfg.DPI)
	viper.SetDefault("psm", cfg.PSM)
	viper.SetDefault("mintextlength", cfg.MinTextLength)
	viper.SetDefault("maxsizemb", cfg.MaxSizeMB)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("pretty", cfg.PrettyJSON)
}

// defineCommandLineFlags sets up all command line flags.
func defineCommandLineFlags(cfg *Config) {
	pflag.String("pdftoppm", cfg.Pdftoppm, "Path to the pdftoppm binary")
	pflag.String("tesseract", cfg.Tesseract, "Path to the tesseract binary")
	pflag.String("lang", cfg.TesseractLang, "Tesseract language")
	pflag.Int("dpi", cfg.DPI, "Rasterization DPI for scanned pages")
	pflag.Int("psm", cfg.PSM, "Tesseract page segmentation mode (0 = default)")
	pflag.Int("mintextlength", cfg.MinTextLength, "Embedded text length below which a page is OCRed")
	pflag.Int("maxsizemb", cfg.MaxSizeMB, "Maximum PDF file size in MB")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Bool("pretty", cfg.PrettyJSON, "Pretty-print the JSON result")
}

// bindFlagsToViper binds command line flags to viper configuration.
func bindFlagsToViper() {
	_ = viper.BindPFlag("pdftoppm", pflag.Lookup("pdftoppm"))
	_ = viper.BindPFlag("tesseract", pflag.Lookup("tesseract"))
	_ = viper.BindPFlag("lang", pflag.Lookup("lang"))
	_ = viper.BindPFlag("dpi", pflag.Lookup("dpi"))
	_ = viper.BindPFlag("psm", pflag.Lookup("psm"))
	_ = viper.BindPFlag("mintextlength", pflag.Lookup("mintextlength"))
	_ = viper.BindPFlag("maxsizemb", pflag.Lookup("maxsizemb"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("pretty", pflag.Lookup("pretty"))
}

// setupUsageMessage configures the custom usage message.
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s [options] <contract.pdf>:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nContract Intelligence Parser - extracts structured fields from contract and invoice PDFs\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_PARSER_PDFTOPPM       pdftoppm binary\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_PARSER_TESSERACT      tesseract binary\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_PARSER_LANG           tesseract language\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_PARSER_DPI            rasterization DPI\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_PARSER_LOGLEVEL       log level\n")
		fmt.Fprintf(os.Stderr, "  CONTRACT_PARSER_MAXSIZEMB      maximum file size\n")
	}
}

// populateConfigFromViper fills the config struct with values from viper.
func populateConfigFromViper(cfg *Config) {
	cfg.Pdftoppm = viper.GetString("pdftoppm")
	cfg.Tesseract = viper.GetString("tesseract")
	cfg.TesseractLang = viper.GetString("lang")
	cfg.DPI = viper.GetInt("dpi")
	cfg.PSM = viper.GetInt("psm")
	cfg.MinTextLength = viper.GetInt("mintextlength")
	cfg.MaxSizeMB = viper.GetInt("maxsizemb")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.PrettyJSON = viper.GetBool("pretty")
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Pdftoppm == "" {
		return errors.New("pdftoppm binary cannot be empty")
	}
	if c.Tesseract == "" {
		return errors.New("tesseract binary cannot be empty")
	}
	if c.DPI < 72 || c.DPI > 1200 {
		return errors.New("dpi must be between 72 and 1200")
	}
	if c.MinTextLength <= 0 {
		return errors.New("minimum text length must be positive")
	}
	if c.MaxSizeMB <= 0 {
		return errors.New("maximum file size must be positive")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// IsDebug returns true if debug logging is enabled.
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}
