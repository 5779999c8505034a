package config

import (
	"os"
	"testing"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Helper function to reset pflag.CommandLine for testing
func resetFlags() {
	pflag.CommandLine = pflag.NewFlagSet(os.Args[0], pflag.ExitOnError)
	viper.Reset()
}

// Helper function to set os.Args for testing
func setArgs(args []string) {
	os.Args = args
}

// Helper function to clear environment variables
func clearEnvVars() {
	os.Unsetenv("CONTRACT_PARSER_PDFTOPPM")
	os.Unsetenv("CONTRACT_PARSER_TESSERACT")
	os.Unsetenv("CONTRACT_PARSER_LANG")
	os.Unsetenv("CONTRACT_PARSER_DPI")
	os.Unsetenv("CONTRACT_PARSER_PSM")
	os.Unsetenv("CONTRACT_PARSER_MINTEXTLENGTH")
	os.Unsetenv("CONTRACT_PARSER_MAXSIZEMB")
	os.Unsetenv("CONTRACT_PARSER_LOGLEVEL")
	os.Unsetenv("CONTRACT_PARSER_PRETTY")
}

func TestLoadFromFlags_DefaultConfig(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"contract-parser"})
	resetFlags()
	clearEnvVars()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.Pdftoppm != "pdftoppm" {
		t.Errorf("LoadFromFlags() Pdftoppm = %v, want %v", cfg.Pdftoppm, "pdftoppm")
	}
	if cfg.Tesseract != "tesseract" {
		t.Errorf("LoadFromFlags() Tesseract = %v, want %v", cfg.Tesseract, "tesseract")
	}
	if cfg.TesseractLang != DefaultLanguage {
		t.Errorf("LoadFromFlags() TesseractLang = %v, want %v", cfg.TesseractLang, DefaultLanguage)
	}
	if cfg.DPI != DefaultDPI {
		t.Errorf("LoadFromFlags() DPI = %v, want %v", cfg.DPI, DefaultDPI)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.MaxSizeMB != DefaultMaxSizeMB {
		t.Errorf("LoadFromFlags() MaxSizeMB = %v, want %v", cfg.MaxSizeMB, DefaultMaxSizeMB)
	}
	if cfg.PrettyJSON {
		t.Error("LoadFromFlags() PrettyJSON should be off by default")
	}
}

func TestLoadFromFlags_ValidFlags(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantLang   string
		wantDPI    int
		wantPSM    int
		wantLevel  string
		wantPretty bool
	}{
		{
			name:      "custom language",
			args:      []string{"contract-parser", "--lang=deu"},
			wantLang:  "deu",
			wantDPI:   DefaultDPI,
			wantLevel: DefaultLogLevel,
		},
		{
			name:      "custom dpi and psm",
			args:      []string{"contract-parser", "--dpi=150", "--psm=6"},
			wantLang:  DefaultLanguage,
			wantDPI:   150,
			wantPSM:   6,
			wantLevel: DefaultLogLevel,
		},
		{
			name:      "debug logging",
			args:      []string{"contract-parser", "--loglevel=debug"},
			wantLang:  DefaultLanguage,
			wantDPI:   DefaultDPI,
			wantLevel: "debug",
		},
		{
			name:       "pretty output",
			args:       []string{"contract-parser", "--pretty"},
			wantLang:   DefaultLanguage,
			wantDPI:    DefaultDPI,
			wantLevel:  DefaultLogLevel,
			wantPretty: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			originalArgs := os.Args
			defer func() {
				os.Args = originalArgs
				resetFlags()
				clearEnvVars()
			}()

			setArgs(tt.args)
			resetFlags()
			clearEnvVars()

			cfg, err := LoadFromFlags()
			if err != nil {
				t.Fatalf("LoadFromFlags() unexpected error: %v", err)
			}

			if cfg.TesseractLang != tt.wantLang {
				t.Errorf("LoadFromFlags() TesseractLang = %v, want %v", cfg.TesseractLang, tt.wantLang)
			}
			if cfg.DPI != tt.wantDPI {
				t.Errorf("LoadFromFlags() DPI = %v, want %v", cfg.DPI, tt.wantDPI)
			}
			if cfg.PSM != tt.wantPSM {
				t.Errorf("LoadFromFlags() PSM = %v, want %v", cfg.PSM, tt.wantPSM)
			}
			if cfg.LogLevel != tt.wantLevel {
				t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, tt.wantLevel)
			}
			if cfg.PrettyJSON != tt.wantPretty {
				t.Errorf("LoadFromFlags() PrettyJSON = %v, want %v", cfg.PrettyJSON, tt.wantPretty)
			}
		})
	}
}

func TestLoadFromFlags_EnvironmentVariables(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Setenv("CONTRACT_PARSER_LANG", "fra")
	os.Setenv("CONTRACT_PARSER_DPI", "200")
	os.Setenv("CONTRACT_PARSER_LOGLEVEL", "warn")
	os.Setenv("CONTRACT_PARSER_MAXSIZEMB", "25")

	setArgs([]string{"contract-parser"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.TesseractLang != "fra" {
		t.Errorf("LoadFromFlags() TesseractLang = %v, want %v", cfg.TesseractLang, "fra")
	}
	if cfg.DPI != 200 {
		t.Errorf("LoadFromFlags() DPI = %v, want %v", cfg.DPI, 200)
	}
	if cfg.LogLevel != "warn" {
		t.Errorf("LoadFromFlags() LogLevel = %v, want %v", cfg.LogLevel, "warn")
	}
	if cfg.MaxSizeMB != 25 {
		t.Errorf("LoadFromFlags() MaxSizeMB = %v, want %v", cfg.MaxSizeMB, 25)
	}
}

func TestLoadFromFlags_FlagOverridesEnvironment(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	os.Setenv("CONTRACT_PARSER_LANG", "fra")
	os.Setenv("CONTRACT_PARSER_DPI", "200")

	setArgs([]string{"contract-parser", "--lang=deu", "--dpi=600"})
	resetFlags()

	cfg, err := LoadFromFlags()
	if err != nil {
		t.Fatalf("LoadFromFlags() unexpected error: %v", err)
	}

	if cfg.TesseractLang != "deu" {
		t.Errorf("LoadFromFlags() TesseractLang = %v, want %v (should override env)", cfg.TesseractLang, "deu")
	}
	if cfg.DPI != 600 {
		t.Errorf("LoadFromFlags() DPI = %v, want %v (should override env)", cfg.DPI, 600)
	}
}

func TestLoadFromFlags_InvalidDPI(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"contract-parser", "--dpi=10"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid dpi")
	}
	if err != nil && !containsString(err.Error(), "dpi must be between 72 and 1200") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid dpi", err)
	}
}

func TestLoadFromFlags_InvalidLogLevel(t *testing.T) {
	originalArgs := os.Args
	defer func() {
		os.Args = originalArgs
		resetFlags()
		clearEnvVars()
	}()

	setArgs([]string{"contract-parser", "--loglevel=invalid"})
	resetFlags()
	clearEnvVars()

	_, err := LoadFromFlags()
	if err == nil {
		t.Error("LoadFromFlags() expected error for invalid log level")
	}
	if err != nil && !containsString(err.Error(), "invalid log level") {
		t.Errorf("LoadFromFlags() error = %v, want error about invalid log level", err)
	}
}

// Helper function to check if a string contains a substring
func containsString(s, substr string) bool {
	for i := 0; i+len(substr) <= len(s); i++ {
		if s[i:i+len(substr)] == substr {
			return true
		}
	}
	return false
}
