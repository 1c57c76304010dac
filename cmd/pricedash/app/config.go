package app

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the application configuration loaded from config files,
// environment variables, and .env files.
type Config struct {
	// Global flags
	Verbose bool
	Quiet   bool
	NoColor bool

	// Config file
	ConfigFile string

	// Spreadsheet source
	SpreadsheetID  string
	SheetsAPIKey   string
	PrimaryRange   string
	SecondaryRange string

	// Currency rate source
	FXBaseURL string
	FXAPIKey  string
	RateFrom  string
	RateTo    string

	// Inventory write sink
	InventoryBaseURL      string
	InventoryClientID     string
	InventoryClientSecret string

	// Storefront write sink
	StorefrontBaseURL string
	StorefrontAPIKey  string

	// Text generation
	GeminiAPIKey string
	GeminiModel  string

	// Selection store and pricing
	StorePath         string
	RoundingIncrement float64

	// Logging configuration
	LogLevel  string
	LogFormat string
}

// LoadConfig loads configuration from all sources in order of precedence:
//  1. Command-line flags (handled by cobra)
//  2. Environment variables
//  3. .env files
//  4. Config file (~/.pricedash.yaml)
//  5. Defaults
func LoadConfig() (*Config, error) {
	// Load .env files before Viper env binding.
	loadEnvFiles()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	bindAPIKeys()

	configFile := viper.GetString("config")
	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
			viper.AddConfigPath(".")
			viper.SetConfigType("yaml")
			viper.SetConfigName(".pricedash")
		}
	}

	// Ignore error if no config file is found.
	_ = viper.ReadInConfig()

	config := &Config{
		Verbose: viper.GetBool("verbose"),
		Quiet:   viper.GetBool("quiet"),
		NoColor: viper.GetBool("no-color"),

		ConfigFile: viper.ConfigFileUsed(),

		SpreadsheetID:  viper.GetString("spreadsheet_id"),
		SheetsAPIKey:   viper.GetString("GOOGLE_API_KEY"),
		PrimaryRange:   viper.GetString("primary_range"),
		SecondaryRange: viper.GetString("secondary_range"),

		FXBaseURL: viper.GetString("fx_base_url"),
		FXAPIKey:  viper.GetString("FX_API_KEY"),
		RateFrom:  viper.GetString("rate_from"),
		RateTo:    viper.GetString("rate_to"),

		InventoryBaseURL:      viper.GetString("inventory_base_url"),
		InventoryClientID:     viper.GetString("INVENTORY_CLIENT_ID"),
		InventoryClientSecret: viper.GetString("INVENTORY_CLIENT_SECRET"),

		StorefrontBaseURL: viper.GetString("storefront_base_url"),
		StorefrontAPIKey:  viper.GetString("STOREFRONT_API_KEY"),

		GeminiAPIKey: viper.GetString("GEMINI_API_KEY"),
		GeminiModel:  viper.GetString("gemini_model"),

		StorePath:         viper.GetString("store_path"),
		RoundingIncrement: viper.GetFloat64("rounding_increment"),

		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "auto"),
	}

	// Defaults for the unset tunables.
	if config.PrimaryRange == "" {
		config.PrimaryRange = "Master!A:Z"
	}
	if config.SecondaryRange == "" {
		config.SecondaryRange = "Trade!A:Z"
	}
	if config.RateFrom == "" {
		config.RateFrom = "EUR"
	}
	if config.RateTo == "" {
		config.RateTo = "GBP"
	}
	if config.RoundingIncrement == 0 {
		config.RoundingIncrement = 0.5
	}

	return config, nil
}

// UpdateFromFlags updates config values from parsed command flags. Called
// after cobra parses flags so flag values take precedence over config file
// and env vars.
func (c *Config) UpdateFromFlags(verbose, quiet, noColor bool, logLevel string) {
	c.Verbose = verbose
	c.Quiet = quiet
	c.NoColor = noColor
	if logLevel != "" {
		c.LogLevel = logLevel
	}
}

// loadEnvFiles loads environment variables from .env files.
// .env.local overrides .env.
func loadEnvFiles() {
	envFiles := []string{
		".env",
		".env.local",
	}

	for _, envFile := range envFiles {
		_ = godotenv.Load(envFile)
	}
}

// bindAPIKeys explicitly binds credential environment variables to Viper.
func bindAPIKeys() {
	keys := []string{
		"GOOGLE_API_KEY",
		"FX_API_KEY",
		"INVENTORY_CLIENT_ID",
		"INVENTORY_CLIENT_SECRET",
		"STOREFRONT_API_KEY",
		"GEMINI_API_KEY",
	}

	for _, key := range keys {
		// Binding only fails for an empty key name.
		_ = viper.BindEnv(key)
	}
}

// getEnvOrDefault returns the environment variable value or the default if
// not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
