package cmd

import (
	"errors"
	"fmt"
	"log"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobsift"
)

type Config struct {
	Resume   string          `mapstructure:"resume" validate:"required"`
	Search   *SearchConfig   `mapstructure:"search" validate:"required"`
	Scraper  *ScraperConfig  `mapstructure:"scraper"`
	AI       *AIConfig       `mapstructure:"ai"`
	Export   *ExportConfig   `mapstructure:"export"`
	Telegram *TelegramConfig `mapstructure:"telegram"`
}

type SearchConfig struct {
	Keywords         string   `mapstructure:"keywords" validate:"required"`
	Location         string   `mapstructure:"location" validate:"required"`
	Distance         int      `mapstructure:"distance" validate:"min=0,max=100"`
	PostedWithin     string   `mapstructure:"posted-within" validate:"omitempty,oneof=24h week month any"`
	IncludeCompanies []string `mapstructure:"include-companies"`
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
}

type ScraperConfig struct {
	MaxPostings      int    `mapstructure:"max-postings" validate:"omitempty,min=1"`
	UserAgent        string `mapstructure:"user-agent"`
	BrowserRendering bool   `mapstructure:"browser-rendering"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider" validate:"omitempty,oneof=gemini"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key" json:"-"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxRetries   int    `mapstructure:"max-retries" validate:"min=0,max=10"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type ExportConfig struct {
	File string `mapstructure:"file"`
}

type TelegramConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	TokenFile string `mapstructure:"token-file"`
	ChatID    string `mapstructure:"chat-id"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobsift is a cli for searching job postings and scoring them against your resume",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobsift.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	viper.SetDefault("search.keywords", "Product Manager")
	viper.SetDefault("search.location", "McLean, VA")
	viper.SetDefault("search.distance", 25)
	viper.SetDefault("search.posted-within", "24h")
	viper.SetDefault("scraper.max-postings", 3000)
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	// A local .env file is optional and never overrides existing variables.
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// Flags and defaults can carry a run on their own, so only an explicitly
	// requested config file has to exist.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	if config == nil {
		return nil, errors.New("configuration is empty")
	}

	if err := validator.New().Struct(config); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return config, nil
}

func (c *Config) scraper() *ScraperConfig {
	if c.Scraper == nil {
		return &ScraperConfig{}
	}
	return c.Scraper
}

func (c *Config) gemini() *GeminiConfig {
	if c.AI == nil || c.AI.Gemini == nil {
		return &GeminiConfig{}
	}
	return c.AI.Gemini
}

func (c *Config) exportFile() string {
	if c.Export == nil {
		return ""
	}
	return c.Export.File
}

func (c *Config) telegramEnabled() bool {
	return c.Telegram != nil && c.Telegram.Enabled
}
