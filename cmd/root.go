package cmd

import (
	"errors"
	"log"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobradar"
)

type Config struct {
	DBPath      string         `mapstructure:"db-path"`
	ProfileFile string         `mapstructure:"profile-file"`
	Search      *SearchConfig  `mapstructure:"search"`
	Sources     *SourcesConfig `mapstructure:"sources"`
	AI          *AIConfig      `mapstructure:"ai"`
	Watch       *WatchConfig   `mapstructure:"watch"`
}

type SearchConfig struct {
	Keywords   []string      `mapstructure:"keywords"`
	Locations  []string      `mapstructure:"locations"`
	DailyQuota int           `mapstructure:"daily-quota"`
	BatchSize  int           `mapstructure:"batch-size"`
	BatchDelay time.Duration `mapstructure:"batch-delay"`
	AutoApply  bool          `mapstructure:"auto-apply"`
}

type SourcesConfig struct {
	Feed    *FeedSourceConfig    `mapstructure:"feed"`
	Search  *SearchSourceConfig  `mapstructure:"search"`
	Browser *BrowserSourceConfig `mapstructure:"browser"`
	Sample  bool                 `mapstructure:"sample"`
}

type FeedSourceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type SearchSourceConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type BrowserSourceConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	LoginURL     string `mapstructure:"login-url"`
	SearchURL    string `mapstructure:"search-url"`
	EmailFile    string `mapstructure:"email-file"`
	PasswordFile string `mapstructure:"password-file"`
	MaxSteps     int    `mapstructure:"max-steps"`
	Headless     bool   `mapstructure:"headless"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

type WatchConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobradar discovers job postings, scores them against your profile, and tracks applications",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobradar.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	viper.SetDefault("db-path", app+".db")
	viper.SetDefault("search.daily-quota", 50)
	viper.SetDefault("search.batch-size", 5)
	viper.SetDefault("search.batch-delay", 10*time.Second)
	viper.SetDefault("watch.interval", time.Hour)

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The config file is optional: defaults plus flags are enough to run
	// with the sample source.
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
		config = &Config{}
	}
	return config, nil
}
