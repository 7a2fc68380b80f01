package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/codeforkjeff/museum-provenance/internal/logging"
	"github.com/codeforkjeff/museum-provenance/internal/model"
)

var (
	cfgFile  string
	verbose  bool
	logLevel string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "museum-provenance",
	Short: "Extract structured custody timelines from museum provenance records",
	Long: `museum-provenance parses the free-text provenance records museums
publish for their objects into structured, ordered custody timelines.

Each record is segmented into ownership periods with parties, places,
acquisition methods, footnotes, and fuzzy date ranges, then scored for
documentation completeness with transparent signals.

The completeness index measures how well a record documents custody.
It never asserts authenticity, attribution, or legal title.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Display the version number and build information for museum-provenance.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("museum-provenance v0.3.0")
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.museum-provenance/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "diagnostic log level (debug, info, warn, error)")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads in config file and ENV variables
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error finding home directory: %v\n", err)
			return
		}

		// Search for config in home directory
		viper.AddConfigPath(filepath.Join(home, ".museum-provenance"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	// Read in environment variables that match PROVENANCE_*
	viper.SetEnvPrefix("PROVENANCE")
	viper.AutomaticEnv()

	// If a config file is found, read it in
	if err := viper.ReadInConfig(); err == nil && verbose {
		fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
	}
}

const bannerRule = "═══════════════════════════════════════════════════════════"

// banner writes a section heading bracketed by heavy rules.
func banner(w io.Writer, title string) {
	fmt.Fprintf(w, "\n%s\n  %s\n%s\n\n", bannerRule, title, bannerRule)
}

// loadConfig resolves the effective configuration: defaults, then the
// YAML config file, then PROVENANCE_* environment variables. Command
// flags are applied on top by the callers.
func loadConfig() *model.Config {
	cfg := model.DefaultConfig()

	if path := viper.ConfigFileUsed(); path != "" {
		if data, err := os.ReadFile(path); err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: ignoring malformed config file %s: %v\n", path, err)
				cfg = model.DefaultConfig()
			}
		}
	}

	if v := viper.GetString("log_level"); v != "" {
		cfg.Logging.Level = v
	}
	if v := viper.GetString("cache_dir"); v != "" {
		cfg.Cache.Directory = v
	}
	if v := viper.GetString("lexicon"); v != "" {
		cfg.Extract.LexiconPath = v
	}

	return cfg
}

// newLogger builds the process logger from configuration
func newLogger(cfg *model.Config) zerolog.Logger {
	return logging.New(logging.Config{
		Level:  cfg.Logging.Level,
		Pretty: cfg.Logging.Pretty,
	})
}

// configureLLM fills in the LLM settings shared by parse, harvest and
// batch. API keys only ever come from the environment, and the flag
// path always runs with strict evidence on.
func configureLLM(cfg *model.Config, provider, modelName string) error {
	cfg.LLM.Provider = provider
	cfg.LLM.Model = modelName
	cfg.LLM.StrictEvidence = true

	switch provider {
	case "openai":
		if cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY"); cfg.LLM.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY"); cfg.LLM.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// No key needed; only the server address can move.
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	}

	return nil
}
