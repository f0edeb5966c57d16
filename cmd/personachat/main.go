// Package main implements the personachat CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"personachat/internal/config"
	"personachat/internal/logging"
)

var (
	// Global flags
	configPath string
	verbose    bool
	apiKey     string
	personaID  string
	modelName  string
	provider   string

	// Loaded by PersistentPreRunE
	cfg *config.Config
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "personachat",
	Short: "Chat with AI personas from your terminal",
	Long: `personachat talks to a hosted language model through a catalog of personas.

Each persona has a system prompt and a greeting. Switching persona starts a new
conversation; changing model, temperature or max tokens rebuilds the client and
restarts it too.

Run without arguments to start the interactive chat interface.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logging.Sync()
	},
	RunE: runChat,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultConfigPath(), "Config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&apiKey, "api-key", "", "API key (or set GEMINI_API_KEY / OPENAI_API_KEY)")
	rootCmd.PersistentFlags().StringVarP(&personaID, "persona", "p", "", "Persona to start with")
	rootCmd.PersistentFlags().StringVarP(&modelName, "model", "m", "", "Model identifier")
	rootCmd.PersistentFlags().StringVar(&provider, "provider", "", "Model provider: gemini or openai")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(personasCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(transcriptsCmd)
	rootCmd.AddCommand(usageCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, applies flag overrides and starts logging.
func loadConfig() error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	applyFlags(loaded)
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := logging.Initialize(loaded.Logging.Options()); err != nil {
		return fmt.Errorf("failed to initialize logging: %w", err)
	}
	cfg = loaded
	logging.Get(logging.CategoryBoot).Info("config loaded from %s provider=%s model=%s", configPath, cfg.LLM.Provider, cfg.Generation.Model)
	return nil
}

// applyFlags layers command-line flags over the file and environment.
func applyFlags(c *config.Config) {
	if apiKey != "" {
		c.LLM.APIKey = apiKey
	}
	if provider != "" {
		c.LLM.Provider = provider
	}
	if modelName != "" {
		c.Generation.Model = modelName
	}
	if personaID != "" {
		c.Personas.Default = personaID
	}
	if verbose {
		c.Logging.DebugMode = true
		c.Logging.Level = "debug"
	}
}
