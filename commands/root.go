package commands

import (
	"fmt"

	"content-qa-cms/config"
	"content-qa-cms/logger"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	version = "dev"

	itemTypesPath string
	logLevel      string
)

// app is the state shared by every subcommand, filled before it runs.
var app struct {
	cfg         config.Config
	log         zerolog.Logger
	definitions *config.Definitions
}

var rootCmd = &cobra.Command{
	Use:   "content-qa-cms",
	Short: "Content QA CMS - quality assured content items",
	Long: `content-qa-cms manages content items that move through draft,
reviewable and publishable states. Every save is validated against the
rules derived from the item type and recorded as a changeset.`,
	Version:           version,
	PersistentPreRunE: setup,
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
	FParseErrWhitelist: cobra.FParseErrWhitelist{},
}

// Execute runs the command line. It is called once from main.
func Execute() error {
	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		printError(err)
		return err
	}
	return nil
}

func SetVersion(v string) {
	version = v
	rootCmd.Version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&itemTypesPath, "item-types", "", "item type definitions file (defaults to ITEM_TYPES_PATH, then the bundled definitions)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (defaults to LOG_LEVEL)")
}

func setup(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if itemTypesPath != "" {
		cfg.DefinitionsPath = itemTypesPath
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	definitions, err := config.LoadDefinitions(cfg.DefinitionsPath)
	if err != nil {
		return err
	}

	app.cfg = cfg
	app.definitions = definitions
	app.log = logger.New(logger.Config{
		Level:       cfg.LogLevel,
		Service:     "content-qa-cms",
		Environment: cfg.Environment,
		Output:      cmd.ErrOrStderr(),
	})
	return nil
}
