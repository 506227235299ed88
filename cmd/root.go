package cmd

import (
	"os"
	"time"

	"github.com/AzielCF/az-storage/core/config"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	appConfig *config.Config

	flagPort     string
	flagDebug    bool
	flagBasePath string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "az-storage",
	Short: "Storage quota service",
	Long: `az-storage enforces per-tier upload quotas in front of an S3-compatible bucket
and keeps usage figures cached per user.`,
}

func init() {
	time.Local = time.UTC

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	// Initialize flags first, before any subcommands are added
	initFlags()

	cobra.OnInitialize(initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&flagPort,
		"port", "p",
		"",
		"change port number with --port <number> | example: --port=8080",
	)
	rootCmd.PersistentFlags().BoolVarP(
		&flagDebug,
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().StringVarP(
		&flagBasePath,
		"base-path", "",
		"",
		`base path for subpath deployment --base-path <string> | example: --base-path="/storage"`,
	)
}

// initApp loads the environment configuration; flags win over env values.
func initApp() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}

	flags := rootCmd.PersistentFlags()
	if flags.Changed("port") {
		cfg.App.Port = flagPort
	}
	if flags.Changed("debug") {
		cfg.App.Debug = flagDebug
	}
	if flags.Changed("base-path") {
		cfg.App.BasePath = flagBasePath
	}

	if cfg.App.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}
	logrus.WithFields(cfg.Settings()).Debug("[CONFIG] Loaded configuration")

	appConfig = cfg
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
