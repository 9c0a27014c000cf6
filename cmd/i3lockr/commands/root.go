package commands

import (
	"fmt"
	"os"

	"github.com/bryanchriswhite/i3lockr/internal/config"
	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Set at build time with -ldflags "-X .../commands.Version=..."
var (
	Version = "dev"
	Commit  = "unknown"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "i3lockr [flags] [-- i3lock arguments]",
		Short: "i3lockr - Distort a screenshot and run i3lock",
		Long: `i3lockr takes a screenshot, blurs and brightens or darkens it, optionally
overlays an icon on every monitor, and hands the result to i3lock as the
lock screen background.

Features:
  • Per-monitor blur that never smears one display into another
  • Brighten or darken the blurred image
  • Icon overlay, centered or placed per monitor, or used as an inverting mask
  • Skip the icon on mirrored monitors with --ignore-monitors
  • Everything after -- is passed to i3lock`,
		Example: `  # Blur and darken
  i3lockr --blur 25 --darken 30

  # Stronger blur on a HiDPI screen, icon 20px from the bottom-right corner
  i3lockr -b 15 -p 2 --icon ~/lock.png --position -20,-20

  # Invert pixels under the icon, keep i3lock in the foreground
  i3lockr -b 10 --icon ~/lock.png --invert -- --nofork --ignore-empty-password`,
		Args:              cobra.ArbitraryArgs,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: initLogging,
		RunE:              runLock,
	}
)

// Short option names accepted as aliases
var flagAliases = map[string]string{
	"bright": "brighten",
	"dark":   "darken",
	"ignore": "ignore-monitors",
	"pos":    "position",
	"rad":    "blur",
	"verb":   "verbose",
	"debug":  "verbose",
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/i3lockr/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "print how long each step takes, among other things")
	rootCmd.PersistentFlags().String("backend", "", "capture backend (auto, x11 or screenshot)")

	rootCmd.SetGlobalNormalizationFunc(normalizeFlag)

	// Bind flags to viper
	viper.BindPFlag("log_level", rootCmd.PersistentFlags().Lookup("log-level"))
	viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("backend", rootCmd.PersistentFlags().Lookup("backend"))

	registerLockFlags(rootCmd.Flags())
}

func normalizeFlag(f *pflag.FlagSet, name string) pflag.NormalizedName {
	if canonical, ok := flagAliases[name]; ok {
		name = canonical
	}
	return pflag.NormalizedName(name)
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}
}

// loadConfig reads the config file and applies the global flag overrides
func loadConfig() (*config.Config, string, error) {
	cfg, path, err := config.Load(GetConfigFile())
	if err != nil {
		return nil, "", err
	}

	if viper.IsSet("log_level") {
		if level := viper.GetString("log_level"); level != "" {
			cfg.LogLevel = level
		}
	}
	if viper.IsSet("verbose") {
		cfg.Verbose = viper.GetBool("verbose")
	}
	if viper.IsSet("backend") {
		if backend := viper.GetString("backend"); backend != "" {
			cfg.Backend = backend
		}
	}

	return cfg, path, nil
}

func initLogging(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		// Reported again, with context, by the command itself
		logger.Init("warn", false)
		return nil
	}

	if cfg.Verbose {
		logger.Init("debug", true)
	} else {
		logger.Init(cfg.LogLevel, false)
	}
	logger.Debug("Logging initialized")
	return nil
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if config.IsValidationError(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

// GetConfigFile returns the config file path
func GetConfigFile() string {
	return cfgFile
}
