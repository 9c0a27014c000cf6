package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/bryanchriswhite/i3lockr/internal/capture"
	"github.com/bryanchriswhite/i3lockr/internal/composite"
	"github.com/bryanchriswhite/i3lockr/internal/config"
	"github.com/bryanchriswhite/i3lockr/internal/effects"
	"github.com/bryanchriswhite/i3lockr/internal/locker"
	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"github.com/bryanchriswhite/i3lockr/internal/pipeline"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var (
	lockVersion   bool
	lockIgnore    []int
	lockPositions []string
)

// viper keys for the scalar lock flags
var lockFlagKeys = map[string]string{
	"blur":         "blur",
	"scale":        "scale",
	"brighten":     "brighten",
	"darken":       "darken",
	"blur-method":  "blur_method",
	"icon":         "icon",
	"invert":       "invert",
	"locker":       "locker.command",
	"image-format": "locker.image_format",
}

func registerLockFlags(flags *pflag.FlagSet) {
	flags.BoolVarP(&lockVersion, "version", "V", false, "print version information")

	flags.UintP("blur", "b", 0, "blur strength, example: 10")
	flags.Float64P("scale", "p", 1.0, "scale factor, increases blur strength by a factor of this, example: 2")
	flags.String("blur-method", "", "blur kernel (box or gaussian)")
	flags.Int("brighten", 0, "brighten the screenshot by [1, 255], example: 15")
	flags.Int("darken", 0, "darken the screenshot by [1, 255], example: 15")

	flags.IntSliceVar(&lockIgnore, "ignore-monitors", nil, "don't overlay an icon on these monitors, useful if you're mirroring displays, example: 0,2")
	flags.StringP("icon", "i", "", "path to icon to overlay on the screenshot")
	flags.Bool("invert", false, "interpret the icon as a mask, inverting masked pixels on the screenshot")
	flags.StringArrayVarP(&lockPositions, "position", "u", nil,
		`icon placement, "x,y" from top-left or "-x,-y" from bottom-right; repeat once per monitor (default center)`)

	flags.String("locker", "", "locker command (default i3lock)")
	flags.String("image-format", "", "how the image is passed to the locker (raw or png)")

	for flag, key := range lockFlagKeys {
		viper.BindPFlag(key, flags.Lookup(flag))
	}
}

// applyLockFlags overrides config values with flags given on the command line
func applyLockFlags(cmd *cobra.Command, cfg *config.Config, lockerArgs []string) {
	if viper.IsSet("blur") {
		cfg.Blur = viper.GetUint("blur")
	}
	if viper.IsSet("scale") {
		cfg.Scale = viper.GetFloat64("scale")
	}
	if viper.IsSet("blur_method") {
		cfg.BlurMethod = viper.GetString("blur_method")
	}
	if viper.IsSet("brighten") {
		v := viper.GetInt("brighten")
		cfg.Brighten = &v
	}
	if viper.IsSet("darken") {
		v := viper.GetInt("darken")
		cfg.Darken = &v
	}
	if viper.IsSet("icon") {
		cfg.Icon = viper.GetString("icon")
	}
	if viper.IsSet("invert") {
		cfg.Invert = viper.GetBool("invert")
	}
	if viper.IsSet("locker.command") {
		cfg.Locker.Command = viper.GetString("locker.command")
	}
	if viper.IsSet("locker.image_format") {
		cfg.Locker.ImageFormat = viper.GetString("locker.image_format")
	}

	// Slices are read from the flags directly: viper would split "x,y" apart
	if cmd.Flags().Changed("ignore-monitors") {
		cfg.IgnoreMonitors = lockIgnore
	}
	if cmd.Flags().Changed("position") {
		cfg.Positions = lockPositions
	}
	if len(lockerArgs) > 0 {
		cfg.Locker.Args = lockerArgs
	}
}

// lockerArgs returns the arguments after --, rejecting stray positionals
func lockerArgs(cmd *cobra.Command, args []string) ([]string, error) {
	dash := cmd.ArgsLenAtDash()
	if dash < 0 {
		if len(args) > 0 {
			return nil, fmt.Errorf("unexpected arguments %q: locker arguments go after --", args)
		}
		return nil, nil
	}
	if dash > 0 {
		return nil, fmt.Errorf("unexpected arguments %q before --", args[:dash])
	}
	return args, nil
}

// buildOptions turns a validated config into pipeline options
func buildOptions(cfg *config.Config) (pipeline.Options, error) {
	method, err := effects.ParseBlurMethod(cfg.BlurMethod)
	if err != nil {
		return pipeline.Options{}, err
	}
	positions, err := cfg.ParsedPositions()
	if err != nil {
		return pipeline.Options{}, err
	}

	opts := pipeline.Options{
		BlurRadius: cfg.Blur,
		Scale:      cfg.Scale,
		BlurMethod: method,
		Brightness: cfg.BrightnessDelta(),
		Positions:  positions,
		Ignore:     cfg.IgnoreSet(),
	}

	if cfg.Icon != "" {
		icon, err := composite.LoadIcon(cfg.Icon, cfg.Invert)
		if err != nil {
			return pipeline.Options{}, err
		}
		opts.Icon = icon
	}

	return opts, nil
}

func runLock(cmd *cobra.Command, args []string) error {
	if lockVersion {
		fmt.Fprintf(os.Stderr, "i3lockr %s (%s)\n", Version, Commit)
		return nil
	}

	extra, err := lockerArgs(cmd, args)
	if err != nil {
		return err
	}

	cfg, path, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyLockFlags(cmd, cfg, extra)

	log := logger.WithComponent("lock")
	log.Debug().
		Str("config", path).
		Interface("settings", cfg).
		Msg("Resolved configuration")

	if err := cfg.Validate(); err != nil {
		return err
	}

	opts, err := buildOptions(cfg)
	if err != nil {
		return err
	}

	format, err := locker.ParseImageFormat(cfg.Locker.ImageFormat)
	if err != nil {
		return err
	}

	router, err := capture.NewRouter(cfg.Backend)
	if err != nil {
		return err
	}
	if err := router.Start(); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}
	defer router.Stop()

	if locker.NoFork(cfg.Locker.Args) {
		log.Debug().Msg("Locker asked not to fork, waiting until unlock")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p := pipeline.New(opts, router, locker.NewI3Lock(cfg.Locker.Command, format, cfg.Locker.Args))
	if err := p.Run(ctx); err != nil {
		return err
	}

	return nil
}
