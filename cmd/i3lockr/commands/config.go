package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bryanchriswhite/i3lockr/internal/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect i3lockr configuration",
	Long: `Inspect the i3lockr configuration file.

i3lockr only reads its configuration; edit the file by hand. Command line
flags always override values from the file.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Long:  `Display the configuration after defaults, the config file and global flags are applied.`,
	Example: `  # Show configuration as YAML (default)
  i3lockr config show

  # Show configuration as JSON
  i3lockr config show --format json`,
	Args: cobra.NoArgs,
	RunE: runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path of the configuration file that is read, whether or not it exists.`,
	Args:  cobra.NoArgs,
	RunE:  runConfigPath,
}

var formatFlag string

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)

	configShowCmd.Flags().StringVarP(&formatFlag, "format", "f", "yaml", "output format (yaml or json)")
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	return writeConfig(os.Stdout, cfg, formatFlag)
}

func writeConfig(out io.Writer, cfg *config.Config, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(cfg)
	case "yaml":
		encoder := yaml.NewEncoder(out)
		encoder.SetIndent(2)
		defer encoder.Close()
		return encoder.Encode(cfg)
	default:
		return fmt.Errorf("unsupported format: %s (use 'yaml' or 'json')", format)
	}
}

func runConfigPath(cmd *cobra.Command, args []string) error {
	path := GetConfigFile()
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}

	fmt.Println(path)
	return nil
}
