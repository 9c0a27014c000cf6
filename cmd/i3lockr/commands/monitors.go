package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"os"
	"text/tabwriter"

	"github.com/bryanchriswhite/i3lockr/internal/capture"
	"github.com/bryanchriswhite/i3lockr/internal/layout"
	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"github.com/spf13/cobra"
)

var monitorsCmd = &cobra.Command{
	Use:   "monitors",
	Short: "List monitors and their indices",
	Long: `List the monitors reported by the capture backend.

The index column is what --ignore-monitors and the order of --position
refer to. Monitors that share a picture (mirrors) are listed separately.`,
	Example: `  # List monitors in table format (default)
  i3lockr monitors

  # List monitors in JSON format
  i3lockr monitors --format json`,
	Args: cobra.NoArgs,
	RunE: runMonitors,
}

var monitorsFormat string

func init() {
	rootCmd.AddCommand(monitorsCmd)

	monitorsCmd.Flags().StringVarP(&monitorsFormat, "format", "f", "table", "output format (table or json)")
}

// monitorInfo is one row of the monitors listing
type monitorInfo struct {
	Index   int    `json:"index"`
	Name    string `json:"name"`
	X       int    `json:"x"`
	Y       int    `json:"y"`
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Ignored bool   `json:"ignored"`
}

func runMonitors(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	router, err := capture.NewRouter(cfg.Backend)
	if err != nil {
		return err
	}
	if err := router.Start(); err != nil {
		return fmt.Errorf("failed to start capture: %w", err)
	}
	defer router.Stop()

	displays, err := router.Displays(context.Background())
	if err != nil {
		return fmt.Errorf("failed to get monitors: %w", err)
	}
	if len(displays) == 0 {
		logger.Warn("Backend reported no monitors")
	}

	return printMonitors(os.Stdout, monitorRows(displays, cfg.IgnoreSet()), monitorsFormat)
}

// monitorRows maps displays the same way a lock run does, so the indices and
// rectangles match what the filters and the icon will see
func monitorRows(displays []layout.Display, ignore map[int]bool) []monitorInfo {
	var union image.Rectangle
	for _, d := range displays {
		union = union.Union(d.Bounds)
	}

	lay := layout.New(union.Size(), union.Min, displays)
	rows := make([]monitorInfo, 0, lay.Len())
	for _, m := range lay.Monitors() {
		rows = append(rows, monitorInfo{
			Index:   m.Index,
			Name:    m.Name,
			X:       m.Rect.Min.X + union.Min.X,
			Y:       m.Rect.Min.Y + union.Min.Y,
			Width:   m.Rect.Dx(),
			Height:  m.Rect.Dy(),
			Ignored: ignore[m.Index],
		})
	}
	return rows
}

func printMonitors(out io.Writer, rows []monitorInfo, format string) error {
	switch format {
	case "json":
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(rows)
	case "table":
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		defer w.Flush()

		fmt.Fprintln(w, "INDEX\tNAME\tGEOMETRY\tIGNORED")
		fmt.Fprintln(w, "-----\t----\t--------\t-------")
		for _, m := range rows {
			ignored := "No"
			if m.Ignored {
				ignored = "Yes"
			}
			fmt.Fprintf(w, "%d\t%s\t%dx%d+%d+%d\t%s\n", m.Index, m.Name, m.Width, m.Height, m.X, m.Y, ignored)
		}
		return nil
	default:
		return fmt.Errorf("unsupported format: %s (use 'table' or 'json')", format)
	}
}
