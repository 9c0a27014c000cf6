// Package layout maps physical displays onto rectangles of a captured
// framebuffer.
package layout

import (
	"image"
	"sort"

	"github.com/bryanchriswhite/i3lockr/internal/logger"
)

// Display is one physical output as reported by the capture backend, in
// global screen coordinates. Index is its position in the backend's full
// enumeration, counting outputs that were skipped as disabled.
type Display struct {
	Index  int             `json:"index" yaml:"index"`
	Name   string          `json:"name" yaml:"name"`
	Bounds image.Rectangle `json:"bounds" yaml:"bounds"`
}

// Monitor is a display's rectangle within the captured buffer. Index is the
// display's Index, which is what --ignore-monitors refers to.
type Monitor struct {
	Index int
	Name  string
	Rect  image.Rectangle
}

// Layout is the ordered set of monitors for one run. It is not modified
// after New returns.
type Layout struct {
	bounds   image.Rectangle
	monitors []Monitor
}

// New translates displays by origin (the global coordinate of the buffer's
// top-left pixel) and clips them to a buffer of the given size. Displays that
// end up with no pixels are skipped with a warning. When no display is
// reported at all the whole buffer is treated as a single monitor.
func New(size image.Point, origin image.Point, displays []Display) *Layout {
	log := logger.WithComponent("layout")
	bounds := image.Rectangle{Max: size}

	l := &Layout{bounds: bounds}

	if len(displays) == 0 {
		log.Debug().
			Int("width", size.X).
			Int("height", size.Y).
			Msg("No displays reported, using the whole screenshot as one monitor")
		if !bounds.Empty() {
			l.monitors = []Monitor{{Index: 0, Name: "screen", Rect: bounds}}
		}
		return l
	}

	for _, d := range displays {
		rect := d.Bounds.Sub(origin).Intersect(bounds)
		if rect.Empty() {
			log.Warn().
				Int("monitor", d.Index).
				Str("name", d.Name).
				Str("bounds", d.Bounds.String()).
				Msg("Monitor does not intersect the screenshot, skipping")
			continue
		}

		l.monitors = append(l.monitors, Monitor{Index: d.Index, Name: d.Name, Rect: rect})
		log.Debug().
			Int("monitor", d.Index).
			Str("name", d.Name).
			Str("rect", rect.String()).
			Msg("Monitor mapped")
	}

	return l
}

// Bounds is the rectangle of the whole buffer
func (l *Layout) Bounds() image.Rectangle {
	return l.bounds
}

// Len returns the number of usable monitors
func (l *Layout) Len() int {
	return len(l.monitors)
}

// Monitors returns a copy of the monitors in enumeration order
func (l *Layout) Monitors() []Monitor {
	out := make([]Monitor, len(l.monitors))
	copy(out, l.monitors)
	return out
}

// Targets returns the monitors that should receive the icon, in order
func (l *Layout) Targets(ignore map[int]bool) []Monitor {
	out := make([]Monitor, 0, len(l.monitors))
	for _, m := range l.monitors {
		if ignore[m.Index] {
			continue
		}
		out = append(out, m)
	}
	return out
}

// FilterRegions returns the disjoint rectangles the filters run over.
// Mirrored displays share one region, and partially overlapping displays are
// merged into their bounding box, so no pixel is filtered twice.
func (l *Layout) FilterRegions() []image.Rectangle {
	regions := make([]image.Rectangle, 0, len(l.monitors))
	for _, m := range l.monitors {
		regions = append(regions, m.Rect)
	}

	for merged := true; merged; {
		merged = false
		for i := 0; i < len(regions) && !merged; i++ {
			for j := i + 1; j < len(regions); j++ {
				if !regions[i].Overlaps(regions[j]) {
					continue
				}
				regions[i] = regions[i].Union(regions[j])
				regions = append(regions[:j], regions[j+1:]...)
				merged = true
				break
			}
		}
	}

	sort.SliceStable(regions, func(i, j int) bool {
		if regions[i].Min.Y != regions[j].Min.Y {
			return regions[i].Min.Y < regions[j].Min.Y
		}
		return regions[i].Min.X < regions[j].Min.X
	})
	return regions
}
