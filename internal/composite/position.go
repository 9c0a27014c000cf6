package composite

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Position places an icon inside a monitor. Resolve returns the icon's
// top-left corner in buffer coordinates.
type Position interface {
	Resolve(monitor image.Rectangle, icon image.Point) image.Point
	String() string
}

// Center puts the icon in the middle of the monitor. Both halves are
// truncated separately, so odd sizes round toward the bottom-right.
type Center struct{}

func (Center) Resolve(m image.Rectangle, icon image.Point) image.Point {
	return image.Pt(
		m.Min.X+m.Dx()/2-icon.X/2,
		m.Min.Y+m.Dy()/2-icon.Y/2,
	)
}

func (Center) String() string { return "center" }

// Absolute offsets the icon's top-left corner from the monitor's top-left
type Absolute struct {
	X, Y int
}

func (p Absolute) Resolve(m image.Rectangle, _ image.Point) image.Point {
	return m.Min.Add(image.Pt(p.X, p.Y))
}

func (p Absolute) String() string { return fmt.Sprintf("%d,%d", p.X, p.Y) }

// Relative offsets the icon's bottom-right corner from the monitor's
// bottom-right. DX and DY are zero or negative.
type Relative struct {
	DX, DY int
}

func (p Relative) Resolve(m image.Rectangle, icon image.Point) image.Point {
	return m.Max.Add(image.Pt(p.DX, p.DY)).Sub(icon)
}

func (p Relative) String() string { return edgeOffset(p.DX) + "," + edgeOffset(p.DY) }

// edgeOffset formats an offset from the far edge; zero keeps its minus sign
func edgeOffset(v int) string {
	if v > 0 {
		return "+" + strconv.Itoa(v)
	}
	return "-" + strconv.Itoa(-v)
}

// Axis is one coordinate of a Mixed position
type Axis struct {
	Offset  int
	FromEnd bool
}

func (a Axis) resolve(start, end, iconLen int) int {
	if a.FromEnd {
		return end - a.Offset - iconLen
	}
	return start + a.Offset
}

func (a Axis) String() string {
	if a.FromEnd {
		return "-" + strconv.Itoa(a.Offset)
	}
	return strconv.Itoa(a.Offset)
}

// Mixed anchors each axis independently, e.g. "945,-20" is 945 from the
// left edge and 20 from the bottom edge.
type Mixed struct {
	X, Y Axis
}

func (p Mixed) Resolve(m image.Rectangle, icon image.Point) image.Point {
	return image.Pt(
		p.X.resolve(m.Min.X, m.Max.X, icon.X),
		p.Y.resolve(m.Min.Y, m.Max.Y, icon.Y),
	)
}

func (p Mixed) String() string { return p.X.String() + "," + p.Y.String() }

// ParsePosition parses "x,y". A leading minus on a coordinate measures it
// from the right or bottom edge; "-0" is flush with that edge.
func ParsePosition(s string) (Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ",")
	if len(parts) != 2 {
		return nil, fmt.Errorf("invalid position %q: expected \"x,y\"", s)
	}

	x, err := parseAxis(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid position %q: %w", s, err)
	}
	y, err := parseAxis(parts[1])
	if err != nil {
		return nil, fmt.Errorf("invalid position %q: %w", s, err)
	}

	switch {
	case !x.FromEnd && !y.FromEnd:
		return Absolute{X: x.Offset, Y: y.Offset}, nil
	case x.FromEnd && y.FromEnd:
		return Relative{DX: -x.Offset, DY: -y.Offset}, nil
	default:
		return Mixed{X: x, Y: y}, nil
	}
}

func parseAxis(s string) (Axis, error) {
	s = strings.TrimSpace(s)
	fromEnd := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")
	if digits == "" || strings.HasPrefix(digits, "+") || strings.HasPrefix(digits, "-") {
		return Axis{}, fmt.Errorf("bad coordinate %q", s)
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return Axis{}, fmt.Errorf("bad coordinate %q", s)
	}
	return Axis{Offset: n, FromEnd: fromEnd}, nil
}

// PositionFor picks the position for the i-th target monitor. The last
// position is reused past the end of the list; no positions means centered.
func PositionFor(positions []Position, i int) Position {
	if len(positions) == 0 {
		return Center{}
	}
	if i >= len(positions) {
		return positions[len(positions)-1]
	}
	return positions[i]
}
