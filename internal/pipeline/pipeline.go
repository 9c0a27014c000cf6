// Package pipeline turns one screenshot into a lock screen image:
// capture, per-monitor blur and brightness, icon overlay, handoff.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"github.com/bryanchriswhite/i3lockr/internal/capture"
	"github.com/bryanchriswhite/i3lockr/internal/composite"
	"github.com/bryanchriswhite/i3lockr/internal/effects"
	"github.com/bryanchriswhite/i3lockr/internal/layout"
	"github.com/bryanchriswhite/i3lockr/internal/locker"
	"github.com/bryanchriswhite/i3lockr/internal/logger"
	"github.com/bryanchriswhite/i3lockr/internal/pixbuf"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

// Stage is a step of the pipeline. Stages only move forward.
type Stage int

const (
	StageInit Stage = iota
	StageCaptured
	StagePerMonitorFiltered
	StageComposited
	StageReady
)

func (s Stage) String() string {
	switch s {
	case StageInit:
		return "init"
	case StageCaptured:
		return "captured"
	case StagePerMonitorFiltered:
		return "per-monitor-filtered"
	case StageComposited:
		return "composited"
	case StageReady:
		return "ready"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// StageError records which stage a run failed in
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Options are the effect and overlay settings for a run
type Options struct {
	BlurRadius uint
	Scale      float64
	BlurMethod effects.BlurMethod

	// Brightness is a signed per-channel delta; 0 leaves brightness alone
	Brightness int

	// Icon is optional; without it the composite stage is skipped
	Icon      *composite.Icon
	Positions []composite.Position
	Ignore    map[int]bool
}

func (o Options) validate() error {
	if math.IsNaN(o.Scale) || math.IsInf(o.Scale, 0) || o.Scale < 1.0 {
		return fmt.Errorf("scale %v must be at least 1.0", o.Scale)
	}
	if o.Brightness < -255 || o.Brightness > 255 {
		return fmt.Errorf("brightness delta %d out of range", o.Brightness)
	}
	if o.Icon == nil && len(o.Positions) > 0 {
		return errors.New("positions given without an icon")
	}
	return nil
}

// Pipeline runs one lock
type Pipeline struct {
	opts     Options
	capturer capture.Capturer
	locker   locker.Locker
	stage    Stage
	log      *zerolog.Logger
}

// New creates a pipeline. The capturer must already be started.
func New(opts Options, capturer capture.Capturer, l locker.Locker) *Pipeline {
	return &Pipeline{
		opts:     opts,
		capturer: capturer,
		locker:   l,
		stage:    StageInit,
		log:      logger.WithComponent("pipeline"),
	}
}

// Stage returns the last stage reached
func (p *Pipeline) Stage() Stage {
	return p.stage
}

func (p *Pipeline) advance(s Stage, started time.Time) {
	p.stage = s
	p.log.Debug().
		Str("stage", s.String()).
		Dur("took", time.Since(started)).
		Msg("Stage complete")
}

func (p *Pipeline) fail(err error) error {
	return &StageError{Stage: p.stage, Err: err}
}

// Run captures the screen, distorts it and hands it to the locker. Nothing
// reaches the locker unless every stage succeeded.
func (p *Pipeline) Run(ctx context.Context) error {
	started := time.Now()

	buf, err := p.Process(ctx, nil)
	if err != nil {
		return err
	}

	t := time.Now()
	if err := p.locker.Lock(ctx, buf); err != nil {
		return p.fail(fmt.Errorf("failed to hand off to locker: %w", err))
	}
	p.log.Debug().
		Dur("took", time.Since(t)).
		Dur("total", time.Since(started)).
		Msg("Locker returned")

	return nil
}

// Process runs every stage up to Ready. With a nil frame the capturer is
// asked for one. The returned buffer is owned by the caller.
func (p *Pipeline) Process(ctx context.Context, frame *capture.Frame) (*pixbuf.Buffer, error) {
	if p.stage != StageInit {
		return nil, fmt.Errorf("pipeline already ran (at stage %s)", p.stage)
	}
	if err := p.opts.validate(); err != nil {
		return nil, p.fail(err)
	}

	// Captured
	t := time.Now()
	if frame == nil {
		if p.capturer == nil {
			return nil, p.fail(capture.ErrNoBackend)
		}
		f, err := p.capturer.Capture(ctx)
		if err != nil {
			return nil, p.fail(fmt.Errorf("failed to capture screen: %w", err))
		}
		frame = f
	}
	if frame.Image == nil || len(frame.Image.Pix) != frame.Image.Width*frame.Image.Height*pixbuf.BytesPerPixel {
		return nil, p.fail(errors.New("capture returned a malformed image"))
	}
	buf := frame.Image
	frame.Image = nil
	lay := layout.New(image.Pt(buf.Width, buf.Height), frame.Origin, frame.Displays)
	p.advance(StageCaptured, t)

	if err := ctx.Err(); err != nil {
		return nil, p.fail(err)
	}

	// PerMonitorFiltered
	t = time.Now()
	if err := p.filter(ctx, buf, lay); err != nil {
		return nil, p.fail(err)
	}
	p.advance(StagePerMonitorFiltered, t)

	if err := ctx.Err(); err != nil {
		return nil, p.fail(err)
	}

	// Composited
	t = time.Now()
	if p.opts.Icon != nil {
		c := &composite.Compositor{Icon: p.opts.Icon, Positions: p.opts.Positions}
		c.Apply(buf, lay.Targets(p.opts.Ignore))
	}
	p.advance(StageComposited, t)

	p.stage = StageReady
	return buf, nil
}

// filter blurs and adjusts every filter region concurrently. Regions are
// disjoint, so each goroutine owns its rectangle of buf outright.
func (p *Pipeline) filter(ctx context.Context, buf *pixbuf.Buffer, lay *layout.Layout) error {
	radius := effects.EffectiveRadius(p.opts.BlurRadius, p.opts.Scale)
	if radius == 0 && p.opts.Brightness == 0 {
		return nil
	}

	regions := lay.FilterRegions()
	p.log.Debug().
		Int("radius", radius).
		Int("brightness", p.opts.Brightness).
		Int("regions", len(regions)).
		Msg("Filtering")

	var g errgroup.Group
	for _, rect := range regions {
		if err := ctx.Err(); err != nil {
			return err
		}
		region := buf.Region(rect)
		g.Go(func() error {
			effects.Blur(region, radius, p.opts.BlurMethod)
			effects.Brightness(region, p.opts.Brightness)
			return nil
		})
	}
	return g.Wait()
}
