package ledcontrol

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Options configures the alert timings and the frame rate.
type Options struct {
	AlertDuration  time.Duration // how long the sparkle / pulse phase runs
	ColorHold      time.Duration // how long a tipped color stays before reverting
	AnimationSpeed time.Duration // tick interval of the render loop
}

func (o Options) withDefaults() Options {
	if o.AlertDuration <= 0 {
		o.AlertDuration = 2500 * time.Millisecond
	}
	if o.ColorHold <= 0 {
		o.ColorHold = 10 * time.Minute
	}
	if o.AnimationSpeed <= 0 {
		o.AnimationSpeed = 10 * time.Millisecond
	}
	return o
}

// Controller owns the strip and the current animation state. The render
// loop (Run) and the alert triggers run on different goroutines, so every
// state transition happens under one mutex.
type Controller struct {
	engine Engine
	opts   Options
	log    *logrus.Entry
	now    func() time.Time

	mu         sync.Mutex
	animations map[string]Animation
	current    string
	heldColor  AlertColor
	colorHeld  bool
	heldSince  time.Time

	closeOnce sync.Once
}

// NewController initializes the strip and starts out on the rainbow idle
// animation. Callers must Close the controller to release the hardware.
func NewController(engine Engine, opts Options) (*Controller, error) {
	if err := engine.Init(); err != nil {
		return nil, errors.Wrap(err, "failed to initialize LEDs")
	}
	return &Controller{
		engine:     engine,
		opts:       opts.withDefaults(),
		log:        logrus.WithField("component", "ledcontrol"),
		now:        time.Now,
		animations: newAnimations(),
		current:    backgroundAnimation,
	}, nil
}

// Run drives the animation tick loop until ctx is canceled. Each tick
// reverts an expired color hold, then renders one frame of the current
// animation. A hardware error stops the loop and is returned to the caller.
func (c *Controller) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.opts.AnimationSpeed)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := c.step(); err != nil {
				c.log.WithError(err).Error("render failed")
				return errors.Wrap(err, "render failed")
			}
		}
	}
}

func (c *Controller) step() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.colorHeld && c.now().Sub(c.heldSince) > c.opts.ColorHold {
		c.colorHeld = false
		c.current = backgroundAnimation
		c.log.Info("color hold expired, back to rainbow")
	}
	c.animations[c.current].Step(c.engine.Leds(0))
	return c.engine.Render()
}

// TriggerNormalAlert flashes the sparkle animation for the alert duration,
// then restores whatever was running before. It deliberately blocks the
// caller for the whole alert so back-to-back tips play out one at a time.
func (c *Controller) TriggerNormalAlert(ctx context.Context) error {
	c.mu.Lock()
	previous := c.current
	c.current = alertAnimation
	c.mu.Unlock()

	c.log.Debug("activating normal alert")
	if err := sleepCtx(ctx, c.opts.AlertDuration); err != nil {
		return err
	}

	c.mu.Lock()
	// The tick loop may have expired a color hold while we slept; only
	// restore if nothing else took over.
	if c.current == alertAnimation {
		c.current = previous
	}
	c.mu.Unlock()
	return nil
}

// TriggerColorAlert pulses the color for the alert duration, then holds it
// solid until the hold timeout reverts the strip to rainbow. A newer color
// alert overwrites the held color and restarts its timer.
func (c *Controller) TriggerColorAlert(ctx context.Context, color AlertColor) error {
	c.mu.Lock()
	c.heldColor = color
	c.colorHeld = true
	c.heldSince = c.now()
	c.current = pulseName(color)
	c.mu.Unlock()

	c.log.WithField("color", color.String()).Debug("activating color alert")
	if err := sleepCtx(ctx, c.opts.AlertDuration); err != nil {
		return err
	}

	c.mu.Lock()
	if c.colorHeld && c.heldColor == color {
		c.current = color.String()
		c.log.Infof("setting lights to %s for %s", color, holdText(c.opts.ColorHold))
	}
	c.mu.Unlock()
	return nil
}

// Close blanks the strip and releases the device. Safe to call more than
// once; the hardware is only released a single time.
func (c *Controller) Close() {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		leds := c.engine.Leds(0)
		for i := range leds {
			leds[i] = 0
		}
		if err := c.engine.Render(); err != nil {
			c.log.WithError(err).Warn("failed to blank strip")
		}
		c.engine.Fini()
		c.log.Info("LED strip released")
	})
}

func holdText(d time.Duration) string {
	if d < time.Minute {
		return d.String()
	}
	return d.Round(time.Minute).String()
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
