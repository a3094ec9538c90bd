// Package clock provides the frame timing for the render loop: per-frame
// delta time, a global time scale and an optional frame rate cap.
package clock

import "time"

// Clock measures the wall time between consecutive frames. Not safe for
// concurrent use; it belongs to the loop that ticks it.
type Clock struct {
	last        time.Time
	delta       time.Duration
	scale       float64
	frameBudget time.Duration
}

// New returns a started clock. A targetFPS of zero or less disables the
// frame cap.
func New(targetFPS int) *Clock {
	c := &Clock{
		last:  time.Now(),
		scale: 1.0,
	}
	c.SetTargetFPS(targetFPS)
	return c
}

// SetTargetFPS caps the frame rate by sleeping in Tick until each frame has
// consumed its budget. Zero or negative disables the cap.
func (c *Clock) SetTargetFPS(fps int) {
	if fps <= 0 {
		c.frameBudget = 0
		return
	}
	c.frameBudget = time.Second / time.Duration(fps)
}

// SetTimeScale adjusts the factor applied to Delta. One is real time, zero
// pauses scaled time; negative values are clamped to zero.
func (c *Clock) SetTimeScale(scale float64) {
	if scale < 0 {
		scale = 0
	}
	c.scale = scale
}

// Tick ends the current frame: it sleeps off any remaining frame budget,
// records the frame's duration and returns the scaled delta in seconds.
func (c *Clock) Tick() float64 {
	if c.frameBudget > 0 {
		if spent := time.Since(c.last); spent < c.frameBudget {
			time.Sleep(c.frameBudget - spent)
		}
	}
	now := time.Now()
	c.delta = now.Sub(c.last)
	c.last = now
	return c.Delta()
}

// Delta is the scaled duration of the last frame in seconds.
func (c *Clock) Delta() float64 {
	return c.delta.Seconds() * c.scale
}

// UnscaledDelta is the wall duration of the last frame in seconds, ignoring
// the time scale.
func (c *Clock) UnscaledDelta() float64 {
	return c.delta.Seconds()
}
