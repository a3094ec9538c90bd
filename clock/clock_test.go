package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTickMeasuresElapsedTime(t *testing.T) {
	c := New(0)
	time.Sleep(20 * time.Millisecond)
	delta := c.Tick()
	assert.Greater(t, delta, 0.015)
	assert.Less(t, delta, 1.0)
	assert.Equal(t, delta, c.Delta())
}

func TestTimeScale(t *testing.T) {
	c := New(0)
	time.Sleep(10 * time.Millisecond)
	c.SetTimeScale(0.5)
	c.Tick()
	assert.InDelta(t, c.UnscaledDelta()*0.5, c.Delta(), 1e-9)
}

func TestTimeScalePause(t *testing.T) {
	c := New(0)
	c.SetTimeScale(0)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 0.0, c.Tick())
	assert.Greater(t, c.UnscaledDelta(), 0.0)
}

func TestNegativeTimeScaleClampsToZero(t *testing.T) {
	c := New(0)
	c.SetTimeScale(-2)
	time.Sleep(5 * time.Millisecond)
	assert.Equal(t, 0.0, c.Tick())
}

func TestFrameCapSleepsToBudget(t *testing.T) {
	c := New(100)
	start := time.Now()
	c.Tick()
	// A 100 fps cap means each frame takes at least ~10ms.
	assert.GreaterOrEqual(t, time.Since(start), 8*time.Millisecond)
}

func TestZeroTargetDisablesCap(t *testing.T) {
	c := New(60)
	c.SetTargetFPS(0)
	start := time.Now()
	c.Tick()
	assert.Less(t, time.Since(start), 5*time.Millisecond)
}
