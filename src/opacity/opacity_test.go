package opacity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartsTransparentAndFadesToIdle(t *testing.T) {
	a := New(Levels{Idle: 0.85, Hover: 1}, 4)
	assert.Equal(t, 0.0, a.Value())
	assert.Equal(t, 0.85, a.Target())
	assert.False(t, a.Converged())

	a.Tick(100 * time.Millisecond)
	assert.InDelta(t, 0.4, a.Value(), 1e-9)
}

func TestStaysInUnitRangeAndConverges(t *testing.T) {
	steps := []time.Duration{0, time.Millisecond, 16 * time.Millisecond, 33 * time.Millisecond, time.Second, 10 * time.Second, -time.Second}
	for _, dt := range steps {
		a := New(Levels{Idle: 0.2, Hover: 1}, 4)
		a.OnMouseEnter()
		for i := 0; i < 5000; i++ {
			a.Tick(dt)
			require.GreaterOrEqual(t, a.Value(), 0.0)
			require.LessOrEqual(t, a.Value(), 1.0)
		}
		if dt > 0 {
			assert.True(t, a.Converged(), "dt=%v did not converge", dt)
			assert.Equal(t, 1.0, a.Value())
		} else {
			assert.Equal(t, 0.0, a.Value(), "non-positive dt must not move the value")
		}
	}
}

func TestConvergesWithinBoundedTicks(t *testing.T) {
	const rate = 4.0
	dt := 16 * time.Millisecond
	bound := int(math.Ceil(1 / (rate * dt.Seconds())))

	a := New(Levels{Idle: 0, Hover: 1}, rate)
	a.OnMouseEnter()
	ticks := 0
	for !a.Converged() {
		a.Tick(dt)
		ticks++
		require.LessOrEqual(t, ticks, bound)
	}

	a.Tick(dt)
	a.Tick(time.Second)
	assert.Equal(t, 1.0, a.Value(), "converged value must stay put")
}

func TestNeverOvershoots(t *testing.T) {
	a := New(Levels{Idle: 0.3, Hover: 0.7}, 3)
	a.OnMouseEnter()
	prev := a.Value()
	for i := 0; i < 100; i++ {
		a.Tick(7 * time.Millisecond)
		require.GreaterOrEqual(t, a.Value(), prev)
		require.LessOrEqual(t, a.Value(), 0.7)
		prev = a.Value()
	}

	a.OnMouseLeave()
	for i := 0; i < 100; i++ {
		a.Tick(7 * time.Millisecond)
		require.LessOrEqual(t, a.Value(), prev)
		require.GreaterOrEqual(t, a.Value(), 0.3)
		prev = a.Value()
	}
	assert.True(t, a.Converged())
	assert.False(t, a.HasMouseFocus())
}

func TestDeterministicTrajectory(t *testing.T) {
	run := func() []float64 {
		a := New(Levels{Idle: 0, Hover: 0.6}, 4)
		a.OnMouseEnter()
		var out []float64
		for i := 0; i < 5; i++ {
			a.Tick(16 * time.Millisecond)
			out = append(out, a.Value())
		}
		return out
	}
	assert.Equal(t, run(), run())
}

func TestLevelsAreClamped(t *testing.T) {
	a := New(Levels{Idle: -1, Hover: 3}, 0)
	assert.Equal(t, Levels{Idle: 0, Hover: 1}, a.Levels())
	a.OnMouseEnter()
	a.Tick(2 * time.Second)
	assert.Equal(t, uint8(255), a.Alpha())
}
