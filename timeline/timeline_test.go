package timeline

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chem "github.com/rmera/molview"
)

func threeFrames(Te *testing.T) *chem.Trajectory {
	Te.Helper()
	traj := chem.NewTrajectory("test", 2, 0.5)
	for i := 0; i < 3; i++ {
		f := chem.NewFrame(i, 0.5*float64(i), 2)
		f.Positions[0] = chem.Vec3{X: 0.1 * float64(i), Y: 1.0 / 3.0, Z: -7}
		f.Positions[1] = chem.Vec3{X: 10, Y: 0.7 * float64(i*i), Z: 1e-9}
		require.NoError(Te, traj.AddFrame(f))
	}
	return traj
}

func TestDefaults(Te *testing.T) {
	S := New(0)
	assert.Equal(Te, 1, S.TotalFrames)
	assert.Equal(Te, 0, S.CurrentFrame)
	assert.False(Te, S.Playing)
	assert.Equal(Te, 1.0, S.Speed)
	assert.True(Te, S.Loop)
	assert.True(Te, S.Interpolate)
	assert.Equal(Te, 0.0, S.Factor)
	assert.Equal(Te, 0.0, S.Progress())
}

func TestTransitions(Te *testing.T) {
	S := New(3)
	S.Play()
	assert.True(Te, S.Playing)
	S.Toggle()
	assert.False(Te, S.Playing)
	S.Toggle()
	S.Next()
	S.Next()
	assert.Equal(Te, 2, S.CurrentFrame)
	assert.Equal(Te, 1.0, S.Progress())
	S.Next()
	assert.Equal(Te, 0, S.CurrentFrame, "wraps when looping")
	S.Previous()
	assert.Equal(Te, 2, S.CurrentFrame, "wraps back when looping")

	S.Loop = false
	S.Next()
	assert.Equal(Te, 2, S.CurrentFrame)
	S.GotoFrame(0)
	S.Previous()
	assert.Equal(Te, 0, S.CurrentFrame)

	S.GotoFrame(99)
	assert.Equal(Te, 2, S.CurrentFrame)
	S.GotoFrame(-4)
	assert.Equal(Te, 0, S.CurrentFrame)

	S.GotoFrame(1)
	S.Play()
	S.Stop()
	assert.False(Te, S.Playing)
	assert.Equal(Te, 0, S.CurrentFrame)
	assert.Equal(Te, 0.0, S.SimulationTime(0.5))
	S.GotoFrame(2)
	assert.Equal(Te, 1.0, S.SimulationTime(0.5))
}

func TestSpeed(Te *testing.T) {
	S := New(2)
	S.SpeedUp()
	assert.InDelta(Te, 1.5, S.Speed, 1e-12)
	for i := 0; i < 20; i++ {
		S.SpeedUp()
	}
	assert.Equal(Te, MaxSpeed, S.Speed)
	for i := 0; i < 40; i++ {
		S.SpeedDown()
	}
	assert.Equal(Te, MinSpeed, S.Speed)
}

func TestTick(Te *testing.T) {
	S := NewWithOptions(3, Options{FrameDuration: 1, Speed: 1, Loop: true, Interpolate: true})
	assert.False(Te, S.Tick(5), "paused states do not move")
	assert.Equal(Te, 0, S.CurrentFrame)

	S.Play()
	assert.False(Te, S.Tick(0.25))
	assert.Equal(Te, 0, S.CurrentFrame)
	assert.InDelta(Te, 0.25, S.Factor, 1e-12)

	assert.True(Te, S.Tick(1.0))
	assert.Equal(Te, 1, S.CurrentFrame)
	assert.InDelta(Te, 0.25, S.Factor, 1e-12)

	S.Speed = 2
	assert.True(Te, S.Tick(1.0)) //two frames: 1 -> 2 -> 0
	assert.Equal(Te, 0, S.CurrentFrame)
	assert.True(Te, S.Playing)

	S.Interpolate = false
	S.Tick(0.2)
	assert.Equal(Te, 0.0, S.Factor)
}

func TestTickStopsWithoutLoop(Te *testing.T) {
	S := NewWithOptions(3, Options{FrameDuration: 0.5, Speed: 1, Loop: false, Interpolate: true})
	S.Play()
	assert.True(Te, S.Tick(10))
	assert.Equal(Te, 2, S.CurrentFrame)
	assert.False(Te, S.Playing)
	assert.Equal(Te, 0.0, S.Factor)
}

func TestTickBadInput(Te *testing.T) {
	S := NewWithOptions(5, Options{FrameDuration: 1, Speed: 1, Loop: true, Interpolate: true})
	S.Play()
	for _, dt := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1, 0} {
		assert.False(Te, S.Tick(dt), "dt %v", dt)
	}
	assert.Equal(Te, 0, S.CurrentFrame)
	assert.Equal(Te, 0.0, S.Factor)

	assert.False(Te, S.Tick(0.5))
	assert.InDelta(Te, 0.5, S.Factor, 1e-12, "bad ticks leave no trace")
}

func TestTickLargeStep(Te *testing.T) {
	S := NewWithOptions(5, Options{FrameDuration: 1, Speed: 1, Loop: true, Interpolate: true})
	S.Play()
	S.Tick(1e10 + 3.5)
	assert.Equal(Te, 3, S.CurrentFrame)
	assert.GreaterOrEqual(Te, S.Factor, 0.0)
	assert.Less(Te, S.Factor, 1.0)
	assert.True(Te, S.Playing)

	S.Loop = false
	S.GotoFrame(1)
	assert.True(Te, S.Tick(1e300))
	assert.Equal(Te, 4, S.CurrentFrame)
	assert.False(Te, S.Playing)
	assert.Equal(Te, 0.0, S.Factor)

	//landing exactly on the last frame keeps playing until it is passed
	S.GotoFrame(2)
	S.Play()
	assert.True(Te, S.Tick(2.25))
	assert.Equal(Te, 4, S.CurrentFrame)
	assert.True(Te, S.Playing)
	assert.InDelta(Te, 0.25, S.Factor, 1e-12)
}

func TestLoadResets(Te *testing.T) {
	S := New(10)
	S.GotoFrame(5)
	S.Play()
	S.Tick(0.5)
	S.Load(threeFrames(Te))
	assert.Equal(Te, 3, S.TotalFrames)
	assert.Equal(Te, 0, S.CurrentFrame)
	assert.False(Te, S.Playing)
	assert.Equal(Te, 0.0, S.Factor)

	S.Load(nil)
	assert.Equal(Te, 1, S.TotalFrames)
	_, ok := S.Position(0)
	assert.False(Te, ok)
	assert.Nil(Te, S.Positions())
}

func TestInterpolationBoundaries(Te *testing.T) {
	traj := threeFrames(Te)
	S := New(1)
	S.Load(traj)
	S.GotoFrame(1)

	S.Factor = 0
	for i, p := range S.Positions() {
		assert.Equal(Te, traj.Frames[1].Positions[i], p, "factor 0 is the current frame")
	}
	S.Factor = 1
	for i, p := range S.Positions() {
		assert.Equal(Te, traj.Frames[2].Positions[i], p, "factor 1 is the next frame")
	}
	S.Factor = 0.5
	p, ok := S.Position(0)
	require.True(Te, ok)
	assert.InDelta(Te, 0.15, p.X, 1e-12)
	f, ok := S.Frame()
	require.True(Te, ok)
	assert.InDelta(Te, 0.75, f.Time, 1e-12)

	S.Interpolate = false
	p, _ = S.Position(0)
	assert.Equal(Te, traj.Frames[1].Positions[0], p)

	//the last frame has nothing to interpolate towards
	S.Interpolate = true
	S.GotoFrame(2)
	S.Factor = 0.5
	p, _ = S.Position(1)
	assert.Equal(Te, traj.Frames[2].Positions[1], p)

	_, ok = S.Position(7)
	assert.False(Te, ok)
}
