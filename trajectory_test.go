package chem

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoFrameTraj(Te *testing.T) *Trajectory {
	traj := NewTrajectory("test", 3, 2.0)
	traj.Atoms = []AtomData{NewAtomData(0, O, "O"), NewAtomData(1, H, "H1"), NewAtomData(2, H, "H2")}
	f0 := NewFrame(0, 0, 3)
	f0.Positions = []Vec3{{X: 0.1, Y: 0.2, Z: 0.3}, {X: 0.757, Y: 0, Z: 0}, {X: -0.757, Y: 0, Z: 0}}
	f0.Velocities = []Vec3{{X: 1}, {Y: 1}, {Z: 1}}
	f0.SetBox(10, 10, 10)
	f1 := NewFrame(1, 2.0, 3)
	f1.Positions = []Vec3{{X: 0.7, Y: -0.3, Z: 1.9}, {X: 0.9, Y: 0.1, Z: 0.3}, {X: -0.6, Y: 0.2, Z: -0.1}}
	f1.Velocities = []Vec3{{X: 3}, {Y: 3}, {Z: 3}}
	f1.SetBox(12, 12, 12)
	require.NoError(Te, traj.AddFrame(f0))
	require.NoError(Te, traj.AddFrame(f1))
	return traj
}

func TestTrajectoryAccessors(Te *testing.T) {
	traj := twoFrameTraj(Te)
	require.NoError(Te, traj.Validate())
	assert.Equal(Te, 2, traj.NumFrames())
	assert.True(Te, traj.HasAtomData())
	assert.InDelta(Te, 2.0, traj.TotalTime(), 1e-12)
	f, ok := traj.Frame(0)
	require.True(Te, ok)
	_, ok = traj.Frame(2)
	assert.False(Te, ok)
	p, ok := f.Position(1)
	require.True(Te, ok)
	assert.Equal(Te, Vec3{X: 0.757}, p)
	_, ok = f.Position(3)
	assert.False(Te, ok)
	_, ok = f.Position(-1)
	assert.False(Te, ok)
	box, ok := f.BoxDims()
	require.True(Te, ok)
	assert.Equal(Te, Vec3{X: 10, Y: 10, Z: 10}, box)
	assert.Equal(Te, []Element{O, H, H}, traj.Elements())
}

func TestAddFrameRejectsAtomCountChange(Te *testing.T) {
	traj := twoFrameTraj(Te)
	err := traj.AddFrame(NewFrame(2, 4, 2))
	require.Error(Te, err)
	assert.Contains(Te, err.Error(), "Number of atoms changed from 3 to 2")
	assert.Equal(Te, 2, traj.NumFrames())
}

func TestRMSD(Te *testing.T) {
	traj := twoFrameTraj(Te)
	r, err := traj.RMSD(0, 0)
	require.NoError(Te, err)
	assert.Equal(Te, 0.0, r)
	a := NewFrame(0, 0, 2)
	b := NewFrame(1, 0, 2)
	b.Positions[0] = Vec3{X: 3, Y: 4}
	b.Positions[1] = Vec3{X: 3, Y: 4}
	r, err = FrameRMSD(a, b)
	require.NoError(Te, err)
	assert.InDelta(Te, 5.0, r, 1e-12)
	_, err = traj.RMSD(0, 5)
	assert.Error(Te, err)
}

func TestInterpolationBoundaries(Te *testing.T) {
	traj := twoFrameTraj(Te)
	f0, _ := traj.Frame(0)
	f1, _ := traj.Frame(1)
	at0, err := traj.Interpolate(0, 0)
	require.NoError(Te, err)
	at1, err := traj.Interpolate(0, 1)
	require.NoError(Te, err)
	for k := range f0.Positions {
		//bit for bit
		assert.Equal(Te, math.Float64bits(f0.Positions[k].X), math.Float64bits(at0.Positions[k].X))
		assert.Equal(Te, f0.Positions[k], at0.Positions[k])
		assert.Equal(Te, f1.Positions[k], at1.Positions[k])
		assert.Equal(Te, f0.Velocities[k], at0.Velocities[k])
		assert.Equal(Te, f1.Velocities[k], at1.Velocities[k])
	}
	mid, err := traj.Interpolate(0, 0.5)
	require.NoError(Te, err)
	assert.InDelta(Te, 0.4, mid.Positions[0].X, 1e-12)
	assert.InDelta(Te, 1.1, mid.Positions[0].Z, 1e-12)
	assert.InDelta(Te, 2.0, mid.Velocities[0].X, 1e-12)
	assert.InDelta(Te, 1.0, mid.Time, 1e-12)
	assert.InDelta(Te, 11.0, mid.Box.X, 1e-12)
	//out of range factors are clamped
	clamped, err := traj.Interpolate(0, 1.7)
	require.NoError(Te, err)
	assert.Equal(Te, f1.Positions, clamped.Positions)
	_, err = traj.Interpolate(1, 0.5)
	assert.Error(Te, err)
}
