package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/timeline"
)

func testTrajectory(Te *testing.T, frames int) *chem.Trajectory {
	Te.Helper()
	traj := chem.NewTrajectory("line.xyz", 2, 0.5)
	traj.Atoms = []chem.AtomData{chem.NewAtomData(0, chem.C, "C1"), chem.NewAtomData(1, chem.O, "O1")}
	for i := 0; i < frames; i++ {
		f := chem.NewFrame(i, 0.5*float64(i), 2)
		f.Positions[0] = chem.Vec3{X: float64(i)}
		f.Positions[1] = chem.Vec3{X: float64(i), Y: 1.2}
		require.NoError(Te, traj.AddFrame(f))
	}
	return traj
}

func press(m tea.Model, key string) (tea.Model, tea.Cmd) {
	if key == " " {
		return m.Update(tea.KeyMsg{Type: tea.KeySpace})
	}
	return m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(key)})
}

func TestPlayerKeys(Te *testing.T) {
	m := newPlayer(testTrajectory(Te, 4), timeline.DefaultOptions())
	s := m.state
	var model tea.Model = m

	model, _ = press(model, " ")
	assert.True(Te, s.Playing)
	model, _ = press(model, "n")
	assert.False(Te, s.Playing, "stepping pauses")
	assert.Equal(Te, 1, s.CurrentFrame)
	model, _ = press(model, "p")
	model, _ = press(model, "p")
	assert.Equal(Te, 3, s.CurrentFrame, "wraps when looping")
	model, _ = press(model, "l")
	assert.False(Te, s.Loop)
	model, _ = press(model, "n")
	assert.Equal(Te, 3, s.CurrentFrame)
	model, _ = press(model, "g")
	assert.Equal(Te, 0, s.CurrentFrame)
	model, _ = press(model, "G")
	assert.Equal(Te, 3, s.CurrentFrame)
	model, _ = press(model, "s")
	assert.Equal(Te, 0, s.CurrentFrame)
	model, _ = press(model, "+")
	assert.InDelta(Te, 1.5, s.Speed, 1e-12)
	model, _ = press(model, "-")
	assert.InDelta(Te, 1.0, s.Speed, 1e-12)
	model, _ = press(model, "i")
	assert.False(Te, s.Interpolate)

	_, cmd := press(model, "q")
	require.NotNil(Te, cmd)
	assert.Equal(Te, tea.Quit(), cmd())
}

func TestPlayerTick(Te *testing.T) {
	opts := timeline.DefaultOptions()
	opts.FrameDuration = 0.5
	m := newPlayer(testTrajectory(Te, 4), opts)
	m.state.Play()

	start := time.Unix(100, 0)
	model, cmd := m.Update(tickMsg(start))
	assert.NotNil(Te, cmd, "ticks keep coming")
	model, _ = model.Update(tickMsg(start.Add(600 * time.Millisecond)))
	p := model.(player)
	assert.Equal(Te, 1, p.state.CurrentFrame)
	assert.Greater(Te, p.state.Factor, 0.0)

	pos := p.state.Positions()
	require.Len(Te, pos, 2)
	assert.Greater(Te, pos[0].X, 1.0)
	assert.Less(Te, pos[0].X, 2.0)
}

func TestPlayerView(Te *testing.T) {
	m := newPlayer(testTrajectory(Te, 3), timeline.DefaultOptions())
	v := m.View()
	assert.Contains(Te, v, "PAUSED")
	assert.Contains(Te, v, "1 / 3")
	assert.Contains(Te, v, "C C1")
	m.state.Play()
	assert.Contains(Te, m.View(), "PLAYING")
}
