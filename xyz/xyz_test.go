package xyz

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chem "github.com/rmera/molview"
)

const water = "3\nwater\nO 0.0 0.0 0.0\nH 0.757 0.0 0.0\nH -0.757 0.0 0.0"

func TestReadWater(Te *testing.T) {
	traj, err := ReadString(water, "water.xyz")
	require.NoError(Te, err)
	assert.Equal(Te, 1, traj.NumFrames())
	assert.Equal(Te, 3, traj.NumAtoms)
	assert.Equal(Te, []chem.Element{chem.O, chem.H, chem.H}, traj.Elements())
	f, ok := traj.Frame(0)
	require.True(Te, ok)
	p, ok := f.Position(0)
	require.True(Te, ok)
	assert.Equal(Te, chem.Vec3{}, p)
	p, _ = f.Position(2)
	assert.Equal(Te, chem.Vec3{X: -0.757}, p)
	assert.Equal(Te, "water", traj.Meta.Title)
	assert.Equal(Te, "water.xyz", traj.Meta.Source)
	assert.Equal(Te, chem.ChainPlaceholder, traj.Atoms[0].ChainID)
	assert.True(Te, traj.Meta.ChainPlaceholder)
	require.NoError(Te, traj.Validate())
}

func TestReadMultiFrame(Te *testing.T) {
	in := "2\ntime=0.5\nC 0 0 0\nO 1.2 0 0\n\n2\ntime=2.5 energy=-3\nC 0 0 0.1\nO 1.3 0 0\n"
	traj, err := ReadString(in, "co.xyz")
	require.NoError(Te, err)
	require.Equal(Te, 2, traj.NumFrames())
	assert.InDelta(Te, 0.5, traj.Frames[0].Time, 1e-12)
	assert.InDelta(Te, 2.5, traj.Frames[1].Time, 1e-12)
	assert.InDelta(Te, 2.0, traj.TimeStep, 1e-12)
	assert.InDelta(Te, 1.3, traj.Frames[1].Positions[1].X, 1e-12)
	assert.Equal(Te, 1, traj.Frames[1].Index)
}

func TestReadErrors(Te *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
		msg  string
	}{
		{"short frame", "3\nshort\nO 0 0 0\nH 1 0 0\n", 5, "Expected 3 atom lines, found 2"},
		{"few fields", "2\nx\nO 0 0\nH 1 0 0\n", 3, "Expected at least 4 fields"},
		{"bad coordinate", "1\nx\nO 0 zero 0\n", 3, "Invalid coordinate"},
		{"bad count", "three\nx\n", 1, "Invalid atom count"},
		{"count changes", "1\na\nO 0 0 0\n2\nb\nO 0 0 0\nH 1 0 0\n", 4, "Number of atoms changed from 1 to 2"},
		{"no comment", "1", 1, "expected comment line"},
		{"empty", "\n\n", 1, "Empty file"},
	}
	for _, tt := range tests {
		traj, err := ReadString(tt.in, "bad.xyz")
		require.Error(Te, err, tt.name)
		assert.Nil(Te, traj, tt.name)
		assert.True(Te, chem.IsParseError(err), tt.name)
		var fe *chem.FileError
		require.ErrorAs(Te, err, &fe)
		assert.Equal(Te, tt.line, fe.Line, tt.name)
		assert.Contains(Te, fe.Message(), tt.msg, tt.name)
	}
}

func TestUnknownElement(Te *testing.T) {
	traj, err := ReadString("3\n\nQq 0 0 0\n8 1 0 0\nca 2 0 0\n", "odd.xyz")
	require.NoError(Te, err)
	assert.Equal(Te, []chem.Element{chem.Unknown, chem.O, chem.Ca}, traj.Elements())
}

func TestStream(Te *testing.T) {
	S := NewStream(bytes.NewBufferString(water+"\n"+water), "s.xyz")
	var _ chem.FrameReader = S
	n := 0
	for {
		f, err := S.Next()
		if chem.IsLastFrame(err) {
			break
		}
		require.NoError(Te, err)
		assert.Len(Te, f.Positions, 3)
		n++
	}
	assert.Equal(Te, 2, n)
	assert.False(Te, S.Readable())
	assert.Equal(Te, 3, S.Len())
}

func TestWriteRoundTrip(Te *testing.T) {
	traj, err := ReadString(water, "water.xyz")
	require.NoError(Te, err)
	var buf bytes.Buffer
	require.NoError(Te, Write(&buf, traj))
	assert.Contains(Te, buf.String(), "time=0.00 frame=0")
	back, err := ReadString(buf.String(), "back.xyz")
	require.NoError(Te, err)
	assert.Equal(Te, traj.Elements(), back.Elements())
	assert.Equal(Te, traj.Frames[0].Positions, back.Frames[0].Positions)

	path := filepath.Join(Te.TempDir(), "water.xyz.gz")
	require.NoError(Te, WriteFile(path, traj))
	fromFile, err := ReadFile(path)
	require.NoError(Te, err)
	assert.Equal(Te, traj.Frames[0].Positions, fromFile.Frames[0].Positions)
}

func TestWriteConvertsNanometers(Te *testing.T) {
	traj := chem.NewTrajectory("w.gro", 1, 1)
	traj.Units = chem.Nanometer
	traj.Atoms = []chem.AtomData{chem.NewAtomData(0, chem.O, "OW")}
	f := chem.NewFrame(0, 0, 1)
	f.Positions[0] = chem.Vec3{X: 0.126}
	require.NoError(Te, traj.AddFrame(f))
	var buf bytes.Buffer
	require.NoError(Te, Write(&buf, traj))
	back, err := ReadString(buf.String(), "w.xyz")
	require.NoError(Te, err)
	assert.InDelta(Te, 1.26, back.Frames[0].Positions[0].X, 1e-6)
}
