package dcd

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chem "github.com/rmera/molview"
)

func sampleTraj(Te *testing.T, frames int, box bool) *chem.Trajectory {
	traj := chem.NewTrajectory("sample", 3, 2.0)
	traj.Meta.Title = "three atoms"
	for i := 0; i < frames; i++ {
		f := chem.NewFrame(i, float64(i)*2, 3)
		for k := range f.Positions {
			f.Positions[k] = chem.Vec3{X: float64(k), Y: float64(i) * 0.5, Z: -1.25}
		}
		if box {
			f.SetBox(30, 40, 50)
		}
		require.NoError(Te, traj.AddFrame(f))
	}
	return traj
}

func encode(Te *testing.T, traj *chem.Trajectory) []byte {
	var buf bytes.Buffer
	require.NoError(Te, Write(&buf, traj))
	return buf.Bytes()
}

func TestRoundTrip(Te *testing.T) {
	traj := sampleTraj(Te, 3, false)
	data := encode(Te, traj)
	back, err := Read(bytes.NewReader(data), "sample.dcd")
	require.NoError(Te, err)
	assert.Equal(Te, 3, back.NumAtoms)
	require.Equal(Te, 3, back.NumFrames())
	assert.False(Te, back.HasAtomData())
	assert.Equal(Te, "three atoms", back.Meta.Title)
	assert.Equal(Te, "CHARMM", back.Meta.Software)
	assert.Equal(Te, 3, back.Meta.NumSteps)
	assert.InDelta(Te, 2.0, back.TimeStep, 1e-5)
	assert.InDelta(Te, 4.0, back.Frames[2].Time, 1e-5)
	for i, f := range back.Frames {
		for k, p := range f.Positions {
			assert.InDelta(Te, traj.Frames[i].Positions[k].X, p.X, 1e-6)
			assert.InDelta(Te, traj.Frames[i].Positions[k].Y, p.Y, 1e-6)
			assert.InDelta(Te, -1.25, p.Z, 1e-6)
		}
		assert.Nil(Te, f.Box)
	}
}

func TestUnitCell(Te *testing.T) {
	data := encode(Te, sampleTraj(Te, 2, true))
	D, err := NewReader(bytes.NewReader(data), "box.dcd")
	require.NoError(Te, err)
	assert.True(Te, D.Header().ExtraBlock)
	f, err := D.Next()
	require.NoError(Te, err)
	box, ok := f.BoxDims()
	require.True(Te, ok)
	assert.Equal(Te, chem.Vec3{X: 30, Y: 40, Z: 50}, box)
	_, err = D.Next()
	require.NoError(Te, err)
	_, err = D.Next()
	assert.True(Te, chem.IsLastFrame(err))
	assert.False(Te, D.Readable())
}

func TestBadMagic(Te *testing.T) {
	data := encode(Te, sampleTraj(Te, 1, false))
	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad, 85)
	_, err := Read(bytes.NewReader(bad), "bad.dcd")
	require.Error(Te, err)
	var fe *chem.FileError
	require.ErrorAs(Te, err, &fe)
	assert.Equal(Te, chem.ParseError, fe.Kind)
	assert.Equal(Te, int64(0), fe.Offset)
	assert.Contains(Te, fe.Message(), "expected magic 84, got 85")

	binary.BigEndian.PutUint32(bad, 84)
	_, err = Read(bytes.NewReader(bad), "big.dcd")
	assert.Contains(Te, err.Error(), "Big-endian")

	_, err = Read(bytes.NewReader([]byte("3\nwater\n")), "notdcd.dcd")
	assert.True(Te, chem.IsParseError(err))

	_, err = Read(bytes.NewReader([]byte{84, 0}), "short.dcd")
	assert.True(Te, chem.IsParseError(err))
}

func TestBadTag(Te *testing.T) {
	data := encode(Te, sampleTraj(Te, 1, false))
	copy(data[4:8], "VELD")
	_, err := Read(bytes.NewReader(data), "vel.dcd")
	var fe *chem.FileError
	require.ErrorAs(Te, err, &fe)
	assert.Equal(Te, int64(4), fe.Offset)
}

func TestTruncated(Te *testing.T) {
	data := encode(Te, sampleTraj(Te, 2, false))
	_, err := Read(bytes.NewReader(data[:len(data)-10]), "cut.dcd")
	require.Error(Te, err)
	var fe *chem.FileError
	require.ErrorAs(Te, err, &fe)
	assert.Equal(Te, chem.ParseError, fe.Kind)
	assert.Contains(Te, fe.Message(), "frame 1")
	assert.Greater(Te, fe.Offset, int64(0))
}

func TestRecordMismatch(Te *testing.T) {
	data := encode(Te, sampleTraj(Te, 1, false))
	//the first frame starts right after the header, which ends with the atom count record.
	frameStart := len(data) - 3*(4+3*4+4)
	binary.LittleEndian.PutUint32(data[frameStart:], 8)
	_, err := Read(bytes.NewReader(data), "size.dcd")
	var fe *chem.FileError
	require.ErrorAs(Te, err, &fe)
	assert.Equal(Te, int64(frameStart), fe.Offset)
	assert.Contains(Te, fe.Message(), "frame 0 X coordinate record size: expected 12, got 8")
}

func TestReadToEOF(Te *testing.T) {
	traj := sampleTraj(Te, 4, false)
	var buf bytes.Buffer
	H := HeaderFor(traj)
	H.NSet = 0
	D, err := NewWriter(&buf, "stream.dcd", H)
	require.NoError(Te, err)
	for _, f := range traj.Frames {
		require.NoError(Te, D.WNext(f))
	}
	require.NoError(Te, D.Flush())
	back, err := Read(&buf, "stream.dcd")
	require.NoError(Te, err)
	assert.Equal(Te, 4, back.NumFrames())
	assert.Equal(Te, 4, back.Meta.NumSteps)
}

func TestWriterErrors(Te *testing.T) {
	_, err := NewWriter(&bytes.Buffer{}, "empty.dcd", Header{})
	assert.True(Te, chem.IsUnsupportedFormat(err))
	D, err := NewWriter(&bytes.Buffer{}, "two.dcd", Header{NAtoms: 2})
	require.NoError(Te, err)
	assert.Error(Te, D.WNext(chem.NewFrame(0, 0, 3)))
}

func TestFixedAtomsUnsupported(Te *testing.T) {
	data := encode(Te, sampleTraj(Te, 1, false))
	//NAMNF is the ninth int of the control block, which starts at byte 8.
	binary.LittleEndian.PutUint32(data[8+32:], 1)
	_, err := Read(bytes.NewReader(data), "fixed.dcd")
	assert.True(Te, chem.IsUnsupportedFormat(err))
}

func TestFile(Te *testing.T) {
	traj := sampleTraj(Te, 2, true)
	traj.Units = chem.Nanometer
	path := filepath.Join(Te.TempDir(), "t.dcd.gz")
	require.NoError(Te, WriteFile(path, traj))
	back, err := ReadFile(path)
	require.NoError(Te, err)
	assert.Equal(Te, chem.Angstrom, back.Units)
	assert.InDelta(Te, 20.0, back.Frames[1].Positions[2].X, 1e-5)
	box, _ := back.Frames[0].BoxDims()
	assert.InDelta(Te, 300.0, box.X, 1e-9)
}

func TestHugeAtomCount(Te *testing.T) {
	data := encode(Te, sampleTraj(Te, 1, false))
	frameStart := len(data) - 3*(4+3*4+4)
	countAt := frameStart - 8

	//4*natoms overflows 32 bits
	bad := append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[countAt:], 0x40000001)
	_, err := Read(bytes.NewReader(bad), "huge.dcd")
	var fe *chem.FileError
	require.ErrorAs(Te, err, &fe)
	assert.Equal(Te, chem.ParseError, fe.Kind)
	assert.Equal(Te, int64(countAt-4), fe.Offset)
	assert.Contains(Te, fe.Message(), "Invalid number of atoms")

	//a valid but enormous count is caught by the first record, before any frame is allocated
	bad = append([]byte(nil), data...)
	binary.LittleEndian.PutUint32(bad[countAt:], uint32(MaxAtoms))
	_, err = Read(bytes.NewReader(bad), "big.dcd")
	require.ErrorAs(Te, err, &fe)
	assert.Equal(Te, int64(frameStart), fe.Offset)
	assert.Contains(Te, fe.Message(), "X coordinate record size")

	//the record claims the full size but the file ends
	binary.LittleEndian.PutUint32(bad[frameStart:], uint32(MaxAtoms)*4)
	_, err = Read(bytes.NewReader(bad), "cut.dcd")
	require.ErrorAs(Te, err, &fe)
	assert.Equal(Te, chem.ParseError, fe.Kind)
	assert.Contains(Te, fe.Message(), "Unexpected end of file")
}
