/*
 * dcd.go, part of molview.
 *
 * Copyright 2012 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

// Package dcd reads and writes CHARMM/NAMD/X-PLOR DCD binary trajectories.
//
// Only little-endian files are supported. A DCD file carries positions only:
// the trajectories returned here have no atom data, and must be paired with a
// structure file (see chem.PairWithStructure) or given placeholder atoms.
package dcd

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/logging"
	"github.com/rmera/molview/internal/source"
)

const formatName = "DCD"

const (
	// Magic is the size of the first record, and the first 4 bytes of every DCD file.
	Magic int32 = 84
	// MaxTitle is the size of each title line.
	MaxTitle int32 = 80
	// AKMA is the CHARMM internal time unit, in fs.
	AKMA = 48.88821
	// MaxAtoms is the largest atom count whose coordinate records fit the
	// 32-bit record size.
	MaxAtoms int32 = math.MaxInt32 / 4
)

var endian = binary.LittleEndian

// Header is the information in the three header records of a DCD file.
type Header struct {
	NSet          int32 //number of frames, 0 if unknown
	IStart        int32 //first step
	NSavc         int32 //steps between frames
	NStep         int32 //total steps
	NFixed        int32 //fixed atoms, not supported
	Delta         float64
	CharmmVersion int32 //0 for X-PLOR files
	ExtraBlock    bool  //every frame starts with a unit cell record
	FourDim       bool  //every frame ends with a fourth coordinate record
	Titles        []string
	NAtoms        int32
}

// Charmm returns true if the file was written in the CHARMM flavor.
func (H *Header) Charmm() bool { return H.CharmmVersion != 0 }

// TimeStep returns the time between frames in fs.
func (H *Header) TimeStep() float64 {
	nsavc := H.NSavc
	if nsavc <= 0 {
		nsavc = 1
	}
	return H.Delta * float64(nsavc) * AKMA
}

// Reader reads the frames of a DCD stream one at a time. It implements chem.FrameReader.
type Reader struct {
	r        *bufio.Reader
	name     string
	offset   int64
	header   Header
	frames   int
	readable bool
	buf      []byte
	log      *logging.Entry
}

// NewReader reads the DCD header from r. name identifies the input in errors.
// The first 4 bytes are checked before anything else is read, so a stream that
// is not a DCD file is rejected right away.
func NewReader(r io.Reader, name string) (*Reader, error) {
	D := &Reader{r: bufio.NewReader(r), name: name, log: logging.Component("dcd").WithField("source", name)}
	if err := D.readHeader(); err != nil {
		return nil, err
	}
	D.readable = true
	return D, nil
}

// Readable returns true if the reader may have more frames.
func (D *Reader) Readable() bool { return D.readable }

// Len returns the number of atoms per frame.
func (D *Reader) Len() int { return int(D.header.NAtoms) }

// Header returns the header of the file.
func (D *Reader) Header() Header { return D.header }

func (D *Reader) errorf(offset int64, msg string, args ...interface{}) error {
	D.readable = false
	return chem.NewOffsetError(formatName, D.name, offset, msg, args...)
}

// chunk is the largest read served from a single allocation. Longer reads
// grow with the data actually present, so a size field that lies about the
// rest of the file cannot force a huge allocation.
const chunk = 1 << 20

// read fills the first n bytes of the internal buffer and returns them.
func (D *Reader) read(n int) ([]byte, error) {
	if n > chunk {
		b, err := io.ReadAll(io.LimitReader(D.r, int64(n)))
		D.offset += int64(len(b))
		if err == nil && len(b) < n {
			err = io.ErrUnexpectedEOF
		}
		return b, err
	}
	if cap(D.buf) < n {
		D.buf = make([]byte, n)
	}
	b := D.buf[:n]
	got, err := io.ReadFull(D.r, b)
	D.offset += int64(got)
	return b, err
}

func (D *Reader) readInt32() (int32, error) {
	b, err := D.read(4)
	if err != nil {
		return 0, err
	}
	return int32(endian.Uint32(b)), nil
}

// record reads a Fortran record: a size marker, the data and the same marker
// again. If want is not negative, the size must equal want.
func (D *Reader) record(want int32, what string) ([]byte, error) {
	start := D.offset
	size, err := D.readInt32()
	if err != nil {
		return nil, D.truncated(start, what, err)
	}
	if want >= 0 && size != want {
		return nil, D.errorf(start, "Invalid %s record size: expected %d, got %d", what, want, size)
	}
	if size < 0 {
		return nil, D.errorf(start, "Invalid %s record size %d", what, size)
	}
	data, err := D.read(int(size))
	if err != nil {
		return nil, D.truncated(start, what, err)
	}
	data = append([]byte(nil), data...)
	end := D.offset
	check, err := D.readInt32()
	if err != nil {
		return nil, D.truncated(end, what, err)
	}
	if check != size {
		return nil, D.errorf(end, "%s record end marker %d does not match its size %d", what, check, size)
	}
	return data, nil
}

func (D *Reader) truncated(offset int64, what string, err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return D.errorf(offset, "Unexpected end of file in %s record", what)
	}
	D.readable = false
	return chem.NewIOError(formatName, D.name, err)
}

func (D *Reader) readHeader() error {
	magic, err := D.readInt32()
	if err != nil {
		return D.errorf(0, "File too short for a DCD header")
	}
	if magic != Magic {
		if int32(binary.BigEndian.Uint32(D.buf[:4])) == Magic {
			return D.errorf(0, "Big-endian DCD files are not supported")
		}
		return D.errorf(0, "Invalid DCD header: expected magic %d, got %d", Magic, magic)
	}
	rest, err := D.read(int(Magic))
	if err != nil {
		return D.errorf(4, "Unexpected end of file in header record")
	}
	if tag := string(rest[:4]); tag != "CORD" {
		return D.errorf(4, "Unknown DCD format tag %q, expected \"CORD\"", tag)
	}
	ctrl := rest[4:]
	H := &D.header
	at := func(off int) int32 { return int32(endian.Uint32(ctrl[off:])) }
	H.NSet = at(0)
	H.IStart = at(4)
	H.NSavc = at(8)
	H.NStep = at(12)
	H.NFixed = at(32)
	H.CharmmVersion = at(76)
	if H.Charmm() {
		H.Delta = float64(math.Float32frombits(endian.Uint32(ctrl[36:])))
		H.ExtraBlock = at(40) != 0
		H.FourDim = at(44) != 0
	} else {
		H.Delta = math.Float64frombits(endian.Uint64(ctrl[36:]))
	}
	end := D.offset
	check, err := D.readInt32()
	if err != nil {
		return D.truncated(end, "header", err)
	}
	if check != Magic {
		return D.errorf(end, "header record end marker %d does not match its size %d", check, Magic)
	}
	titles, err := D.record(-1, "title")
	if err != nil {
		return err
	}
	if len(titles) < 4 {
		return D.errorf(end+4, "title record too short")
	}
	ntitle := int32(endian.Uint32(titles))
	if int64(len(titles)-4) != int64(ntitle)*int64(MaxTitle) {
		return D.errorf(end+4, "title record holds %d bytes for %d titles", len(titles)-4, ntitle)
	}
	for i := int32(0); i < ntitle; i++ {
		t := titles[4+i*MaxTitle : 4+(i+1)*MaxTitle]
		H.Titles = append(H.Titles, strings.TrimSpace(strings.Trim(string(t), "\x00 ")))
	}
	start := D.offset
	natoms, err := D.record(4, "atom count")
	if err != nil {
		return err
	}
	H.NAtoms = int32(endian.Uint32(natoms))
	if H.NAtoms <= 0 || H.NAtoms > MaxAtoms {
		return D.errorf(start, "Invalid number of atoms %d", H.NAtoms)
	}
	if H.NFixed != 0 {
		D.readable = false
		return chem.NewUnsupportedFormat(D.name, "DCD files with %d fixed atoms are not supported", H.NFixed)
	}
	return nil
}

// Next reads the next frame. It returns a chem.LastFrameError when the
// stream is exhausted, or after NSet frames if the header states it.
func (D *Reader) Next() (*chem.FrameData, error) {
	if !D.readable || (D.header.NSet > 0 && D.frames >= int(D.header.NSet)) {
		D.readable = false
		return nil, chem.NewLastFrameError(formatName, D.name)
	}
	start := D.offset
	natoms := D.header.NAtoms
	var box *chem.Vec3
	var pending []byte
	if D.header.ExtraBlock {
		size, err := D.readInt32()
		if err != nil {
			return nil, D.endOfStream(start, err)
		}
		if size < 0 {
			return nil, D.errorf(start, "Invalid unit cell record size %d in frame %d", size, D.frames)
		}
		data, err := D.read(int(size))
		if err != nil {
			return nil, D.errorf(start, "Unexpected end of file in unit cell record of frame %d", D.frames)
		}
		if size == natoms*4 {
			//some writers drop the unit cell record in some frames.
			pending = append([]byte(nil), data...)
		} else if size == 48 {
			cell := make([]float64, 6)
			for k := range cell {
				cell[k] = math.Float64frombits(endian.Uint64(data[8*k:]))
			}
			//A, gamma, B, beta, alpha, C
			box = &chem.Vec3{X: cell[0], Y: cell[2], Z: cell[5]}
		}
		end := D.offset
		check, err := D.readInt32()
		if err != nil || check != size {
			return nil, D.errorf(end, "unit cell record end marker does not match its size %d in frame %d", size, D.frames)
		}
	}
	coords := make([][]byte, 3)
	for k, axis := range []string{"X", "Y", "Z"} {
		if k == 0 && pending != nil {
			coords[0] = pending
			continue
		}
		if k == 0 && !D.header.ExtraBlock {
			if _, err := D.r.Peek(1); err != nil {
				return nil, D.endOfStream(start, err)
			}
		}
		data, err := D.record(natoms*4, fmt.Sprintf("frame %d %s coordinate", D.frames, axis))
		if err != nil {
			return nil, err
		}
		coords[k] = data
	}
	frame := chem.NewFrame(D.frames, float64(D.frames)*D.header.TimeStep(), int(natoms))
	frame.Box = box
	for i := range frame.Positions {
		frame.Positions[i] = chem.Vec3{
			X: float64(math.Float32frombits(endian.Uint32(coords[0][4*i:]))),
			Y: float64(math.Float32frombits(endian.Uint32(coords[1][4*i:]))),
			Z: float64(math.Float32frombits(endian.Uint32(coords[2][4*i:]))),
		}
	}
	if D.header.FourDim {
		//the fourth dimension record is often missing in the last frame.
		if _, err := D.r.Peek(1); err == nil {
			if _, err := D.record(-1, fmt.Sprintf("frame %d fourth dimension", D.frames)); err != nil {
				return nil, err
			}
		}
	}
	D.frames++
	return frame, nil
}

// endOfStream turns an EOF at the start of a frame into the normal end of
// the trajectory.
func (D *Reader) endOfStream(start int64, err error) error {
	if errors.Is(err, io.EOF) && D.offset == start {
		D.readable = false
		if D.header.NSet > 0 && D.frames < int(D.header.NSet) {
			D.log.WithFields(logging.Fields{"frames": D.frames, "nset": D.header.NSet}).Warn("DCD file has fewer frames than its header states")
		}
		return chem.NewLastFrameError(formatName, D.name)
	}
	return D.truncated(start, fmt.Sprintf("frame %d", D.frames), err)
}

// Read reads a whole DCD trajectory from r. The trajectory has no atom data.
func Read(r io.Reader, name string) (*chem.Trajectory, error) {
	D, err := NewReader(r, name)
	if err != nil {
		return nil, chem.ErrDecorate(err, "dcd.Read")
	}
	H := D.Header()
	traj := chem.NewTrajectory(name, D.Len(), H.TimeStep())
	traj.Meta.Title = strings.TrimSpace(strings.Join(H.Titles, " "))
	traj.Meta.Software = "X-PLOR"
	if H.Charmm() {
		traj.Meta.Software = "CHARMM"
	}
	traj.Meta.StepSize = H.Delta
	for {
		frame, err := D.Next()
		if chem.IsLastFrame(err) {
			break
		}
		if err != nil {
			return nil, chem.ErrDecorate(err, "dcd.Read")
		}
		if err := traj.AddFrame(frame); err != nil {
			return nil, chem.NewOffsetError(formatName, name, D.offset, "%s", err.Error())
		}
	}
	traj.Meta.NumSteps = int(H.NSet)
	if H.NSet == 0 {
		traj.Meta.NumSteps = traj.NumFrames()
	}
	return traj, nil
}

// ReadFile reads the DCD file fname, which may be compressed.
func ReadFile(fname string) (*chem.Trajectory, error) {
	f, _, err := source.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	traj, err := Read(f, fname)
	return traj, chem.ErrDecorate(err, "dcd.ReadFile")
}
