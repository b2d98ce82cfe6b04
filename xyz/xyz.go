/*
 * xyz.go, part of molview.
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

// Package xyz reads and writes XYZ coordinate files, single or multi-frame.
//
// Each frame is an atom count line, a comment line and one "symbol x y z" line per
// atom. Coordinates are in Å. A "time=<value>" or "t=<value>" token in the comment
// sets the frame time. XYZ has no residue or chain information: residues are left
// empty and chains get the chem.ChainPlaceholder.
package xyz

import (
	"bufio"
	"errors"
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/logging"
	"github.com/rmera/molview/internal/source"
)

const formatName = "XYZ"

// DefaultTimeStep is the time between frames when the file doesn't state it.
const DefaultTimeStep = 1.0

// Stream reads an XYZ file one frame at a time. It implements chem.FrameReader.
type Stream struct {
	r        *bufio.Reader
	source   string
	line     int
	natoms   int
	atoms    []chem.AtomData
	comment  string
	frames   int
	readable bool
}

// NewStream returns a Stream reading from r. name identifies the input in errors.
func NewStream(r io.Reader, name string) *Stream {
	return &Stream{r: bufio.NewReader(r), source: name, natoms: -1, readable: true}
}

// Readable returns true if the stream may have more frames.
func (S *Stream) Readable() bool { return S.readable }

// Len returns the number of atoms per frame, or -1 before the first frame is read.
func (S *Stream) Len() int { return S.natoms }

// Atoms returns the atom data read from the first frame.
func (S *Stream) Atoms() []chem.AtomData { return S.atoms }

// Comment returns the comment line of the last frame read.
func (S *Stream) Comment() string { return S.comment }

// readLine returns the next line without its line terminator. io.EOF is only
// returned when there is nothing left to read.
func (S *Stream) readLine() (string, error) {
	line, err := S.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	S.line++
	return strings.TrimRight(line, "\r\n"), nil
}

func (S *Stream) parseError(msg string, args ...interface{}) error {
	S.readable = false
	return chem.NewParseError(formatName, S.source, S.line, msg, args...)
}

// Next reads the next frame. It returns a chem.LastFrameError when the input is exhausted.
func (S *Stream) Next() (*chem.FrameData, error) {
	if !S.readable {
		return nil, chem.NewLastFrameError(formatName, S.source)
	}
	var line string
	var err error
	for {
		line, err = S.readLine()
		if errors.Is(err, io.EOF) {
			S.readable = false
			return nil, chem.NewLastFrameError(formatName, S.source)
		}
		if err != nil {
			S.readable = false
			return nil, chem.NewIOError(formatName, S.source, err)
		}
		if strings.TrimSpace(line) != "" {
			break
		}
	}
	fields := strings.Fields(line)
	n, err := strconv.Atoi(fields[0])
	if err != nil || n < 0 {
		return nil, S.parseError("Invalid atom count %q", fields[0])
	}
	if n == 0 {
		return nil, S.parseError("Number of atoms cannot be zero")
	}
	if S.natoms >= 0 && n != S.natoms {
		return nil, S.parseError("Number of atoms changed from %d to %d", S.natoms, n)
	}
	S.comment, err = S.readLine()
	if err != nil {
		return nil, S.parseError("Unexpected end of file, expected comment line")
	}
	frame := chem.NewFrame(S.frames, float64(S.frames)*DefaultTimeStep, n)
	if t, ok := timeFromComment(S.comment); ok {
		frame.Time = t
	}
	first := S.atoms == nil
	if first {
		S.atoms = make([]chem.AtomData, n)
	}
	for i := 0; i < n; i++ {
		line, err = S.readLine()
		if err != nil {
			S.line++
			return nil, S.parseError("Expected %d atom lines, found %d", n, i)
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return nil, S.parseError("Expected at least 4 fields (symbol x y z), found %d", len(fields))
		}
		var c [3]float64
		for k := 0; k < 3; k++ {
			c[k], err = strconv.ParseFloat(fields[k+1], 64)
			if err != nil {
				return nil, S.parseError("Invalid coordinate %q", fields[k+1])
			}
		}
		frame.Positions[i] = chem.Vec3{X: c[0], Y: c[1], Z: c[2]}
		if first {
			S.atoms[i] = S.atomData(i, fields[0])
		}
	}
	if first {
		S.natoms = n
	}
	S.frames++
	return frame, nil
}

func (S *Stream) atomData(i int, symbol string) chem.AtomData {
	e, err := chem.ElementFromSymbol(symbol)
	if err != nil {
		//some programs write atomic numbers instead of symbols
		if z, err2 := strconv.Atoi(symbol); err2 == nil && z > 0 && z <= chem.NumElements {
			e, err = chem.Element(z), nil
		}
	}
	if err != nil {
		logging.Component("xyz").WithFields(logging.Fields{"source": S.source, "line": S.line, "symbol": symbol}).Warn("unknown element symbol, using Unknown")
	}
	at := chem.NewAtomData(i, e, symbol)
	at.ChainID = chem.ChainPlaceholder
	return at
}

// timeFromComment looks for a time=<value> or t=<value> token.
func timeFromComment(comment string) (float64, bool) {
	for _, tok := range strings.Fields(comment) {
		key, val, ok := strings.Cut(tok, "=")
		if !ok {
			continue
		}
		key = strings.ToLower(key)
		if key != "time" && key != "t" {
			continue
		}
		if t, err := strconv.ParseFloat(strings.TrimRight(val, ","), 64); err == nil {
			return t, true
		}
	}
	return 0, false
}

// Read reads all the frames of an XYZ file from r. name is recorded as the
// trajectory's source and used in errors. On error, no trajectory is returned.
func Read(r io.Reader, name string) (*chem.Trajectory, error) {
	S := NewStream(r, name)
	var traj *chem.Trajectory
	for {
		frame, err := S.Next()
		if chem.IsLastFrame(err) {
			break
		}
		if err != nil {
			return nil, chem.ErrDecorate(err, "xyz.Read")
		}
		if traj == nil {
			traj = chem.NewTrajectory(name, S.Len(), DefaultTimeStep)
			traj.Atoms = S.Atoms()
			traj.Meta.Title = strings.TrimSpace(S.Comment())
			traj.Meta.ChainPlaceholder = true
		}
		if err := traj.AddFrame(frame); err != nil {
			return nil, chem.NewParseError(formatName, name, S.line, "%s", err.Error())
		}
	}
	if traj == nil {
		return nil, chem.NewParseError(formatName, name, 1, "Empty file")
	}
	if len(traj.Frames) > 1 {
		if dt := traj.Frames[1].Time - traj.Frames[0].Time; dt > 0 {
			traj.TimeStep = dt
		}
	}
	traj.Meta.NumSteps = len(traj.Frames)
	traj.Meta.StepSize = traj.TimeStep
	return traj, nil
}

// ReadString reads an XYZ trajectory from a string.
func ReadString(s, name string) (*chem.Trajectory, error) {
	return Read(strings.NewReader(s), name)
}

// ReadFile reads the XYZ file fname, which may be compressed.
func ReadFile(fname string) (*chem.Trajectory, error) {
	f, _, err := source.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	traj, err := Read(f, fname)
	return traj, chem.ErrDecorate(err, "xyz.ReadFile")
}
