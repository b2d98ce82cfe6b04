/*
 * gro.go, part of molview.
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

// Package gro reads and writes GROMACS .gro structure files.
//
// The format is column-exact: residue number (columns 1-5), residue name (6-10),
// atom name (11-15), atom number (16-20), x, y, z (21-44, 8 columns each, nm)
// and optionally vx, vy, vz (45-68, 8 columns each, nm/ps). Line 1 is a title,
// line 2 the atom count, and the line after the atoms holds the box. Several
// such blocks may be concatenated, one per frame.
//
// GRO files have no chain identifiers. Every atom gets chem.ChainPlaceholder,
// which carries no meaning.
package gro

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/logging"
	"github.com/rmera/molview/internal/source"
)

const formatName = "GRO"

// Software is the software tag recorded for GRO trajectories.
const Software = "GROMACS"

const (
	minLineLength      = 44
	minShiftedLength   = minLineLength - 1
	velocityLineLength = 68
)

// AtomRecord is the content of one atom line. ResidueID and AtomNumber are -1
// when the field could not be parsed.
type AtomRecord struct {
	ResidueID   int
	ResidueName string
	AtomName    string
	AtomNumber  int
	Position    chem.Vec3
	Velocity    chem.Vec3
	HasVelocity bool
}

// ParseAtomLine parses one GRO atom line. The fixed columns are tried first.
// Lines with the atom name and number one column to the left, which some
// tools write, are at most one character short. Those, and full-length lines
// whose fixed columns do not parse, are read as whitespace separated atom
// number, coordinates and optional velocities after column 15. Any shorter
// line is an error. Velocities are read only if present after the coordinates.
func ParseAtomLine(line string) (AtomRecord, error) {
	var rec AtomRecord
	if len(line) < minShiftedLength {
		return rec, shortLine(len(line), minLineLength)
	}
	var err error
	if rec.ResidueID, err = strconv.Atoi(strings.TrimSpace(line[0:5])); err != nil {
		rec.ResidueID = -1
	}
	rec.ResidueName = strings.TrimSpace(line[5:10])
	rec.AtomName = strings.TrimSpace(line[10:15])
	if len(line) >= minLineLength {
		if pos, err := parseVec(line[20:44], "coordinate"); err == nil {
			rec.Position = pos
			if rec.AtomNumber, err = strconv.Atoi(strings.TrimSpace(line[15:20])); err != nil {
				rec.AtomNumber = -1
			}
			return rec, parseVelocity(line, &rec)
		}
	}
	fields := strings.Fields(line[15:])
	if len(fields) != 4 && len(fields) != 7 {
		if len(line) < minLineLength {
			return rec, shortLine(len(line), minLineLength)
		}
		_, err := parseVec(line[20:44], "coordinate")
		return rec, err
	}
	if rec.AtomNumber, err = strconv.Atoi(fields[0]); err != nil {
		rec.AtomNumber = -1
	}
	var c [6]float64
	for k, f := range fields[1:] {
		if c[k], err = strconv.ParseFloat(f, 64); err != nil {
			what := "coordinate"
			if k >= 3 {
				what = "velocity"
			}
			return rec, fmt.Errorf("Invalid %s %q", what, f)
		}
	}
	rec.Position = chem.Vec3{X: c[0], Y: c[1], Z: c[2]}
	if len(fields) == 7 {
		rec.Velocity = chem.Vec3{X: c[3], Y: c[4], Z: c[5]}
		rec.HasVelocity = true
	}
	return rec, nil
}

func shortLine(n, want int) error {
	return fmt.Errorf("Line too short (%d chars), expected at least %d", n, want)
}

// parseVelocity reads the velocities after column 44 of a well formed line, as
// three whitespace separated values or, failing that, as 8-column fields.
func parseVelocity(line string, rec *AtomRecord) error {
	rest := line[minLineLength:]
	if strings.TrimSpace(rest) == "" {
		return nil
	}
	if fields := strings.Fields(rest); len(fields) == 3 {
		var c [3]float64
		ok := true
		for k, f := range fields {
			var err error
			if c[k], err = strconv.ParseFloat(f, 64); err != nil {
				ok = false
				break
			}
		}
		if ok {
			rec.Velocity = chem.Vec3{X: c[0], Y: c[1], Z: c[2]}
			rec.HasVelocity = true
			return nil
		}
	}
	if len(line) < velocityLineLength {
		return shortLine(len(line), velocityLineLength)
	}
	v, err := parseVec(line[44:68], "velocity")
	if err != nil {
		return err
	}
	rec.Velocity = v
	rec.HasVelocity = true
	return nil
}

// parseVec reads three 8-column floats.
func parseVec(s, what string) (chem.Vec3, error) {
	var c [3]float64
	for k := 0; k < 3; k++ {
		field := strings.TrimSpace(s[8*k : 8*k+8])
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return chem.Vec3{}, fmt.Errorf("Invalid %s %q", what, field)
		}
		c[k] = v
	}
	return chem.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// reader keeps the state of a GRO parse.
type reader struct {
	r    *bufio.Reader
	name string
	line int
	log  *logging.Entry
}

func (R *reader) readLine() (string, error) {
	line, err := R.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	R.line++
	return strings.TrimRight(line, "\r\n"), nil
}

func (R *reader) errorf(msg string, args ...interface{}) error {
	return chem.NewParseError(formatName, R.name, R.line, msg, args...)
}

// frameBlock reads one title/count/atoms/box block. It returns io.EOF if
// there is no block left.
func (R *reader) frameBlock(index int, natoms int, atoms *[]chem.AtomData) (*chem.FrameData, string, error) {
	var title string
	var err error
	for {
		title, err = R.readLine()
		if err != nil {
			return nil, "", io.EOF
		}
		//blank lines are only allowed between frames.
		if index == 0 || strings.TrimSpace(title) != "" {
			break
		}
	}
	countLine, err := R.readLine()
	if err != nil {
		R.line++
		return nil, "", R.errorf("Missing atom count")
	}
	n, err := strconv.Atoi(strings.TrimSpace(countLine))
	if err != nil {
		return nil, "", R.errorf("Invalid atom count %q", strings.TrimSpace(countLine))
	}
	if n == 0 {
		return nil, "", R.errorf("Number of atoms cannot be zero")
	}
	if n < 0 {
		return nil, "", R.errorf("Invalid atom count %d", n)
	}
	if natoms > 0 && n != natoms {
		return nil, "", R.errorf("Number of atoms changed from %d to %d", natoms, n)
	}
	frame := chem.NewFrame(index, float64(index), n)
	if _, t, ok := splitTitle(title); ok {
		frame.Time = t
	}
	first := *atoms == nil
	if first {
		*atoms = make([]chem.AtomData, n)
	}
	for i := 0; i < n; i++ {
		line, err := R.readLine()
		if err != nil {
			R.line++
			return nil, "", R.errorf("Expected %d atom lines, found %d", n, i)
		}
		rec, err := ParseAtomLine(line)
		if err != nil {
			return nil, "", R.errorf("%s", err.Error())
		}
		if i == 0 && rec.HasVelocity {
			frame.Velocities = make([]chem.Vec3, n)
		}
		if frame.Velocities != nil && !rec.HasVelocity {
			if len(line) < velocityLineLength {
				return nil, "", R.errorf("%s", shortLine(len(line), velocityLineLength))
			}
			return nil, "", R.errorf("Missing velocities")
		}
		frame.Positions[i] = rec.Position
		if frame.Velocities != nil {
			frame.Velocities[i] = rec.Velocity
		}
		if first {
			(*atoms)[i] = R.atomData(i, rec)
		}
	}
	boxLine, err := R.readLine()
	if err == nil && strings.TrimSpace(boxLine) != "" {
		fields := strings.Fields(boxLine)
		if len(fields) < 3 {
			return nil, "", R.errorf("Box line needs 3 values, found %d", len(fields))
		}
		var b [3]float64
		for k := 0; k < 3; k++ {
			if b[k], err = strconv.ParseFloat(fields[k], 64); err != nil {
				return nil, "", R.errorf("Invalid box value %q", fields[k])
			}
		}
		frame.SetBox(b[0], b[1], b[2])
	}
	return frame, title, nil
}

func (R *reader) atomData(i int, rec AtomRecord) chem.AtomData {
	name := rec.AtomName
	if name == "" {
		name = "X"
	}
	e, ok := chem.ElementFromName(name)
	if !ok {
		R.log.WithFields(logging.Fields{"line": R.line, "atom": name}).Warn("unknown element for atom name, using Unknown")
	}
	at := chem.NewAtomData(i, e, name)
	at.ResidueName = rec.ResidueName
	if at.ResidueName == "" {
		at.ResidueName = "UNK"
	}
	at.ResidueID = rec.ResidueID
	if at.ResidueID < 0 {
		at.ResidueID = i
	}
	at.Serial = rec.AtomNumber
	if at.Serial < 0 {
		at.Serial = i + 1
	}
	at.ChainID = chem.ChainPlaceholder
	return at
}

// splitTitle separates the "t= <time>" token GROMACS appends to titles from
// the rest of the title.
func splitTitle(title string) (string, float64, bool) {
	idx := strings.LastIndex(title, "t=")
	if idx < 0 || (idx > 0 && title[idx-1] != ' ' && title[idx-1] != ',') {
		return strings.TrimSpace(title), 0, false
	}
	fields := strings.Fields(title[idx+2:])
	if len(fields) == 0 {
		return strings.TrimSpace(title), 0, false
	}
	t, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return strings.TrimSpace(title), 0, false
	}
	rest := strings.TrimRight(strings.TrimSpace(title[:idx]), ",")
	return strings.TrimSpace(rest), t, true
}

// Read reads a GRO file, with one or more frames, from r. Coordinates are kept
// in nm. The first title line is kept verbatim as the trajectory title.
// name is recorded as the trajectory source and used in errors.
func Read(r io.Reader, name string) (*chem.Trajectory, error) {
	R := &reader{r: bufio.NewReader(r), name: name, log: logging.Component("gro").WithField("source", name)}
	var traj *chem.Trajectory
	var atoms []chem.AtomData
	for index := 0; ; index++ {
		natoms := 0
		if traj != nil {
			natoms = traj.NumAtoms
		}
		frame, title, err := R.frameBlock(index, natoms, &atoms)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, chem.ErrDecorate(err, "gro.Read")
		}
		if traj == nil {
			traj = chem.NewTrajectory(name, len(frame.Positions), 1.0)
			traj.Atoms = atoms
			traj.Units = chem.Nanometer
			traj.Meta.Title = title
			traj.Meta.Software = Software
			traj.Meta.ChainPlaceholder = true
		}
		if err := traj.AddFrame(frame); err != nil {
			return nil, R.errorf("%s", err.Error())
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

// ReadString reads a GRO trajectory from a string.
func ReadString(s, name string) (*chem.Trajectory, error) {
	return Read(strings.NewReader(s), name)
}

// ReadFile reads the GRO file fname, which may be compressed.
func ReadFile(fname string) (*chem.Trajectory, error) {
	f, _, err := source.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	traj, err := Read(f, fname)
	return traj, chem.ErrDecorate(err, "gro.ReadFile")
}
