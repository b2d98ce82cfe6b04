/*
 * pdb.go, part of molview.
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

// Package pdb reads and writes Protein Data Bank files.
//
// ATOM and HETATM records are read by column. Every MODEL/ENDMDL block is a
// frame; the atoms of the first model give the atom data, and later models must
// have the same number of atoms. CRYST1 sets the box, HEADER the classification,
// TITLE the title. CONECT records become the explicit bond list of the
// trajectory, with repeated partners in one record giving the bond order.
// Other records are ignored.
package pdb

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
	"gonum.org/v1/gonum/spatial/r3"
)

const formatName = "PDB"

// minAtomLine is the length up to the end of the z coordinate.
const minAtomLine = 54

// reader keeps the state of a PDB parse.
type reader struct {
	name  string
	line  int
	log   *logging.Entry
	traj  *chem.Trajectory
	atoms []chem.AtomData
	//current model
	pos      []chem.Vec3
	inModel  bool
	firstEnd bool //true once the first model is complete
	box      *chem.Vec3
	title    []string
	conect   []conectRecord
}

type conectRecord struct {
	line     int
	from     int
	partners []int
}

func (R *reader) errorf(msg string, args ...interface{}) error {
	return chem.NewParseError(formatName, R.name, R.line, msg, args...)
}

// field returns the trimmed columns [from,to) of line, or "" if the line is
// too short.
func field(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

// atomLine reads an ATOM or HETATM record. Alternate locations other than the
// first are skipped.
func (R *reader) atomLine(line string) error {
	if len(line) < minAtomLine {
		return R.errorf("ATOM record too short (%d chars), expected at least %d", len(line), minAtomLine)
	}
	if alt := line[16]; alt != ' ' && alt != 'A' && alt != '1' {
		return nil
	}
	var c [3]float64
	var err error
	for k := 0; k < 3; k++ {
		col := 30 + 8*k
		if c[k], err = strconv.ParseFloat(field(line, col, col+8), 64); err != nil {
			return R.errorf("Invalid coordinate %q", field(line, col, col+8))
		}
	}
	R.pos = append(R.pos, chem.Vec3{X: c[0], Y: c[1], Z: c[2]})
	if R.firstEnd {
		if len(R.pos) > len(R.atoms) {
			return R.errorf("Number of atoms changed: model %d has more than %d atoms", len(R.traj.Frames)+1, len(R.atoms))
		}
		return nil
	}
	serial, err := strconv.Atoi(field(line, 6, 11))
	if err != nil {
		return R.errorf("Invalid serial number %q", field(line, 6, 11))
	}
	resseq, err := strconv.Atoi(field(line, 22, 26))
	if err != nil {
		return R.errorf("Invalid residue sequence %q", field(line, 22, 26))
	}
	name := field(line, 12, 16)
	at := chem.NewAtomData(len(R.atoms), chem.Unknown, name)
	at.Serial = serial
	at.ResidueName = field(line, 17, 20)
	at.ChainID = field(line, 21, 22)
	at.ResidueID = resseq
	if occ, err := strconv.ParseFloat(field(line, 54, 60), 64); err == nil {
		at.Occupancy = occ
	}
	if b, err := strconv.ParseFloat(field(line, 60, 66), 64); err == nil {
		at.BFactor = b
	}
	at.Element = R.element(line, name)
	at.Mass = at.Element.Mass()
	at.Charge = parseCharge(field(line, 78, 80))
	R.atoms = append(R.atoms, at)
	return nil
}

// element uses the element columns (77-78) and falls back to the atom name.
func (R *reader) element(line, name string) chem.Element {
	if sym := field(line, 76, 78); sym != "" {
		if e, err := chem.ElementFromSymbol(sym); err == nil {
			return e
		}
	}
	e, ok := chem.ElementFromName(name)
	if !ok {
		R.log.WithFields(logging.Fields{"line": R.line, "atom": name}).Warn("unknown element for atom name, using Unknown")
	}
	return e
}

// parseCharge reads charges written as "2-" or "1+".
func parseCharge(s string) float64 {
	if len(s) != 2 {
		return 0
	}
	v, err := strconv.Atoi(s[:1])
	if err != nil {
		return 0
	}
	if s[1] == '-' {
		return -float64(v)
	}
	return float64(v)
}

// closeModel turns the positions read so far into a frame.
func (R *reader) closeModel() error {
	R.inModel = false
	if len(R.pos) == 0 {
		return nil
	}
	if !R.firstEnd {
		R.firstEnd = true
		R.traj = chem.NewTrajectory(R.name, len(R.atoms), 1.0)
		R.traj.Atoms = R.atoms
	} else if len(R.pos) != len(R.atoms) {
		return R.errorf("Number of atoms changed from %d to %d in model %d", len(R.atoms), len(R.pos), len(R.traj.Frames)+1)
	}
	index := len(R.traj.Frames)
	frame := &chem.FrameData{Index: index, Time: float64(index) * R.traj.TimeStep, Positions: R.pos}
	if R.box != nil {
		box := *R.box
		frame.Box = &box
	}
	R.pos = nil
	return R.traj.AddFrame(frame)
}

func (R *reader) cryst1(line string) {
	var b [3]float64
	for k := 0; k < 3; k++ {
		col := 6 + 9*k
		v, err := strconv.ParseFloat(field(line, col, col+9), 64)
		if err != nil {
			R.log.WithField("line", R.line).Warn("unreadable CRYST1 record ignored")
			return
		}
		b[k] = v
	}
	R.box = &chem.Vec3{X: b[0], Y: b[1], Z: b[2]}
}

func (R *reader) conectLine(line string) error {
	from, err := strconv.Atoi(field(line, 6, 11))
	if err != nil {
		return R.errorf("Invalid atom serial %q in CONECT record", field(line, 6, 11))
	}
	rec := conectRecord{line: R.line, from: from}
	for col := 11; col < 31 && col < len(line); col += 5 {
		f := field(line, col, col+5)
		if f == "" {
			continue
		}
		to, err := strconv.Atoi(f)
		if err != nil {
			return R.errorf("Invalid atom serial %q in CONECT record", f)
		}
		rec.partners = append(rec.partners, to)
	}
	R.conect = append(R.conect, rec)
	return nil
}

// bonds resolves the CONECT records against the atom serials.
func (R *reader) bonds() []chem.BondData {
	if len(R.conect) == 0 {
		return nil
	}
	ids := make(map[int]int, len(R.atoms))
	for i, a := range R.atoms {
		if _, ok := ids[a.Serial]; !ok {
			ids[a.Serial] = i
		}
	}
	orders := make(map[[2]int]int)
	for _, rec := range R.conect {
		a, ok := ids[rec.from]
		if !ok {
			R.log.WithFields(logging.Fields{"line": rec.line, "serial": rec.from}).Warn("CONECT record for unknown atom ignored")
			continue
		}
		count := make(map[int]int)
		for _, p := range rec.partners {
			b, ok := ids[p]
			if !ok {
				R.log.WithFields(logging.Fields{"line": rec.line, "serial": p}).Warn("CONECT partner is not a known atom, ignored")
				continue
			}
			if b != a {
				count[b]++
			}
		}
		for b, n := range count {
			key := [2]int{a, b}
			if b < a {
				key = [2]int{b, a}
			}
			if n > orders[key] {
				orders[key] = n
			}
		}
	}
	if len(orders) == 0 {
		//no usable CONECT pair, so bonds are left to distance-based detection
		return nil
	}
	frame := R.traj.Frames[0]
	ret := make([]chem.BondData, 0, len(orders))
	for key, n := range orders {
		if n > int(chem.Triple) {
			n = int(chem.Triple)
		}
		ea, eb := R.atoms[key[0]].Element, R.atoms[key[1]].Element
		d := r3.Norm(r3.Sub(frame.Positions[key[1]], frame.Positions[key[0]]))
		ret = append(ret, chem.NewBond(key[0], key[1], chem.ClassifyBondType(ea, eb), chem.BondOrder(n), d))
	}
	return chem.CanonicalBonds(ret)
}

// Read reads a PDB file from r. name is recorded as the trajectory source and
// used in errors.
func Read(r io.Reader, name string) (*chem.Trajectory, error) {
	R := &reader{name: name, log: logging.Component("pdb").WithField("source", name)}
	var classification, idCode string
	in := bufio.NewReader(r)
	for {
		line, err := in.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, chem.NewIOError(formatName, name, err)
		}
		R.line++
		line = strings.TrimRight(line, "\r\n")
		record := strings.TrimSpace(field(line, 0, 6))
		var rerr error
		switch record {
		case "ATOM", "HETATM":
			rerr = R.atomLine(line)
		case "MODEL":
			if R.inModel {
				rerr = R.closeModel()
			}
			R.inModel = true
		case "ENDMDL":
			rerr = R.closeModel()
		case "HEADER":
			classification = field(line, 10, 50)
			idCode = field(line, 62, 66)
		case "TITLE":
			if t := field(line, 10, 80); t != "" {
				R.title = append(R.title, t)
			}
		case "CRYST1":
			R.cryst1(line)
		case "CONECT":
			rerr = R.conectLine(line)
		}
		if rerr != nil {
			return nil, chem.ErrDecorate(rerr, "pdb.Read")
		}
		if record == "END" {
			break
		}
	}
	if err := R.closeModel(); err != nil {
		return nil, chem.ErrDecorate(err, "pdb.Read")
	}
	if R.traj == nil {
		return nil, chem.NewParseError(formatName, name, 0, "No ATOM or HETATM records found")
	}
	traj := R.traj
	traj.Meta.Title = strings.Join(R.title, " ")
	traj.Meta.Classification = classification
	if idCode != "" {
		traj.Meta.Extra = map[string]string{"id": idCode}
	}
	traj.Meta.NumSteps = len(traj.Frames)
	traj.Meta.StepSize = traj.TimeStep
	traj.Bonds = R.bonds()
	return traj, nil
}

// ReadString reads a PDB trajectory from a string.
func ReadString(s, name string) (*chem.Trajectory, error) {
	return Read(strings.NewReader(s), name)
}

// ReadFile reads the PDB file fname, which may be compressed.
func ReadFile(fname string) (*chem.Trajectory, error) {
	f, _, err := source.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	traj, err := Read(f, fname)
	return traj, chem.ErrDecorate(err, "pdb.ReadFile")
}

// chargeString formats an integral charge the way PDB files do, "2-", "1+".
func chargeString(q float64) string {
	n := int(q)
	if float64(n) != q || n == 0 || n > 9 || n < -9 {
		return ""
	}
	if n < 0 {
		return fmt.Sprintf("%d-", -n)
	}
	return fmt.Sprintf("%d+", n)
}
