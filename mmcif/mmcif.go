/*
 * mmcif.go, part of molview.
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

// Package mmcif reads and writes the _atom_site table of PDBx/mmCIF files.
//
// Only the first data block is read. Rows of _atom_site with different
// pdbx_PDB_model_num values are read as frames, and every model must have the
// same number of atoms as the first one. Label fields are preferred over auth
// fields for names, residues and sequence numbers; the chain is the auth_asym_id,
// since that is what the rest of the world calls the chain.
package mmcif

import (
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/logging"
	"github.com/rmera/molview/internal/source"
)

const formatName = "mmCIF"

// cols maps the lower-case _atom_site tags to their column in the loop.
// Tags not in the file map to -1.
type cols map[string]int

var atomSiteTags = []string{
	"group_pdb", "id", "type_symbol", "label_atom_id", "auth_atom_id", "label_alt_id",
	"label_comp_id", "auth_comp_id", "label_asym_id", "auth_asym_id", "label_seq_id",
	"auth_seq_id", "cartn_x", "cartn_y", "cartn_z", "occupancy", "b_iso_or_equiv",
	"pdbx_formal_charge", "pdbx_pdb_model_num",
}

func newCols(L *Loop) cols {
	m := make(cols, len(atomSiteTags))
	for _, t := range atomSiteTags {
		m[t] = L.Column("_atom_site." + t)
	}
	return m
}

// get returns the value of the tag in row, and false if the column is
// missing or holds a null value.
func (m cols) get(row []string, tag string) (string, bool) {
	i, ok := m[tag]
	if !ok || i < 0 || isNull(row[i]) {
		return "", false
	}
	return row[i], true
}

// first returns the first of the tags present in row.
func (m cols) first(row []string, tags ...string) (string, bool) {
	for _, t := range tags {
		if v, ok := m.get(row, t); ok {
			return v, true
		}
	}
	return "", false
}

// atomSite returns the _atom_site table of B. A single atom can be given as
// plain items instead of a loop; it is turned into a one-row loop.
func atomSite(B *Block) *Loop {
	if L := B.Loop("atom_site"); L != nil {
		return L
	}
	L := &Loop{Category: "atom_site"}
	var row []string
	for tag, v := range B.Items {
		if category(tag) == "atom_site" {
			L.Columns = append(L.Columns, tag)
			row = append(row, v)
		}
	}
	if len(row) == 0 {
		return nil
	}
	L.Rows = [][]string{row}
	L.RowLines = []int{0}
	return L
}

type reader struct {
	name string
	log  *logging.Entry
	m    cols
	L    *Loop
}

func (R *reader) errorf(row int, msg string, args ...interface{}) error {
	line := R.L.Line
	if row < len(R.L.RowLines) {
		line = R.L.RowLines[row]
	}
	return chem.NewParseError(formatName, R.name, line, msg, args...)
}

// fillAtom builds the atom data of row number i, which becomes the atom id.
func (R *reader) fillAtom(i, id int) chem.AtomData {
	row := R.L.Rows[i]
	at := chem.NewAtomData(id, chem.Unknown, "X")
	do := func(tags []string, f func(string)) {
		if v, ok := R.m.first(row, tags...); ok {
			f(v)
		}
	}
	do([]string{"label_atom_id", "auth_atom_id"}, func(v string) { at.Name = v })
	do([]string{"label_comp_id", "auth_comp_id"}, func(v string) { at.ResidueName = v })
	do([]string{"auth_asym_id", "label_asym_id"}, func(v string) { at.ChainID = v })
	do([]string{"id"}, func(v string) {
		if n, err := strconv.Atoi(v); err == nil {
			at.Serial = n
		}
	})
	//label_seq_id is "." for waters and ligands.
	at.ResidueID = -1
	for _, t := range []string{"label_seq_id", "auth_seq_id"} {
		if v, ok := R.m.get(row, t); ok {
			if n, err := strconv.Atoi(v); err == nil {
				at.ResidueID = n
				break
			}
		}
	}
	do([]string{"occupancy"}, func(v string) {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			at.Occupancy = f
		}
	})
	do([]string{"b_iso_or_equiv"}, func(v string) {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			at.BFactor = f
		}
	})
	do([]string{"pdbx_formal_charge"}, func(v string) {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			at.Charge = f
		}
	})
	at.Element = R.element(row, at.Name, i)
	at.Mass = at.Element.Mass()
	if at.ResidueName == "" {
		at.ResidueName = "UNK"
	}
	return at
}

func (R *reader) element(row []string, name string, i int) chem.Element {
	if sym, ok := R.m.get(row, "type_symbol"); ok {
		if e, err := chem.ElementFromSymbol(sym); err == nil {
			return e
		}
	}
	e, ok := chem.ElementFromName(name)
	if !ok {
		R.log.WithFields(logging.Fields{"row": i + 1, "atom": name}).Warn("unknown element for atom name, using Unknown")
	}
	return e
}

// keep reports whether row i is a first alternate location.
func (R *reader) keep(i int) bool {
	alt, ok := R.m.get(R.L.Rows[i], "label_alt_id")
	return !ok || alt == "A" || alt == "1"
}

func (R *reader) position(i int) (chem.Vec3, error) {
	var c [3]float64
	for k, t := range []string{"cartn_x", "cartn_y", "cartn_z"} {
		v := R.L.Rows[i][R.m[t]]
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return chem.Vec3{}, R.errorf(i, "Invalid coordinate %q in _atom_site.%s", v, "Cartn_"+t[len(t)-1:])
		}
		c[k] = f
	}
	return chem.Vec3{X: c[0], Y: c[1], Z: c[2]}, nil
}

// models splits the rows into models, in file order.
func (R *reader) models() [][]int {
	var ret [][]int
	index := make(map[string]int)
	for i := range R.L.Rows {
		if !R.keep(i) {
			continue
		}
		model, _ := R.m.get(R.L.Rows[i], "pdbx_pdb_model_num")
		j, ok := index[model]
		if !ok {
			j = len(ret)
			index[model] = j
			ret = append(ret, nil)
		}
		ret[j] = append(ret[j], i)
	}
	return ret
}

func newReader(B *Block, name string) (*reader, error) {
	L := atomSite(B)
	if L == nil {
		return nil, chem.NewParseError(formatName, name, 0, "No _atom_site records found")
	}
	return &reader{name: name, L: L, m: newCols(L), log: logging.Component("mmcif").WithField("source", name)}, nil
}

// ReadAtoms reads only the atom data of the first model of an mmCIF file.
// Coordinates are neither required nor read.
func ReadAtoms(r io.Reader, name string) ([]chem.AtomData, error) {
	B, err := ParseBlock(r, name)
	if err != nil {
		return nil, chem.ErrDecorate(err, "mmcif.ReadAtoms")
	}
	R, err := newReader(B, name)
	if err != nil {
		return nil, err
	}
	models := R.models()
	if len(models) == 0 {
		return nil, chem.NewParseError(formatName, name, R.L.Line, "No _atom_site records found")
	}
	atoms := make([]chem.AtomData, len(models[0]))
	for id, i := range models[0] {
		atoms[id] = R.fillAtom(i, id)
	}
	return atoms, nil
}

// Read reads an mmCIF file from r. name is recorded as the trajectory source
// and used in errors.
func Read(r io.Reader, name string) (*chem.Trajectory, error) {
	B, err := ParseBlock(r, name)
	if err != nil {
		return nil, chem.ErrDecorate(err, "mmcif.Read")
	}
	return FromBlock(B, name)
}

// FromBlock builds a trajectory from an already parsed data block.
func FromBlock(B *Block, name string) (*chem.Trajectory, error) {
	R, err := newReader(B, name)
	if err != nil {
		return nil, err
	}
	var missing []string
	for _, t := range []string{"Cartn_x", "Cartn_y", "Cartn_z"} {
		if R.m[strings.ToLower(t)] < 0 {
			missing = append(missing, "_atom_site."+t)
		}
	}
	if len(missing) > 0 {
		return nil, chem.NewParseError(formatName, name, R.L.Line, "Missing coordinate column(s) %s", strings.Join(missing, ", "))
	}
	models := R.models()
	if len(models) == 0 {
		return nil, chem.NewParseError(formatName, name, R.L.Line, "No _atom_site records found")
	}
	natoms := len(models[0])
	traj := chem.NewTrajectory(name, natoms, 1.0)
	traj.Atoms = make([]chem.AtomData, natoms)
	for id, i := range models[0] {
		traj.Atoms[id] = R.fillAtom(i, id)
	}
	box := cell(B)
	for j, rows := range models {
		if len(rows) != natoms {
			return nil, R.errorf(rows[0], "Number of atoms changed from %d to %d in model %d", natoms, len(rows), j+1)
		}
		frame := chem.NewFrame(j, float64(j)*traj.TimeStep, natoms)
		for id, i := range rows {
			if frame.Positions[id], err = R.position(i); err != nil {
				return nil, err
			}
		}
		if box != nil {
			frame.SetBox(box.X, box.Y, box.Z)
		}
		if err := traj.AddFrame(frame); err != nil {
			return nil, chem.ErrDecorate(err, "mmcif.FromBlock")
		}
	}
	traj.Meta.Title, _ = B.Item("_struct.title")
	traj.Meta.Classification, _ = B.Item("_struct_keywords.pdbx_keywords")
	id := B.ID
	if e, ok := B.Item("_entry.id"); ok {
		id = e
	}
	if id != "" {
		traj.Meta.Extra = map[string]string{"id": id}
	}
	traj.Meta.NumSteps = len(traj.Frames)
	traj.Meta.StepSize = traj.TimeStep
	return traj, nil
}

// cell returns the box given by _cell.length_a/b/c, or nil.
func cell(B *Block) *chem.Vec3 {
	var c [3]float64
	for k, t := range []string{"a", "b", "c"} {
		v, ok := B.Item("_cell.length_" + t)
		if !ok {
			return nil
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil
		}
		c[k] = f
	}
	return &chem.Vec3{X: c[0], Y: c[1], Z: c[2]}
}

// ReadString reads an mmCIF trajectory from a string.
func ReadString(s, name string) (*chem.Trajectory, error) {
	return Read(strings.NewReader(s), name)
}

// ReadFile reads the mmCIF file fname, which may be compressed.
func ReadFile(fname string) (*chem.Trajectory, error) {
	f, _, err := source.Open(fname)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	traj, err := Read(f, fname)
	return traj, chem.ErrDecorate(err, "mmcif.ReadFile")
}
