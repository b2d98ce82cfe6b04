/*
 * mmcif_write.go, part of molview.
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

package mmcif

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/source"
	"gonum.org/v1/gonum/spatial/r3"
)

// atomSiteHeader is the column order of the written _atom_site loop.
var atomSiteHeader = []string{
	"group_PDB", "id", "type_symbol", "label_atom_id", "label_alt_id", "label_comp_id",
	"label_asym_id", "label_entity_id", "label_seq_id", "Cartn_x", "Cartn_y", "Cartn_z",
	"occupancy", "B_iso_or_equiv", "pdbx_formal_charge", "auth_asym_id", "auth_seq_id",
	"pdbx_PDB_ins_code",
}

var polymer = map[string]bool{
	"ALA": true, "ARG": true, "ASN": true, "ASP": true, "CYS": true,
	"GLN": true, "GLU": true, "GLY": true, "HIS": true, "ILE": true,
	"LEU": true, "LYS": true, "MET": true, "PHE": true, "PRO": true,
	"SER": true, "THR": true, "TRP": true, "TYR": true, "VAL": true,
	"DA": true, "DC": true, "DG": true, "DT": true,
	"A": true, "C": true, "G": true, "U": true,
}

// quote returns v as a CIF value, quoting it if needed. Empty values are
// written as ".".
func quote(v string) string {
	if v == "" {
		return "."
	}
	if !strings.ContainsAny(v, " \t\n") && !strings.ContainsAny(v[:1], "_#$;[]'\"") && v != "." && v != "?" {
		low := strings.ToLower(v)
		if low != "loop_" && !strings.HasPrefix(low, "data_") && !strings.HasPrefix(low, "save_") {
			return v
		}
	}
	if strings.Contains(v, "\n") || (strings.Contains(v, "' ") && strings.Contains(v, "\" ")) {
		return "\n;" + v + "\n;"
	}
	if strings.Contains(v, "' ") || strings.HasSuffix(v, "'") {
		return `"` + v + `"`
	}
	return "'" + v + "'"
}

// Write writes traj to w as an mmCIF data block, with coordinates in Å.
// Several frames are written as models, with a pdbx_PDB_model_num column.
func Write(w io.Writer, traj *chem.Trajectory) error {
	out := bufio.NewWriter(w)
	write(out, traj)
	if err := out.Flush(); err != nil {
		return chem.NewIOError(formatName, traj.Meta.Source, err)
	}
	return nil
}

func write(out *bufio.Writer, traj *chem.Trajectory) {
	id := traj.Meta.Extra["id"]
	if id == "" {
		id = "molview"
	}
	id = strings.ReplaceAll(id, " ", "_")
	fmt.Fprintf(out, "data_%s\n#\n", id)
	fmt.Fprintf(out, "_entry.id %s\n#\n", quote(id))
	if traj.Meta.Title != "" {
		fmt.Fprintf(out, "_struct.title %s\n#\n", quote(traj.Meta.Title))
	}
	if traj.Meta.Classification != "" {
		fmt.Fprintf(out, "_struct_keywords.pdbx_keywords %s\n#\n", quote(traj.Meta.Classification))
	}
	scale := traj.Units.ToAngstrom()
	if len(traj.Frames) > 0 {
		if box, ok := traj.Frames[0].BoxDims(); ok {
			box = r3.Scale(scale, box)
			fmt.Fprintf(out, "_cell.length_a %.3f\n_cell.length_b %.3f\n_cell.length_c %.3f\n", box.X, box.Y, box.Z)
			fmt.Fprintf(out, "_cell.angle_alpha 90.00\n_cell.angle_beta 90.00\n_cell.angle_gamma 90.00\n#\n")
		}
	}
	models := len(traj.Frames) > 1
	fmt.Fprintln(out, "loop_")
	for _, h := range atomSiteHeader {
		fmt.Fprintf(out, "_atom_site.%s\n", h)
	}
	if models {
		fmt.Fprintln(out, "_atom_site.pdbx_PDB_model_num")
	}
	for j, frame := range traj.Frames {
		for i, p := range frame.Positions {
			a := atomFor(traj, i)
			p = r3.Scale(scale, p)
			fmt.Fprint(out, atomRow(a, p))
			if models {
				fmt.Fprintf(out, " %d", j+1)
			}
			fmt.Fprintln(out)
		}
	}
	fmt.Fprintln(out, "#")
}

func atomFor(traj *chem.Trajectory, i int) chem.AtomData {
	if i < len(traj.Atoms) {
		return traj.Atoms[i]
	}
	a := chem.NewAtomData(i, chem.Unknown, "X")
	a.ResidueName = "UNK"
	a.ResidueID = 1
	a.ChainID = chem.ChainPlaceholder
	return a
}

func atomRow(a chem.AtomData, p chem.Vec3) string {
	group := "HETATM"
	if polymer[strings.ToUpper(a.ResidueName)] {
		group = "ATOM"
	}
	symbol := "X"
	if a.Element != chem.Unknown {
		symbol = a.Element.Symbol()
	}
	chain := a.ChainID
	if chain == "" {
		chain = chem.ChainPlaceholder
	}
	seq := "."
	if a.ResidueID >= 0 {
		seq = strconv.Itoa(a.ResidueID)
	}
	charge := "?"
	if q := int(a.Charge); float64(q) == a.Charge {
		charge = strconv.Itoa(q)
	}
	fields := []string{
		group, strconv.Itoa(a.Serial), symbol, quote(a.Name), ".", quote(a.ResidueName),
		quote(chain), "1", seq,
		fmt.Sprintf("%.3f", p.X), fmt.Sprintf("%.3f", p.Y), fmt.Sprintf("%.3f", p.Z),
		fmt.Sprintf("%.2f", a.Occupancy), fmt.Sprintf("%.2f", a.BFactor), charge,
		quote(chain), seq, "?",
	}
	return strings.Join(fields, " ")
}

// WriteFile writes traj to the mmCIF file fname. A .gz or .zst suffix compresses the output.
func WriteFile(fname string, traj *chem.Trajectory) error {
	w, _, err := source.Create(fname)
	if err != nil {
		return err
	}
	if err := Write(w, traj); err != nil {
		w.Close()
		return chem.ErrDecorate(err, "mmcif.WriteFile")
	}
	return w.Close()
}
