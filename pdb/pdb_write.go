/*
 * pdb_write.go, part of molview.
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

package pdb

import (
	"bufio"
	"fmt"
	"io"
	"sort"
	"strings"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/source"
	"gonum.org/v1/gonum/spatial/r3"
)

// polymer residues are written as ATOM, everything else as HETATM.
var polymerResidues = map[string]bool{
	"ALA": true, "ARG": true, "ASN": true, "ASP": true, "CYS": true,
	"GLN": true, "GLU": true, "GLY": true, "HIS": true, "ILE": true,
	"LEU": true, "LYS": true, "MET": true, "PHE": true, "PRO": true,
	"SER": true, "THR": true, "TRP": true, "TYR": true, "VAL": true,
	"DA": true, "DC": true, "DG": true, "DT": true,
	"A": true, "C": true, "G": true, "U": true,
}

// Write writes traj to w in PDB format, with coordinates in Å. Several frames
// are written as MODEL blocks. Explicit bonds are written as CONECT records,
// with the partner repeated once per bond order.
func Write(w io.Writer, traj *chem.Trajectory) error {
	out := bufio.NewWriter(w)
	if err := write(out, traj); err != nil {
		return chem.NewIOError(formatName, traj.Meta.Source, err)
	}
	if err := out.Flush(); err != nil {
		return chem.NewIOError(formatName, traj.Meta.Source, err)
	}
	return nil
}

func write(out *bufio.Writer, traj *chem.Trajectory) error {
	scale := traj.Units.ToAngstrom()
	if traj.Meta.Classification != "" {
		fmt.Fprintf(out, "HEADER    %-40.40s\n", traj.Meta.Classification)
	}
	if traj.Meta.Title != "" {
		fmt.Fprintf(out, "TITLE     %-70.70s\n", traj.Meta.Title)
	}
	if len(traj.Frames) > 0 {
		if box, ok := traj.Frames[0].BoxDims(); ok {
			box = r3.Scale(scale, box)
			fmt.Fprintf(out, "CRYST1%9.3f%9.3f%9.3f%7.2f%7.2f%7.2f P 1           1\n", box.X, box.Y, box.Z, 90.0, 90.0, 90.0)
		}
	}
	models := len(traj.Frames) > 1
	for j, frame := range traj.Frames {
		if models {
			fmt.Fprintf(out, "MODEL     %4d\n", j+1)
		}
		var chainprev string
		for i, p := range frame.Positions {
			a := atomFor(traj, i)
			if i > 0 && a.ChainID != chainprev {
				fmt.Fprintln(out, "TER")
			}
			chainprev = a.ChainID
			if _, err := fmt.Fprintln(out, atomRecord(a, r3.Scale(scale, p))); err != nil {
				return err
			}
		}
		if models {
			fmt.Fprintln(out, "ENDMDL")
		}
	}
	if err := conect(out, traj); err != nil {
		return err
	}
	_, err := fmt.Fprintln(out, "END")
	return err
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

// atomRecord formats one ATOM/HETATM line. Names shorter than 4 characters
// start at column 14.
func atomRecord(a chem.AtomData, c chem.Vec3) string {
	record := "HETATM"
	if polymerResidues[strings.ToUpper(a.ResidueName)] {
		record = "ATOM"
	}
	name := a.Name
	if len(name) < 4 {
		name = " " + name
	}
	if len(name) > 4 {
		name = name[:4]
	}
	chain := a.ChainID
	if len(chain) > 1 {
		chain = chain[:1]
	}
	resname := a.ResidueName
	if len(resname) > 3 {
		resname = resname[:3]
	}
	symbol := ""
	if a.Element != chem.Unknown {
		symbol = strings.ToUpper(a.Element.Symbol())
	}
	return fmt.Sprintf("%-6s%5d %-4s %3s %1s%4d    %8.3f%8.3f%8.3f%6.2f%6.2f          %2s%-2s",
		record, a.Serial%100000, name, resname, chain, a.ResidueID%10000, c.X, c.Y, c.Z, a.Occupancy, a.BFactor, symbol, chargeString(a.Charge))
}

func conect(out *bufio.Writer, traj *chem.Trajectory) error {
	if len(traj.Bonds) == 0 {
		return nil
	}
	partners := make(map[int][]int)
	for _, b := range traj.Bonds {
		for k := 0; k < int(b.Order); k++ {
			partners[b.AtomA] = append(partners[b.AtomA], b.AtomB)
			partners[b.AtomB] = append(partners[b.AtomB], b.AtomA)
		}
	}
	ids := make([]int, 0, len(partners))
	for id := range partners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	serial := func(id int) int { return atomFor(traj, id).Serial % 100000 }
	for _, id := range ids {
		p := partners[id]
		sort.Ints(p)
		//at most 4 partners per record.
		for start := 0; start < len(p); start += 4 {
			end := start + 4
			if end > len(p) {
				end = len(p)
			}
			var b strings.Builder
			fmt.Fprintf(&b, "CONECT%5d", serial(id))
			for _, q := range p[start:end] {
				fmt.Fprintf(&b, "%5d", serial(q))
			}
			if _, err := fmt.Fprintln(out, b.String()); err != nil {
				return err
			}
		}
	}
	return nil
}

// WriteFile writes traj to the PDB file fname. A .gz or .zst suffix compresses the output.
func WriteFile(fname string, traj *chem.Trajectory) error {
	w, _, err := source.Create(fname)
	if err != nil {
		return err
	}
	if err := Write(w, traj); err != nil {
		w.Close()
		return chem.ErrDecorate(err, "pdb.WriteFile")
	}
	return w.Close()
}
