/*
 * gro_write.go, part of molview.
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

package gro

import (
	"bufio"
	"fmt"
	"io"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/source"
	"gonum.org/v1/gonum/spatial/r3"
)

// numbers wrap around at 5 digits, the way GROMACS writes them.
const wrap = 100000

// FormatAtomLine returns the GRO line for rec, without a line terminator.
// Velocities are written only if rec.HasVelocity is true.
func FormatAtomLine(rec AtomRecord) string {
	resname := rec.ResidueName
	if len(resname) > 5 {
		resname = resname[:5]
	}
	name := rec.AtomName
	if len(name) > 5 {
		name = name[:5]
	}
	p := rec.Position
	line := fmt.Sprintf("%5d%-5s%5s%5d%8.3f%8.3f%8.3f", rec.ResidueID%wrap, resname, name, rec.AtomNumber%wrap, p.X, p.Y, p.Z)
	if rec.HasVelocity {
		v := rec.Velocity
		line += fmt.Sprintf("%8.4f%8.4f%8.4f", v.X, v.Y, v.Z)
	}
	return line
}

// Write writes every frame of traj to w in GRO format. Coordinates, velocities
// and box are converted to nm. Atoms without data are written as residue 1 UNK,
// atom name X.
func Write(w io.Writer, traj *chem.Trajectory) error {
	out := bufio.NewWriter(w)
	scale := 1 / chem.Nanometer.ToAngstrom() * traj.Units.ToAngstrom()
	title, _, _ := splitTitle(traj.Meta.Title)
	if title == "" {
		title = "Generated by molview"
	}
	for _, frame := range traj.Frames {
		if err := writeFrame(out, traj, frame, title, scale); err != nil {
			return chem.NewIOError(formatName, traj.Meta.Source, err)
		}
	}
	if err := out.Flush(); err != nil {
		return chem.NewIOError(formatName, traj.Meta.Source, err)
	}
	return nil
}

func writeFrame(out *bufio.Writer, traj *chem.Trajectory, frame *chem.FrameData, title string, scale float64) error {
	if _, err := fmt.Fprintf(out, "%s t= %10.5f\n%5d\n", title, frame.Time, len(frame.Positions)); err != nil {
		return err
	}
	for i, p := range frame.Positions {
		rec := AtomRecord{ResidueID: 1, ResidueName: "UNK", AtomName: "X", AtomNumber: i + 1, Position: r3.Scale(scale, p)}
		if i < len(traj.Atoms) {
			a := traj.Atoms[i]
			rec.ResidueID = a.ResidueID
			rec.ResidueName = a.ResidueName
			rec.AtomName = a.Name
			rec.AtomNumber = a.Serial
		}
		if v, ok := frame.Velocity(i); ok {
			rec.Velocity = r3.Scale(scale, v)
			rec.HasVelocity = true
		}
		if _, err := fmt.Fprintln(out, FormatAtomLine(rec)); err != nil {
			return err
		}
	}
	var box chem.Vec3
	if b, ok := frame.BoxDims(); ok {
		box = r3.Scale(scale, b)
	}
	_, err := fmt.Fprintf(out, "%10.5f%10.5f%10.5f\n", box.X, box.Y, box.Z)
	return err
}

// WriteFile writes traj to the GRO file fname. A .gz or .zst suffix compresses the output.
func WriteFile(fname string, traj *chem.Trajectory) error {
	w, _, err := source.Create(fname)
	if err != nil {
		return err
	}
	if err := Write(w, traj); err != nil {
		w.Close()
		return chem.ErrDecorate(err, "gro.WriteFile")
	}
	return w.Close()
}
