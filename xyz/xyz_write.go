/*
 * xyz_write.go, part of molview.
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

package xyz

import (
	"bufio"
	"fmt"
	"io"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/source"
	"gonum.org/v1/gonum/spatial/r3"
)

// Write writes every frame of traj to w in XYZ format, with coordinates in Å.
// The comment line of each frame holds its time and index. Atoms without data
// are written as "X".
func Write(w io.Writer, traj *chem.Trajectory) error {
	out := bufio.NewWriter(w)
	for _, frame := range traj.Frames {
		if err := writeFrame(out, traj, frame); err != nil {
			return chem.NewIOError(formatName, traj.Meta.Source, err)
		}
	}
	if err := out.Flush(); err != nil {
		return chem.NewIOError(formatName, traj.Meta.Source, err)
	}
	return nil
}

func writeFrame(out *bufio.Writer, traj *chem.Trajectory, frame *chem.FrameData) error {
	if _, err := fmt.Fprintf(out, "%d\ntime=%.2f frame=%d\n", len(frame.Positions), frame.Time, frame.Index); err != nil {
		return err
	}
	scale := traj.Units.ToAngstrom()
	for i, p := range frame.Positions {
		p = r3.Scale(scale, p)
		symbol := chem.Unknown.Symbol()
		if i < len(traj.Atoms) {
			symbol = traj.Atoms[i].Element.Symbol()
		}
		if _, err := fmt.Fprintf(out, "%-2s %12.6f %12.6f %12.6f\n", symbol, p.X, p.Y, p.Z); err != nil {
			return err
		}
	}
	return nil
}

// WriteFile writes traj to the XYZ file fname. A .gz or .zst suffix compresses the output.
func WriteFile(fname string, traj *chem.Trajectory) error {
	w, _, err := source.Create(fname)
	if err != nil {
		return err
	}
	if err := Write(w, traj); err != nil {
		w.Close()
		return chem.ErrDecorate(err, "xyz.WriteFile")
	}
	return w.Close()
}
