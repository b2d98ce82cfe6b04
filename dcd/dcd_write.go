/*
 * dcd_write.go, part of molview.
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

package dcd

import (
	"bufio"
	"io"
	"math"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/internal/source"
)

// charmmVersion is written at the end of the control block.
const charmmVersion int32 = 24

// Writer writes frames to a DCD stream in the CHARMM layout.
type Writer struct {
	w        *bufio.Writer
	name     string
	header   Header
	frames   int
	writable bool
	scale    float64
	buf      []byte
}

// NewWriter writes the header H to w and returns a Writer for its frames.
// H.NAtoms must be set. An NSet of 0 tells readers to read until the end of
// the file. H.ExtraBlock makes every frame carry a unit cell record.
func NewWriter(w io.Writer, name string, H Header) (*Writer, error) {
	if H.NAtoms <= 0 {
		return nil, chem.NewUnsupportedFormat(name, "cannot write a DCD file with %d atoms", H.NAtoms)
	}
	D := &Writer{w: bufio.NewWriter(w), name: name, header: H, scale: 1}
	D.header.CharmmVersion = charmmVersion
	D.header.FourDim = false
	D.header.NFixed = 0
	if err := D.writeHeader(); err != nil {
		return nil, chem.NewIOError(formatName, name, err)
	}
	D.writable = true
	return D, nil
}

func (D *Writer) int32s(vals ...int32) {
	for _, v := range vals {
		D.buf = endian.AppendUint32(D.buf, uint32(v))
	}
}

func (D *Writer) writeHeader() error {
	H := &D.header
	D.buf = D.buf[:0]
	D.int32s(Magic)
	D.buf = append(D.buf, "CORD"...)
	ctrl := make([]byte, 80)
	put := func(off int, v int32) { endian.PutUint32(ctrl[off:], uint32(v)) }
	put(0, H.NSet)
	put(4, H.IStart)
	put(8, H.NSavc)
	put(12, H.NStep)
	endian.PutUint32(ctrl[36:], math.Float32bits(float32(H.Delta)))
	if H.ExtraBlock {
		put(40, 1)
	}
	put(76, H.CharmmVersion)
	D.buf = append(D.buf, ctrl...)
	D.int32s(Magic)

	titles := H.Titles
	if len(titles) == 0 {
		titles = []string{"Created by molview"}
	}
	size := 4 + int32(len(titles))*MaxTitle
	D.int32s(size, int32(len(titles)))
	for _, t := range titles {
		line := make([]byte, MaxTitle)
		for i := range line {
			line[i] = ' '
		}
		copy(line, t)
		D.buf = append(D.buf, line...)
	}
	D.int32s(size)
	D.int32s(4, H.NAtoms, 4)
	_, err := D.w.Write(D.buf)
	return err
}

// Len returns the number of atoms per frame.
func (D *Writer) Len() int { return int(D.header.NAtoms) }

// WNext writes frame to the file. frame must have exactly Len() positions.
func (D *Writer) WNext(frame *chem.FrameData) error {
	if !D.writable {
		return chem.NewIOError(formatName, D.name, io.ErrClosedPipe)
	}
	natoms := D.header.NAtoms
	if len(frame.Positions) != int(natoms) {
		return chem.NewUnsupportedFormat(D.name, "frame %d has %d atoms, the DCD file has %d", frame.Index, len(frame.Positions), natoms)
	}
	D.buf = D.buf[:0]
	if D.header.ExtraBlock {
		var box chem.Vec3
		if b, ok := frame.BoxDims(); ok {
			box = b
		}
		D.int32s(48)
		//A, gamma, B, beta, alpha, C
		for _, v := range []float64{box.X * D.scale, 90, box.Y * D.scale, 90, 90, box.Z * D.scale} {
			D.buf = endian.AppendUint64(D.buf, math.Float64bits(v))
		}
		D.int32s(48)
	}
	for k := 0; k < 3; k++ {
		D.int32s(natoms * 4)
		for _, p := range frame.Positions {
			c := [3]float64{p.X, p.Y, p.Z}[k] * D.scale
			D.buf = endian.AppendUint32(D.buf, math.Float32bits(float32(c)))
		}
		D.int32s(natoms * 4)
	}
	if _, err := D.w.Write(D.buf); err != nil {
		D.writable = false
		return chem.NewIOError(formatName, D.name, err)
	}
	D.frames++
	return nil
}

// Flush writes any buffered data to the underlying writer.
func (D *Writer) Flush() error {
	if err := D.w.Flush(); err != nil {
		return chem.NewIOError(formatName, D.name, err)
	}
	return nil
}

// HeaderFor returns the header that describes traj.
func HeaderFor(traj *chem.Trajectory) Header {
	H := Header{
		NSet:   int32(traj.NumFrames()),
		NSavc:  1,
		NAtoms: int32(traj.NumAtoms),
		Delta:  traj.TimeStep / AKMA,
	}
	H.NStep = H.NSet
	for _, f := range traj.Frames {
		if f.Box != nil {
			H.ExtraBlock = true
			break
		}
	}
	title := traj.Meta.Title
	for len(title) > 0 {
		n := len(title)
		if n > int(MaxTitle) {
			n = int(MaxTitle)
		}
		H.Titles = append(H.Titles, title[:n])
		title = title[n:]
	}
	return H
}

// Write writes every frame of traj to w in DCD format, with coordinates in Å.
// Atom data is not written; DCD has no room for it.
func Write(w io.Writer, traj *chem.Trajectory) error {
	D, err := NewWriter(w, traj.Meta.Source, HeaderFor(traj))
	if err != nil {
		return err
	}
	D.scale = traj.Units.ToAngstrom()
	for _, f := range traj.Frames {
		if err := D.WNext(f); err != nil {
			return chem.ErrDecorate(err, "dcd.Write")
		}
	}
	return D.Flush()
}

// WriteFile writes traj to the DCD file fname. A .gz or .zst suffix compresses the output.
func WriteFile(fname string, traj *chem.Trajectory) error {
	w, _, err := source.Create(fname)
	if err != nil {
		return err
	}
	if err := Write(w, traj); err != nil {
		w.Close()
		return chem.ErrDecorate(err, "dcd.WriteFile")
	}
	return w.Close()
}
