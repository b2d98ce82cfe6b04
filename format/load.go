/*
 * load.go, part of molview.
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

package format

import (
	"bufio"
	"errors"
	"io"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/dcd"
	"github.com/rmera/molview/gro"
	"github.com/rmera/molview/internal/logging"
	"github.com/rmera/molview/internal/source"
	"github.com/rmera/molview/mmcif"
	"github.com/rmera/molview/pdb"
	"github.com/rmera/molview/xyz"
)

// sampleSize is the number of leading bytes examined by content detection.
const sampleSize = 4096

// Parser reads a trajectory from r. name identifies the input in errors.
type Parser func(r io.Reader, name string) (*chem.Trajectory, error)

// Writer writes a trajectory to w.
type Writer func(w io.Writer, traj *chem.Trajectory) error

var parsers = map[Format]Parser{
	XYZ:   xyz.Read,
	PDB:   pdb.Read,
	GRO:   gro.Read,
	DCD:   dcd.Read,
	MmCIF: mmcif.Read,
}

var writers = map[Format]Writer{
	XYZ:   xyz.Write,
	PDB:   pdb.Write,
	GRO:   gro.Write,
	DCD:   dcd.Write,
	MmCIF: mmcif.Write,
}

// Parse reads a trajectory in format f from r.
func Parse(f Format, r io.Reader, name string) (*chem.Trajectory, error) {
	p, ok := parsers[f]
	if !ok {
		return nil, chem.NewUnsupportedFormat(name, "no reader for %s files", f)
	}
	return p(r, name)
}

// Write writes traj to w in format f.
func Write(f Format, w io.Writer, traj *chem.Trajectory) error {
	wr, ok := writers[f]
	if !ok {
		return chem.NewUnsupportedFormat(traj.Meta.Source, "no writer for %s files", f)
	}
	return wr(w, traj)
}

// WriteFile writes traj to path, in the format given by its extension. A .gz
// or .zst suffix compresses the output.
func WriteFile(path string, traj *chem.Trajectory) error {
	f := FromExtension(path)
	if _, ok := writers[f]; !ok {
		return chem.NewUnsupportedFormat(path, "cannot tell the output format from the file name")
	}
	w, _, err := source.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, w, traj); err != nil {
		w.Close()
		return chem.ErrDecorate(err, "format.WriteFile")
	}
	return w.Close()
}

// open reads path, decompressing it, and detects its format.
func open(path string) (*chem.Trajectory, Format, error) {
	rc, inner, err := source.Open(path)
	if err != nil {
		return nil, Unknown, err
	}
	defer rc.Close()
	br := bufio.NewReaderSize(rc, sampleSize)
	sample, err := br.Peek(sampleSize)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return nil, Unknown, chem.NewIOError("", path, err)
	}
	f := Detect(inner, sample)
	if !f.IsLoadable() {
		return nil, f, chem.NewUnsupportedFormat(path, "unrecognized file format")
	}
	logging.Component("format").WithFields(logging.Fields{"source": path, "format": f.String()}).Debug("loading")
	traj, err := Parse(f, br, path)
	if err != nil {
		return nil, f, chem.ErrDecorate(err, "format.Load")
	}
	return traj, f, nil
}

// Load reads the file at path, in whatever supported format it is. A DCD file
// has no atom data; it is given chem.PlaceholderAtoms and a warning is logged.
// Use LoadWithStructure to pair it with real atom data.
func Load(path string) (*chem.Trajectory, error) {
	traj, f, err := open(path)
	if err != nil {
		return nil, err
	}
	if !f.HasAtomData() {
		logging.Component("format").WithFields(logging.Fields{"source": path, "format": f.String()}).
			Warn("file has no atom data, using placeholder atoms")
		traj.WithPlaceholderAtoms()
	}
	return traj, nil
}

// LoadStrict is like Load, but a file without atom data is an UnsupportedFormat error.
func LoadStrict(path string) (*chem.Trajectory, error) {
	traj, f, err := open(path)
	if err != nil {
		return nil, err
	}
	if !f.HasAtomData() {
		return nil, chem.NewUnsupportedFormat(path, "%s files carry no atom data; a structure file is needed", f)
	}
	return traj, nil
}

// LoadWithStructure reads the trajectory at trajPath and takes its atom data
// from the structure file at structPath. Both must have the same number of atoms.
func LoadWithStructure(trajPath, structPath string) (*chem.Trajectory, error) {
	traj, _, err := open(trajPath)
	if err != nil {
		return nil, err
	}
	structure, err := LoadStrict(structPath)
	if err != nil {
		return nil, err
	}
	return chem.PairWithStructure(traj, structure)
}
