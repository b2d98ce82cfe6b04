/*
 * format.go, part of molview.
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

// Package format detects the format of molecular files and dispatches them to
// the matching reader or writer.
package format

import (
	"bytes"
	"encoding/binary"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rmera/molview/internal/source"
)

// Format is a molecular file format.
type Format int

const (
	Unknown Format = iota
	XYZ
	PDB
	GRO
	DCD
	MmCIF
)

var names = map[Format]string{
	Unknown: "unknown",
	XYZ:     "XYZ",
	PDB:     "PDB",
	GRO:     "GRO",
	DCD:     "DCD",
	MmCIF:   "mmCIF",
}

func (f Format) String() string {
	if n, ok := names[f]; ok {
		return n
	}
	return names[Unknown]
}

var extensions = map[Format][]string{
	XYZ:   {".xyz"},
	PDB:   {".pdb", ".ent"},
	GRO:   {".gro"},
	DCD:   {".dcd"},
	MmCIF: {".cif", ".mmcif", ".mcif"},
}

// Extensions returns the file extensions of f, with the leading dot.
func (f Format) Extensions() []string { return extensions[f] }

// IsLoadable reports whether a reader exists for f.
func (f Format) IsLoadable() bool {
	_, ok := parsers[f]
	return ok
}

// HasAtomData reports whether files in format f carry per-atom metadata.
// DCD files only hold coordinates.
func (f Format) HasAtomData() bool { return f.IsLoadable() && f != DCD }

// FromExtension returns the format for the extension of path, after removing
// any compression suffix.
func FromExtension(path string) Format {
	inner, _ := source.Strip(path)
	ext := strings.ToLower(filepath.Ext(inner))
	for f, exts := range extensions {
		for _, e := range exts {
			if e == ext {
				return f
			}
		}
	}
	return Unknown
}

// Detect returns the format of the file path. The extension decides when it
// is known; otherwise the leading bytes in sample (which may be nil) are examined.
func Detect(path string, sample []byte) Format {
	if f := FromExtension(path); f != Unknown {
		return f
	}
	return FromContent(sample)
}

// minGROLine is the shortest GRO atom line.
const minGROLine = 44

// FromContent guesses the format from the beginning of a file.
func FromContent(sample []byte) Format {
	if len(sample) >= 8 && int32(binary.LittleEndian.Uint32(sample)) == 84 && string(sample[4:8]) == "CORD" {
		return DCD
	}
	lines := strings.Split(strings.ReplaceAll(string(sample), "\r\n", "\n"), "\n")
	//the last line may be cut by the end of the sample
	if !bytes.HasSuffix(sample, []byte("\n")) && len(lines) > 1 {
		lines = lines[:len(lines)-1]
	}
	for _, l := range lines {
		t := strings.TrimSpace(l)
		if t == "" || strings.HasPrefix(t, "#") {
			continue
		}
		if strings.HasPrefix(strings.ToLower(t), "data_") {
			return MmCIF
		}
		break
	}
	if looksGRO(lines) {
		return GRO
	}
	if looksXYZ(lines) {
		return XYZ
	}
	for _, l := range lines {
		rec := strings.TrimSpace(l)
		if len(rec) > 6 {
			rec = strings.TrimSpace(l[:6])
		}
		switch rec {
		case "ATOM", "HETATM", "HEADER", "CRYST1", "MODEL", "REMARK", "COMPND":
			return PDB
		}
	}
	return Unknown
}

// looksGRO checks for a title, a positive atom count and a first atom line
// with room for the coordinates.
func looksGRO(lines []string) bool {
	if len(lines) < 3 {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(lines[1]))
	if err != nil || n <= 0 {
		return false
	}
	return len(strings.TrimRight(lines[2], "\r")) >= minGROLine
}

func looksXYZ(lines []string) bool {
	if len(lines) < 3 {
		return false
	}
	n, err := strconv.Atoi(strings.TrimSpace(lines[0]))
	if err != nil || n <= 0 {
		return false
	}
	fields := strings.Fields(lines[2])
	if len(fields) < 4 {
		return false
	}
	for _, f := range fields[1:4] {
		if _, err := strconv.ParseFloat(f, 64); err != nil {
			return false
		}
	}
	return true
}
