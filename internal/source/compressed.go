/*
 * compressed.go, part of molview.
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

// Package source opens input files, decompressing them on the fly when their
// name ends in a known compression suffix.
package source

import (
	"bufio"
	"compress/lzw"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"

	chem "github.com/rmera/molview"
)

const (
	lzwOrder        = lzw.MSB
	lzwLitwidth int = 8
)

// Compression is a compression scheme recognized by suffix.
type Compression int

const (
	None Compression = iota
	Gzip
	Zstd
	LZW
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZW:
		return "lzw"
	}
	return "none"
}

var suffixes = map[string]Compression{
	".gz":   Gzip,
	".gzip": Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".lzw":  LZW,
}

// Strip returns name without its compression suffix, and the compression that suffix denotes.
// "traj.dcd.gz" gives "traj.dcd" and Gzip; "traj.dcd" gives "traj.dcd" and None.
func Strip(name string) (string, Compression) {
	ext := strings.ToLower(filepath.Ext(name))
	if c, ok := suffixes[ext]; ok {
		return name[:len(name)-len(ext)], c
	}
	return name, None
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var first error
	for _, c := range r.closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens the file fname for reading. If the name ends in .gz, .zst or .lzw,
// the returned reader decompresses the contents. The second value is the name
// without the compression suffix, which tells the format of the contents.
// A file that cannot be opened gives a chem FileNotFound error.
func Open(fname string) (io.ReadCloser, string, error) {
	fhandle, err := os.Open(fname)
	if err != nil {
		return nil, fname, chem.NewFileNotFound(fname, err)
	}
	inner, comp := Strip(fname)
	r, err := Decompress(fhandle, comp)
	if err != nil {
		fhandle.Close()
		return nil, inner, chem.NewIOError(comp.String(), fname, err)
	}
	return &readCloser{Reader: r, closers: []io.Closer{r, fhandle}}, inner, nil
}

// Decompress returns a reader that decompresses r with the scheme comp. Closing
// the returned reader does not close r.
func Decompress(r io.Reader, comp Compression) (io.ReadCloser, error) {
	reader := bufio.NewReader(r)
	switch comp {
	case None:
		return io.NopCloser(reader), nil
	case Gzip:
		return gzip.NewReader(reader)
	case Zstd:
		dec, err := zstd.NewReader(reader)
		if err != nil {
			return nil, err
		}
		return dec.IOReadCloser(), nil
	case LZW:
		return lzw.NewReader(reader, lzwOrder, lzwLitwidth), nil
	}
	return nil, fmt.Errorf("Decompress: unknown compression %d", comp)
}

// Create creates fname for writing, compressing the output according to the
// name's suffix. LZW output is not supported.
func Create(fname string) (io.WriteCloser, string, error) {
	inner, comp := Strip(fname)
	if comp == LZW {
		return nil, inner, chem.NewUnsupportedFormat(fname, "writing %s compressed files is not supported", comp)
	}
	fhandle, err := os.Create(fname)
	if err != nil {
		return nil, inner, chem.NewIOError(comp.String(), fname, err)
	}
	bw := bufio.NewWriter(fhandle)
	var w io.WriteCloser
	switch comp {
	case None:
		w = nopWriteCloser{bw}
	case Gzip:
		w = gzip.NewWriter(bw)
	case Zstd:
		enc, err := zstd.NewWriter(bw)
		if err != nil {
			fhandle.Close()
			return nil, inner, err
		}
		w = enc
	}
	return &writeCloser{WriteCloser: w, buf: bw, file: fhandle}, inner, nil
}

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

type writeCloser struct {
	io.WriteCloser
	buf  *bufio.Writer
	file *os.File
}

func (w *writeCloser) Close() error {
	err := w.WriteCloser.Close()
	if err2 := w.buf.Flush(); err == nil {
		err = err2
	}
	if err2 := w.file.Close(); err == nil {
		err = err2
	}
	return err
}
