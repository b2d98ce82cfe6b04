/*
 * errors.go, part of molview.
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

package chem

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies the errors returned by readers and writers.
type ErrorKind int

const (
	IOError ErrorKind = iota
	FileNotFound
	ParseError
	UnsupportedFormat
)

func (k ErrorKind) String() string {
	switch k {
	case FileNotFound:
		return "file not found"
	case ParseError:
		return "parse error"
	case UnsupportedFormat:
		return "unsupported format"
	default:
		return "I/O error"
	}
}

// FileError is the concrete error used across molview. It fulfills chem.Error and chem.TrajError.
// Line is 1-based, or 0 when the error is not tied to a line. Offset is a byte offset, or -1.
type FileError struct {
	Kind     ErrorKind
	Line     int
	Offset   int64
	message  string
	filename string //the input file that has problems, or empty string if none.
	format   string
	deco     []string
	critical bool
	err      error
}

func (err *FileError) Error() string {
	var b strings.Builder
	if err.format != "" {
		b.WriteString(err.format)
		b.WriteString(" ")
	}
	b.WriteString(err.Kind.String())
	if err.filename != "" {
		fmt.Fprintf(&b, " in %s", err.filename)
	}
	if err.Line > 0 {
		fmt.Fprintf(&b, " at line %d", err.Line)
	}
	if err.Offset >= 0 {
		fmt.Fprintf(&b, " at byte offset %d", err.Offset)
	}
	b.WriteString(": ")
	b.WriteString(err.message)
	if err.err != nil {
		fmt.Fprintf(&b, ": %v", err.err)
	}
	return b.String()
}

// Message returns the bare error message, without location.
func (err *FileError) Message() string { return err.message }

// Decorate will add the dec string to the decoration slice of strings of the error,
// and return the resulting slice.
func (err *FileError) Decorate(dec string) []string {
	if dec == "" {
		return err.deco
	}
	err.deco = append(err.deco, dec)
	return err.deco
}

// FileName returns the name of the file that caused the error.
func (err *FileError) FileName() string { return err.filename }

// Format returns the file format involved.
func (err *FileError) Format() string { return err.format }

// Critical returns true for everything but I/O errors on streams that are merely exhausted.
func (err *FileError) Critical() bool { return err.critical }

func (err *FileError) Unwrap() error { return err.err }

// NewParseError returns a ParseError located at a 1-based line.
func NewParseError(format, filename string, line int, msg string, args ...interface{}) *FileError {
	return &FileError{Kind: ParseError, Line: line, Offset: -1, message: fmt.Sprintf(msg, args...), filename: filename, format: format, critical: true}
}

// NewOffsetError returns a ParseError located at a byte offset, for binary formats.
func NewOffsetError(format, filename string, offset int64, msg string, args ...interface{}) *FileError {
	return &FileError{Kind: ParseError, Offset: offset, message: fmt.Sprintf(msg, args...), filename: filename, format: format, critical: true}
}

// NewFileNotFound wraps the error returned when opening filename.
func NewFileNotFound(filename string, cause error) *FileError {
	return &FileError{Kind: FileNotFound, Offset: -1, message: "cannot open file", filename: filename, critical: true, err: cause}
}

// NewUnsupportedFormat is returned when no reader can, or will, handle filename.
func NewUnsupportedFormat(filename string, msg string, args ...interface{}) *FileError {
	return &FileError{Kind: UnsupportedFormat, Offset: -1, message: fmt.Sprintf(msg, args...), filename: filename, critical: true}
}

// NewIOError wraps a read or write failure that is not a structural problem of the file.
func NewIOError(format, filename string, cause error) *FileError {
	return &FileError{Kind: IOError, Offset: -1, message: "i/o failure", filename: filename, format: format, critical: true, err: cause}
}

func kindOf(err error) (ErrorKind, bool) {
	var fe *FileError
	if errors.As(err, &fe) {
		return fe.Kind, true
	}
	return 0, false
}

// IsParseError reports whether err, or an error it wraps, is a ParseError.
func IsParseError(err error) bool {
	k, ok := kindOf(err)
	return ok && k == ParseError
}

// IsFileNotFound reports whether err, or an error it wraps, is a FileNotFound error.
func IsFileNotFound(err error) bool {
	k, ok := kindOf(err)
	return ok && k == FileNotFound
}

// IsUnsupportedFormat reports whether err, or an error it wraps, is an UnsupportedFormat error.
func IsUnsupportedFormat(err error) bool {
	k, ok := kindOf(err)
	return ok && k == UnsupportedFormat
}

// lastFrameError is returned by streaming readers when the source is exhausted.
type lastFrameError struct {
	fileName string
	format   string
	deco     []string
}

func (E *lastFrameError) Error() string { return "EOF" }

func (E *lastFrameError) Critical() bool { return false }

func (E *lastFrameError) FileName() string { return E.fileName }

func (E *lastFrameError) Format() string { return E.format }

func (E *lastFrameError) Decorate(dec string) []string {
	if dec == "" {
		return E.deco
	}
	E.deco = append(E.deco, dec)
	return E.deco
}

func (E *lastFrameError) NormalLastFrameTermination() {}

// NewLastFrameError returns the harmless error that signals the end of a stream.
func NewLastFrameError(format, filename string) LastFrameError {
	return &lastFrameError{fileName: filename, format: format}
}

// IsLastFrame reports whether err signals a normal end of stream.
func IsLastFrame(err error) bool {
	var lf LastFrameError
	return errors.As(err, &lf)
}

// ErrDecorate adds caller to the trace of err if err is a chem.Error, and
// returns err unchanged otherwise. It returns nil for a nil error.
func ErrDecorate(err error, caller string) error {
	if err == nil {
		return nil
	}
	if err2, ok := err.(Error); ok {
		err2.Decorate(caller)
		return err2
	}
	return err
}
