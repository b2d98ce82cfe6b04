/*
 * cif.go, part of molview.
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
	"errors"
	"io"
	"strings"

	chem "github.com/rmera/molview"
)

// token is one CIF word. quoted tokens are never keywords.
type token struct {
	text   string
	quoted bool
	line   int
}

// tokenizer splits CIF text into tokens. It understands comments, quoted
// strings and semicolon delimited text fields.
type tokenizer struct {
	r    *bufio.Reader
	name string
	line int
	toks []token
}

func (T *tokenizer) readLine() (string, bool, error) {
	line, err := T.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		if errors.Is(err, io.EOF) {
			return "", false, nil
		}
		return "", false, chem.NewIOError(formatName, T.name, err)
	}
	T.line++
	return strings.TrimRight(line, "\r\n"), true, nil
}

// next returns the next token, or false at the end of the input.
func (T *tokenizer) next() (token, bool, error) {
	for len(T.toks) == 0 {
		line, ok, err := T.readLine()
		if err != nil || !ok {
			return token{}, false, err
		}
		if strings.HasPrefix(line, ";") {
			tok, err := T.textField(line)
			if err != nil {
				return token{}, false, err
			}
			return tok, true, nil
		}
		if T.toks, err = splitLine(line, T.line); err != nil {
			return token{}, false, chem.NewParseError(formatName, T.name, T.line, "%s", err.Error())
		}
	}
	tok := T.toks[0]
	T.toks = T.toks[1:]
	return tok, true, nil
}

// textField reads a multi-line value that starts and ends with a line
// beginning with a semicolon.
func (T *tokenizer) textField(first string) (token, error) {
	start := T.line
	parts := []string{first[1:]}
	for {
		line, ok, err := T.readLine()
		if err != nil {
			return token{}, err
		}
		if !ok {
			return token{}, chem.NewParseError(formatName, T.name, start, "Unterminated text field")
		}
		if strings.HasPrefix(line, ";") {
			//anything after the closing semicolon is more tokens
			rest, err := splitLine(line[1:], T.line)
			if err != nil {
				return token{}, chem.NewParseError(formatName, T.name, T.line, "%s", err.Error())
			}
			T.toks = rest
			break
		}
		parts = append(parts, line)
	}
	return token{text: strings.TrimSpace(strings.Join(parts, "\n")), quoted: true, line: start}, nil
}

type quoteError string

func (e quoteError) Error() string { return string(e) }

// splitLine tokenizes one line.
func splitLine(line string, n int) ([]token, error) {
	var toks []token
	i := 0
	for i < len(line) {
		c := line[i]
		switch {
		case c == ' ' || c == '\t':
			i++
		case c == '#':
			return toks, nil
		case c == '\'' || c == '"':
			//a quote only closes when followed by whitespace or the end of the line
			j := i + 1
			for {
				k := strings.IndexByte(line[j:], c)
				if k < 0 {
					return nil, quoteError("Unterminated quoted string")
				}
				j += k
				if j+1 == len(line) || line[j+1] == ' ' || line[j+1] == '\t' {
					break
				}
				j++
			}
			toks = append(toks, token{text: line[i+1 : j], quoted: true, line: n})
			i = j + 1
		default:
			j := i
			for j < len(line) && line[j] != ' ' && line[j] != '\t' {
				j++
			}
			toks = append(toks, token{text: line[i:j], line: n})
			i = j
		}
	}
	return toks, nil
}

// Loop is a loop_ table. Columns holds the full tag names, in lower case.
type Loop struct {
	Category string
	Columns  []string
	Rows     [][]string
	RowLines []int
	Line     int
}

// Column returns the index of the column tag (case-insensitive), or -1.
func (L *Loop) Column(tag string) int {
	tag = strings.ToLower(tag)
	for i, c := range L.Columns {
		if c == tag {
			return i
		}
	}
	return -1
}

// Block is one data_ block. Items holds the tags given outside loops, with
// their tags in lower case.
type Block struct {
	ID    string
	Items map[string]string
	Loops []*Loop
}

// Item returns the value of a single tag, and false if it is missing or is one
// of the CIF null values "." and "?".
func (B *Block) Item(tag string) (string, bool) {
	v, ok := B.Items[strings.ToLower(tag)]
	if !ok || isNull(v) {
		return "", false
	}
	return v, true
}

// Loop returns the first loop of the given category, or nil.
func (B *Block) Loop(category string) *Loop {
	category = strings.ToLower(category)
	for _, l := range B.Loops {
		if l.Category == category {
			return l
		}
	}
	return nil
}

func isNull(v string) bool { return v == "." || v == "?" }

func category(tag string) string {
	tag = strings.TrimPrefix(strings.ToLower(tag), "_")
	if i := strings.IndexByte(tag, '.'); i >= 0 {
		return tag[:i]
	}
	return tag
}

func keyword(t token) bool {
	if t.quoted {
		return false
	}
	low := strings.ToLower(t.text)
	return strings.HasPrefix(t.text, "_") || low == "loop_" || strings.HasPrefix(low, "data_") ||
		strings.HasPrefix(low, "save_") || low == "global_" || low == "stop_"
}

// ParseBlock reads the first data block of a CIF file. Later blocks are ignored.
func ParseBlock(r io.Reader, name string) (*Block, error) {
	T := &tokenizer{r: bufio.NewReader(r), name: name}
	B := &Block{Items: make(map[string]string)}
	seen := false
	var held *token
	next := func() (token, bool, error) {
		if held != nil {
			t := *held
			held = nil
			return t, true, nil
		}
		return T.next()
	}
	for {
		tok, ok, err := next()
		if err != nil {
			return nil, err
		}
		if !ok {
			break
		}
		low := strings.ToLower(tok.text)
		switch {
		case !tok.quoted && strings.HasPrefix(low, "data_"):
			if seen {
				return B, nil
			}
			seen = true
			B.ID = tok.text[5:]
		case !tok.quoted && low == "loop_":
			L := &Loop{Line: tok.line}
			var t token
			for {
				if t, ok, err = next(); err != nil {
					return nil, err
				}
				if !ok || t.quoted || !strings.HasPrefix(t.text, "_") {
					break
				}
				L.Columns = append(L.Columns, strings.ToLower(t.text))
			}
			if len(L.Columns) == 0 {
				return nil, chem.NewParseError(formatName, name, tok.line, "loop_ without column names")
			}
			L.Category = category(L.Columns[0])
			var row []string
			for ok && !keyword(t) {
				if len(row) == 0 {
					L.RowLines = append(L.RowLines, t.line)
				}
				row = append(row, t.text)
				if len(row) == len(L.Columns) {
					L.Rows = append(L.Rows, row)
					row = nil
				}
				if t, ok, err = next(); err != nil {
					return nil, err
				}
			}
			if len(row) != 0 {
				return nil, chem.NewParseError(formatName, name, L.RowLines[len(L.RowLines)-1], "Loop %s has a row with %d values, expected %d", L.Category, len(row), len(L.Columns))
			}
			B.Loops = append(B.Loops, L)
			if ok {
				held = &t
			}
		case !tok.quoted && strings.HasPrefix(tok.text, "_"):
			val, ok, err := next()
			if err != nil {
				return nil, err
			}
			if !ok || keyword(val) {
				return nil, chem.NewParseError(formatName, name, tok.line, "Missing value for %s", tok.text)
			}
			B.Items[low] = val.text
		default:
			//stray values and save frames are not used
		}
	}
	if !seen {
		return nil, chem.NewParseError(formatName, name, 1, "No data_ block found")
	}
	return B, nil
}
