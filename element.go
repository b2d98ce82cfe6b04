/*
 * element.go, part of molview.
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
	"fmt"
	"strings"
	"unicode"
)

// Element is a chemical element, identified by its atomic number. The zero value is Unknown.
type Element int

const (
	Unknown Element = iota
	H
	He
	Li
	Be
	B
	C
	N
	O
	F
	Ne
	Na
	Mg
	Al
	Si
	P
	S
	Cl
	Ar
	K
	Ca
	Sc
	Ti
	V
	Cr
	Mn
	Fe
	Co
	Ni
	Cu
	Zn
	Ga
	Ge
	As
	Se
	Br
	Kr
	Rb
	Sr
	Y
	Zr
	Nb
	Mo
	Tc
	Ru
	Rh
	Pd
	Ag
	Cd
	In
	Sn
	Sb
	Te
	I
	Xe
	Cs
	Ba
	La
	Ce
	Pr
	Nd
	Pm
	Sm
	Eu
	Gd
	Tb
	Dy
	Ho
	Er
	Tm
	Yb
	Lu
	Hf
	Ta
	W
	Re
	Os
	Ir
	Pt
	Au
	Hg
	Tl
	Pb
	Bi
	Po
	At
	Rn
	Fr
	Ra
	Ac
	Th
	Pa
	U
	Np
	Pu
	Am
	Cm
	Bk
	Cf
	Es
	Fm
	Md
	No
	Lr
	Rf
	Db
	Sg
	Bh
	Hs
	Mt
	Ds
	Rg
	Cn
	Nh
	Fl
	Mc
	Lv
	Ts
	Og
)

// NumElements is the number of known elements, Unknown excluded.
const NumElements = len(elementTable) - 1

var symbolIndex map[string]Element

func init() {
	symbolIndex = make(map[string]Element, len(elementTable))
	for i := 1; i < len(elementTable); i++ {
		symbolIndex[strings.ToUpper(elementTable[i].symbol)] = Element(i)
	}
}

func (e Element) info() elementInfo {
	if e < 0 || int(e) >= len(elementTable) {
		return elementTable[Unknown]
	}
	return elementTable[e]
}

// Symbol returns the atomic symbol, or "X" for Unknown.
func (e Element) Symbol() string { return e.info().symbol }

func (e Element) String() string { return e.Symbol() }

// AtomicNumber returns the atomic number, 0 for Unknown.
func (e Element) AtomicNumber() int {
	if e < 0 || int(e) >= len(elementTable) {
		return 0
	}
	return int(e)
}

// VdwRadius returns the van der Waals radius in Å.
func (e Element) VdwRadius() float64 { return e.info().vdw }

// Mass returns the atomic mass in amu.
func (e Element) Mass() float64 { return e.info().mass }

// CPKColor returns the display color as RGB components in [0,1].
func (e Element) CPKColor() [3]float32 {
	if c, ok := cpkColors[e]; ok {
		return c
	}
	return defaultColor
}

// IsAlkali is true for group 1 metals.
func (e Element) IsAlkali() bool {
	switch e {
	case Li, Na, K, Rb, Cs, Fr:
		return true
	}
	return false
}

// IsAlkalineEarth is true for group 2 metals.
func (e Element) IsAlkalineEarth() bool {
	switch e {
	case Be, Mg, Ca, Sr, Ba, Ra:
		return true
	}
	return false
}

// IsHalogen is true for group 17.
func (e Element) IsHalogen() bool {
	switch e {
	case F, Cl, Br, I, At, Ts:
		return true
	}
	return false
}

// IsMetal is true for every element left of the B-Si-As-Te-At staircase,
// hydrogen excluded.
func (e Element) IsMetal() bool {
	switch e {
	case Unknown, H, He, B, C, N, O, F, Ne, Si, P, S, Cl, Ar, Ge, As, Se, Br, Kr, Sb, Te, I, Xe, At, Rn, Ts, Og:
		return false
	}
	return e > 0 && int(e) < len(elementTable)
}

// ElementFromSymbol returns the element with the given symbol. The match is
// case-insensitive and ignores surrounding spaces. It returns Unknown and an
// error if the symbol is not recognized. It never panics.
func ElementFromSymbol(symbol string) (Element, error) {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	if e, ok := symbolIndex[s]; ok {
		return e, nil
	}
	return Unknown, fmt.Errorf("ElementFromSymbol: unknown element symbol %q", symbol)
}

// Two-letter atom names that, written in upper case, name an ion rather than
// a protein or nucleic acid atom. CA, CD, NE, HG, SG, OG and friends are
// left out on purpose: in upper case they are carbon, nitrogen, hydrogen,
// sulfur and oxygen atoms.
var ionNames = map[string]Element{
	"NA": Na,
	"CL": Cl,
	"MG": Mg,
	"ZN": Zn,
	"FE": Fe,
	"MN": Mn,
	"CU": Cu,
	"CO": Co,
	"NI": Ni,
	"BR": Br,
	"SE": Se,
	"LI": Li,
	"RB": Rb,
	"CS": Cs,
	"SR": Sr,
	"BA": Ba,
	"AL": Al,
	"SI": Si,
}

// ElementFromName infers an element from an atom name, as written in GRO, PDB
// or mmCIF files. Leading digits are ignored. The order of preference is a
// two-character symbol, then a one-character symbol, then the water naming
// conventions (OW, HW). A two-character match requires either mixed case
// ("Cl", "Na") or a well known ion name in upper case. The second value is
// false if no element could be inferred, in which case Unknown is returned.
func ElementFromName(name string) (Element, bool) {
	n := strings.TrimSpace(name)
	n = strings.TrimLeftFunc(n, unicode.IsDigit)
	if n == "" {
		return Unknown, false
	}
	if len(n) >= 2 {
		two := n[:2]
		if unicode.IsUpper(rune(two[0])) && unicode.IsLower(rune(two[1])) {
			if e, err := ElementFromSymbol(two); err == nil {
				return e, true
			}
		}
		if e, ok := ionNames[strings.ToUpper(two)]; ok && (len(n) == 2 || !unicode.IsLetter(rune(n[2]))) {
			return e, true
		}
	}
	if e, err := ElementFromSymbol(n[:1]); err == nil {
		return e, true
	}
	up := strings.ToUpper(n)
	switch {
	case strings.HasPrefix(up, "OW"):
		return O, true
	case strings.HasPrefix(up, "HW"):
		return H, true
	}
	return Unknown, false
}
