/*
 * bridge.go, part of molview.
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
)

// PlaceholderAtoms returns n atoms with sequential ids, Unknown element, no
// residue information and the placeholder chain. It is the explicit fallback
// for coordinate-only trajectories (DCD) read without a structure file.
func PlaceholderAtoms(n int) []AtomData {
	atoms := make([]AtomData, n)
	for i := range atoms {
		atoms[i] = NewAtomData(i, Unknown, Unknown.Symbol())
		atoms[i].ChainID = ChainPlaceholder
	}
	return atoms
}

// WithPlaceholderAtoms sets placeholder atom data on a trajectory that has none,
// and marks it in the metadata. It does nothing if the trajectory already has atom data.
func (T *Trajectory) WithPlaceholderAtoms() *Trajectory {
	if T.HasAtomData() {
		return T
	}
	T.Atoms = PlaceholderAtoms(T.NumAtoms)
	T.Meta.ChainPlaceholder = true
	if T.Meta.Extra == nil {
		T.Meta.Extra = make(map[string]string)
	}
	T.Meta.Extra["atoms"] = "placeholder"
	return T
}

// PairWithStructure attaches the atom data of structure to the coordinate-only
// trajectory traj. The atom counts must match. traj's frames are kept; the
// structure's frames are ignored. Metadata missing in traj (title, classification)
// is taken from the structure, and the structure's explicit bonds are carried
// over. traj is modified and returned.
func PairWithStructure(traj, structure *Trajectory) (*Trajectory, error) {
	if traj == nil || structure == nil {
		return nil, fmt.Errorf("PairWithStructure: nil trajectory")
	}
	if !structure.HasAtomData() {
		return nil, NewUnsupportedFormat(structure.Meta.Source, "structure file has no atom data")
	}
	if traj.NumAtoms != structure.NumAtoms {
		return nil, fmt.Errorf("PairWithStructure: trajectory %s has %d atoms but structure %s has %d",
			traj.Meta.Source, traj.NumAtoms, structure.Meta.Source, structure.NumAtoms)
	}
	traj.Atoms = make([]AtomData, len(structure.Atoms))
	copy(traj.Atoms, structure.Atoms)
	if structure.Bonds != nil {
		traj.Bonds = make([]BondData, len(structure.Bonds))
		copy(traj.Bonds, structure.Bonds)
	}
	traj.Meta.ChainPlaceholder = structure.Meta.ChainPlaceholder
	if traj.Meta.Title == "" {
		traj.Meta.Title = structure.Meta.Title
	}
	if traj.Meta.Classification == "" {
		traj.Meta.Classification = structure.Meta.Classification
	}
	if traj.Meta.Extra == nil {
		traj.Meta.Extra = make(map[string]string)
	}
	delete(traj.Meta.Extra, "atoms")
	traj.Meta.Extra["structure"] = structure.Meta.Source
	return traj, nil
}
