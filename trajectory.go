/*
 * trajectory.go, part of molview.
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
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or displacement in 3D space.
type Vec3 = r3.Vec

// LengthUnit is the unit of the coordinates stored in a Trajectory.
type LengthUnit int

const (
	Angstrom LengthUnit = iota
	Nanometer
)

// ToAngstrom returns the factor that converts lengths in u to Å.
func (u LengthUnit) ToAngstrom() float64 {
	if u == Nanometer {
		return 10
	}
	return 1
}

func (u LengthUnit) String() string {
	if u == Nanometer {
		return "nm"
	}
	return "Å"
}

// ChainPlaceholder is the chain id given to atoms read from formats that have no
// chain field (GRO, XYZ, DCD). It carries no meaning and should not be used to
// group atoms.
const ChainPlaceholder = "A"

// AtomData contains the static, per-atom information of a trajectory. ID is the
// zero-based position of the atom in the file; Serial is the atom number as
// written in the file, when the format has one.
type AtomData struct {
	ID          int
	Serial      int
	Name        string
	Element     Element
	ResidueName string
	ResidueID   int
	ChainID     string
	Occupancy   float64
	BFactor     float64
	Charge      float64
	Mass        float64
}

// NewAtomData returns an AtomData with the mass of its element and full occupancy.
func NewAtomData(id int, element Element, name string) AtomData {
	return AtomData{
		ID:        id,
		Serial:    id + 1,
		Name:      name,
		Element:   element,
		Occupancy: 1.0,
		Mass:      element.Mass(),
	}
}

// FrameData is one timestep. Positions (and Velocities, if present) are indexed
// by atom id.
type FrameData struct {
	Index      int
	Time       float64
	Positions  []Vec3
	Velocities []Vec3 //nil if the format carries no velocities
	Box        *Vec3  //nil if the frame has no box information
}

// NewFrame returns a frame with room for natoms positions.
func NewFrame(index int, time float64, natoms int) *FrameData {
	return &FrameData{Index: index, Time: time, Positions: make([]Vec3, natoms)}
}

// Len returns the number of positions in the frame.
func (F *FrameData) Len() int { return len(F.Positions) }

// Position returns the position of the atom with the given id.
func (F *FrameData) Position(id int) (Vec3, bool) {
	if id < 0 || id >= len(F.Positions) {
		return Vec3{}, false
	}
	return F.Positions[id], true
}

// Velocity returns the velocity of the atom with the given id, if the frame has velocities.
func (F *FrameData) Velocity(id int) (Vec3, bool) {
	if id < 0 || id >= len(F.Velocities) {
		return Vec3{}, false
	}
	return F.Velocities[id], true
}

// HasVelocities reports whether the frame carries velocities.
func (F *FrameData) HasVelocities() bool { return len(F.Velocities) > 0 }

// BoxDims returns the box dimensions, if present.
func (F *FrameData) BoxDims() (Vec3, bool) {
	if F.Box == nil {
		return Vec3{}, false
	}
	return *F.Box, true
}

// SetBox sets the box dimensions of the frame.
func (F *FrameData) SetBox(x, y, z float64) {
	F.Box = &Vec3{X: x, Y: y, Z: z}
}

// Metadata is the descriptive information read from a file header.
type Metadata struct {
	Title          string
	Source         string //the path or identifier the trajectory was read from
	Software       string
	Classification string
	NumSteps       int
	StepSize       float64
	//ChainPlaceholder is true when chain ids were filled with ChainPlaceholder.
	ChainPlaceholder bool
	Extra            map[string]string
}

// Trajectory is an ordered sequence of frames sharing one set of atoms.
type Trajectory struct {
	NumAtoms int
	Atoms    []AtomData
	Frames   []*FrameData
	Meta     Metadata
	//Bonds holds the bonds stated in the file (PDB CONECT records), nil if the file has none.
	Bonds    []BondData
	TimeStep float64
	Units    LengthUnit
}

// NewTrajectory returns an empty trajectory for natoms atoms read from source.
func NewTrajectory(source string, natoms int, timeStep float64) *Trajectory {
	return &Trajectory{
		NumAtoms: natoms,
		Meta:     Metadata{Source: source},
		TimeStep: timeStep,
	}
}

// NumFrames returns the number of frames.
func (T *Trajectory) NumFrames() int { return len(T.Frames) }

// Frame returns the frame with index i.
func (T *Trajectory) Frame(i int) (*FrameData, bool) {
	if i < 0 || i >= len(T.Frames) {
		return nil, false
	}
	return T.Frames[i], true
}

// Atom returns the AtomData of atom i. It panics if i is out of range.
func (T *Trajectory) Atom(i int) *AtomData { return &T.Atoms[i] }

// Len returns the number of atoms.
func (T *Trajectory) Len() int { return T.NumAtoms }

// HasAtomData reports whether the trajectory carries per-atom metadata.
func (T *Trajectory) HasAtomData() bool { return len(T.Atoms) == T.NumAtoms && T.NumAtoms > 0 }

// AddFrame appends f to the trajectory. f must have exactly NumAtoms positions.
func (T *Trajectory) AddFrame(f *FrameData) error {
	if len(f.Positions) != T.NumAtoms {
		return fmt.Errorf("AddFrame: Number of atoms changed from %d to %d", T.NumAtoms, len(f.Positions))
	}
	if f.Velocities != nil && len(f.Velocities) != T.NumAtoms {
		return fmt.Errorf("AddFrame: frame %d has %d velocities for %d atoms", f.Index, len(f.Velocities), T.NumAtoms)
	}
	T.Frames = append(T.Frames, f)
	return nil
}

// TotalTime returns the time of the last frame, or 0 for an empty trajectory.
func (T *Trajectory) TotalTime() float64 {
	if len(T.Frames) == 0 {
		return 0
	}
	return T.Frames[len(T.Frames)-1].Time
}

// Validate checks that the atom list and every frame agree with NumAtoms.
func (T *Trajectory) Validate() error {
	if T.Atoms != nil && len(T.Atoms) != T.NumAtoms {
		return fmt.Errorf("Validate: %d atoms declared but %d atom records present", T.NumAtoms, len(T.Atoms))
	}
	for _, f := range T.Frames {
		if len(f.Positions) != T.NumAtoms {
			return fmt.Errorf("Validate: frame %d has %d positions, expected %d", f.Index, len(f.Positions), T.NumAtoms)
		}
	}
	for i, a := range T.Atoms {
		if a.ID != i {
			return fmt.Errorf("Validate: atom %d has id %d", i, a.ID)
		}
	}
	return nil
}

// Elements returns the element of each atom, Unknown for all atoms if the
// trajectory has no atom data.
func (T *Trajectory) Elements() []Element {
	ret := make([]Element, T.NumAtoms)
	for i := range T.Atoms {
		if i < len(ret) {
			ret[i] = T.Atoms[i].Element
		}
	}
	return ret
}

// RMSD returns the root mean square deviation between the positions of frames i and j,
// in the trajectory's units. No superposition is performed.
func (T *Trajectory) RMSD(i, j int) (float64, error) {
	a, ok := T.Frame(i)
	if !ok {
		return 0, fmt.Errorf("RMSD: frame %d out of range", i)
	}
	b, ok := T.Frame(j)
	if !ok {
		return 0, fmt.Errorf("RMSD: frame %d out of range", j)
	}
	return FrameRMSD(a, b)
}

// FrameRMSD returns the root mean square deviation between the positions of two frames.
func FrameRMSD(a, b *FrameData) (float64, error) {
	if len(a.Positions) != len(b.Positions) {
		return 0, fmt.Errorf("FrameRMSD: frames have %d and %d atoms", len(a.Positions), len(b.Positions))
	}
	if len(a.Positions) == 0 {
		return 0, nil
	}
	var sum float64
	for k := range a.Positions {
		sum += r3.Norm2(r3.Sub(a.Positions[k], b.Positions[k]))
	}
	return math.Sqrt(sum / float64(len(a.Positions))), nil
}

// Interpolate returns a new frame between frame i and frame i+1. alpha is
// clamped to [0,1]; see Lerp for the boundary behavior.
func (T *Trajectory) Interpolate(i int, alpha float64) (*FrameData, error) {
	a, ok := T.Frame(i)
	if !ok {
		return nil, fmt.Errorf("Interpolate: frame %d out of range", i)
	}
	b, ok := T.Frame(i + 1)
	if !ok {
		return nil, fmt.Errorf("Interpolate: frame %d out of range", i+1)
	}
	return InterpolateFrames(a, b, alpha), nil
}

// InterpolateFrames linearly interpolates positions, velocities, box and time
// between a and b. Atoms missing in either frame keep the position they have in a.
func InterpolateFrames(a, b *FrameData, alpha float64) *FrameData {
	alpha = clamp01(alpha)
	ret := &FrameData{
		Index:     a.Index,
		Time:      lerp(a.Time, b.Time, alpha),
		Positions: make([]Vec3, len(a.Positions)),
	}
	for k, p := range a.Positions {
		if q, ok := b.Position(k); ok {
			ret.Positions[k] = Lerp(p, q, alpha)
		} else {
			ret.Positions[k] = p
		}
	}
	if a.HasVelocities() && b.HasVelocities() {
		ret.Velocities = make([]Vec3, len(a.Velocities))
		for k, v := range a.Velocities {
			if w, ok := b.Velocity(k); ok {
				ret.Velocities[k] = Lerp(v, w, alpha)
			} else {
				ret.Velocities[k] = v
			}
		}
	}
	if a.Box != nil && b.Box != nil {
		box := Lerp(*a.Box, *b.Box, alpha)
		ret.Box = &box
	} else if a.Box != nil {
		box := *a.Box
		ret.Box = &box
	}
	return ret
}

// Lerp linearly interpolates between p and q. Lerp(p, q, 0) is exactly p and
// Lerp(p, q, 1) is exactly q.
func Lerp(p, q Vec3, alpha float64) Vec3 {
	switch alpha {
	case 0:
		return p
	case 1:
		return q
	}
	return r3.Add(r3.Scale(1-alpha, p), r3.Scale(alpha, q))
}

func lerp(a, b, alpha float64) float64 {
	switch alpha {
	case 0:
		return a
	case 1:
		return b
	}
	return a*(1-alpha) + b*alpha
}

func clamp01(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
