/*
 * bonds.go, part of molview.
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
	"runtime"
	"sort"

	"github.com/rmera/molview/internal/logging"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"
	"gonum.org/v1/gonum/stat"
)

// BondType is the chemical nature of a bond.
type BondType int

const (
	Covalent BondType = iota
	Disulfide
	Ionic
	Coordinate
	Other
)

func (t BondType) String() string {
	switch t {
	case Covalent:
		return "covalent"
	case Disulfide:
		return "disulfide"
	case Ionic:
		return "ionic"
	case Coordinate:
		return "coordinate"
	}
	return "other"
}

// BondOrder is the multiplicity of a bond.
type BondOrder int

const (
	Single BondOrder = 1
	Double BondOrder = 2
	Triple BondOrder = 3
)

func (o BondOrder) String() string {
	switch o {
	case Double:
		return "double"
	case Triple:
		return "triple"
	}
	return "single"
}

// BondData is a bond between the atoms with ids AtomA and AtomB. AtomA is always
// smaller than AtomB. Distance is in Å.
type BondData struct {
	AtomA    int
	AtomB    int
	Type     BondType
	Order    BondOrder
	Distance float64
}

// NewBond returns a bond between a and b, with the ids in canonical order.
func NewBond(a, b int, typ BondType, order BondOrder, dist float64) BondData {
	if a > b {
		a, b = b, a
	}
	return BondData{AtomA: a, AtomB: b, Type: typ, Order: order, Distance: dist}
}

func (b BondData) String() string {
	return fmt.Sprintf("%d-%d %s %s %.3f", b.AtomA, b.AtomB, b.Type, b.Order, b.Distance)
}

// BondConfig controls the distance-based bond detection. Distances are in Å.
type BondConfig struct {
	Enabled bool
	//A pair is bonded if its distance is at most VdwMultiplier times the sum of
	//the two van der Waals radii, and within [MinDistance, MaxDistance].
	VdwMultiplier   float64
	MaxDistance     float64
	MinDistance     float64
	SameResidueOnly bool
	//InferOrder enables the assignment of double and triple bonds from the
	//ratio between the distance and the typical bond length. When false, all
	//bonds are single.
	InferOrder bool
	//UseSpatialIndex finds candidate pairs with a k-d tree instead of testing all pairs.
	UseSpatialIndex bool
	//Workers is the number of goroutines used. 0 means runtime.NumCPU(), 1 means serial.
	Workers int
}

// DefaultBondConfig returns the default bond detection parameters.
func DefaultBondConfig() BondConfig {
	return BondConfig{
		Enabled:       true,
		VdwMultiplier: 1.2,
		MaxDistance:   3.0,
		MinDistance:   0.5,
		Workers:       1,
	}
}

// Validate checks that the thresholds are usable.
func (c BondConfig) Validate() error {
	if c.VdwMultiplier <= 0 {
		return fmt.Errorf("BondConfig: VDW multiplier must be positive, got %g", c.VdwMultiplier)
	}
	if c.MinDistance < 0 || c.MaxDistance <= c.MinDistance {
		return fmt.Errorf("BondConfig: invalid distance range [%g, %g]", c.MinDistance, c.MaxDistance)
	}
	if c.Workers < 0 {
		return fmt.Errorf("BondConfig: negative number of workers")
	}
	return nil
}

// ExpectedBondLength returns the typical single-bond length between two elements, in Å.
// Pairs without a tabulated value get 3/8 of the sum of their van der Waals radii.
func ExpectedBondLength(a, b Element) float64 {
	if a > b {
		a, b = b, a
	}
	if l, ok := bondLengths[[2]Element{a, b}]; ok {
		return l
	}
	return (a.VdwRadius() + b.VdwRadius()) / 2 * 0.75
}

// ClassifyBondType returns the bond type for a pair of elements.
func ClassifyBondType(a, b Element) BondType {
	if a == S && b == S {
		return Disulfide
	}
	if ionicPair(a, b) || ionicPair(b, a) {
		return Ionic
	}
	if (a.IsMetal() && b == S) || (b.IsMetal() && a == S) {
		return Coordinate
	}
	return Covalent
}

func ionicPair(metal, other Element) bool {
	return (metal.IsAlkali() || metal.IsAlkalineEarth()) && (other == O || other.IsHalogen())
}

// ClassifyBondOrder returns the bond order for two elements at distance d (Å):
// triple below 0.90 times the expected length, double below 0.95 times, single otherwise.
// Bond detection only applies it when BondConfig.InferOrder is set, which
// DefaultBondConfig leaves off. Otherwise detected bonds are Single.
func ClassifyBondOrder(a, b Element, d float64) BondOrder {
	expected := ExpectedBondLength(a, b)
	switch {
	case d < expected*0.90:
		return Triple
	case d < expected*0.95:
		return Double
	}
	return Single
}

// admits applies the admission rule to a candidate pair.
func (c BondConfig) admits(a, b *AtomData, d float64) bool {
	if d < c.MinDistance || d > c.MaxDistance {
		return false
	}
	if d > (a.Element.VdwRadius()+b.Element.VdwRadius())*c.VdwMultiplier {
		return false
	}
	if c.SameResidueOnly && (a.ResidueID != b.ResidueID || a.ChainID != b.ChainID) {
		return false
	}
	return true
}

func (c BondConfig) bond(a, b *AtomData, d float64) BondData {
	order := Single
	if c.InferOrder {
		order = ClassifyBondOrder(a.Element, b.Element, d)
	}
	return NewBond(a.ID, b.ID, ClassifyBondType(a.Element, b.Element), order, d)
}

// cutoff returns a distance beyond which no pair of the given atoms can be bonded.
func (c BondConfig) cutoff(atoms []AtomData) float64 {
	maxvdw := 0.0
	for i := range atoms {
		maxvdw = math.Max(maxvdw, atoms[i].Element.VdwRadius())
	}
	return math.Min(c.MaxDistance, 2*maxvdw*c.VdwMultiplier)
}

func (c BondConfig) workers() int {
	if c.Workers == 0 {
		return runtime.NumCPU()
	}
	return c.Workers
}

// DetectBonds finds the bonds in frame, whose positions must be in Å, for the
// given atoms. Atoms without a position in the frame are skipped. The result
// is sorted by (AtomA, AtomB) and has no duplicates, whatever the number of
// workers or the use of the spatial index.
func DetectBonds(frame *FrameData, atoms []AtomData, cfg BondConfig) []BondData {
	if !cfg.Enabled || frame == nil || len(atoms) < 2 {
		return nil
	}
	pos := make([]Vec3, len(atoms))
	present := make([]bool, len(atoms))
	missing := 0
	for i := range atoms {
		pos[i], present[i] = frame.Position(atoms[i].ID)
		if !present[i] {
			missing++
		}
	}
	if missing > 0 {
		logging.Component("bonds").WithFields(logging.Fields{"missing": missing, "frame": frame.Index}).Warn("atoms without position skipped")
	}
	var neighbors func(i int) []int
	if cfg.UseSpatialIndex {
		neighbors = newBondIndex(pos, present, cfg.cutoff(atoms)).neighbors
	} else {
		neighbors = func(i int) []int {
			ret := make([]int, 0, len(atoms)-i-1)
			for j := i + 1; j < len(atoms); j++ {
				if present[j] {
					ret = append(ret, j)
				}
			}
			return ret
		}
	}
	row := func(i int, out []BondData) []BondData {
		if !present[i] {
			return out
		}
		for _, j := range neighbors(i) {
			d := r3.Norm(r3.Sub(pos[j], pos[i]))
			if cfg.admits(&atoms[i], &atoms[j], d) {
				out = append(out, cfg.bond(&atoms[i], &atoms[j], d))
			}
		}
		return out
	}

	nw := cfg.workers()
	if nw <= 1 || len(atoms) < 2*nw {
		var bonds []BondData
		for i := range atoms {
			bonds = row(i, bonds)
		}
		return CanonicalBonds(bonds)
	}
	//rows are interleaved among workers so the triangular loop is balanced.
	results := make([][]BondData, nw)
	var g errgroup.Group
	for w := 0; w < nw; w++ {
		w := w
		g.Go(func() error {
			for i := w; i < len(atoms); i += nw {
				results[w] = row(i, results[w])
			}
			return nil
		})
	}
	g.Wait()
	var bonds []BondData
	for _, r := range results {
		bonds = append(bonds, r...)
	}
	return CanonicalBonds(bonds)
}

// CanonicalBonds orders every bond so that AtomA < AtomB, drops self bonds and
// duplicated pairs (the first occurrence is kept) and sorts the result by (AtomA, AtomB).
func CanonicalBonds(bonds []BondData) []BondData {
	ret := make([]BondData, 0, len(bonds))
	seen := make(map[[2]int]bool, len(bonds))
	for _, b := range bonds {
		if b.AtomA > b.AtomB {
			b.AtomA, b.AtomB = b.AtomB, b.AtomA
		}
		key := [2]int{b.AtomA, b.AtomB}
		if b.AtomA == b.AtomB || seen[key] {
			continue
		}
		seen[key] = true
		ret = append(ret, b)
	}
	sort.Slice(ret, func(i, j int) bool {
		if ret[i].AtomA != ret[j].AtomA {
			return ret[i].AtomA < ret[j].AtomA
		}
		return ret[i].AtomB < ret[j].AtomB
	})
	return ret
}

// DetectBonds returns the bonds for frame i of the trajectory. If the file
// stated its bonds explicitly (PDB CONECT), those are returned, with their
// distance and type measured in frame i. Otherwise, bonds are detected from
// distances. Coordinates are converted to Å as needed.
func (T *Trajectory) DetectBonds(i int, cfg BondConfig) ([]BondData, error) {
	frame, ok := T.Frame(i)
	if !ok {
		return nil, fmt.Errorf("DetectBonds: frame %d out of range (%d frames)", i, T.NumFrames())
	}
	if !T.HasAtomData() {
		return nil, fmt.Errorf("DetectBonds: trajectory %s has no atom data", T.Meta.Source)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if f := T.Units.ToAngstrom(); f != 1 {
		scaled := &FrameData{Index: frame.Index, Time: frame.Time, Positions: make([]Vec3, len(frame.Positions))}
		for k, p := range frame.Positions {
			scaled.Positions[k] = r3.Scale(f, p)
		}
		frame = scaled
	}
	if T.Bonds == nil {
		return DetectBonds(frame, T.Atoms, cfg), nil
	}
	ret := make([]BondData, 0, len(T.Bonds))
	for _, b := range T.Bonds {
		p, ok1 := frame.Position(b.AtomA)
		q, ok2 := frame.Position(b.AtomB)
		if !ok1 || !ok2 || b.AtomA >= len(T.Atoms) || b.AtomB >= len(T.Atoms) {
			continue
		}
		b.Distance = r3.Norm(r3.Sub(q, p))
		b.Type = ClassifyBondType(T.Atoms[b.AtomA].Element, T.Atoms[b.AtomB].Element)
		ret = append(ret, b)
	}
	return CanonicalBonds(ret), nil
}

// BondStats summarizes a bond list.
type BondStats struct {
	Count   int
	Mean    float64
	StdDev  float64
	Min     float64
	Max     float64
	ByType  map[BondType]int
	ByOrder map[BondOrder]int
}

// BondStatistics returns count, length statistics and the type and order
// distribution of bonds.
func BondStatistics(bonds []BondData) BondStats {
	s := BondStats{Count: len(bonds), ByType: map[BondType]int{}, ByOrder: map[BondOrder]int{}}
	if len(bonds) == 0 {
		return s
	}
	d := BondLengths(bonds)
	s.Mean, s.StdDev = stat.MeanStdDev(d, nil)
	if len(d) < 2 {
		s.StdDev = 0
	}
	s.Min = floats.Min(d)
	s.Max = floats.Max(d)
	for _, b := range bonds {
		s.ByType[b.Type]++
		s.ByOrder[b.Order]++
	}
	return s
}

// BondLengths returns the distances of bonds.
func BondLengths(bonds []BondData) []float64 {
	d := make([]float64, len(bonds))
	for i, b := range bonds {
		d[i] = b.Distance
	}
	return d
}
