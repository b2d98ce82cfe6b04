/*
 * bondindex.go, part of molview.
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
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

// atomPoint is an atom position stored in a k-d tree.
type atomPoint struct {
	idx int
	pos Vec3
}

func (p atomPoint) coord(d kdtree.Dim) float64 {
	switch d {
	case 0:
		return p.pos.X
	case 1:
		return p.pos.Y
	}
	return p.pos.Z
}

// Compare returns the signed distance of p from the plane passing through c and
// perpendicular to the dimension d.
func (p atomPoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	return p.coord(d) - c.(atomPoint).coord(d)
}

func (p atomPoint) Dims() int { return 3 }

// Distance returns the squared Euclidean distance, as kdtree expects.
func (p atomPoint) Distance(c kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(p.pos, c.(atomPoint).pos))
}

type atomPoints []atomPoint

func (p atomPoints) Index(i int) kdtree.Comparable { return p[i] }
func (p atomPoints) Len() int                      { return len(p) }
func (p atomPoints) Pivot(d kdtree.Dim) int {
	return atomPlane{Dim: d, atomPoints: p}.Pivot()
}
func (p atomPoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// atomPlane sorts atomPoints along one dimension.
type atomPlane struct {
	kdtree.Dim
	atomPoints
}

func (p atomPlane) Less(i, j int) bool {
	return p.atomPoints[i].coord(p.Dim) < p.atomPoints[j].coord(p.Dim)
}
func (p atomPlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p atomPlane) Slice(start, end int) kdtree.SortSlicer {
	p.atomPoints = p.atomPoints[start:end]
	return p
}
func (p atomPlane) Swap(i, j int) {
	p.atomPoints[i], p.atomPoints[j] = p.atomPoints[j], p.atomPoints[i]
}

// bondIndex answers "which atoms after i are within the cutoff" with a k-d tree.
type bondIndex struct {
	tree *kdtree.Tree
	pos  []Vec3
	cut2 float64
}

func newBondIndex(pos []Vec3, present []bool, cutoff float64) *bondIndex {
	pts := make(atomPoints, 0, len(pos))
	for i, p := range pos {
		if present[i] {
			pts = append(pts, atomPoint{idx: i, pos: p})
		}
	}
	//the small slack keeps every pair the exact test could admit.
	c := cutoff * (1 + 1e-9)
	return &bondIndex{tree: kdtree.New(pts, false), pos: pos, cut2: c * c}
}

// neighbors returns the indexes j > i of the atoms within the cutoff of atom i.
// The tree is only read, so concurrent calls are safe.
func (b *bondIndex) neighbors(i int) []int {
	keep := kdtree.NewDistKeeper(b.cut2)
	b.tree.NearestSet(keep, atomPoint{idx: i, pos: b.pos[i]})
	ret := make([]int, 0, len(keep.Heap))
	for _, c := range keep.Heap {
		if c.Comparable == nil {
			continue
		}
		if j := c.Comparable.(atomPoint).idx; j > i {
			ret = append(ret, j)
		}
	}
	return ret
}
