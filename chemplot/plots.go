/*
 * plots.go, part of molview.
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

// Package chemplot draws plots of bond and trajectory data with gonum/plot.
package chemplot

import (
	"fmt"
	"sort"

	"gonum.org/v1/plot/plotter"

	chem "github.com/rmera/molview"
)

// DefaultBins is the number of histogram bins used when 0 is given.
const DefaultBins = 30

// BondLengthHistogram plots the distribution of bond lengths, one colored
// histogram per bond type, and saves it to filename. It returns the name of
// the file written.
func BondLengthHistogram(bonds []chem.BondData, bins int, title, filename string) (string, error) {
	if len(bonds) == 0 {
		return "", fmt.Errorf("BondLengthHistogram: no bonds to plot")
	}
	if bins <= 0 {
		bins = DefaultBins
	}
	bytype := make(map[chem.BondType]plotter.Values)
	for _, b := range bonds {
		bytype[b.Type] = append(bytype[b.Type], b.Distance)
	}
	types := make([]chem.BondType, 0, len(bytype))
	for t := range bytype {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })

	p := basicPlot(title, "Bond length (Å)", "Count")
	for key, t := range types {
		h, err := plotter.NewHist(bytype[t], bins)
		if err != nil {
			return "", fmt.Errorf("BondLengthHistogram: %w", err)
		}
		c := colors(key, len(types))
		c.A = 180
		h.FillColor = c
		p.Add(h)
		p.Legend.Add(fmt.Sprintf("%s (%d)", t, len(bytype[t])), h)
	}
	p.Legend.Top = true
	return save(p, filename)
}

// RMSDSeries returns the RMSD of every frame of traj against frame ref, in Å.
func RMSDSeries(traj *chem.Trajectory, ref int) ([]float64, error) {
	scale := traj.Units.ToAngstrom()
	ret := make([]float64, traj.NumFrames())
	for i := range ret {
		r, err := traj.RMSD(ref, i)
		if err != nil {
			return nil, fmt.Errorf("RMSDSeries: %w", err)
		}
		ret[i] = r * scale
	}
	return ret, nil
}

// RMSDPlot plots rmsd against time, taking timeStep as the time between
// values, and saves it to filename. It returns the name of the file written.
func RMSDPlot(rmsd []float64, timeStep float64, title, filename string) (string, error) {
	if len(rmsd) == 0 {
		return "", fmt.Errorf("RMSDPlot: no data to plot")
	}
	if timeStep <= 0 {
		timeStep = 1
	}
	pts := make(plotter.XYs, len(rmsd))
	for i, v := range rmsd {
		pts[i].X = float64(i) * timeStep
		pts[i].Y = v
	}
	p := basicPlot(title, "Time", "RMSD (Å)")
	p.Y.Min = 0
	l, s, err := plotter.NewLinePoints(pts)
	if err != nil {
		return "", fmt.Errorf("RMSDPlot: %w", err)
	}
	l.Color = colors(0, 2)
	s.Color = colors(1, 2)
	p.Add(l, s)
	return save(p, filename)
}
