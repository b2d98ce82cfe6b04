/*
 * commands.go, part of molview.
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

package main

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	chem "github.com/rmera/molview"
	"github.com/rmera/molview/chemplot"
	"github.com/rmera/molview/format"
)

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")).Width(16)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
)

func field(w io.Writer, label string, value interface{}) {
	fmt.Fprintln(w, labelStyle.Render(label)+valueStyle.Render(fmt.Sprint(value)))
}

func (a *app) summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary FILE",
		Short: "print what a trajectory file contains",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traj, err := format.Load(args[0])
			if err != nil {
				return err
			}
			writeSummary(cmd.OutOrStdout(), traj, format.FromExtension(args[0]))
			return nil
		},
	}
}

func writeSummary(w io.Writer, traj *chem.Trajectory, f format.Format) {
	field(w, "File", traj.Meta.Source)
	if f != format.Unknown {
		field(w, "Format", f)
	}
	field(w, "Atoms", traj.NumAtoms)
	field(w, "Frames", traj.NumFrames())
	field(w, "Units", traj.Units)
	if traj.TimeStep > 0 {
		field(w, "Time step", traj.TimeStep)
		field(w, "Total time", traj.TotalTime())
	}
	if traj.Meta.Title != "" {
		field(w, "Title", traj.Meta.Title)
	}
	if traj.Meta.Software != "" {
		field(w, "Software", traj.Meta.Software)
	}
	if traj.Meta.Classification != "" {
		field(w, "Classification", traj.Meta.Classification)
	}
	if f0, ok := traj.Frame(0); ok {
		if box, ok := f0.BoxDims(); ok {
			field(w, "Box", fmt.Sprintf("%.3f %.3f %.3f", box.X, box.Y, box.Z))
		}
		if f0.HasVelocities() {
			field(w, "Velocities", "yes")
		}
	}
	if traj.Meta.Extra["atoms"] == "placeholder" {
		field(w, "Atom data", "placeholder (coordinates only)")
	} else {
		field(w, "Composition", composition(traj.Elements()))
	}
	if traj.Bonds != nil {
		field(w, "Explicit bonds", len(traj.Bonds))
	}
}

// composition returns a formula-like count of elements, most common first.
func composition(elements []chem.Element) string {
	counts := make(map[chem.Element]int)
	for _, e := range elements {
		counts[e]++
	}
	keys := make([]chem.Element, 0, len(counts))
	for e := range counts {
		keys = append(keys, e)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	parts := make([]string, len(keys))
	for i, e := range keys {
		parts[i] = fmt.Sprintf("%s%d", e.Symbol(), counts[e])
	}
	return strings.Join(parts, " ")
}

func (a *app) bondsCmd() *cobra.Command {
	var (
		frame     int
		structure string
		limit     int
	)
	cmd := &cobra.Command{
		Use:   "bonds FILE",
		Short: "list the bonds of a frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traj, err := load(args[0], structure)
			if err != nil {
				return err
			}
			bonds, err := traj.DetectBonds(frame, a.cfg.BondConfig())
			if err != nil {
				return err
			}
			writeBonds(cmd.OutOrStdout(), traj, bonds, limit)
			return nil
		},
	}
	cmd.Flags().IntVar(&frame, "frame", 0, "frame index")
	cmd.Flags().StringVar(&structure, "structure", "", "structure file with the atom data")
	cmd.Flags().IntVar(&limit, "limit", 20, "bonds to list (0 for all)")
	return cmd
}

func writeBonds(w io.Writer, traj *chem.Trajectory, bonds []chem.BondData, limit int) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "A\tB\tNAMES\tTYPE\tORDER\tLENGTH (Å)")
	for i, b := range bonds {
		if limit > 0 && i >= limit {
			break
		}
		na, nb := traj.Atom(b.AtomA), traj.Atom(b.AtomB)
		fmt.Fprintf(tw, "%d\t%d\t%s-%s\t%s\t%s\t%.3f\n", b.AtomA, b.AtomB, na.Name, nb.Name, b.Type, b.Order, b.Distance)
	}
	tw.Flush()
	if limit > 0 && len(bonds) > limit {
		fmt.Fprintf(w, "... %d more\n", len(bonds)-limit)
	}
	s := chem.BondStatistics(bonds)
	fmt.Fprintln(w)
	field(w, "Bonds", s.Count)
	if s.Count == 0 {
		return
	}
	field(w, "Length", fmt.Sprintf("%.3f ± %.3f Å (%.3f to %.3f)", s.Mean, s.StdDev, s.Min, s.Max))
	types := make([]string, 0, len(s.ByType))
	for t, n := range s.ByType {
		types = append(types, fmt.Sprintf("%s %d", t, n))
	}
	sort.Strings(types)
	field(w, "Types", strings.Join(types, ", "))
}

func (a *app) convertCmd() *cobra.Command {
	var structure string
	cmd := &cobra.Command{
		Use:   "convert IN OUT",
		Short: "convert a trajectory to the format given by the extension of OUT",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			traj, err := load(args[0], structure)
			if err != nil {
				return err
			}
			if err := format.WriteFile(args[1], traj); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d frames to %s\n", traj.NumFrames(), args[1])
			return nil
		},
	}
	cmd.Flags().StringVar(&structure, "structure", "", "structure file with the atom data")
	return cmd
}

func (a *app) rmsdCmd() *cobra.Command {
	var (
		ref       int
		structure string
	)
	cmd := &cobra.Command{
		Use:   "rmsd FILE",
		Short: "plot the RMSD of every frame against a reference frame",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			traj, err := load(args[0], structure)
			if err != nil {
				return err
			}
			rmsd, err := chemplot.RMSDSeries(traj, ref)
			if err != nil {
				return err
			}
			if len(rmsd) < 2 {
				fmt.Fprintf(cmd.OutOrStdout(), "RMSD: %.3f Å\n", rmsd[0])
				return nil
			}
			graph := asciigraph.Plot(rmsd,
				asciigraph.Height(15),
				asciigraph.Width(80),
				asciigraph.Caption(fmt.Sprintf("RMSD (Å) vs frame %d", ref)))
			fmt.Fprintln(cmd.OutOrStdout(), graph)
			return nil
		},
	}
	cmd.Flags().IntVar(&ref, "ref", 0, "reference frame")
	cmd.Flags().StringVar(&structure, "structure", "", "structure file with the atom data")
	return cmd
}

func (a *app) plotCmd() *cobra.Command {
	var (
		kind      string
		frame     int
		bins      int
		structure string
	)
	cmd := &cobra.Command{
		Use:   "plot FILE OUT",
		Short: "save a bond length histogram or an RMSD plot as an image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			traj, err := load(args[0], structure)
			if err != nil {
				return err
			}
			var name string
			switch kind {
			case "bonds":
				bonds, err := traj.DetectBonds(frame, a.cfg.BondConfig())
				if err != nil {
					return err
				}
				name, err = chemplot.BondLengthHistogram(bonds, bins, fmt.Sprintf("Bond lengths, frame %d", frame), args[1])
				if err != nil {
					return err
				}
			case "rmsd":
				rmsd, err := chemplot.RMSDSeries(traj, frame)
				if err != nil {
					return err
				}
				name, err = chemplot.RMSDPlot(rmsd, traj.TimeStep, "RMSD", args[1])
				if err != nil {
					return err
				}
			default:
				return fmt.Errorf("unknown plot kind %q, use bonds or rmsd", kind)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", name)
			return nil
		},
	}
	cmd.Flags().StringVar(&kind, "kind", "bonds", "plot kind: bonds or rmsd")
	cmd.Flags().IntVar(&frame, "frame", 0, "frame for bonds, reference frame for rmsd")
	cmd.Flags().IntVar(&bins, "bins", chemplot.DefaultBins, "histogram bins")
	cmd.Flags().StringVar(&structure, "structure", "", "structure file with the atom data")
	return cmd
}
