/*
 * doc.go, part of molview.
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

/*
Package chem is the core of molview. It holds the trajectory model shared by
all the file readers, the element table, and distance-based bond detection.

	**molview Capabilities**

	Reads and writes XYZ, PDB, GRO and mmCIF files, and DCD binary
	trajectories, plain or gzip/zstd compressed (packages xyz, pdb, gro,
	mmcif, dcd). Package format picks the reader from the file extension
	or, failing that, from the content.

	Pairs coordinate-only trajectories (DCD) with the atoms of a structure
	file, or fills them with placeholder atoms.

	Detects bonds from van der Waals radii, with an optional spatial index
	and worker pool for large systems. Bonds stated in PDB CONECT records
	are used as given.

	Interpolates positions between frames and computes the RMSD between
	frames. Package timeline drives playback.

	Plots bond length histograms and RMSD series (package chemplot).

Lengths are in the unit of the file they were read from (Å for all formats
except GRO, which is in nm). Trajectory.Units says which.
*/
package chem
