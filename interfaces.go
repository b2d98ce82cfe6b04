/*
 * interfaces.go, part of molview.
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

// Error is the interface for errors that all packages in this library implement. The Decorate method allows to add and retrieve info from the
// error, without changing it's type or wrapping it around something else.
type Error interface {
	Error() string
	//Decorate adds the caller to the error's call trace and returns the trace. An empty string just returns the trace.
	//Elements of the trace have the form "FunctionName" or "FunctionName: Extra info".
	Decorate(string) []string
}

// TrajError is the interface for errors in trajectory and structure readers.
type TrajError interface {
	Error
	Critical() bool
	FileName() string
	Format() string
}

// LastFrameError has a useless function to distinguish the harmless errors (i.e. last frame) so  they can be
// filtered in a typeswitch that looks for this interface.
type LastFrameError interface {
	TrajError
	NormalLastFrameTermination() //does nothing, just to separate this interface from other TrajError's
}

// FrameReader is implemented by the streaming readers (XYZ, DCD). Next returns
// a LastFrameError once the source is exhausted.
type FrameReader interface {
	//Is the trajectory ready to be read?
	Readable() bool

	//Next reads and returns the next frame.
	Next() (*FrameData, error)

	//Len returns the number of atoms per frame
	Len() int
}
