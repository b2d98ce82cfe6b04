/*
 * atomicdata.go, part of molview.
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

// elementInfo holds the static data for one element.
type elementInfo struct {
	symbol string
	mass   float64
	vdw    float64
}

// Van der Waals radii (Å) are from Bondi (10.1021/j100785a001) and Alvarez
// (10.1039/C3DT50599E) for the heavier elements. Elements without a tabulated
// radius use the carbon value.
// Masses are standard atomic weights, in atomic mass units.
var elementTable = [...]elementInfo{
	{"X", 12.0, 1.70},
	{"H", 1.008, 1.20},
	{"He", 4.003, 1.40},
	{"Li", 6.941, 1.82},
	{"Be", 9.012, 1.53},
	{"B", 10.811, 1.92},
	{"C", 12.011, 1.70},
	{"N", 14.007, 1.55},
	{"O", 15.999, 1.52},
	{"F", 18.998, 1.47},
	{"Ne", 20.180, 1.54},
	{"Na", 22.990, 2.27},
	{"Mg", 24.305, 1.73},
	{"Al", 26.982, 1.84},
	{"Si", 28.086, 2.10},
	{"P", 30.974, 1.80},
	{"S", 32.065, 1.80},
	{"Cl", 35.453, 1.75},
	{"Ar", 39.948, 1.88},
	{"K", 39.098, 2.75},
	{"Ca", 40.078, 2.31},
	{"Sc", 44.956, 2.15},
	{"Ti", 47.867, 2.11},
	{"V", 50.942, 2.07},
	{"Cr", 51.996, 2.06},
	{"Mn", 54.938, 2.05},
	{"Fe", 55.845, 2.04},
	{"Co", 58.933, 2.00},
	{"Ni", 58.693, 1.97},
	{"Cu", 63.546, 1.96},
	{"Zn", 65.409, 2.01},
	{"Ga", 69.723, 1.87},
	{"Ge", 72.64, 2.11},
	{"As", 74.922, 1.85},
	{"Se", 78.96, 1.90},
	{"Br", 79.904, 1.85},
	{"Kr", 83.798, 2.02},
	{"Rb", 85.468, 3.03},
	{"Sr", 87.62, 2.49},
	{"Y", 88.906, 2.32},
	{"Zr", 91.224, 2.23},
	{"Nb", 92.906, 2.18},
	{"Mo", 95.94, 2.17},
	{"Tc", 98.0, 2.16},
	{"Ru", 101.07, 2.13},
	{"Rh", 102.91, 2.10},
	{"Pd", 106.42, 2.10},
	{"Ag", 107.87, 2.11},
	{"Cd", 112.41, 2.18},
	{"In", 114.82, 2.20},
	{"Sn", 118.71, 2.17},
	{"Sb", 121.76, 2.06},
	{"Te", 127.60, 2.06},
	{"I", 126.90, 1.98},
	{"Xe", 131.29, 2.16},
	{"Cs", 132.91, 3.43},
	{"Ba", 137.33, 2.68},
	{"La", 138.91, 2.43},
	{"Ce", 140.12, 2.42},
	{"Pr", 140.91, 2.40},
	{"Nd", 144.24, 2.39},
	{"Pm", 145.0, 2.38},
	{"Sm", 150.36, 2.36},
	{"Eu", 151.96, 2.35},
	{"Gd", 157.25, 2.34},
	{"Tb", 158.93, 2.33},
	{"Dy", 162.50, 2.31},
	{"Ho", 164.93, 2.30},
	{"Er", 167.26, 2.29},
	{"Tm", 168.93, 2.27},
	{"Yb", 173.04, 2.26},
	{"Lu", 174.97, 2.24},
	{"Hf", 178.49, 2.23},
	{"Ta", 180.95, 2.22},
	{"W", 183.84, 2.18},
	{"Re", 186.21, 2.16},
	{"Os", 190.23, 2.16},
	{"Ir", 192.22, 2.13},
	{"Pt", 195.08, 2.13},
	{"Au", 196.97, 2.14},
	{"Hg", 200.59, 2.23},
	{"Tl", 204.38, 1.96},
	{"Pb", 207.2, 2.02},
	{"Bi", 208.98, 2.07},
	{"Po", 209.0, 1.97},
	{"At", 210.0, 2.02},
	{"Rn", 222.0, 2.20},
	{"Fr", 223.0, 3.48},
	{"Ra", 226.0, 2.83},
	{"Ac", 227.0, 2.47},
	{"Th", 232.04, 2.45},
	{"Pa", 231.04, 2.43},
	{"U", 238.03, 2.41},
	{"Np", 237.0, 2.39},
	{"Pu", 244.0, 2.43},
	{"Am", 243.0, 2.44},
	{"Cm", 247.0, 2.45},
	{"Bk", 247.0, 2.44},
	{"Cf", 251.0, 2.45},
	{"Es", 252.0, 2.45},
	{"Fm", 257.0, 2.45},
	{"Md", 258.0, 2.46},
	{"No", 259.0, 2.46},
	{"Lr", 262.0, 2.46},
	{"Rf", 267.0, 1.70},
	{"Db", 268.0, 1.70},
	{"Sg", 269.0, 1.70},
	{"Bh", 270.0, 1.70},
	{"Hs", 277.0, 1.70},
	{"Mt", 278.0, 1.70},
	{"Ds", 281.0, 1.70},
	{"Rg", 282.0, 1.70},
	{"Cn", 285.0, 1.70},
	{"Nh", 286.0, 1.70},
	{"Fl", 289.0, 1.70},
	{"Mc", 290.0, 1.70},
	{"Lv", 293.0, 1.70},
	{"Ts", 294.0, 1.70},
	{"Og", 294.0, 1.70},
}

// CPK colors, RGB in [0,1]. Elements not listed are drawn gray.
var cpkColors = map[Element][3]float32{
	H:  {0.9, 0.9, 0.9},
	C:  {0.2, 0.2, 0.2},
	N:  {0.1, 0.1, 0.8},
	O:  {0.8, 0.1, 0.1},
	F:  {0.5, 0.8, 0.5},
	P:  {0.8, 0.5, 0.1},
	S:  {0.8, 0.8, 0.1},
	Cl: {0.1, 0.8, 0.1},
	Br: {0.5, 0.2, 0.2},
	I:  {0.4, 0.1, 0.4},
	He: {0.9, 0.0, 0.9},
	Li: {0.7, 0.0, 0.7},
	Be: {0.5, 0.5, 0.5},
	B:  {1.0, 0.7, 0.7},
	Na: {0.5, 0.5, 0.5},
	Mg: {0.0, 0.0, 0.0},
	Al: {0.5, 0.5, 0.5},
	Si: {0.9, 0.7, 0.5},
	K:  {0.5, 0.5, 0.5},
	Ca: {0.2, 0.8, 0.2},
	Ti: {0.6, 0.6, 0.6},
	Fe: {0.8, 0.2, 0.2},
	Cu: {0.7, 0.4, 0.2},
	Zn: {0.4, 0.5, 0.4},
	Ag: {0.7, 0.7, 0.7},
	Au: {0.8, 0.7, 0.2},
}

var defaultColor = [3]float32{0.5, 0.5, 0.5}

// Typical single-bond lengths in Å, keyed by the element pair with the lower
// atomic number first. Pairs not listed use a VDW-based estimate.
var bondLengths = map[[2]Element]float64{
	{H, H}:  0.74,
	{H, C}:  1.09,
	{H, N}:  1.01,
	{H, O}:  0.96,
	{C, C}:  1.54,
	{C, N}:  1.47,
	{C, O}:  1.43,
	{C, S}:  1.82,
	{N, N}:  1.45,
	{N, O}:  1.36,
	{O, O}:  1.48,
	{S, S}:  2.05,
	{S, Fe}: 2.30,
	{S, Zn}: 2.34,
}
