package mmcif

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chem "github.com/rmera/molview"
)

const water = `data_HOH
#
_entry.id HOH
_struct.title 'A single water molecule'
_struct_keywords.pdbx_keywords
;SOLVENT
;
#
loop_
_atom_site.group_PDB
_atom_site.id
_atom_site.type_symbol
_atom_site.label_atom_id
_atom_site.label_comp_id
_atom_site.label_asym_id
_atom_site.label_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.auth_seq_id
_atom_site.auth_asym_id
HETATM 1 O O   HOH A . 0.000 0.000  0.000 1 W
HETATM 2 H H1  HOH A . 0.957 0.000  0.000 1 W
HETATM 3 H H2  HOH A . -0.240 0.927 0.000 1 W
#
`

const twoModels = `data_2M
loop_
_atom_site.id
_atom_site.label_atom_id
_atom_site.label_alt_id
_atom_site.label_comp_id
_atom_site.label_seq_id
_atom_site.Cartn_x
_atom_site.Cartn_y
_atom_site.Cartn_z
_atom_site.pdbx_PDB_model_num
1 N  . GLY 1 0.0 0.0 0.0 1
2 CA A GLY 1 1.5 0.0 0.0 1
3 CA B GLY 1 9.9 9.9 9.9 1
1 N  . GLY 1 0.1 0.0 0.0 2
2 CA A GLY 1 1.6 0.0 0.0 2
`

func TestReadWater(Te *testing.T) {
	traj, err := ReadString(water, "water.cif")
	require.NoError(Te, err)
	assert.Equal(Te, 3, traj.NumAtoms)
	require.Equal(Te, 1, traj.NumFrames())
	assert.Equal(Te, "A single water molecule", traj.Meta.Title)
	assert.Equal(Te, "SOLVENT", traj.Meta.Classification)
	assert.Equal(Te, "HOH", traj.Meta.Extra["id"])
	assert.Equal(Te, []chem.Element{chem.O, chem.H, chem.H}, traj.Elements())
	h1 := traj.Atoms[1]
	assert.Equal(Te, "H1", h1.Name)
	assert.Equal(Te, "HOH", h1.ResidueName)
	assert.Equal(Te, 1, h1.ResidueID) //from auth_seq_id
	assert.Equal(Te, "W", h1.ChainID)
	assert.Equal(Te, 2, h1.Serial)
	assert.Equal(Te, 1, h1.ID)
	assert.InDelta(Te, 0.927, traj.Frames[0].Positions[2].Y, 1e-9)
	assert.Equal(Te, chem.Angstrom, traj.Units)
}

func TestReadModels(Te *testing.T) {
	traj, err := ReadString(twoModels, "2m.cif")
	require.NoError(Te, err)
	assert.Equal(Te, 2, traj.NumAtoms)
	require.Equal(Te, 2, traj.NumFrames())
	assert.InDelta(Te, 1.5, traj.Frames[0].Positions[1].X, 1e-9)
	assert.InDelta(Te, 0.1, traj.Frames[1].Positions[0].X, 1e-9)
	assert.Equal(Te, chem.C, traj.Atoms[1].Element)
	assert.Equal(Te, chem.N, traj.Atoms[0].Element)
	assert.Equal(Te, "2M", traj.Meta.Extra["id"])
}

func TestReadAtoms(Te *testing.T) {
	noCoords := `data_x
loop_
_atom_site.id
_atom_site.auth_atom_id
_atom_site.auth_comp_id
_atom_site.auth_seq_id
1 NA NA 5
2 CL CL 6
`
	atoms, err := ReadAtoms(strings.NewReader(noCoords), "ions.cif")
	require.NoError(Te, err)
	require.Len(Te, atoms, 2)
	assert.Equal(Te, chem.Na, atoms[0].Element)
	assert.Equal(Te, chem.Cl, atoms[1].Element)
	assert.Equal(Te, 6, atoms[1].ResidueID)

	_, err = ReadString(noCoords, "ions.cif")
	require.Error(Te, err)
	assert.True(Te, chem.IsParseError(err))
	assert.Contains(Te, err.Error(), "_atom_site.Cartn_x, _atom_site.Cartn_y, _atom_site.Cartn_z")
	assert.Contains(Te, err.Error(), "line 2")
}

func TestTokens(Te *testing.T) {
	toks, err := splitLine(`_a 'it''s' "two words" 'O5'' bare # comment`, 1)
	require.NoError(Te, err)
	var text []string
	for _, t := range toks {
		text = append(text, t.text)
	}
	assert.Equal(Te, []string{"_a", "it''s", "two words", "O5'", "bare"}, text)
	assert.True(Te, toks[2].quoted)
	assert.False(Te, toks[4].quoted)

	_, err = splitLine(`'never closed`, 1)
	assert.Error(Te, err)
}

func TestSingleAtomItems(Te *testing.T) {
	in := `data_one
_atom_site.id 1
_atom_site.type_symbol Fe
_atom_site.label_atom_id FE
_atom_site.Cartn_x 1.0
_atom_site.Cartn_y 2.0
_atom_site.Cartn_z 3.0
`
	traj, err := ReadString(in, "one.cif")
	require.NoError(Te, err)
	require.Equal(Te, 1, traj.NumAtoms)
	assert.Equal(Te, chem.Fe, traj.Atoms[0].Element)
	assert.Equal(Te, chem.Vec3{X: 1, Y: 2, Z: 3}, traj.Frames[0].Positions[0])
}

func TestReadErrors(Te *testing.T) {
	cases := []struct {
		name, in, msg string
		line          int
	}{
		{"no block", "loop_\n_a.b\n1\n", "No data_ block", 1},
		{"no atoms", "data_x\n_struct.title t\n", "No _atom_site records", 0},
		{"short row", "data_x\nloop_\n_atom_site.id\n_atom_site.Cartn_x\n1 2.0\n3\n", "row with 1 values, expected 2", 6},
		{"bad coordinate", "data_x\nloop_\n_atom_site.Cartn_x\n_atom_site.Cartn_y\n_atom_site.Cartn_z\n1 2 3\n1 zz 3\n", `Invalid coordinate "zz"`, 7},
		{"model size", strings.Replace(twoModels, "2 CA A GLY 1 1.6 0.0 0.0 2\n", "", 1), "Number of atoms changed from 2 to 1 in model 2", 15},
		{"text field", "data_x\n_struct.title\n;never closed\n", "Unterminated text field", 3},
		{"missing value", "data_x\n_struct.title\nloop_\n", "Missing value for _struct.title", 2},
	}
	for _, c := range cases {
		Te.Run(c.name, func(Te *testing.T) {
			_, err := ReadString(c.in, "bad.cif")
			require.Error(Te, err)
			assert.True(Te, chem.IsParseError(err), err.Error())
			assert.Contains(Te, err.Error(), c.msg)
			var ferr *chem.FileError
			require.ErrorAs(Te, err, &ferr)
			assert.Equal(Te, c.line, ferr.Line)
		})
	}
}

func TestQuote(Te *testing.T) {
	assert.Equal(Te, "CA", quote("CA"))
	assert.Equal(Te, "O5'", quote("O5'"))
	assert.Equal(Te, ".", quote(""))
	assert.Equal(Te, "'two words'", quote("two words"))
	assert.Equal(Te, "'it's here'", quote("it's here"))
	assert.Equal(Te, `"5' end"`, quote("5' end"))
	assert.Equal(Te, "'_x'", quote("_x"))
	assert.Equal(Te, "'?'", quote("?"))
}

func TestWriteRoundTrip(Te *testing.T) {
	traj, err := ReadString(twoModels, "2m.cif")
	require.NoError(Te, err)
	traj.Meta.Title = "two words"
	traj.Frames[0].SetBox(10, 20, 30)
	var buf bytes.Buffer
	require.NoError(Te, Write(&buf, traj))
	out := buf.String()
	assert.True(Te, strings.HasPrefix(out, "data_2M\n#\n"), out)
	assert.Contains(Te, out, "_struct.title 'two words'\n")
	assert.Contains(Te, out, "_atom_site.pdbx_PDB_model_num\n")
	assert.Contains(Te, out, "ATOM 2 C CA . GLY A 1 1 1.500 0.000 0.000 1.00 0.00 0 A 1 ? 1\n")

	back, err := ReadString(out, "back.cif")
	require.NoError(Te, err)
	assert.Equal(Te, traj.NumAtoms, back.NumAtoms)
	assert.Equal(Te, traj.NumFrames(), back.NumFrames())
	assert.Equal(Te, "two words", back.Meta.Title)
	assert.Equal(Te, traj.Elements(), back.Elements())
	box, ok := back.Frames[1].BoxDims()
	require.True(Te, ok)
	assert.Equal(Te, chem.Vec3{X: 10, Y: 20, Z: 30}, box)
	for j := range traj.Frames {
		for i := range traj.Frames[j].Positions {
			assert.InDelta(Te, traj.Frames[j].Positions[i].X, back.Frames[j].Positions[i].X, 1e-3)
		}
	}

	fname := filepath.Join(Te.TempDir(), "2m.cif.gz")
	require.NoError(Te, WriteFile(fname, traj))
	again, err := ReadFile(fname)
	require.NoError(Te, err)
	assert.Equal(Te, 2, again.NumFrames())
}

func TestWriteNanometers(Te *testing.T) {
	traj := chem.NewTrajectory("nm", 1, 1)
	traj.Units = chem.Nanometer
	f := chem.NewFrame(0, 0, 1)
	f.Positions[0] = chem.Vec3{X: 0.1, Y: 0.2, Z: 0.3}
	require.NoError(Te, traj.AddFrame(f))
	var buf bytes.Buffer
	require.NoError(Te, Write(&buf, traj))
	assert.Contains(Te, buf.String(), "HETATM 1 X X . UNK A 1 1 1.000 2.000 3.000 1.00 0.00 0 A 1 ?\n")
}
