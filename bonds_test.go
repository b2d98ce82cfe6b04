package chem

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pairFrame(e1, e2 Element, d float64) (*FrameData, []AtomData) {
	f := NewFrame(0, 0, 2)
	f.Positions[1] = Vec3{X: d}
	return f, []AtomData{NewAtomData(0, e1, e1.Symbol()), NewAtomData(1, e2, e2.Symbol())}
}

func TestCarbonPair(Te *testing.T) {
	cfg := DefaultBondConfig()
	require.False(Te, cfg.InferOrder, "orders are opt-in")
	//1.2 Å is a triple C-C bond by distance, but the default reports Single
	f, atoms := pairFrame(C, C, 1.2)
	bonds := DetectBonds(f, atoms, cfg)
	require.Len(Te, bonds, 1)
	assert.Equal(Te, 0, bonds[0].AtomA)
	assert.Equal(Te, 1, bonds[0].AtomB)
	assert.Equal(Te, Single, bonds[0].Order)
	assert.Equal(Te, Covalent, bonds[0].Type)
	assert.InDelta(Te, 1.2, bonds[0].Distance, 1e-12)

	f, atoms = pairFrame(C, C, 10)
	assert.Empty(Te, DetectBonds(f, atoms, cfg))
}

func TestDistanceBounds(Te *testing.T) {
	cfg := DefaultBondConfig()
	for _, d := range []float64{0.3, 3.2} {
		f, atoms := pairFrame(C, C, d)
		assert.Empty(Te, DetectBonds(f, atoms, cfg), d)
	}
	//H-H: VDW sum 2.4, times 1.2 is 2.88
	f, atoms := pairFrame(H, H, 2.9)
	assert.Empty(Te, DetectBonds(f, atoms, cfg))
	f, atoms = pairFrame(H, H, 2.8)
	assert.Len(Te, DetectBonds(f, atoms, cfg), 1)
	cfg.Enabled = false
	assert.Nil(Te, DetectBonds(f, atoms, cfg))
}

func TestSameResidueOnly(Te *testing.T) {
	cfg := DefaultBondConfig()
	cfg.SameResidueOnly = true
	f, atoms := pairFrame(C, N, 1.4)
	atoms[0].ResidueID = 1
	atoms[1].ResidueID = 2
	assert.Empty(Te, DetectBonds(f, atoms, cfg))
	atoms[1].ResidueID = 1
	assert.Len(Te, DetectBonds(f, atoms, cfg), 1)
}

func TestBondOrderAndType(Te *testing.T) {
	assert.Equal(Te, Triple, ClassifyBondOrder(C, C, 1.20))
	assert.Equal(Te, Double, ClassifyBondOrder(C, C, 1.45))
	assert.Equal(Te, Single, ClassifyBondOrder(C, C, 1.54))
	assert.InDelta(Te, 1.09, ExpectedBondLength(H, C), 1e-12)
	assert.InDelta(Te, 1.09, ExpectedBondLength(C, H), 1e-12)
	assert.InDelta(Te, (1.55+1.80)/2*0.75, ExpectedBondLength(N, P), 1e-12)

	assert.Equal(Te, Disulfide, ClassifyBondType(S, S))
	assert.Equal(Te, Coordinate, ClassifyBondType(Fe, S))
	assert.Equal(Te, Coordinate, ClassifyBondType(S, Zn))
	assert.Equal(Te, Ionic, ClassifyBondType(Mg, O))
	assert.Equal(Te, Ionic, ClassifyBondType(O, Ca))
	assert.Equal(Te, Ionic, ClassifyBondType(Na, Cl))
	assert.Equal(Te, Covalent, ClassifyBondType(C, O))

	cfg := DefaultBondConfig()
	cfg.InferOrder = true
	f, atoms := pairFrame(C, C, 1.2)
	bonds := DetectBonds(f, atoms, cfg)
	require.Len(Te, bonds, 1)
	assert.Equal(Te, Triple, bonds[0].Order)
}

func TestCanonicalBonds(Te *testing.T) {
	in := []BondData{
		{AtomA: 5, AtomB: 2, Distance: 1},
		{AtomA: 2, AtomB: 5, Distance: 2},
		{AtomA: 1, AtomB: 1},
		{AtomA: 0, AtomB: 9},
		{AtomA: 0, AtomB: 3},
	}
	out := CanonicalBonds(in)
	require.Len(Te, out, 3)
	assert.Equal(Te, [2]int{0, 3}, [2]int{out[0].AtomA, out[0].AtomB})
	assert.Equal(Te, [2]int{0, 9}, [2]int{out[1].AtomA, out[1].AtomB})
	assert.Equal(Te, [2]int{2, 5}, [2]int{out[2].AtomA, out[2].AtomB})
	assert.Equal(Te, 1.0, out[2].Distance)
}

// randomBox builds a dense random system with mixed elements.
func randomBox(n int, side float64, seed int64) (*FrameData, []AtomData) {
	rnd := rand.New(rand.NewSource(seed))
	elems := []Element{C, N, O, H, S, Fe, Na, Cl}
	f := NewFrame(0, 0, n)
	atoms := make([]AtomData, n)
	for i := 0; i < n; i++ {
		f.Positions[i] = Vec3{X: rnd.Float64() * side, Y: rnd.Float64() * side, Z: rnd.Float64() * side}
		atoms[i] = NewAtomData(i, elems[rnd.Intn(len(elems))], "A")
		atoms[i].ResidueID = i / 10
	}
	return f, atoms
}

func TestDetectionStrategiesAgree(Te *testing.T) {
	f, atoms := randomBox(400, 12, 7)
	cfg := DefaultBondConfig()
	cfg.InferOrder = true
	ref := DetectBonds(f, atoms, cfg)
	require.NotEmpty(Te, ref)
	for i, b := range ref {
		require.Less(Te, b.AtomA, b.AtomB)
		if i > 0 {
			prev := ref[i-1]
			require.True(Te, prev.AtomA < b.AtomA || (prev.AtomA == b.AtomA && prev.AtomB < b.AtomB))
		}
	}
	variants := []func(c BondConfig) BondConfig{
		func(c BondConfig) BondConfig { c.UseSpatialIndex = true; return c },
		func(c BondConfig) BondConfig { c.Workers = 4; return c },
		func(c BondConfig) BondConfig { c.Workers = 0; c.UseSpatialIndex = true; return c },
	}
	for _, v := range variants {
		assert.Equal(Te, ref, DetectBonds(f, atoms, v(cfg)))
	}
}

func TestMissingPositionsAreSkipped(Te *testing.T) {
	f, atoms := pairFrame(C, C, 1.5)
	atoms = append(atoms, NewAtomData(2, C, "C"))
	bonds := DetectBonds(f, atoms, DefaultBondConfig())
	require.Len(Te, bonds, 1)
	bonds = DetectBonds(f, atoms, BondConfig{Enabled: true, VdwMultiplier: 1.2, MaxDistance: 3, MinDistance: 0.5, UseSpatialIndex: true})
	require.Len(Te, bonds, 1)
}

func TestTrajectoryDetectBonds(Te *testing.T) {
	traj := NewTrajectory("water.gro", 3, 1)
	traj.Units = Nanometer
	traj.Atoms = []AtomData{NewAtomData(0, O, "OW"), NewAtomData(1, H, "HW1"), NewAtomData(2, H, "HW2")}
	f := NewFrame(0, 0, 3)
	f.Positions = []Vec3{{}, {X: 0.0957}, {X: -0.024, Y: 0.0927}}
	require.NoError(Te, traj.AddFrame(f))
	bonds, err := traj.DetectBonds(0, DefaultBondConfig())
	require.NoError(Te, err)
	require.Len(Te, bonds, 3) //H-H at 1.5 Å is within the distance rule too
	assert.InDelta(Te, 0.957, bonds[0].Distance, 1e-9)

	//explicit bonds take precedence
	traj.Bonds = []BondData{NewBond(1, 0, Other, Single, 0)}
	bonds, err = traj.DetectBonds(0, DefaultBondConfig())
	require.NoError(Te, err)
	require.Len(Te, bonds, 1)
	assert.Equal(Te, 0, bonds[0].AtomA)
	assert.Equal(Te, Covalent, bonds[0].Type)
	assert.InDelta(Te, 0.957, bonds[0].Distance, 1e-9)

	_, err = traj.DetectBonds(1, DefaultBondConfig())
	assert.Error(Te, err)
	bad := DefaultBondConfig()
	bad.MaxDistance = 0.1
	_, err = traj.DetectBonds(0, bad)
	assert.Error(Te, err)
}

func TestBondStatistics(Te *testing.T) {
	bonds := []BondData{
		{AtomA: 0, AtomB: 1, Distance: 1.0, Order: Single, Type: Covalent},
		{AtomA: 1, AtomB: 2, Distance: 2.0, Order: Double, Type: Covalent},
		{AtomA: 2, AtomB: 3, Distance: 3.0, Order: Single, Type: Disulfide},
	}
	s := BondStatistics(bonds)
	assert.Equal(Te, 3, s.Count)
	assert.InDelta(Te, 2.0, s.Mean, 1e-12)
	assert.InDelta(Te, 1.0, s.StdDev, 1e-12)
	assert.Equal(Te, 1.0, s.Min)
	assert.Equal(Te, 3.0, s.Max)
	assert.Equal(Te, 2, s.ByType[Covalent])
	assert.Equal(Te, 2, s.ByOrder[Single])
	assert.Equal(Te, 0, BondStatistics(nil).Count)
	assert.Equal(Te, 0.0, BondStatistics(bonds[:1]).StdDev)
}
