package iteration

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexanderBlank/BART/aqdata"
	"github.com/AlexanderBlank/BART/equation"
	"github.com/AlexanderBlank/BART/fe"
	"github.com/AlexanderBlank/BART/material"
	"github.com/AlexanderBlank/BART/mesh"
	"github.com/AlexanderBlank/BART/utils"
)

func near(a, b, tol float64) bool { return math.Abs(a-b) < tol }

func oneGroupLibrary() material.Library {
	return material.Library{
		NGroup: 1,
		Materials: []material.Spec{{
			Name:   "scatterer",
			SigmaT: []float64{1.0},
			SigmaS: [][]float64{{0.5}},
			Q:      []float64{1.0},
		}},
	}
}

// downscatter-only two-group fuel with analytic infinite-medium eigenvalue
// k_inf = (nusigf_0 + nusigf_1*sigs_01/sigr_1)/sigr_0 = 0.73571428...
func fuelLibrary() material.Library {
	return material.Library{
		NGroup: 2,
		Materials: []material.Spec{{
			Name:    "fuel",
			Fissile: true,
			SigmaT:  []float64{0.2, 1.0},
			SigmaS:  [][]float64{{0.1, 0.08}, {0, 0.3}},
			NuSigF:  []float64{0.005, 0.6},
			Chi:     []float64{1, 0},
		}},
	}
}

const kInf = (0.005 + 0.6*0.08/0.7) / 0.1

func reflectiveSlab() *mesh.Generator {
	return mesh.NewGenerator(mesh.GridSpec{
		Dim:                  1,
		AxisLengths:          []float64{2},
		NCellsCoarse:         []int{4},
		GlobalRefinements:    1,
		ReflectiveBoundaries: []int{mesh.XMin, mesh.XMax},
	}, 2)
}

func newEquation(name string, disc fe.Discretization, lib material.Library,
	msh *mesh.Generator, eigen bool) (*equation.Equation, []utils.Vector) {
	aq := aqdata.NewAngularQuadrature(msh.Dim, 2, lib.NGroup, msh.ReflectiveBCMap())
	mats, err := material.NewProperties(lib, aq.AngularNorm)
	if err != nil {
		panic(err)
	}
	equ := equation.NewEquation(equation.Config{
		EquationName:       name,
		Discretization:     disc,
		IsEigenProblem:     eigen,
		POrder:             1,
		LinearSolveTol:     1.e-12,
		LinearSolveMaxIter: 2000,
	}, msh, aq, mats)
	sflxes := make([]utils.Vector, equ.NGroup)
	equ.InitializeSystem(sflxes)
	equ.AssembleBilinearForm()
	return equ, sflxes
}

func drivers() (*IGBase, *MGBase) {
	return NewIGBase(1.e-10, 1000, false), NewMGBase(1.e-9, 500, false)
}

func TestPowerIterationReflectiveSlabKInf(t *testing.T) {
	cases := []struct {
		name string
		disc fe.Discretization
	}{
		{"diffusion", fe.CFEM},
		{"ep", fe.CFEM},
		{"ep", fe.DFEM},
	}
	for _, c := range cases {
		equ, sflxes := newEquation(c.name, c.disc, fuelLibrary(), reflectiveSlab(), true)
		ig, mg := drivers()
		pi := NewPowerIteration(1.e-7, 1.e-8, 200, false)
		keff, status, err := pi.EigenIterations(equ, sflxes, ig, mg)
		require.NoError(t, err)
		assert.Equal(t, Converged, status, "%s/%s", c.name, c.disc)
		assert.True(t, near(keff, kInf, 1.e-6), "%s/%s: keff %v, want %v", c.name, c.disc, keff, kInf)
	}
}

func TestPowerIterationCapReturnsStatus(t *testing.T) {
	equ, sflxes := newEquation("diffusion", fe.CFEM, fuelLibrary(), reflectiveSlab(), true)
	ig, mg := drivers()
	pi := NewPowerIteration(1.e-14, 1.e-14, 1, false)
	keff, status, err := pi.EigenIterations(equ, sflxes, ig, mg)
	require.NoError(t, err)
	assert.Equal(t, MaxIterationsExceeded, status)
	assert.True(t, keff > 0)
}

func TestSourceIterationInfiniteMedium(t *testing.T) {
	equ, sflxes := newEquation("ep", fe.CFEM, oneGroupLibrary(), reflectiveSlab(), false)
	ig, mg := drivers()
	status, err := NewSourceIteration(false).SourceIterations(equ, sflxes, ig, mg)
	require.NoError(t, err)
	assert.Equal(t, Converged, status)
	// flat flux q/sigma_a is exact in the Q1 space
	for i := 0; i < equ.Sp.NDofs; i++ {
		assert.True(t, near(sflxes[0].AtVec(i), 2.0, 1.e-7), "dof %d: %v", i, sflxes[0].AtVec(i))
	}
}

func TestSourceIterationErrorMonotone(t *testing.T) {
	equ, sflxes := newEquation("ep", fe.CFEM, oneGroupLibrary(), reflectiveSlab(), false)
	equ.AssembleFixedLinearForm(sflxes)
	old := utils.NewVector(equ.Sp.NDofs)
	var errs []float64
	for iter := 0; iter < 20; iter++ {
		equ.AssembleLinearForm(sflxes, 0)
		require.NoError(t, equ.SolveInGroup(0))
		equ.GenerateGroupMoments(sflxes[0], old, 0)
		errs = append(errs, relDiff(sflxes[0], old))
	}
	// the scattering ratio is 0.5, so the source iteration contracts
	for i := 1; i < len(errs); i++ {
		assert.True(t, errs[i] <= errs[i-1]*0.75, "iter %d: %v after %v", i, errs[i], errs[i-1])
	}
}

// a vacuum-bounded slab with a uniform source has the closed-form diffusion
// solution phi(x) = C - A*cosh((x-a/2)/L) with C = q/sigma_r and diffusion
// length L = sqrt(D/sigma_r); the constant A follows from the Marshak
// condition D*phi'*n + phi/2 = 0 at both ends
func TestVacuumSlabDiffusionLengthProfile(t *testing.T) {
	msh := mesh.NewGenerator(mesh.GridSpec{
		Dim:               1,
		AxisLengths:       []float64{2},
		NCellsCoarse:      []int{10},
		GlobalRefinements: 2,
	}, 2)
	equ, sflxes := newEquation("diffusion", fe.CFEM, oneGroupLibrary(), msh, false)
	ig, mg := drivers()
	status, err := NewSourceIteration(false).SourceIterations(equ, sflxes, ig, mg)
	require.NoError(t, err)
	assert.Equal(t, Converged, status)

	var (
		a    = 2.0
		sigr = 0.5
		D    = 1.0 / 3.0
		L    = math.Sqrt(D / sigr)
		C    = 1.0 / sigr
		A    = C / (math.Cosh(a/(2*L)) + 2*D/L*math.Sinh(a/(2*L)))
		nc   = 40
		h    = a / float64(nc)
	)
	for i := 0; i <= nc; i++ {
		var (
			x    = float64(i) * h
			want = C - A*math.Cosh((x-a/2)/L)
			got  = sflxes[0].AtVec(i)
		)
		assert.True(t, near(got, want, 5.e-3), "x=%v: got %v, want %v", x, got, want)
	}
}

// a vacuum-bounded square with a uniform source: no analytic reference, but
// the flux must be positive, mirror symmetric, peaked at the center and
// below the infinite-medium value
func TestVacuumSquareQualitative(t *testing.T) {
	msh := mesh.NewGenerator(mesh.GridSpec{
		Dim:               2,
		AxisLengths:       []float64{2, 2},
		NCellsCoarse:      []int{2, 2},
		GlobalRefinements: 1,
	}, 2)
	equ, sflxes := newEquation("diffusion", fe.CFEM, oneGroupLibrary(), msh, false)
	ig, mg := drivers()
	status, err := NewSourceIteration(false).SourceIterations(equ, sflxes, ig, mg)
	require.NoError(t, err)
	assert.Equal(t, Converged, status)

	// CFEM dofs are vertex-lexicographic on the 5x5 vertex grid
	nv := 5
	at := func(i, j int) float64 { return sflxes[0].AtVec(j*nv + i) }
	center := at(2, 2)
	for j := 0; j < nv; j++ {
		for i := 0; i < nv; i++ {
			v := at(i, j)
			assert.True(t, v > 0, "vertex (%d,%d) not positive: %v", i, j, v)
			assert.True(t, v < 2.0, "vertex (%d,%d) above infinite-medium value: %v", i, j, v)
			assert.True(t, v <= center+1.e-9)
			assert.True(t, near(v, at(nv-1-i, j), 1.e-8))
			assert.True(t, near(v, at(i, nv-1-j), 1.e-8))
			assert.True(t, near(v, at(j, i), 1.e-8))
		}
	}
}
