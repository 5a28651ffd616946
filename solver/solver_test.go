package solver

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexanderBlank/BART/utils"
)

// tridiagonal SPD test matrix: the 1D Laplacian plus identity
func testMatrix(n int) utils.CSR {
	A := utils.NewDOK(n, n)
	for i := 0; i < n; i++ {
		A.AddAt(i, i, 3)
		if i > 0 {
			A.AddAt(i, i-1, -1)
		}
		if i < n-1 {
			A.AddAt(i, i+1, -1)
		}
	}
	return A.ToCSR()
}

func TestCGSolve(t *testing.T) {
	var (
		n    = 50
		mats = []utils.CSR{testMatrix(n)}
		x    = []utils.Vector{utils.NewVector(n)}
		b    = []utils.Vector{utils.NewVectorConstant(n, 1)}
	)
	alg := NewPreconditionerSolver("ep", 1, 1.e-12, 1000)
	alg.InitializePreconditioners(mats)
	require.NoError(t, alg.LinearAlgebraSolve(mats, x, b, 0))

	// residual check
	r := utils.NewVector(n)
	mats[0].MulVec(r, x[0])
	for i := 0; i < n; i++ {
		assert.True(t, math.Abs(r.AtVec(i)-1) < 1.e-9)
	}
}

func TestCGZeroRHS(t *testing.T) {
	var (
		n    = 10
		mats = []utils.CSR{testMatrix(n)}
		x    = []utils.Vector{utils.NewVectorConstant(n, 5)}
		b    = []utils.Vector{utils.NewVector(n)}
	)
	alg := NewPreconditionerSolver("ep", 1, 1.e-12, 100)
	alg.InitializePreconditioners(mats)
	require.NoError(t, alg.LinearAlgebraSolve(mats, x, b, 0))
	assert.Equal(t, 0.0, x[0].Max())
	assert.Equal(t, 0.0, x[0].Min())
}

func TestCGNonConvergence(t *testing.T) {
	var (
		n    = 200
		mats = []utils.CSR{testMatrix(n)}
		x    = []utils.Vector{utils.NewVector(n)}
		b    = []utils.Vector{utils.NewVectorConstant(n, 1)}
	)
	// one iteration cannot converge a 200-dof system
	alg := NewPreconditionerSolver("ep", 1, 1.e-14, 1)
	alg.InitializePreconditioners(mats)
	assert.Error(t, alg.LinearAlgebraSolve(mats, x, b, 0))
}
