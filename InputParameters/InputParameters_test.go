package InputParameters

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AlexanderBlank/BART/mesh"
)

func testInput() []byte {
	return []byte(`
Title: Two Group Slab
EquationName: ep
Discretization: dfem
IsEigenProblem: true
PolynomialOrder: 1
SpatialDimension: 1
AxisLengths: [10.]
NCells: [20]
GlobalRefinements: 2
SNOrder: 8
ReflectiveBoundaries: [xmin, xmax]
MaterialLibrary:
  NGroup: 2
  Materials:
    - Name: fuel
      Fissile: true
      SigmaT: [0.2, 1.0]
      SigmaS: [[0.1, 0.08], [0., 0.3]]
      NuSigF: [0.005, 0.6]
      Chi: [1., 0.]
`)
}

func TestParseAndValidate(t *testing.T) {
	var ip ProblemParameters
	require.NoError(t, ip.Parse(testInput()))
	require.NoError(t, ip.Validate())
	ip.Print()

	assert.Equal(t, "ep", ip.EquationName)
	assert.True(t, ip.IsEigenProblem)
	assert.Equal(t, 8, ip.SNOrder)
	assert.Equal(t, 2, ip.Materials.NGroup)
	assert.Equal(t, 0.08, ip.Materials.Materials[0].SigmaS[0][1])

	// unset tolerances and caps take their defaults
	assert.Equal(t, 1.e-12, ip.LinearSolveTol)
	assert.Equal(t, 200, ip.EigenMaxIter)
	assert.Equal(t, 1, ip.NPartitions)

	spec := ip.GridSpec()
	assert.Equal(t, 1, spec.Dim)
	assert.Equal(t, []int{mesh.XMin, mesh.XMax}, spec.ReflectiveBoundaries)
}

func TestValidateRejectsBadInput(t *testing.T) {
	var ip ProblemParameters
	require.NoError(t, ip.Parse(testInput()))

	ip.EquationName = "sn"
	assert.Error(t, ip.Validate())
	ip.EquationName = "diffusion"
	// dfem carried over from the parsed input
	assert.Error(t, ip.Validate())
	ip.Discretization = "cfem"
	require.NoError(t, ip.Validate())

	ip.ReflectiveBoundaries = []string{"left"}
	assert.Error(t, ip.Validate())
	ip.ReflectiveBoundaries = nil
	ip.NCells = []int{20, 20}
	assert.Error(t, ip.Validate())
}
