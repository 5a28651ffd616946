package material

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func twoGroupLibrary() Library {
	return Library{
		NGroup: 2,
		Materials: []Spec{
			{
				Name:    "fuel",
				Fissile: true,
				SigmaT:  []float64{0.2, 1.0},
				SigmaS: [][]float64{
					{0.1, 0.08},
					{0.0, 0.3},
				},
				NuSigF: []float64{0.005, 0.6},
			},
			{
				Name:   "water",
				SigmaT: []float64{0.25, 1.2},
				SigmaS: [][]float64{
					{0.2, 0.05},
					{0.0, 1.1},
				},
				Q: []float64{1.0, 0.0},
			},
		},
	}
}

func TestProperties(t *testing.T) {
	mat, err := NewProperties(twoGroupLibrary(), 2)
	require.NoError(t, err)
	assert.Equal(t, 2, mat.NGroup)
	assert.Equal(t, 2, mat.NMaterial)

	assert.True(t, near(mat.SigmaT(0, 1), 1.0))
	assert.True(t, near(mat.InvSigmaT(0, 0), 5.0))
	assert.True(t, near(mat.SigmaS(0, 0, 1), 0.08))
	assert.True(t, near(mat.SigmaSPerSter(0, 0, 1), 0.04))

	// default chi puts all fission neutrons in the fast group
	transfer := mat.ChiNuSigFTransfer(0)
	assert.True(t, near(transfer[1][0], 0.6))
	assert.True(t, near(transfer[1][1], 0.0))
	assert.True(t, near(mat.ChiNuSigFPerSterTransfer(0)[1][0], 0.3))

	// non-fissile material carries a zero transfer matrix
	for gin := 0; gin < 2; gin++ {
		for g := 0; g < 2; g++ {
			assert.True(t, near(mat.ChiNuSigFTransfer(1)[gin][g], 0))
		}
	}
	assert.True(t, mat.IsFissile(0))
	assert.False(t, mat.IsFissile(1))
	assert.True(t, mat.FissileIDMap()[0])

	assert.True(t, near(mat.Q(1, 0), 1.0))
	assert.True(t, near(mat.QPerSter(1, 0), 0.5))
}

func TestPropertiesValidation(t *testing.T) {
	lib := twoGroupLibrary()
	lib.Materials[0].SigmaT = []float64{0.2}
	_, err := NewProperties(lib, 2)
	assert.Error(t, err)

	lib = twoGroupLibrary()
	lib.Materials[0].NuSigF = nil
	_, err = NewProperties(lib, 2)
	assert.Error(t, err) // fissile with no production

	lib = twoGroupLibrary()
	lib.Materials[1].SigmaT[0] = 0
	_, err = NewProperties(lib, 2)
	assert.Error(t, err)
}

func TestLibraryParse(t *testing.T) {
	data := []byte(`
NGroup: 1
Materials:
  - Name: absorber
    SigmaT: [1.0]
    SigmaS: [[0.2]]
    Q: [3.0]
`)
	var lib Library
	require.NoError(t, lib.Parse(data))
	mat, err := NewProperties(lib, 4*math.Pi)
	require.NoError(t, err)
	assert.True(t, near(mat.SigmaT(0, 0), 1.0))
	assert.True(t, near(mat.QPerSter(0, 0), 3.0/(4*math.Pi)))
}

func near(a, b float64) (l bool) {
	if math.Abs(a-b) < 1.e-08*math.Abs(a) || math.Abs(a-b) < 1.e-10 {
		l = true
	}
	return
}
