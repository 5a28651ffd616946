package fe

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AlexanderBlank/BART/mesh"
	"github.com/AlexanderBlank/BART/utils"
)

func TestCellValues(t *testing.T) {
	msh := mesh.NewGenerator(mesh.GridSpec{
		Dim:          2,
		AxisLengths:  []float64{2, 3},
		NCellsCoarse: []int{2, 3},
	}, 1)
	sp := NewSpace(msh, CFEM, 2)
	assert.Equal(t, 4, sp.DofsPerCell)
	assert.Equal(t, 3*4, sp.NDofs)

	fv := sp.NewValues()
	fv.Reinit(msh.Cell(0))

	// partition of unity and zero gradient sum at every quadrature point
	for q := 0; q < fv.NQ; q++ {
		var sum float64
		var gsum [3]float64
		for l := 0; l < sp.DofsPerCell; l++ {
			sum += fv.ShapeValue(l, q)
			g := fv.ShapeGrad(l, q)
			for d := 0; d < 2; d++ {
				gsum[d] += g[d]
			}
		}
		assert.True(t, near(sum, 1))
		assert.True(t, near(gsum[0], 0))
		assert.True(t, near(gsum[1], 0))
	}

	// quadrature weights integrate the cell volume exactly
	var vol float64
	for q := 0; q < fv.NQ; q++ {
		vol += fv.JxW(q)
	}
	assert.True(t, near(vol, 1.0*1.0)) // h = (1, 1)

	// a linear function is reproduced exactly by Q1 interpolation
	u := utils.NewVector(sp.NDofs)
	dofs := utils.NewIndex(sp.DofsPerCell)
	for id := 0; id < msh.NumCells(); id++ {
		c := msh.Cell(id)
		sp.CellDofs(c, dofs)
		for l := 0; l < sp.DofsPerCell; l++ {
			x := c.Lo[0] + float64(l>>0&1)*c.Size(0)
			y := c.Lo[1] + float64(l>>1&1)*c.Size(1)
			u.Set(dofs[l], 2*x+3*y)
		}
	}
	fv.Reinit(msh.Cell(3))
	sp.CellDofs(msh.Cell(3), dofs)
	vals := make([]float64, fv.NQ)
	fv.FunctionValues(u, dofs, vals)
	for q := 0; q < fv.NQ; q++ {
		pt := fv.QPoint(q)
		assert.True(t, near(vals[q], 2*pt[0]+3*pt[1]))
	}
}

func TestFaceValues(t *testing.T) {
	msh := mesh.NewGenerator(mesh.GridSpec{
		Dim:          2,
		AxisLengths:  []float64{2, 2},
		NCellsCoarse: []int{2, 2},
	}, 1)
	sp := NewSpace(msh, DFEM, 2)
	fvf := sp.NewFaceValues()

	c := msh.Cell(0)
	fvf.Reinit(c, mesh.XMax)
	assert.Equal(t, [3]float64{1, 0, 0}, fvf.Normal())

	// face weights integrate the face measure
	var area float64
	for q := 0; q < fvf.NQF; q++ {
		area += fvf.JxW(q)
	}
	assert.True(t, near(area, 1)) // h_y = 1

	// shared-face quadrature alignment with the neighbor
	nb := msh.Neighbor(c, mesh.XMax)
	fvfNb := sp.NewFaceValues()
	fvfNb.Reinit(nb, mesh.NeighborFaceNo(mesh.XMax))
	assert.Equal(t, [3]float64{-1, 0, 0}, fvfNb.Normal())
	// the trace of the shared vertex dofs matches point for point
	for q := 0; q < fvf.NQF; q++ {
		var trL, trR float64
		for l := 0; l < sp.DofsPerCell; l++ {
			trL += fvf.ShapeValue(l, q)
			trR += fvfNb.ShapeValue(l, q)
		}
		assert.True(t, near(trL, 1))
		assert.True(t, near(trR, 1))
	}
}

func TestDofNumbering(t *testing.T) {
	msh := mesh.NewGenerator(mesh.GridSpec{
		Dim:          1,
		AxisLengths:  []float64{1},
		NCellsCoarse: []int{4},
	}, 1)

	cfem := NewSpace(msh, CFEM, 2)
	assert.Equal(t, 5, cfem.NDofs)
	d0, d1 := utils.NewIndex(2), utils.NewIndex(2)
	cfem.CellDofs(msh.Cell(0), d0)
	cfem.CellDofs(msh.Cell(1), d1)
	assert.Equal(t, d0[1], d1[0]) // shared vertex

	dfem := NewSpace(msh, DFEM, 2)
	assert.Equal(t, 8, dfem.NDofs)
	dfem.CellDofs(msh.Cell(0), d0)
	dfem.CellDofs(msh.Cell(1), d1)
	assert.NotEqual(t, d0[1], d1[0]) // duplicated interface dofs

	assert.Panics(t, func() { NewSpace(msh, Discretization("rtk"), 2) })
}

func near(a, b float64) (l bool) {
	if math.Abs(a-b) < 1.e-08*math.Abs(a) || math.Abs(a-b) < 1.e-10 {
		l = true
	}
	return
}
