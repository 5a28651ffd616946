package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerator2D(t *testing.T) {
	spec := GridSpec{
		Dim:                  2,
		AxisLengths:          []float64{4, 4},
		NCellsCoarse:         []int{2, 2},
		GlobalRefinements:    1,
		MaterialByPosition:   []int{0, 1, 1, 0},
		ReflectiveBoundaries: []int{XMin},
	}
	msh := NewGenerator(spec, 2)
	assert.Equal(t, 16, msh.NumCells())
	assert.Equal(t, 4, msh.NFacesPerCell())

	// lexicographic stable ids
	for id := 0; id < msh.NumCells(); id++ {
		assert.Equal(t, id, msh.Cell(id).ID)
	}

	// refinement keeps the coarse material layout: cell (3,0) descends from
	// coarse cell (1,0) which carries material 1
	c := msh.Cell(3)
	assert.Equal(t, [3]int{3, 0, 0}, c.Idx)
	assert.Equal(t, 1, c.MaterialID)
	assert.Equal(t, 0, msh.Cell(0).MaterialID)

	// boundary and neighbor topology
	assert.True(t, msh.AtBoundary(msh.Cell(0), XMin))
	assert.True(t, msh.AtBoundary(msh.Cell(0), YMin))
	assert.False(t, msh.AtBoundary(msh.Cell(0), XMax))
	nb := msh.Neighbor(msh.Cell(0), XMax)
	assert.Equal(t, 1, nb.ID)
	assert.Equal(t, XMin, NeighborFaceNo(XMax))
	assert.Panics(t, func() { msh.Neighbor(msh.Cell(0), XMin) })

	// reflective map
	refl := msh.ReflectiveBCMap()
	assert.True(t, refl[XMin])
	assert.False(t, refl[XMax])
	assert.True(t, msh.HaveReflectiveBC())

	// every cell appears in exactly one partition
	seen := make(map[int]int)
	for n := 0; n < msh.NPartitions(); n++ {
		cells, atBd := msh.RelevantCells(n)
		assert.Equal(t, len(cells), len(atBd))
		for _, c := range cells {
			seen[c.ID]++
		}
	}
	assert.Equal(t, msh.NumCells(), len(seen))
	for _, count := range seen {
		assert.Equal(t, 1, count)
	}
}

func TestGenerator1D(t *testing.T) {
	msh := NewGenerator(GridSpec{
		Dim:          1,
		AxisLengths:  []float64{10},
		NCellsCoarse: []int{5},
	}, 1)
	assert.Equal(t, 5, msh.NumCells())
	assert.Equal(t, 2, msh.NFacesPerCell())
	assert.True(t, msh.AtBoundary(msh.Cell(4), XMax))
	assert.False(t, msh.HaveReflectiveBC())
	cells, atBd := msh.RelevantCells(0)
	assert.Equal(t, 5, len(cells))
	assert.True(t, atBd[0])
	assert.False(t, atBd[2])
	assert.True(t, atBd[4])
}
