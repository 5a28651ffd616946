package mesh

import (
	"fmt"

	"github.com/AlexanderBlank/BART/utils"
)

// Boundary ids follow the axis naming scheme: xmin->0, xmax->1, ymin->2,
// ymax->3, zmin->4, zmax->5 where applicable.
const (
	XMin = iota
	XMax
	YMin
	YMax
	ZMin
	ZMax
)

// Cell is one hyper-rectangular mesh cell. ID is a stable globally-unique
// integer assigned lexicographically during generation; interface assembly
// uses it as the total order for the one-sided tie break.
type Cell struct {
	ID         int
	Idx        [3]int // per-axis integer coordinates on the refined grid
	MaterialID int
	Lo, Hi     [3]float64
}

// Size returns the cell extent along axis d.
func (c Cell) Size(d int) float64 { return c.Hi[d] - c.Lo[d] }

// GridSpec holds the user-side description of a generated mesh. BART only
// generates meshes - there is no read-in path.
type GridSpec struct {
	Dim                  int
	AxisLengths          []float64
	NCellsCoarse         []int
	GlobalRefinements    int
	MaterialByPosition   []int // lexicographic over coarse cells; empty means material 0 everywhere
	ReflectiveBoundaries []int // boundary ids with reflective conditions
}

// Generator produces the Cartesian mesh and owns the partitioning of cells
// across workers. It is shared read-only by every equation instance.
type Generator struct {
	Dim     int
	NCells  [3]int // refined cell counts per axis (1 on unused axes)
	NCoarse [3]int
	H       [3]float64 // refined cell size per axis
	XMax    [3]float64

	cells        []Cell
	isReflective map[int]bool
	pm           *utils.PartitionMap
}

func NewGenerator(spec GridSpec, nPartitions int) (msh *Generator) {
	if spec.Dim < 1 || spec.Dim > 3 {
		panic(fmt.Errorf("unsupported mesh dimension: %d", spec.Dim))
	}
	if len(spec.AxisLengths) != spec.Dim || len(spec.NCellsCoarse) != spec.Dim {
		panic(fmt.Errorf("grid spec needs %d axis lengths and cell counts, got %d and %d",
			spec.Dim, len(spec.AxisLengths), len(spec.NCellsCoarse)))
	}
	msh = &Generator{
		Dim:          spec.Dim,
		isReflective: make(map[int]bool),
	}
	refine := 1
	for r := 0; r < spec.GlobalRefinements; r++ {
		refine *= 2
	}
	for d := 0; d < 3; d++ {
		msh.NCells[d], msh.NCoarse[d] = 1, 1
		msh.XMax[d] = 0
	}
	for d := 0; d < spec.Dim; d++ {
		msh.NCoarse[d] = spec.NCellsCoarse[d]
		msh.NCells[d] = spec.NCellsCoarse[d] * refine
		msh.XMax[d] = spec.AxisLengths[d]
		msh.H[d] = spec.AxisLengths[d] / float64(msh.NCells[d])
	}
	for fn := 0; fn < 2*spec.Dim; fn++ {
		msh.isReflective[fn] = false
	}
	for _, bd := range spec.ReflectiveBoundaries {
		if bd < 0 || bd >= 2*spec.Dim {
			panic(fmt.Errorf("reflective boundary id %d out of range for dim %d", bd, spec.Dim))
		}
		msh.isReflective[bd] = true
	}
	msh.makeGrid(spec.MaterialByPosition)
	msh.pm = utils.NewPartitionMap(nPartitions, len(msh.cells))
	return
}

// makeGrid builds the refined cell list with lexicographic ids and assigns
// material ids from the coarse relative-position map.
func (msh *Generator) makeGrid(matByPos []int) {
	var (
		nx, ny, nz = msh.NCells[0], msh.NCells[1], msh.NCells[2]
	)
	nCoarseTotal := msh.NCoarse[0] * msh.NCoarse[1] * msh.NCoarse[2]
	if len(matByPos) != 0 && len(matByPos) != nCoarseTotal {
		panic(fmt.Errorf("material map has %d entries for %d coarse cells", len(matByPos), nCoarseTotal))
	}
	msh.cells = make([]Cell, 0, nx*ny*nz)
	for kk := 0; kk < nz; kk++ {
		for j := 0; j < ny; j++ {
			for i := 0; i < nx; i++ {
				idx := [3]int{i, j, kk}
				c := Cell{
					ID:  msh.cellID(idx),
					Idx: idx,
				}
				for d := 0; d < msh.Dim; d++ {
					c.Lo[d] = float64(idx[d]) * msh.H[d]
					c.Hi[d] = c.Lo[d] + msh.H[d]
				}
				if len(matByPos) != 0 {
					c.MaterialID = matByPos[msh.coarsePosition(idx)]
				}
				msh.cells = append(msh.cells, c)
			}
		}
	}
}

func (msh *Generator) cellID(idx [3]int) int {
	return idx[0] + msh.NCells[0]*(idx[1]+msh.NCells[1]*idx[2])
}

// coarsePosition maps a refined cell index to the lexicographic index of its
// coarse-mesh ancestor.
func (msh *Generator) coarsePosition(idx [3]int) int {
	var pos [3]int
	for d := 0; d < 3; d++ {
		pos[d] = idx[d] * msh.NCoarse[d] / msh.NCells[d]
	}
	return pos[0] + msh.NCoarse[0]*(pos[1]+msh.NCoarse[1]*pos[2])
}

func (msh *Generator) NumCells() int    { return len(msh.cells) }
func (msh *Generator) Cell(id int) Cell { return msh.cells[id] }

// NFacesPerCell is 2*dim for hyper-rectangular cells.
func (msh *Generator) NFacesPerCell() int { return 2 * msh.Dim }

// FaceAxis returns the axis a face is normal to and the outward orientation
// (-1 for the low side, +1 for the high side).
func FaceAxis(fn int) (axis, side int) {
	axis = fn / 2
	side = 2*(fn%2) - 1
	return
}

// AtBoundary reports whether face fn of the cell lies on the domain boundary.
func (msh *Generator) AtBoundary(c Cell, fn int) bool {
	axis, side := FaceAxis(fn)
	if side < 0 {
		return c.Idx[axis] == 0
	}
	return c.Idx[axis] == msh.NCells[axis]-1
}

// BoundaryID is the face number itself under the axis naming scheme.
func (msh *Generator) BoundaryID(fn int) int { return fn }

// Neighbor returns the cell across face fn. Calling it for a boundary face
// is a precondition violation.
func (msh *Generator) Neighbor(c Cell, fn int) Cell {
	if msh.AtBoundary(c, fn) {
		panic(fmt.Errorf("cell %d has no neighbor across boundary face %d", c.ID, fn))
	}
	axis, side := FaceAxis(fn)
	idx := c.Idx
	idx[axis] += side
	return msh.cells[msh.cellID(idx)]
}

// NeighborFaceNo is the face of the neighbor that coincides with face fn of
// the current cell.
func NeighborFaceNo(fn int) int {
	if fn%2 == 0 {
		return fn + 1
	}
	return fn - 1
}

// ReflectiveBCMap returns the boundary_id -> reflective flag mapping.
func (msh *Generator) ReflectiveBCMap() map[int]bool { return msh.isReflective }

// HaveReflectiveBC reports whether any boundary is reflective.
func (msh *Generator) HaveReflectiveBC() bool {
	for _, refl := range msh.isReflective {
		if refl {
			return true
		}
	}
	return false
}

func (msh *Generator) NPartitions() int { return msh.pm.ParallelDegree }

// RelevantCells returns the cells owned by one partition together with the
// boundary-adjacency flags, rebuilt from the partition map. The returned
// slices are immutable during an assembly pass.
func (msh *Generator) RelevantCells(partition int) (cells []Cell, atBd []bool) {
	kMin, kMax := msh.pm.GetBucketRange(partition)
	cells = msh.cells[kMin:kMax]
	atBd = make([]bool, len(cells))
	for ic, c := range cells {
		for fn := 0; fn < msh.NFacesPerCell(); fn++ {
			if msh.AtBoundary(c, fn) {
				atBd[ic] = true
				break
			}
		}
	}
	return
}
