package aqdata

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/integrate/quad"

	"github.com/AlexanderBlank/BART/mesh"
)

// CompIndexMap is the bijection between the flattened component index k and
// the (direction, group) pair it represents. Built once during setup, never
// mutated afterwards. Ordering is group-major: k = g*NDir + dir.
type CompIndexMap struct {
	NDir, NGroup int
	index        map[[2]int]int
	inverse      [][2]int
}

func NewCompIndexMap(nDir, nGroup int) (cm *CompIndexMap) {
	cm = &CompIndexMap{
		NDir:    nDir,
		NGroup:  nGroup,
		index:   make(map[[2]int]int),
		inverse: make([][2]int, 0, nDir*nGroup),
	}
	var k int
	for g := 0; g < nGroup; g++ {
		for dir := 0; dir < nDir; dir++ {
			cm.index[[2]int{dir, g}] = k
			cm.inverse = append(cm.inverse, [2]int{dir, g})
			k++
		}
	}
	return
}

func (cm *CompIndexMap) NTotalVars() int { return cm.NDir * cm.NGroup }

func (cm *CompIndexMap) ComponentIndex(dir, g int) int {
	k, ok := cm.index[[2]int{dir, g}]
	if !ok {
		panic(fmt.Errorf("no component for direction %d, group %d", dir, g))
	}
	return k
}

func (cm *CompIndexMap) CompDirection(k int) int { return cm.inverse[k][0] }
func (cm *CompIndexMap) CompGroup(k int) int     { return cm.inverse[k][1] }

// AngularQuadrature produces the discrete directions and weights for the SN
// high-order system. In slab geometry (dim 1) the directions are
// Gauss-Legendre points in mu with weights summing to 2; in multi-D a
// product of Gauss-Legendre polar cosines and uniform azimuthal angles with
// weights summing to 4*pi.
type AngularQuadrature struct {
	*CompIndexMap

	Dim, SNOrder int
	NDir         int
	Wi           []float64
	OmegaI       [][3]float64

	// AngularNorm is the total angular measure: sum of the weights.
	AngularNorm float64

	haveReflective bool
	reflDirIndex   map[[2]int]int // (boundary id, incident dir) -> reflected dir
}

func NewAngularQuadrature(dim, snOrder, nGroup int, reflectiveBC map[int]bool) (aq *AngularQuadrature) {
	if snOrder < 1 {
		panic(fmt.Errorf("angular quadrature order must be positive, got %d", snOrder))
	}
	aq = &AngularQuadrature{
		Dim:     dim,
		SNOrder: snOrder,
	}
	switch dim {
	case 1:
		aq.produceSlabQuad()
	case 2, 3:
		aq.produceProductQuad()
	default:
		panic(fmt.Errorf("unsupported dimension for angular quadrature: %d", dim))
	}
	for _, w := range aq.Wi {
		aq.AngularNorm += w
	}
	aq.CompIndexMap = NewCompIndexMap(aq.NDir, nGroup)
	for _, refl := range reflectiveBC {
		if refl {
			aq.haveReflective = true
		}
	}
	if aq.haveReflective {
		aq.initializeReflectiveIndex(reflectiveBC)
	}
	return
}

func (aq *AngularQuadrature) produceSlabQuad() {
	var (
		n    = aq.SNOrder
		x, w = make([]float64, n), make([]float64, n)
	)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	aq.NDir = n
	aq.Wi = w
	aq.OmegaI = make([][3]float64, n)
	for i := range x {
		aq.OmegaI[i] = [3]float64{x[i], 0, 0}
	}
}

func (aq *AngularQuadrature) produceProductQuad() {
	var (
		nPolar = aq.SNOrder
		nAzi   = 2 * aq.SNOrder
		mu, wp = make([]float64, nPolar), make([]float64, nPolar)
	)
	quad.Legendre{}.FixedLocations(mu, wp, -1, 1)
	aq.NDir = nPolar * nAzi
	aq.Wi = make([]float64, 0, aq.NDir)
	aq.OmegaI = make([][3]float64, 0, aq.NDir)
	for p := 0; p < nPolar; p++ {
		sinTheta := math.Sqrt(1 - mu[p]*mu[p])
		for a := 0; a < nAzi; a++ {
			phi := math.Pi * float64(2*a+1) / float64(nAzi)
			aq.Wi = append(aq.Wi, wp[p]*2*math.Pi/float64(nAzi))
			aq.OmegaI = append(aq.OmegaI,
				[3]float64{sinTheta * math.Cos(phi), sinTheta * math.Sin(phi), mu[p]})
		}
	}
}

// initializeReflectiveIndex builds the (boundary, incident)->reflected map
// by specular reflection: the direction component normal to the boundary is
// negated and matched against the quadrature set.
func (aq *AngularQuadrature) initializeReflectiveIndex(reflectiveBC map[int]bool) {
	aq.reflDirIndex = make(map[[2]int]int)
	for bd, refl := range reflectiveBC {
		if !refl {
			continue
		}
		axis, _ := mesh.FaceAxis(bd)
		for dir := 0; dir < aq.NDir; dir++ {
			mirror := aq.OmegaI[dir]
			mirror[axis] = -mirror[axis]
			aq.reflDirIndex[[2]int{bd, dir}] = aq.matchDirection(mirror)
		}
	}
}

func (aq *AngularQuadrature) matchDirection(omega [3]float64) int {
	for j, cand := range aq.OmegaI {
		var dist float64
		for d := 0; d < 3; d++ {
			dist += (cand[d] - omega[d]) * (cand[d] - omega[d])
		}
		if dist < 1.e-12 {
			return j
		}
	}
	panic(fmt.Errorf("quadrature set is not closed under reflection: no match for %v", omega))
}

// ReflectiveDirectionIndex returns the reflected direction for an incident
// direction at a reflective boundary. The boundary must be reflective.
func (aq *AngularQuadrature) ReflectiveDirectionIndex(boundaryID, incidentDir int) int {
	j, ok := aq.reflDirIndex[[2]int{boundaryID, incidentDir}]
	if !ok {
		panic(fmt.Errorf("must be reflective boundary to retrieve the reflected direction: boundary %d", boundaryID))
	}
	return j
}

// NTotalHOVars is the component count of the high-order system.
func (aq *AngularQuadrature) NTotalHOVars() int { return aq.NTotalVars() }
