package fe

import (
	"gonum.org/v1/gonum/integrate/quad"

	"github.com/AlexanderBlank/BART/mesh"
	"github.com/AlexanderBlank/BART/utils"
)

// gaussRule returns the n-point Gauss-Legendre rule on [-1,1].
func gaussRule(n int) (x, w []float64) {
	x, w = make([]float64, n), make([]float64, n)
	quad.Legendre{}.FixedLocations(x, w, -1, 1)
	return
}

// Values evaluates shape functions, gradients and Jacobian-weighted
// quadrature weights on cells. Reference-element data is computed once at
// construction; Reinit rescales to the current cell.
type Values struct {
	sp *Space
	NQ int

	phi     [][]float64    // [q][l] shape values
	gradRef [][][3]float64 // [q][l][d] reference gradients
	qpRef   [][3]float64   // [q][d] reference coordinates
	wRaw    []float64      // tensor-product quadrature weights

	cell     mesh.Cell
	jxwCell  []float64
	gradScal [3]float64
}

func (sp *Space) NewValues() (fv *Values) {
	var (
		dim  = sp.Msh.Dim
		x, w = gaussRule(sp.NQ1D)
		nq   = 1
	)
	for d := 0; d < dim; d++ {
		nq *= sp.NQ1D
	}
	fv = &Values{
		sp:      sp,
		NQ:      nq,
		phi:     make([][]float64, nq),
		gradRef: make([][][3]float64, nq),
		qpRef:   make([][3]float64, nq),
		wRaw:    make([]float64, nq),
		jxwCell: make([]float64, nq),
		cell:    mesh.Cell{ID: -1},
	}
	for q := 0; q < nq; q++ {
		var (
			xi   [3]float64
			wq   = 1.0
			rest = q
		)
		for d := 0; d < dim; d++ {
			xi[d] = x[rest%sp.NQ1D]
			wq *= w[rest%sp.NQ1D]
			rest /= sp.NQ1D
		}
		fv.qpRef[q] = xi
		fv.wRaw[q] = wq
		fv.phi[q] = make([]float64, sp.DofsPerCell)
		fv.gradRef[q] = make([][3]float64, sp.DofsPerCell)
		for l := 0; l < sp.DofsPerCell; l++ {
			fv.phi[q][l] = shapeValue(dim, l, xi)
			fv.gradRef[q][l] = shapeGradRef(dim, l, xi)
		}
	}
	return
}

func shapeValue(dim, l int, xi [3]float64) (val float64) {
	val = 1
	for d := 0; d < dim; d++ {
		val *= (1 + float64(localBit(l, d))*xi[d]) / 2
	}
	return
}

func shapeGradRef(dim, l int, xi [3]float64) (grad [3]float64) {
	for d := 0; d < dim; d++ {
		g := float64(localBit(l, d)) / 2
		for dd := 0; dd < dim; dd++ {
			if dd != d {
				g *= (1 + float64(localBit(l, dd))*xi[dd]) / 2
			}
		}
		grad[d] = g
	}
	return
}

// Reinit points the evaluator at a cell. The mapping is affine with a
// diagonal Jacobian, so only scale factors change.
func (fv *Values) Reinit(c mesh.Cell) {
	var (
		dim = fv.sp.Msh.Dim
		jac = 1.0
	)
	for d := 0; d < dim; d++ {
		h := c.Size(d)
		jac *= h / 2
		fv.gradScal[d] = 2 / h
	}
	for q := range fv.jxwCell {
		fv.jxwCell[q] = fv.wRaw[q] * jac
	}
	fv.cell = c
}

func (fv *Values) ShapeValue(l, q int) float64 { return fv.phi[q][l] }

func (fv *Values) ShapeGrad(l, q int) (grad [3]float64) {
	for d := 0; d < fv.sp.Msh.Dim; d++ {
		grad[d] = fv.gradRef[q][l][d] * fv.gradScal[d]
	}
	return
}

func (fv *Values) JxW(q int) float64 { return fv.jxwCell[q] }

// QPoint returns the real-space coordinates of quadrature point q on the
// current cell.
func (fv *Values) QPoint(q int) (pt [3]float64) {
	for d := 0; d < fv.sp.Msh.Dim; d++ {
		pt[d] = fv.cell.Lo[d] + (fv.qpRef[q][d]+1)/2*fv.cell.Size(d)
	}
	return
}

// FunctionValues evaluates a finite element function (given by its global
// vector and the cell dof indices) at every quadrature point.
func (fv *Values) FunctionValues(u utils.Vector, dofs utils.Index, out []float64) {
	for q := 0; q < fv.NQ; q++ {
		var val float64
		for l, dof := range dofs {
			val += u.AtVec(dof) * fv.phi[q][l]
		}
		out[q] = val
	}
}
