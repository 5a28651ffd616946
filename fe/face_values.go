package fe

import (
	"github.com/AlexanderBlank/BART/mesh"
)

// FaceValues evaluates cell shape functions on one face of the cell, with
// outward normals and face Jacobian weights. Face quadrature points are
// enumerated identically from both sides of an interface (tangential axes
// in increasing order), so values from a cell and its neighbor line up
// point for point during DG interface assembly.
type FaceValues struct {
	sp  *Space
	NQF int

	// per face number: [fn][q][l]
	phi     [][][]float64
	gradRef [][][][3]float64
	wRaw    [][]float64

	cell     mesh.Cell
	fn       int
	normal   [3]float64
	jxwFace  []float64
	gradScal [3]float64
}

func (sp *Space) NewFaceValues() (fvf *FaceValues) {
	var (
		dim    = sp.Msh.Dim
		nFaces = sp.Msh.NFacesPerCell()
		x, w   = gaussRule(sp.NQ1D)
		nqf    = 1
	)
	for d := 0; d < dim-1; d++ {
		nqf *= sp.NQ1D
	}
	fvf = &FaceValues{
		sp:      sp,
		NQF:     nqf,
		phi:     make([][][]float64, nFaces),
		gradRef: make([][][][3]float64, nFaces),
		wRaw:    make([][]float64, nFaces),
		jxwFace: make([]float64, nqf),
		fn:      -1,
	}
	for fn := 0; fn < nFaces; fn++ {
		axis, side := mesh.FaceAxis(fn)
		fvf.phi[fn] = make([][]float64, nqf)
		fvf.gradRef[fn] = make([][][3]float64, nqf)
		fvf.wRaw[fn] = make([]float64, nqf)
		for q := 0; q < nqf; q++ {
			var (
				xi   [3]float64
				wq   = 1.0
				rest = q
			)
			xi[axis] = float64(side)
			for d := 0; d < dim; d++ {
				if d == axis {
					continue
				}
				xi[d] = x[rest%sp.NQ1D]
				wq *= w[rest%sp.NQ1D]
				rest /= sp.NQ1D
			}
			fvf.wRaw[fn][q] = wq
			fvf.phi[fn][q] = make([]float64, sp.DofsPerCell)
			fvf.gradRef[fn][q] = make([][3]float64, sp.DofsPerCell)
			for l := 0; l < sp.DofsPerCell; l++ {
				fvf.phi[fn][q][l] = shapeValue(dim, l, xi)
				fvf.gradRef[fn][q][l] = shapeGradRef(dim, l, xi)
			}
		}
	}
	return
}

// Reinit points the evaluator at face fn of a cell.
func (fvf *FaceValues) Reinit(c mesh.Cell, fn int) {
	var (
		dim        = fvf.sp.Msh.Dim
		axis, side = mesh.FaceAxis(fn)
		jac        = 1.0
	)
	for d := 0; d < dim; d++ {
		fvf.gradScal[d] = 2 / c.Size(d)
		if d != axis {
			jac *= c.Size(d) / 2
		}
	}
	fvf.normal = [3]float64{}
	fvf.normal[axis] = float64(side)
	for q := 0; q < fvf.NQF; q++ {
		fvf.jxwFace[q] = fvf.wRaw[fn][q] * jac
	}
	fvf.cell, fvf.fn = c, fn
}

func (fvf *FaceValues) ShapeValue(l, q int) float64 { return fvf.phi[fvf.fn][q][l] }

func (fvf *FaceValues) ShapeGrad(l, q int) (grad [3]float64) {
	for d := 0; d < fvf.sp.Msh.Dim; d++ {
		grad[d] = fvf.gradRef[fvf.fn][q][l][d] * fvf.gradScal[d]
	}
	return
}

func (fvf *FaceValues) JxW(q int) float64      { return fvf.jxwFace[q] }
func (fvf *FaceValues) Normal() [3]float64     { return fvf.normal }
