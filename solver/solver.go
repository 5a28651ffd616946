package solver

import (
	"fmt"
	"math"

	"github.com/AlexanderBlank/BART/utils"
)

// PreconditionerSolver performs the per-component linear solves of the
// transport system. The assembled matrices are symmetric positive definite
// for both the even-parity and diffusion weak forms, so a Jacobi
// preconditioned conjugate gradient iteration is used throughout.
type PreconditionerSolver struct {
	EquName string
	Tol     float64
	MaxIter int

	invDiag []utils.Vector // per-component inverse matrix diagonal
}

func NewPreconditionerSolver(equName string, nTotalVars int, tol float64, maxIter int) (alg *PreconditionerSolver) {
	alg = &PreconditionerSolver{
		EquName: equName,
		Tol:     tol,
		MaxIter: maxIter,
		invDiag: make([]utils.Vector, nTotalVars),
	}
	return
}

// InitializePreconditioners builds the Jacobi preconditioner for every
// component matrix. Called once after the bilinear forms are assembled.
func (alg *PreconditionerSolver) InitializePreconditioners(mats []utils.CSR) {
	if len(mats) != len(alg.invDiag) {
		panic(fmt.Errorf("preconditioner count %d does not match component count %d", len(alg.invDiag), len(mats)))
	}
	for i, A := range mats {
		d := A.Diagonal()
		for j, val := range d.DataP() {
			if val == 0 {
				panic(fmt.Errorf("%s component %d: zero diagonal at dof %d", alg.EquName, i, j))
			}
			d.DataP()[j] = 1 / val
		}
		alg.invDiag[i] = d
	}
}

// LinearAlgebraSolve solves mats[i]*fluxes[i] = rhses[i] in place, starting
// from the current flux iterate. A non-converged solve is reported as an
// error, not a crash - the iteration drivers decide what to do with it.
func (alg *PreconditionerSolver) LinearAlgebraSolve(mats []utils.CSR, fluxes, rhses []utils.Vector, i int) error {
	var (
		A    = mats[i]
		x    = fluxes[i]
		b    = rhses[i]
		n    = x.Len()
		r    = utils.NewVector(n)
		z    = utils.NewVector(n)
		p    = utils.NewVector(n)
		ap   = utils.NewVector(n)
		invD = alg.invDiag[i]
	)
	bNorm := b.Norm2()
	if bNorm == 0 {
		x.SetConstant(0)
		return nil
	}
	// r = b - A x
	A.MulVec(r, x)
	r.Scale(-1).AddScaled(1, b)
	applyJacobi(z, invD, r)
	p.CopyFrom(z)
	rz := r.Dot(z)
	for iter := 0; iter < alg.MaxIter; iter++ {
		if r.Norm2() <= alg.Tol*bNorm {
			return nil
		}
		A.MulVec(ap, p)
		alpha := rz / p.Dot(ap)
		x.AddScaled(alpha, p)
		r.AddScaled(-alpha, ap)
		applyJacobi(z, invD, r)
		rzNew := r.Dot(z)
		p.Scale(rzNew / rz).AddScaled(1, z)
		rz = rzNew
	}
	if r.Norm2() <= alg.Tol*bNorm {
		return nil
	}
	return fmt.Errorf("%s component %d: cg failed to converge in %d iterations, residual %v",
		alg.EquName, i, alg.MaxIter, r.Norm2()/bNorm)
}

func applyJacobi(z, invD, r utils.Vector) {
	var (
		zd, dd, rd = z.DataP(), invD.DataP(), r.DataP()
	)
	for j := range zd {
		zd[j] = dd[j] * rd[j]
	}
	if math.IsNaN(zd[0]) {
		panic("preconditioner produced NaN - matrix diagonal was not initialized")
	}
}
