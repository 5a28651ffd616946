package equation

import (
	"math"

	"github.com/AlexanderBlank/BART/fe"
	"github.com/AlexanderBlank/BART/mesh"
	"github.com/AlexanderBlank/BART/utils"
)

func init() {
	allocators["ep"] = func(equ *Equation) Model { return &EvenParity{equ: equ} }
}

// EvenParity implements the even-parity form of the transport equation:
// per direction Omega, -Omega.grad(1/sigma_t Omega.grad psi) + sigma_t psi
// equals the angular source. Vacuum boundaries contribute |Omega.n| psi v;
// reflective boundaries are natural for this form and contribute nothing.
type EvenParity struct {
	NoOpIntegrators
	equ *Equation
}

func (ep *EvenParity) Name() string { return "ep" }

func (ep *EvenParity) PreAssembleCellMatrices(fv *fe.Values,
	streamingAtQP [][]utils.Matrix, collisionAtQP []utils.Matrix) {
	var (
		equ = ep.equ
		dpc = equ.Sp.DofsPerCell
	)
	for q := 0; q < fv.NQ; q++ {
		for dir := 0; dir < equ.NDir; dir++ {
			omega := equ.AQ.OmegaI[dir]
			for i := 0; i < dpc; i++ {
				di := omegaDotGrad(omega, fv.ShapeGrad(i, q))
				for j := 0; j < dpc; j++ {
					dj := omegaDotGrad(omega, fv.ShapeGrad(j, q))
					streamingAtQP[q][dir].Set(i, j, di*dj)
				}
			}
		}
		for i := 0; i < dpc; i++ {
			for j := 0; j < dpc; j++ {
				collisionAtQP[q].Set(i, j, fv.ShapeValue(i, q)*fv.ShapeValue(j, q))
			}
		}
	}
}

func (ep *EvenParity) IntegrateCellBilinearForm(fv *fe.Values, cell mesh.Cell,
	cellMat utils.Matrix, streamingAtQP [][]utils.Matrix, collisionAtQP []utils.Matrix, g, dir int) {
	var (
		equ = ep.equ
		m   = cell.MaterialID
		dpc = equ.Sp.DofsPerCell
	)
	for q := 0; q < fv.NQ; q++ {
		fs := equ.Mats.InvSigmaT(m, g) * fv.JxW(q)
		fc := equ.Mats.SigmaT(m, g) * fv.JxW(q)
		for i := 0; i < dpc; i++ {
			for j := 0; j < dpc; j++ {
				cellMat.AddAt(i, j,
					streamingAtQP[q][dir].At(i, j)*fs+collisionAtQP[q].At(i, j)*fc)
			}
		}
	}
}

func (ep *EvenParity) IntegrateBoundaryBilinearForm(fvf *fe.FaceValues, cell mesh.Cell,
	fn int, cellMat utils.Matrix, g, dir int) {
	var (
		equ = ep.equ
		bd  = equ.Msh.BoundaryID(fn)
	)
	if equ.Msh.ReflectiveBCMap()[bd] {
		// reflective boundaries are natural in even parity
		return
	}
	var (
		absNdo = math.Abs(omegaDotGrad(equ.AQ.OmegaI[dir], fvf.Normal()))
		dpc    = equ.Sp.DofsPerCell
	)
	for q := 0; q < fvf.NQF; q++ {
		for i := 0; i < dpc; i++ {
			for j := 0; j < dpc; j++ {
				cellMat.AddAt(i, j,
					absNdo*fvf.ShapeValue(i, q)*fvf.ShapeValue(j, q)*fvf.JxW(q))
			}
		}
	}
}

// IntegrateInterfaceBilinearForm adds the symmetric interior penalty
// coupling for the directional diffusion operator in 1/sigma_t. The sign
// convention takes n as the outward normal of the current cell.
func (ep *EvenParity) IntegrateInterfaceBilinearForm(fvf, fvfNei *fe.FaceValues,
	cell, neigh mesh.Cell, fn int, viUi, viUe, veUi, veUe utils.Matrix, g, dir int) {
	var (
		equ     = ep.equ
		dpc     = equ.Sp.DofsPerCell
		omega   = equ.AQ.OmegaI[dir]
		axis, _ = mesh.FaceAxis(fn)
		kappaI  = equ.Mats.InvSigmaT(cell.MaterialID, g)
		kappaE  = equ.Mats.InvSigmaT(neigh.MaterialID, g)
		pen     = 2 * (kappaI/cell.Size(axis) + kappaE/neigh.Size(axis))
		nd      = omegaDotGrad(omega, fvf.Normal())
	)
	for q := 0; q < fvf.NQF; q++ {
		jxw := fvf.JxW(q)
		for i := 0; i < dpc; i++ {
			var (
				vi  = fvf.ShapeValue(i, q)
				ve  = fvfNei.ShapeValue(i, q)
				dvi = omegaDotGrad(omega, fvf.ShapeGrad(i, q))
				dve = omegaDotGrad(omega, fvfNei.ShapeGrad(i, q))
			)
			for j := 0; j < dpc; j++ {
				var (
					ui  = fvf.ShapeValue(j, q)
					ue  = fvfNei.ShapeValue(j, q)
					dui = omegaDotGrad(omega, fvf.ShapeGrad(j, q))
					due = omegaDotGrad(omega, fvfNei.ShapeGrad(j, q))
				)
				viUi.AddAt(i, j, jxw*(pen*ui*vi-0.5*kappaI*nd*(dui*vi+dvi*ui)))
				viUe.AddAt(i, j, jxw*(-pen*ue*vi-0.5*kappaE*nd*due*vi+0.5*kappaI*nd*dvi*ue))
				veUi.AddAt(i, j, jxw*(-pen*ui*ve+0.5*kappaI*nd*dui*ve-0.5*kappaE*nd*dve*ui))
				veUe.AddAt(i, j, jxw*(pen*ue*ve+0.5*kappaE*nd*(due*ve+dve*ue)))
			}
		}
	}
}

func (ep *EvenParity) IntegrateScatteringLinearForm(fv *fe.Values, cell mesh.Cell,
	cellRHS utils.Vector, sflxes []utils.Vector, g, dir int) {
	var (
		equ  = ep.equ
		m    = cell.MaterialID
		dpc  = equ.Sp.DofsPerCell
		dofs = utils.NewIndex(dpc)
		phi  = make([]float64, fv.NQ)
	)
	equ.Sp.CellDofs(cell, dofs)
	scat := make([]float64, fv.NQ)
	for gin := 0; gin < equ.NGroup; gin++ {
		sigs := equ.Mats.SigmaSPerSter(m, gin, g)
		if sigs == 0 {
			continue
		}
		fv.FunctionValues(sflxes[gin], dofs, phi)
		for q := 0; q < fv.NQ; q++ {
			scat[q] += sigs * phi[q]
		}
	}
	for q := 0; q < fv.NQ; q++ {
		for i := 0; i < dpc; i++ {
			cellRHS.AddAt(i, scat[q]*fv.ShapeValue(i, q)*fv.JxW(q))
		}
	}
}

func (ep *EvenParity) IntegrateCellFixedLinearForm(fv *fe.Values, cell mesh.Cell,
	cellRHS utils.Vector, sflxPrev []utils.Vector, g, dir int) {
	var (
		equ = ep.equ
		m   = cell.MaterialID
		dpc = equ.Sp.DofsPerCell
		src = make([]float64, fv.NQ)
	)
	if equ.IsEigenProblem {
		var (
			dofs = utils.NewIndex(dpc)
			phi  = make([]float64, fv.NQ)
		)
		equ.Sp.CellDofs(cell, dofs)
		for gin := 0; gin < equ.NGroup; gin++ {
			fiss := equ.ScaledFissTransferPerSter[m][gin][g]
			if fiss == 0 {
				continue
			}
			fv.FunctionValues(sflxPrev[gin], dofs, phi)
			for q := 0; q < fv.NQ; q++ {
				src[q] += fiss * phi[q]
			}
		}
	} else {
		for q := 0; q < fv.NQ; q++ {
			src[q] = equ.Mats.QPerSter(m, g)
		}
	}
	for q := 0; q < fv.NQ; q++ {
		for i := 0; i < dpc; i++ {
			cellRHS.AddAt(i, src[q]*fv.ShapeValue(i, q)*fv.JxW(q))
		}
	}
}

func omegaDotGrad(omega, grad [3]float64) (d float64) {
	return omega[0]*grad[0] + omega[1]*grad[1] + omega[2]*grad[2]
}
