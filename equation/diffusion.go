package equation

import (
	"github.com/AlexanderBlank/BART/fe"
	"github.com/AlexanderBlank/BART/mesh"
	"github.com/AlexanderBlank/BART/utils"
)

func init() {
	alloc := func(equ *Equation) Model { return &Diffusion{equ: equ} }
	allocators["diffusion"] = alloc
	// the NDA low-order system shares the diffusion weak form; its drift
	// closure is applied separately through AssembleClosureBilinearForm
	allocators["nda"] = alloc
}

// Diffusion is the one-component-per-group low-order model:
// -div(D grad phi) + (sigma_t - sigma_s,g->g) phi = S, with D = 1/(3 sigma_t).
// Vacuum boundaries carry the Marshak condition phi v / 2; reflective
// boundaries are natural.
type Diffusion struct {
	NoOpIntegrators
	equ *Equation
}

func (df *Diffusion) Name() string { return df.equ.EquName }

func (df *Diffusion) PreAssembleCellMatrices(fv *fe.Values,
	streamingAtQP [][]utils.Matrix, collisionAtQP []utils.Matrix) {
	dpc := df.equ.Sp.DofsPerCell
	for q := 0; q < fv.NQ; q++ {
		for i := 0; i < dpc; i++ {
			gi := fv.ShapeGrad(i, q)
			for j := 0; j < dpc; j++ {
				gj := fv.ShapeGrad(j, q)
				streamingAtQP[q][0].Set(i, j, gi[0]*gj[0]+gi[1]*gj[1]+gi[2]*gj[2])
				collisionAtQP[q].Set(i, j, fv.ShapeValue(i, q)*fv.ShapeValue(j, q))
			}
		}
	}
}

func (df *Diffusion) IntegrateCellBilinearForm(fv *fe.Values, cell mesh.Cell,
	cellMat utils.Matrix, streamingAtQP [][]utils.Matrix, collisionAtQP []utils.Matrix, g, dir int) {
	var (
		equ     = df.equ
		m       = cell.MaterialID
		dpc     = equ.Sp.DofsPerCell
		diffCoe = equ.Mats.InvSigmaT(m, g) / 3
		removal = equ.Mats.SigmaT(m, g) - equ.Mats.SigmaS(m, g, g)
	)
	for q := 0; q < fv.NQ; q++ {
		fs := diffCoe * fv.JxW(q)
		fc := removal * fv.JxW(q)
		for i := 0; i < dpc; i++ {
			for j := 0; j < dpc; j++ {
				cellMat.AddAt(i, j,
					streamingAtQP[q][0].At(i, j)*fs+collisionAtQP[q].At(i, j)*fc)
			}
		}
	}
}

func (df *Diffusion) IntegrateBoundaryBilinearForm(fvf *fe.FaceValues, cell mesh.Cell,
	fn int, cellMat utils.Matrix, g, dir int) {
	equ := df.equ
	if equ.Msh.ReflectiveBCMap()[equ.Msh.BoundaryID(fn)] {
		return
	}
	dpc := equ.Sp.DofsPerCell
	for q := 0; q < fvf.NQF; q++ {
		for i := 0; i < dpc; i++ {
			for j := 0; j < dpc; j++ {
				cellMat.AddAt(i, j,
					0.5*fvf.ShapeValue(i, q)*fvf.ShapeValue(j, q)*fvf.JxW(q))
			}
		}
	}
}

// IntegrateScatteringLinearForm adds the group-to-group scattering source.
// The within-group term already sits in the removal cross section and is
// excluded here.
func (df *Diffusion) IntegrateScatteringLinearForm(fv *fe.Values, cell mesh.Cell,
	cellRHS utils.Vector, sflxes []utils.Vector, g, dir int) {
	var (
		equ  = df.equ
		m    = cell.MaterialID
		dpc  = equ.Sp.DofsPerCell
		dofs = utils.NewIndex(dpc)
		phi  = make([]float64, fv.NQ)
		scat = make([]float64, fv.NQ)
	)
	equ.Sp.CellDofs(cell, dofs)
	for gin := 0; gin < equ.NGroup; gin++ {
		if gin == g {
			continue
		}
		sigs := equ.Mats.SigmaS(m, gin, g)
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

func (df *Diffusion) IntegrateCellFixedLinearForm(fv *fe.Values, cell mesh.Cell,
	cellRHS utils.Vector, sflxPrev []utils.Vector, g, dir int) {
	var (
		equ = df.equ
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
			fiss := equ.ScaledFissTransfer[m][gin][g]
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
			src[q] = equ.Mats.Q(m, g)
		}
	}
	for q := 0; q < fv.NQ; q++ {
		for i := 0; i < dpc; i++ {
			cellRHS.AddAt(i, src[q]*fv.ShapeValue(i, q)*fv.JxW(q))
		}
	}
}
