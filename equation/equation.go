package equation

import (
	"fmt"
	"sync"

	"github.com/AlexanderBlank/BART/aqdata"
	"github.com/AlexanderBlank/BART/fe"
	"github.com/AlexanderBlank/BART/material"
	"github.com/AlexanderBlank/BART/mesh"
	"github.com/AlexanderBlank/BART/solver"
	"github.com/AlexanderBlank/BART/utils"
)

type Config struct {
	EquationName       string
	Discretization     fe.Discretization
	IsEigenProblem     bool
	DoNDA              bool
	POrder             int
	LinearSolveTol     float64
	LinearSolveMaxIter int
	Verbose            bool
}

// Equation owns, per solution component (direction x group), a system
// matrix, an angular flux vector, a right hand side and a fixed (source
// only) right hand side, all indexed in lockstep. The weak-form integrands
// come from the attached Model; everything else - component sweeps, dof
// scattering, interface tie-breaks, moment generation - lives here.
//
// The mesh, quadrature and material providers are shared read-only
// collaborators; Equation never mutates them.
type Equation struct {
	EquName        string
	Disc           fe.Discretization
	IsEigenProblem bool
	DoNDA          bool
	Verbose        bool

	NGroup, NMaterial int
	NDir, NTotalVars  int

	Msh  *mesh.Generator
	AQ   *aqdata.AngularQuadrature
	Mats *material.Properties
	Sp   *fe.Space

	cm            *aqdata.CompIndexMap
	momentWeights []float64
	alg           *solver.PreconditionerSolver
	model         Model

	// per-component linear system state, all sized NTotalVars
	SysMats       []utils.DOK
	csrMats       []utils.CSR
	SysAflxes     []utils.Vector
	SysRhses      []utils.Vector
	SysFixedRhses []utils.Vector

	AflxesProc []utils.Vector // local copies of angular fluxes
	HOSflxes   []utils.Vector // separately-stored HO scalar fluxes for NDA coupling

	// per-iteration mutable fission state, scoped to the eigen driver
	ScaledFissTransfer        [][][]float64 // [m][g_in][g_out]
	ScaledFissTransferPerSter [][][]float64

	localCells []mesh.Cell
	isCellAtBd []bool
}

func NewEquation(cfg Config, msh *mesh.Generator, aq *aqdata.AngularQuadrature,
	mats *material.Properties) (equ *Equation) {
	equ = &Equation{
		EquName:        cfg.EquationName,
		Disc:           cfg.Discretization,
		IsEigenProblem: cfg.IsEigenProblem,
		DoNDA:          cfg.DoNDA,
		Verbose:        cfg.Verbose,
		NGroup:         mats.NGroup,
		NMaterial:      mats.NMaterial,
		Msh:            msh,
		AQ:             aq,
		Mats:           mats,
	}
	// the diffusion-like systems collapse the direction dimension
	if cfg.EquationName == "nda" || cfg.EquationName == "diffusion" {
		equ.NDir = 1
		equ.NTotalVars = equ.NGroup
		equ.cm = aqdata.NewCompIndexMap(1, equ.NGroup)
		equ.momentWeights = []float64{1}
	} else {
		equ.NDir = aq.NDir
		equ.NTotalVars = aq.NTotalHOVars()
		equ.cm = aq.CompIndexMap
		equ.momentWeights = aq.Wi
	}
	equ.Sp = fe.NewSpace(msh, cfg.Discretization, cfg.POrder+1)
	equ.alg = solver.NewPreconditionerSolver(cfg.EquationName, equ.NTotalVars,
		cfg.LinearSolveTol, cfg.LinearSolveMaxIter)
	for n := 0; n < msh.NPartitions(); n++ {
		cells, atBd := msh.RelevantCells(n)
		equ.localCells = append(equ.localCells, cells...)
		equ.isCellAtBd = append(equ.isCellAtBd, atBd...)
	}
	equ.model = newModel(cfg.EquationName, equ)
	return
}

// InitializeSystem sizes the per-component matrices and vectors and gives
// the caller's scalar flux vectors their shape with a unit initial guess.
// The scalar flux container must be pre-sized to NGroup.
func (equ *Equation) InitializeSystem(sflxesProc []utils.Vector) {
	if len(sflxesProc) != equ.NGroup {
		panic(fmt.Errorf("sflxesProc has to be initialized in size outside: have %d, need %d",
			len(sflxesProc), equ.NGroup))
	}
	n := equ.Sp.NDofs
	for i := 0; i < equ.NTotalVars; i++ {
		equ.SysMats = append(equ.SysMats, utils.NewDOK(n, n))
		equ.SysAflxes = append(equ.SysAflxes, utils.NewVector(n))
		equ.SysRhses = append(equ.SysRhses, utils.NewVector(n))
		equ.SysFixedRhses = append(equ.SysFixedRhses, utils.NewVector(n))
		equ.AflxesProc = append(equ.AflxesProc, utils.NewVector(n))
	}
	equ.csrMats = make([]utils.CSR, equ.NTotalVars)
	for g := 0; g < equ.NGroup; g++ {
		// unit values keep the first fission source estimate nonzero
		sflxesProc[g] = utils.NewVectorConstant(n, 1)
		equ.HOSflxes = append(equ.HOSflxes, utils.NewVector(n))
	}
}

// AssembleBilinearForm builds the volumetric+boundary system matrix for
// every component, once per mesh and discretization. For discontinuous
// discretizations the interior-face coupling terms are added as well;
// that path is only valid for the even-parity model.
func (equ *Equation) AssembleBilinearForm() {
	if equ.Verbose {
		fmt.Printf("Assemble volumetric bilinear forms\n")
	}
	equ.assembleVolumeBoundaryBilinearForm()

	if equ.Disc == fe.DFEM {
		if equ.EquName != "ep" {
			panic(fmt.Errorf("DFEM is only implemented for even parity, not %q", equ.EquName))
		}
		if equ.Verbose {
			fmt.Printf("Assemble cell interface bilinear forms for DFEM\n")
		}
		equ.assembleInterfaceBilinearForm()
	}

	for k := 0; k < equ.NTotalVars; k++ {
		equ.csrMats[k] = equ.SysMats[k].ToCSR()
	}
	equ.alg.InitializePreconditioners(equ.csrMats)
}

func (equ *Equation) assembleVolumeBoundaryBilinearForm() {
	var (
		dpc = equ.Sp.DofsPerCell
		fv0 = equ.Sp.NewValues()
	)
	// pre-assemble streaming and collision matrices at quadrature points;
	// the mesh is uniform, so the reference cell stands in for all of them
	fv0.Reinit(equ.localCells[0])
	streamingAtQP := make([][]utils.Matrix, fv0.NQ)
	collisionAtQP := make([]utils.Matrix, fv0.NQ)
	for q := 0; q < fv0.NQ; q++ {
		streamingAtQP[q] = make([]utils.Matrix, equ.NDir)
		for dir := 0; dir < equ.NDir; dir++ {
			streamingAtQP[q][dir] = utils.NewMatrix(dpc, dpc)
		}
		collisionAtQP[q] = utils.NewMatrix(dpc, dpc)
	}
	equ.model.PreAssembleCellMatrices(fv0, streamingAtQP, collisionAtQP)
	for q := 0; q < fv0.NQ; q++ {
		for dir := 0; dir < equ.NDir; dir++ {
			streamingAtQP[q][dir].SetReadOnly("streamingAtQP")
		}
		collisionAtQP[q].SetReadOnly("collisionAtQP")
	}

	// components are embarrassingly parallel: each goroutine owns its
	// component's matrix exclusively
	var wg sync.WaitGroup
	for k := 0; k < equ.NTotalVars; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			var (
				g        = equ.cm.CompGroup(k)
				dir      = equ.cm.CompDirection(k)
				fv       = equ.Sp.NewValues()
				fvf      = equ.Sp.NewFaceValues()
				dofs     = utils.NewIndex(dpc)
				localMat = utils.NewMatrix(dpc, dpc)
			)
			if equ.Verbose {
				fmt.Printf("Assembling Component: %d, direction: %d, group: %d\n", k, dir, g)
			}
			equ.SysMats[k].Zero()
			for ic, cell := range equ.localCells {
				fv.Reinit(cell)
				equ.Sp.CellDofs(cell, dofs)
				localMat.Zero()
				equ.model.IntegrateCellBilinearForm(fv, cell, localMat,
					streamingAtQP, collisionAtQP, g, dir)
				if equ.isCellAtBd[ic] {
					for fn := 0; fn < equ.Msh.NFacesPerCell(); fn++ {
						if equ.Msh.AtBoundary(cell, fn) {
							fvf.Reinit(cell, fn)
							equ.model.IntegrateBoundaryBilinearForm(fvf, cell, fn, localMat, g, dir)
						}
					}
				}
				equ.SysMats[k].AddLocal(dofs, dofs, localMat)
			}
		}(k)
	}
	wg.Wait()
}

// assembleInterfaceBilinearForm walks the interior faces of every cell and
// adds the four DG coupling blocks. Each interface is assembled exactly
// once: only from the side whose neighbor carries the smaller global cell
// id.
func (equ *Equation) assembleInterfaceBilinearForm() {
	var (
		dpc = equ.Sp.DofsPerCell
		wg  sync.WaitGroup
	)
	for k := 0; k < equ.NTotalVars; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			var (
				g         = equ.cm.CompGroup(k)
				dir       = equ.cm.CompDirection(k)
				fvf       = equ.Sp.NewFaceValues()
				fvfNei    = equ.Sp.NewFaceValues()
				dofs      = utils.NewIndex(dpc)
				neighDofs = utils.NewIndex(dpc)
				viUi      = utils.NewMatrix(dpc, dpc)
				viUe      = utils.NewMatrix(dpc, dpc)
				veUi      = utils.NewMatrix(dpc, dpc)
				veUe      = utils.NewMatrix(dpc, dpc)
			)
			for _, cell := range equ.localCells {
				equ.Sp.CellDofs(cell, dofs)
				for fn := 0; fn < equ.Msh.NFacesPerCell(); fn++ {
					if equ.Msh.AtBoundary(cell, fn) {
						continue
					}
					neigh := equ.Msh.Neighbor(cell, fn)
					if neigh.ID >= cell.ID {
						continue
					}
					fvf.Reinit(cell, fn)
					equ.Sp.CellDofs(neigh, neighDofs)
					fvfNei.Reinit(neigh, mesh.NeighborFaceNo(fn))

					viUi.Zero()
					viUe.Zero()
					veUi.Zero()
					veUe.Zero()
					equ.model.IntegrateInterfaceBilinearForm(fvf, fvfNei, cell, neigh, fn,
						viUi, viUe, veUi, veUe, g, dir)
					equ.SysMats[k].AddLocal(dofs, dofs, viUi)
					equ.SysMats[k].AddLocal(dofs, neighDofs, viUe)
					equ.SysMats[k].AddLocal(neighDofs, dofs, veUi)
					equ.SysMats[k].AddLocal(neighDofs, neighDofs, veUe)
				}
			}
		}(k)
	}
	wg.Wait()
}

// AssembleFixedLinearForm builds the right-hand-side contribution held
// fixed over one outer iteration: the fission source in eigenvalue
// problems, the external source otherwise.
func (equ *Equation) AssembleFixedLinearForm(sflxPrev []utils.Vector) {
	var (
		dpc = equ.Sp.DofsPerCell
		wg  sync.WaitGroup
	)
	for k := 0; k < equ.NTotalVars; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			var (
				g    = equ.cm.CompGroup(k)
				dir  = equ.cm.CompDirection(k)
				fv   = equ.Sp.NewValues()
				dofs = utils.NewIndex(dpc)
			)
			equ.SysFixedRhses[k].SetConstant(0)
			for _, cell := range equ.localCells {
				cellRHS := utils.NewVector(dpc)
				equ.Sp.CellDofs(cell, dofs)
				fv.Reinit(cell)
				equ.model.IntegrateCellFixedLinearForm(fv, cell, cellRHS, sflxPrev, g, dir)
				for l, dof := range dofs {
					equ.SysFixedRhses[k].AddAt(dof, cellRHS.AtVec(l))
				}
			}
		}(k)
	}
	wg.Wait()
}

// AssembleLinearForm rebuilds the sweep right hand side for every component
// of one group: the fixed contribution plus the scattering source and
// boundary terms recomputed from the current scalar flux estimate.
func (equ *Equation) AssembleLinearForm(sflxes []utils.Vector, g int) {
	var (
		dpc = equ.Sp.DofsPerCell
		wg  sync.WaitGroup
	)
	for k := 0; k < equ.NTotalVars; k++ {
		if equ.cm.CompGroup(k) != g {
			continue
		}
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			var (
				dir  = equ.cm.CompDirection(k)
				fv   = equ.Sp.NewValues()
				fvf  = equ.Sp.NewFaceValues()
				dofs = utils.NewIndex(dpc)
			)
			equ.SysRhses[k].CopyFrom(equ.SysFixedRhses[k])
			for ic, cell := range equ.localCells {
				cellRHS := utils.NewVector(dpc)
				equ.Sp.CellDofs(cell, dofs)
				fv.Reinit(cell)
				equ.model.IntegrateScatteringLinearForm(fv, cell, cellRHS, sflxes, g, dir)
				if equ.isCellAtBd[ic] {
					for fn := 0; fn < equ.Msh.NFacesPerCell(); fn++ {
						if equ.Msh.AtBoundary(cell, fn) {
							fvf.Reinit(cell, fn)
							equ.model.IntegrateBoundaryLinearForm(fvf, cell, fn, cellRHS, g, dir)
						}
					}
				}
				for l, dof := range dofs {
					equ.SysRhses[k].AddAt(dof, cellRHS.AtVec(l))
				}
			}
		}(k)
	}
	wg.Wait()
}

// SolveInGroup invokes the linear solver for every component belonging to
// group g, writing the angular flux vectors in place.
func (equ *Equation) SolveInGroup(g int) error {
	for k := 0; k < equ.NTotalVars; k++ {
		if equ.cm.CompGroup(k) == g {
			if err := equ.alg.LinearAlgebraSolve(equ.csrMats, equ.SysAflxes, equ.SysRhses, k); err != nil {
				return err
			}
		}
	}
	return nil
}

// GenerateMoments integrates the angular fluxes against the angular weights
// to produce the scalar flux for every group, saving the previous iterate.
// The NDA equation does not own angular fluxes and must not call this.
func (equ *Equation) GenerateMoments(sflxes, sflxesOld []utils.Vector) {
	if equ.EquName == "nda" {
		panic("only non-NDA is supposed to call this function")
	}
	for g := 0; g < equ.NGroup; g++ {
		sflxesOld[g].CopyFrom(sflxes[g])
		sflxes[g].SetConstant(0)
		for dir := 0; dir < equ.NDir; dir++ {
			i := equ.cm.ComponentIndex(dir, g)
			equ.AflxesProc[i].CopyFrom(equ.SysAflxes[i])
			sflxes[g].AddScaled(equ.momentWeights[dir], equ.AflxesProc[i])
		}
	}
}

// GenerateGroupMoments is the single-group variant of GenerateMoments.
func (equ *Equation) GenerateGroupMoments(sflx, sflxOld utils.Vector, g int) {
	if equ.EquName == "nda" {
		panic("NDA is not supposed to call this function")
	}
	sflxOld.CopyFrom(sflx)
	sflx.SetConstant(0)
	for dir := 0; dir < equ.NDir; dir++ {
		i := equ.cm.ComponentIndex(dir, g)
		equ.AflxesProc[i].CopyFrom(equ.SysAflxes[i])
		sflx.AddScaled(equ.momentWeights[dir], equ.AflxesProc[i])
	}
}

// GenerateHOMoments produces the separately-stored HO scalar fluxes used to
// drive the NDA closure, without disturbing the primary scalar flux state.
func (equ *Equation) GenerateHOMoments() {
	if equ.EquName == "nda" || !equ.DoNDA {
		panic("only non-NDA is supposed to call this function")
	}
	for i := 0; i < equ.NTotalVars; i++ {
		equ.AflxesProc[i].CopyFrom(equ.SysAflxes[i])
	}
	for g := 0; g < equ.NGroup; g++ {
		equ.HOSflxes[g].SetConstant(0)
		for dir := 0; dir < equ.NDir; dir++ {
			equ.HOSflxes[g].AddScaled(equ.momentWeights[dir],
				equ.AflxesProc[equ.cm.ComponentIndex(dir, g)])
		}
	}
}

// AssembleClosureBilinearForm is the NDA coupling hook: the low-order
// equation estimates its drift corrections from the HO equation state.
func (equ *Equation) AssembleClosureBilinearForm(hoEqu *Equation, doAssembly bool) {
	if doAssembly && equ.EquName != "nda" {
		panic("only instance for NDA calls this function")
	}
}

// ScaleFissTransferMatrices divides every fissile material's fission
// transfer coefficients by the current eigenvalue estimate. Non-fissile
// materials contribute a zero matrix.
func (equ *Equation) ScaleFissTransferMatrices(keff float64) {
	if !equ.IsEigenProblem {
		panic("only eigen problem calls this member")
	}
	equ.ScaledFissTransfer = make([][][]float64, equ.NMaterial)
	equ.ScaledFissTransferPerSter = make([][][]float64, equ.NMaterial)
	for m := 0; m < equ.NMaterial; m++ {
		full := make([][]float64, equ.NGroup)
		perSter := make([][]float64, equ.NGroup)
		for gin := 0; gin < equ.NGroup; gin++ {
			full[gin] = make([]float64, equ.NGroup)
			perSter[gin] = make([]float64, equ.NGroup)
			if equ.Mats.IsFissile(m) {
				for g := 0; g < equ.NGroup; g++ {
					full[gin][g] = equ.Mats.ChiNuSigFTransfer(m)[gin][g] / keff
					perSter[gin][g] = equ.Mats.ChiNuSigFPerSterTransfer(m)[gin][g] / keff
				}
			}
		}
		equ.ScaledFissTransfer[m] = full
		equ.ScaledFissTransferPerSter[m] = perSter
	}
}

// EstimateFissSrc integrates nu*sigma_f times the scalar flux over the
// fissile cells of every partition and reduces the partial sums in
// partition order.
func (equ *Equation) EstimateFissSrc(phis []utils.Vector) float64 {
	var (
		np       = equ.Msh.NPartitions()
		partials = make([]float64, np)
		wg       sync.WaitGroup
	)
	for n := 0; n < np; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			var (
				fv        = equ.Sp.NewValues()
				dofs      = utils.NewIndex(equ.Sp.DofsPerCell)
				localPhis = make([][]float64, equ.NGroup)
				fissSrc   float64
			)
			for g := range localPhis {
				localPhis[g] = make([]float64, fv.NQ)
			}
			cells, _ := equ.Msh.RelevantCells(n)
			for _, cell := range cells {
				if !equ.Mats.IsFissile(cell.MaterialID) {
					continue
				}
				fv.Reinit(cell)
				equ.Sp.CellDofs(cell, dofs)
				for g := 0; g < equ.NGroup; g++ {
					fv.FunctionValues(phis[g], dofs, localPhis[g])
				}
				for q := 0; q < fv.NQ; q++ {
					for g := 0; g < equ.NGroup; g++ {
						fissSrc += equ.Mats.NuSigF(cell.MaterialID, g) *
							localPhis[g][q] * fv.JxW(q)
					}
				}
			}
			partials[n] = fissSrc
		}(n)
	}
	wg.Wait()
	return utils.SumReduce(partials)
}

func (equ *Equation) GetEquName() string { return equ.EquName }

// index-map wrappers
func (equ *Equation) ComponentIndex(dir, g int) int { return equ.cm.ComponentIndex(dir, g) }
func (equ *Equation) CompDirection(k int) int       { return equ.cm.CompDirection(k) }
func (equ *Equation) CompGroup(k int) int           { return equ.cm.CompGroup(k) }

// ReflectiveDirectionIndex retrieves the reflected direction index at a
// reflective boundary; asking at a non-reflective boundary is a fatal
// precondition violation.
func (equ *Equation) ReflectiveDirectionIndex(boundaryID, dir int) int {
	if !equ.Msh.ReflectiveBCMap()[boundaryID] {
		panic("must be reflective boundary to retrieve the reflected direction")
	}
	return equ.AQ.ReflectiveDirectionIndex(boundaryID, dir)
}
