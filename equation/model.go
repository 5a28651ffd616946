package equation

import (
	"fmt"

	"github.com/AlexanderBlank/BART/fe"
	"github.com/AlexanderBlank/BART/mesh"
	"github.com/AlexanderBlank/BART/utils"
)

// Model supplies the weak-form integrands of one transport model. Every
// hook is optional: a model only overrides the integrands it needs, and an
// un-overridden hook silently contributes zero. The assembly engine in
// Equation drives the hooks over cells, boundary faces and interior faces.
type Model interface {
	Name() string

	// PreAssembleCellMatrices fills per-quadrature-point streaming and
	// collision matrices on the reference cell, reused for every cell of a
	// uniform mesh.
	PreAssembleCellMatrices(fv *fe.Values, streamingAtQP [][]utils.Matrix, collisionAtQP []utils.Matrix)

	IntegrateCellBilinearForm(fv *fe.Values, cell mesh.Cell, cellMat utils.Matrix,
		streamingAtQP [][]utils.Matrix, collisionAtQP []utils.Matrix, g, dir int)

	IntegrateBoundaryBilinearForm(fvf *fe.FaceValues, cell mesh.Cell, fn int,
		cellMat utils.Matrix, g, dir int)

	IntegrateBoundaryLinearForm(fvf *fe.FaceValues, cell mesh.Cell, fn int,
		cellRHS utils.Vector, g, dir int)

	IntegrateInterfaceBilinearForm(fvf, fvfNei *fe.FaceValues, cell, neigh mesh.Cell, fn int,
		viUi, viUe, veUi, veUe utils.Matrix, g, dir int)

	IntegrateScatteringLinearForm(fv *fe.Values, cell mesh.Cell, cellRHS utils.Vector,
		sflxes []utils.Vector, g, dir int)

	IntegrateCellFixedLinearForm(fv *fe.Values, cell mesh.Cell, cellRHS utils.Vector,
		sflxPrev []utils.Vector, g, dir int)
}

// NoOpIntegrators provides the zero-contribution defaults. Models embed it
// and override only the integrands their weak form carries.
type NoOpIntegrators struct{}

func (NoOpIntegrators) PreAssembleCellMatrices(fv *fe.Values, streamingAtQP [][]utils.Matrix, collisionAtQP []utils.Matrix) {
}

func (NoOpIntegrators) IntegrateCellBilinearForm(fv *fe.Values, cell mesh.Cell, cellMat utils.Matrix,
	streamingAtQP [][]utils.Matrix, collisionAtQP []utils.Matrix, g, dir int) {
}

func (NoOpIntegrators) IntegrateBoundaryBilinearForm(fvf *fe.FaceValues, cell mesh.Cell, fn int,
	cellMat utils.Matrix, g, dir int) {
}

func (NoOpIntegrators) IntegrateBoundaryLinearForm(fvf *fe.FaceValues, cell mesh.Cell, fn int,
	cellRHS utils.Vector, g, dir int) {
}

func (NoOpIntegrators) IntegrateInterfaceBilinearForm(fvf, fvfNei *fe.FaceValues, cell, neigh mesh.Cell, fn int,
	viUi, viUe, veUi, veUe utils.Matrix, g, dir int) {
}

func (NoOpIntegrators) IntegrateScatteringLinearForm(fv *fe.Values, cell mesh.Cell, cellRHS utils.Vector,
	sflxes []utils.Vector, g, dir int) {
}

func (NoOpIntegrators) IntegrateCellFixedLinearForm(fv *fe.Values, cell mesh.Cell, cellRHS utils.Vector,
	sflxPrev []utils.Vector, g, dir int) {
}

// allocators holds all available transport models, keyed by equation name.
var allocators = make(map[string]func(equ *Equation) Model)

func newModel(name string, equ *Equation) Model {
	alloc, ok := allocators[name]
	if !ok {
		panic(fmt.Errorf("unknown transport model: %q", name))
	}
	return alloc(equ)
}
