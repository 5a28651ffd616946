package iteration

import (
	"fmt"
	"math"

	"github.com/AlexanderBlank/BART/equation"
	"github.com/AlexanderBlank/BART/utils"
)

// EigenBase carries the state every eigenvalue scheme snapshots between
// outer iterations: the previous flux iterate, the previous fission source
// integral and the previous eigenvalue estimate.
type EigenBase struct {
	ErrPhiTol float64
	ErrKTol   float64
	MaxIter   int
	Verbose   bool

	Keff                 float64
	keffPrev             float64
	fissSrc, fissSrcPrev float64
	sflxesPrev           []utils.Vector
}

// initializeFissSrc seeds the outer iteration from the unit flux guess.
func (eb *EigenBase) initializeFissSrc(equ *equation.Equation, sflxes []utils.Vector) {
	eb.Keff = 1
	eb.fissSrc = equ.EstimateFissSrc(sflxes)
	if eb.fissSrc == 0 {
		panic("eigenvalue problem with zero initial fission source: no fissile material on the mesh")
	}
	eb.sflxesPrev = make([]utils.Vector, len(sflxes))
	for g := range sflxes {
		eb.sflxesPrev[g] = utils.NewVector(sflxes[g].Len())
	}
}

func (eb *EigenBase) updatePrevSflxesFissSrcKeff(sflxes []utils.Vector) {
	for g := range sflxes {
		eb.sflxesPrev[g].CopyFrom(sflxes[g])
	}
	eb.fissSrcPrev = eb.fissSrc
	eb.keffPrev = eb.Keff
}

func (eb *EigenBase) calculateFissSrcKeff(equ *equation.Equation, sflxes []utils.Vector) {
	eb.fissSrc = equ.EstimateFissSrc(sflxes)
	eb.Keff = eb.keffPrev * eb.fissSrc / eb.fissSrcPrev
}

func (eb *EigenBase) estimatePhiDiff(sflxes []utils.Vector) (errPhi float64) {
	for g := range sflxes {
		errPhi = math.Max(errPhi, relDiff(sflxes[g], eb.sflxesPrev[g]))
	}
	return
}

func (eb *EigenBase) estimateKDiff() float64 {
	return math.Abs(eb.Keff-eb.keffPrev) / math.Abs(eb.Keff)
}

// PowerIteration is the plain power method on the fission source: scale the
// fission transfer by the current eigenvalue, run a full multigroup solve
// with the resulting fixed source, then update the eigenvalue from the
// fission source ratio.
type PowerIteration struct {
	EigenBase
}

func NewPowerIteration(errPhiTol, errKTol float64, maxIter int, verbose bool) *PowerIteration {
	return &PowerIteration{EigenBase{
		ErrPhiTol: errPhiTol,
		ErrKTol:   errKTol,
		MaxIter:   maxIter,
		Verbose:   verbose,
	}}
}

// EigenIterations runs outer power iterations until both the flux error and
// the eigenvalue error fall below tolerance, or the cap is hit. The final
// eigenvalue estimate is returned either way.
func (pi *PowerIteration) EigenIterations(equ *equation.Equation, sflxes []utils.Vector,
	ig *IGBase, mg *MGBase) (float64, Status, error) {
	pi.initializeFissSrc(equ, sflxes)
	for iter := 0; iter < pi.MaxIter; iter++ {
		pi.updatePrevSflxesFissSrcKeff(sflxes)
		equ.ScaleFissTransferMatrices(pi.Keff)
		equ.AssembleFixedLinearForm(sflxes)
		if _, err := mg.MGIterations(equ, sflxes, ig); err != nil {
			return pi.Keff, MaxIterationsExceeded, err
		}
		pi.calculateFissSrcKeff(equ, sflxes)
		var (
			errPhi = pi.estimatePhiDiff(sflxes)
			errK   = pi.estimateKDiff()
		)
		if pi.Verbose {
			fmt.Printf("\nPI iter: %d, err_k: %v, err_phi: %v\n", iter, errK, errPhi)
		}
		if errK <= pi.ErrKTol && errPhi <= pi.ErrPhiTol {
			return pi.Keff, Converged, nil
		}
	}
	return pi.Keff, MaxIterationsExceeded, nil
}
