package iteration

import (
	"fmt"
	"math"

	"github.com/AlexanderBlank/BART/equation"
	"github.com/AlexanderBlank/BART/utils"
)

// Status reports how an iteration scheme terminated. Schemes never loop
// forever: hitting the configured cap is an orderly outcome the caller
// inspects, not a crash.
type Status int

const (
	Converged Status = iota
	MaxIterationsExceeded
)

func (s Status) String() string {
	switch s {
	case Converged:
		return "converged"
	case MaxIterationsExceeded:
		return "max iterations exceeded"
	default:
		return fmt.Sprintf("unknown status %d", int(s))
	}
}

// relDiff measures the pointwise max-norm change of cur against old,
// relative to the max-norm of cur.
func relDiff(cur, old utils.Vector) float64 {
	d := cur.LinfDiff(old)
	if m := math.Max(math.Abs(cur.Max()), math.Abs(cur.Min())); m > 0 {
		return d / m
	}
	return d
}

// IGBase performs the within-group source iteration: reassemble the group
// right hand side from the current scalar flux, solve all components of the
// group and regenerate the group moment, until the flux settles.
type IGBase struct {
	Tol     float64
	MaxIter int
	Verbose bool
}

func NewIGBase(tol float64, maxIter int, verbose bool) *IGBase {
	return &IGBase{Tol: tol, MaxIter: maxIter, Verbose: verbose}
}

func (ig *IGBase) IGIterations(equ *equation.Equation, sflxes []utils.Vector, g int) (Status, error) {
	old := utils.NewVector(sflxes[g].Len())
	for iter := 0; iter < ig.MaxIter; iter++ {
		equ.AssembleLinearForm(sflxes, g)
		if err := equ.SolveInGroup(g); err != nil {
			return MaxIterationsExceeded, err
		}
		equ.GenerateGroupMoments(sflxes[g], old, g)
		errPhi := relDiff(sflxes[g], old)
		if ig.Verbose {
			fmt.Printf("IG iter: %d, group: %d, err_phi: %v\n", iter, g, errPhi)
		}
		if errPhi <= ig.Tol {
			return Converged, nil
		}
	}
	return MaxIterationsExceeded, nil
}

// MGBase sweeps the groups Gauss-Seidel style: each group's source sees the
// freshest fluxes of the groups already swept. Group-coupling error is the
// worst per-group relative change over one full sweep.
type MGBase struct {
	Tol     float64
	MaxIter int
	Verbose bool
}

func NewMGBase(tol float64, maxIter int, verbose bool) *MGBase {
	return &MGBase{Tol: tol, MaxIter: maxIter, Verbose: verbose}
}

// MGIterations tolerates within-group caps being hit mid-sweep - the outer
// coupling loop can still contract - but propagates solver errors.
func (mg *MGBase) MGIterations(equ *equation.Equation, sflxes []utils.Vector, ig *IGBase) (Status, error) {
	old := make([]utils.Vector, equ.NGroup)
	for g := range old {
		old[g] = utils.NewVector(sflxes[g].Len())
	}
	for iter := 0; iter < mg.MaxIter; iter++ {
		for g := 0; g < equ.NGroup; g++ {
			old[g].CopyFrom(sflxes[g])
		}
		for g := 0; g < equ.NGroup; g++ {
			if _, err := ig.IGIterations(equ, sflxes, g); err != nil {
				return MaxIterationsExceeded, err
			}
		}
		var errPhi float64
		for g := 0; g < equ.NGroup; g++ {
			errPhi = math.Max(errPhi, relDiff(sflxes[g], old[g]))
		}
		if mg.Verbose {
			fmt.Printf("MG iter: %d, err_phi: %v\n", iter, errPhi)
		}
		if errPhi <= mg.Tol {
			return Converged, nil
		}
	}
	return MaxIterationsExceeded, nil
}

// SourceIteration drives fixed-source problems: the external source is
// assembled once into the fixed right hand side, then the multigroup sweep
// runs to its tolerance.
type SourceIteration struct {
	Verbose bool
}

func NewSourceIteration(verbose bool) *SourceIteration {
	return &SourceIteration{Verbose: verbose}
}

func (si *SourceIteration) SourceIterations(equ *equation.Equation, sflxes []utils.Vector,
	ig *IGBase, mg *MGBase) (Status, error) {
	if si.Verbose {
		fmt.Printf("Assemble external source linear forms\n")
	}
	equ.AssembleFixedLinearForm(sflxes)
	return mg.MGIterations(equ, sflxes, ig)
}
