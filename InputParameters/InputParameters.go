package InputParameters

import (
	"fmt"

	"github.com/ghodss/yaml"

	"github.com/AlexanderBlank/BART/material"
	"github.com/AlexanderBlank/BART/mesh"
)

var boundaryIDByName = map[string]int{
	"xmin": mesh.XMin, "xmax": mesh.XMax,
	"ymin": mesh.YMin, "ymax": mesh.YMax,
	"zmin": mesh.ZMin, "zmax": mesh.ZMax,
}

// Parameters obtained from the YAML problem definition file
type ProblemParameters struct {
	Title                string    `json:"Title"`
	EquationName         string    `json:"EquationName"`   // "ep", "diffusion" or "nda"
	Discretization       string    `json:"Discretization"` // "cfem" or "dfem"
	IsEigenProblem       bool      `json:"IsEigenProblem"`
	DoNDA                bool      `json:"DoNDA"`
	PolynomialOrder      int       `json:"PolynomialOrder"`
	SpatialDimension     int       `json:"SpatialDimension"`
	AxisLengths          []float64 `json:"AxisLengths"`
	NCells               []int     `json:"NCells"`
	GlobalRefinements    int       `json:"GlobalRefinements"`
	MaterialByPosition   []int     `json:"MaterialByPosition"`
	ReflectiveBoundaries []string  `json:"ReflectiveBoundaries"`
	SNOrder              int       `json:"SNOrder"`
	NPartitions          int       `json:"NPartitions"`

	// Tolerances and caps left at zero (or omitted) select the defaults
	// filled in by Parse; a literal zero tolerance is not expressible.
	LinearSolveTol     float64 `json:"LinearSolveTol"`
	LinearSolveMaxIter int     `json:"LinearSolveMaxIter"`
	IGTol              float64 `json:"IGTol"`
	IGMaxIter          int     `json:"IGMaxIterations"`
	MGTol              float64 `json:"MGTol"`
	MGMaxIter          int     `json:"MGMaxIterations"`
	ErrPhiTol          float64 `json:"ErrPhiTol"`
	ErrKTol            float64 `json:"ErrKTol"`
	EigenMaxIter       int     `json:"EigenMaxIterations"`

	Materials material.Library `json:"MaterialLibrary"`
}

func (ip *ProblemParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	ip.applyDefaults()
	return nil
}

// applyDefaults fills every zero-valued tolerance and cap.
func (ip *ProblemParameters) applyDefaults() {
	if ip.SNOrder == 0 {
		ip.SNOrder = 4
	}
	if ip.NPartitions == 0 {
		ip.NPartitions = 1
	}
	if ip.LinearSolveTol == 0 {
		ip.LinearSolveTol = 1.e-12
	}
	if ip.LinearSolveMaxIter == 0 {
		ip.LinearSolveMaxIter = 10000
	}
	if ip.IGTol == 0 {
		ip.IGTol = 1.e-10
	}
	if ip.IGMaxIter == 0 {
		ip.IGMaxIter = 1000
	}
	if ip.MGTol == 0 {
		ip.MGTol = 1.e-9
	}
	if ip.MGMaxIter == 0 {
		ip.MGMaxIter = 500
	}
	if ip.ErrPhiTol == 0 {
		ip.ErrPhiTol = 1.e-7
	}
	if ip.ErrKTol == 0 {
		ip.ErrKTol = 1.e-8
	}
	if ip.EigenMaxIter == 0 {
		ip.EigenMaxIter = 200
	}
}

func (ip *ProblemParameters) Validate() error {
	switch ip.EquationName {
	case "ep", "diffusion", "nda":
	default:
		return fmt.Errorf("unknown equation name %q", ip.EquationName)
	}
	switch ip.Discretization {
	case "cfem":
	case "dfem":
		if ip.EquationName != "ep" {
			return fmt.Errorf("dfem is only available for the even-parity equation")
		}
	default:
		return fmt.Errorf("unknown discretization %q", ip.Discretization)
	}
	if ip.SpatialDimension < 1 || ip.SpatialDimension > 3 {
		return fmt.Errorf("spatial dimension must be 1, 2 or 3, got %d", ip.SpatialDimension)
	}
	if len(ip.AxisLengths) != ip.SpatialDimension || len(ip.NCells) != ip.SpatialDimension {
		return fmt.Errorf("need %d axis lengths and cell counts, got %d and %d",
			ip.SpatialDimension, len(ip.AxisLengths), len(ip.NCells))
	}
	for _, name := range ip.ReflectiveBoundaries {
		if _, ok := boundaryIDByName[name]; !ok {
			return fmt.Errorf("unknown boundary name %q", name)
		}
	}
	if ip.SNOrder < 1 {
		return fmt.Errorf("SN order must be positive, got %d", ip.SNOrder)
	}
	if ip.Materials.NGroup < 1 || len(ip.Materials.Materials) < 1 {
		return fmt.Errorf("material library needs at least one group and one material")
	}
	return nil
}

// GridSpec translates the problem geometry into the mesh generator's spec,
// mapping boundary names to boundary ids.
func (ip *ProblemParameters) GridSpec() mesh.GridSpec {
	spec := mesh.GridSpec{
		Dim:                ip.SpatialDimension,
		AxisLengths:        ip.AxisLengths,
		NCellsCoarse:       ip.NCells,
		GlobalRefinements:  ip.GlobalRefinements,
		MaterialByPosition: ip.MaterialByPosition,
	}
	for _, name := range ip.ReflectiveBoundaries {
		spec.ReflectiveBoundaries = append(spec.ReflectiveBoundaries, boundaryIDByName[name])
	}
	return spec
}

func (ip *ProblemParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t\t= Equation\n", ip.EquationName)
	fmt.Printf("[%s]\t\t\t= Discretization\n", ip.Discretization)
	fmt.Printf("[%v]\t\t\t= Eigenvalue Problem\n", ip.IsEigenProblem)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%dD]\t\t\t= Spatial Dimension\n", ip.SpatialDimension)
	fmt.Printf("%v\t\t= Axis Lengths\n", ip.AxisLengths)
	fmt.Printf("%v\t\t\t= Coarse Cells\n", ip.NCells)
	fmt.Printf("[%d]\t\t\t\t= Global Refinements\n", ip.GlobalRefinements)
	fmt.Printf("[%d]\t\t\t\t= SN Order\n", ip.SNOrder)
	fmt.Printf("[%d]\t\t\t\t= Energy Groups\n", ip.Materials.NGroup)
	fmt.Printf("[%d]\t\t\t\t= Materials\n", len(ip.Materials.Materials))
	fmt.Printf("%v\t= Reflective Boundaries\n", ip.ReflectiveBoundaries)
}
