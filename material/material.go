package material

import (
	"fmt"

	"github.com/ghodss/yaml"
)

// Spec is the YAML-facing description of one material's group constants.
type Spec struct {
	Name    string      `json:"Name"`
	Fissile bool        `json:"Fissile"`
	SigmaT  []float64   `json:"SigmaT"`
	SigmaS  [][]float64 `json:"SigmaS"` // [g_in][g_out]
	NuSigF  []float64   `json:"NuSigF"`
	Chi     []float64   `json:"Chi"`
	Q       []float64   `json:"Q"`
}

type Library struct {
	NGroup    int    `json:"NGroup"`
	Materials []Spec `json:"Materials"`
}

func (lib *Library) Parse(data []byte) error {
	return yaml.Unmarshal(data, lib)
}

// Properties stores per-material, per-group cross sections, read-only after
// construction. Per-steradian variants are divided by the angular norm of
// the quadrature in use (2 in slab geometry, 4*pi in multi-D), so that
// isotropic sources integrate back to their group totals.
type Properties struct {
	NGroup, NMaterial int

	sigT, invSigT     [][]float64   // [m][g]
	sigS, sigSPerSter [][][]float64 // [m][g_in][g_out]
	nuSigF            [][]float64
	chiNuSigF         [][][]float64 // [m][g_in][g_out] = chi_out * nusigf_in
	chiNuSigFPerSter  [][][]float64
	q, qPerSter       [][]float64
	isFissile         []bool
}

func NewProperties(lib Library, angularNorm float64) (mat *Properties, err error) {
	var (
		ng = lib.NGroup
		nm = len(lib.Materials)
	)
	if ng < 1 || nm < 1 {
		return nil, fmt.Errorf("material library needs at least one group and one material, got %d and %d", ng, nm)
	}
	mat = &Properties{
		NGroup:    ng,
		NMaterial: nm,
	}
	for m, spec := range lib.Materials {
		if err = validateSpec(spec, ng); err != nil {
			return nil, fmt.Errorf("material %d (%s): %w", m, spec.Name, err)
		}
		invSigT := make([]float64, ng)
		for g := 0; g < ng; g++ {
			invSigT[g] = 1 / spec.SigmaT[g]
		}
		mat.sigT = append(mat.sigT, spec.SigmaT)
		mat.invSigT = append(mat.invSigT, invSigT)
		mat.sigS = append(mat.sigS, spec.SigmaS)
		mat.sigSPerSter = append(mat.sigSPerSter, scaleTransfer(spec.SigmaS, 1/angularNorm))
		mat.isFissile = append(mat.isFissile, spec.Fissile)

		chi := spec.Chi
		if spec.Fissile && len(chi) == 0 {
			// fission neutrons born in the fastest group by default
			chi = make([]float64, ng)
			chi[0] = 1
		}
		nusigf := spec.NuSigF
		if len(nusigf) == 0 {
			nusigf = make([]float64, ng)
		}
		mat.nuSigF = append(mat.nuSigF, nusigf)
		transfer := make([][]float64, ng)
		for gin := 0; gin < ng; gin++ {
			transfer[gin] = make([]float64, ng)
			if spec.Fissile {
				for g := 0; g < ng; g++ {
					transfer[gin][g] = chi[g] * nusigf[gin]
				}
			}
		}
		mat.chiNuSigF = append(mat.chiNuSigF, transfer)
		mat.chiNuSigFPerSter = append(mat.chiNuSigFPerSter, scaleTransfer(transfer, 1/angularNorm))

		q := spec.Q
		if len(q) == 0 {
			q = make([]float64, ng)
		}
		mat.q = append(mat.q, q)
		qps := make([]float64, ng)
		for g := 0; g < ng; g++ {
			qps[g] = q[g] / angularNorm
		}
		mat.qPerSter = append(mat.qPerSter, qps)
	}
	return
}

func validateSpec(spec Spec, ng int) error {
	if len(spec.SigmaT) != ng {
		return fmt.Errorf("SigmaT has %d groups, library declares %d", len(spec.SigmaT), ng)
	}
	if len(spec.SigmaS) != ng {
		return fmt.Errorf("SigmaS has %d rows, library declares %d groups", len(spec.SigmaS), ng)
	}
	for gin, row := range spec.SigmaS {
		if len(row) != ng {
			return fmt.Errorf("SigmaS row %d has %d entries, library declares %d groups", gin, len(row), ng)
		}
	}
	if len(spec.NuSigF) != 0 && len(spec.NuSigF) != ng {
		return fmt.Errorf("NuSigF has %d groups, library declares %d", len(spec.NuSigF), ng)
	}
	if len(spec.Chi) != 0 && len(spec.Chi) != ng {
		return fmt.Errorf("Chi has %d groups, library declares %d", len(spec.Chi), ng)
	}
	if len(spec.Q) != 0 && len(spec.Q) != ng {
		return fmt.Errorf("Q has %d groups, library declares %d", len(spec.Q), ng)
	}
	if spec.Fissile {
		var total float64
		for _, val := range spec.NuSigF {
			total += val
		}
		if total == 0 {
			return fmt.Errorf("fissile material has zero NuSigF")
		}
	}
	for g, sig := range spec.SigmaT {
		if sig <= 0 {
			return fmt.Errorf("SigmaT must be positive, group %d has %v", g, sig)
		}
	}
	return nil
}

func scaleTransfer(transfer [][]float64, factor float64) (scaled [][]float64) {
	scaled = make([][]float64, len(transfer))
	for gin, row := range transfer {
		scaled[gin] = make([]float64, len(row))
		for g, val := range row {
			scaled[gin][g] = val * factor
		}
	}
	return
}

func (mat *Properties) SigmaT(m, g int) float64    { return mat.sigT[m][g] }
func (mat *Properties) InvSigmaT(m, g int) float64 { return mat.invSigT[m][g] }

func (mat *Properties) SigmaS(m, gin, g int) float64        { return mat.sigS[m][gin][g] }
func (mat *Properties) SigmaSPerSter(m, gin, g int) float64 { return mat.sigSPerSter[m][gin][g] }

func (mat *Properties) NuSigF(m, g int) float64 { return mat.nuSigF[m][g] }

// ChiNuSigFTransfer returns the unscaled fission transfer matrix of one
// material; the eigenvalue driver divides it by the current keff estimate.
func (mat *Properties) ChiNuSigFTransfer(m int) [][]float64        { return mat.chiNuSigF[m] }
func (mat *Properties) ChiNuSigFPerSterTransfer(m int) [][]float64 { return mat.chiNuSigFPerSter[m] }

func (mat *Properties) Q(m, g int) float64        { return mat.q[m][g] }
func (mat *Properties) QPerSter(m, g int) float64 { return mat.qPerSter[m][g] }

func (mat *Properties) IsFissile(m int) bool { return mat.isFissile[m] }

func (mat *Properties) FissileIDMap() map[int]bool {
	ids := make(map[int]bool)
	for m, fissile := range mat.isFissile {
		ids[m] = fissile
	}
	return ids
}
