package fe

import (
	"fmt"

	"github.com/AlexanderBlank/BART/mesh"
	"github.com/AlexanderBlank/BART/utils"
)

type Discretization string

const (
	CFEM Discretization = "cfem" // continuous Q1, vertex-shared dofs
	DFEM Discretization = "dfem" // discontinuous Q1, per-cell dofs
)

// Space is a Q1 tensor-product Lagrange finite element space over a
// generated Cartesian mesh. Local dof l encodes one bit per axis:
// l = lx + 2*ly + 4*lz.
type Space struct {
	Msh         *mesh.Generator
	Disc        Discretization
	DofsPerCell int
	NDofs       int
	NQ1D        int // Gauss points per axis

	nVert [3]int
}

func NewSpace(msh *mesh.Generator, disc Discretization, nq1d int) (sp *Space) {
	if disc != CFEM && disc != DFEM {
		panic(fmt.Errorf("unknown spatial discretization: %s", disc))
	}
	sp = &Space{
		Msh:         msh,
		Disc:        disc,
		DofsPerCell: 1 << msh.Dim,
		NQ1D:        nq1d,
	}
	for d := 0; d < 3; d++ {
		sp.nVert[d] = msh.NCells[d] + 1
	}
	if disc == CFEM {
		sp.NDofs = 1
		for d := 0; d < msh.Dim; d++ {
			sp.NDofs *= sp.nVert[d]
		}
	} else {
		sp.NDofs = msh.NumCells() * sp.DofsPerCell
	}
	return
}

// localBit returns the +-1 orientation of local dof l along axis d.
func localBit(l, d int) int {
	if l>>d&1 == 1 {
		return 1
	}
	return -1
}

// CellDofs fills dofs with the global dof indices of the cell, ordered by
// local dof number.
func (sp *Space) CellDofs(c mesh.Cell, dofs utils.Index) {
	if len(dofs) != sp.DofsPerCell {
		panic(fmt.Errorf("dof index buffer has length %d, need %d", len(dofs), sp.DofsPerCell))
	}
	if sp.Disc == DFEM {
		for l := 0; l < sp.DofsPerCell; l++ {
			dofs[l] = c.ID*sp.DofsPerCell + l
		}
		return
	}
	for l := 0; l < sp.DofsPerCell; l++ {
		var v [3]int
		for d := 0; d < sp.Msh.Dim; d++ {
			v[d] = c.Idx[d] + (l >> d & 1)
		}
		dofs[l] = v[0] + sp.nVert[0]*(v[1]+sp.nVert[1]*v[2])
	}
}
