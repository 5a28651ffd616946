package utils

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"gonum.org/v1/gonum/mat"
)

// DOK is the mutable assembly form of a sparse system matrix. Local element
// contributions are accumulated additively, then the matrix is frozen into
// CSR form for the solve phase. A DOK is owned exclusively by the goroutine
// assembling its component - no locking is done here.
type DOK struct {
	M        *sparse.DOK
	readOnly bool
	name     string
}

func NewDOK(nr, nc int) (R DOK) {
	R = DOK{
		sparse.NewDOK(nr, nc),
		false,
		"unnamed - hint: pass a variable name to SetReadOnly()",
	}
	return
}

// Dims, At and T minimally satisfy the mat.Matrix interface.
func (m DOK) Dims() (r, c int)    { return m.M.Dims() }
func (m DOK) At(i, j int) float64 { return m.M.At(i, j) }
func (m DOK) T() mat.Matrix       { return m.M.T() }

// AddAt is the additive-assembly primitive: off-diagonal contributions from
// neighboring cells accumulate into the same entry.
func (m DOK) AddAt(i, j int, val float64) DOK {
	m.checkWritable()
	m.M.Set(i, j, m.M.At(i, j)+val)
	return m
}

// AddLocal scatters a dense cell matrix into the sparse global matrix using
// row and column dof index maps.
func (m DOK) AddLocal(rows, cols Index, local Matrix) DOK {
	var (
		nr, nc = local.Dims()
	)
	m.checkWritable()
	if len(rows) != nr || len(cols) != nc {
		panic(fmt.Errorf("dof index length does not match local matrix: %d x %d vs %d x %d", len(rows), len(cols), nr, nc))
	}
	for i := 0; i < nr; i++ {
		for j := 0; j < nc; j++ {
			if val := local.At(i, j); val != 0 {
				m.M.Set(rows[i], cols[j], m.M.At(rows[i], cols[j])+val)
			}
		}
	}
	return m
}

// Zero discards every stored entry before re-assembly. Pointer receiver:
// replacing the backing matrix must reach the caller, not a copy.
func (m *DOK) Zero() DOK {
	var (
		nr, nc = m.Dims()
	)
	m.checkWritable()
	m.M = sparse.NewDOK(nr, nc)
	return *m
}

func (m DOK) ToCSR() CSR {
	return CSR{
		M:        m.M.ToCSR(),
		readOnly: m.readOnly,
		name:     m.name,
	}
}

func (m *DOK) SetReadOnly(name ...string) DOK {
	if len(name) != 0 {
		m.name = name[0]
	}
	m.readOnly = true
	return *m
}

func (m DOK) checkWritable() {
	if m.readOnly {
		err := fmt.Errorf("attempt to write to a read only matrix named: \"%v\"", m.name)
		panic(err)
	}
}

// CSR is the compressed, solve-phase form of a system matrix. It is
// immutable once produced by DOK.ToCSR.
type CSR struct {
	M        *sparse.CSR
	readOnly bool
	name     string
}

func (m CSR) Dims() (r, c int)    { return m.M.Dims() }
func (m CSR) At(i, j int) float64 { return m.M.At(i, j) }
func (m CSR) T() mat.Matrix       { return m.M.T() }

// MulVec computes dst = A*x over the nonzero pattern.
func (m CSR) MulVec(dst, x Vector) {
	var (
		nr, nc = m.Dims()
	)
	if x.Len() != nc || dst.Len() != nr {
		panic(fmt.Errorf("dimension mismatch in MulVec: A is %d x %d, x is %d, dst is %d", nr, nc, x.Len(), dst.Len()))
	}
	d, xd := dst.DataP(), x.DataP()
	for i := range d {
		d[i] = 0
	}
	m.M.DoNonZero(func(i, j int, v float64) {
		d[i] += v * xd[j]
	})
}

// Diagonal extracts the matrix diagonal, used to build Jacobi preconditioners.
func (m CSR) Diagonal() (d Vector) {
	var (
		nr, _ = m.Dims()
	)
	d = NewVector(nr)
	m.M.DoNonZero(func(i, j int, v float64) {
		if i == j {
			d.Set(i, v)
		}
	})
	return
}

func (m CSR) IsZero() bool {
	return m.M == nil
}
