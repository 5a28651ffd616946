package utils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

type Vector struct {
	V *mat.VecDense
}

func NewVector(n int, dataO ...[]float64) (R Vector) {
	var v *mat.VecDense
	if len(dataO) != 0 {
		if len(dataO[0]) != n {
			err := fmt.Errorf("mismatch in allocation: NewVector n = %v, len(data[0]) = %v\n", n, len(dataO[0]))
			panic(err)
		}
		v = mat.NewVecDense(n, dataO[0])
	} else {
		v = mat.NewVecDense(n, make([]float64, n))
	}
	return Vector{v}
}

func NewVectorConstant(n int, val float64) (R Vector) {
	R = NewVector(n)
	for i := range R.DataP() {
		R.DataP()[i] = val
	}
	return
}

func (v Vector) Len() int            { return v.V.Len() }
func (v Vector) AtVec(i int) float64 { return v.V.AtVec(i) }
func (v Vector) DataP() []float64    { return v.V.RawVector().Data }
func (v Vector) Dims() (r, c int)    { return v.V.Dims() }
func (v Vector) At(i, j int) float64 { return v.V.At(i, j) }
func (v Vector) T() mat.Matrix       { return v.V.T() }

func (v Vector) Set(i int, val float64) Vector { // Changes receiver
	v.V.SetVec(i, val)
	return v
}

func (v Vector) SetConstant(val float64) Vector { // Changes receiver
	d := v.DataP()
	for i := range d {
		d[i] = val
	}
	return v
}

func (v Vector) AddAt(i int, val float64) Vector { // Changes receiver
	v.V.SetVec(i, v.V.AtVec(i)+val)
	return v
}

func (v Vector) Copy() (R Vector) { // Does not change receiver
	R = NewVector(v.Len())
	copy(R.DataP(), v.DataP())
	return
}

func (v Vector) CopyFrom(a Vector) Vector { // Changes receiver
	if v.Len() != a.Len() {
		panic(fmt.Errorf("dimension mismatch in CopyFrom: %d vs %d", v.Len(), a.Len()))
	}
	copy(v.DataP(), a.DataP())
	return v
}

// AddScaled accumulates a*x into the receiver, the moment-weighting primitive.
func (v Vector) AddScaled(a float64, x Vector) Vector { // Changes receiver
	if v.Len() != x.Len() {
		panic(fmt.Errorf("dimension mismatch in AddScaled: %d vs %d", v.Len(), x.Len()))
	}
	d, xd := v.DataP(), x.DataP()
	for i := range d {
		d[i] += a * xd[i]
	}
	return v
}

func (v Vector) Scale(a float64) Vector { // Changes receiver
	v.V.ScaleVec(a, v.V)
	return v
}

func (v Vector) Dot(a Vector) (d float64) {
	return mat.Dot(v.V, a.V)
}

func (v Vector) Min() (min float64) {
	min = v.AtVec(0)
	for _, val := range v.DataP() {
		if val < min {
			min = val
		}
	}
	return
}

func (v Vector) Max() (max float64) {
	max = v.AtVec(0)
	for _, val := range v.DataP() {
		if val > max {
			max = val
		}
	}
	return
}

// LinfDiff returns the pointwise max-norm of (v - a).
func (v Vector) LinfDiff(a Vector) (nrm float64) {
	if v.Len() != a.Len() {
		panic(fmt.Errorf("dimension mismatch in LinfDiff: %d vs %d", v.Len(), a.Len()))
	}
	d, ad := v.DataP(), a.DataP()
	for i := range d {
		if diff := math.Abs(d[i] - ad[i]); diff > nrm {
			nrm = diff
		}
	}
	return
}

func (v Vector) Norm2() (nrm float64) {
	return mat.Norm(v.V, 2)
}
