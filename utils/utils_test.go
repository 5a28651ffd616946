package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMatrix(t *testing.T) {
	// AddAt accumulation
	{
		M := NewMatrix(2, 2)
		M.AddAt(0, 1, 2.5)
		M.AddAt(0, 1, 0.5)
		assert.Equal(t, 3.0, M.At(0, 1))
	}
	// Mul
	{
		M := NewMatrix(2, 3, []float64{
			1, 2, 3,
			4, 5, 6,
		})
		A := M.Mul(M.Transpose())
		assert.True(t, near(A.At(0, 0), 14))
		assert.True(t, near(A.At(1, 0), 32))
		assert.True(t, near(A.At(1, 1), 77))
	}
	// read only protection
	{
		M := NewMatrix(2, 2)
		M.SetReadOnly("M")
		assert.Panics(t, func() { M.Set(0, 0, 1) })
	}
}

func TestVector(t *testing.T) {
	{
		v := NewVectorConstant(4, 1)
		x := NewVector(4, []float64{1, 2, 3, 4})
		v.AddScaled(2, x)
		assert.True(t, near(v.AtVec(0), 3))
		assert.True(t, near(v.AtVec(3), 9))
		assert.True(t, near(v.Dot(x), 3+10+21+36))
	}
	{
		a := NewVector(3, []float64{1, 2, 3})
		b := NewVector(3, []float64{1, 4, 3})
		assert.True(t, near(a.LinfDiff(b), 2))
		assert.Panics(t, func() { a.LinfDiff(NewVector(2)) })
	}
}

func TestSparse(t *testing.T) {
	{
		A := NewDOK(3, 3)
		A.AddAt(0, 0, 1)
		A.AddAt(0, 0, 1)
		A.AddLocal(Index{1, 2}, Index{1, 2}, NewMatrix(2, 2, []float64{
			4, 1,
			1, 4,
		}))
		C := A.ToCSR()
		assert.Equal(t, 2.0, C.At(0, 0))
		assert.Equal(t, 4.0, C.At(2, 2))
		x := NewVector(3, []float64{1, 1, 1})
		y := NewVector(3)
		C.MulVec(y, x)
		assert.True(t, near(y.AtVec(0), 2))
		assert.True(t, near(y.AtVec(1), 5))
		d := C.Diagonal()
		assert.True(t, near(d.AtVec(1), 4))
	}
	// Zero empties the matrix as seen by the caller, so re-assembly starts
	// from scratch instead of accumulating on top of old entries
	{
		A := NewDOK(2, 2)
		A.AddAt(0, 0, 5)
		A.AddAt(1, 0, -1)
		A.Zero()
		assert.Equal(t, 0.0, A.At(0, 0))
		assert.Equal(t, 0.0, A.At(1, 0))
		A.AddAt(0, 0, 3)
		assert.Equal(t, 3.0, A.At(0, 0))
	}
}

func TestPartitionMap(t *testing.T) {
	pm := NewPartitionMap(3, 10)
	var total int
	for n := 0; n < 3; n++ {
		kMin, kMax := pm.GetBucketRange(n)
		assert.Equal(t, kMax-kMin, pm.GetBucketDimension(n))
		total += kMax - kMin
	}
	assert.Equal(t, 10, total)
	// partitions are contiguous and ordered
	assert.Equal(t, 0, pm.Partitions[0][0])
	assert.Equal(t, pm.Partitions[0][1], pm.Partitions[1][0])
	assert.Equal(t, 10, pm.Partitions[2][1])
}

func near(a, b float64) (l bool) {
	if math.Abs(a-b) < 1.e-08*math.Abs(a) || math.Abs(a-b) < 1.e-10 {
		l = true
	}
	return
}
