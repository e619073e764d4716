// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cholesky

import (
	"math"
	"math/rand"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// randSPD builds a random symmetric positive-definite matrix 𝐁𝐁ᵀ + n𝐈
// in row-major storage.
func randSPD(rng *rand.Rand, n int) []float64 {
	b := make([]float64, n*n)
	for i := range b {
		b[i] = rng.NormFloat64()
	}
	a := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s := 0.0
			for k := 0; k < n; k++ {
				s += b[i*n+k] * b[j*n+k]
			}
			a[i*n+j] = s
		}
		a[i*n+i] += float64(n)
	}
	return a
}

func asSym(a []float64, n int) *mat.SymDense {
	sym := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sym.SetSym(i, j, a[i*n+j])
		}
	}
	return sym
}

func lowerTri(a []float64, n int) []float64 {
	l := make([]float64, 0, n*(n+1)/2)
	for i := 0; i < n; i++ {
		l = append(l, a[i*n:i*n+i+1]...)
	}
	return l
}

func TestFactorSolve(t *testing.T) {

	rng := rand.New(rand.NewSource(1))

	for n := 1; n <= 20; n++ {
		a := randSPD(rng, n)
		rhs := make([]float64, n)
		for i := range rhs {
			rhs[i] = rng.NormFloat64()
		}

		var chol mat.Cholesky
		require.True(t, chol.Factorize(asSym(a, n)))
		want := mat.NewVecDense(n, nil)
		require.NoError(t, chol.SolveVecTo(want, mat.NewVecDense(n, rhs)))

		rank := Factor(a, n, minPivot)
		require.Equal(t, n, rank, "n=%d", n)

		res := make([]float64, n)
		Solve(res, a, rhs, n)
		for i := 0; i < n; i++ {
			require.InDelta(t, want.AtVec(i), res[i], 1e-8, "n=%d i=%d", n, i)
		}
	}
}

func TestSolveAliased(t *testing.T) {

	rng := rand.New(rand.NewSource(2))

	const n = 7
	a := randSPD(rng, n)
	rhs := make([]float64, n)
	for i := range rhs {
		rhs[i] = rng.NormFloat64()
	}

	require.Equal(t, n, Factor(a, n, minPivot))

	want := make([]float64, n)
	Solve(want, a, rhs, n)

	// res aliasing vec must produce the same solution
	Solve(rhs, a, rhs, n)
	require.Equal(t, want, rhs)
}

func TestFactorRankDeficient(t *testing.T) {

	const (
		n       = 3
		minDiag = 1e-6
	)

	// rank-one matrix 𝐯𝐯ᵀ
	v := []float64{1, 2, 3}
	a := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			a[i*n+j] = v[i] * v[j]
		}
	}

	rank := Factor(a, n, minDiag)
	require.Equal(t, 1, rank)
	require.Equal(t, math.Sqrt(minDiag), a[1*n+1])
	require.Equal(t, math.Sqrt(minDiag), a[2*n+2])
}

func TestUpdateMatchesRefactor(t *testing.T) {

	rng := rand.New(rand.NewSource(3))

	for _, n := range []int{2, 5, 11} {
		a := randSPD(rng, n)
		x := make([]float64, n)
		for i := range x {
			x[i] = rng.NormFloat64()
		}

		// refactor 𝐌 + 𝐱𝐱ᵀ from scratch
		want := make([]float64, n*n)
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				want[i*n+j] = a[i*n+j] + x[i]*x[j]
			}
		}
		require.Equal(t, n, Factor(want, n, minPivot))

		// update the existing factor
		require.Equal(t, n, Factor(a, n, minPivot))
		xw := append([]float64(nil), x...)
		require.Equal(t, n, Update(a, xw, n, true))

		for i := 0; i < n; i++ {
			for j := 0; j <= i; j++ {
				require.InDelta(t, want[i*n+j], a[i*n+j], 1e-8, "n=%d (%d,%d)", n, i, j)
			}
		}
	}
}

func TestUpdateDowndateRestores(t *testing.T) {

	rng := rand.New(rand.NewSource(4))

	const n = 8
	a := randSPD(rng, n)
	require.Equal(t, n, Factor(a, n, minPivot))
	orig := lowerTri(a, n)

	x := make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
	}

	xw := append([]float64(nil), x...)
	require.Equal(t, n, Update(a, xw, n, true))

	xw = append(xw[:0], x...)
	require.Equal(t, n, Update(a, xw, n, false))

	if diff := cmp.Diff(orig, lowerTri(a, n), cmpopts.EquateApprox(0, 1e-9)); diff != "" {
		t.Fatalf("factor not restored after update/downdate (-want +got):\n%s", diff)
	}
}

func TestUpdateFloorsPivot(t *testing.T) {

	const n = 2
	a := []float64{1, 0, 0, 1}
	require.Equal(t, n, Factor(a, n, minPivot))

	// downdating by the first basis vector annihilates the first pivot
	x := []float64{1, 0}
	rank := Update(a, x, n, false)
	require.Equal(t, n-1, rank)
	require.Equal(t, math.Sqrt(minPivot), a[0])
}
