// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package lu

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/curioloop/simsolve/sparse"
)

// sparseFromDense packs a dense matrix into compressed-row storage with no
// slack: the tree LU never needs any.
func sparseFromDense(a []float64, n int) *sparse.Matrix {
	m := &sparse.Matrix{
		N:      n,
		Rownnz: make([]int, n),
		Rowadr: make([]int, n),
	}
	for i := 0; i < n; i++ {
		m.Rowadr[i] = len(m.Data)
		for j := 0; j < n; j++ {
			if a[i*n+j] != 0 {
				m.Data = append(m.Data, a[i*n+j])
				m.Colind = append(m.Colind, j)
				m.Rownnz[i]++
			}
		}
	}
	return m
}

func luSolve(t *testing.T, a []float64, n int, rhs []float64) []float64 {
	t.Helper()
	var dlu mat.LU
	dlu.Factorize(mat.NewDense(n, n, a))
	want := mat.NewVecDense(n, nil)
	require.NoError(t, dlu.SolveVecTo(want, false, mat.NewVecDense(n, rhs)))
	res := make([]float64, n)
	copy(res, want.RawVector().Data)
	return res
}

func TestFactorSolveChain(t *testing.T) {

	rng := rand.New(rand.NewSource(7))

	// non-symmetric tridiagonal: a chain is the simplest tree
	const n = 9
	a := make([]float64, n*n)
	for i := 0; i < n; i++ {
		a[i*n+i] = 4 + rng.Float64()
		if i > 0 {
			a[i*n+i-1] = -1.5
			a[(i-1)*n+i] = -0.5
		}
	}

	m := sparseFromDense(a, n)
	scratch := make([]int, n)
	require.NoError(t, Factor(m, scratch))

	rhs := make([]float64, n)
	for i := range rhs {
		rhs[i] = rng.NormFloat64()
	}
	want := luSolve(t, append([]float64(nil), a...), n, rhs)

	res := make([]float64, n)
	require.NoError(t, Solve(res, m, rhs))
	for i := 0; i < n; i++ {
		require.InDelta(t, want[i], res[i], 1e-10, "i=%d", i)
	}
}

func TestFactorReconstructs(t *testing.T) {

	// star rooted at node 0: every leaf row holds {0, i}
	const n = 5
	a := make([]float64, n*n)
	for i := 0; i < n; i++ {
		a[i*n+i] = 6
	}
	for i := 1; i < n; i++ {
		a[i*n] = 1.5
		a[i] = 0.5
	}

	m := sparseFromDense(a, n)
	require.NoError(t, Factor(m, make([]int, n)))

	// densify LU = L + U and check (U+I)·L against the input
	l := make([]float64, n*n)
	u := make([]float64, n*n)
	for i := 0; i < n; i++ {
		vals, ind := m.Row(i)
		for k, j := range ind {
			if j <= i {
				l[i*n+j] = vals[k]
			} else {
				u[i*n+j] = vals[k]
			}
		}
		u[i*n+i] = 1
	}
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			s := 0.0
			for k := 0; k < n; k++ {
				s += u[i*n+k] * l[k*n+j]
			}
			require.InDelta(t, a[i*n+j], s, 1e-12, "(%d,%d)", i, j)
		}
	}
}

func TestSolveAliased(t *testing.T) {

	const n = 6
	a := make([]float64, n*n)
	for i := 0; i < n; i++ {
		a[i*n+i] = 3
		if i > 0 {
			a[i*n+i-1] = 1
			a[(i-1)*n+i] = 1
		}
	}

	m := sparseFromDense(a, n)
	require.NoError(t, Factor(m, make([]int, n)))

	rhs := []float64{1, -2, 0, 4, 0, 1}
	want := make([]float64, n)
	require.NoError(t, Solve(want, m, rhs))

	require.NoError(t, Solve(rhs, m, rhs))
	require.Equal(t, want, rhs)
}

func TestFactorNonTree(t *testing.T) {

	// 4-cycle 0-1-2-3-0: eliminating the last row needs fill-in
	const n = 4
	a := make([]float64, n*n)
	for i := 0; i < n; i++ {
		a[i*n+i] = 4
	}
	for _, e := range [][2]int{{0, 1}, {1, 2}, {2, 3}, {0, 3}} {
		a[e[0]*n+e[1]] = -1
		a[e[1]*n+e[0]] = -1
	}

	m := sparseFromDense(a, n)
	err := Factor(m, make([]int, n))
	require.ErrorIs(t, err, ErrFillIn)
}

func TestFactorMissingDiagonal(t *testing.T) {

	const n = 3
	a := []float64{
		2, 1, 0,
		1, 0, 0, // no diagonal entry in row 1
		0, 0, 2,
	}

	m := sparseFromDense(a, n)
	err := Factor(m, make([]int, n))
	require.ErrorIs(t, err, ErrMissingDiagonal)
}

func TestFactorZeroPivot(t *testing.T) {

	const n = 2
	a := []float64{
		1, 1,
		1, 1e-300, // stored diagonal below the pivot floor
	}

	m := sparseFromDense(a, n)
	err := Factor(m, make([]int, n))
	require.ErrorIs(t, err, ErrZeroPivot)
}
