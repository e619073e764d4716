// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package lu provides a fill-in-free sparse LU factorization and solve for
// matrices whose sparsity graph is a tree. The tree restriction is what
// makes elimination possible without ever growing the sparsity pattern;
// violating it is a caller contract violation, detected explicitly.
package lu

import (
	"errors"
	"fmt"
	"math"

	"github.com/curioloop/simsolve/sparse"
)

// minPivot is the smallest admissible magnitude for an L diagonal element.
const minPivot = 1e-15

var (
	// ErrMissingDiagonal reports a row whose stored range holds no diagonal entry.
	ErrMissingDiagonal = errors.New("lu: missing diagonal element")
	// ErrZeroPivot reports a diagonal element too small to divide by.
	ErrZeroPivot = errors.New("lu: diagonal element too small")
	// ErrFillIn reports an elimination step that would require fill-in,
	// meaning the sparsity graph is not a tree.
	ErrFillIn = errors.New("lu: factorization requires fill-in")
	// ErrStructure reports a sparsity progression mismatch between rows.
	ErrStructure = errors.New("lu: unexpected sparse matrix structure")
)

// Factor computes the in-place reverse-order LU factorization of a
// tree-structured sparse matrix:
//
//	𝐋𝐔 = 𝐋 + 𝐔  with  (𝐔+𝐈)·𝐋 reconstructing the input
//
// Rows are processed from last to first, each keeping a shrinking count of
// remaining entries that must end at the diagonal. For row i, every row j<i
// holding a non-zero at column i is updated by eliminating that entry; the
// two rows must progress through matching sparsity, anything else means the
// tree assumption was violated. scratch must hold at least m.N integers.
func Factor(m *sparse.Matrix, scratch []int) error {
	n := m.N
	if uint(n) > uint(len(scratch)) {
		panic("bound check error")
	}
	remaining := scratch[:n]
	copy(remaining, m.Rownnz[:n])

	rowadr, colind, data := m.Rowadr, m.Colind, m.Data

	for i := n - 1; i >= 0; i-- {
		// last remaining element of row i must be the diagonal
		ii := rowadr[i] + remaining[i] - 1
		remaining[i]--

		if colind[ii] != i {
			return fmt.Errorf("%w: row %d", ErrMissingDiagonal, i)
		}
		if math.Abs(data[ii]) < minPivot {
			return fmt.Errorf("%w: row %d", ErrZeroPivot, i)
		}

		for j := i - 1; j >= 0; j-- {
			// process row j only if (j,i) is non-zero
			ji := rowadr[j] + remaining[j] - 1
			if colind[ji] != i {
				continue
			}
			remaining[j]--

			// (j,i) = (j,i) / (i,i)
			data[ji] /= data[ii]
			lu := data[ji]

			// (j,k) = (j,k) - (i,k)·(j,i) for k<i
			icnt, jcnt := rowadr[i], rowadr[j]
			for jcnt < rowadr[j]+remaining[j] {
				switch {
				case colind[icnt] == colind[jcnt]:
					data[jcnt] -= data[icnt] * lu
					icnt++
					jcnt++
				case colind[icnt] > colind[jcnt]:
					// only (j,k) non-zero
					jcnt++
				default:
					// only (i,k) non-zero
					return fmt.Errorf("%w: rows %d and %d", ErrFillIn, j, i)
				}
			}
			if icnt != rowadr[i]+remaining[i] || jcnt != rowadr[j]+remaining[j] {
				return fmt.Errorf("%w: row %d", ErrStructure, j)
			}
		}
	}

	// every remaining counter must have landed on the diagonal
	for i := 0; i < n; i++ {
		if remaining[i] < 0 || colind[rowadr[i]+remaining[i]] != i {
			return fmt.Errorf("%w: row %d", ErrStructure, i)
		}
	}
	return nil
}

// Solve solves 𝐌·res = vec given the factorization computed by Factor:
// first (𝐔+𝐈)·y = vec scanning each row's entries above the diagonal, then
// 𝐋·res = y scanning entries below the diagonal and dividing by the explicit
// L diagonal. Failing to land on the diagonal in either pass is a structural
// error. res may alias vec.
func Solve(res []float64, m *sparse.Matrix, vec []float64) error {
	n := m.N
	if uint(n) > uint(len(res)) || uint(n) > uint(len(vec)) {
		panic("bound check error")
	}

	rownnz, rowadr, colind, data := m.Rownnz, m.Rowadr, m.Colind, m.Data

	// solve (𝐔+𝐈)·res = vec, unit diagonal implicit
	for i := n - 1; i >= 0; i-- {
		res[i] = vec[i]

		j := rownnz[i] - 1
		for colind[rowadr[i]+j] > i {
			res[i] -= res[colind[rowadr[i]+j]] * data[rowadr[i]+j]
			j--
		}
		if colind[rowadr[i]+j] != i {
			return fmt.Errorf("%w: diagonal of U not reached at row %d", ErrStructure, i)
		}
	}

	// solve 𝐋·res = res
	for i := 0; i < n; i++ {
		j := 0
		for colind[rowadr[i]+j] < i {
			res[i] -= res[colind[rowadr[i]+j]] * data[rowadr[i]+j]
			j++
		}
		if colind[rowadr[i]+j] != i {
			return fmt.Errorf("%w: diagonal of L not reached at row %d", ErrStructure, i)
		}
		res[i] /= data[rowadr[i]+j]
	}
	return nil
}
