// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cholesky

import (
	"fmt"
	"math"

	"github.com/curioloop/simsolve/sparse"
)

// FactorSparse computes the reverse-order Cholesky factorization
//
//	𝐌 = 𝐋ᵀ𝐋
//
// of a symmetric matrix in compressed-row storage, processing rows from last
// to first. Each row is first shrunk so that its stored range ends exactly at
// the diagonal entry; a row with no diagonal is a structural error reported
// as ErrMissingDiagonal. Folding a row into the rows above it goes through
// sparse.Combine, which is where fill-in is created: the matrix rows must
// carry enough slack capacity to absorb it, and m.Rownnz is rewritten to the
// final per-row counts as part of the result.
//
// Diagonal clamping and the returned rank behave as in the dense Factor.
func FactorSparse(m *sparse.Matrix, minDiag float64, w *Workspace) (rank int, err error) {
	n := m.N
	buf, bufInd := w.scratch(n)

	rownnz, rowadr, colind, data := m.Rownnz, m.Rowadr, m.Colind, m.Data

	// shrink rows so that rownnz ends at the diagonal
	for r := 0; r < n; r++ {
		for rownnz[r] > 0 && colind[rowadr[r]+rownnz[r]-1] > r {
			rownnz[r]--
		}
		if rownnz[r] == 0 || colind[rowadr[r]+rownnz[r]-1] != r {
			return 0, fmt.Errorf("%w: row %d", ErrMissingDiagonal, r)
		}
	}

	rank = n

	// backpass over rows
	for r := n - 1; r >= 0; r-- {
		nnz, adr := rownnz[r], rowadr[r]

		tmp := data[adr+nnz-1]
		if tmp < minDiag {
			tmp = minDiag
			rank--
		}
		data[adr+nnz-1] = math.Sqrt(tmp)
		tmp = one / data[adr+nnz-1]

		// scale row r before the diagonal
		for i := 0; i < nnz-1; i++ {
			data[adr+i] *= tmp
		}

		// fold row r into every row c<r with 𝐌ᵣ𝒸 ≠ 0:
		// 𝐌(c,0:c) = 𝐌(c,0:c) - 𝐌ᵣ𝒸·𝐌(r,0:c)
		for i := 0; i < nnz-1; i++ {
			c := colind[adr+i]
			rownnz[c] = sparse.Combine(data[rowadr[c]:], data[adr:], c+1,
				one, -data[adr+i],
				rownnz[c], i+1, colind[rowadr[c]:], colind[adr:],
				buf, bufInd)
		}
	}
	return rank, nil
}

// SolveSparse solves 𝐋ᵀ𝐋·res = vec given the factor computed by
// FactorSparse: a transpose pass from the last row down, then a forward pass
// from the first row up. Rows whose running residual entry is exactly zero
// are skipped on the transpose pass. res may alias vec.
func SolveSparse(res []float64, m *sparse.Matrix, vec []float64) {
	n := m.N
	if n <= 0 {
		return
	}
	if uint(n) > uint(len(res)) || uint(n) > uint(len(vec)) {
		panic("bound check error")
	}
	if &res[0] != &vec[0] {
		copy(res[:n], vec[:n])
	}

	rownnz, rowadr, colind, data := m.Rownnz, m.Rowadr, m.Colind, m.Data

	// res <- 𝐋⁻ᵀ·res
	for i := n - 1; i >= 0; i-- {
		if res[i] != zero {
			adr, nnz := rowadr[i], rownnz[i]
			res[i] /= data[adr+nnz-1]
			tmp := res[i]
			for j := 0; j < nnz-1; j++ {
				res[colind[adr+j]] -= data[adr+j] * tmp
			}
		}
	}

	// res <- 𝐋⁻¹·res
	for i := 0; i < n; i++ {
		adr, nnz := rowadr[i], rownnz[i]
		if nnz > 1 {
			res[i] -= sparse.Dot(data[adr:], res, nnz-1, colind[adr:])
		}
		res[i] /= data[adr+nnz-1]
	}
}

// UpdateSparse performs the sparse rank-one update 𝐋ᵀ𝐋 ± 𝐱𝐱ᵀ on a factor
// from FactorSparse, touching only the rows picked out by the non-zero
// entries of the sparse vector x (packed values with ascending indices in
// xInd, xNnz entries, capacity n for both).
//
// The sparsity pattern of the matrix is immutable here: a row combine that
// would change a row's non-zero count is a structural error reported as
// ErrPatternChange. The working copy of x, by contrast, absorbs the pattern
// of each row it sweeps through; x and xInd are consumed.
func UpdateSparse(m *sparse.Matrix, x []float64, plus bool, xInd []int, xNnz int, w *Workspace) (rank int, err error) {
	n := m.N
	buf, bufInd := w.scratch(n)

	rownnz, rowadr, colind, data := m.Rownnz, m.Rowadr, m.Colind, m.Data

	rank = n

	// backpass over rows with x(r) ≠ 0
	for i := xNnz - 1; i >= 0; {
		r := xInd[i]
		nnz, adr := rownnz[r], rowadr[r]

		Lrr := data[adr+nnz-1]
		tmp := Lrr * Lrr
		if plus {
			tmp += x[i] * x[i]
		} else {
			tmp -= x[i] * x[i]
		}
		if tmp < minPivot {
			tmp = minPivot
			rank--
		}
		rad := math.Sqrt(tmp)
		c := rad / Lrr
		s := x[i] / Lrr

		data[adr+nnz-1] = rad

		// 𝐌(r,0:r-1) = (𝐌(r,0:r-1) ± s·𝐱(0:r-1)) / c
		sc := s / c
		if !plus {
			sc = -sc
		}
		newNnz := sparse.Combine(data[adr:], x, n, one/c, sc,
			nnz-1, i, colind[adr:], xInd, buf, bufInd)
		if newNnz != nnz-1 {
			return 0, fmt.Errorf("%w: row %d", ErrPatternChange, r)
		}

		// 𝐱(0:r-1) = c·𝐱(0:r-1) - s·𝐌(r,0:r-1)
		newXNnz := sparse.Combine(x, data[adr:], n, c, -s,
			i, nnz-1, xInd, colind[adr:], buf, bufInd)

		// step down, correcting for the evolved pattern of x
		i = i - 1 + (newXNnz - i)
	}
	return rank, nil
}
