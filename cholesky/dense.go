// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package cholesky

import (
	"math"
)

// Factor computes the in-place Cholesky factorization
//
//	𝐌 = 𝐋𝐋ᵀ
//
// of the symmetric n×n matrix mat stored row-major; only the lower triangle
// and diagonal are referenced and the lower triangle holds 𝐋 on return.
//
// A Schur-complement diagonal falling below minDiag is clamped to minDiag
// and the returned rank is decremented, so a valid triangular factor is
// produced for any symmetric input. Callers use rank < n to diagnose a
// (numerically) non-positive-definite matrix. Cost is O(n³/3).
func Factor(mat []float64, n int, minDiag float64) (rank int) {
	if uint(n*n) > uint(len(mat)) {
		panic("bound check error")
	}

	rank = n
	for j := 0; j < n; j++ {
		// Schur-complement diagonal d = 𝐌ⱼⱼ - ∑𝐋ⱼₖ² (k < j)
		tmp := mat[j*(n+1)]
		if j > 0 {
			tmp -= ddot(mat[j*n:], mat[j*n:], j)
		}
		if tmp < minDiag {
			tmp = minDiag
			rank--
		}
		mat[j*(n+1)] = math.Sqrt(tmp)

		tmp = one / mat[j*(n+1)]
		for i := j + 1; i < n; i++ {
			mat[i*n+j] = (mat[i*n+j] - ddot(mat[i*n:], mat[j*n:], j)) * tmp
		}
	}
	return rank
}

// Solve solves 𝐋𝐋ᵀ·res = vec given the factor computed by Factor,
// by forward then backward substitution. res may alias vec.
func Solve(res, mat, vec []float64, n int) {
	if n <= 0 {
		return
	}
	if uint(n*n) > uint(len(mat)) || uint(n) > uint(len(res)) || uint(n) > uint(len(vec)) {
		panic("bound check error")
	}
	if &res[0] != &vec[0] {
		copy(res[:n], vec[:n])
	}

	// forward substitution: 𝐋·res = vec
	for i := 0; i < n; i++ {
		if i > 0 {
			res[i] -= ddot(mat[i*n:], res, i)
		}
		res[i] /= mat[i*(n+1)]
	}

	// backward substitution: 𝐋ᵀ·res = res
	for i := n - 1; i >= 0; i-- {
		for j := i + 1; j < n; j++ {
			res[i] -= mat[j*n+i] * res[j]
		}
		res[i] /= mat[i*(n+1)]
	}
}

// Update performs the rank-one update of a Cholesky factor
//
//	𝐋𝐋ᵀ ± 𝐱𝐱ᵀ
//
// in O(n²) via sequential hyperbolic/Givens rotations, avoiding a full
// refactorization after a small perturbation. mat must hold a valid factor
// from Factor; x is consumed as working storage. A squared diagonal falling
// below the stability floor is clamped and the returned rank decremented.
func Update(mat, x []float64, n int, plus bool) (rank int) {
	if uint(n*n) > uint(len(mat)) || uint(n) > uint(len(x)) {
		panic("bound check error")
	}

	rank = n
	for k := 0; k < n; k++ {
		if x[k] == zero {
			continue
		}

		// rotation coefficients from the new diagonal r² = 𝐋ₖₖ² ± xₖ²
		Lkk := mat[k*(n+1)]
		tmp := Lkk * Lkk
		if plus {
			tmp += x[k] * x[k]
		} else {
			tmp -= x[k] * x[k]
		}
		if tmp < minPivot {
			tmp = minPivot
			rank--
		}
		r := math.Sqrt(tmp)
		c := r / Lkk
		cinv := one / c
		s := x[k] / Lkk

		mat[k*(n+1)] = r

		if plus {
			for i := k + 1; i < n; i++ {
				mat[i*n+k] = (mat[i*n+k] + s*x[i]) * cinv
			}
		} else {
			for i := k + 1; i < n; i++ {
				mat[i*n+k] = (mat[i*n+k] - s*x[i]) * cinv
			}
		}
		for i := k + 1; i < n; i++ {
			x[i] = c*x[i] - s*mat[i*n+k]
		}
	}
	return rank
}
