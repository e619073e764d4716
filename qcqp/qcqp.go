// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package qcqp solves the trust-region-style subproblem
//
//	minimize ½ 𝐱ᵀ𝐀𝐱 + 𝐱ᵀ𝐛  subject to  ∑ (𝐱ᵢ/𝐝ᵢ)² ≤ r²
//
// used to project an unconstrained force/impulse estimate onto an elliptical
// (friction-cone-like) feasible region. Rescaling by diag(d) turns the
// constraint into the unit ball, after which Newton iteration on the secular
// equation in the Lagrange multiplier λ finds the boundary solution (the
// same mathematical shape as the Moré–Sorensen iteration).
//
// The hot 2-D and 3-D cases are hand-unrolled on explicit small inverses;
// the general case handles n ≤ 5 through the dense Cholesky factorization.
package qcqp

import (
	"errors"
	"fmt"

	"github.com/curioloop/simsolve/cholesky"
)

const (
	// newtonIter caps the Newton iteration on the secular equation.
	newtonIter = 20
	// spdEPS is the positive-definiteness threshold on det(𝐀+λ𝐈),
	// or on its Cholesky pivots in the general path.
	spdEPS = 1e-10
	// convEPS is the convergence threshold on the secular residual and on
	// the Newton step magnitude.
	convEPS = 1e-10
	// maxDim is the hard dimension cap of the general solver.
	maxDim = 5
)

// ErrDimension reports a problem size beyond the hard cap of SolveN.
var ErrDimension = errors.New("qcqp: dimension exceeds hard cap")

// Solve2 solves the 2-dimensional QCQP with a row-major 2×2 symmetric a
// (entries a[0], a[1], a[3] are read). Returns whether the constraint is
// active at the solution; an indefinite 𝐀+λ𝐈 yields a zero res and false.
func Solve2(res, a, b, d []float64, r float64) bool {
	if len(res) < 2 || len(a) < 4 || len(b) < 2 || len(d) < 2 {
		panic("bound check error")
	}

	// scale 𝐀,𝐛 so that the constraint becomes 𝐱ᵀ𝐱 ≤ r²
	b1, b2 := b[0]*d[0], b[1]*d[1]
	a11 := a[0] * d[0] * d[0]
	a22 := a[3] * d[1] * d[1]
	a12 := a[1] * d[0] * d[1]

	var v1, v2 float64
	la := 0.0
	for iter := 0; iter < newtonIter; iter++ {
		det := (a11+la)*(a22+la) - a12*a12
		if det < spdEPS {
			res[0], res[1] = 0, 0
			return false
		}

		// 𝐏 = (𝐀+λ𝐈)⁻¹
		detinv := 1 / det
		p11 := (a22 + la) * detinv
		p22 := (a11 + la) * detinv
		p12 := -a12 * detinv

		// 𝐯 = -𝐏𝐛
		v1 = -p11*b1 - p12*b2
		v2 = -p12*b1 - p22*b2

		// secular residual 𝐯ᵀ𝐯 - r²; also accepts a solution already
		// inside the constraint set
		val := v1*v1 + v2*v2 - r*r
		if val < convEPS {
			break
		}

		// d(val)/dλ = -2·𝐯ᵀ𝐏𝐯
		deriv := -2 * (p11*v1*v1 + 2*p12*v1*v2 + p22*v2*v2)

		delta := -val / deriv
		if delta < convEPS {
			break
		}
		la += delta
	}

	// undo scaling
	res[0] = v1 * d[0]
	res[1] = v2 * d[1]
	return la != 0
}

// Solve3 solves the 3-dimensional QCQP with a row-major 3×3 symmetric a
// (the upper triangle a[0], a[1], a[2], a[4], a[5], a[8] is read).
// Semantics match Solve2.
func Solve3(res, a, b, d []float64, r float64) bool {
	if len(res) < 3 || len(a) < 9 || len(b) < 3 || len(d) < 3 {
		panic("bound check error")
	}

	// scale 𝐀,𝐛 so that the constraint becomes 𝐱ᵀ𝐱 ≤ r²
	b1, b2, b3 := b[0]*d[0], b[1]*d[1], b[2]*d[2]
	a11 := a[0] * d[0] * d[0]
	a22 := a[4] * d[1] * d[1]
	a33 := a[8] * d[2] * d[2]
	a12 := a[1] * d[0] * d[1]
	a13 := a[2] * d[0] * d[2]
	a23 := a[5] * d[1] * d[2]

	var v1, v2, v3 float64
	la := 0.0
	for iter := 0; iter < newtonIter; iter++ {
		// unscaled adjugate of 𝐀+λ𝐈
		p11 := (a22+la)*(a33+la) - a23*a23
		p22 := (a11+la)*(a33+la) - a13*a13
		p33 := (a11+la)*(a22+la) - a12*a12
		p12 := a13*a23 - a12*(a33+la)
		p13 := a12*a23 - a13*(a22+la)
		p23 := a12*a13 - a23*(a11+la)

		det := (a11+la)*p11 + a12*p12 + a13*p13
		if det < spdEPS {
			res[0], res[1], res[2] = 0, 0, 0
			return false
		}

		// 𝐏 = (𝐀+λ𝐈)⁻¹
		detinv := 1 / det
		p11 *= detinv
		p22 *= detinv
		p33 *= detinv
		p12 *= detinv
		p13 *= detinv
		p23 *= detinv

		// 𝐯 = -𝐏𝐛
		v1 = -p11*b1 - p12*b2 - p13*b3
		v2 = -p12*b1 - p22*b2 - p23*b3
		v3 = -p13*b1 - p23*b2 - p33*b3

		val := v1*v1 + v2*v2 + v3*v3 - r*r
		if val < convEPS {
			break
		}

		// d(val)/dλ = -2·𝐯ᵀ𝐏𝐯
		deriv := -2*(p11*v1*v1+p22*v2*v2+p33*v3*v3) -
			4*(p12*v1*v2+p13*v1*v3+p23*v2*v3)

		delta := -val / deriv
		if delta < convEPS {
			break
		}
		la += delta
	}

	// undo scaling
	res[0] = v1 * d[0]
	res[1] = v2 * d[1]
	res[2] = v3 * d[2]
	return la != 0
}

// SolveN solves the general QCQP for n ≤ 5 through the dense Cholesky
// factorization: each Newton round factors 𝐀+λ𝐈, a rank below n means the
// matrix is not positive definite at this λ (zero res, constraint inactive),
// and the secular derivative -2·𝐯ᵀ(𝐀+λ𝐈)⁻¹𝐯 comes from a second Cholesky
// solve against 𝐯 itself.
func SolveN(res, a, b, d []float64, r float64, n int) (bool, error) {
	if n > maxDim {
		return false, fmt.Errorf("%w: n=%d > %d", ErrDimension, n, maxDim)
	}
	if len(res) < n || len(a) < n*n || len(b) < n || len(d) < n {
		panic("bound check error")
	}

	var as, ala [maxDim * maxDim]float64
	var bs, tmp [maxDim]float64

	// scale 𝐀,𝐛 so that the constraint becomes 𝐱ᵀ𝐱 ≤ r²
	for i := 0; i < n; i++ {
		bs[i] = b[i] * d[i]
		for j := 0; j < n; j++ {
			as[i*n+j] = a[i*n+j] * d[i] * d[j]
		}
	}

	la := 0.0
	for iter := 0; iter < newtonIter; iter++ {
		// factor 𝐀+λ𝐈, rank below n means not positive definite
		copy(ala[:n*n], as[:n*n])
		for i := 0; i < n; i++ {
			ala[i*(n+1)] += la
		}
		if cholesky.Factor(ala[:], n, spdEPS) < n {
			for i := 0; i < n; i++ {
				res[i] = 0
			}
			return false, nil
		}

		// 𝐯 = -(𝐀+λ𝐈)⁻¹𝐛
		cholesky.Solve(res, ala[:], bs[:n], n)
		val := -r * r
		for i := 0; i < n; i++ {
			res[i] = -res[i]
			val += res[i] * res[i]
		}
		if val < convEPS {
			break
		}

		// d(val)/dλ = -2·𝐯ᵀ(𝐀+λ𝐈)⁻¹𝐯
		cholesky.Solve(tmp[:n], ala[:], res[:n], n)
		deriv := 0.0
		for i := 0; i < n; i++ {
			deriv += res[i] * tmp[i]
		}
		deriv *= -2

		delta := -val / deriv
		if delta < convEPS {
			break
		}
		la += delta
	}

	// undo scaling
	for i := 0; i < n; i++ {
		res[i] *= d[i]
	}
	return la != 0, nil
}
