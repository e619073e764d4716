// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package eigen provides the eigen-decomposition of symmetric 3×3 matrices
// used to decompose strain tensors for elastic materials. The iteration is
// a Jacobi diagonalization parametrized by a unit quaternion, so the
// eigenvector basis stays exactly orthonormal throughout.
package eigen

import "math"

const (
	// eigEPS bounds both the largest admissible off-diagonal element at
	// convergence and the distance of the rotation cosine from 1.
	eigEPS = 1e-12
	// maxIter caps the Jacobi sweep count.
	maxIter = 500
)

// cos(π/4) = sin(π/4), used to realize eigenvalue swaps as 90° rotations.
const halfSqrt2 = 0.707106781186548

// Eig3 computes the eigen-decomposition of the symmetric 3×3 matrix mat
// (row-major, len 9):
//
//	mat = 𝐕·diag(eigval)·𝐕ᵀ
//
// On return eigval (len 3) holds the eigenvalues in descending order,
// eigvec (len 9) the matching orthonormal eigenvectors as the columns of a
// rotation matrix, and quat (len 4) the unit quaternion encoding that
// rotation. The return value is the number of Jacobi iterations used.
//
// Each iteration rotates away the largest off-diagonal element of
// 𝐃 = 𝐕ᵀ·mat·𝐕 with a closed-form 2×2 symmetric Schur angle, composing the
// incremental rotation into the running quaternion. Sorting is realized by
// 90° quaternion rotations about the un-swapped axis, which keeps the
// eigenvectors consistent with the sorted eigenvalues.
//
// Golub & Van Loan, 'Matrix Computations', 4th ed., §8.5 (Jacobi methods).
func Eig3(eigval, eigvec, quat, mat []float64) int {
	if len(eigval) < 3 || len(eigvec) < 9 || len(quat) < 4 || len(mat) < 9 {
		panic("bound check error")
	}

	var d, tmp [9]float64
	var rot, comp [4]float64

	// start from the identity frame
	quat[0], quat[1], quat[2], quat[3] = 1, 0, 0, 0

	iter := 0
	for ; iter < maxIter; iter++ {
		// 𝐃 = 𝐕ᵀ·mat·𝐕 for the current basis
		quat2Mat(eigvec, quat)
		mulMatTMat3(tmp[:], eigvec, mat)
		mulMatMat3(d[:], tmp[:], eigvec)

		eigval[0], eigval[1], eigval[2] = d[0], d[4], d[8]

		// largest off-diagonal element picks the rotation plane (rk,ck)
		// and the rotation axis rotk orthogonal to it
		var rk, ck, rotk int
		if math.Abs(d[1]) > math.Abs(d[2]) && math.Abs(d[1]) > math.Abs(d[5]) {
			rk, ck, rotk = 0, 1, 2
		} else if math.Abs(d[2]) > math.Abs(d[5]) {
			rk, ck, rotk = 0, 2, 1
		} else {
			rk, ck, rotk = 1, 2, 0
		}
		if math.Abs(d[3*rk+ck]) < eigEPS {
			break
		}

		// closed-form 2×2 symmetric Schur angle, stable sign-aware form
		tau := (d[4*ck] - d[4*rk]) / (2 * d[3*rk+ck])
		var t float64
		if tau >= 0 {
			t = 1 / (tau + math.Sqrt(1+tau*tau))
		} else {
			t = -1 / (-tau + math.Sqrt(1+tau*tau))
		}
		c := 1 / math.Sqrt(1+t*t)
		if c > 1-eigEPS {
			break
		}

		// incremental rotation about axis rotk as a quaternion
		rot = [4]float64{}
		if tau >= 0 {
			rot[rotk+1] = -math.Sqrt(0.5 - 0.5*c)
		} else {
			rot[rotk+1] = math.Sqrt(0.5 - 0.5*c)
		}
		if rotk == 1 {
			rot[rotk+1] = -rot[rotk+1]
		}
		rot[0] = math.Sqrt(1 - rot[rotk+1]*rot[rotk+1])
		normalize4(rot[:])

		mulQuat(comp[:], quat, rot[:])
		copy(quat[:4], comp[:])
		normalize4(quat)
	}

	// sort eigenvalues in decreasing order: bubble pass over (0,1),(1,2),(0,1)
	for j := 0; j < 3; j++ {
		j1 := j % 2
		if eigval[j1] < eigval[j1+1] {
			eigval[j1], eigval[j1+1] = eigval[j1+1], eigval[j1]

			// 90° rotation about the un-swapped axis
			rot = [4]float64{}
			rot[0] = halfSqrt2
			rot[(j1+2)%3+1] = halfSqrt2
			mulQuat(comp[:], quat, rot[:])
			copy(quat[:4], comp[:])
			normalize4(quat)
		}
	}

	quat2Mat(eigvec, quat)
	return iter
}
