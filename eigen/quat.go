// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package eigen

import "math"

// quat2Mat converts a unit quaternion (w,x,y,z) to a 3×3 rotation matrix
// in row-major storage.
func quat2Mat(res, q []float64) {
	q00, q11, q22, q33 := q[0]*q[0], q[1]*q[1], q[2]*q[2], q[3]*q[3]

	res[0] = q00 + q11 - q22 - q33
	res[4] = q00 - q11 + q22 - q33
	res[8] = q00 - q11 - q22 + q33

	res[1] = 2 * (q[1]*q[2] - q[0]*q[3])
	res[2] = 2 * (q[1]*q[3] + q[0]*q[2])
	res[3] = 2 * (q[1]*q[2] + q[0]*q[3])
	res[5] = 2 * (q[2]*q[3] - q[0]*q[1])
	res[6] = 2 * (q[1]*q[3] - q[0]*q[2])
	res[7] = 2 * (q[2]*q[3] + q[0]*q[1])
}

// mulQuat composes two rotations: res = qa ∘ qb (Hamilton product).
func mulQuat(res, qa, qb []float64) {
	res[0] = qa[0]*qb[0] - qa[1]*qb[1] - qa[2]*qb[2] - qa[3]*qb[3]
	res[1] = qa[0]*qb[1] + qa[1]*qb[0] + qa[2]*qb[3] - qa[3]*qb[2]
	res[2] = qa[0]*qb[2] - qa[1]*qb[3] + qa[2]*qb[0] + qa[3]*qb[1]
	res[3] = qa[0]*qb[3] + qa[1]*qb[2] - qa[2]*qb[1] + qa[3]*qb[0]
}

// normalize4 rescales q to unit length, falling back to the identity
// rotation when the norm is degenerate.
func normalize4(q []float64) {
	norm := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if norm < 1e-15 {
		q[0], q[1], q[2], q[3] = 1, 0, 0, 0
	} else if norm != 1 {
		s := 1 / norm
		q[0] *= s
		q[1] *= s
		q[2] *= s
		q[3] *= s
	}
}

// mulMatTMat3 computes res = 𝐀ᵀ𝐁 for 3×3 row-major matrices.
func mulMatTMat3(res, a, b []float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			res[3*i+j] = a[i]*b[j] + a[3+i]*b[3+j] + a[6+i]*b[6+j]
		}
	}
}

// mulMatMat3 computes res = 𝐀𝐁 for 3×3 row-major matrices.
func mulMatMat3(res, a, b []float64) {
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			res[3*i+j] = a[3*i]*b[j] + a[3*i+1]*b[3+j] + a[3*i+2]*b[6+j]
		}
	}
}
