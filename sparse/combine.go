// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package sparse

// Combine merges two sparse rows into the first:
//
//	dst = a*dst + b*src
//
// Both rows are given as packed value slices with ascending column indices
// (dstInd, srcInd) and entry counts (dstNnz, srcNnz); n bounds the column
// indices. The merged sparsity pattern is the union of the two inputs, so
// the result may hold more entries than either; dst and dstInd must have
// enough slack capacity to receive it. The merge is staged through the
// caller-supplied scratch buf/bufInd of length at least n, which keeps the
// operation safe when dst entries shift position.
//
// Returns the non-zero count of the merged row.
func Combine(dst, src []float64, n int, a, b float64,
	dstNnz, srcNnz int, dstInd, srcInd []int,
	buf []float64, bufInd []int) int {

	if dstNnz > n || srcNnz > n || n > len(buf) || n > len(bufInd) {
		panic("bound check error")
	}

	i, j, k := 0, 0, 0
	for i < dstNnz && j < srcNnz {
		ci, cj := dstInd[i], srcInd[j]
		switch {
		case ci == cj:
			buf[k], bufInd[k] = a*dst[i]+b*src[j], ci
			i++
			j++
		case ci < cj:
			buf[k], bufInd[k] = a*dst[i], ci
			i++
		default:
			buf[k], bufInd[k] = b*src[j], cj
			j++
		}
		k++
	}
	for ; i < dstNnz; i, k = i+1, k+1 {
		buf[k], bufInd[k] = a*dst[i], dstInd[i]
	}
	for ; j < srcNnz; j, k = j+1, k+1 {
		buf[k], bufInd[k] = b*src[j], srcInd[j]
	}

	if k > len(dst) || k > len(dstInd) {
		panic("bound check error")
	}
	copy(dst[:k], buf[:k])
	copy(dstInd[:k], bufInd[:k])
	return k
}

// Dot computes the dot product of a packed sparse row with a dense vector.
func Dot(vals, vec []float64, nnz int, ind []int) (dot float64) {
	if nnz > len(vals) || nnz > len(ind) {
		panic("bound check error")
	}
	for i := 0; i < nnz; i++ {
		dot += vals[i] * vec[ind[i]]
	}
	return
}
