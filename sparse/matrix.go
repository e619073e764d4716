// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package sparse provides the compressed-row matrix layout and the
// row-merging primitive shared by the sparse factorizations.
package sparse

// Matrix is a square sparse matrix in compressed-row storage.
//
// Row i occupies Data[Rowadr[i] : Rowadr[i]+Rownnz[i]] with matching column
// indices in Colind, ascending within the row. Rows may be laid out with
// slack between Rowadr[i]+Rownnz[i] and Rowadr[i+1] so that factorization
// can grow a row in place: any fill-in produced while folding rows is
// absorbed into this slack. Exceeding the slack of a row is a caller
// contract violation and trips the bound check in Combine.
//
// Factorizations mutate Rownnz as part of their result: after a sparse
// Cholesky factor each row ends exactly at its diagonal entry.
type Matrix struct {
	N      int
	Rownnz []int
	Rowadr []int
	Colind []int
	Data   []float64
}

// Row returns the stored values and column indices of row i.
func (m *Matrix) Row(i int) ([]float64, []int) {
	adr, nnz := m.Rowadr[i], m.Rownnz[i]
	return m.Data[adr : adr+nnz], m.Colind[adr : adr+nnz]
}
