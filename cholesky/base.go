// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package cholesky provides dense and sparse Cholesky factorization, solve
// and rank-one update for the symmetric systems assembled by the simulator
// (mass matrices, constraint systems). All routines operate in place on
// caller-owned buffers and never allocate on the hot path.
package cholesky

import "errors"

const (
	zero = 0.0
	one  = 1.0
	// minPivot is the numerical-stability floor applied to the squared
	// diagonal during rank-one updates.
	minPivot = 1e-15
)

var (
	// ErrMissingDiagonal reports a sparse row whose stored range holds no
	// diagonal entry, which makes the reverse-order factorization impossible.
	ErrMissingDiagonal = errors.New("cholesky: sparse matrix missing diagonal entry")
	// ErrPatternChange reports fill-in produced by a rank-one update, which
	// assumes an immutable sparsity pattern.
	ErrPatternChange = errors.New("cholesky: sparsity pattern changed during rank-one update")
)

// Workspace holds the scratch buffers borrowed for the duration of one
// sparse factorization or update call. To avoid race conditions, separate
// workspaces need to be created for each goroutine, but one workspace may be
// reused across calls on matrices of order up to n.
type Workspace struct {
	ind []int
	val []float64
}

// NewWorkspace allocates scratch for sparse operations on matrices of order
// up to n.
func NewWorkspace(n int) *Workspace {
	return &Workspace{ind: make([]int, n), val: make([]float64, n)}
}

func (w *Workspace) scratch(n int) ([]float64, []int) {
	if w == nil || n > len(w.ind) || n > len(w.val) {
		panic("workspace dimension not match matrix")
	}
	return w.val[:n], w.ind[:n]
}
