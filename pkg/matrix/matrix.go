// Package matrix wraps the sparse MNA solver for the assembler: a single
// real-valued system shared by operating-point, transient and AC analysis,
// since the AC stamps in this engine are magnitude-only real admittances
// rather than true complex impedances.
package matrix

import (
	"fmt"

	"github.com/edp1096/sparse"
)

// Matrix is a square MNA system of the given size. Row and column 0 is a
// discarded sink: every ground node maps there, so a stamp that happens to
// touch ground is simply absorbed rather than requiring a ground special
// case at every call site.
type Matrix struct {
	Size   int
	matrix *sparse.Matrix
	rhs    []float64
	config *sparse.Configuration
}

// NewMatrix allocates a size x size real MNA system.
func NewMatrix(size int) (*Matrix, error) {
	config := &sparse.Configuration{
		Real:           true,
		Complex:        false,
		Expandable:     true,
		ModifiedNodal:  true,
		TiesMultiplier: 5,
		PrinterWidth:   140,
	}

	mat, err := sparse.Create(int64(size), config)
	if err != nil {
		return nil, fmt.Errorf("creating sparse matrix: %w", err)
	}

	return &Matrix{
		Size:   size,
		matrix: mat,
		rhs:    make([]float64, size+1),
		config: config,
	}, nil
}

// AddElement accumulates value into the 1-based (i,j) matrix entry. i or j
// equal to 0 (ground) is silently absorbed.
func (m *Matrix) AddElement(i, j int, value float64) {
	if i == 0 || j == 0 {
		return
	}
	if i < 0 || j < 0 || i > m.Size || j > m.Size {
		return
	}
	m.matrix.GetElement(int64(i), int64(j)).Real += value
}

// AddRHS accumulates value into the 1-based right-hand-side entry i.
func (m *Matrix) AddRHS(i int, value float64) {
	if i == 0 {
		return
	}
	if i < 0 || i > m.Size {
		return
	}
	m.rhs[i] += value
}

// LoadGmin adds a small conductance to every diagonal entry, used by the
// nonlinear solver's minimum-conductance shunt.
func (m *Matrix) LoadGmin(gmin float64) {
	for i := 1; i <= m.Size; i++ {
		if diag := m.matrix.Diags[i]; diag != nil {
			diag.Real += gmin
		}
	}
}

// Clear zeroes the matrix and RHS vector for the next stamp pass.
func (m *Matrix) Clear() {
	m.matrix.Clear()
	for i := range m.rhs {
		m.rhs[i] = 0
	}
}

// Solve factors and solves the system, returning the 1-based solution
// vector (index 0 unused). A nil solution with a non-nil error signals
// singularity — the caller's contract mirrors the zero-pivot convention
// the underlying solver itself uses.
func (m *Matrix) Solve() ([]float64, error) {
	if err := m.matrix.Factor(); err != nil {
		return nil, fmt.Errorf("matrix factorization failed: %w", err)
	}
	solution, err := m.matrix.Solve(m.rhs)
	if err != nil {
		return nil, fmt.Errorf("matrix solve failed: %w", err)
	}
	return solution, nil
}

// RHS returns the current right-hand-side vector.
func (m *Matrix) RHS() []float64 { return m.rhs }

// Destroy releases the underlying sparse matrix's resources.
func (m *Matrix) Destroy() {
	if m.matrix != nil {
		m.matrix.Destroy()
	}
}
