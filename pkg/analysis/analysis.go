// Package analysis drives the three supported runs — a single operating
// point, a transient sweep over time, and an AC sweep over angular
// frequency — on top of the assembler and matrix packages. The operating
// point and every transient step share the same Newton-Raphson core: linear
// circuits take a one-shot solve, circuits with a nonlinear device iterate
// until the solution settles. The AC sweep runs an operating point first,
// then solves each frequency point once.
package analysis

import (
	"math"

	"github.com/ardentwolf/spicesim/internal/errs"
	"github.com/ardentwolf/spicesim/pkg/circuit"
	"github.com/ardentwolf/spicesim/pkg/device"
	"github.com/ardentwolf/spicesim/pkg/matrix"
	"github.com/ardentwolf/spicesim/pkg/mna"
)

const (
	nrMaxIter = 100
	nrTol     = 1e-6
	gminShunt = 1e-12
)

// TransientResult is the raw output of a transient run: the solution
// vector accepted at each time step, in increasing t order.
type TransientResult struct {
	Times     []float64
	Solutions [][]float64
}

// ACResult is the raw output of an AC sweep: the solution vector computed
// at each angular frequency, in increasing omega order.
type ACResult struct {
	Omegas    []float64
	Solutions [][]float64
}

func hasNonlinear(c *circuit.Circuit) bool {
	for _, d := range c.Devices() {
		if d.IsNonlinear() {
			return true
		}
	}
	return false
}

func l2Norm(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum)
}

func baseContext(asm *mna.Assembly) device.Context {
	return device.Context{NodeRow: asm.NodeRow, BranchRow: asm.BranchRow}
}

// stampAndSolve runs one stamping pass at (time, step) and solves it.
func stampAndSolve(m *matrix.Matrix, asm *mna.Assembly, c *circuit.Circuit, time, step float64) ([]float64, error) {
	m.Clear()
	if err := asm.StampTransient(m, c, time, step); err != nil {
		return nil, err
	}
	m.LoadGmin(gminShunt)
	solution, err := m.Solve()
	if err != nil {
		return nil, errs.Numeric("circuit matrix is singular", err)
	}
	return solution, nil
}

// updateNonlinear re-linearizes every nonlinear device about the latest
// iterate. It never touches a time-dependent device's history state —
// that advance only happens once a step is accepted.
func updateNonlinear(c *circuit.Circuit, solution []float64, ctx device.Context) {
	for _, d := range c.Devices() {
		if d.IsNonlinear() {
			d.UpdateState(solution, ctx)
		}
	}
}

// newtonRaphson solves the system at (time, step). Circuits with no
// nonlinear device take the fast path: one stamp, one solve. Otherwise it
// iterates, re-linearizing nonlinear devices from each iterate, until
// consecutive solutions are within nrTol in the L2 norm or the iteration
// cap is reached.
func newtonRaphson(m *matrix.Matrix, asm *mna.Assembly, c *circuit.Circuit, time, step float64) ([]float64, error) {
	if !hasNonlinear(c) {
		return stampAndSolve(m, asm, c, time, step)
	}

	ctx := baseContext(asm)
	var prev []float64
	for iter := 0; iter < nrMaxIter; iter++ {
		solution, err := stampAndSolve(m, asm, c, time, step)
		if err != nil {
			return nil, err
		}
		if prev != nil && l2Norm(solution, prev) < nrTol {
			return solution, nil
		}
		prev = solution
		updateNonlinear(c, solution, ctx)
	}
	return nil, errs.Convergence("newton-raphson did not converge", nil)
}
