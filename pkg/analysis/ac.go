package analysis

import (
	"context"

	"github.com/ardentwolf/spicesim/internal/errs"
	"github.com/ardentwolf/spicesim/pkg/circuit"
	"github.com/ardentwolf/spicesim/pkg/matrix"
	"github.com/ardentwolf/spicesim/pkg/mna"
)

// RunAC sweeps angular frequency linearly in steps of
// (omegaStop-omegaStart)/(nPoints-1). The loop's first evaluated point is
// the step value itself rather than omegaStart (the two coincide only
// when omegaStart is 0). An operating-point solve runs first and its
// error, if any, aborts the sweep; the diode's AC stamp is a fixed unit
// conductance, so that solve does not change any AC stamp.
func RunAC(ctx context.Context, c *circuit.Circuit, omegaStart, omegaStop float64, nPoints int) (*ACResult, *mna.Assembly, error) {
	if !c.HasACSource() {
		return nil, nil, errs.Topology("no AC source found", nil)
	}
	if nPoints < 2 {
		return nil, nil, errs.Validation("ac sweep requires at least two points", nil)
	}

	if _, _, err := OperatingPoint(c); err != nil {
		return nil, nil, err
	}

	asm := mna.Build(c)
	result := &ACResult{}
	if asm.Size == 0 {
		return result, asm, nil
	}

	m, err := matrix.NewMatrix(asm.Size)
	if err != nil {
		return nil, nil, errs.Numeric("allocating matrix", err)
	}
	defer m.Destroy()

	step := (omegaStop - omegaStart) / float64(nPoints-1)
	for omega := step; omega <= omegaStop; omega += step {
		if err := ctx.Err(); err != nil {
			return result, asm, err
		}

		m.Clear()
		if err := asm.StampAC(m, c, omega); err != nil {
			return result, asm, err
		}
		solution, err := m.Solve()
		if err != nil {
			return result, asm, errs.Numeric("circuit matrix is singular", err)
		}

		result.Omegas = append(result.Omegas, omega)
		result.Solutions = append(result.Solutions, solution)
	}

	return result, asm, nil
}
