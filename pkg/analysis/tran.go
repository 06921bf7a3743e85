package analysis

import (
	"context"

	"github.com/ardentwolf/spicesim/internal/errs"
	"github.com/ardentwolf/spicesim/pkg/circuit"
	"github.com/ardentwolf/spicesim/pkg/matrix"
	"github.com/ardentwolf/spicesim/pkg/mna"
)

const hMin = 1e-12

// RunTransient advances the circuit from tStart to tStop with adaptive
// step halving. If hMax is 0 it is substituted with (tStop-tStart)/100.
// A step that fails to converge is retried at half the step size; once h
// falls below hMin the run aborts, returning whatever steps it already
// accepted alongside the error.
func RunTransient(ctx context.Context, c *circuit.Circuit, tStart, tStop, hMax float64) (*TransientResult, *mna.Assembly, error) {
	if hMax == 0 {
		hMax = (tStop - tStart) / 100
	}

	if !c.HasGroundReference() {
		return nil, nil, errs.Topology("circuit has no ground reference", nil)
	}
	for _, d := range c.Devices() {
		d.Reset()
	}

	asm := mna.Build(c)
	result := &TransientResult{}
	if asm.Size == 0 {
		return result, asm, nil
	}

	m, err := matrix.NewMatrix(asm.Size)
	if err != nil {
		return nil, nil, errs.Numeric("allocating matrix", err)
	}
	defer m.Destroy()

	t := tStart
	h := hMax
	baseCtx := baseContext(asm)

	for t < tStop {
		if err := ctx.Err(); err != nil {
			return result, asm, err
		}

		step := h
		if t+step > tStop {
			step = tStop - t
		}

		solution, err := newtonRaphson(m, asm, c, t+step, step)
		if err != nil {
			if h/2 < hMin {
				return result, asm, errs.Convergence("step halving reached minimum step size", err)
			}
			h /= 2
			continue
		}

		t += step
		result.Times = append(result.Times, t)
		result.Solutions = append(result.Solutions, solution)
		for _, d := range c.Devices() {
			d.UpdateState(solution, baseCtx)
		}
		h = hMax
	}

	return result, asm, nil
}
