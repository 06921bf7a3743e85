package analysis

import (
	"github.com/ardentwolf/spicesim/internal/errs"
	"github.com/ardentwolf/spicesim/pkg/circuit"
	"github.com/ardentwolf/spicesim/pkg/matrix"
	"github.com/ardentwolf/spicesim/pkg/mna"
)

// OperatingPoint runs a single DC solve (time=0, step=0, which every
// device's transient stamp treats as the open-capacitor/short-inductor
// DC case) and returns the solution vector together with the assembly
// used to produce it. It also leaves every device's state (including each
// nonlinear device's linearization point) at the solved operating point.
func OperatingPoint(c *circuit.Circuit) ([]float64, *mna.Assembly, error) {
	if !c.HasGroundReference() {
		return nil, nil, errs.Topology("circuit has no ground reference", nil)
	}

	for _, d := range c.Devices() {
		d.Reset()
	}

	asm := mna.Build(c)
	if asm.Size == 0 {
		return []float64{}, asm, nil
	}

	m, err := matrix.NewMatrix(asm.Size)
	if err != nil {
		return nil, nil, errs.Numeric("allocating matrix", err)
	}
	defer m.Destroy()

	solution, err := newtonRaphson(m, asm, c, 0, 0)
	if err != nil {
		return nil, nil, err
	}

	ctx := baseContext(asm)
	for _, d := range c.Devices() {
		d.UpdateState(solution, ctx)
	}

	return solution, asm, nil
}
