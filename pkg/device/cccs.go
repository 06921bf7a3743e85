package device

import (
	"github.com/ardentwolf/spicesim/internal/errs"
	"github.com/ardentwolf/spicesim/pkg/matrix"
)

// CCCS is a current-controlled current source: I = gain * I(CtrlName),
// drawn out of n1 and injected into n2. Like CCVS, the controlling branch row
// is resolved at stamp time rather than construction time.
type CCCS struct {
	BaseDevice
	CtrlName string
	Gain     float64
}

func NewCCCS(name string, n1, n2 int, ctrlName string, gain float64) *CCCS {
	return &CCCS{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: gain},
		CtrlName:   ctrlName,
		Gain:       gain,
	}
}

func (f *CCCS) TypeKey() string { return "F" }

func (f *CCCS) stamp(m *matrix.Matrix, ctx Context) error {
	ctrlRow, ok := ctx.BranchRow[f.CtrlName]
	if !ok {
		return errs.Reference("CCCS "+f.name+": controlling element "+f.CtrlName+" not found", nil)
	}

	r1, r2 := ctx.row(f.N1), ctx.row(f.N2)
	if r1 != 0 {
		m.AddElement(r1, ctrlRow, f.Gain)
	}
	if r2 != 0 {
		m.AddElement(r2, ctrlRow, -f.Gain)
	}
	return nil
}

func (f *CCCS) StampTransient(m *matrix.Matrix, ctx Context) error { return f.stamp(m, ctx) }
func (f *CCCS) StampAC(m *matrix.Matrix, ctx Context) error        { return f.stamp(m, ctx) }
