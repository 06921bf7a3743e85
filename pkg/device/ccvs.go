package device

import (
	"github.com/ardentwolf/spicesim/internal/errs"
	"github.com/ardentwolf/spicesim/pkg/matrix"
)

// CCVS is a current-controlled voltage source: V(n1)-V(n2) = gain *
// I(CtrlName), where CtrlName names another branch-current-owning device
// in the same circuit. That device's branch row is not known until
// assembly time, since components can reference one another regardless of
// netlist order, so the lookup happens inside Stamp via ctx.BranchRow
// rather than at construction.
type CCVS struct {
	BaseDevice
	CtrlName string
	Gain     float64
}

func NewCCVS(name string, n1, n2 int, ctrlName string, gain float64) *CCVS {
	return &CCVS{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: gain},
		CtrlName:   ctrlName,
		Gain:       gain,
	}
}

func (h *CCVS) TypeKey() string        { return "H" }
func (h *CCVS) NeedsBranchCurrent() bool { return true }

func (h *CCVS) stamp(m *matrix.Matrix, ctx Context) error {
	row := ctx.Row
	stampBranchIncidence(m, ctx.row(h.N1), ctx.row(h.N2), row)

	ctrlRow, ok := ctx.BranchRow[h.CtrlName]
	if !ok {
		return errs.Reference("CCVS "+h.name+": controlling element "+h.CtrlName+" not found", nil)
	}
	m.AddElement(row, ctrlRow, -h.Gain)
	return nil
}

func (h *CCVS) StampTransient(m *matrix.Matrix, ctx Context) error { return h.stamp(m, ctx) }
func (h *CCVS) StampAC(m *matrix.Matrix, ctx Context) error        { return h.stamp(m, ctx) }
