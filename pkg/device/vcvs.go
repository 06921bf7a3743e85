package device

import "github.com/ardentwolf/spicesim/pkg/matrix"

// VCVS is a voltage-controlled voltage source: V(n1)-V(n2) = gain *
// (V(ctrl1)-V(ctrl2)). It occupies a branch-current row like any voltage
// source, with the controlling voltage difference added into that row's
// equation instead of a constant excitation.
type VCVS struct {
	BaseDevice
	Ctrl1, Ctrl2 int
	Gain         float64
}

func NewVCVS(name string, n1, n2, ctrl1, ctrl2 int, gain float64) *VCVS {
	return &VCVS{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: gain},
		Ctrl1:      ctrl1,
		Ctrl2:      ctrl2,
		Gain:       gain,
	}
}

func (e *VCVS) TypeKey() string        { return "E" }
func (e *VCVS) NeedsBranchCurrent() bool { return true }

func (e *VCVS) stamp(m *matrix.Matrix, ctx Context) {
	row := ctx.Row
	stampBranchIncidence(m, ctx.row(e.N1), ctx.row(e.N2), row)

	rc1, rc2 := ctx.row(e.Ctrl1), ctx.row(e.Ctrl2)
	if rc1 != 0 {
		m.AddElement(row, rc1, -e.Gain)
	}
	if rc2 != 0 {
		m.AddElement(row, rc2, e.Gain)
	}
}

func (e *VCVS) StampTransient(m *matrix.Matrix, ctx Context) error {
	e.stamp(m, ctx)
	return nil
}

func (e *VCVS) StampAC(m *matrix.Matrix, ctx Context) error {
	e.stamp(m, ctx)
	return nil
}
