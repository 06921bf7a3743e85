package device

import "github.com/ardentwolf/spicesim/pkg/matrix"

// VCCS is a voltage-controlled current source: I = gain * (V(ctrl1)-
// V(ctrl2)), drawn out of n1 and injected into n2. It is a pure
// transconductance stamp with no branch-current row of its own.
type VCCS struct {
	BaseDevice
	Ctrl1, Ctrl2 int
	Gain         float64
}

func NewVCCS(name string, n1, n2, ctrl1, ctrl2 int, gain float64) *VCCS {
	return &VCCS{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: gain},
		Ctrl1:      ctrl1,
		Ctrl2:      ctrl2,
		Gain:       gain,
	}
}

func (g *VCCS) TypeKey() string { return "G" }

func (g *VCCS) stamp(m *matrix.Matrix, ctx Context) {
	r1, r2 := ctx.row(g.N1), ctx.row(g.N2)
	rc1, rc2 := ctx.row(g.Ctrl1), ctx.row(g.Ctrl2)

	if r1 != 0 {
		if rc1 != 0 {
			m.AddElement(r1, rc1, g.Gain)
		}
		if rc2 != 0 {
			m.AddElement(r1, rc2, -g.Gain)
		}
	}
	if r2 != 0 {
		if rc1 != 0 {
			m.AddElement(r2, rc1, -g.Gain)
		}
		if rc2 != 0 {
			m.AddElement(r2, rc2, g.Gain)
		}
	}
}

func (g *VCCS) StampTransient(m *matrix.Matrix, ctx Context) error {
	g.stamp(m, ctx)
	return nil
}

func (g *VCCS) StampAC(m *matrix.Matrix, ctx Context) error {
	g.stamp(m, ctx)
	return nil
}
