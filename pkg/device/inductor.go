package device

import "github.com/ardentwolf/spicesim/pkg/matrix"

// Inductor occupies a branch-current row. Its transient companion model is
// backward-Euler: V - (L/h)*I = -(L/h)*Iprev, i.e. a history term of -L/h
// on the branch row's self-coefficient and a constant -(L/h)*Iprev on the
// RHS. At h == 0 it collapses to a plain short circuit (V == 0), with no
// history term. Its AC stamp is the same branch-row form evaluated with
// the magnitude-only real reactance omega*L in place of L/h.
type Inductor struct {
	BaseDevice
	iPrev float64
}

func NewInductor(name string, n1, n2 int, inductance float64) *Inductor {
	return &Inductor{BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: inductance}}
}

func (l *Inductor) TypeKey() string          { return "L" }
func (l *Inductor) NeedsBranchCurrent() bool { return true }

func (l *Inductor) StampTransient(m *matrix.Matrix, ctx Context) error {
	row := ctx.Row
	stampBranchIncidence(m, ctx.row(l.N1), ctx.row(l.N2), row)

	if ctx.Step <= 0 {
		return nil
	}
	lOverH := l.Value / ctx.Step
	m.AddElement(row, row, -lOverH)
	m.AddRHS(row, -lOverH*l.iPrev)
	return nil
}

func (l *Inductor) StampAC(m *matrix.Matrix, ctx Context) error {
	row := ctx.Row
	stampBranchIncidence(m, ctx.row(l.N1), ctx.row(l.N2), row)

	omega := ctx.Omega
	if omega < 1e-9 {
		omega = 1e-9
	}
	m.AddElement(row, row, -omega*l.Value)
	return nil
}

func (l *Inductor) UpdateState(solution []float64, ctx Context) {
	l.iPrev = solution[ctx.Row]
}

func (l *Inductor) Reset() { l.iPrev = 0 }

// Current returns the inductor's last stored branch current.
func (l *Inductor) Current() float64 { return l.iPrev }
