package device

import "github.com/ardentwolf/spicesim/pkg/matrix"

// Resistor stamps a fixed conductance between its two terminals.
type Resistor struct {
	BaseDevice
}

func NewResistor(name string, n1, n2 int, resistance float64) *Resistor {
	return &Resistor{BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: resistance}}
}

func (r *Resistor) TypeKey() string { return "R" }

func (r *Resistor) conductance() float64 {
	if r.Value == 0 {
		return 0
	}
	return 1 / r.Value
}

func (r *Resistor) StampTransient(m *matrix.Matrix, ctx Context) error {
	stampSymmetricG(m, ctx.row(r.N1), ctx.row(r.N2), r.conductance())
	return nil
}

func (r *Resistor) StampAC(m *matrix.Matrix, ctx Context) error {
	stampSymmetricG(m, ctx.row(r.N1), ctx.row(r.N2), r.conductance())
	return nil
}
