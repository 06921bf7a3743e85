package device

import "github.com/ardentwolf/spicesim/pkg/matrix"

// Capacitor's transient stamp is the backward-Euler companion model: a
// conductance Geq = C/h in parallel with a current source Ieq = Geq*Vprev.
// At h == 0 (pure DC operating point) it is an open circuit and contributes
// nothing. Its AC stamp is a magnitude-only real admittance, omega*C.
type Capacitor struct {
	BaseDevice
	vPrev float64
}

func NewCapacitor(name string, n1, n2 int, capacitance float64) *Capacitor {
	return &Capacitor{BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: capacitance}}
}

func (c *Capacitor) TypeKey() string { return "C" }

func (c *Capacitor) StampTransient(m *matrix.Matrix, ctx Context) error {
	if ctx.Step <= 0 {
		return nil
	}
	r1, r2 := ctx.row(c.N1), ctx.row(c.N2)
	geq := c.Value / ctx.Step
	ieq := geq * c.vPrev

	stampSymmetricG(m, r1, r2, geq)

	if r1 != 0 {
		m.AddRHS(r1, ieq)
	}
	if r2 != 0 {
		m.AddRHS(r2, -ieq)
	}
	return nil
}

func (c *Capacitor) StampAC(m *matrix.Matrix, ctx Context) error {
	admittance := ctx.Omega * c.Value
	if admittance < 1e-12 {
		admittance = 1e-12
	}
	stampSymmetricG(m, ctx.row(c.N1), ctx.row(c.N2), admittance)
	return nil
}

func (c *Capacitor) UpdateState(solution []float64, ctx Context) {
	r1, r2 := ctx.row(c.N1), ctx.row(c.N2)
	v1, v2 := 0.0, 0.0
	if r1 != 0 {
		v1 = solution[r1]
	}
	if r2 != 0 {
		v2 = solution[r2]
	}
	c.vPrev = v1 - v2
}

func (c *Capacitor) Reset() { c.vPrev = 0 }

// Voltage returns the capacitor's last stored terminal voltage, used by the
// result extractor's derived-current fallback.
func (c *Capacitor) Voltage() float64 { return c.vPrev }
