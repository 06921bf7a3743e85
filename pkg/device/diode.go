package device

import (
	"math"

	"github.com/ardentwolf/spicesim/pkg/matrix"
)

// Diode is the sole nonlinear variant and the only one the Newton-Raphson
// loop needs to iterate on. Its companion model at the linearization point
// Vprev is the standard Shockley conductance/current-source pair:
// Gd = (Is/(eta*Vt))*exp(Vprev/(eta*Vt)) + Gmin
// Ieq = I(Vprev) - Gd*Vprev
type Diode struct {
	BaseDevice
	Is   float64
	Eta  float64
	Vt   float64
	Gmin float64

	vPrev float64
	gd    float64
	ieq   float64
}

func NewDiode(name string, n1, n2 int) *Diode {
	return &Diode{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2},
		Is:         1e-12,
		Eta:        1.0,
		Vt:         0.026,
		Gmin:       1e-12,
		vPrev:      0.7,
	}
}

func (d *Diode) TypeKey() string        { return "D" }
func (d *Diode) IsNonlinear() bool      { return true }

const diodeExpArgMax = 40.0

func (d *Diode) current(vd float64) float64 {
	arg := vd / (d.Eta * d.Vt)
	if arg > diodeExpArgMax {
		arg = diodeExpArgMax
	}
	return d.Is * (math.Exp(arg) - 1)
}

func (d *Diode) conductance(vd float64) float64 {
	arg := vd / (d.Eta * d.Vt)
	if arg > diodeExpArgMax {
		arg = diodeExpArgMax
	}
	return (d.Is/(d.Eta*d.Vt))*math.Exp(arg) + d.Gmin
}

// linearize recomputes gd and ieq at the current vPrev, called once per
// Newton-Raphson iteration before stamping.
func (d *Diode) linearize() {
	d.gd = d.conductance(d.vPrev)
	i := d.current(d.vPrev)
	d.ieq = i - d.gd*d.vPrev
}

func (d *Diode) StampTransient(m *matrix.Matrix, ctx Context) error {
	d.linearize()
	r1, r2 := ctx.row(d.N1), ctx.row(d.N2)
	stampSymmetricG(m, r1, r2, d.gd)
	if r1 != 0 {
		m.AddRHS(r1, -d.ieq)
	}
	if r2 != 0 {
		m.AddRHS(r2, d.ieq)
	}
	return nil
}

// StampAC uses a fixed unit conductance rather than the linearized gd, so
// the operating point solved before an AC sweep does not affect the
// diode's AC stamp.
func (d *Diode) StampAC(m *matrix.Matrix, ctx Context) error {
	stampSymmetricG(m, ctx.row(d.N1), ctx.row(d.N2), 1.0)
	return nil
}

// UpdateVoltages is called once per Newton-Raphson iteration, before the
// next StampTransient, to advance the linearization point.
func (d *Diode) UpdateVoltages(solution []float64, ctx Context) {
	r1, r2 := ctx.row(d.N1), ctx.row(d.N2)
	v1, v2 := 0.0, 0.0
	if r1 != 0 {
		v1 = solution[r1]
	}
	if r2 != 0 {
		v2 = solution[r2]
	}
	d.vPrev = v1 - v2
}

func (d *Diode) UpdateState(solution []float64, ctx Context) {
	d.UpdateVoltages(solution, ctx)
}

func (d *Diode) Reset() { d.vPrev = 0.7 }

// Voltage returns the diode's current linearization voltage.
func (d *Diode) Voltage() float64 { return d.vPrev }
