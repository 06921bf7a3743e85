package device

import (
	"math"

	"github.com/ardentwolf/spicesim/pkg/matrix"
)

// VoltageSource is an independent voltage source, DC or sinusoidal. It
// occupies a branch-current row: its stamp is the familiar ±1 incidence
// pair plus the excitation value on the RHS of its own row.
type VoltageSource struct {
	BaseDevice

	kind      SourceKind
	dcValue   float64
	amplitude float64
	freq      float64
	phase     float64
}

// SourceKind distinguishes the DC and sinusoidal excitation shapes the
// element library supports; PULSE/PWL are out of scope.
type SourceKind int

const (
	DC SourceKind = iota
	SIN
)

func NewDCVoltageSource(name string, n1, n2 int, value float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: value},
		kind:       DC,
		dcValue:    value,
	}
}

func NewSinVoltageSource(name string, n1, n2 int, offset, amplitude, freq, phase float64) *VoltageSource {
	return &VoltageSource{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: offset},
		kind:       SIN,
		dcValue:    offset,
		amplitude:  amplitude,
		freq:       freq,
		phase:      phase,
	}
}

func (v *VoltageSource) TypeKey() string        { return "V" }
func (v *VoltageSource) NeedsBranchCurrent() bool { return true }

func (v *VoltageSource) excitation(t float64) float64 {
	switch v.kind {
	case SIN:
		phaseRad := v.phase * math.Pi / 180.0
		return v.dcValue + v.amplitude*math.Sin(2.0*math.Pi*v.freq*t+phaseRad)
	default:
		return v.dcValue
	}
}

func (v *VoltageSource) StampTransient(m *matrix.Matrix, ctx Context) error {
	row := ctx.Row
	stampBranchIncidence(m, ctx.row(v.N1), ctx.row(v.N2), row)
	m.AddRHS(row, v.excitation(ctx.Time))
	return nil
}

// StampAC contributes the same incidence structure as the transient stamp
// and puts the source's DC value (a sinusoidal source's offset) on its own
// row's RHS, so in an AC sweep it acts as a constant excitation of that
// value at every frequency.
func (v *VoltageSource) StampAC(m *matrix.Matrix, ctx Context) error {
	row := ctx.Row
	stampBranchIncidence(m, ctx.row(v.N1), ctx.row(v.N2), row)
	m.AddRHS(row, v.dcValue)
	return nil
}

func (v *VoltageSource) SetValue(value float64) {
	v.Value = value
	v.dcValue = value
}

// ACVoltageSource is a distinct variant from VoltageSource: an independent
// source whose sole purpose is to drive the AC sweep at unit amplitude. In
// transient or operating-point analysis it behaves as a DC source at its
// stored value (1 by convention unless overridden).
type ACVoltageSource struct {
	BaseDevice
	magnitude float64
}

func NewACVoltageSource(name string, n1, n2 int, magnitude float64) *ACVoltageSource {
	return &ACVoltageSource{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: magnitude},
		magnitude:  magnitude,
	}
}

func (a *ACVoltageSource) TypeKey() string        { return "AC" }
func (a *ACVoltageSource) NeedsBranchCurrent() bool { return true }

func (a *ACVoltageSource) StampTransient(m *matrix.Matrix, ctx Context) error {
	row := ctx.Row
	stampBranchIncidence(m, ctx.row(a.N1), ctx.row(a.N2), row)
	m.AddRHS(row, a.magnitude)
	return nil
}

func (a *ACVoltageSource) StampAC(m *matrix.Matrix, ctx Context) error {
	row := ctx.Row
	stampBranchIncidence(m, ctx.row(a.N1), ctx.row(a.N2), row)
	m.AddRHS(row, a.magnitude)
	return nil
}
