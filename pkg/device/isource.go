package device

import (
	"math"

	"github.com/ardentwolf/spicesim/pkg/matrix"
)

// CurrentSource is an independent current source, DC or sinusoidal. Its
// current flows from n1 through the source to n2: it is drawn out of n1
// and injected into n2. It needs no branch-current row.
type CurrentSource struct {
	BaseDevice
	kind      SourceKind
	dcValue   float64
	amplitude float64
	freq      float64
	phase     float64
}

func NewDCCurrentSource(name string, n1, n2 int, value float64) *CurrentSource {
	return &CurrentSource{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: value},
		kind:       DC,
		dcValue:    value,
	}
}

func NewSinCurrentSource(name string, n1, n2 int, offset, amplitude, freq, phase float64) *CurrentSource {
	return &CurrentSource{
		BaseDevice: BaseDevice{name: name, N1: n1, N2: n2, Value: offset},
		kind:       SIN,
		dcValue:    offset,
		amplitude:  amplitude,
		freq:       freq,
		phase:      phase,
	}
}

func (c *CurrentSource) TypeKey() string { return "I" }

func (c *CurrentSource) excitation(t float64) float64 {
	switch c.kind {
	case SIN:
		phaseRad := c.phase * math.Pi / 180.0
		return c.dcValue + c.amplitude*math.Sin(2.0*math.Pi*c.freq*t+phaseRad)
	default:
		return c.dcValue
	}
}

func (c *CurrentSource) StampTransient(m *matrix.Matrix, ctx Context) error {
	current := c.excitation(ctx.Time)
	r1, r2 := ctx.row(c.N1), ctx.row(c.N2)
	if r1 != 0 {
		m.AddRHS(r1, -current)
	}
	if r2 != 0 {
		m.AddRHS(r2, current)
	}
	return nil
}

func (c *CurrentSource) StampAC(m *matrix.Matrix, ctx Context) error {
	r1, r2 := ctx.row(c.N1), ctx.row(c.N2)
	if r1 != 0 {
		m.AddRHS(r1, -c.dcValue)
	}
	if r2 != 0 {
		m.AddRHS(r2, c.dcValue)
	}
	return nil
}

func (c *CurrentSource) SetValue(value float64) {
	c.Value = value
	c.dcValue = value
}
