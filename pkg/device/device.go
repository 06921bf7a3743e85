// Package device implements the closed family of circuit element variants:
// each variant is a Go struct embedding BaseDevice and implementing the
// Device interface's four stamping operations.
package device

import "github.com/ardentwolf/spicesim/pkg/matrix"

// Context carries everything a Stamp/StampAC/UpdateState call needs to know
// about the analysis it is running inside: the independent-axis value
// (time or angular frequency), the current step size, this device's own
// branch-current row (or -1), and the row lookups shared by every device in
// the same assembly pass.
type Context struct {
	Time  float64 // transient: current time
	Step  float64 // transient: h; 0 means pure DC
	Omega float64 // AC: angular frequency

	Row int // this device's own branch-current row, or -1

	// NodeRow maps a node id to its matrix row. Grounded node ids map to 0,
	// which the matrix layer treats as a discarded sink — this is how the
	// "skip any stamp touching the ground set" rule is enforced uniformly
	// without every device consulting the ground set itself.
	NodeRow map[int]int

	// BranchRow maps a component name to its branch-current row, for CCVS/
	// CCCS controlling-element lookups.
	BranchRow map[string]int
}

// row resolves a node id to its matrix row, treating an unmapped id (should
// not happen for a live node) the same as ground.
func (c *Context) row(nodeID int) int {
	return c.NodeRow[nodeID]
}

// Device is the shared contract every element variant implements. It
// mirrors the four stamping operations named by the element library:
// a time-domain stamp, a frequency-domain stamp, a state-update hook, and a
// reset hook.
type Device interface {
	Name() string
	TypeKey() string
	Terminals() (n1, n2 int)
	SetTerminals(n1, n2 int)
	NeedsBranchCurrent() bool
	IsNonlinear() bool

	StampTransient(m *matrix.Matrix, ctx Context) error
	StampAC(m *matrix.Matrix, ctx Context) error
	UpdateState(solution []float64, ctx Context)
	Reset()
}

// BaseDevice holds the fields common to every variant: name, the two
// terminal node ids, and the primary numeric value (resistance, capacitance,
// DC level, gain, ...).
type BaseDevice struct {
	name  string
	N1    int
	N2    int
	Value float64
}

func (d *BaseDevice) Name() string             { return d.name }
func (d *BaseDevice) Terminals() (int, int)    { return d.N1, d.N2 }
func (d *BaseDevice) SetTerminals(n1, n2 int)  { d.N1, d.N2 = n1, n2 }
func (d *BaseDevice) NeedsBranchCurrent() bool { return false }
func (d *BaseDevice) IsNonlinear() bool        { return false }
func (d *BaseDevice) Reset()                   {}
func (d *BaseDevice) UpdateState([]float64, Context) {}

// stampSymmetricG adds a conductance G between n1 and n2 into m, skipping
// any row/column that resolves to ground (row 0).
func stampSymmetricG(m *matrix.Matrix, r1, r2 int, g float64) {
	if r1 != 0 {
		m.AddElement(r1, r1, g)
		if r2 != 0 {
			m.AddElement(r1, r2, -g)
		}
	}
	if r2 != 0 {
		m.AddElement(r2, r2, g)
		if r1 != 0 {
			m.AddElement(r2, r1, -g)
		}
	}
}

// stampBranchIncidence writes the ±1 incidence entries linking (r1,r2) to a
// branch-current row, used by every branch-row-owning variant.
func stampBranchIncidence(m *matrix.Matrix, r1, r2, row int) {
	if r1 != 0 {
		m.AddElement(r1, row, 1)
		m.AddElement(row, r1, 1)
	}
	if r2 != 0 {
		m.AddElement(r2, row, -1)
		m.AddElement(row, r2, -1)
	}
}
