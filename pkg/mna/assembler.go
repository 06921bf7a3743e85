// Package mna assembles the Modified Nodal Analysis system for a circuit:
// it assigns matrix rows to nodes and branch currents, then dispatches the
// stamping pass across every device.
package mna

import (
	"github.com/ardentwolf/spicesim/pkg/circuit"
	"github.com/ardentwolf/spicesim/pkg/device"
	"github.com/ardentwolf/spicesim/pkg/matrix"
)

// Assembly is the row layout computed for one circuit: live (non-ground)
// nodes get ascending rows starting at 1, ground nodes all map to row 0,
// and branch-current-owning devices get the remaining rows in netlist
// order.
type Assembly struct {
	NodeRow   map[int]int
	BranchRow map[string]int
	Size      int
}

// Build computes the row layout for c. It must be rebuilt whenever the
// circuit's node or device set changes. It re-runs label-connection
// merging first (idempotent if already applied) so callers driving the
// Circuit/analysis API directly never have to remember to invoke it
// themselves before an assembly pass.
func Build(c *circuit.Circuit) *Assembly {
	c.ProcessLabelConnections()

	reg := c.Nodes()
	nodeRow := make(map[int]int)

	row := 1
	for _, id := range reg.IDs() {
		if reg.IsGround(id) {
			nodeRow[id] = 0
			continue
		}
		nodeRow[id] = row
		row++
	}

	branchRow := make(map[string]int)
	for _, dev := range c.Devices() {
		if dev.NeedsBranchCurrent() {
			branchRow[dev.Name()] = row
			row++
		}
	}

	return &Assembly{NodeRow: nodeRow, BranchRow: branchRow, Size: row - 1}
}

func (a *Assembly) context(dev device.Device, base device.Context) device.Context {
	ctx := base
	ctx.NodeRow = a.NodeRow
	ctx.BranchRow = a.BranchRow
	ctx.Row = -1
	if dev.NeedsBranchCurrent() {
		ctx.Row = a.BranchRow[dev.Name()]
	}
	return ctx
}

// StampTransient runs every device's time-domain stamp against m.
func (a *Assembly) StampTransient(m *matrix.Matrix, c *circuit.Circuit, time, step float64) error {
	base := device.Context{Time: time, Step: step}
	for _, dev := range c.Devices() {
		if err := dev.StampTransient(m, a.context(dev, base)); err != nil {
			return err
		}
	}
	return nil
}

// StampAC runs every device's frequency-domain stamp against m.
func (a *Assembly) StampAC(m *matrix.Matrix, c *circuit.Circuit, omega float64) error {
	base := device.Context{Omega: omega}
	for _, dev := range c.Devices() {
		if err := dev.StampAC(m, a.context(dev, base)); err != nil {
			return err
		}
	}
	return nil
}

// NodeVoltage reads a node's solved voltage out of a raw solution vector,
// returning 0 for ground.
func (a *Assembly) NodeVoltage(solution []float64, nodeID int) float64 {
	row := a.NodeRow[nodeID]
	if row == 0 {
		return 0
	}
	return solution[row]
}

// BranchCurrent reads a branch-owning device's solved current out of a raw
// solution vector.
func (a *Assembly) BranchCurrent(solution []float64, deviceName string) (float64, bool) {
	row, ok := a.BranchRow[deviceName]
	if !ok {
		return 0, false
	}
	return solution[row], true
}
