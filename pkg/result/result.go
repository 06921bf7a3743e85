// Package result turns the raw solution vectors a transient or AC run
// produces into named V(name)/I(name) series, resolving branch-current
// rows directly and falling back to a derived-current formula for
// elements that don't own one.
package result

import (
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ardentwolf/spicesim/internal/errs"
	"github.com/ardentwolf/spicesim/pkg/analysis"
	"github.com/ardentwolf/spicesim/pkg/circuit"
	"github.com/ardentwolf/spicesim/pkg/device"
	"github.com/ardentwolf/spicesim/pkg/mna"
)

var logger = log.New(os.Stderr, "spice: ", 0)

// Table is one or more named series sharing a common independent axis
// (time for a transient run, angular frequency for an AC sweep).
type Table struct {
	Axis   []float64
	Series map[string][]float64
}

func parseVariable(s string) (kind byte, name string, err error) {
	s = strings.TrimSpace(s)
	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return 0, "", errs.Validation(fmt.Sprintf("malformed result variable %q", s), nil)
	}
	switch strings.ToUpper(s[:open]) {
	case "V":
		return 'V', s[open+1 : len(s)-1], nil
	case "I":
		return 'I', s[open+1 : len(s)-1], nil
	}
	return 0, "", errs.Validation(fmt.Sprintf("unsupported result variable %q", s), nil)
}

// ExtractTransient resolves vars against every accepted step of tr.
// Unresolvable variables are logged and omitted from the returned Table.
func ExtractTransient(c *circuit.Circuit, asm *mna.Assembly, tr *analysis.TransientResult, vars []string) *Table {
	t := &Table{Axis: tr.Times, Series: make(map[string][]float64)}
	for _, v := range vars {
		if values, ok := extractTransientVar(c, asm, tr, v); ok {
			t.Series[v] = values
		}
	}
	return t
}

// ExtractPoint resolves vars against a single solution vector, for a bare
// operating-point request with no .tran/.ac directive in the netlist.
func ExtractPoint(c *circuit.Circuit, asm *mna.Assembly, solution []float64, vars []string) map[string]float64 {
	tr := &analysis.TransientResult{Times: []float64{0}, Solutions: [][]float64{solution}}
	table := ExtractTransient(c, asm, tr, vars)
	point := make(map[string]float64, len(table.Series))
	for name, values := range table.Series {
		if len(values) > 0 {
			point[name] = values[0]
		}
	}
	return point
}

// ExtractAC resolves vars against every frequency point of ac.
func ExtractAC(c *circuit.Circuit, asm *mna.Assembly, ac *analysis.ACResult, vars []string) *Table {
	t := &Table{Axis: ac.Omegas, Series: make(map[string][]float64)}
	for _, v := range vars {
		if values, ok := extractACVar(c, asm, ac, v); ok {
			t.Series[v] = values
		}
	}
	return t
}

func extractTransientVar(c *circuit.Circuit, asm *mna.Assembly, tr *analysis.TransientResult, v string) ([]float64, bool) {
	kind, name, err := parseVariable(v)
	if err != nil {
		logger.Printf("skipping %s: %v", v, err)
		return nil, false
	}

	switch kind {
	case 'V':
		nodeID, ok := c.Nodes().Lookup(name)
		if !ok {
			logger.Printf("skipping %s: %v", v, errs.Reference(fmt.Sprintf("unknown node %s", name), nil))
			return nil, false
		}
		values := make([]float64, len(tr.Solutions))
		for i, sol := range tr.Solutions {
			values[i] = asm.NodeVoltage(sol, nodeID)
		}
		return values, true

	case 'I':
		if _, ok := asm.BranchRow[name]; ok {
			values := make([]float64, len(tr.Solutions))
			for i, sol := range tr.Solutions {
				values[i], _ = asm.BranchCurrent(sol, name)
			}
			return values, true
		}
		return derivedTransientCurrent(c, asm, tr, name, v)
	}
	return nil, false
}

// derivedTransientCurrent computes I(name) for a component with no
// branch-current row of its own. A Resistor's current follows Ohm's law
// directly from its terminal voltages. A Capacitor's current at the first
// sample is 0 by convention; every later sample uses the wall-clock gap
// to the previous *stored* sample, not the nominal step size, since
// adaptive step halving can make the two differ. Any other component has
// no derived-current formula and is skipped with a warning.
func derivedTransientCurrent(c *circuit.Circuit, asm *mna.Assembly, tr *analysis.TransientResult, name, original string) ([]float64, bool) {
	dev, ok := c.Component(name)
	if !ok {
		logger.Printf("skipping %s: %v", original, errs.Reference(fmt.Sprintf("unknown component %s", name), nil))
		return nil, false
	}

	switch d := dev.(type) {
	case *device.Resistor:
		n1, n2 := d.Terminals()
		values := make([]float64, len(tr.Solutions))
		for i, sol := range tr.Solutions {
			v := asm.NodeVoltage(sol, n1) - asm.NodeVoltage(sol, n2)
			values[i] = v / d.Value
		}
		return values, true

	case *device.Capacitor:
		n1, n2 := d.Terminals()
		values := make([]float64, len(tr.Solutions))
		var prevV, prevT float64
		for i, sol := range tr.Solutions {
			v := asm.NodeVoltage(sol, n1) - asm.NodeVoltage(sol, n2)
			if i > 0 {
				if dt := tr.Times[i] - prevT; dt != 0 {
					values[i] = d.Value * (v - prevV) / dt
				}
			}
			prevV, prevT = v, tr.Times[i]
		}
		return values, true

	default:
		logger.Printf("skipping %s: %v", original, errs.Reference(fmt.Sprintf("no derived current for %s", name), nil))
		return nil, false
	}
}

func extractACVar(c *circuit.Circuit, asm *mna.Assembly, ac *analysis.ACResult, v string) ([]float64, bool) {
	kind, name, err := parseVariable(v)
	if err != nil {
		logger.Printf("skipping %s: %v", v, err)
		return nil, false
	}

	switch kind {
	case 'V':
		nodeID, ok := c.Nodes().Lookup(name)
		if !ok {
			logger.Printf("skipping %s: %v", v, errs.Reference(fmt.Sprintf("unknown node %s", name), nil))
			return nil, false
		}
		values := make([]float64, len(ac.Solutions))
		for i, sol := range ac.Solutions {
			values[i] = asm.NodeVoltage(sol, nodeID)
		}
		return values, true

	case 'I':
		if _, ok := asm.BranchRow[name]; ok {
			values := make([]float64, len(ac.Solutions))
			for i, sol := range ac.Solutions {
				values[i], _ = asm.BranchCurrent(sol, name)
			}
			return values, true
		}
		dev, ok := c.Component(name)
		if !ok {
			logger.Printf("skipping %s: %v", v, errs.Reference(fmt.Sprintf("unknown component %s", name), nil))
			return nil, false
		}
		switch d := dev.(type) {
		case *device.Resistor:
			n1, n2 := d.Terminals()
			values := make([]float64, len(ac.Solutions))
			for i, sol := range ac.Solutions {
				vv := asm.NodeVoltage(sol, n1) - asm.NodeVoltage(sol, n2)
				values[i] = vv / d.Value
			}
			return values, true
		case *device.Capacitor:
			n1, n2 := d.Terminals()
			values := make([]float64, len(ac.Solutions))
			for i, sol := range ac.Solutions {
				vv := asm.NodeVoltage(sol, n1) - asm.NodeVoltage(sol, n2)
				values[i] = vv * ac.Omegas[i] * d.Value
			}
			return values, true
		default:
			logger.Printf("skipping %s: %v", v, errs.Reference(fmt.Sprintf("no derived current for %s", name), nil))
			return nil, false
		}
	}
	return nil, false
}
