package device

import (
	"math"
	"testing"

	"github.com/ardentwolf/spicesim/pkg/matrix"
)

func TestVCVSGain(t *testing.T) {
	const gain = 2.5
	e := NewVCVS("E1", 1, 2, 3, 4, gain)
	m, err := matrix.NewMatrix(3)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	defer m.Destroy()

	// Row 1: output node (node id 1); node id 2 is ground. Row 2: the
	// VCVS's own branch row. Row 3: control node (node id 3); node id 4 is
	// ground. Pin the control node to 4V directly (G=1, RHS=4) so its row
	// has a unique, exact solution with nothing else attached.
	ctx := Context{NodeRow: map[int]int{1: 1, 2: 0, 3: 3, 4: 0}, Row: 2}
	if err := e.StampTransient(m, ctx); err != nil {
		t.Fatalf("StampTransient: %v", err)
	}
	m.AddElement(3, 3, 1)
	m.AddRHS(3, 4.0)

	solution, err := m.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(solution[3]-4.0) > 1e-9 {
		t.Fatalf("V(ctrl) = %v, want 4.0", solution[3])
	}
	want := gain * 4.0
	if math.Abs(solution[1]-want) > 1e-9 {
		t.Errorf("V(out) = %v, want %v", solution[1], want)
	}
	// No load on the output: KCL at node 1 forces the branch current to 0.
	if math.Abs(solution[2]) > 1e-9 {
		t.Errorf("I(E1) = %v, want 0 (no load)", solution[2])
	}
}

func TestVCVSStampACMatchesTransient(t *testing.T) {
	e := NewVCVS("E1", 1, 2, 3, 4, 2.0)
	mT, err := matrix.NewMatrix(3)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	defer mT.Destroy()
	mA, err := matrix.NewMatrix(3)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	defer mA.Destroy()

	ctx := Context{NodeRow: map[int]int{1: 1, 2: 0, 3: 3, 4: 0}, Row: 2}
	if err := e.StampTransient(mT, ctx); err != nil {
		t.Fatalf("StampTransient: %v", err)
	}
	if err := e.StampAC(mA, ctx); err != nil {
		t.Fatalf("StampAC: %v", err)
	}
	mT.AddElement(3, 3, 1)
	mT.AddRHS(3, 1.0)
	mA.AddElement(3, 3, 1)
	mA.AddRHS(3, 1.0)

	solT, err := mT.Solve()
	if err != nil {
		t.Fatalf("Solve (transient): %v", err)
	}
	solA, err := mA.Solve()
	if err != nil {
		t.Fatalf("Solve (ac): %v", err)
	}
	if math.Abs(solT[1]-solA[1]) > 1e-9 {
		t.Errorf("VCVS's AC and transient stamps must agree: %v vs %v", solT[1], solA[1])
	}
}
