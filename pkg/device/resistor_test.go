package device

import (
	"math"
	"testing"

	"github.com/ardentwolf/spicesim/pkg/matrix"
)

func TestResistorOhmsLaw(t *testing.T) {
	r := NewResistor("R1", 1, 2, 1000)
	m, err := matrix.NewMatrix(1)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	defer m.Destroy()

	// Node 2 (id 2) is ground, mapped to row 0; node id 1 is the only live
	// row. Inject 1A into it and expect V = I*R.
	ctx := Context{NodeRow: map[int]int{1: 1, 2: 0}}
	if err := r.StampTransient(m, ctx); err != nil {
		t.Fatalf("StampTransient: %v", err)
	}
	m.AddRHS(1, 1.0)

	solution, err := m.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(solution[1]-1000) > 1e-6 {
		t.Errorf("V = %v, want 1000 (1A through 1kOhm)", solution[1])
	}
}

func TestResistorZeroValueConductance(t *testing.T) {
	r := NewResistor("R1", 1, 2, 0)
	if g := r.conductance(); g != 0 {
		t.Errorf("conductance of a zero-ohm resistor = %v, want 0 to avoid a division by zero", g)
	}
}

func TestResistorStampACMatchesTransient(t *testing.T) {
	r := NewResistor("R1", 1, 2, 500)
	mTran, err := matrix.NewMatrix(1)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	defer mTran.Destroy()
	mAC, err := matrix.NewMatrix(1)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	defer mAC.Destroy()

	ctx := Context{NodeRow: map[int]int{1: 1, 2: 0}}
	r.StampTransient(mTran, ctx)
	r.StampAC(mAC, ctx)

	mTran.AddRHS(1, 1.0)
	mAC.AddRHS(1, 1.0)

	vTran, err := mTran.Solve()
	if err != nil {
		t.Fatalf("Solve (transient): %v", err)
	}
	vAC, err := mAC.Solve()
	if err != nil {
		t.Fatalf("Solve (ac): %v", err)
	}
	if math.Abs(vTran[1]-vAC[1]) > 1e-9 {
		t.Errorf("a resistor's AC and transient stamps must agree: %v vs %v", vTran[1], vAC[1])
	}
}
