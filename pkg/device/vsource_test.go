package device

import (
	"math"
	"testing"

	"github.com/ardentwolf/spicesim/pkg/matrix"
)

func TestVoltageSourceDC(t *testing.T) {
	v := NewDCVoltageSource("V1", 1, 2, 5)
	m, err := matrix.NewMatrix(2)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	defer m.Destroy()

	ctx := Context{NodeRow: map[int]int{1: 1, 2: 0}, Row: 2}
	if err := v.StampTransient(m, ctx); err != nil {
		t.Fatalf("StampTransient: %v", err)
	}
	solution, err := m.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(solution[1]-5) > 1e-9 {
		t.Errorf("V(node1) = %v, want 5", solution[1])
	}
}

func TestVoltageSourceSinExcitation(t *testing.T) {
	v := NewSinVoltageSource("V1", 1, 2, 1.0, 2.0, 60.0, 90.0)
	got := v.excitation(0)
	// sin(2*pi*60*0 + 90deg) = sin(pi/2) = 1, so excitation(0) = 1 + 2*1 = 3.
	want := 3.0
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("excitation(0) = %v, want %v", got, want)
	}
}

func TestVoltageSourceSetValue(t *testing.T) {
	v := NewDCVoltageSource("V1", 1, 2, 5)
	v.SetValue(9)
	if got := v.excitation(0); got != 9 {
		t.Errorf("excitation(0) after SetValue(9) = %v, want 9", got)
	}
}

func TestCurrentSourceDC(t *testing.T) {
	i := NewDCCurrentSource("I1", 1, 2, 0.002)
	m, err := matrix.NewMatrix(1)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	defer m.Destroy()

	r := NewResistor("R1", 1, 2, 1000)
	ctx := Context{NodeRow: map[int]int{1: 1, 2: 0}}
	if err := i.StampTransient(m, ctx); err != nil {
		t.Fatalf("StampTransient: %v", err)
	}
	if err := r.StampTransient(m, ctx); err != nil {
		t.Fatalf("StampTransient: %v", err)
	}

	solution, err := m.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	// The source draws its current out of node 1, so the load sees -I*R.
	want := -0.002 * 1000
	if math.Abs(solution[1]-want) > 1e-9 {
		t.Errorf("V = %v, want %v", solution[1], want)
	}
}

func TestACVoltageSourceUnitSourceConvention(t *testing.T) {
	a := NewACVoltageSource("AC1", 1, 2, 1.0)
	m, err := matrix.NewMatrix(2)
	if err != nil {
		t.Fatalf("NewMatrix: %v", err)
	}
	defer m.Destroy()

	ctx := Context{NodeRow: map[int]int{1: 1, 2: 0}, Row: 2}
	if err := a.StampAC(m, ctx); err != nil {
		t.Fatalf("StampAC: %v", err)
	}
	solution, err := m.Solve()
	if err != nil {
		t.Fatalf("Solve: %v", err)
	}
	if math.Abs(solution[1]-1.0) > 1e-9 {
		t.Errorf("V(node1) = %v, want 1.0", solution[1])
	}
}
