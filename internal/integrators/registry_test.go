package integrators

import (
	"errors"
	"testing"

	"github.com/mikeyj777/numerical-weather-prediction-school/internal/boundary"
	"github.com/mikeyj777/numerical-weather-prediction-school/internal/dynamo"
)

func TestNew(t *testing.T) {
	bc := boundary.NewPeriodic(boundary.Ghost)

	integ, err := New("rk4", bc)
	if err != nil {
		t.Fatalf("rk4: %v", err)
	}
	rk, ok := integ.(*RK4)
	if !ok {
		t.Fatalf("expected *RK4, got %T", integ)
	}
	if rk.Stage != bc {
		t.Error("stage enforcer not passed through")
	}

	if _, err := New("euler", nil); err != nil {
		t.Errorf("euler: %v", err)
	}

	if _, err := New("leapfrog", nil); !errors.Is(err, dynamo.ErrUnknownComponent) {
		t.Errorf("expected ErrUnknownComponent, got %v", err)
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 2 || names[0] != "euler" || names[1] != "rk4" {
		t.Errorf("unexpected names: %v", names)
	}
}
