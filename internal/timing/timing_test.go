package timing

import (
	"testing"

	"github.com/Prabhakar2095/Budget-Working/internal/fiscal"
)

func TestShift(t *testing.T) {
	in := fiscal.Series{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 0}

	got := Shift(in, 2)
	want := fiscal.Series{0, 0, 10, 20, 30, 40, 50, 60, 70, 80, 90, 100}
	if got != want {
		t.Errorf("Shift(2) = %v, want %v", got, want)
	}

	if got := Shift(in, 0); got != in {
		t.Errorf("Shift(0) = %v, want input", got)
	}
	if got := Shift(in, -3); got != in {
		t.Errorf("Shift(-3) = %v, want input", got)
	}
	if got := Shift(in, 12); !got.IsZero() {
		t.Errorf("Shift(12) = %v, want zero series", got)
	}
}

func TestShiftDoesNotMutateInput(t *testing.T) {
	in := fiscal.Series{1, 2, 3}
	_ = Shift(in, 1)
	if in[0] != 1 || in[1] != 2 {
		t.Errorf("input mutated: %v", in)
	}
}

func TestDropped(t *testing.T) {
	in := fiscal.Series{10, 20, 30, 40, 50, 60, 70, 80, 90, 100, 110, 5}
	if got := Dropped(in, 2); got != 115 {
		t.Errorf("Dropped(2) = %v, want 115", got)
	}
	if got := Dropped(in, 0); got != 0 {
		t.Errorf("Dropped(0) = %v, want 0", got)
	}
}

func TestCombined(t *testing.T) {
	if got := Combined(2, 3); got != 5 {
		t.Errorf("Combined(2,3) = %d", got)
	}
	if got := Combined(-1, 3); got != 3 {
		t.Errorf("Combined(-1,3) = %d", got)
	}
}
