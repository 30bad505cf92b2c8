package formula

import (
	"errors"
	"math"
	"testing"
)

func TestEval(t *testing.T) {
	vars := Vars{Volume: 100, RecurringRate: 2.5, TotalVolumeYear: 1200, OneTimeRate: 10}

	tests := []struct {
		src  string
		want float64
	}{
		{"volume * recurring_rate", 250},
		{"v * r", 250},
		{"total_volume_year * one_time_rate / 12", 1000},
		{"volume_year / 2", 600},
		{"min(volume, 50) * r", 125},
		{"max(volume, 50, 300)", 300},
		{"round(volume / 3, 2)", 33.33},
		{"round(2.5)", 3},
		{"abs(-volume)", 100},
		{"pow(2, 3)", 8},
		{"sqrt(volume)", 10},
		{"ceil(1.2) + floor(1.8)", 3},
		{"log10(volume)", 2},
		{"log(exp(2))", 2},
		{"7 / 2", 3.5},
		{"volume ** 2", 10000},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			f, err := Compile(tt.src)
			if err != nil {
				t.Fatalf("Compile(%q): %v", tt.src, err)
			}
			got, err := f.Eval(vars)
			if err != nil {
				t.Fatalf("Eval(%q): %v", tt.src, err)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Eval(%q) = %v, want %v", tt.src, got, tt.want)
			}
		})
	}
}

func TestCompileRejectsUnknownNames(t *testing.T) {
	for _, src := range []string{
		"volume * rate",
		"len(\"abc\")",
		"now()",
		"volume +",
		"volume > 1",
	} {
		if _, err := Compile(src); !errors.Is(err, ErrInvalid) {
			t.Errorf("Compile(%q) error = %v, want ErrInvalid", src, err)
		}
	}
}

func TestCompileBlank(t *testing.T) {
	f, err := Compile("   ")
	if err != nil || f != nil {
		t.Errorf("Compile(blank) = %v, %v; want nil, nil", f, err)
	}
}

func TestEvalNonFinite(t *testing.T) {
	f, err := Compile("volume / 0")
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	got, err := f.Eval(Vars{Volume: 1})
	if err != nil || got != 0 {
		t.Errorf("Eval = %v, %v; want 0, nil", got, err)
	}
}
