// Package formula evaluates user-supplied revenue formulas in a closed environment.
//
// Only the rate/volume variables and a fixed set of math functions are visible;
// any other identifier fails at compile time.
package formula

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/shopspring/decimal"
)

// ErrInvalid formula does not compile or evaluate
var ErrInvalid = errors.New("invalid formula")

// Variables names visible to formulas
var Variables = []string{"volume", "recurring_rate", "total_volume_year", "one_time_rate", "v", "r", "volume_year"}

// Functions names callable from formulas
var Functions = []string{"min", "max", "round", "abs", "pow", "sqrt", "ceil", "floor", "log", "log10", "exp"}

// Vars inputs of one evaluation
type Vars struct {
	Volume          float64
	RecurringRate   float64
	TotalVolumeYear float64
	OneTimeRate     float64
}

func (v Vars) env() map[string]any {
	return map[string]any{
		"volume":            v.Volume,
		"v":                 v.Volume,
		"recurring_rate":    v.RecurringRate,
		"r":                 v.RecurringRate,
		"total_volume_year": v.TotalVolumeYear,
		"volume_year":       v.TotalVolumeYear,
		"one_time_rate":     v.OneTimeRate,
	}
}

// Formula compiled expression
type Formula struct {
	source  string
	program *vm.Program
}

// Compile parses src. A blank source returns (nil, nil): callers use their built-in rule.
func Compile(src string) (*Formula, error) {
	src = strings.TrimSpace(src)
	if src == "" {
		return nil, nil
	}
	opts := []expr.Option{
		expr.Env(Vars{}.env()),
		expr.AsFloat64(),
		expr.DisableAllBuiltins(),
	}
	opts = append(opts, functionOptions()...)

	program, err := expr.Compile(src, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalid, src, err)
	}
	return &Formula{source: src, program: program}, nil
}

// Source original expression text
func (f *Formula) Source() string {
	return f.source
}

// Eval runs the formula. NaN and infinite results evaluate to 0.
func (f *Formula) Eval(vars Vars) (float64, error) {
	out, err := expr.Run(f.program, vars.env())
	if err != nil {
		return 0, fmt.Errorf("%w %q: %v", ErrInvalid, f.source, err)
	}
	v, ok := toFloat(out)
	if !ok {
		return 0, fmt.Errorf("%w %q: result is not a number", ErrInvalid, f.source)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, nil
	}
	return v, nil
}

func functionOptions() []expr.Option {
	unary := func(name string, fn func(float64) float64) expr.Option {
		return expr.Function(name, func(params ...any) (any, error) {
			args, err := floats(name, params, 1, 1)
			if err != nil {
				return nil, err
			}
			return fn(args[0]), nil
		})
	}

	return []expr.Option{
		expr.Function("min", func(params ...any) (any, error) {
			args, err := floats("min", params, 1, -1)
			if err != nil {
				return nil, err
			}
			out := args[0]
			for _, a := range args[1:] {
				out = math.Min(out, a)
			}
			return out, nil
		}),
		expr.Function("max", func(params ...any) (any, error) {
			args, err := floats("max", params, 1, -1)
			if err != nil {
				return nil, err
			}
			out := args[0]
			for _, a := range args[1:] {
				out = math.Max(out, a)
			}
			return out, nil
		}),
		expr.Function("round", func(params ...any) (any, error) {
			args, err := floats("round", params, 1, 2)
			if err != nil {
				return nil, err
			}
			places := int32(0)
			if len(args) == 2 {
				places = int32(args[1])
			}
			if math.IsNaN(args[0]) || math.IsInf(args[0], 0) {
				return args[0], nil
			}
			return decimal.NewFromFloat(args[0]).Round(places).InexactFloat64(), nil
		}),
		expr.Function("pow", func(params ...any) (any, error) {
			args, err := floats("pow", params, 2, 2)
			if err != nil {
				return nil, err
			}
			return math.Pow(args[0], args[1]), nil
		}),
		expr.Function("log", func(params ...any) (any, error) {
			args, err := floats("log", params, 1, 2)
			if err != nil {
				return nil, err
			}
			if len(args) == 2 {
				return math.Log(args[0]) / math.Log(args[1]), nil
			}
			return math.Log(args[0]), nil
		}),
		unary("abs", math.Abs),
		unary("sqrt", math.Sqrt),
		unary("ceil", math.Ceil),
		unary("floor", math.Floor),
		unary("log10", math.Log10),
		unary("exp", math.Exp),
	}
}

// floats converts call arguments; maxArgs < 0 means variadic.
func floats(name string, params []any, minArgs, maxArgs int) ([]float64, error) {
	if len(params) < minArgs || (maxArgs >= 0 && len(params) > maxArgs) {
		return nil, fmt.Errorf("%s: wrong number of arguments (%d)", name, len(params))
	}
	out := make([]float64, len(params))
	for i, p := range params {
		f, ok := toFloat(p)
		if !ok {
			return nil, fmt.Errorf("%s: argument %d is not a number", name, i+1)
		}
		out[i] = f
	}
	return out, nil
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}
