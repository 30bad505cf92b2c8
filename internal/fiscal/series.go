package fiscal

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/shopspring/decimal"
)

// Series a twelve-month value series in fiscal order (Apr first).
// JSON form is an object keyed by month name; missing months are 0.
type Series [12]float64

// SeriesFromMap builds a series from month-name keys, ignoring unknown names.
func SeriesFromMap(m map[string]float64) Series {
	var s Series
	for k, v := range m {
		if i, ok := MonthIndex(k); ok {
			s[i] = v
		}
	}
	return s
}

// Constant a series with the same value in every month
func Constant(v float64) Series {
	var s Series
	for i := range s {
		s[i] = v
	}
	return s
}

// Map converts the series to a month-name keyed map.
func (s Series) Map() map[string]float64 {
	m := make(map[string]float64, len(Months))
	for i, name := range Months {
		m[name] = s[i]
	}
	return m
}

// Sum adds the twelve months in decimal so 2dp inputs produce a 2dp total
func (s Series) Sum() float64 {
	total := decimal.Zero
	for _, v := range s {
		total = total.Add(decimal.NewFromFloat(v))
	}
	return total.InexactFloat64()
}

// Add element-wise sum
func (s Series) Add(o Series) Series {
	for i := range s {
		s[i] += o[i]
	}
	return s
}

// Sub element-wise difference
func (s Series) Sub(o Series) Series {
	for i := range s {
		s[i] -= o[i]
	}
	return s
}

// Scale multiplies every month by f.
func (s Series) Scale(f float64) Series {
	for i := range s {
		s[i] *= f
	}
	return s
}

// Neg negates every month.
func (s Series) Neg() Series {
	return s.Scale(-1)
}

// Cumulative running sum in fiscal order
func (s Series) Cumulative() Series {
	var out Series
	running := 0.0
	for i, v := range s {
		running += v
		out[i] = running
	}
	return out
}

// Round2 rounds every month to two decimals.
func (s Series) Round2() Series {
	for i := range s {
		s[i] = Round2(s[i])
	}
	return s
}

// IsZero reports whether every month is 0.
func (s Series) IsZero() bool {
	for _, v := range s {
		if v != 0 {
			return false
		}
	}
	return true
}

// Round2 rounds half away from zero to two decimals. NaN and Inf become 0.
func Round2(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// MarshalJSON writes months in fiscal order.
func (s Series) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range Months {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(name))
		buf.WriteByte(':')
		v := s[i]
		if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			v = 0
		}
		buf.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON accepts an object keyed by month name. Unknown months are an error.
func (s *Series) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*s = Series{}
		return nil
	}
	var raw map[string]*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("monthly series: %w", err)
	}
	var out Series
	for k, v := range raw {
		i, ok := MonthIndex(k)
		if !ok {
			return fmt.Errorf("monthly series: unknown month %q", k)
		}
		if v != nil {
			out[i] = *v
		}
	}
	*s = out
	return nil
}
