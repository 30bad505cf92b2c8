package fiscal

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Months fiscal month order, April first
var Months = [12]string{"Apr", "May", "Jun", "Jul", "Aug", "Sep", "Oct", "Nov", "Dec", "Jan", "Feb", "Mar"}

// ErrInvalidYear fiscal year string is not FYnn-nn with consecutive years
var ErrInvalidYear = errors.New("invalid fiscal year")

var yearPattern = regexp.MustCompile(`^FY(\d{2})-(\d{2})$`)

// Year a fiscal year identified by the two-digit start year (FY25-26 => 25)
type Year struct {
	Start int
}

// Parse parses "FYnn-nn". The end pair must follow the start pair, wrapping at 100.
func Parse(s string) (Year, error) {
	m := yearPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return Year{}, fmt.Errorf("%w: %q (expected FYnn-nn)", ErrInvalidYear, s)
	}
	start, _ := strconv.Atoi(m[1])
	end, _ := strconv.Atoi(m[2])
	if (start+1)%100 != end {
		return Year{}, fmt.Errorf("%w: %q (years are not consecutive)", ErrInvalidYear, s)
	}
	return Year{Start: start}, nil
}

// MustParse is Parse for literals known to be valid.
func MustParse(s string) Year {
	y, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return y
}

// String formats as FYnn-nn
func (y Year) String() string {
	return fmt.Sprintf("FY%02d-%02d", y.Start, (y.Start+1)%100)
}

// Prev the previous fiscal year, wrapping FY00-01 to FY99-00
func (y Year) Prev() Year {
	return Year{Start: (y.Start + 99) % 100}
}

// Next the following fiscal year
func (y Year) Next() Year {
	return Year{Start: (y.Start + 1) % 100}
}

// PriorYears the two fiscal years immediately before y, most recent first.
func (y Year) PriorYears() []string {
	p1 := y.Prev()
	return []string{p1.String(), p1.Prev().String()}
}

// PriorYears parses fy and derives its two prior years.
func PriorYears(fy string) ([]string, error) {
	y, err := Parse(fy)
	if err != nil {
		return nil, err
	}
	return y.PriorYears(), nil
}

// MonthIndex returns the fiscal index (Apr=0) of a month name, case-insensitive.
func MonthIndex(name string) (int, bool) {
	name = strings.TrimSpace(name)
	for i, m := range Months {
		if strings.EqualFold(m, name) {
			return i, true
		}
	}
	return -1, false
}
