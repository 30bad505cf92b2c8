// Package dimension holds the categorical axes a line of business is modelled on.
//
// A Registry is a value: every edit returns a new Registry inside a Mutation so callers
// decide when generated combinations become stale.
package dimension

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Fixed axis names.
const (
	AxisCustomer = "customer"
	AxisCircle   = "circle"
	AxisSiteType = "siteType"
	AxisType     = "type"
)

// ErrInvalid rejected registry edit
var ErrInvalid = errors.New("invalid dimension edit")

// signatureSeparators join axis and value inside a combination signature.
const signatureSeparators = "|="

// SafeToken reports whether s can be an axis name or value of a combination signature.
func SafeToken(s string) bool {
	return !strings.ContainsAny(s, signatureSeparators)
}

// Level a named extra axis
type Level struct {
	Name   string   `json:"name"`
	Values []string `json:"values"`
}

// Registry axis value sets. The type axis is derived from the line of business and not stored.
type Registry struct {
	SiteAxis  string   `json:"siteAxis"`
	Customers []string `json:"customers"`
	Sites     []string `json:"sites"`
	Levels    []Level  `json:"levels"`
}

// Mutation result of a registry edit. Dirty is true whenever any value set changed.
type Mutation struct {
	Registry Registry `json:"registry"`
	Dirty    bool     `json:"dirty"`
}

// New an empty registry keyed by the given site axis (circle or siteType).
func New(siteAxis string) Registry {
	if siteAxis != AxisSiteType {
		siteAxis = AxisCircle
	}
	return Registry{SiteAxis: siteAxis, Customers: []string{}, Sites: []string{}, Levels: []Level{}}
}

// Default the starting registry for a freshly locked line of business.
func Default(siteAxis string) Registry {
	r := New(siteAxis)
	r.Customers = []string{"Airtel"}
	if r.SiteAxis == AxisSiteType {
		r.Sites = []string{"LPSC", "HPSC", "Lite Site"}
	} else {
		r.Sites = []string{"SOBO"}
	}
	return r
}

// Axes stored axis names in display order: customer, site axis, then extra levels.
func (r Registry) Axes() []string {
	axes := []string{AxisCustomer, r.siteAxis()}
	for _, l := range r.Levels {
		axes = append(axes, l.Name)
	}
	return axes
}

// Values the value set of an axis
func (r Registry) Values(axis string) ([]string, bool) {
	switch {
	case axis == AxisCustomer:
		return r.Customers, true
	case axis == r.siteAxis():
		return r.Sites, true
	}
	if i := r.levelIndex(axis); i >= 0 {
		return r.Levels[i].Values, true
	}
	return nil, false
}

// AddValue appends a value to an axis.
func (r Registry) AddValue(axis, value string) (Mutation, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Mutation{}, fmt.Errorf("%w: empty value for %s", ErrInvalid, axis)
	}
	if !SafeToken(value) {
		return Mutation{}, fmt.Errorf("%w: value %q must not contain '|' or '='", ErrInvalid, value)
	}
	next := r.Clone()
	values, err := next.valuesRef(axis)
	if err != nil {
		return Mutation{}, err
	}
	for _, v := range *values {
		if v == value {
			return Mutation{}, fmt.Errorf("%w: %s already has value %q", ErrInvalid, axis, value)
		}
	}
	*values = append(*values, value)
	return Mutation{Registry: next, Dirty: true}, nil
}

// RemoveValue deletes a value from an axis.
func (r Registry) RemoveValue(axis, value string) (Mutation, error) {
	next := r.Clone()
	values, err := next.valuesRef(axis)
	if err != nil {
		return Mutation{}, err
	}
	for i, v := range *values {
		if v == value {
			*values = append((*values)[:i], (*values)[i+1:]...)
			return Mutation{Registry: next, Dirty: true}, nil
		}
	}
	return Mutation{}, fmt.Errorf("%w: %s has no value %q", ErrInvalid, axis, value)
}

// AddLevel declares a new extra level with no values.
func (r Registry) AddLevel(name string) (Mutation, error) {
	name = strings.TrimSpace(name)
	if err := r.checkLevelName(name); err != nil {
		return Mutation{}, err
	}
	next := r.Clone()
	next.Levels = append(next.Levels, Level{Name: name, Values: []string{}})
	return Mutation{Registry: next, Dirty: true}, nil
}

// RemoveLevel drops an extra level and its values.
func (r Registry) RemoveLevel(name string) (Mutation, error) {
	i := r.levelIndex(name)
	if i < 0 {
		return Mutation{}, fmt.Errorf("%w: unknown level %q", ErrInvalid, name)
	}
	next := r.Clone()
	next.Levels = append(next.Levels[:i], next.Levels[i+1:]...)
	return Mutation{Registry: next, Dirty: true}, nil
}

// RenameLevel renames an extra level keeping its values.
func (r Registry) RenameLevel(oldName, newName string) (Mutation, error) {
	i := r.levelIndex(oldName)
	if i < 0 {
		return Mutation{}, fmt.Errorf("%w: unknown level %q", ErrInvalid, oldName)
	}
	newName = strings.TrimSpace(newName)
	if strings.EqualFold(oldName, newName) && newName != "" {
		next := r.Clone()
		next.Levels[i].Name = newName
		return Mutation{Registry: next, Dirty: oldName != newName}, nil
	}
	if err := r.checkLevelName(newName); err != nil {
		return Mutation{}, err
	}
	next := r.Clone()
	next.Levels[i].Name = newName
	return Mutation{Registry: next, Dirty: true}, nil
}

// Clone deep copy
func (r Registry) Clone() Registry {
	out := Registry{
		SiteAxis:  r.SiteAxis,
		Customers: append([]string{}, r.Customers...),
		Sites:     append([]string{}, r.Sites...),
		Levels:    make([]Level, len(r.Levels)),
	}
	for i, l := range r.Levels {
		out.Levels[i] = Level{Name: l.Name, Values: append([]string{}, l.Values...)}
	}
	return out
}

// Signature sorted serialization of every axis value set.
// Two registries with the same value sets produce the same signature.
func (r Registry) Signature() string {
	parts := make([]string, 0, 2+len(r.Levels))
	add := func(name string, values []string) {
		sorted := append([]string{}, values...)
		sort.Strings(sorted)
		parts = append(parts, name+"="+strings.Join(sorted, ","))
	}
	add(AxisCustomer, r.Customers)
	add(r.siteAxis(), r.Sites)
	for _, l := range r.Levels {
		add("level:"+l.Name, l.Values)
	}
	sort.Strings(parts)
	return strings.Join(parts, ";")
}

// Validate checks the invariants of a registry decoded from outside.
func (r Registry) Validate() error {
	var problems []string
	check := func(axis string, values []string) {
		seen := make(map[string]bool, len(values))
		for _, v := range values {
			if strings.TrimSpace(v) == "" {
				problems = append(problems, fmt.Sprintf("%s contains an empty value", axis))
				continue
			}
			if !SafeToken(v) {
				problems = append(problems, fmt.Sprintf("%s value %q must not contain '|' or '='", axis, v))
			}
			if seen[v] {
				problems = append(problems, fmt.Sprintf("%s has duplicate value %q", axis, v))
			}
			seen[v] = true
		}
	}
	check(AxisCustomer, r.Customers)
	check(r.siteAxis(), r.Sites)
	names := make(map[string]bool, len(r.Levels))
	for _, l := range r.Levels {
		key := strings.ToLower(strings.TrimSpace(l.Name))
		if key == "" || isReserved(key) || names[key] || !SafeToken(key) {
			problems = append(problems, fmt.Sprintf("invalid level name %q", l.Name))
		}
		names[key] = true
		check(l.Name, l.Values)
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func (r *Registry) valuesRef(axis string) (*[]string, error) {
	switch {
	case axis == AxisType:
		return nil, fmt.Errorf("%w: the type axis is fixed by the line of business", ErrInvalid)
	case axis == AxisCustomer:
		return &r.Customers, nil
	case axis == r.siteAxis():
		return &r.Sites, nil
	}
	if i := r.levelIndex(axis); i >= 0 {
		return &r.Levels[i].Values, nil
	}
	return nil, fmt.Errorf("%w: unknown axis %q", ErrInvalid, axis)
}

func (r Registry) checkLevelName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: level name is empty", ErrInvalid)
	}
	if isReserved(strings.ToLower(name)) {
		return fmt.Errorf("%w: %q is a fixed axis", ErrInvalid, name)
	}
	if !SafeToken(name) {
		return fmt.Errorf("%w: level name %q must not contain '|' or '='", ErrInvalid, name)
	}
	if r.levelIndex(name) >= 0 {
		return fmt.Errorf("%w: level %q already exists", ErrInvalid, name)
	}
	return nil
}

// levelIndex case-insensitive lookup
func (r Registry) levelIndex(name string) int {
	for i, l := range r.Levels {
		if strings.EqualFold(l.Name, strings.TrimSpace(name)) {
			return i
		}
	}
	return -1
}

func (r Registry) siteAxis() string {
	if r.SiteAxis == AxisSiteType {
		return AxisSiteType
	}
	return AxisCircle
}

func isReserved(lower string) bool {
	switch lower {
	case strings.ToLower(AxisCustomer), strings.ToLower(AxisCircle), strings.ToLower(AxisSiteType), AxisType:
		return true
	}
	return false
}
