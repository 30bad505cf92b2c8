// Package combination expands a dimension registry into combinations and carries
// user-entered data across regenerations by signature.
package combination

import (
	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

// LowestCapabilitySiteType site type that cannot take upgrade transactions
const LowestCapabilitySiteType = "LPSC"

// siteTypeExclusions static type/site-type compatibility table
var siteTypeExclusions = map[string]map[string]bool{
	LowestCapabilitySiteType: {
		model.TypeFDDUpgrade: true,
		model.TypeBBUpgrade:  true,
	},
}

// Result output of Generate
type Result struct {
	Combinations      []model.Combination `json:"combinations"`
	RegistrySignature string              `json:"registrySignature"`
	Preserved         int                 `json:"preserved"` // carried over by signature
	Created           int                 `json:"created"`
	Dropped           int                 `json:"dropped"` // existing combinations no longer generated
}

// Types transaction types of a line of business
func Types(lob model.LOB) []string {
	if lob.SiteTypeKeyed() {
		return []string{model.TypeRFAI, model.TypeDecom, model.TypeFDDUpgrade, model.TypeBBUpgrade}
	}
	return []string{model.TypeRFAI, model.TypeDecom}
}

// Excluded reports whether a type may not be paired with a site type.
func Excluded(lob model.LOB, site, typ string) bool {
	if !lob.SiteTypeKeyed() {
		return false
	}
	return siteTypeExclusions[site][typ]
}

// Generate builds customer x site x type, expands extra levels in declaration order and,
// when preserve is set, carries existing records whose signature is regenerated.
// Output order is the iteration order. An empty required axis yields no combinations.
func Generate(reg dimension.Registry, lob model.LOB, existing []model.Combination, preserve bool) Result {
	siteAxis := lob.SiteAxis()
	// a registry built for another line of business has no values on this site axis
	sites, _ := reg.Values(siteAxis)

	var tuples []map[string]string
	for _, customer := range reg.Customers {
		for _, site := range sites {
			for _, typ := range Types(lob) {
				if Excluded(lob, site, typ) {
					continue
				}
				tuples = append(tuples, map[string]string{
					dimension.AxisCustomer: customer,
					siteAxis:               site,
					dimension.AxisType:     typ,
				})
			}
		}
	}

	for _, level := range reg.Levels {
		if len(level.Values) == 0 {
			continue
		}
		expanded := make([]map[string]string, 0, len(tuples)*len(level.Values))
		for _, t := range tuples {
			for _, v := range level.Values {
				next := make(map[string]string, len(t)+1)
				for k, val := range t {
					next[k] = val
				}
				next[level.Name] = v
				expanded = append(expanded, next)
			}
		}
		tuples = expanded
	}

	prior := make(map[string]model.Combination, len(existing))
	if preserve {
		for _, c := range existing {
			prior[c.Key()] = c
		}
	}

	res := Result{
		Combinations:      make([]model.Combination, 0, len(tuples)),
		RegistrySignature: reg.Signature(),
	}
	seen := make(map[string]bool, len(tuples))
	for _, dims := range tuples {
		sig := model.Signature(dims)
		if seen[sig] {
			continue
		}
		seen[sig] = true

		if old, ok := prior[sig]; ok {
			kept := old.Clone()
			kept.Signature = sig
			kept.Dimensions = dims
			res.Combinations = append(res.Combinations, kept)
			res.Preserved++
			continue
		}
		res.Combinations = append(res.Combinations, model.NewCombination(dims))
		res.Created++
	}

	for sig := range prior {
		if !seen[sig] {
			res.Dropped++
		}
	}
	return res
}
