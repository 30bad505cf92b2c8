package model

import (
	"strings"

	"github.com/Prabhakar2095/Budget-Working/internal/dimension"
)

// LOB line of business
type LOB string

const (
	LOBFTTH      LOB = "FTTH"
	LOBSmallCell LOB = "Small Cell"
	LOBSDU       LOB = "SDU"
	LOBDarkFiber LOB = "Dark Fiber"
	LOBOHFC      LOB = "OHFC"
	LOBActive    LOB = "Active"
)

// LOBs every supported line of business in workbook sheet order
var LOBs = []LOB{LOBFTTH, LOBSmallCell, LOBSDU, LOBDarkFiber, LOBOHFC, LOBActive}

// ParseLOB case-insensitive lookup of a supported line of business
func ParseLOB(s string) (LOB, bool) {
	s = strings.TrimSpace(s)
	for _, l := range LOBs {
		if strings.EqualFold(string(l), s) {
			return l, true
		}
	}
	return "", false
}

// SiteTypeKeyed reports whether combinations are keyed by site type instead of circle.
func (l LOB) SiteTypeKeyed() bool {
	return l == LOBSmallCell
}

// SiteAxis the site axis name used by this line of business
func (l LOB) SiteAxis() string {
	if l.SiteTypeKeyed() {
		return dimension.AxisSiteType
	}
	return dimension.AxisCircle
}

// Transaction types.
const (
	TypeRFAI       = "RFAI"
	TypeDecom      = "Decom"
	TypeFDDUpgrade = "FDD upgrades"
	TypeBBUpgrade  = "BB upgrades"
)
