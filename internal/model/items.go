package model

import "github.com/Prabhakar2095/Budget-Working/internal/fiscal"

// RateEntry revenue rates of one combination
type RateEntry struct {
	RecurringRate         float64 `json:"recurringRate"`
	OneTimeRate           float64 `json:"oneTimeRate"`
	ExistingRecurringRate float64 `json:"existingRecurringRate"`
	ExistingOneTimeRate   float64 `json:"existingOneTimeRate"`
}

// Rates revenue rates keyed by combination signature
type Rates map[string]RateEntry

// ItemRate per-combination rate of an opex or capex item
type ItemRate struct {
	ExistingRate float64 `json:"existingRate"`
	FreshRate    float64 `json:"freshRate"`
}

// ItemRates item name -> combination signature -> rate
type ItemRates map[string]map[string]ItemRate

// Get rate for an item and combination; missing entries are zero.
func (r ItemRates) Get(item, signature string) ItemRate {
	return r[item][signature]
}

// Set stores a rate, allocating the inner map.
func (r ItemRates) Set(item, signature string, rate ItemRate) {
	if r[item] == nil {
		r[item] = map[string]ItemRate{}
	}
	r[item][signature] = rate
}

// OpexItem direct opex line
type OpexItem struct {
	Name                    string `json:"name" validate:"required"`
	RecognitionOffsetMonths int    `json:"recognitionOffsetMonths" validate:"gte=0"`
	CashflowOffsetMonths    int    `json:"cashflowOffsetMonths" validate:"gte=0"`
}

// CapexGroup capex group header
type CapexGroup string

const (
	GroupFirstTimeInventory   CapexGroup = "First Time Inventory"
	GroupFirstTimeCapex       CapexGroup = "First Time Capex"
	GroupReplacementInventory CapexGroup = "Replacement Inventory"
	GroupReplacementCapex     CapexGroup = "Replacement Capex"
	GroupCapexPeople          CapexGroup = "Capex People"
	GroupROWDeposit           CapexGroup = "ROW Deposit"
	GroupDepositRefund        CapexGroup = "Deposit Refund"
)

// CapexGroups group headers in display order
var CapexGroups = []CapexGroup{
	GroupFirstTimeInventory,
	GroupFirstTimeCapex,
	GroupReplacementInventory,
	GroupReplacementCapex,
	GroupCapexPeople,
	GroupROWDeposit,
	GroupDepositRefund,
}

// CapexType how a capex item's basis is computed
type CapexType string

const (
	CapexFirstTime     CapexType = "first_time"
	CapexReplacement   CapexType = "replacement"
	CapexPeople        CapexType = "people"
	CapexDepositRefund CapexType = "deposit_refund"
)

// TypeForGroup fixed group -> type mapping applied when an item is created
func TypeForGroup(g CapexGroup) CapexType {
	switch g {
	case GroupReplacementInventory, GroupReplacementCapex:
		return CapexReplacement
	case GroupCapexPeople:
		return CapexPeople
	case GroupROWDeposit, GroupDepositRefund:
		return CapexDepositRefund
	default:
		return CapexFirstTime
	}
}

// CapexItem capex line
type CapexItem struct {
	Name                    string     `json:"name" validate:"required"`
	Group                   CapexGroup `json:"group" validate:"required"`
	Type                    CapexType  `json:"type" validate:"omitempty,oneof=first_time replacement people deposit_refund"`
	RecognitionOffsetMonths int        `json:"recognitionOffsetMonths" validate:"gte=0"`
	CashflowOffsetMonths    int        `json:"cashflowOffsetMonths" validate:"gte=0"`
	IsRefund                bool       `json:"isRefund"`
}

// NewCapexItem derives type and refund flag from the group.
func NewCapexItem(name string, group CapexGroup) CapexItem {
	return CapexItem{
		Name:     name,
		Group:    group,
		Type:     TypeForGroup(group),
		IsRefund: group == GroupDepositRefund,
	}
}

// EffectiveType falls back to the group mapping when Type is empty.
func (c CapexItem) EffectiveType() CapexType {
	if c.Type == "" {
		return TypeForGroup(c.Group)
	}
	return c.Type
}

// Overrides uploaded existing amounts: item name -> fiscal year -> months.
// An override replaces the rate-computed existing part of the item.
type Overrides map[string]map[string]fiscal.Series

// Lookup override months for an item and fiscal year
func (o Overrides) Lookup(item, fy string) (fiscal.Series, bool) {
	s, ok := o[item][fy]
	return s, ok
}

// Set stores override months, allocating the inner map.
func (o Overrides) Set(item, fy string, months fiscal.Series) {
	if o[item] == nil {
		o[item] = map[string]fiscal.Series{}
	}
	o[item][fy] = months
}
