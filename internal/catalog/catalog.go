// Package catalog keeps the working lists of opex and capex line items.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/Prabhakar2095/Budget-Working/internal/model"
)

var (
	// ErrDuplicate item name already exists (case-insensitive)
	ErrDuplicate = errors.New("item with this name already exists")
	// ErrNotFound item name not in the catalogue
	ErrNotFound = errors.New("item not found")
)

const (
	opexConfigKey  = "catalog.opex"
	capexConfigKey = "catalog.capex"
)

// ConfigStore key-value persistence for catalogue edits
type ConfigStore interface {
	GetConfig(key string) (string, error)
	SetConfig(key, value string) error
}

// DefaultOpexItems the standard direct opex lines
func DefaultOpexItems() []model.OpexItem {
	names := []string{
		"Rent",
		"Electricity",
		"People Cost",
		"Network O&M",
		"Warehouse Rental",
		"Operational Others",
		"Travelling & Sales Promotions",
		"Freight Internal & other direct",
		"Insurance",
		"Passthrough Expense",
		"Loss on Sale of Scrap",
		"Software & IT",
	}
	items := make([]model.OpexItem, len(names))
	for i, n := range names {
		items[i] = model.OpexItem{Name: n}
	}
	return items
}

// DefaultCapexItems the standard capex lines grouped by header
func DefaultCapexItems() []model.CapexItem {
	inventory := []string{"Battery, SMPS & Cabinet", "Pole", "Fiber", "Antenna", "Others"}
	services := []string{"Acquisition", "IBD", "MC & EB Permission", "Other Services"}

	var items []model.CapexItem
	add := func(group model.CapexGroup, names []string, suffix string) {
		for _, n := range names {
			items = append(items, model.NewCapexItem(n+suffix, group))
		}
	}
	add(model.GroupFirstTimeInventory, inventory, " - First Time")
	add(model.GroupFirstTimeCapex, services, " - First Time")
	add(model.GroupCapexPeople, []string{"Capex People"}, "")
	add(model.GroupReplacementInventory, inventory, " - Replacement")
	add(model.GroupReplacementCapex, services, " - Replacement")
	add(model.GroupROWDeposit, []string{"ROW Deposit"}, "")
	add(model.GroupDepositRefund, []string{"Deposit Refund"}, "")
	return items
}

// Catalog mutex-guarded working item lists
type Catalog struct {
	mu    sync.RWMutex
	opex  []model.OpexItem
	capex []model.CapexItem
	store ConfigStore
}

// New loads persisted lists from store, falling back to the defaults. store may be nil.
func New(store ConfigStore) *Catalog {
	c := &Catalog{
		opex:  DefaultOpexItems(),
		capex: DefaultCapexItems(),
		store: store,
	}
	if store == nil {
		return c
	}
	if raw, err := store.GetConfig(opexConfigKey); err == nil {
		var items []model.OpexItem
		if json.Unmarshal([]byte(raw), &items) == nil && len(items) > 0 {
			c.opex = items
		}
	}
	if raw, err := store.GetConfig(capexConfigKey); err == nil {
		var items []model.CapexItem
		if json.Unmarshal([]byte(raw), &items) == nil && len(items) > 0 {
			c.capex = items
		}
	}
	return c
}

// OpexItems copy of the opex list
func (c *Catalog) OpexItems() []model.OpexItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.OpexItem(nil), c.opex...)
}

// CapexItems copy of the capex list
func (c *Catalog) CapexItems() []model.CapexItem {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.CapexItem(nil), c.capex...)
}

// AddOpex appends an item; names are unique case-insensitively.
func (c *Catalog) AddOpex(item model.OpexItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if err := model.Validate(item); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.opex {
		if strings.EqualFold(existing.Name, item.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicate, item.Name)
		}
	}
	c.opex = append(c.opex, item)
	return c.persistLocked(opexConfigKey, c.opex)
}

// UpdateOpex replaces the item named name.
func (c *Catalog) UpdateOpex(name string, item model.OpexItem) error {
	item.Name = strings.TrimSpace(item.Name)
	if err := model.Validate(item); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := -1
	for i, existing := range c.opex {
		if strings.EqualFold(existing.Name, name) {
			idx = i
		} else if strings.EqualFold(existing.Name, item.Name) {
			return fmt.Errorf("%w: %s", ErrDuplicate, item.Name)
		}
	}
	if idx < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	c.opex[idx] = item
	return c.persistLocked(opexConfigKey, c.opex)
}

// AddCapex creates an item under a group header; type and refund flag follow the group.
func (c *Catalog) AddCapex(name string, group model.CapexGroup) (model.CapexItem, error) {
	item := model.NewCapexItem(strings.TrimSpace(name), group)
	if err := model.Validate(item); err != nil {
		return model.CapexItem{}, err
	}
	if !knownGroup(group) {
		return model.CapexItem{}, model.Invalid("unknown capex group %q", group)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, existing := range c.capex {
		if strings.EqualFold(existing.Name, item.Name) {
			return model.CapexItem{}, fmt.Errorf("%w: %s", ErrDuplicate, item.Name)
		}
	}
	c.capex = append(c.capex, item)
	return item, c.persistLocked(capexConfigKey, c.capex)
}

// UpdateCapex replaces offsets and refund flag of an item; name, group and type are kept.
func (c *Catalog) UpdateCapex(name string, item model.CapexItem) (model.CapexItem, error) {
	if err := model.Validate(item); err != nil {
		return model.CapexItem{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.capex {
		if !strings.EqualFold(existing.Name, name) {
			continue
		}
		existing.RecognitionOffsetMonths = item.RecognitionOffsetMonths
		existing.CashflowOffsetMonths = item.CashflowOffsetMonths
		existing.IsRefund = item.IsRefund
		c.capex[i] = existing
		return existing, c.persistLocked(capexConfigKey, c.capex)
	}
	return model.CapexItem{}, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// Reset restores the default lists.
func (c *Catalog) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opex = DefaultOpexItems()
	c.capex = DefaultCapexItems()
	if err := c.persistLocked(opexConfigKey, c.opex); err != nil {
		return err
	}
	return c.persistLocked(capexConfigKey, c.capex)
}

func (c *Catalog) persistLocked(key string, v any) error {
	if c.store == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.store.SetConfig(key, string(data))
}

func knownGroup(g model.CapexGroup) bool {
	for _, known := range model.CapexGroups {
		if known == g {
			return true
		}
	}
	return false
}
