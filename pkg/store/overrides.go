package store

import (
	"strconv"
	"strings"
)

// overridePrefix namespaces override entries so they can share a store
// with other selections.
const overridePrefix = "override:"

// Overrides wraps a Store with typed access to manual price overrides.
// Absence is signaled by key presence, never by the numeric value, so a
// stored override of 0 is valid and distinct from "not set".
type Overrides struct {
	store Store
}

// NewOverrides creates an override view over the given store.
func NewOverrides(s Store) *Overrides {
	return &Overrides{store: s}
}

// Get returns the override for a SKU and whether one is set.
func (o *Overrides) Get(sku string) (float64, bool, error) {
	raw, ok, err := o.store.Get(overridePrefix + sku)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		// A corrupt entry reads as absent rather than failing pricing.
		return 0, false, nil
	}
	return v, true, nil
}

// Set stores an override for a SKU.
func (o *Overrides) Set(sku string, value float64) error {
	return o.store.Set(overridePrefix+sku, strconv.FormatFloat(value, 'f', -1, 64))
}

// Clear removes the override for a SKU.
func (o *Overrides) Clear(sku string) error {
	return o.store.Delete(overridePrefix + sku)
}

// ClearAll removes every stored override, leaving other entries in the
// underlying store untouched.
func (o *Overrides) ClearAll() error {
	keys, err := o.store.Keys()
	if err != nil {
		return err
	}
	for _, k := range keys {
		if strings.HasPrefix(k, overridePrefix) {
			if err := o.store.Delete(k); err != nil {
				return err
			}
		}
	}
	return nil
}

// SKUs returns the SKUs with overrides set, sorted.
func (o *Overrides) SKUs() ([]string, error) {
	keys, err := o.store.Keys()
	if err != nil {
		return nil, err
	}
	var skus []string
	for _, k := range keys {
		if strings.HasPrefix(k, overridePrefix) {
			skus = append(skus, strings.TrimPrefix(k, overridePrefix))
		}
	}
	return skus, nil
}
