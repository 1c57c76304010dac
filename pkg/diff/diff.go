// Package diff computes set differences between two key populations for
// diagnostics. It never sits on the write path.
package diff

import (
	"sort"
)

// Report holds the difference between two key populations. The lists are
// lexicographically sorted so output is deterministic and diffable.
type Report struct {
	OnlyInA           []string `json:"onlyInA"`
	OnlyInB           []string `json:"onlyInB"`
	IntersectionCount int      `json:"intersectionCount"`
}

// Keys compares two key lists as sets. Duplicate keys within a list are
// counted once.
func Keys(a, b []string) *Report {
	setA := toSet(a)
	setB := toSet(b)

	report := &Report{
		OnlyInA: []string{},
		OnlyInB: []string{},
	}

	for k := range setA {
		if setB[k] {
			report.IntersectionCount++
		} else {
			report.OnlyInA = append(report.OnlyInA, k)
		}
	}
	for k := range setB {
		if !setA[k] {
			report.OnlyInB = append(report.OnlyInB, k)
		}
	}

	sort.Strings(report.OnlyInA)
	sort.Strings(report.OnlyInB)

	return report
}

func toSet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, k := range keys {
		set[k] = true
	}
	return set
}
