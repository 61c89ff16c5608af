package staking

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// PlanCatalog maps a plan id to its lock duration in days.
type PlanCatalog map[uint64]uint64

// DefaultPlanCatalog returns the reference 30/90/180/360 day plans.
func DefaultPlanCatalog() PlanCatalog {
	return PlanCatalog{1: 30, 2: 90, 3: 180, 4: 360}
}

// Has reports whether id is a known plan.
func (c PlanCatalog) Has(id uint64) bool {
	_, ok := c[id]
	return ok
}

// Days returns the lock duration for id, or 0 for unknown plans.
func (c PlanCatalog) Days(id uint64) uint64 {
	return c[id]
}

// IDs returns plan ids in ascending order.
func (c PlanCatalog) IDs() []uint64 {
	ids := make([]uint64, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// ParsePlanCatalog parses "id=days" pairs such as "1=30,2=90".
func ParsePlanCatalog(pairs map[string]string) (PlanCatalog, error) {
	if len(pairs) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}
	out := make(PlanCatalog, len(pairs))
	for rawID, rawDays := range pairs {
		id, err := strconv.ParseUint(strings.TrimSpace(rawID), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid plan id %q: %w", rawID, err)
		}
		days, err := strconv.ParseUint(strings.TrimSpace(rawDays), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid days for plan %d: %w", id, err)
		}
		if days == 0 {
			return nil, fmt.Errorf("plan %d must have a positive duration", id)
		}
		out[id] = days
	}
	return out, nil
}
