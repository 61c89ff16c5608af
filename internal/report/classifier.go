package report

import (
	"fmt"
	"strings"

	"stakeScope/internal/model"
	"stakeScope/internal/staking"
	"stakeScope/internal/wallet"
)

// FilterMode selects how wallet-set members are treated in the qualifying buckets.
type FilterMode string

const (
	// ModeInclude keeps only wallet-set members.
	ModeInclude FilterMode = "include"
	// ModeExclude drops wallet-set members.
	ModeExclude FilterMode = "exclude"
)

// ParseFilterMode validates a mode string.
func ParseFilterMode(input string) (FilterMode, error) {
	switch mode := FilterMode(strings.ToLower(strings.TrimSpace(input))); mode {
	case ModeInclude, ModeExclude:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid filter mode %q (want include or exclude)", input)
	}
}

// Buckets groups stakes by plan id in arrival order.
type Buckets struct {
	// Qualifying holds stakes that passed the filter policy.
	Qualifying map[uint64][]model.StakeEvent
	// InWalletSet holds every stake by a wallet-set member, regardless of policy.
	InWalletSet map[uint64][]model.StakeEvent
}

// Classifier assigns decoded stakes to per-plan buckets.
type Classifier struct {
	catalog       staking.PlanCatalog
	wallets       wallet.Set
	filterEnabled bool
	mode          FilterMode
	buckets       Buckets
}

// NewClassifier builds a Classifier with an empty bucket per catalog plan.
func NewClassifier(catalog staking.PlanCatalog, wallets wallet.Set, filterEnabled bool, mode FilterMode) *Classifier {
	buckets := Buckets{
		Qualifying:  make(map[uint64][]model.StakeEvent, len(catalog)),
		InWalletSet: make(map[uint64][]model.StakeEvent, len(catalog)),
	}
	for _, id := range catalog.IDs() {
		buckets.Qualifying[id] = nil
		buckets.InWalletSet[id] = nil
	}
	return &Classifier{
		catalog:       catalog,
		wallets:       wallets,
		filterEnabled: filterEnabled,
		mode:          mode,
		buckets:       buckets,
	}
}

// Filtering reports whether the include/exclude policy is in effect.
func (c *Classifier) Filtering() bool {
	return c.filterEnabled && c.wallets.Len() > 0
}

// Add classifies one stake. Stakes of unknown plans are ignored and Add
// returns false for them.
func (c *Classifier) Add(event model.StakeEvent) bool {
	if !c.catalog.Has(event.PlanID) {
		return false
	}

	inFilter := c.Filtering() && c.wallets.Contains(event.Staker)
	if inFilter {
		c.buckets.InWalletSet[event.PlanID] = append(c.buckets.InWalletSet[event.PlanID], event)
	}

	if c.Filtering() {
		if c.mode == ModeInclude && !inFilter {
			return true
		}
		if c.mode == ModeExclude && inFilter {
			return true
		}
	}

	c.buckets.Qualifying[event.PlanID] = append(c.buckets.Qualifying[event.PlanID], event)
	return true
}

// Buckets returns the accumulated buckets.
func (c *Classifier) Buckets() Buckets {
	return c.buckets
}
