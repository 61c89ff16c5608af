package wallet

import (
	"sort"

	"stakeScope/internal/model"
)

// Set is an immutable set of canonical wallet addresses.
type Set struct {
	members map[model.Address]struct{}
}

// NewSet builds a Set from raw address tokens, canonicalizing each one.
func NewSet(tokens ...string) Set {
	members := make(map[model.Address]struct{}, len(tokens))
	for _, token := range tokens {
		addr := model.CanonicalAddress(token)
		if addr == "" {
			continue
		}
		members[addr] = struct{}{}
	}
	return Set{members: members}
}

// Contains reports whether addr, in any casing, is a member.
func (s Set) Contains(addr model.Address) bool {
	_, ok := s.members[model.CanonicalAddress(string(addr))]
	return ok
}

// Len returns the number of members.
func (s Set) Len() int {
	return len(s.members)
}

// Sorted returns members in ascending canonical order.
func (s Set) Sorted() []model.Address {
	out := make([]model.Address, 0, len(s.members))
	for addr := range s.members {
		out = append(out, addr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
