package report

import (
	"stakeScope/internal/model"
	"stakeScope/internal/wallet"
)

// Reconcile returns wallet-set members never seen in any InWalletSet bucket,
// in ascending canonical order. The Qualifying buckets are not consulted, so
// the outcome does not depend on the filter mode.
func Reconcile(wallets wallet.Set, buckets Buckets) []model.Address {
	staked := make(map[model.Address]struct{})
	for _, events := range buckets.InWalletSet {
		for _, event := range events {
			staked[model.CanonicalAddress(string(event.Staker))] = struct{}{}
		}
	}

	notStaked := make([]model.Address, 0)
	for _, addr := range wallets.Sorted() {
		if _, ok := staked[addr]; !ok {
			notStaked = append(notStaked, addr)
		}
	}
	return notStaked
}
