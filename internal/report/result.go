package report

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"

	"stakeScope/internal/indexer"
	"stakeScope/internal/model"
	"stakeScope/internal/staking"
	"stakeScope/internal/wallet"
)

// PlanSummary lists the stakes of one plan.
type PlanSummary struct {
	PlanID        uint64             `json:"plan_id"`
	Days          uint64             `json:"days"`
	Count         int                `json:"count"`
	UniqueStakers int                `json:"unique_stakers"`
	TotalAmount   string             `json:"total_amount"`
	TotalTokens   string             `json:"total_tokens"`
	Stakes        []model.StakeEvent `json:"stakes"`
}

// Stats counts records through the decode stage.
type Stats struct {
	RecordsFetched int `json:"records_fetched"`
	Decoded        int `json:"decoded"`
	NotDecodable   int `json:"not_decodable"`
	UnknownPlan    int `json:"unknown_plan"`
}

// Reconciliation is the wallet-set versus observed-stakers comparison.
type Reconciliation struct {
	WalletSetSize int             `json:"wallet_set_size"`
	StakedWallets int             `json:"staked_wallets"`
	NotStaked     []model.Address `json:"not_staked"`
	AllStaked     bool            `json:"all_staked"`
	// Skipped is set when no wallet filter was active, so nothing was compared.
	Skipped bool `json:"skipped"`
}

// Result is the structured outcome of one pipeline run.
type Result struct {
	GeneratedAt    time.Time           `json:"generated_at"`
	ChainID        uint64              `json:"chain_id"`
	Contract       string              `json:"contract"`
	Topic0         string              `json:"topic0"`
	FilterEnabled  bool                `json:"filter_enabled"`
	FilterActive   bool                `json:"filter_active"`
	FilterMode     FilterMode          `json:"filter_mode"`
	WalletFile     wallet.LoadStats    `json:"wallet_file"`
	Fetch          indexer.FetchResult `json:"fetch"`
	Stats          Stats               `json:"stats"`
	Plans          []PlanSummary       `json:"plans"`
	WalletSetPlans []PlanSummary       `json:"wallet_set_plans"`
	Reconciliation Reconciliation      `json:"reconciliation"`
	Totals         Totals              `json:"totals"`
	Wallets        []WalletSummary     `json:"wallets"`
}

// Partial reports whether pagination ended on a failure.
func (r Result) Partial() bool {
	return r.Fetch.Failure != nil
}

// Summarize builds one PlanSummary per catalog plan in ascending id order.
func Summarize(catalog staking.PlanCatalog, buckets map[uint64][]model.StakeEvent, tokenDecimals int32) []PlanSummary {
	out := make([]PlanSummary, 0, len(catalog))
	for _, id := range catalog.IDs() {
		events := buckets[id]
		total := new(big.Int)
		stakers := make(map[model.Address]struct{}, len(events))
		for _, event := range events {
			if event.Amount != nil {
				total.Add(total, event.Amount)
			}
			stakers[event.Staker] = struct{}{}
		}
		if events == nil {
			events = []model.StakeEvent{}
		}
		out = append(out, PlanSummary{
			PlanID:        id,
			Days:          catalog.Days(id),
			Count:         len(events),
			UniqueStakers: len(stakers),
			TotalAmount:   total.String(),
			TotalTokens:   FormatAmount(total, tokenDecimals),
			Stakes:        events,
		})
	}
	return out
}

// BuildReconciliation wraps Reconcile with the set and staker counts. When the
// filter is inactive the comparison is skipped and never reports all staked.
func BuildReconciliation(wallets wallet.Set, buckets Buckets, filterActive bool) Reconciliation {
	if !filterActive {
		return Reconciliation{
			WalletSetSize: wallets.Len(),
			NotStaked:     []model.Address{},
			Skipped:       true,
		}
	}
	notStaked := Reconcile(wallets, buckets)
	return Reconciliation{
		WalletSetSize: wallets.Len(),
		StakedWallets: wallets.Len() - len(notStaked),
		NotStaked:     notStaked,
		AllStaked:     len(notStaked) == 0,
	}
}

// FormatAmount renders a raw integer amount in whole-token units.
func FormatAmount(amount *big.Int, tokenDecimals int32) string {
	if amount == nil {
		return "0"
	}
	if tokenDecimals <= 0 {
		return amount.String()
	}
	return decimal.NewFromBigInt(amount, -tokenDecimals).String()
}
