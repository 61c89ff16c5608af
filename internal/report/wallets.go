package report

import (
	"math/big"
	"sort"
	"strconv"
	"strings"

	"stakeScope/internal/model"
	"stakeScope/internal/wallet"
)

// WalletSummary aggregates every decoded stake of one staker.
type WalletSummary struct {
	Staker        model.Address `json:"staker"`
	Events        int           `json:"events"`
	TotalAmount   string        `json:"total_amount"`
	TotalTokens   string        `json:"total_tokens"`
	PlanIDs       []uint64      `json:"plan_ids"`
	LastBlock     uint64        `json:"last_block"`
	LastPlanID    uint64        `json:"last_plan_id"`
	LastAmount    string        `json:"last_amount"`
	LastTimestamp uint64        `json:"last_timestamp"`
	InWalletSet   bool          `json:"in_wallet_set"`
}

// Totals compares all stakers with the wallet-set members among them.
type Totals struct {
	Events              int    `json:"events"`
	UniqueStakers       int    `json:"unique_stakers"`
	OverallAmount       string `json:"overall_amount"`
	OverallTokens       string `json:"overall_tokens"`
	WalletSetEvents     int    `json:"wallet_set_events"`
	WalletSetStakers    int    `json:"wallet_set_stakers"`
	WalletSetAmount     string `json:"wallet_set_amount"`
	WalletSetTokens     string `json:"wallet_set_tokens"`
	WalletSetLastAmount string `json:"wallet_set_last_amount"`
	WalletSetLastTokens string `json:"wallet_set_last_tokens"`
}

type walletAcc struct {
	summary WalletSummary
	total   *big.Int
	last    *big.Int
	lastKey [2]uint64
	seen    bool
}

// SummarizeWallets groups events by staker, ordered by address. The last
// stake of a wallet is the one with the highest block, then timestamp; on a
// tie the later event wins.
func SummarizeWallets(events []model.StakeEvent, wallets wallet.Set, tokenDecimals int32) ([]WalletSummary, Totals) {
	accs := make(map[model.Address]*walletAcc)
	overall := new(big.Int)
	ours := new(big.Int)
	totals := Totals{Events: len(events)}

	for _, event := range events {
		staker := model.CanonicalAddress(string(event.Staker))
		acc, ok := accs[staker]
		if !ok {
			acc = &walletAcc{
				summary: WalletSummary{Staker: staker, PlanIDs: []uint64{}, InWalletSet: wallets.Contains(staker)},
				total:   new(big.Int),
				last:    new(big.Int),
			}
			accs[staker] = acc
		}

		amount := event.Amount
		if amount == nil {
			amount = new(big.Int)
		}
		acc.summary.Events++
		acc.summary.PlanIDs = append(acc.summary.PlanIDs, event.PlanID)
		acc.total.Add(acc.total, amount)
		overall.Add(overall, amount)
		if acc.summary.InWalletSet {
			totals.WalletSetEvents++
			ours.Add(ours, amount)
		}

		block := parseBlock(event.BlockNumber)
		key := [2]uint64{block, event.Timestamp}
		if !acc.seen || key[0] > acc.lastKey[0] || (key[0] == acc.lastKey[0] && key[1] >= acc.lastKey[1]) {
			acc.seen = true
			acc.lastKey = key
			acc.last.Set(amount)
			acc.summary.LastBlock = block
			acc.summary.LastPlanID = event.PlanID
			acc.summary.LastTimestamp = event.Timestamp
		}
	}

	out := make([]WalletSummary, 0, len(accs))
	oursLast := new(big.Int)
	for _, acc := range accs {
		acc.summary.TotalAmount = acc.total.String()
		acc.summary.TotalTokens = FormatAmount(acc.total, tokenDecimals)
		acc.summary.LastAmount = acc.last.String()
		if acc.summary.InWalletSet {
			totals.WalletSetStakers++
			oursLast.Add(oursLast, acc.last)
		}
		out = append(out, acc.summary)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Staker < out[j].Staker })

	totals.UniqueStakers = len(out)
	totals.OverallAmount = overall.String()
	totals.OverallTokens = FormatAmount(overall, tokenDecimals)
	totals.WalletSetAmount = ours.String()
	totals.WalletSetTokens = FormatAmount(ours, tokenDecimals)
	totals.WalletSetLastAmount = oursLast.String()
	totals.WalletSetLastTokens = FormatAmount(oursLast, tokenDecimals)
	return out, totals
}

// parseBlock reads an explorer block number, hex with 0x or decimal.
// Unparseable values sort first.
func parseBlock(raw string) uint64 {
	raw = strings.TrimSpace(raw)
	base := 10
	if strings.HasPrefix(raw, "0x") || strings.HasPrefix(raw, "0X") {
		raw, base = raw[2:], 16
	}
	block, err := strconv.ParseUint(raw, base, 64)
	if err != nil {
		return 0
	}
	return block
}
