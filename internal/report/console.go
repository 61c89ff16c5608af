package report

import (
	"fmt"
	"io"
)

// WriteConsole renders r as the human-readable text report.
func WriteConsole(w io.Writer, r Result, tokenDecimals int32) error {
	p := &printer{w: w}

	p.printf("Contract %s on chain %d\n", r.Contract, r.ChainID)
	p.printf("Fetched %d records over %d pages (decoded %d, not decodable %d, unknown plan %d)\n",
		r.Fetch.Total, r.Fetch.Pages, r.Stats.Decoded, r.Stats.NotDecodable, r.Stats.UnknownPlan)
	if f := r.Fetch.Failure; f != nil {
		p.printf("WARNING: fetch stopped at page %d: %s %s\n", f.Page, f.Reason, f.Message)
		if f.Raw != "" {
			p.printf("  response: %s\n", f.Raw)
		}
		p.printf("  the report below covers partial data\n")
	}
	switch {
	case !r.FilterEnabled:
		p.printf("Wallet filter: disabled\n")
	case !r.FilterActive:
		p.printf("Wallet filter: inactive (%s, %d wallets)\n", r.WalletFile.Status, r.WalletFile.Unique)
	default:
		p.printf("Wallet filter: %s mode, %d wallets from %s\n", r.FilterMode, r.WalletFile.Unique, r.WalletFile.Path)
	}

	for _, plan := range r.Plans {
		p.printf("\nPlan %d (%d days) stakers (total %d, amount %s):\n", plan.PlanID, plan.Days, plan.Count, plan.TotalTokens)
		p.stakes(plan, tokenDecimals)
	}

	p.printf("\n=== Wallet-set members and their stakes ===\n")
	for _, plan := range r.WalletSetPlans {
		p.printf("\nPlan %d (%d days) wallet-set stakers (total %d, amount %s):\n", plan.PlanID, plan.Days, plan.Count, plan.TotalTokens)
		p.stakes(plan, tokenDecimals)
	}

	t := r.Totals
	p.printf("\n=== Totals ===\n")
	p.printf("all stakers: %d events, %d unique stakers, amount %s\n", t.Events, t.UniqueStakers, t.OverallTokens)
	p.printf("wallet-set stakers: %d events, %d unique stakers, amount %s, last stakes %s\n",
		t.WalletSetEvents, t.WalletSetStakers, t.WalletSetTokens, t.WalletSetLastTokens)

	rec := r.Reconciliation
	p.printf("\n=== Reconciliation ===\n")
	if rec.Skipped {
		p.printf("reconciliation skipped (filter inactive)\n")
		return p.err
	}
	p.printf("wallets in set: %d\n", rec.WalletSetSize)
	p.printf("wallets that staked: %d\n", rec.StakedWallets)
	if rec.AllStaked {
		p.printf("All wallets have staked.\n")
	} else {
		p.printf("Wallets that never staked (%d):\n", len(rec.NotStaked))
		for _, addr := range rec.NotStaked {
			p.printf("  %s\n", addr)
		}
	}

	return p.err
}

type printer struct {
	w   io.Writer
	err error
}

func (p *printer) printf(format string, args ...interface{}) {
	if p.err != nil {
		return
	}
	_, p.err = fmt.Fprintf(p.w, format, args...)
}

func (p *printer) stakes(plan PlanSummary, tokenDecimals int32) {
	if len(plan.Stakes) == 0 {
		p.printf("  (none)\n")
		return
	}
	for _, s := range plan.Stakes {
		p.printf("%s - amount: %s (%s) - days: %d - timestamp: %d\n",
			s.Staker, s.Amount, FormatAmount(s.Amount, tokenDecimals), plan.Days, s.Timestamp)
	}
}
