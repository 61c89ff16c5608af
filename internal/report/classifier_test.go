package report

import (
	"bytes"
	"math/big"
	"reflect"
	"strings"
	"testing"

	"stakeScope/internal/model"
	"stakeScope/internal/staking"
	"stakeScope/internal/wallet"
)

const (
	walletA = "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa1"
	walletB = "0xbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbbb2"
	walletC = "0xccccccccccccccccccccccccccccccccccccccc3"
)

func exampleEvents() []model.StakeEvent {
	return []model.StakeEvent{
		{Staker: walletA, PlanID: 1, Amount: big.NewInt(1000), Timestamp: 1000},
		{Staker: walletC, PlanID: 2, Amount: big.NewInt(500), Timestamp: 2000},
	}
}

func classify(mode FilterMode, enabled bool, set wallet.Set, events []model.StakeEvent) Buckets {
	classifier := NewClassifier(staking.DefaultPlanCatalog(), set, enabled, mode)
	for _, event := range events {
		classifier.Add(event)
	}
	return classifier.Buckets()
}

func stakers(events []model.StakeEvent) []model.Address {
	out := make([]model.Address, 0, len(events))
	for _, event := range events {
		out = append(out, event.Staker)
	}
	return out
}

func TestExcludeModeExample(t *testing.T) {
	set := wallet.NewSet(walletA, strings.ToUpper(walletB[2:]))
	buckets := classify(ModeExclude, true, set, exampleEvents())

	if got := stakers(buckets.Qualifying[1]); len(got) != 0 {
		t.Fatalf("plan 1 qualifying should exclude wallet-set member: %v", got)
	}
	if got := stakers(buckets.Qualifying[2]); !reflect.DeepEqual(got, []model.Address{walletC}) {
		t.Fatalf("plan 2 qualifying mismatch: %v", got)
	}
	if got := stakers(buckets.InWalletSet[1]); !reflect.DeepEqual(got, []model.Address{walletA}) {
		t.Fatalf("plan 1 wallet-set bucket mismatch: %v", got)
	}

	notStaked := Reconcile(set, buckets)
	if !reflect.DeepEqual(notStaked, []model.Address{walletB}) {
		t.Fatalf("not staked mismatch: %v", notStaked)
	}
}

func TestIncludeMode(t *testing.T) {
	set := wallet.NewSet(walletA, walletB)
	buckets := classify(ModeInclude, true, set, exampleEvents())

	if got := stakers(buckets.Qualifying[1]); !reflect.DeepEqual(got, []model.Address{walletA}) {
		t.Fatalf("plan 1 qualifying mismatch: %v", got)
	}
	if got := stakers(buckets.Qualifying[2]); len(got) != 0 {
		t.Fatalf("plan 2 qualifying should drop non-members: %v", got)
	}
	if got := stakers(buckets.InWalletSet[1]); !reflect.DeepEqual(got, []model.Address{walletA}) {
		t.Fatalf("plan 1 wallet-set bucket mismatch: %v", got)
	}
}

func TestReconcileIndependentOfMode(t *testing.T) {
	set := wallet.NewSet(walletA, walletB, walletC)
	events := append(exampleEvents(), model.StakeEvent{Staker: walletA, PlanID: 3, Amount: big.NewInt(1)})

	include := Reconcile(set, classify(ModeInclude, true, set, events))
	exclude := Reconcile(set, classify(ModeExclude, true, set, events))
	if !reflect.DeepEqual(include, exclude) {
		t.Fatalf("reconciliation depends on mode: %v != %v", include, exclude)
	}
	if !reflect.DeepEqual(include, []model.Address{walletB}) {
		t.Fatalf("not staked mismatch: %v", include)
	}
}

func TestFilterDisabledKeepsEverything(t *testing.T) {
	set := wallet.NewSet(walletA)

	for _, mode := range []FilterMode{ModeInclude, ModeExclude} {
		buckets := classify(mode, false, set, exampleEvents())
		if len(buckets.Qualifying[1]) != 1 || len(buckets.Qualifying[2]) != 1 {
			t.Fatalf("%s: disabled filter dropped events: %+v", mode, buckets.Qualifying)
		}
		if len(buckets.InWalletSet[1]) != 0 {
			t.Fatalf("%s: wallet-set bucket must stay empty when filtering is off", mode)
		}
	}
}

func TestEmptySetKeepsEverything(t *testing.T) {
	buckets := classify(ModeInclude, true, wallet.NewSet(), exampleEvents())
	if len(buckets.Qualifying[1]) != 1 || len(buckets.Qualifying[2]) != 1 {
		t.Fatalf("empty set should not filter: %+v", buckets.Qualifying)
	}
	if got := Reconcile(wallet.NewSet(), buckets); len(got) != 0 {
		t.Fatalf("empty set reconciles to nothing, got %v", got)
	}
}

func TestUnknownPlanNeverBucketed(t *testing.T) {
	set := wallet.NewSet(walletA)
	classifier := NewClassifier(staking.DefaultPlanCatalog(), set, true, ModeExclude)

	if classifier.Add(model.StakeEvent{Staker: walletA, PlanID: 7, Amount: big.NewInt(1)}) {
		t.Fatalf("unknown plan should be rejected")
	}
	buckets := classifier.Buckets()
	if _, ok := buckets.Qualifying[7]; ok {
		t.Fatalf("unknown plan leaked into qualifying buckets")
	}
	if _, ok := buckets.InWalletSet[7]; ok {
		t.Fatalf("unknown plan leaked into wallet-set buckets")
	}
	if got := Reconcile(set, buckets); !reflect.DeepEqual(got, []model.Address{walletA}) {
		t.Fatalf("unknown plan must not count as staked: %v", got)
	}
}

func TestMixedCaseStakerMatches(t *testing.T) {
	set := wallet.NewSet(walletA)
	event := model.StakeEvent{Staker: model.Address(strings.ToUpper(walletA)), PlanID: 1, Amount: big.NewInt(1)}

	buckets := classify(ModeExclude, true, set, []model.StakeEvent{event})
	if len(buckets.InWalletSet[1]) != 1 {
		t.Fatalf("mixed-case staker not matched")
	}
	if got := Reconcile(set, buckets); len(got) != 0 {
		t.Fatalf("mixed-case staker not reconciled: %v", got)
	}
}

func TestParseFilterMode(t *testing.T) {
	if mode, err := ParseFilterMode(" Include "); err != nil || mode != ModeInclude {
		t.Fatalf("parse include: %v %v", mode, err)
	}
	if _, err := ParseFilterMode("both"); err == nil {
		t.Fatalf("expected error for unknown mode")
	}
}

func TestSummarizeAndConsole(t *testing.T) {
	set := wallet.NewSet(walletA, walletB)
	catalog := staking.DefaultPlanCatalog()
	events := []model.StakeEvent{
		{Staker: walletC, PlanID: 2, Amount: new(big.Int).Mul(big.NewInt(15), big.NewInt(1e17)), Timestamp: 2000},
		{Staker: walletC, PlanID: 2, Amount: big.NewInt(5e17), Timestamp: 2100},
		{Staker: walletA, PlanID: 1, Amount: big.NewInt(1000), Timestamp: 1000},
	}
	buckets := classify(ModeExclude, true, set, events)

	plans := Summarize(catalog, buckets.Qualifying, 18)
	if len(plans) != 4 {
		t.Fatalf("expected a summary per plan, got %d", len(plans))
	}
	plan2 := plans[1]
	if plan2.PlanID != 2 || plan2.Days != 90 || plan2.Count != 2 || plan2.UniqueStakers != 1 {
		t.Fatalf("plan 2 summary mismatch: %+v", plan2)
	}
	if plan2.TotalAmount != "2000000000000000000" || plan2.TotalTokens != "2" {
		t.Fatalf("plan 2 totals mismatch: %s / %s", plan2.TotalAmount, plan2.TotalTokens)
	}
	if plans[3].Stakes == nil {
		t.Fatalf("empty plans should carry an empty slice")
	}

	result := Result{
		Contract:       "0xf8d253f0926b7c1fa8594c1bfd24fdbfc93b6476",
		ChainID:        1,
		FilterEnabled:  true,
		FilterActive:   true,
		FilterMode:     ModeExclude,
		Plans:          plans,
		WalletSetPlans: Summarize(catalog, buckets.InWalletSet, 18),
		Reconciliation: BuildReconciliation(set, buckets, true),
	}
	if result.Reconciliation.StakedWallets != 1 || result.Reconciliation.AllStaked {
		t.Fatalf("reconciliation mismatch: %+v", result.Reconciliation)
	}

	var out bytes.Buffer
	if err := WriteConsole(&out, result, 18); err != nil {
		t.Fatalf("console: %v", err)
	}
	text := out.String()
	for _, want := range []string{
		"Plan 2 (90 days) stakers (total 2, amount 2):",
		"Plan 1 (30 days) stakers (total 0, amount 0):",
		"(none)",
		"Plan 1 (30 days) wallet-set stakers (total 1",
		"Wallets that never staked (1):",
		walletB,
	} {
		if !strings.Contains(text, want) {
			t.Fatalf("console output missing %q:\n%s", want, text)
		}
	}
}

func TestFormatAmount(t *testing.T) {
	cases := []struct {
		amount   *big.Int
		decimals int32
		want     string
	}{
		{big.NewInt(1500000), 6, "1.5"},
		{big.NewInt(1000), 0, "1000"},
		{nil, 18, "0"},
		{big.NewInt(1), 18, "0.000000000000000001"},
	}
	for _, tc := range cases {
		if got := FormatAmount(tc.amount, tc.decimals); got != tc.want {
			t.Fatalf("FormatAmount(%v, %d) = %s, want %s", tc.amount, tc.decimals, got, tc.want)
		}
	}
}
