package staking

import (
	"errors"
	"math/big"
	"reflect"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"

	"stakeScope/internal/model"
)

const stakedTopic0 = "0xb4caaf29adda3eefee3ad552a8e85058589bf834c7466cae4ee58787f70589ed"

func TestDecodeMinimumLength(t *testing.T) {
	staker := common.HexToAddress("0xAAAAaaaaAAAAaaaaAAAAaaaaAAAAaaaaAAAA0001")
	record := buildStakeRecord(staker, big.NewInt(1000), 1, 1700000000)

	if got := len(strings.TrimPrefix(record.Data, "0x")); got != 192 {
		t.Fatalf("fixture data length = %d", got)
	}

	event, err := Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Staker != "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa0001" {
		t.Fatalf("staker mismatch: %s", event.Staker)
	}
	if event.Amount.String() != "1000" || event.PlanID != 1 || event.Timestamp != 1700000000 {
		t.Fatalf("fields mismatch: %+v", event)
	}
	if event.TxHash != "0xdef" {
		t.Fatalf("tx hash not carried: %+v", event)
	}
}

func TestDecodeFullWidthAmount(t *testing.T) {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	record := buildStakeRecord(common.HexToAddress("0x01"), max, 4, 1)

	event, err := Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if event.Amount.Cmp(max) != 0 {
		t.Fatalf("amount mismatch: %s", event.Amount)
	}
}

func TestDecodeIsIdempotent(t *testing.T) {
	record := buildStakeRecord(common.HexToAddress("0x1234"), big.NewInt(77), 3, 42)
	record.Data += "00ff" // trailing bytes beyond the third word are ignored

	first, err := Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	second, err := Decode(record)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("decode not deterministic: %+v != %+v", first, second)
	}
}

func TestDecodeRejects(t *testing.T) {
	valid := buildStakeRecord(common.HexToAddress("0x01"), big.NewInt(1), 1, 1)

	t.Run("short data", func(t *testing.T) {
		record := valid
		record.Data = valid.Data[:len(valid.Data)-2]
		if _, err := Decode(record); !errors.Is(err, ErrNotDecodable) {
			t.Fatalf("expected ErrNotDecodable, got %v", err)
		}
	})

	t.Run("one topic", func(t *testing.T) {
		record := valid
		record.Topics = record.Topics[:1]
		if _, err := Decode(record); !errors.Is(err, ErrNotDecodable) {
			t.Fatalf("expected ErrNotDecodable, got %v", err)
		}
	})

	t.Run("empty data", func(t *testing.T) {
		record := valid
		record.Data = "0x"
		if _, err := Decode(record); !errors.Is(err, ErrNotDecodable) {
			t.Fatalf("expected ErrNotDecodable, got %v", err)
		}
	})

	t.Run("non hex", func(t *testing.T) {
		record := valid
		record.Data = "0x" + strings.Repeat("zz", 96)
		if _, err := Decode(record); !errors.Is(err, ErrNotDecodable) {
			t.Fatalf("expected ErrNotDecodable, got %v", err)
		}
	})
}

func TestDecoderDropsUnknownPlan(t *testing.T) {
	decoder, err := NewDecoder(DefaultPlanCatalog())
	if err != nil {
		t.Fatalf("decoder: %v", err)
	}

	for _, planID := range []uint64{0, 5, 99} {
		record := buildStakeRecord(common.HexToAddress("0x01"), big.NewInt(1), planID, 1)
		if _, err := decoder.Decode(record); !errors.Is(err, ErrUnknownPlan) {
			t.Fatalf("plan %d: expected ErrUnknownPlan, got %v", planID, err)
		}
	}

	record := buildStakeRecord(common.HexToAddress("0x01"), big.NewInt(1), 2, 1)
	event, err := decoder.Decode(record)
	if err != nil {
		t.Fatalf("plan 2: %v", err)
	}
	if event.PlanID != 2 {
		t.Fatalf("plan mismatch: %d", event.PlanID)
	}
}

func TestParsePlanCatalog(t *testing.T) {
	catalog, err := ParsePlanCatalog(map[string]string{"1": "30", " 2 ": "90"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(catalog.IDs(), []uint64{1, 2}) {
		t.Fatalf("ids mismatch: %v", catalog.IDs())
	}
	if catalog.Days(2) != 90 {
		t.Fatalf("days mismatch: %d", catalog.Days(2))
	}

	if _, err := ParsePlanCatalog(map[string]string{"x": "30"}); err == nil {
		t.Fatalf("expected error for bad id")
	}
	if _, err := ParsePlanCatalog(map[string]string{"1": "0"}); err == nil {
		t.Fatalf("expected error for zero duration")
	}
	if _, err := ParsePlanCatalog(nil); err == nil {
		t.Fatalf("expected error for empty catalog")
	}
}

func buildStakeRecord(staker common.Address, amount *big.Int, planID, timestamp uint64) model.LogRecord {
	data := make([]byte, 0, 96)
	data = append(data, common.BigToHash(amount).Bytes()...)
	data = append(data, common.BigToHash(new(big.Int).SetUint64(planID)).Bytes()...)
	data = append(data, common.BigToHash(new(big.Int).SetUint64(timestamp)).Bytes()...)

	return model.LogRecord{
		Address:     "0xf8d253f0926b7c1fa8594c1bfd24fdbfc93b6476",
		Topics:      []string{stakedTopic0, common.BytesToHash(staker.Bytes()).Hex()},
		Data:        "0x" + common.Bytes2Hex(data),
		BlockNumber: "0x10",
		TxHash:      "0xdef",
	}
}
