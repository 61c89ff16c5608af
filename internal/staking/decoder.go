package staking

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"stakeScope/internal/model"
)

const (
	wordHexLen = 64
	minDataHex = 3 * wordHexLen // amount, plan id, timestamp
	addrHexLen = 40
)

var (
	// ErrNotDecodable marks a record that does not carry a stake payload.
	ErrNotDecodable = errors.New("record not decodable")
	// ErrUnknownPlan marks a decoded stake whose plan id is not in the catalog.
	ErrUnknownPlan = errors.New("unknown plan id")
)

// Decode extracts a stake from a raw log record.
//
// Layout: topics[1] holds the staker left-padded to 32 bytes, data holds three
// 32-byte words: amount, plan id, timestamp.
func Decode(record model.LogRecord) (model.StakeEvent, error) {
	if len(record.Topics) < 2 {
		return model.StakeEvent{}, fmt.Errorf("%w: expected at least 2 topics, got %d", ErrNotDecodable, len(record.Topics))
	}

	data := strings.TrimPrefix(record.Data, "0x")
	if len(data) < minDataHex {
		return model.StakeEvent{}, fmt.Errorf("%w: data length %d < %d", ErrNotDecodable, len(data), minDataHex)
	}

	topic := record.Topics[1]
	if len(topic) < addrHexLen {
		return model.StakeEvent{}, fmt.Errorf("%w: staker topic too short", ErrNotDecodable)
	}

	words, err := hexutil.Decode("0x" + data[:minDataHex])
	if err != nil {
		return model.StakeEvent{}, fmt.Errorf("%w: %v", ErrNotDecodable, err)
	}
	readU256 := func(word int) *big.Int {
		start := word * 32
		return new(big.Int).SetBytes(words[start : start+32])
	}

	amount := readU256(0)
	planID := readU256(1)
	timestamp := readU256(2)
	if !planID.IsUint64() {
		return model.StakeEvent{}, fmt.Errorf("%w: plan id %s overflows uint64", ErrNotDecodable, planID)
	}
	if !timestamp.IsUint64() {
		return model.StakeEvent{}, fmt.Errorf("%w: timestamp %s overflows uint64", ErrNotDecodable, timestamp)
	}

	return model.StakeEvent{
		Staker:      model.CanonicalAddress(topic[len(topic)-addrHexLen:]),
		Amount:      amount,
		PlanID:      planID.Uint64(),
		Timestamp:   timestamp.Uint64(),
		BlockNumber: record.BlockNumber,
		TxHash:      record.TxHash,
	}, nil
}

// Decoder decodes stake records and drops plans missing from its catalog.
type Decoder struct {
	catalog PlanCatalog
}

// NewDecoder builds a Decoder bound to catalog.
func NewDecoder(catalog PlanCatalog) (*Decoder, error) {
	if len(catalog) == 0 {
		return nil, fmt.Errorf("plan catalog is empty")
	}
	return &Decoder{catalog: catalog}, nil
}

// Decode converts a record into a stake of a recognised plan.
func (d *Decoder) Decode(record model.LogRecord) (model.StakeEvent, error) {
	event, err := Decode(record)
	if err != nil {
		return model.StakeEvent{}, err
	}
	if !d.catalog.Has(event.PlanID) {
		return model.StakeEvent{}, fmt.Errorf("%w: %d", ErrUnknownPlan, event.PlanID)
	}
	return event, nil
}

// Catalog returns the decoder's plan catalog.
func (d *Decoder) Catalog() PlanCatalog {
	return d.catalog
}
