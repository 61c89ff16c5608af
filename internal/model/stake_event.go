package model

import (
	"encoding/json"
	"fmt"
	"math/big"
)

// StakeEvent is a decoded stake log.
type StakeEvent struct {
	Staker      Address
	Amount      *big.Int
	PlanID      uint64
	Timestamp   uint64
	BlockNumber string
	TxHash      string
}

type stakeEventJSON struct {
	Staker      Address `json:"staker"`
	Amount      string  `json:"amount"`
	PlanID      uint64  `json:"plan_id"`
	Timestamp   uint64  `json:"timestamp"`
	BlockNumber string  `json:"block_number,omitempty"`
	TxHash      string  `json:"tx_hash,omitempty"`
}

// MarshalJSON encodes Amount as a base-10 string so 256-bit values survive.
func (e StakeEvent) MarshalJSON() ([]byte, error) {
	amount := "0"
	if e.Amount != nil {
		amount = e.Amount.String()
	}
	return json.Marshal(stakeEventJSON{
		Staker:      e.Staker,
		Amount:      amount,
		PlanID:      e.PlanID,
		Timestamp:   e.Timestamp,
		BlockNumber: e.BlockNumber,
		TxHash:      e.TxHash,
	})
}

// UnmarshalJSON accepts the layout written by MarshalJSON.
func (e *StakeEvent) UnmarshalJSON(data []byte) error {
	var aux stakeEventJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	amount := new(big.Int)
	if aux.Amount != "" {
		if _, ok := amount.SetString(aux.Amount, 10); !ok {
			return fmt.Errorf("invalid amount %q", aux.Amount)
		}
	}
	*e = StakeEvent{
		Staker:      aux.Staker,
		Amount:      amount,
		PlanID:      aux.PlanID,
		Timestamp:   aux.Timestamp,
		BlockNumber: aux.BlockNumber,
		TxHash:      aux.TxHash,
	}
	return nil
}
