package model

import (
	"encoding/json"
)

// LogRecord is a raw log entry as returned by the explorer getLogs endpoint.
// Numeric fields are kept as the hex strings the explorer sends.
type LogRecord struct {
	Address     string   `json:"address"`
	Topics      []string `json:"topics"`
	Data        string   `json:"data"`
	BlockNumber string   `json:"blockNumber"`
	BlockHash   string   `json:"blockHash,omitempty"`
	TimeStamp   string   `json:"timeStamp,omitempty"`
	LogIndex    string   `json:"logIndex,omitempty"`
	TxHash      string   `json:"transactionHash"`
	TxIndex     string   `json:"transactionIndex,omitempty"`
}

// MarshalJSON ensures LogRecord is encoded with stable field names.
func (lr LogRecord) MarshalJSON() ([]byte, error) {
	type Alias LogRecord
	return json.Marshal(Alias(lr))
}

// UnmarshalJSON decodes a LogRecord from JSON.
func (lr *LogRecord) UnmarshalJSON(data []byte) error {
	type Alias LogRecord
	var a Alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*lr = LogRecord(a)
	return nil
}
