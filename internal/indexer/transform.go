package indexer

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"

	"stakeScope/internal/model"
)

// buildLogRecord renders an RPC log in the explorer's hex-string shape.
func buildLogRecord(log types.Log) model.LogRecord {
	topics := make([]string, 0, len(log.Topics))
	for _, topic := range log.Topics {
		topics = append(topics, topic.Hex())
	}

	return model.LogRecord{
		Address:     log.Address.Hex(),
		Topics:      topics,
		Data:        hexutil.Encode(log.Data),
		BlockNumber: hexutil.EncodeUint64(log.BlockNumber),
		BlockHash:   log.BlockHash.Hex(),
		LogIndex:    hexutil.EncodeUint64(uint64(log.Index)),
		TxHash:      log.TxHash.Hex(),
		TxIndex:     hexutil.EncodeUint64(uint64(log.TxIndex)),
	}
}
