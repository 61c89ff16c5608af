package indexer

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// LogFilterer is the subset of the chain client used by RPCSource.
type LogFilterer interface {
	LatestBlockNumber(ctx context.Context) (uint64, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, addresses []common.Address, topic0 []common.Hash) ([]types.Log, error)
}

// RPCSource pages eth_getLogs results over block ranges from genesis to head.
//
// Each page is the next block range batch that contains at least one log, so
// an empty page still means the whole range has been scanned. Pages must be
// requested in order; pageSize is ignored since block batches set the size.
// Page 1 re-reads the head and starts a new scan, so one source can serve
// repeated runs.
type RPCSource struct {
	client    LogFilterer
	contract  common.Address
	topic0    common.Hash
	batchSize uint64
	logger    *zap.Logger

	ranges []BlockRange
	next   int
}

// NewRPCSource builds an RPCSource for one contract and event selector.
func NewRPCSource(client LogFilterer, contract common.Address, topic0 common.Hash, batchSize uint64, logger *zap.Logger) *RPCSource {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RPCSource{
		client:    client,
		contract:  contract,
		topic0:    topic0,
		batchSize: batchSize,
		logger:    logger,
	}
}

// FetchPage implements PageSource.
func (s *RPCSource) FetchPage(ctx context.Context, page, _ int) (Page, error) {
	if s.client == nil {
		return Page{}, fmt.Errorf("chain client is nil")
	}
	if page <= 1 || s.ranges == nil {
		if err := s.plan(ctx); err != nil {
			return Page{}, err
		}
	}

	for s.next < len(s.ranges) {
		blockRange := s.ranges[s.next]
		logs, err := s.client.FilterLogs(ctx, blockRange.From, blockRange.To, []common.Address{s.contract}, []common.Hash{s.topic0})
		if err != nil {
			return Page{}, fmt.Errorf("filter logs %s: %w", blockRange, err)
		}
		s.next++

		if len(logs) == 0 {
			continue
		}

		s.logger.Debug("rpc batch",
			zap.Int("page", page),
			zap.Stringer("range", blockRange),
			zap.Uint64("blocks", blockRange.Blocks()),
			zap.Int("logs", len(logs)),
		)
		out := Page{Status: "1", Message: "OK"}
		for _, log := range logs {
			if log.Removed {
				continue
			}
			out.Records = append(out.Records, buildLogRecord(log))
		}
		if len(out.Records) == 0 {
			continue
		}
		return out, nil
	}

	return Page{Status: "1", Message: "No records found", NoRecords: true}, nil
}

// plan resets the cursor and splits genesis..head into batches.
func (s *RPCSource) plan(ctx context.Context) error {
	head, err := s.client.LatestBlockNumber(ctx)
	if err != nil {
		return fmt.Errorf("get latest block: %w", err)
	}
	ranges, err := SplitRange(0, head, s.batchSize)
	if err != nil {
		return err
	}
	s.ranges = ranges
	s.next = 0
	s.logger.Info("rpc scan planned", zap.Uint64("head", head), zap.Int("batches", len(ranges)))
	return nil
}
