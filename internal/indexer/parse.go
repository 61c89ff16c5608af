package indexer

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

// ParseAddress validates a contract address and returns it in lowercase hex.
func ParseAddress(input string) (common.Address, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return common.Address{}, fmt.Errorf("address is required")
	}
	if !common.IsHexAddress(input) {
		return common.Address{}, fmt.Errorf("invalid address: %s", input)
	}
	return common.HexToAddress(input), nil
}

// ParseTopic0 converts a 32-byte hex event selector into common.Hash.
func ParseTopic0(input string) (common.Hash, error) {
	input = strings.TrimSpace(input)
	data, err := hexutil.Decode(input)
	if err != nil {
		return common.Hash{}, fmt.Errorf("invalid topic0: %s", input)
	}
	if len(data) != 32 {
		return common.Hash{}, fmt.Errorf("invalid topic0 length: %s", input)
	}
	return common.BytesToHash(data), nil
}

// ResolveTopic0 returns the selector from an explicit topic0 hash or, when
// that is empty, from the Keccak-256 of an event signature such as
// "Staked(address,uint256,uint256,uint256)".
func ResolveTopic0(topic0, signature string) (common.Hash, error) {
	if strings.TrimSpace(topic0) != "" {
		return ParseTopic0(topic0)
	}
	signature = strings.Join(strings.Fields(signature), "")
	if signature == "" {
		return common.Hash{}, fmt.Errorf("topic0 or event signature is required")
	}
	if !strings.Contains(signature, "(") || !strings.HasSuffix(signature, ")") {
		return common.Hash{}, fmt.Errorf("invalid event signature: %s", signature)
	}
	return crypto.Keccak256Hash([]byte(signature)), nil
}
