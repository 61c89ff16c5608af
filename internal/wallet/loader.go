package wallet

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"stakeScope/internal/model"
)

// Status describes how the wallet filter file was resolved.
type Status string

const (
	// StatusLoaded means the file was read, possibly with zero addresses.
	StatusLoaded Status = "loaded"
	// StatusFileMissing means the file does not exist and filtering is off.
	StatusFileMissing Status = "file_missing"
	// StatusDisabled means filtering was turned off by configuration.
	StatusDisabled Status = "disabled"
)

// LoadStats summarises a wallet file load.
type LoadStats struct {
	Path          string `json:"path"`
	Status        Status `json:"status"`
	TotalLines    int    `json:"total_lines"`
	NonEmptyLines int    `json:"non_empty_lines"`
	Unique        int    `json:"unique"`
	Malformed     int    `json:"malformed"`
}

// FilterActive reports whether the loaded set can drive filtering.
func (s LoadStats) FilterActive() bool {
	return s.Status == StatusLoaded && s.Unique > 0
}

const bom = "\ufeff"

// maxLineBytes bounds a single wallet file line.
const maxLineBytes = 16 << 20

// Load reads one address token per line from path.
//
// A missing file is not an error: an empty Set is returned with
// StatusFileMissing so the caller can tell it apart from an empty list.
func Load(path string, logger *zap.Logger) (Set, LoadStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	stats := LoadStats{Path: path}

	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			stats.Status = StatusFileMissing
			logger.Warn("wallet filter file not found, filter disabled", zap.String("path", path))
			return NewSet(), stats, nil
		}
		return Set{}, stats, fmt.Errorf("open wallet file: %w", err)
	}
	defer file.Close()

	members := make(map[model.Address]struct{})
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		stats.TotalLines++
		token := strings.TrimSpace(strings.ReplaceAll(scanner.Text(), bom, ""))
		if token == "" {
			continue
		}
		stats.NonEmptyLines++

		addr := model.CanonicalAddress(token)
		if !common.IsHexAddress(string(addr)) {
			stats.Malformed++
			logger.Debug("wallet token is not a hex address", zap.String("token", token), zap.Int("line", stats.TotalLines))
		}
		members[addr] = struct{}{}
	}
	if err := scanner.Err(); err != nil {
		return Set{}, stats, fmt.Errorf("scan wallet file: %w", err)
	}

	stats.Status = StatusLoaded
	stats.Unique = len(members)

	resolved := path
	if abs, err := filepath.Abs(path); err == nil {
		resolved = abs
	}
	logger.Info("wallet filter loaded",
		zap.String("path", resolved),
		zap.Int("total_lines", stats.TotalLines),
		zap.Int("non_empty_lines", stats.NonEmptyLines),
		zap.Int("unique", stats.Unique),
		zap.Int("malformed", stats.Malformed),
	)
	if stats.Malformed > 0 {
		logger.Warn("wallet filter contains malformed tokens", zap.Int("malformed", stats.Malformed))
	}

	return Set{members: members}, stats, nil
}
