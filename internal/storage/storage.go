package storage

import "stakeScope/internal/model"

// EventSink receives decoded stake events.
type EventSink interface {
	PutEventBatch(events []model.StakeEvent) error
}
