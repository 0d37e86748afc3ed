package storage

import "poolScope/internal/model"

// EventSink defines a sink for reconciled events.
type EventSink interface {
	PutEventBatch(events []model.ReconciledEvent) error
}
