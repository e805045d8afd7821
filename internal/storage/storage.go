package storage

import "swaplens/internal/model"

// Storage defines a sink for resolved swap records.
type Storage interface {
	PutSwapBatch(swaps []model.SwapRecord) error
}
