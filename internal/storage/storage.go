package storage

import "traceScope/internal/model"

// Storage defines a sink for simulation results.
type Storage interface {
	PutResult(result *model.SimulationResult) error
}
