package worker

import (
	"context"
)

// Worker is a long-running background loop
//
//go:generate mockgen -source=worker.go -destination=../mocks/worker.go -package=mocks -mock_names=Worker=MockWorker
type Worker interface {
	// Start runs the loop until the context is canceled or Stop is called
	Start(ctx context.Context) error

	// Stop asks the loop to exit and waits for the current cycle to finish
	Stop(ctx context.Context) error

	// Name returns the worker's name for logging and identification
	Name() string
}
