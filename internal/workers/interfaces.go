// Package workers provides abstractions for managing and running
// background workers of the host.
// It defines the Worker interface and a Workers aggregate that allows
// running multiple workers in a unified way.
package workers

import "context"

// Worker is the interface that must be implemented by any background worker.
// It defines a single Run method that starts the worker's execution.
//
// Implementations are expected to spawn their goroutines internally and to
// stop them when ctx is cancelled.
type Worker interface {
	Run(ctx context.Context)
}
