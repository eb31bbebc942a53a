package cmd

import (
	"context"
)

// controllerService defines the interface that cmd.serve expects from the
// climate controller.
type controllerService interface {
	Discover(ctx context.Context) error
	RunCycle(ctx context.Context) error
}
