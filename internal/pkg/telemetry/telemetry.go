// Package telemetry fans applied control actions out to registered
// publishers (currently MQTT). Publishing is best-effort observability: a
// failing publisher is logged and never affects the control cycle.
package telemetry

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
)

var errAlreadyRegistered = errors.New("publisher already registered")

var registeredPublishers = make(map[string]Publisher)

// Publisher receives every action the orchestrator actually applied.
type Publisher interface {
	PublishAction(ctx context.Context, entityID string, action model.Action) error
}

// Register adds a named publisher. Registration happens once at startup.
func Register(name string, p Publisher) error {
	if _, ok := registeredPublishers[name]; ok {
		return errAlreadyRegistered
	}
	registeredPublishers[name] = p
	return nil
}

// PublishAction notifies every registered publisher of an applied action.
func PublishAction(ctx context.Context, entityID string, action model.Action) {
	for name, p := range registeredPublishers {
		if err := p.PublishAction(ctx, entityID, action); err != nil {
			zap.L().Warn("telemetry publish failed",
				zap.String("publisher", name),
				zap.String("entity_id", entityID),
				zap.Error(err))
		}
	}
}
