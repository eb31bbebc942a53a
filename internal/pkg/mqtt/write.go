package mqtt

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gosimple/slug"

	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
)

type actionMessage struct {
	Mode     *model.HvacMode `json:"mode,omitempty"`
	Setpoint *float64        `json:"setpoint,omitempty"`
	At       time.Time       `json:"at"`
}

// PublishAction publishes one applied control action to
// hems/<entity>/action with the entity id slugified for the topic.
func (s *service) PublishAction(ctx context.Context, entityID string, action model.Action) error {
	topic := fmt.Sprintf("hems/%s/action", slug.Make(entityID))

	payload, err := json.Marshal(actionMessage{
		Mode:     action.Mode,
		Setpoint: action.Setpoint,
		At:       time.Now(),
	})
	if err != nil {
		return err
	}

	token := s.client.Publish(topic, 0, false, payload)
	if res := token.WaitTimeout(time.Second * 10); res {
		return nil
	}
	if err := token.Error(); err != nil {
		return err
	}
	return nil
}
