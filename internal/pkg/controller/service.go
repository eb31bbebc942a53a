// Package controller runs the control cycle: obtain device state, resolve
// per-zone targets against schedule and peak events, decide heat-pump and
// thermostat actions, and emit only the commands that change something.
package controller

import (
	"context"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/rueda1208/HA-HEMS/internal/pkg/config"
	"github.com/rueda1208/HA-HEMS/internal/pkg/gdp"
	"github.com/rueda1208/HA-HEMS/internal/pkg/heatpump"
	"github.com/rueda1208/HA-HEMS/internal/pkg/model"
	"github.com/rueda1208/HA-HEMS/internal/pkg/schedule"
	"github.com/rueda1208/HA-HEMS/internal/pkg/telemetry"
)

// The entity id the pump falls back to when discovery has not yet written a
// heat-pump block into the configuration.
const defaultHeatPumpEntityID = "climate.heat_pump"

type deviceService interface {
	ListEntities(ctx context.Context) ([]string, error)
	FetchStates(ctx context.Context, entityIDs []string) (model.Snapshot, error)
	SetTemperature(ctx context.Context, entityID string, setpoint float64) error
	SetHvacMode(ctx context.Context, entityID string, mode model.HvacMode) error
}

type eventSource interface {
	PeakEvents(ctx context.Context) ([]gdp.PeakEvent, error)
}

type configStore interface {
	Zones() (*config.Zones, error)
	SaveZones(zones *config.Zones) error
	Options() (config.Options, error)
}

type Service struct {
	devices  deviceService
	events   eventSource
	store    configStore
	copModel *heatpump.Model
	logger   *zap.Logger
	now      func() time.Time
}

func New(devices deviceService, events eventSource, store configStore, copModel *heatpump.Model) *Service {
	return &Service{
		devices:  devices,
		events:   events,
		store:    store,
		copModel: copModel,
		logger:   zap.L(),
		now:      time.Now,
	}
}

// Discover lists the climate entities Home Assistant knows about and merges
// any new ones into the zone configuration with default schedules. Run once
// at startup.
func (s *Service) Discover(ctx context.Context) error {
	entityIDs, err := s.devices.ListEntities(ctx)
	if err != nil {
		return err
	}
	zones, err := s.store.Zones()
	if err != nil {
		return err
	}
	if zones.MergeDiscovered(entityIDs) {
		return s.store.SaveZones(zones)
	}
	return nil
}

// RunCycle executes one fetch -> compute -> emit pass. Degradations inside
// the pass (missing outdoor reading, unresolvable zones, event feed down,
// individual apply failures) are logged and never abort the cycle; an error
// is returned only when no device state at all could be obtained.
func (s *Service) RunCycle(ctx context.Context) error {
	zones, err := s.store.Zones()
	if err != nil {
		return err
	}
	opts, err := s.store.Options()
	if err != nil {
		return err
	}

	now := s.now()
	snapshot, err := s.devices.FetchStates(ctx, s.trackedEntities(zones))
	if err != nil {
		return err
	}

	event := s.selectEvent(ctx, now)
	actions := s.computeActions(zones, opts, snapshot, event, now)
	s.applyActions(ctx, actions, snapshot)
	return nil
}

func (s *Service) trackedEntities(zones *config.Zones) []string {
	ids := lo.Keys(zones.HvacSystems)
	if zones.EnvironmentSensorID != "" {
		ids = append(ids, zones.EnvironmentSensorID)
	}
	return ids
}

// selectEvent fetches today's peak events; a dead feed degrades to the
// normal schedule rather than failing the cycle.
func (s *Service) selectEvent(ctx context.Context, now time.Time) *gdp.PeakEvent {
	events, err := s.events.PeakEvents(ctx)
	if err != nil {
		s.logger.Warn("peak-event feed unavailable, falling back to normal schedule", zap.Error(err))
		return nil
	}
	event := gdp.SelectEvent(events, now)
	if event == nil {
		s.logger.Debug("no gdp event selected for today")
	} else {
		s.logger.Debug("selected gdp event",
			zap.String("offer", event.OfferCode),
			zap.Time("start", event.Start),
			zap.Time("end", event.End))
	}
	return event
}

func (s *Service) computeActions(zones *config.Zones, opts config.Options, snapshot model.Snapshot, event *gdp.PeakEvent, now time.Time) model.Actions {
	actions := model.Actions{}
	s.heatPumpPass(actions, zones, opts, snapshot, event, now)
	s.thermostatPass(actions, zones, opts, snapshot, event, now)
	return actions
}

// heatPumpPass decides the pump action and the setpoints of the zones it
// impacts. A missing outdoor reading skips this pass only.
func (s *Service) heatPumpPass(actions model.Actions, zones *config.Zones, opts config.Options, snapshot model.Snapshot, event *gdp.PeakEvent, now time.Time) {
	outdoor, ok := s.outdoorTemperature(zones, snapshot)
	if !ok {
		s.logger.Warn("missing outdoor temperature, skipping heat-pump decision pass",
			zap.String("sensor", zones.EnvironmentSensorID))
		return
	}

	mode := heatpump.SelectMode(outdoor)
	cop := s.copModel.COP(mode, outdoor)
	s.logger.Debug("heat pump operating point",
		zap.Float64("outdoor_temp_c", outdoor),
		zap.String("mode", string(mode)),
		zap.Float64("cop", cop))

	pumpID, pumpZone, found := zones.HeatPumpEntity()
	if !found {
		pumpID = defaultHeatPumpEntityID
	}

	impacted := s.zoneMetrics(SelectZones(zones.HvacSystems, opts.HeatPumpEnabled, true), zones, snapshot, event, now)
	if len(impacted) == 0 {
		s.logger.Warn("no zones with heat pump impact, using pump schedule directly")
		action := model.Action{Mode: &mode}
		if sched := pumpZone.ModeScheduleFor(mode); sched != nil {
			if target, ok := schedule.ResolveTarget(sched, model.DayTypeOf(now), now.Hour()); ok {
				action.Setpoint = lo.ToPtr(target)
			}
		}
		actions[pumpID] = action
		return
	}

	for id, action := range DecideHeatPump(pumpID, mode, cop, impacted) {
		actions[id] = action
	}
}

// thermostatPass resolves every non-impacted zone straight from its schedule
// and peak-event phase, independent of the pump.
func (s *Service) thermostatPass(actions model.Actions, zones *config.Zones, opts config.Options, snapshot model.Snapshot, event *gdp.PeakEvent, now time.Time) {
	nonImpacted := SelectZones(zones.HvacSystems, opts.HeatPumpEnabled, false)
	for id, m := range s.zoneMetrics(nonImpacted, zones, snapshot, event, now) {
		actions[id] = model.Action{Setpoint: lo.ToPtr(m.TargetTemp)}
	}
}

// zoneMetrics resolves inside and target temperature for each zone. Zones
// with a missing reading or no matching schedule slot are skipped for this
// cycle with a warning.
func (s *Service) zoneMetrics(zoneImpacts map[string]float64, zones *config.Zones, snapshot model.Snapshot, event *gdp.PeakEvent, now time.Time) map[string]ZoneMetrics {
	metrics := map[string]ZoneMetrics{}
	for id, impact := range zoneImpacts {
		zone := zones.HvacSystems[id]

		state, ok := snapshot[id]
		if !ok || state.CurrentTemperature == nil {
			s.logger.Warn("inside temperature unavailable, skipping zone", zap.String("entity_id", id))
			continue
		}
		target, phase, ok := gdp.ResolveTarget(zone, zone.Schedule, event, now)
		if !ok {
			s.logger.Warn("no target temperature resolved, skipping zone",
				zap.String("entity_id", id),
				zap.String("phase", phase.String()))
			continue
		}
		s.logger.Debug("zone resolved",
			zap.String("entity_id", id),
			zap.Float64("inside_temp_c", *state.CurrentTemperature),
			zap.Float64("target_temp_c", target),
			zap.String("phase", phase.String()))

		metrics[id] = ZoneMetrics{
			InsideTemp: *state.CurrentTemperature,
			TargetTemp: target,
			Impact:     impact,
		}
	}
	return metrics
}

func (s *Service) outdoorTemperature(zones *config.Zones, snapshot model.Snapshot) (float64, bool) {
	if zones.EnvironmentSensorID == "" {
		return 0, false
	}
	state, ok := snapshot[zones.EnvironmentSensorID]
	if !ok || state.Temperature == nil {
		return 0, false
	}
	return *state.Temperature, true
}

// applyActions diffs every computed action against the reported state and
// emits only changes. A single entity's failure never aborts the rest.
func (s *Service) applyActions(ctx context.Context, actions model.Actions, snapshot model.Snapshot) {
	if len(actions) == 0 {
		s.logger.Info("no control actions to execute")
		return
	}

	for id, action := range actions {
		reported := snapshot[id]
		applied := false

		if action.Mode != nil {
			if string(*action.Mode) != reported.State {
				if err := s.devices.SetHvacMode(ctx, id, *action.Mode); err != nil {
					s.logger.Error("failed to set hvac mode",
						zap.String("entity_id", id),
						zap.String("mode", string(*action.Mode)),
						zap.Error(err))
					continue
				}
				s.logger.Info("hvac mode applied", zap.String("entity_id", id), zap.String("mode", string(*action.Mode)))
				applied = true
			}
			if *action.Mode == model.HvacOff {
				// No setpoint while the pump is off.
				if applied {
					telemetry.PublishAction(ctx, id, action)
				}
				continue
			}
		}

		if action.Setpoint != nil {
			if reported.Temperature == nil || *reported.Temperature != *action.Setpoint {
				if err := s.devices.SetTemperature(ctx, id, *action.Setpoint); err != nil {
					s.logger.Error("failed to set temperature",
						zap.String("entity_id", id),
						zap.Float64("setpoint", *action.Setpoint),
						zap.Error(err))
					continue
				}
				s.logger.Info("setpoint applied", zap.String("entity_id", id), zap.Float64("setpoint", *action.Setpoint))
				applied = true
			}
		}

		if applied {
			telemetry.PublishAction(ctx, id, action)
		}
	}
}
