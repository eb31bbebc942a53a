package cmd

import (
	"context"
	"time"

	paho_mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/robfig/cron/v3"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rueda1208/HA-HEMS/internal/pkg/config"
	"github.com/rueda1208/HA-HEMS/internal/pkg/controller"
	"github.com/rueda1208/HA-HEMS/internal/pkg/gdp"
	"github.com/rueda1208/HA-HEMS/internal/pkg/heatpump"
	"github.com/rueda1208/HA-HEMS/internal/pkg/homeassistant"
	"github.com/rueda1208/HA-HEMS/internal/pkg/mqtt"
	"github.com/rueda1208/HA-HEMS/internal/pkg/telemetry"
)

// One control cycle every five minutes.
const cycleSchedule = "*/5 * * * *"

func ControllerCommand(ctx *cli.Context) error {
	supervisor, err := config.FromEnvironment()
	if err != nil {
		return err
	}

	cfg := &config.Config{
		HomeAssistant: &config.HomeAssistantConfig{
			BaseURL: ctx.String("ha-url"),
			Token:   ctx.String("ha-token"),
		},
		ZonesPath:        ctx.String("config-path"),
		HeatPumpSpecPath: ctx.String("heat-pump-config-path"),
		OptionsPath:      ctx.String("options-path"),
		PeakEventsURL:    ctx.String("peak-events-url"),
		PeakEventsFile:   ctx.String("peak-events-file"),
		RetryAttempts:    ctx.Uint64("retry-attempts"),
		RestartDelay:     ctx.Duration("restart-delay"),
		LogLevel:         ctx.String("log-level"),
	}
	if ctx.String("mqtt-host") != "" {
		cfg.Mqtt = &config.MqttConfig{
			Host:     ctx.String("mqtt-host"),
			Username: ctx.String("mqtt-user"),
			Password: ctx.String("mqtt-pass"),
		}
	}

	// Supervisor-injected environment backs any flag left empty.
	if cfg.HomeAssistant.Token == "" {
		cfg.HomeAssistant.Token = supervisor.Token
	}
	if cfg.HomeAssistant.BaseURL == "" {
		cfg.HomeAssistant.BaseURL = supervisor.BaseURL
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = supervisor.LogLevel
	}

	return run(ctx.Context, cfg)
}

func run(ctx context.Context, cfg *config.Config) error {
	var err error

	logCfg := zap.NewProductionConfig()
	logCfg.Level, err = zap.ParseAtomicLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logCfg.OutputPaths = []string{"stdout"}
	logCfg.ErrorOutputPaths = []string{"stdout"}
	logCfg.Sampling = nil
	logger := zap.Must(logCfg.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel)))
	defer func() {
		_ = logger.Sync() // flushes buffer, if any.
	}()
	zap.ReplaceGlobals(logger)

	heating, cooling, err := config.LoadCOPPoints(cfg.HeatPumpSpecPath)
	if err != nil {
		return err
	}
	copModel, err := heatpump.NewModel(heating, cooling)
	if err != nil {
		return err
	}

	devices := homeassistant.New(cfg.HomeAssistant, cfg.RetryAttempts)

	var events gdp.Source
	if cfg.PeakEventsFile != "" {
		events = gdp.NewFileSource(cfg.PeakEventsFile)
	} else {
		events = gdp.NewHTTPSource(cfg.PeakEventsURL, cfg.RetryAttempts)
	}

	if cfg.Mqtt != nil {
		opts := paho_mqtt.NewClientOptions().
			AddBroker(cfg.Mqtt.Host).
			SetUsername(cfg.Mqtt.Username).
			SetPassword(cfg.Mqtt.Password)
		mqttSvc := mqtt.New(paho_mqtt.NewClient(opts))
		if err := mqttSvc.Connect(); err != nil {
			return err
		}
		if err := telemetry.Register("mqtt", mqttSvc); err != nil {
			return err
		}
	}

	store := config.NewFileStore(cfg.ZonesPath, cfg.OptionsPath)
	svc := controller.New(devices, events, store, copModel)

	errorChan := make(chan error, 1000)
	if err := serve(ctx, svc, errorChan); err != nil {
		logger.Error("controller exited", zap.Error(err))
		// The add-on supervisor restarts the container; pausing here keeps a
		// crash loop from hammering the Home Assistant API.
		time.Sleep(cfg.RestartDelay)
		return err
	}
	return nil
}

// serve runs zone discovery once, then the control cycle on a fixed cron
// schedule until the context ends. Cycle failures are reported on errorChan
// and never terminate the loop.
func serve(ctx context.Context, svc controllerService, errorChan chan error) error {
	eg, ctx := errgroup.WithContext(ctx)

	if err := svc.Discover(ctx); err != nil {
		return err
	}

	eg.Go(func() error {
		return cronControlCycle(ctx, svc, errorChan)
	})

	eg.Go(func() error {
		// handle any async errors from service
		for {
			select {
			case err := <-errorChan:
				zap.L().Error("control cycle failed", zap.Error(err))
			case <-ctx.Done():
				zap.L().Info("context done")
				return ctx.Err()
			}
		}
	})

	return eg.Wait()
}

func cronControlCycle(ctx context.Context, svc controllerService, errChan chan error) error {
	cycle := func() {
		if err := svc.RunCycle(ctx); err != nil {
			errChan <- err
		}
	}
	// First cycle immediately, then on the schedule.
	cycle()

	c := cron.New()
	if _, err := c.AddFunc(cycleSchedule, cycle); err != nil {
		return err
	}
	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return ctx.Err()
}
