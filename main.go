package main

import (
	"log"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/rueda1208/HA-HEMS/cmd"
)

func main() {
	app := &cli.App{
		Name:   "hems-controller",
		Usage:  "climate setpoint controller for home assistant",
		Action: cmd.ControllerCommand,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "ha-url",
				EnvVars: []string{"HA_URL"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "ha-token",
				EnvVars: []string{"HA_TOKEN"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "config-path",
				EnvVars: []string{"CONFIG_PATH"},
				Value:   "/share/controller/config/config.yaml",
			},
			&cli.StringFlag{
				Name:    "heat-pump-config-path",
				EnvVars: []string{"HEAT_PUMP_CONFIG_PATH"},
				Value:   "/share/controller/config/heat-pump.yaml",
			},
			&cli.StringFlag{
				Name:    "options-path",
				EnvVars: []string{"OPTIONS_PATH"},
				Value:   "/data/options.json",
			},
			&cli.StringFlag{
				Name:    "peak-events-url",
				EnvVars: []string{"PEAK_EVENTS_URL"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "peak-events-file",
				EnvVars: []string{"PEAK_EVENTS_FILE"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-host",
				EnvVars: []string{"MQTT_HOST"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-user",
				EnvVars: []string{"MQTT_USER"},
				Value:   "",
			},
			&cli.StringFlag{
				Name:    "mqtt-pass",
				EnvVars: []string{"MQTT_PASS"},
				Value:   "",
			},
			&cli.Uint64Flag{
				Name:    "retry-attempts",
				EnvVars: []string{"RETRY_ATTEMPTS"},
				Value:   5,
			},
			&cli.DurationFlag{
				Name:    "restart-delay",
				EnvVars: []string{"RESTART_DELAY"},
				Value:   5 * time.Minute,
			},
			&cli.StringFlag{
				Name:    "log-level",
				EnvVars: []string{"LOG_LEVEL"},
				Value:   "",
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
