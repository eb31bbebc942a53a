package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is assembled once at startup from CLI flags (with env-var
// fallbacks) and passed explicitly into every component; nothing reads the
// environment mid-computation.
type Config struct {
	HomeAssistant *HomeAssistantConfig
	Mqtt          *MqttConfig

	ZonesPath        string
	HeatPumpSpecPath string
	OptionsPath      string

	// Exactly one peak-event source is active; a non-empty file path is an
	// explicit choice made by configuration, never probed.
	PeakEventsURL  string
	PeakEventsFile string

	RetryAttempts uint64
	RestartDelay  time.Duration
	LogLevel      string
}

type HomeAssistantConfig struct {
	BaseURL string
	Token   string
}

type MqttConfig struct {
	Host     string
	Username string
	Password string
}

// Supervisor holds the variables the Home Assistant supervisor injects into
// add-on containers. They serve as fallbacks for the matching CLI flags.
type Supervisor struct {
	Token    string `env:"SUPERVISOR_TOKEN"`
	BaseURL  string `env:"BASE_HA_URL" envDefault:"http://supervisor/core"`
	LogLevel string `env:"LOGLEVEL" envDefault:"info"`
}

// FromEnvironment parses the supervisor-provided environment.
func FromEnvironment() (Supervisor, error) {
	return env.ParseAs[Supervisor]()
}
