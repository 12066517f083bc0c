package risk

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"Omamori/internal/config"
)

// Config holds every threshold used by the scorer and the level decision.
type Config struct {
	DangerThreshold  int
	CautionThreshold int

	DangerPollInterval  time.Duration
	CautionPollInterval time.Duration
	SafePollInterval    time.Duration

	LowBatteryLevel     int
	PoorGPSAccuracy     float64
	LongInactiveMinutes int
	HighTemperature     float64
	LowTemperature      float64
	SevereWeather       map[string]struct{}

	BatteryPoints      int
	GPSPoints          int
	InactivityPoints   int
	HighTempPoints     int
	LowTempPoints      int
	SevereWeatherPoint int
}

func DefaultConfig() Config {
	return Config{
		DangerThreshold:     80,
		CautionThreshold:    40,
		DangerPollInterval:  15 * time.Second,
		CautionPollInterval: 45 * time.Second,
		SafePollInterval:    60 * time.Second,
		LowBatteryLevel:     20,
		PoorGPSAccuracy:     100,
		LongInactiveMinutes: 60,
		HighTemperature:     35,
		LowTemperature:      0,
		SevereWeather: weatherSet([]string{
			"storm", "thunderstorm", "heavy_rain", "snow", "blizzard", "typhoon",
		}),
		BatteryPoints:      20,
		GPSPoints:          10,
		InactivityPoints:   40,
		HighTempPoints:     30,
		LowTempPoints:      20,
		SevereWeatherPoint: 20,
	}
}

var ErrInvalidThresholds = errors.New("invalid risk thresholds")

// Validate rejects orderings the level decision cannot work with.
func (c Config) Validate() error {
	if c.CautionThreshold <= 0 || c.CautionThreshold >= c.DangerThreshold {
		return fmt.Errorf("%w: caution %d must be positive and below danger %d", ErrInvalidThresholds, c.CautionThreshold, c.DangerThreshold)
	}
	if c.LowTemperature >= c.HighTemperature {
		return fmt.Errorf("%w: low temperature %.1f must be below high temperature %.1f", ErrInvalidThresholds, c.LowTemperature, c.HighTemperature)
	}
	return nil
}

// FromConfig overlays the TOML section onto DefaultConfig. Zero values keep the default,
// except the temperatures, which are pointers so 0 can be set explicitly.
func FromConfig(rc config.RiskConfig) (Config, error) {
	c := DefaultConfig()
	if rc.DangerThreshold > 0 {
		c.DangerThreshold = rc.DangerThreshold
	}
	if rc.CautionThreshold > 0 {
		c.CautionThreshold = rc.CautionThreshold
	}
	if rc.DangerPollSeconds > 0 {
		c.DangerPollInterval = time.Duration(rc.DangerPollSeconds) * time.Second
	}
	if rc.CautionPollSeconds > 0 {
		c.CautionPollInterval = time.Duration(rc.CautionPollSeconds) * time.Second
	}
	if rc.SafePollSeconds > 0 {
		c.SafePollInterval = time.Duration(rc.SafePollSeconds) * time.Second
	}
	if rc.LowBatteryLevel > 0 {
		c.LowBatteryLevel = rc.LowBatteryLevel
	}
	if rc.PoorGPSAccuracy > 0 {
		c.PoorGPSAccuracy = rc.PoorGPSAccuracy
	}
	if rc.LongInactiveMinutes > 0 {
		c.LongInactiveMinutes = rc.LongInactiveMinutes
	}
	if rc.HighTemperature != nil {
		c.HighTemperature = *rc.HighTemperature
	}
	if rc.LowTemperature != nil {
		c.LowTemperature = *rc.LowTemperature
	}
	if len(rc.SevereWeather) > 0 {
		c.SevereWeather = weatherSet(rc.SevereWeather)
	}
	return c, c.Validate()
}

func weatherSet(conditions []string) map[string]struct{} {
	set := make(map[string]struct{}, len(conditions))
	for _, c := range conditions {
		c = normalizeCondition(c)
		if c != "" {
			set[c] = struct{}{}
		}
	}
	return set
}

func normalizeCondition(c string) string {
	c = strings.ToLower(strings.TrimSpace(c))
	return strings.ReplaceAll(c, " ", "_")
}
