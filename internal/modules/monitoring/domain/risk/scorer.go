package risk

import (
	"sort"

	"Omamori/internal/modules/monitoring/domain/entity"
)

// Reason codes.
const (
	ReasonSOSTrigger      = "sos_trigger"
	ReasonLowBattery      = "low_battery"
	ReasonHighTemperature = "high_temperature"
	ReasonLowTemperature  = "low_temperature"
	ReasonLongInactive    = "long_inactive"
	ReasonPoorGPSAccuracy = "poor_gps_accuracy"
	ReasonSevereWeather   = "severe_weather"
)

// Factor keys.
const (
	FactorBattery     = "battery_score"
	FactorGPS         = "gps_score"
	FactorInactivity  = "inactivity_score"
	FactorTemperature = "temperature_score"
	FactorWeather     = "weather_score"
)

// Factors is the outcome of scoring one log.
type Factors struct {
	Points  map[string]int
	Reasons []string
}

// Total is the floored sum of all factor points.
func (f Factors) Total() int {
	total := 0
	for _, p := range f.Points {
		total += p
	}
	if total < 0 {
		return 0
	}
	return total
}

func (f Factors) Has(reason string) bool {
	for _, r := range f.Reasons {
		if r == reason {
			return true
		}
	}
	return false
}

type Scorer struct {
	cfg Config
}

func NewScorer(cfg Config) *Scorer {
	return &Scorer{cfg: cfg}
}

// Score looks at a single log only. Missing readings contribute nothing.
func (s *Scorer) Score(log *entity.SafetyLog) Factors {
	points := make(map[string]int)
	reasons := make(map[string]struct{})
	if log == nil {
		return Factors{Points: points, Reasons: []string{}}
	}

	if log.TriggerType == entity.TriggerSOS {
		reasons[ReasonSOSTrigger] = struct{}{}
	}

	if log.BatteryLevel != nil && *log.BatteryLevel <= s.cfg.LowBatteryLevel {
		points[FactorBattery] = s.cfg.BatteryPoints
		reasons[ReasonLowBattery] = struct{}{}
	}

	if log.GpsAccuracy != nil && *log.GpsAccuracy > s.cfg.PoorGPSAccuracy {
		points[FactorGPS] = s.cfg.GPSPoints
		reasons[ReasonPoorGPSAccuracy] = struct{}{}
	}

	if log.InactiveMinutes != nil && *log.InactiveMinutes >= s.cfg.LongInactiveMinutes {
		points[FactorInactivity] = s.cfg.InactivityPoints
		reasons[ReasonLongInactive] = struct{}{}
	}

	if log.WeatherTemp != nil {
		switch t := *log.WeatherTemp; {
		case t >= s.cfg.HighTemperature:
			points[FactorTemperature] = s.cfg.HighTempPoints
			reasons[ReasonHighTemperature] = struct{}{}
		case t <= s.cfg.LowTemperature:
			points[FactorTemperature] = s.cfg.LowTempPoints
			reasons[ReasonLowTemperature] = struct{}{}
		}
	}

	if _, ok := s.cfg.SevereWeather[normalizeCondition(log.WeatherCondition)]; ok {
		points[FactorWeather] = s.cfg.SevereWeatherPoint
		reasons[ReasonSevereWeather] = struct{}{}
	}

	out := make([]string, 0, len(reasons))
	for r := range reasons {
		out = append(out, r)
	}
	sort.Strings(out)

	return Factors{Points: points, Reasons: out}
}
