package service

import (
	"strings"
	"time"

	"Omamori/internal/config"
	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/risk"
)

// Settings are the monitoring knobs that are not part of the scorer.
type Settings struct {
	Risk                  risk.Config
	UndoWindow            time.Duration
	UndoableTriggerTypes  map[entity.TriggerType]struct{}
	TimeoutGrace          time.Duration
	DefaultIntervalMinute int
}

func DefaultSettings() Settings {
	return Settings{
		Risk:                  risk.DefaultConfig(),
		UndoWindow:            15 * time.Second,
		UndoableTriggerTypes:  map[entity.TriggerType]struct{}{entity.TriggerCheckIn: {}},
		TimeoutGrace:          5 * time.Minute,
		DefaultIntervalMinute: 30,
	}
}

func SettingsFromConfig(mc config.MonitoringConfig) (Settings, error) {
	s := DefaultSettings()
	rc, err := risk.FromConfig(mc.Risk)
	if err != nil {
		return s, err
	}
	s.Risk = rc
	if mc.UndoWindowSeconds > 0 {
		s.UndoWindow = time.Duration(mc.UndoWindowSeconds) * time.Second
	}
	if len(mc.UndoableTriggerTypes) > 0 {
		s.UndoableTriggerTypes = make(map[entity.TriggerType]struct{}, len(mc.UndoableTriggerTypes))
		for _, t := range mc.UndoableTriggerTypes {
			tt := entity.TriggerType(strings.TrimSpace(t))
			if tt.Valid() {
				s.UndoableTriggerTypes[tt] = struct{}{}
			}
		}
	}
	if mc.TimeoutGraceMinutes > 0 {
		s.TimeoutGrace = time.Duration(mc.TimeoutGraceMinutes) * time.Minute
	}
	if mc.DefaultIntervalMinute > 0 {
		s.DefaultIntervalMinute = mc.DefaultIntervalMinute
	}
	return s, nil
}

func (s Settings) Undoable(t entity.TriggerType) bool {
	_, ok := s.UndoableTriggerTypes[t]
	return ok
}
