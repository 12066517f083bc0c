package risk

import (
	"time"

	"Omamori/internal/modules/monitoring/domain/entity"
)

// Level picks the risk level. An SOS reason always wins over the score.
func (c Config) Level(score int, reasons []string) entity.RiskLevel {
	for _, r := range reasons {
		if r == ReasonSOSTrigger {
			return entity.RiskDanger
		}
	}
	switch {
	case score >= c.DangerThreshold:
		return entity.RiskDanger
	case score >= c.CautionThreshold:
		return entity.RiskCaution
	default:
		return entity.RiskSafe
	}
}

// PollInterval is the advisory delay before the device should report again.
func (c Config) PollInterval(level entity.RiskLevel) time.Duration {
	switch level {
	case entity.RiskDanger:
		return c.DangerPollInterval
	case entity.RiskCaution:
		return c.CautionPollInterval
	default:
		return c.SafePollInterval
	}
}
