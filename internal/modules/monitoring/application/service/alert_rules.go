package service

import (
	"fmt"
	"strings"

	alertEntity "Omamori/internal/modules/alert/domain/entity"
	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/internal/modules/monitoring/domain/risk"
)

// alertFor decides which alert, if any, a freshly assessed log raises. The first match wins.
func alertFor(session *entity.WorkSession, log *entity.SafetyLog, a *Assessment) *alertEntity.Alert {
	var (
		alertType alertEntity.AlertType
		severity  alertEntity.Severity
		message   string
	)
	switch {
	case log.TriggerType == entity.TriggerSOS:
		alertType, severity = alertEntity.AlertSOS, alertEntity.SeverityCritical
		message = "SOS triggered"
	case a.RiskLevel == entity.RiskDanger:
		alertType, severity = alertEntity.AlertRiskHigh, alertEntity.SeverityHigh
		message = fmt.Sprintf("danger risk (score %d): %s", a.Score, strings.Join(a.RiskReasons, ", "))
	case a.RiskLevel == entity.RiskCaution:
		alertType, severity = alertEntity.AlertRiskMedium, alertEntity.SeverityMedium
		message = fmt.Sprintf("caution risk (score %d): %s", a.Score, strings.Join(a.RiskReasons, ", "))
	case risk.Factors{Reasons: a.RiskReasons}.Has(risk.ReasonLowBattery):
		alertType, severity = alertEntity.AlertBatteryLow, alertEntity.SeverityLow
		message = "device battery low"
		if log.BatteryLevel != nil {
			message = fmt.Sprintf("device battery low (%d%%)", *log.BatteryLevel)
		}
	default:
		return nil
	}

	logID := log.Id
	return &alertEntity.Alert{
		WorkSessionId:  session.Id,
		OrganizationId: session.OrganizationId,
		SafetyLogId:    &logID,
		AlertType:      alertType,
		Severity:       severity,
		Message:        message,
	}
}
