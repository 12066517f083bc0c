package service

import (
	"context"
	"testing"
	"time"

	"Omamori/internal/modules/monitoring/application/dto/request"
	"Omamori/internal/modules/monitoring/domain/entity"
	"Omamori/pkg/xerr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssessRiskIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	sessionID := f.startSession(t)

	created, err := f.logs.Create(ctx, testWorker, sessionID, request.CreateSafetyLogRequest{
		TriggerType:     "heartbeat",
		BatteryLevel:    intPtr(10),
		InactiveMinutes: intPtr(75),
	})
	require.NoError(t, err)
	assert.Equal(t, "caution", created.Assessment.RiskLevel)

	for i := 0; i < 2; i++ {
		out, err := f.risk.AssessRisk(ctx, testAdmin, created.SafetyLog.Id)
		require.NoError(t, err)
		assert.Equal(t, 60, out.Score)
		assert.Equal(t, "caution", out.RiskLevel)
		assert.Equal(t, []string{"long_inactive", "low_battery"}, out.RiskReasons)
		assert.Equal(t, 45, out.NextPollIntervalSeconds)
	}
	assert.Equal(t, int64(1), f.count(t, &entity.RiskAssessment{}))

	_, err = f.risk.AssessRisk(ctx, testOther, created.SafetyLog.Id)
	assert.ErrorIs(t, err, xerr.ErrForbidden)
	_, err = f.risk.AssessRisk(ctx, testAdmin, created.SafetyLog.Id+100)
	assert.ErrorIs(t, err, ErrSafetyLogNotFound)
}

func TestEvaluateHasNoSideEffects(t *testing.T) {
	a := NewRiskAssessor(DefaultSettings().Risk)
	res := a.Evaluate(&entity.SafetyLog{TriggerType: entity.TriggerSOS, BatteryLevel: intPtr(90)})

	assert.Equal(t, entity.RiskDanger, res.RiskLevel)
	assert.Equal(t, 15*time.Second, res.NextPollInterval)
	assert.Nil(t, res.Record)
}

func TestLatestRisk(t *testing.T) {
	ctx := context.Background()

	t.Run("no assessment yet", func(t *testing.T) {
		f := newFixture(t)
		sessionID := f.startSession(t)
		_, err := f.risk.LatestRisk(ctx, testWorker, sessionID)
		assert.ErrorIs(t, err, ErrNoAssessment)
	})

	t.Run("newest log wins over offline backfill", func(t *testing.T) {
		f := newFixture(t)
		sessionID := f.startSession(t)

		live, err := f.logs.Create(ctx, testWorker, sessionID, request.CreateSafetyLogRequest{TriggerType: "check_in"})
		require.NoError(t, err)

		earlier := f.clock.T.Add(-time.Hour)
		f.clock.Advance(time.Minute)
		_, err = f.logs.Create(ctx, testWorker, sessionID, request.CreateSafetyLogRequest{
			TriggerType:   "sos",
			LoggedAt:      &earlier,
			IsOfflineSync: true,
		})
		require.NoError(t, err)

		cached, _ := f.cache.Get(ctx, sessionID)
		assert.Nil(t, cached)

		latest, err := f.risk.LatestRisk(ctx, testAdmin, sessionID)
		require.NoError(t, err)
		assert.Equal(t, live.SafetyLog.Id, latest.SafetyLogId)
		assert.Equal(t, entity.RiskSafe, latest.Level)
		assert.Equal(t, 60, latest.NextPollSeconds)

		cached, _ = f.cache.Get(ctx, sessionID)
		require.NotNil(t, cached)
		assert.Equal(t, live.SafetyLog.Id, cached.SafetyLogId)
	})

	t.Run("strangers are refused", func(t *testing.T) {
		f := newFixture(t)
		sessionID := f.startSession(t)
		_, err := f.risk.LatestRisk(ctx, testOther, sessionID)
		assert.ErrorIs(t, err, xerr.ErrForbidden)
	})
}
