package entity

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	for _, s := range []string{"open", "in_progress", "resolved"} {
		st, err := ParseStatus(s)
		require.NoError(t, err)
		assert.Equal(t, Status(s), st)
	}

	_, err := ParseStatus("closed")
	assert.True(t, errors.Is(err, ErrUnknownStatus))
}

func TestTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Status
		ok       bool
	}{
		{StatusOpen, StatusInProgress, true},
		{StatusOpen, StatusResolved, true},
		{StatusOpen, StatusOpen, false},
		{StatusInProgress, StatusInProgress, true},
		{StatusInProgress, StatusResolved, true},
		{StatusInProgress, StatusOpen, false},
		{StatusResolved, StatusOpen, false},
		{StatusResolved, StatusInProgress, false},
		{StatusResolved, StatusResolved, false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			err := tc.from.CheckTransition(tc.to)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.Is(err, ErrIllegalTransition))
			}
		})
	}

	assert.True(t, StatusResolved.Terminal())
	assert.False(t, StatusOpen.Terminal())
	assert.True(t, errors.Is(Status("bogus").CheckTransition(StatusOpen), ErrUnknownStatus))
}

func TestAlertTransitionTo(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("in_progress leaves resolution empty", func(t *testing.T) {
		a := &Alert{Status: StatusOpen}
		require.NoError(t, a.TransitionTo(StatusInProgress, "admin-1", now))
		assert.Equal(t, StatusInProgress, a.Status)
		assert.Nil(t, a.HandledByUserId)
		assert.Nil(t, a.ResolvedAt)
		assert.Equal(t, now, a.UpdatedAt)
	})

	t.Run("resolve stamps actor and time", func(t *testing.T) {
		a := &Alert{Status: StatusInProgress}
		require.NoError(t, a.TransitionTo(StatusResolved, "admin-1", now))
		require.NotNil(t, a.HandledByUserId)
		assert.Equal(t, "admin-1", *a.HandledByUserId)
		require.NotNil(t, a.ResolvedAt)
		assert.Equal(t, now, *a.ResolvedAt)
	})

	t.Run("resolved is terminal", func(t *testing.T) {
		a := &Alert{Status: StatusResolved}
		err := a.TransitionTo(StatusInProgress, "admin-1", now)
		assert.True(t, errors.Is(err, ErrIllegalTransition))
		assert.Equal(t, StatusResolved, a.Status)
		assert.True(t, a.UpdatedAt.IsZero())
	})
}

func TestDefaultSeverity(t *testing.T) {
	assert.Equal(t, SeverityCritical, AlertSOS.DefaultSeverity())
	assert.Equal(t, SeverityHigh, AlertTimeout.DefaultSeverity())
	assert.Equal(t, SeverityMedium, AlertRiskMedium.DefaultSeverity())
	assert.Equal(t, SeverityLow, AlertBatteryLow.DefaultSeverity())
	assert.False(t, AlertType("fire").Valid())
}
