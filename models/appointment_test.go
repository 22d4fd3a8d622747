package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to AppointmentStatus
		ok       bool
	}{
		{StatusBooked, StatusChecked, true},
		{StatusBooked, StatusLate, true},
		{StatusBooked, StatusCancelled, true},
		{StatusBooked, StatusCompleted, false},
		{StatusLate, StatusChecked, true},
		{StatusLate, StatusCompleted, true},
		{StatusChecked, StatusCompleted, true},
		{StatusChecked, StatusBooked, false},
		{StatusCancelled, StatusChecked, false},
		{StatusCompleted, StatusCancelled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestTransitionTo(t *testing.T) {
	a := &Appointment{Status: StatusBooked}
	require.NoError(t, a.TransitionTo(StatusBooked))
	require.NoError(t, a.TransitionTo(StatusChecked))
	require.NoError(t, a.TransitionTo(StatusCompleted))

	err := a.TransitionTo(StatusCompleted)
	var terr *TransitionError
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, StatusCompleted, terr.From)
	assert.Equal(t, StatusCompleted, a.Status)
}

func TestDeriveStatus(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	got, changed := DeriveStatus(StatusBooked, now.Add(-3*time.Hour), now)
	assert.True(t, changed)
	assert.Equal(t, StatusLate, got)

	got, changed = DeriveStatus(StatusBooked, now.Add(-LateAfter), now)
	assert.True(t, changed)
	assert.Equal(t, StatusLate, got)

	_, changed = DeriveStatus(StatusBooked, now.Add(-time.Hour), now)
	assert.False(t, changed)

	got, changed = DeriveStatus(StatusLate, now.Add(-13*time.Hour), now)
	assert.True(t, changed)
	assert.Equal(t, StatusCancelled, got)

	got, changed = DeriveStatus(StatusChecked, now.Add(-13*time.Hour), now)
	assert.True(t, changed)
	assert.Equal(t, StatusCancelled, got)

	_, changed = DeriveStatus(StatusChecked, now.Add(-3*time.Hour), now)
	assert.False(t, changed)

	_, changed = DeriveStatus(StatusCompleted, now.Add(-48*time.Hour), now)
	assert.False(t, changed)
}

func TestApplyTimeRulesAppendsAutoCancelNote(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	a := &Appointment{Status: StatusLate, AppointmentTime: now.Add(-13 * time.Hour), Notes: "đau đầu"}

	require.True(t, a.ApplyTimeRules(now))
	assert.Equal(t, StatusCancelled, a.Status)
	assert.Equal(t, "đau đầu - "+AutoCancelNote, a.Notes)
	assert.False(t, a.ApplyTimeRules(now))
}

func TestSnapshotFee(t *testing.T) {
	fee := &ExaminationFee{ExaminationType: "general", Fee: 150000}
	fee.ID = 4
	a := &Appointment{}
	a.SnapshotFee(fee)

	fee.Fee = 999
	require.NotNil(t, a.ExaminationFeeID)
	assert.Equal(t, uint(4), *a.ExaminationFeeID)
	assert.Equal(t, 150000.0, a.ExaminationFee)
	assert.Equal(t, "general", a.ExaminationType)
}
