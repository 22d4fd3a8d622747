package utils

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDateRange(t *testing.T) {
	from, to, err := ParseDateRange("2025-03-01", "2025-03-31")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, ClinicLocation), from)
	assert.Equal(t, time.Date(2025, 3, 31, 23, 59, 59, 999999999, ClinicLocation), to)

	from, to, err = ParseDateRange("2025-03-05", "2025-03-05")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour-time.Nanosecond, to.Sub(from))
}

func TestParseDateRangeRejectsBadInput(t *testing.T) {
	for _, tc := range [][2]string{
		{"", "2025-03-01"},
		{"2025-03-01", ""},
		{"01/03/2025", "2025-03-05"},
		{"2025-03-05", "2025-03-01"},
	} {
		_, _, err := ParseDateRange(tc[0], tc[1])
		assert.True(t, IsKind(err, KindValidation), "%v", tc)
	}
}

func TestSetClinicTimezone(t *testing.T) {
	prev := ClinicLocation
	t.Cleanup(func() { ClinicLocation = prev })

	require.NoError(t, SetClinicTimezone("Asia/Ho_Chi_Minh"))
	start, _ := DayBounds(time.Date(2025, 3, 9, 20, 0, 0, 0, time.UTC))
	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, ClinicLocation), start)

	assert.Error(t, SetClinicTimezone("Mars/Olympus_Mons"))
	assert.Equal(t, "Asia/Ho_Chi_Minh", ClinicLocation.String())
}
