package utils

import (
	"time"
)

const DateLayout = "2006-01-02"

// ClinicLocation is the timezone calendar dates are interpreted in.
var ClinicLocation = time.UTC

// SetClinicTimezone loads name into ClinicLocation, keeping UTC if it cannot be loaded.
func SetClinicTimezone(name string) error {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	ClinicLocation = loc
	return nil
}

// DayBounds returns [00:00:00, 23:59:59.999999999] of the calendar day containing t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	t = t.In(ClinicLocation)
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, ClinicLocation)
	return start, start.AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// ParseDateRange parses two YYYY-MM-DD dates into an inclusive range covering both days.
func ParseDateRange(startDate, endDate string) (time.Time, time.Time, error) {
	if startDate == "" || endDate == "" {
		return time.Time{}, time.Time{}, Validation("Vui lòng cung cấp startDate và endDate")
	}
	start, err := time.ParseInLocation(DateLayout, startDate, ClinicLocation)
	if err != nil {
		return time.Time{}, time.Time{}, Validation("startDate không hợp lệ: %s", startDate)
	}
	end, err := time.ParseInLocation(DateLayout, endDate, ClinicLocation)
	if err != nil {
		return time.Time{}, time.Time{}, Validation("endDate không hợp lệ: %s", endDate)
	}
	if end.Before(start) {
		return time.Time{}, time.Time{}, Validation("endDate phải sau startDate")
	}
	from, _ := DayBounds(start)
	_, to := DayBounds(end)
	return from, to, nil
}
