package utils

import (
	"time"
)

// TimeNowIn returns the current time in the named location, falling back to UTC
// when the location cannot be loaded.
func TimeNowIn(location string) time.Time {
	return timeIn(time.Now(), location)
}

func timeIn(t time.Time, location string) time.Time {
	if location == "" {
		return t.UTC()
	}
	loc, err := time.LoadLocation(location)
	if err != nil {
		return t.UTC()
	}
	return t.In(loc)
}

// RunDate formats t as the yyyy-mm-dd date used in report file names.
func RunDate(t time.Time) string {
	return t.Format("2006-01-02")
}
