package service

import (
	"strconv"
	"time"
)

// millisecondThreshold separates second- from millisecond-resolution timestamps.
// Values above it are read as milliseconds.
const millisecondThreshold int64 = 10_000_000_000

// displayLayout renders as "dd MMM yyyy HH:mm"
const displayLayout = "02 Jan 2006 15:04"

// FormatTimestamp formats a Unix timestamp in loc (time.Local when nil)
func FormatTimestamp(ts int64, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}

	var t time.Time
	if ts > millisecondThreshold {
		t = time.UnixMilli(ts)
	} else {
		t = time.Unix(ts, 0)
	}

	return t.In(loc).Format(displayLayout)
}

// FahrenheitToCelsius applies (x - 32) * 5/9 and formats with two decimals and a '.' separator
func FahrenheitToCelsius(fahrenheit float64) string {
	celsius := (fahrenheit - 32) * 5.0 / 9.0
	return strconv.FormatFloat(celsius, 'f', 2, 64)
}

// VisibilityLabel maps visibility in meters to a qualitative bucket
func VisibilityLabel(meters int) string {
	switch {
	case meters >= 10000:
		return "Excellent (10km+)"
	case meters >= 4000:
		return "Good (4km - 10km)"
	case meters >= 1000:
		return "Moderate (1km - 4km)"
	case meters >= 500:
		return "Low (500m - 1km)"
	case meters >= 100:
		return "Poor (100m - 500m)"
	case meters >= 0:
		return "Very Poor (< 100m)"
	default:
		return "Unknown"
	}
}
