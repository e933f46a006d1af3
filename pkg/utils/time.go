package utils

import (
	"fmt"
	"math"
	"time"
)

// MinutesPerDay converts operating hours into simulated minutes per day
func MinutesPerDay(hours float64) float64 {
	return hours * 60
}

// DayOf returns the zero-based operating day containing a simulation time
func DayOf(minute, minutesPerDay float64) int {
	if minutesPerDay <= 0 || minute < 0 {
		return 0
	}
	return int(math.Floor(minute / minutesPerDay))
}

// MinutesToDuration converts simulated minutes to a time.Duration
func MinutesToDuration(minutes float64) time.Duration {
	return time.Duration(minutes * float64(time.Minute))
}

// FormatMinutes renders a simulation time as "d<day> hh:mm" within an operating day
func FormatMinutes(minute, minutesPerDay float64) string {
	day := DayOf(minute, minutesPerDay)
	offset := minute - float64(day)*minutesPerDay
	if minutesPerDay <= 0 {
		offset = minute
	}
	total := int(math.Round(offset))
	return fmt.Sprintf("d%d %02d:%02d", day, total/60, total%60)
}

// FormatDuration formats a duration in a human-readable way
func FormatDuration(d time.Duration) string {
	if d < time.Millisecond {
		return d.Round(time.Microsecond).String()
	}
	if d < time.Second {
		return d.Round(time.Millisecond).String()
	}
	if d < time.Minute {
		return d.Round(10 * time.Millisecond).String()
	}
	return d.Round(time.Second).String()
}
