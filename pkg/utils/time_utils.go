package utils

import (
	"strconv"
	"strings"
)

// ParseHoursWindow parses an opening-hours string of the form "09:00-18:00"
// into minutes-of-day. Returns ok=false for anything it cannot parse so the
// hours filter can fail open.
func ParseHoursWindow(hours string) (openMin, closeMin int, ok bool) {
	parts := strings.SplitN(strings.TrimSpace(hours), "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	openMin, ok = parseClock(parts[0])
	if !ok {
		return 0, 0, false
	}
	closeMin, ok = parseClock(parts[1])
	if !ok {
		return 0, 0, false
	}
	return openMin, closeMin, true
}

// WithinHoursWindow reports whether minuteOfDay falls inside [open, close).
// Windows crossing midnight (e.g. "18:00-02:00") are handled.
func WithinHoursWindow(minuteOfDay, openMin, closeMin int) bool {
	if openMin == closeMin {
		return true // treated as always open
	}
	if openMin < closeMin {
		return minuteOfDay >= openMin && minuteOfDay < closeMin
	}
	return minuteOfDay >= openMin || minuteOfDay < closeMin
}

func parseClock(s string) (int, bool) {
	s = strings.TrimSpace(s)
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, false
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, false
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, false
	}
	return h*60 + m, true
}
