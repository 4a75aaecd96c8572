package app

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// applyTimezone sets time.Local from an IANA name or a "+08:00" style
// offset. An empty value keeps the process default.
func applyTimezone(raw string) error {
	tz := strings.TrimSpace(raw)
	if tz == "" {
		return nil
	}
	loc, err := parseLocation(tz)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", tz, err)
	}
	time.Local = loc
	return nil
}

func parseLocation(tz string) (*time.Location, error) {
	if loc, err := time.LoadLocation(tz); err == nil {
		return loc, nil
	}
	if len(tz) == 6 && (tz[0] == '+' || tz[0] == '-') && tz[3] == ':' {
		h, errH := strconv.Atoi(tz[1:3])
		m, errM := strconv.Atoi(tz[4:6])
		if errH == nil && errM == nil && h <= 23 && m <= 59 {
			offset := h*3600 + m*60
			if tz[0] == '-' {
				offset = -offset
			}
			return time.FixedZone(tz, offset), nil
		}
	}
	return nil, fmt.Errorf("expect IANA zone (e.g. Africa/Lagos) or UTC offset (e.g. +01:00)")
}
