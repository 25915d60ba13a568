package xtime

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var durationRx = regexp.MustCompile(`(\d*\.\d+|\d+)([a-zA-Zµ]*)`)

// Calendar units not supported by time.ParseDuration. A month is 30 days and a
// year 365 days.
var calendarUnits = map[string]time.Duration{
	"d": 24 * time.Hour,
	"D": 24 * time.Hour,
	"w": 7 * 24 * time.Hour,
	"W": 7 * 24 * time.Hour,
	"M": 30 * 24 * time.Hour,
	"y": 365 * 24 * time.Hour,
	"Y": 365 * 24 * time.Hour,
}

// ParseDuration parses a duration string in the format written by
// FormatDuration, e.g. "10d", "-1.5w", "3Y4M5d" or "2m30s". On top of the units
// of time.ParseDuration it accepts "d"="D", "w"="W", "M" and "y"="Y".
func ParseDuration(s string) (time.Duration, error) {
	in := s
	neg := false
	if len(s) > 0 && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	if s == "" {
		return 0, fmt.Errorf("invalid duration '%s'", in)
	}

	var (
		sum      time.Duration
		consumed int
	)
	for _, m := range durationRx.FindAllStringSubmatchIndex(s, -1) {
		if m[0] != consumed {
			return 0, fmt.Errorf("invalid duration '%s'", in)
		}
		consumed = m[1]

		num, unit := s[m[2]:m[3]], s[m[4]:m[5]]
		if mult, ok := calendarUnits[unit]; ok {
			f, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return 0, fmt.Errorf("invalid duration '%s': %w", in, err)
			}
			sum += time.Duration(f * float64(mult))
			continue
		}

		if unit == "" && num == "0" {
			continue
		}
		dur, err := time.ParseDuration(num + unit)
		if err != nil {
			//nolint:wrapcheck // The stdlib error already names the input.
			return 0, err
		}
		sum += dur
	}

	if consumed != len(s) {
		return 0, fmt.Errorf("invalid duration '%s'", in)
	}

	if neg {
		sum = -sum
	}

	return sum, nil
}

// FormatDuration formats a duration into a string with friendly units.
// Returns strings like "10d", "-1w2d", "3Y4M5d", etc.
// Uses the same units as ParseDuration: "d", "w", "M", "Y".
// The round parameter specifies the smallest unit to include.
func FormatDuration(d time.Duration, round time.Duration) string {
	if d == 0 {
		return "0d"
	}

	// Round the duration to the specified precision
	if round > 0 {
		d = d.Round(round)
		if d == 0 {
			return "0d"
		}
	}

	neg := d < 0
	if neg {
		d = -d
	}

	hours := int64(d / time.Hour)

	// Convert to largest units first
	years := hours / (365 * 24)
	hours %= (365 * 24)

	months := hours / (30 * 24)
	hours %= (30 * 24)

	weeks := hours / (7 * 24)
	hours %= (7 * 24)

	days := hours / 24
	hours %= 24

	// Handle remaining time units
	remainder := d % time.Hour
	minutes := remainder / time.Minute
	remainder %= time.Minute
	seconds := remainder / time.Second
	remainder %= time.Second

	var parts []string

	if years > 0 {
		parts = append(parts, fmt.Sprintf("%dY", years))
	}
	if months > 0 {
		parts = append(parts, fmt.Sprintf("%dM", months))
	}
	if weeks > 0 {
		parts = append(parts, fmt.Sprintf("%dw", weeks))
	}
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 && round <= time.Hour {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 && round <= time.Minute {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 && round <= time.Second {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}
	if remainder > 0 && round < time.Second {
		if remainder%time.Millisecond == 0 && round <= time.Millisecond {
			parts = append(parts, fmt.Sprintf("%dms", remainder/time.Millisecond))
		} else if remainder%time.Microsecond == 0 && round <= time.Microsecond {
			parts = append(parts, fmt.Sprintf("%dµs", remainder/time.Microsecond))
		} else if round <= time.Nanosecond {
			parts = append(parts, fmt.Sprintf("%dns", remainder/time.Nanosecond))
		}
	}

	// If no parts were added (shouldn't happen with the zero check above)
	if len(parts) == 0 {
		parts = append(parts, "0d")
	}

	result := strings.Join(parts, "")
	if neg {
		result = "-" + result
	}

	return result
}
