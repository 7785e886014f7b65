package util

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const durationHelp = "Valid formats:\n" +
	"• Minutes as a number: 150\n" +
	"• Go duration: 2h30m, 45m, 90s"

// maxMinutes is the largest minute count a time.Duration can hold.
const maxMinutes = math.MaxInt64 / int64(time.Minute)

// ParseDuration accepts either a bare number of minutes or a Go duration string.
func ParseDuration(input string) (time.Duration, error) {
	input = strings.TrimSpace(input)
	if minutes, err := strconv.Atoi(input); err == nil {
		if minutes < 0 || int64(minutes) > maxMinutes {
			return 0, fmt.Errorf("invalid duration format: %s\n\n%s", input, durationHelp)
		}
		return time.Duration(minutes) * time.Minute, nil
	}

	duration, err := time.ParseDuration(input)
	if err != nil || duration < 0 {
		return 0, fmt.Errorf("invalid duration format: %s\n\n%s", input, durationHelp)
	}
	return duration, nil
}

// ParseSeconds accepts a plain (possibly fractional) number of seconds or a
// Go duration string and returns the value in seconds.
func ParseSeconds(input string) (float64, error) {
	input = strings.TrimSpace(input)
	if v, err := strconv.ParseFloat(input, 64); err == nil {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("invalid seconds value: %s", input)
		}
		return v, nil
	}
	d, err := time.ParseDuration(input)
	if err != nil {
		return 0, fmt.Errorf("invalid seconds value: %s", input)
	}
	return d.Seconds(), nil
}

// Seconds converts fractional seconds into a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
