package ingest

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// ErrInvalidDate is returned for dates in none of the accepted layouts.
var ErrInvalidDate = errors.New("invalid date")

// ParseDate normalizes a CSV date cell. Accepted layouts are YYYY-MM-DD,
// MM/DD/YYYY and DD/MM/YYYY; slash dates are read month-first unless the
// first part cannot be a month. A trailing time of day after "T" is dropped.
func ParseDate(s string) (civil.Date, error) {
	raw := strings.TrimSpace(s)
	if i := strings.IndexByte(raw, 'T'); i > 0 {
		raw = raw[:i]
	}

	var (
		parts   []string
		y, m, d int
		err     error
	)

	switch {
	case strings.Count(raw, "-") == 2:
		parts = strings.Split(raw, "-")
		if len(parts[0]) != 4 {
			return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		y, m, d, err = atoi3(parts[0], parts[1], parts[2])

	case strings.Count(raw, "/") == 2:
		parts = strings.Split(raw, "/")
		if len(parts[2]) != 4 {
			return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
		}
		m, d, y, err = atoi3(parts[0], parts[1], parts[2])
		if err == nil && m > 12 {
			m, d = d, m
		}

	default:
		return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if err != nil {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}

	date := civil.Date{Year: y, Month: time.Month(m), Day: d}
	if !date.IsValid() {
		return civil.Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return date, nil
}

func atoi3(a, b, c string) (int, int, int, error) {
	x, err := strconv.Atoi(a)
	if err != nil {
		return 0, 0, 0, err
	}
	y, err := strconv.Atoi(b)
	if err != nil {
		return 0, 0, 0, err
	}
	z, err := strconv.Atoi(c)
	if err != nil {
		return 0, 0, 0, err
	}
	return x, y, z, nil
}
