package timeutil

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateTimeLayout is the calendar form the gateway renders timestamps in.
const DateTimeLayout = "2006-01-02 15:04:05"

// Parse accepts Unix seconds, RFC 3339, or DateTimeLayout interpreted in loc.
func Parse(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if len(s) == 0 {
		return time.Time{}, fmt.Errorf("empty time")
	}
	if sec, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(sec, 0), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(DateTimeLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("time %q is neither unix seconds, RFC 3339 nor %q", s, DateTimeLayout)
	}
	return t, nil
}
