package leads

import (
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// To24Hour converts a 12-hour clock reading to a 24-hour hour.
// PM adds twelve except at 12; 12 AM is midnight.
func To24Hour(hour int, ampm string) (int, error) {
	if hour < 1 || hour > 12 {
		return 0, fmt.Errorf("%w: hour %d out of range", ErrInvalidClock, hour)
	}
	switch strings.ToUpper(strings.TrimSpace(ampm)) {
	case "AM":
		if hour == 12 {
			return 0, nil
		}
		return hour, nil
	case "PM":
		if hour == 12 {
			return 12, nil
		}
		return hour + 12, nil
	default:
		return 0, fmt.Errorf("%w: meridiem %q", ErrInvalidClock, ampm)
	}
}

// From24Hour is the inverse of To24Hour.
func From24Hour(hour24 int) (int, string) {
	ampm := "AM"
	if hour24 >= 12 {
		ampm = "PM"
	}
	hour := hour24 % 12
	if hour == 0 {
		hour = 12
	}
	return hour, ampm
}

// FollowUpInstant combines a local date with a 12-hour clock into one instant.
func FollowUpInstant(date string, hour, minute int, ampm string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	day, err := time.ParseInLocation(dateLayout, strings.TrimSpace(date), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidClock, date)
	}
	if minute < 0 || minute > 55 || minute%5 != 0 {
		return time.Time{}, fmt.Errorf("%w: minute %d", ErrInvalidClock, minute)
	}
	hour24, err := To24Hour(hour, ampm)
	if err != nil {
		return time.Time{}, err
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour24, minute, 0, 0, loc), nil
}

// ClockFields is the presentation split of a follow-up instant.
type ClockFields struct {
	Date   string `json:"date"`
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	AMPM   string `json:"ampm"`
}

// SplitFollowUp breaks an instant into the local date and 12-hour clock fields.
func SplitFollowUp(t time.Time, loc *time.Location) ClockFields {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	hour, ampm := From24Hour(local.Hour())
	return ClockFields{
		Date:   local.Format(dateLayout),
		Hour:   hour,
		Minute: local.Minute(),
		AMPM:   ampm,
	}
}
