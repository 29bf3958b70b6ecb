package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// DefaultExpr is the schedule used when the dashboard form sends nothing.
const DefaultExpr = "0 9 * * *"

// ScheduleError reports a schedule string that cannot be translated into a
// valid cron expression.
type ScheduleError struct {
	Input  string
	Reason string
}

func (e *ScheduleError) Error() string {
	return fmt.Sprintf("schedule %q: %s", e.Input, e.Reason)
}

// Preset is a named common schedule.
type Preset struct {
	Key   string
	Expr  string
	Label string
}

// Presets, in display order.
var Presets = []Preset{
	{Key: "daily_8am", Expr: "0 8 * * *", Label: "Daily at 8:00 AM"},
	{Key: "daily_9am", Expr: "0 9 * * *", Label: "Daily at 9:00 AM"},
	{Key: "daily_10am", Expr: "0 10 * * *", Label: "Daily at 10:00 AM"},
	{Key: "daily_noon", Expr: "0 12 * * *", Label: "Daily at 12:00 PM"},
	{Key: "daily_6pm", Expr: "0 18 * * *", Label: "Daily at 6:00 PM"},
	{Key: "weekdays_9am", Expr: "0 9 * * 1-5", Label: "Weekdays at 9:00 AM"},
	{Key: "weekly_monday_9am", Expr: "0 9 * * 1", Label: "Mondays at 9:00 AM"},
	{Key: "weekly_friday_5pm", Expr: "0 17 * * 5", Label: "Fridays at 5:00 PM"},
}

// parser accepts plain 5-field expressions only; descriptors ("@daily") and
// second fields are rejected up front by the field count check.
var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// Translate maps a preset key or raw cron expression to a validated 5-field
// cron expression.
func Translate(input string) (string, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return "", &ScheduleError{Input: input, Reason: "schedule required"}
	}

	for _, p := range Presets {
		if p.Key == s {
			return p.Expr, nil
		}
	}

	if len(strings.Fields(s)) != 5 {
		return "", &ScheduleError{Input: input, Reason: "want 5 fields (minute hour day-of-month month day-of-week)"}
	}
	if _, err := parser.Parse(s); err != nil {
		return "", &ScheduleError{Input: input, Reason: err.Error()}
	}
	return s, nil
}

// Next computes the next fire time of a validated expression after now.
// The zero time is returned for expressions that fail to parse.
func Next(expr string, now time.Time) time.Time {
	sched, err := parser.Parse(expr)
	if err != nil {
		return time.Time{}
	}
	return sched.Next(now)
}

// Humanize renders a cron expression for the dashboard: preset labels when
// the expression matches one, a best-effort description for simple fixed-time
// patterns, and the raw expression otherwise.
func Humanize(expr string) string {
	expr = strings.TrimSpace(expr)
	for _, p := range Presets {
		if p.Expr == expr {
			return p.Label
		}
	}

	fields := strings.Fields(expr)
	if len(fields) != 5 {
		return expr
	}
	minute, hour, dom, month, dow := fields[0], fields[1], fields[2], fields[3], fields[4]

	h, errH := strconv.Atoi(hour)
	m, errM := strconv.Atoi(minute)
	timeStr := hour + ":" + minute
	if errH == nil && errM == nil && h >= 0 && h < 24 && m >= 0 && m < 60 {
		timeStr = time.Date(0, 1, 1, h, m, 0, 0, time.UTC).Format("3:04 PM")
	}

	if dom == "*" && month == "*" {
		switch dow {
		case "*":
			return "Daily at " + timeStr
		case "1-5":
			return "Weekdays at " + timeStr
		case "0,6":
			return "Weekends at " + timeStr
		}
		if day, ok := dowNames[dow]; ok {
			return day + " at " + timeStr
		}
	}
	return fmt.Sprintf("At %s (%s)", timeStr, expr)
}

var dowNames = map[string]string{
	"0": "Sundays", "1": "Mondays", "2": "Tuesdays", "3": "Wednesdays",
	"4": "Thursdays", "5": "Fridays", "6": "Saturdays", "7": "Sundays",
}
