package schedule

import (
	"errors"
	"testing"
	"time"
)

func TestTranslateVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "preset daily 9am", input: "daily_9am", want: "0 9 * * *"},
		{name: "preset weekdays", input: "weekdays_9am", want: "0 9 * * 1-5"},
		{name: "raw passthrough", input: "*/15 2 * * *", want: "*/15 2 * * *"},
		{name: "raw with whitespace", input: "  30 6 1 * *  ", want: "30 6 1 * *"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			got, err := Translate(tt.input)
			if err != nil {
				t.Fatalf("Translate(%q) error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Fatalf("Translate(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestTranslateInvalid(t *testing.T) {
	t.Parallel()
	for _, input := range []string{
		"",
		"every day at nine",
		"0 9 * *",         // 4 fields
		"0 9 * * * *",     // 6 fields
		"61 9 * * *",      // minute out of range
		"@daily",          // descriptor, not 5-field
		"not_a_preset_at", // unknown preset-looking word
	} {
		_, err := Translate(input)
		var se *ScheduleError
		if !errors.As(err, &se) {
			t.Errorf("Translate(%q) err = %v, want *ScheduleError", input, err)
		}
	}
}

func TestNext(t *testing.T) {
	t.Parallel()
	now := time.Date(2024, 12, 25, 8, 30, 0, 0, time.UTC)
	next := Next("0 9 * * *", now)
	want := time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)
	if !next.Equal(want) {
		t.Fatalf("Next = %v, want %v", next, want)
	}

	if !Next("garbage", now).IsZero() {
		t.Fatal("Next on invalid expr should be zero")
	}
}

func TestHumanize(t *testing.T) {
	t.Parallel()
	tests := []struct {
		expr string
		want string
	}{
		{expr: "0 9 * * *", want: "Daily at 9:00 AM"},
		{expr: "0 17 * * 5", want: "Fridays at 5:00 PM"},
		{expr: "30 7 * * *", want: "Daily at 7:30 AM"},
		{expr: "0 21 * * 0,6", want: "Weekends at 9:00 PM"},
		{expr: "0 9 * * 2", want: "Tuesdays at 9:00 AM"},
		{expr: "15 6 1 * *", want: "At 6:15 AM (15 6 1 * *)"},
		{expr: "*/5 * * * *", want: "Daily at *:*/5"},
		{expr: "nonsense", want: "nonsense"},
	}
	for _, tt := range tests {
		if got := Humanize(tt.expr); got != tt.want {
			t.Errorf("Humanize(%q) = %q, want %q", tt.expr, got, tt.want)
		}
	}
}
