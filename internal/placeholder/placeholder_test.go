package placeholder

import (
	"testing"
	"time"
)

var xmas = time.Date(2024, time.December, 25, 9, 30, 0, 0, time.UTC)

func TestFormatVariants(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		template string
		want     string
	}{
		{name: "bare date", template: "Report for {date}", want: "Report for 25/12/2024"},
		{name: "day month", template: "Report for {date:DD/MM}", want: "Report for 25/12"},
		{name: "full explicit", template: "{date:DD/MM/YYYY}", want: "25/12/2024"},
		{name: "reordered", template: "{date:YYYY-MM-DD}", want: "2024-12-25"},
		{name: "day only", template: "pay rent on the {date:DD}th", want: "pay rent on the 25th"},
		{name: "dot separators", template: "{date:DD.MM.YYYY}", want: "25.12.2024"},
		{name: "no placeholders", template: "plain message", want: "plain message"},
		{name: "multiple distinct", template: "{date} and {date:DD/MM} again {date}", want: "25/12/2024 and 25/12 again 25/12/2024"},
		{name: "unknown field", template: "see you {date:QQ/MM}", want: "see you {date:QQ/MM}"},
		{name: "empty format", template: "x {date:} y", want: "x {date:} y"},
		{name: "separators only", template: "{date://}", want: "{date://}"},
		{name: "not a date token", template: "{time} stays", want: "{time} stays"},
		{name: "adjacent fields", template: "{date:DDMMYYYY}", want: "25122024"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := Format(tt.template, xmas); got != tt.want {
				t.Fatalf("Format(%q) = %q, want %q", tt.template, got, tt.want)
			}
		})
	}
}

func TestFormatZeroPadding(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC)
	if got := Format("{date}", now); got != "07/03/2025" {
		t.Fatalf("Format = %q, want 07/03/2025", got)
	}
}

func TestFormatDeterministic(t *testing.T) {
	t.Parallel()
	const tpl = "Daily standup {date:DD/MM} at 9am {date}"
	first := Format(tpl, xmas)
	for i := 0; i < 10; i++ {
		if got := Format(tpl, xmas); got != first {
			t.Fatalf("Format not deterministic: %q vs %q", got, first)
		}
	}
}

func TestFormatMultilineTemplate(t *testing.T) {
	t.Parallel()
	tpl := "Weekly report\n\nDue: {date:DD/MM}\nGenerated: {date}"
	want := "Weekly report\n\nDue: 25/12\nGenerated: 25/12/2024"
	if got := Format(tpl, xmas); got != want {
		t.Fatalf("Format = %q, want %q", got, want)
	}
}
