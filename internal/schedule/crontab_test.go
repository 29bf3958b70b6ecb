package schedule

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"discordnotify/pkg/logx"
)

// fakeRunner keeps the crontab in memory.
type fakeRunner struct {
	content  string
	installs int
}

func (f *fakeRunner) Read(ctx context.Context) (string, error) { return f.content, nil }
func (f *fakeRunner) Install(ctx context.Context, content string) error {
	f.content = content
	f.installs++
	return nil
}

func ownedLines(content string) []string {
	var out []string
	for _, l := range strings.Split(content, "\n") {
		if strings.Contains(l, markerPrefix) {
			out = append(out, l)
		}
	}
	return out
}

func TestEnableIsIdempotent(t *testing.T) {
	t.Parallel()
	fr := &fakeRunner{}
	ct := NewCrontab(fr, logx.Nop())
	ctx := context.Background()

	cmd := "/usr/local/bin/discordnotify-send /etc/discordnotify/configs/daily.yaml"
	if err := ct.Enable(ctx, "daily", cmd, "daily_9am"); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if err := ct.Enable(ctx, "daily", cmd, "0 18 * * *"); err != nil {
		t.Fatalf("second Enable: %v", err)
	}

	lines := ownedLines(fr.content)
	if len(lines) != 1 {
		t.Fatalf("owned lines = %d, want exactly 1:\n%s", len(lines), fr.content)
	}
	if !strings.HasPrefix(lines[0], "0 18 * * * ") {
		t.Fatalf("entry not replaced with new schedule: %q", lines[0])
	}
}

func TestEnablePreservesForeignLines(t *testing.T) {
	t.Parallel()
	foreign := "*/10 * * * * /usr/bin/backup.sh"
	fr := &fakeRunner{content: foreign + "\n"}
	ct := NewCrontab(fr, logx.Nop())
	ctx := context.Background()

	if err := ct.Enable(ctx, "daily", "/bin/send /cfg/daily.yaml", "daily_9am"); err != nil {
		t.Fatalf("Enable: %v", err)
	}
	if err := ct.Disable(ctx, "daily"); err != nil {
		t.Fatalf("Disable: %v", err)
	}

	if !strings.Contains(fr.content, foreign) {
		t.Fatalf("foreign line lost:\n%s", fr.content)
	}
	if len(ownedLines(fr.content)) != 0 {
		t.Fatalf("owned line survived disable:\n%s", fr.content)
	}
}

func TestEnableRejectsInvalidScheduleWithoutWriting(t *testing.T) {
	t.Parallel()
	fr := &fakeRunner{}
	ct := NewCrontab(fr, logx.Nop())

	err := ct.Enable(context.Background(), "daily", "/bin/send /cfg/daily.yaml", "99 99 * * *")
	var se *ScheduleError
	if !errors.As(err, &se) {
		t.Fatalf("err = %v, want *ScheduleError", err)
	}
	if fr.installs != 0 {
		t.Fatalf("crontab written despite invalid schedule (%d installs)", fr.installs)
	}
}

func TestDisableMissingIsNoop(t *testing.T) {
	t.Parallel()
	fr := &fakeRunner{content: "1 2 3 4 5 /bin/other\n"}
	ct := NewCrontab(fr, logx.Nop())
	if err := ct.Disable(context.Background(), "ghost"); err != nil {
		t.Fatalf("Disable: %v", err)
	}
	if fr.installs != 0 {
		t.Fatal("crontab rewritten for a no-op disable")
	}
}

func TestStatusAndAll(t *testing.T) {
	t.Parallel()
	fr := &fakeRunner{}
	ct := NewCrontab(fr, logx.Nop())
	ctx := context.Background()
	now := time.Date(2024, 12, 25, 8, 0, 0, 0, time.UTC)

	if err := ct.Enable(ctx, "daily", "/bin/send /cfg/daily.yaml", "daily_9am"); err != nil {
		t.Fatal(err)
	}
	if err := ct.Enable(ctx, "weekly", "/bin/send /cfg/weekly.yaml", "weekly_monday_9am"); err != nil {
		t.Fatal(err)
	}

	jobs, err := ct.All(ctx, now)
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(jobs))
	}

	job, ok, err := ct.Status(ctx, "daily", now)
	if err != nil || !ok {
		t.Fatalf("Status = %v, %v", ok, err)
	}
	if job.Expr != "0 9 * * *" {
		t.Fatalf("Expr = %q", job.Expr)
	}
	if job.Human != "Daily at 9:00 AM" {
		t.Fatalf("Human = %q", job.Human)
	}
	if job.Command != "/bin/send /cfg/daily.yaml" {
		t.Fatalf("Command = %q", job.Command)
	}
	wantNext := time.Date(2024, 12, 25, 9, 0, 0, 0, time.UTC)
	if !job.Next.Equal(wantNext) {
		t.Fatalf("Next = %v, want %v", job.Next, wantNext)
	}

	if _, ok, err := ct.Status(ctx, "ghost", now); err != nil || ok {
		t.Fatalf("Status(ghost) = %v, %v; want false, nil", ok, err)
	}
}
