package schedule

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"discordnotify/pkg/logx"
)

// markerPrefix tags crontab lines owned by this application. The config name
// after the colon makes enable/disable idempotent per config.
const markerPrefix = "# discordnotify:"

// Job describes one managed crontab entry.
type Job struct {
	Name    string
	Expr    string
	Human   string
	Command string
	Next    time.Time
}

// Runner executes the crontab binary. Split out so tests can fake the OS
// crontab with an in-memory one.
type Runner interface {
	// Read returns the current crontab content ("" when none is installed).
	Read(ctx context.Context) (string, error)
	// Install replaces the crontab with content.
	Install(ctx context.Context, content string) error
}

type execRunner struct{}

func (execRunner) Read(ctx context.Context) (string, error) {
	cmd := exec.CommandContext(ctx, "crontab", "-l")
	var out, stderr bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		// "no crontab for <user>" exits 1; treat it as an empty table.
		if strings.Contains(stderr.String(), "no crontab") {
			return "", nil
		}
		return "", fmt.Errorf("crontab -l: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return out.String(), nil
}

func (execRunner) Install(ctx context.Context, content string) error {
	cmd := exec.CommandContext(ctx, "crontab", "-")
	cmd.Stdin = strings.NewReader(content)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("crontab install: %v: %s", err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// Crontab manages this application's entries in the user crontab.
type Crontab struct {
	runner Runner
	log    logx.Logger
}

func NewCrontab(runner Runner, log logx.Logger) *Crontab {
	if runner == nil {
		runner = execRunner{}
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Crontab{runner: runner, log: log}
}

// Enable installs (or replaces) the entry for name: command run on schedule.
// The schedule may be a preset key or a raw expression; invalid schedules are
// rejected before the crontab is touched.
func (c *Crontab) Enable(ctx context.Context, name, command, schedule string) error {
	expr, err := Translate(schedule)
	if err != nil {
		return err
	}
	if strings.TrimSpace(command) == "" {
		return fmt.Errorf("empty command for %s", name)
	}

	content, err := c.runner.Read(ctx)
	if err != nil {
		return err
	}
	lines := dropOwned(splitLines(content), name)
	lines = append(lines, fmt.Sprintf("%s %s %s%s", expr, command, markerPrefix, name))

	if err := c.runner.Install(ctx, joinLines(lines)); err != nil {
		return err
	}
	c.log.Info("schedule enabled", logx.String("config", name), logx.String("cron", expr))
	return nil
}

// Disable removes the entry(ies) owned by name. Disabling a config with no
// entry is a no-op.
func (c *Crontab) Disable(ctx context.Context, name string) error {
	content, err := c.runner.Read(ctx)
	if err != nil {
		return err
	}
	lines := splitLines(content)
	kept := dropOwned(lines, name)
	if len(kept) == len(lines) {
		return nil
	}
	if err := c.runner.Install(ctx, joinLines(kept)); err != nil {
		return err
	}
	c.log.Info("schedule disabled", logx.String("config", name))
	return nil
}

// Status returns the job for name, or ok=false when no entry exists.
func (c *Crontab) Status(ctx context.Context, name string, now time.Time) (Job, bool, error) {
	jobs, err := c.All(ctx, now)
	if err != nil {
		return Job{}, false, err
	}
	for _, j := range jobs {
		if j.Name == name {
			return j, true, nil
		}
	}
	return Job{}, false, nil
}

// All returns every managed entry, in crontab order.
func (c *Crontab) All(ctx context.Context, now time.Time) ([]Job, error) {
	content, err := c.runner.Read(ctx)
	if err != nil {
		return nil, err
	}

	var jobs []Job
	for _, line := range splitLines(content) {
		name, ok := ownedBy(line)
		if !ok {
			continue
		}
		expr, command, ok := parseLine(line)
		if !ok {
			c.log.Warn("skipping unparseable managed crontab line", logx.String("line", line))
			continue
		}
		jobs = append(jobs, Job{
			Name:    name,
			Expr:    expr,
			Human:   Humanize(expr),
			Command: command,
			Next:    Next(expr, now),
		})
	}
	return jobs, nil
}

// ownedBy extracts the config name from a managed line's marker comment.
func ownedBy(line string) (string, bool) {
	i := strings.LastIndex(line, markerPrefix)
	if i < 0 {
		return "", false
	}
	name := strings.TrimSpace(line[i+len(markerPrefix):])
	if name == "" {
		return "", false
	}
	return name, true
}

// parseLine splits a managed line into the 5-field expression and the command
// (marker comment stripped).
func parseLine(line string) (expr, command string, ok bool) {
	if i := strings.LastIndex(line, markerPrefix); i >= 0 {
		line = strings.TrimSpace(line[:i])
	}
	fields := strings.Fields(line)
	if len(fields) < 6 {
		return "", "", false
	}
	expr = strings.Join(fields[:5], " ")
	if _, err := parser.Parse(expr); err != nil {
		return "", "", false
	}
	return expr, strings.Join(fields[5:], " "), true
}

func dropOwned(lines []string, name string) []string {
	kept := lines[:0]
	for _, line := range lines {
		if owner, ok := ownedBy(line); ok && owner == name {
			continue
		}
		kept = append(kept, line)
	}
	return kept
}

func splitLines(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
