// Package schedule translates user-facing schedules into crontab entries and
// owns this application's lines in the user crontab.
//
// # Schedule formats
//
// A schedule is either a named preset ("daily_9am", "weekdays_9am", ...) or a
// raw 5-field cron expression (minute hour dom month dow). Presets map to
// canonical expressions; raw expressions are validated with robfig/cron's
// standard parser before anything is written, so a malformed expression is
// rejected synchronously and nothing is persisted.
//
// # Ownership
//
// Every managed crontab line carries a trailing marker comment,
// "# discordnotify:<name>". Enable replaces any existing line with the same
// marker (idempotent toggling: enabling twice leaves exactly one entry), and
// Disable removes only marked lines, never foreign crontab entries.
package schedule
