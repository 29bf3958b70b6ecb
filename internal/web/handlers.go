package web

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"discordnotify/internal/configstore"
	"discordnotify/internal/placeholder"
	"discordnotify/internal/schedule"
	"discordnotify/pkg/logx"
)

const messagePreviewLen = 80

// notificationView merges a config file with its crontab status for the
// dashboard listing.
type notificationView struct {
	Name       string
	WebhookURL string
	Message    string
	Preview    string
	Enabled    bool
	Schedule   string
	Human      string
	Next       time.Time
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()
	now := s.now()

	items, err := s.store.List()
	if err != nil {
		s.log.Error("list configs failed", logx.Err(err))
		http.Error(w, "failed to list configs", http.StatusInternalServerError)
		return
	}

	jobs, err := s.crontab.All(ctx, now)
	if err != nil {
		// Still show configs; the schedule column degrades.
		s.log.Warn("crontab read failed", logx.Err(err))
	}
	byName := make(map[string]schedule.Job, len(jobs))
	for _, j := range jobs {
		byName[j.Name] = j
	}

	views := make([]notificationView, 0, len(items))
	for _, it := range items {
		v := notificationView{
			Name:       it.Name,
			WebhookURL: it.WebhookURL,
			Message:    it.Message,
			Preview:    previewText(it.Message),
		}
		if j, ok := byName[it.Name]; ok {
			v.Enabled = true
			v.Schedule = j.Expr
			v.Human = j.Human
			v.Next = j.Next
		}
		views = append(views, v)
	}

	var recent any
	if s.hist != nil {
		entries, err := s.hist.Tail(15)
		if err != nil {
			s.log.Warn("history read failed", logx.Err(err))
		}
		recent = entries
	}

	s.render(w, r, "dashboard.html", map[string]any{
		"Notifications": views,
		"Recent":        recent,
	})
}

func (s *Server) handleNew(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		s.renderEdit(w, r, editData{IsNew: true, Schedule: schedule.DefaultExpr})
		return
	}

	name := trimmedForm(r, "name")
	webhookURL := trimmedForm(r, "webhook_url")
	message := trimmedForm(r, "message")

	data := editData{IsNew: true, Name: name, WebhookURL: webhookURL, Message: message, Schedule: schedule.DefaultExpr}

	switch {
	case name == "":
		data.Error = "Name is required."
	case !configstore.ValidName(name):
		data.Error = "Name can only contain letters, numbers, dashes, and underscores."
	case s.store.Exists(name):
		data.Error = "A notification named '" + name + "' already exists."
	case webhookURL == "":
		data.Error = "Webhook URL is required."
	case message == "":
		data.Error = "Message is required."
	}
	if data.Error != "" {
		s.renderEdit(w, r, data)
		return
	}

	if err := s.store.Write(name, configstore.Notification{WebhookURL: webhookURL, Message: message}); err != nil {
		s.log.Error("config write failed", logx.String("config", name), logx.Err(err))
		data.Error = "Failed to save configuration."
		s.renderEdit(w, r, data)
		return
	}

	setFlash(w, "success", "Notification '"+name+"' created.")
	http.Redirect(w, r, "/notification/"+url.PathEscape(name), http.StatusSeeOther)
}

type editData struct {
	IsNew      bool
	Name       string
	WebhookURL string
	Message    string
	Preview    string
	Enabled    bool
	Schedule   string
	Human      string
	Next       time.Time
	Error      string
}

func (s *Server) renderEdit(w http.ResponseWriter, r *http.Request, data editData) {
	s.render(w, r, "edit.html", map[string]any{
		"IsNew":      data.IsNew,
		"Name":       data.Name,
		"WebhookURL": data.WebhookURL,
		"Message":    data.Message,
		"Preview":    data.Preview,
		"Enabled":    data.Enabled,
		"Schedule":   data.Schedule,
		"Human":      data.Human,
		"Next":       data.Next,
		"Error":      data.Error,
		"Presets":    schedule.Presets,
	})
}

func (s *Server) handleEdit(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()
	now := s.now()
	name := mux.Vars(r)["name"]

	cfg, err := s.store.Read(name)
	if err != nil {
		if errors.Is(err, configstore.ErrNotFound) {
			setFlash(w, "error", "Notification '"+name+"' not found.")
			http.Redirect(w, r, "/", http.StatusSeeOther)
			return
		}
		s.log.Error("config read failed", logx.String("config", name), logx.Err(err))
		http.Error(w, "failed to read config", http.StatusInternalServerError)
		return
	}

	if r.Method == http.MethodPost {
		switch action := trimmedForm(r, "action"); action {
		case "save":
			s.actionSave(w, r, name)
		case "enable", "update_schedule":
			s.actionEnable(w, r, name)
		case "disable":
			s.actionDisable(w, r, name)
		default:
			setFlash(w, "error", "Unknown action.")
		}
		http.Redirect(w, r, "/notification/"+url.PathEscape(name), http.StatusSeeOther)
		return
	}

	data := editData{
		Name:       name,
		WebhookURL: cfg.WebhookURL,
		Message:    cfg.Message,
		Preview:    placeholder.Format(cfg.Message, now),
		Schedule:   schedule.DefaultExpr,
	}
	if job, ok, err := s.crontab.Status(ctx, name, now); err != nil {
		s.log.Warn("crontab read failed", logx.Err(err))
	} else if ok {
		data.Enabled = true
		data.Schedule = job.Expr
		data.Human = job.Human
		data.Next = job.Next
	}
	s.renderEdit(w, r, data)
}

func (s *Server) actionSave(w http.ResponseWriter, r *http.Request, name string) {
	webhookURL := trimmedForm(r, "webhook_url")
	message := trimmedForm(r, "message")
	switch {
	case webhookURL == "":
		setFlash(w, "error", "Webhook URL is required.")
	case message == "":
		setFlash(w, "error", "Message is required.")
	default:
		if err := s.store.Write(name, configstore.Notification{WebhookURL: webhookURL, Message: message}); err != nil {
			s.log.Error("config write failed", logx.String("config", name), logx.Err(err))
			setFlash(w, "error", "Failed to save configuration.")
			return
		}
		setFlash(w, "success", "Configuration saved.")
	}
}

// formSchedule reads the schedule selection; "custom" defers to the free-text
// expression field.
func formSchedule(r *http.Request) string {
	sched := trimmedForm(r, "schedule")
	if sched == "custom" {
		sched = trimmedForm(r, "custom_schedule")
	}
	if sched == "" {
		sched = schedule.DefaultExpr
	}
	return sched
}

func (s *Server) actionEnable(w http.ResponseWriter, r *http.Request, name string) {
	ctx, cancel := requestCtx(r)
	defer cancel()

	sched := formSchedule(r)
	path, err := s.configPath(name)
	if err != nil {
		setFlash(w, "error", err.Error())
		return
	}

	if err := s.crontab.Enable(ctx, name, s.cronCommand(path), sched); err != nil {
		var se *schedule.ScheduleError
		if errors.As(err, &se) {
			setFlash(w, "error", "Invalid schedule: "+se.Reason)
		} else {
			s.log.Error("schedule enable failed", logx.String("config", name), logx.Err(err))
			setFlash(w, "error", "Failed to update schedule.")
		}
		return
	}

	expr, _ := schedule.Translate(sched)
	setFlash(w, "success", "Schedule set: "+schedule.Humanize(expr))
}

func (s *Server) actionDisable(w http.ResponseWriter, r *http.Request, name string) {
	ctx, cancel := requestCtx(r)
	defer cancel()
	if err := s.crontab.Disable(ctx, name); err != nil {
		s.log.Error("schedule disable failed", logx.String("config", name), logx.Err(err))
		setFlash(w, "error", "Failed to disable notification.")
		return
	}
	setFlash(w, "success", "Notification disabled.")
}

func (s *Server) handleTest(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()
	name := mux.Vars(r)["name"]

	path, err := s.configPath(name)
	if err != nil || !s.store.Exists(name) {
		setFlash(w, "error", "Notification '"+name+"' not found.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if err := s.disp.SendTest(ctx, path, s.now()); err != nil {
		setFlash(w, "error", "Test failed: "+err.Error())
	} else {
		setFlash(w, "success", "Test notification sent.")
	}
	http.Redirect(w, r, "/notification/"+url.PathEscape(name), http.StatusSeeOther)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()
	name := mux.Vars(r)["name"]

	// Drop the schedule first so cron never fires for a missing file.
	if err := s.crontab.Disable(ctx, name); err != nil {
		s.log.Warn("schedule disable during delete failed", logx.String("config", name), logx.Err(err))
	}

	if err := s.store.Delete(name); err != nil && !errors.Is(err, configstore.ErrNotFound) {
		s.log.Error("config delete failed", logx.String("config", name), logx.Err(err))
		setFlash(w, "error", "Failed to delete notification '"+name+"'.")
	} else {
		setFlash(w, "success", "Notification '"+name+"' deleted.")
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

const errorWebhookTestMessage = "🧪 **TEST ERROR WEBHOOK**\n\nThis is a test of the error notification system."

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		ctx, cancel := requestCtx(r)
		defer cancel()

		switch trimmedForm(r, "action") {
		case "save":
			if err := s.store.WriteErrorWebhook(trimmedForm(r, "webhook_url")); err != nil {
				s.log.Error("error webhook save failed", logx.Err(err))
				setFlash(w, "error", "Failed to save error webhook.")
			} else {
				setFlash(w, "success", "Error webhook saved.")
			}
		case "test":
			target := s.store.ReadErrorWebhook()
			if target == "" {
				setFlash(w, "error", "No error webhook configured.")
			} else if err := s.disp.Post(ctx, target, errorWebhookTestMessage); err != nil {
				setFlash(w, "error", "Failed to send test: "+err.Error())
			} else {
				setFlash(w, "success", "Test error notification sent.")
			}
		}
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	s.render(w, r, "settings.html", map[string]any{
		"ErrorWebhook": s.store.ReadErrorWebhook(),
	})
}

func previewText(msg string) string {
	msg = strings.ReplaceAll(msg, "\n", " ")
	if len(msg) > messagePreviewLen {
		return msg[:messagePreviewLen] + "..."
	}
	return msg
}
