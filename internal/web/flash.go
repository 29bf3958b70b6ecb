package web

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

// Flash is a one-shot message rendered on the next page load, carried in a
// short-lived cookie so redirects (POST → GET) keep their feedback.
type Flash struct {
	Kind string `json:"kind"` // "success" | "error"
	Text string `json:"text"`
}

const flashCookie = "discordnotify_flash"

func setFlash(w http.ResponseWriter, kind, text string) {
	b, err := json.Marshal([]Flash{{Kind: kind, Text: text}})
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    base64.URLEncoding.EncodeToString(b),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
	})
}

func takeFlashes(w http.ResponseWriter, r *http.Request) []Flash {
	c, err := r.Cookie(flashCookie)
	if err != nil || c.Value == "" {
		return nil
	}
	// Clear regardless of decode success.
	http.SetCookie(w, &http.Cookie{Name: flashCookie, Value: "", Path: "/", MaxAge: -1, HttpOnly: true})

	b, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var flashes []Flash
	if err := json.Unmarshal(b, &flashes); err != nil {
		return nil
	}
	return flashes
}
