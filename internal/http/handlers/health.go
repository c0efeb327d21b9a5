package handlers

import "net/http"

func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, map[string]string{"status": "ok", "project": a.Cfg.ProjectName})
}

func (a *App) Ping(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, "pong")
}
