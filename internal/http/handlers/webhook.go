package handlers

import "net/http"

// Webhook receives one Ko-fi donation event. Ko-fi delivers the payload as
// a form-encoded POST with the JSON object in the `data` field. Redelivered
// events succeed with duplicate=true so the platform stops retrying; actual
// failures return an error status so it retries.
func (a *App) Webhook(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "malformed form body")
		return
	}
	data := r.PostFormValue("data")
	if data == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "missing 'data' form field")
		return
	}

	res, err := a.Ingestor.Ingest(r.Context(), []byte(data))
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"message": "ok", "duplicate": res.Duplicate})
}
