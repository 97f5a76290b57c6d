package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gradient-here/WorkFrame-Website-3i/pkg/adapters/notify"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/core/domain"
	"github.com/gradient-here/WorkFrame-Website-3i/pkg/ports"
)

type ContactHandler struct {
	notifier ports.Notifier
}

func NewContactHandler(notifier ports.Notifier) *ContactHandler {
	return &ContactHandler{notifier: notifier}
}

// ContactRequest payload
type ContactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Message string `json:"message"`
}

// Contact validates a contact form submission and forwards it to the
// operator channel.
func (h *ContactHandler) Contact(w http.ResponseWriter, r *http.Request) {
	var req ContactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "Invalid request body"})
		return
	}

	name := domain.SanitizeInput(req.Name)
	email := domain.SanitizeInput(req.Email)
	message := domain.SanitizeInput(req.Message)
	if name == "" || email == "" || message == "" {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "Missing fields"})
		return
	}

	// Angle brackets were just stripped from the fields; the framing must
	// not put them back.
	content := fmt.Sprintf("Contact form: %s (%s)\n%s", name, email, message)
	if err := h.notifier.Send(r.Context(), content); err != nil {
		if errors.Is(err, notify.ErrNotConfigured) {
			writeJSON(w, http.StatusInternalServerError, map[string]interface{}{"ok": false, "error": "Webhook URL not configured"})
			return
		}
		log.Printf("contact: forward message: %v", err)
		writeJSON(w, http.StatusBadGateway, map[string]interface{}{"ok": false, "error": "Failed to deliver message"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}

// Newsletter validates a newsletter signup. Subscription itself is handled
// by the external email provider; this endpoint only gates input.
func (h *ContactHandler) Newsletter(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email string `json:"email"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "Invalid email"})
		return
	}

	email := domain.SanitizeInput(req.Email)
	if email == "" || !strings.Contains(email, "@") {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{"ok": false, "error": "Invalid email"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"ok": true})
}
