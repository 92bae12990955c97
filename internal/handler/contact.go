package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/crm/internal/model"
	"github.com/sakif/crm/internal/service"
)

type ContactHandler struct {
	contacts *service.ContactService
	logger   *slog.Logger
}

func NewContactHandler(contacts *service.ContactService, logger *slog.Logger) *ContactHandler {
	return &ContactHandler{contacts: contacts, logger: logger}
}

// HTTP: POST /contacts
func (h *ContactHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var contact model.Contact
	if err := decodeJSON(w, r, &contact); err != nil {
		h.logger.Warn("invalid contact JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	created, err := h.contacts.Create(r.Context(), contact)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCreated(w, fmt.Sprintf("/contacts/%d", created.ID), created)
}

// HTTP: GET /contacts
func (h *ContactHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.contacts.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list contacts", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// HTTP: GET /contacts/{id}
func (h *ContactHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	contact, err := h.contacts.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contact)
}

// HTTP: DELETE /contacts/{id}
func (h *ContactHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.contacts.Delete(r.Context(), id); err != nil {
		writeDeleteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
