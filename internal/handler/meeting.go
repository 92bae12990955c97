package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/sakif/crm/internal/auth"
	"github.com/sakif/crm/internal/model"
	"github.com/sakif/crm/internal/service"
)

type MeetingHandler struct {
	meetings *service.MeetingService
	logger   *slog.Logger
}

func NewMeetingHandler(meetings *service.MeetingService, logger *slog.Logger) *MeetingHandler {
	return &MeetingHandler{meetings: meetings, logger: logger}
}

// HandleCreate schedules a meeting. meetingTime accepts RFC 3339 or a
// local "2006-01-02T15:04:05" value, read as UTC.
//
// HTTP: POST /meetings
func (h *MeetingHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var meeting model.Meeting
	if err := decodeJSON(w, r, &meeting); err != nil {
		h.logger.Warn("invalid meeting JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	actorID, _ := auth.UserIDFromContext(r.Context())
	created, err := h.meetings.Create(r.Context(), meeting, actorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCreated(w, fmt.Sprintf("/meetings/%d", created.ID), created)
}

// HTTP: GET /meetings/{id}
func (h *MeetingHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	meeting, err := h.meetings.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meeting)
}

// HTTP: GET /meetings/user/{userId}
func (h *MeetingHandler) HandleListByUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	meetings, err := h.meetings.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meetings)
}

// HandleListByUserOnDate lists one user's meetings on a single day.
//
// HTTP: GET /meetings/user/{userId}/date/{date}   (date is dd-mm-yyyy)
func (h *MeetingHandler) HandleListByUserOnDate(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	meetings, err := h.meetings.ListByUserOnDate(r.Context(), userID, chi.URLParam(r, "date"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, meetings)
}

// HTTP: DELETE /meetings/{id}
func (h *MeetingHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.meetings.Delete(r.Context(), id); err != nil {
		writeDeleteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
