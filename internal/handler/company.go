package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/crm/internal/auth"
	"github.com/sakif/crm/internal/model"
	"github.com/sakif/crm/internal/service"
)

type CompanyHandler struct {
	companies *service.CompanyService
	logger    *slog.Logger
}

func NewCompanyHandler(companies *service.CompanyService, logger *slog.Logger) *CompanyHandler {
	return &CompanyHandler{companies: companies, logger: logger}
}

// HandleCreate creates a company. When a session is present its user
// owns the company unless the body names the same user explicitly.
//
// HTTP: POST /companies
func (h *CompanyHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var company model.Company
	if err := decodeJSON(w, r, &company); err != nil {
		h.logger.Warn("invalid company JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	actorID, _ := auth.UserIDFromContext(r.Context())
	created, err := h.companies.Create(r.Context(), company, actorID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCreated(w, fmt.Sprintf("/companies/%d", created.ID), created)
}

// HTTP: GET /companies/{id}
func (h *CompanyHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	company, err := h.companies.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, company)
}

// HTTP: GET /companies?userId=
func (h *CompanyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	ownerID, err := queryID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	companies, err := h.companies.List(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to list companies", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, companies)
}

// HandleListWithContacts returns every company with its contacts nested.
//
// HTTP: GET /companies/with-contacts?userId=
func (h *CompanyHandler) HandleListWithContacts(w http.ResponseWriter, r *http.Request) {
	ownerID, err := queryID(r, "userId")
	if err != nil {
		writeError(w, err)
		return
	}

	result, err := h.companies.ListWithContacts(r.Context(), ownerID)
	if err != nil {
		h.logger.Error("failed to list companies with contacts", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// HTTP: GET /companies/{id}/contacts
func (h *CompanyHandler) HandleListContacts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	contacts, err := h.companies.Contacts(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, contacts)
}

// HandleDelete removes a company and all of its contacts.
//
// HTTP: DELETE /companies/{id}
func (h *CompanyHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.companies.Delete(r.Context(), id); err != nil {
		writeDeleteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
