package handler

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/sakif/crm/internal/auth"
	"github.com/sakif/crm/internal/model"
	"github.com/sakif/crm/internal/service"
)

// UserHandler serves registration, lookup and the login/logout session flow.
//
// tokens is nil when sessions are disabled; login then answers with the
// user but sets no cookie.
type UserHandler struct {
	users  *service.UserService
	tokens *auth.TokenService
	logger *slog.Logger
}

func NewUserHandler(users *service.UserService, tokens *auth.TokenService, logger *slog.Logger) *UserHandler {
	return &UserHandler{users: users, tokens: tokens, logger: logger}
}

// credentials is the registration and login body. The password is
// write-only and never appears in responses.
type credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse flattens the user and adds the session token when one was
// issued.
type loginResponse struct {
	*model.User
	Token string `json:"token,omitempty"`
}

// HandleRegister creates a user.
//
// HTTP: POST /users
func (h *UserHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if err := decodeJSON(w, r, &req); err != nil {
		h.logger.Warn("invalid user JSON", slog.String("error", err.Error()))
		writeError(w, err)
		return
	}

	user, err := h.users.Register(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeCreated(w, fmt.Sprintf("/users/%d", user.ID), user)
}

// HandleGetByID returns a single user.
//
// HTTP: GET /users/{id}
func (h *UserHandler) HandleGetByID(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.users.GetByID(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// HandleLogin checks credentials and starts a session.
//
// HTTP: GET /users/login?username=&password=
// HTTP: POST /users/login with a JSON body
//
// Both an unknown username and a wrong password answer 404 with the same
// message.
func (h *UserHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req credentials
	if r.Method == http.MethodPost {
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, err)
			return
		}
	} else {
		q := r.URL.Query()
		req.Username = q.Get("username")
		req.Password = q.Get("password")
	}

	result, err := h.users.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	if result.Token != "" {
		// HttpOnly keeps the token away from scripts; SameSite=Lax keeps it
		// off cross-site POSTs. Secure must be enabled behind HTTPS.
		http.SetCookie(w, &http.Cookie{
			Name:     auth.CookieName,
			Value:    result.Token,
			Path:     "/",
			MaxAge:   int(h.tokens.TTL().Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})
	}

	writeJSON(w, http.StatusOK, loginResponse{User: result.User, Token: result.Token})
}

// HandleLogout clears the session cookie.
//
// HTTP: POST /users/logout
//
// Tokens are stateless, so an already issued token stays valid until it
// expires; the browser just stops sending it.
func (h *UserHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, map[string]string{"message": "logged out"})
}

// HandleMe returns the user behind the session token.
//
// HTTP: GET /users/me
// Auth: Required (RequireAuth middleware sets the user id in context)
func (h *UserHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, ErrorResponse{Error: "unauthorized", Message: "authentication required"})
		return
	}

	user, err := h.users.GetByID(r.Context(), userID)
	if err != nil {
		h.logger.Warn("session user lookup failed",
			slog.Int64("userID", userID),
			slog.String("error", err.Error()),
		)
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, user)
}
