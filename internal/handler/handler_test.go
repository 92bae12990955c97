package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakif/crm/internal/auth"
	"github.com/sakif/crm/internal/repository/sqlstore"
	"github.com/sakif/crm/internal/service"
)

const testSecret = "handler-test-secret-0123456789"

// newTestRouter wires every handler onto a chi router over a fresh
// in-memory database.
func newTestRouter(t *testing.T) (http.Handler, *auth.TokenService) {
	t.Helper()

	db, err := sqlstore.New(":memory:", sqlstore.Options{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	tokens, err := auth.NewTokenService(testSecret, time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	users := NewUserHandler(service.NewUserService(db, auth.NewPasswordServiceForTest(4), tokens, logger), tokens, logger)
	companies := NewCompanyHandler(service.NewCompanyService(db, db, logger), logger)
	contacts := NewContactHandler(service.NewContactService(db, logger), logger)
	meetings := NewMeetingHandler(service.NewMeetingService(db, logger), logger)

	r := chi.NewRouter()
	r.Use(auth.OptionalAuth(tokens))
	r.Post("/users", users.HandleRegister)
	r.Get("/users/login", users.HandleLogin)
	r.Post("/users/login", users.HandleLogin)
	r.Post("/users/logout", users.HandleLogout)
	r.With(auth.RequireAuth(tokens)).Get("/users/me", users.HandleMe)
	r.Get("/users/{id}", users.HandleGetByID)

	r.Get("/companies", companies.HandleList)
	r.Post("/companies", companies.HandleCreate)
	r.Get("/companies/with-contacts", companies.HandleListWithContacts)
	r.Get("/companies/{id}", companies.HandleGetByID)
	r.Get("/companies/{id}/contacts", companies.HandleListContacts)
	r.Delete("/companies/{id}", companies.HandleDelete)

	r.Get("/contacts", contacts.HandleList)
	r.Post("/contacts", contacts.HandleCreate)
	r.Get("/contacts/{id}", contacts.HandleGetByID)
	r.Delete("/contacts/{id}", contacts.HandleDelete)

	r.Post("/meetings", meetings.HandleCreate)
	r.Get("/meetings/{id}", meetings.HandleGetByID)
	r.Get("/meetings/user/{userId}", meetings.HandleListByUser)
	r.Get("/meetings/user/{userId}/date/{date}", meetings.HandleListByUserOnDate)
	r.Delete("/meetings/{id}", meetings.HandleDelete)

	return r, tokens
}

func do(t *testing.T, h http.Handler, method, path, body string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func TestUserHandler_RegisterAndLogin(t *testing.T) {
	h, tokens := newTestRouter(t)

	rr := do(t, h, http.MethodPost, "/users", `{"username":"ann","password":"pw"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	user := decode[map[string]any](t, rr)
	assert.Equal(t, "ann", user["username"])
	assert.NotContains(t, user, "password")
	assert.NotContains(t, user, "PasswordHash")
	assert.Equal(t, "/users/1", rr.Header().Get("Location"))

	t.Run("duplicate username", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/users", `{"username":"ann","password":"other"}`)
		assert.Equal(t, http.StatusConflict, rr.Code)
	})

	t.Run("missing password", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/users", `{"username":"bob"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		body := decode[ErrorResponse](t, rr)
		assert.Equal(t, "validation_error", body.Error)
		assert.Equal(t, "password", body.Field)
	})

	t.Run("login sets cookie", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/users/login?username=ann&password=pw", "")
		require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
		body := decode[map[string]any](t, rr)
		assert.Equal(t, float64(1), body["userId"])

		var session *http.Cookie
		for _, c := range rr.Result().Cookies() {
			if c.Name == auth.CookieName {
				session = c
			}
		}
		require.NotNil(t, session, "session cookie not set")
		assert.True(t, session.HttpOnly)
		id, err := tokens.Validate(session.Value)
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		me := do(t, h, http.MethodGet, "/users/me", "", session)
		assert.Equal(t, http.StatusOK, me.Code)
		assert.Equal(t, "ann", decode[map[string]any](t, me)["username"])
	})

	t.Run("login with JSON body", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/users/login", `{"username":"ann","password":"pw"}`)
		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("wrong password is not found", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/users/login?username=ann&password=nope", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
		unknown := do(t, h, http.MethodGet, "/users/login?username=zed&password=pw", "")
		assert.Equal(t, http.StatusNotFound, unknown.Code)
		assert.Equal(t, rr.Body.String(), unknown.Body.String())
	})

	t.Run("me without session", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/users/me", "")
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("logout clears cookie", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/users/logout", "")
		assert.Equal(t, http.StatusOK, rr.Code)
		cookies := rr.Result().Cookies()
		require.Len(t, cookies, 1)
		assert.Equal(t, auth.CookieName, cookies[0].Name)
		assert.Less(t, cookies[0].MaxAge, 0)
	})
}

func TestUserHandler_GetByID(t *testing.T) {
	h, _ := newTestRouter(t)

	rr := do(t, h, http.MethodGet, "/users/5", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "User with ID 5 not found.", decode[ErrorResponse](t, rr).Message)

	for _, bad := range []string{"/users/abc", "/users/0", "/users/-4"} {
		rr := do(t, h, http.MethodGet, bad, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}
}

func TestCompanyHandler_CreateAndGet(t *testing.T) {
	h, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/users", `{"username":"ann","password":"pw"}`).Code)

	rr := do(t, h, http.MethodPost, "/companies",
		`{"companyName":"Acme","address":"1 Main St","industry":"Retail","userId":1}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[map[string]any](t, rr)
	assert.Equal(t, "/companies/1", rr.Header().Get("Location"))

	got := do(t, h, http.MethodGet, rr.Header().Get("Location"), "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, created, decode[map[string]any](t, got))
	assert.Equal(t, "Acme", created["companyName"])
	assert.Equal(t, "1 Main St", created["address"])
	assert.Equal(t, "Retail", created["industry"])

	t.Run("empty name", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/companies", `{"companyName":""}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/companies", `{"companyName":`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unknown owner", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/companies", `{"companyName":"Ghost","userId":77}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing company", func(t *testing.T) {
		rr := do(t, h, http.MethodGet, "/companies/404", "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestCompanyHandler_SessionOwner(t *testing.T) {
	h, _ := newTestRouter(t)
	do(t, h, http.MethodPost, "/users", `{"username":"ann","password":"pw"}`)
	do(t, h, http.MethodPost, "/users", `{"username":"bob","password":"pw"}`)

	login := do(t, h, http.MethodGet, "/users/login?username=ann&password=pw", "")
	require.Equal(t, http.StatusOK, login.Code)
	session := login.Result().Cookies()[0]

	rr := do(t, h, http.MethodPost, "/companies", `{"companyName":"Acme"}`, session)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, float64(1), decode[map[string]any](t, rr)["userId"])

	rr = do(t, h, http.MethodPost, "/companies", `{"companyName":"Acme","userId":2}`, session)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	list := do(t, h, http.MethodGet, "/companies?userId=1", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, decode[[]map[string]any](t, list), 1)

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodGet, "/companies?userId=x", "").Code)
}

func TestCompanyHandler_CascadeDelete(t *testing.T) {
	h, _ := newTestRouter(t)

	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/companies", `{"companyName":"Acme"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/companies", `{"companyName":"Empty"}`).Code)
	for _, name := range []string{"Ann", "Bob"} {
		rr := do(t, h, http.MethodPost, "/contacts", `{"contactName":"`+name+`","companyId":1}`)
		require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	}

	contacts := do(t, h, http.MethodGet, "/companies/1/contacts", "")
	require.Equal(t, http.StatusOK, contacts.Code)
	assert.Len(t, decode[[]map[string]any](t, contacts), 2)

	empty := do(t, h, http.MethodGet, "/companies/2/contacts", "")
	require.Equal(t, http.StatusOK, empty.Code)
	assert.JSONEq(t, `[]`, empty.Body.String())

	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/companies/9/contacts", "").Code)

	withContacts := do(t, h, http.MethodGet, "/companies/with-contacts", "")
	require.Equal(t, http.StatusOK, withContacts.Code)
	grouped := decode[[]struct {
		Company  map[string]any   `json:"company"`
		Contacts []map[string]any `json:"contacts"`
	}](t, withContacts)
	require.Len(t, grouped, 2)
	assert.Len(t, grouped[0].Contacts, 2)
	assert.NotNil(t, grouped[1].Contacts)
	assert.Empty(t, grouped[1].Contacts)

	del := do(t, h, http.MethodDelete, "/companies/1", "")
	assert.Equal(t, http.StatusNoContent, del.Code)
	assert.Empty(t, del.Body.String())
	for _, id := range []string{"1", "2"} {
		assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/contacts/"+id, "").Code)
	}
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/companies/1", "").Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/companies/1", "").Code)
}

func TestContactHandler(t *testing.T) {
	h, _ := newTestRouter(t)

	list := do(t, h, http.MethodGet, "/contacts", "")
	require.Equal(t, http.StatusOK, list.Code)
	assert.JSONEq(t, `[]`, list.Body.String())

	rr := do(t, h, http.MethodPost, "/contacts",
		`{"contactName":"Ann","phoneNumber":"555-0100","email":"ann@example.com"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "/contacts/1", rr.Header().Get("Location"))

	got := do(t, h, http.MethodGet, "/contacts/1", "")
	require.Equal(t, http.StatusOK, got.Code)
	assert.JSONEq(t,
		`{"contactId":1,"contactName":"Ann","phoneNumber":"555-0100","email":"ann@example.com","companyId":0}`,
		got.Body.String())

	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/contacts", `{"contactName":" "}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, h, http.MethodPost, "/contacts", `{"contactName":"X","companyId":5}`).Code)

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/contacts/1", "").Code)
	missing := do(t, h, http.MethodDelete, "/contacts/1", "")
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Contact with ID 1 not found.", decode[ErrorResponse](t, missing).Message)
}

func TestMeetingHandler(t *testing.T) {
	h, _ := newTestRouter(t)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/users", `{"username":"ann","password":"pw"}`).Code)
	require.Equal(t, http.StatusCreated, do(t, h, http.MethodPost, "/contacts", `{"contactName":"Bob"}`).Code)

	t.Run("empty name rejected", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/meetings", `{"meetingName":"","meetingTime":"2025-01-01T10:00:00"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("missing time rejected", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/meetings", `{"meetingName":"Kickoff","userId":1}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "meetingTime", decode[ErrorResponse](t, rr).Field)
	})

	t.Run("unparseable time rejected", func(t *testing.T) {
		rr := do(t, h, http.MethodPost, "/meetings", `{"meetingName":"Kickoff","meetingTime":"tomorrow"}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	rr := do(t, h, http.MethodPost, "/meetings",
		`{"meetingName":"Kickoff","meetingDescription":"intro","meetingTime":"2025-01-01T10:00:00","userId":1,"contactId":1}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	assert.Equal(t, "/meetings/1", rr.Header().Get("Location"))
	assert.Equal(t, "2025-01-01T10:00:00Z", decode[map[string]any](t, rr)["meetingTime"])

	late := do(t, h, http.MethodPost, "/meetings",
		`{"meetingName":"Late","meetingTime":"2025-01-02T00:00:00Z","userId":1}`)
	require.Equal(t, http.StatusCreated, late.Code)

	byUser := do(t, h, http.MethodGet, "/meetings/user/1", "")
	require.Equal(t, http.StatusOK, byUser.Code)
	assert.Len(t, decode[[]map[string]any](t, byUser), 2)

	onDay := do(t, h, http.MethodGet, "/meetings/user/1/date/01-01-2025", "")
	require.Equal(t, http.StatusOK, onDay.Code)
	day := decode[[]map[string]any](t, onDay)
	require.Len(t, day, 1)
	assert.Equal(t, "Kickoff", day[0]["meetingName"])

	none := do(t, h, http.MethodGet, "/meetings/user/1/date/05-05-2025", "")
	assert.Equal(t, http.StatusOK, none.Code)
	assert.JSONEq(t, `[]`, none.Body.String())

	for _, bad := range []string{"31-02-2025", "2025-01-01", "1-1-2025"} {
		rr := do(t, h, http.MethodGet, "/meetings/user/1/date/"+bad, "")
		assert.Equal(t, http.StatusBadRequest, rr.Code, bad)
	}

	// Deleting the contact keeps the meeting without one.
	require.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/contacts/1", "").Code)
	kept := do(t, h, http.MethodGet, "/meetings/1", "")
	require.Equal(t, http.StatusOK, kept.Code)
	assert.Equal(t, float64(0), decode[map[string]any](t, kept)["contactId"])

	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/meetings/1", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, h, http.MethodGet, "/meetings/1", "").Code)
	assert.Equal(t, http.StatusNoContent, do(t, h, http.MethodDelete, "/meetings/1", "").Code)
}
