// Package service contains the business logic layer of the application.
//
//	Handler (HTTP)   → parses requests, writes responses
//	Service          → validates input, applies ownership rules, orchestrates
//	Repository (SQL) → reads/writes the relational store
//
// Services take repository interfaces, not *sqlstore.DB, so tests can run
// them against in-memory fakes. They return apperror values and never know
// about HTTP status codes.
package service

import (
	"fmt"
	"strings"

	"github.com/sakif/crm/internal/apperror"
)

// MaxNameLength bounds every required name field.
const MaxNameLength = 200

// requireName trims s and rejects empty or oversized values.
func requireName(field, s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", apperror.ValidationFailed(field, fmt.Sprintf("%s is required", field))
	}
	if len(s) > MaxNameLength {
		return "", apperror.ValidationFailed(field,
			fmt.Sprintf("%s must be %d characters or less", field, MaxNameLength))
	}
	return s, nil
}

// requireID rejects non-positive identifiers before they reach the store.
func requireID(field string, id int64) error {
	if id <= 0 {
		return apperror.ValidationFailed(field, fmt.Sprintf("%s must be a positive integer", field))
	}
	return nil
}

// resolveOwner applies the session identity to an owner field.
//
// Anonymous callers keep whatever owner they sent. An authenticated caller
// that left the owner empty becomes the owner; naming somebody else is
// forbidden.
func resolveOwner(claimed, actorID int64) (int64, error) {
	if actorID <= 0 {
		return claimed, nil
	}
	if claimed == 0 {
		return actorID, nil
	}
	if claimed != actorID {
		return 0, apperror.Forbidden("cannot create records on behalf of another user")
	}
	return claimed, nil
}
