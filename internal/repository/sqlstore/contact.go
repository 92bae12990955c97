package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sakif/crm/internal/apperror"
	"github.com/sakif/crm/internal/model"
	"github.com/sakif/crm/internal/repository"
)

var _ repository.ContactRepository = (*DB)(nil)

const contactColumns = `contact_id, contact_name, phone_number, email, company_id`

func scanContact(s scanner, c *model.Contact) error {
	var companyID sql.NullInt64
	if err := s.Scan(&c.ID, &c.Name, &c.PhoneNumber, &c.Email, &companyID); err != nil {
		return err
	}
	c.CompanyID = companyID.Int64
	return nil
}

// CreateContact inserts a contact and fills in the generated ID.
func (db *DB) CreateContact(ctx context.Context, contact *model.Contact) error {
	err := db.queryRow(ctx,
		`INSERT INTO contacts (contact_name, phone_number, email, company_id)
		 VALUES (?, ?, ?, ?) RETURNING contact_id`,
		contact.Name,
		contact.PhoneNumber,
		contact.Email,
		nullID(contact.CompanyID),
	).Scan(&contact.ID)
	if err != nil {
		if cerr := constraintError(err, "contact", contact.Name, "companyId"); cerr != nil {
			return cerr
		}
		return fmt.Errorf("sqlstore: inserting contact %q: %w", contact.Name, err)
	}
	return nil
}

// GetContactByID retrieves a contact by ID.
func (db *DB) GetContactByID(ctx context.Context, id int64) (*model.Contact, error) {
	var c model.Contact
	err := scanContact(db.queryRow(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE contact_id = ?`, id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Contact", id)
		}
		return nil, fmt.Errorf("sqlstore: getting contact %d: %w", id, err)
	}
	return &c, nil
}

// ListContacts returns every contact.
func (db *DB) ListContacts(ctx context.Context) ([]model.Contact, error) {
	return db.listContacts(ctx, `SELECT `+contactColumns+` FROM contacts ORDER BY contact_id`)
}

// ListContactsByCompany returns the contacts of one company. An empty result
// is not an error.
func (db *DB) ListContactsByCompany(ctx context.Context, companyID int64) ([]model.Contact, error) {
	return db.listContacts(ctx,
		`SELECT `+contactColumns+` FROM contacts WHERE company_id = ? ORDER BY contact_id`, companyID)
}

func (db *DB) listContacts(ctx context.Context, query string, args ...any) ([]model.Contact, error) {
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing contacts: %w", err)
	}
	defer rows.Close()

	contacts := make([]model.Contact, 0)
	for rows.Next() {
		var c model.Contact
		if err := scanContact(rows, &c); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning contact row: %w", err)
		}
		contacts = append(contacts, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating contacts: %w", err)
	}

	return contacts, nil
}

// DeleteContact removes a contact by ID. Meetings that referenced it keep
// existing with no contact. Returns apperror.ErrNotFound when nothing was
// deleted.
func (db *DB) DeleteContact(ctx context.Context, id int64) error {
	result, err := db.exec(ctx, `DELETE FROM contacts WHERE contact_id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlstore: deleting contact %d: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlstore: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("Contact", id)
	}

	return nil
}
