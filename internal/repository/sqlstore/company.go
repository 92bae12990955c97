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

var _ repository.CompanyRepository = (*DB)(nil)

const companyColumns = `company_id, company_name, address, industry, user_id`

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanCompany(s scanner, c *model.Company) error {
	var userID sql.NullInt64
	if err := s.Scan(&c.ID, &c.Name, &c.Address, &c.Industry, &userID); err != nil {
		return err
	}
	c.UserID = userID.Int64
	return nil
}

// CreateCompany inserts a company and fills in the generated ID.
// An unknown owner is reported as a validation error on userId.
func (db *DB) CreateCompany(ctx context.Context, company *model.Company) error {
	err := db.queryRow(ctx,
		`INSERT INTO companies (company_name, address, industry, user_id)
		 VALUES (?, ?, ?, ?) RETURNING company_id`,
		company.Name,
		company.Address,
		company.Industry,
		nullID(company.UserID),
	).Scan(&company.ID)
	if err != nil {
		if cerr := constraintError(err, "company", company.Name, "userId"); cerr != nil {
			return cerr
		}
		return fmt.Errorf("sqlstore: inserting company %q: %w", company.Name, err)
	}
	return nil
}

// GetCompanyByID retrieves a company by ID.
func (db *DB) GetCompanyByID(ctx context.Context, id int64) (*model.Company, error) {
	var c model.Company
	err := scanCompany(db.queryRow(ctx,
		`SELECT `+companyColumns+` FROM companies WHERE company_id = ?`, id), &c)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperror.NotFound("Company", id)
		}
		return nil, fmt.Errorf("sqlstore: getting company %d: %w", id, err)
	}
	return &c, nil
}

// ListCompanies returns all companies, or those owned by ownerID when it is
// positive.
func (db *DB) ListCompanies(ctx context.Context, ownerID int64) ([]model.Company, error) {
	query := `SELECT ` + companyColumns + ` FROM companies`
	var args []any
	if ownerID > 0 {
		query += ` WHERE user_id = ?`
		args = append(args, ownerID)
	}
	query += ` ORDER BY company_id`

	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing companies: %w", err)
	}
	defer rows.Close()

	companies := make([]model.Company, 0)
	for rows.Next() {
		var c model.Company
		if err := scanCompany(rows, &c); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning company row: %w", err)
		}
		companies = append(companies, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlstore: iterating companies: %w", err)
	}

	return companies, nil
}

// ListCompaniesWithContacts loads companies and contacts with two queries and
// groups the contacts by company in memory. A company without contacts gets
// an empty, non-nil slice.
func (db *DB) ListCompaniesWithContacts(ctx context.Context, ownerID int64) ([]model.CompanyWithContacts, error) {
	companies, err := db.ListCompanies(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	contacts, err := db.ListContacts(ctx)
	if err != nil {
		return nil, err
	}

	byCompany := make(map[int64][]model.Contact, len(companies))
	for _, c := range contacts {
		byCompany[c.CompanyID] = append(byCompany[c.CompanyID], c)
	}

	result := make([]model.CompanyWithContacts, 0, len(companies))
	for _, company := range companies {
		list := byCompany[company.ID]
		if list == nil {
			list = []model.Contact{}
		}
		result = append(result, model.CompanyWithContacts{
			Company:  company,
			Contacts: list,
		})
	}

	return result, nil
}

// DeleteCompany removes a company's contacts and then the company itself in
// one transaction. Deleting a company that does not exist is not an error.
func (db *DB) DeleteCompany(ctx context.Context, id int64) error {
	err := db.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx,
			db.dialect.rebind(`DELETE FROM contacts WHERE company_id = ?`), id,
		); err != nil {
			return fmt.Errorf("deleting contacts: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			db.dialect.rebind(`DELETE FROM companies WHERE company_id = ?`), id,
		); err != nil {
			return fmt.Errorf("deleting company row: %w", err)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("sqlstore: deleting company %d: %w", id, err)
	}
	return nil
}
