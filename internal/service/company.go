package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/sakif/crm/internal/apperror"
	"github.com/sakif/crm/internal/model"
	"github.com/sakif/crm/internal/repository"
)

// CompanyService manages companies and the contacts listed under them.
type CompanyService struct {
	companies repository.CompanyRepository
	contacts  repository.ContactRepository
	logger    *slog.Logger
}

func NewCompanyService(
	companies repository.CompanyRepository,
	contacts repository.ContactRepository,
	logger *slog.Logger,
) *CompanyService {
	return &CompanyService{
		companies: companies,
		contacts:  contacts,
		logger:    logger,
	}
}

// Create validates and stores a company. actorID is the authenticated
// caller, or 0 for an anonymous request.
func (s *CompanyService) Create(ctx context.Context, company model.Company, actorID int64) (*model.Company, error) {
	name, err := requireName("companyName", company.Name)
	if err != nil {
		return nil, err
	}
	company.Name = name
	company.Address = strings.TrimSpace(company.Address)
	company.Industry = strings.TrimSpace(company.Industry)

	if company.UserID < 0 {
		return nil, apperror.ValidationFailed("userId", "userId must not be negative")
	}
	owner, err := resolveOwner(company.UserID, actorID)
	if err != nil {
		return nil, err
	}
	company.UserID = owner

	if err := s.companies.CreateCompany(ctx, &company); err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			s.logger.Error("failed to create company",
				slog.String("name", company.Name),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("creating company: %w", err)
	}

	s.logger.Info("company created",
		slog.Int64("companyID", company.ID),
		slog.Int64("userID", company.UserID),
	)
	return &company, nil
}

// GetByID returns the company with the given ID.
func (s *CompanyService) GetByID(ctx context.Context, id int64) (*model.Company, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return s.companies.GetCompanyByID(ctx, id)
}

// List returns all companies, or those owned by ownerID when it is set.
func (s *CompanyService) List(ctx context.Context, ownerID int64) ([]model.Company, error) {
	if ownerID < 0 {
		return nil, apperror.ValidationFailed("userId", "userId must be a positive integer")
	}
	companies, err := s.companies.ListCompanies(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing companies: %w", err)
	}
	return companies, nil
}

// ListWithContacts returns every company paired with its contacts.
// Companies without contacts are included with an empty list.
func (s *CompanyService) ListWithContacts(ctx context.Context, ownerID int64) ([]model.CompanyWithContacts, error) {
	if ownerID < 0 {
		return nil, apperror.ValidationFailed("userId", "userId must be a positive integer")
	}
	result, err := s.companies.ListCompaniesWithContacts(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("listing companies with contacts: %w", err)
	}
	return result, nil
}

// Contacts lists the contacts of one company. A missing company is an
// error; an existing company without contacts yields an empty slice.
func (s *CompanyService) Contacts(ctx context.Context, companyID int64) ([]model.Contact, error) {
	if err := requireID("id", companyID); err != nil {
		return nil, err
	}
	if _, err := s.companies.GetCompanyByID(ctx, companyID); err != nil {
		return nil, err
	}
	contacts, err := s.contacts.ListContactsByCompany(ctx, companyID)
	if err != nil {
		return nil, fmt.Errorf("listing contacts of company %d: %w", companyID, err)
	}
	return contacts, nil
}

// Delete removes the company together with its contacts. Deleting a
// company that does not exist succeeds.
func (s *CompanyService) Delete(ctx context.Context, id int64) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.companies.DeleteCompany(ctx, id); err != nil {
		s.logger.Error("failed to delete company",
			slog.Int64("companyID", id),
			slog.String("error", err.Error()),
		)
		return fmt.Errorf("deleting company: %w", err)
	}

	s.logger.Info("company deleted", slog.Int64("companyID", id))
	return nil
}
