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

type ContactService struct {
	contacts repository.ContactRepository
	logger   *slog.Logger
}

func NewContactService(contacts repository.ContactRepository, logger *slog.Logger) *ContactService {
	return &ContactService{contacts: contacts, logger: logger}
}

// Create validates and stores a contact. CompanyID is optional; a value
// naming a missing company is rejected by the store.
func (s *ContactService) Create(ctx context.Context, contact model.Contact) (*model.Contact, error) {
	name, err := requireName("contactName", contact.Name)
	if err != nil {
		return nil, err
	}
	contact.Name = name
	contact.PhoneNumber = strings.TrimSpace(contact.PhoneNumber)
	contact.Email = strings.TrimSpace(contact.Email)

	if contact.CompanyID < 0 {
		return nil, apperror.ValidationFailed("companyId", "companyId must not be negative")
	}

	if err := s.contacts.CreateContact(ctx, &contact); err != nil {
		if !errors.Is(err, apperror.ErrValidation) {
			s.logger.Error("failed to create contact",
				slog.String("name", contact.Name),
				slog.String("error", err.Error()),
			)
		}
		return nil, fmt.Errorf("creating contact: %w", err)
	}

	s.logger.Info("contact created",
		slog.Int64("contactID", contact.ID),
		slog.Int64("companyID", contact.CompanyID),
	)
	return &contact, nil
}

func (s *ContactService) GetByID(ctx context.Context, id int64) (*model.Contact, error) {
	if err := requireID("id", id); err != nil {
		return nil, err
	}
	return s.contacts.GetContactByID(ctx, id)
}

func (s *ContactService) List(ctx context.Context) ([]model.Contact, error) {
	contacts, err := s.contacts.ListContacts(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing contacts: %w", err)
	}
	return contacts, nil
}

// Delete removes a contact. A missing contact is reported as not found.
// Meetings that referenced the contact keep existing without one.
func (s *ContactService) Delete(ctx context.Context, id int64) error {
	if err := requireID("id", id); err != nil {
		return err
	}
	if err := s.contacts.DeleteContact(ctx, id); err != nil {
		if !errors.Is(err, apperror.ErrNotFound) {
			s.logger.Error("failed to delete contact",
				slog.Int64("contactID", id),
				slog.String("error", err.Error()),
			)
		}
		return fmt.Errorf("deleting contact: %w", err)
	}

	s.logger.Info("contact deleted", slog.Int64("contactID", id))
	return nil
}
