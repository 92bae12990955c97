// Package repository declares the persistence contracts used by the service
// layer. The sqlstore package implements all of them on one *sql.DB.
package repository

import (
	"context"
	"time"

	"github.com/sakif/crm/internal/model"
)

type UserRepository interface {
	// CreateUser inserts the user and sets user.ID to the generated key.
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id int64) (*model.User, error)
	GetUserByUsername(ctx context.Context, username string) (*model.User, error)
}

type CompanyRepository interface {
	CreateCompany(ctx context.Context, company *model.Company) error
	GetCompanyByID(ctx context.Context, id int64) (*model.Company, error)
	// ListCompanies returns every company, or only those owned by ownerID
	// when ownerID > 0.
	ListCompanies(ctx context.Context, ownerID int64) ([]model.Company, error)
	ListCompaniesWithContacts(ctx context.Context, ownerID int64) ([]model.CompanyWithContacts, error)
	// DeleteCompany removes the company and its contacts atomically.
	DeleteCompany(ctx context.Context, id int64) error
}

type ContactRepository interface {
	CreateContact(ctx context.Context, contact *model.Contact) error
	GetContactByID(ctx context.Context, id int64) (*model.Contact, error)
	ListContacts(ctx context.Context) ([]model.Contact, error)
	ListContactsByCompany(ctx context.Context, companyID int64) ([]model.Contact, error)
	DeleteContact(ctx context.Context, id int64) error
}

type MeetingRepository interface {
	CreateMeeting(ctx context.Context, meeting *model.Meeting) error
	GetMeetingByID(ctx context.Context, id int64) (*model.Meeting, error)
	ListMeetingsByUser(ctx context.Context, userID int64) ([]model.Meeting, error)
	// ListMeetingsByUserBetween returns meetings with from <= time < to.
	ListMeetingsByUserBetween(ctx context.Context, userID int64, from, to time.Time) ([]model.Meeting, error)
	DeleteMeeting(ctx context.Context, id int64) error
}
