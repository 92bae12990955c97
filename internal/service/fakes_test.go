package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"time"

	"github.com/sakif/crm/internal/apperror"
	"github.com/sakif/crm/internal/model"
)

// fakeStore is an in-memory implementation of every repository interface.
// failWith, when set, is returned by every method.
type fakeStore struct {
	nextID   int64
	users    map[int64]model.User
	comps    map[int64]model.Company
	contacts map[int64]model.Contact
	meetings map[int64]model.Meeting

	failWith error

	// lastFrom/lastTo record the range passed to ListMeetingsByUserBetween.
	lastFrom, lastTo time.Time
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[int64]model.User),
		comps:    make(map[int64]model.Company),
		contacts: make(map[int64]model.Contact),
		meetings: make(map[int64]model.Meeting),
	}
}

func (f *fakeStore) id() int64 {
	f.nextID++
	return f.nextID
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// --- users ---

func (f *fakeStore) CreateUser(_ context.Context, u *model.User) error {
	if f.failWith != nil {
		return f.failWith
	}
	for _, existing := range f.users {
		if existing.Username == u.Username {
			return apperror.Conflict("user", u.Username)
		}
	}
	u.ID = f.id()
	f.users[u.ID] = *u
	return nil
}

func (f *fakeStore) GetUserByID(_ context.Context, id int64) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	u, ok := f.users[id]
	if !ok {
		return nil, apperror.NotFound("User", id)
	}
	return &u, nil
}

func (f *fakeStore) GetUserByUsername(_ context.Context, username string) (*model.User, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	for _, u := range f.users {
		if u.Username == username {
			return &u, nil
		}
	}
	return nil, apperror.NotFoundMessage(fmt.Sprintf("User %q not found.", username))
}

// --- companies ---

func (f *fakeStore) CreateCompany(_ context.Context, c *model.Company) error {
	if f.failWith != nil {
		return f.failWith
	}
	if c.UserID != 0 {
		if _, ok := f.users[c.UserID]; !ok {
			return apperror.ValidationFailed("userId", "userId does not reference an existing record")
		}
	}
	c.ID = f.id()
	f.comps[c.ID] = *c
	return nil
}

func (f *fakeStore) GetCompanyByID(_ context.Context, id int64) (*model.Company, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.comps[id]
	if !ok {
		return nil, apperror.NotFound("Company", id)
	}
	return &c, nil
}

func (f *fakeStore) ListCompanies(_ context.Context, ownerID int64) ([]model.Company, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Company{}
	for _, c := range f.comps {
		if ownerID == 0 || c.UserID == ownerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListCompaniesWithContacts(ctx context.Context, ownerID int64) ([]model.CompanyWithContacts, error) {
	companies, err := f.ListCompanies(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	out := make([]model.CompanyWithContacts, 0, len(companies))
	for _, c := range companies {
		contacts, _ := f.ListContactsByCompany(ctx, c.ID)
		out = append(out, model.CompanyWithContacts{Company: c, Contacts: contacts})
	}
	return out, nil
}

func (f *fakeStore) DeleteCompany(_ context.Context, id int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	for cid, c := range f.contacts {
		if c.CompanyID == id {
			delete(f.contacts, cid)
		}
	}
	delete(f.comps, id)
	return nil
}

// --- contacts ---

func (f *fakeStore) CreateContact(_ context.Context, c *model.Contact) error {
	if f.failWith != nil {
		return f.failWith
	}
	if c.CompanyID != 0 {
		if _, ok := f.comps[c.CompanyID]; !ok {
			return apperror.ValidationFailed("companyId", "companyId does not reference an existing record")
		}
	}
	c.ID = f.id()
	f.contacts[c.ID] = *c
	return nil
}

func (f *fakeStore) GetContactByID(_ context.Context, id int64) (*model.Contact, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	c, ok := f.contacts[id]
	if !ok {
		return nil, apperror.NotFound("Contact", id)
	}
	return &c, nil
}

func (f *fakeStore) ListContacts(_ context.Context) ([]model.Contact, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Contact{}
	for _, c := range f.contacts {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) ListContactsByCompany(_ context.Context, companyID int64) ([]model.Contact, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	out := []model.Contact{}
	for _, c := range f.contacts {
		if c.CompanyID == companyID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeStore) DeleteContact(_ context.Context, id int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	if _, ok := f.contacts[id]; !ok {
		return apperror.NotFound("Contact", id)
	}
	delete(f.contacts, id)
	for mid, m := range f.meetings {
		if m.ContactID == id {
			m.ContactID = 0
			f.meetings[mid] = m
		}
	}
	return nil
}

// --- meetings ---

func (f *fakeStore) CreateMeeting(_ context.Context, m *model.Meeting) error {
	if f.failWith != nil {
		return f.failWith
	}
	m.ID = f.id()
	f.meetings[m.ID] = *m
	return nil
}

func (f *fakeStore) GetMeetingByID(_ context.Context, id int64) (*model.Meeting, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	m, ok := f.meetings[id]
	if !ok {
		return nil, apperror.NotFound("Meeting", id)
	}
	return &m, nil
}

func (f *fakeStore) ListMeetingsByUser(ctx context.Context, userID int64) ([]model.Meeting, error) {
	return f.ListMeetingsByUserBetween(ctx, userID, time.Time{}, time.Time{})
}

func (f *fakeStore) ListMeetingsByUserBetween(_ context.Context, userID int64, from, to time.Time) ([]model.Meeting, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	f.lastFrom, f.lastTo = from, to
	out := []model.Meeting{}
	for _, m := range f.meetings {
		if m.UserID != userID {
			continue
		}
		if !to.IsZero() && (m.Time.Before(from) || !m.Time.Before(to)) {
			continue
		}
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Time.Before(out[j].Time.Time) })
	return out, nil
}

func (f *fakeStore) DeleteMeeting(_ context.Context, id int64) error {
	if f.failWith != nil {
		return f.failWith
	}
	delete(f.meetings, id)
	return nil
}

var errDatabaseDown = errors.New("database is down")
