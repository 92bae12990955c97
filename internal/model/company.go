package model

// Company is a customer organisation owned by a user.
// UserID is 0 when the company has no owner.
type Company struct {
	ID       int64  `json:"companyId"   db:"company_id"`
	Name     string `json:"companyName" db:"company_name"`
	Address  string `json:"address"     db:"address"`
	Industry string `json:"industry"    db:"industry"`
	UserID   int64  `json:"userId"      db:"user_id"`
}

// CompanyWithContacts pairs a company with all of its contacts.
// Contacts is never nil so it always serializes as a JSON array.
type CompanyWithContacts struct {
	Company  Company   `json:"company"`
	Contacts []Contact `json:"contacts"`
}
