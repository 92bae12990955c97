package model

// Contact is a person working at a company.
type Contact struct {
	ID          int64  `json:"contactId"   db:"contact_id"`
	Name        string `json:"contactName" db:"contact_name"`
	PhoneNumber string `json:"phoneNumber" db:"phone_number"`
	Email       string `json:"email"       db:"email"`
	CompanyID   int64  `json:"companyId"   db:"company_id"`
}
