package model

// Meeting is a scheduled appointment between a user and a contact.
type Meeting struct {
	ID          int64     `json:"meetingId"          db:"meeting_id"`
	Name        string    `json:"meetingName"        db:"meeting_name"`
	Description string    `json:"meetingDescription" db:"meeting_description"`
	Time        Timestamp `json:"meetingTime"        db:"meeting_time"`
	UserID      int64     `json:"userId"             db:"user_id"`
	ContactID   int64     `json:"contactId"          db:"contact_id"`
}
