package sqlstore

import "fmt"

// Tables are created in dependency order. meetings.contact_id is cleared when
// its contact goes away; contacts of a company are removed explicitly by
// DeleteCompany.
var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       INTEGER PRIMARY KEY AUTOINCREMENT,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		company_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		company_name TEXT NOT NULL,
		address      TEXT NOT NULL DEFAULT '',
		industry     TEXT NOT NULL DEFAULT '',
		user_id      INTEGER REFERENCES users(user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_companies_user_id ON companies(user_id)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		contact_id   INTEGER PRIMARY KEY AUTOINCREMENT,
		contact_name TEXT NOT NULL,
		phone_number TEXT NOT NULL DEFAULT '',
		email        TEXT NOT NULL DEFAULT '',
		company_id   INTEGER REFERENCES companies(company_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		meeting_id          INTEGER PRIMARY KEY AUTOINCREMENT,
		meeting_name        TEXT NOT NULL,
		meeting_description TEXT NOT NULL DEFAULT '',
		meeting_time        DATETIME NOT NULL,
		user_id             INTEGER REFERENCES users(user_id),
		contact_id          INTEGER REFERENCES contacts(contact_id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_user_time ON meetings(user_id, meeting_time)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		user_id       BIGSERIAL PRIMARY KEY,
		username      TEXT NOT NULL UNIQUE,
		password_hash TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS companies (
		company_id   BIGSERIAL PRIMARY KEY,
		company_name TEXT NOT NULL,
		address      TEXT NOT NULL DEFAULT '',
		industry     TEXT NOT NULL DEFAULT '',
		user_id      BIGINT REFERENCES users(user_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_companies_user_id ON companies(user_id)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		contact_id   BIGSERIAL PRIMARY KEY,
		contact_name TEXT NOT NULL,
		phone_number TEXT NOT NULL DEFAULT '',
		email        TEXT NOT NULL DEFAULT '',
		company_id   BIGINT REFERENCES companies(company_id)
	)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_company_id ON contacts(company_id)`,
	`CREATE TABLE IF NOT EXISTS meetings (
		meeting_id          BIGSERIAL PRIMARY KEY,
		meeting_name        TEXT NOT NULL,
		meeting_description TEXT NOT NULL DEFAULT '',
		meeting_time        TIMESTAMPTZ NOT NULL,
		user_id             BIGINT REFERENCES users(user_id),
		contact_id          BIGINT REFERENCES contacts(contact_id) ON DELETE SET NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_meetings_user_time ON meetings(user_id, meeting_time)`,
}

// migrate creates the schema if it does not exist yet. Every statement is
// idempotent, so running it against a provisioned database is a no-op.
func (db *DB) migrate() error {
	schema := sqliteSchema
	if db.dialect.name == "postgres" {
		schema = postgresSchema
	}
	for i, stmt := range schema {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
