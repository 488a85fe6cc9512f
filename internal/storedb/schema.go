package storedb

// SchemaVersion is the current store database schema version
const SchemaVersion = 2

const schema = `
-- Contacts table
CREATE TABLE IF NOT EXISTS contacts (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    company TEXT NOT NULL DEFAULT '',
    favorite INTEGER NOT NULL DEFAULT 0,
    created_at TEXT NOT NULL,
    seq INTEGER NOT NULL
);

-- Activity log (append-only)
CREATE TABLE IF NOT EXISTS activity_logs (
    id TEXT PRIMARY KEY,
    action TEXT NOT NULL CHECK(action IN ('CREATE', 'UPDATE', 'DELETE', 'FAVORITE', 'UNFAVORITE')),
    contact_name TEXT NOT NULL,
    timestamp TEXT NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_email ON contacts(lower(email));
CREATE UNIQUE INDEX IF NOT EXISTS idx_contacts_phone ON contacts(phone) WHERE phone != '';
CREATE INDEX IF NOT EXISTS idx_contacts_seq ON contacts(seq);
CREATE INDEX IF NOT EXISTS idx_activity_timestamp ON activity_logs(timestamp);
`

// Migration defines a store database migration
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// Migrations is the list of all store database migrations in order
var Migrations = []Migration{
	// Version 1 is the initial schema - no migration needed
	{
		Version:     2,
		Description: "Index activity by contact name for per-contact history",
		SQL:         `CREATE INDEX IF NOT EXISTS idx_activity_contact ON activity_logs(contact_name, timestamp);`,
	},
}
