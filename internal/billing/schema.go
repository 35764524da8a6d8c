package billing

// Schema is applied on every open; CREATE IF NOT EXISTS keeps it
// idempotent for existing databases.
const Schema = `
CREATE TABLE IF NOT EXISTS quotes (
	id TEXT PRIMARY KEY,
	customer_name TEXT NOT NULL,
	customer_email TEXT,
	job TEXT,
	items TEXT NOT NULL DEFAULT '[]',
	total REAL NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS invoices (
	id TEXT PRIMARY KEY,
	quote_id TEXT,
	customer_name TEXT NOT NULL,
	customer_email TEXT,
	job TEXT,
	items TEXT NOT NULL DEFAULT '[]',
	total REAL NOT NULL DEFAULT 0,
	due_at DATETIME,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS bookings (
	id TEXT PRIMARY KEY,
	customer_name TEXT NOT NULL,
	phone TEXT,
	address TEXT,
	slot TEXT,
	notes TEXT,
	created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_quotes_created ON quotes(created_at);
CREATE INDEX IF NOT EXISTS idx_invoices_created ON invoices(created_at);
`
