package settings

// Schema defines the SQLite schema for persisted user settings. The
// settings subtree is stored as flat key/value rows with the value
// JSON-encoded so booleans, numbers, and strings survive a round trip.
const Schema = `
CREATE TABLE IF NOT EXISTS settings (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`
