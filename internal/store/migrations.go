package store

// migration holds a single schema migration with its target version and SQL.
type migration struct {
	version int
	sql     string
}

// migrations is the ordered list of schema migrations.
// Each migration's version must be sequential starting from 1.
var migrations = []migration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS projects (
	id          TEXT PRIMARY KEY,
	title       TEXT NOT NULL,
	subtitle    TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	folder      TEXT NOT NULL DEFAULT '',
	images      TEXT NOT NULL DEFAULT 'null'
);

CREATE TABLE IF NOT EXISTS documents (
	name       TEXT PRIMARY KEY,
	body       TEXT NOT NULL,
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

INSERT INTO schema_version (version) VALUES (1);
`,
	},
}
