package sqlite

import "database/sql"

// schema contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// Rounds must be created before lunch_groups due to the foreign key constraint.
const schema = `
CREATE TABLE IF NOT EXISTS members (
    username TEXT PRIMARY KEY,
    department TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS rounds (
    id TEXT PRIMARY KEY,
    formation_date INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS lunch_groups (
    id TEXT PRIMARY KEY,
    round_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    FOREIGN KEY (round_id) REFERENCES rounds(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS group_members (
    group_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    username TEXT NOT NULL,
    PRIMARY KEY (group_id, username),
    FOREIGN KEY (group_id) REFERENCES lunch_groups(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_rounds_formation_date ON rounds(formation_date);
CREATE INDEX IF NOT EXISTS idx_lunch_groups_round_id ON lunch_groups(round_id);
CREATE INDEX IF NOT EXISTS idx_group_members_group_id ON group_members(group_id);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
