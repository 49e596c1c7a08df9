package migrations

import (
	"database/sql"
	"os"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*sql.DB, *Migrator, func()) {
	t.Helper()

	dbPath := "./test_migrations_" + t.Name() + ".db"

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)

	m, err := New(db)
	require.NoError(t, err)

	cleanup := func() {
		db.Close()
		os.Remove(dbPath)
	}

	return db, m, cleanup
}

func tableNames(t *testing.T, db *sql.DB) map[string]bool {
	t.Helper()

	rows, err := db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'`)
	require.NoError(t, err)
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names[name] = true
	}
	require.NoError(t, rows.Err())
	return names
}

func indexNames(t *testing.T, db *sql.DB, table string) map[string]bool {
	t.Helper()

	rows, err := db.Query(
		`SELECT name FROM sqlite_master WHERE type = 'index' AND tbl_name = ? AND name NOT LIKE 'sqlite_%'`, table)
	require.NoError(t, err)
	defer rows.Close()

	names := make(map[string]bool)
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names[name] = true
	}
	require.NoError(t, rows.Err())
	return names
}

func TestMigrator_Up(t *testing.T) {
	db, m, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, m.Up())

	tables := tableNames(t, db)
	for _, table := range []string{"users", "books", "groups", "group_members", "invitations", "loans", "messages"} {
		assert.True(t, tables[table], "expected table %s", table)
	}

	version, dirty, applied, err := m.Version()
	require.NoError(t, err)
	assert.True(t, applied)
	assert.False(t, dirty)
	assert.Equal(t, uint(3), version)
}

func TestMigrator_UpIsIdempotent(t *testing.T) {
	db, m, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, m.Up())
	before := tableNames(t, db)

	// Second application at the head must leave the schema untouched.
	require.NoError(t, m.Up())
	assert.Equal(t, before, tableNames(t, db))

	version, _, applied, err := m.Version()
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, uint(3), version)
}

func TestMigrator_DownThenUpRestoresShape(t *testing.T) {
	db, m, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, m.Up())
	tablesBefore := tableNames(t, db)
	invitationIndexesBefore := indexNames(t, db, "invitations")
	messageIndexesBefore := indexNames(t, db, "messages")

	require.NoError(t, m.Down())
	tables := tableNames(t, db)
	for _, table := range []string{"users", "books", "loans", "messages"} {
		assert.False(t, tables[table], "table %s should be gone", table)
	}

	_, _, applied, err := m.Version()
	require.NoError(t, err)
	assert.False(t, applied)

	require.NoError(t, m.Up())
	assert.Equal(t, tablesBefore, tableNames(t, db))
	assert.Equal(t, invitationIndexesBefore, indexNames(t, db, "invitations"))
	assert.Equal(t, messageIndexesBefore, indexNames(t, db, "messages"))
}

func TestMigrator_StepsRevertSingleRevision(t *testing.T) {
	db, m, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, m.Up())

	// One step back removes only the messages revision.
	require.NoError(t, m.Steps(-1))
	tables := tableNames(t, db)
	assert.False(t, tables["messages"])
	assert.True(t, tables["invitations"])

	version, _, _, err := m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(2), version)

	// Another step removes the invitation code column and its index.
	require.NoError(t, m.Steps(-1))
	assert.NotContains(t, indexNames(t, db, "invitations"), "idx_invitations_code")

	require.NoError(t, m.Steps(2))
	version, _, _, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(3), version)
}

func TestMigrator_InvitationCodeUniqueIndex(t *testing.T) {
	db, m, cleanup := setupTestDB(t)
	defer cleanup()

	require.NoError(t, m.Up())

	_, err := db.Exec(`INSERT INTO users (username, email) VALUES ('owner', 'owner@example.com')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO groups (name, creator_id) VALUES ('club', 1)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO invitations (group_id, inviter_id, code) VALUES (1, 1, 'abc')`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO invitations (group_id, inviter_id, code) VALUES (1, 1, 'abc')`)
	assert.Error(t, err, "duplicate codes must violate the unique index")

	// NULL codes are exempt from uniqueness.
	_, err = db.Exec(`INSERT INTO invitations (group_id, inviter_id) VALUES (1, 1)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO invitations (group_id, inviter_id) VALUES (1, 1)`)
	require.NoError(t, err)
}

func TestMigrator_MessagesCascadeDelete(t *testing.T) {
	dbPath := "./test_migrations_cascade.db"
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
	require.NoError(t, err)
	defer func() {
		db.Close()
		os.Remove(dbPath)
	}()

	m, err := New(db)
	require.NoError(t, err)
	require.NoError(t, m.Up())

	_, err = db.Exec(`INSERT INTO users (username, email) VALUES ('owner', 'owner@example.com')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO users (username, email) VALUES ('borrower', 'borrower@example.com')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO books (owner_id, title) VALUES (1, 'Dune')`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO loans (book_id, borrower_id) VALUES (1, 2)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO messages (loan_id, sender_id, content) VALUES (1, 2, 'thanks!')`)
	require.NoError(t, err)

	_, err = db.Exec(`DELETE FROM loans WHERE id = 1`)
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM messages`).Scan(&count))
	assert.Equal(t, 0, count, "messages must cascade with their loan")
}
