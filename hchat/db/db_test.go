package db

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConnect_CreatesSchema(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "chat.db")
	ctx := context.Background()

	db, err := Connect(ctx, Config{DSN: "file:" + dbPath}, zerolog.Nop())
	require.NoError(t, err)
	defer db.Close()

	var name string
	err = db.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type='table' AND name='chats'").Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "chats", name)

	// Re-running is a no-op
	applied, err := Migrate(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, 0, applied)
}

func TestConnect_RequiresDSN(t *testing.T) {
	_, err := Connect(context.Background(), Config{}, zerolog.Nop())
	assert.Error(t, err)
}

func TestResolveDSN_RemoteAuthToken(t *testing.T) {
	dsn, err := resolveDSN(Config{DSN: "libsql://chat.example.turso.io", AuthToken: "tok"})
	require.NoError(t, err)
	assert.Equal(t, "libsql://chat.example.turso.io?authToken=tok", dsn)
	assert.Equal(t, "libsql://chat.example.turso.io?authToken=REDACTED", redact(dsn))
}

func TestResolveDSN_FileWithoutToken(t *testing.T) {
	dsn, err := resolveDSN(Config{DSN: "file:" + filepath.Join(t.TempDir(), "x.db")})
	require.NoError(t, err)
	assert.Contains(t, dsn, "file:")
}
