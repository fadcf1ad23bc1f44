package db

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ignoreJobTimestamps = cmpopts.IgnoreFields(Job{}, "CreatedAt", "UpdatedAt")

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func strPtr(s string) *string { return &s }

func TestParseURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		dialect Dialect
		dsn     string
		wantErr bool
	}{
		{"sqlite scheme", "sqlite://data/jobs.db", SQLite, "data/jobs.db", false},
		{"memory", ":memory:", SQLite, ":memory:", false},
		{"file dsn", "file:test.db?cache=shared", SQLite, "file:test.db?cache=shared", false},
		{"postgres", "postgres://u:p@localhost:5432/jobs", Postgres, "postgres://u:p@localhost:5432/jobs", false},
		{"postgresql", "postgresql://localhost/jobs", Postgres, "postgresql://localhost/jobs", false},
		{"empty sqlite path", "sqlite://", "", "", true},
		{"unknown scheme", "mysql://localhost/jobs", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dialect, dsn, err := ParseURL(tt.url)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.dialect, dialect)
			assert.Equal(t, tt.dsn, dsn)
		})
	}
}

func TestRebind(t *testing.T) {
	pg := &DB{dialect: Postgres}
	lite := &DB{dialect: SQLite}
	q := "SELECT * FROM jobs WHERE id = ? AND link_status = ? LIMIT ?"

	assert.Equal(t, "SELECT * FROM jobs WHERE id = $1 AND link_status = $2 LIMIT $3", pg.rebind(q))
	assert.Equal(t, q, lite.rebind(q))
}

func TestSqlitePath(t *testing.T) {
	assert.Equal(t, "", sqlitePath(":memory:"))
	assert.Equal(t, "", sqlitePath("file::memory:?cache=shared"))
	assert.Equal(t, "data/jobs.db", sqlitePath("data/jobs.db"))
	assert.Equal(t, "data/jobs.db", sqlitePath("file:data/jobs.db?_pragma=foreign_keys(1)"))
}

func TestConnect_CreatesFileDatabase(t *testing.T) {
	path := t.TempDir() + "/nested/jobs.db"
	db, err := Connect(context.Background(), "sqlite://"+path)
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, SQLite, db.Dialect())
	assert.NoError(t, db.Ping(context.Background()))
	assert.FileExists(t, path)
}

func TestHashID(t *testing.T) {
	id := HashID("Barista", "Café Nord", "https://example.com/1")
	assert.Len(t, id, 12)
	assert.Equal(t, id, HashID("Barista", "Café Nord", "https://example.com/1"))
	assert.NotEqual(t, id, HashID("Barista", "Café Syd", "https://example.com/1"))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{StatusNew, StatusLetterGenerated, true},
		{StatusNew, StatusDraftSaved, true},
		{StatusNew, StatusSkipped, true},
		{StatusLetterGenerated, StatusSent, true},
		{StatusDraftSaved, StatusSent, true},
		{StatusSent, StatusInterview, true},
		{StatusSent, StatusRejected, true},
		{StatusInterview, StatusAccepted, true},
		{StatusSkipped, StatusSent, false},
		{StatusNew, StatusSent, false},
		{StatusSent, StatusAccepted, false},
		{StatusDraftSaved, StatusSkipped, false},
		{StatusSent, StatusSent, true},
		{StatusSent, "archived", false},
	}

	for _, tt := range tests {
		t.Run(tt.from+"->"+tt.to, func(t *testing.T) {
			assert.Equal(t, tt.want, CanTransition(tt.from, tt.to))
		})
	}
}

func TestUserData(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	v, err := db.GetUserData(ctx, "last_scrape")
	require.NoError(t, err)
	assert.Empty(t, v)

	require.NoError(t, db.SetUserData(ctx, "last_scrape", "2025-01-01T10:00:00Z"))
	require.NoError(t, db.SetUserData(ctx, "last_scrape", "2025-01-02T10:00:00Z"))

	v, err = db.GetUserData(ctx, "last_scrape")
	require.NoError(t, err)
	assert.Equal(t, "2025-01-02T10:00:00Z", v)
}

func TestDailyStats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	day := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)

	require.NoError(t, db.IncrementDailyStat(ctx, day, StatJobsScraped, 12))
	require.NoError(t, db.IncrementDailyStat(ctx, day, StatJobsScraped, 3))
	require.NoError(t, db.IncrementDailyStat(ctx, day, StatDraftsSaved, 1))

	got, err := db.GetDailyStat(ctx, day)
	require.NoError(t, err)
	want := &DailyStat{Date: "2025-03-14", JobsScraped: 15, DraftsSaved: 1}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("GetDailyStat mismatch (-want +got):\n%s", diff)
	}

	assert.Error(t, db.IncrementDailyStat(ctx, day, "jobs; DROP TABLE jobs", 1))

	empty, err := db.GetDailyStat(ctx, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Zero(t, empty.JobsScraped)
}
