//go:build integration

package db

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

func getTestDB(t *testing.T) *DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set, skipping integration test")
	}

	db, err := Connect(context.Background(), dsn)
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	return db
}

func cleanupJob(t *testing.T, db *DB, id string) {
	t.Helper()
	ctx := context.Background()
	_, _ = db.exec(ctx, "DELETE FROM applications WHERE job_id = ?", id)
	_, _ = db.exec(ctx, "DELETE FROM jobs WHERE id = ?", id)
}

func TestIntegration_Postgres_JobLifecycle(t *testing.T) {
	db := getTestDB(t)
	defer db.Close()
	ctx := context.Background()

	if db.Dialect() != Postgres {
		t.Skip("TEST_DATABASE_URL is not a PostgreSQL URL")
	}

	id := "it-" + uuid.New().String()[:8]
	defer cleanupJob(t, db, id)

	t.Run("upsert twice keeps one row", func(t *testing.T) {
		job := newJob(id, "Stockholm", PriorityStrategic, nil)
		if err := db.UpsertJob(ctx, job); err != nil {
			t.Fatalf("UpsertJob failed: %v", err)
		}
		job.Title = "Barista"
		if err := db.UpsertJob(ctx, job); err != nil {
			t.Fatalf("UpsertJob failed: %v", err)
		}

		got, err := db.GetJob(ctx, id)
		if err != nil {
			t.Fatalf("GetJob failed: %v", err)
		}
		if got == nil || got.Title != "Barista" {
			t.Errorf("GetJob = %+v, want title Barista", got)
		}
	})

	t.Run("application and transition", func(t *testing.T) {
		appID, err := db.SaveApplication(ctx, ApplicationInput{JobID: id, Status: StatusDraftSaved})
		if err != nil {
			t.Fatalf("SaveApplication failed: %v", err)
		}
		app, err := db.UpdateApplicationStatus(ctx, appID, StatusSent, "")
		if err != nil {
			t.Fatalf("UpdateApplicationStatus failed: %v", err)
		}
		if app.Status != StatusSent {
			t.Errorf("Status = %q, want %q", app.Status, StatusSent)
		}
	})

	t.Run("stats", func(t *testing.T) {
		if _, err := db.GetStats(ctx, time.Now()); err != nil {
			t.Fatalf("GetStats failed: %v", err)
		}
	})
}
