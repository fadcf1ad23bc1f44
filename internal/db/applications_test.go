package db

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveApplication_InsertThenUpdateInPlace(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.UpsertJob(ctx, newJob("j1", "Stockholm", PriorityUrgent, nil)))

	id, err := db.SaveApplication(ctx, ApplicationInput{
		JobID:       "j1",
		Status:      StatusLetterGenerated,
		CoverLetter: "Hej!",
	})
	require.NoError(t, err)
	assert.Positive(t, id)

	again, err := db.SaveApplication(ctx, ApplicationInput{
		JobID:        "j1",
		Status:       StatusDraftSaved,
		GmailDraftID: "<abc@job-autopilot>",
	})
	require.NoError(t, err)
	assert.Equal(t, id, again, "a listing keeps a single application")

	app, err := db.GetApplication(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, StatusDraftSaved, app.Status)
	assert.Equal(t, "Hej!", *app.CoverLetter, "letter survives when the update carries none")
	assert.Equal(t, "<abc@job-autopilot>", *app.GmailDraftID)
	assert.Equal(t, "Job j1", app.Title)
	assert.Equal(t, "Company j1", app.Company)
}

func TestSaveApplication_Validation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.SaveApplication(ctx, ApplicationInput{Status: StatusSkipped})
	assert.Error(t, err)

	_, err = db.SaveApplication(ctx, ApplicationInput{JobID: "j", Status: "maybe"})
	assert.Error(t, err)
}

func TestUpdateApplicationStatus(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	require.NoError(t, db.UpsertJob(ctx, newJob("j2", "Stockholm", PriorityUrgent, nil)))

	id, err := db.SaveApplication(ctx, ApplicationInput{JobID: "j2", Status: StatusDraftSaved})
	require.NoError(t, err)

	app, err := db.UpdateApplicationStatus(ctx, id, StatusSent, "Skickat via Gmail")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, StatusSent, app.Status)
	assert.NotNil(t, app.SentAt)
	assert.Equal(t, "Skickat via Gmail", *app.Notes)

	_, err = db.UpdateApplicationStatus(ctx, id, StatusAccepted, "")
	assert.True(t, errors.Is(err, ErrInvalidTransition))

	app, err = db.UpdateApplicationStatus(ctx, id, StatusInterview, "")
	require.NoError(t, err)
	assert.Equal(t, "Skickat via Gmail", *app.Notes, "empty notes keep the previous value")

	app, err = db.UpdateApplicationStatus(ctx, id, StatusAccepted, "")
	require.NoError(t, err)
	assert.Equal(t, StatusAccepted, app.Status)

	missing, err := db.UpdateApplicationStatus(ctx, 9999, StatusSent, "")
	assert.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListApplications_NewestFirst(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	base := time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		id := fmt.Sprintf("la%d", i)
		require.NoError(t, db.UpsertJob(ctx, newJob(id, "Stockholm", PriorityStrategic, nil)))
		db.now = func() time.Time { return base.Add(time.Duration(i) * time.Hour) }
		_, err := db.SaveApplication(ctx, ApplicationInput{JobID: id, Status: StatusLetterGenerated})
		require.NoError(t, err)
	}

	apps, err := db.ListApplications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 3)
	assert.Equal(t, "la2", apps[0].JobID)
	assert.Equal(t, "la0", apps[2].JobID)
	assert.Equal(t, "Job la2", apps[0].Title)
}

func TestGetStats(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	today := time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 10; i++ {
		var deadline *string
		if i < 2 {
			deadline = strPtr("2025-03-14T23:59:59")
		}
		require.NoError(t, db.UpsertJob(ctx, newJob(fmt.Sprintf("st%d", i), "Stockholm", PriorityStrategic, deadline)))
	}
	require.NoError(t, db.UpsertJob(ctx, newJob("stale", "Stockholm", PriorityStrategic, strPtr("2025-03-14"))))
	require.NoError(t, db.SetLinkStatus(ctx, "stale", LinkStale))

	statuses := []string{StatusSent, StatusLetterGenerated, StatusDraftSaved}
	for i, status := range statuses {
		_, err := db.SaveApplication(ctx, ApplicationInput{JobID: fmt.Sprintf("st%d", i+5), Status: status})
		require.NoError(t, err)
	}

	stats, err := db.GetStats(ctx, today)
	require.NoError(t, err)

	assert.Equal(t, &Stats{
		TotalJobs:         10,
		PendingJobs:       7,
		TotalApplications: 3,
		SentApplications:  1,
		Interviews:        0,
		DeadlineToday:     2,
	}, stats)
}
