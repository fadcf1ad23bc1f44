package tracker

import (
	"context"
	"errors"
	"testing"

	gnt "github.com/dstotijn/go-notion"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/notify"
)

type fakeAPI struct {
	created []gnt.CreatePageParams
	updated map[string]gnt.UpdatePageParams
	queried int
	err     error
}

func (f *fakeAPI) CreatePage(_ context.Context, params gnt.CreatePageParams) (gnt.Page, error) {
	if f.err != nil {
		return gnt.Page{}, f.err
	}
	f.created = append(f.created, params)
	return gnt.Page{ID: "page-1"}, nil
}

func (f *fakeAPI) UpdatePage(_ context.Context, pageID string, params gnt.UpdatePageParams) (gnt.Page, error) {
	if f.err != nil {
		return gnt.Page{}, f.err
	}
	if f.updated == nil {
		f.updated = make(map[string]gnt.UpdatePageParams)
	}
	f.updated[pageID] = params
	return gnt.Page{ID: pageID}, nil
}

func (f *fakeAPI) QueryDatabase(_ context.Context, _ string, _ *gnt.DatabaseQuery) (gnt.DatabaseQueryResponse, error) {
	f.queried++
	return gnt.DatabaseQueryResponse{}, f.err
}

type memPages map[string]string

func (m memPages) GetUserData(_ context.Context, key string) (string, error) {
	return m[key], nil
}

func (m memPages) SetUserData(_ context.Context, key, value string) error {
	m[key] = value
	return nil
}

func barista() *db.Job {
	deadline := "2025-03-12"
	return &db.Job{
		ID:       "29384756",
		Title:    "Barista",
		Company:  "Café Nord",
		Location: "Stockholm",
		Priority: db.PriorityUrgent,
		Deadline: &deadline,
	}
}

func TestProperties(t *testing.T) {
	props := Properties(Entry{ApplicationID: 1, Job: barista(), Status: db.StatusDraftSaved})

	require.Contains(t, props, PropPosition)
	assert.Equal(t, "Barista", props[PropPosition].Title[0].Text.Content)
	assert.Equal(t, "Café Nord", props[PropCompany].RichText[0].Text.Content)
	assert.Equal(t, "https://arbetsformedlingen.se/platsbanken/annonser/29384756", *props[PropPosting].URL)
	assert.Equal(t, db.PriorityUrgent, props[PropPriority].Select.Name)
	assert.Equal(t, db.StatusDraftSaved, props[PropStage].Select.Name)
	require.NotNil(t, props[PropDeadline].Date)
	assert.NotContains(t, props, PropNotes, "empty notes are left out")
}

func TestProperties_UnparseableDeadline(t *testing.T) {
	job := barista()
	soon := "snart"
	job.Deadline = &soon
	assert.NotContains(t, Properties(Entry{Job: job}), PropDeadline)
}

func TestSync_CreatesThenUpdates(t *testing.T) {
	api := &fakeAPI{}
	pages := memPages{}
	n := &Notion{api: api, databaseID: "db-1", pages: pages}
	ctx := context.Background()

	id, err := n.Sync(ctx, Entry{ApplicationID: 7, Job: barista(), Status: db.StatusDraftSaved})
	require.NoError(t, err)
	assert.Equal(t, "page-1", id)
	require.Len(t, api.created, 1)
	assert.Equal(t, gnt.ParentTypeDatabase, api.created[0].ParentType)
	assert.Equal(t, "db-1", api.created[0].ParentID)
	assert.Equal(t, "page-1", pages["notion_page:7"])

	id, err = n.Sync(ctx, Entry{ApplicationID: 7, Job: barista(), Status: db.StatusSent, Notes: "Skickat"})
	require.NoError(t, err)
	assert.Equal(t, "page-1", id)
	assert.Len(t, api.created, 1, "second sync updates the existing row")
	require.Contains(t, api.updated, "page-1")
	assert.Equal(t, db.StatusSent, api.updated["page-1"].DatabasePageProperties[PropStage].Select.Name)
}

func TestSync_Errors(t *testing.T) {
	n := &Notion{api: &fakeAPI{err: errors.New("rate limited")}, databaseID: "db-1", pages: memPages{}}

	_, err := n.Sync(context.Background(), Entry{ApplicationID: 1, Job: barista()})
	assert.ErrorContains(t, err, "rate limited")

	_, err = n.Sync(context.Background(), Entry{ApplicationID: 1})
	assert.Error(t, err)
}

func TestNotify(t *testing.T) {
	api := &fakeAPI{}
	n := &Notion{api: api, databaseID: "db-1", pages: memPages{}}
	ctx := context.Background()

	require.NoError(t, n.Notify(ctx, notify.Event{Type: notify.EventScrapeDone}))
	require.NoError(t, n.Notify(ctx, notify.Event{Type: notify.EventDraftSaved, Job: barista()}))
	assert.Empty(t, api.created, "events without an application id are ignored")

	require.NoError(t, n.Notify(ctx, notify.Event{
		Type: notify.EventStatusChanged,
		Job:  barista(),
		Data: map[string]any{"application_id": int64(3), "status": db.StatusInterview},
	}))
	require.Len(t, api.created, 1)
	assert.Equal(t, db.StatusInterview, (*api.created[0].DatabasePageProperties)[PropStage].Select.Name)
}

func TestPing(t *testing.T) {
	api := &fakeAPI{}
	n := &Notion{api: api, databaseID: "db-1", pages: memPages{}}
	require.NoError(t, n.Ping(context.Background()))
	assert.Equal(t, 1, api.queried)
}
