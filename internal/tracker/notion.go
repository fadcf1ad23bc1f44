// Package tracker mirrors applications into a Notion database.
package tracker

import (
	"context"
	"fmt"
	"strconv"

	gnt "github.com/dstotijn/go-notion"

	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/ingestion"
	"github.com/jonathan/job-autopilot/internal/notify"
)

// pageKeyPrefix prefixes the user_data key holding the Notion page of an application.
const pageKeyPrefix = "notion_page:"

// Notion database property names.
const (
	PropPosition = "Position"
	PropCompany  = "Company"
	PropPosting  = "Job Posting"
	PropLocation = "Location"
	PropStage    = "Stage"
	PropPriority = "Priority"
	PropDeadline = "Deadline"
	PropNotes    = "Notes"
)

type pageAPI interface {
	CreatePage(ctx context.Context, params gnt.CreatePageParams) (gnt.Page, error)
	UpdatePage(ctx context.Context, pageID string, params gnt.UpdatePageParams) (gnt.Page, error)
	QueryDatabase(ctx context.Context, id string, query *gnt.DatabaseQuery) (gnt.DatabaseQueryResponse, error)
}

// PageStore remembers which Notion page belongs to which application.
type PageStore interface {
	GetUserData(ctx context.Context, key string) (string, error)
	SetUserData(ctx context.Context, key, value string) error
}

// Entry is one application row as it appears in Notion.
type Entry struct {
	ApplicationID int64
	Job           *db.Job
	Status        string
	Notes         string
}

// Notion keeps one database row per application.
type Notion struct {
	api        pageAPI
	databaseID string
	pages      PageStore
}

// NewNotion creates a tracker writing to the database databaseID.
func NewNotion(token, databaseID string, pages PageStore) *Notion {
	return &Notion{api: gnt.NewClient(token), databaseID: databaseID, pages: pages}
}

// Ping checks that the database is reachable with a one-row query.
func (n *Notion) Ping(ctx context.Context) error {
	if _, err := n.api.QueryDatabase(ctx, n.databaseID, &gnt.DatabaseQuery{PageSize: 1}); err != nil {
		return fmt.Errorf("failed to query notion database: %w", err)
	}
	return nil
}

// Sync creates the row for e on first sight and updates it afterwards.
// It returns the Notion page id.
func (n *Notion) Sync(ctx context.Context, e Entry) (string, error) {
	if e.Job == nil {
		return "", fmt.Errorf("application %d has no listing", e.ApplicationID)
	}
	key := pageKeyPrefix + strconv.FormatInt(e.ApplicationID, 10)
	pageID, err := n.pages.GetUserData(ctx, key)
	if err != nil {
		return "", err
	}

	props := Properties(e)
	if pageID != "" {
		if _, err := n.api.UpdatePage(ctx, pageID, gnt.UpdatePageParams{DatabasePageProperties: props}); err != nil {
			return "", fmt.Errorf("failed to update notion page %s: %w", pageID, err)
		}
		return pageID, nil
	}

	page, err := n.api.CreatePage(ctx, gnt.CreatePageParams{
		ParentType:             gnt.ParentTypeDatabase,
		ParentID:               n.databaseID,
		DatabasePageProperties: &props,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create notion page: %w", err)
	}
	if err := n.pages.SetUserData(ctx, key, page.ID); err != nil {
		return "", err
	}
	return page.ID, nil
}

// Notify mirrors draft and status events. Other events are ignored.
func (n *Notion) Notify(ctx context.Context, e notify.Event) error {
	if e.Type != notify.EventDraftSaved && e.Type != notify.EventStatusChanged {
		return nil
	}
	id, ok := applicationID(e.Data["application_id"])
	if !ok || e.Job == nil {
		return nil
	}
	status, _ := e.Data["status"].(string)
	notes, _ := e.Data["notes"].(string)
	_, err := n.Sync(ctx, Entry{ApplicationID: id, Job: e.Job, Status: status, Notes: notes})
	return err
}

func applicationID(v any) (int64, bool) {
	switch id := v.(type) {
	case int64:
		return id, true
	case int:
		return int64(id), true
	case float64:
		return int64(id), true
	}
	return 0, false
}

func richText(s string) []gnt.RichText {
	if s == "" {
		return nil
	}
	return []gnt.RichText{{Text: &gnt.Text{Content: s}}}
}

// Properties builds the row properties for e. Empty values are left out so
// an update never blanks a column edited by hand.
func Properties(e Entry) gnt.DatabasePageProperties {
	j := e.Job
	props := gnt.DatabasePageProperties{
		PropPosition: {Title: richText(j.Title)},
	}
	if j.Company != "" {
		props[PropCompany] = gnt.DatabasePageProperty{RichText: richText(j.Company)}
	}
	if j.Location != "" {
		props[PropLocation] = gnt.DatabasePageProperty{RichText: richText(j.Location)}
	}
	url := j.PublicURL()
	props[PropPosting] = gnt.DatabasePageProperty{URL: &url}
	if j.Priority != "" {
		props[PropPriority] = gnt.DatabasePageProperty{Select: &gnt.SelectOptions{Name: j.Priority}}
	}
	if e.Status != "" {
		props[PropStage] = gnt.DatabasePageProperty{Select: &gnt.SelectOptions{Name: e.Status}}
	}
	if e.Notes != "" {
		props[PropNotes] = gnt.DatabasePageProperty{RichText: richText(e.Notes)}
	}
	if d := db.Value(j.Deadline); d != "" {
		if t, ok := ingestion.ParseDeadline(d); ok {
			props[PropDeadline] = gnt.DatabasePageProperty{Date: &gnt.Date{Start: gnt.NewDateTime(t, false)}}
		}
	}
	return props
}
