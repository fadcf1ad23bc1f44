package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/content"
	"github.com/jonathan/job-autopilot/internal/cv"
	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/fetch"
	"github.com/jonathan/job-autopilot/internal/ingestion"
	"github.com/jonathan/job-autopilot/internal/mail"
	"github.com/jonathan/job-autopilot/internal/notify"
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeDrafts struct {
	mu   sync.Mutex
	msgs [][]byte
	err  error
}

func (f *fakeDrafts) AppendDraft(_ context.Context, msg []byte, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msg)
	return nil
}

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Notify(_ context.Context, e notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, e := range r.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeSearch struct {
	ads []ingestion.Ad
}

func (f *fakeSearch) Search(_ context.Context, _, _ string) ([]ingestion.Ad, error) {
	return f.ads, nil
}

func testProfile() *config.Profile {
	return &config.Profile{
		Name:      "Anna Lindqvist",
		Email:     "anna@example.com",
		Phone:     "0700000000",
		Town:      "Sollentuna",
		Biography: "- Bor i Sollentuna",
		Experience: map[string]string{
			"restaurant": "- Barista i kaffebutik (2024)",
		},
		CVFiles: map[string]string{
			"restaurant": "cv_restaurant.pdf",
			"general":    "cv_general.pdf",
		},
		Keywords:  []string{"barista"},
		Locations: []string{"Stockholm"},
	}
}

type fixture struct {
	svc    *Service
	store  *db.DB
	drafts *fakeDrafts
	events *recorder
}

func newFixture(t *testing.T, mutate ...func(*Deps)) *fixture {
	t.Helper()
	store, err := db.Connect(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cv_restaurant.pdf"), []byte("%PDF-cv"), 0o600))

	profile := testProfile()
	drafts := &fakeDrafts{}
	events := &recorder{}
	deps := Deps{
		Store:   store,
		Profile: profile,
		Writer:  content.NewGenerator(nil, profile),
		CVs:     cv.NewLibrary(cv.NewDir(dir), profile.CVFiles),
		Drafts:  drafts,
		From:    "anna@example.com",
		Hub:     notify.NewHub(events),
	}
	for _, m := range mutate {
		m(&deps)
	}
	svc := NewService(deps)
	svc.now = func() time.Time { return fixedNow }
	return &fixture{svc: svc, store: store, drafts: drafts, events: events}
}

func strPtr(s string) *string { return &s }

func (f *fixture) seed(t *testing.T, id, location string, contact *string) {
	t.Helper()
	require.NoError(t, f.store.UpsertJob(context.Background(), &db.Job{
		ID:           id,
		Title:        "Barista",
		Company:      "Café Nord",
		Location:     location,
		Description:  "Vi söker en barista till vårt café.",
		URL:          db.AdURLPrefix + id,
		Source:       db.SourcePlatsbanken,
		Priority:     db.PriorityUrgent,
		Deadline:     strPtr("2025-03-12"),
		ContactEmail: contact,
		LinkStatus:   db.LinkActive,
	}))
}

func TestService_GetJob(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "1", "Stockholm", nil)
	ctx := context.Background()

	job, err := f.svc.GetJob(ctx, "1")
	require.NoError(t, err)
	assert.Equal(t, "Café Nord", job.Company)

	_, err = f.svc.GetJob(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Contact(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_NextJob(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	job, err := f.svc.NextJob(ctx)
	require.NoError(t, err)
	assert.Nil(t, job)

	f.seed(t, "malmo", "Malmö", nil)
	f.seed(t, "sthlm", "Stockholm", nil)

	job, err = f.svc.NextJob(ctx)
	require.NoError(t, err)
	require.NotNil(t, job)
	assert.Equal(t, "sthlm", job.ID)
}

func TestService_GenerateLetter(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "1", "Stockholm", nil)
	ctx := context.Background()

	res, err := f.svc.GenerateLetter(ctx, "1")
	require.NoError(t, err)

	job, _ := f.store.GetJob(ctx, "1")
	assert.Equal(t, content.TemplateLetter(job, f.svc.Profile()), res.CoverLetter)
	assert.True(t, strings.HasPrefix(res.CoverLetter, "Hej!"))
	assert.Equal(t, "Café Nord", res.Company)

	day, err := f.store.GetDailyStat(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, day.LettersGenerated)
}

func TestService_ApplyAndSkip(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "1", "Stockholm", nil)
	f.seed(t, "2", "Stockholm", nil)
	f.seed(t, "3", "Stockholm", nil)
	ctx := context.Background()

	res, err := f.svc.Apply(ctx, "1", "Hej!", "")
	require.NoError(t, err)
	assert.Equal(t, db.StatusLetterGenerated, res.Status)
	assert.Equal(t, "Ansökan sparad!", res.Message)

	res, err = f.svc.Apply(ctx, "2", "Hej!", "<abc@job-autopilot.local>")
	require.NoError(t, err)
	assert.Equal(t, db.StatusDraftSaved, res.Status)
	assert.Equal(t, "Ansökan sparad! Utkast finns i Gmail.", res.Message)

	require.NoError(t, f.svc.Skip(ctx, "3", "för långt bort"))
	app, err := f.store.GetApplicationByJob(ctx, "3")
	require.NoError(t, err)
	assert.Equal(t, db.StatusSkipped, app.Status)
	assert.Equal(t, "för långt bort", db.Value(app.Notes))

	_, err = f.svc.Apply(ctx, "3", "Hej!", "")
	assert.ErrorIs(t, err, db.ErrInvalidTransition, "skipped is terminal")

	err = f.svc.Skip(ctx, "missing", "")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Contains(t, f.events.types(), notify.EventStatusChanged)
}

func TestService_UpdateStatus(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "1", "Stockholm", nil)
	ctx := context.Background()

	res, err := f.svc.Apply(ctx, "1", "Hej!", "<id>")
	require.NoError(t, err)

	app, err := f.svc.UpdateStatus(ctx, res.ApplicationID, db.StatusSent, "Skickat måndag")
	require.NoError(t, err)
	assert.Equal(t, db.StatusSent, app.Status)
	assert.NotNil(t, app.SentAt)

	day, err := f.store.GetDailyStat(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, day.ApplicationsSent)

	_, err = f.svc.UpdateStatus(ctx, res.ApplicationID, db.StatusAccepted, "")
	assert.ErrorIs(t, err, db.ErrInvalidTransition)

	_, err = f.svc.UpdateStatus(ctx, res.ApplicationID, "hired", "")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = f.svc.UpdateStatus(ctx, 999, db.StatusSent, "")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestService_Applications(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "1", "Stockholm", nil)
	ctx := context.Background()

	long := strings.Repeat("å", 250)
	_, err := f.svc.Apply(ctx, "1", long, "")
	require.NoError(t, err)

	apps, err := f.svc.Applications(ctx)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, strings.Repeat("å", 200)+"...", db.Value(apps[0].CoverLetter))
	assert.Equal(t, "Barista", apps[0].Title)
	assert.Equal(t, "Café Nord", apps[0].Company)
}

func TestPreviewLetter(t *testing.T) {
	assert.Equal(t, "kort", PreviewLetter("kort"))
	exact := strings.Repeat("a", CoverLetterPreviewRunes)
	assert.Equal(t, exact, PreviewLetter(exact))
}

func TestService_CreateDraft_NeedsEmail(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "1", "Stockholm", nil)

	res, err := f.svc.CreateDraft(context.Background(), "1", DraftRequest{})
	require.NoError(t, err)
	assert.True(t, res.NeedsEmail)
	assert.False(t, res.Success)
	assert.Equal(t, "Ange email-adress för mottagaren", res.Message)
	assert.Empty(t, f.drafts.msgs, "the mailbox is not touched")
}

func TestService_CreateDraft(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "1", "Stockholm", strPtr("jobb@cafenord.se"))
	ctx := context.Background()

	res, err := f.svc.CreateDraft(ctx, "1", DraftRequest{})
	require.NoError(t, err)
	require.True(t, res.Success)
	assert.Equal(t, "jobb@cafenord.se", res.ToEmail)
	assert.Equal(t, "Ansökan: Barista - Anna Lindqvist", res.Subject)

	require.Len(t, f.drafts.msgs, 1)
	msg := string(f.drafts.msgs[0])
	assert.Contains(t, msg, "Personligt_Brev_Anna_Lindqvist.pdf")
	assert.Contains(t, msg, "cv_restaurant.pdf")

	app, err := f.store.GetApplicationByJob(ctx, "1")
	require.NoError(t, err)
	require.NotNil(t, app)
	assert.Equal(t, db.StatusDraftSaved, app.Status)
	assert.Equal(t, res.DraftID, db.Value(app.GmailDraftID))
	assert.True(t, strings.HasPrefix(db.Value(app.CoverLetter), "Hej!"))

	day, err := f.store.GetDailyStat(ctx, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, 1, day.DraftsSaved)
	assert.Contains(t, f.events.types(), notify.EventDraftSaved)
}

func TestService_CreateDraft_Overrides(t *testing.T) {
	f := newFixture(t)
	f.seed(t, "1", "Stockholm", strPtr("jobb@cafenord.se"))

	res, err := f.svc.CreateDraft(context.Background(), "1", DraftRequest{
		ToEmail:     "chef@cafenord.se",
		CoverLetter: "kort",
	})
	require.NoError(t, err)
	assert.Equal(t, "chef@cafenord.se", res.ToEmail)

	msg := string(f.drafts.msgs[0])
	assert.NotContains(t, msg, "Personligt_Brev", "short letters are not attached")
	assert.Contains(t, msg, "cv_restaurant.pdf")
}

func TestService_CreateDraft_Errors(t *testing.T) {
	t.Run("mailbox not configured", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) {
			d.Drafts = nil
			d.MailboxErr = errors.New("Gmail credentials not configured")
		})
		f.seed(t, "1", "Stockholm", strPtr("jobb@cafenord.se"))

		_, err := f.svc.CreateDraft(context.Background(), "1", DraftRequest{})
		var cerr *ConfigError
		require.ErrorAs(t, err, &cerr)
		assert.Contains(t, err.Error(), "Gmail credentials not configured")
	})

	t.Run("auth failure", func(t *testing.T) {
		f := newFixture(t)
		f.drafts.err = mail.ErrAuth
		f.seed(t, "1", "Stockholm", strPtr("jobb@cafenord.se"))

		res, err := f.svc.CreateDraft(context.Background(), "1", DraftRequest{})
		assert.ErrorIs(t, err, mail.ErrAuth)
		require.NotNil(t, res)
		assert.False(t, res.Success)

		app, err := f.store.GetApplicationByJob(context.Background(), "1")
		require.NoError(t, err)
		assert.Nil(t, app, "nothing is recorded for a failed draft")
	})

	t.Run("missing cv is skipped", func(t *testing.T) {
		f := newFixture(t, func(d *Deps) {
			d.CVs = cv.NewLibrary(cv.NewDir(t.TempDir()), d.Profile.CVFiles)
		})
		f.seed(t, "1", "Stockholm", strPtr("jobb@cafenord.se"))

		res, err := f.svc.CreateDraft(context.Background(), "1", DraftRequest{})
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.NotContains(t, string(f.drafts.msgs[0]), "cv_restaurant.pdf")
	})
}

func TestService_DirectDraft(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.DirectDraft(context.Background(), "Ansökan", "Hej!", "jobb@cafenord.se")
	require.NoError(t, err)
	assert.Equal(t, "Gmail-utkast skapat!", res.Message)
	assert.Equal(t, "https://mail.google.com/mail/u/0/#drafts", res.DraftsURL)
	assert.Len(t, f.drafts.msgs, 1)

	_, err = f.svc.DirectDraft(context.Background(), "Ansökan", "Hej!", " ")
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)
}

func scraperDeps(ads []ingestion.Ad) func(*Deps) {
	return func(d *Deps) {
		d.Scraper = ingestion.NewScraper(d.Store, &fakeSearch{ads: ads}, nil)
		d.ScrapeOptions = ingestion.Options{Keywords: []string{"barista"}, Locations: []string{"Stockholm"}, Workers: 2}
	}
}

func TestService_Scrape(t *testing.T) {
	ads := []ingestion.Ad{
		{ID: "100", Title: "Barista", WorkplaceName: "Café Nord", Workplace: "Stockholm", LastApplicationDate: time.Now().Add(24 * time.Hour).Format("2006-01-02T15:04:05")},
		{ID: "200", Title: "Kock", WorkplaceName: "Krogen", Workplace: "Stockholm"},
	}
	f := newFixture(t, scraperDeps(ads))
	ctx := context.Background()

	res, err := f.svc.Scrape(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Stored)
	assert.Equal(t, 2, res.New)

	types := f.events.types()
	assert.Contains(t, types, notify.EventUrgentJob)
	assert.Contains(t, types, notify.EventScrapeDone)
	assert.False(t, f.svc.Running(OpScrape))
}

func TestService_ScrapeAsync(t *testing.T) {
	f := newFixture(t, scraperDeps([]ingestion.Ad{{ID: "100", Title: "Barista", Workplace: "Stockholm"}}))

	release, err := f.svc.guard.Acquire(OpScrape)
	require.NoError(t, err)
	assert.ErrorIs(t, f.svc.ScrapeAsync(), ErrBusy)
	_, err = f.svc.Scrape(context.Background())
	assert.ErrorIs(t, err, ErrBusy)
	release()

	require.NoError(t, f.svc.ScrapeAsync())
	f.svc.Wait()

	job, err := f.store.GetJob(context.Background(), "100")
	require.NoError(t, err)
	assert.NotNil(t, job)
	assert.False(t, f.svc.Running(OpScrape))
}

func TestService_ScrapeNotConfigured(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Scrape(context.Background())
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr)
	assert.ErrorAs(t, f.svc.ScrapeAsync(), &cerr)
}

func TestService_Enrich(t *testing.T) {
	f := newFixture(t)
	_, err := f.svc.Enrich(context.Background(), 5)
	var cerr *ConfigError
	assert.ErrorAs(t, err, &cerr, "no enricher configured")
	assert.ErrorAs(t, f.svc.EnrichAsync(5), &cerr)
	assert.False(t, f.svc.Running(OpEnrich))
}

func TestService_CheckLinks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/gone":
			w.WriteHeader(http.StatusGone)
		case "/missing":
			w.WriteHeader(http.StatusNotFound)
		case "/broken":
			w.WriteHeader(http.StatusBadGateway)
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	f := newFixture(t, func(d *Deps) { d.LinkOptions = fetch.DefaultOptions() })
	ctx := context.Background()
	for _, path := range []string{"ok", "gone", "missing", "broken"} {
		require.NoError(t, f.store.UpsertJob(ctx, &db.Job{
			ID:         path,
			Title:      "Barista",
			Company:    "Café Nord",
			Location:   "Stockholm",
			URL:        server.URL + "/" + path,
			Source:     db.SourceRSS,
			Priority:   db.PriorityStrategic,
			LinkStatus: db.LinkActive,
		}))
	}

	res, err := f.svc.CheckLinks(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Checked)
	assert.Equal(t, 2, res.Stale)

	for id, want := range map[string]string{"ok": db.LinkActive, "gone": db.LinkStale, "missing": db.LinkStale, "broken": db.LinkActive} {
		job, err := f.store.GetJob(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, job.LinkStatus, id)
	}
}

func TestService_Run(t *testing.T) {
	f := newFixture(t, scraperDeps([]ingestion.Ad{{ID: "100", Title: "Barista", WorkplaceName: "Café Nord", Workplace: "Stockholm"}}))

	var steps []string
	res, err := f.svc.Run(context.Background(), func(e ProgressEvent) {
		steps = append(steps, e.Step)
	})
	require.NoError(t, err)
	assert.Equal(t, []string{StepScrape, StepScrape, StepStats, StepNext}, steps)
	require.NotNil(t, res.Scrape)
	assert.Equal(t, 1, res.Scrape.Stored)
	assert.Equal(t, 1, res.Stats.TotalJobs)
	require.NotNil(t, res.Next)
	assert.Equal(t, "100", res.Next.ID)
}

func TestService_Run_ScrapeFailureContinues(t *testing.T) {
	f := newFixture(t)

	res, err := f.svc.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, res.Scrape)
	assert.NotNil(t, res.Stats)
	assert.Nil(t, res.Next)
}
