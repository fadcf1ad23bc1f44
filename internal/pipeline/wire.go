package pipeline

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/job-autopilot/internal/config"
	"github.com/jonathan/job-autopilot/internal/content"
	"github.com/jonathan/job-autopilot/internal/cv"
	"github.com/jonathan/job-autopilot/internal/db"
	"github.com/jonathan/job-autopilot/internal/fetch"
	"github.com/jonathan/job-autopilot/internal/ingestion"
	"github.com/jonathan/job-autopilot/internal/llm"
	"github.com/jonathan/job-autopilot/internal/mail"
	"github.com/jonathan/job-autopilot/internal/notify"
	"github.com/jonathan/job-autopilot/internal/research"
	"github.com/jonathan/job-autopilot/internal/selection"
	"github.com/jonathan/job-autopilot/internal/tracker"
)

// Build assembles a Service from configuration. Optional integrations whose
// credentials are missing are left out with a log line; only a broken
// required setting is an error. The returned function releases clients.
func Build(ctx context.Context, cfg *config.Config, profile *config.Profile, store *db.DB) (*Service, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	var client llm.Client
	if key := cfg.LLMAPIKey(); key != "" {
		llmCfg, err := llm.ConfigFor(cfg.LLMProvider)
		if err != nil {
			return nil, cleanup, err
		}
		c, err := llm.NewClient(ctx, llmCfg, key)
		if err != nil {
			log.Printf("[setup] LLM disabled, using templates: %v", err)
		} else {
			client = c
			closers = append(closers, func() { _ = c.Close() })
		}
	} else {
		log.Printf("[setup] no %s API key, using templates", cfg.LLMProvider)
	}
	writer := content.NewGenerator(client, profile)

	var searcher research.Searcher
	if cfg.SearchEnabled() {
		ws, err := research.NewWebSearch(ctx, cfg.SearchAPIKey, cfg.SearchEngineID)
		if err != nil {
			log.Printf("[setup] web search disabled: %v", err)
		} else {
			searcher = ws
		}
	}
	finder := research.NewFinder(searcher, research.NewPageFetcher(fetch.DefaultOptions(), cfg.UseBrowser), client)
	var contacts selection.ContactFinder
	if finder.Enabled() {
		contacts = finder
	}
	enricher := selection.NewEnricher(store, contacts, writer)

	var feeds ingestion.FeedLister
	if len(cfg.FeedURLs) > 0 {
		feeds = ingestion.NewFeedSource(nil)
	}
	scraper := ingestion.NewScraper(store, ingestion.NewPlatsbanken(nil), feeds)

	cvs, err := buildCVLibrary(ctx, cfg, profile)
	if err != nil {
		return nil, cleanup, err
	}

	deps := Deps{
		Store:    store,
		Profile:  profile,
		Writer:   writer,
		Enricher: enricher,
		Scraper:  scraper,
		ScrapeOptions: ingestion.Options{
			Keywords:  profile.Keywords,
			Locations: profile.Locations,
			FeedURLs:  cfg.FeedURLs,
			Workers:   cfg.ScrapeWorkers,
		},
		CVs:         cvs,
		From:        cfg.GmailUser,
		LinkOptions: fetch.DefaultOptions(),
		LinkWorkers: cfg.ScrapeWorkers,
	}
	if err := cfg.RequireMailbox(); err != nil {
		deps.MailboxErr = err
	} else {
		deps.Drafts = mail.NewIMAPDrafts(mail.IMAPConfig{
			Addr:     cfg.IMAPAddr,
			User:     cfg.GmailUser,
			Password: cfg.GmailAppPassword,
			Mailbox:  cfg.DraftsMailbox,
		})
	}

	hub := notify.NewHub()
	if cfg.TelegramEnabled() {
		tg, err := notify.NewTelegram(cfg.TelegramToken, cfg.TelegramChatID)
		if err != nil {
			log.Printf("[setup] telegram disabled: %v", err)
		} else {
			hub.Add(tg)
		}
	}
	if cfg.RabbitMQURL != "" {
		pub, err := notify.NewPublisher(cfg.RabbitMQURL, notify.DefaultExchange)
		if err != nil {
			log.Printf("[setup] event publishing disabled: %v", err)
		} else {
			hub.Add(pub)
			closers = append(closers, func() { _ = pub.Close() })
		}
	}
	if cfg.NotionEnabled() {
		hub.Add(tracker.NewNotion(cfg.NotionToken, cfg.NotionDatabaseID, store))
	}
	deps.Hub = hub

	return NewService(deps), cleanup, nil
}

func buildCVLibrary(ctx context.Context, cfg *config.Config, profile *config.Profile) (*cv.Library, error) {
	if !cfg.UsesBucket() {
		return cv.NewLibrary(cv.NewDir(cfg.CVDir), profile.CVFiles), nil
	}
	if err := cfg.RequireBucket(); err != nil {
		return nil, err
	}
	bucket, err := cv.NewBucket(ctx, cv.BucketConfig{
		Bucket:    cfg.CVBucket,
		Endpoint:  cfg.CVEndpoint,
		Region:    cfg.CVRegion,
		AccessKey: cfg.CVAccessKey,
		SecretKey: cfg.CVSecretKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open cv bucket: %w", err)
	}
	return cv.NewLibrary(bucket, profile.CVFiles), nil
}
