package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/tbourn/ai-tracker/internal/acquire"
	"github.com/tbourn/ai-tracker/internal/catalog"
	"github.com/tbourn/ai-tracker/internal/config"
	"github.com/tbourn/ai-tracker/internal/domain"
	"github.com/tbourn/ai-tracker/internal/http/handlers"
	"github.com/tbourn/ai-tracker/internal/providers"
	"github.com/tbourn/ai-tracker/internal/repo"
	"github.com/tbourn/ai-tracker/internal/services"
	"github.com/tbourn/ai-tracker/internal/translate"
)

// app is the wired object graph shared by both commands.
type app struct {
	mode     string
	catalog  *catalog.Catalog
	feed     *services.FeedService
	archive  *services.ArchiveService
	fetch    *services.FetchJob
	handlers *handlers.Handlers
	db       *gorm.DB
}

func build(cfg config.Config) (*app, error) {
	cat, err := catalog.Load(cfg.Storage.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("catalog: %w", err)
	}

	store, db, err := openStore(cfg.Storage)
	if err != nil {
		return nil, err
	}
	snapshots := repo.NewSnapshotRepo(store)
	archive := services.NewArchiveService(repo.NewArchiveRepo(store), cat)

	ac, pc := cfg.Acquire, cfg.Providers
	scrape := providers.NewSyndication(providers.SyndicationConfig{
		BaseURL:     pc.SyndicationBaseURL,
		UserAgent:   pc.SyndicationUserAgent,
		Timeout:     ac.ProviderTimeout,
		Window:      ac.Window(),
		MaxAttempts: ac.RateLimitRetries,
		MaxWait:     ac.RateLimitMaxWait,
	})
	paid := providers.NewRapidAPI(providers.RapidAPIConfig{
		Key:     pc.RapidAPIKey,
		Host:    pc.RapidAPIHost,
		Timeout: ac.ProviderTimeout,
		Window:  ac.Window(),
	})
	official := providers.NewXAPI(providers.XAPIConfig{
		BearerToken: pc.XBearerToken,
		BaseURL:     pc.XAPIBaseURL,
		Timeout:     ac.ProviderTimeout,
		Window:      ac.Window(),
		BatchDelay:  ac.BatchDelay,
	})

	var llm translate.Completer
	if pc.DeepSeekAPIKey != "" {
		llm = translate.NewDeepSeek(translate.DeepSeekConfig{
			APIKey:  pc.DeepSeekAPIKey,
			URL:     pc.DeepSeekAPIURL,
			Model:   pc.DeepSeekModel,
			Timeout: ac.TranslateTimeout,
		})
	}
	tr := translate.New(llm, translate.Options{
		Target:      ac.TranslateTarget,
		Parallel:    ac.TranslateParallel,
		GroupDelay:  200 * time.Millisecond,
		CallTimeout: ac.TranslateTimeout,
	})

	orch := acquire.New(cat, []providers.Provider{scrape, paid}, official, tr, acquire.Options{
		MaxPerTool:  ac.MaxPostsPerTool,
		Concurrency: ac.Concurrency,
		BatchDelay:  ac.BatchDelay,
		// a scrape call may sit through every 429 reset window it is allowed
		CallTimeout: ac.ProviderTimeout*time.Duration(ac.RateLimitRetries) + ac.RateLimitMaxWait,
		MaxCooldown: ac.RateLimitMaxWait,
	})

	// A typed nil would defeat the hosted check inside FeedService.
	var live services.Acquirer
	if !ac.Hosted {
		live = orch
	}
	feed := services.NewFeedService(services.FeedDeps{
		Acquirer:   live,
		Snapshots:  snapshots,
		Translator: tr,
		PaidAPI:    paid,
		Catalog:    cat,
	}, services.FeedOptions{
		TTL:            ac.CacheTTL,
		Window:         ac.Window(),
		MaxPerTool:     ac.MaxPostsPerTool,
		Hosted:         ac.Hosted,
		UsePlaceholder: ac.FallbackMode == config.FallbackPlaceholder,
		AcquireTimeout: ac.Timeout,
		PersistLive:    true,
	})

	// The scheduled job joins the feed's flight so a cache miss and a cron
	// run never acquire at the same time. Hosted builds only run the job
	// from `tracker fetch`, where nothing else acquires.
	jobAcq := services.Acquirer(orch)
	if !ac.Hosted {
		jobAcq = feed.SharedAcquirer()
	}

	mode := modeFor(cfg)
	a := &app{
		mode:    mode,
		catalog: cat,
		feed:    feed,
		archive: archive,
		fetch:   services.NewFetchJob(jobAcq, snapshots, archive, ac.MaxPostsPerTool),
		handlers: handlers.New(cat, feed, archive, handlers.Options{
			Hosted: ac.Hosted,
			Mode:   mode,
		}),
		db: db,
	}
	log.Info().
		Str("mode", mode).
		Bool("scrape", scrape.Configured()).
		Bool("paid_api", paid.Configured()).
		Bool("official_api", official.Configured()).
		Bool("translate", tr.Configured()).
		Str("translate_target", tr.Target().String()).
		Msg("providers wired")
	return a, nil
}

// Close releases the SQL pool when the sqlite driver is in use.
func (a *app) Close() {
	if a.db == nil {
		return
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

func openStore(sc config.StorageConfig) (repo.DocumentStore, *gorm.DB, error) {
	if sc.Driver != config.StoreSQLite {
		return repo.NewFileDocumentStore(map[string]string{
			domain.DocSnapshot: sc.SnapshotPath,
			domain.DocArchive:  sc.ArchivePath,
		}), nil, nil
	}

	if err := os.MkdirAll(filepath.Dir(sc.DBPath), 0o755); err != nil {
		return nil, nil, fmt.Errorf("db dir: %w", err)
	}
	db, err := repo.OpenSQLite(sc.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := repo.EnableTracing(db); err != nil {
		return nil, nil, fmt.Errorf("gorm tracing: %w", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		return nil, nil, fmt.Errorf("migrate: %w", err)
	}
	return repo.NewSQLDocumentStore(db), db, nil
}

// modeFor names the deployment for health and stats.
func modeFor(cfg config.Config) string {
	switch {
	case cfg.Acquire.Hosted:
		return "SNAPSHOT"
	case cfg.Providers.RapidAPIKey != "":
		return "RAPIDAPI"
	default:
		return "SCRAPE"
	}
}
