package main

import (
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/MTDzi/autonomous-knowledge-agent/internal/capability"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/config"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/engine"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/llm"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/orchestrator"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/store"
	"github.com/MTDzi/autonomous-knowledge-agent/internal/tags"
	"github.com/MTDzi/autonomous-knowledge-agent/pkg/models"
)

// runtime bundles the wired components behind a single Close.
type runtime struct {
	cfg    *config.Config
	db     *store.DB
	vocab  *tags.Cache
	engine *engine.Engine
}

// buildRuntime loads configuration and wires the database, vocabulary cache,
// LLM client, capabilities, and engine together.
func buildRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	db, err := store.Open(cfg.Store.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}

	vocab := tags.NewCache(db)
	if cfg.Vocabulary.OverridePath != "" {
		if err := vocab.WatchOverrides(cfg.Vocabulary.OverridePath); err != nil {
			db.Close()
			return nil, fmt.Errorf("loading vocabulary overrides: %w", err)
		}
	}

	client, err := llm.NewClient(llm.ClientConfig{
		Model:         anthropic.Model(cfg.Anthropic.Model),
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		vocab.Stop()
		db.Close()
		return nil, fmt.Errorf("creating Anthropic client: %w", err)
	}

	router := orchestrator.NewRouter(orchestrator.RouterConfig{
		ClassifiedThreshold:        cfg.Thresholds.Classified,
		NeedsTicketsThreshold:      cfg.Thresholds.NeedsTickets,
		NeedsReservationsThreshold: cfg.Thresholds.NeedsReservations,
		ResolvedThreshold:          cfg.Thresholds.Resolved,
	})

	eng := engine.New(router, db, db)
	eng.RegisterStep(models.StepClassifier, capability.NewClassifier(client, vocab))
	eng.RegisterStep(models.StepTicketFetcher, capability.NewTicketFetcher(db))
	eng.RegisterStep(models.StepReservationFetcher, capability.NewReservationFetcher(db))
	eng.RegisterStep(models.StepArticleFetcher, capability.NewArticleFetcher(db))
	eng.RegisterStep(models.StepResolver, capability.NewResolver(client))
	eng.RegisterStep(models.StepEscalator, capability.NewEscalator(client))
	eng.RegisterStep(models.StepMemoryUpdater, capability.NewMemoryUpdater(client))

	return &runtime{cfg: cfg, db: db, vocab: vocab, engine: eng}, nil
}

// Close releases the vocabulary watcher and the database.
func (r *runtime) Close() {
	r.vocab.Stop()
	r.db.Close()
}
