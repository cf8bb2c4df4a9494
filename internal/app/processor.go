// Package app orchestrates one classification run: select a bounded batch of
// unprocessed conversations oldest-first, classify each through the remote
// service, and dispatch the resulting mutation policy.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenoe-studio/gmailsense/internal/classifier"
	"github.com/arenoe-studio/gmailsense/internal/config"
	"github.com/arenoe-studio/gmailsense/internal/domain"
	"github.com/arenoe-studio/gmailsense/internal/labels"
	"github.com/arenoe-studio/gmailsense/internal/provider"
	"github.com/arenoe-studio/gmailsense/internal/retry"
)

// Gmail caps searches at 500 threads.
const searchCap = 500

// Classifier produces a classification for one conversation's context.
type Classifier interface {
	Classify(ctx context.Context, in classifier.Input) (*domain.Classification, error)
}

// Processor runs the batch pipeline for a single mailbox. One Processor
// value may run many times; each Run owns its own label set and statistics.
type Processor struct {
	cfg        *config.Config
	mailbox    provider.Mailbox
	classifier Classifier
	registry   *labels.Registry
	dispatcher *Dispatcher
	logger     *slog.Logger

	// sleep and now are injectable for deterministic tests.
	sleep func(time.Duration)
	now   func() time.Time
}

// NewProcessor wires the pipeline for the given mailbox and classifier.
func NewProcessor(cfg *config.Config, mailbox provider.Mailbox, cls Classifier, logger *slog.Logger) *Processor {
	if logger == nil {
		logger = slog.Default()
	}
	registry := labels.NewRegistry(mailbox, logger)
	return &Processor{
		cfg:        cfg,
		mailbox:    mailbox,
		classifier: cls,
		registry:   registry,
		dispatcher: NewDispatcher(mailbox, registry, cfg.Processing, logger),
		logger:     logger,
		sleep:      time.Sleep,
		now:        time.Now,
	}
}

// Run executes one full batch. Configuration failures abort before any
// mailbox mutation; per-item failures are isolated so one bad conversation
// never aborts the batch.
func (p *Processor) Run(ctx context.Context) (*RunStats, error) {
	start := p.now()

	if err := p.cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	set := p.registry.InitializeAll(ctx, p.cfg.Labels)

	// Gmail returns search results newest first and offers no sort
	// parameter, so over-fetch, reverse, and truncate to get the oldest
	// candidates first. Older backlog must not be starved by new mail.
	query := "-label:" + p.cfg.Labels.Processed
	candidates := min(2*p.cfg.Processing.BatchSize, searchCap)
	threads, err := p.mailbox.SearchThreads(ctx, query, int64(candidates))
	if err != nil {
		return nil, fmt.Errorf("failed to search for unprocessed threads: %w", err)
	}

	stats := &RunStats{}
	if len(threads) == 0 {
		p.logger.Info("no conversations to process")
		stats.Duration = p.now().Sub(start)
		return stats, nil
	}

	reverse(threads)
	batch := threads
	if len(batch) > p.cfg.Processing.BatchSize {
		batch = batch[:p.cfg.Processing.BatchSize]
	}
	p.logger.Info("processing batch", "found", len(threads), "batch", len(batch))

	for i := range batch {
		thread := &batch[i]
		stats.Total++

		// Re-check the marker directly on the thread; the search snapshot
		// may be stale by the time this item comes up.
		if set.Processed != nil && thread.HasLabel(set.Processed.ID) {
			p.logger.Info("skipping already processed thread",
				"item", fmt.Sprintf("%d/%d", i+1, len(batch)), "subject", thread.Subject)
			stats.Skipped++
			continue
		}

		p.logger.Info("processing thread",
			"item", fmt.Sprintf("%d/%d", i+1, len(batch)), "subject", thread.Subject)

		if err := p.processThread(ctx, thread, set); err != nil {
			stats.Error++
			p.logger.Error("failed to process thread", "subject", thread.Subject, "error", err)
			if p.cfg.Processing.DelayOnError {
				p.sleep(p.cfg.Processing.APIDelay())
			}
			continue
		}

		stats.Success++
		// Fixed delay between successfully processed items to respect the
		// remote service's rate limits.
		p.sleep(p.cfg.Processing.APIDelay())
	}

	stats.Duration = p.now().Sub(start)
	p.logger.Info("run complete",
		"success", stats.Success,
		"errors", stats.Error,
		"skipped", stats.Skipped,
		"duration", formatDuration(stats.Duration))
	return stats, nil
}

// processThread classifies one thread (with retries) and applies its policy.
func (p *Processor) processThread(ctx context.Context, thread *domain.Thread, set *labels.Set) error {
	first := thread.FirstMessage()
	if first == nil {
		return fmt.Errorf("thread %s has no messages", thread.ID)
	}

	in := classifier.Input{
		Subject: first.Subject,
		From:    first.From.String(),
		Date:    first.Date,
		Body:    truncate(first.Body, p.cfg.Processing.BodyLimit),
	}

	result, err := retry.Do(retry.Config{
		MaxAttempts:  p.cfg.Processing.RetryAttempts,
		InitialDelay: p.cfg.Processing.RetryInitialDelay(),
		Sleep:        p.sleep,
	}, func() (*domain.Classification, error) {
		return p.classifier.Classify(ctx, in)
	})
	if err != nil {
		return fmt.Errorf("classification failed: %w", err)
	}

	p.logger.Info("classified",
		"subject", thread.Subject,
		"category", result.Category,
		"subcategory", result.Subcategory,
		"confidence", result.Confidence,
		"reason", result.Reason)

	if err := p.dispatcher.Apply(ctx, thread, first, result, set); err != nil {
		return fmt.Errorf("failed to apply actions: %w", err)
	}
	return nil
}

// truncate limits s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func reverse(threads []domain.Thread) {
	for i, j := 0, len(threads)-1; i < j; i, j = i+1, j-1 {
		threads[i], threads[j] = threads[j], threads[i]
	}
}
