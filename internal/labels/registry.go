// Package labels resolves the fixed label taxonomy against the mailbox
// provider, creating missing labels on first reference.
package labels

import (
	"context"
	"log/slog"
	"strings"

	"github.com/arenoe-studio/gmailsense/internal/config"
	"github.com/arenoe-studio/gmailsense/internal/domain"
	"github.com/arenoe-studio/gmailsense/internal/provider"
)

// Registry performs idempotent get-or-create resolution of labels by name.
// Resolved labels are cached for the registry's lifetime (one run).
type Registry struct {
	store  provider.LabelStore
	logger *slog.Logger
	cache  map[string]*domain.Label
}

// NewRegistry creates a registry backed by the given label store.
func NewRegistry(store provider.LabelStore, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		store:  store,
		logger: logger,
		cache:  make(map[string]*domain.Label),
	}
}

// Resolve returns the label with the given name, creating it if absent.
// Blank names yield nil without contacting the provider. Provider failures
// are logged and yield nil too: label resolution is never fatal to a run,
// callers degrade by skipping the label.
func (r *Registry) Resolve(ctx context.Context, name string) *domain.Label {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	if label, ok := r.cache[name]; ok {
		return label
	}

	label, err := r.store.GetLabel(ctx, name)
	if err != nil {
		r.logger.Error("failed to look up label", "name", name, "error", err)
		return nil
	}
	if label == nil {
		label, err = r.store.CreateLabel(ctx, name)
		if err != nil {
			r.logger.Error("failed to create label", "name", name, "error", err)
			return nil
		}
		r.logger.Info("created label", "name", name)
	}

	r.cache[name] = label
	return label
}

// Set maps each label role to its resolved provider label for one run, plus
// the subcategory-to-sublabel-name taxonomies used at dispatch time. Any
// field may be nil when resolution failed; consumers skip nil labels.
type Set struct {
	Processed   *domain.Label
	Newsletter  *domain.Label
	Marketplace *domain.Label
	Priority    *domain.Label
	General     *domain.Label

	MarketplaceSublabels map[string]string
	PrioritySublabels    map[string]string
}

// InitializeAll resolves the five role labels and pre-creates every
// sublabel in both subcategory taxonomies. Re-running against a mailbox
// that already has all labels creates nothing new.
func (r *Registry) InitializeAll(ctx context.Context, cfg config.LabelConfig) *Set {
	r.logger.Debug("initializing labels")

	set := &Set{
		Processed:            r.Resolve(ctx, cfg.Processed),
		Newsletter:           r.Resolve(ctx, cfg.Newsletter),
		Marketplace:          r.Resolve(ctx, cfg.Marketplace),
		Priority:             r.Resolve(ctx, cfg.Priority),
		General:              r.Resolve(ctx, cfg.General),
		MarketplaceSublabels: cfg.MarketplaceSublabels,
		PrioritySublabels:    cfg.PrioritySublabels,
	}
	for _, name := range cfg.MarketplaceSublabels {
		r.Resolve(ctx, name)
	}
	for _, name := range cfg.PrioritySublabels {
		r.Resolve(ctx, name)
	}

	r.logger.Debug("labels ready")
	return set
}
