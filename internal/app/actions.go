package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/arenoe-studio/gmailsense/internal/config"
	"github.com/arenoe-studio/gmailsense/internal/domain"
	"github.com/arenoe-studio/gmailsense/internal/labels"
	"github.com/arenoe-studio/gmailsense/internal/provider"
)

// Dispatcher applies the per-category mutation policy to a classified
// thread: role label, read state, and trash decision.
type Dispatcher struct {
	mailbox  provider.ThreadMutator
	registry *labels.Registry
	cfg      config.ProcessingConfig
	logger   *slog.Logger
	now      func() time.Time
}

// NewDispatcher creates a dispatcher that mutates threads through the given
// mailbox and resolves sublabels through the registry.
func NewDispatcher(mailbox provider.ThreadMutator, registry *labels.Registry, cfg config.ProcessingConfig, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{
		mailbox:  mailbox,
		registry: registry,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

// Apply executes the category policy for the classification and then
// attaches the processed marker. Unrecognized categories fall back to the
// GENERAL policy. Policy failures are returned so the caller can count the
// item as errored; a failure attaching the marker itself is logged and
// swallowed, leaving the thread eligible for idempotent reprocessing.
func (d *Dispatcher) Apply(ctx context.Context, thread *domain.Thread, first *domain.Message, c *domain.Classification, set *labels.Set) error {
	var err error
	switch c.Category {
	case domain.CategoryNewsletter:
		err = d.handleNewsletter(ctx, thread, first, set.Newsletter)
	case domain.CategoryOTPVerify:
		err = d.handleOTP(ctx, thread)
	case domain.CategoryMarketplace:
		err = d.handleMarketplace(ctx, thread, c.Subcategory, set)
	case domain.CategoryPriority:
		err = d.handlePriority(ctx, thread, c.Subcategory, set)
	case domain.CategoryGeneral:
		err = d.handleGeneral(ctx, thread, set.General)
	default:
		d.logger.Warn("unrecognized category, applying general policy",
			"subject", thread.Subject, "category", c.Category)
		err = d.handleGeneral(ctx, thread, set.General)
	}
	if err != nil {
		return err
	}

	// The processed marker is the sole idempotency signal; attach it even
	// for trashed threads so re-runs skip them once restored.
	if set.Processed != nil {
		if markErr := d.mailbox.AddThreadLabel(ctx, thread.ID, set.Processed.ID); markErr != nil {
			d.logger.Warn("failed to attach processed label",
				"subject", thread.Subject, "error", markErr)
		}
	}
	return nil
}

// addLabel attaches a label, skipping silently when it is nil (resolution
// failed or was skipped earlier).
func (d *Dispatcher) addLabel(ctx context.Context, thread *domain.Thread, label *domain.Label) error {
	if label == nil {
		return nil
	}
	return d.mailbox.AddThreadLabel(ctx, thread.ID, label.ID)
}

// handleNewsletter labels and marks read; newsletters older than the
// configured threshold go to trash.
func (d *Dispatcher) handleNewsletter(ctx context.Context, thread *domain.Thread, first *domain.Message, label *domain.Label) error {
	if err := d.addLabel(ctx, thread, label); err != nil {
		return err
	}
	if err := d.mailbox.MarkThreadRead(ctx, thread.ID, true); err != nil {
		return err
	}

	age := d.now().Sub(first.Date)
	threshold := time.Duration(d.cfg.NewsletterAgeDays) * 24 * time.Hour
	if age > threshold {
		if err := d.mailbox.TrashThread(ctx, thread.ID); err != nil {
			return err
		}
		d.logger.Info("stale newsletter trashed",
			"subject", thread.Subject, "age_days", fmt.Sprintf("%.1f", age.Hours()/24))
		return nil
	}
	d.logger.Info("newsletter labeled and marked read", "subject", thread.Subject)
	return nil
}

// handleOTP trashes immediately: verification codes and links are
// time-sensitive and assumed expired by the time the batch runs.
func (d *Dispatcher) handleOTP(ctx context.Context, thread *domain.Thread) error {
	if err := d.mailbox.TrashThread(ctx, thread.ID); err != nil {
		return err
	}
	d.logger.Info("OTP/verification thread trashed", "subject", thread.Subject)
	return nil
}

// handleMarketplace labels, marks read, and attaches a sublabel when the
// subcategory is in the marketplace taxonomy. Never deletes.
func (d *Dispatcher) handleMarketplace(ctx context.Context, thread *domain.Thread, subcategory string, set *labels.Set) error {
	if err := d.addLabel(ctx, thread, set.Marketplace); err != nil {
		return err
	}
	if err := d.mailbox.MarkThreadRead(ctx, thread.ID, true); err != nil {
		return err
	}
	if err := d.addSublabel(ctx, thread, subcategory, set.MarketplaceSublabels); err != nil {
		return err
	}
	d.logger.Info("marketplace thread labeled and marked read",
		"subject", thread.Subject, "subcategory", subcategory)
	return nil
}

// handlePriority labels and marks UNREAD, overriding any prior read state,
// so the thread stays visible until the user handles it. Never deletes.
func (d *Dispatcher) handlePriority(ctx context.Context, thread *domain.Thread, subcategory string, set *labels.Set) error {
	if err := d.addLabel(ctx, thread, set.Priority); err != nil {
		return err
	}
	if err := d.mailbox.MarkThreadRead(ctx, thread.ID, false); err != nil {
		return err
	}
	if err := d.addSublabel(ctx, thread, subcategory, set.PrioritySublabels); err != nil {
		return err
	}
	d.logger.Info("priority thread labeled and kept unread",
		"subject", thread.Subject, "subcategory", subcategory)
	return nil
}

// handleGeneral labels and marks read. Never deletes.
func (d *Dispatcher) handleGeneral(ctx context.Context, thread *domain.Thread, label *domain.Label) error {
	if err := d.addLabel(ctx, thread, label); err != nil {
		return err
	}
	if err := d.mailbox.MarkThreadRead(ctx, thread.ID, true); err != nil {
		return err
	}
	d.logger.Info("general thread labeled and marked read", "subject", thread.Subject)
	return nil
}

// addSublabel resolves and attaches the sublabel for a subcategory.
// Subcategories outside the taxonomy are ignored; a failed sublabel
// resolution degrades to skipping the label.
func (d *Dispatcher) addSublabel(ctx context.Context, thread *domain.Thread, subcategory string, taxonomy map[string]string) error {
	if subcategory == "" {
		return nil
	}
	name, ok := taxonomy[subcategory]
	if !ok {
		return nil
	}
	return d.addLabel(ctx, thread, d.registry.Resolve(ctx, name))
}
