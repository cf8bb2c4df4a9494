package provider

import (
	"context"
	"errors"

	"github.com/arenoe-studio/gmailsense/internal/domain"
)

// ErrLabelNotFound is returned by CountThreads when the label does not exist.
var ErrLabelNotFound = errors.New("label not found")

// MailboxSearch finds conversation threads matching a provider-native query.
// Results come back in the provider's native order (newest first for Gmail)
// capped at max; the provider offers no server-side reordering.
type MailboxSearch interface {
	SearchThreads(ctx context.Context, query string, max int64) ([]domain.Thread, error)
}

// ThreadMutator mutates label, read and trash state on a single thread.
// All mutations are idempotent on the provider side: re-adding an attached
// label or re-trashing a trashed thread is a no-op.
type ThreadMutator interface {
	AddThreadLabel(ctx context.Context, threadID, labelID string) error
	MarkThreadRead(ctx context.Context, threadID string, read bool) error
	TrashThread(ctx context.Context, threadID string) error
}

// LabelStore resolves, creates and counts user labels by exact name.
type LabelStore interface {
	// GetLabel returns the label with the given name, or nil when absent.
	GetLabel(ctx context.Context, name string) (*domain.Label, error)
	CreateLabel(ctx context.Context, name string) (*domain.Label, error)
	CountThreads(ctx context.Context, labelName string) (int, error)
}

// Mailbox is the full capability surface the pipeline needs from a provider.
type Mailbox interface {
	MailboxSearch
	ThreadMutator
	LabelStore
}
