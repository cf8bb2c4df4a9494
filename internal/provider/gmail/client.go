package gmail

import (
	"context"
	"fmt"

	"github.com/arenoe-studio/gmailsense/internal/domain"
	"github.com/arenoe-studio/gmailsense/internal/provider"
	"github.com/arenoe-studio/gmailsense/internal/store"
	"golang.org/x/oauth2"
	gmailapi "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const userID = "me"

// Provider implements the provider.Mailbox interface for Gmail.
type Provider struct {
	tokenStore *store.KeyringTokenStore
	accountID  string
	service    *gmailapi.Service
	token      *oauth2.Token
}

// New creates a new Gmail provider for the given account.
func New(accountID string, tokenStore *store.KeyringTokenStore) *Provider {
	return &Provider{
		accountID:  accountID,
		tokenStore: tokenStore,
	}
}

// Authenticate runs the OAuth2 flow, saves the token, and initializes the
// Gmail service.
func (p *Provider) Authenticate(ctx context.Context) error {
	token, err := authenticate(ctx)
	if err != nil {
		return fmt.Errorf("failed to authenticate gmail: %w", err)
	}

	if err := p.tokenStore.SaveToken(p.accountID, token); err != nil {
		return fmt.Errorf("failed to save gmail token: %w", err)
	}

	p.token = token
	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	p.service = srv
	return nil
}

// initService loads the token from the keyring and creates the Gmail service.
func (p *Provider) initService(ctx context.Context) error {
	token, err := p.tokenStore.LoadToken(p.accountID)
	if err != nil {
		return fmt.Errorf("failed to load gmail token: %w", err)
	}

	p.token = token
	srv, err := gmailapi.NewService(ctx, option.WithTokenSource(oauthConfig.TokenSource(ctx, token)))
	if err != nil {
		return fmt.Errorf("failed to create gmail service: %w", err)
	}
	p.service = srv
	return nil
}

// ensureService lazily initializes the Gmail service if not already done.
func (p *Provider) ensureService(ctx context.Context) error {
	if p.service != nil {
		return nil
	}
	return p.initService(ctx)
}

// SearchThreads returns up to max threads matching the Gmail query, in
// Gmail's native newest-first order. Each thread is fetched in full so the
// caller sees its messages and current labels.
func (p *Provider) SearchThreads(ctx context.Context, query string, max int64) ([]domain.Thread, error) {
	if err := p.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	call := p.service.Users.Threads.List(userID).Q(query)
	if max > 0 {
		call = call.MaxResults(max)
	}
	resp, err := call.Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to search gmail threads: %w", err)
	}

	threads := make([]domain.Thread, 0, len(resp.Threads))
	for _, t := range resp.Threads {
		full, err := p.service.Users.Threads.Get(userID, t.Id).
			Format("full").Context(ctx).Do()
		if err != nil {
			return nil, fmt.Errorf("failed to get gmail thread %s: %w", t.Id, err)
		}
		threads = append(threads, *mapThread(full))
	}
	return threads, nil
}

// AddThreadLabel attaches a label to every message in the thread.
// Re-adding an already attached label is a no-op on the Gmail side.
func (p *Provider) AddThreadLabel(ctx context.Context, threadID, labelID string) error {
	if err := p.ensureService(ctx); err != nil {
		return fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	req := &gmailapi.ModifyThreadRequest{AddLabelIds: []string{labelID}}
	_, err := p.service.Users.Threads.Modify(userID, threadID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to add label to thread %s: %w", threadID, err)
	}
	return nil
}

// MarkThreadRead marks a thread read or unread by modifying the UNREAD label.
func (p *Provider) MarkThreadRead(ctx context.Context, threadID string, read bool) error {
	if err := p.ensureService(ctx); err != nil {
		return fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	req := &gmailapi.ModifyThreadRequest{}
	if read {
		req.RemoveLabelIds = []string{"UNREAD"}
	} else {
		req.AddLabelIds = []string{"UNREAD"}
	}
	_, err := p.service.Users.Threads.Modify(userID, threadID, req).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to set read state on thread %s: %w", threadID, err)
	}
	return nil
}

// TrashThread moves a thread to trash. Trashing an already trashed thread
// is a no-op.
func (p *Provider) TrashThread(ctx context.Context, threadID string) error {
	if err := p.ensureService(ctx); err != nil {
		return fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	_, err := p.service.Users.Threads.Trash(userID, threadID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("failed to trash gmail thread %s: %w", threadID, err)
	}
	return nil
}

// GetLabel looks up a user label by exact name, returning nil when absent.
// Gmail has no get-by-name endpoint, so this lists and scans.
func (p *Provider) GetLabel(ctx context.Context, name string) (*domain.Label, error) {
	if err := p.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	resp, err := p.service.Users.Labels.List(userID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list gmail labels: %w", err)
	}
	for _, l := range resp.Labels {
		if l.Name == name {
			return &domain.Label{ID: l.Id, Name: l.Name}, nil
		}
	}
	return nil, nil
}

// CreateLabel creates a user label with the given name.
func (p *Provider) CreateLabel(ctx context.Context, name string) (*domain.Label, error) {
	if err := p.ensureService(ctx); err != nil {
		return nil, fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	created, err := p.service.Users.Labels.Create(userID, &gmailapi.Label{
		Name:                  name,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail label %q: %w", name, err)
	}
	return &domain.Label{ID: created.Id, Name: created.Name}, nil
}

// CountThreads returns the number of threads carrying the named label, or
// provider.ErrLabelNotFound when the label does not exist yet.
func (p *Provider) CountThreads(ctx context.Context, labelName string) (int, error) {
	label, err := p.GetLabel(ctx, labelName)
	if err != nil {
		return 0, err
	}
	if label == nil {
		return 0, provider.ErrLabelNotFound
	}

	detail, err := p.service.Users.Labels.Get(userID, label.ID).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("failed to get gmail label %q: %w", labelName, err)
	}
	return int(detail.ThreadsTotal), nil
}

// GetProfile returns the authenticated user's email address.
func (p *Provider) GetProfile(ctx context.Context) (string, error) {
	if err := p.ensureService(ctx); err != nil {
		return "", fmt.Errorf("failed to ensure gmail service: %w", err)
	}

	profile, err := p.service.Users.GetProfile(userID).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get gmail profile: %w", err)
	}
	return profile.EmailAddress, nil
}

// Compile-time interface compliance check.
var _ provider.Mailbox = (*Provider)(nil)
