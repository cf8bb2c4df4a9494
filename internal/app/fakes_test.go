package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/arenoe-studio/gmailsense/internal/classifier"
	"github.com/arenoe-studio/gmailsense/internal/config"
	"github.com/arenoe-studio/gmailsense/internal/domain"
)

// threadState is one conversation's provider-side state in the fake mailbox.
type threadState struct {
	thread  domain.Thread
	read    bool
	trashed bool
}

// fakeMailbox is an in-memory provider.Mailbox. Threads are held in the
// provider's native newest-first order.
type fakeMailbox struct {
	labelsByName map[string]*domain.Label
	nextLabelID  int
	threads      []*threadState

	// per-label-ID error injected into AddThreadLabel.
	addLabelErr map[string]error
	markReadErr error
	trashErr    error

	// staleSearch makes SearchThreads ignore the label-exclusion query,
	// simulating a snapshot taken before a concurrent labeling.
	staleSearch bool
}

func newFakeMailbox() *fakeMailbox {
	return &fakeMailbox{
		labelsByName: make(map[string]*domain.Label),
		addLabelErr:  make(map[string]error),
	}
}

// addThread registers a thread, newest first like Gmail search results.
func (m *fakeMailbox) addThread(t domain.Thread) {
	m.threads = append(m.threads, &threadState{thread: t, read: false})
}

func (m *fakeMailbox) find(threadID string) *threadState {
	for _, ts := range m.threads {
		if ts.thread.ID == threadID {
			return ts
		}
	}
	return nil
}

func (m *fakeMailbox) SearchThreads(ctx context.Context, query string, max int64) ([]domain.Thread, error) {
	// The pipeline only issues label-exclusion queries.
	name := strings.TrimPrefix(query, "-label:")
	excluded := m.labelsByName[name]
	if m.staleSearch {
		excluded = nil
	}

	var out []domain.Thread
	for _, ts := range m.threads {
		if ts.trashed {
			continue
		}
		if excluded != nil && ts.thread.HasLabel(excluded.ID) {
			continue
		}
		out = append(out, ts.thread)
		if max > 0 && int64(len(out)) == max {
			break
		}
	}
	return out, nil
}

func (m *fakeMailbox) AddThreadLabel(ctx context.Context, threadID, labelID string) error {
	if err := m.addLabelErr[labelID]; err != nil {
		return err
	}
	ts := m.find(threadID)
	if ts == nil {
		return fmt.Errorf("no such thread %s", threadID)
	}
	if !ts.thread.HasLabel(labelID) {
		ts.thread.Labels = append(ts.thread.Labels, labelID)
	}
	return nil
}

func (m *fakeMailbox) MarkThreadRead(ctx context.Context, threadID string, read bool) error {
	if m.markReadErr != nil {
		return m.markReadErr
	}
	ts := m.find(threadID)
	if ts == nil {
		return fmt.Errorf("no such thread %s", threadID)
	}
	ts.read = read
	return nil
}

func (m *fakeMailbox) TrashThread(ctx context.Context, threadID string) error {
	if m.trashErr != nil {
		return m.trashErr
	}
	ts := m.find(threadID)
	if ts == nil {
		return fmt.Errorf("no such thread %s", threadID)
	}
	ts.trashed = true
	return nil
}

func (m *fakeMailbox) GetLabel(ctx context.Context, name string) (*domain.Label, error) {
	return m.labelsByName[name], nil
}

func (m *fakeMailbox) CreateLabel(ctx context.Context, name string) (*domain.Label, error) {
	m.nextLabelID++
	label := &domain.Label{ID: fmt.Sprintf("lbl-%d", m.nextLabelID), Name: name}
	m.labelsByName[name] = label
	return label, nil
}

func (m *fakeMailbox) CountThreads(ctx context.Context, labelName string) (int, error) {
	label := m.labelsByName[labelName]
	if label == nil {
		return 0, nil
	}
	count := 0
	for _, ts := range m.threads {
		if ts.thread.HasLabel(label.ID) {
			count++
		}
	}
	return count, nil
}

// hasLabelNamed reports whether the thread carries the label with that name.
func (m *fakeMailbox) hasLabelNamed(threadID, labelName string) bool {
	label := m.labelsByName[labelName]
	ts := m.find(threadID)
	if label == nil || ts == nil {
		return false
	}
	return ts.thread.HasLabel(label.ID)
}

// fakeClassifier returns canned classifications by subject, optionally
// failing a number of times per subject before succeeding.
type fakeClassifier struct {
	results   map[string]*domain.Classification
	failures  map[string]int
	callOrder []string
}

func newFakeClassifier() *fakeClassifier {
	return &fakeClassifier{
		results:  make(map[string]*domain.Classification),
		failures: make(map[string]int),
	}
}

func (c *fakeClassifier) Classify(ctx context.Context, in classifier.Input) (*domain.Classification, error) {
	c.callOrder = append(c.callOrder, in.Subject)
	if c.failures[in.Subject] > 0 {
		c.failures[in.Subject]--
		return nil, &classifier.RemoteError{StatusCode: 503, Body: "unavailable"}
	}
	if result, ok := c.results[in.Subject]; ok {
		return result, nil
	}
	return &domain.Classification{Category: domain.CategoryGeneral, Confidence: 0.5, Reason: "default"}, nil
}

func testConfig() *config.Config {
	cfg, _ := config.Load("")
	cfg.Processing.BatchSize = 10
	cfg.Processing.APIDelayMS = 500
	cfg.Processing.RetryAttempts = 3
	cfg.Processing.RetryInitialDelayMS = 1000
	return cfg
}

// newTestProcessor builds a processor with instant, recorded sleeps and a
// fixed clock.
func newTestProcessor(cfg *config.Config, mailbox *fakeMailbox, cls Classifier, now time.Time) (*Processor, *[]time.Duration) {
	p := NewProcessor(cfg, mailbox, cls, nil)
	slept := &[]time.Duration{}
	p.sleep = func(d time.Duration) { *slept = append(*slept, d) }
	p.now = func() time.Time { return now }
	p.dispatcher.now = p.now
	return p, slept
}

func mkThread(id, subject string, date time.Time) domain.Thread {
	return domain.Thread{
		ID:      id,
		Subject: subject,
		Messages: []domain.Message{
			{
				ID:      id + "-m1",
				From:    domain.Address{Name: "Sender", Email: "sender@example.com"},
				Subject: subject,
				Body:    "body of " + subject,
				Date:    date,
			},
		},
	}
}
