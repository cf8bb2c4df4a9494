package domain

// Thread is a conversation: a group of related messages treated as the unit
// of classification and mutation. The provider owns its lifetime; the
// pipeline only reads it and mutates labels and read/trash state.
type Thread struct {
	ID       string
	Subject  string
	Snippet  string
	Messages []Message // oldest first
	Labels   []string  // provider label IDs currently attached
}

// FirstMessage returns the oldest message in the thread, which is the
// authoritative context for classification, or nil for an empty thread.
func (t *Thread) FirstMessage() *Message {
	if len(t.Messages) == 0 {
		return nil
	}
	return &t.Messages[0]
}

func (t *Thread) HasLabel(labelID string) bool {
	for _, l := range t.Labels {
		if l == labelID {
			return true
		}
	}
	return false
}
