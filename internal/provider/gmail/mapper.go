package gmail

import (
	"encoding/base64"
	"net/mail"
	"strings"
	"time"

	"github.com/arenoe-studio/gmailsense/internal/domain"
	gmailapi "google.golang.org/api/gmail/v1"
)

// mapThread converts a full Gmail API Thread into a domain Thread. Gmail
// returns thread messages oldest first, which is the order the pipeline
// relies on. The thread's label set is the union of its messages' labels.
func mapThread(t *gmailapi.Thread) *domain.Thread {
	messages := make([]domain.Message, 0, len(t.Messages))
	for _, m := range t.Messages {
		messages = append(messages, *mapMessage(m))
	}

	thread := &domain.Thread{
		ID:       t.Id,
		Snippet:  t.Snippet,
		Messages: messages,
	}
	if len(messages) > 0 {
		thread.Subject = messages[0].Subject
	}

	labelSet := make(map[string]struct{})
	for _, m := range t.Messages {
		for _, l := range m.LabelIds {
			labelSet[l] = struct{}{}
		}
	}
	labels := make([]string, 0, len(labelSet))
	for l := range labelSet {
		labels = append(labels, l)
	}
	thread.Labels = labels

	return thread
}

// mapMessage converts a Gmail API Message to a domain Message, keeping only
// the fields classification consumes.
func mapMessage(msg *gmailapi.Message) *domain.Message {
	var headers []*gmailapi.MessagePartHeader
	if msg.Payload != nil {
		headers = msg.Payload.Headers
	}

	return &domain.Message{
		ID:      msg.Id,
		From:    parseAddress(findHeader(headers, "From")),
		Subject: findHeader(headers, "Subject"),
		Body:    extractPlainBody(msg.Payload),
		Date:    parseDate(findHeader(headers, "Date")),
	}
}

// findHeader performs a case-insensitive lookup for a header value.
func findHeader(headers []*gmailapi.MessagePartHeader, name string) string {
	lower := strings.ToLower(name)
	for _, h := range headers {
		if strings.ToLower(h.Name) == lower {
			return h.Value
		}
	}
	return ""
}

// parseAddress parses an RFC 5322 address string into a domain Address.
// Falls back to treating the entire string as a bare email if parsing fails.
func parseAddress(s string) domain.Address {
	s = strings.TrimSpace(s)
	if s == "" {
		return domain.Address{}
	}

	addr, err := mail.ParseAddress(s)
	if err != nil {
		return domain.Address{Email: s}
	}
	return domain.Address{
		Name:  addr.Name,
		Email: addr.Address,
	}
}

// parseDate tries multiple date formats commonly used in email headers.
func parseDate(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC1123Z,
		time.RFC1123,
		time.RFC822Z,
		time.RFC822,
		"Mon, 2 Jan 2006 15:04:05 -0700",
		"Mon, 2 Jan 2006 15:04:05 MST",
		"2 Jan 2006 15:04:05 -0700",
		"2006-01-02T15:04:05Z07:00",
		"Mon, 02 Jan 2006 15:04:05 -0700 (MST)",
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// extractPlainBody recursively extracts the first text/plain part of a
// message payload. HTML-only messages yield an empty body; the classifier
// still sees the subject and sender.
func extractPlainBody(payload *gmailapi.MessagePart) string {
	if payload == nil {
		return ""
	}

	if len(payload.Parts) > 0 {
		for _, part := range payload.Parts {
			if text := extractPlainBody(part); text != "" {
				return text
			}
		}
		return ""
	}

	if payload.MimeType == "text/plain" && payload.Body != nil {
		return decodeBase64URL(payload.Body.Data)
	}
	return ""
}

// decodeBase64URL decodes Gmail's URL-safe base64 encoded strings (without padding).
func decodeBase64URL(s string) string {
	if s == "" {
		return ""
	}
	data, err := base64.URLEncoding.WithPadding(base64.NoPadding).DecodeString(s)
	if err != nil {
		return ""
	}
	return string(data)
}
