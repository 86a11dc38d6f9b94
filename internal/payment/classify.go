package payment

import (
	"net/url"
	"strings"

	"github.com/google/uuid"
)

type EventKind string

const (
	EventKindNone    EventKind = "NONE"
	EventKindSuccess EventKind = "SUCCESS"
	EventKindCancel  EventKind = "CANCEL"
)

// NavigationEvent is one observed location change of the embedded payment
// surface. Delivery is best effort: events can be missed, duplicated or
// arrive in bursts.
type NavigationEvent struct {
	SessionID uuid.UUID `json:"session_id"`
	URL       string    `json:"url"`
}

type Classification struct {
	Kind EventKind
	// Reference is the provider reference pulled from the URL's query
	// parameters, empty when none was present.
	Reference string
}

// Classify inspects a navigation URL. Success indicators take precedence
// over cancellation indicators because a single URL can coincidentally
// contain both substrings.
func Classify(rawURL string) Classification {
	lower := strings.ToLower(rawURL)

	reference := ""
	if u, err := url.Parse(rawURL); err == nil {
		q := u.Query()
		if v := q.Get("trxref"); v != "" {
			reference = v
		} else if v := q.Get("reference"); v != "" {
			reference = v
		}
	}

	if reference != "" || strings.Contains(lower, "callback") || strings.Contains(lower, "success") {
		return Classification{Kind: EventKindSuccess, Reference: reference}
	}

	if strings.Contains(lower, "cancel") {
		return Classification{Kind: EventKindCancel}
	}

	return Classification{Kind: EventKindNone}
}
