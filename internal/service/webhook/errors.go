package webhook

import (
	"errors"
	"fmt"
)

// ErrWebhookNotFound is returned when a subscriber has no configured webhook.
var ErrWebhookNotFound = errors.New("webhook not configured")

// InvalidURLError is returned when a webhook URL lacks an http/https scheme
// or a host.
type InvalidURLError struct {
	URL string
}

func (e *InvalidURLError) Error() string {
	return fmt.Sprintf("invalid webhook url %q: must be http or https with a host", e.URL)
}
