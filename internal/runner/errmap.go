// ABOUTME: Maps transport failures into the stable user-facing error taxonomy.
// ABOUTME: Order matters: network and timeout markers win over structured details.

package runner

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// mapTransportError renders a caught transport failure as a user-facing
// message. Classification order is deliberate: connection and timeout
// markers are checked before structured response fields, since a single
// error value can plausibly carry both. A request id on the failure is
// appended in every branch.
func mapTransportError(err error, resource, id string) string {
	var apiErr *APIError
	structured := errors.As(err, &apiErr)

	msg := err.Error()
	lower := strings.ToLower(msg)

	var out string
	switch {
	case strings.Contains(lower, "connection refused") || strings.Contains(msg, "ECONNREFUSED"):
		out = "Network error: could not connect to the API (connection refused)"
	case strings.Contains(lower, "timeout") || strings.Contains(lower, "timed out"):
		out = "Request timed out"
	case structured && apiErr.Status == http.StatusNotFound:
		out = fmt.Sprintf("%s %q not found", resource, id)
	case structured && len(apiErr.Details) > 0:
		parts := make([]string, len(apiErr.Details))
		for i, d := range apiErr.Details {
			parts[i] = d.Field + ": " + d.Message
		}
		out = "Validation failed: " + strings.Join(parts, "; ")
	case msg != "":
		out = msg
	default:
		out = "Unknown error"
	}

	if structured && apiErr.RequestID != "" {
		out += " (request ID: " + apiErr.RequestID + ")"
	}
	return out
}
