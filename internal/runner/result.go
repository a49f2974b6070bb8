// ABOUTME: Shared contract types for the command dispatcher.
// ABOUTME: Defines CommandResult, ExecuteOptions, transport requests, and API errors.

package runner

import (
	"context"
	"fmt"
)

// CommandResult is the uniform return value of every dispatched command.
// Success=false implies Error is set; Suggestion and Usage are advisory
// fields populated only for specific failure kinds.
type CommandResult struct {
	Success    bool   `json:"success"`
	Output     string `json:"output"`
	Error      string `json:"error,omitempty"`
	Message    string `json:"message,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
	Usage      string `json:"usage,omitempty"`
}

// Request is the transport-neutral description of a remote call.
type Request struct {
	Method string            `json:"method"`
	Path   string            `json:"path"`
	Query  map[string]string `json:"query,omitempty"`
	Body   map[string]any    `json:"body,omitempty"`
}

// Transport performs the actual remote call. It is the only network
// boundary the dispatcher touches; absence of a transport puts commands
// in dry mode.
type Transport func(ctx context.Context, req Request) (any, error)

// UserInfo is the identity a credential validator reports on success.
type UserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

// KeyValidator checks an API key against the remote service during login.
type KeyValidator func(ctx context.Context, key string) (*UserInfo, error)

// ExecuteOptions is the caller-supplied per-call execution context. It is
// never persisted and never shared between calls.
type ExecuteOptions struct {
	// Transport performs remote calls. Nil means dry mode.
	Transport Transport

	// Authenticated overrides auth resolution when non-nil. When nil,
	// an injected Transport implies authenticated; otherwise the
	// presence of a persisted credentials file decides.
	Authenticated *bool

	// ConfigDir overrides the default per-application config directory.
	ConfigDir string

	// ValidateKey, when set, is consulted by login to verify the key
	// and report the authenticated identity.
	ValidateKey KeyValidator
}

// FieldError is one structured validation failure reported by the API.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is a structured transport rejection: a non-2xx response carrying
// status, message, optional validation details, and a correlation id.
type APIError struct {
	Status    int          `json:"status,omitempty"`
	Code      string       `json:"error,omitempty"`
	Message   string       `json:"message,omitempty"`
	Details   []FieldError `json:"details,omitempty"`
	RequestID string       `json:"requestId,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return fmt.Sprintf("API error (status %d)", e.Status)
}
