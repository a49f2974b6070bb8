// ABOUTME: Login and logout handlers for credential management.
// ABOUTME: Validates key format before any remote validation, persists via the config store.

package runner

import (
	"context"
	"fmt"

	"github.com/2389/nv/internal/config"
)

const (
	// minAPIKeyLength rejects obviously truncated keys before validation.
	minAPIKeyLength = 8

	// placeholderAPIKey is the scaffolder's unreplaced template value.
	placeholderAPIKey = "YOUR_API_KEY"
)

func (r *Runner) runLogin(ctx context.Context, args []string, dir string, opts ExecuteOptions) CommandResult {
	key := ""
	for i := 0; i < len(args); i++ {
		if args[i] == "--api-key" && i+1 < len(args) {
			key = args[i+1]
			i++
		}
	}

	if key == "" {
		return failUsage("API key required", "login --api-key <key>")
	}
	if len(key) < minAPIKeyLength || key == placeholderAPIKey {
		return fail("invalid API key format")
	}

	var user *UserInfo
	if opts.ValidateKey != nil {
		info, err := opts.ValidateKey(ctx, key)
		if err != nil {
			return fail(fmt.Sprintf("login failed: %s", mapTransportError(err, "", "")))
		}
		user = info
	}

	if err := config.SaveAPIKey(dir, key); err != nil {
		return fail(fmt.Sprintf("failed to store credentials: %v", err))
	}

	result := ok("Logged in")
	if user != nil && user.Email != "" {
		result.Message = fmt.Sprintf("Authenticated as %s", user.Email)
	}
	return result
}

func (r *Runner) runLogout(dir string) CommandResult {
	if !config.HasCredentials(dir) {
		result := ok("Not logged in")
		result.Message = "No stored credentials"
		return result
	}
	if err := config.DeleteCredentials(dir); err != nil {
		return fail(fmt.Sprintf("failed to remove credentials: %v", err))
	}
	return ok("Logged out")
}
