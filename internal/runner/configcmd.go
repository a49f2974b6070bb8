// ABOUTME: Config sub-command handlers: get/set/delete/list/path/reset.
// ABOUTME: Thin dispatch over the dotted-path config store.

package runner

import (
	"fmt"
	"strings"

	"github.com/2389/nv/internal/config"
)

func (r *Runner) runConfig(args []string, dir string) CommandResult {
	if len(args) == 0 {
		return failUsage("config sub-command required", "config <get|set|delete|list|path|reset>")
	}

	sub, rest := args[0], args[1:]
	switch sub {
	case "get":
		if len(rest) == 0 {
			return failUsage("key required", "config get <key>")
		}
		value, found := config.Get(dir, rest[0])
		if !found {
			return fail(fmt.Sprintf("configuration key %q not found", rest[0]))
		}
		return ok(fmt.Sprintf("%s = %v", rest[0], value))

	case "set":
		if len(rest) < 2 {
			return failUsage("key and value required", "config set <key> <value>")
		}
		if err := config.Set(dir, rest[0], rest[1]); err != nil {
			return fail(fmt.Sprintf("failed to save configuration: %v", err))
		}
		return ok(fmt.Sprintf("%s = %s", rest[0], rest[1]))

	case "delete":
		if len(rest) == 0 {
			return failUsage("key required", "config delete <key>")
		}
		removed, err := config.Delete(dir, rest[0])
		if err != nil {
			return fail(fmt.Sprintf("failed to save configuration: %v", err))
		}
		if !removed {
			return fail(fmt.Sprintf("configuration key %q not found", rest[0]))
		}
		return ok(fmt.Sprintf("deleted %s", rest[0]))

	case "list":
		lines := config.List(dir)
		if len(lines) == 0 {
			return ok("(no configuration set)")
		}
		return ok(strings.Join(lines, "\n"))

	case "path":
		return ok(dir)

	case "reset":
		if err := config.Reset(dir); err != nil {
			return fail(fmt.Sprintf("failed to reset configuration: %v", err))
		}
		return ok("configuration reset")

	default:
		result := failUsage(fmt.Sprintf("unknown config sub-command %q", sub),
			"config <get|set|delete|list|path|reset>")
		if s := suggest(sub, []string{"get", "set", "delete", "list", "path", "reset"}); s != "" {
			result.Suggestion = s
		}
		return result
	}
}
