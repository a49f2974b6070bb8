// ABOUTME: In-memory CLI command dispatcher built from a parsed nouns/verbs schema.
// ABOUTME: Routes argument vectors to global, auth, config, CRUD, and verb handlers.

package runner

import (
	"context"
	"fmt"
	"strings"

	"github.com/2389/nv/internal/config"
	"github.com/2389/nv/internal/schema"
)

// Options configures a Runner. Schema maps resource name to field schema;
// Verbs maps resource name to its custom action names.
type Options struct {
	Name    string
	Version string
	Schema  map[string]map[string]string
	Verbs   map[string][]string
}

// Runner interprets argument vectors against a parsed schema. It is built
// once and carries no mutable state between Execute calls; the only state
// it observes is the on-disk config, read fresh per call.
type Runner struct {
	name      string
	version   string
	resources []schema.ResourceDescriptor
	byCommand map[string]*schema.ResourceDescriptor
}

// New parses the schema and builds the command model.
func New(opts Options) *Runner {
	r := &Runner{
		name:      opts.Name,
		version:   opts.Version,
		resources: schema.ParseAll(opts.Schema, opts.Verbs),
		byCommand: make(map[string]*schema.ResourceDescriptor),
	}
	for i := range r.resources {
		r.byCommand[r.resources[i].CommandName] = &r.resources[i]
	}
	return r
}

// Resources exposes the parsed descriptors, in name order.
func (r *Runner) Resources() []schema.ResourceDescriptor {
	return r.resources
}

// commandNames lists every routable head token: resources first, then the
// built-in commands. Resource order is the suggestion tie-break order.
func (r *Runner) commandNames() []string {
	names := make([]string, 0, len(r.resources)+5)
	for _, res := range r.resources {
		names = append(names, res.CommandName)
	}
	return append(names, "login", "logout", "config", "completion", "help")
}

// Execute interprets one argument vector. Command failures are encoded in
// the CommandResult; the error return is reserved for context cancellation.
func (r *Runner) Execute(ctx context.Context, args []string, opts ExecuteOptions) (CommandResult, error) {
	if err := ctx.Err(); err != nil {
		return CommandResult{}, err
	}

	dir := opts.ConfigDir
	if dir == "" {
		dir = config.DefaultDir(r.name)
	}

	if len(args) == 0 {
		return ok(r.rootHelp()), nil
	}

	head, rest := args[0], args[1:]
	switch head {
	case "--help", "-h":
		return ok(r.rootHelp()), nil
	case "--version", "-v":
		return ok(fmt.Sprintf("%s %s", r.name, r.version)), nil
	case "help":
		return r.runHelp(rest), nil
	case "login":
		return r.runLogin(ctx, rest, dir, opts), nil
	case "logout":
		return r.runLogout(dir), nil
	case "config":
		return r.runConfig(rest, dir), nil
	case "completion":
		return r.runCompletion(rest), nil
	}

	if res, found := r.byCommand[head]; found {
		return r.dispatchResource(ctx, res, rest, dir, opts), nil
	}

	result := fail(fmt.Sprintf("unknown command %q", head))
	if s := suggest(head, r.commandNames()); s != "" {
		result.Suggestion = s
		result.Message = fmt.Sprintf("Did you mean %q?", s)
	}
	return result, nil
}

func (r *Runner) runHelp(args []string) CommandResult {
	if len(args) == 0 {
		return ok(r.rootHelp())
	}
	res, found := r.byCommand[args[0]]
	if !found {
		result := fail(fmt.Sprintf("unknown command %q", args[0]))
		if s := suggest(args[0], r.commandNames()); s != "" {
			result.Suggestion = s
		}
		return result
	}
	return ok(r.resourceHelp(res))
}

func (r *Runner) runCompletion(args []string) CommandResult {
	if len(args) == 0 {
		return failUsage("shell name required", "completion <bash|zsh|fish>")
	}
	// Script generation lives in the scaffolder; the runner only emits a
	// placeholder naming the shell.
	return ok(fmt.Sprintf("# %s completion for %s", r.name, args[0]))
}

// resolveAuthenticated decides the auth state for one call: an explicit
// flag wins; otherwise an injected transport implies authenticated (a
// testing affordance); otherwise a persisted credentials file decides.
func resolveAuthenticated(dir string, opts ExecuteOptions) bool {
	if opts.Authenticated != nil {
		return *opts.Authenticated
	}
	if opts.Transport != nil {
		return true
	}
	return config.HasCredentials(dir)
}

// ok builds a success result.
func ok(output string) CommandResult {
	return CommandResult{Success: true, Output: output}
}

// fail builds a failure result with the given error message.
func fail(errMsg string) CommandResult {
	return CommandResult{Success: false, Error: errMsg}
}

// failUsage builds an argument-error failure carrying a usage string.
func failUsage(errMsg, usage string) CommandResult {
	return CommandResult{Success: false, Error: errMsg, Usage: usage}
}

// parseFilter splits a --filter argument into key and value.
func parseFilter(arg string) (string, string, bool) {
	key, value, found := strings.Cut(arg, "=")
	if !found || key == "" {
		return "", "", false
	}
	return key, value, true
}
