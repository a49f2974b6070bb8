// ABOUTME: Renders usage text for the root command, resources, and sub-commands.
// ABOUTME: All help is derived from the parsed schema, never hand-maintained.

package runner

import (
	"fmt"
	"strings"

	"github.com/2389/nv/internal/schema"
)

// crudVerbs are the fixed sub-commands every resource supports, in the
// order they are listed in help output.
var crudVerbs = []string{"list", "get", "create", "update", "delete"}

func (r *Runner) rootHelp() string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s — command-line client\n\n", r.name)
	fmt.Fprintf(&b, "Usage: %s <command> [arguments]\n\n", r.name)

	b.WriteString("Resources:\n")
	for _, res := range r.resources {
		fmt.Fprintf(&b, "  %-14s Manage %s\n", res.CommandName, res.PluralName)
	}

	b.WriteString("\nCommands:\n")
	fmt.Fprintf(&b, "  %-14s Authenticate with an API key\n", "login")
	fmt.Fprintf(&b, "  %-14s Remove stored credentials\n", "logout")
	fmt.Fprintf(&b, "  %-14s Manage settings (get/set/delete/list/path/reset)\n", "config")
	fmt.Fprintf(&b, "  %-14s Generate shell completion\n", "completion")
	fmt.Fprintf(&b, "  %-14s Show help for a command\n", "help")

	b.WriteString("\nFlags:\n")
	b.WriteString("  --help, -h     Show this help\n")
	b.WriteString("  --version, -v  Show version\n")

	return b.String()
}

func (r *Runner) resourceHelp(res *schema.ResourceDescriptor) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Usage: %s %s <command> [arguments]\n\n", r.name, res.CommandName)

	b.WriteString("Commands:\n")
	fmt.Fprintf(&b, "  list           List %s (--limit, --offset, --filter key=value, --format)\n", res.PluralName)
	fmt.Fprintf(&b, "  get <id>       Fetch one %s\n", res.CommandName)
	fmt.Fprintf(&b, "  create         Create a %s (--data <json> or --<field> <value>)\n", res.CommandName)
	fmt.Fprintf(&b, "  update <id>    Update fields on a %s\n", res.CommandName)
	fmt.Fprintf(&b, "  delete <id>    Delete a %s\n", res.CommandName)
	for _, verb := range res.VerbNames {
		fmt.Fprintf(&b, "  %-14s Run the %s action\n", verb+" <id>", verb)
	}

	b.WriteString("\nFields:\n")
	for _, f := range res.Fields {
		fmt.Fprintf(&b, "  %-14s %s%s\n", f.Name, fieldTypeLabel(f), optionalLabel(f))
	}

	return b.String()
}

func (r *Runner) verbHelp(res *schema.ResourceDescriptor, verb string) string {
	switch verb {
	case "list":
		return fmt.Sprintf("Usage: %s %s list [--limit N] [--offset N] [--filter key=value] [--format FORMAT]", r.name, res.CommandName)
	case "create":
		names := make([]string, 0, len(res.RequiredFields()))
		for _, f := range res.RequiredFields() {
			names = append(names, "--"+f.Name+" <value>")
		}
		return fmt.Sprintf("Usage: %s %s create --data <json> | %s", r.name, res.CommandName, strings.Join(names, " "))
	case "get", "delete":
		return fmt.Sprintf("Usage: %s %s %s <id>", r.name, res.CommandName, verb)
	case "update":
		return fmt.Sprintf("Usage: %s %s update <id> --<field> <value> ...", r.name, res.CommandName)
	default:
		return fmt.Sprintf("Usage: %s %s %s <id> [--<field> <value> ...]", r.name, res.CommandName, verb)
	}
}

func fieldTypeLabel(f schema.FieldDescriptor) string {
	switch {
	case f.IsRelation:
		return "reference to " + f.RelationTarget
	case f.IsEnum():
		return "one of " + strings.Join(f.EnumValues, ", ")
	default:
		return f.BaseType
	}
}

func optionalLabel(f schema.FieldDescriptor) string {
	if f.Optional {
		return " (optional)"
	}
	return ""
}
