// ABOUTME: Resource sub-dispatch plus the CRUD and custom-verb handlers.
// ABOUTME: Validates argument shape before the auth check, then builds transport requests.

package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/2389/nv/internal/schema"
)

// dispatchResource routes `<resource> <verb> ...`. Argument validation runs
// before the authentication check: a malformed command is reported without
// requiring the caller to log in first.
func (r *Runner) dispatchResource(ctx context.Context, res *schema.ResourceDescriptor, rest []string, dir string, opts ExecuteOptions) CommandResult {
	if len(rest) == 0 || rest[0] == "help" || rest[0] == "--help" || rest[0] == "-h" {
		return ok(r.resourceHelp(res))
	}

	verb, vargs := rest[0], rest[1:]
	isCRUD := false
	for _, v := range crudVerbs {
		if v == verb {
			isCRUD = true
			break
		}
	}
	if !isCRUD && !res.HasVerb(verb) {
		valid := append(append([]string{}, crudVerbs...), res.VerbNames...)
		result := fail(fmt.Sprintf("unknown sub-command %q for %s (valid: %s)",
			verb, res.CommandName, strings.Join(valid, ", ")))
		if s := suggest(verb, valid); s != "" {
			result.Suggestion = s
		}
		return result
	}

	if len(vargs) > 0 && (vargs[0] == "--help" || vargs[0] == "-h") {
		return ok(r.verbHelp(res, verb))
	}

	// Validation first, auth second. Each handler returns either a
	// validated request or an argument-error result.
	req, errResult := r.buildRequest(res, verb, vargs)
	if errResult != nil {
		return *errResult
	}

	if !resolveAuthenticated(dir, opts) {
		result := fail("not authenticated")
		result.Message = fmt.Sprintf("Run '%s login --api-key <key>' to authenticate", r.name)
		return result
	}

	return r.perform(ctx, res, verb, req, opts)
}

// buildRequest validates the verb's arguments and constructs the transport
// request. A non-nil result means validation failed.
func (r *Runner) buildRequest(res *schema.ResourceDescriptor, verb string, args []string) (Request, *CommandResult) {
	switch verb {
	case "list":
		return r.buildList(res, args)
	case "get":
		id, errResult := requireID(res, verb, args)
		if errResult != nil {
			return Request{}, errResult
		}
		return Request{Method: "GET", Path: "/" + res.PluralName + "/" + id}, nil
	case "create":
		return r.buildCreate(res, args)
	case "update":
		return r.buildUpdate(res, args)
	case "delete":
		id, errResult := requireID(res, verb, args)
		if errResult != nil {
			return Request{}, errResult
		}
		return Request{Method: "DELETE", Path: "/" + res.PluralName + "/" + id}, nil
	default:
		return r.buildVerb(res, verb, args)
	}
}

// requireID extracts the identity argument all singular commands need.
func requireID(res *schema.ResourceDescriptor, verb string, args []string) (string, *CommandResult) {
	if len(args) == 0 || strings.HasPrefix(args[0], "-") {
		result := failUsage(
			fmt.Sprintf("missing %s id", res.CommandName),
			fmt.Sprintf("%s %s <id>", res.CommandName, verb))
		return "", &result
	}
	return args[0], nil
}

func (r *Runner) buildList(res *schema.ResourceDescriptor, args []string) (Request, *CommandResult) {
	usage := fmt.Sprintf("%s list [--limit N] [--offset N] [--filter key=value] [--format FORMAT]", res.CommandName)
	query := map[string]string{}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--limit":
			value, next, errResult := flagValue(args, i, "--limit", usage)
			if errResult != nil {
				return Request{}, errResult
			}
			if _, err := strconv.Atoi(value); err != nil {
				result := failUsage(fmt.Sprintf("--limit must be numeric, got %q", value), usage)
				return Request{}, &result
			}
			query["limit"] = value
			i = next
		case "--offset":
			value, next, errResult := flagValue(args, i, "--offset", usage)
			if errResult != nil {
				return Request{}, errResult
			}
			query["offset"] = value
			i = next
		case "--filter":
			value, next, errResult := flagValue(args, i, "--filter", usage)
			if errResult != nil {
				return Request{}, errResult
			}
			key, filterValue, valid := parseFilter(value)
			if !valid {
				result := failUsage(fmt.Sprintf("--filter expects key=value, got %q", value), usage)
				return Request{}, &result
			}
			query[key] = filterValue
			i = next
		case "--format", "-o":
			// Advisory metadata only; rendering is a collaborator concern.
			_, next, errResult := flagValue(args, i, "--format", usage)
			if errResult != nil {
				return Request{}, errResult
			}
			i = next
		default:
			result := failUsage(fmt.Sprintf("unexpected argument %q", args[i]), usage)
			return Request{}, &result
		}
	}

	req := Request{Method: "GET", Path: "/" + res.PluralName}
	if len(query) > 0 {
		req.Query = query
	}
	return req, nil
}

func (r *Runner) buildCreate(res *schema.ResourceDescriptor, args []string) (Request, *CommandResult) {
	usage := fmt.Sprintf("%s create --data <json> | --<field> <value> ...", res.CommandName)

	body := map[string]any{}
	for i := 0; i < len(args); i++ {
		if args[i] == "--data" {
			value, next, errResult := flagValue(args, i, "--data", usage)
			if errResult != nil {
				return Request{}, errResult
			}
			if err := json.Unmarshal([]byte(value), &body); err != nil {
				result := failUsage("invalid JSON in --data", usage)
				return Request{}, &result
			}
			i = next
			continue
		}
		field, value, next, errResult := fieldFlag(res, args, i, usage)
		if errResult != nil {
			return Request{}, errResult
		}
		body[field.Name] = coerceValue(field, value)
		i = next
	}

	var missing []string
	for _, f := range res.RequiredFields() {
		if _, present := body[f.Name]; !present {
			missing = append(missing, f.Name)
		}
	}
	if len(missing) > 0 {
		result := failUsage(
			fmt.Sprintf("missing required field(s): %s", strings.Join(missing, ", ")), usage)
		return Request{}, &result
	}

	return Request{Method: "POST", Path: "/" + res.PluralName, Body: body}, nil
}

func (r *Runner) buildUpdate(res *schema.ResourceDescriptor, args []string) (Request, *CommandResult) {
	id, errResult := requireID(res, "update", args)
	if errResult != nil {
		return Request{}, errResult
	}
	usage := fmt.Sprintf("%s update <id> --<field> <value> ...", res.CommandName)

	body, bodyErr := collectFieldFlags(res, args[1:], usage)
	if bodyErr != nil {
		return Request{}, bodyErr
	}
	return Request{Method: "PATCH", Path: "/" + res.PluralName + "/" + id, Body: body}, nil
}

func (r *Runner) buildVerb(res *schema.ResourceDescriptor, verb string, args []string) (Request, *CommandResult) {
	id, errResult := requireID(res, verb, args)
	if errResult != nil {
		return Request{}, errResult
	}
	usage := fmt.Sprintf("%s %s <id> [--<field> <value> ...]", res.CommandName, verb)

	body, bodyErr := collectFieldFlags(res, args[1:], usage)
	if bodyErr != nil {
		return Request{}, bodyErr
	}
	// Custom verbs are always POST /{plural}/{id}/{verb}.
	return Request{Method: "POST", Path: "/" + res.PluralName + "/" + id + "/" + verb, Body: body}, nil
}

// collectFieldFlags gathers whichever --<field> flags were supplied into a
// partial body. Supplying none is allowed; update semantics are partial.
func collectFieldFlags(res *schema.ResourceDescriptor, args []string, usage string) (map[string]any, *CommandResult) {
	body := map[string]any{}
	for i := 0; i < len(args); i++ {
		field, value, next, errResult := fieldFlag(res, args, i, usage)
		if errResult != nil {
			return nil, errResult
		}
		body[field.Name] = coerceValue(field, value)
		i = next
	}
	return body, nil
}

// fieldFlag parses one --<field> <value> pair against the resource schema.
func fieldFlag(res *schema.ResourceDescriptor, args []string, i int, usage string) (schema.FieldDescriptor, string, int, *CommandResult) {
	arg := args[i]
	if !strings.HasPrefix(arg, "--") {
		result := failUsage(fmt.Sprintf("unexpected argument %q", arg), usage)
		return schema.FieldDescriptor{}, "", 0, &result
	}
	name := strings.TrimPrefix(arg, "--")
	field, found := res.Field(name)
	if !found {
		result := failUsage(fmt.Sprintf("unknown field --%s for %s", name, res.CommandName), usage)
		return schema.FieldDescriptor{}, "", 0, &result
	}
	value, next, errResult := flagValue(args, i, arg, usage)
	if errResult != nil {
		return schema.FieldDescriptor{}, "", 0, errResult
	}
	return field, value, next, nil
}

// flagValue returns the value following a flag, or an argument error.
func flagValue(args []string, i int, flag, usage string) (string, int, *CommandResult) {
	if i+1 >= len(args) {
		result := failUsage(fmt.Sprintf("%s requires a value", flag), usage)
		return "", 0, &result
	}
	return args[i+1], i + 1, nil
}

// coerceValue converts a flag string into the field's wire type. Values
// that do not parse are passed through as strings; type enforcement is the
// API's job, not the CLI's.
func coerceValue(field schema.FieldDescriptor, value string) any {
	switch field.BaseType {
	case "number", "int", "float":
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return n
		}
	case "boolean", "bool":
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return value
}

// perform runs the validated request against the injected transport, or
// synthesizes a local result in dry mode.
func (r *Runner) perform(ctx context.Context, res *schema.ResourceDescriptor, verb string, req Request, opts ExecuteOptions) CommandResult {
	if opts.Transport == nil {
		result := ok(fmt.Sprintf("%s %s", req.Method, req.Path))
		result.Message = "dry run: no transport configured"
		return result
	}

	response, err := opts.Transport(ctx, req)
	if err != nil {
		return fail(mapTransportError(err, res.CommandName, pathID(res, req.Path)))
	}

	result := ok(renderResponse(response))
	result.Message = actionMessage(res, verb)
	return result
}

// pathID pulls the identity segment back out of a constructed path.
func pathID(res *schema.ResourceDescriptor, path string) string {
	trimmed := strings.TrimPrefix(path, "/"+res.PluralName)
	trimmed = strings.TrimPrefix(trimmed, "/")
	if i := strings.Index(trimmed, "/"); i >= 0 {
		trimmed = trimmed[:i]
	}
	return trimmed
}

func renderResponse(response any) string {
	if response == nil {
		return ""
	}
	if s, isString := response.(string); isString {
		return s
	}
	data, err := json.MarshalIndent(response, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", response)
	}
	return string(data)
}

func actionMessage(res *schema.ResourceDescriptor, verb string) string {
	switch verb {
	case "list":
		return fmt.Sprintf("Listed %s", res.PluralName)
	case "get":
		return ""
	case "create":
		return fmt.Sprintf("Created %s", res.CommandName)
	case "update":
		return fmt.Sprintf("Updated %s", res.CommandName)
	case "delete":
		return fmt.Sprintf("Deleted %s", res.CommandName)
	default:
		return fmt.Sprintf("Ran %s on %s", verb, res.CommandName)
	}
}
