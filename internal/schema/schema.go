// ABOUTME: Parses noun/verb schemas into field and resource descriptors.
// ABOUTME: Handles optional markers, relations, enums, and derived naming.

package schema

import (
	"sort"
	"strings"
)

// RelationMarker prefixes a type expression that references another resource.
const RelationMarker = "->"

// Base types assigned to non-primitive fields.
const (
	TypeReference = "reference"
	TypeEnum      = "enum"
)

// FieldDescriptor is the parsed form of a single field's type expression.
// Exactly one of relation, enum, or primitive classification applies.
type FieldDescriptor struct {
	Name           string
	BaseType       string
	Optional       bool
	IsRelation     bool
	RelationTarget string
	EnumValues     []string
}

// IsEnum reports whether the field was declared as a union of literal values.
func (f FieldDescriptor) IsEnum() bool {
	return len(f.EnumValues) > 0
}

// ResourceDescriptor is the parsed form of one resource (noun) plus its verbs.
// Fields always begins with the synthesized identity field.
type ResourceDescriptor struct {
	Name        string
	PluralName  string
	CommandName string
	Fields      []FieldDescriptor
	VerbNames   []string
}

// Field returns the descriptor for the named field, if present.
func (r ResourceDescriptor) Field(name string) (FieldDescriptor, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// RequiredFields returns the fields a create must supply: every
// non-optional field except the identity field.
func (r ResourceDescriptor) RequiredFields() []FieldDescriptor {
	var required []FieldDescriptor
	for _, f := range r.Fields {
		if f.Name == "id" || f.Optional {
			continue
		}
		required = append(required, f)
	}
	return required
}

// HasVerb reports whether name is one of the resource's custom verbs.
func (r ResourceDescriptor) HasVerb(name string) bool {
	for _, v := range r.VerbNames {
		if v == name {
			return true
		}
	}
	return false
}

// ParseField interprets a type expression into a FieldDescriptor.
//
// Rules, in priority order:
//  1. A trailing "?" marks the field optional; the remainder is re-parsed.
//  2. A leading "->" marks a relation; the remainder names the target.
//  3. A "|" separator marks an enum of trimmed literal values.
//  4. Anything else is a primitive base type, taken verbatim.
func ParseField(name, typeExpr string) FieldDescriptor {
	field := FieldDescriptor{Name: name}

	expr := strings.TrimSpace(typeExpr)
	if strings.HasSuffix(expr, "?") {
		field.Optional = true
		expr = strings.TrimSpace(strings.TrimSuffix(expr, "?"))
	}

	switch {
	case strings.HasPrefix(expr, RelationMarker):
		field.IsRelation = true
		field.RelationTarget = strings.TrimSpace(strings.TrimPrefix(expr, RelationMarker))
		field.BaseType = TypeReference
	case strings.Contains(expr, "|"):
		for _, v := range strings.Split(expr, "|") {
			field.EnumValues = append(field.EnumValues, strings.TrimSpace(v))
		}
		field.BaseType = TypeEnum
	default:
		field.BaseType = expr
	}

	return field
}

// identityField is the synthesized leading field every resource carries.
func identityField() FieldDescriptor {
	return FieldDescriptor{Name: "id", BaseType: "string"}
}

// ParseResource builds a ResourceDescriptor from a resource's field schema
// and its declared custom verbs. User fields are sorted by name so the
// descriptor is deterministic regardless of map iteration order.
func ParseResource(name string, fields map[string]string, verbs []string) ResourceDescriptor {
	resource := ResourceDescriptor{
		Name:        name,
		CommandName: CommandName(name),
		PluralName:  Pluralize(CommandName(name)),
		VerbNames:   append([]string(nil), verbs...),
	}

	fieldNames := make([]string, 0, len(fields))
	for fieldName := range fields {
		fieldNames = append(fieldNames, fieldName)
	}
	sort.Strings(fieldNames)

	resource.Fields = append(resource.Fields, identityField())
	for _, fieldName := range fieldNames {
		if fieldName == "id" {
			continue // identity is always synthesized, never user-declared
		}
		resource.Fields = append(resource.Fields, ParseField(fieldName, fields[fieldName]))
	}

	return resource
}

// ParseAll parses every resource in the schema, sorted by resource name.
func ParseAll(schemas map[string]map[string]string, verbs map[string][]string) []ResourceDescriptor {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	sort.Strings(names)

	resources := make([]ResourceDescriptor, 0, len(names))
	for _, name := range names {
		resources = append(resources, ParseResource(name, schemas[name], verbs[name]))
	}
	return resources
}
