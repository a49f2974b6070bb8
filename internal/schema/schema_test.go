// ABOUTME: Unit tests for schema parsing and derived naming.
// ABOUTME: Covers type expressions, identity synthesis, pluralization, and command casing.

package schema

import (
	"reflect"
	"testing"
)

func TestParseFieldPrimitive(t *testing.T) {
	field := ParseField("name", "string")

	if field.Name != "name" {
		t.Errorf("expected name 'name', got %q", field.Name)
	}
	if field.BaseType != "string" {
		t.Errorf("expected base type 'string', got %q", field.BaseType)
	}
	if field.Optional || field.IsRelation || field.IsEnum() {
		t.Error("primitive field should not be optional, relation, or enum")
	}
}

func TestParseFieldOptional(t *testing.T) {
	tests := []struct {
		expr     string
		baseType string
	}{
		{"number?", "number"},
		{"string?", "string"},
		{"boolean?", "boolean"},
		{"date?", "date"},
	}

	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			field := ParseField("f", tt.expr)
			if !field.Optional {
				t.Errorf("expected %q to parse as optional", tt.expr)
			}
			if field.BaseType != tt.baseType {
				t.Errorf("expected base type %q, got %q", tt.baseType, field.BaseType)
			}
		})
	}
}

func TestParseFieldRelation(t *testing.T) {
	field := ParseField("customer", "->Customer")

	if !field.IsRelation {
		t.Fatal("expected relation field")
	}
	if field.RelationTarget != "Customer" {
		t.Errorf("expected target 'Customer', got %q", field.RelationTarget)
	}
	if field.BaseType != TypeReference {
		t.Errorf("expected base type %q, got %q", TypeReference, field.BaseType)
	}
}

func TestParseFieldOptionalRelation(t *testing.T) {
	field := ParseField("parent", "->Category?")

	if !field.Optional {
		t.Error("expected optional relation")
	}
	if !field.IsRelation || field.RelationTarget != "Category" {
		t.Errorf("expected relation to Category, got %+v", field)
	}
}

func TestParseFieldEnum(t *testing.T) {
	field := ParseField("status", "pending | shipped | delivered")

	if !field.IsEnum() {
		t.Fatal("expected enum field")
	}
	want := []string{"pending", "shipped", "delivered"}
	if !reflect.DeepEqual(field.EnumValues, want) {
		t.Errorf("expected enum values %v, got %v", want, field.EnumValues)
	}
	if field.BaseType != TypeEnum {
		t.Errorf("expected base type %q, got %q", TypeEnum, field.BaseType)
	}
}

func TestParseFieldExactlyOneClassification(t *testing.T) {
	tests := []struct {
		name string
		expr string
	}{
		{"primitive", "string"},
		{"relation", "->Order"},
		{"enum", "a | b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			field := ParseField("f", tt.expr)
			classifications := 0
			if field.IsRelation {
				classifications++
			}
			if field.IsEnum() {
				classifications++
			}
			if !field.IsRelation && !field.IsEnum() {
				classifications++
			}
			if classifications != 1 {
				t.Errorf("field %+v has %d classifications, want exactly 1", field, classifications)
			}
		})
	}
}

func TestParseResourceSynthesizesIdentity(t *testing.T) {
	resource := ParseResource("Customer", map[string]string{
		"name":  "string",
		"email": "string",
	}, nil)

	if len(resource.Fields) != 3 {
		t.Fatalf("expected 3 fields, got %d", len(resource.Fields))
	}
	id := resource.Fields[0]
	if id.Name != "id" || id.Optional || id.IsRelation || id.IsEnum() {
		t.Errorf("expected required primitive leading id field, got %+v", id)
	}
}

func TestParseResourceIgnoresUserDeclaredID(t *testing.T) {
	resource := ParseResource("Customer", map[string]string{
		"id":   "number",
		"name": "string",
	}, nil)

	if len(resource.Fields) != 2 {
		t.Fatalf("expected 2 fields, got %d", len(resource.Fields))
	}
	if resource.Fields[0].BaseType != "string" {
		t.Errorf("user-declared id should not override synthesized identity, got %+v", resource.Fields[0])
	}
}

func TestParseResourceNaming(t *testing.T) {
	tests := []struct {
		name    string
		plural  string
		command string
	}{
		{"Customer", "customers", "customer"},
		{"OrderItem", "order-items", "order-item"},
		{"Category", "categories", "category"},
		{"Box", "boxes", "box"},
		{"Batch", "batches", "batch"},
		{"Dish", "dishes", "dish"},
		{"Status", "statuses", "status"},
		{"Day", "days", "day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resource := ParseResource(tt.name, map[string]string{"name": "string"}, nil)
			if resource.PluralName != tt.plural {
				t.Errorf("expected plural %q, got %q", tt.plural, resource.PluralName)
			}
			if resource.CommandName != tt.command {
				t.Errorf("expected command %q, got %q", tt.command, resource.CommandName)
			}
		})
	}
}

func TestCommandNameIdempotent(t *testing.T) {
	for _, name := range []string{"Customer", "OrderItem", "APIKey", "order-item"} {
		once := CommandName(name)
		twice := CommandName(once)
		if once != twice {
			t.Errorf("CommandName not idempotent for %q: %q -> %q", name, once, twice)
		}
	}
}

func TestDerivedNamesStableUnderReparse(t *testing.T) {
	resource := ParseResource("OrderItem", map[string]string{"sku": "string"}, nil)

	if CommandName(resource.CommandName) != resource.CommandName {
		t.Errorf("re-casing command name %q changed it", resource.CommandName)
	}
	if CommandName(resource.PluralName) != resource.PluralName {
		t.Errorf("re-casing plural name %q changed it", resource.PluralName)
	}
}

func TestParseResourceVerbs(t *testing.T) {
	resource := ParseResource("Order", map[string]string{"total": "number"}, []string{"pay", "ship"})

	if !resource.HasVerb("pay") || !resource.HasVerb("ship") {
		t.Errorf("expected verbs pay and ship, got %v", resource.VerbNames)
	}
	if resource.HasVerb("refund") {
		t.Error("unexpected verb refund")
	}
}

func TestRequiredFields(t *testing.T) {
	resource := ParseResource("Product", map[string]string{
		"name":        "string",
		"price":       "number",
		"description": "string?",
	}, nil)

	required := resource.RequiredFields()
	if len(required) != 2 {
		t.Fatalf("expected 2 required fields, got %d: %v", len(required), required)
	}
	for _, f := range required {
		if f.Name == "id" || f.Optional {
			t.Errorf("required fields must exclude id and optionals, got %+v", f)
		}
	}
}

func TestParseAllSortedByName(t *testing.T) {
	resources := ParseAll(map[string]map[string]string{
		"Order":    {"total": "number"},
		"Customer": {"name": "string"},
	}, map[string][]string{
		"Order": {"pay"},
	})

	if len(resources) != 2 {
		t.Fatalf("expected 2 resources, got %d", len(resources))
	}
	if resources[0].Name != "Customer" || resources[1].Name != "Order" {
		t.Errorf("expected sorted order [Customer Order], got [%s %s]", resources[0].Name, resources[1].Name)
	}
	if !resources[1].HasVerb("pay") {
		t.Error("expected Order to carry the pay verb")
	}
}
