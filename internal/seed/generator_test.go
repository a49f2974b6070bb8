// ABOUTME: Tests for static sample-data generation and seeding the store.
// ABOUTME: The AI path is exercised only through prompt construction.

package seed

import (
	"context"
	"strings"
	"testing"

	"github.com/2389/nv/internal/sandbox"
	"github.com/2389/nv/internal/schema"
)

func testResources() []schema.ResourceDescriptor {
	return schema.ParseAll(map[string]map[string]string{
		"Customer": {"name": "string", "email": "string"},
		"Order":    {"total": "number", "status": "pending | shipped", "customer": "->Customer"},
	}, map[string][]string{
		"Order": {"pay"},
	})
}

func TestStaticRecordsShape(t *testing.T) {
	for _, res := range testResources() {
		records := staticRecords(res, 5)
		if len(records) != 5 {
			t.Fatalf("%s: expected 5 records, got %d", res.Name, len(records))
		}
		for _, record := range records {
			if _, has := record["id"]; has {
				t.Errorf("%s: generated record must not carry an id", res.Name)
			}
			for _, f := range res.Fields {
				if f.Name == "id" {
					continue
				}
				if _, has := record[f.Name]; !has {
					t.Errorf("%s: record missing field %s", res.Name, f.Name)
				}
			}
		}
	}
}

func TestStaticEnumValuesValid(t *testing.T) {
	resources := testResources()
	var order schema.ResourceDescriptor
	for _, res := range resources {
		if res.Name == "Order" {
			order = res
		}
	}

	for _, record := range staticRecords(order, 6) {
		status := record["status"].(string)
		if status != "pending" && status != "shipped" {
			t.Errorf("enum value %q not in declared set", status)
		}
	}
}

func TestGenerateStaticFallback(t *testing.T) {
	g := &Generator{} // no client: static path
	data := g.Generate(context.Background(), testResources(), 3)

	if len(data["customers"]) != 3 || len(data["orders"]) != 3 {
		t.Errorf("expected 3 records per resource, got %d customers, %d orders",
			len(data["customers"]), len(data["orders"]))
	}
}

func TestApplyInsertsRecords(t *testing.T) {
	store, err := sandbox.New(":memory:")
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	defer store.Close()

	g := &Generator{}
	data := g.Generate(context.Background(), testResources(), 4)
	counts, err := Apply(store, data)
	if err != nil {
		t.Fatalf("Apply failed: %v", err)
	}
	if counts["customers"] != 4 {
		t.Errorf("expected 4 customers seeded, got %d", counts["customers"])
	}

	stored, err := store.Count("customers")
	if err != nil || stored != 4 {
		t.Errorf("expected 4 customers in store, got %d (err %v)", stored, err)
	}
}

func TestBuildPromptDescribesFields(t *testing.T) {
	var order schema.ResourceDescriptor
	for _, res := range testResources() {
		if res.Name == "Order" {
			order = res
		}
	}

	prompt := buildPrompt(order, 5)
	for _, want := range []string{"status (one of: pending, shipped)", "customer (reference id to a Customer", "total (number)"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
	if strings.Contains(prompt, "- id (") {
		t.Error("prompt must not ask for ids")
	}
}
