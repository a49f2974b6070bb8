// ABOUTME: Sample-data generator for the sandbox store.
// ABOUTME: Uses OpenAI when an API key is configured, static data otherwise.

package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/sashabaranov/go-openai"

	"github.com/2389/nv/internal/sandbox"
	"github.com/2389/nv/internal/schema"
)

const defaultModel = "gpt-5-mini"

// Generator creates sample records using OpenAI or falls back to static data.
type Generator struct {
	client *openai.Client
	useAI  bool
	model  string
}

// NewGenerator creates a generator, loading the API key from .env if available.
func NewGenerator() *Generator {
	g := &Generator{}

	// Try to load .env from current dir or parent dirs
	envPaths := []string{".env", "../.env", "../../.env"}
	for _, p := range envPaths {
		if err := godotenv.Load(p); err == nil {
			break
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		godotenv.Load(filepath.Join(home, ".env"))
	}

	g.model = os.Getenv("OPENAI_MODEL")
	if g.model == "" {
		g.model = defaultModel
	}

	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		g.client = openai.NewClient(apiKey)
		g.useAI = true
		log.Printf("OpenAI API key found, using AI-generated data with model: %s", g.model)
	} else {
		log.Println("No OPENAI_API_KEY found, using static fallback data")
	}

	return g
}

// Generate produces count records per resource, keyed by plural name.
// Resources are generated in parallel when AI is enabled; any per-resource
// failure falls back to static data for that resource.
func (g *Generator) Generate(ctx context.Context, resources []schema.ResourceDescriptor, count int) map[string][]map[string]any {
	data := make(map[string][]map[string]any, len(resources))

	if !g.useAI {
		for _, res := range resources {
			data[res.PluralName] = staticRecords(res, count)
		}
		return data
	}

	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, res := range resources {
		wg.Add(1)
		go func(res schema.ResourceDescriptor) {
			defer wg.Done()

			records, err := g.generateRecords(ctx, res, count)
			if err != nil {
				log.Printf("  AI generation for %s failed (%v), using static data", res.PluralName, err)
				records = staticRecords(res, count)
			} else {
				log.Printf("  Generated %d %s", len(records), res.PluralName)
			}

			mu.Lock()
			data[res.PluralName] = records
			mu.Unlock()
		}(res)
	}
	wg.Wait()

	return data
}

// Apply inserts generated data into the store, returning per-resource counts.
func Apply(store *sandbox.Store, data map[string][]map[string]any) (map[string]int, error) {
	counts := make(map[string]int, len(data))
	for resource, records := range data {
		for _, record := range records {
			if _, err := store.Insert(resource, record); err != nil {
				return counts, fmt.Errorf("failed to seed %s: %w", resource, err)
			}
			counts[resource]++
		}
	}
	return counts, nil
}

func (g *Generator) generateRecords(ctx context.Context, res schema.ResourceDescriptor, count int) ([]map[string]any, error) {
	prompt := buildPrompt(res, count)

	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are a data generator. Always respond with valid JSON only, no markdown or explanation.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from OpenAI")
	}

	var records []map[string]any
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &records); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}
	return records, nil
}

// buildPrompt describes one resource's fields so the model can generate
// realistic records for it.
func buildPrompt(res schema.ResourceDescriptor, count int) string {
	var fields []string
	for _, f := range res.Fields {
		if f.Name == "id" {
			continue // ids are assigned by the store
		}
		switch {
		case f.IsRelation:
			fields = append(fields, fmt.Sprintf("%s (reference id to a %s, use short placeholder ids)", f.Name, f.RelationTarget))
		case f.IsEnum():
			fields = append(fields, fmt.Sprintf("%s (one of: %s)", f.Name, strings.Join(f.EnumValues, ", ")))
		default:
			fields = append(fields, fmt.Sprintf("%s (%s)", f.Name, f.BaseType))
		}
	}

	return fmt.Sprintf(`Generate %d realistic sample records for a %q resource.

Each record is a JSON object with these fields:
- %s

Return a JSON array of %d objects. Make the values varied and realistic.
Do not include an "id" field.`, count, res.Name, strings.Join(fields, "\n- "), count)
}
