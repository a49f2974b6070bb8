// ABOUTME: Loads the nouns/verbs schema manifest that drives the CLI.
// ABOUTME: Reads nv.json (or NV_SCHEMA) with a built-in example fallback.

package main

import (
	"encoding/json"
	"fmt"
	"os"
)

// Manifest is the on-disk schema document: resource name -> field name ->
// type expression, plus each resource's custom verbs.
type Manifest struct {
	Name      string                       `json:"name"`
	Version   string                       `json:"version"`
	Resources map[string]map[string]string `json:"resources"`
	Verbs     map[string][]string          `json:"verbs,omitempty"`
}

const defaultManifestPath = "nv.json"

// loadManifest reads the schema manifest from NV_SCHEMA or ./nv.json,
// falling back to the built-in example schema so the binary works out of
// the box.
func loadManifest() (*Manifest, error) {
	path := os.Getenv("NV_SCHEMA")
	explicit := path != ""
	if path == "" {
		path = defaultManifestPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && os.IsNotExist(err) {
			return defaultManifest(), nil
		}
		return nil, fmt.Errorf("failed to read schema manifest %s: %w", path, err)
	}

	var manifest Manifest
	if err := json.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("invalid schema manifest %s: %w", path, err)
	}
	if manifest.Name == "" {
		manifest.Name = "nv"
	}
	if manifest.Version == "" {
		manifest.Version = "0.0.0"
	}
	if len(manifest.Resources) == 0 {
		return nil, fmt.Errorf("schema manifest %s declares no resources", path)
	}
	return &manifest, nil
}

// defaultManifest is a small commerce schema used when no nv.json exists.
func defaultManifest() *Manifest {
	return &Manifest{
		Name:    "nv",
		Version: "0.3.0",
		Resources: map[string]map[string]string{
			"Customer": {
				"name":  "string",
				"email": "string",
				"notes": "string?",
			},
			"Product": {
				"name":     "string",
				"price":    "number",
				"category": "electronics | books | toys",
				"inStock":  "boolean?",
			},
			"Order": {
				"customer": "->Customer",
				"product":  "->Product",
				"total":    "number",
				"status":   "pending | paid | shipped | delivered",
				"tracking": "string?",
			},
		},
		Verbs: map[string][]string{
			"Order": {"pay", "ship"},
		},
	}
}
