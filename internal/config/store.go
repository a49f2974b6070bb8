// ABOUTME: Layered on-disk JSON config store split into settings and credentials.
// ABOUTME: Supports dotted-path get/set/delete, flattened listing, and reset.

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	settingsFile    = "config.json"
	credentialsFile = "credentials.json"

	// Credentials are owner-only; settings are plain files.
	credentialsMode = 0o600
	settingsMode    = 0o644
	dirMode         = 0o700
)

// apiKeyField is the single key stored in credentials.json and merged into
// the loaded config. It never appears in config.json.
const apiKeyField = "apiKey"

// DefaultDir returns the per-application config directory, ~/.<cliName>.
func DefaultDir(cliName string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "." + cliName
	}
	return filepath.Join(home, "."+cliName)
}

// Load reads the settings tree merged with the stored API key, if any.
// Malformed JSON in either file is treated as absent: a corrupt settings
// file never hides the credential, and vice versa.
func Load(dir string) map[string]any {
	cfg := readJSONFile(filepath.Join(dir, settingsFile))
	delete(cfg, apiKeyField) // never trust a credential smuggled into settings

	creds := readJSONFile(filepath.Join(dir, credentialsFile))
	if key, ok := creds[apiKeyField].(string); ok && key != "" {
		cfg[apiKeyField] = key
	}
	return cfg
}

// Save splits the config back onto disk: the API key goes to
// credentials.json with owner-only permissions, everything else to
// config.json. The directory is created if missing.
func Save(dir string, cfg map[string]any) error {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settings := make(map[string]any, len(cfg))
	for k, v := range cfg {
		if k == apiKeyField {
			continue
		}
		settings[k] = v
	}
	if err := writeJSONFile(filepath.Join(dir, settingsFile), settings, settingsMode); err != nil {
		return err
	}

	if key, ok := cfg[apiKeyField].(string); ok && key != "" {
		return SaveAPIKey(dir, key)
	}
	// No credential in the tree means none on disk: a stale credentials
	// file would resurrect a deleted key on the next Load.
	return DeleteCredentials(dir)
}

// APIKey returns the stored credential, if one is persisted.
func APIKey(dir string) (string, bool) {
	creds := readJSONFile(filepath.Join(dir, credentialsFile))
	key, ok := creds[apiKeyField].(string)
	return key, ok && key != ""
}

// SaveAPIKey persists the credential alone, creating the directory if needed.
func SaveAPIKey(dir, key string) error {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return writeJSONFile(filepath.Join(dir, credentialsFile), map[string]any{apiKeyField: key}, credentialsMode)
}

// HasCredentials reports whether a credentials file exists.
func HasCredentials(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, credentialsFile))
	return err == nil
}

// DeleteCredentials removes the credentials file. Removing an absent file
// is not an error, so logout is idempotent.
func DeleteCredentials(dir string) error {
	err := os.Remove(filepath.Join(dir, credentialsFile))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove credentials: %w", err)
	}
	return nil
}

// Get resolves a dotted path through the loaded config tree.
func Get(dir, dottedKey string) (any, bool) {
	node := any(Load(dir))
	for _, part := range strings.Split(dottedKey, ".") {
		m, ok := node.(map[string]any)
		if !ok {
			return nil, false
		}
		node, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return node, true
}

// Set writes a value at a dotted path, creating intermediate objects as
// needed. An intermediate that exists but is not an object is replaced.
// Paths nested under the credential key are rejected: the API key is a
// string, never an object.
func Set(dir, dottedKey string, value any) error {
	cfg := Load(dir)
	parts := strings.Split(dottedKey, ".")
	if parts[0] == apiKeyField && len(parts) > 1 {
		return fmt.Errorf("%s is a credential, not an object", apiKeyField)
	}

	node := cfg
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			child = map[string]any{}
			node[part] = child
		}
		node = child
	}
	node[parts[len(parts)-1]] = value

	return Save(dir, cfg)
}

// Delete removes the value at a dotted path. Deleting a missing path is
// reported via the bool return, not an error.
func Delete(dir, dottedKey string) (bool, error) {
	cfg := Load(dir)
	parts := strings.Split(dottedKey, ".")

	node := cfg
	for _, part := range parts[:len(parts)-1] {
		child, ok := node[part].(map[string]any)
		if !ok {
			return false, nil
		}
		node = child
	}
	last := parts[len(parts)-1]
	if _, ok := node[last]; !ok {
		return false, nil
	}
	delete(node, last)

	if err := Save(dir, cfg); err != nil {
		return false, err
	}
	return true, nil
}

// List flattens the config tree into sorted "key.path = value" lines.
// Plain objects are recursed into; arrays and scalars are leaves.
func List(dir string) []string {
	var lines []string
	flatten("", Load(dir), &lines)
	sort.Strings(lines)
	return lines
}

// Reset overwrites the settings file with an empty object. Credentials are
// deliberately untouched: settings and secrets have separate lifecycles.
func Reset(dir string) error {
	if err := os.MkdirAll(dir, dirMode); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return writeJSONFile(filepath.Join(dir, settingsFile), map[string]any{}, settingsMode)
}

func flatten(prefix string, node any, lines *[]string) {
	m, ok := node.(map[string]any)
	if !ok {
		*lines = append(*lines, fmt.Sprintf("%s = %v", prefix, node))
		return
	}
	for key, value := range m {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		flatten(path, value, lines)
	}
}

func readJSONFile(path string) map[string]any {
	data, err := os.ReadFile(path)
	if err != nil {
		return map[string]any{}
	}
	var m map[string]any
	if err := json.Unmarshal(data, &m); err != nil || m == nil {
		return map[string]any{}
	}
	return m
}

func writeJSONFile(path string, value map[string]any, mode os.FileMode) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(data, '\n'), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	// WriteFile only applies the mode on create; enforce it on rewrite too.
	return os.Chmod(path, mode)
}
