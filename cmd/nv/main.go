// ABOUTME: Entry point for the NV schema-driven resource CLI.
// ABOUTME: Wires the dispatcher, default HTTP transport, sandbox server, and seeding.

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"

	"github.com/2389/nv/internal/config"
	"github.com/2389/nv/internal/runner"
	"github.com/2389/nv/internal/sandbox"
	"github.com/2389/nv/internal/seed"
	"github.com/2389/nv/internal/transport"
)

const defaultAPIURL = "http://localhost:4949"

var (
	port      string
	dbPath    string
	seedCount int
	seedReset bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "nv",
		Short: "NV - schema-driven resource CLI",
		Long: `NV interprets commands against a declarative nouns/verbs schema.

Every resource in the schema gets list/get/create/update/delete commands
plus its declared custom actions:

  nv customer list --limit 10
  nv order create --data '{"total": 19.99, "status": "pending"}'
  nv order pay ord_1 --tracking T1

Authentication and settings:
  nv login --api-key <key>       Store an API key (~/.nv/credentials.json)
  nv config set api.url <url>    Point the CLI at an API server

Local development:
  nv serve                       Run a sandbox API backed by SQLite
  nv seed                        Populate the sandbox with sample data

The schema is read from nv.json in the working directory (override with
NV_SCHEMA); without one, a built-in example schema is used.`,
		Args:               cobra.ArbitraryArgs,
		DisableFlagParsing: true,
		SilenceUsage:       true,
		SilenceErrors:      true,
		RunE:               runCLI,
	}
	// The dispatcher owns 'help' and 'completion'; keep cobra's versions
	// out of the way.
	rootCmd.SetHelpCommand(&cobra.Command{Use: "no-help", Hidden: true})
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	defaultDBPath := getDefaultDBPath()

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the sandbox API server",
		Long: `Start a local sandbox API serving the schema's resources over HTTP.

The sandbox stores records in SQLite and exposes, per resource:
  GET/POST       /{plural}
  GET/PATCH/DELETE /{plural}/{id}
  POST           /{plural}/{id}/{verb}

Requests require any non-empty bearer token, so 'nv login' followed by
resource commands works against it out of the box.

Environment Variables:
  NV_PORT      Server port (default: 4949)
  NV_DB_PATH   Database path`,
		RunE: runServe,
	}
	serveCmd.Flags().StringVarP(&port, "port", "p", getEnv("NV_PORT", "4949"), "Port to listen on")
	serveCmd.Flags().StringVarP(&dbPath, "db", "d", defaultDBPath, "Database path")

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the sandbox with sample data",
		Long: `Populate the sandbox database with sample records for every resource.

AI-Powered Generation:
  Set OPENAI_API_KEY to generate realistic records from the field schema.
  Falls back to deterministic static data if no API key is provided.

Note: seed is not idempotent. Use --reset to wipe records first.`,
		RunE: runSeed,
	}
	seedCmd.Flags().StringVarP(&dbPath, "db", "d", defaultDBPath, "Database path")
	seedCmd.Flags().IntVarP(&seedCount, "count", "n", 5, "Records per resource")
	seedCmd.Flags().BoolVar(&seedReset, "reset", false, "Wipe existing records first")

	rootCmd.AddCommand(serveCmd, seedCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runCLI(cmd *cobra.Command, args []string) error {
	manifest, err := loadManifest()
	if err != nil {
		return err
	}

	r := runner.New(runner.Options{
		Name:    manifest.Name,
		Version: manifest.Version,
		Schema:  manifest.Resources,
		Verbs:   manifest.Verbs,
	})

	configDir := os.Getenv("NV_CONFIG_DIR")
	if configDir == "" {
		configDir = config.DefaultDir(manifest.Name)
	}

	// A transport is always injected, so the auth default must be made
	// explicit here rather than inferred from its presence.
	authenticated := config.HasCredentials(configDir)
	apiKey, _ := config.APIKey(configDir)

	result, err := r.Execute(cmd.Context(), args, runner.ExecuteOptions{
		Transport:     transport.New(apiURL(configDir), apiKey, nil),
		Authenticated: &authenticated,
		ConfigDir:     configDir,
	})
	if err != nil {
		return err
	}

	printResult(result)
	if !result.Success {
		os.Exit(1)
	}
	return nil
}

func apiURL(configDir string) string {
	if url := os.Getenv("NV_API_URL"); url != "" {
		return url
	}
	if value, ok := config.Get(configDir, "api.url"); ok {
		if url, isString := value.(string); isString && url != "" {
			return url
		}
	}
	return defaultAPIURL
}

func printResult(result runner.CommandResult) {
	if result.Output != "" {
		fmt.Println(result.Output)
	}
	if result.Message != "" {
		fmt.Println(result.Message)
	}
	if result.Error != "" {
		fmt.Fprintf(os.Stderr, "Error: %s\n", result.Error)
	}
	if result.Suggestion != "" {
		fmt.Fprintf(os.Stderr, "Did you mean %q?\n", result.Suggestion)
	}
	if result.Usage != "" {
		fmt.Fprintf(os.Stderr, "Usage: nv %s\n", result.Usage)
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	var err error
	dbPath, err = validateAndCleanDBPath(dbPath)
	if err != nil {
		return err
	}

	manifest, err := loadManifest()
	if err != nil {
		return err
	}

	store, err := sandbox.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}

	r := runner.New(runner.Options{
		Name:    manifest.Name,
		Version: manifest.Version,
		Schema:  manifest.Resources,
		Verbs:   manifest.Verbs,
	})

	addr := ":" + port
	log.Printf("NV sandbox listening on %s", addr)
	log.Printf("Database: %s", dbPath)
	return http.ListenAndServe(addr, sandbox.Handler(store, r.Resources()))
}

func runSeed(cmd *cobra.Command, args []string) error {
	var err error
	dbPath, err = validateAndCleanDBPath(dbPath)
	if err != nil {
		return err
	}

	manifest, err := loadManifest()
	if err != nil {
		return err
	}

	store, err := sandbox.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	if seedReset {
		if err := store.Wipe(); err != nil {
			return fmt.Errorf("failed to wipe records: %w", err)
		}
		log.Println("Wiped existing records")
	}

	r := runner.New(runner.Options{
		Name:    manifest.Name,
		Version: manifest.Version,
		Schema:  manifest.Resources,
		Verbs:   manifest.Verbs,
	})

	generator := seed.NewGenerator()
	data := generator.Generate(context.Background(), r.Resources(), seedCount)
	counts, err := seed.Apply(store, data)
	if err != nil {
		return err
	}

	total := 0
	for resource, count := range counts {
		log.Printf("%s: %d records", resource, count)
		total += count
	}
	log.Printf("Seeding complete! Created %d total records", total)
	return nil
}

// validateAndCleanDBPath validates and cleans a database path.
func validateAndCleanDBPath(path string) (string, error) {
	cleanPath := strings.TrimSpace(path)
	cleanPath = filepath.Clean(cleanPath)

	if cleanPath == "" || cleanPath == "." || cleanPath == "/" {
		return "", fmt.Errorf("database path cannot be empty, '.', or '/'")
	}
	if runtime.GOOS == "windows" && len(cleanPath) == 2 && cleanPath[1] == ':' {
		return "", fmt.Errorf("database path cannot be a bare drive letter")
	}
	if strings.Contains(cleanPath, "..") {
		return "", fmt.Errorf("database path cannot contain '..'")
	}

	return cleanPath, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

// getDefaultDBPath returns the default database path.
// Priority: NV_DB_PATH env var > ./nv.db (if present) > XDG data dir.
func getDefaultDBPath() string {
	if envPath := strings.TrimSpace(os.Getenv("NV_DB_PATH")); envPath != "" && envPath != "." {
		return filepath.Clean(envPath)
	}

	cwdPath := "./nv.db"
	if _, err := os.Stat(cwdPath); err == nil {
		return cwdPath
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil || homeDir == "" || homeDir == "/" {
			return cwdPath
		}
		if runtime.GOOS == "windows" {
			dataHome = os.Getenv("LOCALAPPDATA")
			if dataHome == "" {
				dataHome = filepath.Join(homeDir, "AppData", "Local")
			}
		} else {
			dataHome = filepath.Join(homeDir, ".local", "share")
		}
	}

	dataDir := filepath.Join(dataHome, "nv")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return cwdPath
	}
	return filepath.Join(dataDir, "nv.db")
}
