package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/debug"
	"strings"
	"syscall"
	"time"

	"github.com/mattjoyce/taskgate/internal/api"
	"github.com/mattjoyce/taskgate/internal/auth"
	"github.com/mattjoyce/taskgate/internal/config"
	"github.com/mattjoyce/taskgate/internal/log"
	"github.com/mattjoyce/taskgate/internal/mcpserver"
	"github.com/mattjoyce/taskgate/internal/task"
)

var (
	version   = "0.1.0-dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	os.Exit(runCLI(os.Args[1:]))
}

func runCLI(cliArgs []string) int {
	if len(cliArgs) < 1 {
		printUsage()
		return 1
	}

	cmd := cliArgs[0]
	args := cliArgs[1:]

	if cmd == "--version" {
		return runVersion(args)
	}

	switch cmd {
	// --- NOUNS ---
	case "system":
		return runSystemNoun(args)
	case "config":
		return runConfigNoun(args)

	// --- ROOT ALIASES ---
	case "serve", "start":
		if hasHelpFlag(args) {
			printSystemStartHelp()
			return 0
		}
		return runStart(args)
	case "version":
		return runVersion(args)
	case "help", "--help", "-h":
		printUsage()
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", cmd)
		printUsage()
		return 1
	}
}

type versionInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
}

func runVersion(args []string) int {
	fs := flag.NewFlagSet("version", flag.ContinueOnError)
	jsonOut := fs.Bool("json", false, "Output version metadata as JSON")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	if fs.NArg() > 0 {
		fmt.Fprintln(os.Stderr, "Usage: taskgate version [--json]")
		return 1
	}

	info := currentVersionInfo()

	if *jsonOut {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to render version JSON: %v\n", err)
			return 1
		}
		fmt.Println(string(data))
		return 0
	}

	fmt.Printf("taskgate %s\n", info.Version)
	fmt.Printf("commit: %s\n", info.Commit)
	fmt.Printf("built_at: %s\n", info.BuildTime)
	return 0
}

func currentVersionInfo() versionInfo {
	info := versionInfo{
		Version:   strings.TrimSpace(version),
		Commit:    "unknown",
		BuildTime: "unknown",
	}

	if info.Version == "" {
		info.Version = "0.0.0-dev"
	}

	resolvedCommit := strings.TrimSpace(gitCommit)
	if resolvedCommit == "" || resolvedCommit == "unknown" {
		resolvedCommit = strings.TrimSpace(readBuildSetting("vcs.revision"))
	}
	if resolvedCommit != "" {
		info.Commit = shortenCommit(resolvedCommit)
	}

	resolvedBuildTime := strings.TrimSpace(buildDate)
	if resolvedBuildTime == "" || resolvedBuildTime == "unknown" {
		resolvedBuildTime = strings.TrimSpace(readBuildSetting("vcs.time"))
	}
	if normalizedBuildTime, ok := normalizeBuildTimeUTC(resolvedBuildTime); ok {
		info.BuildTime = normalizedBuildTime
	}

	return info
}

func shortenCommit(commit string) string {
	if len(commit) <= 12 {
		return commit
	}
	return commit[:12]
}

func normalizeBuildTimeUTC(raw string) (string, bool) {
	if raw == "" || raw == "unknown" {
		return "", false
	}

	t, err := time.Parse(time.RFC3339Nano, raw)
	if err != nil {
		return "", false
	}

	return t.UTC().Format(time.RFC3339), true
}

func readBuildSetting(key string) string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return ""
	}
	for _, setting := range info.Settings {
		if setting.Key == key {
			return setting.Value
		}
	}
	return ""
}

func printUsage() {
	fmt.Print(`taskgate - Task execution gateway for LLM agents

Usage:
  taskgate <noun> <action> [flags]

Core Resources (Nouns):
  system    Service lifecycle
  config    System configuration and integrity

System Commands:
  system start      Start the service in foreground (stdio or http transport)

Config Commands:
  config lock       Authorize current state (update integrity hashes)
  config check      Validate syntax, policy, and integrity

General:
  serve             Alias for 'system start'
  --version         Show version information
  version           Show version information
  help              Show this help message

Use 'taskgate <noun> help' for resource-specific flags.
`)
}

// --- NOUN DISPATCHERS ---

func runSystemNoun(args []string) int {
	if len(args) < 1 {
		printSystemNounHelp(os.Stderr)
		return 1
	}
	if isHelpToken(args[0]) {
		printSystemNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "start":
		if hasHelpFlag(actionArgs) {
			printSystemStartHelp()
			return 0
		}
		return runStart(actionArgs)
	case "help":
		printSystemNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown system action: %s\n", action)
		return 1
	}
}

func runConfigNoun(args []string) int {
	if len(args) < 1 {
		printConfigNounHelp(os.Stderr)
		return 1
	}

	if isHelpToken(args[0]) {
		printConfigNounHelp(os.Stdout)
		return 0
	}

	action := args[0]
	actionArgs := args[1:]

	switch action {
	case "lock":
		if hasHelpFlag(actionArgs) {
			printConfigLockHelp()
			return 0
		}
		return runConfigLock(actionArgs)
	case "check":
		if hasHelpFlag(actionArgs) {
			printConfigCheckHelp()
			return 0
		}
		return runConfigCheck(actionArgs)
	case "help":
		printConfigNounHelp(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown config action: %s\n", action)
		return 1
	}
}

func isHelpToken(token string) bool {
	return token == "help" || token == "--help" || token == "-h"
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "--help" || arg == "-h" {
			return true
		}
	}
	return false
}

func printSystemNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: taskgate system <action>")
	fmt.Fprintln(w, "Actions: start")
}

func printConfigNounHelp(w *os.File) {
	fmt.Fprintln(w, "Usage: taskgate config <action> [flags]")
	fmt.Fprintln(w, "Actions: lock, check")
}

func printSystemStartHelp() {
	fmt.Println("Usage: taskgate system start [--config PATH] [--transport stdio|http]")
	fmt.Println("Start the task gateway in the foreground.")
	fmt.Println("")
	fmt.Println("Transports:")
	fmt.Println("  stdio   Serve MCP over stdin/stdout (default). The HTTP API also")
	fmt.Println("          starts when api.enabled is true in the configuration.")
	fmt.Println("  http    Serve only the HTTP API.")
}

func printConfigLockHelp() {
	fmt.Println("Usage: taskgate config lock [--config PATH] [-v|--verbose] [--dry-run]")
	fmt.Println("Authorize current configuration state by regenerating integrity hashes.")
}

func printConfigCheckHelp() {
	fmt.Println("Usage: taskgate config check [--config PATH] [--json]")
	fmt.Println("Validate configuration syntax, policy, and integrity.")
}

// --- ACTION IMPLEMENTATIONS ---

func resolveConfigPath(configPath string) (string, error) {
	if configPath != "" {
		return configPath, nil
	}
	return config.DiscoverConfigPath()
}

func runStart(args []string) int {
	fs := flag.NewFlagSet("start", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to configuration file or directory")
	transport := fs.String("transport", "stdio", "Serving transport (stdio or http)")
	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to parse flags: %v\n", err)
		return 1
	}

	if *transport != "stdio" && *transport != "http" {
		fmt.Fprintf(os.Stderr, "Unknown transport: %s (want stdio or http)\n", *transport)
		return 1
	}

	resolved, err := resolveConfigPath(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	cfg, err := config.Load(resolved)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return 1
	}

	log.Setup(cfg.Service.LogLevel, cfg.Service.LogFormat)
	logger := log.WithComponent("main")
	logger.Info("taskgate starting", "version", version, "config", resolved, "transport", *transport)

	registry, err := task.NewDefaultRegistry(cfg.Tasks.AllowedCommands)
	if err != nil {
		logger.Error("failed to build action registry", "error", err)
		return 1
	}
	dispatcher := task.NewDispatcher(registry)
	logger.Info("action registry ready", "actions", registry.Actions())

	definitionPath := cfg.Definition.Path
	if !filepath.IsAbs(definitionPath) {
		// Resolve relative to the config directory so the service works
		// regardless of the process working directory.
		base := resolved
		if stat, statErr := os.Stat(base); statErr == nil && !stat.IsDir() {
			base = filepath.Dir(base)
		}
		definitionPath = filepath.Join(base, cfg.Definition.Path)
	}
	if _, err := os.Stat(definitionPath); err != nil {
		logger.Error("definition document not found", "path", definitionPath, "error", err)
		return 1
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 2)
	done := make(chan struct{})

	httpEnabled := *transport == "http" || cfg.API.Enabled
	if httpEnabled {
		tokens := make([]auth.TokenConfig, 0, len(cfg.API.Auth.Tokens))
		for _, t := range cfg.API.Auth.Tokens {
			tokens = append(tokens, auth.TokenConfig{
				Token:  t.Token,
				Scopes: t.Scopes,
			})
		}
		apiConfig := api.Config{
			Listen: cfg.API.Listen,
			APIKey: cfg.API.Auth.APIKey,
			Tokens: tokens,
		}
		apiServer := api.New(apiConfig, dispatcher, registry.Actions(), func() ([]byte, error) {
			return os.ReadFile(definitionPath)
		}, log.WithComponent("api"))
		go func() {
			if err := apiServer.Start(ctx); err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("api: %w", err)
			}
		}()
		logger.Info("API server enabled", "listen", cfg.API.Listen)
	}

	if *transport == "stdio" {
		mcpServer := mcpserver.New(mcpserver.Config{
			Name:           cfg.Service.Name,
			Version:        version,
			DefinitionPath: definitionPath,
		}, dispatcher, log.WithComponent("mcp"))
		go func() {
			err := mcpServer.Run(ctx)
			if err != nil && err != context.Canceled {
				errCh <- fmt.Errorf("mcp: %w", err)
				return
			}
			// Client closed stdin; shut down cleanly.
			close(done)
		}()
	}

	logger.Info("taskgate running")

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", "signal", sig)
		cancel()
	case <-done:
		logger.Info("stdio transport closed")
		cancel()
	case err := <-errCh:
		logger.Error("component failed", "error", err)
		cancel()
		return 1
	}

	logger.Info("taskgate stopped")
	return 0
}

func runConfigLock(args []string) int {
	var configPath string
	var verbose, verboseShort, dryRun bool

	fs := flag.NewFlagSet("lock", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	fs.BoolVar(&verbose, "verbose", false, "Verbose output")
	fs.BoolVar(&verboseShort, "v", false, "Verbose output")
	fs.BoolVar(&dryRun, "dry-run", false, "Dry run")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}
	isVerbose := verbose || verboseShort

	resolved, err := resolveConfigPath(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	configDir := resolved
	files := []string{"config.yaml"}
	if stat, statErr := os.Stat(resolved); statErr == nil && !stat.IsDir() {
		configDir = filepath.Dir(resolved)
		files = []string{filepath.Base(resolved)}
	}

	if isVerbose {
		fmt.Printf("Processing directory: %s\n", configDir)
		for _, f := range files {
			hash, hashErr := config.ComputeBlake3Hash(filepath.Join(configDir, f))
			if hashErr != nil {
				fmt.Printf("  SKIP %s: not found\n", f)
				continue
			}
			fmt.Printf("  HASH %s: %s\n", f, hash)
		}
	}

	if dryRun {
		if isVerbose {
			fmt.Printf("  DRY-RUN .checksums: %s (not written)\n", filepath.Join(configDir, ".checksums"))
		}
		fmt.Println("Dry run completed (no files written).")
		return 0
	}

	if err := config.GenerateChecksums(configDir, files); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to lock config in %s: %v\n", configDir, err)
		return 1
	}

	if isVerbose {
		fmt.Printf("  WROTE .checksums: %s\n", filepath.Join(configDir, ".checksums"))
	}
	fmt.Printf("Successfully locked configuration in %s\n", configDir)
	return 0
}

type checkResult struct {
	Valid  bool     `json:"valid"`
	Config string   `json:"config"`
	Errors []string `json:"errors,omitempty"`
}

func runConfigCheck(args []string) int {
	var configPath string
	var jsonOut bool

	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.StringVar(&configPath, "config", "", "Path to configuration")
	fs.BoolVar(&jsonOut, "json", false, "Output in JSON")

	if err := fs.Parse(args); err != nil {
		fmt.Fprintf(os.Stderr, "Flag error: %v\n", err)
		return 1
	}

	resolved, err := resolveConfigPath(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to discover config: %v\n", err)
		return 1
	}

	result := checkResult{Valid: true, Config: resolved}
	if _, err := config.Load(resolved); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
	}

	if jsonOut {
		data, _ := json.MarshalIndent(result, "", "  ")
		fmt.Println(string(data))
	} else if result.Valid {
		fmt.Println("Status: Configuration check PASSED.")
	} else {
		fmt.Println("Status: Configuration check FAILED.")
		for _, e := range result.Errors {
			fmt.Printf("  ERROR %s\n", e)
		}
	}

	if !result.Valid {
		return 1
	}
	return 0
}
