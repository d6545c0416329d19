package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"os/signal"
	"runtime"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/igusev/sitefind/internal/config"
	"github.com/igusev/sitefind/internal/engine"
	"github.com/igusev/sitefind/internal/logger"
	"github.com/igusev/sitefind/internal/source"
	"github.com/igusev/sitefind/internal/tui"
)

// Build-time variables (set via ldflags)
var (
	version   = "dev"     // Version from git tag or "dev"
	commit    = "unknown" // Git commit hash (used in version output)
	buildTime = "unknown" // Build timestamp (used in version output)
)

// Platform constants for runtime.GOOS
const (
	platformDarwin  = "darwin"
	platformLinux   = "linux"
	platformWindows = "windows"
)

var (
	configFile    string // Explicit config file path
	indexSource   string // Overrides index.source
	limitResults  int    // Overrides search.limit
	limitSet      bool   // --limit was given explicitly
	jsonOutput    bool   // Print results as JSON
	verbose       bool   // Flag to enable verbose logging
	openResult    bool   // Open the chosen result in a browser
	watchIndex    bool   // Reload the TUI when the index file changes
	stripMarkdown bool   // Search the plain text of Markdown content
)

var rootCmd = &cobra.Command{
	Use:   "sitefind [flags] [query...]",
	Short: "Fuzzy search for a static site's search index",
	Long: `sitefind searches the search-index.json a static portfolio or blog
publishes. Queries tolerate typos and match titles, descriptions, content,
tags and categories.

Examples:
  sitefind                       # Interactive search overlay
  sitefind react dashboard       # Direct search
  sitefind -n 3 --json hooks     # Top 3 results as JSON
  sitefind -o kubernetes         # Open the best match in a browser
  sitefind -i https://example.com/search-index.json go

Configuration:
  ~/.config/sitefind/config.yaml, ./sitefind.yaml or --config.
  Every key can be set from the environment, e.g.
    SITEFIND_INDEX_SOURCE=./public/search-index.json
    SITEFIND_SITE_BASE_URL=https://example.com`,
	RunE: runSearch,
	// Accept any number of arguments as search query
	Args: cobra.ArbitraryArgs,
	// Don't suggest commands when args don't match subcommands
	SuggestionsMinimumDistance: 2,
}

// loadConfig loads the configuration and applies command line overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	flags := cmd.Flags()
	if flags.Changed("index") {
		cfg.Index.Source = indexSource
	}
	limitSet = flags.Changed("limit")
	if limitSet && limitResults > 0 {
		cfg.Search.Limit = limitResults
	}
	if flags.Changed("watch") {
		cfg.Index.Watch = watchIndex
	}
	if flags.Changed("markdown") {
		cfg.Index.StripMarkdown = stripMarkdown
	}
	return cfg, nil
}

// engineOptions maps the search configuration onto engine options
func engineOptions(cfg *config.Config) engine.Options {
	opts := engine.DefaultOptions()
	opts.Threshold = cfg.Search.Threshold
	opts.Distance = cfg.Search.Distance
	opts.MinMatchCharLength = cfg.Search.MinMatchLength
	opts.SnippetRadius = cfg.Search.SnippetRadius
	opts.LoadTimeout = cfg.Index.GetTimeout()
	opts.StripMarkdown = cfg.Index.StripMarkdown
	return opts
}

// newEngine creates an engine for the configured index source
func newEngine(cfg *config.Config) (*engine.Engine, source.Source, error) {
	src, err := source.New(cfg.Index.Source, cfg.Index.GetTimeout())
	if err != nil {
		return nil, nil, fmt.Errorf("invalid index source: %w", err)
	}
	logger.Debug("Index source: %s", src)
	return engine.New(src, engineOptions(cfg)), src, nil
}

// openEngine creates and loads the engine, for commands that need the corpus up front
func openEngine(ctx context.Context, cfg *config.Config) (*engine.Engine, error) {
	eng, _, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	if err := eng.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("search unavailable: %w", err)
	}
	logger.Debug("Loaded %d documents in %v", eng.DocumentCount(), time.Since(start))
	return eng, nil
}

// runSearch handles the default search behavior
func runSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Join all args to support multi-word queries: "sitefind react hooks"
	query := strings.TrimSpace(strings.Join(args, " "))
	ctx := commandContext(cmd)
	if query == "" && !jsonOutput {
		return runInteractive(ctx, cfg)
	}

	eng, err := openEngine(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeEngine(eng)

	return runDirect(ctx, cmd.OutOrStdout(), eng, cfg, query)
}

// runDirect prints ranked results for query and optionally opens the best one
func runDirect(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, query string) error {
	results := eng.Search(ctx, query, cfg.Search.Limit)

	if jsonOutput {
		return outputJSON(out, newJSONSearchResult(query, results, cfg))
	}

	printResults(out, query, results, cfg)

	if openResult && len(results) > 0 {
		link := cfg.Site.Resolve(results[0].Document.URL)
		logger.Debug("Opening browser with URL: %s", link)
		if err := openBrowser(link); err != nil {
			logger.Warn("failed to open browser: %v", err)
		}
	}
	return nil
}

// runInteractive launches the TUI. The index loads in the background so the
// launcher appears immediately.
func runInteractive(ctx context.Context, cfg *config.Config) error {
	eng, src, err := newEngine(cfg)
	if err != nil {
		return err
	}
	defer closeEngine(eng)

	m := tui.New(eng, tui.Options{
		Limit:      cfg.Search.Limit,
		Recent:     cfg.UI.Recent,
		Debounce:   cfg.UI.GetDebounce(),
		SourceName: sourceName(cfg),
		Version:    version,
	})
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	watchCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if file, ok := src.(*source.File); ok && cfg.Index.Watch {
		go watchAndReload(watchCtx, file.Path, eng, p)
	}

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("failed to run TUI: %w", err)
	}

	if model, ok := finalModel.(tui.Model); ok {
		if selected := model.Selected(); selected != "" {
			link := cfg.Site.Resolve(selected)

			logger.Debug("Opening browser with URL: %s", link)
			if err := openBrowser(link); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to open browser: %v\n", err)
			}

			// Output URL to stdout (for copying or script usage)
			fmt.Println(link)
		}
	}
	return nil
}

// watchAndReload reloads the engine whenever the index file changes
func watchAndReload(ctx context.Context, path string, eng *engine.Engine, p *tea.Program) {
	err := source.Watch(ctx, path, func() {
		if err := eng.Reload(ctx); err != nil {
			logger.Debug("Reload failed: %v", err)
			return
		}
		p.Send(tui.IndexChangedMsg{})
	})
	if err != nil && ctx.Err() == nil {
		logger.Debug("Index watch stopped: %v", err)
	}
}

// sourceName is the short label shown in the TUI header
func sourceName(cfg *config.Config) string {
	if cfg.Site.BaseURL != "" {
		return strings.TrimSuffix(strings.TrimPrefix(strings.TrimPrefix(cfg.Site.BaseURL, "https://"), "http://"), "/")
	}
	return cfg.Index.Source
}

// commandContext returns the command's context, or Background when it runs
// outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func closeEngine(eng *engine.Engine) {
	if err := eng.Close(); err != nil {
		logger.Debug("Failed to close engine: %v", err)
	}
}

// openBrowser opens the given URL in the default browser (cross-platform)
func openBrowser(url string) error {
	if url == "" {
		return fmt.Errorf("empty URL")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var cmd *exec.Cmd

	switch runtime.GOOS {
	case platformDarwin: // macOS
		cmd = exec.CommandContext(ctx, "open", url)
	case platformLinux:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	case platformWindows:
		// Empty string before URL is important: start interprets first quoted arg as window title
		cmd = exec.CommandContext(ctx, "cmd", "/c", "start", "", url)
	default:
		return fmt.Errorf("unsupported platform: %s", runtime.GOOS)
	}

	return cmd.Run()
}

// registerFlags binds the global flags of cmd to the package flag variables
func registerFlags(cmd *cobra.Command) {
	pf := cmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file (default ~/.config/sitefind/config.yaml)")
	pf.StringVarP(&indexSource, "index", "i", "", "search index path or URL")
	pf.IntVarP(&limitResults, "limit", "n", config.DefaultLimit, "maximum number of results")
	pf.BoolVar(&jsonOutput, "json", false, "print results as JSON")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	pf.BoolVarP(&openResult, "open", "o", false, "open the chosen result in a browser")
	pf.BoolVar(&watchIndex, "watch", false, "reload when the index file changes (interactive mode)")
	pf.BoolVar(&stripMarkdown, "markdown", false, "treat document content as Markdown")
}

func init() {
	// Set version info
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildTime)

	registerFlags(rootCmd)

	// Set up verbose mode before command execution
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		logger.SetVerbose(verbose)
		logger.Debug("Verbose mode enabled")
	}
}

func main() {
	// Enable interspersed flags (flags can appear anywhere in the command line)
	rootCmd.Flags().SetInterspersed(true)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		logger.Error("%v", err)
		stop()
		os.Exit(1)
	}
}
