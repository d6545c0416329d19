package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/igusev/sitefind/internal/config"
	"github.com/igusev/sitefind/internal/engine"
)

var sectionCmd = &cobra.Command{
	Use:   "section <name> <query...>",
	Short: "Search within one section, e.g. blog or project",
	Long: `Rank the documents of one section against a query.
Results are not capped by --limit and carry no snippets.

Examples:
  sitefind section blog hooks
  sitefind section project react dashboard`,
	Args: cobra.MinimumNArgs(2),
	RunE: withEngine(func(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, args []string) error {
		return runSectionQuery(ctx, out, eng, cfg, args[0], strings.Join(args[1:], " "))
	}),
}

var tagsCmd = &cobra.Command{
	Use:   "tags <tag...>",
	Short: "List documents carrying any of the given tags",
	Args:  cobra.MinimumNArgs(1),
	RunE: withEngine(func(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, args []string) error {
		return runTagsQuery(ctx, out, eng, cfg, args)
	}),
}

var suggestCmd = &cobra.Command{
	Use:   "suggest <partial>",
	Short: "Suggest document titles for a partial query",
	Args:  cobra.MinimumNArgs(1),
	RunE: withEngine(func(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, args []string) error {
		return runSuggest(ctx, out, eng, strings.Join(args, " "))
	}),
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recently dated documents",
	Args:  cobra.NoArgs,
	RunE: withEngine(func(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, args []string) error {
		return runRecent(ctx, out, eng, cfg)
	}),
}

var relatedCmd = &cobra.Command{
	Use:   "related <id>",
	Short: "List documents sharing tags with a document",
	Args:  cobra.ExactArgs(1),
	RunE: withEngine(func(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, args []string) error {
		return runRelated(ctx, out, eng, cfg, args[0])
	}),
}

// queryFunc is a subcommand body running against a loaded engine
type queryFunc func(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, args []string) error

// withEngine loads config and engine before running fn
func withEngine(fn queryFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		ctx := commandContext(cmd)

		eng, err := openEngine(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeEngine(eng)

		return fn(ctx, cmd.OutOrStdout(), eng, cfg, args)
	}
}

func runSectionQuery(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, section, query string) error {
	query = strings.TrimSpace(query)
	results := eng.SearchBySection(ctx, section, query)
	if jsonOutput {
		res := newJSONSearchResult(query, results, cfg)
		res.Limit = 0
		return outputJSON(out, res)
	}
	printResults(out, query, results, cfg)
	return nil
}

func runTagsQuery(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, tags []string) error {
	docs := eng.SearchByTags(ctx, tags)
	if jsonOutput {
		return outputJSON(out, newJSONDocumentList(docs, cfg))
	}
	printDocuments(out, docs, cfg)
	return nil
}

func runSuggest(ctx context.Context, out io.Writer, eng *engine.Engine, partial string) error {
	suggestions := eng.Suggestions(ctx, partial, limitFor(engine.DefaultSuggestionLimit))
	if jsonOutput {
		return outputJSON(out, map[string]interface{}{
			"query":       partial,
			"suggestions": suggestions,
		})
	}
	for _, s := range suggestions {
		fmt.Fprintln(out, s)
	}
	return nil
}

func runRecent(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config) error {
	docs := eng.RecentDocuments(ctx, limitFor(cfg.UI.Recent))
	if jsonOutput {
		return outputJSON(out, newJSONDocumentList(docs, cfg))
	}
	printDocuments(out, docs, cfg)
	return nil
}

func runRelated(ctx context.Context, out io.Writer, eng *engine.Engine, cfg *config.Config, id string) error {
	if _, ok := eng.Document(ctx, id); !ok {
		return fmt.Errorf("document %q not found", id)
	}

	docs := eng.RelatedDocuments(ctx, id, limitFor(engine.DefaultRelatedLimit))
	if jsonOutput {
		return outputJSON(out, newJSONDocumentList(docs, cfg))
	}
	printDocuments(out, docs, cfg)
	return nil
}

// limitFor returns --limit when given on the command line, def otherwise
func limitFor(def int) int {
	if limitSet && limitResults > 0 {
		return limitResults
	}
	return def
}

func init() {
	rootCmd.AddCommand(sectionCmd, tagsCmd, suggestCmd, recentCmd, relatedCmd)
}
