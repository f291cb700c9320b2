// Package searchcmder provides the search command for semantic search over
// stored memories.
package searchcmder

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/mnemo/pkg/config"
	"github.com/papercomputeco/mnemo/pkg/memory"
)

var (
	rankStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	scoreStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	docStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	previewStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type searchCommander struct {
	query   string
	topK    int
	filters []string
	quiet   bool

	apiTarget string
}

const searchLongDesc string = `Search stored memories via the mnemo API.

Runs a semantic search over ingested documents, returning the most relevant
segments for the query text. Requires a running mnemo server with an
embedding provider and vector store configured.

Filters restrict results to segments whose metadata matches every given
key=value pair exactly.

Use --quiet to output only document ids, one per line. This is useful for
piping into other commands like mnemo rm.

Example:
  mnemo search "how to configure logging"
  mnemo search "error handling patterns" --api-target http://localhost:8081
  mnemo search "how to configure logging" --top 10
  mnemo search "quarterly report" --filter filename=q3.txt
  mnemo rm $(mnemo search "stale notes" --quiet --top 1)`

const searchShortDesc string = "Search stored memories"

func NewSearchCmd() *cobra.Command {
	cmder := &searchCommander{}

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: searchShortDesc,
		Long:  searchLongDesc,
		Args:  cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, _ []string) error {
			configDir, _ := cmd.Flags().GetString("config-dir")
			cfger, err := config.NewConfiger(configDir)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			cfg, err := cfger.LoadConfig()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}

			if !cmd.Flags().Changed("api-target") {
				cmder.apiTarget = cfg.Client.APITarget
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cmder.query = args[0]
			return cmder.run()
		},
	}

	defaults := config.NewDefaultConfig()
	cmd.Flags().IntVarP(&cmder.topK, "top", "k", 5, "Number of results to return")
	cmd.Flags().StringArrayVarP(&cmder.filters, "filter", "f", nil, "Metadata filter as key=value (repeatable, all must match)")
	cmd.Flags().BoolVarP(&cmder.quiet, "quiet", "q", false, "Output only document ids, one per line (for piping)")
	cmd.Flags().StringVar(&cmder.apiTarget, "api-target", defaults.Client.APITarget, "Mnemo API server URL")

	return cmd
}

func (c *searchCommander) run() error {
	filter, err := parseFilters(c.filters)
	if err != nil {
		return err
	}

	output, err := SearchAPI(c.apiTarget, c.query, c.topK, filter)
	if err != nil {
		return err
	}

	if output.Count == 0 {
		if !c.quiet {
			fmt.Println("No results found.")
		}
		return nil
	}

	if c.quiet {
		seen := make(map[string]bool)
		for _, result := range output.Results {
			if seen[result.DocumentID] {
				continue
			}
			seen[result.DocumentID] = true
			fmt.Println(result.DocumentID)
		}
		return nil
	}

	fmt.Printf("\n%s %s\n\n",
		headerStyle.Render("Search Results for:"),
		docStyle.Render(fmt.Sprintf("%q", output.Query)),
	)

	for i, result := range output.Results {
		printResult(i+1, result)
	}

	return nil
}

// parseFilters converts key=value pairs into a metadata filter.
func parseFilters(pairs []string) (memory.Metadata, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	filter := make(memory.Metadata, len(pairs))
	for _, pair := range pairs {
		key, value, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		filter[key] = value
	}

	return filter, nil
}

func printResult(rank int, result memory.SearchResult) {
	filename := ""
	if result.Segment.Metadata != nil {
		if v, ok := result.Segment.Metadata["filename"]; ok {
			filename = fmt.Sprintf("%v", v)
		}
	}

	fmt.Printf("  %s  %s  %s\n",
		rankStyle.Render(fmt.Sprintf("#%d", rank)),
		scoreStyle.Render(fmt.Sprintf("score %.3f", result.Score)),
		docStyle.Render(result.DocumentID),
	)

	if filename != "" {
		fmt.Printf("      %s\n", dimStyle.Render(filename))
	}

	preview := strings.TrimSpace(result.Segment.Text)
	for _, line := range strings.Split(preview, "\n") {
		fmt.Printf("      %s\n", previewStyle.Render(line))
	}

	fmt.Println()
}
